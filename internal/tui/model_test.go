package tui

import (
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"winup/internal/winget"
)

// scriptedRunner serves a fixed listing and per-ID upgrade outputs, and
// records the order of upgrade invocations.
type scriptedRunner struct {
	listing  string
	upgrades map[string]scriptedResult
	upgraded []string
}

type scriptedResult struct {
	output   string
	exitCode int
}

func (r *scriptedRunner) Run(_ context.Context, _ string, args ...string) (string, int, error) {
	for i, a := range args {
		if a == "--id" && i+1 < len(args) {
			id := args[i+1]
			r.upgraded = append(r.upgraded, id)
			res := r.upgrades[id]

			return res.output, res.exitCode, nil
		}
	}

	return r.listing, 0, nil
}

func testApps(n int) []winget.UpdatableApp {
	apps := make([]winget.UpdatableApp, 0, n)
	for i := 0; i < n; i++ {
		apps = append(apps, winget.UpdatableApp{
			Name:      fmt.Sprintf("App %d", i),
			ID:        fmt.Sprintf("Vendor.App%d", i),
			Version:   "1.0",
			Available: "2.0",
			Source:    "winget",
		})
	}

	return apps
}

// loadedModel returns a model on the list screen with the given apps.
func loadedModel(t *testing.T, runner *scriptedRunner, apps []winget.UpdatableApp) Model {
	t.Helper()

	client := winget.NewClient("winget", winget.Patterns{}, runner)
	m := NewModel(client, nil, 0)

	return apply(t, m, appsLoadedMsg{apps: apps})
}

func apply(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()

	tm, _ := m.Update(msg)
	next, ok := tm.(Model)
	if !ok {
		t.Fatalf("Update() returned %T, want Model", tm)
	}

	return next
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()

	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case KeyEnter:
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case KeyEsc:
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case KeySpace:
			msg = tea.KeyMsg{Type: tea.KeySpace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}

		m = apply(t, m, msg)
	}

	return m
}

// runBatch drives the sequential upgrade loop to completion, feeding each
// finished item's message back into the model the way the program loop would.
func runBatch(t *testing.T, m Model) Model {
	t.Helper()

	for i := 0; i < 100; i++ {
		cmd := m.upgradeNext()
		if cmd == nil {
			return m
		}

		m = apply(t, m, cmd())
	}

	t.Fatal("batch did not terminate")

	return m
}

func TestBatchRunsSequentiallyToReport(t *testing.T) {
	runner := &scriptedRunner{
		upgrades: map[string]scriptedResult{
			"Vendor.App0": {output: "Successfully installed"},
			"Vendor.App1": {output: "Installer failed with error 0x1.", exitCode: 1},
			"Vendor.App2": {output: "The application must be closed.", exitCode: 1},
		},
	}

	m := loadedModel(t, runner, testApps(3))
	m = press(t, m, "a", "u")

	if m.screen != ScreenConfirm {
		t.Fatalf("screen = %v, want confirm", m.screen)
	}

	m = press(t, m, "y")
	if m.screen != ScreenRunning {
		t.Fatalf("screen = %v, want running", m.screen)
	}
	if m.batch == nil || len(m.batch.IDs) != 3 {
		t.Fatalf("batch = %+v", m.batch)
	}

	m = runBatch(t, m)

	if m.screen != ScreenReport {
		t.Errorf("screen = %v, want report", m.screen)
	}

	// Exactly one invocation per item, in list order
	wantOrder := []string{"Vendor.App0", "Vendor.App1", "Vendor.App2"}
	if len(runner.upgraded) != 3 {
		t.Fatalf("executor ran %d times: %v", len(runner.upgraded), runner.upgraded)
	}
	for i, id := range wantOrder {
		if runner.upgraded[i] != id {
			t.Errorf("invocation %d = %q, want %q", i, runner.upgraded[i], id)
		}
	}

	// A failing item never stops the batch
	results := m.batch.Results()
	if results["Vendor.App0"].Outcome != winget.OutcomeSuccess {
		t.Errorf("App0 = %v", results["Vendor.App0"].Outcome)
	}
	if results["Vendor.App1"].Outcome != winget.OutcomeFailure {
		t.Errorf("App1 = %v", results["Vendor.App1"].Outcome)
	}
	if results["Vendor.App2"].Outcome != winget.OutcomeNeedsClosed {
		t.Errorf("App2 = %v", results["Vendor.App2"].Outcome)
	}

	// Each item carries its result exactly once
	for _, it := range m.items {
		if it.Result == nil {
			t.Errorf("item %s has no result", it.App.ID)
		}
	}
}

func TestRunningRejectsInput(t *testing.T) {
	runner := &scriptedRunner{upgrades: map[string]scriptedResult{}}
	m := loadedModel(t, runner, testApps(2))
	m = press(t, m, "a", "u", "y")

	before := len(runner.upgraded)
	m = press(t, m, "r", KeySpace, "u", "a", "q")

	if m.screen != ScreenRunning {
		t.Errorf("screen = %v, input must not leave the running screen", m.screen)
	}
	if len(runner.upgraded) != before {
		t.Error("input during a run triggered executor work")
	}
	if m.batch.CancelRequested {
		t.Error("non-cancel keys must not request cancellation")
	}
}

func TestCancelHonoredAtItemBoundary(t *testing.T) {
	runner := &scriptedRunner{
		upgrades: map[string]scriptedResult{
			"Vendor.App0": {output: "Successfully installed"},
		},
	}

	m := loadedModel(t, runner, testApps(3))
	m = press(t, m, "a", "u", "y")

	// First item is already in flight; the cancel arrives before it finishes.
	cmd := m.upgradeNext()
	msg := cmd()
	m = press(t, m, KeyEsc)

	if !m.batch.CancelRequested {
		t.Fatal("esc did not request cancellation")
	}

	m = apply(t, m, msg)

	if m.screen != ScreenReport {
		t.Errorf("screen = %v, want report after boundary cancel", m.screen)
	}
	if got := m.batch.Completed(); got != 1 {
		t.Errorf("completed = %d, want the in-flight item kept", got)
	}
	if len(runner.upgraded) != 1 {
		t.Errorf("executor ran %d times after cancel, want 1", len(runner.upgraded))
	}
	if m.upgradeNext() != nil {
		t.Error("upgradeNext() should be nil once cancelled")
	}
}

func TestConfirmCancelHasNoSideEffects(t *testing.T) {
	runner := &scriptedRunner{}
	m := loadedModel(t, runner, testApps(2))
	m = press(t, m, "a", "u")

	m = press(t, m, "n")

	if m.screen != ScreenList {
		t.Errorf("screen = %v, want list", m.screen)
	}
	if m.batch != nil {
		t.Error("cancel created a batch")
	}
	if len(runner.upgraded) != 0 {
		t.Error("cancel triggered executor work")
	}
	if got := len(m.selectedIDs()); got != 2 {
		t.Errorf("selection = %d apps, want preserved", got)
	}
}

func TestReportAcknowledgeRefreshesListing(t *testing.T) {
	runner := &scriptedRunner{
		upgrades: map[string]scriptedResult{
			"Vendor.App0": {output: "Successfully installed"},
		},
	}

	m := loadedModel(t, runner, testApps(1))
	m = press(t, m, "a", "u", "y")
	m = runBatch(t, m)

	if m.screen != ScreenReport {
		t.Fatalf("screen = %v", m.screen)
	}

	m = press(t, m, KeyEnter)

	if m.batch != nil {
		t.Error("acknowledge kept the batch alive")
	}
	if !m.loading {
		t.Error("acknowledge must trigger a listing refresh")
	}
}

func TestListSelection(t *testing.T) {
	m := loadedModel(t, &scriptedRunner{}, testApps(3))

	m = press(t, m, KeySpace)
	if got := m.selectedIDs(); len(got) != 1 || got[0] != "Vendor.App0" {
		t.Errorf("after toggle: %v", got)
	}

	m = press(t, m, "a")
	if got := len(m.selectedIDs()); got != 3 {
		t.Errorf("after select all: %d", got)
	}

	m = press(t, m, "n")
	if got := len(m.selectedIDs()); got != 0 {
		t.Errorf("after select none: %d", got)
	}

	// Update with nothing selected stays on the list
	m = press(t, m, "u")
	if m.screen != ScreenList {
		t.Errorf("screen = %v, want list", m.screen)
	}
	if m.status == "" {
		t.Error("want a status explaining nothing is selected")
	}
}

func TestListingErrorKeepsModelUsable(t *testing.T) {
	m := loadedModel(t, &scriptedRunner{}, nil)
	m = apply(t, m, appsLoadedMsg{err: winget.NewListError("winget", winget.ErrToolUnavailable)})

	if m.err == nil {
		t.Error("listing error not surfaced")
	}
	if len(m.items) != 0 {
		t.Errorf("items = %d, want cleared", len(m.items))
	}
	if m.loading {
		t.Error("model stuck loading after a failed listing")
	}
}

func TestSelectionResetsOnReload(t *testing.T) {
	m := loadedModel(t, &scriptedRunner{}, testApps(2))
	m = press(t, m, "a")

	m = apply(t, m, appsLoadedMsg{apps: testApps(2)})

	if got := len(m.selectedIDs()); got != 0 {
		t.Errorf("selection survived a reload: %d", got)
	}
}
