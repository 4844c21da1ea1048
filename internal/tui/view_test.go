package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"winup/internal/winget"
)

func TestMain(m *testing.M) {
	// Force a colorless profile so rendered views are stable across
	// terminals and CI.
	lipgloss.SetColorProfile(termenv.Ascii)
	m.Run()
}

func renderPlain(m Model) string {
	return normalizeOutput(stripAnsiCodes(m.View()))
}

func TestViewLoading(t *testing.T) {
	m := NewModel(winget.NewClient("winget", winget.Patterns{}, &scriptedRunner{}), nil, 0)

	out := renderPlain(m)
	if !strings.Contains(out, "Loading updatable apps") {
		t.Errorf("loading view missing status:\n%s", out)
	}
}

func TestViewList(t *testing.T) {
	m := loadedModel(t, &scriptedRunner{}, testApps(2))
	m = press(t, m, KeySpace)

	out := renderPlain(m)

	for _, want := range []string{
		"2 update(s) available",
		"App 0",
		"Vendor.App1",
		"[✓]", // the toggled row
		"[ ]",
		"1 selected",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("list view missing %q:\n%s", want, out)
		}
	}
}

func TestViewListEmpty(t *testing.T) {
	m := loadedModel(t, &scriptedRunner{}, nil)

	out := renderPlain(m)
	if !strings.Contains(out, "Everything is up to date.") {
		t.Errorf("empty list view:\n%s", out)
	}
}

func TestViewListError(t *testing.T) {
	m := loadedModel(t, &scriptedRunner{}, nil)
	m = apply(t, m, appsLoadedMsg{err: winget.NewListError("winget", winget.ErrToolUnavailable)})

	out := renderPlain(m)
	if !strings.Contains(out, "Error:") {
		t.Errorf("error view missing the error:\n%s", out)
	}
	if !strings.Contains(out, "r refresh") {
		t.Errorf("error view missing the retry hint:\n%s", out)
	}
}

func TestViewConfirm(t *testing.T) {
	m := loadedModel(t, &scriptedRunner{}, testApps(2))
	m = press(t, m, "a", "u")

	out := renderPlain(m)

	for _, want := range []string{
		"update 2 app(s)",
		"App 0",
		"(1.0 → 2.0)",
		"one at a time",
		"y confirm",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("confirm view missing %q:\n%s", want, out)
		}
	}
}

func TestViewRunning(t *testing.T) {
	runner := &scriptedRunner{
		upgrades: map[string]scriptedResult{
			"Vendor.App0": {output: "Successfully installed"},
		},
	}
	m := loadedModel(t, runner, testApps(2))
	m = press(t, m, "a", "u", "y")

	cmd := m.upgradeNext()
	m = apply(t, m, cmd())

	out := renderPlain(m)

	for _, want := range []string{
		"1 of 2 complete",
		"Vendor.App1", // currently in flight
		"[ok] Vendor.App0",
		"esc cancel",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("running view missing %q:\n%s", want, out)
		}
	}

	m = press(t, m, KeyEsc)
	out = renderPlain(m)
	if !strings.Contains(out, "Cancelling after current item") {
		t.Errorf("cancel pending not shown:\n%s", out)
	}
}

func TestViewReport(t *testing.T) {
	runner := &scriptedRunner{
		upgrades: map[string]scriptedResult{
			"Vendor.App0": {output: "Successfully installed"},
			"Vendor.App1": {output: "The application must be closed.", exitCode: 1},
		},
	}
	m := loadedModel(t, runner, testApps(2))
	m = press(t, m, "a", "u", "y")
	m = runBatch(t, m)

	out := renderPlain(m)

	for _, want := range []string{
		"Update report",
		"[ok]",
		"Vendor.App0",
		"[!]",
		"1 updated, 0 failed, 1 need closing, 0 already up to date",
		"Close the flagged application(s) and retry.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report view missing %q:\n%s", want, out)
		}
	}
}

func TestViewReportCancelled(t *testing.T) {
	runner := &scriptedRunner{
		upgrades: map[string]scriptedResult{
			"Vendor.App0": {output: "Successfully installed"},
		},
	}
	m := loadedModel(t, runner, testApps(3))
	m = press(t, m, "a", "u", "y")

	cmd := m.upgradeNext()
	msg := cmd()
	m = press(t, m, KeyEsc)
	m = apply(t, m, msg)

	out := renderPlain(m)
	if !strings.Contains(out, "Cancelled: 2 of 3 item(s) were not attempted") {
		t.Errorf("cancelled report missing the skipped count:\n%s", out)
	}
}

func TestPad(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"abc", 5, "abc  "},
		{"abcdef", 4, "abc…"},
		{"", 3, "   "},
	}

	for _, tt := range tests {
		if got := pad(tt.in, tt.width); got != tt.want {
			t.Errorf("pad(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
