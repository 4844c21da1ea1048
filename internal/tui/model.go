package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"winup/internal/history"
	"winup/internal/winget"
)

// Screen represents the current screen being displayed in the TUI.
type Screen int

// TUI screen types.
const (
	// ScreenList is the selectable list of updatable apps
	ScreenList Screen = iota
	// ScreenConfirm is the pre-batch confirmation screen
	ScreenConfirm
	// ScreenRunning is the in-flight batch screen
	ScreenRunning
	// ScreenReport is the per-item outcome report screen
	ScreenReport
)

// AppItem wraps an updatable app with its selection state and, once its
// upgrade attempt has completed, the classified result. The result is set
// exactly once per batch.
type AppItem struct {
	Result   *winget.UpdateResult
	App      winget.UpdatableApp
	Selected bool
}

// BatchRun owns one "update selected" run: the ordered IDs still pending,
// and the results accumulated so far. It exists only between confirmation
// and the report.
type BatchRun struct {
	IDs             []string
	Entries         []winget.ReportEntry
	StartedAt       time.Time
	CancelRequested bool
}

// Completed is how many items have finished so far.
func (b *BatchRun) Completed() int {
	return len(b.Entries)
}

// Done reports whether the batch has reached its end, either by running
// out of items or by a cancellation honored at an item boundary.
func (b *BatchRun) Done() bool {
	return b.Completed() >= len(b.IDs) || b.CancelRequested
}

// Results returns the id -> result mapping accumulated so far.
func (b *BatchRun) Results() map[string]winget.UpdateResult {
	results := make(map[string]winget.UpdateResult, len(b.Entries))
	for _, e := range b.Entries {
		results[e.ID] = e.Result
	}

	return results
}

// appsLoadedMsg is sent when the upgrade listing completes (success or error).
type appsLoadedMsg struct {
	err  error
	apps []winget.UpdatableApp
}

// upgradeDoneMsg is sent after each individual upgrade attempt completes.
type upgradeDoneMsg struct {
	id     string
	result winget.UpdateResult
}

// Model holds the TUI state: the authoritative app list, the current
// screen, and the batch in flight. It is the single owner of both; the
// parsing and executor code is stateless, so sequencing here is the only
// synchronization needed.
type Model struct {
	client     *winget.Client
	store      *history.Store
	batch      *BatchRun
	err        error
	status     string
	items      []AppItem
	spinner    spinner.Model
	progress   progress.Model
	keepRuns   int
	cursor     int
	scroll     int
	viewHeight int
	width      int
	height     int
	screen     Screen
	loading    bool
	copied     bool
}

// NewModel creates the initial model. The history store may be nil, in
// which case runs are simply not recorded.
func NewModel(client *winget.Client, store *history.Store, keepRuns int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	return Model{
		client:     client,
		store:      store,
		keepRuns:   keepRuns,
		spinner:    sp,
		progress:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
		screen:     ScreenList,
		loading:    true,
		status:     "Loading updatable apps...",
		viewHeight: 15,
		width:      80,
		height:     24,
	}
}

// Init starts the spinner and the initial listing fetch.
// This is part of the Bubble Tea model interface.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadApps())
}

// loadApps fetches and parses the upgrade listing off the UI loop.
func (m Model) loadApps() tea.Cmd {
	client := m.client

	return func() tea.Msg {
		apps, err := client.ListUpdatable(context.Background())
		return appsLoadedMsg{apps: apps, err: err}
	}
}

// upgradeNext runs the next pending item of the batch. Exactly one of
// these commands is ever in flight: the follow-up is only issued when the
// previous item's upgradeDoneMsg has been recorded, which keeps upgrades
// strictly sequential and their output attributable.
func (m Model) upgradeNext() tea.Cmd {
	if m.batch == nil || m.batch.Done() {
		return nil
	}

	client := m.client
	id := m.batch.IDs[m.batch.Completed()]

	return func() tea.Msg {
		return upgradeDoneMsg{id: id, result: client.Upgrade(context.Background(), id)}
	}
}

// Update processes messages and updates the model state accordingly.
// This is part of the Bubble Tea model interface.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewHeight = msg.Height - 10

		if m.viewHeight < 5 {
			m.viewHeight = 5
		}

		return m, nil

	case spinner.TickMsg:
		if !m.loading && m.screen != ScreenRunning {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		if p, ok := pm.(progress.Model); ok {
			m.progress = p
		}

		return m, cmd

	case appsLoadedMsg:
		return m.handleAppsLoaded(msg)

	case upgradeDoneMsg:
		return m.handleUpgradeDone(msg)
	}

	return m, nil
}

func (m Model) handleAppsLoaded(msg appsLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	m.screen = ScreenList
	m.cursor = 0
	m.scroll = 0

	if msg.err != nil {
		m.err = msg.err
		m.items = nil
		m.status = "Listing failed; press r to retry"

		return m, nil
	}

	m.err = nil
	// Selection state is reset on every (re)load
	m.items = make([]AppItem, 0, len(msg.apps))
	for _, app := range msg.apps {
		m.items = append(m.items, AppItem{App: app})
	}

	if len(m.items) == 0 {
		m.status = "No updates available"
	} else {
		m.status = ""
	}

	return m, nil
}

func (m Model) handleUpgradeDone(msg upgradeDoneMsg) (tea.Model, tea.Cmd) {
	if m.batch == nil {
		return m, nil
	}

	// Record the result before anything observes the new progress count
	m.batch.Entries = append(m.batch.Entries, winget.ReportEntry{ID: msg.id, Result: msg.result})

	for i := range m.items {
		if m.items[i].App.ID == msg.id && m.items[i].Result == nil {
			result := msg.result
			m.items[i].Result = &result

			break
		}
	}

	progressCmd := m.progress.SetPercent(float64(m.batch.Completed()) / float64(len(m.batch.IDs)))

	if m.batch.Done() {
		m.recordRun()
		m.screen = ScreenReport
		m.copied = false

		return m, progressCmd
	}

	return m, tea.Batch(progressCmd, m.upgradeNext())
}

// recordRun persists the finished batch to the history store. Failures
// here never disturb the report.
func (m *Model) recordRun() {
	if m.store == nil || m.batch == nil || len(m.batch.Entries) == 0 {
		return
	}

	apps := make([]winget.UpdatableApp, 0, len(m.items))
	for _, it := range m.items {
		apps = append(apps, it.App)
	}

	items := history.BuildItems(apps, m.batch.Entries)
	if _, err := m.store.RecordRun(m.batch.StartedAt, items); err != nil {
		slog.Warn("recording upgrade run", slog.String("error", err.Error()))
		return
	}

	if m.keepRuns > 0 {
		if err := m.store.Prune(m.keepRuns); err != nil {
			slog.Warn("pruning upgrade history", slog.String("error", err.Error()))
		}
	}
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == KeyCtrlC {
		return m, tea.Quit
	}

	// A suspending fetch ignores everything else
	if m.loading {
		return m, nil
	}

	switch m.screen {
	case ScreenList:
		return m.updateList(msg)
	case ScreenConfirm:
		return m.updateConfirm(msg)
	case ScreenRunning:
		return m.updateRunning(msg)
	case ScreenReport:
		return m.updateReport(msg)
	}

	return m, nil
}

// View renders the current screen.
// This is part of the Bubble Tea model interface.
func (m Model) View() string {
	if m.loading {
		return m.viewLoading()
	}

	switch m.screen {
	case ScreenList:
		return m.viewList()
	case ScreenConfirm:
		return m.viewConfirm()
	case ScreenRunning:
		return m.viewRunning()
	case ScreenReport:
		return m.viewReport()
	}

	return ""
}

// selectedIDs returns the IDs of all selected items in list order.
func (m Model) selectedIDs() []string {
	var ids []string
	for _, it := range m.items {
		if it.Selected {
			ids = append(ids, it.App.ID)
		}
	}

	return ids
}
