package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// confirmPreviewLimit caps how many selected apps the confirmation lists.
const confirmPreviewLimit = 10

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, ConfirmKeys.Confirm):
		// Capture the ordered selection as the batch; from here on the
		// list is frozen until the report is acknowledged.
		m.batch = &BatchRun{
			IDs:       m.selectedIDs(),
			StartedAt: time.Now(),
		}
		m.screen = ScreenRunning
		m.status = ""

		return m, tea.Batch(m.spinner.Tick, m.progress.SetPercent(0), m.upgradeNext())

	case key.Matches(msg, ConfirmKeys.Cancel):
		// No side effects on cancel
		m.screen = ScreenList

		return m, nil
	}

	return m, nil
}

func (m Model) viewConfirm() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("󰏖  Confirm update"))
	b.WriteString("\n\n")

	ids := m.selectedIDs()
	b.WriteString(fmt.Sprintf("You are about to update %d app(s):", len(ids)))
	b.WriteString("\n\n")

	count := 0
	for _, item := range m.items {
		if !item.Selected {
			continue
		}

		count++
		if count <= confirmPreviewLimit {
			marker := CheckedStyle.Render("  ✓ ")
			versions := SubtitleStyle.Render(fmt.Sprintf(" (%s → %s)", item.App.Version, item.App.Available))
			b.WriteString(marker + item.App.Name + versions)
			b.WriteString("\n")
		}
	}

	if count > confirmPreviewLimit {
		b.WriteString(SubtitleStyle.Render(fmt.Sprintf("  ... and %d more", count-confirmPreviewLimit)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString("Updates run one at a time and cannot be interrupted mid-item.")
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("y confirm • n cancel"))
	b.WriteString("\n")

	return BaseStyle.Render(b.String())
}
