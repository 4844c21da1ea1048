package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"winup/internal/winget"
)

// updateRunning handles input while a batch is executing. Everything
// except a cancellation request is a no-op: selection, refresh, and new
// update requests are rejected so the list cannot change mid-run and no
// second batch can start.
func (m Model) updateRunning(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, RunningKeys.Cancel) && m.batch != nil {
		// Honored at the next item boundary; the in-flight upgrade is
		// never killed since that could leave the target half-updated.
		m.batch.CancelRequested = true
	}

	return m, nil
}

func (m Model) viewRunning() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("󰏖  Updating..."))
	b.WriteString("\n\n")

	if m.batch == nil {
		return BaseStyle.Render(b.String())
	}

	done := m.batch.Completed()
	total := len(m.batch.IDs)

	b.WriteString(m.progress.View())
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%d of %d complete", done, total))
	b.WriteString("\n\n")

	if done < total {
		current := m.batch.IDs[done]
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(AppNameStyle.Render(current))
		b.WriteString("\n\n")
	}

	for _, e := range m.batch.Entries {
		marker := winget.Marker(e.Result.Outcome)
		b.WriteString(fmt.Sprintf("  %s %s\n", outcomeStyle(marker).Render(marker), e.ID))
	}

	if m.batch.CancelRequested {
		b.WriteString("\n")
		b.WriteString(WarningStyle.Render("Cancelling after current item..."))
		b.WriteString("\n")
	} else {
		b.WriteString(HelpStyle.Render("esc cancel after current item"))
		b.WriteString("\n")
	}

	return BaseStyle.Render(b.String())
}
