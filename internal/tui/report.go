package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"winup/internal/winget"
)

func (m Model) updateReport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, ReportKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, ReportKeys.Copy):
		if m.batch != nil {
			if err := clipboard.WriteAll(winget.FormatReport(m.batch.Entries)); err == nil {
				m.copied = true
			}
		}

		return m, nil

	case key.Matches(msg, ReportKeys.Acknowledge):
		// Versions just changed, so the listing is refreshed automatically
		m.batch = nil
		m.loading = true
		m.status = "Loading updatable apps..."

		return m, tea.Batch(m.spinner.Tick, m.loadApps())
	}

	return m, nil
}

func (m Model) viewReport() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("󰏖  Update report"))
	b.WriteString("\n\n")

	if m.batch == nil {
		return BaseStyle.Render(b.String())
	}

	wrapWidth := m.width - 10
	if wrapWidth < 20 {
		wrapWidth = 20
	}

	var ok, failed, needClose, upToDate int
	for _, e := range m.batch.Entries {
		marker := winget.Marker(e.Result.Outcome)
		line := fmt.Sprintf("%s %s: %s", marker, e.ID, e.Result.Message)

		b.WriteString(outcomeStyle(marker).Render(marker))
		b.WriteString(wordwrap.String(strings.TrimPrefix(line, marker), wrapWidth))
		b.WriteString("\n")

		switch e.Result.Outcome {
		case winget.OutcomeSuccess:
			ok++
		case winget.OutcomeFailure:
			failed++
		case winget.OutcomeNeedsClosed:
			needClose++
		case winget.OutcomeUpToDate:
			upToDate++
		}
	}

	if m.batch.CancelRequested && m.batch.Completed() < len(m.batch.IDs) {
		b.WriteString("\n")
		b.WriteString(WarningStyle.Render(fmt.Sprintf(
			"Cancelled: %d of %d item(s) were not attempted",
			len(m.batch.IDs)-m.batch.Completed(), len(m.batch.IDs))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	summary := fmt.Sprintf("%d updated, %d failed, %d need closing, %d already up to date",
		ok, failed, needClose, upToDate)
	b.WriteString(SubtitleStyle.Render(summary))
	b.WriteString("\n")

	if needClose > 0 {
		b.WriteString(WarningStyle.Render("Close the flagged application(s) and retry."))
		b.WriteString("\n")
	}

	if m.copied {
		b.WriteString(SuccessStyle.Render("Report copied to clipboard."))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("enter back to list • c copy report • q quit"))
	b.WriteString("\n")

	return BaseStyle.Render(b.String())
}
