package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Column widths for the list table. winget IDs are capped at 128 runes
// but real ones stay well under these.
const (
	nameColWidth    = 32
	idColWidth      = 34
	versionColWidth = 16
)

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, ListKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, ListKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		if m.cursor < m.scroll {
			m.scroll = m.cursor
		}

		return m, nil

	case key.Matches(msg, ListKeys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		if m.cursor >= m.scroll+m.viewHeight {
			m.scroll = m.cursor - m.viewHeight + 1
		}

		return m, nil

	case key.Matches(msg, ListKeys.Toggle):
		if m.cursor < len(m.items) {
			m.items[m.cursor].Selected = !m.items[m.cursor].Selected
		}

		return m, nil

	case key.Matches(msg, ListKeys.SelectAll):
		for i := range m.items {
			m.items[i].Selected = true
		}

		return m, nil

	case key.Matches(msg, ListKeys.SelectNone):
		for i := range m.items {
			m.items[i].Selected = false
		}

		return m, nil

	case key.Matches(msg, ListKeys.Refresh):
		m.loading = true
		m.status = "Loading updatable apps..."

		return m, tea.Batch(m.spinner.Tick, m.loadApps())

	case key.Matches(msg, ListKeys.Update):
		if len(m.selectedIDs()) == 0 {
			m.status = "No apps selected"
			return m, nil
		}

		m.screen = ScreenConfirm

		return m, nil
	}

	return m, nil
}

func (m Model) viewLoading() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("󰏖  winup"))
	b.WriteString("\n\n")
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(m.status)
	b.WriteString("\n")

	return BaseStyle.Render(b.String())
}

func (m Model) viewList() string {
	var b strings.Builder

	title := fmt.Sprintf("󰏖  winup — %d update(s) available", len(m.items))
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("r refresh • q quit"))
		b.WriteString("\n")

		return BaseStyle.Render(b.String())
	}

	if len(m.items) == 0 {
		b.WriteString(SubtitleStyle.Render("Everything is up to date."))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("r refresh • q quit"))
		b.WriteString("\n")

		return BaseStyle.Render(b.String())
	}

	// Header row
	header := fmt.Sprintf("      %s %s %s %s",
		pad("Name", nameColWidth),
		pad("Id", idColWidth),
		pad("Version", versionColWidth),
		"Available")
	b.WriteString(SubtitleStyle.Render(header))
	b.WriteString("\n")

	end := m.scroll + m.viewHeight
	if end > len(m.items) {
		end = len(m.items)
	}

	for i := m.scroll; i < end; i++ {
		item := m.items[i]

		cursor := "  "
		if i == m.cursor {
			cursor = SelectedListItemStyle.Render("> ")
		}

		checkbox := UncheckedStyle.Render("[ ]")
		if item.Selected {
			checkbox = CheckedStyle.Render("[✓]")
		}

		line := fmt.Sprintf("%s%s %s %s %s %s",
			cursor,
			checkbox,
			AppNameStyle.Render(pad(item.App.Name, nameColWidth)),
			AppIDStyle.Render(pad(item.App.ID, idColWidth)),
			VersionStyle.Render(pad(item.App.Version, versionColWidth)),
			VersionStyle.Render(item.App.Available))

		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(m.items) > m.viewHeight {
		b.WriteString(SubtitleStyle.Render(fmt.Sprintf("  %d-%d of %d", m.scroll+1, end, len(m.items))))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(WarningStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render(fmt.Sprintf(
		"%d selected • space toggle • a all • n none • u update • r refresh • q quit",
		len(m.selectedIDs()))))
	b.WriteString("\n")

	return BaseStyle.Render(b.String())
}

// pad pads or truncates s to exactly width runes.
func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width-1]) + "…"
	}

	return s + strings.Repeat(" ", width-len(runes))
}
