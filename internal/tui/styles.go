package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	textColor      = lipgloss.Color("#F3F4F6") // Light gray

	// Base styles
	BaseStyle = lipgloss.NewStyle().
			Padding(1, 2)

	// Title styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true).
			MarginBottom(1)

	// List styles
	SelectedListItemStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Bold(true)

	CheckedStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	UncheckedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	// App fields
	AppNameStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Bold(true)

	AppIDStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	VersionStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	// Progress styles
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	InfoStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)
)

// outcomeStyle maps a report marker to its display style.
func outcomeStyle(marker string) lipgloss.Style {
	switch marker {
	case "[ok]":
		return SuccessStyle
	case "[x]":
		return ErrorStyle
	case "[!]":
		return WarningStyle
	default:
		return InfoStyle
	}
}
