package tui

import "github.com/charmbracelet/bubbles/key"

// ListKeyMap defines keybindings for the app selection list.
type ListKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	SelectAll  key.Binding
	SelectNone key.Binding
	Refresh    key.Binding
	Update     key.Binding
	Quit       key.Binding
}

// ListKeys are the keybindings for the list screen.
var ListKeys = ListKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(KeySpace),
		key.WithHelp("space", "toggle"),
	),
	SelectAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "select all"),
	),
	SelectNone: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "select none"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Update: key.NewBinding(
		key.WithKeys("u", KeyEnter),
		key.WithHelp("u", "update selected"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
}

// ConfirmKeyMap defines keybindings for the confirmation screen.
type ConfirmKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ConfirmKeys are the keybindings for the confirmation screen.
var ConfirmKeys = ConfirmKeyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y", KeyEnter),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", KeyEsc),
		key.WithHelp("n/esc", "cancel"),
	),
}

// RunningKeyMap defines keybindings while a batch is executing.
type RunningKeyMap struct {
	Cancel key.Binding
}

// RunningKeys are the keybindings for the running screen. Cancellation
// is honored at the next item boundary, never mid-upgrade.
var RunningKeys = RunningKeyMap{
	Cancel: key.NewBinding(
		key.WithKeys(KeyEsc, "x"),
		key.WithHelp("esc", "cancel after current item"),
	),
}

// ReportKeyMap defines keybindings for the report screen.
type ReportKeyMap struct {
	Acknowledge key.Binding
	Copy        key.Binding
	Quit        key.Binding
}

// ReportKeys are the keybindings for the report screen.
var ReportKeys = ReportKeyMap{
	Acknowledge: key.NewBinding(
		key.WithKeys(KeyEnter, KeyEsc),
		key.WithHelp("enter", "back to list"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy report"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
}
