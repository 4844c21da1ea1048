// Package tui provides the terminal user interface.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"winup/internal/config"
	"winup/internal/history"
	"winup/internal/winget"
)

// Run starts the interactive TUI. The history store is opened
// best-effort: a failure there degrades to "runs are not recorded"
// rather than blocking the UI.
func Run(cfg *config.Config) error {
	client := winget.NewClient(cfg.WingetPath, cfg.Patterns, nil)
	if err := client.Check(); err != nil {
		return err
	}

	var store *history.Store

	if path, err := cfg.ResolveHistoryPath(); err == nil {
		store, err = history.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not open history store: %v\n", err)
			store = nil
		}
	}

	if store != nil {
		defer func() { _ = store.Close() }()
	}

	model := NewModel(client, store, cfg.KeepRuns)

	p := tea.NewProgram(model, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// If the user quit straight from a report, repeat it on stdout so it
	// survives leaving the alternate screen
	m, ok := finalModel.(Model)
	if !ok {
		return fmt.Errorf("unexpected model type")
	}

	if m.screen == ScreenReport && m.batch != nil && len(m.batch.Entries) > 0 {
		fmt.Print(winget.FormatReport(m.batch.Entries))
	}

	return nil
}

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}

	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
