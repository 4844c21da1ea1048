package tui

// Key name constants for the raw key strings Bubble Tea reports.
const (
	// KeyCtrlC is the force-quit key
	KeyCtrlC = "ctrl+c"
	// KeyEsc is the escape key
	KeyEsc = "esc"
	// KeyEnter is the enter key
	KeyEnter = "enter"
	// KeySpace is the space key
	KeySpace = " "
)
