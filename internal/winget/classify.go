package winget

import (
	"fmt"
	"strings"
)

// maxFailureMessage bounds how much captured output a failure carries,
// in runes, to keep reports readable.
const maxFailureMessage = 200

// Patterns holds the output substrings used to classify upgrade results.
// winget's exit codes do not reliably separate warnings from hard
// failures, so classification inspects the text. The exact phrasing
// changes between winget releases; overrides come from the config file.
type Patterns struct {
	UpToDate    []string `yaml:"up_to_date,omitempty"`
	NeedsClosed []string `yaml:"needs_closed,omitempty"`
}

// DefaultPatterns returns the phrases current winget releases emit.
func DefaultPatterns() Patterns {
	return Patterns{
		UpToDate: []string{
			"no applicable update found",
			"no newer package versions",
		},
		NeedsClosed: []string{
			"application must be closed",
			"close the application",
			"currently in use",
			"close all instances",
		},
	}
}

// merged returns p with empty pattern sets filled from the defaults, so a
// partial config override keeps the rest of the classification intact.
func (p Patterns) merged() Patterns {
	def := DefaultPatterns()
	if len(p.UpToDate) == 0 {
		p.UpToDate = def.UpToDate
	}
	if len(p.NeedsClosed) == 0 {
		p.NeedsClosed = def.NeedsClosed
	}

	return p
}

// Classify turns the combined output and exit code of one upgrade
// invocation into an UpdateResult. The needs-closed check runs first and
// wins regardless of exit code: winget reports a locked application as a
// non-zero exit that is semantically a user-actionable warning.
func (p Patterns) Classify(output string, exitCode int) UpdateResult {
	p = p.merged()
	lower := strings.ToLower(output)

	if matchAny(lower, p.NeedsClosed) {
		return UpdateResult{
			Outcome: OutcomeNeedsClosed,
			Message: "needs to be closed before updating",
		}
	}

	if exitCode == 0 {
		if matchAny(lower, p.UpToDate) {
			return UpdateResult{Outcome: OutcomeUpToDate, Message: "already up to date"}
		}

		return UpdateResult{Outcome: OutcomeSuccess, Message: "updated successfully"}
	}

	return UpdateResult{
		Outcome: OutcomeFailure,
		Message: failureMessage(output, exitCode),
	}
}

func matchAny(lower string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}

	return false
}

// failureMessage extracts the tail of the captured output as the failure
// message, bounded to maxFailureMessage runes.
func failureMessage(output string, exitCode int) string {
	msg := lastLine(output)
	if msg == "" {
		return fmt.Sprintf("exited with code %d", exitCode)
	}

	runes := []rune(msg)
	if len(runes) > maxFailureMessage {
		msg = string(runes[len(runes)-maxFailureMessage:])
	}

	return msg
}

// lastLine returns the final non-empty line of the output after control
// character cleanup.
func lastLine(output string) string {
	lines := Sanitize(output)
	for i := len(lines) - 1; i >= 0; i-- {
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
			return trimmed
		}
	}

	return ""
}
