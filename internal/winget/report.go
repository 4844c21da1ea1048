package winget

import (
	"fmt"
	"strings"
)

// ReportEntry pairs a package ID with its classified outcome, in the
// order the batch executed.
type ReportEntry struct {
	ID     string
	Result UpdateResult
}

// Marker returns the report prefix for an outcome: [ok] success,
// [x] failure, [!] warning, [i] informational.
func Marker(o Outcome) string {
	switch o {
	case OutcomeSuccess:
		return "[ok]"
	case OutcomeFailure:
		return "[x]"
	case OutcomeNeedsClosed:
		return "[!]"
	case OutcomeUpToDate:
		return "[i]"
	}

	return "[?]"
}

// FormatReport renders an ordered result set as categorized text, one
// line per entry plus a summary line. The same text backs the CLI
// output and the TUI's clipboard copy.
func FormatReport(entries []ReportEntry) string {
	var b strings.Builder

	var ok, failed, needClose, upToDate int
	for _, e := range entries {
		fmt.Fprintf(&b, "%s %s: %s\n", Marker(e.Result.Outcome), e.ID, e.Result.Message)

		switch e.Result.Outcome {
		case OutcomeSuccess:
			ok++
		case OutcomeFailure:
			failed++
		case OutcomeNeedsClosed:
			needClose++
		case OutcomeUpToDate:
			upToDate++
		}
	}

	fmt.Fprintf(&b, "\n%d processed: %d updated, %d failed, %d need closing, %d already up to date\n",
		len(entries), ok, failed, needClose, upToDate)

	return b.String()
}
