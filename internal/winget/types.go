// Package winget drives the winget command-line tool: it parses the
// column-aligned output of `winget upgrade` into structured records and
// runs per-package upgrades, classifying their textual outcomes.
package winget

// UpdatableApp represents one application winget reports as upgradable.
// Name may contain internal spaces; ID is the unique package identifier
// and is the only key ever passed back to winget for an upgrade.
type UpdatableApp struct {
	Name      string
	ID        string
	Version   string
	Available string
	Source    string
}

// Outcome classifies the result of a single upgrade attempt.
type Outcome int

// Upgrade outcomes.
const (
	// OutcomeSuccess indicates the package was upgraded
	OutcomeSuccess Outcome = iota
	// OutcomeFailure indicates a hard failure
	OutcomeFailure
	// OutcomeNeedsClosed indicates the application must be closed before upgrading
	OutcomeNeedsClosed
	// OutcomeUpToDate indicates no applicable update was found
	OutcomeUpToDate
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeNeedsClosed:
		return "needs-closed"
	case OutcomeUpToDate:
		return "up-to-date"
	}

	return "unknown"
}

// UpdateResult is the classified outcome of one upgrade attempt.
// Results are produced only by classification of winget's output,
// never constructed ad hoc by callers.
type UpdateResult struct {
	Outcome Outcome
	Message string
}

// OK reports whether the result is non-fatal (anything but a hard failure).
func (r UpdateResult) OK() bool {
	return r.Outcome != OutcomeFailure
}
