package winget

import (
	"context"
	"fmt"
	"os/exec"
)

// DefaultBinary is the winget executable looked up on PATH when the
// config does not override it.
const DefaultBinary = "winget"

// Client lists upgradable applications and runs per-package upgrades.
// It is stateless apart from its configuration; every method is safe to
// call from a single driving goroutine.
type Client struct {
	runner   Runner
	binary   string
	patterns Patterns
}

// NewClient creates a Client for the given winget binary. An empty binary
// falls back to DefaultBinary and a nil runner to ExecRunner.
func NewClient(binary string, patterns Patterns, runner Runner) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	if runner == nil {
		runner = ExecRunner{}
	}

	return &Client{
		runner:   runner,
		binary:   binary,
		patterns: patterns.merged(),
	}
}

// Check verifies the winget binary can be found on PATH.
func (c *Client) Check() error {
	if _, err := exec.LookPath(c.binary); err != nil {
		return fmt.Errorf("%w: %s", ErrToolUnavailable, c.binary)
	}

	return nil
}

// ListUpdatable runs the upgrade listing and parses it into records.
// It asks winget to include packages with unknown installed versions so
// the listing matches what an upgrade-all would touch.
func (c *Client) ListUpdatable(ctx context.Context) ([]UpdatableApp, error) {
	out, code, err := c.runner.Run(ctx, c.binary, "upgrade", "--include-unknown")
	if err != nil {
		return nil, NewListError(c.binary, fmt.Errorf("%w: %v", ErrToolUnavailable, err))
	}

	apps := ParseOutput(out)

	// winget exits non-zero for "nothing to upgrade" on some releases;
	// only a failed exit with no parseable table is a real error.
	if len(apps) == 0 && code != 0 {
		return nil, NewListError(c.binary, fmt.Errorf("%w (exit code %d)", ErrNoHeader, code))
	}

	return apps, nil
}

// Upgrade runs the upgrade for exactly one package ID and classifies the
// outcome. IDs are the invocation key since they are unique while names
// are not. A runner failure surfaces as a Failure result; per-item
// problems never escalate past the item.
func (c *Client) Upgrade(ctx context.Context, id string) UpdateResult {
	out, code, err := c.runner.Run(ctx, c.binary,
		"upgrade",
		"--id", id,
		"--accept-source-agreements",
		"--accept-package-agreements",
		"-h",
	)
	if err != nil {
		return UpdateResult{
			Outcome: OutcomeFailure,
			Message: fmt.Sprintf("could not run %s: %v", c.binary, err),
		}
	}

	return c.patterns.Classify(out, code)
}
