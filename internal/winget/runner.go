package winget

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Runner executes an external command and captures its combined output.
// The exit code is returned separately so callers can classify non-zero
// exits without losing the captured text. A non-nil error means the
// command could not be run at all, not that it exited non-zero.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (output string, exitCode int, err error)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct{}

// Run executes the command and returns combined stdout/stderr.
// winget interleaves spinner noise from stderr into the same stream,
// so the two are captured together on purpose.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // binary and args come from config and parsed package IDs

	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), exitErr.ExitCode(), nil
		}
		if ctx.Err() != nil {
			return string(out), -1, ctx.Err()
		}

		return "", -1, fmt.Errorf("running %s: %w", name, err)
	}

	return string(out), 0, nil
}
