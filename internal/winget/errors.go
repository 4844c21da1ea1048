package winget

import (
	"errors"
	"fmt"
)

// Sentinel errors for winget operations
var (
	ErrToolUnavailable = errors.New("winget not available")
	ErrNoHeader        = errors.New("no table header found")
)

// ListError records a failed attempt to run the upgrade listing.
type ListError struct {
	Err    error
	Binary string
}

func (e *ListError) Error() string {
	return fmt.Sprintf("list upgrades via %s: %v", e.Binary, e.Err)
}

func (e *ListError) Unwrap() error {
	return e.Err
}

// NewListError creates a new ListError
func NewListError(binary string, err error) *ListError {
	return &ListError{Binary: binary, Err: err}
}
