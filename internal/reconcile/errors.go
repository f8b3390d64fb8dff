package reconcile

import (
	"errors"
	"fmt"
)

// ApplyError is a plan execution stopped partway. Progress holds what the
// server already acknowledged before Op failed.
type ApplyError struct {
	Progress Progress
	Op       string
	Err      error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("%s: %v (completed so far: %s)", e.Op, e.Err, e.Progress)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// IsApplyError reports whether err is (or wraps) an ApplyError.
func IsApplyError(err error) bool {
	var ae *ApplyError
	return errors.As(err, &ae)
}
