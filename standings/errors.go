package standings

import (
	"errors"
	"fmt"
)

// ErrMissingSchedule is reported alongside the default round count when a
// tournament has no schedule. It is a warning, never returned from Compute.
var ErrMissingSchedule = errors.New("schedule not found, default round count used")

// ValidationError describes structurally malformed engine input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("standings: invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
