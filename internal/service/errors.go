package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// ErrCantExtendUnstartedSession is returned when a session extension
	// targets a team whose session never started.
	ErrCantExtendUnstartedSession = errors.New("cannot extend a session that was never started")
)

// ValidationError aggregates every violation found before any state is
// mutated. Validators run to completion instead of failing fast so a
// client sees the full list at once.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

func (e *ValidationError) Add(format string, args ...interface{}) {
	e.Violations = append(e.Violations, fmt.Sprintf(format, args...))
}

// OrNil returns the error only if at least one violation was recorded.
func (e *ValidationError) OrNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}
