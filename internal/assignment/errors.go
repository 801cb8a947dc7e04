package assignment

import (
	"fmt"
	"strings"
)

// InvalidFieldError reports an assignment field that cannot be projected.
type InvalidFieldError struct {
	ID    string
	Field string
	Value string
	Err   error
}

func (e *InvalidFieldError) Error() string {
	msg := fmt.Sprintf("assignment %s: invalid %s %q", e.ID, e.Field, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidFieldError) Unwrap() error { return e.Err }

// NotFoundError is returned when no assignment matches an id or prefix.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("assignment %q not found", e.ID)
}

// AmbiguousIDError is returned when an id prefix matches several assignments.
type AmbiguousIDError struct {
	Prefix  string
	Matches []string
}

func (e *AmbiguousIDError) Error() string {
	return fmt.Sprintf("id prefix %q is ambiguous (matches %s)", e.Prefix, strings.Join(e.Matches, ", "))
}
