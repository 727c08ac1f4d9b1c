package catalog

// errors.go defines the failure taxonomy callers must be able to tell
// apart: "your input was invalid", "that id already exists" and "the
// store is unavailable". Not-found is never an error; id-scoped
// lookups report absence through their return values.

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports that one or more field invariants were
// violated. It always carries the full violation list; a record that
// fails validation is never partially applied.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid product: %s", strings.Join(e.Violations, "; "))
}

func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// DuplicateKeyError reports that an insert collided with an existing id.
type DuplicateKeyError struct {
	ID int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate product: id=%d already exists", e.ID)
}

func (e *DuplicateKeyError) Is(target error) bool {
	_, ok := target.(*DuplicateKeyError)
	return ok
}

// ConnectivityError reports that the store was unreachable or
// misconfigured. Fatal to the current operation, never to the process.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("store unavailable: %v", e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

func (e *ConnectivityError) Is(target error) bool {
	_, ok := target.(*ConnectivityError)
	return ok
}

// NewValidationError builds a ValidationError from a validation Result.
func NewValidationError(r Result) error {
	return &ValidationError{Violations: r.Violations()}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDuplicateKeyError reports whether err is (or wraps) a DuplicateKeyError.
func IsDuplicateKeyError(err error) bool {
	var de *DuplicateKeyError
	return errors.As(err, &de)
}

// IsConnectivityError reports whether err is (or wraps) a ConnectivityError.
func IsConnectivityError(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}
