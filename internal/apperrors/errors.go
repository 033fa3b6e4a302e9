// Package apperrors defines the sentinel errors repositories return.
// The handler layer maps each one to exactly one HTTP status code.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation covers missing or malformed input. → 400
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized covers missing, invalid or expired credentials. → 401
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden covers a valid identity with the wrong role or ownership. → 403
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound covers absent entities. → 404
	ErrNotFound = errors.New("not found")
	// ErrConflict covers duplicate applications, favorites and registrations. → 409
	ErrConflict = errors.New("conflict")
	// ErrInvalidState covers operations invalid for an entity's current status,
	// e.g. applying to a non-Available listing. → 400
	ErrInvalidState = errors.New("invalid state")
)

// Wrap attaches a human-readable message to a sentinel so callers can still
// match it with errors.Is.
func Wrap(sentinel error, msg string) error {
	return fmt.Errorf("%w: %s", sentinel, msg)
}

// Wrapf is Wrap with formatting.
func Wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
