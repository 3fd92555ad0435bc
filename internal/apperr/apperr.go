// Package apperr defines the error kinds shared by every domain package.
// Domain errors wrap one of these sentinels so callers can classify them with errors.Is.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a record that does not exist or belongs to another user.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrConsistency marks a broken internal invariant. It signals a bug, not bad input.
	ErrConsistency = errors.New("consistency failure")
	// ErrUnauthorized marks missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// Validation returns an ErrValidation carrying a human-readable reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Reason strips the kind prefix from err, leaving the message meant for the caller.
func Reason(err error) string {
	msg := err.Error()
	for _, k := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrUnauthorized} {
		if rest, ok := strings.CutPrefix(msg, k.Error()+": "); ok {
			return rest
		}
	}

	return msg
}
