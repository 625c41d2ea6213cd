package domain

import (
	"errors"
	"fmt"
)

// Error categories shared by every layer. Storage and usecases wrap these
// with context; the HTTP layer classifies them with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInactive     = errors.New("inactive user")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrUnavailable  = errors.New("service unavailable")
)

// ErrMissingSetNumber is returned when a new set arrives without a set_number.
var ErrMissingSetNumber = fmt.Errorf("%w: set_number is required for new sets", ErrValidation)

// Invalid builds a validation error with a caller-facing message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound builds a not-found error naming the missing entity.
func NotFound(entity string, id int64) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, entity, id)
}

// Conflict builds a conflict error with a caller-facing message.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
