package shared

import (
	"errors"
	"fmt"

	"github.com/staybook/staybook/internal/platform/httpx"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = fmt.Errorf("record %w", httpx.ErrNotFound)
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", httpx.ErrUnauthorized)
	// ErrInvalidTransition indicates a status change the lifecycle does not allow.
	ErrInvalidTransition = fmt.Errorf("status transition not allowed: %w", httpx.ErrConflict)
	// ErrInvalidPeriod indicates from is after to.
	ErrInvalidPeriod = fmt.Errorf("period start after end: %w", httpx.ErrValidation)
)

// Validationf builds an error that RespondError reports as 400.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", httpx.ErrValidation, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether err is any not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, httpx.ErrNotFound)
}
