// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"
)

// Sentinel errors for domain layer. Domain packages wrap these so handlers can
// map any of their errors with RespondError.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// StatusFor returns the HTTP status RespondError would use for err.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	switch status {
	case http.StatusNotFound:
		Problem(w, status, "Not Found", err.Error())
	case http.StatusConflict:
		Problem(w, status, "Conflict", err.Error())
	case http.StatusBadRequest:
		Problem(w, status, "Validation Failed", err.Error())
	case http.StatusForbidden:
		Problem(w, status, "Forbidden", err.Error())
	case http.StatusUnauthorized:
		Problem(w, status, "Unauthorized", err.Error())
	default:
		Problem(w, status, "Internal Error", "")
	}
}

// Fail logs server-side failures and writes the mapped problem response.
func Fail(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	if StatusFor(err) >= http.StatusInternalServerError {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error(op, slog.Any("error", err))
	}
	RespondError(w, err)
}
