package apperrors

import (
	"errors"
	"net/http"
)

// Sentinel errors shared by the services. Wrap them with fmt.Errorf("...: %w", ErrX)
// so handlers can map them to a status code with StatusCode.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrPersistence  = errors.New("persistence failure")

	// ErrNoChange is returned when an update would not modify any field.
	// Callers treat it as a successful no-op.
	ErrNoChange = errors.New("no changes made")
)

// StatusCode maps an error chain to the HTTP status the API answers with.
func StatusCode(err error) int {
	switch {
	case err == nil, errors.Is(err, ErrNoChange):
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
