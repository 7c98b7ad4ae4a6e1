package profiles

import (
	"errors"
	"net/http"
)

// Domain errors for profile operations.
var (
	ErrNotFound      = errors.New("profile not found")
	ErrQuotaExceeded = errors.New("no te quedan usos de IA este mes")
	ErrNameRequired  = errors.New("full_name required")
)

// MapHTTPStatus maps profile domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrNameRequired):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
