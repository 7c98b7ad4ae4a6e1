package validations

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/agrocheck/internal/certificates"
	"github.com/JaimeStill/agrocheck/internal/profiles"
	"github.com/JaimeStill/agrocheck/internal/workflow"
)

// Errors reported to callers. Messages are shown to the user as-is.
var (
	ErrLotRequired      = errors.New("Falta lot_id")
	ErrLotNotFound      = errors.New("Lote no encontrado")
	ErrChatInput        = errors.New("Falta lot_id o message")
	ErrApprovedRequired = errors.New("Falta approved")
)

// QuotaError refuses a run that would exceed the monthly AI quota.
type QuotaError struct {
	Used  int
	Quota int
}

func (e *QuotaError) Error() string {
	return profiles.ErrQuotaExceeded.Error()
}

func (e *QuotaError) Unwrap() error {
	return profiles.ErrQuotaExceeded
}

// MapHTTPStatus maps validation errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrLotRequired),
		errors.Is(err, ErrChatInput),
		errors.Is(err, ErrApprovedRequired):
		return http.StatusBadRequest
	case errors.Is(err, ErrLotNotFound):
		return http.StatusNotFound
	case errors.Is(err, profiles.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, certificates.ErrUpload):
		return http.StatusBadGateway
	}
	return workflow.MapHTTPStatus(err)
}
