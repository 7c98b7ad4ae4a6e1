package lots

import (
	"errors"
	"net/http"
)

// Domain errors for lot operations.
var (
	ErrNotFound            = errors.New("lot not found")
	ErrDuplicate           = errors.New("lot code already exists")
	ErrInvalidStatus       = errors.New("status must be pendiente, aprobado, or rechazado")
	ErrInvalidID           = errors.New("invalid lot id")
	ErrProductRequired     = errors.New("product required")
	ErrCodeRequired        = errors.New("lot_code required")
	ErrDestinationRequired = errors.New("destination_country required")
	ErrInvalidResult       = errors.New("result violates lot constraints")
)

// MapHTTPStatus maps lot domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrProductRequired),
		errors.Is(err, ErrCodeRequired),
		errors.Is(err, ErrDestinationRequired),
		errors.Is(err, ErrInvalidResult):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
