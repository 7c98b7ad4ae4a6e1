package events

import (
	"errors"
	"net/http"
)

// Domain errors for event operations.
var (
	ErrLotRequired = errors.New("lot_id required")
	ErrInvalidData = errors.New("event data is not encodable")
)

// MapHTTPStatus maps event domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrLotRequired) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
