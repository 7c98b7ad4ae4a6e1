package photos

import (
	"errors"
	"net/http"
)

// Domain errors for photo operations.
var (
	ErrNotFound     = errors.New("photo not found")
	ErrLotNotFound  = errors.New("lote no encontrado")
	ErrLotRequired  = errors.New("lot_id required")
	ErrNoFiles      = errors.New("at least one file required")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrNotImage     = errors.New("file is not an image")
)

// MapHTTPStatus maps photo domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrLotNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrLotRequired), errors.Is(err, ErrNoFiles), errors.Is(err, ErrNotImage):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}
