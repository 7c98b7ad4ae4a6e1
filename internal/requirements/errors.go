package requirements

import (
	"errors"
	"net/http"
)

// Domain errors for requirement operations.
var (
	ErrNotFound        = errors.New("requirement not found")
	ErrKeyRequired     = errors.New("product and destination_country required")
	ErrDocTypeRequired = errors.New("doc_type required")
	ErrUnknownDocType  = errors.New("doc_type is not registered")
)

// MapHTTPStatus maps requirement domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrKeyRequired),
		errors.Is(err, ErrDocTypeRequired),
		errors.Is(err, ErrUnknownDocType):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
