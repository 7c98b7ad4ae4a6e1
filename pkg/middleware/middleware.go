// Package middleware provides the HTTP middleware stack applied to modules
// along with the CORS and request logging middleware.
package middleware

import (
	"net/http"
	"slices"
)

// Func wraps a handler with additional behavior.
type Func func(http.Handler) http.Handler

// System manages an ordered stack of HTTP middleware. The first middleware
// registered is the outermost when applied.
type System interface {
	Use(mw ...Func)
	Apply(handler http.Handler) http.Handler
	Len() int
}

type stack []Func

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

func (s *stack) Use(mw ...Func) {
	*s = append(*s, mw...)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for _, mw := range slices.Backward(*s) {
		handler = mw(handler)
	}
	return handler
}

func (s *stack) Len() int {
	return len(*s)
}
