// Package api mounts the domain systems under the authenticated /api module.
package api

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/agrocheck/internal/config"
	"github.com/JaimeStill/agrocheck/internal/infrastructure"
	"github.com/JaimeStill/agrocheck/pkg/auth"
	"github.com/JaimeStill/agrocheck/pkg/middleware"
	"github.com/JaimeStill/agrocheck/pkg/module"
)

// NewModule builds the API module. Middleware runs CORS first so preflight
// requests never reach token verification.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	if infra.Database == nil || infra.Storage == nil || infra.Verifier == nil {
		return nil, errors.New("api: infrastructure is not initialized")
	}

	rt := NewRuntime(cfg, infra)

	mux := http.NewServeMux()
	registerRoutes(mux, NewDomain(rt), cfg, rt)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(
		middleware.CORS(&cfg.API.CORS),
		middleware.Logger(rt.Logger),
		auth.Middleware(rt.Verifier, rt.Logger),
	)
	return m, nil
}
