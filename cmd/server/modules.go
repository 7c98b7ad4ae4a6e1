package main

import (
	"github.com/JaimeStill/agrocheck/internal/api"
	"github.com/JaimeStill/agrocheck/internal/config"
	"github.com/JaimeStill/agrocheck/internal/infrastructure"
	"github.com/JaimeStill/agrocheck/pkg/module"
)

// Modules are the prefixed sub-applications mounted on the root router.
type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}
	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

// buildRouter registers the unauthenticated probes outside every module.
func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()
	router.HandleNative("GET /healthz", healthz)
	router.HandleNative("GET /readyz", readyz(infra.Lifecycle, infra.Logger))
	return router
}
