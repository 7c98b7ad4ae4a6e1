package api

import (
	"github.com/JaimeStill/agrocheck/internal/config"
	"github.com/JaimeStill/agrocheck/internal/infrastructure"
	"github.com/JaimeStill/agrocheck/internal/workflow"
	"github.com/JaimeStill/agrocheck/pkg/pagination"
)

// Runtime is the infrastructure as seen by API handlers, plus the settings
// the domain systems are built with.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Pipeline   workflow.Config
}

// NewRuntime shares infra's systems under an api-scoped logger. infra itself
// is left untouched.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Pagination:     cfg.API.Pagination,
		Pipeline:       cfg.Pipeline,
	}
}
