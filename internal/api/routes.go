package api

import (
	"net/http"

	"github.com/JaimeStill/agrocheck/internal/config"
	"github.com/JaimeStill/agrocheck/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	maxUpload := cfg.API.MaxUploadSizeBytes()
	storageHandler := newStorageHandler(runtime.Storage, runtime.Logger)

	patterns := routes.Register(
		mux,
		domain.Lots.Handler().Routes(),
		domain.Documents.Handler(maxUpload).Routes(),
		domain.Photos.Handler(maxUpload).Routes(),
		domain.Profiles.Handler().Routes(),
		domain.Events.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
		domain.Requirements.Handler().Routes(),
		domain.Certificates.Handler(domain.Lots).Routes(),
		domain.Validations.Handler().Routes(),
		storageHandler.routes(),
	)

	runtime.Logger.Info("routes registered", "count", len(patterns))
}
