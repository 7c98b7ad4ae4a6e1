package api

import (
	"github.com/JaimeStill/agrocheck/internal/certificates"
	"github.com/JaimeStill/agrocheck/internal/documents"
	"github.com/JaimeStill/agrocheck/internal/events"
	"github.com/JaimeStill/agrocheck/internal/lots"
	"github.com/JaimeStill/agrocheck/internal/photos"
	"github.com/JaimeStill/agrocheck/internal/profiles"
	"github.com/JaimeStill/agrocheck/internal/prompts"
	"github.com/JaimeStill/agrocheck/internal/requirements"
	"github.com/JaimeStill/agrocheck/internal/validations"
	"github.com/JaimeStill/agrocheck/internal/workflow"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Lots         lots.System
	Documents    documents.System
	Photos       photos.System
	Profiles     profiles.System
	Events       events.System
	Prompts      prompts.System
	Requirements requirements.System
	Certificates certificates.System
	Validations  validations.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	lotsSystem := lots.New(db, runtime.Logger, runtime.Pagination)
	docsSystem := documents.New(db, runtime.Storage, runtime.Logger, runtime.Pagination)
	photosSystem := photos.New(db, runtime.Storage, runtime.Logger)
	profilesSystem := profiles.New(db, runtime.Logger)
	eventsSystem := events.New(db, runtime.Logger, runtime.Pagination)
	promptsSystem := prompts.New(db, runtime.Logger, runtime.Pagination)
	reqsSystem := requirements.New(db, runtime.Cache, runtime.Logger)
	certsSystem := certificates.New(runtime.Storage, runtime.Logger)

	validationsSystem := validations.New(
		validations.Deps{
			Lots:         lotsSystem,
			Documents:    docsSystem,
			Photos:       photosSystem,
			Profiles:     profilesSystem,
			Requirements: reqsSystem,
			Certificates: certsSystem,
			Runtime: &workflow.Runtime{
				Model:   runtime.Model,
				Storage: runtime.Storage,
				Prompts: promptsSystem,
				Config:  runtime.Pipeline,
				Logger:  runtime.Logger,
			},
			Store: validations.NewStore(db),
		},
		runtime.Logger,
	)

	return &Domain{
		Lots:         lotsSystem,
		Documents:    docsSystem,
		Photos:       photosSystem,
		Profiles:     profilesSystem,
		Events:       eventsSystem,
		Prompts:      promptsSystem,
		Requirements: reqsSystem,
		Certificates: certsSystem,
		Validations:  validationsSystem,
	}
}
