package requirements

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/internal/validation"
	"github.com/JaimeStill/agrocheck/pkg/cache"
	"github.com/JaimeStill/agrocheck/pkg/query"
	"github.com/JaimeStill/agrocheck/pkg/repository"
)

// System defines the public contract for requirement resolution and administration.
type System interface {
	Handler() *Handler

	// Resolve returns the requirements for a lot's product and destination. Never empty.
	Resolve(ctx context.Context, product, country string) []validation.Requirement

	List(ctx context.Context, product, country string) ([]Requirement, error)
	Upsert(ctx context.Context, cmd UpsertCommand) (*Requirement, error)
	Delete(ctx context.Context, id uuid.UUID) error

	DocTypes(ctx context.Context) ([]DocTypeDef, error)
	UpsertDocType(ctx context.Context, def DocTypeDef) (*DocTypeDef, error)
}

type repo struct {
	db       *sql.DB
	resolver *Resolver
	logger   *slog.Logger
}

// New creates a requirement repository implementing the System interface.
func New(db *sql.DB, c cache.System, logger *slog.Logger) System {
	r := &repo{
		db:     db,
		logger: logger.With("system", "requirements"),
	}
	r.resolver = NewResolver(r, c, r.logger)
	return r
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Resolve(ctx context.Context, product, country string) []validation.Requirement {
	return r.resolver.Resolve(ctx, product, country)
}

func (r *repo) Mappings(ctx context.Context, product, country string) ([]validation.Requirement, error) {
	q := `SELECT doc_type, required FROM doc_requirements
		WHERE product = $1 AND destination_country = $2
		ORDER BY created_at, doc_type`

	return repository.QueryMany(ctx, r.db, q, []any{product, country}, func(s repository.Scanner) (validation.Requirement, error) {
		var req validation.Requirement
		err := s.Scan(&req.DocType, &req.Required)
		return req, err
	})
}

func (r *repo) Defaults(ctx context.Context) ([]validation.Requirement, error) {
	q := `SELECT doc_type FROM required_docs
		WHERE default_required = true
		ORDER BY doc_type`

	return repository.QueryMany(ctx, r.db, q, nil, func(s repository.Scanner) (validation.Requirement, error) {
		req := validation.Requirement{Required: true}
		err := s.Scan(&req.DocType)
		return req, err
	})
}

func (r *repo) List(ctx context.Context, product, country string) ([]Requirement, error) {
	var p, c *string
	if product != "" {
		p = &product
	}
	if country != "" {
		c = &country
	}

	q, args := query.NewBuilder(projection, defaultSort).
		WhereEquals("Product", p).
		WhereEquals("DestinationCountry", c).
		Build()

	reqs, err := repository.QueryMany(ctx, r.db, q, args, scanRequirement)
	if err != nil {
		return nil, fmt.Errorf("query requirements: %w", err)
	}
	return reqs, nil
}

func (r *repo) Upsert(ctx context.Context, cmd UpsertCommand) (*Requirement, error) {
	if err := cmd.normalize(); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO doc_requirements(product, destination_country, doc_type, required)
		SELECT $1, $2, d.doc_type, $4 FROM required_docs d WHERE d.doc_type = $3
		ON CONFLICT (product, destination_country, doc_type) DO UPDATE SET required = EXCLUDED.required
		RETURNING id, product, destination_country, doc_type, required, created_at`

	req, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Requirement, error) {
		return repository.QueryOne(ctx, tx, q, []any{cmd.Product, cmd.DestinationCountry, cmd.DocType, cmd.Required}, scanRequirement)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrUnknownDocType, err)
	}

	r.resolver.Invalidate(ctx, req.Product, req.DestinationCountry)
	r.logger.Info("requirement upserted",
		"product", req.Product,
		"country", req.DestinationCountry,
		"doc_type", req.DocType,
	)
	return &req, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	q := `DELETE FROM doc_requirements WHERE id = $1 RETURNING product, destination_country`

	var product, country string
	err := repository.InTx(ctx, r.db, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, q, id).Scan(&product, &country)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, err)
	}

	r.resolver.Invalidate(ctx, product, country)
	r.logger.Info("requirement deleted", "id", id)
	return nil
}

func (r *repo) DocTypes(ctx context.Context) ([]DocTypeDef, error) {
	q, args := query.NewBuilder(docTypeProjection, defaultSort).Build()

	defs, err := repository.QueryMany(ctx, r.db, q, args, scanDocType)
	if err != nil {
		return nil, fmt.Errorf("query doc types: %w", err)
	}
	return defs, nil
}

func (r *repo) UpsertDocType(ctx context.Context, def DocTypeDef) (*DocTypeDef, error) {
	if err := def.normalize(); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO required_docs(doc_type, label, default_required)
		VALUES ($1, $2, $3)
		ON CONFLICT (doc_type) DO UPDATE SET label = EXCLUDED.label, default_required = EXCLUDED.default_required
		RETURNING doc_type, label, default_required`

	saved, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (DocTypeDef, error) {
		return repository.QueryOne(ctx, tx, q, []any{def.DocType, def.Label, def.DefaultRequired}, scanDocType)
	})
	if err != nil {
		return nil, err
	}

	r.resolver.InvalidateAll(ctx)
	r.logger.Info("doc type saved", "doc_type", saved.DocType, "default_required", saved.DefaultRequired)
	return &saved, nil
}
