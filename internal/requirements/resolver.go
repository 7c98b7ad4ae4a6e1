package requirements

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/agrocheck/internal/validation"
	"github.com/JaimeStill/agrocheck/pkg/cache"
)

// Source is the store the resolver reads from.
type Source interface {
	// Mappings returns the exact product/country mappings.
	Mappings(ctx context.Context, product, country string) ([]validation.Requirement, error)
	// Defaults returns the default-required document types, each marked required.
	Defaults(ctx context.Context) ([]validation.Requirement, error)
}

// Resolver produces the requirement list for a lot. It never fails: store
// errors degrade to the built-in fallback and cache errors to a direct lookup.
type Resolver struct {
	src    Source
	cache  cache.System
	logger *slog.Logger
}

// NewResolver creates a Resolver reading from src and memoizing in c.
func NewResolver(src Source, c cache.System, logger *slog.Logger) *Resolver {
	return &Resolver{
		src:    src,
		cache:  c,
		logger: logger.With("component", "resolver"),
	}
}

// Resolve returns the requirements for product and country. The result is
// never empty.
func (r *Resolver) Resolve(ctx context.Context, product, country string) []validation.Requirement {
	key := cacheKey(product, country)

	cached, ok, err := cache.GetJSON[[]validation.Requirement](ctx, r.cache, key)
	if err != nil {
		r.logger.WarnContext(ctx, "requirement cache read failed", "key", key, "error", err)
	}
	if ok && len(cached) > 0 {
		return cached
	}

	reqs, err := r.lookup(ctx, product, country)
	if err != nil {
		r.logger.WarnContext(ctx, "requirement lookup failed, using fallback",
			"product", product,
			"country", country,
			"error", err,
		)
		return Fallback()
	}

	if err := cache.SetJSON(ctx, r.cache, key, reqs); err != nil {
		r.logger.WarnContext(ctx, "requirement cache write failed", "key", key, "error", err)
	}
	return reqs
}

func (r *Resolver) lookup(ctx context.Context, product, country string) ([]validation.Requirement, error) {
	reqs, err := r.src.Mappings(ctx, product, country)
	if err != nil {
		return nil, err
	}
	if len(reqs) > 0 {
		return reqs, nil
	}

	reqs, err = r.src.Defaults(ctx)
	if err != nil {
		return nil, err
	}
	if len(reqs) > 0 {
		return reqs, nil
	}

	return Fallback(), nil
}

// Invalidate drops the memoized list for product and country.
func (r *Resolver) Invalidate(ctx context.Context, product, country string) {
	if err := r.cache.Delete(ctx, cacheKey(product, country)); err != nil {
		r.logger.WarnContext(ctx, "requirement cache invalidation failed", "error", err)
	}
}

// InvalidateAll drops every memoized list.
func (r *Resolver) InvalidateAll(ctx context.Context) {
	if err := r.cache.DeletePrefix(ctx, keyPrefix); err != nil {
		r.logger.WarnContext(ctx, "requirement cache invalidation failed", "error", err)
	}
}

const keyPrefix = "requirements:"

func cacheKey(product, country string) string {
	return keyPrefix + product + ":" + country
}
