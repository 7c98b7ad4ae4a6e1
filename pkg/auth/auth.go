// Package auth verifies bearer tokens issued by the identity provider and
// carries the authenticated user through the request context.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrMissingToken indicates the request carried no bearer token.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken indicates the token failed verification.
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Claims is the verified identity extracted from a token.
type Claims struct {
	UserID uuid.UUID
	Email  string
}

// Verifier validates a raw bearer token.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// New creates the verifier for the configured mode.
func New(ctx context.Context, cfg *Config) (Verifier, error) {
	switch cfg.Mode {
	case ModeHMAC:
		return NewHMAC(cfg.Secret, cfg.Issuer, cfg.Audience), nil
	case ModeJWKS:
		return NewJWKS(ctx, cfg.Issuer, cfg.JWKSURL, cfg.Audience), nil
	default:
		return nil, fmt.Errorf("unknown auth mode: %s", cfg.Mode)
	}
}

type ctxKey struct{}

// WithClaims returns a context carrying c.
func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the claims stored by the auth middleware.
func FromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(Claims)
	return c, ok
}

// UserID returns the authenticated user id, or uuid.Nil when absent.
func UserID(ctx context.Context) uuid.UUID {
	c, _ := FromContext(ctx)
	return c.UserID
}

func parseSubject(sub string) (uuid.UUID, error) {
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}
	return id, nil
}
