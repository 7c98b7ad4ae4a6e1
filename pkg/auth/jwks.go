package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

type jwksVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewJWKS creates a verifier that checks tokens against the remote key set
// at jwksURL. Keys are fetched lazily and refreshed on unknown key ids.
func NewJWKS(ctx context.Context, issuer, jwksURL, audience string) Verifier {
	keySet := oidc.NewRemoteKeySet(ctx, jwksURL)

	cfg := &oidc.Config{
		ClientID:             audience,
		SkipClientIDCheck:    audience == "",
		SupportedSigningAlgs: []string{oidc.RS256, oidc.ES256},
	}

	return &jwksVerifier{
		verifier: oidc.NewVerifier(issuer, keySet, cfg),
	}
}

func (v *jwksVerifier) Verify(ctx context.Context, raw string) (Claims, error) {
	token, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	var extra struct {
		Email string `json:"email"`
	}
	if err := token.Claims(&extra); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	id, err := parseSubject(token.Subject)
	if err != nil {
		return Claims{}, err
	}

	return Claims{UserID: id, Email: extra.Email}, nil
}
