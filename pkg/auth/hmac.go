package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type hmacVerifier struct {
	secret []byte
	opts   []jwt.ParserOption
}

// NewHMAC creates a verifier for HS256 tokens signed with secret.
// Empty issuer or audience skips that check.
func NewHMAC(secret, issuer, audience string) Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	return &hmacVerifier{
		secret: []byte(secret),
		opts:   opts,
	}
}

func (v *hmacVerifier) Verify(_ context.Context, raw string) (Claims, error) {
	var tc tokenClaims
	_, err := jwt.ParseWithClaims(raw, &tc, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, v.opts...)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	id, err := parseSubject(tc.Subject)
	if err != nil {
		return Claims{}, err
	}

	return Claims{UserID: id, Email: tc.Email}, nil
}
