package certificates

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/internal/lots"
	"github.com/JaimeStill/agrocheck/pkg/storage"
)

// ContentType of rendered certificates.
const ContentType = "application/pdf"

// System defines the public contract for certificate operations.
type System interface {
	Handler(lots lots.System) *Handler

	// Issue renders the certificate for lot, stores it, and returns its key.
	Issue(ctx context.Context, lot lots.Lot, company, observations string) (string, error)
	// SignedURL returns a short-lived download link for key.
	SignedURL(ctx context.Context, key string) (string, error)
	// Discard removes a stored certificate whose commit did not happen.
	Discard(ctx context.Context, key string) error
}

type issuer struct {
	storage storage.System
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a certificate System storing PDFs in store.
func New(store storage.System, logger *slog.Logger) System {
	return &issuer{
		storage: store,
		logger:  logger.With("system", "certificates"),
		now:     time.Now,
	}
}

// Key returns the storage key of a certificate issued at t.
func Key(userID, lotID uuid.UUID, t time.Time) string {
	return fmt.Sprintf("certs/%s/%s/cert_%d.pdf", userID, lotID, t.UnixMilli())
}

func (s *issuer) Handler(lots lots.System) *Handler {
	return NewHandler(s, lots, s.logger)
}

func (s *issuer) Issue(ctx context.Context, lot lots.Lot, company, observations string) (string, error) {
	issuedAt := s.now()

	data, err := Render(FromLot(lot, company, observations, issuedAt))
	if err != nil {
		return "", err
	}

	key := Key(lot.UserID, lot.ID, issuedAt)
	if err := s.storage.Upload(ctx, key, bytes.NewReader(data), ContentType); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpload, err)
	}

	s.logger.InfoContext(ctx, "certificate issued",
		"lot_id", lot.ID,
		"key", key,
		"size", len(data),
	)
	return key, nil
}

func (s *issuer) SignedURL(ctx context.Context, key string) (string, error) {
	url, err := s.storage.SignedURL(ctx, key, URLTTL)
	if err != nil {
		return "", fmt.Errorf("sign certificate: %w", err)
	}
	return url, nil
}

func (s *issuer) Discard(ctx context.Context, key string) error {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "certificate discard failed", "key", key, "error", err)
		return fmt.Errorf("discard certificate: %w", err)
	}
	return nil
}
