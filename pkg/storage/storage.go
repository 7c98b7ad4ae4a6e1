// Package storage provides blob storage operations with Azure Blob Storage
// and MinIO implementations, including time-limited signed URL issuance.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/agrocheck/pkg/lifecycle"
)

// Signed URL validity bounds.
const (
	MinSignedURLTTL = 60 * time.Second
	MaxSignedURLTTL = 300 * time.Second
)

// Blob is a downloaded object stream with its metadata. The caller must close Body.
type Blob struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that initializes the storage container.
	Start(lc *lifecycle.Coordinator) error
	// Upload streams data to a blob at the given key with the specified content type.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	// Download returns the blob at the given key. Returns ErrNotFound if the blob does not exist.
	Download(ctx context.Context, key string) (*Blob, error)
	// Delete removes the blob at the given key. Returns ErrNotFound if the blob does not exist.
	Delete(ctx context.Context, key string) error
	// Exists reports whether a blob exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
	// SignedURL issues a credential-free read URL valid for ttl.
	// The ttl must fall within [MinSignedURLTTL, MaxSignedURLTTL].
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// New creates the storage system for the configured provider.
// Clients are constructed eagerly but no network call is made until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage", "provider", cfg.Provider)

	switch cfg.Provider {
	case ProviderAzure:
		return newAzure(cfg, logger)
	case ProviderMinio:
		return newMinio(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}

// ValidateTTL reports whether ttl falls within the signed URL window.
func ValidateTTL(ttl time.Duration) error {
	if ttl < MinSignedURLTTL || ttl > MaxSignedURLTTL {
		return fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
	}
	return nil
}

// OwnedBy reports whether key lives in the namespace of owner.
// Keys are laid out as {area}/{owner}/... so the second segment identifies the owner.
func OwnedBy(key, owner string) bool {
	parts := strings.SplitN(key, "/", 3)
	return len(parts) == 3 && parts[1] == owner && parts[2] != ""
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
