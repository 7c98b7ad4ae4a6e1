// Package cache provides a small key/value cache backed by Redis with
// lifecycle coordination. Cache failures never fail the caller's operation;
// they are reported so the caller can fall through to the source of truth.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/agrocheck/pkg/lifecycle"
)

// System is a byte-oriented cache.
type System interface {
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value with the configured TTL.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix removes every key beginning with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// New creates the Redis cache when an address is configured, otherwise a
// cache that never stores anything.
func New(cfg *Config, logger *slog.Logger) System {
	logger = logger.With("system", "cache")
	if !cfg.Enabled() {
		logger.Info("cache disabled")
		return noop{}
	}
	return newRedis(cfg, logger)
}

// GetJSON decodes a cached JSON value into T.
func GetJSON[T any](ctx context.Context, c System, key string) (T, bool, error) {
	var v T
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return v, false, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return v, true, nil
}

// SetJSON encodes v as JSON and stores it.
func SetJSON[T any](ctx context.Context, c System, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cached %s: %w", key, err)
	}
	return c.Set(ctx, key, data)
}

type noop struct{}

func (noop) Start(*lifecycle.Coordinator) error { return nil }

func (noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (noop) Set(context.Context, string, []byte) error { return nil }

func (noop) Delete(context.Context, ...string) error { return nil }

func (noop) DeletePrefix(context.Context, string) error { return nil }

const pingTimeout = 5 * time.Second
