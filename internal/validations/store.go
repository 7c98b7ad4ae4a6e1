package validations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/internal/events"
	"github.com/JaimeStill/agrocheck/internal/lots"
	"github.com/JaimeStill/agrocheck/internal/photos"
	"github.com/JaimeStill/agrocheck/internal/profiles"
	"github.com/JaimeStill/agrocheck/pkg/repository"
)

// Commit is everything one counted run writes.
type Commit struct {
	UserID uuid.UUID
	LotID  uuid.UUID
	// Result is nil for runs that leave the lot state untouched.
	Result  *lots.Result
	Reviews []photos.Review
	Events  []events.RecordCommand
}

// Apply writes c using e: the lot patch, the reviews, the quota increment,
// then the events. It stops at the first failure.
func (c Commit) Apply(ctx context.Context, e repository.Executor) error {
	if c.Result != nil {
		if err := lots.ApplyResult(ctx, e, c.UserID, c.LotID, *c.Result); err != nil {
			if errors.Is(err, lots.ErrNotFound) {
				return ErrLotNotFound
			}
			return fmt.Errorf("update lot: %w", err)
		}
	}

	if len(c.Reviews) > 0 {
		if err := photos.RecordReviews(ctx, e, c.Reviews); err != nil {
			return fmt.Errorf("record reviews: %w", err)
		}
	}

	if err := profiles.ConsumeRun(ctx, e, c.UserID); err != nil {
		return err
	}

	for _, ev := range c.Events {
		if err := events.Record(ctx, e, ev); err != nil {
			return err
		}
	}
	return nil
}

// Store persists counted runs.
type Store interface {
	Commit(ctx context.Context, c Commit) error
}

type pgStore struct {
	db *sql.DB
}

// NewStore creates a Store committing each run in one transaction.
func NewStore(db *sql.DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Commit(ctx context.Context, c Commit) error {
	return repository.InTx(ctx, s.db, func(tx *sql.Tx) error {
		return c.Apply(ctx, tx)
	})
}
