package profiles

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/pkg/query"
	"github.com/JaimeStill/agrocheck/pkg/repository"
)

// System defines the public contract for profile operations.
type System interface {
	Handler() *Handler

	// Find returns the stored profile. Returns ErrNotFound when absent.
	Find(ctx context.Context, userID uuid.UUID) (*Profile, error)
	// Ensure returns the profile, provisioning a default one on first use.
	Ensure(ctx context.Context, userID uuid.UUID, email string) (*Profile, error)
	Update(ctx context.Context, userID uuid.UUID, cmd UpdateCommand) (*Profile, error)
}

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a profile repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "profiles"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Find(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", userID)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanProfile)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, err)
	}
	return &p, nil
}

func (r *repo) Ensure(ctx context.Context, userID uuid.UUID, email string) (*Profile, error) {
	p, err := r.Find(ctx, userID)
	if !errors.Is(err, ErrNotFound) {
		return p, err
	}

	var mail *string
	if email != "" {
		mail = &email
	}

	q := `
		INSERT INTO profiles(id, email)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET email = COALESCE(profiles.email, EXCLUDED.email)
		RETURNING ` + returning

	created, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Profile, error) {
		return repository.QueryOne(ctx, tx, q, []any{userID, mail}, scanProfile)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("profile provisioned", "id", userID)
	return &created, nil
}

func (r *repo) Update(ctx context.Context, userID uuid.UUID, cmd UpdateCommand) (*Profile, error) {
	name := strings.TrimSpace(cmd.FullName)
	if name == "" {
		return nil, ErrNameRequired
	}

	q := `
		UPDATE profiles SET full_name = $1, updated_at = now()
		WHERE id = $2
		RETURNING ` + returning

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Profile, error) {
		return repository.QueryOne(ctx, tx, q, []any{name, userID}, scanProfile)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, err)
	}

	r.logger.Info("profile updated", "id", userID)
	return &p, nil
}

const consumeRun = `
	UPDATE profiles SET ia_used = ia_used + 1, updated_at = now()
	WHERE id = $1 AND ia_used + 1 <= ia_quota`

// ConsumeRun counts one AI run against the quota using e, typically the
// transaction committing the run. The increment is conditional so concurrent
// runs cannot exceed the quota; it returns ErrQuotaExceeded when no row matches.
func ConsumeRun(ctx context.Context, e repository.Executor, userID uuid.UUID) error {
	if err := repository.ExecExpectOne(ctx, e, consumeRun, userID); err != nil {
		return repository.MapError(err, ErrQuotaExceeded, err)
	}
	return nil
}
