package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/pkg/pagination"
	"github.com/JaimeStill/agrocheck/pkg/query"
	"github.com/JaimeStill/agrocheck/pkg/repository"
)

// System defines the public contract for reading the audit trail. Writes go
// through Record inside the caller's transaction.
type System interface {
	Handler() *Handler
	List(
		ctx context.Context,
		userID, lotID uuid.UUID,
		page pagination.PageRequest,
	) (*pagination.PageResult[Event], error)
}

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an event repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "events"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	userID, lotID uuid.UUID,
	page pagination.PageRequest,
) (*pagination.PageResult[Event], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("UserID", userID).
		WhereEquals("LotID", lotID)

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	events, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanEvent)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}

	result := pagination.NewPageResult(events, total, page.Page, page.PageSize)
	return &result, nil
}

const insertEvent = `
	INSERT INTO lot_events(lot_id, user_id, event_type, data)
	VALUES ($1, $2, $3, $4)`

// Record appends an event using e, typically the transaction that carries
// the change being audited.
func Record(ctx context.Context, e repository.Executor, cmd RecordCommand) error {
	data := []byte("{}")
	if cmd.Data != nil {
		encoded, err := json.Marshal(cmd.Data)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidData, err)
		}
		data = encoded
	}

	if _, err := e.ExecContext(ctx, insertEvent, cmd.LotID, cmd.UserID, cmd.Type, data); err != nil {
		return fmt.Errorf("record %s event: %w", cmd.Type, err)
	}
	return nil
}
