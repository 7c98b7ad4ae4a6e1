package lots

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/pkg/pagination"
	"github.com/JaimeStill/agrocheck/pkg/query"
	"github.com/JaimeStill/agrocheck/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a lot repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "lots"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	userID uuid.UUID,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Lot], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("UserID", userID).
		WhereSearch(page.Search, "LotCode", "Variety", "Product")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count lots: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	lots, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, Scan)
	if err != nil {
		return nil, fmt.Errorf("query lots: %w", err)
	}

	result := pagination.NewPageResult(lots, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, userID, id uuid.UUID) (*Lot, error) {
	q, args := query.NewBuilder(projection).
		WhereEquals("ID", id).
		WhereEquals("UserID", userID).
		BuildSingleOrNull()

	l, err := repository.QueryOne(ctx, r.db, q, args, Scan)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &l, nil
}

func (r *repo) FindByCode(ctx context.Context, userID uuid.UUID, code string) (*Lot, error) {
	q, args := query.NewBuilder(projection).
		WhereEquals("LotCode", code).
		WhereEquals("UserID", userID).
		BuildSingleOrNull()

	l, err := repository.QueryOne(ctx, r.db, q, args, Scan)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &l, nil
}

func (r *repo) Create(ctx context.Context, userID uuid.UUID, cmd CreateCommand) (*Lot, error) {
	if err := cmd.normalize(); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO lots(user_id, product, variety, lot_code, origin_region, origin_province, destination_country)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + Returning

	args := []any{
		userID,
		cmd.Product,
		cmd.Variety,
		cmd.LotCode,
		cmd.OriginRegion,
		cmd.OriginProvince,
		cmd.DestinationCountry,
	}

	l, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Lot, error) {
		return repository.QueryOne(ctx, tx, q, args, Scan)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("lot created", "id", l.ID, "lot_code", l.LotCode)
	return &l, nil
}

func (r *repo) Update(ctx context.Context, userID, id uuid.UUID, cmd UpdateCommand) (*Lot, error) {
	if err := cmd.normalize(); err != nil {
		return nil, err
	}

	q := `
		UPDATE lots
		SET product = $1, variety = $2, lot_code = $3, origin_region = $4,
			origin_province = $5, destination_country = $6, updated_at = now()
		WHERE id = $7 AND user_id = $8
		RETURNING ` + Returning

	args := []any{
		cmd.Product,
		cmd.Variety,
		cmd.LotCode,
		cmd.OriginRegion,
		cmd.OriginProvince,
		cmd.DestinationCountry,
		id,
		userID,
	}

	l, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Lot, error) {
		return repository.QueryOne(ctx, tx, q, args, Scan)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("lot updated", "id", l.ID)
	return &l, nil
}
