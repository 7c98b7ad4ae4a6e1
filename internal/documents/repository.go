package documents

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/internal/events"
	"github.com/JaimeStill/agrocheck/internal/validation"
	"github.com/JaimeStill/agrocheck/pkg/pagination"
	"github.com/JaimeStill/agrocheck/pkg/query"
	"github.com/JaimeStill/agrocheck/pkg/repository"
	"github.com/JaimeStill/agrocheck/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
	now        func() time.Time
}

// New creates a document repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "documents"),
		pagination: pagination,
		now:        time.Now,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	userID uuid.UUID,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("UserID", userID).
		WhereSearch(page.Search, "Filename", "LotCode")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, userID, id uuid.UUID) (*Document, error) {
	q, args := query.NewBuilder(projection).
		WhereEquals("ID", id).
		WhereEquals("UserID", userID).
		BuildSingleOrNull()

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (r *repo) Latest(ctx context.Context, userID, lotID uuid.UUID, perType int) (map[validation.DocType][]Document, error) {
	q, args := query.NewBuilder(projection, defaultSort).
		WhereEquals("LotID", lotID).
		WhereEquals("UserID", userID).
		Build()

	docs, err := repository.QueryMany(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query lot documents: %w", err)
	}

	return GroupLatest(docs, perType), nil
}

// GroupLatest groups newest-first docs by type, keeping at most perType of each.
// A perType below 1 keeps one.
func GroupLatest(docs []Document, perType int) map[validation.DocType][]Document {
	perType = max(perType, 1)
	byType := make(map[validation.DocType][]Document)
	for _, d := range docs {
		if len(byType[d.DocType]) < perType {
			byType[d.DocType] = append(byType[d.DocType], d)
		}
	}
	return byType
}

// The CTE keeps the document alias so the projection's column list and the
// lot join apply to the inserted row unchanged.
var insertDocument = `
	WITH d AS (
		INSERT INTO documents(id, lot_id, user_id, doc_type, file_path, filename, content_type, size_bytes, page_count)
		SELECT $1::uuid, l.id, l.user_id, $4::text, $5::text, $6::text, $7::text, $8::bigint, $9::int
		FROM lots l WHERE l.id = $2 AND l.user_id = $3
		RETURNING *
	)
	SELECT ` + projection.Columns() + `
	FROM d JOIN public.lots l ON l.id = d.lot_id`

func (r *repo) Create(ctx context.Context, userID uuid.UUID, cmd CreateCommand) (*Document, error) {
	if !ValidDocType(cmd.DocType) {
		return nil, ErrInvalidDocType
	}

	id := uuid.New()
	key := buildStorageKey(userID, cmd.LotID, cmd.DocType, r.now(), sanitizeFilename(cmd.Filename))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload document blob: %w", err)
	}

	insertArgs := []any{
		id,
		cmd.LotID,
		userID,
		cmd.DocType,
		key,
		cmd.Filename,
		cmd.ContentType,
		int64(len(cmd.Data)),
		cmd.PageCount,
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		d, err := repository.QueryOne(ctx, tx, insertDocument, insertArgs, scanDocument)
		if err != nil {
			return d, err
		}

		err = events.Record(ctx, tx, events.RecordCommand{
			LotID:  d.LotID,
			UserID: userID,
			Type:   events.DocUploaded,
			Data: map[string]any{
				"doc_type":  d.DocType,
				"file_path": d.FilePath,
			},
		})
		return d, err
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrLotNotFound, ErrDuplicate)
	}

	r.logger.Info("document created", "id", d.ID, "lot_id", d.LotID, "doc_type", d.DocType)
	return &d, nil
}

func (r *repo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	doc, err := r.Find(ctx, userID, id)
	if err != nil {
		return err
	}

	err = repository.InTx(ctx, r.db, func(tx *sql.Tx) error {
		return repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM documents WHERE id = $1 AND user_id = $2",
			id, userID,
		)
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, doc.FilePath); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", doc.FilePath,
			"error", delErr,
		)
	}

	r.logger.Info("document deleted", "id", id)
	return nil
}

// ValidDocType reports whether t is a non-empty upper-case code of letters,
// digits, and underscores.
func ValidDocType(t validation.DocType) bool {
	if t == "" {
		return false
	}
	for _, c := range t {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '_' {
			return false
		}
	}
	return true
}

func buildStorageKey(userID, lotID uuid.UUID, docType validation.DocType, at time.Time, filename string) string {
	return fmt.Sprintf("docs/%s/%s/%s_%d_%s", userID, lotID, docType, at.UnixMilli(), filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" || name == "/" {
		name = "document"
	}
	return url.PathEscape(name)
}
