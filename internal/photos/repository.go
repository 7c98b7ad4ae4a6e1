package photos

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/internal/events"
	"github.com/JaimeStill/agrocheck/pkg/query"
	"github.com/JaimeStill/agrocheck/pkg/repository"
	"github.com/JaimeStill/agrocheck/pkg/storage"
)

// System defines the public contract for photo operations.
// Every operation is scoped to the owning user.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// ListByLot returns the lot's photos, oldest first.
	ListByLot(ctx context.Context, userID, lotID uuid.UUID) ([]Photo, error)
	// Create uploads each file independently; one failure does not stop the batch.
	Create(ctx context.Context, userID, lotID uuid.UUID, files []FileUpload) ([]BatchResult, error)
	// Reviews returns the lot's inspection reviews, oldest first.
	Reviews(ctx context.Context, userID, lotID uuid.UUID) ([]Review, error)
}

type repo struct {
	db      *sql.DB
	storage storage.System
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a photo repository implementing the System interface.
func New(db *sql.DB, store storage.System, logger *slog.Logger) System {
	return &repo{
		db:      db,
		storage: store,
		logger:  logger.With("system", "photos"),
		now:     time.Now,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, maxUploadSize)
}

func (r *repo) ListByLot(ctx context.Context, userID, lotID uuid.UUID) ([]Photo, error) {
	q, args := query.NewBuilder(projection, chronological).
		WhereEquals("LotID", lotID).
		WhereEquals("UserID", userID).
		Build()

	photos, err := repository.QueryMany(ctx, r.db, q, args, scanPhoto)
	if err != nil {
		return nil, fmt.Errorf("query photos: %w", err)
	}
	return photos, nil
}

func (r *repo) Reviews(ctx context.Context, userID, lotID uuid.UUID) ([]Review, error) {
	q, args := query.NewBuilder(reviewProjection, chronological).
		WhereEquals("LotID", lotID).
		WhereEquals("UserID", userID).
		Build()

	reviews, err := repository.QueryMany(ctx, r.db, q, args, scanReview)
	if err != nil {
		return nil, fmt.Errorf("query photo reviews: %w", err)
	}
	return reviews, nil
}

func (r *repo) Create(ctx context.Context, userID, lotID uuid.UUID, files []FileUpload) ([]BatchResult, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	var owned bool
	if err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM lots WHERE id = $1 AND user_id = $2)",
		lotID, userID,
	).Scan(&owned); err != nil {
		return nil, fmt.Errorf("check lot: %w", err)
	}
	if !owned {
		return nil, ErrLotNotFound
	}

	results := make([]BatchResult, len(files))
	for i, f := range files {
		results[i].Filename = f.Filename

		p, err := r.createOne(ctx, userID, lotID, f)
		if err != nil {
			r.logger.Warn("photo upload failed", "lot_id", lotID, "filename", f.Filename, "error", err)
			results[i].Error = err.Error()
			continue
		}
		results[i].Photo = p
	}

	return results, nil
}

const insertPhoto = `
	INSERT INTO photos(id, lot_id, user_id, file_path, filename, content_type, size_bytes)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, lot_id, user_id, file_path, filename, content_type, size_bytes, created_at`

func (r *repo) createOne(ctx context.Context, userID, lotID uuid.UUID, f FileUpload) (*Photo, error) {
	id := uuid.New()
	key := buildStorageKey(userID, lotID, r.now(), sanitizeFilename(f.Filename))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(f.Data), f.ContentType); err != nil {
		return nil, fmt.Errorf("upload photo blob: %w", err)
	}

	args := []any{id, lotID, userID, key, f.Filename, f.ContentType, int64(len(f.Data))}

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Photo, error) {
		p, err := repository.QueryOne(ctx, tx, insertPhoto, args, scanPhoto)
		if err != nil {
			return p, err
		}
		err = events.Record(ctx, tx, events.RecordCommand{
			LotID:  lotID,
			UserID: userID,
			Type:   events.PhotoAdded,
			Data:   map[string]string{"photo_path": key},
		})
		return p, err
	})
	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, err
	}

	r.logger.Info("photo created", "id", p.ID, "lot_id", lotID)
	return &p, nil
}

const insertReview = `
	INSERT INTO lot_photo_reviews(lot_id, user_id, photo_path, product_expected, product_detected,
		confidence, ripeness, export_ready, issues, notes)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// RecordReviews appends inspection reviews using e, typically the
// transaction committing the inspection run.
func RecordReviews(ctx context.Context, e repository.Executor, reviews []Review) error {
	for _, rv := range reviews {
		issues := rv.Issues
		if issues == nil {
			issues = []string{}
		}
		data, err := json.Marshal(issues)
		if err != nil {
			return fmt.Errorf("encode review issues: %w", err)
		}

		if _, err := e.ExecContext(ctx, insertReview,
			rv.LotID,
			rv.UserID,
			rv.PhotoPath,
			rv.ProductExpected,
			rv.ProductDetected,
			rv.Confidence,
			rv.Ripeness,
			rv.ExportReady,
			data,
			rv.Notes,
		); err != nil {
			return fmt.Errorf("insert photo review: %w", err)
		}
	}
	return nil
}

func buildStorageKey(userID, lotID uuid.UUID, at time.Time, filename string) string {
	return fmt.Sprintf("photos/%s/%s/photo_%d_%s", userID, lotID, at.UnixMilli(), filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" || name == "/" {
		name = "photo"
	}
	return url.PathEscape(name)
}
