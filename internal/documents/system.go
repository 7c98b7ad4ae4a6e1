package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/internal/validation"
	"github.com/JaimeStill/agrocheck/pkg/pagination"
)

// System defines the public contract for document domain operations.
// Every operation is scoped to the owning user.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		userID uuid.UUID,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, userID, id uuid.UUID) (*Document, error)
	Create(ctx context.Context, userID uuid.UUID, cmd CreateCommand) (*Document, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// Latest returns, per document type, up to perType documents of the lot,
	// newest first.
	Latest(ctx context.Context, userID, lotID uuid.UUID, perType int) (map[validation.DocType][]Document, error)
}
