package lots

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/pkg/pagination"
)

// System defines the public contract for lot operations. Every operation is
// scoped to the owning user; lots of other users are reported as not found.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		userID uuid.UUID,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Lot], error)

	Find(ctx context.Context, userID, id uuid.UUID) (*Lot, error)
	FindByCode(ctx context.Context, userID uuid.UUID, code string) (*Lot, error)
	Create(ctx context.Context, userID uuid.UUID, cmd CreateCommand) (*Lot, error)
	Update(ctx context.Context, userID, id uuid.UUID, cmd UpdateCommand) (*Lot, error)
}
