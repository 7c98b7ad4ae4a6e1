package lots

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/pkg/repository"
)

// Result is a validation outcome written onto a lot.
type Result struct {
	Approved     bool
	Status       Status
	Observations string
	// CertificatePath, ValidatedAt and ReviewedBy are only written on approval.
	CertificatePath *string
	ValidatedAt     time.Time
	ReviewedBy      uuid.UUID
}

// ResultFor derives the lot state from an approval flag. A non-approved
// result is pendiente unless rejected is set.
func ResultFor(approved, rejected bool, observations string) Result {
	r := Result{Approved: approved, Status: StatusPending, Observations: observations}
	switch {
	case approved:
		r.Status = StatusApproved
	case rejected:
		r.Status = StatusRejected
	}
	return r
}

// applyResult restamps validated_at on each approval; nil keeps the prior value.
const applyResult = `
	UPDATE lots
	SET approved = $1, status = $2, observations = $3,
		certificate_path = $4,
		validated_at = COALESCE($5, validated_at),
		reviewed_by = COALESCE($6, reviewed_by),
		updated_at = now()
	WHERE id = $7 AND user_id = $8`

// ApplyResult patches the validation state of a lot using e, typically the
// transaction that also counts the run. A non-approved result clears the
// certificate path so certificate_path stays null unless approved.
func ApplyResult(ctx context.Context, e repository.Executor, userID, lotID uuid.UUID, r Result) error {
	if !r.Status.Valid() {
		return ErrInvalidStatus
	}

	var (
		cert       *string
		validated  *time.Time
		reviewedBy *uuid.UUID
	)
	if r.Approved {
		cert = r.CertificatePath
		validated = &r.ValidatedAt
		reviewedBy = &r.ReviewedBy
	}

	err := repository.ExecExpectOne(ctx, e, applyResult,
		r.Approved, r.Status, r.Observations, cert, validated, reviewedBy, lotID, userID,
	)
	if constraint, ok := repository.IsCheckViolation(err); ok {
		return fmt.Errorf("%w: %s", ErrInvalidResult, constraint)
	}
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}
