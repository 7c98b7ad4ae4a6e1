// Package validations runs validation requests for a lot end to end: it
// guards the AI quota, runs the document or photo pipeline, issues the
// certificate on approval, and commits the outcome in one transaction.
package validations

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/internal/photos"
	"github.com/JaimeStill/agrocheck/internal/validation"
	"github.com/JaimeStill/agrocheck/internal/workflow"
	"github.com/JaimeStill/agrocheck/pkg/model"
)

// System defines the public contract for validation runs. Every operation is
// scoped to the acting user.
type System interface {
	Handler() *Handler

	// ValidateDocuments scores the lot's newest documents and persists the decision.
	ValidateDocuments(ctx context.Context, userID, lotID uuid.UUID) (*DocumentReport, error)
	// InspectPhotos reviews the lot's photos, or the subset named in req.Paths.
	InspectPhotos(ctx context.Context, userID uuid.UUID, req PhotoRequest) (*PhotoReport, error)
	// RecordResult stores a reviewer's manual decision.
	RecordResult(ctx context.Context, userID, lotID uuid.UUID, cmd ResultCommand) (*ResultReport, error)
	// Chat answers a free-text question about a lot. It is not quota-counted.
	Chat(ctx context.Context, userID uuid.UUID, cmd ChatCommand) (string, error)
}

// DocumentReport is the response of a document run.
type DocumentReport struct {
	OK              bool                        `json:"ok"`
	Decision        validation.Decision         `json:"decision"`
	Checklist       []validation.ChecklistEntry `json:"checklist"`
	Stages          []workflow.Step             `json:"stages"`
	Observations    string                      `json:"observations"`
	CertificatePath *string                     `json:"certificate_path"`
}

// PhotoRequest names the lot by id or code. Paths restricts the run to those
// photos of the lot; unknown paths are ignored.
type PhotoRequest struct {
	LotID   string   `json:"lot_id"`
	LotCode string   `json:"lot_code"`
	Paths   []string `json:"paths"`
}

// PhotoReport is the response of a photo inspection.
type PhotoReport struct {
	OK       bool            `json:"ok"`
	PerPhoto []photos.Review `json:"per_photo"`
	Summary  string          `json:"summary"`
	Usage    *model.Usage    `json:"usage"`
}

// ResultCommand is a manual decision. Approved is required.
type ResultCommand struct {
	Approved     *bool  `json:"approved"`
	Observations string `json:"observations"`
}

// ResultReport is the response of a manual decision.
type ResultReport struct {
	OK              bool    `json:"ok"`
	Approved        bool    `json:"approved"`
	Status          string  `json:"status"`
	Observations    string  `json:"observations"`
	CertificatePath *string `json:"certificate_path"`
}

// ChatCommand is a question about a lot.
type ChatCommand struct {
	LotID   string `json:"lot_id"`
	Message string `json:"message"`
}

// ChatReply is the response of a chat question.
type ChatReply struct {
	OK   bool   `json:"ok"`
	Text string `json:"text"`
}

// QuotaResponse is written when a run is refused for quota.
type QuotaResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	IAUsed  int    `json:"ia_used"`
	IAQuota int    `json:"ia_quota"`
}
