package validations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/internal/certificates"
	"github.com/JaimeStill/agrocheck/internal/documents"
	"github.com/JaimeStill/agrocheck/internal/events"
	"github.com/JaimeStill/agrocheck/internal/lots"
	"github.com/JaimeStill/agrocheck/internal/photos"
	"github.com/JaimeStill/agrocheck/internal/profiles"
	"github.com/JaimeStill/agrocheck/internal/requirements"
	"github.com/JaimeStill/agrocheck/internal/workflow"
	"github.com/JaimeStill/agrocheck/pkg/auth"
)

// Deps are the systems a validation run reads and writes through.
type Deps struct {
	Lots         lots.System
	Documents    documents.System
	Photos       photos.System
	Profiles     profiles.System
	Requirements requirements.System
	Certificates certificates.System
	Runtime      *workflow.Runtime
	Store        Store
}

type service struct {
	Deps
	logger *slog.Logger
	now    func() time.Time
}

// New creates the validation System.
func New(deps Deps, logger *slog.Logger) System {
	return &service{
		Deps:   deps,
		logger: logger.With("system", "validations"),
		now:    time.Now,
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *service) ValidateDocuments(ctx context.Context, userID, lotID uuid.UUID) (*DocumentReport, error) {
	lot, err := s.findLot(ctx, userID, lotID)
	if err != nil {
		return nil, err
	}

	profile, err := s.guard(ctx, userID)
	if err != nil {
		return nil, err
	}

	reqs := s.Requirements.Resolve(ctx, lot.Product, lot.DestinationCountry)

	docs, err := s.Documents.Latest(ctx, userID, lot.ID, s.Runtime.Config.MaxFilesPerType)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	out, err := s.Runtime.ValidateDocuments(ctx, workflow.DocumentInput{
		Lot:          *lot,
		Requirements: reqs,
		Documents:    docs,
	})
	if err != nil {
		return nil, err
	}

	approved := out.Result.Approved()
	result := lots.ResultFor(approved, false, out.Result.Observations)

	c := Commit{
		UserID: userID,
		LotID:  lot.ID,
		Result: &result,
		Events: []events.RecordCommand{{
			LotID:  lot.ID,
			UserID: userID,
			Type:   events.AIChecked,
			Data: map[string]any{
				"kind":         "documents",
				"decision":     out.Result.Decision,
				"checklist":    out.Result.Checklist,
				"observations": out.Result.Observations,
				"usage":        out.Usage,
			},
		}},
	}

	var cert string
	if approved {
		cert, err = s.issue(ctx, lot, profile, &result, &c)
		if err != nil {
			return nil, err
		}
	}

	if err := s.commit(ctx, profile, c, cert); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "documents run committed",
		"lot_id", lot.ID,
		"decision", out.Result.Decision,
		"certificate", cert,
	)

	return &DocumentReport{
		OK:              true,
		Decision:        out.Result.Decision,
		Checklist:       out.Result.Checklist,
		Stages:          workflow.DocumentSteps(),
		Observations:    out.Result.Observations,
		CertificatePath: result.CertificatePath,
	}, nil
}

func (s *service) InspectPhotos(ctx context.Context, userID uuid.UUID, req PhotoRequest) (*PhotoReport, error) {
	lot, err := s.photoLot(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	profile, err := s.guard(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.Photos.ListByLot(ctx, userID, lot.ID)
	if err != nil {
		return nil, fmt.Errorf("load photos: %w", err)
	}
	items = selectPaths(items, req.Paths)

	out, err := s.Runtime.InspectPhotos(ctx, *lot, items)
	if err != nil {
		return nil, err
	}

	report := &PhotoReport{
		OK:       true,
		PerPhoto: out.Reviews,
		Summary:  out.Summary,
		Usage:    out.Usage,
	}

	if !out.Inspected() {
		return report, nil
	}

	c := Commit{
		UserID:  userID,
		LotID:   lot.ID,
		Reviews: out.Reviews,
		Events: []events.RecordCommand{{
			LotID:  lot.ID,
			UserID: userID,
			Type:   events.AIChecked,
			Data: map[string]any{
				"kind":    "photos",
				"count":   len(out.Reviews),
				"summary": out.Summary,
				"usage":   out.Usage,
			},
		}},
	}

	if err := s.commit(ctx, profile, c, ""); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "photos run committed", "lot_id", lot.ID, "reviews", len(out.Reviews))
	return report, nil
}

func (s *service) RecordResult(ctx context.Context, userID, lotID uuid.UUID, cmd ResultCommand) (*ResultReport, error) {
	if cmd.Approved == nil {
		return nil, ErrApprovedRequired
	}
	approved := *cmd.Approved
	observations := strings.TrimSpace(cmd.Observations)

	lot, err := s.findLot(ctx, userID, lotID)
	if err != nil {
		return nil, err
	}

	profile, err := s.guard(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := lots.ResultFor(approved, !approved, observations)

	eventType := events.Rejected
	if approved {
		eventType = events.Approved
	}

	c := Commit{
		UserID: userID,
		LotID:  lot.ID,
		Result: &result,
		Events: []events.RecordCommand{{
			LotID:  lot.ID,
			UserID: userID,
			Type:   eventType,
			Data:   map[string]any{"observations": observations},
		}},
	}

	var cert string
	if approved {
		cert, err = s.issue(ctx, lot, profile, &result, &c)
		if err != nil {
			return nil, err
		}
	}

	if err := s.commit(ctx, profile, c, cert); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "manual result committed", "lot_id", lot.ID, "status", result.Status)

	return &ResultReport{
		OK:              true,
		Approved:        approved,
		Status:          string(result.Status),
		Observations:    observations,
		CertificatePath: result.CertificatePath,
	}, nil
}

func (s *service) Chat(ctx context.Context, userID uuid.UUID, cmd ChatCommand) (string, error) {
	message := strings.TrimSpace(cmd.Message)
	if cmd.LotID == "" || message == "" {
		return "", ErrChatInput
	}

	id, err := uuid.Parse(cmd.LotID)
	if err != nil {
		return "", ErrLotNotFound
	}

	lot, err := s.findLot(ctx, userID, id)
	if err != nil {
		return "", err
	}

	reqs := s.Requirements.Resolve(ctx, lot.Product, lot.DestinationCountry)
	return s.Runtime.Answer(ctx, *lot, reqs, message)
}

func (s *service) findLot(ctx context.Context, userID, id uuid.UUID) (*lots.Lot, error) {
	lot, err := s.Lots.Find(ctx, userID, id)
	if err != nil {
		if errors.Is(err, lots.ErrNotFound) {
			return nil, ErrLotNotFound
		}
		return nil, fmt.Errorf("load lot: %w", err)
	}
	return lot, nil
}

func (s *service) photoLot(ctx context.Context, userID uuid.UUID, req PhotoRequest) (*lots.Lot, error) {
	switch {
	case req.LotID != "":
		id, err := uuid.Parse(req.LotID)
		if err != nil {
			return nil, ErrLotNotFound
		}
		return s.findLot(ctx, userID, id)
	case req.LotCode != "":
		lot, err := s.Lots.FindByCode(ctx, userID, req.LotCode)
		if err != nil {
			if errors.Is(err, lots.ErrNotFound) {
				return nil, ErrLotNotFound
			}
			return nil, fmt.Errorf("load lot: %w", err)
		}
		return lot, nil
	}
	return nil, ErrLotRequired
}

// guard loads the acting profile and refuses the run when one more would
// exceed the quota. Nothing is written when it refuses.
func (s *service) guard(ctx context.Context, userID uuid.UUID) (*profiles.Profile, error) {
	claims, _ := auth.FromContext(ctx)

	p, err := s.Profiles.Ensure(ctx, userID, claims.Email)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if !p.CanRun() {
		s.logger.WarnContext(ctx, "run refused for quota", "user_id", userID, "ia_used", p.IAUsed, "ia_quota", p.IAQuota)
		return nil, &QuotaError{Used: p.IAUsed, Quota: p.IAQuota}
	}
	return p, nil
}

// issue stores the certificate and records it on the result and commit.
func (s *service) issue(ctx context.Context, lot *lots.Lot, p *profiles.Profile, result *lots.Result, c *Commit) (string, error) {
	key, err := s.Certificates.Issue(ctx, *lot, p.DisplayName(), result.Observations)
	if err != nil {
		return "", err
	}

	result.CertificatePath = &key
	result.ValidatedAt = s.now()
	result.ReviewedBy = c.UserID

	c.Events = append(c.Events, events.RecordCommand{
		LotID:  lot.ID,
		UserID: c.UserID,
		Type:   events.PDFGenerated,
		Data:   map[string]any{"path": key},
	})
	return key, nil
}

// commit persists c and removes the stored certificate when it fails. A lost
// race on the quota increment is reported as a QuotaError.
func (s *service) commit(ctx context.Context, p *profiles.Profile, c Commit, cert string) error {
	err := s.Store.Commit(ctx, c)
	if err == nil {
		return nil
	}

	if cert != "" {
		if derr := s.Certificates.Discard(context.WithoutCancel(ctx), cert); derr != nil {
			s.logger.WarnContext(ctx, "certificate discard failed", "key", cert, "error", derr)
		}
	}

	if errors.Is(err, profiles.ErrQuotaExceeded) {
		return &QuotaError{Used: p.IAQuota, Quota: p.IAQuota}
	}
	return fmt.Errorf("commit run: %w", err)
}

func selectPaths(items []photos.Photo, paths []string) []photos.Photo {
	if len(paths) == 0 {
		return items
	}
	return slices.DeleteFunc(slices.Clone(items), func(p photos.Photo) bool {
		return !slices.Contains(paths, p.FilePath)
	})
}
