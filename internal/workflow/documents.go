package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/JaimeStill/agrocheck/internal/documents"
	"github.com/JaimeStill/agrocheck/internal/lots"
	"github.com/JaimeStill/agrocheck/internal/prompts"
	"github.com/JaimeStill/agrocheck/internal/validation"
	"github.com/JaimeStill/agrocheck/pkg/model"
)

// DocumentInput is everything a document run reads.
type DocumentInput struct {
	Lot          lots.Lot
	Requirements []validation.Requirement
	// Documents holds the newest documents per type, newest first.
	Documents map[validation.DocType][]documents.Document
}

// DocumentOutcome is the scored result of a document run.
type DocumentOutcome struct {
	Result     validation.Result
	Extraction validation.Extraction
	Evidence   []Evidence
	// Usage is nil when no evidence reached the model and no call was made.
	Usage *model.Usage
}

// ValidateDocuments assembles evidence, calls the model once, and scores the
// structured output. A response that breaks the output contract is not an
// error: the extraction stays empty and the affected types are observado.
func (rt *Runtime) ValidateDocuments(ctx context.Context, in DocumentInput) (*DocumentOutcome, error) {
	evidence, err := rt.AssembleDocuments(ctx, in.Requirements, in.Documents)
	if err != nil {
		return nil, err
	}

	present := make(map[validation.DocType]bool, len(evidence))
	extractable := false
	for _, e := range evidence {
		if e.Present() {
			present[e.DocType] = true
			extractable = extractable || e.DocType.Known()
		}
	}

	out := &DocumentOutcome{Evidence: evidence}

	if extractable {
		system, err := rt.systemPrompt(ctx, prompts.StageDocuments)
		if err != nil {
			return nil, err
		}

		parts, err := DocumentParts(in.Lot, in.Requirements, evidence, rt.Config.MaxTextChars)
		if err != nil {
			return nil, err
		}

		resp, err := rt.generate(ctx, model.Request{
			System: system,
			Parts:  parts,
			Schema: DocumentsSchema(),
		})
		switch {
		case errors.Is(err, model.ErrEmptyResponse):
			// a blocked or empty candidate still ends the run as an empty extraction
			rt.Logger.WarnContext(ctx, "model returned no content", "lot_id", in.Lot.ID)
			resp = &model.Response{}
		case err != nil:
			return nil, fmt.Errorf("validate documents: %w", err)
		}
		out.Usage = &resp.Usage

		ext, err := validation.ParseExtraction(resp.Content)
		if err != nil {
			rt.Logger.WarnContext(ctx, "extraction contract violation", "lot_id", in.Lot.ID, "error", err)
		}
		for t, verr := range ext.Violations {
			rt.Logger.WarnContext(ctx, "extraction type dropped", "lot_id", in.Lot.ID, "doc_type", t, "error", verr)
		}
		out.Extraction = ext
	}

	out.Result = validation.Evaluate(validation.Input{
		Requirements: in.Requirements,
		Evidence:     present,
		Extraction:   out.Extraction,
	})

	rt.Logger.InfoContext(ctx, "documents validated",
		"lot_id", in.Lot.ID,
		"decision", out.Result.Decision,
		"entries", len(out.Result.Checklist),
	)

	return out, nil
}
