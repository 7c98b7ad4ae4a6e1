package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/JaimeStill/agrocheck/internal/lots"
	"github.com/JaimeStill/agrocheck/internal/photos"
	"github.com/JaimeStill/agrocheck/internal/prompts"
	"github.com/JaimeStill/agrocheck/pkg/model"
)

// Summaries returned when a photo run has nothing to inspect.
const (
	SummaryNoPhotos    = "No hay fotos en este lote."
	SummaryNotPrepared = "No se pudieron preparar las fotos."
)

// PhotoOutcome is the result of a photo inspection. Reviews carry the lot,
// owner and photo fields but no id or timestamp until they are stored.
type PhotoOutcome struct {
	Reviews []photos.Review
	Summary string
	// Usage is nil when nothing was sent to the model.
	Usage *model.Usage
}

// Inspected reports whether the model was called.
func (o *PhotoOutcome) Inspected() bool {
	return o.Usage != nil
}

type photoRow struct {
	PhotoPath       string   `json:"photo_path"`
	ProductDetected string   `json:"product_detected"`
	Confidence      float64  `json:"confidence"`
	Ripeness        string   `json:"ripeness"`
	Issues          []string `json:"issues"`
	ExportReady     bool     `json:"export_ready"`
	Notes           string   `json:"notes"`
}

type photoResponse struct {
	PerPhoto []photoRow `json:"per_photo"`
	Summary  string     `json:"summary"`
}

// InspectPhotos sends the photos to the model and maps the returned rows,
// by position, back onto the photos that were attached.
func (rt *Runtime) InspectPhotos(ctx context.Context, lot lots.Lot, items []photos.Photo) (*PhotoOutcome, error) {
	if len(items) == 0 {
		return &PhotoOutcome{Reviews: []photos.Review{}, Summary: SummaryNoPhotos}, nil
	}

	files, err := rt.AssemblePhotos(ctx, items)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return &PhotoOutcome{Reviews: []photos.Review{}, Summary: SummaryNotPrepared}, nil
	}

	system, err := rt.systemPrompt(ctx, prompts.StagePhotos)
	if err != nil {
		return nil, err
	}

	resp, err := rt.generate(ctx, model.Request{
		System: system,
		Parts:  PhotoParts(lot, files),
		Schema: PhotosSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("inspect photos: %w", err)
	}

	parsed, err := decodePhotoResponse(resp.Content)
	if err != nil {
		return nil, err
	}

	expected := strings.ToLower(lot.Product)
	reviews := make([]photos.Review, 0, len(files))
	for i, row := range parsed.PerPhoto {
		if i >= len(files) {
			break
		}
		reviews = append(reviews, photos.Review{
			LotID:           lot.ID,
			UserID:          lot.UserID,
			PhotoPath:       files[i].Path,
			ProductExpected: expected,
			ProductDetected: row.ProductDetected,
			Confidence:      min(max(row.Confidence, 0), 1),
			Ripeness:        ripeness(row.Ripeness),
			ExportReady:     row.ExportReady,
			Issues:          nonNil(row.Issues),
			Notes:           row.Notes,
		})
	}

	rt.Logger.InfoContext(ctx, "photos inspected",
		"lot_id", lot.ID,
		"attached", len(files),
		"reviews", len(reviews),
	)

	return &PhotoOutcome{Reviews: reviews, Summary: parsed.Summary, Usage: &resp.Usage}, nil
}

// decodePhotoResponse requires every key PhotosSchema declares, at the top
// level and on each row, and rejects keys it does not declare.
func decodePhotoResponse(content string) (photoResponse, error) {
	var parsed photoResponse
	raw := []byte(strings.TrimSpace(content))

	schema := PhotosSchema()
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil || top == nil {
		return parsed, fmt.Errorf("%w: response is not an object", ErrModelOutput)
	}
	if err := requireKeys(schema, top, "response"); err != nil {
		return parsed, err
	}

	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(top["per_photo"], &rows); err != nil {
		return parsed, fmt.Errorf("%w: per_photo: %w", ErrModelOutput, err)
	}
	for i, row := range rows {
		if err := requireKeys(schema.Properties["per_photo"].Items, row, fmt.Sprintf("per_photo[%d]", i)); err != nil {
			return parsed, err
		}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&parsed); err != nil {
		return parsed, fmt.Errorf("%w: %w", ErrModelOutput, err)
	}
	return parsed, nil
}

func requireKeys(schema *model.Schema, keys map[string]json.RawMessage, at string) error {
	if keys == nil {
		return fmt.Errorf("%w: %s is not an object", ErrModelOutput, at)
	}
	for _, name := range schema.Required {
		if _, ok := keys[name]; !ok {
			return fmt.Errorf("%w: %s.%s missing", ErrModelOutput, at, name)
		}
	}
	for k := range keys {
		if _, ok := schema.Properties[k]; !ok {
			return fmt.Errorf("%w: %s.%s not declared", ErrModelOutput, at, k)
		}
	}
	return nil
}

func ripeness(s string) photos.Ripeness {
	r := photos.Ripeness(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(photos.RipenessValues, r) {
		return r
	}
	return photos.RipenessUnknown
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
