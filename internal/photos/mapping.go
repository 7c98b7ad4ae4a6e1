package photos

import (
	"encoding/json"
	"fmt"

	"github.com/JaimeStill/agrocheck/pkg/query"
	"github.com/JaimeStill/agrocheck/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "photos", "p").
	Project("id", "ID").
	Project("lot_id", "LotID").
	Project("user_id", "UserID").
	Project("file_path", "FilePath").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("created_at", "CreatedAt")

var reviewProjection = query.
	NewProjectionMap("public", "lot_photo_reviews", "r").
	Project("id", "ID").
	Project("lot_id", "LotID").
	Project("user_id", "UserID").
	Project("photo_path", "PhotoPath").
	Project("product_expected", "ProductExpected").
	Project("product_detected", "ProductDetected").
	Project("confidence", "Confidence").
	Project("ripeness", "Ripeness").
	Project("export_ready", "ExportReady").
	Project("issues", "Issues").
	Project("notes", "Notes").
	Project("created_at", "CreatedAt")

var chronological = query.SortField{Field: "CreatedAt"}

func scanPhoto(s repository.Scanner) (Photo, error) {
	var p Photo
	err := s.Scan(
		&p.ID,
		&p.LotID,
		&p.UserID,
		&p.FilePath,
		&p.Filename,
		&p.ContentType,
		&p.SizeBytes,
		&p.CreatedAt,
	)
	return p, err
}

func scanReview(s repository.Scanner) (Review, error) {
	var r Review
	var issues []byte
	err := s.Scan(
		&r.ID,
		&r.LotID,
		&r.UserID,
		&r.PhotoPath,
		&r.ProductExpected,
		&r.ProductDetected,
		&r.Confidence,
		&r.Ripeness,
		&r.ExportReady,
		&issues,
		&r.Notes,
		&r.CreatedAt,
	)
	if err != nil {
		return r, err
	}

	r.Issues = []string{}
	if len(issues) > 0 {
		if err := json.Unmarshal(issues, &r.Issues); err != nil {
			return r, fmt.Errorf("decode review issues: %w", err)
		}
	}
	return r, nil
}
