// Package documents implements the export document domain: files uploaded
// against a lot and tagged with the document type they evidence.
package documents

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/internal/validation"
)

// Document is an uploaded file attached to a lot.
type Document struct {
	ID          uuid.UUID          `json:"id"`
	LotID       uuid.UUID          `json:"lot_id"`
	UserID      uuid.UUID          `json:"user_id"`
	DocType     validation.DocType `json:"doc_type"`
	FilePath    string             `json:"file_path"`
	Filename    string             `json:"filename"`
	ContentType string             `json:"content_type"`
	SizeBytes   int64              `json:"size_bytes"`
	PageCount   *int               `json:"page_count"`
	CreatedAt   time.Time          `json:"created_at"`
	LotCode     string             `json:"lot_code"`
}

// Ext returns the lower-cased extension of the stored file without the dot.
func (d Document) Ext() string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(d.FilePath)), ".")
}

// CreateCommand carries the data needed to upload and register a document.
// PageCount is optional and filled by the handler for PDFs.
type CreateCommand struct {
	LotID       uuid.UUID
	DocType     validation.DocType
	Data        []byte
	Filename    string
	ContentType string
	PageCount   *int
}
