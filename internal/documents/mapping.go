package documents

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/pkg/query"
	"github.com/JaimeStill/agrocheck/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("lot_id", "LotID").
	Project("user_id", "UserID").
	Project("doc_type", "DocType").
	Project("file_path", "FilePath").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("created_at", "CreatedAt").
	Join("public", "lots", "l", "JOIN", "l.id = d.lot_id").
	Project("lot_code", "LotCode")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// LotID, DocType, and ContentType use exact matching, Filename contains matching.
type Filters struct {
	LotID       *uuid.UUID `json:"lot_id,omitempty"`
	DocType     *string    `json:"doc_type,omitempty"`
	ContentType *string    `json:"content_type,omitempty"`
	Filename    *string    `json:"filename,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("LotID", f.LotID).
		WhereEquals("DocType", f.DocType).
		WhereEquals("ContentType", f.ContentType).
		WhereContains("Filename", f.Filename)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if id, err := uuid.Parse(values.Get("lot_id")); err == nil {
		f.LotID = &id
	}

	if dt := values.Get("doc_type"); dt != "" {
		f.DocType = &dt
	}

	if ct := values.Get("content_type"); ct != "" {
		f.ContentType = &ct
	}

	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.LotID,
		&d.UserID,
		&d.DocType,
		&d.FilePath,
		&d.Filename,
		&d.ContentType,
		&d.SizeBytes,
		&d.PageCount,
		&d.CreatedAt,
		&d.LotCode,
	)
	return d, err
}
