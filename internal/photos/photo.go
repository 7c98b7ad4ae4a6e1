// Package photos implements lot photos and the append-only inspection
// reviews recorded against them.
package photos

import (
	"time"

	"github.com/google/uuid"
)

// Photo is an uploaded image of a lot.
type Photo struct {
	ID          uuid.UUID `json:"id"`
	LotID       uuid.UUID `json:"lot_id"`
	UserID      uuid.UUID `json:"user_id"`
	FilePath    string    `json:"file_path"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// Ripeness grades how mature the inspected product looks.
type Ripeness string

// Ripeness grades accepted from the inspection model.
const (
	RipenessUnripe   Ripeness = "unripe"
	RipenessRipe     Ripeness = "ripe"
	RipenessOverripe Ripeness = "overripe"
	RipenessUnknown  Ripeness = "unknown"
)

// RipenessValues lists the grades in contract order.
var RipenessValues = []Ripeness{RipenessUnripe, RipenessRipe, RipenessOverripe, RipenessUnknown}

// Review is one per-photo inspection result.
type Review struct {
	ID              uuid.UUID `json:"id"`
	LotID           uuid.UUID `json:"lot_id"`
	UserID          uuid.UUID `json:"user_id"`
	PhotoPath       string    `json:"photo_path"`
	ProductExpected string    `json:"product_expected"`
	ProductDetected string    `json:"product_detected"`
	Confidence      float64   `json:"confidence"`
	Ripeness        Ripeness  `json:"ripeness"`
	ExportReady     bool      `json:"export_ready"`
	Issues          []string  `json:"issues"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
}

// FileUpload is one file of a batch upload.
type FileUpload struct {
	Data        []byte
	Filename    string
	ContentType string
}

// BatchResult reports the outcome of a single file within a batch upload.
// On success, Photo is populated and Error is empty.
// On failure, Error describes the problem and Photo is nil.
type BatchResult struct {
	Photo    *Photo `json:"photo,omitempty"`
	Filename string `json:"filename"`
	Error    string `json:"error,omitempty"`
}
