// Package events implements the append-only lot audit trail.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type classifies an audit event.
type Type string

// Recorded event types.
const (
	DocUploaded  Type = "doc_uploaded"
	PhotoAdded   Type = "photo_uploaded"
	AIChecked    Type = "ai_checked"
	Approved     Type = "approved"
	Rejected     Type = "rejected"
	PDFGenerated Type = "pdf_generated"
)

// Event is one immutable audit record.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	LotID     uuid.UUID       `json:"lot_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Type      Type            `json:"event_type"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}

// RecordCommand carries a new event. Data is encoded as JSON.
type RecordCommand struct {
	LotID  uuid.UUID
	UserID uuid.UUID
	Type   Type
	Data   any
}
