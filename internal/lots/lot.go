// Package lots implements the lot domain: the traceable batches of export
// product that documents, photos, and validation results attach to.
package lots

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a lot.
type Status string

// Lot states. Only a manual result may set StatusRejected.
const (
	StatusPending  Status = "pendiente"
	StatusApproved Status = "aprobado"
	StatusRejected Status = "rechazado"
)

var statuses = []Status{StatusPending, StatusApproved, StatusRejected}

// Valid reports whether s is one of the enumerated states.
func (s Status) Valid() bool {
	return slices.Contains(statuses, s)
}

// UnmarshalJSON rejects unknown states.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v := Status(raw)
	if !v.Valid() {
		return ErrInvalidStatus
	}
	*s = v
	return nil
}

// Lot is a batch of product awaiting or having completed validation.
type Lot struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             uuid.UUID  `json:"user_id"`
	Product            string     `json:"product"`
	Variety            *string    `json:"variety"`
	LotCode            string     `json:"lot_code"`
	OriginRegion       *string    `json:"origin_region"`
	OriginProvince     *string    `json:"origin_province"`
	DestinationCountry string     `json:"destination_country"`
	Approved           *bool      `json:"approved"`
	Status             Status     `json:"status"`
	Observations       *string    `json:"observations"`
	CertificatePath    *string    `json:"certificate_path"`
	CertificateNumber  int64      `json:"certificate_number"`
	ValidatedAt        *time.Time `json:"validated_at"`
	ReviewedBy         *uuid.UUID `json:"reviewed_by"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Origin renders "region, province" with "-" for blanks.
func (l Lot) Origin() string {
	return orDash(l.OriginRegion) + ", " + orDash(l.OriginProvince)
}

// Reference returns the lot code, or the id when no code is set.
func (l Lot) Reference() string {
	if l.LotCode != "" {
		return l.LotCode
	}
	return l.ID.String()
}

func orDash(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "-"
	}
	return *s
}

// CreateCommand carries the descriptive fields of a new lot.
type CreateCommand struct {
	Product            string  `json:"product"`
	Variety            *string `json:"variety"`
	LotCode            string  `json:"lot_code"`
	OriginRegion       *string `json:"origin_region"`
	OriginProvince     *string `json:"origin_province"`
	DestinationCountry string  `json:"destination_country"`
}

// UpdateCommand replaces the descriptive fields of a lot. Validation state
// is owned by the validation pipeline and cannot be set here.
type UpdateCommand = CreateCommand

func (c *CreateCommand) normalize() error {
	c.Product = strings.TrimSpace(c.Product)
	c.LotCode = strings.TrimSpace(c.LotCode)
	c.DestinationCountry = strings.ToUpper(strings.TrimSpace(c.DestinationCountry))

	if c.Product == "" {
		return ErrProductRequired
	}
	if c.LotCode == "" {
		return ErrCodeRequired
	}
	if c.DestinationCountry == "" {
		return ErrDestinationRequired
	}
	return nil
}
