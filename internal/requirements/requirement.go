// Package requirements resolves which export documents a lot needs based on
// its product and destination country, and manages the underlying mappings.
package requirements

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/internal/validation"
)

// Requirement is one stored product/country/doc-type mapping.
type Requirement struct {
	ID                 uuid.UUID          `json:"id"`
	Product            string             `json:"product"`
	DestinationCountry string             `json:"destination_country"`
	DocType            validation.DocType `json:"doc_type"`
	Required           bool               `json:"required"`
	CreatedAt          time.Time          `json:"created_at"`
}

// DocTypeDef is a document type known to the system. Types flagged
// DefaultRequired form the default set when no mapping matches.
type DocTypeDef struct {
	DocType         validation.DocType `json:"doc_type"`
	Label           string             `json:"label"`
	DefaultRequired bool               `json:"default_required"`
}

// UpsertCommand creates or replaces a mapping keyed by product, country, and type.
type UpsertCommand struct {
	Product            string             `json:"product"`
	DestinationCountry string             `json:"destination_country"`
	DocType            validation.DocType `json:"doc_type"`
	Required           bool               `json:"required"`
}

func (c *UpsertCommand) normalize() error {
	c.Product = strings.TrimSpace(c.Product)
	c.DestinationCountry = strings.ToUpper(strings.TrimSpace(c.DestinationCountry))
	c.DocType = validation.DocType(strings.ToUpper(strings.TrimSpace(string(c.DocType))))

	if c.Product == "" || c.DestinationCountry == "" {
		return ErrKeyRequired
	}
	if c.DocType == "" {
		return ErrDocTypeRequired
	}
	return nil
}

func (d *DocTypeDef) normalize() error {
	d.DocType = validation.DocType(strings.ToUpper(strings.TrimSpace(string(d.DocType))))
	d.Label = strings.TrimSpace(d.Label)
	if d.DocType == "" {
		return ErrDocTypeRequired
	}
	if d.Label == "" {
		d.Label = string(d.DocType)
	}
	return nil
}

// Fallback returns the built-in set used when the store has nothing to offer:
// every known document type, required.
func Fallback() []validation.Requirement {
	reqs := make([]validation.Requirement, len(validation.KnownTypes))
	for i, t := range validation.KnownTypes {
		reqs[i] = validation.Requirement{DocType: t, Required: true}
	}
	return reqs
}
