package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/JaimeStill/agrocheck/pkg/formatting"
)

// ErrContract indicates model output that does not match the declared shape.
var ErrContract = errors.New("extraction contract violation")

// FieldKind describes how a declared field is typed in the output contract.
type FieldKind int

const (
	// KindText is a nullable string.
	KindText FieldKind = iota
	// KindAmount is a nullable number that may arrive as formatted text.
	KindAmount
	// KindCount is a nullable integer.
	KindCount
)

// Field is one declared extraction field.
type Field struct {
	Name string
	Kind FieldKind
}

var fields = map[DocType][]Field{
	CertOrigen: {
		{"hs_code", KindText},
		{"origin_country", KindText},
		{"invoice_number", KindText},
		{"goods_description", KindText},
	},
	Factura: {
		{"invoice_number", KindText},
		{"consignee_name", KindText},
		{"total_invoice_value", KindAmount},
		{"items_found", KindCount},
	},
	PackingList: {
		{"packing_number", KindText},
		{"packing_date", KindText},
		{"packages_count", KindAmount},
		{"net_weight_total", KindAmount},
	},
}

// Fields returns the declared fields of t, or nil for types without a contract.
func Fields(t DocType) []Field {
	return fields[t]
}

// Amount is a numeric field the model may return as a JSON number or as
// formatted text. The raw value is kept and normalized on read.
type Amount struct {
	raw json.RawMessage
}

// NumberAmount returns an Amount holding a JSON number.
func NumberAmount(v float64) Amount {
	return Amount{raw: json.RawMessage(strconv.FormatFloat(v, 'f', -1, 64))}
}

// TextAmount returns an Amount holding formatted text.
func TextAmount(s string) Amount {
	b, _ := json.Marshal(s)
	return Amount{raw: b}
}

// UnmarshalJSON accepts null, a number, or a string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty amount", ErrContract)
	}
	switch c := data[0]; {
	case c == 'n', c == '"', c == '-', c >= '0' && c <= '9':
		a.raw = append(a.raw[:0], data...)
		return nil
	default:
		return fmt.Errorf("%w: amount must be a number, string or null", ErrContract)
	}
}

// MarshalJSON writes the raw value, or null when unset.
func (a Amount) MarshalJSON() ([]byte, error) {
	if len(a.raw) == 0 {
		return []byte("null"), nil
	}
	return a.raw, nil
}

// Value returns the normalized amount and whether one could be read.
func (a Amount) Value() (float64, bool) {
	if len(a.raw) == 0 || a.raw[0] == 'n' {
		return 0, false
	}
	if a.raw[0] == '"' {
		var s string
		if err := json.Unmarshal(a.raw, &s); err != nil {
			return 0, false
		}
		return ParseAmount(s)
	}
	v, err := strconv.ParseFloat(string(a.raw), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CertOrigenFields is the extraction for a certificate of origin.
type CertOrigenFields struct {
	HSCode           *string `json:"hs_code"`
	OriginCountry    *string `json:"origin_country"`
	InvoiceNumber    *string `json:"invoice_number"`
	GoodsDescription *string `json:"goods_description"`
}

// FacturaFields is the extraction for a commercial invoice.
type FacturaFields struct {
	InvoiceNumber     *string `json:"invoice_number"`
	ConsigneeName     *string `json:"consignee_name"`
	TotalInvoiceValue Amount  `json:"total_invoice_value"`
	ItemsFound        Amount  `json:"items_found"`
}

// PackingListFields is the extraction for a packing list.
type PackingListFields struct {
	PackingNumber  *string `json:"packing_number"`
	PackingDate    *string `json:"packing_date"`
	PackagesCount  Amount  `json:"packages_count"`
	NetWeightTotal Amount  `json:"net_weight_total"`
}

// Extraction holds the typed model output. A nil entry means the model
// returned null for that type or its value broke the contract.
type Extraction struct {
	CertOrigen  *CertOrigenFields  `json:"CERT_ORIGEN"`
	Factura     *FacturaFields     `json:"FACTURA"`
	PackingList *PackingListFields `json:"PACKING_LIST"`

	// Violations records per-type contract failures.
	Violations map[DocType]error `json:"-"`
}

// Has reports whether a typed value is present for t.
func (e Extraction) Has(t DocType) bool {
	switch t {
	case CertOrigen:
		return e.CertOrigen != nil
	case Factura:
		return e.Factura != nil
	case PackingList:
		return e.PackingList != nil
	}
	return false
}

// ParseExtraction decodes model output strictly. The top level must be an
// object whose keys are all declared document types; an unknown key fails
// the whole parse and yields an empty Extraction with ErrContract. Within a
// type, unknown or missing fields drop only that type and are recorded in
// Violations.
func ParseExtraction(content string) (Extraction, error) {
	var ext Extraction

	top, err := formatting.Parse[map[string]json.RawMessage](content)
	if err != nil {
		return ext, fmt.Errorf("%w: %w", ErrContract, err)
	}
	if top == nil {
		return ext, fmt.Errorf("%w: top level is not an object", ErrContract)
	}

	for key := range top {
		if !DocType(key).Known() {
			return Extraction{}, fmt.Errorf("%w: unexpected key %q", ErrContract, key)
		}
	}

	for _, t := range KnownTypes {
		raw, ok := top[string(t)]
		if !ok {
			ext.violate(t, fmt.Errorf("%w: missing %s", ErrContract, t))
			continue
		}
		if isNull(raw) {
			continue
		}

		var verr error
		switch t {
		case CertOrigen:
			ext.CertOrigen, verr = decodeStrict[CertOrigenFields](t, raw)
		case Factura:
			ext.Factura, verr = decodeStrict[FacturaFields](t, raw)
		case PackingList:
			ext.PackingList, verr = decodeStrict[PackingListFields](t, raw)
		}
		if verr != nil {
			ext.violate(t, verr)
		}
	}

	return ext, nil
}

func (e *Extraction) violate(t DocType, err error) {
	if e.Violations == nil {
		e.Violations = make(map[DocType]error)
	}
	e.Violations[t] = err
}

func decodeStrict[T any](t DocType, raw json.RawMessage) (*T, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil || keys == nil {
		return nil, fmt.Errorf("%w: %s is not an object", ErrContract, t)
	}

	declared := fields[t]
	for _, f := range declared {
		if _, ok := keys[f.Name]; !ok {
			return nil, fmt.Errorf("%w: %s.%s missing", ErrContract, t, f.Name)
		}
	}
	for k := range keys {
		if !slices.ContainsFunc(declared, func(f Field) bool { return f.Name == k }) {
			return nil, fmt.Errorf("%w: %s.%s not declared", ErrContract, t, k)
		}
	}

	var v T
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrContract, t, err)
	}
	return &v, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
