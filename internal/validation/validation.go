// Package validation scores a structured extraction of export documents
// against fixed per-type business rules. Everything here is pure: no I/O,
// no clock, no randomness.
package validation

// DocType tags a kind of export document.
type DocType string

// Document types with a rule set.
const (
	CertOrigen  DocType = "CERT_ORIGEN"
	Factura     DocType = "FACTURA"
	PackingList DocType = "PACKING_LIST"
)

// KnownTypes lists the document types the extraction contract declares, in
// contract order.
var KnownTypes = []DocType{CertOrigen, Factura, PackingList}

// Known reports whether t has an extraction contract and rule set.
func (t DocType) Known() bool {
	switch t {
	case CertOrigen, Factura, PackingList:
		return true
	}
	return false
}

// Status is the outcome of one checklist entry.
type Status string

const (
	StatusOK       Status = "ok"
	StatusMissing  Status = "faltante"
	StatusObserved Status = "observado"
)

// Decision is the overall outcome of a validation run.
type Decision string

const (
	DecisionApproved Decision = "aprobado"
	DecisionPending  Decision = "pendiente"
)

// Requirement declares whether a document type is needed for a lot.
type Requirement struct {
	DocType  DocType `json:"doc_type"`
	Required bool    `json:"required"`
}

// Issue names a field that failed a rule and why.
type Issue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ChecklistEntry is the per-type result.
type ChecklistEntry struct {
	DocType  DocType `json:"doc_type"`
	Required bool    `json:"required"`
	Status   Status  `json:"status"`
	Issues   []Issue `json:"issues"`
}

// Result is the output of Evaluate.
type Result struct {
	Decision     Decision         `json:"decision"`
	Checklist    []ChecklistEntry `json:"checklist"`
	Observations string           `json:"observations"`
}

// Approved reports whether the decision is aprobado.
func (r Result) Approved() bool {
	return r.Decision == DecisionApproved
}
