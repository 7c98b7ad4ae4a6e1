package validation

import (
	"fmt"
	"strings"
)

// Issue reasons not tied to a single extracted field.
const (
	DocumentField        = "documento"
	ReasonNotUploaded    = "Documento requerido no cargado."
	ReasonNotExtracted   = "No se pudo extraer información del documento."
	ObservationsApproved = "Documentación mínima OK."
	ObservationsPending  = "Faltan campos en uno o más documentos."
)

// Input is everything Evaluate needs for one lot.
type Input struct {
	// Requirements in resolver order. Duplicate types keep the first entry.
	Requirements []Requirement
	// Evidence holds the types for which at least one file reached the model.
	Evidence map[DocType]bool
	// Extraction is the parsed model output, empty on contract failure.
	Extraction Extraction
}

// Evaluate builds the checklist and decision. A required type without
// evidence is faltante. A type with evidence but no typed extraction, or
// with any rule violation, is observado. Types without a rule set are
// judged on presence only. The decision is aprobado iff every entry is ok.
func Evaluate(in Input) Result {
	checklist := make([]ChecklistEntry, 0, len(in.Requirements))
	seen := make(map[DocType]bool, len(in.Requirements))

	for _, req := range in.Requirements {
		if seen[req.DocType] {
			continue
		}
		seen[req.DocType] = true
		checklist = append(checklist, evaluateEntry(req, in))
	}

	return Result{
		Decision:     decide(checklist),
		Checklist:    checklist,
		Observations: summarize(checklist),
	}
}

func evaluateEntry(req Requirement, in Input) ChecklistEntry {
	entry := ChecklistEntry{
		DocType:  req.DocType,
		Required: req.Required,
		Status:   StatusOK,
		Issues:   []Issue{},
	}

	if !in.Evidence[req.DocType] {
		if req.Required {
			entry.Status = StatusMissing
			entry.Issues = []Issue{{Field: DocumentField, Reason: ReasonNotUploaded}}
		}
		return entry
	}

	issues, extracted := issuesFor(req.DocType, in.Extraction)
	if !extracted {
		entry.Status = StatusObserved
		entry.Issues = []Issue{{Field: DocumentField, Reason: ReasonNotExtracted}}
		return entry
	}

	if len(issues) > 0 {
		entry.Status = StatusObserved
		entry.Issues = issues
	}
	return entry
}

func decide(checklist []ChecklistEntry) Decision {
	if len(checklist) == 0 {
		return DecisionPending
	}
	for _, e := range checklist {
		if e.Status != StatusOK {
			return DecisionPending
		}
	}
	return DecisionApproved
}

func summarize(checklist []ChecklistEntry) string {
	if decide(checklist) == DecisionApproved {
		return ObservationsApproved
	}

	var b strings.Builder
	b.WriteString(ObservationsPending)
	for _, e := range checklist {
		if e.Status == StatusOK {
			continue
		}
		reasons := make([]string, len(e.Issues))
		for i, issue := range e.Issues {
			reasons[i] = issue.Reason
		}
		fmt.Fprintf(&b, "\n- %s (%s): %s", e.DocType, e.Status, strings.Join(reasons, " "))
	}
	return b.String()
}
