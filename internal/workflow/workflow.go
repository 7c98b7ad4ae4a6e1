// Package workflow runs the model-backed pipeline steps for a lot: it
// assembles evidence from storage, builds the extraction request, calls the
// model, and scores the result. It reads and writes nothing in the database;
// callers persist the outcome.
package workflow

import (
	"errors"
	"net/http"
)

// Sentinel errors for pipeline runs.
var (
	ErrModelCall    = errors.New("model call failed")
	ErrModelTimeout = errors.New("model call timed out")
	ErrModelOutput  = errors.New("model output could not be read")
)

// MapHTTPStatus maps pipeline errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrModelTimeout) {
		return http.StatusGatewayTimeout
	}
	if errors.Is(err, ErrModelCall) || errors.Is(err, ErrModelOutput) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Step is one entry of the progress trail returned to clients.
type Step struct {
	Step   string `json:"step"`
	Label  string `json:"label"`
	Status string `json:"status"`
}

// StepDone marks a completed step.
const StepDone = "done"

// DocumentSteps is the progress trail of a completed document run.
func DocumentSteps() []Step {
	return []Step{
		{Step: "lectura", Label: "Lectura de documentos", Status: StepDone},
		{Step: "extraccion", Label: "Extracción de campos", Status: StepDone},
		{Step: "validacion", Label: "Validación de reglas", Status: StepDone},
		{Step: "decision", Label: "Decisión del lote", Status: StepDone},
		{Step: "resultado", Label: "Preparando resultado final", Status: StepDone},
	}
}
