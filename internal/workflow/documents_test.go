package workflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/agrocheck/internal/documents"
	"github.com/JaimeStill/agrocheck/internal/validation"
	"github.com/JaimeStill/agrocheck/internal/workflow"
	"github.com/JaimeStill/agrocheck/pkg/model"
)

const validExtraction = `{
  "CERT_ORIGEN": {
    "hs_code": "0804.40.00",
    "origin_country": "Perú",
    "invoice_number": "F001-123",
    "goods_description": "Palta Hass fresca"
  },
  "FACTURA": {
    "invoice_number": "F001-123",
    "consignee_name": "Fresh Imports BV",
    "total_invoice_value": "12.345,60",
    "items_found": 2
  },
  "PACKING_LIST": {
    "packing_number": "PL-9",
    "packing_date": "01/09/2026",
    "packages_count": "1200",
    "net_weight_total": "4.800,5 kg"
  }
}`

func fullInput(h *harness) workflow.DocumentInput {
	keys := map[validation.DocType]string{
		validation.CertOrigen:  "docs/u/l/CERT_ORIGEN_1_cert.pdf",
		validation.Factura:     "docs/u/l/FACTURA_1_factura.jpg",
		validation.PackingList: "docs/u/l/PACKING_LIST_1_pl.pdf",
	}
	docs := make(map[validation.DocType][]documents.Document, len(keys))
	for t, key := range keys {
		h.files[key] = []byte("content of " + key)
		docs[t] = []documents.Document{doc(t, key)}
	}

	return workflow.DocumentInput{
		Lot: sampleLot(),
		Requirements: []validation.Requirement{
			{DocType: validation.CertOrigen, Required: true},
			{DocType: validation.Factura, Required: true},
			{DocType: validation.PackingList, Required: true},
		},
		Documents: docs,
	}
}

func TestValidateDocuments(t *testing.T) {
	t.Run("approves complete documentation", func(t *testing.T) {
		h := newHarness(t, workflow.Config{})
		h.model.generateFn = reply(validExtraction)

		out, err := h.rt.ValidateDocuments(context.Background(), fullInput(h))
		if err != nil {
			t.Fatalf("ValidateDocuments() error: %v", err)
		}

		if out.Result.Decision != validation.DecisionApproved {
			t.Errorf("decision = %s, want aprobado; checklist = %+v", out.Result.Decision, out.Result.Checklist)
		}
		if out.Result.Observations != validation.ObservationsApproved {
			t.Errorf("observations = %q", out.Result.Observations)
		}
		if out.Usage == nil || out.Usage.TotalTokens != 42 {
			t.Errorf("usage = %+v", out.Usage)
		}
		if h.model.calls() != 1 {
			t.Errorf("model calls = %d, want 1", h.model.calls())
		}
	})

	t.Run("builds one request with schema and blocks", func(t *testing.T) {
		h := newHarness(t, workflow.Config{})
		h.model.generateFn = reply(validExtraction)

		if _, err := h.rt.ValidateDocuments(context.Background(), fullInput(h)); err != nil {
			t.Fatalf("ValidateDocuments() error: %v", err)
		}

		req := h.model.requests[0]
		if req.Schema == nil {
			t.Fatal("request schema missing")
		}
		if !strings.Contains(req.System, "verificador de documentación") || !strings.Contains(req.System, "CERT_ORIGEN") {
			t.Errorf("system prompt = %q", req.System)
		}
		if !strings.HasPrefix(req.Parts[0].Text, "Valida SOLO cuatro campos por documento") ||
			!strings.Contains(req.Parts[0].Text, "LOTE-001") {
			t.Errorf("first part = %q", req.Parts[0].Text)
		}

		var blocks, inline int
		for _, p := range req.Parts {
			if strings.HasPrefix(p.Text, "Documento: ") {
				blocks++
			}
			if p.IsInline() {
				inline++
			}
		}
		if blocks != 3 || inline != 3 {
			t.Errorf("blocks = %d, inline = %d, want 3/3", blocks, inline)
		}

		for _, p := range req.Parts {
			if p.IsInline() && p.MIMEType == "" {
				t.Error("inline part without mime type")
			}
		}
	})

	t.Run("missing evidence is faltante without a model call", func(t *testing.T) {
		h := newHarness(t, workflow.Config{})
		in := fullInput(h)
		in.Documents = nil

		out, err := h.rt.ValidateDocuments(context.Background(), in)
		if err != nil {
			t.Fatalf("ValidateDocuments() error: %v", err)
		}
		if h.model.calls() != 0 {
			t.Errorf("model calls = %d, want 0", h.model.calls())
		}
		if out.Usage != nil {
			t.Error("usage should be nil without a call")
		}
		for _, e := range out.Result.Checklist {
			if e.Status != validation.StatusMissing {
				t.Errorf("%s status = %s, want faltante", e.DocType, e.Status)
			}
		}
		if out.Result.Decision != validation.DecisionPending {
			t.Errorf("decision = %s, want pendiente", out.Result.Decision)
		}
	})

	t.Run("contract violation is observado", func(t *testing.T) {
		h := newHarness(t, workflow.Config{})
		h.model.generateFn = reply(`{"per_doc": []}`)

		out, err := h.rt.ValidateDocuments(context.Background(), fullInput(h))
		if err != nil {
			t.Fatalf("ValidateDocuments() error: %v", err)
		}
		for _, e := range out.Result.Checklist {
			if e.Status != validation.StatusObserved {
				t.Errorf("%s status = %s, want observado", e.DocType, e.Status)
			}
		}
		if out.Result.Approved() {
			t.Error("violation must not approve")
		}
	})

	t.Run("rule violation is observado", func(t *testing.T) {
		h := newHarness(t, workflow.Config{})
		h.model.generateFn = reply(strings.Replace(validExtraction, `"Perú"`, `"Chile"`, 1))

		out, err := h.rt.ValidateDocuments(context.Background(), fullInput(h))
		if err != nil {
			t.Fatalf("ValidateDocuments() error: %v", err)
		}
		cert := out.Result.Checklist[0]
		if cert.Status != validation.StatusObserved {
			t.Fatalf("cert status = %s, want observado", cert.Status)
		}
		if len(cert.Issues) != 1 || cert.Issues[0].Field != "origin_country" {
			t.Errorf("cert issues = %+v", cert.Issues)
		}
	})

	t.Run("model failure", func(t *testing.T) {
		h := newHarness(t, workflow.Config{})
		h.model.generateFn = func(context.Context, model.Request) (*model.Response, error) {
			return nil, errors.New("upstream 500")
		}

		_, err := h.rt.ValidateDocuments(context.Background(), fullInput(h))
		if !errors.Is(err, workflow.ErrModelCall) {
			t.Errorf("error = %v, want ErrModelCall", err)
		}
	})

	t.Run("empty model response is pendiente", func(t *testing.T) {
		h := newHarness(t, workflow.Config{})
		h.model.generateFn = func(context.Context, model.Request) (*model.Response, error) {
			return nil, model.ErrEmptyResponse
		}

		out, err := h.rt.ValidateDocuments(context.Background(), fullInput(h))
		if err != nil {
			t.Fatalf("ValidateDocuments() error: %v", err)
		}
		for _, e := range out.Result.Checklist {
			if e.Status != validation.StatusObserved {
				t.Errorf("%s status = %s, want observado", e.DocType, e.Status)
			}
		}
		if out.Result.Decision != validation.DecisionPending {
			t.Errorf("decision = %s, want pendiente", out.Result.Decision)
		}
		if out.Usage == nil {
			t.Error("usage should be recorded for an attempted call")
		}
	})

	t.Run("model timeout", func(t *testing.T) {
		h := newHarness(t, workflow.Config{ModelTimeout: "20ms"})
		h.model.generateFn = func(ctx context.Context, _ model.Request) (*model.Response, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}

		_, err := h.rt.ValidateDocuments(context.Background(), fullInput(h))
		if !errors.Is(err, workflow.ErrModelTimeout) {
			t.Errorf("error = %v, want ErrModelTimeout", err)
		}
	})
}

func TestDocumentsSchema(t *testing.T) {
	s := workflow.DocumentsSchema()

	if len(s.Required) != len(validation.KnownTypes) {
		t.Fatalf("required = %v", s.Required)
	}

	for _, dt := range validation.KnownTypes {
		prop, ok := s.Properties[string(dt)]
		if !ok {
			t.Fatalf("missing %s", dt)
		}
		if !prop.Nullable || prop.Type != model.TypeObject {
			t.Errorf("%s should be a nullable object", dt)
		}
		if len(prop.Required) != len(validation.Fields(dt)) {
			t.Errorf("%s required = %v", dt, prop.Required)
		}
		for name, field := range prop.Properties {
			if !field.Nullable {
				t.Errorf("%s.%s should be nullable", dt, name)
			}
		}
	}

	if got := s.Properties["FACTURA"].Properties["items_found"].Type; got != model.TypeInteger {
		t.Errorf("items_found type = %s, want integer", got)
	}
}
