package workflow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/agrocheck/internal/lots"
	"github.com/JaimeStill/agrocheck/internal/validation"
	"github.com/JaimeStill/agrocheck/pkg/model"
)

// LotContext is the lot summary serialized into user messages.
type LotContext struct {
	Lot          LotFields                `json:"lote"`
	Requirements []validation.Requirement `json:"requirements"`
}

// LotFields are the descriptive lot fields the model sees.
type LotFields struct {
	Product            string  `json:"product"`
	Variety            *string `json:"variety"`
	LotCode            string  `json:"lot_code"`
	OriginRegion       *string `json:"origin_region"`
	OriginProvince     *string `json:"origin_province"`
	DestinationCountry string  `json:"destination_country"`
}

// NewLotContext builds the context block for lot and reqs.
func NewLotContext(lot lots.Lot, reqs []validation.Requirement) LotContext {
	return LotContext{
		Lot: LotFields{
			Product:            lot.Product,
			Variety:            lot.Variety,
			LotCode:            lot.LotCode,
			OriginRegion:       lot.OriginRegion,
			OriginProvince:     lot.OriginProvince,
			DestinationCountry: lot.DestinationCountry,
		},
		Requirements: reqs,
	}
}

// DocumentParts builds the user message of a document run. Only known
// document types with surviving evidence get a block.
func DocumentParts(lot lots.Lot, reqs []validation.Requirement, evidence []Evidence, maxText int) ([]model.Part, error) {
	ctxJSON, err := json.MarshalIndent(NewLotContext(lot, reqs), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode lot context: %w", err)
	}

	parts := []model.Part{model.Text(fmt.Sprintf(
		"Valida SOLO cuatro campos por documento (según SYSTEM_PROMPT) para el lote %s.\nContexto:\n%s",
		lot.Reference(), ctxJSON,
	))}

	for _, e := range evidence {
		if !e.DocType.Known() || !e.Present() {
			continue
		}
		parts = append(parts, model.Text("Documento: "+string(e.DocType)))
		for _, f := range e.Files {
			parts = append(parts, model.Inline(f.MIMEType, f.Data))
		}
		if text := e.Text(maxText); text != "" {
			parts = append(parts, model.Text("Texto OCR (si ayuda):\n"+text))
		}
	}

	return parts, nil
}

// PhotoParts builds the user message of a photo inspection.
func PhotoParts(lot lots.Lot, files []File) []model.Part {
	product := lot.Product
	if strings.TrimSpace(product) == "" {
		product = "-"
	}

	parts := []model.Part{model.Text(fmt.Sprintf(
		"Lote: %s\nProducto esperado: %s\n"+
			"Para cada imagen, devuelve: product_detected, confidence (0..1), ripeness (unripe|ripe|overripe|unknown),\n"+
			"issues (array), export_ready (true/false) y notes (breve).",
		lot.Reference(), product,
	))}

	for i, f := range files {
		parts = append(parts,
			model.Text(fmt.Sprintf("Foto %d: %s", i+1, f.Path)),
			model.Inline(f.MIMEType, f.Data),
		)
	}
	return parts
}

// ChatParts builds the user message of an assistant question.
func ChatParts(lot lots.Lot, reqs []validation.Requirement, message string) ([]model.Part, error) {
	ctxJSON, err := json.Marshal(NewLotContext(lot, reqs))
	if err != nil {
		return nil, fmt.Errorf("encode lot context: %w", err)
	}
	return []model.Part{
		model.Text(fmt.Sprintf("Contexto: %s\n\nPregunta: %s", ctxJSON, message)),
	}, nil
}
