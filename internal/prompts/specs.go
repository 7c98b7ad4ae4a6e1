package prompts

import "strings"

const documentsSpec = `Responde con un objeto JSON con EXACTAMENTE esta estructura:

{
  "CERT_ORIGEN": {
    "hs_code": "<string|null>",
    "origin_country": "<string|null>",
    "invoice_number": "<string|null>",
    "goods_description": "<string|null>"
  },
  "FACTURA": {
    "invoice_number": "<string|null>",
    "consignee_name": "<string|null>",
    "total_invoice_value": "<string|null>",
    "items_found": <integer|null>
  },
  "PACKING_LIST": {
    "packing_number": "<string|null>",
    "packing_date": "<string|null>",
    "packages_count": "<string|null>",
    "net_weight_total": "<string|null>"
  }
}

Restricciones de campos:
- hs_code: 6 o más dígitos tras normalización.
- origin_country: esperable "PE".
- total_invoice_value, packages_count, net_weight_total: el monto o cantidad
  tal como aparece, con sus separadores; net_weight_total preferible en kg.
- items_found: cantidad de renglones de ítems detectados en la factura.

Restricciones de comportamiento:
- Devuelve SOLO JSON válido, sin bloques de código.
- Si no se adjuntó un documento de un tipo, ese tipo es null.
- No agregues claves que no estén en la estructura.`

const photosSpec = `Responde con un objeto JSON con EXACTAMENTE esta estructura:

{
  "per_photo": [
    {
      "photo_path": "<string>",
      "product_detected": "<string>",
      "confidence": <number 0..1>,
      "ripeness": "<unripe|ripe|overripe|unknown>",
      "issues": ["<string>"],
      "export_ready": <boolean>,
      "notes": "<string breve>"
    }
  ],
  "summary": "<string>"
}

Restricciones de comportamiento:
- Un elemento de per_photo por imagen, en el mismo orden en que se adjuntaron.
- Devuelve SOLO JSON válido, sin bloques de código.`

const assistantSpec = `Responde en texto plano, en español, en no más de unos pocos párrafos.
Si la pregunta es sobre un documento observado o faltante, indica qué campo corregir y cómo.`

var specs = map[Stage]string{
	StageDocuments: documentsSpec,
	StagePhotos:    photosSpec,
	StageAssistant: assistantSpec,
}

// Spec returns the hardcoded specification for a pipeline stage.
// Specifications define the expected output format and behavioral constraints
// and cannot be overridden.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}

// Compose joins stage instructions and the stage specification into one
// system instruction.
func Compose(instructions, spec string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{instructions, spec} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}
