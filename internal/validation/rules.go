package validation

import "strings"

type rule[T any] struct {
	field  string
	reason string
	valid  func(T) bool
}

func check[T any](v T, rules []rule[T]) []Issue {
	issues := make([]Issue, 0)
	for _, r := range rules {
		if !r.valid(v) {
			issues = append(issues, Issue{Field: r.field, Reason: r.reason})
		}
	}
	return issues
}

func hasText(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func positive(a Amount) bool {
	v, ok := a.Value()
	return ok && v > 0
}

func text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var certOrigenRules = []rule[CertOrigenFields]{
	{"hs_code", "HS inválido o ausente (esperado 6+ dígitos).", func(c CertOrigenFields) bool {
		return len(NormalizeHS(text(c.HSCode))) >= 6
	}},
	{"origin_country", "País de origen distinto de 'PE'.", func(c CertOrigenFields) bool {
		return NormalizeCountry(text(c.OriginCountry)) == "PE"
	}},
	{"invoice_number", "Falta número de factura.", func(c CertOrigenFields) bool {
		return hasText(c.InvoiceNumber)
	}},
	{"goods_description", "Falta descripción de la mercancía.", func(c CertOrigenFields) bool {
		return hasText(c.GoodsDescription)
	}},
}

var facturaRules = []rule[FacturaFields]{
	{"invoice_number", "Falta número de factura.", func(f FacturaFields) bool {
		return hasText(f.InvoiceNumber)
	}},
	{"consignee_name", "Falta nombre del consignatario.", func(f FacturaFields) bool {
		return hasText(f.ConsigneeName)
	}},
	{"total_invoice_value", "Total de factura inválido.", func(f FacturaFields) bool {
		return positive(f.TotalInvoiceValue)
	}},
	{"items_found", "No se detectaron ítems.", func(f FacturaFields) bool {
		v, ok := f.ItemsFound.Value()
		return ok && v >= 1
	}},
}

var packingListRules = []rule[PackingListFields]{
	{"packing_number", "Falta número de packing.", func(p PackingListFields) bool {
		return hasText(p.PackingNumber)
	}},
	{"packing_date", "Falta fecha de packing.", func(p PackingListFields) bool {
		return hasText(p.PackingDate)
	}},
	{"packages_count", "Número de paquetes inválido.", func(p PackingListFields) bool {
		return positive(p.PackagesCount)
	}},
	{"net_weight_total", "Peso neto total inválido.", func(p PackingListFields) bool {
		return positive(p.NetWeightTotal)
	}},
}

// issuesFor applies the rule set of t. The second result is false when t
// has a contract but no typed value was extracted.
func issuesFor(t DocType, ext Extraction) ([]Issue, bool) {
	switch t {
	case CertOrigen:
		if ext.CertOrigen == nil {
			return nil, false
		}
		return check(*ext.CertOrigen, certOrigenRules), true
	case Factura:
		if ext.Factura == nil {
			return nil, false
		}
		return check(*ext.Factura, facturaRules), true
	case PackingList:
		if ext.PackingList == nil {
			return nil, false
		}
		return check(*ext.PackingList, packingListRules), true
	}
	return []Issue{}, true
}
