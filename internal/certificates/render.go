package certificates

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

const (
	title          = "Constancia de Aprobación de Calidad y Documentación"
	footer         = "Documento generado por AgroCheck."
	noObservations = "Sin observaciones"
)

const declaration = "Se certifica que la documentación y calidad del lote descrito cumple con los " +
	"criterios establecidos para su exportación, de acuerdo a los requisitos vigentes " +
	"informados por las entidades competentes."

// Layout in points on an A4 page.
const (
	pageWidth  = 595.28
	marginX    = 60.0
	labelWidth = 160.0
	lineHeight = 22.0
	qrSize     = 90.0
)

// Render draws c on a single A4 page and returns the PDF bytes.
func Render(c Certificate) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(marginX, 40, marginX)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(marginX, 45)
	pdf.MultiCell(pageWidth-2*marginX, 22, tr(title), "", "C", false)

	number := "—"
	if c.Number > 0 {
		number = strconv.FormatInt(c.Number, 10)
	}
	status := "RECHAZADO"
	if c.Approved {
		status = "APROBADO"
	}

	rows := []struct{ label, value string }{
		{"Certificado Nº:", number},
		{"Empresa:", c.Company},
		{"RUC:", orDash(c.TaxID)},
		{"Producto:", c.Product},
		{"Variedad:", orDash(c.Variety)},
		{"Lote:", c.LotCode},
		{"Origen:", orDash(c.Origin)},
		{"Destino:", c.Destination},
		{"Fecha de emisión:", c.IssuedAt.Format("02/01/2006")},
		{"Estado:", status},
	}

	y := 110.0
	for _, r := range rows {
		pdf.SetXY(marginX, y)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(labelWidth, 14, tr(r.label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 14, tr(r.value), "", 0, "L", false, 0, "")
		y += lineHeight
	}

	y += 8
	observations := c.Observations
	if observations == "" {
		observations = noObservations
	}
	y = paragraph(pdf, tr, y, "Observaciones:", observations)
	y = paragraph(pdf, tr, y+20, "Declaración:", declaration)

	if err := drawQR(pdf, c.Verification, y+20); err != nil {
		return nil, err
	}

	pdf.SetFont("Helvetica", "I", 10)
	pdf.SetXY(marginX, 770)
	pdf.CellFormat(0, 12, tr(footer), "", 0, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return buf.Bytes(), nil
}

func paragraph(pdf *gofpdf.Fpdf, tr func(string) string, y float64, label, body string) float64 {
	pdf.SetXY(marginX, y)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 14, tr(label), "", 1, "L", false, 0, "")
	pdf.SetX(marginX)
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(pageWidth-2*marginX, 14, tr(body), "", "L", false)
	return pdf.GetY()
}

func drawQR(pdf *gofpdf.Fpdf, content string, y float64) error {
	if content == "" {
		return nil
	}

	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("%w: qr: %w", ErrRender, err)
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("verification", opts, bytes.NewReader(png))
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("%w: qr image: %w", ErrRender, err)
	}

	// Keep the code above the footer.
	y = min(y, 770-qrSize-12)
	pdf.ImageOptions("verification", pageWidth-marginX-qrSize, y, qrSize, qrSize, false, opts, 0, "")
	return nil
}
