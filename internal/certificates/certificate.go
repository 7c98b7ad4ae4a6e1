// Package certificates renders, stores and serves the quality and
// documentation certificate issued for an approved lot.
package certificates

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/agrocheck/internal/lots"
)

// URLTTL is the validity of certificate download links.
const URLTTL = 60 * time.Second

// Domain errors for certificate operations.
var (
	ErrRender      = errors.New("certificate render failed")
	ErrUpload      = errors.New("certificate upload failed")
	ErrNotIssued   = errors.New("el lote no tiene certificado")
	ErrLotNotFound = errors.New("lote no encontrado")
)

// MapHTTPStatus maps certificate errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotIssued) || errors.Is(err, ErrLotNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Certificate is the content printed on a certificate.
type Certificate struct {
	Number       int64
	Company      string
	TaxID        string
	Product      string
	Variety      string
	LotCode      string
	Origin       string
	Destination  string
	IssuedAt     time.Time
	Approved     bool
	Observations string
	// Verification is encoded in the QR code.
	Verification string
}

// FromLot fills a certificate for an approved lot.
func FromLot(lot lots.Lot, company, observations string, issuedAt time.Time) Certificate {
	c := Certificate{
		Number:       lot.CertificateNumber,
		Company:      company,
		Product:      lot.Product,
		LotCode:      lot.Reference(),
		Origin:       lot.Origin(),
		Destination:  lot.DestinationCountry,
		IssuedAt:     issuedAt,
		Approved:     true,
		Observations: strings.TrimSpace(observations),
	}
	if lot.Variety != nil {
		c.Variety = *lot.Variety
	}
	c.Verification = strings.Join([]string{
		"AGROCHECK",
		lot.ID.String(),
		strconv.FormatInt(c.Number, 10),
		issuedAt.UTC().Format("2006-01-02"),
	}, "|")
	return c
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}
