package lots

import (
	"net/url"

	"github.com/JaimeStill/agrocheck/pkg/query"
	"github.com/JaimeStill/agrocheck/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "lots", "l").
	Project("id", "ID").
	Project("user_id", "UserID").
	Project("product", "Product").
	Project("variety", "Variety").
	Project("lot_code", "LotCode").
	Project("origin_region", "OriginRegion").
	Project("origin_province", "OriginProvince").
	Project("destination_country", "DestinationCountry").
	Project("approved", "Approved").
	Project("status", "Status").
	Project("observations", "Observations").
	Project("certificate_path", "CertificatePath").
	Project("certificate_number", "CertificateNumber").
	Project("validated_at", "ValidatedAt").
	Project("reviewed_by", "ReviewedBy").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

// Returning lists the lot columns in projection order for RETURNING clauses.
const Returning = `id, user_id, product, variety, lot_code, origin_region, origin_province,
	destination_country, approved, status, observations, certificate_path,
	certificate_number, validated_at, reviewed_by, created_at, updated_at`

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for lot queries.
// Status and DestinationCountry use exact matching, Product contains matching.
type Filters struct {
	Status             *Status `json:"status,omitempty"`
	Product            *string `json:"product,omitempty"`
	DestinationCountry *string `json:"destination_country,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereContains("Product", f.Product).
		WhereEquals("DestinationCountry", f.DestinationCountry)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Unknown status values are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := Status(values.Get("status")); s.Valid() {
		f.Status = &s
	}

	if p := values.Get("product"); p != "" {
		f.Product = &p
	}

	if d := values.Get("destination_country"); d != "" {
		f.DestinationCountry = &d
	}

	return f
}

// Scan reads a lot row in projection order.
func Scan(s repository.Scanner) (Lot, error) {
	var l Lot
	err := s.Scan(
		&l.ID,
		&l.UserID,
		&l.Product,
		&l.Variety,
		&l.LotCode,
		&l.OriginRegion,
		&l.OriginProvince,
		&l.DestinationCountry,
		&l.Approved,
		&l.Status,
		&l.Observations,
		&l.CertificatePath,
		&l.CertificateNumber,
		&l.ValidatedAt,
		&l.ReviewedBy,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}
