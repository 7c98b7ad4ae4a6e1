package requirements

import (
	"github.com/JaimeStill/agrocheck/pkg/query"
	"github.com/JaimeStill/agrocheck/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "doc_requirements", "r").
	Project("id", "ID").
	Project("product", "Product").
	Project("destination_country", "DestinationCountry").
	Project("doc_type", "DocType").
	Project("required", "Required").
	Project("created_at", "CreatedAt")

var docTypeProjection = query.
	NewProjectionMap("public", "required_docs", "d").
	Project("doc_type", "DocType").
	Project("label", "Label").
	Project("default_required", "DefaultRequired")

var defaultSort = query.SortField{Field: "DocType"}

func scanRequirement(s repository.Scanner) (Requirement, error) {
	var r Requirement
	err := s.Scan(
		&r.ID,
		&r.Product,
		&r.DestinationCountry,
		&r.DocType,
		&r.Required,
		&r.CreatedAt,
	)
	return r, err
}

func scanDocType(s repository.Scanner) (DocTypeDef, error) {
	var d DocTypeDef
	err := s.Scan(&d.DocType, &d.Label, &d.DefaultRequired)
	return d, err
}
