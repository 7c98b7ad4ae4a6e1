package events

import (
	"github.com/JaimeStill/agrocheck/pkg/query"
	"github.com/JaimeStill/agrocheck/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "lot_events", "e").
	Project("id", "ID").
	Project("lot_id", "LotID").
	Project("user_id", "UserID").
	Project("event_type", "Type").
	Project("data", "Data").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

func scanEvent(s repository.Scanner) (Event, error) {
	var e Event
	var data []byte
	err := s.Scan(
		&e.ID,
		&e.LotID,
		&e.UserID,
		&e.Type,
		&data,
		&e.CreatedAt,
	)
	e.Data = data
	return e, err
}
