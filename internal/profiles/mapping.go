package profiles

import (
	"github.com/JaimeStill/agrocheck/pkg/query"
	"github.com/JaimeStill/agrocheck/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "profiles", "p").
	Project("id", "ID").
	Project("email", "Email").
	Project("full_name", "FullName").
	Project("plan", "Plan").
	Project("plan_expires_at", "PlanExpiresAt").
	Project("ia_used", "IAUsed").
	Project("ia_quota", "IAQuota").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

const returning = `id, email, full_name, plan, plan_expires_at, ia_used, ia_quota, created_at, updated_at`

func scanProfile(s repository.Scanner) (Profile, error) {
	var p Profile
	err := s.Scan(
		&p.ID,
		&p.Email,
		&p.FullName,
		&p.Plan,
		&p.PlanExpiresAt,
		&p.IAUsed,
		&p.IAQuota,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
