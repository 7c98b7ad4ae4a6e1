// Package profiles implements the per-user profile that carries the display
// name and the monthly AI usage quota.
package profiles

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultDisplayName is shown when a profile has neither a name nor an email.
const DefaultDisplayName = "Exportador"

// Profile is the account record keyed by the authenticated user id.
type Profile struct {
	ID            uuid.UUID  `json:"id"`
	Email         *string    `json:"email"`
	FullName      *string    `json:"full_name"`
	Plan          string     `json:"plan"`
	PlanExpiresAt *time.Time `json:"plan_expires_at"`
	IAUsed        int        `json:"ia_used"`
	IAQuota       int        `json:"ia_quota"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CanRun reports whether one more AI run fits within the quota.
func (p Profile) CanRun() bool {
	return p.IAUsed+1 <= p.IAQuota
}

// DisplayName returns the full name, else the email, else DefaultDisplayName.
func (p Profile) DisplayName() string {
	if p.FullName != nil && strings.TrimSpace(*p.FullName) != "" {
		return *p.FullName
	}
	if p.Email != nil && *p.Email != "" {
		return *p.Email
	}
	return DefaultDisplayName
}

// Usage summarizes quota consumption.
type Usage struct {
	Plan          string     `json:"plan"`
	PlanExpiresAt *time.Time `json:"plan_expires_at"`
	IAUsed        int        `json:"ia_used"`
	IAQuota       int        `json:"ia_quota"`
	Remaining     int        `json:"remaining"`
	Percent       int        `json:"percent"`
}

// Usage computes the usage summary of p. Percent is capped at 100.
func (p Profile) Usage() Usage {
	u := Usage{
		Plan:          p.Plan,
		PlanExpiresAt: p.PlanExpiresAt,
		IAUsed:        p.IAUsed,
		IAQuota:       p.IAQuota,
		Remaining:     max(p.IAQuota-p.IAUsed, 0),
	}
	if p.IAQuota > 0 {
		u.Percent = min(100, (p.IAUsed*100+p.IAQuota/2)/p.IAQuota)
	}
	return u
}

// UpdateCommand changes the display name.
type UpdateCommand struct {
	FullName string `json:"full_name"`
}
