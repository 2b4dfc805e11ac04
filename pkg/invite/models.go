package invite

import (
	"time"

	"github.com/google/uuid"
)

// Status is the computed lifecycle state of an invitation.
type Status string

const (
	StatusPending Status = "Pending"
	StatusUsed    Status = "Used"
	StatusExpired Status = "Expired"
)

// Invitation authorizes exactly one email to provision an account.
// Token is the single-use provisioning secret; it doubles as the
// identity's initial password. ExpiresAt nil means the invitation
// never expires.
type Invitation struct {
	InviteID  uuid.UUID  `json:"invite_id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	CompanyID int32      `json:"company_id"`
	Token     string     `json:"-"`
	InvitedAt time.Time  `json:"invited_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Used      bool       `json:"used"`
}

// IsExpired reports whether the invitation's expiry has passed.
func (i Invitation) IsExpired(now time.Time) bool {
	return i.ExpiresAt != nil && i.ExpiresAt.Before(now)
}

// StatusAt computes the invitation status at the given time.
// A used invitation is Used even if it has also expired.
func (i Invitation) StatusAt(now time.Time) Status {
	if i.Used {
		return StatusUsed
	}
	if i.IsExpired(now) {
		return StatusExpired
	}
	return StatusPending
}

// CreateInviteParams are the attributes needed to create an invitation.
type CreateInviteParams struct {
	Email     string
	FirstName string
	LastName  string
	CompanyID int32
	Token     string
	ExpiresAt *time.Time
}
