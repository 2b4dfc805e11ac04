package profile

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the application-level role of a profile.
//
// Historically the role column carried inconsistent spellings
// ("Admin"/"ADMIN", "Superadmin"/"SUPER_ADMIN"); ParseRole normalizes
// all of them at the boundary so the rest of the code only ever sees
// the canonical values below.
type Role string

const (
	RoleUser       Role = "User"
	RoleAdmin      Role = "Admin"
	RoleSuperadmin Role = "Superadmin"
)

// ParseRole normalizes a raw role string to a canonical Role.
// Unknown or empty values normalize to RoleUser.
func ParseRole(raw string) Role {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), "_", "")) {
	case "admin":
		return RoleAdmin
	case "superadmin":
		return RoleSuperadmin
	default:
		return RoleUser
	}
}

// IsAdmin reports whether the role may manage invitations.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperadmin
}

func (r Role) String() string {
	return string(r)
}

// Profile is the application-level user record, distinct from the
// identity held by the identity provider. AuthID references the
// provider-assigned identity 1:1; it is nullable only for legacy rows
// that predate provider-managed identities (see MigrateProfiles).
type Profile struct {
	UserID          uuid.UUID  `json:"user_id"`
	AuthID          uuid.UUID  `json:"auth_id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	CompanyID       int32      `json:"company_id"`
	Role            Role       `json:"role"`
	FirstConnection bool       `json:"first_connection"`
	Active          bool       `json:"active"`
	LastLoginAt     *time.Time `json:"last_login_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// CreateProfileParams are the attributes needed to create a profile.
type CreateProfileParams struct {
	AuthID          uuid.UUID
	Email           string
	FirstName       string
	LastName        string
	CompanyID       int32
	Role            Role
	FirstConnection bool
	Active          bool
}
