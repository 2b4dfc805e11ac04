package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrEmailExists        = errors.New("identity already exists for email")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Metadata is the attribute bag attached to an identity at creation time.
// The provider stores it opaquely; only provisioning writes it.
type Metadata struct {
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	CompanyID       int32  `json:"company_id,omitempty"`
	FirstConnection bool   `json:"first_connection,omitempty"`
}

// Identity represents an identity owned by the provider. The credential
// itself never leaves the provider.
type Identity struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	EmailConfirmed bool      `json:"email_confirmed"`
	Metadata       Metadata  `json:"metadata"`
	CreatedAt      time.Time `json:"created_at"`
}

// Session is the result of a successful credential verification.
type Session struct {
	IdentityID  uuid.UUID `json:"identity_id"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// CreateIdentityParams are the attributes needed to create an identity.
type CreateIdentityParams struct {
	Email          string
	Password       string
	EmailConfirmed bool
	Metadata       Metadata
}

// Provider is the boundary to the external identity authority. It owns
// credential storage and verification; callers reference identities by
// the provider-assigned id and never see the credential.
type Provider interface {
	// CreateIdentity registers a new identity with an initial password.
	// Returns ErrEmailExists when the email is already registered; the
	// provider's own uniqueness constraint is the backstop for the
	// provisioning pre-check race.
	CreateIdentity(ctx context.Context, params CreateIdentityParams) (Identity, error)

	// VerifyCredential checks an email/password pair and returns a live
	// session on success. Returns ErrInvalidCredentials for both unknown
	// email and wrong password; callers must not distinguish the two.
	VerifyCredential(ctx context.Context, email, password string) (Session, error)

	// UpdateCredential replaces the password for the identity
	UpdateCredential(ctx context.Context, id uuid.UUID, newPassword string) error

	// DeleteIdentity removes an identity; only used as a provisioning compensation
	DeleteIdentity(ctx context.Context, id uuid.UUID) error

	// GetIdentityByEmail looks up an identity by email.
	// Returns ErrIdentityNotFound when no identity exists.
	GetIdentityByEmail(ctx context.Context, email string) (Identity, error)
}
