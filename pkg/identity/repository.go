package identity

import (
	"context"

	"github.com/google/uuid"
)

// CredentialEntity is the stored form of an identity inside the local
// provider: the identity attributes plus the password hash.
type CredentialEntity struct {
	Identity
	PasswordHash []byte
}

// CredentialRepository defines the persistence interface for the local
// identity provider.
type CredentialRepository interface {
	// CreateCredential stores a new identity with its password hash.
	// Must enforce email uniqueness and return ErrEmailExists on violation.
	CreateCredential(ctx context.Context, entity CredentialEntity) (CredentialEntity, error)
	// GetCredentialByEmail retrieves an identity with its hash by email
	GetCredentialByEmail(ctx context.Context, email string) (CredentialEntity, error)
	// GetCredentialByID retrieves an identity with its hash by id
	GetCredentialByID(ctx context.Context, id uuid.UUID) (CredentialEntity, error)
	// UpdatePasswordHash replaces the stored hash for an identity
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error
	// DeleteCredential removes an identity
	DeleteCredential(ctx context.Context, id uuid.UUID) error
}
