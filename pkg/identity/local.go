package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/invite-idm/pkg/tokengenerator"
	"golang.org/x/crypto/bcrypt"
)

const defaultSessionExpiry = 15 * time.Minute

// LocalProvider implements Provider with credentials held in its own
// repository. Passwords are stored as bcrypt hashes; sessions are JWTs
// issued through the token generator.
type LocalProvider struct {
	repository    CredentialRepository
	tokenGen      tokengenerator.TokenGenerator
	sessionExpiry time.Duration
}

// LocalProviderOption is a functional option for configuring LocalProvider
type LocalProviderOption func(*LocalProvider)

// WithSessionExpiry sets the lifetime of issued sessions
func WithSessionExpiry(expiry time.Duration) LocalProviderOption {
	return func(p *LocalProvider) {
		p.sessionExpiry = expiry
	}
}

// NewLocalProvider creates a local identity provider
func NewLocalProvider(repository CredentialRepository, tokenGen tokengenerator.TokenGenerator, opts ...LocalProviderOption) *LocalProvider {
	p := &LocalProvider{
		repository:    repository,
		tokenGen:      tokenGen,
		sessionExpiry: defaultSessionExpiry,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateIdentity implements Provider.CreateIdentity
func (p *LocalProvider) CreateIdentity(ctx context.Context, params CreateIdentityParams) (Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed to hash password", "err", err)
		return Identity{}, fmt.Errorf("failed to hash password: %w", err)
	}

	entity := CredentialEntity{
		Identity: Identity{
			ID:             uuid.New(),
			Email:          params.Email,
			EmailConfirmed: params.EmailConfirmed,
			Metadata:       params.Metadata,
			CreatedAt:      time.Now().UTC(),
		},
		PasswordHash: hash,
	}

	created, err := p.repository.CreateCredential(ctx, entity)
	if err != nil {
		return Identity{}, err
	}
	return created.Identity, nil
}

// VerifyCredential implements Provider.VerifyCredential
func (p *LocalProvider) VerifyCredential(ctx context.Context, email, password string) (Session, error) {
	entity, err := p.repository.GetCredentialByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			// same error as a wrong password, to prevent enumeration
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("failed to load credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(entity.PasswordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("failed to compare password: %w", err)
	}

	token, expiresAt, err := p.tokenGen.GenerateToken(entity.ID.String(), p.sessionExpiry, map[string]interface{}{
		"email": entity.Email,
	})
	if err != nil {
		return Session{}, fmt.Errorf("failed to issue session token: %w", err)
	}

	return Session{
		IdentityID:  entity.ID,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// UpdateCredential implements Provider.UpdateCredential
func (p *LocalProvider) UpdateCredential(ctx context.Context, id uuid.UUID, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed to hash password", "err", err)
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return p.repository.UpdatePasswordHash(ctx, id, hash)
}

// DeleteIdentity implements Provider.DeleteIdentity
func (p *LocalProvider) DeleteIdentity(ctx context.Context, id uuid.UUID) error {
	return p.repository.DeleteCredential(ctx, id)
}

// GetIdentityByEmail implements Provider.GetIdentityByEmail
func (p *LocalProvider) GetIdentityByEmail(ctx context.Context, email string) (Identity, error) {
	entity, err := p.repository.GetCredentialByEmail(ctx, email)
	if err != nil {
		return Identity{}, err
	}
	return entity.Identity, nil
}
