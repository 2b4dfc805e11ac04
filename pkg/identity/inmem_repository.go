package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// InMemoryCredentialRepository implements CredentialRepository using in-memory storage
type InMemoryCredentialRepository struct {
	mu          sync.RWMutex
	credentials map[uuid.UUID]CredentialEntity
}

// NewInMemoryCredentialRepository creates a new in-memory credential repository
func NewInMemoryCredentialRepository() *InMemoryCredentialRepository {
	return &InMemoryCredentialRepository{
		credentials: make(map[uuid.UUID]CredentialEntity),
	}
}

// CreateCredential stores a new identity with its password hash
func (r *InMemoryCredentialRepository) CreateCredential(ctx context.Context, entity CredentialEntity) (CredentialEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.credentials {
		if strings.EqualFold(c.Email, entity.Email) {
			return CredentialEntity{}, ErrEmailExists
		}
	}

	r.credentials[entity.ID] = entity
	return entity, nil
}

// GetCredentialByEmail retrieves an identity with its hash by email
func (r *InMemoryCredentialRepository) GetCredentialByEmail(ctx context.Context, email string) (CredentialEntity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.credentials {
		if strings.EqualFold(c.Email, email) {
			return c, nil
		}
	}
	return CredentialEntity{}, ErrIdentityNotFound
}

// GetCredentialByID retrieves an identity with its hash by id
func (r *InMemoryCredentialRepository) GetCredentialByID(ctx context.Context, id uuid.UUID) (CredentialEntity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.credentials[id]
	if !ok {
		return CredentialEntity{}, ErrIdentityNotFound
	}
	return c, nil
}

// UpdatePasswordHash replaces the stored hash for an identity
func (r *InMemoryCredentialRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.credentials[id]
	if !ok {
		return ErrIdentityNotFound
	}
	c.PasswordHash = hash
	r.credentials[id] = c
	return nil
}

// DeleteCredential removes an identity
func (r *InMemoryCredentialRepository) DeleteCredential(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.credentials[id]; !ok {
		return ErrIdentityNotFound
	}
	delete(r.credentials, id)
	return nil
}
