package profile

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryProfileRepository implements ProfileRepository using in-memory storage
type InMemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]Profile
}

// NewInMemoryProfileRepository creates a new in-memory profile repository
func NewInMemoryProfileRepository() *InMemoryProfileRepository {
	return &InMemoryProfileRepository{
		profiles: make(map[uuid.UUID]Profile),
	}
}

// CreateProfile creates a new profile
func (r *InMemoryProfileRepository) CreateProfile(ctx context.Context, params CreateProfileParams) (Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.profiles {
		if strings.EqualFold(p.Email, params.Email) {
			return Profile{}, ErrProfileExists
		}
	}

	p := Profile{
		UserID:          uuid.New(),
		AuthID:          params.AuthID,
		Email:           params.Email,
		FirstName:       params.FirstName,
		LastName:        params.LastName,
		CompanyID:       params.CompanyID,
		Role:            params.Role,
		FirstConnection: params.FirstConnection,
		Active:          params.Active,
		CreatedAt:       time.Now().UTC(),
	}
	r.profiles[p.UserID] = p
	return p, nil
}

// GetProfileByUserID retrieves a profile by its own id
func (r *InMemoryProfileRepository) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	return p, nil
}

// GetProfileByAuthID retrieves a profile by its identity reference
func (r *InMemoryProfileRepository) GetProfileByAuthID(ctx context.Context, authID uuid.UUID) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.profiles {
		if p.AuthID == authID && authID != uuid.Nil {
			return p, nil
		}
	}
	return Profile{}, ErrProfileNotFound
}

// GetProfileByEmail retrieves a profile by email
func (r *InMemoryProfileRepository) GetProfileByEmail(ctx context.Context, email string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.profiles {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return Profile{}, ErrProfileNotFound
}

// SetFirstConnection updates the first_connection flag
func (r *InMemoryProfileRepository) SetFirstConnection(ctx context.Context, userID uuid.UUID, firstConnection bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[userID]
	if !ok {
		return ErrProfileNotFound
	}
	p.FirstConnection = firstConnection
	r.profiles[userID] = p
	return nil
}

// SetLastLogin records the time of the latest successful sign-in
func (r *InMemoryProfileRepository) SetLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[userID]
	if !ok {
		return ErrProfileNotFound
	}
	at = at.UTC()
	p.LastLoginAt = &at
	r.profiles[userID] = p
	return nil
}

// SetAuthID backfills the identity reference on a legacy profile
func (r *InMemoryProfileRepository) SetAuthID(ctx context.Context, userID uuid.UUID, authID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[userID]
	if !ok {
		return ErrProfileNotFound
	}
	p.AuthID = authID
	r.profiles[userID] = p
	return nil
}

// FindProfilesWithoutAuthID lists legacy profiles missing an identity reference
func (r *InMemoryProfileRepository) FindProfilesWithoutAuthID(ctx context.Context) ([]Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Profile
	for _, p := range r.profiles {
		if p.AuthID == uuid.Nil {
			result = append(result, p)
		}
	}
	return result, nil
}

// DeleteProfile removes a profile
func (r *InMemoryProfileRepository) DeleteProfile(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[userID]; !ok {
		return ErrProfileNotFound
	}
	delete(r.profiles, userID)
	return nil
}
