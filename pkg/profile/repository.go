package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists for email")
)

// ProfileRepository defines the interface for profile persistence.
type ProfileRepository interface {
	// CreateProfile creates a new profile and returns it with its assigned id
	CreateProfile(ctx context.Context, params CreateProfileParams) (Profile, error)
	// GetProfileByUserID retrieves a profile by its own id
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (Profile, error)
	// GetProfileByAuthID retrieves a profile by its identity reference
	GetProfileByAuthID(ctx context.Context, authID uuid.UUID) (Profile, error)
	// GetProfileByEmail retrieves a profile by email
	GetProfileByEmail(ctx context.Context, email string) (Profile, error)
	// SetFirstConnection updates the first_connection flag
	SetFirstConnection(ctx context.Context, userID uuid.UUID, firstConnection bool) error
	// SetLastLogin records the time of the latest successful sign-in
	SetLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
	// SetAuthID backfills the identity reference on a legacy profile
	SetAuthID(ctx context.Context, userID uuid.UUID, authID uuid.UUID) error
	// FindProfilesWithoutAuthID lists legacy profiles missing an identity reference
	FindProfilesWithoutAuthID(ctx context.Context) ([]Profile, error)
	// DeleteProfile removes a profile; only used as a provisioning compensation
	DeleteProfile(ctx context.Context, userID uuid.UUID) error
}
