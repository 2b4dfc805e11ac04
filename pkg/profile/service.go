package profile

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	idmerr "github.com/tendant/invite-idm/pkg/errors"
	"github.com/tendant/invite-idm/pkg/identity"
)

// MigrationResult summarizes one backfill run.
type MigrationResult struct {
	Total    int      `json:"total"`
	Migrated int      `json:"migrated"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ProfileService owns profile maintenance operations that sit outside
// the provisioning and sign-in flows.
type ProfileService struct {
	profileRepo      ProfileRepository
	identityProvider identity.Provider
}

// NewProfileService creates a new ProfileService
func NewProfileService(profileRepo ProfileRepository, identityProvider identity.Provider) *ProfileService {
	return &ProfileService{
		profileRepo:      profileRepo,
		identityProvider: identityProvider,
	}
}

// MigrateProfiles backfills the identity reference on legacy profiles
// that predate the identity store. The requester must be an Admin or
// Superadmin; the backfill itself spans all companies. A profile is
// skipped when no identity exists for its email; individual failures
// do not stop the run.
func (s *ProfileService) MigrateProfiles(ctx context.Context, requesterID uuid.UUID) (*MigrationResult, error) {
	admin, err := s.profileRepo.GetProfileByUserID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, idmerr.New(idmerr.ErrCodeAdminNotFound, "admin not found")
		}
		return nil, idmerr.Wrap(err, idmerr.ErrCodeInternal, "failed to load admin profile")
	}
	if !admin.Role.IsAdmin() {
		return nil, idmerr.New(idmerr.ErrCodeInsufficientPermission, "insufficient permissions")
	}

	profiles, err := s.profileRepo.FindProfilesWithoutAuthID(ctx)
	if err != nil {
		return nil, err
	}

	result := &MigrationResult{Total: len(profiles)}
	for _, p := range profiles {
		ident, err := s.identityProvider.GetIdentityByEmail(ctx, p.Email)
		if err != nil {
			if errors.Is(err, identity.ErrIdentityNotFound) {
				result.Skipped++
				continue
			}
			result.Errors = append(result.Errors, p.Email+": "+err.Error())
			continue
		}

		if err := s.profileRepo.SetAuthID(ctx, p.UserID, ident.ID); err != nil {
			result.Errors = append(result.Errors, p.Email+": "+err.Error())
			continue
		}
		result.Migrated++
	}

	slog.Info("Profile migration finished", "total", result.Total,
		"migrated", result.Migrated, "skipped", result.Skipped, "errors", len(result.Errors))
	return result, nil
}
