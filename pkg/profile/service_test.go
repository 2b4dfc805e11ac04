package profile

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	idmerr "github.com/tendant/invite-idm/pkg/errors"
	"github.com/tendant/invite-idm/pkg/identity"
	"github.com/tendant/invite-idm/pkg/tokengenerator"
)

func TestMigrateProfiles(t *testing.T) {
	ctx := context.Background()

	credRepo := identity.NewInMemoryCredentialRepository()
	tokenGen := tokengenerator.NewJwtTokenGenerator("test-secret", "test", "test")
	provider := identity.NewLocalProvider(credRepo, tokenGen)
	profileRepo := NewInMemoryProfileRepository()

	// legacy profile whose identity exists, created before the link
	ident, err := provider.CreateIdentity(ctx, identity.CreateIdentityParams{
		Email:    "legacy@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	legacy, err := profileRepo.CreateProfile(ctx, CreateProfileParams{
		Email:     "legacy@example.com",
		FirstName: "Old",
		LastName:  "Timer",
		CompanyID: 1,
		Role:      RoleUser,
		Active:    true,
	})
	require.NoError(t, err)

	// legacy profile with no identity at all
	_, err = profileRepo.CreateProfile(ctx, CreateProfileParams{
		Email:     "ghost@example.com",
		FirstName: "No",
		LastName:  "Identity",
		CompanyID: 1,
		Role:      RoleUser,
		Active:    true,
	})
	require.NoError(t, err)

	// already linked profile, must be untouched
	otherIdent, err := provider.CreateIdentity(ctx, identity.CreateIdentityParams{
		Email:    "linked@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	_, err = profileRepo.CreateProfile(ctx, CreateProfileParams{
		AuthID:    otherIdent.ID,
		Email:     "linked@example.com",
		FirstName: "Already",
		LastName:  "Linked",
		CompanyID: 1,
		Role:      RoleUser,
		Active:    true,
	})
	require.NoError(t, err)

	admin, err := profileRepo.CreateProfile(ctx, CreateProfileParams{
		AuthID:    uuid.New(),
		Email:     "admin@example.com",
		FirstName: "Ops",
		LastName:  "Admin",
		CompanyID: 1,
		Role:      RoleAdmin,
		Active:    true,
	})
	require.NoError(t, err)

	service := NewProfileService(profileRepo, provider)
	result, err := service.MigrateProfiles(ctx, admin.UserID)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Migrated)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Errors)

	migrated, err := profileRepo.GetProfileByUserID(ctx, legacy.UserID)
	require.NoError(t, err)
	assert.Equal(t, ident.ID, migrated.AuthID)

	ghost, err := profileRepo.GetProfileByEmail(ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, ghost.AuthID)

	// a second run finds only the ghost and changes nothing
	result, err = service.MigrateProfiles(ctx, admin.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 0, result.Migrated)
	assert.Equal(t, 1, result.Skipped)
}

func TestMigrateProfiles_RequiresAdmin(t *testing.T) {
	ctx := context.Background()

	credRepo := identity.NewInMemoryCredentialRepository()
	tokenGen := tokengenerator.NewJwtTokenGenerator("test-secret", "test", "test")
	provider := identity.NewLocalProvider(credRepo, tokenGen)
	profileRepo := NewInMemoryProfileRepository()

	user, err := profileRepo.CreateProfile(ctx, CreateProfileParams{
		AuthID:    uuid.New(),
		Email:     "member@example.com",
		FirstName: "Plain",
		LastName:  "Member",
		CompanyID: 1,
		Role:      RoleUser,
		Active:    true,
	})
	require.NoError(t, err)

	service := NewProfileService(profileRepo, provider)

	_, err = service.MigrateProfiles(ctx, uuid.New())
	assert.True(t, idmerr.IsCode(err, idmerr.ErrCodeAdminNotFound))

	_, err = service.MigrateProfiles(ctx, user.UserID)
	assert.True(t, idmerr.IsCode(err, idmerr.ErrCodeInsufficientPermission))
}
