package finalize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	idmerr "github.com/tendant/invite-idm/pkg/errors"
	"github.com/tendant/invite-idm/pkg/identity"
	"github.com/tendant/invite-idm/pkg/invite"
	"github.com/tendant/invite-idm/pkg/profile"
	"github.com/tendant/invite-idm/pkg/tokengenerator"
)

type fixture struct {
	service     *FinalizeService
	provider    identity.Provider
	inviteRepo  invite.InviteRepository
	profileRepo profile.ProfileRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	credRepo := identity.NewInMemoryCredentialRepository()
	tokenGen := tokengenerator.NewJwtTokenGenerator("test-secret", "test", "test")
	provider := identity.NewLocalProvider(credRepo, tokenGen)
	inviteRepo := invite.NewInMemoryInviteRepository()
	profileRepo := profile.NewInMemoryProfileRepository()
	return &fixture{
		service:     NewFinalizeService(provider, inviteRepo, profileRepo),
		provider:    provider,
		inviteRepo:  inviteRepo,
		profileRepo: profileRepo,
	}
}

func (f *fixture) seedFirstConnectionUser(t *testing.T, email, password string) profile.Profile {
	t.Helper()
	ctx := context.Background()

	ident, err := f.provider.CreateIdentity(ctx, identity.CreateIdentityParams{
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)

	_, err = f.inviteRepo.CreateInvite(ctx, invite.CreateInviteParams{
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		CompanyID: 1,
		Token:     password,
	})
	require.NoError(t, err)

	p, err := f.profileRepo.CreateProfile(ctx, profile.CreateProfileParams{
		AuthID:          ident.ID,
		Email:           email,
		FirstName:       "Test",
		LastName:        "User",
		CompanyID:       1,
		Role:            profile.RoleUser,
		FirstConnection: true,
		Active:          true,
	})
	require.NoError(t, err)
	return p
}

func TestFinalizePassword_FirstConnection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedFirstConnectionUser(t, "new@example.com", "initial-token")

	err := f.service.FinalizePassword(ctx, "new@example.com", "initial-token", "chosen-password")
	require.NoError(t, err)

	// new password works, old one does not
	_, err = f.provider.VerifyCredential(ctx, "new@example.com", "chosen-password")
	require.NoError(t, err)
	_, err = f.provider.VerifyCredential(ctx, "new@example.com", "initial-token")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)

	// first connection is over and the invitation is consumed
	updated, err := f.profileRepo.GetProfileByUserID(ctx, p.UserID)
	require.NoError(t, err)
	assert.False(t, updated.FirstConnection)

	inv, err := f.inviteRepo.GetLatestInviteByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.True(t, inv.Used)
}

func TestFinalizePassword_TooShort(t *testing.T) {
	f := newFixture(t)
	f.seedFirstConnectionUser(t, "new@example.com", "initial-token")

	err := f.service.FinalizePassword(context.Background(), "new@example.com", "initial-token", "abc")
	assert.True(t, idmerr.IsCode(err, idmerr.ErrCodePasswordTooShort))
}

func TestFinalizePassword_SamePassword(t *testing.T) {
	f := newFixture(t)
	f.seedFirstConnectionUser(t, "new@example.com", "initial-token")

	err := f.service.FinalizePassword(context.Background(), "new@example.com", "initial-token", "initial-token")
	assert.True(t, idmerr.IsCode(err, idmerr.ErrCodePasswordReused))
}

func TestFinalizePassword_WrongCurrent(t *testing.T) {
	f := newFixture(t)
	f.seedFirstConnectionUser(t, "new@example.com", "initial-token")

	err := f.service.FinalizePassword(context.Background(), "new@example.com", "wrong", "chosen-password")
	assert.True(t, idmerr.IsCode(err, idmerr.ErrCodeInvalidCredentials))
}

func TestFinalizePassword_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	// unknown email answers the same way as a wrong password
	err := f.service.FinalizePassword(context.Background(), "nobody@example.com", "whatever", "chosen-password")
	assert.True(t, idmerr.IsCode(err, idmerr.ErrCodeInvalidCredentials))
}

func TestFinalizePassword_AfterFirstConnection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedFirstConnectionUser(t, "user@example.com", "initial-token")
	require.NoError(t, f.service.FinalizePassword(ctx, "user@example.com", "initial-token", "first-choice"))

	// a routine password change keeps working after finalization
	require.NoError(t, f.service.FinalizePassword(ctx, "user@example.com", "first-choice", "second-choice"))
	_, err := f.provider.VerifyCredential(ctx, "user@example.com", "second-choice")
	require.NoError(t, err)
}

func TestFinalizeSSO(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedFirstConnectionUser(t, "sso@example.com", "initial-token")

	require.NoError(t, f.service.FinalizeSSO(ctx, "sso@example.com"))

	updated, err := f.profileRepo.GetProfileByUserID(ctx, p.UserID)
	require.NoError(t, err)
	assert.False(t, updated.FirstConnection)

	inv, err := f.inviteRepo.GetLatestInviteByEmail(ctx, "sso@example.com")
	require.NoError(t, err)
	assert.True(t, inv.Used)

	// repeating is a no-op
	require.NoError(t, f.service.FinalizeSSO(ctx, "sso@example.com"))
}

func TestFinalizeSSO_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	err := f.service.FinalizeSSO(context.Background(), "nobody@example.com")
	assert.True(t, idmerr.IsCode(err, idmerr.ErrCodeNotFound))
}
