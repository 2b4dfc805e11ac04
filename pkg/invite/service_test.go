package invite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	idmerr "github.com/tendant/invite-idm/pkg/errors"
	"github.com/tendant/invite-idm/pkg/profile"
)

func newService(t *testing.T) (*InviteService, InviteRepository, profile.ProfileRepository) {
	t.Helper()
	inviteRepo := NewInMemoryInviteRepository()
	profileRepo := profile.NewInMemoryProfileRepository()
	return NewInviteService(inviteRepo, profileRepo), inviteRepo, profileRepo
}

func seedAdmin(t *testing.T, profileRepo profile.ProfileRepository, companyID int32, role profile.Role) uuid.UUID {
	t.Helper()
	p, err := profileRepo.CreateProfile(context.Background(), profile.CreateProfileParams{
		Email:     "admin@example.com",
		FirstName: "Ada",
		LastName:  "Admin",
		CompanyID: companyID,
		Role:      role,
		Active:    true,
	})
	require.NoError(t, err)
	return p.UserID
}

func seedInvite(t *testing.T, inviteRepo InviteRepository, email string, companyID int32, expiresAt *time.Time) Invitation {
	t.Helper()
	inv, err := inviteRepo.CreateInvite(context.Background(), CreateInviteParams{
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		CompanyID: companyID,
		Token:     uuid.NewString(),
		ExpiresAt: expiresAt,
	})
	require.NoError(t, err)
	return inv
}

func in(d time.Duration) *time.Time {
	at := time.Now().UTC().Add(d)
	return &at
}

func TestCheckInvitation_Valid(t *testing.T) {
	svc, inviteRepo, profileRepo := newService(t)
	ctx := context.Background()

	seedInvite(t, inviteRepo, "new@example.com", 1, in(time.Hour))
	_, err := profileRepo.CreateProfile(ctx, profile.CreateProfileParams{
		Email:           "new@example.com",
		FirstName:       "Test",
		LastName:        "User",
		CompanyID:       1,
		Role:            profile.RoleUser,
		FirstConnection: true,
		Active:          true,
	})
	require.NoError(t, err)

	result, err := svc.CheckInvitation(ctx, "new@example.com")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.True(t, result.FirstConnection)
	require.NotNil(t, result.Invitation)
	assert.Empty(t, result.Message)
}

func TestCheckInvitation_NoInvitation(t *testing.T) {
	svc, _, _ := newService(t)

	result, err := svc.CheckInvitation(context.Background(), "nobody@example.com")
	require.NoError(t, err, "an invalid outcome is an answer, not an error")
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Message)
	assert.Nil(t, result.Invitation)
}

func TestCheckInvitation_Expired(t *testing.T) {
	svc, inviteRepo, _ := newService(t)

	seedInvite(t, inviteRepo, "late@example.com", 1, in(-time.Hour))

	result, err := svc.CheckInvitation(context.Background(), "late@example.com")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "invitation has expired", result.Message)
}

func TestCheckInvitation_Consumed(t *testing.T) {
	svc, inviteRepo, _ := newService(t)
	ctx := context.Background()

	seedInvite(t, inviteRepo, "done@example.com", 1, in(time.Hour))
	consumed, err := inviteRepo.ConsumeInviteByEmail(ctx, "done@example.com")
	require.NoError(t, err)
	require.True(t, consumed)

	// a consumed invitation is no longer active
	result, err := svc.CheckInvitation(ctx, "done@example.com")
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestListInvitations(t *testing.T) {
	svc, inviteRepo, profileRepo := newService(t)
	ctx := context.Background()

	adminID := seedAdmin(t, profileRepo, 1, profile.RoleAdmin)

	seedInvite(t, inviteRepo, "pending@example.com", 1, in(time.Hour))
	seedInvite(t, inviteRepo, "expired@example.com", 1, in(-time.Hour))
	used := seedInvite(t, inviteRepo, "used@example.com", 1, in(time.Hour))
	_, err := inviteRepo.ConsumeInviteByEmail(ctx, used.Email)
	require.NoError(t, err)
	seedInvite(t, inviteRepo, "other@example.com", 2, in(time.Hour))

	views, err := svc.ListInvitations(ctx, adminID, 1)
	require.NoError(t, err)
	require.Len(t, views, 3, "other tenants' invitations are excluded")

	statuses := map[string]Status{}
	for _, v := range views {
		statuses[v.Email] = v.Status
	}
	assert.Equal(t, StatusPending, statuses["pending@example.com"])
	assert.Equal(t, StatusExpired, statuses["expired@example.com"])
	assert.Equal(t, StatusUsed, statuses["used@example.com"])
}

func TestListInvitations_AdminNotFound(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.ListInvitations(context.Background(), uuid.New(), 1)
	assert.True(t, idmerr.IsCode(err, idmerr.ErrCodeAdminNotFound))
}

func TestListInvitations_NotAdmin(t *testing.T) {
	svc, _, profileRepo := newService(t)

	userID := seedAdmin(t, profileRepo, 1, profile.RoleUser)
	_, err := svc.ListInvitations(context.Background(), userID, 1)
	assert.True(t, idmerr.IsCode(err, idmerr.ErrCodeInsufficientPermission))
}

func TestListInvitations_CrossTenant(t *testing.T) {
	svc, _, profileRepo := newService(t)

	adminID := seedAdmin(t, profileRepo, 1, profile.RoleSuperadmin)
	_, err := svc.ListInvitations(context.Background(), adminID, 2)
	assert.True(t, idmerr.IsCode(err, idmerr.ErrCodeForbiddenCrossTenant))
}
