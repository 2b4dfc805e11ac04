package invite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryInviteRepository_SingleActivePerEmail(t *testing.T) {
	repo := NewInMemoryInviteRepository()
	ctx := context.Background()

	params := CreateInviteParams{
		Email:     "user@example.com",
		FirstName: "Test",
		LastName:  "User",
		CompanyID: 1,
		Token:     "token-1",
	}
	_, err := repo.CreateInvite(ctx, params)
	require.NoError(t, err)

	// a second active invitation for the same email is refused
	params.Token = "token-2"
	_, err = repo.CreateInvite(ctx, params)
	assert.ErrorIs(t, err, ErrActiveInvite)

	// even an expired unused invitation blocks re-invitation
	expired := time.Now().UTC().Add(-time.Hour)
	params.ExpiresAt = &expired
	_, err = repo.CreateInvite(ctx, params)
	assert.ErrorIs(t, err, ErrActiveInvite)

	// once consumed, a new invitation may be issued
	consumed, err := repo.ConsumeInviteByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	require.True(t, consumed)

	_, err = repo.CreateInvite(ctx, params)
	require.NoError(t, err)
}

func TestInMemoryInviteRepository_ConsumeIsIdempotent(t *testing.T) {
	repo := NewInMemoryInviteRepository()
	ctx := context.Background()

	_, err := repo.CreateInvite(ctx, CreateInviteParams{
		Email:     "user@example.com",
		FirstName: "Test",
		LastName:  "User",
		CompanyID: 1,
		Token:     "token",
	})
	require.NoError(t, err)

	consumed, err := repo.ConsumeInviteByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.True(t, consumed)

	consumed, err = repo.ConsumeInviteByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.False(t, consumed, "second consume is a no-op")
}

func TestInMemoryInviteRepository_GetLatestVsActive(t *testing.T) {
	repo := NewInMemoryInviteRepository()
	ctx := context.Background()

	first, err := repo.CreateInvite(ctx, CreateInviteParams{
		Email: "user@example.com", FirstName: "A", LastName: "B", CompanyID: 1, Token: "t1",
	})
	require.NoError(t, err)
	_, err = repo.ConsumeInviteByEmail(ctx, "user@example.com")
	require.NoError(t, err)

	// no active invitation now, but the latest is still visible
	_, err = repo.GetActiveInviteByEmail(ctx, "user@example.com")
	assert.ErrorIs(t, err, ErrInviteNotFound)

	latest, err := repo.GetLatestInviteByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.InviteID, latest.InviteID)
	assert.True(t, latest.Used)
}

func TestInvitationStatus(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.Equal(t, StatusPending, Invitation{ExpiresAt: &future}.StatusAt(now))
	assert.Equal(t, StatusExpired, Invitation{ExpiresAt: &past}.StatusAt(now))
	assert.Equal(t, StatusUsed, Invitation{ExpiresAt: &past, Used: true}.StatusAt(now),
		"used wins over expired")
	assert.Equal(t, StatusPending, Invitation{}.StatusAt(now), "nil expiry never expires")
}
