package invite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithInitScripts(filepath.Join("../../migrations", "invite_db.sql")),
		postgres.WithDatabase("invite_db"),
		postgres.WithUsername("invite"),
		postgres.WithPassword("pwd"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	connString, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func TestPostgresInviteRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool := setupTestDatabase(t)
	repo := NewPostgresInviteRepository(pool)
	ctx := context.Background()

	expiresAt := time.Now().UTC().Add(7 * 24 * time.Hour)

	t.Run("CreateAndGet", func(t *testing.T) {
		created, err := repo.CreateInvite(ctx, CreateInviteParams{
			Email:     "First@Example.com",
			FirstName: "Test",
			LastName:  "User",
			CompanyID: 1,
			Token:     "secret-token",
			ExpiresAt: &expiresAt,
		})
		require.NoError(t, err)
		assert.Equal(t, "first@example.com", created.Email, "email is stored lowercased")
		assert.False(t, created.Used)
		require.NotNil(t, created.ExpiresAt)

		active, err := repo.GetActiveInviteByEmail(ctx, "first@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.InviteID, active.InviteID)
	})

	t.Run("SingleActivePerEmail", func(t *testing.T) {
		_, err := repo.CreateInvite(ctx, CreateInviteParams{
			Email:     "first@example.com",
			FirstName: "Test",
			LastName:  "User",
			CompanyID: 1,
			Token:     "another-token",
			ExpiresAt: &expiresAt,
		})
		assert.ErrorIs(t, err, ErrActiveInvite)
	})

	t.Run("ConsumeIsConditional", func(t *testing.T) {
		consumed, err := repo.ConsumeInviteByEmail(ctx, "first@example.com")
		require.NoError(t, err)
		assert.True(t, consumed)

		consumed, err = repo.ConsumeInviteByEmail(ctx, "first@example.com")
		require.NoError(t, err)
		assert.False(t, consumed)

		// consumption frees the email for a new invitation
		_, err = repo.CreateInvite(ctx, CreateInviteParams{
			Email:     "first@example.com",
			FirstName: "Test",
			LastName:  "User",
			CompanyID: 1,
			Token:     "another-token",
			ExpiresAt: &expiresAt,
		})
		require.NoError(t, err)
	})

	t.Run("GetLatestInviteByEmail", func(t *testing.T) {
		latest, err := repo.GetLatestInviteByEmail(ctx, "first@example.com")
		require.NoError(t, err)
		assert.False(t, latest.Used, "latest is the re-issued invitation")
	})

	t.Run("ListInvitesByCompany", func(t *testing.T) {
		_, err := repo.CreateInvite(ctx, CreateInviteParams{
			Email:     "other@example.com",
			FirstName: "Other",
			LastName:  "User",
			CompanyID: 2,
			Token:     "token",
			ExpiresAt: &expiresAt,
		})
		require.NoError(t, err)

		invites, err := repo.ListInvitesByCompany(ctx, 1)
		require.NoError(t, err)
		require.Len(t, invites, 2)
		for _, inv := range invites {
			assert.Equal(t, int32(1), inv.CompanyID)
		}
		assert.False(t, invites[0].InvitedAt.Before(invites[1].InvitedAt), "newest first")
	})

	t.Run("DeleteInvite", func(t *testing.T) {
		inv, err := repo.GetActiveInviteByEmail(ctx, "other@example.com")
		require.NoError(t, err)

		require.NoError(t, repo.DeleteInvite(ctx, inv.InviteID))
		_, err = repo.GetActiveInviteByEmail(ctx, "other@example.com")
		assert.ErrorIs(t, err, ErrInviteNotFound)
	})
}
