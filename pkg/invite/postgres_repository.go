package invite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresInviteRepository implements InviteRepository using PostgreSQL.
// The at-most-one-active-invitation invariant is enforced by a partial
// unique index on (email) WHERE used = false (see migrations).
type PostgresInviteRepository struct {
	db DBTX
}

// NewPostgresInviteRepository creates a new PostgreSQL invite repository
func NewPostgresInviteRepository(db DBTX) *PostgresInviteRepository {
	return &PostgresInviteRepository{db: db}
}

const uniqueViolation = "23505"

const inviteColumns = `invite_id, email, first_name, last_name, company_id, token, invited_at, expires_at, used`

func scanInvite(row pgx.Row) (Invitation, error) {
	var inv Invitation
	var expiresAt *time.Time
	err := row.Scan(&inv.InviteID, &inv.Email, &inv.FirstName, &inv.LastName,
		&inv.CompanyID, &inv.Token, &inv.InvitedAt, &expiresAt, &inv.Used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invitation{}, ErrInviteNotFound
		}
		return Invitation{}, fmt.Errorf("failed to scan invitation: %w", err)
	}
	inv.ExpiresAt = expiresAt
	return inv, nil
}

// CreateInvite implements InviteRepository.CreateInvite
func (r *PostgresInviteRepository) CreateInvite(ctx context.Context, params CreateInviteParams) (Invitation, error) {
	query := `
		INSERT INTO invites (invite_id, email, first_name, last_name, company_id, token, invited_at, expires_at, used)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8, false)
		RETURNING ` + inviteColumns
	row := r.db.QueryRow(ctx, query,
		uuid.New(), params.Email, params.FirstName, params.LastName,
		params.CompanyID, params.Token, time.Now().UTC(), params.ExpiresAt)
	inv, err := scanInvite(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Invitation{}, ErrActiveInvite
		}
		return Invitation{}, err
	}
	return inv, nil
}

// GetActiveInviteByEmail implements InviteRepository.GetActiveInviteByEmail
func (r *PostgresInviteRepository) GetActiveInviteByEmail(ctx context.Context, email string) (Invitation, error) {
	query := `SELECT ` + inviteColumns + ` FROM invites WHERE email = lower($1) AND used = false`
	return scanInvite(r.db.QueryRow(ctx, query, email))
}

// GetLatestInviteByEmail implements InviteRepository.GetLatestInviteByEmail
func (r *PostgresInviteRepository) GetLatestInviteByEmail(ctx context.Context, email string) (Invitation, error) {
	query := `SELECT ` + inviteColumns + ` FROM invites WHERE email = lower($1) ORDER BY invited_at DESC LIMIT 1`
	return scanInvite(r.db.QueryRow(ctx, query, email))
}

// ListInvitesByCompany implements InviteRepository.ListInvitesByCompany
func (r *PostgresInviteRepository) ListInvitesByCompany(ctx context.Context, companyID int32) ([]Invitation, error) {
	query := `SELECT ` + inviteColumns + ` FROM invites WHERE company_id = $1 ORDER BY invited_at DESC`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invites []Invitation
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

// ConsumeInviteByEmail implements InviteRepository.ConsumeInviteByEmail
func (r *PostgresInviteRepository) ConsumeInviteByEmail(ctx context.Context, email string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE invites SET used = true WHERE email = lower($1) AND used = false`, email)
	if err != nil {
		return false, fmt.Errorf("failed to consume invitation: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteInvite implements InviteRepository.DeleteInvite
func (r *PostgresInviteRepository) DeleteInvite(ctx context.Context, inviteID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM invites WHERE invite_id = $1`, inviteID)
	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInviteNotFound
	}
	return nil
}
