package profile

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

// PostgresProfileRepository implements ProfileRepository using PostgreSQL
type PostgresProfileRepository struct {
	db DBTX
}

// NewPostgresProfileRepository creates a new PostgreSQL profile repository
func NewPostgresProfileRepository(db DBTX) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

const profileColumns = `user_id, auth_id, email, first_name, last_name, company_id, role, first_connection, active, last_login_date, created_at`

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	var authID *uuid.UUID
	var lastLogin *time.Time
	var role string
	err := row.Scan(&p.UserID, &authID, &p.Email, &p.FirstName, &p.LastName,
		&p.CompanyID, &role, &p.FirstConnection, &p.Active, &lastLogin, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, fmt.Errorf("failed to scan profile: %w", err)
	}
	if authID != nil {
		p.AuthID = *authID
	}
	p.Role = ParseRole(role)
	p.LastLoginAt = lastLogin
	return p, nil
}

// CreateProfile implements ProfileRepository.CreateProfile
func (r *PostgresProfileRepository) CreateProfile(ctx context.Context, params CreateProfileParams) (Profile, error) {
	query := `
		INSERT INTO profiles (user_id, auth_id, email, first_name, last_name, company_id, role, first_connection, active, created_at)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + profileColumns
	// uuid.Nil means a legacy profile with no identity yet; store NULL
	// so FindProfilesWithoutAuthID can see it.
	var authID *uuid.UUID
	if params.AuthID != uuid.Nil {
		authID = &params.AuthID
	}
	row := r.db.QueryRow(ctx, query,
		uuid.New(), authID, params.Email, params.FirstName, params.LastName,
		params.CompanyID, params.Role.String(), params.FirstConnection, params.Active, time.Now().UTC())
	p, err := scanProfile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Profile{}, ErrProfileExists
		}
		return Profile{}, err
	}
	return p, nil
}

// GetProfileByUserID implements ProfileRepository.GetProfileByUserID
func (r *PostgresProfileRepository) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	return scanProfile(r.db.QueryRow(ctx, query, userID))
}

// GetProfileByAuthID implements ProfileRepository.GetProfileByAuthID
func (r *PostgresProfileRepository) GetProfileByAuthID(ctx context.Context, authID uuid.UUID) (Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE auth_id = $1`
	return scanProfile(r.db.QueryRow(ctx, query, authID))
}

// GetProfileByEmail implements ProfileRepository.GetProfileByEmail
func (r *PostgresProfileRepository) GetProfileByEmail(ctx context.Context, email string) (Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = lower($1)`
	return scanProfile(r.db.QueryRow(ctx, query, email))
}

// SetFirstConnection implements ProfileRepository.SetFirstConnection
func (r *PostgresProfileRepository) SetFirstConnection(ctx context.Context, userID uuid.UUID, firstConnection bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE profiles SET first_connection = $1 WHERE user_id = $2`, firstConnection, userID)
	if err != nil {
		return fmt.Errorf("failed to update first_connection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// SetLastLogin implements ProfileRepository.SetLastLogin
func (r *PostgresProfileRepository) SetLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE profiles SET last_login_date = $1 WHERE user_id = $2`, at.UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update last_login_date: %w", err)
	}
	return nil
}

// SetAuthID implements ProfileRepository.SetAuthID
func (r *PostgresProfileRepository) SetAuthID(ctx context.Context, userID uuid.UUID, authID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE profiles SET auth_id = $1 WHERE user_id = $2`, authID, userID)
	if err != nil {
		return fmt.Errorf("failed to update auth_id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// FindProfilesWithoutAuthID implements ProfileRepository.FindProfilesWithoutAuthID
func (r *PostgresProfileRepository) FindProfilesWithoutAuthID(ctx context.Context) ([]Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE auth_id IS NULL ORDER BY created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles without auth_id: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// DeleteProfile implements ProfileRepository.DeleteProfile
func (r *PostgresProfileRepository) DeleteProfile(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}
