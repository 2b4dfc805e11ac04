package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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

// PostgresCredentialRepository implements CredentialRepository using PostgreSQL
type PostgresCredentialRepository struct {
	db DBTX
}

// NewPostgresCredentialRepository creates a new PostgreSQL credential repository
func NewPostgresCredentialRepository(db DBTX) *PostgresCredentialRepository {
	return &PostgresCredentialRepository{db: db}
}

const uniqueViolation = "23505"

// CreateCredential stores a new identity with its password hash
func (r *PostgresCredentialRepository) CreateCredential(ctx context.Context, entity CredentialEntity) (CredentialEntity, error) {
	metadata, err := json.Marshal(entity.Metadata)
	if err != nil {
		return CredentialEntity{}, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO logins (id, email, password, email_confirmed, metadata, created_at)
		VALUES ($1, lower($2), $3, $4, $5, $6)`
	_, err = r.db.Exec(ctx, query,
		entity.ID, entity.Email, entity.PasswordHash, entity.EmailConfirmed, metadata, entity.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return CredentialEntity{}, ErrEmailExists
		}
		return CredentialEntity{}, fmt.Errorf("failed to create credential: %w", err)
	}
	return entity, nil
}

func (r *PostgresCredentialRepository) scanCredential(row pgx.Row) (CredentialEntity, error) {
	var entity CredentialEntity
	var metadata []byte
	err := row.Scan(&entity.ID, &entity.Email, &entity.PasswordHash,
		&entity.EmailConfirmed, &metadata, &entity.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CredentialEntity{}, ErrIdentityNotFound
		}
		return CredentialEntity{}, fmt.Errorf("failed to scan credential: %w", err)
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &entity.Metadata); err != nil {
			return CredentialEntity{}, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return entity, nil
}

// GetCredentialByEmail retrieves an identity with its hash by email
func (r *PostgresCredentialRepository) GetCredentialByEmail(ctx context.Context, email string) (CredentialEntity, error) {
	query := `SELECT id, email, password, email_confirmed, metadata, created_at FROM logins WHERE email = lower($1)`
	return r.scanCredential(r.db.QueryRow(ctx, query, email))
}

// GetCredentialByID retrieves an identity with its hash by id
func (r *PostgresCredentialRepository) GetCredentialByID(ctx context.Context, id uuid.UUID) (CredentialEntity, error) {
	query := `SELECT id, email, password, email_confirmed, metadata, created_at FROM logins WHERE id = $1`
	return r.scanCredential(r.db.QueryRow(ctx, query, id))
}

// UpdatePasswordHash replaces the stored hash for an identity
func (r *PostgresCredentialRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error {
	tag, err := r.db.Exec(ctx, `UPDATE logins SET password = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

// DeleteCredential removes an identity
func (r *PostgresCredentialRepository) DeleteCredential(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM logins WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}
