package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyro-pay/gyro/internal/ledger"
)

// ErrCredentialNotFound is returned when a principal never enrolled a secret.
var ErrCredentialNotFound = errors.New("credential not found")

// Repository persists principal credentials.
type Repository interface {
	Create(ctx context.Context, cred Credential) error
	Find(ctx context.Context, principal string) (Credential, error)
	UpdateTokenVersion(ctx context.Context, principal string, version int) error
	TouchLogin(ctx context.Context, principal string, at time.Time) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed credential repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new credential.
func (r *PostgresRepository) Create(ctx context.Context, cred Credential) error {
	_, err := r.db.Exec(ctx, `INSERT INTO auth_credentials (principal, secret_hash, token_version, created_at)
        VALUES ($1, $2, $3, $4)`, cred.Principal, cred.SecretHash, cred.TokenVersion, cred.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ledger.ErrAlreadyRegistered
	}
	return err
}

// Find fetches a credential by principal.
func (r *PostgresRepository) Find(ctx context.Context, principal string) (Credential, error) {
	row := r.db.QueryRow(ctx, `SELECT principal, secret_hash, token_version, created_at, last_login
        FROM auth_credentials WHERE principal = $1`, principal)
	var cred Credential
	if err := row.Scan(&cred.Principal, &cred.SecretHash, &cred.TokenVersion, &cred.CreatedAt, &cred.LastLogin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Credential{}, ErrCredentialNotFound
		}
		return Credential{}, err
	}
	cred.CreatedAt = cred.CreatedAt.UTC()
	return cred, nil
}

// UpdateTokenVersion invalidates previously issued tokens.
func (r *PostgresRepository) UpdateTokenVersion(ctx context.Context, principal string, version int) error {
	cmd, err := r.db.Exec(ctx, `UPDATE auth_credentials SET token_version = $1 WHERE principal = $2`, version, principal)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

// TouchLogin stores the last successful login time.
func (r *PostgresRepository) TouchLogin(ctx context.Context, principal string, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE auth_credentials SET last_login = $1 WHERE principal = $2`, at.UTC(), principal)
	return err
}
