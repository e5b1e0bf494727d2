package registry

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyro-pay/gyro/internal/ledger"
)

// Repository persists roles.
type Repository interface {
	// Owner returns the owner address, or "" when none has been set.
	Owner(ctx context.Context) (string, error)
	SetOwner(ctx context.Context, owner string) error
	CreateUser(ctx context.Context, address string) error
	IsUser(ctx context.Context, address string) (bool, error)
	// Admins returns administrators in the order they were added.
	Admins(ctx context.Context) ([]string, error)
	AppendAdmin(ctx context.Context, address string) error
}

// PostgresRepository stores roles in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed registry repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Owner reads the singleton owner row.
func (r *PostgresRepository) Owner(ctx context.Context) (string, error) {
	var owner string
	err := r.db.QueryRow(ctx, `SELECT address FROM registry_owner WHERE id = 1`).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return owner, err
}

// SetOwner writes the singleton owner row.
func (r *PostgresRepository) SetOwner(ctx context.Context, owner string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO registry_owner (id, address) VALUES (1, $1)
        ON CONFLICT (id) DO UPDATE SET address = EXCLUDED.address`, owner)
	return err
}

// CreateUser inserts a user row.
func (r *PostgresRepository) CreateUser(ctx context.Context, address string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO registry_users (address, created_at) VALUES ($1, now())`, address)
	if isUniqueViolation(err) {
		return ledger.ErrAlreadyRegistered
	}
	return err
}

// IsUser reports whether address registered as a user.
func (r *PostgresRepository) IsUser(ctx context.Context, address string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM registry_users WHERE address = $1)`, address).Scan(&exists)
	return exists, err
}

// Admins lists administrators by insertion order.
func (r *PostgresRepository) Admins(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT address FROM registry_admins ORDER BY position`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// AppendAdmin adds address at the end of the admin list.
func (r *PostgresRepository) AppendAdmin(ctx context.Context, address string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO registry_admins (address, created_at) VALUES ($1, now())`, address)
	if isUniqueViolation(err) {
		return ledger.ErrAlreadyAdmin
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
