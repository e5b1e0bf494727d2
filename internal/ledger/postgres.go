package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PostgresStore persists balances and transaction logs in PostgreSQL. Every
// unit of work runs in its own database transaction.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Atomic runs fn inside a database transaction, committing only when fn succeeds.
func (s *PostgresStore) Atomic(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := fn(ctx, pgUnit{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit ledger tx: %w", err)
	}
	return nil
}

type pgUnit struct {
	tx pgx.Tx
}

// Balance locks the balance row for the rest of the unit.
func (u pgUnit) Balance(ctx context.Context, account string, asset Asset) (uint32, bool, error) {
	const query = `SELECT amount FROM ledger_balances WHERE account = $1 AND asset = $2 FOR UPDATE`
	var amount int64
	if err := u.tx.QueryRow(ctx, query, account, string(asset)).Scan(&amount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint32(amount), true, nil
}

// CreateBalance inserts a zero row. A concurrent insert of the same key makes
// this one wait on the primary key and then report ErrAlreadyRegistered.
func (u pgUnit) CreateBalance(ctx context.Context, account string, asset Asset) error {
	cmd, err := u.tx.Exec(ctx, `INSERT INTO ledger_balances (account, asset, amount, updated_at)
        VALUES ($1, $2, 0, now())
        ON CONFLICT (account, asset) DO NOTHING`,
		account, string(asset))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAlreadyRegistered
	}
	return nil
}

func (u pgUnit) PutBalance(ctx context.Context, account string, asset Asset, amount uint32) error {
	cmd, err := u.tx.Exec(ctx, `UPDATE ledger_balances SET amount = $3, updated_at = now()
        WHERE account = $1 AND asset = $2`,
		account, string(asset), int64(amount))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBalanceDoesNotExist
	}
	return nil
}

func (u pgUnit) Transactions(ctx context.Context, account string) ([]Transaction, error) {
	rows, err := u.tx.Query(ctx, `SELECT tx_id, amount, tx_date, from_account, to_account, kind, asset
        FROM ledger_transactions WHERE account = $1 ORDER BY seq`, account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var (
			t      Transaction
			amount int64
			kind   string
			asset  string
		)
		if err := rows.Scan(&t.ID, &amount, &t.Date, &t.From, &t.To, &kind, &asset); err != nil {
			return nil, err
		}
		t.Amount = uint32(amount)
		t.Kind = TxKind(kind)
		t.Asset = Asset(asset)
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (u pgUnit) AppendTransaction(ctx context.Context, account string, t Transaction) error {
	_, err := u.tx.Exec(ctx, `INSERT INTO ledger_transactions
        (id, account, tx_id, amount, tx_date, from_account, to_account, kind, asset, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`,
		uuid.New(), account, t.ID, int64(t.Amount), t.Date, t.From, t.To, string(t.Kind), string(t.Asset))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateTx
		}
		return err
	}
	return nil
}
