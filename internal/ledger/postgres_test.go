package ledger

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/gyro-pay/gyro/internal/infra"
	"github.com/gyro-pay/gyro/internal/logging"
)

// newPostgresStore connects to DATABASE_URL and applies migrations. Tests
// using it are skipped when no database is configured.
func newPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := infra.NewPostgresPool(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := infra.Migrate(ctx, pool, logging.Discard()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewPostgresStore(pool)
}

func uniqueAccount() string {
	return "G" + uuid.NewString()
}

func TestPostgresStore_ConcurrentRegister(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()
	account := uniqueAccount()

	second := make(chan error, 1)
	err := store.Atomic(ctx, func(ctx context.Context, repo Repository) error {
		if err := NewBalanceStore(repo).Register(ctx, account, AssetPrimaryStable); err != nil {
			return err
		}
		// The competing insert waits on this unit's uncommitted row.
		go func() {
			second <- store.Atomic(context.Background(), func(ctx context.Context, repo Repository) error {
				return NewBalanceStore(repo).Register(ctx, account, AssetPrimaryStable)
			})
		}()
		return nil
	})
	if err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := <-second; !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected already registered, got %v", err)
	}
}

func TestPostgresStore_RegisterDoesNotResetCredit(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()
	account := uniqueAccount()

	err := store.Atomic(ctx, func(ctx context.Context, repo Repository) error {
		return NewBalanceStore(repo).Register(ctx, account, AssetPrimaryStable)
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	late := make(chan error, 1)
	err = store.Atomic(ctx, func(ctx context.Context, repo Repository) error {
		if _, err := NewBalanceStore(repo).Credit(ctx, account, AssetPrimaryStable, 100); err != nil {
			return err
		}
		go func() {
			late <- store.Atomic(context.Background(), func(ctx context.Context, repo Repository) error {
				return NewBalanceStore(repo).Register(ctx, account, AssetPrimaryStable)
			})
		}()
		return nil
	})
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := <-late; !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected already registered, got %v", err)
	}

	var got uint32
	err = store.Atomic(ctx, func(ctx context.Context, repo Repository) error {
		var err error
		got, err = NewBalanceStore(repo).Get(ctx, account, AssetPrimaryStable)
		return err
	})
	if err != nil || got != 100 {
		t.Fatalf("expected credited balance 100, got %d (%v)", got, err)
	}
}

func TestPostgresStore_DuplicateTxID(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()
	account := uniqueAccount()
	tx := Transaction{ID: "t1", Amount: 5, Date: "2024-01-01", From: "GFROM", To: account, Kind: TxKindDeposit, Asset: AssetPrimaryStable}

	appendTx := func(tx Transaction) error {
		return store.Atomic(ctx, func(ctx context.Context, repo Repository) error {
			return repo.AppendTransaction(ctx, account, tx)
		})
	}
	if err := appendTx(tx); err != nil {
		t.Fatalf("append: %v", err)
	}
	// The repository is called directly, so only the unique index can reject it.
	if err := appendTx(tx); !errors.Is(err, ErrDuplicateTx) {
		t.Fatalf("expected duplicate tx, got %v", err)
	}
}

func TestPostgresStore_TransactionsKeepInsertionOrder(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()
	account := uniqueAccount()

	ids := []string{"t3", "t1", "t2"}
	for _, id := range ids {
		err := store.Atomic(ctx, func(ctx context.Context, repo Repository) error {
			return NewTransactionLog(repo).Append(ctx, account, Transaction{
				ID: id, Amount: 1, Date: "2024-01-01", From: "GFROM", To: account, Kind: TxKindDeposit, Asset: AssetPrimaryStable,
			})
		})
		if err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	var txs []Transaction
	err := store.Atomic(ctx, func(ctx context.Context, repo Repository) error {
		var err error
		txs, err = NewTransactionLog(repo).List(ctx, account)
		return err
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != len(ids) {
		t.Fatalf("expected %d transactions, got %d", len(ids), len(txs))
	}
	for i, id := range ids {
		if txs[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, txs[i].ID)
		}
	}
}
