package ledger

import "context"

// Repository is the persistence boundary for balances and transaction logs.
// Implementations are only handed out inside a unit of work.
type Repository interface {
	// Balance returns the stored amount and whether the entry exists.
	Balance(ctx context.Context, account string, asset Asset) (uint32, bool, error)
	// CreateBalance inserts a zero entry, failing with ErrAlreadyRegistered if
	// one exists or is being created by a concurrent unit.
	CreateBalance(ctx context.Context, account string, asset Asset) error
	// PutBalance overwrites an existing entry; a missing one is ErrBalanceDoesNotExist.
	PutBalance(ctx context.Context, account string, asset Asset, amount uint32) error
	// Transactions returns the account log in insertion order, or nil if none exists.
	Transactions(ctx context.Context, account string) ([]Transaction, error)
	AppendTransaction(ctx context.Context, account string, tx Transaction) error
}

// UnitOfWork runs fn against a Repository so that either every write made by
// fn is kept or none is. A non-nil error from fn discards the writes.
type UnitOfWork interface {
	Atomic(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
