package ledger

import "context"

// TransactionLog keeps the per-account append-only record of transactions.
// Duplicate detection is scoped to a single account's log.
type TransactionLog struct {
	repo Repository
}

// NewTransactionLog binds log operations to repo.
func NewTransactionLog(repo Repository) TransactionLog {
	return TransactionLog{repo: repo}
}

// Append adds tx to the account log unless its id is already present there.
func (l TransactionLog) Append(ctx context.Context, account string, tx Transaction) error {
	existing, err := l.repo.Transactions(ctx, account)
	if err != nil {
		return err
	}
	if indexOf(existing, tx.ID) >= 0 {
		return ErrDuplicateTx
	}
	return l.repo.AppendTransaction(ctx, account, tx)
}

// Contains reports whether the account log already holds id.
func (l TransactionLog) Contains(ctx context.Context, account, id string) (bool, error) {
	existing, err := l.repo.Transactions(ctx, account)
	if err != nil {
		return false, err
	}
	return indexOf(existing, id) >= 0, nil
}

// Find returns the first record in the account log with the given id.
func (l TransactionLog) Find(ctx context.Context, account, id string) (Transaction, error) {
	existing, err := l.repo.Transactions(ctx, account)
	if err != nil {
		return Transaction{}, err
	}
	if len(existing) == 0 {
		return Transaction{}, ErrTransactionIsEmpty
	}
	i := indexOf(existing, id)
	if i < 0 {
		return Transaction{}, ErrTransactionNotFound
	}
	return existing[i], nil
}

// List returns the account log in insertion order. It never fails for unknown accounts.
func (l TransactionLog) List(ctx context.Context, account string) ([]Transaction, error) {
	existing, err := l.repo.Transactions(ctx, account)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return []Transaction{}, nil
	}
	return existing, nil
}

func indexOf(txs []Transaction, id string) int {
	for i, tx := range txs {
		if tx.ID == id {
			return i
		}
	}
	return -1
}
