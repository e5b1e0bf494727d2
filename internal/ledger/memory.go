package ledger

import (
	"context"
	"sync"
)

type balanceKey struct {
	account string
	asset   Asset
}

// MemoryStore keeps balances and logs in process memory. Units of work are
// serialised and their writes are staged until fn returns without error.
type MemoryStore struct {
	mu       sync.Mutex
	balances map[balanceKey]uint32
	logs     map[string][]Transaction
}

// NewInMemory creates an empty in-memory store useful for tests and development.
func NewInMemory() *MemoryStore {
	return &MemoryStore{
		balances: make(map[balanceKey]uint32),
		logs:     make(map[string][]Transaction),
	}
}

// Atomic runs fn against a staging view and commits it only on success.
func (s *MemoryStore) Atomic(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stage := &memoryUnit{
		base:     s,
		balances: make(map[balanceKey]uint32),
		logs:     make(map[string][]Transaction),
	}
	if err := fn(ctx, stage); err != nil {
		return err
	}
	for k, v := range stage.balances {
		s.balances[k] = v
	}
	for account, txs := range stage.logs {
		s.logs[account] = txs
	}
	return nil
}

type memoryUnit struct {
	base     *MemoryStore
	balances map[balanceKey]uint32
	logs     map[string][]Transaction
}

func (u *memoryUnit) Balance(_ context.Context, account string, asset Asset) (uint32, bool, error) {
	key := balanceKey{account: account, asset: asset}
	if amount, ok := u.balances[key]; ok {
		return amount, true, nil
	}
	amount, ok := u.base.balances[key]
	return amount, ok, nil
}

func (u *memoryUnit) CreateBalance(ctx context.Context, account string, asset Asset) error {
	if _, exists, _ := u.Balance(ctx, account, asset); exists {
		return ErrAlreadyRegistered
	}
	u.balances[balanceKey{account: account, asset: asset}] = 0
	return nil
}

func (u *memoryUnit) PutBalance(ctx context.Context, account string, asset Asset, amount uint32) error {
	if _, exists, _ := u.Balance(ctx, account, asset); !exists {
		return ErrBalanceDoesNotExist
	}
	u.balances[balanceKey{account: account, asset: asset}] = amount
	return nil
}

func (u *memoryUnit) Transactions(_ context.Context, account string) ([]Transaction, error) {
	txs, ok := u.logs[account]
	if !ok {
		txs, ok = u.base.logs[account]
	}
	if !ok {
		return nil, nil
	}
	out := make([]Transaction, len(txs))
	copy(out, txs)
	return out, nil
}

func (u *memoryUnit) AppendTransaction(ctx context.Context, account string, tx Transaction) error {
	current, err := u.Transactions(ctx, account)
	if err != nil {
		return err
	}
	u.logs[account] = append(current, tx)
	return nil
}
