package ledger

import (
	"context"
	"fmt"
	"math"
)

// BalanceStore applies balance rules on top of a Repository.
type BalanceStore struct {
	repo Repository
}

// NewBalanceStore binds balance operations to repo.
func NewBalanceStore(repo Repository) BalanceStore {
	return BalanceStore{repo: repo}
}

// Register opens a zero balance for account in asset.
func (s BalanceStore) Register(ctx context.Context, account string, asset Asset) error {
	if !asset.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownAsset, asset)
	}
	return s.repo.CreateBalance(ctx, account, asset)
}

// Get returns the balance of a registered account.
func (s BalanceStore) Get(ctx context.Context, account string, asset Asset) (uint32, error) {
	amount, exists, err := s.repo.Balance(ctx, account, asset)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrBalanceDoesNotExist
	}
	return amount, nil
}

// Credit adds amount and returns the new balance.
func (s BalanceStore) Credit(ctx context.Context, account string, asset Asset, amount uint32) (uint32, error) {
	if amount == 0 {
		return 0, ErrInsufficientBalance
	}
	current, err := s.Get(ctx, account, asset)
	if err != nil {
		return 0, err
	}
	if uint64(current)+uint64(amount) > math.MaxUint32 {
		return 0, ErrAmountOverflow
	}
	updated := current + amount
	if err := s.repo.PutBalance(ctx, account, asset, updated); err != nil {
		return 0, err
	}
	return updated, nil
}

// Debit removes amount and returns the new balance. The balance never goes negative.
func (s BalanceStore) Debit(ctx context.Context, account string, asset Asset, amount uint32) (uint32, error) {
	if amount == 0 {
		return 0, ErrInsufficientBalance
	}
	current, err := s.Get(ctx, account, asset)
	if err != nil {
		return 0, err
	}
	if amount > current {
		return 0, ErrInsufficientBalance
	}
	updated := current - amount
	if err := s.repo.PutBalance(ctx, account, asset, updated); err != nil {
		return 0, err
	}
	return updated, nil
}
