package ledger

import (
	"context"
	"fmt"
)

// LiquiditySourcer locates an administrator whose delegated allowance can back
// a withdrawal. The scan is linear over the registry order and uncached; the
// admin set is expected to stay small.
type LiquiditySourcer struct {
	registry Registry
	value    ValueTransfer
	spender  string
}

// NewLiquiditySourcer builds a sourcer that queries allowances granted to spender.
func NewLiquiditySourcer(registry Registry, value ValueTransfer, spender string) *LiquiditySourcer {
	return &LiquiditySourcer{registry: registry, value: value, spender: spender}
}

// FindAdmin returns the first administrator with allowance >= amount. ok is
// false when the whole list was scanned without a match.
func (s *LiquiditySourcer) FindAdmin(ctx context.Context, amount uint32) (admin string, ok bool, err error) {
	admins, err := s.registry.Admins(ctx)
	if err != nil {
		return "", false, fmt.Errorf("list admins: %w", err)
	}
	for _, candidate := range admins {
		allowance, err := s.value.Allowance(ctx, candidate, s.spender)
		if err != nil {
			return "", false, fmt.Errorf("allowance of %s: %w", candidate, err)
		}
		if allowance >= amount {
			return candidate, true, nil
		}
	}
	return "", false, nil
}
