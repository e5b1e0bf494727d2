package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Asset identifies a category of value the ledger keeps balances for.
type Asset string

const (
	// AssetPrimaryStable is the stablecoin backed by the value-transfer service.
	AssetPrimaryStable Asset = "USDC"
	// AssetOther is a recognised asset with no external settlement path yet.
	AssetOther Asset = "BS"
)

// ParseAsset maps a wire name onto a known asset kind.
func ParseAsset(s string) (Asset, error) {
	switch Asset(strings.ToUpper(strings.TrimSpace(s))) {
	case AssetPrimaryStable:
		return AssetPrimaryStable, nil
	case AssetOther:
		return AssetOther, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAsset, s)
	}
}

// Valid reports whether a is one of the closed set of asset kinds.
func (a Asset) Valid() bool {
	return a == AssetPrimaryStable || a == AssetOther
}

// TxKind classifies a transaction record from the point of view of the log owner.
type TxKind string

const (
	TxKindDeposit  TxKind = "deposit"
	TxKindTransfer TxKind = "transfer"
)

// Transaction is one immutable leg of a ledger operation.
type Transaction struct {
	ID     string `json:"id"`
	Amount uint32 `json:"amount"`
	Date   string `json:"date"`
	From   string `json:"from"`
	To     string `json:"to"`
	Kind   TxKind `json:"kind"`
	Asset  Asset  `json:"asset"`
}

// DefaultAllowanceTTL is how long an administrator approval stays spendable.
const DefaultAllowanceTTL = 30 * 24 * time.Hour

// Authorizer proves that the caller of an operation controls a principal.
type Authorizer interface {
	RequireAuth(ctx context.Context, principal string) error
}

// Registry answers role questions about principals.
type Registry interface {
	IsAdmin(ctx context.Context, address string) (bool, error)
	// Admins returns administrators in liquidity-scan priority order.
	Admins(ctx context.Context) ([]string, error)
	Owner(ctx context.Context) (string, error)
}

// ValueTransfer moves real value outside the ledger and tracks delegated
// allowances. Transfer wraps ErrPayoutDeclined when the owner's funds or
// allowance cannot cover the amount.
type ValueTransfer interface {
	Allowance(ctx context.Context, owner, spender string) (uint32, error)
	Approve(ctx context.Context, owner, spender string, amount uint32, expiresAt time.Time) error
	Transfer(ctx context.Context, from, to string, amount uint32) error
}
