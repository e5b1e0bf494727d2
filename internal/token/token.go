// Package token provides value-transfer services that hold real balances and
// expiring allowances outside the ledger. A service is bound to a single
// spender (the ledger identity): Transfer moves value on an owner's behalf and
// consumes the allowance that owner granted to the spender.
package token

import (
	"errors"
	"fmt"

	"github.com/gyro-pay/gyro/internal/ledger"
)

var (
	// ErrInsufficientAllowance means the owner has not delegated enough to the spender.
	ErrInsufficientAllowance = fmt.Errorf("insufficient allowance: %w", ledger.ErrPayoutDeclined)
	// ErrInsufficientFunds means the owner does not hold enough of the asset.
	ErrInsufficientFunds = fmt.Errorf("insufficient funds: %w", ledger.ErrPayoutDeclined)
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrBalanceOverflow   = errors.New("balance overflow")
)
