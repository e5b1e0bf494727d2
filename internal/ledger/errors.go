package ledger

import "errors"

var (
	// ErrDuplicateTx indicates the transaction id already exists in the target account log.
	ErrDuplicateTx = errors.New("duplicate transaction")
	// ErrInsufficientBalance covers zero amounts and debits larger than the balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrBalanceDoesNotExist occurs when the account never registered for the asset.
	ErrBalanceDoesNotExist = errors.New("balance does not exist")
	// ErrInsufficientLiquidityFund means no administrator allowance can back a withdrawal.
	ErrInsufficientLiquidityFund = errors.New("insufficient liquidity fund")
	ErrTransactionNotFound       = errors.New("transaction not found")
	ErrTransactionIsEmpty        = errors.New("transaction log is empty")
	ErrNotAuthorized             = errors.New("not authorized")
	ErrAlreadyRegistered         = errors.New("already registered")
	ErrNotRegistered             = errors.New("not registered")
	ErrOwnerNotSet               = errors.New("owner not set")
	ErrAlreadyAdmin              = errors.New("already admin")

	// ErrPaused is returned by mutating operations while the owner has paused the ledger.
	ErrPaused         = errors.New("ledger paused")
	ErrAmountOverflow = errors.New("amount overflows balance")
	ErrSelfTransfer   = errors.New("cannot transfer to the same account")
	ErrUnknownAsset   = errors.New("unknown asset")

	// ErrPayoutDeclined is wrapped by ValueTransfer implementations when the
	// source lacks funds or allowance. Withdraw reports it as
	// ErrInsufficientLiquidityFund.
	ErrPayoutDeclined = errors.New("payout declined")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrDuplicateTx, "DuplicateTx"},
	{ErrInsufficientBalance, "InsufficientBalance"},
	{ErrBalanceDoesNotExist, "BalanceDoesNotExist"},
	{ErrInsufficientLiquidityFund, "InsufficientLiquidityFund"},
	{ErrTransactionNotFound, "TransactionNotFound"},
	{ErrTransactionIsEmpty, "TransactionIsEmpty"},
	{ErrNotAuthorized, "NotAuthorized"},
	{ErrAlreadyRegistered, "AlreadyRegistered"},
	{ErrNotRegistered, "NotRegistered"},
	{ErrOwnerNotSet, "OwnerNotSet"},
	{ErrAlreadyAdmin, "AlreadyAdmin"},
	{ErrPaused, "LedgerPaused"},
	{ErrAmountOverflow, "AmountOverflow"},
	{ErrSelfTransfer, "SelfTransfer"},
	{ErrUnknownAsset, "UnknownAsset"},
}

// Code returns the stable name of a ledger error, or "Internal" for anything else.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "Internal"
}
