package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/gyro-pay/gyro/internal/notification"
)

// Deps groups the collaborators an Engine orchestrates.
type Deps struct {
	Store    UnitOfWork
	Auth     Authorizer
	Registry Registry
	Value    ValueTransfer
	Notifier notification.Notifier
	Logger   *slog.Logger
}

// EngineConfig holds the engine's own settings.
type EngineConfig struct {
	// Identity is the ledger's own address: the spender of admin allowances
	// and the counterparty recorded on withdrawals.
	Identity     string
	AllowanceTTL time.Duration
	Now          func() time.Time
}

// Engine runs ledger operations. Each public method is a single unit of work.
type Engine struct {
	store     UnitOfWork
	auth      Authorizer
	registry  Registry
	value     ValueTransfer
	notifier  notification.Notifier
	logger    *slog.Logger
	liquidity *LiquiditySourcer

	identity     string
	allowanceTTL time.Duration
	now          func() time.Time
	paused       atomic.Bool
}

// TransferResult carries balances after a committed transfer.
type TransferResult struct {
	FromBalance uint32
	ToBalance   uint32
}

// WithdrawResult carries the outcome of a committed withdrawal. Admin is empty
// for assets without an external settlement path.
type WithdrawResult struct {
	Balance uint32
	Admin   string
}

// NewEngine validates the collaborators and builds an Engine.
func NewEngine(deps Deps, cfg EngineConfig) (*Engine, error) {
	if cfg.Identity == "" {
		return nil, errors.New("ledger identity is required")
	}
	if deps.Store == nil {
		return nil, errors.New("ledger store is required")
	}
	if deps.Auth == nil {
		return nil, errors.New("authorizer is required")
	}
	if deps.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if deps.Value == nil {
		return nil, errors.New("value transfer service is required")
	}
	if cfg.AllowanceTTL <= 0 {
		cfg.AllowanceTTL = DefaultAllowanceTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:        deps.Store,
		auth:         deps.Auth,
		registry:     deps.Registry,
		value:        deps.Value,
		notifier:     deps.Notifier,
		logger:       logger.With("component", "ledger"),
		liquidity:    NewLiquiditySourcer(deps.Registry, deps.Value, cfg.Identity),
		identity:     cfg.Identity,
		allowanceTTL: cfg.AllowanceTTL,
		now:          cfg.Now,
	}, nil
}

// Identity returns the ledger's own address.
func (e *Engine) Identity() string {
	return e.identity
}

// Register opens a zero PrimaryStable balance for account.
func (e *Engine) Register(ctx context.Context, account string) error {
	if err := e.auth.RequireAuth(ctx, account); err != nil {
		return err
	}
	err := e.store.Atomic(ctx, func(ctx context.Context, repo Repository) error {
		return NewBalanceStore(repo).Register(ctx, account, AssetPrimaryStable)
	})
	if err != nil {
		e.logger.Debug("register rejected", "account", account, "error", err)
		return err
	}
	e.logger.Info("account registered", "account", account, "asset", AssetPrimaryStable)
	return nil
}

// Transfer moves amount of asset from one registered account to another and
// records one leg in each account's log under the same txID.
func (e *Engine) Transfer(ctx context.Context, from, to string, asset Asset, amount uint32, date, txID string) (TransferResult, error) {
	if err := e.auth.RequireAuth(ctx, from); err != nil {
		return TransferResult{}, err
	}
	if err := e.checkActive(); err != nil {
		return TransferResult{}, err
	}
	if from == to {
		return TransferResult{}, ErrSelfTransfer
	}

	var res TransferResult
	err := e.store.Atomic(ctx, func(ctx context.Context, repo Repository) error {
		balances := NewBalanceStore(repo)
		txlog := NewTransactionLog(repo)

		fromBalance, err := balances.Get(ctx, from, asset)
		if err != nil {
			return err
		}
		if amount == 0 || amount > fromBalance {
			return ErrInsufficientBalance
		}
		toBalance, err := balances.Get(ctx, to, asset)
		if err != nil {
			return err
		}
		if uint64(toBalance)+uint64(amount) > math.MaxUint32 {
			return ErrAmountOverflow
		}
		for _, account := range []string{to, from} {
			dup, err := txlog.Contains(ctx, account, txID)
			if err != nil {
				return err
			}
			if dup {
				return ErrDuplicateTx
			}
		}

		if res.ToBalance, err = balances.Credit(ctx, to, asset, amount); err != nil {
			return err
		}
		if res.FromBalance, err = balances.Debit(ctx, from, asset, amount); err != nil {
			return err
		}

		leg := Transaction{ID: txID, Amount: amount, Date: date, From: from, To: to, Kind: TxKindTransfer, Asset: asset}
		if err := txlog.Append(ctx, to, leg); err != nil {
			return err
		}
		mirror := Transaction{ID: txID, Amount: amount, Date: date, From: to, To: from, Kind: TxKindDeposit, Asset: asset}
		return txlog.Append(ctx, from, mirror)
	})
	if err != nil {
		e.logger.Debug("transfer rejected", "from", from, "to", to, "tx_id", txID, "error", err)
		return TransferResult{}, err
	}

	e.logger.Info("transfer committed", "from", from, "to", to, "asset", asset, "amount", amount, "tx_id", txID)
	e.notify(ctx, notification.Message{Kind: notification.KindBalanceChanged, Account: to, Asset: string(asset), Amount: amount, Balance: res.ToBalance, TxID: txID})
	e.notify(ctx, notification.Message{Kind: notification.KindBalanceChanged, Account: from, Asset: string(asset), Amount: amount, Balance: res.FromBalance, TxID: txID})
	return res, nil
}

// Withdraw takes amount out of the ledger. For PrimaryStable the value is paid
// by the first administrator whose allowance covers it.
func (e *Engine) Withdraw(ctx context.Context, account string, asset Asset, amount uint32, date, txID string) (WithdrawResult, error) {
	if err := e.auth.RequireAuth(ctx, account); err != nil {
		return WithdrawResult{}, err
	}
	if err := e.checkActive(); err != nil {
		return WithdrawResult{}, err
	}

	var res WithdrawResult
	err := e.store.Atomic(ctx, func(ctx context.Context, repo Repository) error {
		balances := NewBalanceStore(repo)
		txlog := NewTransactionLog(repo)

		balance, err := balances.Get(ctx, account, asset)
		if err != nil {
			return err
		}
		if amount == 0 || amount > balance {
			return ErrInsufficientBalance
		}
		dup, err := txlog.Contains(ctx, account, txID)
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicateTx
		}

		switch asset {
		case AssetPrimaryStable:
			admin, ok, err := e.liquidity.FindAdmin(ctx, amount)
			if err != nil {
				return err
			}
			if !ok {
				return ErrInsufficientLiquidityFund
			}
			if err := e.value.Transfer(ctx, admin, account, amount); err != nil {
				if errors.Is(err, ErrPayoutDeclined) {
					return fmt.Errorf("pay out from %s: %w: %w", admin, ErrInsufficientLiquidityFund, err)
				}
				return fmt.Errorf("pay out from %s: %w", admin, err)
			}
			res.Admin = admin
		case AssetOther:
			// No external settlement path for this asset yet.
		default:
			return ErrUnknownAsset
		}

		if res.Balance, err = balances.Debit(ctx, account, asset, amount); err != nil {
			return err
		}
		return txlog.Append(ctx, account, Transaction{
			ID: txID, Amount: amount, Date: date, From: e.identity, To: account, Kind: TxKindDeposit, Asset: asset,
		})
	})
	if err != nil {
		e.logger.Debug("withdraw rejected", "account", account, "tx_id", txID, "error", err)
		return WithdrawResult{}, err
	}

	e.logger.Info("withdraw committed", "account", account, "asset", asset, "amount", amount, "admin", res.Admin, "tx_id", txID)
	e.notify(ctx, notification.Message{Kind: notification.KindWithdrawal, Account: account, Asset: string(asset), Amount: amount, Balance: res.Balance, TxID: txID})
	return res, nil
}

// AdminApprove records amount on the admin's own balance and grants the
// ledger an expiring allowance of the same amount on the admin's funds.
func (e *Engine) AdminApprove(ctx context.Context, admin string, amount uint32) (uint32, error) {
	if err := e.auth.RequireAuth(ctx, admin); err != nil {
		return 0, err
	}
	if err := e.checkActive(); err != nil {
		return 0, err
	}
	isAdmin, err := e.registry.IsAdmin(ctx, admin)
	if err != nil {
		return 0, fmt.Errorf("check admin: %w", err)
	}
	if !isAdmin {
		return 0, ErrNotAuthorized
	}

	expiresAt := e.now().Add(e.allowanceTTL)
	var balance uint32
	err = e.store.Atomic(ctx, func(ctx context.Context, repo Repository) error {
		balances := NewBalanceStore(repo)
		if err := balances.Register(ctx, admin, AssetPrimaryStable); err != nil && !errors.Is(err, ErrAlreadyRegistered) {
			return err
		}
		var err error
		if balance, err = balances.Credit(ctx, admin, AssetPrimaryStable, amount); err != nil {
			return err
		}
		if err := e.value.Approve(ctx, admin, e.identity, amount, expiresAt); err != nil {
			return fmt.Errorf("approve allowance: %w", err)
		}
		return nil
	})
	if err != nil {
		e.logger.Debug("admin approve rejected", "admin", admin, "error", err)
		return 0, err
	}

	e.logger.Info("admin approval committed", "admin", admin, "amount", amount, "expires_at", expiresAt)
	e.notify(ctx, notification.Message{Kind: notification.KindBalanceChanged, Account: admin, Asset: string(AssetPrimaryStable), Amount: amount, Balance: balance})
	return balance, nil
}

// GetBalance returns the balance of account in asset.
func (e *Engine) GetBalance(ctx context.Context, account string, asset Asset) (uint32, error) {
	var amount uint32
	err := e.store.Atomic(ctx, func(ctx context.Context, repo Repository) error {
		var err error
		amount, err = NewBalanceStore(repo).Get(ctx, account, asset)
		return err
	})
	return amount, err
}

// GetTransaction returns the record with txID from the account's log.
func (e *Engine) GetTransaction(ctx context.Context, account, txID string) (Transaction, error) {
	var tx Transaction
	err := e.store.Atomic(ctx, func(ctx context.Context, repo Repository) error {
		var err error
		tx, err = NewTransactionLog(repo).Find(ctx, account, txID)
		return err
	})
	return tx, err
}

// ListTransactions returns the account's log in insertion order.
func (e *Engine) ListTransactions(ctx context.Context, account string) ([]Transaction, error) {
	var txs []Transaction
	err := e.store.Atomic(ctx, func(ctx context.Context, repo Repository) error {
		var err error
		txs, err = NewTransactionLog(repo).List(ctx, account)
		return err
	})
	return txs, err
}

// Pause stops transfers, withdrawals and approvals. Only the owner may pause.
func (e *Engine) Pause(ctx context.Context, caller string) error {
	return e.setPaused(ctx, caller, true)
}

// Unpause resumes mutating operations.
func (e *Engine) Unpause(ctx context.Context, caller string) error {
	return e.setPaused(ctx, caller, false)
}

// Paused reports whether mutating operations are currently blocked.
func (e *Engine) Paused() bool {
	return e.paused.Load()
}

func (e *Engine) setPaused(ctx context.Context, caller string, paused bool) error {
	if err := e.auth.RequireAuth(ctx, caller); err != nil {
		return err
	}
	owner, err := e.registry.Owner(ctx)
	if err != nil {
		return err
	}
	if owner != caller {
		return ErrNotAuthorized
	}
	e.paused.Store(paused)
	e.logger.Info("ledger pause state changed", "paused", paused, "by", caller)
	return nil
}

func (e *Engine) checkActive() error {
	if e.paused.Load() {
		return ErrPaused
	}
	return nil
}

func (e *Engine) notify(ctx context.Context, msg notification.Message) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Send(ctx, msg); err != nil {
		e.logger.Warn("notification failed", "kind", msg.Kind, "account", msg.Account, "error", err)
	}
}
