package notification

import (
	"context"
	"log/slog"
)

const (
	// KindBalanceChanged is emitted once per account touched by a transfer or approval.
	KindBalanceChanged = "balance_changed"
	// KindWithdrawal is emitted when value leaves the ledger.
	KindWithdrawal = "withdrawal"
)

// Message describes a ledger event for one account and asset.
type Message struct {
	Kind    string `json:"kind"`
	Account string `json:"account"`
	Asset   string `json:"asset"`
	Amount  uint32 `json:"amount"`
	Balance uint32 `json:"balance"`
	TxID    string `json:"tx_id,omitempty"`
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		"kind", message.Kind,
		"account", message.Account,
		"asset", message.Asset,
		"amount", message.Amount,
		"balance", message.Balance,
		"tx_id", message.TxID,
	)
	return nil
}

// Multi fans a message out to every notifier, returning the first error.
type Multi []Notifier

// Send delivers message to each notifier in order.
func (m Multi) Send(ctx context.Context, message Message) error {
	var first error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, message); err != nil && first == nil {
			first = err
		}
	}
	return first
}
