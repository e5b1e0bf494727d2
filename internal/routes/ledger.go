package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gyro-pay/gyro/internal/ledger"
)

// RegisterLedgerRoutes wires balances, transaction logs and value movement.
// Reads are public; every mutation needs an access token.
func RegisterLedgerRoutes(public fiber.Router, protected guarded, h *ledger.Handler) {
	public.Get("/accounts/:account/balances/:asset", h.Balance)
	public.Get("/accounts/:account/transactions", h.Transactions)
	public.Get("/accounts/:account/transactions/:txId", h.Transaction)

	protected.Post("/accounts", h.Register)
	protected.Post("/transfers", h.Transfer)
	protected.Post("/withdrawals", h.Withdraw)
	protected.Post("/admin/approvals", h.Approve)
	protected.Post("/admin/pause", h.Pause)
	protected.Post("/admin/unpause", h.Unpause)
}
