package ledger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler exposes the engine over HTTP. Principals are proven by the
// Authorizer the engine was built with, not by the handler.
type Handler struct {
	engine *Engine
	now    func() time.Time
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine, now: time.Now}
}

type registerRequest struct {
	Account string `json:"account"`
}

type transferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Asset  string `json:"asset"`
	Amount uint32 `json:"amount"`
	Date   string `json:"date"`
	TxID   string `json:"tx_id"`
}

type withdrawRequest struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
	Amount  uint32 `json:"amount"`
	Date    string `json:"date"`
	TxID    string `json:"tx_id"`
}

type approvalRequest struct {
	Admin  string `json:"admin"`
	Amount uint32 `json:"amount"`
}

type pauseRequest struct {
	Caller string `json:"caller"`
}

func badRequest(msg string) error {
	return fiber.NewError(http.StatusBadRequest, msg)
}

// stamp fills a missing transaction id and date.
func (h *Handler) stamp(txID, date string) (string, string) {
	if strings.TrimSpace(txID) == "" {
		txID = uuid.NewString()
	}
	if strings.TrimSpace(date) == "" {
		date = h.now().UTC().Format(time.RFC3339)
	}
	return txID, date
}

// Register opens a PrimaryStable balance for the caller.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err.Error())
	}
	if req.Account == "" {
		return badRequest("account is required")
	}
	if err := h.engine.Register(c.UserContext(), req.Account); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"account": req.Account,
		"asset":   AssetPrimaryStable,
		"balance": 0,
	})
}

// Balance returns one balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	asset, err := ParseAsset(c.Params("asset"))
	if err != nil {
		return err
	}
	account := c.Params("account")
	amount, err := h.engine.GetBalance(c.UserContext(), account, asset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"account": account, "asset": asset, "balance": amount})
}

// Transactions lists an account's log oldest first.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	txs, err := h.engine.ListTransactions(c.UserContext(), c.Params("account"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"transactions": txs})
}

// Transaction returns one record of an account's log.
func (h *Handler) Transaction(c *fiber.Ctx) error {
	tx, err := h.engine.GetTransaction(c.UserContext(), c.Params("account"), c.Params("txId"))
	if err != nil {
		return err
	}
	return c.JSON(tx)
}

// Transfer moves value between two accounts.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err.Error())
	}
	if req.From == "" || req.To == "" {
		return badRequest("from and to are required")
	}
	asset, err := ParseAsset(req.Asset)
	if err != nil {
		return err
	}
	txID, date := h.stamp(req.TxID, req.Date)
	res, err := h.engine.Transfer(c.UserContext(), req.From, req.To, asset, req.Amount, date, txID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"tx_id":        txID,
		"from_balance": res.FromBalance,
		"to_balance":   res.ToBalance,
	})
}

// Withdraw moves value out of the ledger.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	var req withdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err.Error())
	}
	if req.Account == "" {
		return badRequest("account is required")
	}
	asset, err := ParseAsset(req.Asset)
	if err != nil {
		return err
	}
	txID, date := h.stamp(req.TxID, req.Date)
	res, err := h.engine.Withdraw(c.UserContext(), req.Account, asset, req.Amount, date, txID)
	if err != nil {
		return err
	}
	body := fiber.Map{"tx_id": txID, "balance": res.Balance}
	if res.Admin != "" {
		body["admin"] = res.Admin
	}
	return c.Status(http.StatusCreated).JSON(body)
}

// Approve credits an administrator and grants the ledger an allowance.
func (h *Handler) Approve(c *fiber.Ctx) error {
	var req approvalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err.Error())
	}
	if req.Admin == "" {
		return badRequest("admin is required")
	}
	balance, err := h.engine.AdminApprove(c.UserContext(), req.Admin, req.Amount)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"admin": req.Admin, "balance": balance})
}

func (h *Handler) Pause(c *fiber.Ctx) error {
	return h.setPaused(c, true)
}

func (h *Handler) Unpause(c *fiber.Ctx) error {
	return h.setPaused(c, false)
}

func (h *Handler) setPaused(c *fiber.Ctx, paused bool) error {
	var req pauseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err.Error())
	}
	if req.Caller == "" {
		return badRequest("caller is required")
	}
	var err error
	if paused {
		err = h.engine.Pause(c.UserContext(), req.Caller)
	} else {
		err = h.engine.Unpause(c.UserContext(), req.Caller)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"paused": h.engine.Paused()})
}
