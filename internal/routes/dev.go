package routes

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/gyro-pay/gyro/internal/apierror"
)

type mintRequest struct {
	To     string `json:"to"`
	Amount uint32 `json:"amount"`
}

// RegisterDevTokenRoutes exposes minting and balance reads of the dev
// value-transfer service so administrators can be funded locally.
func RegisterDevTokenRoutes(r fiber.Router, tokens valueToken, logger *slog.Logger) {
	group := r.Group("/dev/token")
	group.Post("/mint", func(c *fiber.Ctx) error {
		var req mintRequest
		if err := c.BodyParser(&req); err != nil {
			return apierror.BadRequest(err.Error())
		}
		if req.To == "" || req.Amount == 0 {
			return apierror.BadRequest("to and a positive amount are required")
		}
		if err := tokens.Mint(c.UserContext(), req.To, req.Amount); err != nil {
			return apierror.BadRequest(err.Error())
		}
		logger.Info("dev token minted", "to", req.To, "amount", req.Amount)
		balance, err := tokens.BalanceOf(c.UserContext(), req.To)
		if err != nil {
			return err
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{"address": req.To, "balance": balance})
	})
	group.Get("/balances/:address", func(c *fiber.Ctx) error {
		balance, err := tokens.BalanceOf(c.UserContext(), c.Params("address"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"address": c.Params("address"), "balance": balance})
	})
}
