package registry

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gyro-pay/gyro/internal/apierror"
)

// Handler exposes user and administrator registration over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type addressRequest struct {
	Address string `json:"address"`
}

func parseAddress(c *fiber.Ctx) (string, error) {
	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return "", apierror.BadRequest(err.Error())
	}
	addr := strings.TrimSpace(req.Address)
	if addr == "" {
		return "", apierror.BadRequest("address is required")
	}
	return addr, nil
}

// RegisterUser registers the caller's own address as a user.
func (h *Handler) RegisterUser(c *fiber.Ctx) error {
	addr, err := parseAddress(c)
	if err != nil {
		return err
	}
	if err := h.svc.RegisterUser(c.UserContext(), addr); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"address": addr, "role": RoleUser})
}

// AddAdmin promotes a registered user; only the owner may call it.
func (h *Handler) AddAdmin(c *fiber.Ctx) error {
	addr, err := parseAddress(c)
	if err != nil {
		return err
	}
	if err := h.svc.AddAdmin(c.UserContext(), addr); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"address": addr, "role": RoleAdmin})
}

// Admins lists administrators in insertion order.
func (h *Handler) Admins(c *fiber.Ctx) error {
	admins, err := h.svc.Admins(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"admins": admins})
}

// Describe reports the roles held by an address.
func (h *Handler) Describe(c *fiber.Ctx) error {
	p, err := h.svc.Describe(c.UserContext(), c.Params("address"))
	if err != nil {
		return err
	}
	return c.JSON(p)
}
