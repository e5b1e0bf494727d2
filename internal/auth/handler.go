package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gyro-pay/gyro/internal/apierror"
)

// Handler exposes credential enrollment and login endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type credentialRequest struct {
	Principal string `json:"principal"`
	Secret    string `json:"secret"`
}

type loginResponse struct {
	Principal   string `json:"principal"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (r credentialRequest) validate() error {
	if strings.TrimSpace(r.Principal) == "" {
		return apierror.BadRequest("principal is required")
	}
	if r.Secret == "" {
		return apierror.BadRequest("secret is required")
	}
	return nil
}

// Enroll stores a secret for a principal that has none yet.
func (h *Handler) Enroll(c *fiber.Ctx) error {
	var req credentialRequest
	if err := c.BodyParser(&req); err != nil {
		return apierror.BadRequest(err.Error())
	}
	if err := req.validate(); err != nil {
		return err
	}
	if err := h.svc.Enroll(c.UserContext(), req.Principal, req.Secret); err != nil {
		if errors.Is(err, ErrWeakSecret) {
			return apierror.BadRequest(err.Error())
		}
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"principal": req.Principal})
}

// Login validates the secret and returns an access token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req credentialRequest
	if err := c.BodyParser(&req); err != nil {
		return apierror.BadRequest(err.Error())
	}
	if err := req.validate(); err != nil {
		return err
	}
	pair, err := h.svc.Login(c.UserContext(), req.Principal, req.Secret)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return fiber.NewError(http.StatusUnauthorized, err.Error())
		}
		return err
	}
	return c.Status(http.StatusOK).JSON(loginResponse{Principal: req.Principal, AccessToken: pair.AccessToken, ExpiresIn: pair.ExpiresIn})
}

// Logout invalidates every token of the authenticated principal.
func (h *Handler) Logout(c *fiber.Ctx) error {
	principal, ok := PrincipalFrom(c.UserContext())
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "missing principal")
	}
	if err := h.svc.Logout(c.UserContext(), principal); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}
