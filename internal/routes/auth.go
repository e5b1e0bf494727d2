package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gyro-pay/gyro/internal/auth"
)

// RegisterAuthRoutes wires credential enrollment, login and logout. Only an
// authenticated administrator may enroll credentials.
func RegisterAuthRoutes(public fiber.Router, protected guarded, h *auth.Handler, rateLimiter fiber.Handler) {
	group := public.Group("/auth")
	protected.Post("/auth/credentials", h.Enroll)
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	protected.Post("/auth/logout", h.Logout)
}
