package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gyro-pay/gyro/internal/registry"
)

// RegisterRegistryRoutes wires user and administrator registration.
func RegisterRegistryRoutes(public fiber.Router, protected guarded, h *registry.Handler) {
	public.Get("/registry/admins", h.Admins)
	public.Get("/registry/principals/:address", h.Describe)

	protected.Post("/registry/users", h.RegisterUser)
	protected.Post("/registry/admins", h.AddAdmin)
}
