package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Audit emits one structured log line per request, tagged with the request id
// and the authenticated principal when present.
func Audit(logger *slog.Logger) fiber.Handler {
	logger = logger.With("component", "audit")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// Locals set by JWTAuth are only visible once the chain has run.
		requestID, _ := c.Locals(requestIDHeader).(string)
		principal, _ := c.Locals(principalLocal).(string)

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", c.Response().StatusCode()),
			slog.Duration("duration", time.Since(start)),
		}
		if requestID != "" {
			attrs = append(attrs, slog.String("request_id", requestID))
		}
		if principal != "" {
			attrs = append(attrs, slog.String("principal", principal))
		}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
			logger.Warn("request failed", attrs...)
			return err
		}

		logger.Info("request completed", attrs...)
		return nil
	}
}
