package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/gyro-pay/gyro/internal/logging"
)

func setupTestApp(t *testing.T) (*fiber.App, *int) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		cache.Close()
		mr.Close()
	})

	calls := 0
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(principalLocal, c.Get("X-Principal"))
		return c.Next()
	})
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	app.Post("/transfers", func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"call": calls})
	})
	return app, &calls
}

func send(t *testing.T, app *fiber.App, principal, key, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/transfers", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set("X-Principal", principal)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(payload)
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	app, calls := setupTestApp(t)
	send(t, app, "GUSER", "", `{}`)
	send(t, app, "GUSER", "", `{}`)
	if *calls != 2 {
		t.Fatalf("expected handler called twice, got %d", *calls)
	}
}

func TestIdempotencyReturnsCachedResponse(t *testing.T) {
	app, calls := setupTestApp(t)

	status, first := send(t, app, "GUSER", "abc123", `{"amount":5}`)
	if status != fiber.StatusCreated {
		t.Fatalf("expected %d got %d", fiber.StatusCreated, status)
	}
	status, second := send(t, app, "GUSER", "abc123", `{"amount":5}`)
	if status != fiber.StatusCreated {
		t.Fatalf("expected cached status %d got %d", fiber.StatusCreated, status)
	}
	if first != second {
		t.Fatalf("expected cached payload %s got %s", first, second)
	}
	if *calls != 1 {
		t.Fatalf("expected handler called once, got %d", *calls)
	}
}

func TestIdempotencyKeysArePerPrincipal(t *testing.T) {
	app, calls := setupTestApp(t)
	send(t, app, "GUSER", "abc123", `{"amount":5}`)
	send(t, app, "GOTHER", "abc123", `{"amount":5}`)
	if *calls != 2 {
		t.Fatalf("expected separate principals to run separately, got %d calls", *calls)
	}
}

func TestIdempotencyRejectsDifferentBody(t *testing.T) {
	app, _ := setupTestApp(t)
	send(t, app, "GUSER", "abc123", `{"amount":5}`)
	status, _ := send(t, app, "GUSER", "abc123", `{"amount":6}`)
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected %d got %d", fiber.StatusUnprocessableEntity, status)
	}
}
