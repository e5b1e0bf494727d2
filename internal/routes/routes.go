package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/gyro-pay/gyro/internal/apierror"
	"github.com/gyro-pay/gyro/internal/auth"
	"github.com/gyro-pay/gyro/internal/config"
	"github.com/gyro-pay/gyro/internal/ledger"
	"github.com/gyro-pay/gyro/internal/middleware"
	"github.com/gyro-pay/gyro/internal/notification"
	"github.com/gyro-pay/gyro/internal/registry"
	"github.com/gyro-pay/gyro/internal/token"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// valueToken is the value-transfer service plus the seeding calls exposed in development.
type valueToken interface {
	ledger.ValueTransfer
	Mint(ctx context.Context, to string, amount uint32) error
	BalanceOf(ctx context.Context, addr string) (uint32, error)
}

// Setup configures middlewares and all application routes. Without a
// database or cache the in-memory backends are used; that is only allowed in
// development.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var (
		store        ledger.UnitOfWork
		registryRepo registry.Repository
		authRepo     auth.Repository
		tokens       valueToken
	)
	if d.DB != nil {
		store = ledger.NewPostgresStore(d.DB)
		registryRepo = registry.NewPostgresRepository(d.DB)
		authRepo = auth.NewPostgresRepository(d.DB)
	} else {
		store = ledger.NewInMemory()
		registryRepo = registry.NewMemoryRepository()
		authRepo = auth.NewMemoryRepository()
	}
	notifiers := notification.Multi{notification.NewLoggerNotifier(d.Logger)}
	if d.Cache != nil {
		tokens = token.NewRedis(d.Cache, d.Cfg.LedgerAddress)
		notifiers = append(notifiers, notification.NewRedisNotifier(d.Cache, notification.DefaultChannel))
	} else {
		tokens = token.NewMemory(d.Cfg.LedgerAddress)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	authorizer := auth.ContextAuthorizer{}
	registrySvc := registry.NewService(registryRepo, authorizer, d.Logger)
	if err := registrySvc.Init(ctx, d.Cfg.OwnerAddress); err != nil {
		return fmt.Errorf("init registry: %w", err)
	}

	engine, err := ledger.NewEngine(ledger.Deps{
		Store:    store,
		Auth:     authorizer,
		Registry: registrySvc,
		Value:    tokens,
		Notifier: notifiers,
		Logger:   d.Logger,
	}, ledger.EngineConfig{
		Identity:     d.Cfg.LedgerAddress,
		AllowanceTTL: d.Cfg.AllowanceTTL,
	})
	if err != nil {
		return err
	}

	authSvc := auth.NewService(authRepo, d.Cfg.JWTSecret, d.Cfg.AccessTokenTTL).WithSponsors(registrySvc)
	if err := authSvc.Bootstrap(ctx, d.Cfg.OwnerAddress, d.Cfg.OwnerSecret); err != nil {
		return fmt.Errorf("bootstrap owner credential: %w", err)
	}

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals(apierror.RequestIDKey).(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"ledger":     engine.Identity(),
			"paused":     engine.Paused(),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	chain := []fiber.Handler{middleware.JWTAuth(authSvc)}
	if d.Cache != nil {
		chain = append(chain, middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	protected := guarded{r: api, chain: chain}

	RegisterAuthRoutes(api, protected, auth.NewHandler(authSvc), middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit, d.Logger))
	RegisterRegistryRoutes(api, protected, registry.NewHandler(registrySvc))
	RegisterLedgerRoutes(api, protected, ledger.NewHandler(engine))
	if d.Cfg.IsDev() {
		RegisterDevTokenRoutes(api, tokens, d.Logger)
	}

	return nil
}

// guarded registers routes behind a per-route middleware chain so public and
// protected routes can share a prefix in any registration order.
type guarded struct {
	r     fiber.Router
	chain []fiber.Handler
}

func (g guarded) Post(path string, h fiber.Handler) {
	handlers := append(append([]fiber.Handler{}, g.chain...), h)
	g.r.Post(path, handlers...)
}
