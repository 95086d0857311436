package routes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/fourgetech/payportal/internal/bankapi"
	"github.com/fourgetech/payportal/internal/config"
	"github.com/fourgetech/payportal/internal/middleware"
	"github.com/fourgetech/payportal/internal/notification"
	"github.com/fourgetech/payportal/internal/payments"
	"github.com/fourgetech/payportal/internal/session"
	"github.com/fourgetech/payportal/internal/watcher"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all portal routes.
func Setup(app *fiber.App, d Deps) error {
	// Outside of dev the durable backends are mandatory; a restart must not wipe
	// the session slot or the audit trail.
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	client, err := bankapi.NewClient(d.Cfg.BankAPIURL, d.Cfg.BankAPITimeout, d.Logger)
	if err != nil {
		return err
	}

	var storage session.Storage
	if d.Cache != nil {
		storage = session.NewRedisStorage(d.Cache)
	} else {
		storage = session.NewMemoryStorage()
	}

	sessions := session.NewStore(storage, client, d.Logger)
	sessions.Restore(context.Background())

	var auditRepo payments.AuditRepository
	if d.DB != nil {
		auditRepo = payments.NewPostgresAuditRepository(d.DB)
	} else {
		auditRepo = payments.NewMemoryAuditRepository()
	}

	txCache := payments.NewTransactionCache(d.Cfg.TxCacheTTL)
	notifier := notification.NewLoggerNotifier(d.Logger)
	paymentSvc := payments.NewService(client, sessions, auditRepo, txCache, notifier, d.Logger)

	tabWatcher := watcher.New(sessions, d.Logger)

	sessionHandler := session.NewHandler(sessions)
	watcherHandler := watcher.NewHandler(tabWatcher)
	paymentHandler := payments.NewHandler(paymentSvc)

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterSessionRoutes(app, sessionHandler, watcherHandler, rateLimiter)

	// Protected routes
	protected := app.Group("", middleware.SessionGuard(sessions))
	if d.Cache != nil {
		protected.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterPaymentRoutes(protected, paymentHandler)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
