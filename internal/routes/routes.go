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

	"github.com/HenriqueLauxen/signea-sub001/internal/certificates"
	"github.com/HenriqueLauxen/signea-sub001/internal/config"
	"github.com/HenriqueLauxen/signea-sub001/internal/events"
	"github.com/HenriqueLauxen/signea-sub001/internal/identity"
	"github.com/HenriqueLauxen/signea-sub001/internal/middleware"
	"github.com/HenriqueLauxen/signea-sub001/internal/notification"
	"github.com/HenriqueLauxen/signea-sub001/internal/payments"
	"github.com/HenriqueLauxen/signea-sub001/internal/registry"
	"github.com/HenriqueLauxen/signea-sub001/internal/session"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.Dev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}
	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories: Postgres when a pool is present, in-memory otherwise.
	var identityRepo identity.Repository
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
	}
	var eventRepo events.Repository
	if d.DB != nil {
		eventRepo = events.NewPostgresRepository(d.DB)
	} else {
		eventRepo = events.NewMemoryRepository()
	}
	var registryStore registry.Store
	if d.DB != nil {
		registryStore = registry.NewPostgresStore(d.DB)
	} else {
		registryStore = registry.NewInMemory()
	}
	var chargeStore payments.Store
	if d.DB != nil {
		chargeStore = payments.NewPostgresStore(d.DB)
	} else {
		chargeStore = payments.NewMemoryStore()
	}
	var certStore certificates.Store
	if d.DB != nil {
		certStore = certificates.NewPostgresStore(d.DB)
	} else {
		certStore = certificates.NewMemoryStore()
	}

	// Services and handlers
	notifier := notification.NewLoggerNotifier(d.Logger)
	identitySvc := identity.NewService(identityRepo)
	eventSvc := events.NewService(eventRepo)
	registrySvc := registry.NewService(registryStore, eventSvc)
	paymentSvc := payments.NewService(chargeStore, registrySvc, payments.Merchant{
		PayeeKey: d.Cfg.PixKey,
		Name:     d.Cfg.MerchantName,
		City:     d.Cfg.MerchantCity,
	}, notifier)
	certSvc := certificates.NewService(certStore, registrySvc)

	eventHandler := events.NewHandler(eventSvc)
	paymentHandler := payments.NewHandler(paymentSvc)

	// Session lifecycle: provider is the source of truth, Redis and Postgres
	// carry the shadow record.
	var localStore session.LocalStore
	if d.Cache != nil {
		localStore = session.NewRedisLocalStore(d.Cache, "signea:")
	} else {
		localStore = session.NewMemoryLocalStore()
	}
	var remoteStore session.RemoteStore
	if d.DB != nil {
		remoteStore = session.NewPostgresRemoteStore(d.DB)
	} else {
		remoteStore = session.NewMemoryRemoteStore()
	}
	provider := session.NewTokenProvider(d.Cfg.SessionSecret, identitySvc)
	mgr := session.NewManager(provider, localStore, remoteStore, session.Config{Logger: d.Logger})
	go mgr.WatchProvider(context.Background())
	if _, err := mgr.StartActivityMonitoring(context.Background()); err != nil {
		return err
	}

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterAccountRoutes(api, identitySvc, d.Logger)
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, mgr, rateLimiter)
	// Certificate verification is public: anyone holding a code may validate it.
	api.Get("/certificates/:code", verifyCertificateHandler(certSvc))

	// Protected routes
	guard := middleware.SessionGuard(mgr)
	protected := api.Group("", guard)
	protected.Get("/me", func(c *fiber.Ctx) error {
		email, _ := c.Locals("session_email").(string)
		if email == "" {
			return c.SendStatus(http.StatusUnauthorized)
		}
		account, err := identitySvc.Get(c.UserContext(), email)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "account not found")
		}
		return c.JSON(fiber.Map{
			"id":              account.ID,
			"email":           account.Email,
			"name":            account.Name,
			"email_confirmed": account.EmailConfirmed,
			"created_at":      account.CreatedAt,
		})
	})

	RegisterEventRoutes(protected, eventHandler)
	RegisterRegistrationRoutes(protected, registrySvc, identitySvc, d.Logger)

	// Charge creation replays the stored response on retried Idempotency-Key.
	if d.Cache != nil {
		idem := middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
		protected.Post("/registrations/:registrationId/charge", idem, paymentHandler.Create)
	} else {
		protected.Post("/registrations/:registrationId/charge", paymentHandler.Create)
	}
	RegisterChargeRoutes(protected, paymentHandler)

	RegisterCertificateRoutes(protected, certSvc, d.Logger)

	return nil
}
