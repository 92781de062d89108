package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/adapter/notify"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/adapter/scm"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/adapter/store"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/handler"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/middleware"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/service"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/pkg/config"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting ContextFlow",
		"port", cfg.Port,
		"manifest", cfg.ManifestFilename,
		"health_interval_min", cfg.HealthCheckInterval,
	)

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	if err := pgStore.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// ── Adapters ─────────────────────────────────────────────────────────
	gateway := scm.NewGitHubGateway(cfg.GitHubAPIBaseURL, nil)
	notifier := notify.NewWebhookNotifier(cfg.NotifyURL, cfg.NotifyToken)

	// ── Services ─────────────────────────────────────────────────────────
	repoService := service.NewRepoService(pgStore, gateway, cfg.WebhookCallbackURL)
	pushService := service.NewPushService(pgStore, gateway, notifier)
	scannerService := service.NewScannerService(pgStore, gateway, cfg.ManifestFilename)
	suggestionService := service.NewSuggestionService(pgStore, gateway)
	healthService := service.NewHealthService(pgStore, gateway, cfg.HealthWorkers)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	// Audit middleware (logs all requests)
	app.Use(middleware.AuditMiddleware(pgStore))

	// ── Webhook ingress (rate limited per client IP) ─────────────────────
	webhooks := app.Group("/webhooks", limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: time.Duration(cfg.RateLimitWindow) * time.Second,
	}))
	webhookHandler := handler.NewWebhookHandler(pgStore, pushService, pgStore)
	webhookHandler.Register(webhooks)

	// Health check
	app.Get("/api/v1/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	// ── Management API ───────────────────────────────────────────────────
	api := app.Group("/api/v1")

	jobTracker := handler.NewJobTracker()

	repoHandler := handler.NewRepoHandler(repoService, scannerService, jobTracker)
	repoHandler.Register(api)

	suggestionHandler := handler.NewSuggestionHandler(suggestionService)
	suggestionHandler.Register(api)

	jobsHandler := handler.NewJobsHandler(jobTracker)
	jobsHandler.Register(api)

	healthHandler := handler.NewHealthHandler(healthService)
	healthHandler.Register(api)

	auditHandler := handler.NewAuditHandler(pgStore)
	auditHandler.Register(api)

	// ── Health classifier schedule ───────────────────────────────────────
	if cfg.HealthCheckInterval > 0 {
		go func() {
			ticker := time.NewTicker(time.Duration(cfg.HealthCheckInterval) * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				if _, err := healthService.Run(context.Background()); err != nil {
					slog.Error("scheduled health run failed", "error", err)
				}
			}
		}()
	}

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
