package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/forecaster-text/internal/api/http"
	"github.com/i474232898/forecaster-text/internal/config"
	"github.com/i474232898/forecaster-text/internal/replica"
	"github.com/i474232898/forecaster-text/internal/scheduler"
	"github.com/i474232898/forecaster-text/internal/station"
	"github.com/i474232898/forecaster-text/internal/store"
	"github.com/i474232898/forecaster-text/internal/weather"
	"github.com/i474232898/forecaster-text/internal/world"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// In-memory snapshot store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	farmers, err := store.OpenFarmerStore(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open farmer store: %v", err)
	}
	defer farmers.Close()

	table := weather.DefaultTable()
	if uncategorized, iconless := table.Audit(); len(uncategorized) > 0 || len(iconless) > 0 {
		log.Printf("INFO: weather table audit: uncategorized=%v iconless=%v", uncategorized, iconless)
	}

	opts := []station.Option{
		station.WithRole(cfg.Role),
		station.WithTable(table),
		station.WithSettings(cfg.Settings()),
		station.WithDefaultLocale(cfg.DefaultLocale),
	}

	if cfg.Role == world.RoleReplica {
		// Shared HTTP client for calls to the host.
		httpClient := &http.Client{
			Timeout: cfg.HTTPTimeout,
		}
		host := replica.NewHostClient(httpClient, cfg.HostURL, replica.WithRateLimit(cfg.SyncRPS, cfg.SyncBurst))
		opts = append(opts, station.WithSource(host))
	}

	service := station.NewService(memStore, farmers, opts...)
	log.Printf("INFO: starting forecaster as %s", service.Role())

	if cfg.Role == world.RoleReplica {
		// Scheduler that periodically mirrors the host's snapshots.
		sched := scheduler.New(cfg.Worlds, cfg.SyncInterval, service)
		if err := sched.Start(); err != nil {
			log.Fatalf("failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "forecaster",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "forecaster",
			"role":    service.Role(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
