package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/i474232898/city-weather-tracker/internal/api/http"
	"github.com/i474232898/city-weather-tracker/internal/cities"
	"github.com/i474232898/city-weather-tracker/internal/config"
	"github.com/i474232898/city-weather-tracker/internal/scheduler"
	"github.com/i474232898/city-weather-tracker/internal/seed"
	"github.com/i474232898/city-weather-tracker/internal/store"
	"github.com/i474232898/city-weather-tracker/internal/weather"
)

func main() {
	// Load configuration (reads .env when present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx := context.Background()

	// Storage: Postgres when configured, in-memory otherwise.
	var cityStore cities.Store
	if cfg.DatabaseURL != "" {
		if err := store.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		cityStore = pg
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		cityStore = store.NewMemoryStore()
	}
	defer cityStore.Close()

	// First-run seeding of the default city set.
	if err := seed.EnsureDefaultCities(ctx, cityStore, cfg.SeedFile, logger); err != nil {
		log.Fatalf("failed to seed default cities: %v", err)
	}

	// Shared HTTP client for outbound weather calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	service := cities.NewService(cityStore, weather.NewOpenMeteo(httpClient), cfg.FreshnessWindow, logger)

	// Optional periodic refresh.
	sched := scheduler.New(cfg.RefreshInterval, service, logger)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	logger.Info("server started", slog.String("port", cfg.Port))

	// Wait for termination signal
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
