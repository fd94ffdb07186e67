package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string

	// DatabaseURL selects the Postgres store. Empty means the in-memory
	// store, which loses everything on restart.
	DatabaseURL string

	// HTTPTimeout bounds each outbound weather request.
	HTTPTimeout time.Duration

	// FreshnessWindow is how recent a reading must be for a city to be
	// skipped during a refresh.
	FreshnessWindow time.Duration

	// RefreshInterval drives the background refresh job. Zero disables it.
	RefreshInterval time.Duration

	// SeedFile is the CSV with the default city set.
	SeedFile string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.SeedFile = getenvDefault("SEED_FILE", "europe.csv")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.FreshnessWindow, err = getenvDuration("FRESHNESS_WINDOW", "15m"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "0s"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
