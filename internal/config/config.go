package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/i474232898/forecaster-text/internal/forecast"
	"github.com/i474232898/forecaster-text/internal/world"
)

type AppConfig struct {
	Port string `env:"PORT" envDefault:"8080"`

	// Role is "host" for the authoritative game host, "replica" otherwise.
	Role world.Role `env:"FORECAST_ROLE" envDefault:"host"`

	// Replica sync settings; only used when Role is replica.
	HostURL      string        `env:"FORECAST_HOST_URL"`
	Worlds       []string      `env:"FORECAST_WORLDS" envSeparator:","`
	SyncInterval time.Duration `env:"FORECAST_SYNC_INTERVAL" envDefault:"1m"`
	SyncRPS      float64       `env:"FORECAST_SYNC_RPS" envDefault:"2"`
	SyncBurst    int           `env:"FORECAST_SYNC_BURST" envDefault:"4"`
	HTTPTimeout  time.Duration `env:"FORECAST_HTTP_TIMEOUT" envDefault:"10s"`

	// In-memory snapshot retention.
	StoreMaxHistory int           `env:"STORE_MAX_HISTORY" envDefault:"28"` // one season of daily snapshots (0 = unlimited)
	StoreMaxAge     time.Duration `env:"STORE_MAX_AGE" envDefault:"0s"`     // 0 = unlimited

	DatabasePath  string `env:"FORECAST_DB_PATH" envDefault:"forecaster.db"`
	DefaultLocale string `env:"FORECAST_DEFAULT_LOCALE" envDefault:"en-US"`

	PrimaryWeather   forecast.DisplayPolicy `env:"FORECAST_PRIMARY_WEATHER" envDefault:"ALWAYS"`
	SecondaryWeather forecast.DisplayPolicy `env:"FORECAST_SECONDARY_WEATHER" envDefault:"ALWAYS"`
}

// Load reads configuration from environment with sensible defaults. A .env
// file in the working directory is loaded first when present.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	worlds := cfg.Worlds[:0]
	for _, w := range cfg.Worlds {
		if w = strings.TrimSpace(w); w != "" {
			worlds = append(worlds, w)
		}
	}
	cfg.Worlds = worlds

	cfg.Role = world.Role(strings.ToLower(strings.TrimSpace(string(cfg.Role))))
	switch cfg.Role {
	case world.RoleHost:
	case world.RoleReplica:
		if cfg.HostURL == "" {
			return nil, fmt.Errorf("FORECAST_HOST_URL is required for replica role")
		}
		if len(cfg.Worlds) == 0 {
			return nil, fmt.Errorf("FORECAST_WORLDS is required for replica role")
		}
	default:
		return nil, fmt.Errorf("invalid FORECAST_ROLE %q", cfg.Role)
	}

	return cfg, nil
}

// Settings returns the display settings for the forecast channels.
func (c *AppConfig) Settings() forecast.Settings {
	return forecast.Settings{
		PrimaryWeather:   c.PrimaryWeather,
		SecondaryWeather: c.SecondaryWeather,
	}
}
