package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds process settings read from the environment at startup
type Config struct {
	Port              string        `env:"PORT" envDefault:"8080"`
	DBPath            string        `env:"DB_PATH" envDefault:"generals.db"`
	RulesPath         string        `env:"RULES_PATH"`
	CatalogPath       string        `env:"CATALOG_PATH"`
	SelectionCapacity int           `env:"SELECTION_CAPACITY" envDefault:"5"`
	JWTSecret         string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	TokenTTL          time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	RateLimitRPS      float64       `env:"RATE_LIMIT_RPS" envDefault:"100"`
	RateLimitBurst    int           `env:"RATE_LIMIT_BURST" envDefault:"1"`
	MaxBodyBytes      int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
}

// Load parses the environment into a Config
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SelectionCapacity <= 0 {
		return Config{}, fmt.Errorf("SELECTION_CAPACITY must be >= 1, got %d", cfg.SelectionCapacity)
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server
func (c Config) Addr() string {
	return ":" + c.Port
}
