package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	AppEnv  string `env:"APP_ENV" envDefault:"local"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"sqlite"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"file:db.sqlite"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"tinylink:"`

	MaxActiveLinks         int           `env:"MAX_ACTIVE_LINKS" envDefault:"5"`
	DefaultValidityMinutes int           `env:"DEFAULT_VALIDITY_MINUTES" envDefault:"30"`
	ResolveGrace           time.Duration `env:"RESOLVE_GRACE" envDefault:"1s"`

	Telemetry TelemetryConfig `envPrefix:"TELEMETRY_"`

	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile        string `env:"LOG_FILE"`
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
}

// TelemetryConfig describes the remote log collector. An empty endpoint keeps logging local.
type TelemetryConfig struct {
	Endpoint      string        `env:"ENDPOINT"`
	QueueSize     int           `env:"QUEUE_SIZE" envDefault:"256"`
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"5s"`
	ClientID      string        `env:"CLIENT_ID"`
	ClientSecret  string        `env:"CLIENT_SECRET"`
	TokenURL      string        `env:"TOKEN_URL"`
	SigningSecret string        `env:"SIGNING_SECRET"`
}

// Load reads .env when present, then the process environment
func Load() (*Config, error) {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q, want %s or %s", c.StoreDriver, StoreSQLite, StoreRedis)
	}
	if c.MaxActiveLinks <= 0 {
		return fmt.Errorf("MAX_ACTIVE_LINKS must be positive, got %d", c.MaxActiveLinks)
	}
	if c.DefaultValidityMinutes <= 0 {
		return fmt.Errorf("DEFAULT_VALIDITY_MINUTES must be positive, got %d", c.DefaultValidityMinutes)
	}
	if c.ResolveGrace < 0 {
		return fmt.Errorf("RESOLVE_GRACE must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// ShortURL renders the public address of code
func (c *Config) ShortURL(code string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/s/" + code
}
