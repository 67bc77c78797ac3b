// Package config loads service configuration from an optional .env file and
// the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Supported values for DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the root configuration for room-service.
type Config struct {
	Service   ServiceConfig
	Logging   LoggingConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig
}

type ServiceConfig struct {
	Name                string        `env:"SERVICE_NAME" envDefault:"room-service"`
	Version             string        `env:"SERVICE_VERSION" envDefault:"dev"`
	Env                 string        `env:"ENV" envDefault:"development"`
	Port                string        `env:"PORT" envDefault:"8080"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ReadinessDrainDelay time.Duration `env:"READINESS_DRAIN_DELAY" envDefault:"0s"`
}

type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

type DatabaseConfig struct {
	Driver          string        `env:"DB_DRIVER" envDefault:"postgres"`
	URL             string        `env:"DATABASE_URL"`
	Path            string        `env:"DB_PATH" envDefault:"rooms.db"`
	MaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	MinConns        int32         `env:"DB_MIN_CONNS" envDefault:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	AutoMigrate     bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

// AuthConfig controls password hashing and how the session token travels.
type AuthConfig struct {
	BcryptCost   int    `env:"BCRYPT_COST" envDefault:"10"`
	CookieName   string `env:"SESSION_COOKIE_NAME" envDefault:"session_uuid"`
	CookieSecure bool   `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
}

type TracingConfig struct {
	Enabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	Endpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"http://localhost:4318"`
	SampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1.0"`
}

type ProfilingConfig struct {
	Enabled  bool   `env:"PROFILING_ENABLED" envDefault:"false"`
	Endpoint string `env:"PYROSCOPE_SERVER_ADDRESS" envDefault:"http://localhost:4040"`
}

// Load reads the given .env files (missing files are ignored) and then parses
// the environment. Variables already set in the environment win over .env.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Service.Port) == "" {
		errs = append(errs, errors.New("PORT is required"))
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if strings.TrimSpace(c.Database.URL) == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when DB_DRIVER=postgres"))
		}
	case DriverSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			errs = append(errs, errors.New("DB_PATH is required when DB_DRIVER=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver))
	}
	if c.Database.MaxConns < 1 {
		errs = append(errs, errors.New("DB_MAX_CONNS must be at least 1"))
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, errors.New("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS"))
	}

	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if strings.TrimSpace(c.Auth.CookieName) == "" {
		errs = append(errs, errors.New("SESSION_COOKIE_NAME is required"))
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, errors.New("TRACING_SAMPLE_RATE must be between 0 and 1"))
	}

	return errors.Join(errs...)
}

// GetShutdownTimeoutDuration returns how long graceful shutdown may take.
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	if c.Service.ShutdownTimeout <= 0 {
		return 10 * time.Second
	}
	return c.Service.ShutdownTimeout
}

// GetReadinessDrainDelayDuration returns how long /ready reports
// shutting_down before the HTTP server stops accepting requests.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	if c.Service.ReadinessDrainDelay < 0 {
		return 0
	}
	return c.Service.ReadinessDrainDelay
}
