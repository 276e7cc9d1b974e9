// Package config loads relay configuration from the environment and dropzone
// client configuration from a YAML file, the environment and flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Configuration errors returned by Validate.
var (
	ErrInvalidStorageConfig = errors.New("invalid storage configuration")
	ErrInvalidServerConfig  = errors.New("invalid server configuration")
)

// Storage drivers understood by the relay.
const (
	DriverMinio  = "minio"
	DriverMemory = "memory"
)

// Config holds all runtime configuration for the relay.
type Config struct {
	App     App     `envPrefix:"APP_"`
	Server  Server  `envPrefix:"SERVER_"`
	Storage Storage `envPrefix:"STORAGE_"`
	Relay   Relay   `envPrefix:"RELAY_"`

	// DatabaseURL enables the upload ledger when set.
	DatabaseURL string `env:"DATABASE_URL"`
}

// App holds process-level settings.
type App struct {
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// JWTSecret turns on session verification for the upload route.
	JWTSecret string `env:"JWT_SECRET"`
}

// Server holds listener and timeout settings.
type Server struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"0s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"0s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	// AllowedOrigins feeds the CORS handler. Credentials are always allowed.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
}

// Storage holds object storage settings (S3-compatible: MinIO locally, any
// S3 provider in production).
type Storage struct {
	Driver     string `env:"DRIVER" envDefault:"minio"`
	Endpoint   string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey  string `env:"ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey  string `env:"SECRET_KEY" envDefault:"minioadmin"`
	Bucket     string `env:"BUCKET" envDefault:"uploads"`
	UseSSL     bool   `env:"USE_SSL" envDefault:"false"`
	PublicRead bool   `env:"PUBLIC_READ" envDefault:"false"`
	// PublicBase is the browser-accessible base URL, e.g. "http://localhost:9000/uploads".
	PublicBase string `env:"PUBLIC_BASE" envDefault:"http://localhost:9000/uploads"`
}

// Relay holds upload relay behaviour switches.
type Relay struct {
	Path string `env:"PATH" envDefault:"/api/file-upload"`
	// TempDir is where decoded parts are spooled; empty means os.TempDir.
	TempDir string `env:"TEMP_DIR"`
	// ReportPartial answers 207 with per-file results when any entry was
	// skipped or failed. Off keeps the plain 200 contract.
	ReportPartial bool `env:"REPORT_PARTIAL" envDefault:"false"`
}

// Load reads configuration from a .env file (if present) and environment
// variables. dotenv reports whether a .env file was applied.
func Load() (cfg *Config, dotenv bool, err error) {
	dotenv = godotenv.Load() == nil

	cfg, err = Parse()
	return cfg, dotenv, err
}

// Parse builds a Config from the current environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected storage driver has what it needs.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("%w: empty port", ErrInvalidServerConfig)
	}
	if c.Relay.Path == "" || c.Relay.Path[0] != '/' {
		return fmt.Errorf("%w: relay path must start with /", ErrInvalidServerConfig)
	}

	switch c.Storage.Driver {
	case DriverMemory:
		return nil
	case DriverMinio:
		if c.Storage.Endpoint == "" || c.Storage.AccessKey == "" || c.Storage.SecretKey == "" || c.Storage.Bucket == "" {
			return fmt.Errorf("%w: minio endpoint, credentials and bucket are required", ErrInvalidStorageConfig)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown driver %q", ErrInvalidStorageConfig, c.Storage.Driver)
	}
}

// IsProduction returns true when the app is running in production mode.
// Production logs are JSON; everything else gets console output.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// LedgerEnabled reports whether uploads should be recorded in PostgreSQL.
func (c *Config) LedgerEnabled() bool {
	return c.DatabaseURL != ""
}
