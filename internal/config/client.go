package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ErrInvalidClientConfig is returned by Client.Validate.
var ErrInvalidClientConfig = errors.New("invalid client configuration")

// ClientEnvPrefix prefixes every dropzone environment variable.
const ClientEnvPrefix = "DROPZONE_"

// Client configures the dropzone CLI. Values are layered: built-in defaults,
// then the YAML file, then DROPZONE_* variables, then command-line flags.
type Client struct {
	Server     string        `yaml:"server" env:"SERVER"`
	UploadPath string        `yaml:"upload_path" env:"UPLOAD_PATH"`
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT"`
	Session    string        `yaml:"session" env:"SESSION"`
	LogLevel   string        `yaml:"log_level" env:"LOG_LEVEL"`
}

// DefaultClient returns the built-in client defaults.
func DefaultClient() *Client {
	return &Client{
		Server:     "http://localhost:8080",
		UploadPath: "/api/file-upload",
		Timeout:    30 * time.Second,
		LogLevel:   "info",
	}
}

// LoadClient applies the YAML file at path (if any) and the environment on
// top of the defaults. Flags are applied by the caller.
func LoadClient(path string) (*Client, error) {
	cfg := DefaultClient()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read client config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse client config %s: %w", path, err)
		}
	}

	// No envDefault tags here: unset variables must not clobber file values.
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: ClientEnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// Validate checks the merged client configuration.
func (c *Client) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("%w: server address is required", ErrInvalidClientConfig)
	}
	if c.UploadPath == "" || c.UploadPath[0] != '/' {
		return fmt.Errorf("%w: upload path must start with /", ErrInvalidClientConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidClientConfig)
	}
	return nil
}
