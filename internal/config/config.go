// Package config loads crowdfundd settings from a YAML file and the
// environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "crowdfund.config"

// EnvPrefix prefixes every environment variable, e.g. CROWDFUND_PORT.
const EnvPrefix = "crowdfund"

const DefaultShutdownTimeout = "30s"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	BindAddr        string `yaml:"bindAddr"        split_words:"true"`
	Port            uint   `yaml:"port"`
	JournalPath     string `yaml:"journalPath"     split_words:"true"`
	DevAccounts     int    `yaml:"devAccounts"     split_words:"true"`
	DevBalance      uint64 `yaml:"devBalance"      split_words:"true"`
	DeployFactory   bool   `yaml:"deployFactory"   split_words:"true"`
	LogFormat       string `yaml:"logFormat"       split_words:"true"`
	Debug           bool   `yaml:"debug"`
	ShutdownTimeout string `yaml:"shutdownTimeout" split_words:"true"`
}

// Default returns the built-in settings: a dev chain with ten funded
// accounts, an in-memory journal and a factory deployed on start.
func Default() *Config {
	return &Config{
		BindAddr:        "127.0.0.1",
		Port:            8545,
		JournalPath:     "",
		DevAccounts:     10,
		DevBalance:      100,
		DeployFactory:   true,
		LogFormat:       "json",
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Load overlays the YAML file at path (if any) and then the environment onto
// the defaults, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port: %d", c.Port))
	}
	if c.DevAccounts < 1 {
		errs = append(errs, fmt.Errorf("devAccounts must be at least 1, got %d", c.DevAccounts))
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("invalid logFormat: %q (must be 'json' or 'text')", c.LogFormat))
	}
	if _, err := c.ShutdownTimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ShutdownTimeoutDuration parses ShutdownTimeout.
func (c *Config) ShutdownTimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdownTimeout %q: %w", c.ShutdownTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("shutdownTimeout must be positive, got %s", d)
	}
	return d, nil
}

// ListenAddr returns the HTTP listen address.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.BindAddr, c.Port)
}
