// Package config loads the application configuration from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/etnz/dcadash"
	"github.com/joho/godotenv"
)

// Prefix is the prefix of every environment variable read by Load.
const Prefix = "DCADASH_"

// Config holds application configuration
type Config struct {
	Data dcadash.Config

	Addr            string   `env:"ADDR" envDefault:":8080"`
	LogLevel        string   `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty       bool     `env:"LOG_PRETTY" envDefault:"false"`
	RefreshSchedule string   `env:"REFRESH_SCHEDULE" envDefault:"@every 30s"`
	CORSOrigins     []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads a .env file if it exists, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(nil)
}

// FromEnv reads the configuration from environ, or from the process environment
// when environ is nil.
func FromEnv(environ map[string]string) (*Config, error) {
	cfg := new(Config)
	opts := env.Options{Prefix: Prefix, Environment: environ}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if err := c.Data.Validate(); err != nil {
		return fmt.Errorf("%sDATA_BASE_PATH/%sPRICE_FILE: %w", Prefix, Prefix, err)
	}
	if c.RefreshSchedule == "" {
		return fmt.Errorf("%sREFRESH_SCHEDULE is required", Prefix)
	}
	return nil
}
