package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment controls.
const (
	envPrefix  = "CUTOFFS_"
	envConfig  = "CUTOFFS_CONFIG"
	dotEnvFile = ".env"
)

// LoadOption customizes a single Load call.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path   string
	dotEnv string
}

// WithFile loads YAML from path, taking precedence over CUTOFFS_CONFIG.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.path = path
		}
	}
}

// WithDotEnv reads variables from the given .env file instead of ./.env.
// An empty path disables .env loading.
func WithDotEnv(path string) LoadOption {
	return func(o *loadOptions) {
		o.dotEnv = path
	}
}

// Load builds a Config by layering sources.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env entries, for variables not already set in the environment
//  3. file (YAML) from WithFile or CUTOFFS_CONFIG
//  4. env (prefix CUTOFFS_)
func Load(_ context.Context, opts ...LoadOption) (*Config, error) {
	o := loadOptions{dotEnv: dotEnvFile}
	for _, opt := range opts {
		opt(&o)
	}

	if o.dotEnv != "" {
		if err := godotenv.Load(o.dotEnv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, o.dotEnv, err)
		}
	}

	base := New()
	k := koanf.New(".")

	path := o.path
	if path == "" {
		path = os.Getenv(envConfig)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Map env keys like CUTOFFS_MAX_DEPTH -> max_depth (flat keys).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MinCohortSize <= 0:
		return fmt.Errorf("%w: min_cohort_size must be positive", ErrInvalidConfig)
	case c.SuppressionThreshold <= 0:
		return fmt.Errorf("%w: suppression_threshold must be positive", ErrInvalidConfig)
	case c.BandHalfWidth < 0:
		return fmt.Errorf("%w: band_half_width must not be negative", ErrInvalidConfig)
	case c.MaxDepth < 1:
		return fmt.Errorf("%w: max_depth must be at least 1", ErrInvalidConfig)
	case c.TargetYear < 0:
		return fmt.Errorf("%w: target_year must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Output) {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("%w: output must be table, json or yaml", ErrInvalidConfig)
	}
	return nil
}
