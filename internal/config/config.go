// Package config defines process configuration and loading hooks.
//
// Conventions:
//   - Provide New() to build a Config with defaults.
//   - Load layers defaults, an optional .env, an optional YAML file and env vars.
//   - External errors are wrapped with this package's sentinel errors.
package config

import (
	"github.com/okian/cutoffs/internal/domain/prediction"
	"github.com/okian/cutoffs/internal/domain/training"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address for serve mode, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DocsScript optionally replaces the ReDoc bundle URL of the /api-docs page.
	DocsScript string `koanf:"docs_script"`

	// TargetYear is the forecast year. Zero means the year after the last
	// historical year.
	TargetYear int `koanf:"target_year"`

	// MinCohortSize is the smallest cohort size the drivers accept.
	MinCohortSize int `koanf:"min_cohort_size"`

	// SuppressionThreshold is the cohort size below which the least popular
	// track is reported as not offered.
	SuppressionThreshold int `koanf:"suppression_threshold"`

	// BandHalfWidth is the distance from the estimate to each display bound.
	BandHalfWidth float64 `koanf:"band_half_width"`

	// MaxDepth bounds the regression tree.
	MaxDepth int `koanf:"max_depth"`

	// RandomSeed fixes tree construction.
	RandomSeed int64 `koanf:"random_seed"`

	// ReferenceCSV optionally replaces the built-in history with a CSV file.
	ReferenceCSV string `koanf:"reference_csv"`

	// Output selects the result rendering: table, json or yaml.
	Output string `koanf:"output"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		DocsScript:           "",
		TargetYear:           0,
		MinCohortSize:        prediction.MinCohortSize,
		SuppressionThreshold: prediction.DefaultSuppressionThreshold,
		BandHalfWidth:        prediction.DefaultBandHalfWidth,
		MaxDepth:             training.DefaultMaxDepth,
		RandomSeed:           training.DefaultSeed,
		ReferenceCSV:         "",
		Output:               "table",
	}
}
