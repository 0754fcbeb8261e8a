// Package config holds process configuration for the tokenizer tools.
package config

import (
	"runtime"
	"time"
)

type Config struct {
	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile enables rotating file output when set; stderr otherwise.
	LogFile string `koanf:"log_file"`

	OutputDir string `koanf:"output_dir"`

	// Workers bounds how many variables of a project are binned at once.
	Workers int `koanf:"workers"`

	// SparsityThreshold is the bin data percentage under which a warning is raised.
	SparsityThreshold float64 `koanf:"sparsity_threshold"`

	// CacheTTL is how long generated bin sets stay memoized.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	MetricsNamespace string `koanf:"metrics_namespace"`

	// ClipZScore clips raw measurements to mean ± k·stddev before the ECDF is
	// built. Zero disables clipping.
	ClipZScore float64 `koanf:"clip_zscore"`

	MaxECDFPoints int `koanf:"max_ecdf_points"`
}

func New() *Config {
	return &Config{
		LogLevel:          "info",
		OutputDir:         "tokenizer_output",
		Workers:           runtime.NumCPU(),
		SparsityThreshold: 1.0,
		CacheTTL:          10 * time.Minute,
		MetricsNamespace:  "cliftok",
		ClipZScore:        0,
		MaxECDFPoints:     10000,
	}
}
