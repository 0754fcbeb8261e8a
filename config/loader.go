package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/uyouii/clinical-tokenizer/utils"
	"go.uber.org/zap"
)

const (
	EnvPrefix     = "CLIFTOK_"
	EnvConfigPath = EnvPrefix + "CONFIG"
)

// Load builds a Config by layering, lowest precedence first:
//  1. defaults (New)
//  2. YAML file named by CLIFTOK_CONFIG, if set
//  3. env (prefix CLIFTOK_)
func Load(ctx context.Context) (*Config, error) {
	return LoadFile(ctx, os.Getenv(EnvConfigPath))
}

// LoadFile is Load with an explicit file path; an empty path skips the file layer.
func LoadFile(ctx context.Context, path string) (*Config, error) {
	logger := utils.GetLogger(ctx)
	base := New()

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// CLIFTOK_SPARSITY_THRESHOLD -> sparsity_threshold
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("config loaded", zap.String("file", path), zap.Any("config", cfg))
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d: %w", c.Workers, ErrInvalidConfig)
	}
	if c.SparsityThreshold < 0 {
		return fmt.Errorf("sparsity_threshold must not be negative, got %v: %w", c.SparsityThreshold, ErrInvalidConfig)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output_dir must not be empty: %w", ErrInvalidConfig)
	}
	if c.ClipZScore < 0 {
		return fmt.Errorf("clip_zscore must not be negative, got %v: %w", c.ClipZScore, ErrInvalidConfig)
	}
	if c.MaxECDFPoints < 0 {
		return fmt.Errorf("max_ecdf_points must not be negative, got %d: %w", c.MaxECDFPoints, ErrInvalidConfig)
	}
	return nil
}
