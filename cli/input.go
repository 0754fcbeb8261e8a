package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/uyouii/clinical-tokenizer/ecdf"
	"github.com/uyouii/clinical-tokenizer/model"
	"gopkg.in/yaml.v3"
)

func readVariable(path string) (*model.VariableConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read variable config: %w", err)
	}
	cfg := &model.VariableConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse variable config %s: %w", path, err)
	}
	return cfg, nil
}

// readDistribution loads an ECDF file, or builds one from raw values when
// raw is set.
func (a *app) readDistribution(ctx context.Context, path string, raw bool) (model.Distribution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data: %w", err)
	}
	defer f.Close()

	if !raw {
		return ecdf.Read(ctx, f)
	}
	values, err := ecdf.ReadValues(ctx, f)
	if err != nil {
		return nil, err
	}
	return ecdf.FromValues(ctx, values, ecdf.Options{
		ClipZScore: a.cfg.ClipZScore,
		MaxPoints:  a.cfg.MaxECDFPoints,
	})
}
