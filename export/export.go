// Package export renders generated bins into the artifacts handed to data
// scientists: CSV, a Python tokenizer, Markdown documentation and a JSON
// manifest.
package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/uyouii/clinical-tokenizer/model"
	"github.com/uyouii/clinical-tokenizer/utils"
	"go.uber.org/zap"
)

// FileNames returns the per-variable artifact names, in the order
// csv, python, markdown, json.
func FileNames(name string) []string {
	id := Identifier(name)
	return []string{
		"bin_definitions_" + id + ".csv",
		"tokenize_" + id + ".py",
		"clinical_documentation_" + id + ".md",
		"specification_" + id + ".json",
	}
}

// Render produces the four artifacts keyed by file name.
func Render(bins []model.TokenBin, cfg *model.VariableConfig, generatedAt time.Time) (map[string][]byte, error) {
	var name string
	if cfg != nil {
		name = cfg.Name
	}
	names := FileNames(name)

	var csvBuf, pyBuf, mdBuf bytes.Buffer
	if err := CSV(&csvBuf, bins, cfg); err != nil {
		return nil, err
	}
	if err := Python(&pyBuf, bins, cfg, generatedAt); err != nil {
		return nil, err
	}
	if err := Markdown(&mdBuf, bins, cfg, generatedAt); err != nil {
		return nil, err
	}
	manifest, err := NewManifest(bins, cfg, generatedAt).JSON()
	if err != nil {
		return nil, err
	}

	return map[string][]byte{
		names[0]: csvBuf.Bytes(),
		names[1]: pyBuf.Bytes(),
		names[2]: mdBuf.Bytes(),
		names[3]: manifest,
	}, nil
}

// WriteAll renders every artifact into dir and returns the written paths in
// FileNames order.
func WriteAll(ctx context.Context, dir string, bins []model.TokenBin, cfg *model.VariableConfig, generatedAt time.Time) ([]string, error) {
	logger := utils.GetLogger(ctx)

	files, err := Render(bins, cfg, generatedAt)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	var name string
	if cfg != nil {
		name = cfg.Name
	}
	paths := []string{}
	for _, fileName := range FileNames(name) {
		path := filepath.Join(dir, fileName)
		if err := os.WriteFile(path, files[fileName], 0o644); err != nil {
			logger.Error("write export failed", zap.String("path", path), zap.Error(err))
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	logger.Info("exports written", zap.String("dir", dir), zap.Int("files", len(paths)))
	return paths, nil
}
