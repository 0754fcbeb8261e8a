package project

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/uyouii/clinical-tokenizer/binning"
	"github.com/uyouii/clinical-tokenizer/ecdf"
	"github.com/uyouii/clinical-tokenizer/export"
	"github.com/uyouii/clinical-tokenizer/utils"
	"go.uber.org/zap"
)

const (
	AllBinsFile       = "all_bins.csv"
	SpecificationFile = "complete_specification.json"
	TokenizerFile     = "tokenize_all.py"
	SummaryFile       = "project_summary.md"
)

type bundleSpec struct {
	Project     bundleProject      `json:"project"`
	Metadata    Metadata           `json:"metadata"`
	GeneratedAt string             `json:"generated_at"`
	Variables   []*export.Manifest `json:"variables"`
}

type bundleProject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// WriteBundle exports every binned variable of p under
// dir/<domain>/<variable>/ and writes the project-wide files at the root of
// dir. It returns the paths written.
func WriteBundle(ctx context.Context, dir string, p *Project, generatedAt time.Time) ([]string, error) {
	logger := utils.GetLogger(ctx)

	binned := []*Variable{}
	for _, v := range p.Variables {
		if len(v.Bins) > 0 {
			binned = append(binned, v)
		}
	}
	if len(binned) == 0 {
		return nil, fmt.Errorf("project %s: %w", p.Name, ErrNoData)
	}

	paths := []string{}
	tables := make([]export.Table, 0, len(binned))
	manifests := make([]*export.Manifest, 0, len(binned))
	for _, v := range binned {
		written, err := export.WriteAll(ctx, filepath.Join(dir, v.Domain, v.ID), v.Bins, v.Config, generatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", v.ID, err)
		}
		paths = append(paths, written...)
		tables = append(tables, export.Table{Name: v.ID, Domain: v.Domain, Unit: v.Config.Unit, Bins: v.Bins})
		manifests = append(manifests, export.NewManifest(v.Bins, v.Config, generatedAt))
	}

	var csvBuf, pyBuf, mdBuf bytes.Buffer
	if err := export.CombinedCSV(&csvBuf, tables); err != nil {
		return nil, err
	}
	if err := export.PythonTables(&pyBuf, p.Name, tables, generatedAt); err != nil {
		return nil, err
	}
	spec, err := json.MarshalIndent(bundleSpec{
		Project: bundleProject{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
		},
		Metadata:    p.Metadata(),
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		Variables:   manifests,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal specification: %w", err)
	}
	writeSummary(&mdBuf, p, generatedAt)

	files := []struct {
		name string
		data []byte
	}{
		{AllBinsFile, csvBuf.Bytes()},
		{SpecificationFile, append(spec, '\n')},
		{TokenizerFile, pyBuf.Bytes()},
		{SummaryFile, mdBuf.Bytes()},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	logger.Info("bundle written", zap.String("dir", dir), zap.Int("variables", len(binned)), zap.Int("files", len(paths)))
	return paths, nil
}

func writeSummary(b *bytes.Buffer, p *Project, generatedAt time.Time) {
	meta := p.Metadata()
	fmt.Fprintf(b, "# Project: %s\n\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(b, "%s\n\n", p.Description)
	}
	fmt.Fprintf(b, "**Project ID:** %s  \n", p.ID)
	fmt.Fprintf(b, "**Generated:** %s  \n\n", generatedAt.UTC().Format(time.RFC3339))

	b.WriteString("## Overview\n\n")
	fmt.Fprintf(b, "- **Variables:** %d\n", meta.TotalVariables)
	fmt.Fprintf(b, "- **Using defaults:** %d\n", meta.UsingDefaults)
	fmt.Fprintf(b, "- **Customized:** %d\n", meta.Customized)
	fmt.Fprintf(b, "- **Needs configuration:** %d\n", meta.NeedsConfiguration)
	fmt.Fprintf(b, "- **Binned:** %d\n\n", meta.Binned)

	b.WriteString("## Variables\n\n")
	b.WriteString("| Variable | Domain | Status | Bins | Median | Anchors Preserved | Sparse Bins |\n")
	b.WriteString("|----------|--------|--------|------|--------|-------------------|-------------|\n")
	for _, v := range p.Variables {
		median := "-"
		if q, err := ecdf.Quantile(v.Distribution, 0.5); err == nil {
			median = fmt.Sprint(utils.FormatFloat(q.Value, 2))
		}
		preserved := "-"
		if len(v.Bins) > 0 && v.Config != nil {
			preserved = "no"
			if binning.ValidateAnchorPreservation(v.Bins, v.Config.AnchorValues()) {
				preserved = "yes"
			}
		}
		fmt.Fprintf(b, "| %s | %s | %s | %d | %s | %s | %d |\n",
			v.ID, v.Domain, v.Status, len(v.Bins), median, preserved, len(v.Warnings))
	}
}
