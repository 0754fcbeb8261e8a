package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/uyouii/clinical-tokenizer/binning"
	"github.com/uyouii/clinical-tokenizer/common"
	"github.com/uyouii/clinical-tokenizer/model"
	"gopkg.in/yaml.v3"
)

const (
	Generator     = "cliftok"
	FormatVersion = "1.0.0"
)

type Meta struct {
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Generator   string `json:"generator" yaml:"generator"`
	Version     string `json:"version" yaml:"version"`
}

type VariableInfo struct {
	Name        string             `json:"name" yaml:"name"`
	Unit        string             `json:"unit" yaml:"unit"`
	Domain      string             `json:"domain,omitempty" yaml:"domain,omitempty"`
	Direction   model.Direction    `json:"direction" yaml:"direction"`
	NormalRange *model.NormalRange `json:"normal_range" yaml:"normal_range"`
}

type ManifestBin struct {
	ID             string             `json:"id" yaml:"id"`
	LowerBound     float64            `json:"lower_bound" yaml:"lower_bound"`
	UpperBound     float64            `json:"upper_bound" yaml:"upper_bound"`
	DataPercentage float64            `json:"data_percentage" yaml:"data_percentage"`
	Zone           model.ZoneCategory `json:"zone" yaml:"zone"`
	Severity       model.Severity     `json:"severity" yaml:"severity"`
}

type Statistics struct {
	TotalBins        int             `json:"total_bins" yaml:"total_bins"`
	TotalAnchors     int             `json:"total_anchors" yaml:"total_anchors"`
	DataRange        model.DataRange `json:"data_range" yaml:"data_range"`
	AnchorsPreserved bool            `json:"anchors_preserved" yaml:"anchors_preserved"`
}

// Manifest is the machine-readable specification of one variable's bins.
type Manifest struct {
	Meta            Meta                   `json:"meta" yaml:"meta"`
	Variable        VariableInfo           `json:"variable" yaml:"variable"`
	ClinicalAnchors []model.ClinicalAnchor `json:"clinical_anchors" yaml:"clinical_anchors"`
	Bins            []ManifestBin          `json:"bins" yaml:"bins"`
	Statistics      Statistics             `json:"statistics" yaml:"statistics"`
}

func NewManifest(bins []model.TokenBin, cfg *model.VariableConfig, generatedAt time.Time) *Manifest {
	if cfg == nil {
		cfg = &model.VariableConfig{}
	}
	m := &Manifest{
		Meta: Meta{
			GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
			Generator:   Generator,
			Version:     FormatVersion,
		},
		Variable: VariableInfo{
			Name:        cfg.Name,
			Unit:        cfg.Unit,
			Domain:      cfg.Domain,
			Direction:   cfg.Direction,
			NormalRange: cfg.NormalRange,
		},
		ClinicalAnchors: cfg.Anchors,
		Bins:            make([]ManifestBin, 0, len(bins)),
		Statistics: Statistics{
			TotalBins:        len(bins),
			TotalAnchors:     len(cfg.Anchors),
			AnchorsPreserved: binning.ValidateAnchorPreservation(bins, cfg.AnchorValues()),
		},
	}
	if m.ClinicalAnchors == nil {
		m.ClinicalAnchors = []model.ClinicalAnchor{}
	}
	for _, bin := range bins {
		m.Bins = append(m.Bins, ManifestBin{
			ID:             bin.ID,
			LowerBound:     bin.Lower,
			UpperBound:     bin.Upper,
			DataPercentage: bin.DataPercentage,
			Zone:           bin.Zone,
			Severity:       bin.Severity,
		})
	}
	if len(bins) > 0 {
		m.Statistics.DataRange = model.DataRange{Min: bins[0].Lower, Max: bins[len(bins)-1].Upper}
	}
	return m
}

func (m *Manifest) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return append(data, '\n'), nil
}

func (m *Manifest) YAML() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// ManifestEdges reads the bins and anchor values back out of a JSON
// manifest, enough to re-run binning.ValidateAnchorPreservation on it.
func ManifestEdges(data []byte) ([]model.TokenBin, []float64, error) {
	if !gjson.ValidBytes(data) {
		return nil, nil, fmt.Errorf("manifest is not valid json: %w", common.ErrorInvalidValue)
	}

	bins := []model.TokenBin{}
	gjson.GetBytes(data, "bins").ForEach(func(_, bin gjson.Result) bool {
		bins = append(bins, model.TokenBin{
			ID:             bin.Get("id").String(),
			Lower:          bin.Get("lower_bound").Float(),
			Upper:          bin.Get("upper_bound").Float(),
			DataPercentage: bin.Get("data_percentage").Float(),
			Zone:           model.ZoneCategory(bin.Get("zone").String()),
			Severity:       model.Severity(bin.Get("severity").String()),
		})
		return true
	})
	if len(bins) == 0 {
		return nil, nil, fmt.Errorf("manifest: %w", common.ErrorNoBins)
	}

	anchors := []float64{}
	for _, v := range gjson.GetBytes(data, "clinical_anchors.#.value").Array() {
		anchors = append(anchors, v.Float())
	}
	return bins, anchors, nil
}
