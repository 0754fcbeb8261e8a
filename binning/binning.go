package binning

import (
	"fmt"

	"github.com/uyouii/clinical-tokenizer/common"
	"github.com/uyouii/clinical-tokenizer/model"
)

// GenerateBins runs the anchor-first algorithm: collect boundaries, classify
// zones, split every zone by quantiles and label the result. The only errors
// are configuration errors; degenerate data (empty zones, no anchors) still
// yields a complete bin list.
func GenerateBins(cfg *model.VariableConfig, dist model.Distribution, dataRange model.DataRange) ([]model.TokenBin, error) {
	if cfg == nil {
		cfg = &model.VariableConfig{}
	}
	if cfg.NormalRange != nil && !cfg.NormalRange.Valid() {
		return nil, fmt.Errorf("normal range [%v, %v]: %w",
			cfg.NormalRange.Lower, cfg.NormalRange.Upper, common.ErrorInvalidNormalRange)
	}
	if dataRange.Min > dataRange.Max {
		return nil, fmt.Errorf("data range [%v, %v]: %w", dataRange.Min, dataRange.Max, common.ErrorInvalidDataRange)
	}
	if dist.IsEmpty() {
		return nil, common.ErrorEmptyDistribution
	}

	boundaries := CollectBoundaries(cfg, dataRange)
	zones, err := ClassifyZones(boundaries, cfg)
	if err != nil {
		return nil, err
	}

	s := newSample(dist.Values())
	l := newLabeler(cfg)

	bins := []model.TokenBin{}
	for i, zone := range zones {
		subBins, err := splitZone(zone, s, i == len(zones)-1)
		if err != nil {
			return nil, err
		}
		for _, sub := range subBins {
			bins = append(bins, l.label(zone, sub))
		}
	}
	return bins, nil
}
