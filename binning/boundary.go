package binning

import (
	"slices"

	"github.com/uyouii/clinical-tokenizer/model"
)

// CollectBoundaries returns the sorted, duplicate-free fixed cut points: the
// data extremes, the normal range edges and all anchor values. Only exactly
// equal values are merged.
func CollectBoundaries(cfg *model.VariableConfig, dataRange model.DataRange) []float64 {
	boundaries := []float64{dataRange.Min, dataRange.Max}

	if cfg != nil {
		if cfg.NormalRange != nil {
			boundaries = append(boundaries, cfg.NormalRange.Lower, cfg.NormalRange.Upper)
		}
		boundaries = append(boundaries, cfg.AnchorValues()...)
	}

	slices.Sort(boundaries)
	return slices.Compact(boundaries)
}
