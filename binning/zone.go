package binning

import (
	"fmt"

	"github.com/uyouii/clinical-tokenizer/common"
	"github.com/uyouii/clinical-tokenizer/model"
	"github.com/uyouii/clinical-tokenizer/utils"
)

// ClassifyZones turns consecutive boundary pairs into zones and resolves the
// bin count of each one. A single boundary yields one degenerate zone.
func ClassifyZones(boundaries []float64, cfg *model.VariableConfig) ([]model.Zone, error) {
	if cfg == nil {
		cfg = &model.VariableConfig{}
	}
	if len(boundaries) == 0 {
		return nil, fmt.Errorf("no boundaries: %w", common.ErrorInvalidValue)
	}
	if len(boundaries) == 1 {
		boundaries = []float64{boundaries[0], boundaries[0]}
	}

	zones := make([]model.Zone, 0, len(boundaries)-1)
	for i := 0; i < len(boundaries)-1; i++ {
		lower, upper := boundaries[i], boundaries[i+1]
		kind := classify(lower, upper, cfg)

		binCount := DefaultBinCount(kind)
		if spec, ok := matchZoneSpec(cfg.ZoneSpecs, lower, upper); ok {
			binCount = spec.Bins
		}
		if binCount <= 0 {
			return nil, fmt.Errorf("zone [%v, %v] resolved to %d bins: %w",
				lower, upper, binCount, common.ErrorInvalidBinCount)
		}

		zones = append(zones, model.Zone{
			Lower:    lower,
			Upper:    upper,
			Kind:     kind,
			BinCount: binCount,
		})
	}
	return zones, nil
}

func classify(lower, upper float64, cfg *model.VariableConfig) model.ZoneKind {
	normal := cfg.NormalRange
	if normal == nil {
		return model.ZoneNormal
	}

	switch {
	case upper <= normal.Lower:
		return model.ZoneBelow
	case lower >= normal.Upper:
		switch passed := anchorsPassed(cfg.Anchors, normal.Upper, lower); {
		case passed >= 2:
			return model.ZoneAboveSevere
		case passed == 1:
			return model.ZoneAboveModerate
		default:
			return model.ZoneAboveMild
		}
	}
	return model.ZoneNormal
}

// anchorsPassed counts the anchors in [normalUpper, zoneLower]: an anchor on
// the normal upper edge already counts as crossed.
func anchorsPassed(anchors []model.ClinicalAnchor, normalUpper, zoneLower float64) int {
	cnt := 0
	for _, anchor := range anchors {
		if anchor.Value >= normalUpper && anchor.Value <= zoneLower {
			cnt++
		}
	}
	return cnt
}

func matchZoneSpec(specs []model.ZoneSpec, lower, upper float64) (model.ZoneSpec, bool) {
	for _, spec := range specs {
		if utils.NearlyEqual(spec.Lower, lower, Tolerance) && utils.NearlyEqual(spec.Upper, upper, Tolerance) {
			return spec, true
		}
	}
	return model.ZoneSpec{}, false
}
