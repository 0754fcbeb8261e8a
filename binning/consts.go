package binning

import "github.com/uyouii/clinical-tokenizer/model"

// Tolerance is used for every approximate comparison: zone override matching
// and anchor validation. Boundary collection deduplicates exact values only.
const Tolerance = 1e-3

const (
	DefaultNormalBins        = 5
	DefaultBelowBins         = 3
	DefaultAboveMildBins     = 5
	DefaultAboveModerateBins = 4
	DefaultAboveSevereBins   = 3

	DefaultVariableName = "variable"

	// percentages are reported with two decimals
	percentageDecimals = 2
)

var defaultBinCounts = map[model.ZoneKind]int{
	model.ZoneBelow:         DefaultBelowBins,
	model.ZoneNormal:        DefaultNormalBins,
	model.ZoneAboveMild:     DefaultAboveMildBins,
	model.ZoneAboveModerate: DefaultAboveModerateBins,
	model.ZoneAboveSevere:   DefaultAboveSevereBins,
}

// DefaultBinCount returns the bin count used for a zone kind when no
// ZoneSpec overrides it.
func DefaultBinCount(kind model.ZoneKind) int {
	return defaultBinCounts[kind]
}
