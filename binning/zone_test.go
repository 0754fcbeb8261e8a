package binning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/clinical-tokenizer/common"
	"github.com/uyouii/clinical-tokenizer/model"
)

func anchorsAt(values ...float64) []model.ClinicalAnchor {
	res := make([]model.ClinicalAnchor, len(values))
	for i, v := range values {
		res[i] = model.ClinicalAnchor{Value: v}
	}
	return res
}

func TestCollectBoundaries(t *testing.T) {
	dataRange := model.DataRange{Min: 0, Max: 10}

	assert.Equal(t, []float64{0, 10}, CollectBoundaries(nil, dataRange))
	assert.Equal(t, []float64{0, 10}, CollectBoundaries(&model.VariableConfig{}, dataRange))

	cfg := &model.VariableConfig{
		NormalRange: &model.NormalRange{Lower: 2, Upper: 8},
		Anchors:     anchorsAt(8, 4, 0),
	}
	assert.Equal(t, []float64{0, 2, 4, 8, 10}, CollectBoundaries(cfg, dataRange))

	// near-equal values are kept apart; only exact duplicates merge
	cfg.Anchors = anchorsAt(4, 4.0001)
	assert.Equal(t, []float64{0, 2, 4, 4.0001, 8, 10}, CollectBoundaries(cfg, dataRange))
}

func TestClassifyZones(t *testing.T) {
	cfg := &model.VariableConfig{
		NormalRange: &model.NormalRange{Lower: 0.5, Upper: 2},
		Anchors:     anchorsAt(2, 4, 8),
	}
	zones, err := ClassifyZones(CollectBoundaries(cfg, model.DataRange{Min: 0, Max: 10}), cfg)
	require.NoError(t, err)

	expected := []model.Zone{
		{Lower: 0, Upper: 0.5, Kind: model.ZoneBelow, BinCount: DefaultBelowBins},
		{Lower: 0.5, Upper: 2, Kind: model.ZoneNormal, BinCount: DefaultNormalBins},
		{Lower: 2, Upper: 4, Kind: model.ZoneAboveModerate, BinCount: DefaultAboveModerateBins},
		{Lower: 4, Upper: 8, Kind: model.ZoneAboveSevere, BinCount: DefaultAboveSevereBins},
		{Lower: 8, Upper: 10, Kind: model.ZoneAboveSevere, BinCount: DefaultAboveSevereBins},
	}
	assert.Equal(t, expected, zones)
}

func TestClassifyZones_AnchorOnNormalUpper(t *testing.T) {
	normal := &model.NormalRange{Lower: 0.5, Upper: 2}
	boundaries := []float64{0, 0.5, 2, 4, 10}

	// the anchor on the normal upper edge is already crossed by the first
	// zone above normal
	zones, err := ClassifyZones(boundaries, &model.VariableConfig{NormalRange: normal, Anchors: anchorsAt(2, 4)})
	require.NoError(t, err)
	assert.Equal(t, model.ZoneAboveModerate, zones[2].Kind)
	assert.Equal(t, model.ZoneAboveSevere, zones[3].Kind)

	// without it the same zones step down one level
	zones, err = ClassifyZones(boundaries, &model.VariableConfig{NormalRange: normal, Anchors: anchorsAt(4)})
	require.NoError(t, err)
	assert.Equal(t, model.ZoneAboveMild, zones[2].Kind)
	assert.Equal(t, model.ZoneAboveModerate, zones[3].Kind)

	assert.Equal(t, 1, anchorsPassed(anchorsAt(2, 4), 2, 2))
	assert.Equal(t, 2, anchorsPassed(anchorsAt(2, 4), 2, 4))
	assert.Equal(t, 0, anchorsPassed(anchorsAt(1.5, 4), 2, 3))
}

func TestSplitZone_SingleBin(t *testing.T) {
	dist := model.Distribution{{Value: 0}, {Value: 1}, {Value: 2}, {Value: 4}}

	// a single bin counts every value in the closed zone, upper edge included
	bins, err := SplitZone(model.Zone{Lower: 0, Upper: 2, Kind: model.ZoneBelow, BinCount: 1}, dist, false)
	require.NoError(t, err)
	require.Len(t, bins, 1)
	assert.Equal(t, SubBin{Lower: 0, Upper: 2, DataPercentage: 75}, bins[0])

	// split zones stay half-open: the value on the upper edge belongs to the next zone
	bins, err = SplitZone(model.Zone{Lower: 0, Upper: 2, Kind: model.ZoneBelow, BinCount: 2}, dist, false)
	require.NoError(t, err)
	require.Len(t, bins, 2)
	assert.Equal(t, 50.0, bins[0].DataPercentage+bins[1].DataPercentage)
}

func TestClassifyZones_StraddlingNormalRange(t *testing.T) {
	// an anchor inside the normal range splits it into two normal zones
	cfg := &model.VariableConfig{
		NormalRange: &model.NormalRange{Lower: 2, Upper: 8},
		Anchors:     anchorsAt(5),
	}
	zones, err := ClassifyZones([]float64{0, 2, 5, 8, 10}, cfg)
	require.NoError(t, err)

	kinds := []model.ZoneKind{}
	for _, zone := range zones {
		kinds = append(kinds, zone.Kind)
	}
	assert.Equal(t, []model.ZoneKind{model.ZoneBelow, model.ZoneNormal, model.ZoneNormal, model.ZoneAboveMild}, kinds)

	// a normal range wider than the data makes every zone normal
	cfg = &model.VariableConfig{NormalRange: &model.NormalRange{Lower: -5, Upper: 20}}
	zones, err = ClassifyZones([]float64{-5, 0, 10, 20}, cfg)
	require.NoError(t, err)
	for _, zone := range zones {
		assert.Equal(t, model.ZoneNormal, zone.Kind)
	}
}

func TestClassifyZones_NoNormalRange(t *testing.T) {
	cfg := &model.VariableConfig{Anchors: anchorsAt(3, 6)}
	zones, err := ClassifyZones([]float64{0, 3, 6, 10}, cfg)
	require.NoError(t, err)
	require.Len(t, zones, 3)
	for _, zone := range zones {
		assert.Equal(t, model.ZoneNormal, zone.Kind)
		assert.Equal(t, DefaultNormalBins, zone.BinCount)
	}
}

func TestClassifyZones_Overrides(t *testing.T) {
	cfg := &model.VariableConfig{
		NormalRange: &model.NormalRange{Lower: 2, Upper: 8},
		ZoneSpecs: []model.ZoneSpec{
			{Lower: 2.0004, Upper: 7.9996, Bins: 2},
			{Lower: 8.01, Upper: 10, Bins: 9},
		},
	}
	zones, err := ClassifyZones([]float64{0, 2, 8, 10}, cfg)
	require.NoError(t, err)

	assert.Equal(t, DefaultBelowBins, zones[0].BinCount)
	assert.Equal(t, 2, zones[1].BinCount, "override within tolerance applies")
	assert.Equal(t, DefaultAboveMildBins, zones[2].BinCount, "override outside tolerance is ignored")
}

func TestClassifyZones_InvalidBinCount(t *testing.T) {
	cfg := &model.VariableConfig{ZoneSpecs: []model.ZoneSpec{{Lower: 0, Upper: 10, Bins: 0}}}
	_, err := ClassifyZones([]float64{0, 10}, cfg)
	assert.ErrorIs(t, err, common.ErrorInvalidBinCount)

	_, err = ClassifyZones(nil, cfg)
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}

func TestSeverityFor(t *testing.T) {
	cases := []struct {
		kind   model.ZoneKind
		higher model.Severity
		lower  model.Severity
		bidir  model.Severity
		unspec model.Severity
	}{
		{model.ZoneNormal, model.SeverityNormal, model.SeverityNormal, model.SeverityNormal, model.SeverityNormal},
		{model.ZoneBelow, model.SeverityMild, model.SeverityModerate, model.SeverityModerate, model.SeverityMild},
		{model.ZoneAboveMild, model.SeverityMild, model.SeverityNormal, model.SeverityMild, model.SeverityNormal},
		{model.ZoneAboveModerate, model.SeverityModerate, model.SeverityMild, model.SeverityModerate, model.SeverityMild},
		{model.ZoneAboveSevere, model.SeveritySevere, model.SeverityModerate, model.SeveritySevere, model.SeverityModerate},
	}
	for _, c := range cases {
		assert.Equal(t, c.higher, SeverityFor(c.kind, model.HigherIsWorse), "%s higher", c.kind)
		assert.Equal(t, c.lower, SeverityFor(c.kind, model.LowerIsWorse), "%s lower", c.kind)
		assert.Equal(t, c.bidir, SeverityFor(c.kind, model.Bidirectional), "%s bidirectional", c.kind)
		assert.Equal(t, c.unspec, SeverityFor(c.kind, model.DirectionUnspecified), "%s unspecified", c.kind)
	}
	assert.Equal(t, model.SeverityNormal, SeverityFor("unknown", model.HigherIsWorse))
}

func TestQuantileCuts(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, []float64{5}, quantileCuts(values, 2))
	assert.Nil(t, quantileCuts(values, 1))
	assert.Nil(t, quantileCuts(nil, 3))

	cuts := quantileCuts(values, 4)
	require.Len(t, cuts, 3)
	for i := 1; i < len(cuts); i++ {
		assert.LessOrEqual(t, cuts[i-1], cuts[i])
	}
	assert.GreaterOrEqual(t, cuts[0], values[0])
	assert.LessOrEqual(t, cuts[len(cuts)-1], values[len(values)-1])
}

func TestSplitZone(t *testing.T) {
	dist := model.Distribution{}
	for i := 0; i <= 10; i++ {
		dist = append(dist, model.ECDFPoint{Value: float64(i), CumulativeProbability: float64(i+1) / 11})
	}
	zone := model.Zone{Lower: 0, Upper: 10, Kind: model.ZoneNormal, BinCount: 1}

	closed, err := SplitZone(zone, dist, true)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.InDelta(t, 100, closed[0].DataPercentage, 1e-9)

	open, err := SplitZone(zone, dist, false)
	require.NoError(t, err)
	assert.InDelta(t, 1000.0/11, open[0].DataPercentage, 1e-9, "upper edge excluded unless last")

	zone.BinCount = 5
	subBins, err := SplitZone(zone, dist, true)
	require.NoError(t, err)
	require.Len(t, subBins, 5)
	assert.Equal(t, 0.0, subBins[0].Lower)
	assert.Equal(t, 10.0, subBins[4].Upper)
	sum := 0.0
	for i, sub := range subBins {
		sum += sub.DataPercentage
		if i > 0 {
			assert.Equal(t, subBins[i-1].Upper, sub.Lower)
		}
	}
	assert.InDelta(t, 100, sum, 1e-9)

	empty, err := SplitZone(model.Zone{Lower: 20, Upper: 30, BinCount: 4}, dist, false)
	require.NoError(t, err)
	assert.Equal(t, []SubBin{{Lower: 20, Upper: 30, DataPercentage: 0}}, empty)

	_, err = SplitZone(model.Zone{Lower: 0, Upper: 10, BinCount: 0}, dist, false)
	assert.ErrorIs(t, err, common.ErrorInvalidBinCount)

	_, err = SplitZone(zone, nil, false)
	assert.ErrorIs(t, err, common.ErrorEmptyDistribution)
}

func TestBinIDs(t *testing.T) {
	assert.Equal(t, "2p5", formatEdge(2.5))
	assert.Equal(t, "m1p25", formatEdge(-1.25))
	assert.Equal(t, "10", formatEdge(10))
	assert.Equal(t, "0p3333", formatEdge(1.0/3))

	assert.Equal(t, "heart_rate", SanitizeName("  Heart Rate "))
	assert.Equal(t, "pf_ratio", SanitizeName("P/F ratio"))
	assert.Equal(t, DefaultVariableName, SanitizeName(""))
	assert.Equal(t, DefaultVariableName, SanitizeName("???"))

	assert.Equal(t, "lactate_above_mild_2_to_4", binID("lactate", model.ZoneAboveMild, 2, 4))
}
