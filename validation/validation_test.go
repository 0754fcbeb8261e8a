package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/clinical-tokenizer/model"
	"go.uber.org/multierr"
)

func uniformDist(n int) model.Distribution {
	dist := make(model.Distribution, n)
	for i := range dist {
		dist[i] = model.ECDFPoint{Value: float64(i), CumulativeProbability: float64(i) / float64(n-1)}
	}
	return dist
}

func TestAnchors(t *testing.T) {
	normal := &model.NormalRange{Lower: 0.5, Upper: 2}
	dataRange := &model.DataRange{Min: 0, Max: 10}

	res := Anchors(nil, normal, dataRange)
	assert.True(t, res.Valid())
	assert.Len(t, res.Warnings, 1)

	anchors := []model.ClinicalAnchor{
		{Value: 2.0005, Evidence: "Sepsis-3"},
		{Value: 4, Evidence: "SSC 2021"},
		{Value: 4, Evidence: "SSC 2021"},
		{Value: 12},
	}
	res = Anchors(anchors, normal, dataRange)
	assert.False(t, res.Valid())
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "anchors", res.Errors[0].Field)
	assert.Equal(t, LevelError, res.Errors[0].Level)
	assert.Contains(t, res.Errors[0].Message, "4")

	// boundary coincidence, outside range, missing evidence
	assert.Len(t, res.Warnings, 3)
	for _, w := range res.Warnings {
		assert.Equal(t, LevelWarning, w.Level)
	}

	res = Anchors([]model.ClinicalAnchor{{Value: 4, Evidence: "x"}}, nil, nil)
	assert.True(t, res.Valid())
	assert.Empty(t, res.Warnings)
}

func TestNormalRange(t *testing.T) {
	res := NormalRange(nil, nil)
	assert.False(t, res.Valid())

	res = NormalRange(&model.NormalRange{Lower: 3, Upper: 3}, nil)
	assert.False(t, res.Valid())

	res = NormalRange(&model.NormalRange{Lower: 1, Upper: 3}, &model.DataRange{Min: 0, Max: 10})
	assert.True(t, res.Valid())
	assert.Empty(t, res.Warnings)

	res = NormalRange(&model.NormalRange{Lower: -1, Upper: 9}, &model.DataRange{Min: 0, Max: 10})
	assert.True(t, res.Valid())
	assert.Len(t, res.Warnings, 2)
}

func TestDistribution(t *testing.T) {
	res := Distribution(nil)
	assert.False(t, res.Valid())

	res = Distribution(uniformDist(100))
	assert.True(t, res.Valid())
	assert.Empty(t, res.Warnings)

	res = Distribution(uniformDist(5))
	assert.True(t, res.Valid())
	assert.Len(t, res.Warnings, 1)

	late := uniformDist(20)
	late[0].CumulativeProbability = 0.02
	res = Distribution(late)
	assert.True(t, res.Valid())
	assert.Len(t, res.Warnings, 1)

	bad := uniformDist(20)
	bad[3].CumulativeProbability = 0.01
	bad[5].Value = -1
	bad[19].CumulativeProbability = 1.5
	res = Distribution(bad)
	assert.Len(t, res.Errors, 3)

	dup := uniformDist(20)
	dup[1].Value = dup[0].Value
	res = Distribution(dup)
	assert.True(t, res.Valid())
	assert.Len(t, res.Warnings, 1)

	short := uniformDist(20)
	short[19].CumulativeProbability = 0.9
	res = Distribution(short)
	assert.True(t, res.Valid())
	assert.Len(t, res.Warnings, 1)
}

func TestZoneSpecs(t *testing.T) {
	res := ZoneSpecs([]model.ZoneSpec{
		{Lower: 0, Upper: 1, Bins: 3},
		{Lower: 1, Upper: 2, Bins: 0},
		{Lower: 3, Upper: 2, Bins: 2},
	})
	assert.Len(t, res.Errors, 2)
}

func TestConfiguration(t *testing.T) {
	res := Configuration(nil, nil, nil)
	assert.False(t, res.Valid())

	res = Configuration(&model.VariableConfig{}, nil, nil)
	assert.Len(t, res.Errors, 2)
	assert.Len(t, res.Warnings, 1)
	assert.Len(t, multierr.Errors(res.Err()), 2)

	dataRange := &model.DataRange{Min: 0, Max: 99}
	cfg := &model.VariableConfig{
		Name:        "lactate",
		Unit:        "mmol/L",
		Direction:   model.HigherIsWorse,
		NormalRange: &model.NormalRange{Lower: 5, Upper: 20},
		Anchors:     []model.ClinicalAnchor{{Value: 40, Evidence: "Sepsis-3"}},
		ZoneSpecs:   []model.ZoneSpec{{Lower: 20, Upper: 40, Bins: 2}},
	}
	res = Configuration(cfg, uniformDist(100), dataRange)
	assert.True(t, res.Valid())
	assert.Empty(t, res.Warnings)
	assert.NoError(t, res.Err())

	cfg.ZoneSpecs[0].Bins = -1
	res = Configuration(cfg, uniformDist(100), dataRange)
	assert.False(t, res.Valid())
	assert.Error(t, res.Err())
}

func TestBinSparsity(t *testing.T) {
	bins := []model.TokenBin{
		{Lower: 0, Upper: 1, DataPercentage: 0.5},
		{Lower: 1, Upper: 2, DataPercentage: 60},
		{Lower: 2, Upper: 3, DataPercentage: 39.5},
	}
	warnings := BinSparsity(bins, -1)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "bin 1")

	assert.Len(t, BinSparsity(bins, 50), 2)
	assert.Empty(t, BinSparsity(bins, 0))
}
