package project

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/uyouii/clinical-tokenizer/binning"
	"github.com/uyouii/clinical-tokenizer/catalog"
	"github.com/uyouii/clinical-tokenizer/common"
	"github.com/uyouii/clinical-tokenizer/ecdf"
	"github.com/uyouii/clinical-tokenizer/metrics"
	"github.com/uyouii/clinical-tokenizer/model"
)

func linearDist(t *testing.T, lower, step float64, n int) model.Distribution {
	t.Helper()
	values := make([]float64, n)
	for i := range values {
		values[i] = lower + float64(i)*step
	}
	dist, err := ecdf.FromValues(context.Background(), values, ecdf.Options{})
	require.NoError(t, err)
	return dist
}

func loadCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load()
	require.NoError(t, err)
	return c
}

func TestFromTemplate(t *testing.T) {
	p, err := FromTemplate(loadCatalog(t), "sepsis")
	require.NoError(t, err)

	assert.Equal(t, "Sepsis Panel", p.Name)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, Metadata{TotalVariables: 9, UsingDefaults: 8, NeedsConfiguration: 1}, p.Metadata())

	v, ok := p.Variable("norepinephrine")
	require.True(t, ok)
	assert.Equal(t, StatusNeedsConfiguration, v.Status)

	_, err = FromTemplate(loadCatalog(t), "unknown")
	assert.ErrorIs(t, err, common.ErrorUnknownVariable)
}

func TestProject_Variables(t *testing.T) {
	c := loadCatalog(t)
	p := New("icu", "")
	lactate, err := c.Lookup("lactate")
	require.NoError(t, err)

	_, err = p.AddFromCatalog(lactate)
	require.NoError(t, err)
	_, err = p.AddFromCatalog(lactate)
	assert.ErrorIs(t, err, ErrDuplicateVariable)

	_, err = p.AddCustom(&model.VariableConfig{})
	assert.ErrorIs(t, err, common.ErrorInvalidConfig)

	v, err := p.AddCustom(&model.VariableConfig{Name: "Glucose", Unit: "mg/dL", Direction: model.HigherIsWorse})
	require.NoError(t, err)
	assert.Equal(t, "glucose", v.ID)
	assert.Equal(t, "custom", v.Domain)
	assert.Equal(t, StatusNeedsConfiguration, v.Status)

	require.NoError(t, p.UpdateConfig("glucose", &model.VariableConfig{
		Name:        "glucose",
		Unit:        "mg/dL",
		Direction:   model.HigherIsWorse,
		NormalRange: &model.NormalRange{Lower: 70, Upper: 140},
	}))
	assert.Equal(t, StatusCustomized, v.Status)

	assert.ErrorIs(t, p.UpdateConfig("missing", nil), common.ErrorUnknownVariable)
	assert.ErrorIs(t, p.SetData("missing", nil), common.ErrorUnknownVariable)
	assert.ErrorIs(t, p.SetData("glucose", nil), common.ErrorEmptyDistribution)

	require.NoError(t, p.SetData("glucose", linearDist(t, 50, 1, 200)))
	assert.Equal(t, &model.DataRange{Min: 50, Max: 249}, v.DataRange)
	assert.Equal(t, Metadata{TotalVariables: 2, UsingDefaults: 1, Customized: 1, WithData: 1}, p.Metadata())
}

func buildFixture(t *testing.T) *Project {
	t.Helper()
	c := loadCatalog(t)
	p := New("labs", "lab panel")
	for _, id := range []string{"lactate", "creatinine", "norepinephrine"} {
		def, err := c.Lookup(id)
		require.NoError(t, err)
		_, err = p.AddFromCatalog(def)
		require.NoError(t, err)
	}
	require.NoError(t, p.SetData("lactate", linearDist(t, 0.5, 0.05, 391)))
	require.NoError(t, p.SetData("creatinine", linearDist(t, 0.4, 0.02, 500)))
	return p
}

func TestBuilder_Build(t *testing.T) {
	registry := prometheus.NewRegistry()
	builder := NewBuilder(WithWorkers(2), WithMetrics(metrics.New(registry)), WithSparsityThreshold(0.5))
	p := buildFixture(t)

	require.NoError(t, builder.Build(context.Background(), p))

	for _, id := range []string{"lactate", "creatinine"} {
		v, ok := p.Variable(id)
		require.True(t, ok)
		require.NotEmpty(t, v.Bins, id)
		assert.True(t, binning.ValidateAnchorPreservation(v.Bins, v.Config.AnchorValues()), id)
		assert.NoError(t, binning.CheckLayout(v.Bins, *v.DataRange), id)
		assert.InDelta(t, 100, binning.TotalPercentage(v.Bins), 0.2, id)
	}
	lactate, _ := p.Variable("lactate")
	assert.Len(t, lactate.Bins, 4+6+6+6+6)

	noData, _ := p.Variable("norepinephrine")
	assert.Empty(t, noData.Bins)
	assert.Equal(t, 2, p.Metadata().Binned)

	// identical inputs are served from the cache
	require.NoError(t, builder.Build(context.Background(), p))
	expected := `
# HELP cliftok_binning_cache_hits_total Total number of bin sets served from the memo cache
# TYPE cliftok_binning_cache_hits_total counter
cliftok_binning_cache_hits_total 2
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "cliftok_binning_cache_hits_total"))
}

func TestBuilder_BuildErrors(t *testing.T) {
	p := buildFixture(t)
	require.NoError(t, p.SetData("norepinephrine", linearDist(t, 0, 0.01, 100)))

	err := NewBuilder(WithCacheTTL(0)).Build(context.Background(), p)
	assert.ErrorIs(t, err, ErrNeedsConfiguration)
	assert.Contains(t, err.Error(), "norepinephrine")

	lactate, _ := p.Variable("lactate")
	assert.NotEmpty(t, lactate.Bins)

	require.NoError(t, p.UpdateConfig("lactate", &model.VariableConfig{
		Name:        "lactate",
		Unit:        "mmol/L",
		Direction:   model.HigherIsWorse,
		NormalRange: &model.NormalRange{Lower: 0.5, Upper: 2},
	}))
	assert.Equal(t, StatusCustomized, lactate.Status)
	lactate.Config.ZoneSpecs = []model.ZoneSpec{{Lower: 0.5, Upper: 2, Bins: 0}}

	err = NewBuilder().Build(context.Background(), p)
	assert.ErrorIs(t, err, common.ErrorInvalidBinCount)
	assert.Empty(t, lactate.Bins)
}

func TestBuilder_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewBuilder().Build(ctx, buildFixture(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteBundle(t *testing.T) {
	p := buildFixture(t)
	require.NoError(t, NewBuilder().Build(context.Background(), p))

	dir := t.TempDir()
	generatedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	paths, err := WriteBundle(context.Background(), dir, p, generatedAt)
	require.NoError(t, err)
	assert.Len(t, paths, 2*4+4)

	for _, rel := range []string{
		"labs/lactate/bin_definitions_lactate.csv",
		"labs/creatinine/tokenize_creatinine.py",
		AllBinsFile,
		TokenizerFile,
		SummaryFile,
	} {
		_, err := os.Stat(filepath.Join(dir, rel))
		assert.NoError(t, err, rel)
	}

	spec, err := os.ReadFile(filepath.Join(dir, SpecificationFile))
	require.NoError(t, err)
	assert.Equal(t, p.ID, gjson.GetBytes(spec, "project.id").String())
	assert.Equal(t, int64(2), gjson.GetBytes(spec, "variables.#").Int())
	assert.Equal(t, "2026-03-01T12:00:00Z", gjson.GetBytes(spec, "generated_at").String())
	assert.False(t, gjson.GetBytes(spec, "project.updated_at").Exists())

	// wall-clock project timestamps stay out of the bundle
	p.UpdatedAt = p.UpdatedAt.Add(time.Hour)
	again := t.TempDir()
	_, err = WriteBundle(context.Background(), again, p, generatedAt)
	require.NoError(t, err)
	for _, rel := range []string{SpecificationFile, SummaryFile, AllBinsFile, TokenizerFile} {
		first, err := os.ReadFile(filepath.Join(dir, rel))
		require.NoError(t, err)
		second, err := os.ReadFile(filepath.Join(again, rel))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second), rel)
	}

	summary, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "| lactate | labs | using_defaults | 28 |")
	assert.Contains(t, string(summary), "| norepinephrine | medications | needs_configuration | 0 | - | - | 0 |")

	_, err = WriteBundle(context.Background(), dir, New("empty", ""), generatedAt)
	assert.ErrorIs(t, err, ErrNoData)
}
