package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/uyouii/clinical-tokenizer/model"
	"go.uber.org/multierr"
)

type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

const (
	DefaultSparsityThreshold = 1.0
	MinRecommendedPoints     = 10
	anchorTolerance          = 1e-3
	maxNormalCoverage        = 0.8
	firstProbabilityMax      = 0.01
	lastProbabilityMin       = 0.99
)

// Message is a single finding about one input field.
type Message struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Level   Level  `json:"level"`
}

func (m Message) Error() string {
	return m.Field + ": " + m.Message
}

type Result struct {
	Errors   []Message `json:"errors"`
	Warnings []Message `json:"warnings"`
}

func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

// Err combines every error-level message, or returns nil.
func (r *Result) Err() error {
	var err error
	for _, m := range r.Errors {
		err = multierr.Append(err, errors.New(m.Error()))
	}
	return err
}

func (r *Result) errorf(field, format string, args ...any) {
	r.Errors = append(r.Errors, Message{Field: field, Message: fmt.Sprintf(format, args...), Level: LevelError})
}

func (r *Result) warnf(field, format string, args ...any) {
	r.Warnings = append(r.Warnings, Message{Field: field, Message: fmt.Sprintf(format, args...), Level: LevelWarning})
}

func (r *Result) merge(other *Result) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Anchors checks the clinical anchors against each other, the normal range and
// the observed data range. normal and dataRange may be nil.
func Anchors(anchors []model.ClinicalAnchor, normal *model.NormalRange, dataRange *model.DataRange) *Result {
	res := &Result{}

	if len(anchors) == 0 {
		res.warnf("anchors", "no clinical anchors defined, consider adding evidence-based thresholds")
	}

	seen := map[float64]bool{}
	duplicates := []string{}
	for _, anchor := range anchors {
		if seen[anchor.Value] {
			duplicates = append(duplicates, fmt.Sprint(anchor.Value))
		}
		seen[anchor.Value] = true
	}
	if len(duplicates) > 0 {
		res.errorf("anchors", "duplicate anchor values: %s", strings.Join(duplicates, ", "))
	}

	for i, anchor := range anchors {
		if dataRange != nil && !dataRange.Contains(anchor.Value) {
			res.warnf("anchors", "anchor at %v is outside data range [%.2f, %.2f], its bins will hold 0%% of data",
				anchor.Value, dataRange.Min, dataRange.Max)
		}
		if normal != nil && (math.Abs(anchor.Value-normal.Lower) < anchorTolerance ||
			math.Abs(anchor.Value-normal.Upper) < anchorTolerance) {
			res.warnf("anchors", "anchor at %v coincides with a normal range boundary", anchor.Value)
		}
		if strings.TrimSpace(anchor.Evidence) == "" {
			res.warnf("anchors", "anchor %d (%v) is missing an evidence citation", i+1, anchor.Value)
		}
	}
	return res
}

func NormalRange(normal *model.NormalRange, dataRange *model.DataRange) *Result {
	res := &Result{}
	if normal == nil {
		res.errorf("normal_range", "normal range is required")
		return res
	}
	if normal.Lower >= normal.Upper {
		res.errorf("normal_range", "lower bound %v must be less than upper bound %v", normal.Lower, normal.Upper)
	}
	if dataRange == nil {
		return res
	}
	if normal.Lower < dataRange.Min || normal.Upper > dataRange.Max {
		res.warnf("normal_range", "normal range [%v, %v] extends beyond data range [%.2f, %.2f]",
			normal.Lower, normal.Upper, dataRange.Min, dataRange.Max)
	}
	if normal.Upper-normal.Lower > maxNormalCoverage*dataRange.Span() {
		res.warnf("normal_range", "normal range covers more than 80%% of the data range, abnormal bins may be sparse")
	}
	return res
}

// Distribution checks the shape of an ECDF sample before it is binned.
func Distribution(dist model.Distribution) *Result {
	res := &Result{}
	if dist.IsEmpty() {
		res.errorf("ecdf", "no ECDF data provided")
		return res
	}

	if len(dist) < MinRecommendedPoints {
		res.warnf("ecdf", "only %d data points, at least 100 are recommended for reliable binning", len(dist))
	}

	for i := 1; i < len(dist); i++ {
		if dist[i].CumulativeProbability < dist[i-1].CumulativeProbability {
			res.errorf("ecdf", "cumulative probabilities must be non-decreasing, issue at index %d", i)
			break
		}
	}
	for i, p := range dist {
		if p.CumulativeProbability < 0 || p.CumulativeProbability > 1 {
			res.errorf("ecdf", "cumulative probability at index %d is out of range [0, 1]: %v", i, p.CumulativeProbability)
		}
	}

	for i := 1; i < len(dist); i++ {
		if dist[i].Value < dist[i-1].Value {
			res.errorf("ecdf", "values must be sorted ascending, issue at index %d", i)
			break
		}
	}
	duplicate := false
	seen := make(map[float64]struct{}, len(dist))
	for _, p := range dist {
		if _, ok := seen[p.Value]; ok {
			duplicate = true
			break
		}
		seen[p.Value] = struct{}{}
	}
	if duplicate {
		res.warnf("ecdf", "duplicate values detected in ECDF data")
	}

	if first := dist[0].CumulativeProbability; first > firstProbabilityMax {
		res.warnf("ecdf", "first cumulative probability should be near 0, got %.3f", first)
	}
	if last := dist[len(dist)-1].CumulativeProbability; last < lastProbabilityMin {
		res.warnf("ecdf", "last cumulative probability should be near 1, got %.3f", last)
	}
	return res
}

func ZoneSpecs(specs []model.ZoneSpec) *Result {
	res := &Result{}
	for i, spec := range specs {
		if spec.Bins <= 0 {
			res.errorf("zone_configs", "zone %d [%v, %v] has non-positive bin count %d", i+1, spec.Lower, spec.Upper, spec.Bins)
		}
		if spec.Lower >= spec.Upper {
			res.errorf("zone_configs", "zone %d lower bound %v must be less than upper bound %v", i+1, spec.Lower, spec.Upper)
		}
	}
	return res
}

// Configuration validates a whole variable configuration together with its
// distribution. Sub-checks only run for the parts that are present.
func Configuration(cfg *model.VariableConfig, dist model.Distribution, dataRange *model.DataRange) *Result {
	res := &Result{}
	if cfg == nil {
		res.errorf("config", "variable configuration is required")
		return res
	}

	if strings.TrimSpace(cfg.Name) == "" {
		res.errorf("name", "variable name is required")
	}
	if strings.TrimSpace(cfg.Unit) == "" {
		res.warnf("unit", "unit is not specified")
	}
	if cfg.Direction == model.DirectionUnspecified {
		res.errorf("direction", "clinical direction is required")
	}

	if !dist.IsEmpty() {
		res.merge(Distribution(dist))
	}
	if cfg.NormalRange != nil {
		res.merge(NormalRange(cfg.NormalRange, dataRange))
	}
	if len(cfg.Anchors) > 0 {
		res.merge(Anchors(cfg.Anchors, cfg.NormalRange, dataRange))
	}
	if len(cfg.ZoneSpecs) > 0 {
		res.merge(ZoneSpecs(cfg.ZoneSpecs))
	}
	return res
}

// BinSparsity warns about every bin holding less than threshold percent of
// the data. A negative threshold falls back to DefaultSparsityThreshold.
func BinSparsity(bins []model.TokenBin, threshold float64) []Message {
	if threshold < 0 {
		threshold = DefaultSparsityThreshold
	}
	res := &Result{}
	for i, bin := range bins {
		if bin.DataPercentage < threshold {
			res.warnf("bins", "bin %d [%.2f, %.2f] holds only %.2f%% of data, consider reducing granularity",
				i+1, bin.Lower, bin.Upper, bin.DataPercentage)
		}
	}
	return res.Warnings
}
