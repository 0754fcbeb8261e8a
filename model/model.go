package model

import (
	"fmt"
	"strings"
)

// Direction is the clinical convention for which extreme of a variable is worse.
type Direction string

const (
	DirectionUnspecified Direction = ""
	HigherIsWorse        Direction = "higher_is_worse"
	LowerIsWorse         Direction = "lower_is_worse"
	Bidirectional        Direction = "bidirectional"
)

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DirectionUnspecified, nil
	case "higher_is_worse", "higher_worse":
		return HigherIsWorse, nil
	case "lower_is_worse", "lower_worse":
		return LowerIsWorse, nil
	case "bidirectional":
		return Bidirectional, nil
	}
	return DirectionUnspecified, fmt.Errorf("unknown direction %q", s)
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Severity is the label attached to every produced bin.
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityCritical Severity = "critical"
)

// SeverityGrade is the optional grade a clinician attaches to an anchor.
type SeverityGrade string

const (
	GradeMild     SeverityGrade = "mild"
	GradeModerate SeverityGrade = "moderate"
	GradeSevere   SeverityGrade = "severe"
	GradeCritical SeverityGrade = "critical"
	GradeExtreme  SeverityGrade = "extreme"
)

type ECDFPoint struct {
	Value                 float64 `json:"value" yaml:"value"`
	CumulativeProbability float64 `json:"cumulative_probability" yaml:"cumulative_probability"`
}

// Distribution is an empirical CDF sample, non-decreasing in both fields.
type Distribution []ECDFPoint

func (d Distribution) Values() []float64 {
	res := make([]float64, len(d))
	for i, p := range d {
		res[i] = p.Value
	}
	return res
}

func (d Distribution) IsEmpty() bool {
	return len(d) == 0
}

type DataRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

func (r DataRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r DataRange) Span() float64 {
	return r.Max - r.Min
}

type NormalRange struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

func (r *NormalRange) Valid() bool {
	return r != nil && r.Lower < r.Upper
}

type Clip struct {
	Lower float64
	Upper float64
}

type QuantileValue struct {
	Value    float64 `json:"v,omitempty"`
	Quantile float64 `json:"q,omitempty"`
}
