package model

// ClinicalAnchor is an evidence-based threshold that must become an exact bin edge.
type ClinicalAnchor struct {
	Value     float64       `json:"value" yaml:"value"`
	Label     string        `json:"label" yaml:"label"`
	Evidence  string        `json:"evidence" yaml:"evidence"`
	Rationale string        `json:"rationale,omitempty" yaml:"rationale,omitempty"`
	Severity  SeverityGrade `json:"severity,omitempty" yaml:"severity,omitempty"`
	Mortality string        `json:"mortality,omitempty" yaml:"mortality,omitempty"`
}

// ZoneSpec overrides the bin count of the zone whose bounds it matches.
type ZoneSpec struct {
	Kind  ZoneKind `json:"type,omitempty" yaml:"type,omitempty"`
	Lower float64  `json:"lower" yaml:"lower"`
	Upper float64  `json:"upper" yaml:"upper"`
	Bins  int      `json:"bins" yaml:"bins"`
}

type VariableConfig struct {
	Name        string           `json:"name,omitempty" yaml:"name,omitempty"`
	Unit        string           `json:"unit,omitempty" yaml:"unit,omitempty"`
	Domain      string           `json:"domain,omitempty" yaml:"domain,omitempty"`
	Direction   Direction        `json:"direction,omitempty" yaml:"direction,omitempty"`
	NormalRange *NormalRange     `json:"normal_range,omitempty" yaml:"normal_range,omitempty"`
	Anchors     []ClinicalAnchor `json:"anchors,omitempty" yaml:"anchors,omitempty"`
	ZoneSpecs   []ZoneSpec       `json:"zone_configs,omitempty" yaml:"zone_configs,omitempty"`
}

func (c *VariableConfig) AnchorValues() []float64 {
	if c == nil {
		return nil
	}
	res := make([]float64, 0, len(c.Anchors))
	for _, anchor := range c.Anchors {
		res = append(res, anchor.Value)
	}
	return res
}
