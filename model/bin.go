package model

// ZoneKind is the semantic class of a zone between two consecutive boundaries.
type ZoneKind string

const (
	ZoneBelow         ZoneKind = "below"
	ZoneNormal        ZoneKind = "normal"
	ZoneAboveMild     ZoneKind = "above_mild"
	ZoneAboveModerate ZoneKind = "above_moderate"
	ZoneAboveSevere   ZoneKind = "above_severe"
)

// Category folds the detailed zone kind into below / normal / above.
func (k ZoneKind) Category() ZoneCategory {
	switch k {
	case ZoneBelow:
		return CategoryBelow
	case ZoneNormal:
		return CategoryNormal
	}
	return CategoryAbove
}

type ZoneCategory string

const (
	CategoryBelow  ZoneCategory = "below"
	CategoryNormal ZoneCategory = "normal"
	CategoryAbove  ZoneCategory = "above"
)

type Zone struct {
	Lower    float64
	Upper    float64
	Kind     ZoneKind
	BinCount int
}

type TokenBin struct {
	ID             string       `json:"id" yaml:"id"`
	Lower          float64      `json:"lower" yaml:"lower"`
	Upper          float64      `json:"upper" yaml:"upper"`
	DataPercentage float64      `json:"data_percentage" yaml:"data_percentage"`
	Severity       Severity     `json:"severity" yaml:"severity"`
	Zone           ZoneCategory `json:"zone" yaml:"zone"`
	ClinicalNote   string       `json:"clinical_note,omitempty" yaml:"clinical_note,omitempty"`
}

// Contains reports whether v falls inside the bin, treating the upper edge as
// inclusive only when closed is set.
func (b *TokenBin) Contains(v float64, closed bool) bool {
	if closed {
		return v >= b.Lower && v <= b.Upper
	}
	return v >= b.Lower && v < b.Upper
}
