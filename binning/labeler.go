package binning

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/uyouii/clinical-tokenizer/model"
	"github.com/uyouii/clinical-tokenizer/utils"
)

// severityTable maps zone kind x direction to the bin severity. Only the
// "worse" side escalates: above_mild under lower_is_worse stays normal.
// An unspecified direction is not treated as either extreme being worse.
var severityTable = map[model.ZoneKind]map[model.Direction]model.Severity{
	model.ZoneNormal: {
		model.HigherIsWorse:        model.SeverityNormal,
		model.LowerIsWorse:         model.SeverityNormal,
		model.Bidirectional:        model.SeverityNormal,
		model.DirectionUnspecified: model.SeverityNormal,
	},
	model.ZoneBelow: {
		model.HigherIsWorse:        model.SeverityMild,
		model.LowerIsWorse:         model.SeverityModerate,
		model.Bidirectional:        model.SeverityModerate,
		model.DirectionUnspecified: model.SeverityMild,
	},
	model.ZoneAboveMild: {
		model.HigherIsWorse:        model.SeverityMild,
		model.LowerIsWorse:         model.SeverityNormal,
		model.Bidirectional:        model.SeverityMild,
		model.DirectionUnspecified: model.SeverityNormal,
	},
	model.ZoneAboveModerate: {
		model.HigherIsWorse:        model.SeverityModerate,
		model.LowerIsWorse:         model.SeverityMild,
		model.Bidirectional:        model.SeverityModerate,
		model.DirectionUnspecified: model.SeverityMild,
	},
	model.ZoneAboveSevere: {
		model.HigherIsWorse:        model.SeveritySevere,
		model.LowerIsWorse:         model.SeverityModerate,
		model.Bidirectional:        model.SeveritySevere,
		model.DirectionUnspecified: model.SeverityModerate,
	},
}

// SeverityFor returns the severity of bins in a zone of the given kind.
func SeverityFor(kind model.ZoneKind, direction model.Direction) model.Severity {
	if byDirection, ok := severityTable[kind]; ok {
		if severity, ok := byDirection[direction]; ok {
			return severity
		}
	}
	return model.SeverityNormal
}

var nonIdentifier = regexp.MustCompile(`[^a-z0-9_]+`)

// SanitizeName lowercases a variable name and replaces everything that is
// not a letter, digit or underscore.
func SanitizeName(name string) string {
	res := nonIdentifier.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	res = strings.Trim(res, "_")
	if res == "" {
		return DefaultVariableName
	}
	return res
}

// formatEdge renders a boundary for use inside an identifier: 2.5 -> 2p5,
// -1.25 -> m1p25. Values are rounded to four decimals.
func formatEdge(v float64) string {
	s := strconv.FormatFloat(utils.FormatFloat(v, 4), 'f', -1, 64)
	s = strings.ReplaceAll(s, "-", "m")
	return strings.ReplaceAll(s, ".", "p")
}

func binID(name string, kind model.ZoneKind, lower, upper float64) string {
	return fmt.Sprintf("%s_%s_%s_to_%s", name, kind, formatEdge(lower), formatEdge(upper))
}

// labeler assigns identifiers, keeping them unique within one variable.
type labeler struct {
	name      string
	direction model.Direction
	seen      map[string]int
}

func newLabeler(cfg *model.VariableConfig) *labeler {
	name := DefaultVariableName
	direction := model.DirectionUnspecified
	if cfg != nil {
		name = SanitizeName(cfg.Name)
		direction = cfg.Direction
	}
	return &labeler{name: name, direction: direction, seen: map[string]int{}}
}

func (l *labeler) label(zone model.Zone, sub SubBin) model.TokenBin {
	id := binID(l.name, zone.Kind, sub.Lower, sub.Upper)
	if n, ok := l.seen[id]; ok {
		l.seen[id] = n + 1
		id = fmt.Sprintf("%s_%d", id, n+1)
	} else {
		l.seen[id] = 1
	}

	return model.TokenBin{
		ID:             id,
		Lower:          sub.Lower,
		Upper:          sub.Upper,
		DataPercentage: utils.FormatFloat(sub.DataPercentage, percentageDecimals),
		Severity:       SeverityFor(zone.Kind, l.direction),
		Zone:           zone.Kind.Category(),
	}
}
