package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/uyouii/clinical-tokenizer/common"
	"github.com/uyouii/clinical-tokenizer/model"
)

// Python writes a standalone tokenizer module. Each bin becomes one
// half-open clause; the last clause is closed so the maximum maps to the top
// bin. Values outside the bins raise ValueError.
func Python(w io.Writer, bins []model.TokenBin, cfg *model.VariableConfig, generatedAt time.Time) error {
	if len(bins) == 0 {
		return fmt.Errorf("generate python: %w", common.ErrorNoBins)
	}
	if cfg == nil {
		cfg = &model.VariableConfig{}
	}

	name := pyString(orDefault(cfg.Name, "variable"))
	unit := pyString(cfg.Unit)
	fn := "tokenize_" + Identifier(cfg.Name)
	first, last := bins[0], bins[len(bins)-1]

	var b bytes.Buffer
	fmt.Fprintf(&b, `"""
Generated tokenization function
Variable: %s
Unit: %s
Clinical Direction: %s
Generated: %s

Converts continuous %s values into bin tokens. Clinical anchors are exact
bin boundaries.
"""

import math


def %s(value):
    """Tokenize one %s measurement in %s. Returns the bin token id."""
    if value is None or (isinstance(value, float) and math.isnan(value)):
        return "missing"
`, name, orDefault(unit, "dimensionless"), pyString(orDefault(string(cfg.Direction), "not specified")),
		generatedAt.UTC().Format(time.RFC3339), name, fn, name, orDefault(unit, "units"))

	for i, bin := range bins {
		op := "<"
		if i == len(bins)-1 {
			op = "<="
		}
		fmt.Fprintf(&b, "    if %s <= value %s %s:\n        return \"%s\"  # %s - %s %s (%s)\n",
			exact(bin.Lower), op, exact(bin.Upper), pyString(bin.ID),
			fixed(bin.Lower, 2), fixed(bin.Upper, 2), unit, pyString(string(bin.Severity)))
	}

	fmt.Fprintf(&b, `    raise ValueError(f"Value {value} outside bin range [%s, %s]")


def %s_batch(values):
    """Tokenize an iterable of %s measurements."""
    return [%s(v) for v in values]


BIN_DEFINITIONS = {
`, exact(first.Lower), exact(last.Upper), fn, name, fn)

	for i, bin := range bins {
		sep := ","
		if i == len(bins)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, `    "%s": {
        "lower": %s,
        "upper": %s,
        "zone": "%s",
        "severity": "%s",
        "data_percentage": %s,
    }%s
`, pyString(bin.ID), exact(bin.Lower), exact(bin.Upper), pyString(string(bin.Zone)),
			pyString(string(bin.Severity)), fixed(bin.DataPercentage, 2), sep)
	}
	b.WriteString("}\n")

	samples := []string{}
	for i := 0; i < len(bins) && i < 3; i++ {
		samples = append(samples, exact((bins[i].Lower+bins[i].Upper)/2))
	}
	fmt.Fprintf(&b, `

if __name__ == "__main__":
    for val in [%s]:
        print(f"%s = {val} %s -> {%s(val)}")
`, strings.Join(samples, ", "), fString(name), fString(unit), fn)

	_, err := w.Write(b.Bytes())
	return err
}
