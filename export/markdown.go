package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/uyouii/clinical-tokenizer/binning"
	"github.com/uyouii/clinical-tokenizer/model"
	"github.com/uyouii/clinical-tokenizer/utils"
)

// Markdown writes the clinical documentation of one variable: normal range,
// anchors with their evidence, a per-zone summary, the full bin table and
// the result of re-checking anchor preservation against the bins.
func Markdown(w io.Writer, bins []model.TokenBin, cfg *model.VariableConfig, generatedAt time.Time) error {
	if cfg == nil {
		cfg = &model.VariableConfig{}
	}
	name := orDefault(cfg.Name, binning.DefaultVariableName)
	unit := cfg.Unit

	var b bytes.Buffer
	fmt.Fprintf(&b, "# Clinical Tokenization: %s\n\n", name)
	fmt.Fprintf(&b, "**Generated:** %s  \n", generatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "**Variable:** %s  \n", name)
	fmt.Fprintf(&b, "**Unit:** %s  \n", orDefault(unit, "dimensionless"))
	fmt.Fprintf(&b, "**Clinical Direction:** %s  \n\n", strings.ReplaceAll(orDefault(string(cfg.Direction), "not specified"), "_", " "))

	b.WriteString("## Normal Range\n\n")
	if cfg.NormalRange != nil {
		fmt.Fprintf(&b, "- **Lower Bound:** %s %s\n", exact(cfg.NormalRange.Lower), unit)
		fmt.Fprintf(&b, "- **Upper Bound:** %s %s\n\n", exact(cfg.NormalRange.Upper), unit)
	} else {
		b.WriteString("*Not specified*\n\n")
	}

	b.WriteString("## Clinical Anchors\n\n")
	if len(cfg.Anchors) == 0 {
		b.WriteString("*No clinical anchors defined*\n\n")
	}
	for i, anchor := range cfg.Anchors {
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, orDefault(anchor.Label, exact(anchor.Value)))
		fmt.Fprintf(&b, "- **Threshold Value:** %s %s\n", exact(anchor.Value), unit)
		fmt.Fprintf(&b, "- **Evidence:** %s\n", orDefault(anchor.Evidence, "not cited"))
		if anchor.Rationale != "" {
			fmt.Fprintf(&b, "- **Clinical Rationale:** %s\n", anchor.Rationale)
		}
		if anchor.Severity != "" {
			fmt.Fprintf(&b, "- **Severity:** %s\n", anchor.Severity)
		}
		if anchor.Mortality != "" {
			fmt.Fprintf(&b, "- **Mortality:** %s\n", anchor.Mortality)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Bin Definitions\n\nTotal bins: %d\n\n### By Zone\n\n", len(bins))
	for _, zone := range []model.ZoneCategory{model.CategoryBelow, model.CategoryNormal, model.CategoryAbove} {
		var zoneBins []model.TokenBin
		for _, bin := range bins {
			if bin.Zone == zone {
				zoneBins = append(zoneBins, bin)
			}
		}
		if len(zoneBins) == 0 {
			continue
		}
		fmt.Fprintf(&b, "#### %s%s Zone\n\n", strings.ToUpper(string(zone[:1])), zone[1:])
		fmt.Fprintf(&b, "- **Bin Count:** %d\n", len(zoneBins))
		fmt.Fprintf(&b, "- **Range:** %s - %s %s\n", fixed(zoneBins[0].Lower, 2), fixed(zoneBins[len(zoneBins)-1].Upper, 2), unit)
		fmt.Fprintf(&b, "- **Data Coverage:** %s%%\n\n", fixed(binning.TotalPercentage(zoneBins), 1))
	}

	b.WriteString("### Complete Bin Table\n\n")
	b.WriteString("| Bin ID | Lower | Upper | Data % | Zone | Severity | Notes |\n")
	b.WriteString("|--------|-------|-------|--------|------|----------|-------|\n")
	for _, bin := range bins {
		note := ""
		if isAnchorEdge(bin, cfg.Anchors) {
			note = "anchor boundary"
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s%% | %s | %s | %s |\n",
			bin.ID, fixed(bin.Lower, 2), fixed(bin.Upper, 2), fixed(bin.DataPercentage, 1), bin.Zone, bin.Severity, note)
	}

	b.WriteString("\n## Validation\n\n")
	missing := binning.MissingAnchors(bins, cfg.AnchorValues())
	if len(missing) == 0 {
		fmt.Fprintf(&b, "- **Anchor Preservation:** all %d clinical anchor(s) are exact bin boundaries\n", len(cfg.Anchors))
	} else {
		values := make([]string, len(missing))
		for i, v := range missing {
			values[i] = exact(v)
		}
		fmt.Fprintf(&b, "- **Anchor Preservation:** FAILED, missing %s\n", strings.Join(values, ", "))
	}
	if len(bins) > 0 {
		fmt.Fprintf(&b, "- **Coverage:** %s to %s %s\n", fixed(bins[0].Lower, 2), fixed(bins[len(bins)-1].Upper, 2), unit)
	}
	fmt.Fprintf(&b, "- **Total Data:** %s%%\n", fixed(binning.TotalPercentage(bins), 2))

	_, err := w.Write(b.Bytes())
	return err
}

func isAnchorEdge(bin model.TokenBin, anchors []model.ClinicalAnchor) bool {
	for _, anchor := range anchors {
		if utils.NearlyEqual(anchor.Value, bin.Lower, binning.Tolerance) ||
			utils.NearlyEqual(anchor.Value, bin.Upper, binning.Tolerance) {
			return true
		}
	}
	return false
}
