package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/uyouii/clinical-tokenizer/model"
)

// Table is the bin set of one variable inside a multi-variable bundle.
type Table struct {
	Name   string
	Domain string
	Unit   string
	Bins   []model.TokenBin
}

var combinedHeader = []string{
	"variable",
	"domain",
	"bin_id",
	"lower_bound",
	"upper_bound",
	"data_percentage",
	"zone",
	"severity",
	"unit",
}

// CombinedCSV writes the bins of every table into one CSV.
func CombinedCSV(w io.Writer, tables []Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(combinedHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, table := range tables {
		for _, bin := range table.Bins {
			row := []string{
				table.Name,
				table.Domain,
				bin.ID,
				fixed(bin.Lower, 4),
				fixed(bin.Upper, 4),
				fixed(bin.DataPercentage, 2),
				string(bin.Zone),
				string(bin.Severity),
				table.Unit,
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("write csv row %s: %w", bin.ID, err)
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// PythonTables writes a single tokenizer module holding the bin tables of
// every variable, looked up by variable name.
func PythonTables(w io.Writer, title string, tables []Table, generatedAt time.Time) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, `"""
Generated tokenizers
Project: %s
Generated: %s
"""

import math

BINS = {
`, pyString(title), generatedAt.UTC().Format(time.RFC3339))

	for _, table := range tables {
		fmt.Fprintf(&b, "    \"%s\": [\n", pyString(table.Name))
		for _, bin := range table.Bins {
			fmt.Fprintf(&b, "        (\"%s\", %s, %s),\n", pyString(bin.ID), exact(bin.Lower), exact(bin.Upper))
		}
		b.WriteString("    ],\n")
	}

	b.WriteString(`}


def tokenize(variable, value):
    """Tokenize one measurement of a variable. Returns the bin token id."""
    if value is None or (isinstance(value, float) and math.isnan(value)):
        return "missing"
    bins = BINS[variable]
    for i, (token, lower, upper) in enumerate(bins):
        if lower <= value < upper or (i == len(bins) - 1 and value == upper):
            return token
    raise ValueError(f"Value {value} outside bin range of {variable}")


def tokenize_row(row):
    """Tokenize every known variable of a dict-like row."""
    return {k: tokenize(k, v) for k, v in row.items() if k in BINS}
`)

	_, err := w.Write(b.Bytes())
	return err
}
