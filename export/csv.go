package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/uyouii/clinical-tokenizer/model"
)

var csvHeader = []string{
	"bin_id",
	"lower_bound",
	"upper_bound",
	"data_percentage",
	"zone",
	"severity",
	"variable",
	"unit",
}

// CSV writes one row per bin. Bounds carry 4 decimals and percentages 2.
func CSV(w io.Writer, bins []model.TokenBin, cfg *model.VariableConfig) error {
	var name, unit string
	if cfg != nil {
		name, unit = cfg.Name, cfg.Unit
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, bin := range bins {
		row := []string{
			bin.ID,
			fixed(bin.Lower, 4),
			fixed(bin.Upper, 4),
			fixed(bin.DataPercentage, 2),
			string(bin.Zone),
			string(bin.Severity),
			name,
			unit,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", bin.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
