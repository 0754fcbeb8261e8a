package ecdf

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/uyouii/clinical-tokenizer/common"
	"github.com/uyouii/clinical-tokenizer/model"
	"github.com/uyouii/clinical-tokenizer/utils"
	"go.uber.org/zap"
)

// Read parses "value,cumulative_probability" rows. A non-numeric first row is
// treated as a header. Points are returned in file order; checking them is
// left to the validation package.
func Read(ctx context.Context, r io.Reader) (model.Distribution, error) {
	logger := utils.GetLogger(ctx)

	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	dist := model.Distribution{}
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("row %d: expected value and cumulative probability: %w", i+1, common.ErrorInvalidValue)
		}
		value, valueErr := parseFloat(row[0])
		prob, probErr := parseFloat(row[1])
		if valueErr != nil || probErr != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("row %d: %w", i+1, errors.Join(valueErr, probErr))
		}
		dist = append(dist, model.ECDFPoint{Value: value, CumulativeProbability: prob})
	}

	if dist.IsEmpty() {
		return nil, common.ErrorEmptyDistribution
	}
	logger.Info("read ecdf", zap.Int("points", len(dist)))
	return dist, nil
}

// ReadValues parses raw measurements from the first column of r.
func ReadValues(ctx context.Context, r io.Reader) ([]float64, error) {
	logger := utils.GetLogger(ctx)

	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	values := []float64{}
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		v, err := parseFloat(row[0])
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		values = append(values, v)
	}
	logger.Info("read raw values", zap.Int("count", len(values)))
	return values, nil
}

func readRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, common.ErrorInvalidValue)
	}
	return v, nil
}
