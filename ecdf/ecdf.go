package ecdf

import (
	"context"
	"math"
	"sort"

	"github.com/uyouii/clinical-tokenizer/common"
	"github.com/uyouii/clinical-tokenizer/model"
	"github.com/uyouii/clinical-tokenizer/utils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Options struct {
	// ClipZScore drops outliers beyond mean ± ClipZScore·stddev. 0 disables clipping.
	ClipZScore float64

	// MaxPoints caps the number of ECDF points by resampling at evenly spaced
	// probabilities. 0 keeps every observation.
	MaxPoints int
}

func DefaultOptions() Options {
	return Options{
		ClipZScore: 0,
		MaxPoints:  DefaultMaxPoints,
	}
}

// FromValues builds an empirical CDF sample from raw measurements.
// NaN and infinite values are ignored.
func FromValues(ctx context.Context, values []float64, opts Options) (model.Distribution, error) {
	logger := utils.GetLogger(ctx)

	endog := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		endog = append(endog, v)
	}
	if len(endog) == 0 {
		return nil, common.ErrorEmptyDistribution
	}

	if opts.ClipZScore > 0 && len(endog) > 1 {
		clip := ZScoreClip(endog, opts.ClipZScore)
		before := len(endog)
		endog = Clip(endog, clip)
		logger.Debug("clip outliers", zap.Float64("lower", clip.Lower), zap.Float64("upper", clip.Upper),
			zap.Int("dropped", before-len(endog)))
		if len(endog) == 0 {
			return nil, common.ErrorEmptyDistribution
		}
	}

	sort.Float64s(endog)

	n := len(endog)
	if opts.MaxPoints > 1 && n > opts.MaxPoints {
		logger.Info("resample ecdf", zap.Int("points", n), zap.Int("max_points", opts.MaxPoints))
		return resample(endog, opts.MaxPoints), nil
	}

	dist := make(model.Distribution, n)
	for i, v := range endog {
		dist[i] = model.ECDFPoint{
			Value:                 v,
			CumulativeProbability: float64(i+1) / float64(n),
		}
	}
	return dist, nil
}

// resample picks size points at evenly spaced cumulative probabilities of the
// sorted values. The minimum and maximum are always kept.
func resample(sorted []float64, size int) model.Distribution {
	dist := make(model.Distribution, 0, size)
	for _, p := range linspace(0, 1, size) {
		dist = append(dist, model.ECDFPoint{
			Value:                 stat.Quantile(p, stat.Empirical, sorted, nil),
			CumulativeProbability: p,
		})
	}
	return dist
}

// DataRangeOf returns the observed minimum and maximum.
func DataRangeOf(dist model.Distribution) (model.DataRange, error) {
	if dist.IsEmpty() {
		return model.DataRange{}, common.ErrorEmptyDistribution
	}
	values := dist.Values()
	return model.DataRange{Min: floats.Min(values), Max: floats.Max(values)}, nil
}

// Quantile returns the value at cumulative probability p of the sample by
// linear interpolation between neighbouring ECDF points.
func Quantile(dist model.Distribution, p float64) (*model.QuantileValue, error) {
	if dist.IsEmpty() {
		return nil, common.ErrorEmptyDistribution
	}
	if p < 0 || p > 1 {
		return nil, common.ErrorInvalidValue
	}

	if p <= dist[0].CumulativeProbability {
		return &model.QuantileValue{Quantile: p, Value: dist[0].Value}, nil
	}
	last := dist[len(dist)-1]
	if p >= last.CumulativeProbability {
		return &model.QuantileValue{Quantile: p, Value: last.Value}, nil
	}

	for i := 1; i < len(dist); i++ {
		if dist[i].CumulativeProbability > p {
			lowerX, lowerP := dist[i-1].Value, dist[i-1].CumulativeProbability
			upperX, upperP := dist[i].Value, dist[i].CumulativeProbability
			value := lowerX + (upperX-lowerX)*(p-lowerP)/(upperP-lowerP)
			return &model.QuantileValue{Quantile: p, Value: value}, nil
		}
	}
	return &model.QuantileValue{Quantile: p, Value: last.Value}, nil
}
