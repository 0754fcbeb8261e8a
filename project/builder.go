package project

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sourcegraph/conc/pool"
	"github.com/uyouii/clinical-tokenizer/binning"
	"github.com/uyouii/clinical-tokenizer/common"
	"github.com/uyouii/clinical-tokenizer/metrics"
	"github.com/uyouii/clinical-tokenizer/model"
	"github.com/uyouii/clinical-tokenizer/utils"
	"github.com/uyouii/clinical-tokenizer/validation"
	"go.uber.org/zap"
)

const (
	defaultCacheTTL = 10 * time.Minute
	cacheKeyPrefix  = "cliftok:v1:"
)

type Option func(*Builder)

func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithCacheTTL sets how long generated bin sets are memoized. Zero disables
// the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(b *Builder) {
		b.cacheTTL = ttl
	}
}

func WithMetrics(m *metrics.Manager) Option {
	return func(b *Builder) {
		b.metrics = m
	}
}

func WithSparsityThreshold(threshold float64) Option {
	return func(b *Builder) {
		if threshold >= 0 {
			b.sparsityThreshold = threshold
		}
	}
}

// Builder bins the variables of a project concurrently. It is safe to reuse
// across projects; identical inputs are served from its memo cache.
type Builder struct {
	workers           int
	cacheTTL          time.Duration
	sparsityThreshold float64
	metrics           *metrics.Manager
	cache             *gocache.Cache
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		workers:           runtime.NumCPU(),
		cacheTTL:          defaultCacheTTL,
		sparsityThreshold: validation.DefaultSparsityThreshold,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.cacheTTL > 0 {
		b.cache = gocache.New(b.cacheTTL, 2*b.cacheTTL)
	}
	return b
}

// Build generates bins for every variable that has data. Variables without
// data are skipped; failures of single variables do not stop the others and
// are returned combined.
func (b *Builder) Build(ctx context.Context, p *Project) error {
	logger := utils.GetLogger(ctx)

	tasks := pool.New().WithMaxGoroutines(b.workers).WithErrors().WithContext(ctx)
	for _, v := range p.Variables {
		if !v.HasData() {
			logger.Debug("skip variable without data", zap.String("variable", v.ID))
			continue
		}
		v := v
		tasks.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := b.buildVariable(ctx, v); err != nil {
				return fmt.Errorf("%s: %w", v.ID, err)
			}
			return nil
		})
	}
	err := tasks.Wait()
	p.touch()

	meta := p.Metadata()
	logger.Info("project built",
		zap.String("project", p.ID),
		zap.Int("variables", meta.TotalVariables),
		zap.Int("binned", meta.Binned),
		zap.Error(err))
	return err
}

func (b *Builder) buildVariable(ctx context.Context, v *Variable) (err error) {
	logger := utils.GetLogger(ctx).With(zap.String("variable", v.ID))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("buildVariable recover panic error!", zap.Any("err", r),
				zap.String("panic info", utils.GetPanicInfo()))
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if v.Status == StatusNeedsConfiguration {
		b.metrics.RecordConfigError()
		return ErrNeedsConfiguration
	}
	if v.DataRange == nil {
		return ErrNoData
	}

	cfg := v.Config
	if v.definition != nil {
		resolved, err := v.definition.VariableConfig(v.DataRange)
		if err != nil {
			b.metrics.RecordConfigError()
			return err
		}
		cfg = resolved
		v.Config = resolved
	}

	key, err := cacheKey(cfg, v.Distribution, *v.DataRange)
	if err != nil {
		return err
	}
	if b.cache != nil {
		if cached, ok := b.cache.Get(key); ok {
			v.Bins = slices.Clone(cached.([]model.TokenBin))
			v.Warnings = validation.BinSparsity(v.Bins, b.sparsityThreshold)
			b.metrics.RecordCacheHit()
			logger.Debug("bins served from cache")
			return nil
		}
	}

	start := time.Now()
	bins, err := binning.GenerateBins(cfg, v.Distribution, *v.DataRange)
	if err != nil {
		if errors.Is(err, common.ErrorInvalidBinCount) || errors.Is(err, common.ErrorInvalidNormalRange) {
			b.metrics.RecordConfigError()
		}
		logger.Warn("generate bins failed", zap.Error(err))
		return err
	}
	elapsed := time.Since(start)

	if missing := binning.MissingAnchors(bins, cfg.AnchorValues()); len(missing) > 0 {
		b.metrics.RecordAnchorFailure(v.ID)
		logger.Error("anchors not preserved", zap.Float64s("missing", missing))
		return fmt.Errorf("missing %v: %w", missing, common.ErrorAnchorNotPreserved)
	}

	v.Bins = bins
	v.Warnings = validation.BinSparsity(bins, b.sparsityThreshold)
	b.metrics.RecordBinned(v.Domain, len(bins), elapsed)
	if b.cache != nil {
		b.cache.Set(key, slices.Clone(bins), gocache.DefaultExpiration)
	}

	logger.Info("variable binned",
		zap.Int("bins", len(bins)),
		zap.Int("sparse_bins", len(v.Warnings)),
		zap.Duration("elapsed", elapsed))
	return nil
}

// cacheKey digests every input of bin generation.
func cacheKey(cfg *model.VariableConfig, dist model.Distribution, dataRange model.DataRange) (string, error) {
	data, err := json.Marshal(struct {
		Config       *model.VariableConfig `json:"config"`
		Distribution model.Distribution    `json:"distribution"`
		DataRange    model.DataRange       `json:"data_range"`
	}{cfg, dist, dataRange})
	if err != nil {
		return "", fmt.Errorf("digest inputs: %w", err)
	}
	hash := sha256.Sum256(data)
	return cacheKeyPrefix + hex.EncodeToString(hash[:]), nil
}
