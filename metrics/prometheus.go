// Package metrics provides Prometheus metrics for bin generation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultNamespace = "cliftok"
	defaultSubsystem = "binning"
)

// Manager owns the counters and histograms of one registry. A nil *Manager is
// valid and records nothing.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64

	variablesBinned  *prometheus.CounterVec
	binsProduced     prometheus.Counter
	anchorFailures   *prometheus.CounterVec
	configErrors     prometheus.Counter
	cacheHits        prometheus.Counter
	generateDuration prometheus.Histogram
}

// New registers the metrics on reg, or on the default registerer when reg is nil.
func New(reg prometheus.Registerer, opts ...Option) *Manager {
	m := &Manager{
		namespace:        defaultNamespace,
		subsystem:        defaultSubsystem,
		histogramBuckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}
	for _, opt := range opts {
		opt(m)
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	auto := promauto.With(reg)
	m.variablesBinned = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "variables_binned_total",
		Help:      "Total number of variables binned, by domain",
	}, []string{"domain"})
	m.binsProduced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "bins_produced_total",
		Help:      "Total number of token bins produced",
	})
	m.anchorFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "anchor_validation_failures_total",
		Help:      "Total number of bin sets missing at least one clinical anchor, by variable",
	}, []string{"variable"})
	m.configErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "config_errors_total",
		Help:      "Total number of variables rejected for configuration errors",
	})
	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Total number of bin sets served from the memo cache",
	})
	m.generateDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "generate_duration_seconds",
		Help:      "Time spent generating the bins of one variable",
		Buckets:   m.histogramBuckets,
	})
	return m
}

// RecordBinned counts one binned variable and the bins it produced.
func (m *Manager) RecordBinned(domain string, bins int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.variablesBinned.WithLabelValues(domain).Inc()
	m.binsProduced.Add(float64(bins))
	m.generateDuration.Observe(elapsed.Seconds())
}

func (m *Manager) RecordAnchorFailure(variable string) {
	if m == nil {
		return
	}
	m.anchorFailures.WithLabelValues(variable).Inc()
}

func (m *Manager) RecordConfigError() {
	if m == nil {
		return
	}
	m.configErrors.Inc()
}

func (m *Manager) RecordCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}
