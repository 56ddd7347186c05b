// Package metrics provides Prometheus instrumentation for the validation
// engine: per-analyzer validation counters and durations, finding counters,
// compatibility score distribution, and probe timing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"promptforge/callisto/pkg/config"
)

// Collector owns every Prometheus metric the engine records. A nil
// Collector is valid and records nothing, so callers never need to guard
// their instrumentation sites.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	validations        *prometheus.CounterVec
	validationDuration *prometheus.HistogramVec
	findings           *prometheus.CounterVec
	internalFailures   *prometheus.CounterVec
	compatibilityScore *prometheus.HistogramVec
	probeDuration      *prometheus.HistogramVec
	comparisonDuration prometheus.Histogram
}

// NewCollector creates a metrics collector and registers its metrics with
// the given Prometheus registry. If registry is nil a new one is created.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "validations_total",
			Help:      "Total validation passes by analyzer and outcome.",
		}, []string{"analyzer", "outcome"}),

		validationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "validation_duration_seconds",
			Help:      "Duration of validation passes by analyzer.",
			// Validation is pure computation; buckets cover µs to ms.
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"analyzer"}),

		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "findings_total",
			Help:      "Total findings by kind.",
		}, []string{"kind"}),

		internalFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "internal_failures_total",
			Help:      "Analyzer panics contained at the engine boundary.",
		}, []string{"analyzer"}),

		compatibilityScore: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "compatibility_score",
			Help:      "Compatibility scores computed per provider.",
			Buckets:   []float64{10, 25, 50, 70, 80, 90, 95, 100},
		}, []string{"provider"}),

		probeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "probe_duration_seconds",
			Help:      "Duration of provider probes by provider and outcome.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"provider", "outcome"}),

		comparisonDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "comparison_duration_seconds",
			Help:      "Duration of provider comparison runs.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
	}

	registry.MustRegister(
		c.validations,
		c.validationDuration,
		c.findings,
		c.internalFailures,
		c.compatibilityScore,
		c.probeDuration,
		c.comparisonDuration,
	)

	return c
}

// Registry returns the Prometheus registry the collector registered with.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Snapshot returns the current total for every metric family in the
// collector's registry, keyed by fully qualified name. Counters report
// their value summed across label sets; histograms report their total
// sample count. A nil Collector returns nil.
func (c *Collector) Snapshot() map[string]float64 {
	if c == nil {
		return nil
	}

	families, err := c.registry.Gather()
	if err != nil {
		return nil
	}

	totals := make(map[string]float64, len(families))
	for _, family := range families {
		var total float64
		for _, metric := range family.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				total += metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				total += float64(metric.GetHistogram().GetSampleCount())
			case metric.GetGauge() != nil:
				total += metric.GetGauge().GetValue()
			}
		}
		totals[family.GetName()] = total
	}

	return totals
}

// RecordValidation records one analyzer pass.
func (c *Collector) RecordValidation(analyzer string, valid bool, duration time.Duration) {
	if c == nil || !c.config.Enabled {
		return
	}
	outcome := "valid"
	if !valid {
		outcome = "invalid"
	}
	c.validations.WithLabelValues(analyzer, outcome).Inc()
	c.validationDuration.WithLabelValues(analyzer).Observe(duration.Seconds())
}

// RecordFinding counts one finding by kind.
func (c *Collector) RecordFinding(kind string) {
	if c == nil || !c.config.Enabled {
		return
	}
	c.findings.WithLabelValues(kind).Inc()
}

// RecordInternalFailure counts a contained analyzer panic.
func (c *Collector) RecordInternalFailure(analyzer string) {
	if c == nil || !c.config.Enabled {
		return
	}
	c.internalFailures.WithLabelValues(analyzer).Inc()
}

// RecordScore records a computed compatibility score.
func (c *Collector) RecordScore(provider string, score int) {
	if c == nil || !c.config.Enabled {
		return
	}
	c.compatibilityScore.WithLabelValues(provider).Observe(float64(score))
}

// RecordProbe records one provider probe.
func (c *Collector) RecordProbe(provider string, success bool, duration time.Duration) {
	if c == nil || !c.config.Enabled {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	c.probeDuration.WithLabelValues(provider, outcome).Observe(duration.Seconds())
}

// RecordComparison records one provider comparison run.
func (c *Collector) RecordComparison(duration time.Duration) {
	if c == nil || !c.config.Enabled {
		return
	}
	c.comparisonDuration.Observe(duration.Seconds())
}
