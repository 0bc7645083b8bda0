package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/storebind/pkg/bind"
	"github.com/vango-dev/storebind/pkg/selector"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "storebind").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for pass duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "storebind",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a bind.Observer recording Prometheus metrics. It is safe for
// concurrent use.
type Metrics struct {
	passesTotal      *prometheus.CounterVec
	passDuration     prometheus.Histogram
	updatesTotal     *prometheus.CounterVec
	derivationErrors *prometheus.CounterVec
	mountedNodes     *prometheus.GaugeVec
}

var _ bind.Observer = (*Metrics)(nil)

// Prometheus registers the metrics with the configured registry and returns
// the observer. Registering twice with the same registry panics, as with any
// promauto metric.
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		passesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "passes_total",
			Help:        "Total number of notify passes",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		passDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pass_duration_seconds",
			Help:        "Notify pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		updatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "updates_total",
			Help:        "Total number of node recomputes by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"node", "outcome"}),

		derivationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "derivation_errors_total",
			Help:        "Total number of failed recomputes by stage",
			ConstLabels: config.ConstLabels,
		}, []string{"node", "stage"}),

		mountedNodes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mounted_nodes",
			Help:        "Number of mounted nodes",
			ConstLabels: config.ConstLabels,
		}, []string{"node"}),
	}
}

// ObservePass times the pass and counts it by status.
func (m *Metrics) ObservePass(ctx context.Context, next func(context.Context) error) error {
	start := time.Now()
	err := next(ctx)
	m.passDuration.Observe(time.Since(start).Seconds())

	status := "success"
	if err != nil {
		status = "error"
	}
	m.passesTotal.WithLabelValues(status).Inc()
	return err
}

// ObserveUpdate counts the recompute by outcome.
func (m *Metrics) ObserveUpdate(_ context.Context, u bind.Update) {
	outcome := "unchanged"
	switch {
	case u.Err != nil:
		outcome = "error"
		m.derivationErrors.WithLabelValues(u.Node, stageOf(u.Err)).Inc()
	case u.Changed:
		outcome = "changed"
	}
	m.updatesTotal.WithLabelValues(u.Node, outcome).Inc()
}

// ObserveMount tracks mounted nodes.
func (m *Metrics) ObserveMount(_ uint64, node string, mounted bool) {
	if mounted {
		m.mountedNodes.WithLabelValues(node).Inc()
		return
	}
	m.mountedNodes.WithLabelValues(node).Dec()
}

// stageOf keeps the stage label to a fixed set of values.
func stageOf(err error) string {
	var derr *selector.DerivationResultError
	if errors.As(err, &derr) {
		return string(derr.Stage)
	}
	return "unknown"
}
