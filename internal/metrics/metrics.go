// Package metrics provides Prometheus metrics for package builds.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ukaji3/xlpack-go/pkg/xlpack"
)

// Metrics holds all Prometheus metrics for xlpack. It implements
// xlpack.Observer.
type Metrics struct {
	// Build metrics
	BuildsSucceeded *prometheus.CounterVec
	BuildsFailed    *prometheus.CounterVec
	BuildDuration   *prometheus.HistogramVec
	PackageBytes    *prometheus.HistogramVec

	// Assembly timing
	StepDuration  *prometheus.HistogramVec
	SheetDuration prometheus.Histogram

	// Error metrics
	StorageErrors prometheus.Counter
	CatalogErrors prometheus.Counter

	InFlightBuilds prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registers the collectors with reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry, namespace string) *Metrics {
	if namespace == "" {
		namespace = "xlpack"
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		BuildsSucceeded: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "builds_succeeded_total",
				Help:      "Total number of packages built",
			},
			[]string{"compression"},
		),
		BuildsFailed: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "builds_failed_total",
				Help:      "Total number of failed builds by error kind",
			},
			[]string{"kind"},
		),
		BuildDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "build_duration_seconds",
				Help:      "Time to resolve, assemble and publish a package",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
			},
			[]string{"compression"},
		),
		PackageBytes: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "package_bytes",
				Help:      "Size of assembled packages",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 10), // 1KB to ~256MB
			},
			[]string{"compression"},
		),
		StepDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "assembly_step_duration_seconds",
				Help:      "Time spent in each assembly step",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 100us to ~800ms
			},
			[]string{"step"},
		),
		SheetDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sheet_duration_seconds",
				Help:      "Time to render and stage one worksheet",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
			},
		),
		StorageErrors: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_errors_total",
				Help:      "Total number of failed publishes",
			},
		),
		CatalogErrors: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_errors_total",
				Help:      "Total number of failed catalog writes",
			},
		),
		InFlightBuilds: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "in_flight_builds",
				Help:      "Number of builds currently running",
			},
		),
		gatherer: reg,
	}
}

// StepDone implements xlpack.Observer.
func (m *Metrics) StepDone(step string, d time.Duration) {
	m.StepDuration.WithLabelValues(step).Observe(d.Seconds())
}

// SheetDone implements xlpack.Observer.
func (m *Metrics) SheetDone(_ int, d time.Duration) {
	m.SheetDuration.Observe(d.Seconds())
}

// RecordBuild records a successful build.
func (m *Metrics) RecordBuild(compression string, d time.Duration, size int) {
	m.BuildsSucceeded.WithLabelValues(compression).Inc()
	m.BuildDuration.WithLabelValues(compression).Observe(d.Seconds())
	m.PackageBytes.WithLabelValues(compression).Observe(float64(size))
}

// RecordFailure records a failed build under kind.
func (m *Metrics) RecordFailure(kind string) {
	m.BuildsFailed.WithLabelValues(kind).Inc()
}

// Handler returns the HTTP handler serving this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

var _ xlpack.Observer = (*Metrics)(nil)
