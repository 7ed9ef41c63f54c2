package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aleph-Alpha/flowtrace/v1/observability"
)

// MetricsCollector provides an interface for collecting and exposing
// instrumentation metrics. It abstracts Prometheus metric operations with
// support for counters, histograms, and gauges.
//
// This interface is implemented by the concrete *Metrics type, which is also
// an observability.Observer and can be handed to the interceptor directly.
type MetricsCollector interface {
	observability.Observer

	// IncrementSpansStarted counts a started span of the given kind.
	IncrementSpansStarted(kind string)

	// RecordSpanEnded counts an ended span and records the call duration per target.
	RecordSpanEnded(kind, status, target string, duration time.Duration)

	// IncrementStackViolations counts a span stack discipline violation.
	IncrementStackViolations(target string)

	// PathOpened and PathClosed track live execution paths.
	PathOpened()
	PathClosed()

	// CreateCounter creates a new CounterVec metric and registers it.
	CreateCounter(name, help string, labels []string) *prometheus.CounterVec

	// CreateHistogram creates a new HistogramVec metric and registers it.
	CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec

	// CreateGauge creates a new GaugeVec metric and registers it.
	CreateGauge(name, help string, labels []string) *prometheus.GaugeVec
}
