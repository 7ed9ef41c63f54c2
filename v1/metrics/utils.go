package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aleph-Alpha/flowtrace/v1/interceptor"
	"github.com/Aleph-Alpha/flowtrace/v1/observability"
)

// ObserveOperation maps interceptor notifications onto the span metrics.
// Operations from other components are ignored.
func (m *Metrics) ObserveOperation(op observability.OperationContext) {
	if op.Component != interceptor.Component {
		return
	}

	target := op.Resource + "." + op.SubResource
	switch op.Operation {
	case interceptor.OpSpanStarted:
		m.IncrementSpansStarted(metaString(op.Metadata, interceptor.MetaKind))
	case interceptor.OpSpanEnded:
		m.RecordSpanEnded(
			metaString(op.Metadata, interceptor.MetaKind),
			metaString(op.Metadata, interceptor.MetaStatus),
			target,
			op.Duration,
		)
	case interceptor.OpStackViolation:
		m.IncrementStackViolations(target)
	case interceptor.OpPathOpened:
		m.PathOpened()
	case interceptor.OpPathClosed:
		m.PathClosed()
	}
}

// IncrementSpansStarted counts a started span of the given kind.
func (m *Metrics) IncrementSpansStarted(kind string) {
	m.spansStarted.WithLabelValues(kind).Inc()
}

// RecordSpanEnded counts an ended span and observes its duration.
func (m *Metrics) RecordSpanEnded(kind, status, target string, duration time.Duration) {
	m.spansEnded.WithLabelValues(kind, status).Inc()
	m.spanDuration.WithLabelValues(target).Observe(duration.Seconds())
}

// IncrementStackViolations counts a violation on target.
func (m *Metrics) IncrementStackViolations(target string) {
	m.stackViolations.WithLabelValues(target).Inc()
}

// PathOpened increments the open path gauge.
func (m *Metrics) PathOpened() {
	m.openPaths.Inc()
}

// PathClosed decrements the open path gauge.
func (m *Metrics) PathClosed() {
	m.openPaths.Dec()
}

// CreateCounter creates a new CounterVec metric and registers it.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(counter)
	return counter
}

// CreateHistogram creates a new HistogramVec metric and registers it.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := createHistogramVec(m.namespace, name, help, labels, buckets)
	m.registerer.MustRegister(hist)
	return hist
}

// CreateGauge creates a new GaugeVec metric and registers it.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := createGaugeVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(gauge)
	return gauge
}

func metaString(meta map[string]interface{}, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return "unknown"
}

// createCounterVec defines a new CounterVec with standard options.
func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// createHistogramVec defines a new HistogramVec with configurable buckets.
func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}

// createGaugeVec defines a new GaugeVec.
func createGaugeVec(namespace, name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}
