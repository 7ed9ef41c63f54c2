package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Logger is the logging contract of the metrics lifecycle.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Metrics encapsulates the Prometheus registry and HTTP server responsible
// for exposing instrumentation metrics.
type Metrics struct {
	// Server defines the HTTP server used to expose the /metrics endpoint.
	Server *http.Server

	// Registry is the Prometheus registry where all metrics are registered.
	// Each service maintains its own isolated registry to prevent metric name collisions.
	Registry *prometheus.Registry

	registerer prometheus.Registerer
	namespace  string

	spansStarted    *prometheus.CounterVec
	spansEnded      *prometheus.CounterVec
	spanDuration    *prometheus.HistogramVec
	stackViolations *prometheus.CounterVec
	openPaths       prometheus.Gauge
}

// NewMetrics initializes and returns a new instance of the Metrics struct.
// It sets up a dedicated Prometheus registry, registers the span metrics,
// wraps all metrics with a constant `service` label, and creates an HTTP server
// exposing the /metrics endpoint.
//
// The built-in series are:
//   - spans_started_total{kind}
//   - spans_ended_total{kind,status}
//   - span_duration_seconds{target}
//   - stack_violations_total{target}
//   - open_paths
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{
//	    Address:     ":9090",
//	    ServiceName: "book-flow",
//	})
//	ic := interceptor.New(t, interceptor.WithObserver(m))
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	// every series carries service="<cfg.ServiceName>"
	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry:   registry,
		registerer: wrappedRegistry,
		namespace:  cfg.Namespace,
	}

	m.spansStarted = createCounterVec(cfg.Namespace, "spans_started_total", "Total number of spans started by intercepted calls", []string{"kind"})
	m.spansEnded = createCounterVec(cfg.Namespace, "spans_ended_total", "Total number of spans ended by intercepted calls", []string{"kind", "status"})
	m.spanDuration = createHistogramVec(cfg.Namespace, "span_duration_seconds", "Duration of intercepted calls in seconds", []string{"target"}, prometheus.DefBuckets)
	m.stackViolations = createCounterVec(cfg.Namespace, "stack_violations_total", "Span stack discipline violations; each disables one execution path", []string{"target"})
	m.openPaths = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Name:      "open_paths",
		Help:      "Execution paths currently inside an intercepted call",
	})

	wrappedRegistry.MustRegister(
		m.spansStarted,
		m.spansEnded,
		m.spanDuration,
		m.stackViolations,
		m.openPaths,
	)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	return m
}
