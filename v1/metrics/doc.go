// Package metrics provides Prometheus-based monitoring of the span
// instrumentation layer.
//
// The metrics package exposes a configurable HTTP endpoint for scraping,
// optional Go runtime instrumentation, and integration with the Fx dependency
// injection framework.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - MetricsCollector interface: Defines the contract for metrics operations
//   - Metrics struct: Concrete implementation of MetricsCollector and of
//     observability.Observer
//   - NewMetrics constructor: Returns *Metrics (concrete type)
//   - FX module: Provides both *Metrics and MetricsCollector for dependency injection
//
// # Direct Usage (Without FX)
//
//	m := metrics.NewMetrics(metrics.Config{
//		Address:                 ":9090",
//		EnableDefaultCollectors: true,
//		ServiceName:             "book-flow",
//	})
//	go m.Server.ListenAndServe()
//
//	ic := interceptor.New(t, interceptor.WithObserver(m))
//
// # Built-in Series
//
// Every series carries the constant label service="<ServiceName>" and the
// configured namespace prefix:
//
//	spans_started_total{kind}          root, nested or leaf
//	spans_ended_total{kind,status}     status is ok or error
//	span_duration_seconds{target}      target is "Type.Method"
//	stack_violations_total{target}     each violation disables one execution path
//	open_paths                         paths currently inside an intercepted call
//
// # Configuration
//
//	METRICS_ADDRESS=:9090
//	METRICS_ENABLE_DEFAULT_COLLECTORS=true
//	METRICS_NAMESPACE=flowtrace
//	METRICS_SERVICE_NAME=book-flow
//
// # Thread Safety
//
// All methods on the Metrics struct and Prometheus collectors are safe for
// concurrent use by multiple goroutines.
package metrics
