// Package logger provides structured logging for the instrumentation layer.
//
// The logger wraps Uber's zap with a small map-based field API so that every
// component (tracer adapter, interceptor, instrumentor, metrics server) can
// log through a narrow interface it declares itself.
//
// # Direct Usage (Without FX)
//
//	import "github.com/Aleph-Alpha/flowtrace/v1/logger"
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:         "info",
//		EnableTracing: true,
//	})
//
//	log.Info("instrumented method", nil, map[string]interface{}{
//		"target": "Crew",
//		"method": "Kickoff",
//	})
//
//	// With trace correlation (adds trace_id and span_id)
//	log.ErrorWithContext(ctx, "stack discipline violation", err, nil)
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Provide(func() logger.Config {
//			return logger.Config{Level: "info"}
//		}),
//	)
//
// # Configuration
//
//	ZAP_LOGGER_LEVEL=debug          # Log level (debug, info, warning, error)
//	LOGGER_ENABLE_TRACING=true      # Enable trace/span id extraction
//
// # Thread Safety
//
// All methods on Logger are safe for concurrent use by multiple goroutines.
package logger
