package tracer

import (
	"context"
	"fmt"
	"sync"

	stdLogger "github.com/Aleph-Alpha/flowtrace/v1/logger"
	"github.com/zoobzio/clockz"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the instrumentation scope of every span started here.
const InstrumentationName = "github.com/Aleph-Alpha/flowtrace"

// Logger defines the interface for logging operations in the tracer package.
// This interface allows the package to use any logging implementation that
// conforms to these methods.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Tracer is a stateless façade over an OpenTelemetry TracerProvider.
// It starts and ends spans, records attributes and failures, and propagates
// trace context. It owns no hierarchy logic: the caller always names the parent.
//
// The Tracer is designed to be thread-safe and can be shared across goroutines.
type Tracer struct {
	provider trace.TracerProvider
	tracer   trace.Tracer
	owned    *sdktrace.TracerProvider
	logger   Logger
	clock    clockz.Clock

	// restoreGlobals reinstates the OpenTelemetry globals NewClient replaced.
	restoreGlobals func()
	restoreOnce    sync.Once
}

// Option customises a Tracer.
type Option func(*Tracer)

// WithClock sets the clock used for span start and end timestamps.
// Enables clock injection for deterministic testing.
func WithClock(clock clockz.Clock) Option {
	return func(t *Tracer) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// NewClient creates and initializes a new Tracer backed by its own SDK provider.
// If export is enabled an OTLP/HTTP exporter is attached through a batcher,
// sending to cfg.Endpoint with cfg.Headers.
//
// The provider is installed globally so that other instrumentations (LLM
// clients, HTTP clients) emit into the same traces. Export failures are
// routed to the logger and dropped; they never reach an instrumented call.
//
// Example:
//
//	t, err := tracer.NewClient(tracer.Config{
//	    ServiceName:  "book-flow",
//	    AppEnv:       "DEV",
//	    EnableExport: true,
//	    Endpoint:     "https://api.braintrust.dev/otel/v1/traces",
//	}, log)
func NewClient(cfg Config, logger Logger, opts ...Option) (*Tracer, error) {
	var options []sdktrace.TracerProviderOption

	if cfg.EnableExport {
		var clientOpts []otlptracehttp.Option
		if cfg.Endpoint != "" {
			clientOpts = append(clientOpts, otlptracehttp.WithEndpointURL(cfg.Endpoint))
		}
		if len(cfg.Headers) > 0 {
			clientOpts = append(clientOpts, otlptracehttp.WithHeaders(cfg.Headers))
		}
		if cfg.Insecure {
			clientOpts = append(clientOpts, otlptracehttp.WithInsecure())
		}
		if cfg.ExportTimeout > 0 {
			clientOpts = append(clientOpts, otlptracehttp.WithTimeout(cfg.ExportTimeout))
		}

		client := otlptracehttp.NewClient(clientOpts...)
		exporter, err := otlptrace.New(context.Background(), client)
		if err != nil {
			return nil, fmt.Errorf("cannot initiate tracer exporter: %w", err)
		}
		options = append(options, sdktrace.WithBatcher(exporter))
	}

	options = append(options, sdktrace.WithResource(resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.AppEnv),
		attribute.String("environment", cfg.AppEnv),
	)))

	tp := sdktrace.NewTracerProvider(options...)

	t := NewClientWithProvider(tp, logger, opts...)
	t.owned = tp

	prevProvider := otel.GetTracerProvider()
	prevPropagator := otel.GetTextMapPropagator()
	prevHandler := otel.GetErrorHandler()
	t.restoreGlobals = func() {
		// a later client may have installed its own provider meanwhile
		if otel.GetTracerProvider() != trace.TracerProvider(tp) {
			return
		}
		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevPropagator)
		otel.SetErrorHandler(prevHandler)
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	otel.SetErrorHandler(otel.ErrorHandlerFunc(t.dropBackendError))

	return t, nil
}

// NewClientWithProvider wraps a caller-supplied provider. The Tracer does not
// own it: Shutdown and ForceFlush leave it alone.
func NewClientWithProvider(tp trace.TracerProvider, logger Logger, opts ...Option) *Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if logger == nil {
		logger = stdLogger.NewNop()
	}

	t := &Tracer{
		provider: tp,
		tracer:   tp.Tracer(InstrumentationName),
		logger:   logger,
		clock:    clockz.RealClock,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// dropBackendError is installed as the OpenTelemetry error handler.
func (t *Tracer) dropBackendError(err error) {
	t.logger.Warn("tracing backend error dropped", err, nil)
}

// Provider returns the underlying TracerProvider.
func (t *Tracer) Provider() trace.TracerProvider {
	return t.provider
}

// Owned reports whether the provider was built by NewClient.
func (t *Tracer) Owned() bool {
	return t.owned != nil
}

// ForceFlush exports all ended spans that have not been exported yet.
func (t *Tracer) ForceFlush(ctx context.Context) error {
	if t.owned == nil {
		return nil
	}
	return t.owned.ForceFlush(ctx)
}

// Shutdown flushes and stops an owned provider and puts back the global
// provider, propagator and error handler that NewClient replaced. It is a
// no-op for a caller-supplied provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.owned == nil {
		return nil
	}
	if t.restoreGlobals != nil {
		t.restoreOnce.Do(t.restoreGlobals)
	}
	return t.owned.Shutdown(ctx)
}
