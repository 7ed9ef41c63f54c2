package instrumentor

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/flowtrace/v1/observability"
)

// FXModule provides an *Instrumentor for the Instrumentable in the container
// and ties instrumentation to the application lifecycle.
var FXModule = fx.Module("instrumentor",
	fx.Provide(NewFromParams),
	fx.Invoke(RegisterInstrumentorLifecycle),
)

// Params are the dependencies of NewFromParams. Logger, Observer and
// Provider are optional.
type Params struct {
	fx.In

	Target   Instrumentable
	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
	Provider trace.TracerProvider   `optional:"true"`
}

// NewFromParams builds an Instrumentor from fx-provided dependencies.
func NewFromParams(p Params) (*Instrumentor, error) {
	var opts []Option
	if p.Logger != nil {
		opts = append(opts, WithLogger(p.Logger))
	}
	if p.Observer != nil {
		opts = append(opts, WithObserver(p.Observer))
	}
	if p.Provider != nil {
		opts = append(opts, WithTracerProvider(p.Provider))
	}
	return New(p.Target, p.Config, opts...)
}

// RegisterInstrumentorLifecycle instruments on start and uninstruments on
// stop, flushing buffered spans.
func RegisterInstrumentorLifecycle(lc fx.Lifecycle, inst *Instrumentor) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return inst.Instrument()
		},
		OnStop: func(ctx context.Context) error {
			inst.logger.Info("shutting down instrumentation...", nil, nil)
			return inst.Uninstrument(ctx)
		},
	})
}
