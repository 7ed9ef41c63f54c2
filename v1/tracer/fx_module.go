package tracer

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides a Uber FX module that configures the tracer adapter.
// It registers NewClient with the dependency injection system and a shutdown
// hook that flushes pending spans on application termination.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    tracer.FXModule,
//	    fx.Provide(func() tracer.Config { return cfg }),
//	)
var FXModule = fx.Module("tracer",
	fx.Provide(
		func(cfg Config, logger Logger) (*Tracer, error) {
			return NewClient(cfg, logger)
		},
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle registers shutdown hooks for the tracer with the FX lifecycle.
// Spans still buffered in the batcher are flushed before the provider stops.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			tracer.logger.Info("shutting down tracer...", nil, nil)
			if !tracer.Owned() {
				tracer.logger.Info("tracer provider not owned, skipping shutdown", nil, nil)
				return nil
			}
			return tracer.Shutdown(ctx)
		},
	})
}
