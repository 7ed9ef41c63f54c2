package interceptor

import (
	"context"

	"github.com/zoobzio/clockz"

	stdLogger "github.com/Aleph-Alpha/flowtrace/v1/logger"
	"github.com/Aleph-Alpha/flowtrace/v1/observability"
	"github.com/Aleph-Alpha/flowtrace/v1/resolver"
	"github.com/Aleph-Alpha/flowtrace/v1/spanstack"
	"github.com/Aleph-Alpha/flowtrace/v1/tracer"
)

// Tracer is the part of the tracer adapter the interceptor drives.
// *tracer.Tracer satisfies it.
type Tracer interface {
	StartSpan(ctx context.Context, name string, parent *tracer.Span, kind tracer.SpanKind, attrs map[string]interface{}) *tracer.Span
	EndSpan(span *tracer.Span, status tracer.Status, attrs map[string]interface{})
	RecordException(span *tracer.Span, err error)
	SetAttributes(span *tracer.Span, attrs map[string]interface{})
}

// Interceptor builds the span-bracketing wrappers installed by the registry.
// One Interceptor may serve any number of entries and concurrent calls.
type Interceptor struct {
	tracer   Tracer
	logger   Logger
	observer observability.Observer
	resolver *resolver.Resolver
	stacks   *spanstack.Stacks
	clock    clockz.Clock
}

// Option customises an Interceptor.
type Option func(*Interceptor)

// WithLogger sets the logger used for violations and resolver fallbacks.
func WithLogger(logger Logger) Option {
	return func(i *Interceptor) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithObserver attaches an observer notified about span and path events.
func WithObserver(observer observability.Observer) Option {
	return func(i *Interceptor) {
		i.observer = observer
	}
}

// WithResolver replaces the default name resolver.
func WithResolver(r *resolver.Resolver) Option {
	return func(i *Interceptor) {
		if r != nil {
			i.resolver = r
		}
	}
}

// WithStacks sets the index live execution paths are attached to.
func WithStacks(s *spanstack.Stacks) Option {
	return func(i *Interceptor) {
		if s != nil {
			i.stacks = s
		}
	}
}

// WithClock sets the clock used to measure call durations.
func WithClock(clock clockz.Clock) Option {
	return func(i *Interceptor) {
		if clock != nil {
			i.clock = clock
		}
	}
}

// New creates an Interceptor driving t.
//
// Parameters:
//   - t: the tracer adapter spans are started and ended on
//   - opts: logger, observer, resolver, path index and clock overrides
//
// Without options it logs nowhere, notifies nobody, names spans with the
// built-in resolver rules and keeps its own path index.
//
// Example:
//
//	ic := interceptor.New(tr,
//	    interceptor.WithLogger(log),
//	    interceptor.WithObserver(m),
//	)
//	reg := registry.New(rt.Methods(), ic.Wrapper)
func New(t Tracer, opts ...Option) *Interceptor {
	i := &Interceptor{
		tracer:   t,
		logger:   stdLogger.NewNop(),
		resolver: resolver.New(),
		stacks:   spanstack.NewStacks(),
		clock:    clockz.RealClock,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Stacks returns the index of execution paths currently inside an
// intercepted call.
func (i *Interceptor) Stacks() *spanstack.Stacks {
	return i.stacks
}
