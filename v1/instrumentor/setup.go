package instrumentor

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/zoobzio/clockz"
	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/flowtrace/v1/dispatch"
	"github.com/Aleph-Alpha/flowtrace/v1/interceptor"
	stdLogger "github.com/Aleph-Alpha/flowtrace/v1/logger"
	"github.com/Aleph-Alpha/flowtrace/v1/observability"
	"github.com/Aleph-Alpha/flowtrace/v1/registry"
	"github.com/Aleph-Alpha/flowtrace/v1/resolver"
	"github.com/Aleph-Alpha/flowtrace/v1/spanstack"
	"github.com/Aleph-Alpha/flowtrace/v1/tracer"
)

// Instrumentable is a runtime whose boundary methods can be wrapped.
type Instrumentable interface {
	// Methods returns the table the runtime dispatches its boundary methods through.
	Methods() *dispatch.Table
	// Entries returns the runtime's default interception rules.
	Entries() []registry.Entry
}

// Logger defines the interface for logging operations in the instrumentor package.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

type options struct {
	provider trace.TracerProvider
	logger   Logger
	observer observability.Observer
	clock    clockz.Clock
	entries  []registry.Entry
	rules    []resolver.Rule
}

// Option customises an Instrumentor.
type Option func(*options)

// WithTracerProvider uses tp instead of building a provider from Config.
// A borrowed provider is never shut down by Uninstrument.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.provider = tp
	}
}

// WithLogger sets the logger shared by the tracer, interceptor and instrumentor.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver attaches an observer (for example *metrics.Metrics) to the interceptor.
func WithObserver(observer observability.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithClock sets the clock used for span timestamps and durations.
func WithClock(clock clockz.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithEntries replaces the target's default interception rules.
func WithEntries(entries ...registry.Entry) Option {
	return func(o *options) {
		o.entries = entries
	}
}

// WithNameRules adds span naming rules consulted after the built-in ones.
// They name calls the built-in rules cannot, such as receiver-less methods
// called without a string argument.
//
// Example:
//
//	inst, err := instrumentor.Instrument(rt, cfg, instrumentor.WithNameRules(resolver.Rule{
//	    Kind:  tracer.SpanKindNested,
//	    Match: func(_ any, args []any) bool { return len(args) > 0 },
//	    Name:  func(_ any, args []any) string { return fmt.Sprintf("step %v", args[0]) },
//	}))
func WithNameRules(rules ...resolver.Rule) Option {
	return func(o *options) {
		o.rules = append(o.rules, rules...)
	}
}

// Instrumentor owns the instrumentation of one runtime.
type Instrumentor struct {
	target Instrumentable
	cfg    Config
	opts   options
	logger Logger

	mu           sync.Mutex
	instrumented bool
	tracer       *tracer.Tracer
	registry     *registry.Registry
	stacks       *spanstack.Stacks
	skipped      []string
}

// New prepares an Instrumentor for target without installing anything.
func New(target Instrumentable, cfg Config, opts ...Option) (*Instrumentor, error) {
	if isNil(target) {
		return nil, ErrNilTarget
	}

	o := options{
		logger: stdLogger.NewNop(),
		clock:  clockz.RealClock,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Instrumentor{
		target: target,
		cfg:    cfg,
		opts:   o,
		logger: o.logger,
	}, nil
}

// Instrument creates an Instrumentor for target and installs it.
//
// Example:
//
//	inst, err := instrumentor.Instrument(rt, cfg,
//	    instrumentor.WithLogger(log),
//	    instrumentor.WithObserver(m),
//	)
func Instrument(target Instrumentable, cfg Config, opts ...Option) (*Instrumentor, error) {
	inst, err := New(target, cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := inst.Instrument(); err != nil {
		return nil, err
	}
	return inst, nil
}

func isNil(target Instrumentable) bool {
	if target == nil {
		return true
	}
	v := reflect.ValueOf(target)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return v.IsNil()
	}
	return false
}

// Instrument validates the configuration, builds the tracer and wraps every
// rule. On error nothing stays installed.
func (i *Instrumentor) Instrument() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.instrumented {
		return ErrAlreadyInstrumented
	}
	if err := i.cfg.Validate(); err != nil {
		return err
	}

	if !i.cfg.FrameworkTelemetryDisabled {
		i.logger.Warn("framework telemetry is enabled, traces may be duplicated", nil, map[string]interface{}{
			"hint": "set CREWAI_DISABLE_TELEMETRY=true",
		})
	}

	tr, err := i.buildTracer()
	if err != nil {
		return err
	}

	stacks := spanstack.NewStacks()
	ic := interceptor.New(tr,
		interceptor.WithLogger(i.logger),
		interceptor.WithObserver(i.opts.observer),
		interceptor.WithClock(i.opts.clock),
		interceptor.WithResolver(resolver.New(i.opts.rules...)),
		interceptor.WithStacks(stacks),
	)
	table := i.target.Methods()
	reg := registry.New(table, ic.Wrapper)

	entries := i.opts.entries
	if entries == nil {
		entries = i.target.Entries()
	}

	var skipped []string
	for _, e := range entries {
		err := reg.Register(e)
		if err == nil {
			continue
		}
		if e.Optional && errors.Is(err, registry.ErrUnknownMethod) {
			i.logger.Warn("optional instrumentation skipped", err, map[string]interface{}{
				"target": e.Key(),
			})
			skipped = append(skipped, e.Key())
			continue
		}

		reg.UnregisterAll()
		if shutdownErr := tr.Shutdown(context.Background()); shutdownErr != nil {
			i.logger.Warn("failed to shut down tracer after failed instrumentation", shutdownErr, nil)
		}
		return fmt.Errorf("failed to instrument %s: %w", e.Key(), err)
	}

	table.SetForker(spanstack.Fork)

	i.tracer = tr
	i.registry = reg
	i.stacks = stacks
	i.skipped = skipped
	i.instrumented = true

	i.logger.Info("instrumentation installed", nil, map[string]interface{}{
		"rules":   reg.Len(),
		"skipped": len(skipped),
		"export":  i.cfg.EnableExport,
		"service": i.cfg.serviceName(),
	})
	return nil
}

func (i *Instrumentor) buildTracer() (*tracer.Tracer, error) {
	if i.opts.provider != nil {
		return tracer.NewClientWithProvider(i.opts.provider, i.logger, tracer.WithClock(i.opts.clock)), nil
	}

	tr, err := tracer.NewClient(i.cfg.TracerConfig(), i.logger, tracer.WithClock(i.opts.clock))
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	return tr, nil
}

// Uninstrument restores every original method, removes the context forker
// and flushes an owned tracer provider. Calling it again does nothing.
func (i *Instrumentor) Uninstrument(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.instrumented {
		return nil
	}

	i.registry.UnregisterAll()
	i.target.Methods().SetForker(nil)
	i.instrumented = false

	i.logger.Info("instrumentation removed", nil, nil)

	if err := i.tracer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down tracer: %w", err)
	}
	return nil
}

// Instrumented reports whether the instrumentation is installed.
func (i *Instrumentor) Instrumented() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.instrumented
}

// Skipped returns the keys of optional rules that could not be installed.
func (i *Instrumentor) Skipped() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]string(nil), i.skipped...)
}

// Tracer returns the tracer adapter, nil before the first Instrument.
func (i *Instrumentor) Tracer() *tracer.Tracer {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.tracer
}

// Registry returns the installed rules, nil before the first Instrument.
func (i *Instrumentor) Registry() *registry.Registry {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.registry
}

// OpenPaths returns the ids of the execution paths that are inside an
// intercepted root or async call right now. It is empty when nothing runs
// or before the first Instrument.
func (i *Instrumentor) OpenPaths() []string {
	i.mu.Lock()
	stacks := i.stacks
	i.mu.Unlock()

	if stacks == nil {
		return nil
	}
	return stacks.IDs()
}

// Inject returns the W3C trace context of the current span of ctx's
// execution path, for handing to a downstream process.
func (i *Instrumentor) Inject(ctx context.Context) map[string]string {
	tr := i.Tracer()
	if tr == nil {
		return map[string]string{}
	}
	if span := spanstack.Current(ctx); span != nil {
		ctx = tracer.ContextWithSpan(ctx, span)
	}
	return tr.GetCarrier(ctx)
}
