package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys recorded by RecordException.
const (
	AttrErrorType    = "error.type"
	AttrErrorMessage = "error.message"
)

// StartSpan starts a span named name under parent and returns its handle.
//
// A SpanKindRoot span always starts a new trace, whatever ctx carries. Any
// other kind with a nil parent inherits the span already present in ctx (for
// example one started by the application itself) or becomes a trace root.
//
// Example:
//
//	s := t.StartSpan(ctx, "Task Execution: research", parent, tracer.SpanKindNested, map[string]interface{}{
//	    "event.type": "task_execution",
//	})
//	defer t.EndSpan(s, tracer.StatusOK, nil)
func (t *Tracer) StartSpan(ctx context.Context, name string, parent *Span, kind SpanKind, attrs map[string]interface{}) *Span {
	if ctx == nil {
		ctx = context.Background()
	}

	now := t.clock.Now()
	opts := []trace.SpanStartOption{
		trace.WithTimestamp(now),
		trace.WithSpanKind(trace.SpanKindInternal),
	}
	if kv := toAttributes(attrs); len(kv) > 0 {
		opts = append(opts, trace.WithAttributes(kv...))
	}

	switch {
	case kind == SpanKindRoot:
		opts = append(opts, trace.WithNewRoot())
	case parent != nil && parent.span != nil:
		ctx = trace.ContextWithSpan(ctx, parent.span)
	}

	_, otelSpan := t.tracer.Start(ctx, name, opts...)

	s := &Span{
		name:   name,
		kind:   kind,
		start:  now,
		parent: parent,
		span:   otelSpan,
	}
	s.mergeAttributes(attrs)
	return s
}

// EndSpan records status and the final attributes and ends the span.
// Ending an already ended (or nil) span is a no-op.
func (t *Tracer) EndSpan(span *Span, status Status, attrs map[string]interface{}) {
	if span == nil {
		return
	}

	span.mu.Lock()
	if span.ended {
		span.mu.Unlock()
		return
	}
	span.ended = true
	span.status = status
	span.mergeAttributes(attrs)
	message := span.message
	span.mu.Unlock()

	if span.span == nil {
		return
	}

	if kv := toAttributes(attrs); len(kv) > 0 {
		span.span.SetAttributes(kv...)
	}

	switch status {
	case StatusOK:
		span.span.SetStatus(codes.Ok, "")
	case StatusError:
		span.span.SetStatus(codes.Error, message)
	}

	span.span.End(trace.WithTimestamp(t.clock.Now()))
}

// RecordException attaches err to the span as an exception event and as the
// error.type / error.message attributes. The span status is set by EndSpan.
func (t *Tracer) RecordException(span *Span, err error) {
	if span == nil || err == nil {
		return
	}

	attrs := map[string]interface{}{
		AttrErrorType:    fmt.Sprintf("%T", err),
		AttrErrorMessage: err.Error(),
	}

	span.mu.Lock()
	if span.ended {
		span.mu.Unlock()
		return
	}
	span.message = err.Error()
	span.mergeAttributes(attrs)
	span.mu.Unlock()

	if span.span == nil {
		return
	}
	span.span.RecordError(err, trace.WithTimestamp(t.clock.Now()))
	span.span.SetAttributes(toAttributes(attrs)...)
}

// RecordErrorOnSpan records err and ends the span with Error status in one
// step. Used for failures that happen outside an intercepted call, where no
// further attributes will be added.
//
// Example:
//
//	if err := flushPending(ctx); err != nil {
//	    t.RecordErrorOnSpan(span, err)
//	    return err
//	}
func (t *Tracer) RecordErrorOnSpan(span *Span, err error) {
	if err == nil {
		return
	}
	t.RecordException(span, err)
	t.EndSpan(span, StatusError, nil)
}

// SetAttributes adds one or more attributes to a span with support for different data types.
//
// Supported value types:
//   - string: Stored as string attributes
//   - int/int64: Stored as integer attributes
//   - float64: Stored as floating-point attributes
//   - bool: Stored as boolean attributes
//   - other types: Converted to strings using fmt.Sprint
func (t *Tracer) SetAttributes(span *Span, attrs map[string]interface{}) {
	if span == nil || len(attrs) == 0 {
		return
	}

	span.mu.Lock()
	if span.ended {
		span.mu.Unlock()
		return
	}
	span.mergeAttributes(attrs)
	span.mu.Unlock()

	if span.span != nil {
		span.span.SetAttributes(toAttributes(attrs)...)
	}
}

// ContextWithSpan returns a copy of ctx carrying span as the active
// OpenTelemetry span, so that instrumentations unaware of this package
// (HTTP or LLM clients) attach their spans beneath it.
func ContextWithSpan(ctx context.Context, span *Span) context.Context {
	if span == nil || span.span == nil {
		return ctx
	}
	return trace.ContextWithSpan(ctx, span.span)
}

// GetCarrier extracts the current trace context from a context object and returns it as
// a map that can be transmitted across process boundaries.
//
// The returned map typically includes:
//   - "traceparent": Contains trace ID, span ID, and trace flags
//   - "tracestate": Contains vendor-specific trace information (if present)
func (t *Tracer) GetCarrier(ctx context.Context) map[string]string {
	propagator := propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
	carrier := propagation.MapCarrier{}
	propagator.Inject(ctx, carrier)
	return carrier
}

// SetCarrierOnContext extracts trace information from a carrier map and injects it into a context.
// This is the complement to GetCarrier.
func (t *Tracer) SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context {
	propagator := propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
	return propagator.Extract(ctx, propagation.MapCarrier(carrier))
}

// toAttributes converts a scalar attribute map to OpenTelemetry key-values.
func toAttributes(attrs map[string]interface{}) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}

	attributes := make([]attribute.KeyValue, 0, len(attrs))

	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			attributes = append(attributes, attribute.String(k, val))
		case int:
			attributes = append(attributes, attribute.Int(k, val))
		case int64:
			attributes = append(attributes, attribute.Int64(k, val))
		case float64:
			attributes = append(attributes, attribute.Float64(k, val))
		case bool:
			attributes = append(attributes, attribute.Bool(k, val))
		default:
			// For unsupported types, convert to string
			attributes = append(attributes, attribute.String(k, fmt.Sprint(val)))
		}
	}

	return attributes
}
