package tracer

import (
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// SpanKind classifies where an intercepted operation sits in the hierarchy.
type SpanKind int

const (
	// SpanKindRoot starts a fresh top-level span and execution path.
	SpanKindRoot SpanKind = iota + 1
	// SpanKindNested is a child operation that may have children of its own.
	SpanKindNested
	// SpanKindLeaf is a terminal operation.
	SpanKindLeaf
)

func (k SpanKind) String() string {
	switch k {
	case SpanKindRoot:
		return "root"
	case SpanKindNested:
		return "nested"
	case SpanKindLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the declared kinds.
func (k SpanKind) Valid() bool {
	return k >= SpanKindRoot && k <= SpanKindLeaf
}

// Status is the outcome recorded on a span when it ends.
type Status int

const (
	StatusUnset Status = iota
	StatusOK
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	default:
		return "unset"
	}
}

// Span is the handle of a started, not yet ended span.
// It is safe for concurrent use; End is effective exactly once.
type Span struct {
	name   string
	kind   SpanKind
	start  time.Time
	parent *Span
	span   trace.Span

	mu      sync.Mutex
	attrs   map[string]interface{}
	status  Status
	message string
	ended   bool
}

// Name returns the resolved span name.
func (s *Span) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Kind returns the span kind.
func (s *Span) Kind() SpanKind {
	if s == nil {
		return 0
	}
	return s.kind
}

// StartTime returns the start timestamp.
func (s *Span) StartTime() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.start
}

// Parent returns the parent handle, or nil for a trace root.
func (s *Span) Parent() *Span {
	if s == nil {
		return nil
	}
	return s.parent
}

// Status returns the current status.
func (s *Span) Status() Status {
	if s == nil {
		return StatusUnset
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Ended reports whether the span has been ended.
func (s *Span) Ended() bool {
	if s == nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// Attributes returns a copy of the attributes recorded through the adapter.
func (s *Span) Attributes() map[string]interface{} {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]interface{}, len(s.attrs))
	for k, v := range s.attrs {
		out[k] = v
	}
	return out
}

// SpanContext returns the OpenTelemetry identity of the span.
func (s *Span) SpanContext() trace.SpanContext {
	if s == nil || s.span == nil {
		return trace.SpanContext{}
	}
	return s.span.SpanContext()
}

func (s *Span) mergeAttributes(attrs map[string]interface{}) {
	if len(attrs) == 0 {
		return
	}
	if s.attrs == nil {
		s.attrs = make(map[string]interface{}, len(attrs))
	}
	for k, v := range attrs {
		s.attrs[k] = v
	}
}
