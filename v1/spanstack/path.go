package spanstack

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/Aleph-Alpha/flowtrace/v1/tracer"
)

// pathKeyType is a private type for context keys to avoid collisions.
type pathKeyType struct{}

var pathKey pathKeyType

// Path is the span stack of one execution path.
// Safe for concurrent use; callers on one path must still release what they push.
type Path struct {
	id     string
	base   *tracer.Span
	parent *Path

	mu     sync.Mutex
	frames []*tracer.Span

	disabled atomic.Bool
}

// NewPath creates an empty path. base, when non-nil, is reported as Current
// while the stack is empty.
//
// Example:
//
//	p := spanstack.NewPath(nil)
//	ctx = spanstack.WithPath(ctx, p)
func NewPath(base *tracer.Span) *Path {
	return &Path{
		id:   uuid.NewString(),
		base: base,
	}
}

// ID returns the path identifier.
func (p *Path) ID() string {
	return p.id
}

// Parent returns the path this one was forked from, or nil.
func (p *Path) Parent() *Path {
	return p.parent
}

// Current returns the top of the stack, else the fork base, else nil.
func (p *Path) Current() *tracer.Span {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.frames); n > 0 {
		return p.frames[n-1]
	}
	return p.base
}

// Depth returns the number of spans on the stack.
func (p *Path) Depth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

// Push makes s the current span and returns the new depth. Every Push must
// be matched by a Release of the same span on the same path.
//
// Example:
//
//	s := tr.StartSpan(ctx, "Crew Execution: BookCrew", p.Current(), tracer.SpanKindNested, nil)
//	p.Push(s)
//	defer func() {
//	    if err := p.Release(s); err != nil {
//	        p.Disable()
//	    }
//	    tr.EndSpan(s, tracer.StatusOK, nil)
//	}()
func (p *Path) Push(s *tracer.Span) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frames = append(p.frames, s)
	return len(p.frames)
}

// Pop removes and returns the top span.
func (p *Path) Pop() (*tracer.Span, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.frames)
	if n == 0 {
		return nil, ErrStackUnderflow
	}
	top := p.frames[n-1]
	p.frames[n-1] = nil
	p.frames = p.frames[:n-1]
	return top, nil
}

// Release pops s if and only if it is on top.
//
// Returns ErrStackUnderflow when the stack is empty and ErrOutOfOrder when
// another span is on top. The stack is left untouched on error.
func (p *Path) Release(s *tracer.Span) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.frames)
	if n == 0 {
		return ErrStackUnderflow
	}
	if p.frames[n-1] != s {
		return ErrOutOfOrder
	}
	p.frames[n-1] = nil
	p.frames = p.frames[:n-1]
	return nil
}

// Disable marks the path as corrupted. Instrumentation stops wrapping calls
// made on it; the calls themselves proceed.
func (p *Path) Disable() {
	p.disabled.Store(true)
}

// Disabled reports whether Disable was called on this path or an ancestor.
func (p *Path) Disabled() bool {
	for cur := p; cur != nil; cur = cur.parent {
		if cur.disabled.Load() {
			return true
		}
	}
	return false
}

// Fork returns a new, empty path whose base is p's current span. Spans
// pushed on the fork are children of that base and never touch p's stack.
// A fork is disabled whenever p is.
func (p *Path) Fork() *Path {
	child := NewPath(p.Current())
	child.parent = p
	return child
}

// WithPath returns a copy of ctx carrying p.
func WithPath(ctx context.Context, p *Path) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, pathKey, p)
}

// FromContext extracts the path carried by ctx.
func FromContext(ctx context.Context) (*Path, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(pathKey).(*Path)
	return p, ok && p != nil
}

// Fork returns ctx carrying a fork of its path. A ctx without a path is
// returned unchanged.
func Fork(ctx context.Context) context.Context {
	p, ok := FromContext(ctx)
	if !ok {
		return ctx
	}
	return WithPath(ctx, p.Fork())
}

// Current returns the current span of the path carried by ctx, or nil.
func Current(ctx context.Context) *tracer.Span {
	p, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	return p.Current()
}
