package interceptor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Aleph-Alpha/flowtrace/v1/registry"
	"github.com/Aleph-Alpha/flowtrace/v1/spanstack"
	"github.com/Aleph-Alpha/flowtrace/v1/tracer"
)

// state is the lifecycle of one intercepted call.
type state int32

const (
	statePending state = iota
	stateSpanStarted
	stateCompleted
	stateFailed
	stateSpanEnded
)

func (s state) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateSpanStarted:
		return "span_started"
	case stateCompleted:
		return "completed"
	case stateFailed:
		return "failed"
	case stateSpanEnded:
		return "span_ended"
	default:
		return "unknown"
	}
}

// call tracks one intercepted invocation from span start to span end.
type call struct {
	ic    *Interceptor
	entry registry.Entry
	span  *tracer.Span
	stack *spanstack.Path
	// owned is set when stack is indexed in Stacks and must be detached.
	owned bool
	start time.Time
	state atomic.Int32
}

func (c *call) current() state {
	return state(c.state.Load())
}

func (c *call) advance(from, to state) bool {
	return c.state.CompareAndSwap(int32(from), int32(to))
}

// begin opens the span of a call on a private fork of the caller's path, so
// sibling calls sharing one ctx from different goroutines never write to the
// same stack. detached marks async calls, whose fork outlives the caller's
// frame and is tracked in the Stacks index. It returns ok=false when the call
// must run unwrapped.
func (ic *Interceptor) begin(ctx context.Context, entry registry.Entry, recv any, args []any, detached bool) (*call, context.Context, bool) {
	path, hasPath := spanstack.FromContext(ctx)
	if hasPath && path.Disabled() {
		return nil, ctx, false
	}

	c := &call{ic: ic, entry: entry}

	switch {
	case entry.Kind == tracer.SpanKindRoot || !hasPath:
		path = spanstack.NewPath(nil)
		c.owned = true
	default:
		path = path.Fork()
		c.owned = detached
	}
	parent := path.Current()
	c.stack = path

	res := ic.resolver.Resolve(entry.Kind, entry.Method, recv, args, entry.Template)
	if res.Fallback && entry.Template != nil {
		ic.logger.Debug("span name template failed, using fallback name", nil, map[string]interface{}{
			"target": entry.Key(),
			"name":   res.Name,
		})
	}

	c.start = ic.clock.Now()
	c.span = ic.tracer.StartSpan(ctx, res.Name, parent, entry.Kind, res.Attributes)
	c.advance(statePending, stateSpanStarted)
	path.Push(c.span)

	if c.owned {
		ic.stacks.Attach(path)
		ic.observeOperation(OpPathOpened, entry.Target, entry.Method, 0, nil, map[string]interface{}{
			MetaPath: path.ID(),
		})
	}
	ic.observeOperation(OpSpanStarted, entry.Target, entry.Method, 0, nil, map[string]interface{}{
		MetaKind: entry.Kind.String(),
		MetaSpan: res.Name,
	})

	ctx = spanstack.WithPath(ctx, path)
	ctx = tracer.ContextWithSpan(ctx, c.span)
	return c, ctx, true
}

// finish records the outcome of the original method and ends the span.
func (c *call) finish(err error) {
	status := tracer.StatusOK
	var attrs map[string]interface{}

	if err != nil {
		if !c.advance(stateSpanStarted, stateFailed) {
			return
		}
		status = tracer.StatusError
		c.ic.tracer.RecordException(c.span, err)
		if isCancellation(err) {
			attrs = map[string]interface{}{MetaCancelled: true}
		}
	} else if !c.advance(stateSpanStarted, stateCompleted) {
		return
	}

	c.end(status, attrs, err)
}

// end releases and ends the span. Only the first call has any effect.
func (c *call) end(status tracer.Status, attrs map[string]interface{}, err error) {
	if state(c.state.Swap(int32(stateSpanEnded))) == stateSpanEnded {
		return
	}

	if relErr := c.stack.Release(c.span); relErr != nil {
		c.ic.violation(c, relErr)
	}

	c.ic.tracer.EndSpan(c.span, status, attrs)

	if c.owned {
		c.ic.stacks.Detach(c.stack.ID())
		c.ic.observeOperation(OpPathClosed, c.entry.Target, c.entry.Method, 0, nil, map[string]interface{}{
			MetaPath: c.stack.ID(),
		})
	}

	meta := map[string]interface{}{
		MetaKind:   c.entry.Kind.String(),
		MetaStatus: status.String(),
		MetaSpan:   c.span.Name(),
	}
	if attrs != nil {
		meta[MetaCancelled] = true
	}
	c.ic.observeOperation(OpSpanEnded, c.entry.Target, c.entry.Method, c.ic.clock.Now().Sub(c.start), err, meta)
}

// violation disables the path of c after a failed release.
func (ic *Interceptor) violation(c *call, err error) {
	c.stack.Disable()

	fields := map[string]interface{}{
		"target":  c.entry.Key(),
		"span":    c.span.Name(),
		"path_id": c.stack.ID(),
		"depth":   c.stack.Depth(),
	}
	ic.logger.Error("span stack discipline violated, instrumentation disabled for path", err, fields)
	ic.observeOperation(OpStackViolation, c.entry.Target, c.entry.Method, 0, err, map[string]interface{}{
		MetaPath: c.stack.ID(),
		MetaSpan: c.span.Name(),
	})
}
