package interceptor

import (
	"context"

	"github.com/Aleph-Alpha/flowtrace/v1/dispatch"
	"github.com/Aleph-Alpha/flowtrace/v1/registry"
)

// Wrapper returns the dispatch wrapper for entry. Its signature matches
// registry.WrapperFactory.
func (ic *Interceptor) Wrapper(entry registry.Entry) dispatch.Wrapper {
	return &wrapper{ic: ic, entry: entry}
}

type wrapper struct {
	ic    *Interceptor
	entry registry.Entry
}

// WrapSync brackets a synchronous method with a span.
func (w *wrapper) WrapSync(next dispatch.Method) dispatch.Method {
	return func(ctx context.Context, recv any, args ...any) (any, error) {
		if ctx == nil {
			ctx = context.Background()
		}
		// a ctx that is already done gets no span; the original decides what it means
		if !w.entry.Enabled || ctx.Err() != nil {
			return next(ctx, recv, args...)
		}

		c, ctx, ok := w.ic.begin(ctx, w.entry, recv, args, false)
		if !ok {
			return next(ctx, recv, args...)
		}
		return c.runSync(ctx, next, recv, args)
	}
}

func (c *call) runSync(ctx context.Context, next dispatch.Method, recv any, args []any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.finish(asError(r))
			panic(r)
		}
	}()

	out, err = next(ctx, recv, args...)
	c.finish(err)
	return out, err
}

// WrapAsync brackets an asynchronous method with a span that stays open
// until the method's future completes. The returned future resolves only
// after that span has ended.
func (w *wrapper) WrapAsync(next dispatch.AsyncMethod) dispatch.AsyncMethod {
	return func(ctx context.Context, recv any, args ...any) *dispatch.Future {
		if ctx == nil {
			ctx = context.Background()
		}
		// a ctx that is already done gets no span; the original decides what it means
		if !w.entry.Enabled || ctx.Err() != nil {
			return next(ctx, recv, args...)
		}

		c, ctx, ok := w.ic.begin(ctx, w.entry, recv, args, true)
		if !ok {
			return next(ctx, recv, args...)
		}

		inner := c.launch(ctx, next, recv, args)
		if inner == nil {
			c.finish(nil)
			return dispatch.Resolved(nil, nil)
		}

		return dispatch.Go(ctx, func(context.Context) (v any, err error) {
			defer func() {
				if r := recover(); r != nil {
					c.finish(asError(r))
					panic(r)
				}
			}()

			v, err = inner.Await(context.Background())
			c.finish(err)
			return v, err
		})
	}
}

// launch starts the original async method. A panic raised before it hands
// back a future ends the span and propagates.
func (c *call) launch(ctx context.Context, next dispatch.AsyncMethod, recv any, args []any) *dispatch.Future {
	defer func() {
		if r := recover(); r != nil {
			c.finish(asError(r))
			panic(r)
		}
	}()
	return next(ctx, recv, args...)
}
