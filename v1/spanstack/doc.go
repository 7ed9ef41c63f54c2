// Package spanstack tracks the active span of every execution path.
//
// An execution path is one logical thread of control: a top-level flow run,
// or a branch forked off it for concurrent work. Each Path owns a stack of
// span handles whose top is the parent for the next child call. A Path is
// carried in context.Context, so it travels with the call rather than with
// whichever goroutine happens to run it.
//
//	p := spanstack.NewPath(nil)
//	ctx = spanstack.WithPath(ctx, p)
//
//	p.Push(span)
//	defer p.Release(span)
//
// Concurrent branches must not share one Path. Fork creates a child path
// whose base parent is the forking path's current span:
//
//	go worker(spanstack.Fork(ctx))
//
// Push, Pop and Release are O(1) and hold the path's mutex only for the
// duration of the slice operation.
package spanstack
