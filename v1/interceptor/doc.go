// Package interceptor wraps bound runtime methods in span brackets.
//
// For every intercepted call the interceptor resolves a span name, starts a
// span whose parent is the current span of the caller's execution path,
// pushes it, runs the original method with identical arguments, records the
// outcome and finally releases and ends the span. The original's return
// values, errors and panics reach the caller unchanged.
//
// Execution paths travel in context.Context (see package spanstack). Root
// entries always open a fresh path and a new trace; asynchronous entries
// fork the caller's path so that the caller and the async work never share
// one stack.
//
// Stack discipline violations never fail the instrumented call: the path is
// disabled (later calls on it run unwrapped), the violation is logged and
// reported to the observer, and the span is still ended.
//
// Usage:
//
//	ic := interceptor.New(t,
//	    interceptor.WithLogger(log),
//	    interceptor.WithObserver(metricsObserver),
//	)
//	reg := registry.New(table, ic.Wrapper)
package interceptor
