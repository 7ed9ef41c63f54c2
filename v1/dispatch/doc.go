// Package dispatch provides the method table an orchestration runtime calls
// its boundary methods through.
//
// Instead of patching methods in place, a runtime binds each interceptable
// method under a "Target.Method" key and always invokes it via the Table.
// Instrumentation then installs a Wrapper on a key; the previous
// implementation is kept and restored exactly when the returned restore
// function runs.
//
// Synchronous methods return (value, error). Asynchronous methods return a
// *Future that resolves once the work started by the call has finished,
// however many times it blocked in between.
//
// Basic usage:
//
//	table := dispatch.NewTable()
//	table.Bind("Crew.Kickoff", func(ctx context.Context, recv any, args ...any) (any, error) {
//	    return recv.(*Crew).kickoff(ctx, args...)
//	})
//
//	out, err := table.Call(ctx, "Crew.Kickoff", crew, inputs)
//
// Fan-out:
//
// Work started concurrently from inside a bound method must go through
// Table.Go (or an async binding) so that the installed Forker can give every
// goroutine its own copy of per-call context state.
package dispatch
