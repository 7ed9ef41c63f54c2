package dispatch

import (
	"context"
	"sync"
)

// Future is the eventual result of an asynchronous method.
type Future struct {
	done chan struct{}
	once sync.Once

	value     any
	err       error
	panicked  bool
	recovered any
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns a future that has already completed with value and err.
func Resolved(value any, err error) *Future {
	f := newFuture()
	f.complete(value, err)
	return f
}

// Go runs fn on a new goroutine and returns its future. A panic inside fn
// is captured and re-raised, with the same value, by Await.
func Go(ctx context.Context, fn func(ctx context.Context) (any, error)) *Future {
	f := newFuture()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				f.fail(r)
			}
		}()
		v, err := fn(ctx)
		f.complete(v, err)
	}()
	return f
}

func (f *Future) complete(value any, err error) {
	f.once.Do(func() {
		f.value, f.err = value, err
		close(f.done)
	})
}

func (f *Future) fail(r any) {
	f.once.Do(func() {
		f.panicked, f.recovered = true, r
		close(f.done)
	})
}

// Done is closed once the future has completed.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future completes or ctx is done. A captured panic
// is re-raised in the awaiting goroutine.
func (f *Future) Await(ctx context.Context) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-f.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if f.panicked {
		panic(f.recovered)
	}
	return f.value, f.err
}

// Panicked reports the captured panic value of a completed future.
func (f *Future) Panicked() (any, bool) {
	select {
	case <-f.done:
		return f.recovered, f.panicked
	default:
		return nil, false
	}
}
