package dispatch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// Method is a synchronous boundary method. recv is the target object.
type Method func(ctx context.Context, recv any, args ...any) (any, error)

// AsyncMethod is an asynchronous boundary method.
type AsyncMethod func(ctx context.Context, recv any, args ...any) *Future

// Wrapper decorates a bound implementation. It must call the implementation
// it is given with the same receiver and arguments.
type Wrapper interface {
	WrapSync(next Method) Method
	WrapAsync(next AsyncMethod) AsyncMethod
}

// Forker derives the context handed to a goroutine started by Table.Go.
type Forker func(ctx context.Context) context.Context

// Key returns the binding key for method on target.
func Key(target, method string) string {
	return target + "." + method
}

type binding struct {
	key   string
	async bool

	original      Method
	originalAsync AsyncMethod

	current atomic.Value // Method or AsyncMethod
	wrapped atomic.Bool
}

// Table holds the bound methods of one runtime. Calls are lock-free once
// binding is done; Install and restore swap the implementation atomically.
type Table struct {
	mu       sync.RWMutex
	bindings map[string]*binding

	forker atomic.Pointer[Forker]
}

// NewTable returns an empty table. A runtime binds its boundary methods once
// at construction and routes every call through the table afterwards.
//
// Example:
//
//	table := dispatch.NewTable()
//	_ = table.Bind("Crew.Kickoff", rt.crewKickoff)
//	out, err := table.Call(ctx, "Crew.Kickoff", crew, inputs)
func NewTable() *Table {
	return &Table{bindings: make(map[string]*binding)}
}

// Bind registers a synchronous method under key.
func (t *Table) Bind(key string, m Method) error {
	if m == nil {
		return fmt.Errorf("%w: nil method for %s", ErrUnbound, key)
	}
	b := &binding{key: key, original: m}
	b.current.Store(m)
	return t.add(b)
}

// BindAsync registers an asynchronous method under key.
func (t *Table) BindAsync(key string, m AsyncMethod) error {
	if m == nil {
		return fmt.Errorf("%w: nil method for %s", ErrUnbound, key)
	}
	b := &binding{key: key, async: true, originalAsync: m}
	b.current.Store(m)
	return t.add(b)
}

func (t *Table) add(b *binding) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.bindings[b.key]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyBound, b.key)
	}
	t.bindings[b.key] = b
	return nil
}

func (t *Table) lookup(key string) (*binding, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	b, ok := t.bindings[key]
	return b, ok
}

// Has reports whether key is bound.
func (t *Table) Has(key string) bool {
	_, ok := t.lookup(key)
	return ok
}

// IsAsync reports whether key is bound to an asynchronous method.
func (t *Table) IsAsync(key string) bool {
	b, ok := t.lookup(key)
	return ok && b.async
}

// Wrapped reports whether a wrapper is currently installed on key.
func (t *Table) Wrapped(key string) bool {
	b, ok := t.lookup(key)
	return ok && b.wrapped.Load()
}

// Keys returns every bound key in sorted order.
func (t *Table) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	keys := make([]string, 0, len(t.bindings))
	for k := range t.bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Install wraps the implementation bound under key. A key carries at most
// one wrapper at a time.
//
// Parameters:
//   - key: the bound method, "Target.Method"
//   - w: the wrapper; WrapSync or WrapAsync is used depending on the binding
//
// Returns a restore function that puts the previously bound method back;
// calling it more than once is harmless. Errors are ErrUnbound for an
// unknown key and ErrAlreadyWrapped when a wrapper is already installed.
//
// Example:
//
//	restore, err := table.Install("Crew.Kickoff", ic.Wrapper(entry))
//	if err != nil {
//	    return err
//	}
//	defer restore()
func (t *Table) Install(key string, w Wrapper) (restore func(), err error) {
	b, ok := t.lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnbound, key)
	}
	if !b.wrapped.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyWrapped, key)
	}

	if b.async {
		b.current.Store(w.WrapAsync(b.originalAsync))
	} else {
		b.current.Store(w.WrapSync(b.original))
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if b.async {
				b.current.Store(b.originalAsync)
			} else {
				b.current.Store(b.original)
			}
			b.wrapped.Store(false)
		})
	}, nil
}

// Call invokes the synchronous method bound under key, wrapped or not.
//
// Parameters:
//   - ctx: carries the caller's execution path to the wrapper
//   - key: the bound method, "Target.Method"
//   - recv: the receiver, e.g. the *Crew being kicked off
//   - args: passed to the method unchanged
//
// Returns whatever the method returns. ErrUnbound and ErrKindMismatch are
// returned without invoking anything.
//
// Example:
//
//	out, err := table.Call(ctx, "Task.ExecuteCore", task, agent, inputs, history)
func (t *Table) Call(ctx context.Context, key string, recv any, args ...any) (any, error) {
	b, ok := t.lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnbound, key)
	}
	if b.async {
		return nil, fmt.Errorf("%w: %s is async", ErrKindMismatch, key)
	}
	return b.current.Load().(Method)(ctx, recv, args...)
}

// CallAsync invokes the asynchronous method bound under key. Lookup failures
// are reported through the returned future.
func (t *Table) CallAsync(ctx context.Context, key string, recv any, args ...any) *Future {
	b, ok := t.lookup(key)
	if !ok {
		return Resolved(nil, fmt.Errorf("%w: %s", ErrUnbound, key))
	}
	if !b.async {
		return Resolved(nil, fmt.Errorf("%w: %s is sync", ErrKindMismatch, key))
	}
	return b.current.Load().(AsyncMethod)(ctx, recv, args...)
}

// SetForker installs f as the context forker used by Go. A nil f removes it.
func (t *Table) SetForker(f Forker) {
	if f == nil {
		t.forker.Store(nil)
		return
	}
	t.forker.Store(&f)
}

// Fork applies the installed forker to ctx.
func (t *Table) Fork(ctx context.Context) context.Context {
	if f := t.forker.Load(); f != nil {
		return (*f)(ctx)
	}
	return ctx
}

// Go runs fn on a new goroutine with a forked ctx and returns its future.
func (t *Table) Go(ctx context.Context, fn func(ctx context.Context) (any, error)) *Future {
	return Go(t.Fork(ctx), fn)
}
