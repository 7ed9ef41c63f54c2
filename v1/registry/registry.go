package registry

import (
	"errors"
	"sync"

	"github.com/Aleph-Alpha/flowtrace/v1/dispatch"
)

// WrapperFactory builds the wrapper installed for an entry.
type WrapperFactory func(entry Entry) dispatch.Wrapper

type record struct {
	entry   Entry
	restore func()
}

// Registry maps keys to installed rules. Safe for concurrent use.
type Registry struct {
	table *dispatch.Table
	wrap  WrapperFactory

	mu      sync.Mutex
	records map[string]*record
}

// New returns an empty registry that installs wrappers built by wrap on table.
//
// Parameters:
//   - table: the method table of the runtime being instrumented
//   - wrap: builds the wrapper for one entry, usually (*interceptor.Interceptor).Wrapper
//
// Example:
//
//	reg := registry.New(rt.Methods(), ic.Wrapper)
//	if err := reg.RegisterAll(rt.Entries()...); err != nil {
//	    return err
//	}
//	defer reg.UnregisterAll()
func New(table *dispatch.Table, wrap WrapperFactory) *Registry {
	return &Registry{
		table:   table,
		wrap:    wrap,
		records: make(map[string]*record),
	}
}

// Register validates entry and, when it is enabled, installs its wrapper.
// Disabled entries are recorded but leave the method untouched.
//
// Returns a configuration error matching ErrConfiguration and one of:
//   - ErrInvalidEntry: empty target or method, or an unknown span kind
//   - ErrUnknownMethod: the table has no binding for entry.Key()
//   - ErrDuplicateRegistration: the key is already registered or wrapped
//
// Example:
//
//	err := reg.Register(registry.Entry{
//	    Target:  "Crew",
//	    Method:  "Kickoff",
//	    Kind:    tracer.SpanKindNested,
//	    Enabled: true,
//	})
//	if errors.Is(err, registry.ErrUnknownMethod) {
//	    // the runtime does not expose Crew.Kickoff
//	}
func (r *Registry) Register(entry Entry) error {
	if err := entry.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.registerLocked(entry)
}

func (r *Registry) registerLocked(entry Entry) error {
	key := entry.Key()
	if _, exists := r.records[key]; exists {
		return newConfigError(ErrDuplicateRegistration, key)
	}
	if !r.table.Has(key) {
		return newConfigError(ErrUnknownMethod, key)
	}

	rec := &record{entry: entry}
	if entry.Enabled {
		restore, err := r.table.Install(key, r.wrap(entry))
		if err != nil {
			if errors.Is(err, dispatch.ErrAlreadyWrapped) {
				return newConfigError(ErrDuplicateRegistration, key)
			}
			return newConfigError(ErrUnknownMethod, err.Error())
		}
		rec.restore = restore
	}
	r.records[key] = rec
	return nil
}

// RegisterAll registers entries in order. On the first failure every entry
// registered by this call is removed again and the error is returned.
func (r *Registry) RegisterAll(entries ...Entry) error {
	for _, e := range entries {
		if err := e.validate(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	added := make([]string, 0, len(entries))
	for _, e := range entries {
		if err := r.registerLocked(e); err != nil {
			for _, key := range added {
				r.removeLocked(key)
			}
			return err
		}
		added = append(added, e.Key())
	}
	return nil
}

// Unregister restores a single key. It reports whether the key was registered.
func (r *Registry) Unregister(target, method string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.removeLocked(dispatch.Key(target, method))
}

func (r *Registry) removeLocked(key string) bool {
	rec, ok := r.records[key]
	if !ok {
		return false
	}
	if rec.restore != nil {
		rec.restore()
	}
	delete(r.records, key)
	return true
}

// UnregisterAll restores every original binding and empties the registry.
// Calling it again, or before any Register, does nothing.
func (r *Registry) UnregisterAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.records {
		r.removeLocked(key)
	}
}

// Lookup returns the entry registered for target and method.
func (r *Registry) Lookup(target, method string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[dispatch.Key(target, method)]
	if !ok {
		return Entry{}, false
	}
	return rec.entry, true
}

// Entries returns a snapshot of every registered entry, in no particular order.
func (r *Registry) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.entry)
	}
	return out
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
