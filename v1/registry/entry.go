package registry

import (
	"github.com/Aleph-Alpha/flowtrace/v1/dispatch"
	"github.com/Aleph-Alpha/flowtrace/v1/resolver"
	"github.com/Aleph-Alpha/flowtrace/v1/tracer"
)

// Entry is one interception rule.
type Entry struct {
	// Target is the type name of the intercepted object, e.g. "Crew".
	Target string
	// Method is the intercepted method, e.g. "Kickoff".
	Method string
	// Kind decides whether the call starts a trace, nests or is a leaf.
	Kind tracer.SpanKind
	// Template names the span. Nil uses the resolver's built-in rules.
	Template resolver.Template
	// Enabled entries are installed; disabled ones are only recorded.
	Enabled bool
	// Optional entries whose method is missing are skipped by the caller
	// instead of failing instrumentation.
	Optional bool
}

// Key returns "Target.Method".
func (e Entry) Key() string {
	return dispatch.Key(e.Target, e.Method)
}

func (e Entry) validate() error {
	if e.Target == "" || e.Method == "" {
		return newConfigError(ErrInvalidEntry, "target and method are required")
	}
	if !e.Kind.Valid() {
		return newConfigError(ErrInvalidEntry, "unknown span kind for "+e.Key())
	}
	return nil
}
