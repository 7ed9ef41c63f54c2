package observability

import "time"

// Observer receives a notification for every observed operation.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes a single observed operation.
type OperationContext struct {
	// Component is the reporting component, e.g. "interceptor".
	Component string

	// Operation is what happened, e.g. "span" or "stack_violation".
	Operation string

	// Resource is the intercepted target type.
	Resource string

	// SubResource is the intercepted method name.
	SubResource string

	// Duration is the wall time of the wrapped call.
	Duration time.Duration

	// Error is the failure returned by the wrapped call, if any.
	Error error

	// Metadata carries reporter-specific labels such as span kind and status.
	Metadata map[string]interface{}
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation calls f(ctx).
func (f ObserverFunc) ObserveOperation(ctx OperationContext) { f(ctx) }

// Multi fans a notification out to several observers. Nil observers are skipped.
func Multi(observers ...Observer) Observer {
	out := make(multi, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

type multi []Observer

func (m multi) ObserveOperation(ctx OperationContext) {
	for _, o := range m {
		o.ObserveOperation(ctx)
	}
}
