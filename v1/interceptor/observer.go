package interceptor

import (
	"time"

	"github.com/Aleph-Alpha/flowtrace/v1/observability"
)

// Component is reported as OperationContext.Component.
const Component = "interceptor"

// Operations reported to the observer.
const (
	OpSpanStarted    = "span_started"
	OpSpanEnded      = "span_ended"
	OpStackViolation = "stack_violation"
	OpPathOpened     = "path_opened"
	OpPathClosed     = "path_closed"
)

// Metadata keys of reported operations.
const (
	MetaKind      = "kind"
	MetaStatus    = "status"
	MetaSpan      = "span"
	MetaPath      = "path_id"
	MetaCancelled = "cancelled"
)

// observeOperation notifies the observer about an operation if one is configured.
func (i *Interceptor) observeOperation(operation, resource, subResource string, duration time.Duration, err error, metadata map[string]interface{}) {
	if i.observer != nil {
		i.observer.ObserveOperation(observability.OperationContext{
			Component:   Component,
			Operation:   operation,
			Resource:    resource,
			SubResource: subResource,
			Duration:    duration,
			Error:       err,
			Metadata:    metadata,
		})
	}
}
