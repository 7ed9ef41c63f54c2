// Package observability defines the hook through which instrumentation
// components report what they did, independently of how it is recorded.
//
// The interceptor reports one OperationContext per wrapped call and one per
// stack discipline violation. The metrics package turns them into Prometheus
// series; tests usually plug in a small recording observer.
package observability
