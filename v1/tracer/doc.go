// Package tracer is the façade between the instrumentation layer and
// OpenTelemetry. It is the only package that talks to the tracing backend.
//
// The adapter starts spans under an explicitly named parent, ends them with a
// status and final attributes, and records failures. It keeps no notion of a
// "current" span: hierarchy is decided by the caller (see package spanstack).
//
// Basic Usage:
//
//	t, err := tracer.NewClient(tracer.Config{
//		ServiceName:  "book-flow",
//		AppEnv:       "DEV",
//		EnableExport: true,
//		Endpoint:     "https://api.braintrust.dev/otel/v1/traces",
//		Headers:      map[string]string{"Authorization": "Bearer " + key},
//	}, log)
//	if err != nil {
//		return err
//	}
//	defer t.Shutdown(ctx)
//
//	root := t.StartSpan(ctx, "Flow Execution: BookFlow", nil, tracer.SpanKindRoot, nil)
//	child := t.StartSpan(ctx, "Crew Execution: Outline", root, tracer.SpanKindNested, nil)
//	t.EndSpan(child, tracer.StatusOK, nil)
//	t.EndSpan(root, tracer.StatusOK, nil)
//
// Using an existing provider instead (tests, or an application that already
// configured OpenTelemetry):
//
//	t := tracer.NewClientWithProvider(tp, log)
//
// Backend Errors:
//
// Export failures are reported asynchronously by the SDK. NewClient installs
// an OpenTelemetry error handler that logs them at warn level and drops them,
// so they never affect an instrumented call.
//
// Thread Safety:
//
// All methods on Tracer and Span are safe for concurrent use.
package tracer
