package tracer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	stdLogger "github.com/Aleph-Alpha/flowtrace/v1/logger"
)

func newTestTracer(t *testing.T, opts ...Option) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})

	return NewClientWithProvider(provider, stdLogger.NewNop(), opts...), recorder
}

func attrMap(kvs []attribute.KeyValue) map[string]attribute.Value {
	out := make(map[string]attribute.Value, len(kvs))
	for _, kv := range kvs {
		out[string(kv.Key)] = kv.Value
	}
	return out
}

func TestStartSpanLinksParent(t *testing.T) {
	tr, recorder := newTestTracer(t)
	ctx := context.Background()

	root := tr.StartSpan(ctx, "root", nil, SpanKindRoot, nil)
	child := tr.StartSpan(ctx, "child", root, SpanKindNested, nil)
	tr.EndSpan(child, StatusOK, nil)
	tr.EndSpan(root, StatusOK, nil)

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "child", ended[0].Name())
	assert.Equal(t, root.SpanContext().SpanID(), ended[0].Parent().SpanID())
	assert.Equal(t, root.SpanContext().TraceID(), ended[0].SpanContext().TraceID())
	assert.False(t, ended[1].Parent().IsValid())
	assert.Same(t, root, child.Parent())
}

func TestRootIgnoresSpanInContext(t *testing.T) {
	tr, recorder := newTestTracer(t)

	outer := tr.StartSpan(context.Background(), "outer", nil, SpanKindNested, nil)
	ctx := ContextWithSpan(context.Background(), outer)

	root := tr.StartSpan(ctx, "root", nil, SpanKindRoot, nil)
	tr.EndSpan(root, StatusOK, nil)
	tr.EndSpan(outer, StatusOK, nil)

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.False(t, ended[0].Parent().IsValid())
	assert.NotEqual(t, outer.SpanContext().TraceID(), root.SpanContext().TraceID())
}

func TestNestedWithoutParentInheritsContextSpan(t *testing.T) {
	tr, _ := newTestTracer(t)

	outer := tr.StartSpan(context.Background(), "outer", nil, SpanKindRoot, nil)
	ctx := ContextWithSpan(context.Background(), outer)

	leaf := tr.StartSpan(ctx, "leaf", nil, SpanKindLeaf, nil)
	assert.Equal(t, outer.SpanContext().TraceID(), leaf.SpanContext().TraceID())
}

func TestEndSpanIsIdempotent(t *testing.T) {
	tr, recorder := newTestTracer(t)

	s := tr.StartSpan(context.Background(), "once", nil, SpanKindRoot, nil)
	tr.EndSpan(s, StatusOK, nil)
	tr.EndSpan(s, StatusError, map[string]interface{}{"late": true})

	require.Len(t, recorder.Ended(), 1)
	assert.Equal(t, StatusOK, s.Status())
	assert.True(t, s.Ended())
	_, ok := s.Attributes()["late"]
	assert.False(t, ok)
}

func TestEndSpanNilIsNoop(t *testing.T) {
	tr, _ := newTestTracer(t)
	assert.NotPanics(t, func() {
		tr.EndSpan(nil, StatusOK, nil)
		tr.RecordException(nil, errors.New("x"))
		tr.SetAttributes(nil, map[string]interface{}{"a": 1})
	})
}

type customErr struct{ msg string }

func (e *customErr) Error() string { return e.msg }

func TestRecordExceptionSetsAttributesAndStatus(t *testing.T) {
	tr, recorder := newTestTracer(t)

	s := tr.StartSpan(context.Background(), "fails", nil, SpanKindRoot, nil)
	tr.RecordException(s, &customErr{msg: "disk full"})
	tr.EndSpan(s, StatusError, nil)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "disk full", ended[0].Status().Description)

	attrs := attrMap(ended[0].Attributes())
	assert.Equal(t, "*tracer.customErr", attrs[AttrErrorType].AsString())
	assert.Equal(t, "disk full", attrs[AttrErrorMessage].AsString())

	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
}

func TestAttributeConversion(t *testing.T) {
	tr, recorder := newTestTracer(t)

	s := tr.StartSpan(context.Background(), "attrs", nil, SpanKindLeaf, map[string]interface{}{
		"str": "v",
		"int": 3,
	})
	tr.SetAttributes(s, map[string]interface{}{
		"i64":   int64(4),
		"float": 1.5,
		"bool":  true,
		"other": []int{1},
	})
	tr.EndSpan(s, StatusOK, map[string]interface{}{"final": "yes"})

	attrs := attrMap(recorder.Ended()[0].Attributes())
	assert.Equal(t, "v", attrs["str"].AsString())
	assert.Equal(t, int64(3), attrs["int"].AsInt64())
	assert.Equal(t, int64(4), attrs["i64"].AsInt64())
	assert.Equal(t, 1.5, attrs["float"].AsFloat64())
	assert.True(t, attrs["bool"].AsBool())
	assert.Equal(t, "[1]", attrs["other"].AsString())
	assert.Equal(t, "yes", attrs["final"].AsString())

	assert.Equal(t, "v", s.Attributes()["str"])
}

func TestFakeClockTimestamps(t *testing.T) {
	start := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	clock := clockz.NewFakeClockAt(start)
	tr, recorder := newTestTracer(t, WithClock(clock))

	s := tr.StartSpan(context.Background(), "timed", nil, SpanKindRoot, nil)
	clock.Advance(250 * time.Millisecond)
	tr.EndSpan(s, StatusOK, nil)

	ended := recorder.Ended()[0]
	assert.Equal(t, start, ended.StartTime())
	assert.Equal(t, 250*time.Millisecond, ended.EndTime().Sub(ended.StartTime()))
	assert.Equal(t, start, s.StartTime())
}

func TestCarrierRoundTrip(t *testing.T) {
	tr, _ := newTestTracer(t)

	s := tr.StartSpan(context.Background(), "carrier", nil, SpanKindRoot, nil)
	defer tr.EndSpan(s, StatusOK, nil)

	carrier := tr.GetCarrier(ContextWithSpan(context.Background(), s))
	require.Contains(t, carrier, "traceparent")

	ctx := tr.SetCarrierOnContext(context.Background(), carrier)
	child := tr.StartSpan(ctx, "remote", nil, SpanKindNested, nil)
	assert.Equal(t, s.SpanContext().TraceID(), child.SpanContext().TraceID())
}

func TestBackendErrorsAreLoggedAndDropped(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tr := NewClientWithProvider(sdktrace.NewTracerProvider(), stdLogger.NewWithZap(zap.New(core), false))

	tr.dropBackendError(errors.New("connection refused"))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	assert.Equal(t, "connection refused", logs.All()[0].ContextMap()["error"])
}

func TestNewClientWithoutExport(t *testing.T) {
	tr, err := NewClient(Config{ServiceName: "svc", AppEnv: "test"}, stdLogger.NewNop())
	require.NoError(t, err)
	assert.True(t, tr.Owned())

	s := tr.StartSpan(context.Background(), "local", nil, SpanKindRoot, nil)
	tr.EndSpan(s, StatusOK, nil)

	require.NoError(t, tr.ForceFlush(context.Background()))
	require.NoError(t, tr.Shutdown(context.Background()))
}

type recordingHandler struct {
	errs []error
}

func (h *recordingHandler) Handle(err error) {
	h.errs = append(h.errs, err)
}

func TestShutdownRestoresGlobals(t *testing.T) {
	prevProvider := otel.GetTracerProvider()
	prevHandler := &recordingHandler{}
	otel.SetErrorHandler(prevHandler)

	tr, err := NewClient(Config{ServiceName: "svc", AppEnv: "test"}, stdLogger.NewNop())
	require.NoError(t, err)
	assert.True(t, otel.GetTracerProvider() == tr.Provider())

	require.NoError(t, tr.Shutdown(context.Background()))
	assert.True(t, otel.GetTracerProvider() == prevProvider)
	assert.True(t, otel.GetErrorHandler() == otel.ErrorHandler(prevHandler))

	otel.Handle(errors.New("after shutdown"))
	assert.Len(t, prevHandler.errs, 1)
}

func TestBorrowedProviderIsNotShutDown(t *testing.T) {
	tr, _ := newTestTracer(t)
	assert.False(t, tr.Owned())
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestKindAndStatusStrings(t *testing.T) {
	assert.Equal(t, "root", SpanKindRoot.String())
	assert.Equal(t, "nested", SpanKindNested.String())
	assert.Equal(t, "leaf", SpanKindLeaf.String())
	assert.False(t, SpanKind(0).Valid())
	assert.Equal(t, "error", StatusError.String())
	assert.Equal(t, "unset", StatusUnset.String())
}

func TestRecordErrorOnSpanEndsWithError(t *testing.T) {
	tr, recorder := newTestTracer(t)

	s := tr.StartSpan(context.Background(), "flush", nil, SpanKindLeaf, nil)
	tr.RecordErrorOnSpan(s, errors.New("flush failed"))

	assert.True(t, s.Ended())
	assert.Equal(t, StatusError, s.Status())

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "flush failed", ended[0].Status().Description)
}
