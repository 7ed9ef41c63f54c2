package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(tracing bool) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewWithZap(zap.New(core), tracing), logs
}

func TestLoggerLevelsAndFields(t *testing.T) {
	l, logs := newObservedLogger(false)

	l.Debug("debug", nil, nil)
	l.Info("info", nil, map[string]interface{}{"target": "Crew"})
	l.Warn("warn", nil)
	l.Error("error", errors.New("boom"), map[string]interface{}{"method": "Kickoff"})

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "Crew", entries[1].ContextMap()["target"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "boom", entries[3].ContextMap()["error"])
	assert.Equal(t, "Kickoff", entries[3].ContextMap()["method"])
}

func TestLaterFieldMapsOverrideEarlier(t *testing.T) {
	l, logs := newObservedLogger(false)

	l.Info("override", nil, map[string]interface{}{"k": "a"}, map[string]interface{}{"k": "b"})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "b", logs.All()[0].ContextMap()["k"])
}

func TestWithContextAddsTraceIDs(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	l, logs := newObservedLogger(true)
	l.InfoWithContext(ctx, "with trace", nil, nil)

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
}

func TestWithContextSkipsTraceIDsWhenDisabled(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	l, logs := newObservedLogger(false)
	l.WarnWithContext(ctx, "no trace", nil, nil)

	_, ok := logs.All()[0].ContextMap()["trace_id"]
	assert.False(t, ok)
}

func TestWithContextWithoutSpan(t *testing.T) {
	l, logs := newObservedLogger(true)
	l.ErrorWithContext(context.Background(), "no span", nil, nil)

	_, ok := logs.All()[0].ContextMap()["trace_id"]
	assert.False(t, ok)
}

func TestNewLoggerClientLevels(t *testing.T) {
	l := NewLoggerClient(Config{Level: Warning})
	assert.False(t, l.Zap.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Zap.Core().Enabled(zapcore.WarnLevel))

	l = NewLoggerClient(Config{Level: Debug})
	assert.True(t, l.Zap.Core().Enabled(zapcore.DebugLevel))
}

func TestNewWithWriterHonoursTracing(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	tests := []struct {
		name    string
		tracing bool
	}{
		{name: "tracing enabled", tracing: true},
		{name: "tracing disabled", tracing: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewWithWriter(Config{Level: Info, EnableTracing: tt.tracing, ServiceName: "books"}, zapcore.AddSync(&buf))

			l.DebugWithContext(ctx, "dropped", nil, nil)
			l.InfoWithContext(ctx, "crew started", nil, map[string]interface{}{"crew": "BookCrew"})
			require.NoError(t, l.Zap.Sync())

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
			assert.Equal(t, "crew started", entry["msg"])
			assert.Equal(t, "INFO", entry["level"])
			assert.Equal(t, "books", entry["service"])
			assert.Equal(t, "BookCrew", entry["crew"])
			assert.Equal(t, instrumentationScope, entry["instrumentation"])
			assert.Contains(t, entry, "timestamp")

			if tt.tracing {
				assert.Equal(t, span.SpanContext().TraceID().String(), entry["trace_id"])
			} else {
				assert.NotContains(t, entry, "trace_id")
			}
		})
	}
}

func TestNewNopDiscards(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() { l.Info("ignored", nil, nil) })
}
