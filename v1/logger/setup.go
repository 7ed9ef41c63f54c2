package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a wrapper around Uber's Zap logger.
// It provides a simplified interface to the underlying Zap logger,
// with additional functionality specific to the instrumentation layer.
type Logger struct {
	// Zap is the underlying zap.Logger instance
	// This is exposed to allow direct access to Zap-specific functionality
	// when needed, but most logging should go through the wrapper methods.
	Zap *zap.Logger

	// tracingEnabled indicates whether tracing integration is enabled
	// When true, logging methods will automatically extract trace context
	// and include trace/span IDs in log entries
	tracingEnabled bool
}

// NewLoggerClient builds the instrumentation logger from cfg, writing JSON
// entries to stderr.
//
// Parameters:
//   - cfg: level, service name and whether *WithContext methods add trace ids
//
// Returns a logger ready for use. Building it cannot fail.
//
// Every entry carries:
//   - ISO8601 "timestamp" and a capital level ("INFO", "ERROR")
//   - "pid", "service" and "instrumentation" fields
//   - the caller's file and line
//
// Example:
//
//	log := logger.NewLoggerClient(logger.Config{
//	    Level:         logger.Info,
//	    EnableTracing: true,
//	})
//	log.InfoWithContext(ctx, "crew started", nil, nil)
func NewLoggerClient(cfg Config) *Logger {
	return NewWithWriter(cfg, zapcore.Lock(os.Stderr))
}

// NewWithWriter is NewLoggerClient writing to ws, e.g. a buffer in tests or
// a rotating file.
func NewWithWriter(cfg Config, ws zapcore.WriteSyncer) *Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeDuration = zapcore.MillisDurationEncoder

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "flowtrace"
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), ws, zap.NewAtomicLevelAt(levelOf(cfg.Level)))
	z := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(
			zap.Int("pid", os.Getpid()),
			zap.String("service", serviceName),
			zap.String("instrumentation", instrumentationScope),
		),
	)

	return NewWithZap(z, cfg.EnableTracing)
}

// instrumentationScope names the library in every entry; it matches the
// tracer's instrumentation scope.
const instrumentationScope = "github.com/Aleph-Alpha/flowtrace"

func levelOf(level string) zapcore.Level {
	switch level {
	case Debug:
		return zap.DebugLevel
	case Warning:
		return zap.WarnLevel
	case Error:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// NewNop returns a logger that discards everything. Components fall back to
// it when no logger is supplied.
func NewNop() *Logger {
	return &Logger{Zap: zap.NewNop()}
}

// NewWithZap wraps an existing zap logger, e.g. one built with zaptest or an
// observer core in tests.
func NewWithZap(z *zap.Logger, enableTracing bool) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{Zap: z, tracingEnabled: enableTracing}
}
