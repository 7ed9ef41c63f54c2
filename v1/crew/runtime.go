package crew

import (
	"github.com/Aleph-Alpha/flowtrace/v1/dispatch"
	stdLogger "github.com/Aleph-Alpha/flowtrace/v1/logger"
)

// Method keys of the runtime's boundary methods.
const (
	KeyFlowKickoffAsync = "Flow.KickoffAsync"
	KeyCrewNew          = "Crew.New"
	KeyCrewKickoff      = "Crew.Kickoff"
	KeyCrewKickoffAsync = "Crew.KickoffAsync"
	KeyTaskNew          = "Task.New"
	KeyTaskExecuteCore  = "Task.ExecuteCore"
	KeyToolUsageUse     = "ToolUsage.Use"
)

// Logger defines the interface for logging operations in the crew package.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Runtime owns the method table every flow, crew and task dispatches through.
type Runtime struct {
	table  *dispatch.Table
	logger Logger
}

// Option customises a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(logger Logger) Option {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// NewRuntime creates a runtime with all boundary methods bound.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		table:  dispatch.NewTable(),
		logger: stdLogger.NewNop(),
	}
	for _, opt := range opts {
		opt(rt)
	}

	// keys are constants, binding cannot collide
	_ = rt.table.BindAsync(KeyFlowKickoffAsync, rt.flowKickoffAsync)
	_ = rt.table.Bind(KeyCrewNew, rt.crewNew)
	_ = rt.table.Bind(KeyCrewKickoff, rt.crewKickoff)
	_ = rt.table.BindAsync(KeyCrewKickoffAsync, rt.crewKickoffAsync)
	_ = rt.table.Bind(KeyTaskNew, rt.taskNew)
	_ = rt.table.Bind(KeyTaskExecuteCore, rt.taskExecuteCore)
	_ = rt.table.Bind(KeyToolUsageUse, rt.toolUsageUse)

	return rt
}

// Methods returns the runtime's method table.
func (rt *Runtime) Methods() *dispatch.Table {
	return rt.table
}
