package crew

import "errors"

var (
	// ErrNoTasks is returned when a crew is created without tasks.
	ErrNoTasks = errors.New("crew has no tasks")

	// ErrEmptyDescription is returned when a task is created without a description.
	ErrEmptyDescription = errors.New("task description is empty")

	// ErrNoAgent is returned when a task is executed without an agent.
	ErrNoAgent = errors.New("task has no agent")

	// ErrNoExecutor is returned when an agent has no executor.
	ErrNoExecutor = errors.New("agent has no executor")

	// ErrUnknownTool is returned when an agent asks for a tool it was not given.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrBadArguments is returned when a bound method is called with
	// arguments of the wrong type.
	ErrBadArguments = errors.New("bad arguments")
)
