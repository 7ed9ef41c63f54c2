package crew

import (
	"context"
	"fmt"
)

// Agent executes tasks through its Executor.
type Agent struct {
	Role      string
	Goal      string
	Backstory string
	Tools     []*Tool
	Executor  Executor
}

// Request is everything an executor needs to perform one task.
type Request struct {
	Agent *Agent
	Task  *Task
	// Prompt is the interpolated task description and expected output.
	Prompt string
	// Context holds the raw outputs of earlier tasks in a sequential crew.
	Context []string
	// Tools gives access to the tools of the agent and the task.
	Tools *Toolbox
}

// Executor turns a task request into an answer, typically by calling an LLM.
type Executor interface {
	Execute(ctx context.Context, req Request) (string, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, req Request) (string, error)

// Execute calls f(ctx, req).
func (f ExecutorFunc) Execute(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Tool is a named capability an agent can use.
type Tool struct {
	Name        string
	Description string
	Run         func(ctx context.Context, input string) (string, error)
}

// ToolUsage is the record of an agent using tools for one task.
type ToolUsage struct {
	Agent *Agent
	Task  *Task
}

// Toolbox resolves tool names for an executor and runs them through the
// runtime's method table.
type Toolbox struct {
	rt    *Runtime
	usage *ToolUsage
	tools map[string]*Tool
}

func newToolbox(rt *Runtime, agent *Agent, task *Task) *Toolbox {
	tb := &Toolbox{
		rt:    rt,
		usage: &ToolUsage{Agent: agent, Task: task},
		tools: make(map[string]*Tool),
	}
	if agent != nil {
		for _, t := range agent.Tools {
			tb.tools[t.Name] = t
		}
	}
	if task != nil {
		for _, t := range task.Tools {
			tb.tools[t.Name] = t
		}
	}
	return tb
}

// Names returns the names of the available tools.
func (tb *Toolbox) Names() []string {
	names := make([]string, 0, len(tb.tools))
	for name := range tb.tools {
		names = append(names, name)
	}
	return names
}

// Use runs the named tool with input.
func (tb *Toolbox) Use(ctx context.Context, name, input string) (string, error) {
	tool, ok := tb.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	out, err := tb.rt.table.Call(ctx, KeyToolUsageUse, tb.usage, tool, input)
	if err != nil {
		return "", err
	}
	s, _ := out.(string)
	return s, nil
}

func (rt *Runtime) toolUsageUse(ctx context.Context, _ any, args ...any) (any, error) {
	tool, err := arg[*Tool](args, 0, false)
	if err != nil {
		return nil, err
	}
	input, err := arg[string](args, 1, true)
	if err != nil {
		return nil, err
	}
	if tool.Run == nil {
		return "", fmt.Errorf("%w: %s has no implementation", ErrUnknownTool, tool.Name)
	}
	return tool.Run(ctx, input)
}
