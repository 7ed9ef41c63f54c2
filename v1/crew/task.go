package crew

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// TaskConfig describes a task to create.
type TaskConfig struct {
	Description    string
	ExpectedOutput string
	Agent          *Agent
	Tools          []*Tool
}

// Task is one unit of work performed by an agent.
type Task struct {
	ID             string
	Description    string
	ExpectedOutput string
	Agent          *Agent
	Tools          []*Tool

	rt     *Runtime
	mu     sync.Mutex
	output *TaskOutput
}

// TaskOutput is the result of a finished task.
type TaskOutput struct {
	TaskID      string
	Description string
	Raw         string
	Agent       string
}

// NewTask creates a task through the runtime's method table.
func (rt *Runtime) NewTask(ctx context.Context, cfg TaskConfig) (*Task, error) {
	t := &Task{ID: uuid.NewString(), rt: rt}
	if _, err := rt.table.Call(ctx, KeyTaskNew, t, cfg); err != nil {
		return nil, err
	}
	return t, nil
}

func (rt *Runtime) taskNew(_ context.Context, recv any, args ...any) (any, error) {
	t, err := recvAs[*Task](recv)
	if err != nil {
		return nil, err
	}
	cfg, err := arg[TaskConfig](args, 0, false)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Description) == "" {
		return nil, ErrEmptyDescription
	}

	t.Description = cfg.Description
	t.ExpectedOutput = cfg.ExpectedOutput
	t.Agent = cfg.Agent
	t.Tools = cfg.Tools
	return t, nil
}

// Execute runs the task with agent, or with the task's own agent when agent
// is nil. inputs are interpolated into the description and history carries
// outputs of earlier tasks.
func (t *Task) Execute(ctx context.Context, agent *Agent, inputs map[string]string, history []string) (TaskOutput, error) {
	if agent == nil {
		agent = t.Agent
	}
	out, err := t.rt.table.Call(ctx, KeyTaskExecuteCore, t, agent, inputs, history)
	if err != nil {
		return TaskOutput{}, err
	}
	return out.(TaskOutput), nil
}

// Output returns the output of the last successful execution.
func (t *Task) Output() (TaskOutput, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.output == nil {
		return TaskOutput{}, false
	}
	return *t.output, true
}

func (rt *Runtime) taskExecuteCore(ctx context.Context, recv any, args ...any) (any, error) {
	t, err := recvAs[*Task](recv)
	if err != nil {
		return nil, err
	}
	agent, err := arg[*Agent](args, 0, true)
	if err != nil {
		return nil, err
	}
	inputs, err := arg[map[string]string](args, 1, true)
	if err != nil {
		return nil, err
	}
	history, err := arg[[]string](args, 2, true)
	if err != nil {
		return nil, err
	}

	if agent == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoAgent, t.ID)
	}
	if agent.Executor == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoExecutor, agent.Role)
	}

	prompt := Interpolate(t.Description, inputs)
	if t.ExpectedOutput != "" {
		prompt += "\n\nExpected output: " + Interpolate(t.ExpectedOutput, inputs)
	}

	raw, err := agent.Executor.Execute(ctx, Request{
		Agent:   agent,
		Task:    t,
		Prompt:  prompt,
		Context: history,
		Tools:   newToolbox(rt, agent, t),
	})
	if err != nil {
		return nil, err
	}

	out := TaskOutput{
		TaskID:      t.ID,
		Description: t.Description,
		Raw:         raw,
		Agent:       agent.Role,
	}
	t.mu.Lock()
	t.output = &out
	t.mu.Unlock()

	rt.logger.Debug("task finished", nil, map[string]interface{}{
		"task_id": t.ID,
		"agent":   agent.Role,
	})
	return out, nil
}
