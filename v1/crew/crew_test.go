package crew

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type BookState struct {
	Topic string
}

// echoExecutor answers with the prompt and every tool it was asked to use.
func echoExecutor(tools ...string) Executor {
	return ExecutorFunc(func(ctx context.Context, req Request) (string, error) {
		parts := []string{req.Prompt}
		for _, name := range tools {
			out, err := req.Tools.Use(ctx, name, req.Agent.Role)
			if err != nil {
				return "", err
			}
			parts = append(parts, out)
		}
		parts = append(parts, req.Context...)
		return strings.Join(parts, "|"), nil
	})
}

func newTask(t *testing.T, rt *Runtime, desc string, agent *Agent) *Task {
	t.Helper()
	task, err := rt.NewTask(context.Background(), TaskConfig{Description: desc, Agent: agent})
	require.NoError(t, err)
	return task
}

func TestInterpolate(t *testing.T) {
	inputs := map[string]string{"topic": "AI", "goal": "inform"}

	assert.Equal(t, "Write about AI to inform", Interpolate("Write about {topic} to {goal}", inputs))
	assert.Equal(t, "keep {unknown}", Interpolate("keep {unknown}", inputs))
	assert.Equal(t, "no inputs {topic}", Interpolate("no inputs {topic}", nil))
}

func TestNewTaskAndCrewValidate(t *testing.T) {
	rt := NewRuntime()
	ctx := context.Background()

	_, err := rt.NewTask(ctx, TaskConfig{Description: "  "})
	assert.ErrorIs(t, err, ErrEmptyDescription)

	_, err = rt.NewCrew(ctx, CrewConfig{Name: "empty"})
	assert.ErrorIs(t, err, ErrNoTasks)

	task := newTask(t, rt, "outline", nil)
	c, err := rt.NewCrew(ctx, CrewConfig{Tasks: []*Task{task}})
	require.NoError(t, err)
	assert.Equal(t, "Crew", c.Name)
	assert.NotEmpty(t, c.ID)
	assert.NotEmpty(t, task.ID)
}

func TestSequentialCrewFeedsHistory(t *testing.T) {
	rt := NewRuntime()
	agent := &Agent{Role: "writer", Executor: echoExecutor()}

	first := newTask(t, rt, "outline {topic}", agent)
	second := newTask(t, rt, "write {topic}", agent)
	c, err := rt.NewCrew(context.Background(), CrewConfig{Name: "BookCrew", Tasks: []*Task{first, second}})
	require.NoError(t, err)

	out, err := c.Kickoff(context.Background(), map[string]string{"topic": "AI"})
	require.NoError(t, err)

	require.Len(t, out.Tasks, 2)
	assert.Equal(t, "outline AI", out.Tasks[0].Raw)
	assert.Equal(t, "write AI|outline AI", out.Raw)
	assert.Equal(t, "writer", out.Tasks[1].Agent)

	got, ok := second.Output()
	require.True(t, ok)
	assert.Equal(t, out.Raw, got.Raw)
}

func TestParallelCrewRunsAllTasks(t *testing.T) {
	rt := NewRuntime()
	var forks atomic.Int32
	rt.Methods().SetForker(func(ctx context.Context) context.Context {
		forks.Add(1)
		return ctx
	})

	agent := &Agent{Role: "writer", Executor: echoExecutor()}
	tasks := []*Task{
		newTask(t, rt, "chapter 1", agent),
		newTask(t, rt, "chapter 2", agent),
		newTask(t, rt, "chapter 3", agent),
	}
	c, err := rt.NewCrew(context.Background(), CrewConfig{Process: Parallel, Tasks: tasks})
	require.NoError(t, err)

	out, err := c.Kickoff(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, out.Tasks, 3)
	for i, o := range out.Tasks {
		assert.Equal(t, tasks[i].Description, o.Raw)
	}
	assert.Equal(t, int32(3), forks.Load())
}

func TestParallelCrewStopsOnError(t *testing.T) {
	rt := NewRuntime()
	boom := errors.New("llm unavailable")
	failing := &Agent{Role: "broken", Executor: ExecutorFunc(func(context.Context, Request) (string, error) {
		return "", boom
	})}
	ok := &Agent{Role: "writer", Executor: echoExecutor()}

	c, err := rt.NewCrew(context.Background(), CrewConfig{
		Process: Parallel,
		Tasks:   []*Task{newTask(t, rt, "a", ok), newTask(t, rt, "b", failing)},
	})
	require.NoError(t, err)

	_, err = c.Kickoff(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
}

func TestTaskWithoutAgentFails(t *testing.T) {
	rt := NewRuntime()
	task := newTask(t, rt, "orphan", nil)

	_, err := task.Execute(context.Background(), nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoAgent)

	_, err = task.Execute(context.Background(), &Agent{Role: "idle"}, nil, nil)
	assert.ErrorIs(t, err, ErrNoExecutor)
}

func TestCrewFallsBackToFirstAgent(t *testing.T) {
	rt := NewRuntime()
	agent := &Agent{Role: "lead", Executor: echoExecutor()}

	c, err := rt.NewCrew(context.Background(), CrewConfig{
		Agents: []*Agent{agent},
		Tasks:  []*Task{newTask(t, rt, "plan", nil)},
	})
	require.NoError(t, err)

	out, err := c.Kickoff(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "lead", out.Tasks[0].Agent)
}

func TestToolUsage(t *testing.T) {
	rt := NewRuntime()
	search := &Tool{Name: "search", Run: func(_ context.Context, input string) (string, error) {
		return "results for " + input, nil
	}}
	agent := &Agent{Role: "researcher", Tools: []*Tool{search}, Executor: echoExecutor("search")}
	task := newTask(t, rt, "research", agent)

	out, err := task.Execute(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "research|results for researcher", out.Raw)

	agent.Executor = echoExecutor("missing")
	_, err = task.Execute(context.Background(), nil, nil, nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestFlowRunsStepsInOrder(t *testing.T) {
	rt := NewRuntime()
	agent := &Agent{Role: "writer", Executor: echoExecutor()}
	c, err := rt.NewCrew(context.Background(), CrewConfig{Tasks: []*Task{newTask(t, rt, "outline {topic}", agent)}})
	require.NoError(t, err)

	flow := rt.NewFlow("", &BookState{Topic: "AI"},
		Step{Name: "outline", Run: func(ctx context.Context, f *Flow, _ any) (any, error) {
			return c.Kickoff(ctx, f.Inputs)
		}},
		Step{Name: "save", Run: func(_ context.Context, f *Flow, prev any) (any, error) {
			return strings.ToUpper(prev.(CrewOutput).Raw), nil
		}},
	)
	assert.Equal(t, "BookState", flow.Class)

	out, err := flow.Kickoff(context.Background(), map[string]string{"topic": "AI"})
	require.NoError(t, err)
	assert.Equal(t, "OUTLINE AI", out)
}

func TestCrewKickoffAsync(t *testing.T) {
	rt := NewRuntime()
	agent := &Agent{Role: "writer", Executor: echoExecutor()}
	c, err := rt.NewCrew(context.Background(), CrewConfig{Tasks: []*Task{newTask(t, rt, "draft", agent)}})
	require.NoError(t, err)

	v, err := c.KickoffAsync(context.Background(), nil).Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "draft", v.(CrewOutput).Raw)
}

func TestBadArguments(t *testing.T) {
	rt := NewRuntime()

	_, err := rt.Methods().Call(context.Background(), KeyCrewKickoff, "not a crew")
	assert.ErrorIs(t, err, ErrBadArguments)

	_, err = rt.Methods().Call(context.Background(), KeyToolUsageUse, &ToolUsage{}, 42)
	assert.ErrorIs(t, err, ErrBadArguments)
}
