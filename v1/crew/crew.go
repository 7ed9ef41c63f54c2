package crew

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Aleph-Alpha/flowtrace/v1/dispatch"
)

// Process decides how a crew runs its tasks.
type Process int

const (
	// Sequential runs tasks in order, feeding every output to later tasks.
	Sequential Process = iota
	// Parallel runs all tasks concurrently without shared history.
	Parallel
)

func (p Process) String() string {
	switch p {
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	default:
		return "unknown"
	}
}

// CrewConfig describes a crew to create.
type CrewConfig struct {
	// Name defaults to "Crew".
	Name    string
	Process Process
	Agents  []*Agent
	Tasks   []*Task
}

// Crew is a group of agents working through a list of tasks.
type Crew struct {
	ID      string
	Name    string
	Process Process
	Agents  []*Agent
	Tasks   []*Task

	rt *Runtime
}

// CrewOutput is the result of a crew kickoff.
type CrewOutput struct {
	// Raw is the output of the last task.
	Raw   string
	Tasks []TaskOutput
}

// NewCrew creates a crew through the runtime's method table.
func (rt *Runtime) NewCrew(ctx context.Context, cfg CrewConfig) (*Crew, error) {
	c := &Crew{ID: uuid.NewString(), rt: rt}
	if _, err := rt.table.Call(ctx, KeyCrewNew, c, cfg); err != nil {
		return nil, err
	}
	return c, nil
}

func (rt *Runtime) crewNew(_ context.Context, recv any, args ...any) (any, error) {
	c, err := recvAs[*Crew](recv)
	if err != nil {
		return nil, err
	}
	cfg, err := arg[CrewConfig](args, 0, false)
	if err != nil {
		return nil, err
	}
	if len(cfg.Tasks) == 0 {
		return nil, ErrNoTasks
	}

	c.Name = crewName(cfg.Name)
	c.Process = cfg.Process
	c.Agents = cfg.Agents
	c.Tasks = cfg.Tasks
	return c, nil
}

func crewName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Crew"
	}
	return name
}

// Kickoff runs every task of the crew and returns their outputs.
func (c *Crew) Kickoff(ctx context.Context, inputs map[string]string) (CrewOutput, error) {
	out, err := c.rt.table.Call(ctx, KeyCrewKickoff, c, inputs)
	if err != nil {
		return CrewOutput{}, err
	}
	return out.(CrewOutput), nil
}

// KickoffAsync runs the crew in the background. The future resolves to a
// CrewOutput.
func (c *Crew) KickoffAsync(ctx context.Context, inputs map[string]string) *dispatch.Future {
	return c.rt.table.CallAsync(ctx, KeyCrewKickoffAsync, c, inputs)
}

func (rt *Runtime) crewKickoff(ctx context.Context, recv any, args ...any) (any, error) {
	c, err := recvAs[*Crew](recv)
	if err != nil {
		return nil, err
	}
	inputs, err := arg[map[string]string](args, 0, true)
	if err != nil {
		return nil, err
	}
	return rt.runCrew(ctx, c, inputs)
}

func (rt *Runtime) crewKickoffAsync(ctx context.Context, recv any, args ...any) *dispatch.Future {
	c, err := recvAs[*Crew](recv)
	if err != nil {
		return dispatch.Resolved(nil, err)
	}
	inputs, err := arg[map[string]string](args, 0, true)
	if err != nil {
		return dispatch.Resolved(nil, err)
	}
	return dispatch.Go(ctx, func(ctx context.Context) (any, error) {
		return rt.runCrew(ctx, c, inputs)
	})
}

func (rt *Runtime) runCrew(ctx context.Context, c *Crew, inputs map[string]string) (CrewOutput, error) {
	rt.logger.Debug("crew kickoff", nil, map[string]interface{}{
		"crew":    c.Name,
		"crew_id": c.ID,
		"process": c.Process.String(),
		"tasks":   len(c.Tasks),
	})

	var (
		outputs []TaskOutput
		err     error
	)
	if c.Process == Parallel {
		outputs, err = rt.runParallel(ctx, c, inputs)
	} else {
		outputs, err = rt.runSequential(ctx, c, inputs)
	}
	if err != nil {
		rt.logger.Error("crew kickoff failed", err, map[string]interface{}{"crew": c.Name})
		return CrewOutput{}, err
	}

	return CrewOutput{Raw: outputs[len(outputs)-1].Raw, Tasks: outputs}, nil
}

func (rt *Runtime) runSequential(ctx context.Context, c *Crew, inputs map[string]string) ([]TaskOutput, error) {
	outputs := make([]TaskOutput, 0, len(c.Tasks))
	history := make([]string, 0, len(c.Tasks))

	for _, t := range c.Tasks {
		out, err := t.Execute(ctx, c.agentFor(t), inputs, history)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
		history = append(history, out.Raw)
	}
	return outputs, nil
}

func (rt *Runtime) runParallel(ctx context.Context, c *Crew, inputs map[string]string) ([]TaskOutput, error) {
	outputs := make([]TaskOutput, len(c.Tasks))
	g, gctx := errgroup.WithContext(ctx)

	for i, t := range c.Tasks {
		taskCtx := rt.table.Fork(gctx)
		g.Go(func() error {
			out, err := t.Execute(taskCtx, c.agentFor(t), inputs, nil)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// agentFor returns the task's agent, else the crew's first agent.
func (c *Crew) agentFor(t *Task) *Agent {
	if t.Agent != nil {
		return t.Agent
	}
	if len(c.Agents) > 0 {
		return c.Agents[0]
	}
	return nil
}
