package crew

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Aleph-Alpha/flowtrace/v1/dispatch"
	"github.com/Aleph-Alpha/flowtrace/v1/resolver"
)

// Step is one stage of a flow. prev is the result of the previous step, nil
// for the first one.
type Step struct {
	Name string
	Run  func(ctx context.Context, f *Flow, prev any) (any, error)
}

// Flow runs its steps in order, each one listening to the previous.
type Flow struct {
	ID   string
	Name string
	// Class is the type name of the flow's state, "Flow" when it has none.
	Class string
	State any
	Steps []Step

	// Inputs are the kickoff inputs of the current run.
	Inputs map[string]string

	rt *Runtime
	mu sync.Mutex
}

// NewFlow creates a flow. state is any caller-owned value the steps share.
func (rt *Runtime) NewFlow(name string, state any, steps ...Step) *Flow {
	class := resolver.TypeName(state)
	if class == "" {
		class = "Flow"
	}
	return &Flow{
		ID:    uuid.NewString(),
		Name:  strings.TrimSpace(name),
		Class: class,
		State: state,
		Steps: steps,
		rt:    rt,
	}
}

// KickoffAsync runs the flow in the background. The future resolves to the
// result of the last step.
func (f *Flow) KickoffAsync(ctx context.Context, inputs map[string]string) *dispatch.Future {
	return f.rt.table.CallAsync(ctx, KeyFlowKickoffAsync, f, inputs)
}

// Kickoff runs the flow and waits for it.
func (f *Flow) Kickoff(ctx context.Context, inputs map[string]string) (any, error) {
	return f.KickoffAsync(ctx, inputs).Await(ctx)
}

func (rt *Runtime) flowKickoffAsync(ctx context.Context, recv any, args ...any) *dispatch.Future {
	f, err := recvAs[*Flow](recv)
	if err != nil {
		return dispatch.Resolved(nil, err)
	}
	inputs, err := arg[map[string]string](args, 0, true)
	if err != nil {
		return dispatch.Resolved(nil, err)
	}

	return dispatch.Go(ctx, func(ctx context.Context) (any, error) {
		f.mu.Lock()
		defer f.mu.Unlock()

		f.Inputs = inputs
		var prev any
		for _, step := range f.Steps {
			rt.logger.Debug("flow step", nil, map[string]interface{}{
				"flow": f.Name,
				"step": step.Name,
			})
			out, err := step.Run(ctx, f, prev)
			if err != nil {
				return nil, err
			}
			prev = out
		}
		return prev, nil
	})
}
