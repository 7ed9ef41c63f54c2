// Package crew is a small agent-orchestration runtime: flows of steps,
// crews of tasks, agents that execute tasks and tools that agents use.
//
// Every boundary method of the runtime (flow kickoff, crew and task
// construction, crew kickoff, task execution, tool use) is invoked through
// the runtime's dispatch.Table. That makes the runtime Instrumentable: an
// instrumentor can wrap those methods by name and restore them later without
// touching any call site.
//
// Basic usage:
//
//	rt := crew.NewRuntime()
//
//	writer := &crew.Agent{Role: "writer", Executor: llmExecutor}
//	outline, _ := rt.NewTask(ctx, crew.TaskConfig{
//	    Description:    "Outline a book about {topic}",
//	    ExpectedOutput: "A list of chapters",
//	    Agent:          writer,
//	})
//	c, _ := rt.NewCrew(ctx, crew.CrewConfig{Name: "OutlineCrew", Tasks: []*crew.Task{outline}})
//
//	flow := rt.NewFlow("BookFlow", &BookState{}, crew.Step{
//	    Name: "generate_outline",
//	    Run: func(ctx context.Context, f *crew.Flow, _ any) (any, error) {
//	        return c.Kickoff(ctx, f.Inputs)
//	    },
//	})
//	out, err := flow.Kickoff(ctx, map[string]string{"topic": "AI"})
//
// Concurrency:
//
// Crews with the Parallel process run their tasks concurrently. Each task
// goroutine receives a context forked through the table, so per-call state
// installed by an instrumentor is never shared between siblings.
package crew
