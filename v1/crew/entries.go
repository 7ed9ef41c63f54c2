package crew

import (
	"github.com/Aleph-Alpha/flowtrace/v1/registry"
	"github.com/Aleph-Alpha/flowtrace/v1/resolver"
	"github.com/Aleph-Alpha/flowtrace/v1/tracer"
)

// Span attribute keys set by the default templates.
const (
	AttrEventType     = "event.type"
	AttrFlowName      = "flow.name"
	AttrFlowClass     = "flow.class"
	AttrFlowID        = "flow.id"
	AttrCrewName      = "crew.name"
	AttrCrewID        = "crew.id"
	AttrCrewProcess   = "crew.process"
	AttrCrewTaskCount = "crew.task_count"
	AttrTaskDesc      = "task.description"
	AttrTaskID        = "task.id"
	AttrTaskExpected  = "task.expected_output"
	AttrAgentRole     = "agent.role"
	AttrToolName      = "tool.name"
)

const (
	unknownTaskDesc  = "Unknown Task"
	unknownToolName  = "Unknown Tool"
	unknownAgentRole = "Unknown Agent"
	missingAgentRole = "No Agent"
)

// Entries returns the default interception rules of the runtime. Task
// creation and tool usage are optional: an instrumentor skips them when
// they cannot be installed.
func (rt *Runtime) Entries() []registry.Entry {
	return []registry.Entry{
		{Target: "Flow", Method: "KickoffAsync", Kind: tracer.SpanKindRoot, Template: flowTemplate, Enabled: true},
		{Target: "Crew", Method: "New", Kind: tracer.SpanKindLeaf, Template: crewCreatedTemplate, Enabled: true},
		{Target: "Crew", Method: "Kickoff", Kind: tracer.SpanKindNested, Template: crewTemplate, Enabled: true},
		{Target: "Crew", Method: "KickoffAsync", Kind: tracer.SpanKindNested, Template: crewTemplate, Enabled: true},
		{Target: "Task", Method: "New", Kind: tracer.SpanKindLeaf, Template: taskCreatedTemplate, Enabled: true, Optional: true},
		{Target: "Task", Method: "ExecuteCore", Kind: tracer.SpanKindNested, Template: taskTemplate, Enabled: true},
		{Target: "ToolUsage", Method: "Use", Kind: tracer.SpanKindLeaf, Template: toolTemplate, Enabled: true, Optional: true},
	}
}

func flowTemplate(target any, _ []any) (resolver.Result, error) {
	f, err := recvAs[*Flow](target)
	if err != nil {
		return resolver.Result{}, err
	}
	name := f.Name
	if name == "" {
		name = f.Class
	}
	return resolver.Result{
		Name: "Flow Execution: " + name,
		Attributes: map[string]interface{}{
			AttrFlowName:  name,
			AttrFlowClass: f.Class,
			AttrEventType: "flow_execution",
			AttrFlowID:    f.ID,
		},
	}, nil
}

func crewAttributes(id, name string, process Process, tasks int, event string) map[string]interface{} {
	return map[string]interface{}{
		AttrCrewName:      name,
		AttrCrewID:        id,
		AttrCrewProcess:   process.String(),
		AttrCrewTaskCount: tasks,
		AttrEventType:     event,
	}
}

// crewCreatedTemplate names the span from the config, since the crew is
// still being built when the span starts.
func crewCreatedTemplate(target any, args []any) (resolver.Result, error) {
	c, err := recvAs[*Crew](target)
	if err != nil {
		return resolver.Result{}, err
	}
	cfg, err := arg[CrewConfig](args, 0, false)
	if err != nil {
		return resolver.Result{}, err
	}
	name := crewName(cfg.Name)
	return resolver.Result{
		Name:       "Crew Created: " + name,
		Attributes: crewAttributes(c.ID, name, cfg.Process, len(cfg.Tasks), "crew_created"),
	}, nil
}

func crewTemplate(target any, _ []any) (resolver.Result, error) {
	c, err := recvAs[*Crew](target)
	if err != nil {
		return resolver.Result{}, err
	}
	return resolver.Result{
		Name:       "Crew Execution: " + crewName(c.Name),
		Attributes: crewAttributes(c.ID, crewName(c.Name), c.Process, len(c.Tasks), "crew_execution"),
	}, nil
}

func taskAttributes(id, desc, expected, event string) map[string]interface{} {
	attrs := map[string]interface{}{
		AttrTaskDesc:  desc,
		AttrTaskID:    id,
		AttrEventType: event,
	}
	if expected != "" {
		attrs[AttrTaskExpected] = expected
	}
	return attrs
}

func taskLabel(desc string) string {
	if desc == "" {
		desc = unknownTaskDesc
	}
	return resolver.Truncate(desc, resolver.DefaultMaxNameLength)
}

func taskCreatedTemplate(target any, args []any) (resolver.Result, error) {
	t, err := recvAs[*Task](target)
	if err != nil {
		return resolver.Result{}, err
	}
	cfg, err := arg[TaskConfig](args, 0, false)
	if err != nil {
		return resolver.Result{}, err
	}
	return resolver.Result{
		Name:       "Task Created: " + taskLabel(cfg.Description),
		Attributes: taskAttributes(t.ID, cfg.Description, cfg.ExpectedOutput, "task_created"),
	}, nil
}

func taskTemplate(target any, args []any) (resolver.Result, error) {
	t, err := recvAs[*Task](target)
	if err != nil {
		return resolver.Result{}, err
	}
	attrs := taskAttributes(t.ID, t.Description, t.ExpectedOutput, "task_execution")

	role := missingAgentRole
	if agent, _ := arg[*Agent](args, 0, true); agent != nil {
		role = agent.Role
		if role == "" {
			role = unknownAgentRole
		}
	}
	attrs[AttrAgentRole] = role

	return resolver.Result{
		Name:       "Task Execution: " + taskLabel(t.Description),
		Attributes: attrs,
	}, nil
}

func toolTemplate(_ any, args []any) (resolver.Result, error) {
	name := unknownToolName
	if tool, _ := arg[*Tool](args, 0, true); tool != nil && tool.Name != "" {
		name = tool.Name
	}
	return resolver.Result{
		Name: "Tool: " + name,
		Attributes: map[string]interface{}{
			AttrToolName:  name,
			AttrEventType: "tool_usage",
		},
	}, nil
}
