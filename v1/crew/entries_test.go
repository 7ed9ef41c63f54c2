package crew

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/flowtrace/v1/tracer"
)

func TestEntriesCoverBoundMethods(t *testing.T) {
	rt := NewRuntime()
	entries := rt.Entries()

	require.Len(t, entries, 7)
	for _, e := range entries {
		assert.True(t, rt.Methods().Has(e.Key()), e.Key())
		assert.True(t, e.Kind.Valid(), e.Key())
		assert.True(t, e.Enabled, e.Key())
		assert.NotNil(t, e.Template, e.Key())
	}
	assert.Equal(t, tracer.SpanKindRoot, entries[0].Kind)
	assert.True(t, rt.Methods().IsAsync(entries[0].Key()))
}

func TestFlowTemplate(t *testing.T) {
	rt := NewRuntime()

	named := rt.NewFlow("BookFlow", &BookState{})
	res, err := flowTemplate(named, nil)
	require.NoError(t, err)
	assert.Equal(t, "Flow Execution: BookFlow", res.Name)
	assert.Equal(t, "BookState", res.Attributes[AttrFlowClass])
	assert.Equal(t, named.ID, res.Attributes[AttrFlowID])
	assert.Equal(t, "flow_execution", res.Attributes[AttrEventType])

	unnamed := rt.NewFlow("", nil)
	res, err = flowTemplate(unnamed, nil)
	require.NoError(t, err)
	assert.Equal(t, "Flow Execution: Flow", res.Name)

	_, err = flowTemplate("nope", nil)
	assert.ErrorIs(t, err, ErrBadArguments)
}

func TestCrewTemplates(t *testing.T) {
	rt := NewRuntime()
	task := &Task{ID: "t1", Description: "d"}
	cfg := CrewConfig{Name: "OutlineCrew", Process: Parallel, Tasks: []*Task{task, task}}
	c := &Crew{ID: "c1"}

	res, err := crewCreatedTemplate(c, []any{cfg})
	require.NoError(t, err)
	assert.Equal(t, "Crew Created: OutlineCrew", res.Name)
	assert.Equal(t, 2, res.Attributes[AttrCrewTaskCount])
	assert.Equal(t, "parallel", res.Attributes[AttrCrewProcess])
	assert.Equal(t, "c1", res.Attributes[AttrCrewID])

	c, err = rt.NewCrew(context.Background(), cfg)
	require.NoError(t, err)
	res, err = crewTemplate(c, nil)
	require.NoError(t, err)
	assert.Equal(t, "Crew Execution: OutlineCrew", res.Name)
	assert.Equal(t, "crew_execution", res.Attributes[AttrEventType])
}

func TestTaskTemplates(t *testing.T) {
	long := strings.Repeat("x", 80)
	task := &Task{ID: "t1", Description: long, ExpectedOutput: "a chapter"}

	res, err := taskTemplate(task, []any{&Agent{Role: "writer"}})
	require.NoError(t, err)
	assert.Equal(t, "Task Execution: "+strings.Repeat("x", 50)+"...", res.Name)
	assert.Equal(t, long, res.Attributes[AttrTaskDesc])
	assert.Equal(t, "a chapter", res.Attributes[AttrTaskExpected])
	assert.Equal(t, "writer", res.Attributes[AttrAgentRole])

	res, err = taskTemplate(task, []any{(*Agent)(nil)})
	require.NoError(t, err)
	assert.Equal(t, "No Agent", res.Attributes[AttrAgentRole])

	res, err = taskTemplate(task, []any{&Agent{}})
	require.NoError(t, err)
	assert.Equal(t, "Unknown Agent", res.Attributes[AttrAgentRole])

	res, err = taskCreatedTemplate(&Task{ID: "t2"}, []any{TaskConfig{Description: "short"}})
	require.NoError(t, err)
	assert.Equal(t, "Task Created: short", res.Name)
	assert.Equal(t, "task_created", res.Attributes[AttrEventType])
	_, hasExpected := res.Attributes[AttrTaskExpected]
	assert.False(t, hasExpected)
}

func TestToolTemplate(t *testing.T) {
	res, err := toolTemplate(&ToolUsage{}, []any{&Tool{Name: "search"}, "q"})
	require.NoError(t, err)
	assert.Equal(t, "Tool: search", res.Name)
	assert.Equal(t, "tool_usage", res.Attributes[AttrEventType])

	res, err = toolTemplate(&ToolUsage{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Tool: Unknown Tool", res.Name)
}
