package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithAgentStateCopiesMap(t *testing.T) {
	original := WorkflowState{
		AgentStates: map[string]AgentState{
			"gmail": {CurrentStep: 1},
		},
	}

	next := original.WithAgentState("drive", AgentState{CurrentStep: 0})

	assert.Len(t, next.AgentStates, 2)
	assert.Len(t, original.AgentStates, 1)

	// Replacing an existing entry never leaks into earlier state values.
	third := next.WithAgentState("gmail", AgentState{CurrentStep: 5})
	gmail, _ := next.Agent("gmail")
	assert.Equal(t, 1, gmail.CurrentStep)
	gmail, _ = third.Agent("gmail")
	assert.Equal(t, 5, gmail.CurrentStep)
}

func TestWithTaskResultCopiesMap(t *testing.T) {
	original := WorkflowState{TaskResults: map[string]any{"t1": "a"}}
	next := original.WithTaskResult("t2", "b")

	assert.Len(t, original.TaskResults, 1)
	assert.Equal(t, "b", next.TaskResults["t2"])
}

func TestAppendResultDoesNotAliasBackingArray(t *testing.T) {
	base := make([]any, 1, 8)
	base[0] = "first"

	a := appendResult(base, "second")
	b := appendResult(base, "other")

	assert.Equal(t, "second", a[1])
	assert.Equal(t, "other", b[1])
}
