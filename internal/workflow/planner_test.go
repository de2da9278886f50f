package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas/internal/llm"
)

const validPlanJSON = `[
	{"step_id": 1, "description": "search inbox", "tool": "gmail_search", "expected_output": "message ids", "dependencies": []},
	{"step_id": 2, "description": "fetch messages", "tool": "gmail_get_email", "expected_output": "full messages", "dependencies": ["step 1 ids"]}
]`

func TestPlannerInstallsFreshAgentState(t *testing.T) {
	client := &llm.MockClient{Responses: []string{validPlanJSON}}
	planner := NewPlanner("gmail", []string{"search email", "read email"}, client)

	state := WorkflowState{
		EnhancedPrompt: "find the invoice from ACME",
		AgentStates: map[string]AgentState{
			"gmail": {AgentPrompt: "stale", ExecutionComplete: true, CurrentStep: 9},
		},
	}

	next, err := planner.Plan(context.Background(), state)
	require.NoError(t, err)

	agent, ok := next.Agent("gmail")
	require.True(t, ok)
	assert.Equal(t, "find the invoice from ACME", agent.AgentPrompt)
	require.Len(t, agent.Plan, 2)
	assert.Equal(t, "gmail_search", agent.Plan[0].Tool)
	assert.Equal(t, []string{"step 1 ids"}, agent.Plan[1].Dependencies)
	assert.Equal(t, 0, agent.CurrentStep)
	assert.Empty(t, agent.StepResults)
	assert.False(t, agent.ExecutionComplete)
	assert.Nil(t, agent.FinalResult)

	// Prior entry replaced, input state untouched.
	stale, _ := state.Agent("gmail")
	assert.True(t, stale.ExecutionComplete)
}

func TestPlannerPromptCarriesCapabilities(t *testing.T) {
	client := &llm.MockClient{Responses: []string{validPlanJSON}}
	planner := NewPlanner("drive", []string{"upload files"}, client)

	_, err := planner.Plan(context.Background(), WorkflowState{EnhancedPrompt: "backup reports"})
	require.NoError(t, err)

	calls := client.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Messages, 2)
	assert.Contains(t, calls[0].Messages[0].Content, "planner for drive")
	assert.Contains(t, calls[0].Messages[0].Content, "upload files")
	assert.Equal(t, "backup reports", calls[0].Messages[1].Content)
}

func TestPlannerUnparseableResponseIsFatal(t *testing.T) {
	client := &llm.MockClient{Responses: []string{"I could not produce a plan, sorry."}}
	planner := NewPlanner("gmail", nil, client)

	_, err := planner.Plan(context.Background(), WorkflowState{EnhancedPrompt: "x"})
	require.Error(t, err)

	var parseErr *PlanParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "gmail", parseErr.AgentName)
}

func TestPlannerEmptyPlanIsFatal(t *testing.T) {
	client := &llm.MockClient{Responses: []string{"[]"}}
	planner := NewPlanner("gmail", nil, client)

	_, err := planner.Plan(context.Background(), WorkflowState{EnhancedPrompt: "x"})
	var parseErr *PlanParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestPlannerLLMErrorPropagates(t *testing.T) {
	client := &llm.MockClient{Err: errors.New("upstream down")}
	planner := NewPlanner("gmail", nil, client)

	_, err := planner.Plan(context.Background(), WorkflowState{EnhancedPrompt: "x"})
	require.ErrorContains(t, err, "planner llm call failed")
}

func TestParsePlanMarkdownFences(t *testing.T) {
	steps, err := ParsePlan("```json\n" + validPlanJSON + "\n```")
	require.NoError(t, err)
	assert.Len(t, steps, 2)
}

func TestParsePlanProseWrapped(t *testing.T) {
	steps, err := ParsePlan("Here is the plan you asked for:\n" + validPlanJSON + "\nLet me know if you need changes.")
	require.NoError(t, err)
	assert.Len(t, steps, 2)
}

func TestParsePlanRepairsNearJSON(t *testing.T) {
	// Trailing comma and single quotes, the usual model output damage.
	broken := `[{'step_id': 1, 'description': 'only step', 'tool': 'gmail_search', 'expected_output': 'ids', 'dependencies': [],},]`
	steps, err := ParsePlan(broken)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "only step", steps[0].Description)
}

func TestParsePlanStringStepIDs(t *testing.T) {
	steps, err := ParsePlan(`[{"step_id": "s1", "description": "d", "tool": "t", "expected_output": "o", "dependencies": []}]`)
	require.NoError(t, err)
	assert.Equal(t, "s1", steps[0].StepID)
}
