package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas/internal/google"
	"atlas/internal/llm"
	"atlas/internal/mailcache"
	"atlas/internal/workflow"
)

const twoStepPlan = `[
	{"step_id": 1, "description": "search for the invoice email", "tool": "gmail_search", "expected_output": "matching messages", "dependencies": []},
	{"step_id": 2, "description": "fetch the found email", "tool": "gmail_get_email", "expected_output": "full message", "dependencies": ["step 1"]}
]`

func testSupervisor(t *testing.T, client llm.Client) *Supervisor {
	t.Helper()
	gmail := google.NewFakeGmail(google.EmailMessage{
		MessageID: "18c2f4a9b3e1d507",
		Subject:   "Invoice #42",
		Body:      "amount due: $100",
	})
	cache := mailcache.NewCache("u1", 100)

	supervisor, err := NewSupervisor(client,
		GmailAgent(gmail, cache),
		DriveAgent(google.NewFakeDrive()),
		CalendarAgent(google.NewFakeCalendar()),
		TasksAgent(google.NewFakeTasks()),
	)
	require.NoError(t, err)
	return supervisor
}

func TestRunDrivesPlanToCompletion(t *testing.T) {
	// Round 1: routing answer. Round 2: the plan. Further rounds unused.
	client := &llm.MockClient{Responses: []string{"gmail", twoStepPlan}}
	supervisor := testSupervisor(t, client)

	outcome, err := supervisor.Run(context.Background(), "find the invoice from ACME")
	require.NoError(t, err)

	assert.Equal(t, "gmail", outcome.Agent)
	assert.Equal(t, 2, outcome.Steps)

	compiled, ok := outcome.FinalResult.(workflow.CompiledResult)
	require.True(t, ok)
	assert.Equal(t, "Completed 2 steps successfully", compiled.Summary)

	entry, ok := compiled.FinalOutput.(mailcache.Entry)
	require.True(t, ok)
	assert.Equal(t, "Invoice #42", entry.Subject)

	agent, ok := outcome.State.Agent("gmail")
	require.True(t, ok)
	assert.True(t, agent.ExecutionComplete)
}

func TestRouteFallsBackOnUnknownAnswer(t *testing.T) {
	client := &llm.MockClient{Responses: []string{"calendar-agent-3000"}}
	supervisor := testSupervisor(t, client)

	assert.Equal(t, "gmail", supervisor.Route(context.Background(), "whatever"))
}

func TestRouteNormalizesCase(t *testing.T) {
	client := &llm.MockClient{Responses: []string{"  Drive\n"}}
	supervisor := testSupervisor(t, client)

	assert.Equal(t, "drive", supervisor.Route(context.Background(), "organize my files"))
}

func TestRunSurfacesPlanningFailure(t *testing.T) {
	client := &llm.MockClient{Responses: []string{"gmail", "no plan today"}}
	supervisor := testSupervisor(t, client)

	_, err := supervisor.Run(context.Background(), "find the invoice")
	require.Error(t, err)

	var parseErr *workflow.PlanParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestDefinitionRegistryIncludesUtilities(t *testing.T) {
	def := TasksAgent(google.NewFakeTasks())
	registry, err := def.Registry()
	require.NoError(t, err)

	_, ok := registry.Resolve("current_datetime")
	assert.True(t, ok)
	_, ok = registry.Resolve("tasks_create_task")
	assert.True(t, ok)
}
