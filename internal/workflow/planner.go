package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"atlas/internal/llm"
	"atlas/internal/logging"
)

// PlanParseError is returned when the LLM response cannot be parsed as an
// ordered step array. Planning never degrades to an empty plan.
type PlanParseError struct {
	AgentName string
	Raw       string
	Err       error
}

func (e *PlanParseError) Error() string {
	return fmt.Sprintf("agent %q: plan response not parseable: %v", e.AgentName, e.Err)
}

func (e *PlanParseError) Unwrap() error {
	return e.Err
}

const plannerSystemPrompt = `You are the planner for %s with these capabilities:
%s

You will create a detailed execution plan.
Break the task down into specific steps that can be executed sequentially.

Return your plan as a JSON array of steps:
[
    {
        "step_id": 1,
        "description": "What to do in this step",
        "tool": "which tool or agent to use",
        "expected_output": "what this step should produce",
        "dependencies": ["previous step outputs needed"]
    },
    ...
]

Make each step atomic and executable.`

// Planner turns a natural-language task into an ordered step list for one
// agent, using a single LLM round.
type Planner struct {
	agentName    string
	capabilities []string
	llm          llm.Client
	logger       logging.Logger
}

func NewPlanner(agentName string, capabilities []string, client llm.Client) *Planner {
	return &Planner{
		agentName:    agentName,
		capabilities: capabilities,
		llm:          client,
		logger:       logging.NewComponentLogger("planner." + agentName),
	}
}

// Plan invokes the LLM once, parses the response as a step array, and installs
// a freshly initialized AgentState into the workflow, replacing any prior
// entry for this agent.
func (p *Planner) Plan(ctx context.Context, state WorkflowState) (WorkflowState, error) {
	prompt := state.EnhancedPrompt

	req := llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "system", Content: fmt.Sprintf(plannerSystemPrompt, p.agentName, strings.Join(p.capabilities, "\n"))},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
		Metadata:    map[string]any{"intent": "agent_planning", "agent": p.agentName},
	}

	resp, err := p.llm.Complete(ctx, req)
	if err != nil {
		return state, fmt.Errorf("agent %q: planner llm call failed: %w", p.agentName, err)
	}

	steps, err := ParsePlan(resp.Content)
	if err != nil {
		return state, &PlanParseError{AgentName: p.agentName, Raw: resp.Content, Err: err}
	}
	p.logger.Debug("plan created with %d steps", len(steps))

	agent := AgentState{
		AgentPrompt: prompt,
		Plan:        steps,
		CurrentStep: 0,
		StepResults: []any{},
	}
	return state.WithAgentState(p.agentName, agent), nil
}

// ParsePlan decodes an LLM response into steps. Markdown fences and wrapper
// prose are tolerated, and near-JSON is run through jsonrepair before the
// parse is declared failed.
func ParsePlan(content string) ([]Step, error) {
	text := strings.TrimSpace(stripCodeFences(content))
	if text == "" {
		return nil, fmt.Errorf("empty plan content")
	}

	if steps, err := decodeSteps(text); err == nil {
		return steps, nil
	}

	if arr := extractJSONArray(text); arr != "" {
		if steps, err := decodeSteps(arr); err == nil {
			return steps, nil
		}
	}

	repaired, repairErr := jsonrepair.JSONRepair(text)
	if repairErr != nil {
		return nil, fmt.Errorf("invalid JSON and repair failed: %w", repairErr)
	}
	steps, err := decodeSteps(repaired)
	if err != nil {
		return nil, fmt.Errorf("repaired JSON still not a step array: %w", err)
	}
	return steps, nil
}

func decodeSteps(text string) ([]Step, error) {
	var steps []Step
	if err := json.Unmarshal([]byte(text), &steps); err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("plan contained no steps")
	}
	return steps, nil
}

func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// extractJSONArray returns the first top-level [...] span, for responses that
// wrap the plan in explanatory prose.
func extractJSONArray(text string) string {
	start := strings.Index(text, "[")
	if start < 0 {
		return ""
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
