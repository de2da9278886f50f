package agents

import (
	"context"
	"fmt"
	"strings"

	"atlas/internal/llm"
	"atlas/internal/logging"
	"atlas/internal/workflow"
)

// Outcome is the result of driving one agent's plan to completion.
type Outcome struct {
	Agent       string             `json:"agent"`
	Steps       int                `json:"steps"`
	FinalResult any                `json:"final_result"`
	State       workflow.WorkflowState `json:"-"`
}

// Supervisor routes a request to one agent and runs plan → execute-loop →
// compile against a shared workflow state. One supervisor is built per user
// so each agent's tools close over that user's services and cache.
type Supervisor struct {
	llm        llm.Client
	defs       map[string]Definition
	defaultDef string
	logger     logging.Logger
}

func NewSupervisor(client llm.Client, defs ...Definition) (*Supervisor, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("supervisor needs at least one agent")
	}
	byName := make(map[string]Definition, len(defs))
	for _, def := range defs {
		if _, dup := byName[def.Name]; dup {
			return nil, fmt.Errorf("duplicate agent %q", def.Name)
		}
		byName[def.Name] = def
	}
	return &Supervisor{
		llm:        client,
		defs:       byName,
		defaultDef: defs[0].Name,
		logger:     logging.NewComponentLogger("supervisor"),
	}, nil
}

const routerSystemPrompt = `You are a Google Workspace request router. Given the user's request, answer with exactly one agent name from this list and nothing else:

%s`

// Route picks the agent responsible for the request with a single LLM round.
// Unrecognized answers fall back to the default agent rather than failing the
// request.
func (s *Supervisor) Route(ctx context.Context, request string) string {
	var listing strings.Builder
	for _, def := range s.defs {
		fmt.Fprintf(&listing, "- %s: %s\n", def.Name, def.Description)
	}

	resp, err := s.llm.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "system", Content: fmt.Sprintf(routerSystemPrompt, listing.String())},
			{Role: "user", Content: request},
		},
		Temperature: 0,
		Metadata:    map[string]any{"intent": "agent_routing"},
	})
	if err != nil {
		s.logger.Warn("routing llm call failed, using default agent: %v", err)
		return s.defaultDef
	}

	name := strings.ToLower(strings.TrimSpace(resp.Content))
	if _, ok := s.defs[name]; ok {
		return name
	}
	s.logger.Warn("router answered %q, using default agent", resp.Content)
	return s.defaultDef
}

// Run executes the full lifecycle for one request: route, plan, advance the
// executor one step per iteration until the agent reports completion, then
// return the compiled final result.
func (s *Supervisor) Run(ctx context.Context, request string) (*Outcome, error) {
	agentName := s.Route(ctx, request)
	def := s.defs[agentName]

	registry, err := def.Registry()
	if err != nil {
		return nil, err
	}

	state := workflow.WorkflowState{
		Request:        request,
		EnhancedPrompt: request,
		TaskResults:    map[string]any{},
		AgentStates:    map[string]workflow.AgentState{},
	}

	planner := workflow.NewPlanner(def.Name, def.Capabilities, s.llm)
	state, err = planner.Plan(ctx, state)
	if err != nil {
		return nil, err
	}

	agent, _ := state.Agent(def.Name)
	s.logger.Info("agent %s planned %d steps", def.Name, len(agent.Plan))

	executor := workflow.NewExecutor(def.Name, registry)

	// n steps plus the compile transition; the cap only guards against a
	// broken transition that stops advancing the cursor.
	maxTransitions := len(agent.Plan) + 2
	for i := 0; i < maxTransitions; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		state, err = executor.Advance(ctx, state)
		if err != nil {
			return nil, err
		}
		agent, _ = state.Agent(def.Name)
		if agent.ExecutionComplete {
			return &Outcome{
				Agent:       def.Name,
				Steps:       len(agent.StepResults),
				FinalResult: agent.FinalResult,
				State:       state,
			}, nil
		}
	}

	return nil, fmt.Errorf("agent %s did not complete within %d transitions", def.Name, maxTransitions)
}
