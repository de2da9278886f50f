package workflow

import (
	"context"
	"fmt"

	"atlas/internal/logging"
)

// ToolFunc is the invocable boundary the executor dispatches to.
type ToolFunc func(ctx context.Context, executionPrompt string, previous []any) (any, error)

// ToolResolver maps a plan step's tool name to an invocable.
type ToolResolver interface {
	Resolve(name string) (ToolFunc, bool)
}

// StepError wraps a tool invocation failure with the step it occurred on.
// The failing agent's plan is halted; the cursor is not advanced.
type StepError struct {
	AgentName   string
	StepIndex   int
	StepID      any
	Description string
	Err         error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("agent %q step %d (%v: %s): %v", e.AgentName, e.StepIndex, e.StepID, e.Description, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Executor advances one agent's plan a single step per call.
type Executor struct {
	agentName string
	tools     ToolResolver
	logger    logging.Logger
}

func NewExecutor(agentName string, tools ToolResolver) *Executor {
	return &Executor{
		agentName: agentName,
		tools:     tools,
		logger:    logging.NewComponentLogger("executor." + agentName),
	}
}

// Advance performs exactly one transition:
//   - terminal state: no-op, the input state is returned unchanged
//   - cursor at end of plan: compile the final result, mark complete
//   - otherwise: execute the step at the cursor and advance by one
func (e *Executor) Advance(ctx context.Context, state WorkflowState) (WorkflowState, error) {
	agent, ok := state.Agent(e.agentName)
	if !ok {
		return state, fmt.Errorf("agent %q has no planned state", e.agentName)
	}

	if agent.ExecutionComplete {
		return state, nil
	}

	if agent.CurrentStep >= len(agent.Plan) {
		agent.FinalResult = CompileFinalResult(agent.StepResults, agent.Plan)
		agent.ExecutionComplete = true
		e.logger.Info("execution complete after %d steps", len(agent.StepResults))
		return state.WithAgentState(e.agentName, agent), nil
	}

	step := agent.Plan[agent.CurrentStep]
	result, err := e.executeStep(ctx, step, agent.StepResults)
	if err != nil {
		return state, &StepError{
			AgentName:   e.agentName,
			StepIndex:   agent.CurrentStep,
			StepID:      step.StepID,
			Description: step.Description,
			Err:         err,
		}
	}

	agent.StepResults = appendResult(agent.StepResults, result)
	agent.CurrentStep++
	return state.WithAgentState(e.agentName, agent), nil
}

func (e *Executor) executeStep(ctx context.Context, step Step, previous []any) (any, error) {
	prompt := buildExecutionPrompt(step, previous)

	fn, ok := e.tools.Resolve(step.Tool)
	if !ok {
		// Unknown tool names degrade to a descriptive placeholder rather than
		// failing the plan.
		e.logger.Warn("tool %q not registered, executing by description only", step.Tool)
		return fmt.Sprintf("Executed: %s", step.Description), nil
	}

	return fn(ctx, prompt, previous)
}

func buildExecutionPrompt(step Step, previous []any) string {
	return fmt.Sprintf(`Execute this step: %s

Tool to use: %s
Expected output: %s

Previous step results available:
%v

Use the specified tool and return the result.`,
		step.Description, step.Tool, step.ExpectedOutput, previous)
}

// CompiledResult is the structured final result for multi-step plans.
type CompiledResult struct {
	Summary     string       `json:"summary"`
	StepOutputs []StepOutput `json:"step_outputs"`
	FinalOutput any          `json:"final_output"`
}

// StepOutput pairs a step's result with its plan context.
type StepOutput struct {
	StepID      any    `json:"step_id"`
	Description string `json:"description"`
	Result      any    `json:"result"`
}

// CompileFinalResult folds ordered step results into the agent's final result.
// A single result is returned unwrapped; for multiple results the last one is
// treated as the final output (positional convention preserved for downstream
// consumers).
func CompileFinalResult(stepResults []any, plan []Step) any {
	if len(stepResults) == 0 {
		return "No results produced"
	}

	if len(stepResults) == 1 {
		return stepResults[0]
	}

	compiled := CompiledResult{
		Summary:     fmt.Sprintf("Completed %d steps successfully", len(stepResults)),
		StepOutputs: make([]StepOutput, 0, len(stepResults)),
		FinalOutput: stepResults[len(stepResults)-1],
	}

	for i, result := range stepResults {
		var step Step
		if i < len(plan) {
			step = plan[i]
		}
		stepID := step.StepID
		if stepID == nil {
			stepID = i + 1
		}
		description := step.Description
		if description == "" {
			description = fmt.Sprintf("Step %d", i+1)
		}
		compiled.StepOutputs = append(compiled.StepOutputs, StepOutput{
			StepID:      stepID,
			Description: description,
			Result:      result,
		})
	}

	return compiled
}
