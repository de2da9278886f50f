package workflow

// Step is one element of an agent's execution plan, produced by the planner.
// StepID is display-only and deliberately loose: models emit numbers or
// strings depending on mood.
type Step struct {
	StepID         any      `json:"step_id"`
	Description    string   `json:"description"`
	Tool           string   `json:"tool"`
	ExpectedOutput string   `json:"expected_output"`
	Dependencies   []string `json:"dependencies"`
}

// AgentState tracks one agent's progress through its plan.
//
// Invariants: 0 <= CurrentStep <= len(Plan), len(StepResults) == CurrentStep,
// FinalResult is nil until ExecutionComplete is set by the compile transition.
type AgentState struct {
	AgentPrompt       string `json:"agent_prompt"`
	Plan              []Step `json:"plan"`
	CurrentStep       int    `json:"current_step"`
	StepResults       []any  `json:"step_results"`
	ExecutionComplete bool   `json:"execution_complete"`
	FinalResult       any    `json:"final_result"`
}

// Pending reports whether the agent still has unexecuted steps.
func (a AgentState) Pending() bool {
	return !a.ExecutionComplete
}

// WorkflowState is the shared value threading one request through planning
// and execution. Transitions are pure: each returns a new state and never
// mutates maps in place, so callers only need to serialize writers.
type WorkflowState struct {
	Request        string                `json:"request"`
	ExecutionPlan  map[string]any        `json:"execution_plan"`
	CurrentTaskIdx int                   `json:"current_task_idx"`
	CurrentTask    map[string]any        `json:"current_task"`
	EnhancedPrompt string                `json:"enhanced_prompt"`
	TaskResults    map[string]any        `json:"task_results"`
	AgentStates    map[string]AgentState `json:"agent_states"`
}

// Agent returns the named agent's sub-state.
func (s WorkflowState) Agent(name string) (AgentState, bool) {
	agent, ok := s.AgentStates[name]
	return agent, ok
}

// WithAgentState returns a copy of the state with the named agent's entry
// replaced wholesale (copy-on-write over the AgentStates map).
func (s WorkflowState) WithAgentState(name string, agent AgentState) WorkflowState {
	states := make(map[string]AgentState, len(s.AgentStates)+1)
	for k, v := range s.AgentStates {
		states[k] = v
	}
	states[name] = agent
	s.AgentStates = states
	return s
}

// WithTaskResult returns a copy of the state with a task result recorded.
func (s WorkflowState) WithTaskResult(taskID string, result any) WorkflowState {
	results := make(map[string]any, len(s.TaskResults)+1)
	for k, v := range s.TaskResults {
		results[k] = v
	}
	results[taskID] = result
	s.TaskResults = results
	return s
}

// appendResult copies the result slice before appending so earlier state
// values never observe later writes.
func appendResult(results []any, result any) []any {
	out := make([]any, len(results), len(results)+1)
	copy(out, results)
	return append(out, result)
}
