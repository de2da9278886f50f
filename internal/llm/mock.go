package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockClient implements Client for tests. Responses are returned in order;
// once exhausted, the last response repeats.
type MockClient struct {
	ModelName string
	Responses []string
	Err       error

	mu    sync.Mutex
	calls []CompletionRequest
}

func (m *MockClient) Model() string {
	if m.ModelName == "" {
		return "mock"
	}
	return m.ModelName
}

func (m *MockClient) Complete(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return nil, fmt.Errorf("mock client has no responses configured")
	}

	idx := len(m.calls)
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	m.calls = append(m.calls, req)

	return &CompletionResponse{
		Content:    m.Responses[idx],
		StopReason: "stop",
		Usage:      TokenUsage{PromptTokens: 10, CompletionTokens: 10, TotalTokens: 20},
	}, nil
}

// Calls returns a copy of the requests seen so far.
func (m *MockClient) Calls() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletionRequest, len(m.calls))
	copy(out, m.calls)
	return out
}
