package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider implements Provider with scripted responses for tests.
// Responses are consumed in order; when Cycle is set they repeat instead of
// exhausting. Errors configured for a call index take priority over the
// scripted response.
type MockProvider struct {
	mu        sync.Mutex
	responses []*CompletionResponse
	errors    []error
	cycle     bool

	calls   int
	history []CompletionRequest
}

// NewMockProvider creates a provider that returns the given responses once
// each, in order, then errors when exhausted.
func NewMockProvider(responses ...*CompletionResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewCyclingProvider creates a provider that cycles through the given
// responses indefinitely.
func NewCyclingProvider(responses ...*CompletionResponse) *MockProvider {
	return &MockProvider{responses: responses, cycle: true}
}

// TextResponses is a convenience for building responses out of plain strings.
func TextResponses(contents ...string) []*CompletionResponse {
	out := make([]*CompletionResponse, len(contents))
	for i, c := range contents {
		out[i] = &CompletionResponse{Content: c, Model: "mock-model"}
	}
	return out
}

// FailAt schedules an error for the call with the given zero-based index.
func (m *MockProvider) FailAt(index int, err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.errors) <= index {
		m.errors = append(m.errors, nil)
	}
	m.errors[index] = err
	return m
}

func (m *MockProvider) Name() string         { return "mock" }
func (m *MockProvider) DefaultModel() string { return "mock-model" }

func (m *MockProvider) Complete(_ context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.calls
	m.calls++
	m.history = append(m.history, *req)

	if idx < len(m.errors) && m.errors[idx] != nil {
		return nil, m.errors[idx]
	}
	if len(m.responses) == 0 {
		return nil, fmt.Errorf("mock provider: no responses configured")
	}
	if m.cycle {
		return m.responses[idx%len(m.responses)], nil
	}
	if idx >= len(m.responses) {
		return nil, fmt.Errorf("mock provider: all %d responses exhausted at call %d", len(m.responses), idx)
	}
	return m.responses[idx], nil
}

// CallCount returns how many times Complete has been called.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// History returns a copy of every request seen so far.
func (m *MockProvider) History() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CompletionRequest(nil), m.history...)
}
