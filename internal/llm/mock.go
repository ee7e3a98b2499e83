package llm

import (
	"context"
	"fmt"
)

// MockClient is a scripted Client implementation for tests. Responses are
// returned in order; a nil entry in Errs means that call succeeds. Prompts
// records every prompt received.
type MockClient struct {
	Responses []string
	Errs      []error
	PingErr   error
	Prompts   []string

	// RespondFunc, when set, overrides the scripted responses.
	RespondFunc func(prompt string) (string, error)

	calls int
}

// Complete returns the next scripted response or error.
func (m *MockClient) Complete(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.RespondFunc != nil {
		return m.RespondFunc(prompt)
	}

	i := m.calls
	m.calls++
	if i < len(m.Errs) && m.Errs[i] != nil {
		return "", m.Errs[i]
	}
	if i >= len(m.Responses) {
		return "", fmt.Errorf("mock client: no scripted response for call %d", i+1)
	}
	return m.Responses[i], nil
}

// Ping returns the configured probe result.
func (m *MockClient) Ping(ctx context.Context) error {
	return m.PingErr
}

// Calls returns how many completion calls were made.
func (m *MockClient) Calls() int {
	return len(m.Prompts)
}
