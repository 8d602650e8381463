// Package llmtest provides a scriptable llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/jonathan/hiring-panel/internal/llm"
)

// MockClient is a mock implementation of llm.Client that records every prompt
type MockClient struct {
	GenerateJSONFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	CloseFunc        func() error

	mu      sync.Mutex
	prompts []string
}

// GenerateJSON records the prompt and delegates to GenerateJSONFunc.
func (m *MockClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "{}", nil
}

// GetModel returns a fixed model name.
func (m *MockClient) GetModel(_ llm.ModelTier) string {
	return "mock-model"
}

// Close delegates to CloseFunc when set.
func (m *MockClient) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Prompts returns a copy of every prompt received so far.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Calls returns the number of GenerateJSON calls.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Sequence returns a GenerateJSONFunc that replays responses in order and
// repeats the last one once exhausted.
func Sequence(responses ...string) func(context.Context, string, llm.ModelTier) (string, error) {
	var mu sync.Mutex
	i := 0
	return func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(responses) == 0 {
			return "{}", nil
		}
		r := responses[i]
		if i < len(responses)-1 {
			i++
		}
		return r, nil
	}
}
