package llm

import (
	"context"
	"sync"
)

// MockClient is a configurable Client for tests.
type MockClient struct {
	CompleteFunc func(ctx context.Context, req Request) (*Response, error)
	ModelName    string

	mu       sync.Mutex
	Requests []Request
}

func NewMockClient(fn func(ctx context.Context, req Request) (*Response, error)) *MockClient {
	return &MockClient{CompleteFunc: fn, ModelName: "mock-model"}
}

func (m *MockClient) Complete(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &Response{Content: "{}", Model: m.ModelName}, nil
}

func (m *MockClient) Model() string {
	return m.ModelName
}

func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
