package routing

import (
	"sync"

	"bastion-hq/gateway/pkg/routing"
)

// MockRouter is a Router that returns a fixed provider or error and records
// every request it sees.
type MockRouter struct {
	mu       sync.Mutex
	provider string
	err      error
	requests []routing.Request
}

// NewMockRouter creates a router that always selects provider.
func NewMockRouter(provider string) *MockRouter {
	return &MockRouter{provider: provider}
}

// SetError makes every later selection fail with err.
func (m *MockRouter) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SelectProvider returns the configured provider or error.
func (m *MockRouter) SelectProvider(req routing.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	if req.Provider != "" {
		return req.Provider, nil
	}
	return m.provider, nil
}

// Calls returns the number of selections made.
func (m *MockRouter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of the recorded requests.
func (m *MockRouter) Requests() []routing.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]routing.Request(nil), m.requests...)
}
