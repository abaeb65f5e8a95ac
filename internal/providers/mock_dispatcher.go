package providers

import (
	"context"
	"sync"
	"time"

	"bastion-hq/gateway/pkg/providers"
)

// Call is one recorded dispatcher call.
type Call struct {
	Provider    string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// MockDispatcher is a dispatcher that answers every call with a fixed text
// and records what it was asked.
type MockDispatcher struct {
	mu      sync.Mutex
	text    string
	model   string
	latency time.Duration
	err     error
	block   bool
	known   []string
	calls   []Call
}

// NewMockDispatcher creates a dispatcher answering with text.
func NewMockDispatcher(text string) *MockDispatcher {
	return &MockDispatcher{
		text:    text,
		model:   "mock-model",
		latency: 25 * time.Millisecond,
		known:   []string{providers.Perplexity, providers.Gemini, providers.ChatGPT},
	}
}

// SetResponse changes the response text.
func (m *MockDispatcher) SetResponse(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
}

// SetError makes every later call fail with err.
func (m *MockDispatcher) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetBlocking makes every later call wait until its context is done.
func (m *MockDispatcher) SetBlocking(block bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.block = block
}

// Call records the call and returns the configured response.
func (m *MockDispatcher) Call(ctx context.Context, provider, prompt string, temperature float64, maxTokens int) (providers.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Provider: provider, Prompt: prompt, Temperature: temperature, MaxTokens: maxTokens})
	text, model, latency, err, block := m.text, m.model, m.latency, m.err, m.block
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return providers.Response{}, &providers.ProviderError{Provider: provider, Message: "call interrupted", Cause: ctx.Err()}
	}
	if err != nil {
		return providers.Response{}, err
	}

	return providers.Response{
		Provider:   provider,
		Text:       text,
		TokensUsed: len(text) / 4,
		Latency:    latency,
		Model:      model,
		Timestamp:  time.Unix(0, 0).UTC(),
	}, nil
}

// Providers returns the provider ids the dispatcher accepts.
func (m *MockDispatcher) Providers() []string {
	return append([]string(nil), m.known...)
}

// Calls returns a copy of the recorded calls.
func (m *MockDispatcher) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}
