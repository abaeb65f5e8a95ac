package routing

import (
	"log/slog"
	"math"
	"sync"
	"time"
)

// DefaultProviders returns the seed table used when no providers are
// configured.
func DefaultProviders() []ProviderStatus {
	return []ProviderStatus{
		{Provider: "perplexity", Available: true, Latency: 150, LoadPercentage: 30},
		{Provider: "gemini", Available: true, Latency: 200, LoadPercentage: 45},
		{Provider: "chatgpt", Available: true, Latency: 180, LoadPercentage: 60},
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for LastChecked.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger overrides the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine selects providers from a status table shared by all requests.
// It is safe for concurrent use.
type Engine struct {
	mu     sync.RWMutex
	order  []string
	status map[string]*ProviderStatus

	stats  *Stats
	now    func() time.Time
	logger *slog.Logger
}

// NewEngine creates an engine seeded with the given providers. Seed order
// decides ties. Duplicate providers keep the first entry.
func NewEngine(seeds []ProviderStatus, opts ...Option) *Engine {
	e := &Engine{
		status: make(map[string]*ProviderStatus, len(seeds)),
		stats:  NewStats(),
		now:    time.Now,
		logger: slog.Default().With("component", "routing.engine"),
	}
	for _, opt := range opts {
		opt(e)
	}

	checked := e.now()
	for _, seed := range seeds {
		if _, exists := e.status[seed.Provider]; exists {
			continue
		}
		entry := seed
		entry.LoadPercentage = clampLoad(entry.LoadPercentage)
		if entry.LastChecked.IsZero() {
			entry.LastChecked = checked
		}
		e.status[seed.Provider] = &entry
		e.order = append(e.order, seed.Provider)
	}

	return e
}

// SelectProvider returns the provider that should handle req.
//
// A hinted provider is returned as is when it is available. Otherwise the
// available provider with the lowest Score wins.
func (e *Engine) SelectProvider(req Request) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if req.Provider != "" {
		if status, ok := e.status[req.Provider]; ok && status.Available {
			e.stats.recordSelection(req.Provider, true)
			e.logger.Debug("provider hint honored", "provider", req.Provider)
			return req.Provider, nil
		}
		e.stats.recordHintIgnored()
		e.logger.Debug("provider hint unavailable, scoring providers", "hint", req.Provider)
	}

	best := ""
	bestScore := math.Inf(1)
	for _, name := range e.order {
		status := e.status[name]
		if !status.Available {
			continue
		}
		// Strict comparison keeps the earliest seeded provider on ties.
		if score := status.Score(); score < bestScore {
			best = name
			bestScore = score
		}
	}

	if best == "" {
		e.stats.recordError()
		checked := make([]string, len(e.order))
		copy(checked, e.order)
		return "", &NoProviderAvailableError{Checked: checked}
	}

	e.stats.recordSelection(best, false)
	e.logger.Debug("provider selected", "provider", best, "score", bestScore)
	return best, nil
}

// UpdateProviderStatus sets availability and, when latency is non-nil, the
// observed latency in milliseconds. LastChecked is refreshed.
func (e *Engine) UpdateProviderStatus(provider string, available bool, latency *float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	status, ok := e.status[provider]
	if !ok {
		return e.notFound(provider)
	}

	if status.Available != available {
		e.logger.Info("provider availability changed",
			"provider", provider,
			"available", available,
		)
	}
	status.Available = available
	if latency != nil {
		status.Latency = math.Max(0, *latency)
	}
	status.LastChecked = e.now()

	return nil
}

// UpdateLoadPercentage stores value clamped into [0,100].
func (e *Engine) UpdateLoadPercentage(provider string, value float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	status, ok := e.status[provider]
	if !ok {
		return e.notFound(provider)
	}
	status.LoadPercentage = clampLoad(value)

	return nil
}

// GetProviderHealth returns a copy of the status table in seed order.
func (e *Engine) GetProviderHealth() []ProviderStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snapshot := make([]ProviderStatus, 0, len(e.order))
	for _, name := range e.order {
		snapshot = append(snapshot, *e.status[name])
	}
	return snapshot
}

// Providers returns the known provider names in seed order.
func (e *Engine) Providers() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, len(e.order))
	copy(names, e.order)
	return names
}

// AvailableCount returns how many providers are currently available.
func (e *Engine) AvailableCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	count := 0
	for _, status := range e.status {
		if status.Available {
			count++
		}
	}
	return count
}

// Stats returns a snapshot of routing statistics.
func (e *Engine) Stats() StatsSnapshot {
	return e.stats.Snapshot()
}

func (e *Engine) notFound(provider string) error {
	known := make([]string, len(e.order))
	copy(known, e.order)
	return &ProviderNotFoundError{Provider: provider, Available: known}
}

func clampLoad(value float64) float64 {
	if math.IsNaN(value) {
		return 0
	}
	return math.Min(100, math.Max(0, value))
}
