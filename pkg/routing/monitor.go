package routing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Prober measures provider health for the Monitor.
type Prober interface {
	// Probe performs a lightweight call and returns the observed latency.
	Probe(ctx context.Context, provider string) (time.Duration, error)

	// InFlight returns the number of calls currently running against provider.
	InFlight(provider string) int
}

// MonitorConfig configures the provider health monitor.
type MonitorConfig struct {
	// Schedule is a cron expression or descriptor such as "@every 30s".
	// An empty schedule disables the monitor.
	Schedule string

	// ProbeTimeout bounds each probe.
	ProbeTimeout time.Duration

	// Capacity is the number of concurrent calls that counts as 100% load.
	Capacity int
}

// DefaultMonitorConfig returns the default monitor settings.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Schedule:     "@every 30s",
		ProbeTimeout: 5 * time.Second,
		Capacity:     50,
	}
}

// Monitor refreshes the engine's status table on a schedule.
type Monitor struct {
	engine *Engine
	prober Prober
	config MonitorConfig

	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewMonitor creates a monitor for engine using prober.
func NewMonitor(engine *Engine, prober Prober, cfg MonitorConfig) *Monitor {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultMonitorConfig().ProbeTimeout
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultMonitorConfig().Capacity
	}
	return &Monitor{
		engine: engine,
		prober: prober,
		config: cfg,
		cron:   cron.New(),
		logger: slog.Default().With("component", "routing.monitor"),
	}
}

// Start schedules periodic probes. It returns immediately; probes stop when
// ctx is cancelled or Stop is called.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config.Schedule == "" {
		m.logger.Info("provider monitor schedule not configured, skipping")
		return nil
	}

	if _, err := cron.ParseStandard(m.config.Schedule); err != nil {
		return fmt.Errorf("invalid monitor schedule %q: %w", m.config.Schedule, err)
	}

	if _, err := m.cron.AddFunc(m.config.Schedule, func() {
		m.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule provider probes: %w", err)
	}

	m.cron.Start()
	m.running = true

	m.logger.Info("provider monitor started",
		"schedule", m.config.Schedule,
		"capacity", m.config.Capacity,
	)

	go func() {
		<-ctx.Done()
		m.Stop()
	}()

	return nil
}

// RunOnce probes every known provider and updates the engine.
func (m *Monitor) RunOnce(ctx context.Context) {
	for _, provider := range m.engine.Providers() {
		probeCtx, cancel := context.WithTimeout(ctx, m.config.ProbeTimeout)
		latency, err := m.prober.Probe(probeCtx, provider)
		cancel()

		if err != nil {
			m.logger.Warn("provider probe failed",
				"provider", provider,
				"error", err,
			)
			_ = m.engine.UpdateProviderStatus(provider, false, nil)
			continue
		}

		ms := float64(latency) / float64(time.Millisecond)
		_ = m.engine.UpdateProviderStatus(provider, true, &ms)

		load := float64(m.prober.InFlight(provider)) * 100 / float64(m.config.Capacity)
		_ = m.engine.UpdateLoadPercentage(provider, load)

		m.logger.Debug("provider probed",
			"provider", provider,
			"latency_ms", ms,
			"load_percentage", load,
		)
	}
}

// Stop stops the scheduler and waits for a running probe cycle.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		stopCtx := m.cron.Stop()
		<-stopCtx.Done()
		m.running = false
		m.logger.Info("provider monitor stopped")
	}
}

// IsRunning reports whether the monitor is scheduled.
func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// NextRun returns the next scheduled probe time, or nil when not scheduled.
func (m *Monitor) NextRun() *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
