package routing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeProber struct {
	mu       sync.Mutex
	latency  map[string]time.Duration
	failures map[string]error
	inFlight map[string]int
	probes   int
}

func (p *fakeProber) Probe(ctx context.Context, provider string) (time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probes++
	if err := p.failures[provider]; err != nil {
		return 0, err
	}
	return p.latency[provider], nil
}

func (p *fakeProber) InFlight(provider string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight[provider]
}

func TestMonitor_RunOnce(t *testing.T) {
	engine := NewEngine(scenarioProviders())
	prober := &fakeProber{
		latency: map[string]time.Duration{
			"a": 400 * time.Millisecond,
			"b": 50 * time.Millisecond,
		},
		failures: map[string]error{
			"c": errors.New("connection refused"),
		},
		inFlight: map[string]int{
			"a": 5,
			"b": 80,
		},
	}

	monitor := NewMonitor(engine, prober, MonitorConfig{Capacity: 10})
	monitor.RunOnce(context.Background())

	health := make(map[string]ProviderStatus)
	for _, s := range engine.GetProviderHealth() {
		health[s.Provider] = s
	}

	if got := health["a"]; !got.Available || got.Latency != 400 || got.LoadPercentage != 50 {
		t.Errorf("a = %+v, want available latency=400 load=50", got)
	}
	if got := health["b"]; got.Latency != 50 || got.LoadPercentage != 100 {
		t.Errorf("b = %+v, want latency=50 load clamped to 100", got)
	}
	if health["c"].Available {
		t.Error("c should be marked unavailable after failed probe")
	}
	if prober.probes != 3 {
		t.Errorf("probes = %d, want 3", prober.probes)
	}
}

func TestMonitor_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{"descriptor schedule", "@every 30s", true, false},
		{"cron schedule", "*/5 * * * *", true, false},
		{"empty schedule", "", false, false},
		{"invalid schedule", "not a schedule", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(scenarioProviders())
			monitor := NewMonitor(engine, &fakeProber{}, MonitorConfig{Schedule: tt.schedule})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := monitor.Start(ctx)
			if (err != nil) != tt.wantError {
				t.Fatalf("Start() error = %v, wantError %v", err, tt.wantError)
			}
			if monitor.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", monitor.IsRunning(), tt.wantRunning)
			}
			if tt.wantRunning && monitor.NextRun() == nil {
				t.Error("NextRun() = nil for running monitor")
			}

			monitor.Stop()
			if monitor.IsRunning() {
				t.Error("monitor still running after Stop()")
			}
		})
	}
}
