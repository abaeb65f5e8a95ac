package routing

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats tracks routing decisions with atomic counters.
type Stats struct {
	totalSelections atomic.Int64

	// perProvider maps provider name to *atomic.Int64
	perProvider sync.Map

	hintsHonored atomic.Int64
	hintsIgnored atomic.Int64
	errors       atomic.Int64

	mu            sync.RWMutex
	lastResetTime time.Time
}

// NewStats creates an empty statistics tracker.
func NewStats() *Stats {
	return &Stats{lastResetTime: time.Now()}
}

func (s *Stats) recordSelection(provider string, hinted bool) {
	s.totalSelections.Add(1)
	val, _ := s.perProvider.LoadOrStore(provider, &atomic.Int64{})
	val.(*atomic.Int64).Add(1)
	if hinted {
		s.hintsHonored.Add(1)
	}
}

func (s *Stats) recordHintIgnored() {
	s.hintsIgnored.Add(1)
}

func (s *Stats) recordError() {
	s.totalSelections.Add(1)
	s.errors.Add(1)
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	perProvider := make(map[string]int64)
	s.perProvider.Range(func(key, value any) bool {
		perProvider[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})

	return StatsSnapshot{
		TotalSelections:       s.totalSelections.Load(),
		SelectionsPerProvider: perProvider,
		HintsHonored:          s.hintsHonored.Load(),
		HintsIgnored:          s.hintsIgnored.Load(),
		Errors:                s.errors.Load(),
		LastResetTime:         s.lastResetTime,
	}
}

// Reset zeroes every counter.
func (s *Stats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalSelections.Store(0)
	s.hintsHonored.Store(0)
	s.hintsIgnored.Store(0)
	s.errors.Store(0)
	s.perProvider.Range(func(key, _ any) bool {
		s.perProvider.Delete(key)
		return true
	})
	s.lastResetTime = time.Now()
}
