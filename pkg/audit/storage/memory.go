package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"bastion-hq/gateway/pkg/audit"
)

// MemorySink implements audit.Sink in memory.
type MemorySink struct {
	mu      sync.RWMutex
	entries []*audit.Entry
	ids     map[string]bool
	closed  bool
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{ids: make(map[string]bool)}
}

// Append stores a copy of entry.
func (s *MemorySink) Append(ctx context.Context, entry *audit.Entry) error {
	if err := ctx.Err(); err != nil {
		return audit.NewStorageError("memory", "append", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return audit.NewStorageError("memory", "append", fmt.Errorf("sink is closed"))
	}
	if s.ids[entry.ID] {
		return audit.NewStorageError("memory", "append", fmt.Errorf("duplicate entry id %s", entry.ID))
	}

	s.ids[entry.ID] = true
	s.entries = append(s.entries, entry.Clone())
	return nil
}

// Query returns copies of matching entries, newest first.
func (s *MemorySink) Query(ctx context.Context, q *audit.Query) ([]*audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []*audit.Entry{}
	for i := len(s.entries) - 1; i >= 0; i-- {
		if q.Matches(s.entries[i]) {
			results = append(results, s.entries[i].Clone())
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp.After(results[j].Timestamp)
	})

	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

// Count returns the number of matching entries.
func (s *MemorySink) Count(ctx context.Context, q *audit.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, e := range s.entries {
		if q.Matches(e) {
			n++
		}
	}
	return n, nil
}

// CountByAction groups the entries of userID by action.
func (s *MemorySink) CountByAction(ctx context.Context, userID string) (map[audit.Action]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[audit.Action]int64)
	for _, e := range s.entries {
		if userID == "" || e.UserID == userID {
			counts[e.Action]++
		}
	}
	return counts, nil
}

// Len returns the total number of stored entries.
func (s *MemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close marks the sink closed; further appends fail.
func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
