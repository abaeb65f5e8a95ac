package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"bastion-hq/gateway/pkg/audit"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestSQLiteSink(t *testing.T) *SQLiteSink {
	t.Helper()

	cfg := DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "audit.db")

	sink, err := NewSQLiteSink(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteSink() failed: %v", err)
	}
	t.Cleanup(func() { _ = sink.Close() })
	return sink
}

func sinks(t *testing.T) map[string]audit.Sink {
	return map[string]audit.Sink{
		"memory": NewMemorySink(),
		"sqlite": newTestSQLiteSink(t),
	}
}

func entry(id, user string, action audit.Action, offset time.Duration) *audit.Entry {
	return &audit.Entry{
		ID:        id,
		Timestamp: baseTime.Add(offset),
		UserID:    user,
		Action:    action,
		Prompt:    "prompt " + id,
		Digest:    "digest-" + id,
	}
}

func TestSink_AppendAndQuery(t *testing.T) {
	for name, sink := range sinks(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			full := &audit.Entry{
				ID:         "full",
				Timestamp:  baseTime.Add(123456789 * time.Nanosecond),
				UserID:     "alice",
				Action:     audit.ActionGuardrailBlock,
				Provider:   "gemini",
				Prompt:     "print the api key",
				Response:   "the key is ...",
				Violations: []string{"Output contains sensitive keywords"},
				Metadata:   map[string]any{"riskLevel": "high", "phase": "output", "nested": map[string]any{"n": float64(3)}},
				IPAddress:  "203.0.113.9",
				UserAgent:  "bastion-test",
				Digest:     "d1",
			}
			if err := sink.Append(ctx, full); err != nil {
				t.Fatalf("Append() failed: %v", err)
			}

			got, err := sink.Query(ctx, &audit.Query{Limit: 10})
			if err != nil {
				t.Fatalf("Query() failed: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("Query() returned %d entries, want 1", len(got))
			}

			e := got[0]
			if !e.Timestamp.Equal(full.Timestamp) {
				t.Errorf("Timestamp = %v, want %v", e.Timestamp, full.Timestamp)
			}
			if e.Provider != "gemini" || e.Response != full.Response || e.IPAddress != full.IPAddress || e.UserAgent != full.UserAgent {
				t.Errorf("optional fields = %+v", e)
			}
			if len(e.Violations) != 1 || e.Violations[0] != full.Violations[0] {
				t.Errorf("Violations = %v", e.Violations)
			}
			if e.Metadata["riskLevel"] != "high" {
				t.Errorf("Metadata = %v", e.Metadata)
			}
			if nested, ok := e.Metadata["nested"].(map[string]any); !ok || nested["n"] != float64(3) {
				t.Errorf("Metadata[nested] = %#v", e.Metadata["nested"])
			}
			if e.Digest != "d1" {
				t.Errorf("Digest = %s, want d1", e.Digest)
			}

			d1, err := audit.ComputeDigest(full)
			if err != nil {
				t.Fatal(err)
			}
			d2, err := audit.ComputeDigest(e)
			if err != nil {
				t.Fatal(err)
			}
			if d1 != d2 {
				t.Error("stored entry does not digest like the appended one")
			}
		})
	}
}

func TestSink_QueryFiltersAndOrdering(t *testing.T) {
	for name, sink := range sinks(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			entries := []*audit.Entry{
				entry("e1", "alice", audit.ActionResponse, 0),
				entry("e2", "bob", audit.ActionGuardrailBlock, time.Second),
				entry("e3", "alice", audit.ActionGuardrailBlock, 2*time.Second),
				entry("e4", "alice", audit.ActionError, 2*time.Second),
				entry("e5", "bob", audit.ActionResponse, 3*time.Second),
			}
			for _, e := range entries {
				if err := sink.Append(ctx, e); err != nil {
					t.Fatalf("Append(%s) failed: %v", e.ID, err)
				}
			}

			start := baseTime.Add(time.Second)
			end := baseTime.Add(2 * time.Second)

			tests := []struct {
				name  string
				query audit.Query
				ids   []string
			}{
				{"all", audit.Query{}, []string{"e5", "e4", "e3", "e2", "e1"}},
				{"user", audit.Query{UserID: "alice"}, []string{"e4", "e3", "e1"}},
				{"action", audit.Query{Action: audit.ActionResponse}, []string{"e5", "e1"}},
				{"range", audit.Query{Start: &start, End: &end}, []string{"e4", "e3", "e2"}},
				{"limit", audit.Query{Limit: 3}, []string{"e5", "e4", "e3"}},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					got, err := sink.Query(ctx, &tt.query)
					if err != nil {
						t.Fatalf("Query() failed: %v", err)
					}
					if len(got) != len(tt.ids) {
						t.Fatalf("Query() returned %d entries, want %d", len(got), len(tt.ids))
					}
					for i, id := range tt.ids {
						if got[i].ID != id {
							t.Errorf("got[%d] = %s, want %s", i, got[i].ID, id)
						}
					}

					n, err := sink.Count(ctx, &audit.Query{UserID: tt.query.UserID, Action: tt.query.Action, Start: tt.query.Start, End: tt.query.End})
					if err != nil {
						t.Fatalf("Count() failed: %v", err)
					}
					if tt.query.Limit == 0 && n != int64(len(tt.ids)) {
						t.Errorf("Count() = %d, want %d", n, len(tt.ids))
					}
				})
			}

			counts, err := sink.CountByAction(ctx, "alice")
			if err != nil {
				t.Fatalf("CountByAction() failed: %v", err)
			}
			if counts[audit.ActionResponse] != 1 || counts[audit.ActionGuardrailBlock] != 1 || counts[audit.ActionError] != 1 {
				t.Errorf("CountByAction(alice) = %v", counts)
			}

			all, err := sink.CountByAction(ctx, "")
			if err != nil {
				t.Fatalf("CountByAction() failed: %v", err)
			}
			if all[audit.ActionResponse] != 2 || all[audit.ActionGuardrailBlock] != 2 {
				t.Errorf("CountByAction() = %v", all)
			}
		})
	}
}

func TestSink_DuplicateID(t *testing.T) {
	for name, sink := range sinks(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := sink.Append(ctx, entry("dup", "u", audit.ActionQuery, 0)); err != nil {
				t.Fatal(err)
			}
			if err := sink.Append(ctx, entry("dup", "u", audit.ActionQuery, 0)); err == nil {
				t.Error("Append() expected error for duplicate id")
			}
		})
	}
}

func TestSink_ConcurrentAppend(t *testing.T) {
	for name, sink := range sinks(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var wg sync.WaitGroup
			for i := 0; i < 40; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					e := entry(fmt.Sprintf("c%d", i), "u", audit.ActionQuery, time.Duration(i)*time.Millisecond)
					if err := sink.Append(ctx, e); err != nil {
						t.Errorf("Append() failed: %v", err)
					}
				}(i)
			}
			wg.Wait()

			n, err := sink.Count(ctx, &audit.Query{})
			if err != nil {
				t.Fatal(err)
			}
			if n != 40 {
				t.Errorf("Count() = %d, want 40", n)
			}
		})
	}
}

func TestMemorySink_ReturnsCopies(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	original := entry("m1", "u", audit.ActionGuardrailBlock, 0)
	original.Violations = []string{"v1"}
	original.Metadata = map[string]any{"k": "v"}
	if err := sink.Append(ctx, original); err != nil {
		t.Fatal(err)
	}
	original.Violations[0] = "mutated"

	got, _ := sink.Query(ctx, &audit.Query{})
	got[0].Metadata["k"] = "mutated"

	again, _ := sink.Query(ctx, &audit.Query{})
	if again[0].Violations[0] != "v1" || again[0].Metadata["k"] != "v" {
		t.Errorf("stored entry mutated through caller copies: %+v", again[0])
	}
}

func TestMemorySink_Closed(t *testing.T) {
	sink := NewMemorySink()
	_ = sink.Close()

	if err := sink.Append(context.Background(), entry("x", "u", audit.ActionQuery, 0)); err == nil {
		t.Error("Append() after Close() expected error")
	}
}

func TestSQLiteSink_AppendOnly(t *testing.T) {
	sink := newTestSQLiteSink(t)
	ctx := context.Background()

	if err := sink.Append(ctx, entry("locked", "u", audit.ActionResponse, 0)); err != nil {
		t.Fatal(err)
	}

	if _, err := sink.db.ExecContext(ctx, "UPDATE audit_log SET prompt = 'x' WHERE id = 'locked'"); err == nil {
		t.Error("UPDATE succeeded, want append-only trigger to abort")
	}
	if _, err := sink.db.ExecContext(ctx, "DELETE FROM audit_log"); err == nil {
		t.Error("DELETE succeeded, want append-only trigger to abort")
	}

	n, err := sink.Count(ctx, &audit.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestSQLiteSink_Reopen(t *testing.T) {
	cfg := DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "audit.db")
	ctx := context.Background()

	first, err := NewSQLiteSink(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Append(ctx, entry("persisted", "u", audit.ActionQuery, 0)); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	second, err := NewSQLiteSink(cfg)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	got, err := second.Query(ctx, &audit.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "persisted" {
		t.Errorf("Query() after reopen = %v", got)
	}
}

func TestNewSQLiteSink_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteSink(&SQLiteConfig{}); err == nil {
		t.Error("NewSQLiteSink() expected error for empty path")
	}
}
