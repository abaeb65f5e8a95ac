package audit

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Action classifies an audit entry.
type Action string

const (
	ActionQuery          Action = "query"
	ActionResponse       Action = "response"
	ActionGuardrailBlock Action = "guardrail_block"
	ActionError          Action = "error"
)

// Actions lists every valid action.
var Actions = []Action{ActionQuery, ActionResponse, ActionGuardrailBlock, ActionError}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionQuery, ActionResponse, ActionGuardrailBlock, ActionError:
		return true
	}
	return false
}

// ParseAction parses an action name.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", fmt.Errorf("invalid action %q (must be query, response, guardrail_block or error)", s)
	}
	return a, nil
}

// Record is what a caller asks the Logger to write. The id, timestamp and
// digest are always assigned by the Logger.
type Record struct {
	UserID     string
	Action     Action
	Provider   string
	Prompt     string
	Response   string
	Violations []string
	Metadata   map[string]any
	IPAddress  string
	UserAgent  string
}

// Entry is a stored audit log entry.
type Entry struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	UserID     string         `json:"userId"`
	Action     Action         `json:"action"`
	Provider   string         `json:"provider,omitempty"`
	Prompt     string         `json:"prompt"`
	Response   string         `json:"response,omitempty"`
	Violations []string       `json:"guardrailViolations,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	IPAddress  string         `json:"ipAddress,omitempty"`
	UserAgent  string         `json:"userAgent,omitempty"`
	Digest     string         `json:"digest,omitempty"`
}

// Clone returns a deep copy of e.
func (e *Entry) Clone() *Entry {
	out := *e
	if e.Violations != nil {
		out.Violations = append([]string(nil), e.Violations...)
	}
	if e.Metadata != nil {
		out.Metadata = cloneValue(e.Metadata).(map[string]any)
	}
	return &out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = cloneValue(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = cloneValue(val)
		}
		return s
	default:
		return v
	}
}

// Query filters audit entries. Zero values match everything. Start and End
// are inclusive.
type Query struct {
	UserID string     `json:"userId,omitempty"`
	Action Action     `json:"action,omitempty"`
	Start  *time.Time `json:"start,omitempty"`
	End    *time.Time `json:"end,omitempty"`
	Limit  int        `json:"limit,omitempty"`
}

// Matches reports whether e satisfies the filters of q. Limit is ignored.
func (q *Query) Matches(e *Entry) bool {
	if q.UserID != "" && e.UserID != q.UserID {
		return false
	}
	if q.Action != "" && e.Action != q.Action {
		return false
	}
	if q.Start != nil && e.Timestamp.Before(*q.Start) {
		return false
	}
	if q.End != nil && e.Timestamp.After(*q.End) {
		return false
	}
	return true
}

// Statistics summarizes the audit log.
type Statistics struct {
	TotalLogs        int64            `json:"totalLogs"`
	ByAction         map[Action]int64 `json:"byAction"`
	RecentViolations []Entry          `json:"recentViolations"`
}

// VerifyReport is the result of recomputing entry digests.
type VerifyReport struct {
	Checked    int      `json:"checked"`
	Mismatched []string `json:"mismatched"`
}

// OK reports whether every checked entry matched its digest.
func (r VerifyReport) OK() bool {
	return len(r.Mismatched) == 0
}

// Sink is the durable store behind a Logger. Implementations must be safe for
// concurrent use and must never modify or delete appended entries.
type Sink interface {
	// Append stores entry.
	Append(ctx context.Context, entry *Entry) error

	// Query returns entries matching q, newest first, at most q.Limit.
	// Entries with equal timestamps are returned latest-appended first.
	Query(ctx context.Context, q *Query) ([]*Entry, error)

	// Count returns the number of entries matching q.
	Count(ctx context.Context, q *Query) (int64, error)

	// CountByAction groups the entries of userID (all users when empty) by
	// action.
	CountByAction(ctx context.Context, userID string) (map[Action]int64, error)

	// Close releases any resources held by the sink.
	Close() error
}

// Exporter writes entries in a serialization format.
type Exporter interface {
	Export(ctx context.Context, entries []Entry, w io.Writer) error
}
