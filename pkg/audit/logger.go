package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Option configures a Logger.
type Option func(*Logger)

// WithClock overrides the time source used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		l.now = now
	}
}

// WithIDGenerator overrides entry id generation.
func WithIDGenerator(gen func() string) Option {
	return func(l *Logger) {
		l.newID = gen
	}
}

// Logger writes and reads the audit trail. It is safe for concurrent use as
// long as its Sink is.
type Logger struct {
	sink   Sink
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// NewLogger creates a logger writing to sink.
func NewLogger(sink Sink, opts ...Option) *Logger {
	l := &Logger{
		sink:   sink,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.Default().With("component", "audit.logger"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Log assigns an id, timestamp and digest to rec and appends it to the sink.
// Metadata is stored in its JSON form, so the returned entry holds the same
// representation a later query would. Any failure is returned as a
// *WriteError.
func (l *Logger) Log(ctx context.Context, rec Record) (Entry, error) {
	if !rec.Action.Valid() {
		return Entry{}, &WriteError{Action: rec.Action, Cause: fmt.Errorf("invalid action %q", rec.Action)}
	}

	metadata, err := normalizeMetadata(rec.Metadata)
	if err != nil {
		return Entry{}, &WriteError{Action: rec.Action, Cause: err}
	}

	entry := &Entry{
		ID:        l.newID(),
		Timestamp: l.now().UTC(),
		UserID:    rec.UserID,
		Action:    rec.Action,
		Provider:  rec.Provider,
		Prompt:    rec.Prompt,
		Response:  rec.Response,
		Metadata:  metadata,
		IPAddress: rec.IPAddress,
		UserAgent: rec.UserAgent,
	}
	if len(rec.Violations) > 0 {
		entry.Violations = append([]string(nil), rec.Violations...)
	}

	entry.Digest, err = ComputeDigest(entry)
	if err != nil {
		return Entry{}, &WriteError{Action: rec.Action, Cause: err}
	}

	if err := l.sink.Append(ctx, entry); err != nil {
		l.logger.Error("failed to append audit entry",
			"entry_id", entry.ID,
			"action", entry.Action,
			"user_id", entry.UserID,
			"error", err,
		)
		return Entry{}, &WriteError{Action: rec.Action, Cause: err}
	}

	l.logger.Debug("audit entry recorded",
		"entry_id", entry.ID,
		"action", entry.Action,
		"user_id", entry.UserID,
	)

	return *entry.Clone(), nil
}

// QueryLogs returns entries matching q, newest first. A zero limit selects
// DefaultQueryLimit.
func (l *Logger) QueryLogs(ctx context.Context, q Query) ([]Entry, error) {
	if err := ValidateQuery(&q); err != nil {
		return nil, err
	}
	ApplyQueryDefaults(&q)

	entries, err := l.sink.Query(ctx, &q)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = *e
	}
	return out, nil
}

// GetStatistics summarizes the entries of userID, or of every user when
// userID is empty.
func (l *Logger) GetStatistics(ctx context.Context, userID string) (Statistics, error) {
	scope := &Query{UserID: userID}

	total, err := l.sink.Count(ctx, scope)
	if err != nil {
		return Statistics{}, err
	}

	byAction, err := l.sink.CountByAction(ctx, userID)
	if err != nil {
		return Statistics{}, err
	}

	recent, err := l.QueryLogs(ctx, Query{
		UserID: userID,
		Action: ActionGuardrailBlock,
		Limit:  RecentViolationsLimit,
	})
	if err != nil {
		return Statistics{}, err
	}

	return Statistics{
		TotalLogs:        total,
		ByAction:         byAction,
		RecentViolations: recent,
	}, nil
}

// Verify recomputes the digest of every entry matching q and reports the ids
// whose stored digest differs.
func (l *Logger) Verify(ctx context.Context, q Query) (VerifyReport, error) {
	entries, err := l.QueryLogs(ctx, q)
	if err != nil {
		return VerifyReport{}, err
	}

	report := VerifyReport{Checked: len(entries), Mismatched: []string{}}
	for i := range entries {
		digest, err := ComputeDigest(&entries[i])
		if err != nil {
			return VerifyReport{}, fmt.Errorf("recompute digest of %s: %w", entries[i].ID, err)
		}
		if digest != entries[i].Digest {
			report.Mismatched = append(report.Mismatched, entries[i].ID)
		}
	}

	if !report.OK() {
		l.logger.Warn("audit digest mismatch",
			"checked", report.Checked,
			"mismatched", len(report.Mismatched),
		)
	}
	return report, nil
}

// Close closes the underlying sink.
func (l *Logger) Close() error {
	return l.sink.Close()
}

// normalizeMetadata round-trips metadata through JSON so that every sink
// stores and returns the same representation.
func normalizeMetadata(metadata map[string]any) (map[string]any, error) {
	if len(metadata) == 0 {
		return nil, nil
	}

	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("serialize metadata: %w", err)
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("deserialize metadata: %w", err)
	}
	return out, nil
}
