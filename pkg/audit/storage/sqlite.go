package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"bastion-hq/gateway/pkg/audit"
)

// SQLiteConfig contains configuration for the SQLite sink.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteSink implements audit.Sink using SQLite.
type SQLiteSink struct {
	db         *sql.DB
	config     *SQLiteConfig
	appendStmt *sql.Stmt
	closeOnce  sync.Once
	logger     *slog.Logger
}

// NewSQLiteSink opens the database, creating the schema if needed.
func NewSQLiteSink(config *SQLiteConfig) (*SQLiteSink, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Path == "" {
		return nil, audit.NewStorageError("sqlite", "open", fmt.Errorf("path cannot be empty"))
	}
	if config.MaxOpenConns <= 0 {
		config.MaxOpenConns = 10
	}
	if config.MaxIdleConns <= 0 {
		config.MaxIdleConns = 5
	}
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = 5 * time.Second
	}

	logger := slog.Default().With("component", "audit.storage.sqlite")

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d", config.Path, config.BusyTimeout.Milliseconds())
	if config.WALMode {
		dsn += "&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteSink{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite audit sink initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

func (s *SQLiteSink) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return audit.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return audit.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.appendStmt, err = s.db.Prepare(`
		INSERT INTO audit_log (
			id, timestamp, user_id, action, provider, prompt, response,
			guardrail_violations, metadata, ip_address, user_agent, digest
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return audit.NewStorageError("sqlite", "prepare_append", err)
	}

	return nil
}

// Append inserts entry.
func (s *SQLiteSink) Append(ctx context.Context, entry *audit.Entry) error {
	var violations, metadata any
	if len(entry.Violations) > 0 {
		data, err := json.Marshal(entry.Violations)
		if err != nil {
			return audit.NewStorageError("sqlite", "append", err)
		}
		violations = string(data)
	}
	if len(entry.Metadata) > 0 {
		data, err := json.Marshal(entry.Metadata)
		if err != nil {
			return audit.NewStorageError("sqlite", "append", err)
		}
		metadata = string(data)
	}

	_, err := s.appendStmt.ExecContext(ctx,
		entry.ID,
		entry.Timestamp.UnixNano(),
		entry.UserID,
		string(entry.Action),
		nullString(entry.Provider),
		entry.Prompt,
		nullString(entry.Response),
		violations,
		metadata,
		nullString(entry.IPAddress),
		nullString(entry.UserAgent),
		entry.Digest,
	)
	if err != nil {
		return audit.NewStorageError("sqlite", "append", err)
	}
	return nil
}

// Query returns matching entries, newest first.
func (s *SQLiteSink) Query(ctx context.Context, q *audit.Query) ([]*audit.Entry, error) {
	where, args := buildWhereClause(q)

	sqlQuery := "SELECT " + selectColumns + " FROM audit_log"
	if where != "" {
		sqlQuery += " WHERE " + where
	}
	sqlQuery += " ORDER BY timestamp DESC, seq DESC"
	if q.Limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	entries := []*audit.Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}

	return entries, nil
}

// Count returns the number of matching entries.
func (s *SQLiteSink) Count(ctx context.Context, q *audit.Query) (int64, error) {
	where, args := buildWhereClause(q)

	sqlQuery := "SELECT COUNT(*) FROM audit_log"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// CountByAction groups the entries of userID by action.
func (s *SQLiteSink) CountByAction(ctx context.Context, userID string) (map[audit.Action]int64, error) {
	sqlQuery := "SELECT action, COUNT(*) FROM audit_log"
	var args []any
	if userID != "" {
		sqlQuery += " WHERE user_id = ?"
		args = append(args, userID)
	}
	sqlQuery += " GROUP BY action"

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "count_by_action", err)
	}
	defer rows.Close()

	counts := make(map[audit.Action]int64)
	for rows.Next() {
		var action string
		var n int64
		if err := rows.Scan(&action, &n); err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		counts[audit.Action(action)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "count_by_action", err)
	}
	return counts, nil
}

// Close releases the database.
func (s *SQLiteSink) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.appendStmt != nil {
			s.appendStmt.Close()
		}
		if cerr := s.db.Close(); cerr != nil {
			err = audit.NewStorageError("sqlite", "close", cerr)
			return
		}
		s.logger.Info("SQLite audit sink closed")
	})
	return err
}

// buildWhereClause returns the WHERE clause (without "WHERE") and its
// arguments.
func buildWhereClause(q *audit.Query) (string, []any) {
	var conditions []string
	var args []any

	if q.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, q.UserID)
	}
	if q.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, string(q.Action))
	}
	if q.Start != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, q.Start.UnixNano())
	}
	if q.End != nil {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, q.End.UnixNano())
	}

	return strings.Join(conditions, " AND "), args
}

func scanEntry(rows *sql.Rows) (*audit.Entry, error) {
	var (
		entry                                    audit.Entry
		action                                   string
		timestamp                                int64
		provider, response, ipAddress, userAgent sql.NullString
		violations, metadata                     sql.NullString
	)

	err := rows.Scan(
		&entry.ID, &timestamp, &entry.UserID, &action, &provider, &entry.Prompt, &response,
		&violations, &metadata, &ipAddress, &userAgent, &entry.Digest,
	)
	if err != nil {
		return nil, err
	}

	entry.Action = audit.Action(action)
	entry.Timestamp = time.Unix(0, timestamp).UTC()
	entry.Provider = provider.String
	entry.Response = response.String
	entry.IPAddress = ipAddress.String
	entry.UserAgent = userAgent.String

	if violations.Valid {
		if err := json.Unmarshal([]byte(violations.String), &entry.Violations); err != nil {
			return nil, fmt.Errorf("decode violations of %s: %w", entry.ID, err)
		}
	}
	if metadata.Valid {
		if err := json.Unmarshal([]byte(metadata.String), &entry.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata of %s: %w", entry.ID, err)
		}
	}

	return &entry, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
