package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"bastion-hq/gateway/pkg/retrieval"
)

// SQLiteStore persists runtime-added documents. It implements
// retrieval.Persister; Load returns everything appended so far in insertion
// order.
type SQLiteStore struct {
	db        *sql.DB
	path      string
	closeOnce sync.Once

	appendStmt *sql.Stmt
	loadStmt   *sql.Stmt
}

// SQLiteConfig configures the corpus database.
type SQLiteConfig struct {
	// Path is the database file. ":memory:" keeps everything in memory.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteStore opens (and if needed creates) the corpus database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteConfig{Path: path})
}

// NewSQLiteStoreWithConfig opens the corpus database with custom settings.
func NewSQLiteStoreWithConfig(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	// modernc applies connection pragmas through repeated _pragma parameters.
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{db: db, path: cfg.Path}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		content TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		classification TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]',
		embedding TEXT,
		created_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.appendStmt, err = s.db.Prepare(`
		INSERT INTO documents (id, content, source, title, classification, tags, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare append statement: %w", err)
	}

	s.loadStmt, err = s.db.Prepare(`
		SELECT id, content, source, title, classification, tags, embedding, created_at
		FROM documents
		ORDER BY seq
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare load statement: %w", err)
	}

	return nil
}

// Append stores doc. Appending an id that already exists is an error.
func (s *SQLiteStore) Append(ctx context.Context, doc retrieval.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document id cannot be empty")
	}

	tags := doc.Metadata.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	var embeddingJSON sql.NullString
	if len(doc.Embedding) > 0 {
		data, err := json.Marshal(doc.Embedding)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding: %w", err)
		}
		embeddingJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err = s.appendStmt.ExecContext(ctx,
		doc.ID,
		doc.Content,
		doc.Metadata.Source,
		doc.Metadata.Title,
		string(doc.Metadata.Classification),
		string(tagsJSON),
		embeddingJSON,
		doc.Metadata.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to append document %s: %w", doc.ID, err)
	}
	return nil
}

// Load returns every stored document in insertion order.
func (s *SQLiteStore) Load(ctx context.Context) ([]retrieval.Document, error) {
	rows, err := s.loadStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []retrieval.Document
	for rows.Next() {
		var (
			doc            retrieval.Document
			classification string
			tagsJSON       string
			embeddingJSON  sql.NullString
			createdAt      int64
		)
		if err := rows.Scan(&doc.ID, &doc.Content, &doc.Metadata.Source, &doc.Metadata.Title,
			&classification, &tagsJSON, &embeddingJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		doc.Metadata.Classification = retrieval.Classification(classification)
		doc.Metadata.CreatedAt = time.Unix(0, createdAt).UTC()
		if err := json.Unmarshal([]byte(tagsJSON), &doc.Metadata.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags of %s: %w", doc.ID, err)
		}
		if embeddingJSON.Valid {
			if err := json.Unmarshal([]byte(embeddingJSON.String), &doc.Embedding); err != nil {
				return nil, fmt.Errorf("failed to unmarshal embedding of %s: %w", doc.ID, err)
			}
		}

		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// Count returns the number of stored documents.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.appendStmt != nil {
			s.appendStmt.Close()
		}
		if s.loadStmt != nil {
			s.loadStmt.Close()
		}
		err = s.db.Close()
	})
	return err
}
