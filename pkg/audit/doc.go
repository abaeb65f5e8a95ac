// Package audit records an append-only trail of every gateway decision.
//
// A Logger assigns each entry an id and timestamp, normalizes its structured
// fields to their JSON form and writes it to a Sink. Entries are never
// updated or deleted. Each stored entry carries a digest: the SHA-256 of the
// RFC 8785 canonical JSON of the entry, which Verify recomputes to detect
// tampering in the underlying store.
//
// # Basic Usage
//
//	sink, err := storage.NewSQLiteSink(storage.DefaultSQLiteConfig())
//	if err != nil {
//	    return err
//	}
//	logger := audit.NewLogger(sink)
//	defer logger.Close()
//
//	entry, err := logger.Log(ctx, audit.Record{
//	    UserID: "user-1",
//	    Action: audit.ActionResponse,
//	    Prompt: "How should we implement MFA?",
//	})
//
// Log does not swallow sink failures: it returns a *WriteError matching
// ErrAuditWrite and the caller decides whether the failure is fatal.
//
// # Backends
//
// The storage subpackage provides an in-memory sink for tests and a SQLite
// sink for deployments. The export subpackage writes entries as JSON or CSV.
package audit
