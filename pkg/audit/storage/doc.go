// Package storage provides audit.Sink backends.
//
// MemorySink keeps entries in process memory and is meant for tests and
// ephemeral deployments. SQLiteSink stores entries in a SQLite database
// whose triggers reject UPDATE and DELETE, so the table itself enforces the
// append-only contract.
package storage
