// Package sqlite provides a SQLite-backed implementation of driven.ChunkStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Chunks are keyed by content hash; seq records insertion order.
//
// # Data Location
//
// By default, the database is stored at ~/.sercha-rag/data/chunks.db
//
// # Thread Safety
//
// All operations are thread-safe. Deduplication relies on the primary key:
// inserts use ON CONFLICT DO NOTHING, so concurrent writers of the same
// hash store it exactly once.
package sqlite
