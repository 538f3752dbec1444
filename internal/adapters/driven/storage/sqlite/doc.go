// Package sqlite provides a local SearchStore backed by a single SQLite file.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Ranking
//
// Lexical ranking uses an FTS5 table kept in sync with the documents table by
// triggers and scored with bm25, title weighted twice. Vector ranking loads the
// stored embeddings for the site filter and scores them by cosine similarity in Go.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.kilde/data/kilde.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
