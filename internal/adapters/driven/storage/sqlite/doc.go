// Package sqlite provides the default SQLite-backed snapshot store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// A snapshot is stored as one row per chunk holding its ordinal, document ID,
// chunk index, title, content and embedding, so vectors and chunk records
// cannot drift apart on disk.
//
// # Data Location
//
// By default, the database is stored at ~/.docmind/data/docmind.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. Save replaces the snapshot in a
// single transaction.
package sqlite
