// Package sqlite persists analysis results with modernc.org/sqlite, a pure
// Go SQLite implementation that requires no CGO.
//
// An analysis owns its concepts and a concept owns its excerpts; both
// relations use ON DELETE CASCADE, so deleting an analysis removes
// everything it owns. Results are written in a single transaction.
//
// # Schema
//
// The schema is managed through versioned migrations in migrations/. Each
// migration is a pair of NNN_name.up.sql and NNN_name.down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.insight/data/insight.db
package sqlite
