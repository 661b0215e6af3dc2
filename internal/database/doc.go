// Package database provides SQLite-based storage for crawl results.
//
// This package implements the ContentDB, which stores:
//   - Crawl sessions with their topic and final statistics
//   - Accepted content records, one row per URL per session
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// The package also provides the crawler-facing Store implementations:
// SessionStore binds records to a database session, and MemoryStore
// serves runs with persistence disabled.
package database
