// Package store persists the slug to target mapping behind the short links.
//
// # Architecture
//
// LinkStore is the only contract the rest of the service sees. Two implementations exist:
//
//   - SQLiteStore: the production store, one SQLite file opened at startup and kept open
//     for the life of the process.
//   - MockStore: an in-memory map with identical allocation rules, for handler tests.
//
// # Allocation
//
// Put accepts a caller-chosen slug only if it is non-empty and consists of ASCII letters
// and digits. Such slugs are written without checking occupancy, so an existing link is
// replaced. Any other input falls through to generation: random slugs of the requested
// length are drawn until one is free. The loop is unbounded unless WithMaxAttempts is set.
//
// The occupancy check and the write are separate statements. Two concurrent Puts can pick
// the same free candidate and the later write wins. Size the slug length so the keyspace
// stays sparse.
//
// # SQLite Configuration
//
// The store uses WAL mode and a busy timeout:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA busy_timeout=5000;
//
// Both modernc.org/sqlite (driver "sqlite") and github.com/mattn/go-sqlite3 (driver
// "sqlite3") are registered. The schema is a single table:
//
//	links(slug TEXT PRIMARY KEY, target TEXT NOT NULL, created_at TEXT NOT NULL)
//
// # Error Handling
//
//   - ErrNotFound: no link for the slug
//   - ErrCorrupt: a stored target is not UTF-8 or not a URI
//   - ErrKeyspaceExhausted: the attempt cap was hit
//
// Any other error is an I/O failure. Callers treat I/O failures and ErrCorrupt as fatal.
package store
