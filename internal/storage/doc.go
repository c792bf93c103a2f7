// Package storage provides the durable SQLite backing for the launcher
// catalog and the alias table.
//
// The database is a single file (":memory:" in tests) holding three tables:
// items, item_types and aliases. Schema changes ship as versioned migrations
// compared with semver, so databases created by older builds upgrade in place
// on startup.
//
// Store has an explicit lifecycle. New only records the path; Init opens the
// database and applies migrations, and concurrent first-callers converge on a
// single in-flight initialization. Before Init completes every operation
// returns types.ErrNotReady rather than blocking, leaving the degradation
// policy to the caller.
//
// Two SQLite drivers are supported via build tags. The default build uses the
// pure-Go modernc.org/sqlite driver and needs no CGO; building with the
// sqlite_cgo tag switches to mattn/go-sqlite3.
package storage
