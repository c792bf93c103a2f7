package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.1.0"
)

// Migration represents a database schema migration. Post, when set, runs
// after Up and may inspect the live schema; it is used for conditional
// changes such as adding a column only when it is absent.
type Migration struct {
	Version string
	Up      string
	Down    string
	Post    func(ctx context.Context, db *sql.DB) error
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
	{
		Version: "1.1.0",
		Post:    migrationV11Post,
		Down:    migrationV11Down,
	},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Catalog items: launchable targets
CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    name TEXT NOT NULL,
    name_en TEXT DEFAULT '',
    name_cn TEXT DEFAULT '',
    path TEXT DEFAULT '',
    icon TEXT DEFAULT '',
    description TEXT DEFAULT '',
    category TEXT DEFAULT '',
    launch_count INTEGER NOT NULL DEFAULT 0,
    last_used TIMESTAMP,
    score REAL NOT NULL DEFAULT 0,
    indexed_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_type ON items(type);
CREATE INDEX IF NOT EXISTS idx_items_name ON items(name);
CREATE INDEX IF NOT EXISTS idx_items_indexed_at ON items(indexed_at);
CREATE INDEX IF NOT EXISTS idx_items_rank ON items(score DESC, launch_count DESC);

-- Item type descriptors. Seeded here exactly once per database: a row a user
-- later deletes must never come back.
CREATE TABLE IF NOT EXISTS item_types (
    type TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    icon TEXT DEFAULT '',
    description TEXT DEFAULT ''
);

INSERT OR IGNORE INTO item_types (type, label, icon, description) VALUES
    ('app', 'Applications', 'app', 'Installed applications'),
    ('file', 'Files', 'file', 'Files and folders'),
    ('command', 'Commands', 'terminal', 'Shell commands'),
    ('web', 'Websites', 'globe', 'URLs and web pages'),
    ('browser', 'Browser Shortcuts', 'bookmark', 'Browser bookmarks and shortcuts'),
    ('search-engine', 'Search Engines', 'search', 'Search engine templates'),
    ('history', 'History', 'clock', 'Previously launched entries'),
    ('custom', 'Custom', 'star', 'User-defined entries');

-- User-defined aliases; name is stored lowercase so the UNIQUE constraint
-- enforces case-insensitive uniqueness.
CREATE TABLE IF NOT EXISTS aliases (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    command TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT 'command',
    description TEXT DEFAULT '',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    use_count INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_aliases_usage ON aliases(use_count DESC, created_at DESC);
`

const migrationV1Down = `
DROP TABLE IF EXISTS aliases;
DROP TABLE IF EXISTS item_types;
DROP TABLE IF EXISTS items;
DROP TABLE IF EXISTS schema_version;
`

const migrationV11Down = `
-- SQLite cannot drop a column portably across driver versions; the column is
-- left in place and ignored on rollback.
`

// migrationV11Post adds the search_keywords match surface to databases
// created before 1.1.0. The schema is inspected first so the step is
// idempotent instead of treating "duplicate column" as expected control flow.
func migrationV11Post(ctx context.Context, db *sql.DB) error {
	exists, err := columnExists(ctx, db, "items", "search_keywords")
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = db.ExecContext(ctx, `ALTER TABLE items ADD COLUMN search_keywords TEXT DEFAULT ''`)
	return err
}

// columnExists reports whether table has a column with the given name.
func columnExists(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s schema: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// ApplyMigrations runs all pending migrations
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	// Check if schema_version table exists
	var tableName string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)

	// Parse current version (default to 0.0.0 if no migrations applied or table doesn't exist)
	var currentVersion *semver.Version
	if err == sql.ErrNoRows {
		currentVersion = semver.MustParse("0.0.0")
	} else if err != nil {
		return fmt.Errorf("failed to check schema_version table: %w", err)
	} else {
		var currentVersionStr string
		// applied_at has second resolution; version breaks ties from one startup
		err = db.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC, version DESC LIMIT 1").Scan(&currentVersionStr)
		if err == sql.ErrNoRows || currentVersionStr == "" {
			currentVersion = semver.MustParse("0.0.0")
		} else if err != nil {
			return fmt.Errorf("failed to read schema_version: %w", err)
		} else {
			currentVersion, err = semver.NewVersion(currentVersionStr)
			if err != nil {
				return fmt.Errorf("invalid current schema version %s: %w", currentVersionStr, err)
			}
		}
	}

	// Run migrations in order
	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}

		if !currentVersion.LessThan(migrationVersion) {
			continue // Already applied
		}

		if migration.Up != "" {
			if _, err := db.ExecContext(ctx, migration.Up); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
			}
		}
		if migration.Post != nil {
			if err := migration.Post(ctx, db); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
			}
		}

		// Record migration
		if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}

		currentVersion = migrationVersion
	}

	return nil
}
