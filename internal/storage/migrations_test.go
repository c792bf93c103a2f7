package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMigrationsFresh(t *testing.T) {
	db, err := openDatabase(":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	ctx := context.Background()

	require.NoError(t, ApplyMigrations(ctx, db))

	var version string
	err = db.QueryRowContext(ctx,
		"SELECT version FROM schema_version ORDER BY applied_at DESC, version DESC LIMIT 1").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)

	// 1.1.0 added the search_keywords column.
	exists, err := columnExists(ctx, db, "items", "search_keywords")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestApplyMigrationsIdempotent(t *testing.T) {
	db, err := openDatabase(":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	ctx := context.Background()

	require.NoError(t, ApplyMigrations(ctx, db))
	require.NoError(t, ApplyMigrations(ctx, db))

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_version").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(AllMigrations), count)
}

func TestMigrationV11PostOnUpgradedSchema(t *testing.T) {
	db, err := openDatabase(":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	ctx := context.Background()

	// Simulate a 1.0.0-era database.
	_, err = db.ExecContext(ctx, migrationV1Up)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES ('1.0.0')")
	require.NoError(t, err)

	exists, err := columnExists(ctx, db, "items", "search_keywords")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, ApplyMigrations(ctx, db))

	exists, err = columnExists(ctx, db, "items", "search_keywords")
	require.NoError(t, err)
	assert.True(t, exists)

	// Re-running must not fail on the now-present column.
	require.NoError(t, migrationV11Post(ctx, db))
}

func TestSeedTypesNotReinserted(t *testing.T) {
	db, err := openDatabase(":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	ctx := context.Background()

	require.NoError(t, ApplyMigrations(ctx, db))

	// A type the user deletes stays deleted across restarts.
	_, err = db.ExecContext(ctx, "DELETE FROM item_types WHERE type = 'history'")
	require.NoError(t, err)

	require.NoError(t, ApplyMigrations(ctx, db))

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM item_types WHERE type = 'history'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestColumnExists(t *testing.T) {
	db, err := openDatabase(":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	ctx := context.Background()

	require.NoError(t, ApplyMigrations(ctx, db))

	exists, err := columnExists(ctx, db, "items", "name")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = columnExists(ctx, db, "items", "no_such_column")
	require.NoError(t, err)
	assert.False(t, exists)
}
