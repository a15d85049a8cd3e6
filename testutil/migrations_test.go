package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tagbot/internal/database"
	"github.com/pkordes/tagbot/testutil"
)

// TestMigrations_SQLite verifies the full migration round-trip against a
// throwaway SQLite file: up creates tags, down-to 0 removes it.
func TestMigrations_SQLite(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	provider, err := database.NewProvider(database.SQLite, db)
	require.NoError(t, err, "create goose provider")

	ctx := context.Background()

	results, err := provider.Up(ctx)
	require.NoError(t, err, "goose up")
	assert.NotEmpty(t, results, "expected at least one migration to be applied")
	assert.True(t, sqliteTableExists(t, db, "tags"), "expected table tags to exist")

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")
	assert.False(t, sqliteTableExists(t, db, "tags"), "expected table tags to be dropped")
}

// TestMigrations_SQLite_AdoptsExistingTable verifies that a database created
// by an earlier deployment (table present, no goose bookkeeping) migrates
// cleanly and keeps its rows.
func TestMigrations_SQLite_AdoptsExistingTable(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
		CREATE TABLE tags (
			guild_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			content TEXT NOT NULL,
			PRIMARY KEY(guild_id, name)
		)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO tags VALUES (1, 2, 'greet', 'hello')`)
	require.NoError(t, err)

	provider, err := database.NewProvider(database.SQLite, db)
	require.NoError(t, err)
	_, err = provider.Up(ctx)
	require.NoError(t, err)

	var content string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT content FROM tags WHERE name = 'greet'`).Scan(&content))
	assert.Equal(t, "hello", content)
}

// TestMigrations_Postgres is the same round-trip against a real Postgres
// database. Skipped when TEST_DATABASE_URL is not set.
func TestMigrations_Postgres(t *testing.T) {
	db := testutil.NewSQLDB(t)

	provider, err := database.NewProvider(database.Postgres, db)
	require.NoError(t, err, "create goose provider")

	ctx := context.Background()

	// Another package's TestMain may have already applied migrations against
	// this shared test DB. Reset first so this test is order-independent.
	if _, err := provider.DownTo(ctx, 0); err != nil {
		t.Fatalf("TestMigrations_Postgres: initial reset: %v", err)
	}

	results, err := provider.Up(ctx)
	require.NoError(t, err, "goose up")
	assert.NotEmpty(t, results)
	assert.True(t, pgTableExists(t, db, "tags"), "expected table tags to exist")

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")
	assert.False(t, pgTableExists(t, db, "tags"), "expected table tags to not exist")

	// Leave the schema in place for packages that run after this one.
	_, err = provider.Up(ctx)
	require.NoError(t, err, "goose up (restore)")
}

func sqliteTableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()

	const q = `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), q, table).Scan(&n))
	return n > 0
}

func pgTableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()

	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public'
			AND   table_name   = $1
		)`
	var exists bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, table).Scan(&exists))
	return exists
}
