// Package database owns the single storage handle the bot uses for its whole
// lifetime. It opens SQLite (default) or Postgres, applies the embedded goose
// migrations, and hands out the matching repo.TagRepo.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers "sqlite" driver for database/sql

	"github.com/pkordes/tagbot/internal/repo"
	"github.com/pkordes/tagbot/migrations"
)

// Dialect names the storage engine behind a DB.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// Options selects the storage engine. URL wins when both are set.
type Options struct {
	// Path is the SQLite database file.
	Path string
	// URL is a Postgres connection string.
	URL string
}

// DB is the process-wide storage handle.
type DB struct {
	dialect Dialect
	sqlDB   *sql.DB
	pool    *pgxpool.Pool // Postgres only
	tags    repo.TagRepo
}

// Open connects to the configured engine and verifies it is reachable.
// It does not run migrations; call Migrate for that.
func Open(ctx context.Context, opts Options) (*DB, error) {
	if strings.TrimSpace(opts.URL) != "" {
		return openPostgres(ctx, opts.URL)
	}
	return openSQLite(ctx, opts.Path)
}

func openSQLite(ctx context.Context, path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database.Open: sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("database.Open: open sqlite: %w", err)
	}

	// One connection for the process; SQLite serializes writers anyway.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database.Open: ping sqlite: %w", err)
	}
	return &DB{
		dialect: SQLite,
		sqlDB:   sqlDB,
		tags:    repo.NewSQLiteTagRepo(sqlDB),
	}, nil
}

func openPostgres(ctx context.Context, url string) (*DB, error) {
	// pgxpool.New does not open connections immediately; Ping does.
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("database.Open: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database.Open: ping postgres: %w", err)
	}
	return &DB{
		dialect: Postgres,
		// goose needs database/sql; share the pool instead of opening a second one.
		sqlDB: stdlib.OpenDBFromPool(pool),
		pool:  pool,
		tags:  repo.NewTagRepo(pool),
	}, nil
}

// Dialect reports which engine the handle is connected to.
func (d *DB) Dialect() Dialect {
	return d.dialect
}

// Tags returns the TagRepo bound to this handle.
func (d *DB) Tags() repo.TagRepo {
	return d.tags
}

// Ping checks that the database still answers.
func (d *DB) Ping(ctx context.Context) error {
	if d.pool != nil {
		return d.pool.Ping(ctx)
	}
	return d.sqlDB.PingContext(ctx)
}

// Close releases the handle. Safe to call on a nil DB.
func (d *DB) Close() error {
	if d == nil {
		return nil
	}
	err := d.sqlDB.Close()
	if d.pool != nil {
		d.pool.Close()
	}
	return err
}

// Migrate applies all pending migrations.
func (d *DB) Migrate(ctx context.Context) ([]*goose.MigrationResult, error) {
	provider, err := NewProvider(d.dialect, d.sqlDB)
	if err != nil {
		return nil, err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("database.Migrate: %w", err)
	}
	return results, nil
}

// MigrateDown rolls back the most recently applied migration.
func (d *DB) MigrateDown(ctx context.Context) (*goose.MigrationResult, error) {
	provider, err := NewProvider(d.dialect, d.sqlDB)
	if err != nil {
		return nil, err
	}
	result, err := provider.Down(ctx)
	if err != nil {
		return nil, fmt.Errorf("database.MigrateDown: %w", err)
	}
	return result, nil
}

// MigrationStatus lists every known migration and whether it is applied.
func (d *DB) MigrationStatus(ctx context.Context) ([]*goose.MigrationStatus, error) {
	provider, err := NewProvider(d.dialect, d.sqlDB)
	if err != nil {
		return nil, err
	}
	status, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("database.MigrationStatus: %w", err)
	}
	return status, nil
}

// NewProvider builds a goose provider over the embedded migrations for dialect.
// Exported for tests and tools that hold a bare *sql.DB.
func NewProvider(dialect Dialect, sqlDB *sql.DB) (*goose.Provider, error) {
	var (
		gooseDialect goose.Dialect
		fsys         fs.FS
	)
	switch dialect {
	case SQLite:
		gooseDialect, fsys = goose.DialectSQLite3, migrations.SQLite()
	case Postgres:
		gooseDialect, fsys = goose.DialectPostgres, migrations.Postgres()
	default:
		return nil, fmt.Errorf("database.NewProvider: unknown dialect %q", dialect)
	}
	provider, err := goose.NewProvider(gooseDialect, sqlDB, fsys)
	if err != nil {
		return nil, fmt.Errorf("database.NewProvider: %w", err)
	}
	return provider, nil
}
