// Package migrations embeds the SQL migration files so they can be used
// by the goose programmatic API in tests, the migrate command, and bot startup.
//
// Each supported engine has its own directory because column types differ:
// SQLite ids are INTEGER (always 64-bit there), Postgres ids are BIGINT.
package migrations

import (
	"embed"
	"io/fs"
)

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

// SQLite returns the migrations for the SQLite schema.
func SQLite() fs.FS {
	return mustSub("sqlite")
}

// Postgres returns the migrations for the Postgres schema.
func Postgres() fs.FS {
	return mustSub("postgres")
}

// mustSub panics if dir is not one of the embedded directories.
func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(FS, dir)
	if err != nil {
		panic("migrations: " + err.Error())
	}
	return sub
}
