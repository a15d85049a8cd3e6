package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/pkordes/tagbot/internal/domain"
)

// sqliteTagRepo is the SQLite implementation of TagRepo.
type sqliteTagRepo struct {
	db sqlDB
}

// NewSQLiteTagRepo constructs a SQLite TagRepo backed by the provided handle.
// In production pass the process-wide *sql.DB; in tests a *sql.Tx also works.
func NewSQLiteTagRepo(db sqlDB) TagRepo {
	return &sqliteTagRepo{db: db}
}

func (r *sqliteTagRepo) ListNames(ctx context.Context, guildID int64) ([]string, error) {
	const q = `SELECT name FROM tags WHERE guild_id = @guild_id`

	rows, err := r.db.QueryContext(ctx, q, sql.Named("guild_id", guildID))
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListNames: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("repo.TagRepo.ListNames: scan: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListNames: rows: %w", err)
	}
	return names, nil
}

func (r *sqliteTagRepo) GetContent(ctx context.Context, guildID int64, name string) (string, error) {
	const q = `SELECT content FROM tags WHERE guild_id = @guild_id AND name = @name`

	var content string
	row := r.db.QueryRowContext(ctx, q, sql.Named("guild_id", guildID), sql.Named("name", name))
	if err := scanOne(row, &content); err != nil {
		return "", fmt.Errorf("repo.TagRepo.GetContent: %w", err)
	}
	return content, nil
}

func (r *sqliteTagRepo) Create(ctx context.Context, tag domain.Tag) error {
	const q = `
		INSERT INTO tags (guild_id, user_id, name, content)
		VALUES (@guild_id, @user_id, @name, @content)`

	_, err := r.db.ExecContext(ctx, q,
		sql.Named("guild_id", tag.GuildID),
		sql.Named("user_id", tag.UserID),
		sql.Named("name", tag.Name),
		sql.Named("content", tag.Content),
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return fmt.Errorf("repo.TagRepo.Create: %w", domain.ErrAlreadyExists)
		}
		return fmt.Errorf("repo.TagRepo.Create: %w", err)
	}
	return nil
}

func (r *sqliteTagRepo) GetOwner(ctx context.Context, guildID int64, name string) (int64, error) {
	const q = `SELECT user_id FROM tags WHERE guild_id = @guild_id AND name = @name`

	var userID int64
	row := r.db.QueryRowContext(ctx, q, sql.Named("guild_id", guildID), sql.Named("name", name))
	if err := scanOne(row, &userID); err != nil {
		return 0, fmt.Errorf("repo.TagRepo.GetOwner: %w", err)
	}
	return userID, nil
}

func (r *sqliteTagRepo) Update(ctx context.Context, guildID, userID int64, name, content string) error {
	const q = `
		UPDATE tags SET content = @content
		WHERE guild_id = @guild_id AND user_id = @user_id AND name = @name`

	_, err := r.db.ExecContext(ctx, q,
		sql.Named("content", content),
		sql.Named("guild_id", guildID),
		sql.Named("user_id", userID),
		sql.Named("name", name),
	)
	if err != nil {
		return fmt.Errorf("repo.TagRepo.Update: %w", err)
	}
	return nil
}

func (r *sqliteTagRepo) Delete(ctx context.Context, guildID, userID int64, name string) error {
	const q = `DELETE FROM tags WHERE guild_id = @guild_id AND user_id = @user_id AND name = @name`

	_, err := r.db.ExecContext(ctx, q,
		sql.Named("guild_id", guildID),
		sql.Named("user_id", userID),
		sql.Named("name", name),
	)
	if err != nil {
		return fmt.Errorf("repo.TagRepo.Delete: %w", err)
	}
	return nil
}

// isSQLiteUniqueViolation reports whether err is a primary key or unique
// constraint failure. The message check covers builds that surface only the
// primary result code.
func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
