package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/tagbot/internal/domain"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// TagRepo defines the persistence operations for Tags.
// Ownership is NOT checked here: Update and Delete filter on the supplied
// user id and silently affect zero rows when it does not match.
type TagRepo interface {
	// ListNames returns every tag name in the guild in storage order.
	// Returns an empty slice, not an error, when the guild has no tags.
	ListNames(ctx context.Context, guildID int64) ([]string, error)

	// GetContent returns the content of one tag.
	// Returns domain.ErrNotFound if the guild has no tag with that name.
	GetContent(ctx context.Context, guildID int64, name string) (string, error)

	// Create inserts a new tag. Returns domain.ErrAlreadyExists when the
	// storage engine reports a (guild_id, name) key conflict.
	Create(ctx context.Context, tag domain.Tag) error

	// GetOwner returns the user id that created the tag.
	// Returns domain.ErrNotFound if the guild has no tag with that name.
	GetOwner(ctx context.Context, guildID int64, name string) (int64, error)

	// Update replaces the content of the tag matching guild, user, and name.
	// Zero matching rows is not an error.
	Update(ctx context.Context, guildID, userID int64, name, content string) error

	// Delete removes the tag matching guild, user, and name.
	// Zero matching rows is not an error.
	Delete(ctx context.Context, guildID, userID int64, name string) error
}

// pgTagRepo is the Postgres implementation of TagRepo.
type pgTagRepo struct {
	db db
}

// NewTagRepo constructs a Postgres TagRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTagRepo(db db) TagRepo {
	return &pgTagRepo{db: db}
}

func (r *pgTagRepo) ListNames(ctx context.Context, guildID int64) ([]string, error) {
	const q = `SELECT name FROM tags WHERE guild_id = @guild_id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"guild_id": guildID})
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

func (r *pgTagRepo) GetContent(ctx context.Context, guildID int64, name string) (string, error) {
	const q = `SELECT content FROM tags WHERE guild_id = @guild_id AND name = @name`

	var content string
	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"guild_id": guildID, "name": name})
	if err := scanOne(row, &content); err != nil {
		return "", fmt.Errorf("repo.TagRepo.GetContent: %w", err)
	}
	return content, nil
}

// Create relies on the primary key to reject duplicates. ON CONFLICT DO
// NOTHING keeps an enclosing transaction usable after a conflict; zero rows
// inserted means the key was taken.
func (r *pgTagRepo) Create(ctx context.Context, tag domain.Tag) error {
	const q = `
		INSERT INTO tags (guild_id, user_id, name, content)
		VALUES (@guild_id, @user_id, @name, @content)
		ON CONFLICT (guild_id, name) DO NOTHING`

	result, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"guild_id": tag.GuildID,
		"user_id":  tag.UserID,
		"name":     tag.Name,
		"content":  tag.Content,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("repo.TagRepo.Create: %w", domain.ErrAlreadyExists)
		}
		return fmt.Errorf("repo.TagRepo.Create: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("repo.TagRepo.Create: %w", domain.ErrAlreadyExists)
	}
	return nil
}

func (r *pgTagRepo) GetOwner(ctx context.Context, guildID int64, name string) (int64, error) {
	const q = `SELECT user_id FROM tags WHERE guild_id = @guild_id AND name = @name`

	var userID int64
	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"guild_id": guildID, "name": name})
	if err := scanOne(row, &userID); err != nil {
		return 0, fmt.Errorf("repo.TagRepo.GetOwner: %w", err)
	}
	return userID, nil
}

func (r *pgTagRepo) Update(ctx context.Context, guildID, userID int64, name, content string) error {
	const q = `
		UPDATE tags SET content = @content
		WHERE guild_id = @guild_id AND user_id = @user_id AND name = @name`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"content":  content,
		"guild_id": guildID,
		"user_id":  userID,
		"name":     name,
	})
	if err != nil {
		return fmt.Errorf("repo.TagRepo.Update: %w", err)
	}
	return nil
}

func (r *pgTagRepo) Delete(ctx context.Context, guildID, userID int64, name string) error {
	const q = `DELETE FROM tags WHERE guild_id = @guild_id AND user_id = @user_id AND name = @name`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{"guild_id": guildID, "user_id": userID, "name": name})
	if err != nil {
		return fmt.Errorf("repo.TagRepo.Delete: %w", err)
	}
	return nil
}

// scanOne scans a single-row result into dest, mapping the "no rows" error
// of either driver to domain.ErrNotFound.
func scanOne(s scanner, dest ...any) error {
	err := s.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}
