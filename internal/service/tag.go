// Package service contains the business logic for the tag bot.
// Services validate inputs, enforce ownership, and orchestrate repo calls.
// No SQL lives here — services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"

	"github.com/pkordes/tagbot/internal/domain"
	"github.com/pkordes/tagbot/internal/repo"
)

// TagService implements business logic for Tag operations.
// Its primary responsibility is ownership: only the user recorded at creation
// may edit or delete a tag, and that is checked here before the store is asked
// to mutate anything.
type TagService struct {
	tags repo.TagRepo
}

// NewTagService constructs a TagService backed by the provided TagRepo.
func NewTagService(tags repo.TagRepo) *TagService {
	return &TagService{tags: tags}
}

// ListNames returns all tag names in the guild.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TagService) ListNames(ctx context.Context, guildID int64) ([]string, error) {
	names, err := s.tags.ListNames(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.ListNames: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// Content returns the stored content of a tag.
// Returns domain.ErrNotFound if the guild has no such tag.
func (s *TagService) Content(ctx context.Context, guildID int64, name string) (string, error) {
	content, err := s.tags.GetContent(ctx, guildID, name)
	if err != nil {
		return "", fmt.Errorf("service.TagService.Content: %w", err)
	}
	return content, nil
}

// Create stores a new tag owned by tag.UserID.
// Returns domain.ErrValidation for an empty name or content and
// domain.ErrAlreadyExists when the name is taken in the guild.
func (s *TagService) Create(ctx context.Context, tag domain.Tag) error {
	if tag.Name == "" {
		return fmt.Errorf("service.TagService.Create: %w: name is required", domain.ErrValidation)
	}
	if tag.Content == "" {
		return fmt.Errorf("service.TagService.Create: %w: content is required", domain.ErrValidation)
	}
	if err := s.tags.Create(ctx, tag); err != nil {
		return fmt.Errorf("service.TagService.Create: %w", err)
	}
	return nil
}

// Edit replaces the content of a tag the user owns.
// Returns domain.ErrNotFound or domain.ErrNotOwner without touching the store.
func (s *TagService) Edit(ctx context.Context, guildID, userID int64, name, content string) error {
	if err := s.authorize(ctx, guildID, userID, name); err != nil {
		return fmt.Errorf("service.TagService.Edit: %w", err)
	}
	if err := s.tags.Update(ctx, guildID, userID, name, content); err != nil {
		return fmt.Errorf("service.TagService.Edit: %w", err)
	}
	return nil
}

// Delete removes a tag the user owns.
// Returns domain.ErrNotFound or domain.ErrNotOwner without touching the store.
func (s *TagService) Delete(ctx context.Context, guildID, userID int64, name string) error {
	if err := s.authorize(ctx, guildID, userID, name); err != nil {
		return fmt.Errorf("service.TagService.Delete: %w", err)
	}
	if err := s.tags.Delete(ctx, guildID, userID, name); err != nil {
		return fmt.Errorf("service.TagService.Delete: %w", err)
	}
	return nil
}

// authorize checks that the tag exists and belongs to userID.
func (s *TagService) authorize(ctx context.Context, guildID, userID int64, name string) error {
	ownerID, err := s.tags.GetOwner(ctx, guildID, name)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return domain.ErrNotOwner
	}
	return nil
}
