// Package bot binds the tag commands to a command.Router and turns service
// results into the reply text users see.
package bot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/pkordes/tagbot/internal/command"
	"github.com/pkordes/tagbot/internal/domain"
)

// TagServicer defines the tag operations the chat commands depend on.
type TagServicer interface {
	ListNames(ctx context.Context, guildID int64) ([]string, error)
	Content(ctx context.Context, guildID int64, name string) (string, error)
	Create(ctx context.Context, tag domain.Tag) error
	Edit(ctx context.Context, guildID, userID int64, name, content string) error
	Delete(ctx context.Context, guildID, userID int64, name string) error
}

// noTags is the fixed reply for a guild without tags.
const noTags = "_No tags found for this server_."

// Tags holds the tag command handlers.
type Tags struct {
	tags  TagServicer
	group *command.Command
}

// Register adds `tags` and the `tag` group (create, edit, delete/remove) to r.
func Register(r *command.Router, svc TagServicer) (*Tags, error) {
	t := &Tags{tags: svc}

	t.group = &command.Command{Name: "tag", GuildOnly: true, Run: t.show}
	for _, sub := range []*command.Command{
		{Name: "create", Run: t.create},
		{Name: "edit", Run: t.edit},
		{Name: "delete", Aliases: []string{"remove"}, Run: t.delete},
	} {
		if err := t.group.AddSubcommand(sub); err != nil {
			return nil, fmt.Errorf("bot.Register: %w", err)
		}
	}

	for _, cmd := range []*command.Command{
		{Name: "tags", GuildOnly: true, Run: t.list},
		t.group,
	} {
		if err := r.Register(cmd); err != nil {
			return nil, fmt.Errorf("bot.Register: %w", err)
		}
	}
	return t, nil
}

// ReservedNames returns the words that cannot be used as tag names: every
// subcommand name and alias currently registered under `tag`.
func (t *Tags) ReservedNames() []string {
	return t.group.SubcommandNames()
}

// list handles `tags`.
func (t *Tags) list(ctx context.Context, call command.Call) (string, error) {
	names, err := t.tags.ListNames(ctx, call.GuildID)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return noTags, nil
	}
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = "`" + name + "`"
	}
	return strings.Join(quoted, ", "), nil
}

// show handles `tag <name>`. The whole remainder is the name, so lookups
// may contain spaces; surrounding double quotes are dropped.
func (t *Tags) show(ctx context.Context, call command.Call) (string, error) {
	name := command.Unquote(call.Args)
	if name == "" {
		return "", &command.MissingArgumentError{Name: "name"}
	}

	content, err := t.tags.Content(ctx, call.GuildID, name)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Sprintf("Tag `%s` not found.", name), nil
	}
	if err != nil {
		return "", err
	}
	return content, nil
}

// create handles `tag create <name> <content...>`.
func (t *Tags) create(ctx context.Context, call command.Call) (string, error) {
	name, content, err := nameAndContent(call.Args)
	if err != nil {
		return "", err
	}
	if slices.Contains(t.ReservedNames(), name) {
		return fmt.Sprintf("%s is a reserved name.", name), nil
	}

	err = t.tags.Create(ctx, domain.Tag{
		GuildID: call.GuildID,
		UserID:  call.UserID,
		Name:    name,
		Content: content,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return fmt.Sprintf("Tag `%s` already exists.", name), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Created tag `%s`.", name), nil
}

// edit handles `tag edit <name> <content...>`.
func (t *Tags) edit(ctx context.Context, call command.Call) (string, error) {
	name, content, err := nameAndContent(call.Args)
	if err != nil {
		return "", err
	}
	err = t.tags.Edit(ctx, call.GuildID, call.UserID, name, content)
	if reply, ok := ownershipReply(name, err); ok {
		return reply, nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Tag `%s` edited.", name), nil
}

// delete handles `tag delete <name>` and `tag remove <name>`.
func (t *Tags) delete(ctx context.Context, call command.Call) (string, error) {
	name, _, ok := command.NextArg(call.Args)
	if !ok {
		return "", &command.MissingArgumentError{Name: "name"}
	}
	err := t.tags.Delete(ctx, call.GuildID, call.UserID, name)
	if reply, ok := ownershipReply(name, err); ok {
		return reply, nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Tag `%s` deleted.", name), nil
}

// nameAndContent reads a one-word (or quoted) name followed by free text.
func nameAndContent(args string) (name, content string, err error) {
	name, rest, ok := command.NextArg(args)
	if !ok {
		return "", "", &command.MissingArgumentError{Name: "name"}
	}
	content = command.Rest(rest)
	if content == "" {
		return "", "", &command.MissingArgumentError{Name: "content"}
	}
	return name, content, nil
}

// ownershipReply maps the errors edit and delete share to user-facing text.
func ownershipReply(name string, err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Sprintf("Tag `%s` doesn't exist.", name), true
	case errors.Is(err, domain.ErrNotOwner):
		return fmt.Sprintf("Tag `%s` doesn't belong to you.", name), true
	}
	return "", false
}
