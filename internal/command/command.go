// Package command implements prefix-triggered text commands for a chat bot:
// a registry of commands with aliases and nested subcommands, argument
// parsing helpers, and a Router that turns inbound messages into handler
// calls and applies one error policy to every command.
package command

import (
	"context"
	"fmt"
	"strings"
)

// Message is one inbound chat message as seen by the router.
type Message struct {
	// GuildID is zero when the message was not sent inside a guild.
	GuildID int64
	UserID  int64
	Content string
}

// Call is what a handler receives for one invocation.
type Call struct {
	GuildID int64
	UserID  int64
	// Path is the command words as the user typed them, e.g. "tag remove".
	Path string
	// Args is everything after the command words, trimmed.
	Args string
}

// HandlerFunc runs a command and returns the reply text.
// An empty reply sends nothing.
type HandlerFunc func(ctx context.Context, call Call) (string, error)

// ReplyFunc delivers reply text back to where the message came from.
type ReplyFunc func(ctx context.Context, text string) error

// Command is a named command with optional aliases and subcommands.
// When the word after a command names one of its subcommands, the subcommand
// runs; otherwise the command's own Run receives the remaining text.
type Command struct {
	Name    string
	Aliases []string
	// GuildOnly commands, and all of their subcommands, are rejected with
	// ErrGuildOnly when invoked outside a guild.
	GuildOnly bool
	Run       HandlerFunc

	subcommands []*Command
	index       map[string]*Command
}

// Names returns the command name followed by its aliases.
func (c *Command) Names() []string {
	return append([]string{c.Name}, c.Aliases...)
}

// AddSubcommand registers sub under c. It fails if sub has no name, contains
// whitespace in a name, or any of its names is already taken under c.
func (c *Command) AddSubcommand(sub *Command) error {
	if err := validateNames(sub); err != nil {
		return err
	}
	if c.index == nil {
		c.index = make(map[string]*Command)
	}
	for _, name := range sub.Names() {
		if _, taken := c.index[name]; taken {
			return fmt.Errorf("command: %q is already registered under %q", name, c.Name)
		}
	}
	for _, name := range sub.Names() {
		c.index[name] = sub
	}
	c.subcommands = append(c.subcommands, sub)
	return nil
}

// Subcommand looks up a direct subcommand by name or alias.
func (c *Command) Subcommand(word string) (*Command, bool) {
	sub, ok := c.index[word]
	return sub, ok
}

// Subcommands returns the direct subcommands in registration order.
func (c *Command) Subcommands() []*Command {
	return append([]*Command(nil), c.subcommands...)
}

// SubcommandNames returns every name and alias of every direct subcommand,
// in registration order. It reflects the live registry, so anything added
// with AddSubcommand shows up immediately.
func (c *Command) SubcommandNames() []string {
	var names []string
	for _, sub := range c.subcommands {
		names = append(names, sub.Names()...)
	}
	return names
}

func validateNames(c *Command) error {
	if c == nil || c.Name == "" {
		return fmt.Errorf("command: name is required")
	}
	for _, name := range c.Names() {
		if name == "" || strings.ContainsFunc(name, isSpace) {
			return fmt.Errorf("command: invalid name %q", name)
		}
	}
	return nil
}
