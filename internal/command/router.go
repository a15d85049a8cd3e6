package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

var (
	// ErrNotCommand means the message does not start with the prefix followed
	// by a command word.
	ErrNotCommand = errors.New("not a command")

	// ErrCommandNotFound means the command word is not registered.
	ErrCommandNotFound = errors.New("command not found")

	// ErrGuildOnly means a guild-only command was used outside a guild.
	ErrGuildOnly = errors.New("command can only be used in a guild")

	// ErrPanic wraps a panic recovered from a handler.
	ErrPanic = errors.New("handler panicked")
)

// Outcome labels passed to Observer.
const (
	OutcomeOK        = "ok"
	OutcomeUserError = "user_error"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

// Observer is notified once per dispatched command.
type Observer interface {
	ObserveCommand(command, outcome string, elapsed time.Duration)
}

// Option configures a Router.
type Option func(*Router)

// WithObserver reports every dispatched command to o.
func WithObserver(o Observer) Option {
	return func(r *Router) { r.observer = o }
}

// Router owns the top-level command registry for one prefix.
// Register everything before the first message arrives; Handle and Dispatch
// are safe for concurrent use after that.
type Router struct {
	prefix   string
	log      *slog.Logger
	observer Observer

	commands []*Command
	index    map[string]*Command
}

// NewRouter returns an empty router for prefix (e.g. "!").
func NewRouter(prefix string, log *slog.Logger, opts ...Option) *Router {
	r := &Router{
		prefix: prefix,
		log:    log,
		index:  make(map[string]*Command),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Prefix returns the prefix that marks a message as a command.
func (r *Router) Prefix() string {
	return r.prefix
}

// Register adds a top-level command. Names and aliases must be unique.
func (r *Router) Register(cmd *Command) error {
	if err := validateNames(cmd); err != nil {
		return err
	}
	for _, name := range cmd.Names() {
		if _, taken := r.index[name]; taken {
			return fmt.Errorf("command: %q is already registered", name)
		}
	}
	for _, name := range cmd.Names() {
		r.index[name] = cmd
	}
	r.commands = append(r.commands, cmd)
	return nil
}

// Commands returns the top-level commands in registration order.
func (r *Router) Commands() []*Command {
	return append([]*Command(nil), r.commands...)
}

// invocation is a message resolved to the command that will handle it.
type invocation struct {
	cmd       *Command
	name      string // canonical path, e.g. "tag delete" for "tag remove"
	call      Call
	guildOnly bool
}

// resolve finds the command addressed by msg, descending into subcommands
// while the next word names one.
func (r *Router) resolve(msg Message) (invocation, error) {
	if r.prefix == "" {
		return invocation{}, ErrNotCommand
	}
	rest, ok := strings.CutPrefix(msg.Content, r.prefix)
	if !ok {
		return invocation{}, ErrNotCommand
	}
	word, rest := splitWord(rest)
	if word == "" {
		return invocation{}, ErrNotCommand
	}
	cmd, ok := r.index[word]
	if !ok {
		return invocation{}, fmt.Errorf("%w: %q", ErrCommandNotFound, word)
	}

	path, canonical := []string{word}, []string{cmd.Name}
	guildOnly := cmd.GuildOnly
	for {
		next, after := splitWord(strings.TrimLeftFunc(rest, unicode.IsSpace))
		sub, ok := cmd.Subcommand(next)
		if !ok {
			break
		}
		cmd, rest = sub, after
		path = append(path, next)
		canonical = append(canonical, sub.Name)
		guildOnly = guildOnly || sub.GuildOnly
	}
	if cmd.Run == nil {
		return invocation{}, fmt.Errorf("%w: %q", ErrCommandNotFound, strings.Join(path, " "))
	}

	return invocation{
		cmd:  cmd,
		name: strings.Join(canonical, " "),
		call: Call{
			GuildID: msg.GuildID,
			UserID:  msg.UserID,
			Path:    strings.Join(path, " "),
			Args:    Rest(rest),
		},
		guildOnly: guildOnly,
	}, nil
}

// Dispatch resolves msg and runs its handler, returning the handler's reply
// and error untouched. Most callers want Handle instead.
func (r *Router) Dispatch(ctx context.Context, msg Message) (string, error) {
	inv, err := r.resolve(msg)
	if err != nil {
		return "", err
	}
	return r.run(ctx, inv)
}

// run executes one invocation. A panic in the handler is converted into an
// ErrPanic error carrying the stack.
func (r *Router) run(ctx context.Context, inv invocation) (reply string, err error) {
	if inv.guildOnly && inv.call.GuildID == 0 {
		return "", ErrGuildOnly
	}
	defer func() {
		if p := recover(); p != nil {
			reply, err = "", fmt.Errorf("%w: %v\n%s", ErrPanic, p, debug.Stack())
		}
	}()
	return inv.cmd.Run(ctx, inv.call)
}

// Handle is the entry point for inbound messages. It applies the error policy:
//
//   - not a command, or an unknown command: ignored
//   - *MissingArgumentError: its text is sent as the reply
//   - ErrGuildOnly: logged, no reply
//   - anything else (including panics): logged with full detail, no reply
//
// Handle never returns an error and recovers handler panics.
func (r *Router) Handle(ctx context.Context, msg Message, reply ReplyFunc) {
	inv, err := r.resolve(msg)
	if err != nil {
		if errors.Is(err, ErrCommandNotFound) {
			r.log.DebugContext(ctx, "ignoring unknown command", "error", err, "guild_id", msg.GuildID)
		}
		return
	}

	log := r.log.With(
		"invocation_id", uuid.NewString(),
		"command", inv.call.Path,
		"guild_id", inv.call.GuildID,
		"user_id", inv.call.UserID,
	)

	start := time.Now()
	text, err := r.run(ctx, inv)
	elapsed := time.Since(start)

	outcome := OutcomeOK
	var missing *MissingArgumentError
	switch {
	case err == nil:
		log.DebugContext(ctx, "command handled", "duration_ms", elapsed.Milliseconds())
	case errors.As(err, &missing):
		outcome = OutcomeUserError
		text = missing.Error()
	case errors.Is(err, ErrGuildOnly):
		outcome = OutcomeRejected
		log.WarnContext(ctx, "command rejected", "error", err)
	default:
		outcome = OutcomeError
		text = ""
		log.ErrorContext(ctx, "command failed", "error", err, "args", inv.call.Args)
	}
	if r.observer != nil {
		r.observer.ObserveCommand(inv.name, outcome, elapsed)
	}

	if text == "" {
		return
	}
	if err := reply(ctx, text); err != nil {
		log.ErrorContext(ctx, "failed to send reply", "error", err)
	}
}
