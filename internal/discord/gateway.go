// Package discord connects the command router to Discord through a
// discordgo gateway session.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/pkordes/tagbot/internal/command"
)

// Handler receives chat messages. *command.Router satisfies it.
type Handler interface {
	Handle(ctx context.Context, msg command.Message, reply command.ReplyFunc)
}

// Sender posts a message to a channel. *discordgo.Session satisfies it.
type Sender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Gateway owns the Discord session for the lifetime of the process.
type Gateway struct {
	session *discordgo.Session
	handler Handler
	log     *slog.Logger
}

// New prepares a bot session for token. Nothing is opened until Open.
func New(token string, handler Handler, log *slog.Logger) (*Gateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord.New: %w", err)
	}
	// Message content is a privileged intent and must also be enabled for
	// the application in the developer portal.
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	g := &Gateway{session: session, handler: handler, log: log}
	session.AddHandler(g.onReady)
	session.AddHandler(g.onMessageCreate)
	return g, nil
}

// Open connects to the gateway and starts receiving events.
func (g *Gateway) Open() error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("discord.Gateway.Open: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (g *Gateway) Close() error {
	if err := g.session.Close(); err != nil {
		return fmt.Errorf("discord.Gateway.Close: %w", err)
	}
	return nil
}

func (g *Gateway) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	g.log.Info("logged in", "user", r.User.String(), "guilds", len(r.Guilds))
}

// discordgo runs each event handler in its own goroutine.
func (g *Gateway) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	g.HandleMessage(context.Background(), s, m.Message)
}

// HandleMessage converts one Discord message into a router call and sends any
// reply back to the same channel through sender. Messages from bots,
// including this one, are ignored.
func (g *Gateway) HandleMessage(ctx context.Context, sender Sender, m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return
	}

	msg, err := toCommandMessage(m)
	if err != nil {
		g.log.WarnContext(ctx, "dropping message with malformed ids", "error", err, "message_id", m.ID)
		return
	}

	g.handler.Handle(ctx, msg, func(ctx context.Context, text string) error {
		_, err := sender.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
			Content: text,
			// Tag content is user supplied; never let it ping anyone.
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		}, discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("discord.Gateway.reply: channel %s: %w", m.ChannelID, err)
		}
		return nil
	})
}

// toCommandMessage parses Discord's string snowflakes. An empty guild id
// (direct message) becomes zero.
func toCommandMessage(m *discordgo.Message) (command.Message, error) {
	userID, err := strconv.ParseInt(m.Author.ID, 10, 64)
	if err != nil {
		return command.Message{}, fmt.Errorf("user id %q: %w", m.Author.ID, err)
	}
	var guildID int64
	if m.GuildID != "" {
		guildID, err = strconv.ParseInt(m.GuildID, 10, 64)
		if err != nil {
			return command.Message{}, fmt.Errorf("guild id %q: %w", m.GuildID, err)
		}
	}
	return command.Message{GuildID: guildID, UserID: userID, Content: m.Content}, nil
}
