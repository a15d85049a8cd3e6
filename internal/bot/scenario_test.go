package bot_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tagbot/internal/bot"
	"github.com/pkordes/tagbot/internal/command"
	"github.com/pkordes/tagbot/internal/repo"
	"github.com/pkordes/tagbot/internal/service"
	"github.com/pkordes/tagbot/testutil"
)

// chat drives the full stack (router → commands → service → SQLite) the way
// the gateway does, one message at a time.
type chat struct {
	t      *testing.T
	router *command.Router
	tags   repo.TagRepo
}

func newChat(t *testing.T) *chat {
	t.Helper()
	tags := repo.NewSQLiteTagRepo(testutil.NewMigratedSQLiteDB(t))
	r := command.NewRouter("!", slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := bot.Register(r, service.NewTagService(tags))
	require.NoError(t, err)
	return &chat{t: t, router: r, tags: tags}
}

// say sends content as user in guild and returns the single reply, or ""
// when the bot stayed silent.
func (c *chat) say(guild, user int64, content string) string {
	c.t.Helper()
	var replies []string
	c.router.Handle(context.Background(),
		command.Message{GuildID: guild, UserID: user, Content: content},
		func(_ context.Context, text string) error {
			replies = append(replies, text)
			return nil
		})
	require.LessOrEqual(c.t, len(replies), 1)
	if len(replies) == 0 {
		return ""
	}
	return replies[0]
}

const (
	g1 int64 = 500
	g2 int64 = 600
	u1 int64 = 1
	u2 int64 = 2
)

func TestScenario_CreateShowEditByOwnerOnly(t *testing.T) {
	c := newChat(t)

	assert.Equal(t, "Created tag `greet`.", c.say(g1, u1, "!tag create greet Hello there"))
	assert.Equal(t, "Hello there", c.say(g1, u2, "!tag greet"))
	assert.Equal(t, "Tag `greet` doesn't belong to you.", c.say(g1, u2, "!tag edit greet Hi"))
	assert.Equal(t, "Hello there", c.say(g1, u2, "!tag greet"), "non-owner edit must not change content")
	assert.Equal(t, "Tag `greet` edited.", c.say(g1, u1, "!tag edit greet Hi"))
	assert.Equal(t, "Hi", c.say(g1, u1, "!tag greet"))
}

func TestScenario_DeleteByOwnerOnly(t *testing.T) {
	c := newChat(t)
	require.Equal(t, "Created tag `faq`.", c.say(g1, u1, "!tag create faq Read the pins."))

	assert.Equal(t, "Tag `faq` doesn't belong to you.", c.say(g1, u2, "!tag remove faq"))
	assert.Equal(t, "Read the pins.", c.say(g1, u2, "!tag faq"))

	assert.Equal(t, "Tag `faq` deleted.", c.say(g1, u1, "!tag delete faq"))
	assert.Equal(t, "Tag `faq` not found.", c.say(g1, u1, "!tag faq"))
	assert.Equal(t, "Tag `faq` doesn't exist.", c.say(g1, u1, "!tag delete faq"))
}

func TestScenario_DuplicateCreateKeepsFirst(t *testing.T) {
	c := newChat(t)
	require.Equal(t, "Created tag `greet`.", c.say(g1, u1, "!tag create greet first"))

	assert.Equal(t, "Tag `greet` already exists.", c.say(g1, u2, "!tag create greet second"))
	assert.Equal(t, "first", c.say(g1, u2, "!tag greet"))
}

func TestScenario_ReservedNameInsertsNothing(t *testing.T) {
	c := newChat(t)

	assert.Equal(t, "remove is a reserved name.", c.say(g1, u1, "!tag create remove gone"))

	names, err := c.tags.ListNames(context.Background(), g1)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Equal(t, "_No tags found for this server_.", c.say(g1, u1, "!tags"))
}

func TestScenario_TagsAreScopedPerGuild(t *testing.T) {
	c := newChat(t)
	require.Equal(t, "Created tag `rules`.", c.say(g1, u1, "!tag create rules Be kind."))

	assert.Equal(t, "`rules`", c.say(g1, u2, "!tags"))
	assert.Equal(t, "_No tags found for this server_.", c.say(g2, u2, "!tags"))
	assert.Equal(t, "Tag `rules` not found.", c.say(g2, u2, "!tag rules"))
	assert.Equal(t, "Created tag `rules`.", c.say(g2, u2, "!tag create rules Different rules."))
	assert.Equal(t, "Be kind.", c.say(g1, u2, "!tag rules"))
}

func TestScenario_UnknownCommandsAreIgnored(t *testing.T) {
	c := newChat(t)

	assert.Equal(t, "", c.say(g1, u1, "!help"))
	assert.Equal(t, "", c.say(g1, u1, "hello everyone"))
}
