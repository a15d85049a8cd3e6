package bot_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tagbot/internal/bot"
	"github.com/pkordes/tagbot/internal/command"
	"github.com/pkordes/tagbot/internal/domain"
)

// ---- mock TagServicer -------------------------------------------------------

type mockTagServicer struct {
	listNames func(ctx context.Context, guildID int64) ([]string, error)
	content   func(ctx context.Context, guildID int64, name string) (string, error)
	create    func(ctx context.Context, tag domain.Tag) error
	edit      func(ctx context.Context, guildID, userID int64, name, content string) error
	delete    func(ctx context.Context, guildID, userID int64, name string) error
}

func (m *mockTagServicer) ListNames(ctx context.Context, guildID int64) ([]string, error) {
	return m.listNames(ctx, guildID)
}
func (m *mockTagServicer) Content(ctx context.Context, guildID int64, name string) (string, error) {
	return m.content(ctx, guildID, name)
}
func (m *mockTagServicer) Create(ctx context.Context, tag domain.Tag) error {
	return m.create(ctx, tag)
}
func (m *mockTagServicer) Edit(ctx context.Context, guildID, userID int64, name, content string) error {
	return m.edit(ctx, guildID, userID, name, content)
}
func (m *mockTagServicer) Delete(ctx context.Context, guildID, userID int64, name string) error {
	return m.delete(ctx, guildID, userID, name)
}

// compile-time check: mockTagServicer must satisfy bot.TagServicer.
var _ bot.TagServicer = (*mockTagServicer)(nil)

// ---- helpers ---------------------------------------------------------------

const (
	guildID int64 = 1001
	userID  int64 = 2002
)

type harness struct {
	router *command.Router
	tags   *bot.Tags
	logs   *bytes.Buffer
}

func newHarness(t *testing.T, svc bot.TagServicer) *harness {
	t.Helper()
	var buf bytes.Buffer
	r := command.NewRouter("!", slog.New(slog.NewJSONHandler(&buf, nil)))
	tags, err := bot.Register(r, svc)
	require.NoError(t, err)
	return &harness{router: r, tags: tags, logs: &buf}
}

// send runs content through the router as userID in guildID and returns
// every reply the bot produced.
func (h *harness) send(content string) []string {
	var replies []string
	h.router.Handle(context.Background(),
		command.Message{GuildID: guildID, UserID: userID, Content: content},
		func(_ context.Context, text string) error {
			replies = append(replies, text)
			return nil
		})
	return replies
}

// ---- tags ------------------------------------------------------------------

func TestTags_List(t *testing.T) {
	h := newHarness(t, &mockTagServicer{
		listNames: func(_ context.Context, g int64) ([]string, error) {
			assert.Equal(t, guildID, g)
			return []string{"greet", "rules", "faq"}, nil
		},
	})

	assert.Equal(t, []string{"`greet`, `rules`, `faq`"}, h.send("!tags"))
}

func TestTags_List_Empty(t *testing.T) {
	h := newHarness(t, &mockTagServicer{
		listNames: func(context.Context, int64) ([]string, error) { return []string{}, nil },
	})

	assert.Equal(t, []string{"_No tags found for this server_."}, h.send("!tags"))
}

func TestTags_List_StoreErrorIsNotReplied(t *testing.T) {
	h := newHarness(t, &mockTagServicer{
		listNames: func(context.Context, int64) ([]string, error) { return nil, errors.New("disk I/O error") },
	})

	assert.Empty(t, h.send("!tags"))
	assert.Contains(t, h.logs.String(), "disk I/O error")
}

// ---- tag <name> ------------------------------------------------------------

func TestTag_Show(t *testing.T) {
	h := newHarness(t, &mockTagServicer{
		content: func(_ context.Context, _ int64, name string) (string, error) {
			assert.Equal(t, "greet", name)
			return "Hello there", nil
		},
	})

	assert.Equal(t, []string{"Hello there"}, h.send("!tag greet"))
}

func TestTag_Show_MultiWordAndQuotedNames(t *testing.T) {
	var looked []string
	h := newHarness(t, &mockTagServicer{
		content: func(_ context.Context, _ int64, name string) (string, error) {
			looked = append(looked, name)
			return "x", nil
		},
	})

	h.send("!tag house rules ")
	h.send(`!tag "house rules"`)

	assert.Equal(t, []string{"house rules", "house rules"}, looked)
}

func TestTag_Show_MissingName(t *testing.T) {
	h := newHarness(t, &mockTagServicer{})

	assert.Equal(t, []string{"name is a required argument that is missing."}, h.send("!tag"))
	assert.Equal(t, []string{"name is a required argument that is missing."}, h.send("!tag    "))
}

func TestTag_Show_NotFound(t *testing.T) {
	h := newHarness(t, &mockTagServicer{
		content: func(context.Context, int64, string) (string, error) {
			return "", domain.ErrNotFound
		},
	})

	assert.Equal(t, []string{"Tag `nope` not found."}, h.send("!tag nope"))
}

// ---- tag create ------------------------------------------------------------

func TestTag_Create(t *testing.T) {
	var captured domain.Tag
	h := newHarness(t, &mockTagServicer{
		create: func(_ context.Context, tag domain.Tag) error {
			captured = tag
			return nil
		},
	})

	replies := h.send("!tag create greet Hello   there\nfriend")

	assert.Equal(t, []string{"Created tag `greet`."}, replies)
	assert.Equal(t, domain.Tag{
		GuildID: guildID,
		UserID:  userID,
		Name:    "greet",
		Content: "Hello   there\nfriend",
	}, captured)
}

func TestTag_Create_QuotedName(t *testing.T) {
	var captured domain.Tag
	h := newHarness(t, &mockTagServicer{
		create: func(_ context.Context, tag domain.Tag) error {
			captured = tag
			return nil
		},
	})

	replies := h.send(`!tag create "house rules" Be nice.`)

	assert.Equal(t, []string{"Created tag `house rules`."}, replies)
	assert.Equal(t, "Be nice.", captured.Content)
}

func TestTag_Create_MissingArguments(t *testing.T) {
	h := newHarness(t, &mockTagServicer{})

	assert.Equal(t, []string{"name is a required argument that is missing."}, h.send("!tag create"))
	assert.Equal(t, []string{"content is a required argument that is missing."}, h.send("!tag create greet"))
	assert.Equal(t, []string{"content is a required argument that is missing."}, h.send("!tag create greet   "))
}

func TestTag_Create_ReservedNames(t *testing.T) {
	h := newHarness(t, &mockTagServicer{
		create: func(context.Context, domain.Tag) error {
			t.Fatal("reserved names must not reach the store")
			return nil
		},
	})

	for _, name := range []string{"create", "edit", "delete", "remove"} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, []string{name + " is a reserved name."}, h.send("!tag create "+name+" content"))
		})
	}
}

func TestTag_ReservedNames_FollowRegistry(t *testing.T) {
	h := newHarness(t, &mockTagServicer{})

	assert.ElementsMatch(t, []string{"create", "edit", "delete", "remove"}, h.tags.ReservedNames())
}

func TestTag_Create_AlreadyExists(t *testing.T) {
	h := newHarness(t, &mockTagServicer{
		create: func(context.Context, domain.Tag) error {
			return errors.Join(errors.New("service.TagService.Create"), domain.ErrAlreadyExists)
		},
	})

	assert.Equal(t, []string{"Tag `greet` already exists."}, h.send("!tag create greet hi"))
}

// ---- tag edit --------------------------------------------------------------

func TestTag_Edit(t *testing.T) {
	h := newHarness(t, &mockTagServicer{
		edit: func(_ context.Context, g, u int64, name, content string) error {
			assert.Equal(t, guildID, g)
			assert.Equal(t, userID, u)
			assert.Equal(t, "greet", name)
			assert.Equal(t, "Hi", content)
			return nil
		},
	})

	assert.Equal(t, []string{"Tag `greet` edited."}, h.send("!tag edit greet Hi"))
}

func TestTag_Edit_Errors(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.ErrNotFound, "Tag `greet` doesn't exist."},
		{domain.ErrNotOwner, "Tag `greet` doesn't belong to you."},
	}
	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			h := newHarness(t, &mockTagServicer{
				edit: func(context.Context, int64, int64, string, string) error { return tc.err },
			})

			assert.Equal(t, []string{tc.want}, h.send("!tag edit greet Hi"))
		})
	}
}

func TestTag_Edit_MissingContent(t *testing.T) {
	h := newHarness(t, &mockTagServicer{})

	assert.Equal(t, []string{"content is a required argument that is missing."}, h.send("!tag edit greet"))
}

// ---- tag delete / remove ---------------------------------------------------

func TestTag_Delete_AndAlias(t *testing.T) {
	var deleted []string
	h := newHarness(t, &mockTagServicer{
		delete: func(_ context.Context, _, _ int64, name string) error {
			deleted = append(deleted, name)
			return nil
		},
	})

	assert.Equal(t, []string{"Tag `a` deleted."}, h.send("!tag delete a"))
	assert.Equal(t, []string{"Tag `b` deleted."}, h.send("!tag remove b"))
	assert.Equal(t, []string{"a", "b"}, deleted)
}

func TestTag_Delete_Errors(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.ErrNotFound, "Tag `greet` doesn't exist."},
		{domain.ErrNotOwner, "Tag `greet` doesn't belong to you."},
	}
	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			h := newHarness(t, &mockTagServicer{
				delete: func(context.Context, int64, int64, string) error { return tc.err },
			})

			assert.Equal(t, []string{tc.want}, h.send("!tag remove greet"))
		})
	}
}

func TestTag_Delete_MissingName(t *testing.T) {
	h := newHarness(t, &mockTagServicer{})

	assert.Equal(t, []string{"name is a required argument that is missing."}, h.send("!tag delete"))
}

// ---- guild scoping ---------------------------------------------------------

func TestTags_OutsideGuildIsIgnored(t *testing.T) {
	h := newHarness(t, &mockTagServicer{})

	var replies []string
	for _, content := range []string{"!tags", "!tag greet", "!tag create x y"} {
		h.router.Handle(context.Background(),
			command.Message{UserID: userID, Content: content},
			func(_ context.Context, text string) error {
				replies = append(replies, text)
				return nil
			})
	}

	assert.Empty(t, replies)
}
