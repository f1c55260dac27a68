package telegram

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/codexbot/internal/command"
)

type fakeSender struct {
	sent []*bot.SendMessageParams
	err  error
}

func (f *fakeSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.sent = append(f.sent, params)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Message{ID: 100}, nil
}

type fakePublisher struct {
	params *bot.SetMyCommandsParams
	err    error
}

func (f *fakePublisher) SetMyCommands(_ context.Context, params *bot.SetMyCommandsParams) (bool, error) {
	f.params = params
	return f.err == nil, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRouter(t *testing.T, seen *command.Context) *command.Router {
	t.Helper()
	r := command.NewRouter()
	require.NoError(t, r.Register(command.Command{
		Name:        "dni",
		Description: "Consultar DNI",
		Handler: func(_ context.Context, cc *command.Context) command.Reply {
			*seen = *cc
			return command.Reply{Text: "*ok*", Markdown: true}
		},
	}))
	require.NoError(t, r.Register(command.Command{
		Name:        "start",
		Description: "Iniciar",
		Handler: func(_ context.Context, _ *command.Context) command.Reply {
			return command.Reply{Text: "hola"}
		},
	}))
	return r
}

func textUpdate(text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   55,
			Text: text,
			From: &models.User{ID: 7, FirstName: "Ana"},
			Chat: models.Chat{ID: -100},
		},
	}
}

func TestDispatcherRoutesAndReplies(t *testing.T) {
	var seen command.Context
	d := NewDispatcher(testRouter(t, &seen), testLogger())
	sender := &fakeSender{}

	d.serve(context.Background(), sender, textUpdate("/dni@codex_bot 12345678"))

	assert.Equal(t, command.Context{
		UserID:      7,
		DisplayName: "Ana",
		ChatID:      -100,
		MessageID:   55,
		Args:        []string{"12345678"},
	}, seen)

	require.Len(t, sender.sent, 1)
	params := sender.sent[0]
	assert.Equal(t, int64(-100), params.ChatID)
	assert.Equal(t, "*ok*", params.Text)
	assert.Equal(t, models.ParseModeMarkdown, params.ParseMode)
	require.NotNil(t, params.ReplyParameters)
	assert.Equal(t, 55, params.ReplyParameters.MessageID)
	require.NotNil(t, params.LinkPreviewOptions)
	require.NotNil(t, params.LinkPreviewOptions.IsDisabled)
	assert.True(t, *params.LinkPreviewOptions.IsDisabled)
}

func TestDispatcherPlainReply(t *testing.T) {
	var seen command.Context
	d := NewDispatcher(testRouter(t, &seen), testLogger())
	sender := &fakeSender{}

	d.serve(context.Background(), sender, textUpdate("/start"))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "hola", sender.sent[0].Text)
	assert.Empty(t, sender.sent[0].ParseMode)
}

func TestDispatcherIgnoresUnroutable(t *testing.T) {
	var seen command.Context
	d := NewDispatcher(testRouter(t, &seen), testLogger())
	sender := &fakeSender{}

	d.serve(context.Background(), sender, textUpdate("/unknown"))
	d.serve(context.Background(), sender, textUpdate("hello"))
	d.serve(context.Background(), sender, &models.Update{ID: 2})
	d.serve(context.Background(), sender, &models.Update{ID: 3, Message: &models.Message{Text: "/start"}})
	d.serve(context.Background(), sender, nil)

	assert.Empty(t, sender.sent)
}

func TestDispatcherSurvivesSendFailure(t *testing.T) {
	var seen command.Context
	d := NewDispatcher(testRouter(t, &seen), testLogger())
	sender := &fakeSender{err: errors.New("network down")}

	assert.NotPanics(t, func() {
		d.serve(context.Background(), sender, textUpdate("/start"))
	})
	assert.Len(t, sender.sent, 1)
}

func TestPublishCommands(t *testing.T) {
	var seen command.Context
	pub := &fakePublisher{}

	require.NoError(t, PublishCommands(context.Background(), pub, testRouter(t, &seen)))
	require.NotNil(t, pub.params)
	assert.Equal(t, []models.BotCommand{
		{Command: "dni", Description: "Consultar DNI"},
		{Command: "start", Description: "Iniciar"},
	}, pub.params.Commands)

	pub.err = errors.New("forbidden")
	assert.Error(t, PublishCommands(context.Background(), pub, testRouter(t, &seen)))
}

func TestNewTelegramBotRejectsEmptyToken(t *testing.T) {
	_, err := NewTelegramBot("", testLogger())
	assert.Error(t, err)
}

func TestRegisterHandlersValidatesInput(t *testing.T) {
	assert.Error(t, RegisterHandlers(nil, testLogger(), command.NewRouter()))
}

// newAPIServer answers the Bot API methods a dispatch touches and counts sendMessage calls.
func newAPIServer(t *testing.T, sent *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			sent.Add(1)
			_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":-100,"type":"group"}}}`)
		default:
			_, _ = io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"codex","username":"codexbot"}}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func commandUpdate(text string) *models.Update {
	upd := textUpdate(text)
	name, _, _ := strings.Cut(text, " ")
	upd.Message.Entities = []models.MessageEntity{
		{Type: models.MessageEntityTypeBotCommand, Offset: 0, Length: len(name)},
	}
	return upd
}

func TestRegisterHandlersServesGroupCommands(t *testing.T) {
	var sent, unmatched atomic.Int32
	srv := newAPIServer(t, &sent)

	b, err := NewTelegramBot("123456:test", testLogger(),
		bot.WithServerURL(srv.URL),
		bot.WithSkipGetMe(),
		bot.WithNotAsyncHandlers(),
		bot.WithDefaultHandler(func(context.Context, *bot.Bot, *models.Update) { unmatched.Add(1) }),
	)
	require.NoError(t, err)

	var seen command.Context
	require.NoError(t, RegisterHandlers(b, testLogger(), testRouter(t, &seen)))

	ctx := context.Background()
	b.ProcessUpdate(ctx, commandUpdate("/start@codexbot"))
	assert.Equal(t, int32(1), sent.Load(), "/start@codexbot")

	b.ProcessUpdate(ctx, commandUpdate("/start"))
	assert.Equal(t, int32(2), sent.Load(), "/start")

	b.ProcessUpdate(ctx, commandUpdate("/dni@codexbot 12345678"))
	assert.Equal(t, int32(3), sent.Load(), "/dni@codexbot")
	assert.Equal(t, []string{"12345678"}, seen.Args)

	b.ProcessUpdate(ctx, commandUpdate("/unknown@codexbot"))
	b.ProcessUpdate(ctx, textUpdate("hello"))
	assert.Equal(t, int32(3), sent.Load())
	assert.Equal(t, int32(2), unmatched.Load())
}

func TestDispatcherMatches(t *testing.T) {
	var seen command.Context
	d := NewDispatcher(testRouter(t, &seen), testLogger())

	for text, want := range map[string]bool{
		"/dni 12345678":          true,
		"/dni@codexbot 12345678": true,
		"/start@codexbot":        true,
		"/unknown@codexbot":      false,
		"hello /start":           false,
		"":                       false,
	} {
		assert.Equal(t, want, d.Matches(textUpdate(text)), text)
	}
	assert.False(t, d.Matches(&models.Update{ID: 2}))
	assert.False(t, d.Matches(nil))
}
