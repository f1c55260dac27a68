// Package telegram connects the command router to the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/codexbot/internal/command"
)

const sendMessageTimeout = 15 * time.Second

// Sender is the part of *bot.Bot used to answer commands.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// CommandPublisher is the part of *bot.Bot used to publish the command menu.
type CommandPublisher interface {
	SetMyCommands(ctx context.Context, params *bot.SetMyCommandsParams) (bool, error)
}

// NewTelegramBot creates a new Telegram bot instance using the go-telegram/bot library.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	botID, _, _ := strings.Cut(token, ":")
	log.Info("Telegram bot instance created successfully", "bot_id", botID)
	return b, nil
}

// Dispatcher turns Telegram updates into router calls and sends the replies.
type Dispatcher struct {
	router *command.Router
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher for router.
func NewDispatcher(router *command.Router, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{router: router, logger: logger.With("component", "dispatcher")}
}

// Handle is a bot.HandlerFunc serving every registered command.
func (d *Dispatcher) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	d.serve(ctx, b, update)
}

func (d *Dispatcher) serve(ctx context.Context, s Sender, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil {
		d.logger.WarnContext(ctx, "Received update with nil message or sender")
		return
	}
	msg := update.Message

	name, args, ok := command.Parse(msg.Text)
	if !ok {
		d.logger.DebugContext(ctx, "Ignoring non-command message", "update_id", update.ID)
		return
	}

	cc := &command.Context{
		UserID:      msg.From.ID,
		DisplayName: msg.From.FirstName,
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Args:        args,
	}

	reply, ok := d.router.Dispatch(ctx, name, cc)
	if !ok {
		d.logger.DebugContext(ctx, "Ignoring unknown command", "command", name, "chat_id", cc.ChatID)
		return
	}
	if reply.Text == "" {
		return
	}

	disablePreview := true
	params := &bot.SendMessageParams{
		ChatID:             cc.ChatID,
		Text:               reply.Text,
		ReplyParameters:    &models.ReplyParameters{MessageID: cc.MessageID},
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: &disablePreview},
	}
	if reply.Markdown {
		params.ParseMode = models.ParseModeMarkdown
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()
	if _, err := s.SendMessage(sendCtx, params); err != nil {
		d.logger.ErrorContext(ctx, "Failed to send reply", "error", err, "command", name, "chat_id", cc.ChatID)
		return
	}
	d.logger.DebugContext(ctx, "Sent reply", "command", name, "chat_id", cc.ChatID)
}

// Matches reports whether update carries a command known to the router.
// Group chats send commands as /name@botname, so the name is compared
// after command.Parse strips the suffix.
func (d *Dispatcher) Matches(update *models.Update) bool {
	if update == nil || update.Message == nil {
		return false
	}
	name, _, ok := command.Parse(update.Message.Text)
	if !ok {
		return false
	}
	_, ok = d.router.Lookup(name)
	return ok
}

// RegisterHandlers registers the dispatcher for every router command.
func RegisterHandlers(b *bot.Bot, logger *slog.Logger, router *command.Router) error {
	if b == nil {
		return fmt.Errorf("bot instance cannot be nil")
	}
	if router == nil {
		return fmt.Errorf("command router cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "handler_registry")

	commands := router.Commands()
	if len(commands) == 0 {
		log.Warn("No commands provided for registration.")
		return nil
	}

	dispatcher := NewDispatcher(router, logger)
	b.RegisterHandlerMatchFunc(dispatcher.Matches, dispatcher.Handle)
	for _, cmd := range commands {
		log.Debug("Registered command", "command", cmd.Name, "middleware_count", len(cmd.Middleware))
	}

	log.Info("Registered Telegram handlers successfully", "count", len(commands))
	return nil
}

// PublishCommands sets the Telegram command menu from the router's commands.
func PublishCommands(ctx context.Context, p CommandPublisher, router *command.Router) error {
	commands := router.Commands()
	menu := make([]models.BotCommand, 0, len(commands))
	for _, cmd := range commands {
		menu = append(menu, models.BotCommand{Command: cmd.Name, Description: cmd.Description})
	}

	if _, err := p.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: menu}); err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	return nil
}
