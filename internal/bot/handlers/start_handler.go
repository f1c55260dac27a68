package handlers

import (
	"context"
	"fmt"

	"github.com/edgard/codexbot/internal/command"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) command.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler processes the /start command using injected dependencies.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, cc *command.Context) command.Reply {
	log := h.deps.Logger.With("handler", "start")
	log.InfoContext(ctx, "Handling /start command", "chat_id", cc.ChatID, "user_id", cc.UserID)

	return command.Reply{Text: fmt.Sprintf(h.deps.Config.Messages.WelcomeFmt, cc.DisplayName)}
}
