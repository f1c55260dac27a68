package handlers

import (
	"context"
	"strings"

	"github.com/edgard/codexbot/internal/command"
)

// NewCmdsHandler returns a handler for the /cmds command. The list is read
// from router on every call, so it always matches what is registered.
func NewCmdsHandler(deps HandlerDeps, router *command.Router) command.HandlerFunc {
	return cmdsHandler{deps: deps, router: router}.Handle
}

type cmdsHandler struct {
	deps   HandlerDeps
	router *command.Router
}

func (h cmdsHandler) Handle(ctx context.Context, cc *command.Context) command.Reply {
	log := h.deps.Logger.With("handler", "cmds")
	log.InfoContext(ctx, "Handling /cmds command", "chat_id", cc.ChatID, "user_id", cc.UserID)

	var sb strings.Builder
	sb.WriteString(h.deps.Config.Messages.CommandsHeader)
	sb.WriteString("\n")
	for _, cmd := range h.router.Commands() {
		sb.WriteString("\n/")
		sb.WriteString(cmd.Name)
		if cmd.Description != "" {
			sb.WriteString(" - ")
			sb.WriteString(cmd.Description)
		}
	}

	return command.Reply{Text: sb.String()}
}
