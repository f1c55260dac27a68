package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/edgard/codexbot/internal/command"
	"github.com/edgard/codexbot/internal/database"
)

// NewMeHandler returns a handler for the /me registration command.
func NewMeHandler(deps HandlerDeps) command.HandlerFunc {
	return meHandler{deps}.Handle
}

type meHandler struct {
	deps HandlerDeps
}

func (h meHandler) Handle(ctx context.Context, cc *command.Context) command.Reply {
	log := h.deps.Logger.With("handler", "me")
	msgs := h.deps.Config.Messages

	log.InfoContext(ctx, "Handling /me command", "chat_id", cc.ChatID, "user_id", cc.UserID)

	registered, err := h.deps.Store.IsRegistered(ctx, cc.UserID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to check registration", "error", err, "user_id", cc.UserID)
		return command.Reply{Text: msgs.RegisterErrorMsg}
	}
	if registered {
		return command.Reply{Text: fmt.Sprintf(msgs.AlreadyRegisteredFmt, cc.DisplayName)}
	}

	err = h.deps.Store.RegisterUser(ctx, cc.UserID, cc.DisplayName)
	switch {
	case errors.Is(err, database.ErrAlreadyRegistered):
		// A concurrent /me from the same user won the insert.
		return command.Reply{Text: fmt.Sprintf(msgs.AlreadyRegisteredFmt, cc.DisplayName)}
	case err != nil:
		log.ErrorContext(ctx, "Failed to register user", "error", err, "user_id", cc.UserID)
		return command.Reply{Text: msgs.RegisterErrorMsg}
	}

	log.InfoContext(ctx, "User registered", "user_id", cc.UserID)
	return command.Reply{Text: fmt.Sprintf(msgs.RegisteredFmt, cc.DisplayName)}
}
