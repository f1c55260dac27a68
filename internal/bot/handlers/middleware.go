// Package handlers contains the bot command handlers, along with their
// registration logic and middleware.
package handlers

import (
	"context"

	"github.com/edgard/codexbot/internal/command"
)

// RequireRegistration creates a middleware that lets only registered users through.
// Anyone else gets the registration prompt and the wrapped handler is never called.
func RequireRegistration(deps HandlerDeps) command.Middleware {
	return func(next command.HandlerFunc) command.HandlerFunc {
		return func(ctx context.Context, cc *command.Context) command.Reply {
			log := deps.Logger.With("middleware", "RequireRegistration")

			registered, err := deps.Store.IsRegistered(ctx, cc.UserID)
			if err != nil {
				log.ErrorContext(ctx, "Failed to check registration", "error", err, "user_id", cc.UserID)
				return command.Reply{Text: deps.Config.Messages.GeneralErrorMsg}
			}

			if !registered {
				log.InfoContext(ctx, "Unregistered user tried a gated command", "user_id", cc.UserID, "chat_id", cc.ChatID)
				return command.Reply{Text: deps.Config.Messages.NotRegisteredMsg}
			}

			return next(ctx, cc)
		}
	}
}
