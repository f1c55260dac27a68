package handlers

import (
	"context"
	"time"

	"github.com/edgard/codexbot/internal/command"
	"github.com/edgard/codexbot/internal/lookup"
)

// NewDNIHandler returns a handler for /dni <8 digits>.
func NewDNIHandler(deps HandlerDeps) command.HandlerFunc {
	return lookupHandler{deps: deps, kind: lookup.KindPersonID, invalidMsg: deps.Config.Messages.InvalidPersonIDMsg}.Handle
}

// NewRUCHandler returns a handler for /ruc <11 digits>.
func NewRUCHandler(deps HandlerDeps) command.HandlerFunc {
	return lookupHandler{deps: deps, kind: lookup.KindEntityID, invalidMsg: deps.Config.Messages.InvalidEntityIDMsg}.Handle
}

// lookupHandler validates the argument, resolves it and formats the outcome.
type lookupHandler struct {
	deps       HandlerDeps
	kind       lookup.Kind
	invalidMsg string
}

func (h lookupHandler) Handle(ctx context.Context, cc *command.Context) command.Reply {
	log := h.deps.Logger.With("handler", h.kind.String())

	q := lookup.Query{Kind: h.kind, Value: cc.Arg(0)}
	if !q.Valid() {
		log.InfoContext(ctx, "Rejected invalid lookup argument", "user_id", cc.UserID, "arg_count", len(cc.Args))
		return command.Reply{Text: h.invalidMsg}
	}

	log.InfoContext(ctx, "Handling lookup command", "chat_id", cc.ChatID, "user_id", cc.UserID)
	startTime := time.Now()

	res, err := h.deps.Resolver.Resolve(ctx, q)
	if err != nil {
		log.WarnContext(ctx, "Lookup failed", "error", err, "duration", time.Since(startTime))
		return command.Reply{Text: h.deps.Formatter.ProviderError(h.kind), Markdown: true}
	}

	log.InfoContext(ctx, "Lookup finished",
		"found", res.Found,
		"source", res.Source,
		"fallback", res.Fallback,
		"duration", time.Since(startTime))

	return command.Reply{Text: h.deps.Formatter.Format(res, cc.DisplayName), Markdown: true}
}
