package handlers

import (
	"context"
	"log/slog"

	"github.com/edgard/codexbot/internal/config"
	"github.com/edgard/codexbot/internal/database"
	"github.com/edgard/codexbot/internal/lookup"
	"github.com/edgard/codexbot/internal/reply"
)

// Resolver resolves identity lookups. *lookup.Resolver implements it.
type Resolver interface {
	Resolve(ctx context.Context, q lookup.Query) (lookup.Result, error)
}

// HandlerDeps provides dependencies for command handlers.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Store     database.Store
	Resolver  Resolver
	Formatter *reply.Formatter
}
