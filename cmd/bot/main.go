// Package main contains the entrypoint for the Telegram bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/codexbot/internal/bot"
	"github.com/edgard/codexbot/internal/bot/handlers"
	"github.com/edgard/codexbot/internal/bot/tasks"
	"github.com/edgard/codexbot/internal/config"
	"github.com/edgard/codexbot/internal/database"
	"github.com/edgard/codexbot/internal/logger"
	"github.com/edgard/codexbot/internal/lookup"
	"github.com/edgard/codexbot/internal/reply"
	"github.com/edgard/codexbot/internal/singleton"
	"github.com/edgard/codexbot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires every component, blocks until shutdown and returns the exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	// Nothing else may start while another instance holds the lock.
	guard, err := singleton.Acquire(singleton.LockPath(cfg.Lock.Dir, cfg.Telegram.Token))
	if err != nil {
		if errors.Is(err, singleton.ErrAlreadyRunning) {
			log.Error("Another instance of the bot is already running", "error", err)
		} else {
			log.Error("Failed to acquire instance lock", "error", err)
		}
		return 1
	}
	defer func() {
		if err := guard.Release(); err != nil {
			log.Warn("Failed to release instance lock", "path", guard.Path(), "error", err)
		}
	}()
	log.Info("Instance lock acquired", "path", guard.Path())

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	resolver, err := lookup.NewResolverFromConfig(cfg.Lookup, log)
	if err != nil {
		log.Error("Failed to configure lookup providers", "error", err)
		return 1
	}

	router, err := handlers.RegisterAllCommands(handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Store:     store,
		Resolver:  resolver,
		Formatter: reply.New(cfg.Format, cfg.Messages),
	})
	if err != nil {
		log.Error("Failed to register commands", "error", err)
		return 1
	}

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, tgbot.WithMiddlewares(logger.Middleware(log)))
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	me, err := tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", me.ID, "bot_username", me.Username)

	if cfg.Telegram.DropPendingUpdates {
		if _, err := tg.DeleteWebhook(ctx, &tgbot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			log.Warn("Failed to drop pending updates", "error", err)
		}
	}

	if err := telegram.RegisterHandlers(tg, log, router); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.PublishCommands(ctx, tg, router); err != nil {
		log.Warn("Failed to publish command menu", "error", err)
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, store, tg, sched)

	log.Info("Starting bot...")
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Bot stopped due to error", "error", err)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}
