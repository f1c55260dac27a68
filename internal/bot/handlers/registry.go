package handlers

import (
	"fmt"

	"github.com/edgard/codexbot/internal/command"
)

// RegisterAllCommands builds the command router with every bot command.
// Commands are listed by /cmds and the Telegram menu in this order.
func RegisterAllCommands(deps HandlerDeps) (*command.Router, error) {
	router := command.NewRouter()
	gated := []command.Middleware{RequireRegistration(deps)}

	commands := []command.Command{
		{
			Name:        "start",
			Description: "Iniciar el bot",
			Handler:     NewStartHandler(deps),
		},
		{
			Name:        "me",
			Description: "Registrarse",
			Handler:     NewMeHandler(deps),
		},
		{
			Name:        "cmds",
			Description: "Ver lista de comandos",
			Handler:     NewCmdsHandler(deps, router),
		},
		{
			Name:        "dni",
			Description: "Consultar DNI (8 dígitos)",
			Handler:     NewDNIHandler(deps),
			Middleware:  gated,
		},
		{
			Name:        "ruc",
			Description: "Consultar RUC (11 dígitos)",
			Handler:     NewRUCHandler(deps),
			Middleware:  gated,
		},
	}

	for _, cmd := range commands {
		if err := router.Register(cmd); err != nil {
			return nil, fmt.Errorf("register /%s: %w", cmd.Name, err)
		}
	}

	deps.Logger.Info("Initialized bot commands", "count", len(commands))
	return router, nil
}
