package config

import "time"

// Default values for configuration
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	DefaultDBPath  = "usuarios.db" // Same file name as earlier deployments
	DefaultLockDir = "."

	DefaultLookupTimeout     = 10 * time.Second
	DefaultLookupMaxInFlight = 1

	DefaultPersonPrimaryURL   = "https://apiperu.dev/api/dni"
	DefaultPersonSecondaryURL = "https://api.apis.net.pe/v1/dni"
	DefaultEntityURL          = "https://api.apis.net.pe/v1/ruc"

	DefaultDeveloperName = "Desarrollador"
	DefaultDeveloperURL  = "https://t.me/CodexPE"
	DefaultBotName       = "Codex Bot"

	// Six-field cron expressions (seconds first).
	DefaultSQLMaintenanceSchedule     = "0 0 4 * * *"
	DefaultRegistrationReportSchedule = "0 0 * * * *"
)

// DefaultMessages are the Spanish texts the bot has always answered with.
var DefaultMessages = MessagesConfig{
	WelcomeFmt: "¡Hola %s!\n\n" +
		"Bienvenido al bot de CodexPE.\n\n" +
		"Para registrarte, utiliza el comando /me.\n" +
		"Para ver la lista de comandos disponibles, utiliza el comando /cmds.",
	RegisteredFmt:        "%s, has sido registrado exitosamente.",
	AlreadyRegisteredFmt: "Hola, %s, ya estás registrado.",
	RegisterErrorMsg:     "No se pudo completar el registro. Por favor, intenta nuevamente más tarde.",
	NotRegisteredMsg:     "Por favor ingresa el comando /me para registrarte.",
	CommandsHeader:       "Lista de comandos disponibles:",
	GeneralErrorMsg:      "Ocurrió un error. Por favor, intenta nuevamente más tarde.",

	InvalidPersonIDMsg:     "Por favor ingresa un DNI válido de 8 dígitos.",
	InvalidEntityIDMsg:     "Por favor ingresa un RUC válido de 11 dígitos.",
	PersonNotFoundMsg:      "No se encontraron datos para el DNI proporcionado.",
	EntityNotFoundMsg:      "No se encontraron datos para el RUC proporcionado.",
	PersonProviderErrorMsg: "Hubo un error al obtener la información del DNI. Por favor, intenta nuevamente más tarde.",
	EntityProviderErrorMsg: "Hubo un error al obtener la información del RUC. Por favor, intenta nuevamente más tarde.",
}
