// Package config provides configuration loading, validation, and management
// for the CodexBot application. It handles reading from YAML files,
// environment variables, default values, and validates configuration parameters.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config defines the application configuration parameters for all components
// of the bot: logging, Telegram transport, registration storage, the process
// lock, lookup providers, reply formatting, user-facing messages and the scheduler.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Lock      LockConfig      `mapstructure:"lock"`
	Lookup    LookupConfig    `mapstructure:"lookup"`
	Format    FormatConfig    `mapstructure:"format"`
	Messages  MessagesConfig  `mapstructure:"messages"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls log verbosity and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the Telegram bot credentials.
type TelegramConfig struct {
	Token              string `mapstructure:"token" validate:"required"`
	DropPendingUpdates bool   `mapstructure:"drop_pending_updates"`
}

// DatabaseConfig holds the registration store location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// LockConfig holds the directory where the single-instance lock file lives.
type LockConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

// LookupConfig configures the identity lookup providers.
type LookupConfig struct {
	Timeout         time.Duration  `mapstructure:"timeout"       validate:"min=1s,max=2m"`
	MaxInFlight     int64          `mapstructure:"max_in_flight" validate:"min=1,max=100"`
	PersonPrimary   ProviderConfig `mapstructure:"person_primary"`
	PersonSecondary ProviderConfig `mapstructure:"person_secondary"`
	Entity          ProviderConfig `mapstructure:"entity"`
}

// ProviderConfig describes a single external registry endpoint.
type ProviderConfig struct {
	URL                string `mapstructure:"url"   validate:"required,url"`
	Token              string `mapstructure:"token" validate:"required"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
}

// FormatConfig controls the attribution header of lookup replies.
type FormatConfig struct {
	DeveloperName string `mapstructure:"developer_name" validate:"required"`
	DeveloperURL  string `mapstructure:"developer_url"  validate:"required,url"`
	BotName       string `mapstructure:"bot_name"       validate:"required"`
}

// MessagesConfig holds every user-facing text. Fields ending in Fmt are
// fmt format strings taking the caller's display name.
type MessagesConfig struct {
	WelcomeFmt           string `mapstructure:"welcome_fmt"            validate:"required"`
	RegisteredFmt        string `mapstructure:"registered_fmt"         validate:"required"`
	AlreadyRegisteredFmt string `mapstructure:"already_registered_fmt" validate:"required"`
	RegisterErrorMsg     string `mapstructure:"register_error"         validate:"required"`
	NotRegisteredMsg     string `mapstructure:"not_registered"         validate:"required"`
	CommandsHeader       string `mapstructure:"commands_header"        validate:"required"`
	GeneralErrorMsg      string `mapstructure:"general_error"          validate:"required"`

	InvalidPersonIDMsg     string `mapstructure:"invalid_person_id"      validate:"required"`
	InvalidEntityIDMsg     string `mapstructure:"invalid_entity_id"      validate:"required"`
	PersonNotFoundMsg      string `mapstructure:"person_not_found"       validate:"required"`
	EntityNotFoundMsg      string `mapstructure:"entity_not_found"       validate:"required"`
	PersonProviderErrorMsg string `mapstructure:"person_provider_error"  validate:"required"`
	EntityProviderErrorMsg string `mapstructure:"entity_provider_error"  validate:"required"`
}

// SchedulerConfig maps task names to their schedule.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig enables a scheduled task with a six-field cron expression.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
