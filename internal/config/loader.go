package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. CODEXBOT_TELEGRAM_TOKEN.
const EnvPrefix = "CODEXBOT"

var (
	// ErrConfiguration is returned when the configuration cannot be read or parsed.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation is returned when the loaded configuration is invalid.
	ErrValidation = errors.New("validation error")
)

// LoadConfig loads and validates configuration from:
// 1. Default values
// 2. the YAML file at path (optional, skipped when missing)
// 3. CODEXBOT_* environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("%w: failed to read config file %s: %v", ErrConfiguration, path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to stat config file %s: %v", ErrConfiguration, path, err)
		}
		// A missing file is fine, defaults and environment still apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults registers every key so environment variables can override it,
// including the credentials that have no default value.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", DefaultLogJSON)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.drop_pending_updates", false)

	v.SetDefault("database.path", DefaultDBPath)
	v.SetDefault("lock.dir", DefaultLockDir)

	v.SetDefault("lookup.timeout", DefaultLookupTimeout)
	v.SetDefault("lookup.max_in_flight", DefaultLookupMaxInFlight)
	v.SetDefault("lookup.person_primary.url", DefaultPersonPrimaryURL)
	v.SetDefault("lookup.person_primary.token", "")
	v.SetDefault("lookup.person_primary.insecure_skip_verify", false)
	v.SetDefault("lookup.person_secondary.url", DefaultPersonSecondaryURL)
	v.SetDefault("lookup.person_secondary.token", "")
	v.SetDefault("lookup.person_secondary.insecure_skip_verify", false)
	v.SetDefault("lookup.entity.url", DefaultEntityURL)
	v.SetDefault("lookup.entity.token", "")
	v.SetDefault("lookup.entity.insecure_skip_verify", false)

	v.SetDefault("format.developer_name", DefaultDeveloperName)
	v.SetDefault("format.developer_url", DefaultDeveloperURL)
	v.SetDefault("format.bot_name", DefaultBotName)

	m := DefaultMessages
	v.SetDefault("messages.welcome_fmt", m.WelcomeFmt)
	v.SetDefault("messages.registered_fmt", m.RegisteredFmt)
	v.SetDefault("messages.already_registered_fmt", m.AlreadyRegisteredFmt)
	v.SetDefault("messages.register_error", m.RegisterErrorMsg)
	v.SetDefault("messages.not_registered", m.NotRegisteredMsg)
	v.SetDefault("messages.commands_header", m.CommandsHeader)
	v.SetDefault("messages.general_error", m.GeneralErrorMsg)
	v.SetDefault("messages.invalid_person_id", m.InvalidPersonIDMsg)
	v.SetDefault("messages.invalid_entity_id", m.InvalidEntityIDMsg)
	v.SetDefault("messages.person_not_found", m.PersonNotFoundMsg)
	v.SetDefault("messages.entity_not_found", m.EntityNotFoundMsg)
	v.SetDefault("messages.person_provider_error", m.PersonProviderErrorMsg)
	v.SetDefault("messages.entity_provider_error", m.EntityProviderErrorMsg)

	v.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.sql_maintenance.schedule", DefaultSQLMaintenanceSchedule)
	v.SetDefault("scheduler.tasks.registration_report.enabled", true)
	v.SetDefault("scheduler.tasks.registration_report.schedule", DefaultRegistrationReportSchedule)
}
