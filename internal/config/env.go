package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// envOverrides are the environment variables that win over the file.
type envOverrides struct {
	Terminal  string `envconfig:"TERMINAL"`
	LogLevel  string `envconfig:"XRDESK_LOG_LEVEL"`
	LogFormat string `envconfig:"XRDESK_LOG_FORMAT"`
	Startup   string `envconfig:"XRDESK_STARTUP"`
	Modifier  string `envconfig:"XRDESK_MODIFIER"`
	Input     string `envconfig:"XRDESK_INPUT"`
}

func applyEnv(cfg *Config) (map[string]Source, error) {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	sources := map[string]Source{}
	set := func(path, variable, value string, dst *string) {
		if value == "" {
			return
		}
		*dst = value
		sources[path] = Source{Kind: SourceEnv, Name: variable}
	}
	set("terminal", "TERMINAL", env.Terminal, &cfg.Terminal)
	set("log_level", "XRDESK_LOG_LEVEL", env.LogLevel, &cfg.LogLevel)
	set("log_format", "XRDESK_LOG_FORMAT", env.LogFormat, &cfg.LogFormat)
	set("startup_command", "XRDESK_STARTUP", env.Startup, &cfg.StartupCommand)
	set("keybindings.modifier", "XRDESK_MODIFIER", env.Modifier, &cfg.Keybindings.Modifier)
	set("input.backend", "XRDESK_INPUT", env.Input, &cfg.Input.Backend)
	return sources, nil
}
