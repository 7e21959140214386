package config

import (
	"os"
	"strconv"

	"github.com/polyseam/cndi/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// ResolvedValue is a configuration value with its provenance.
type ResolvedValue struct {
	// Key is the configuration key (e.g. "templates.baseURL").
	Key string
	// Value is the resolved value in string form.
	Value string
	// Source indicates where the value came from.
	Source ConfigSource
	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]string
}

// resolveString applies the precedence flag > env > config > default.
func resolveString(key, flagValue, envName, configValue, defaultValue string) ResolvedValue {
	result := ResolvedValue{
		Key:      key,
		Shadowed: make(map[ConfigSource]string),
	}

	envValue := ""
	if envName != "" {
		envValue = os.Getenv(envName)
	}

	// viper merges env into the loaded config, so a config value equal to
	// the env value is attributed to the env.
	if configValue == envValue {
		configValue = ""
	}
	if configValue == defaultValue {
		configValue = ""
	}

	candidates := []struct {
		source ConfigSource
		value  string
	}{
		{SourceFlag, flagValue},
		{SourceEnv, envValue},
		{SourceConfig, configValue},
		{SourceDefault, defaultValue},
	}

	for _, c := range candidates {
		if c.value == "" {
			continue
		}
		if result.Source == "" {
			result.Value = c.value
			result.Source = c.source
			continue
		}
		if c.source != SourceDefault {
			result.Shadowed[c.source] = c.value
		}
	}

	return result
}

// ResolveAllOptions contains the inputs to ResolveAll.
type ResolveAllOptions struct {
	// ConfigFlag is the --config flag value.
	ConfigFlag string
	// BaseURLFlag is the --templates-base-url flag value.
	BaseURLFlag string
	// Config is the loaded configuration (may be nil).
	Config *Config
}

// ResolvedConfig holds every resolved configuration value.
type ResolvedConfig struct {
	ConfigPath        ResolvedValue
	TemplatesBaseURL  ResolvedValue
	FetchTimeout      ResolvedValue
	PromptMaxAttempts ResolvedValue
}

// ResolveAll resolves all configuration values using precedence:
// (1) flag, (2) CNDI_* env, (3) config file, (4) default.
func ResolveAll(opts ResolveAllOptions) (*ResolvedConfig, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = &Config{}
	}

	paths, err := DefaultPaths()
	if err != nil {
		return nil, err
	}

	timeout := ""
	if cfg.Fetch.Timeout != 0 {
		timeout = cfg.Fetch.Timeout.String()
	}
	attempts := ""
	if cfg.Prompt.MaxAttempts != 0 {
		attempts = strconv.Itoa(cfg.Prompt.MaxAttempts)
	}

	resolved := &ResolvedConfig{
		ConfigPath:        resolveString("config", opts.ConfigFlag, "CNDI_CONFIG", "", paths.ConfigFile),
		TemplatesBaseURL:  resolveString("templates.baseURL", opts.BaseURLFlag, "CNDI_TEMPLATES_BASE_URL", cfg.Templates.BaseURL, DefaultTemplatesBaseURL),
		FetchTimeout:      resolveString("fetch.timeout", "", "CNDI_FETCH_TIMEOUT", timeout, DefaultFetchTimeout.String()),
		PromptMaxAttempts: resolveString("prompt.maxAttempts", "", "CNDI_PROMPT_MAX_ATTEMPTS", attempts, strconv.Itoa(DefaultPromptMaxAttempts)),
	}

	return resolved, nil
}

// Values returns the resolved values in a stable order.
func (r *ResolvedConfig) Values() []ResolvedValue {
	return []ResolvedValue{r.ConfigPath, r.TemplatesBaseURL, r.FetchTimeout, r.PromptMaxAttempts}
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", shadowed,
			)
		}
	}
}
