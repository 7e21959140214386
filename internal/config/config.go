// Package config provides configuration loading and management.
package config

import "time"

// Default values for cndi configuration.
const (
	// DefaultTemplatesBaseURL is where bare template names are fetched from.
	DefaultTemplatesBaseURL = "https://raw.githubusercontent.com/polyseam/cndi/main/templates"

	// DefaultFetchTimeout bounds every remote fetch.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultPromptMaxAttempts bounds re-prompts of a single question.
	DefaultPromptMaxAttempts = 5
)

// TemplatesConfig contains template resolution settings.
type TemplatesConfig struct {
	// BaseURL is the directory URL bare template names expand against.
	// Env: CNDI_TEMPLATES_BASE_URL
	BaseURL string `mapstructure:"baseURL" yaml:"baseURL,omitempty"`
}

// FetchConfig contains remote fetch settings.
type FetchConfig struct {
	// Timeout bounds a single template, block, string or file fetch. Zero disables it.
	// Env: CNDI_FETCH_TIMEOUT
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty"`
}

// PromptConfig contains interactive prompt settings.
type PromptConfig struct {
	// MaxAttempts bounds how often a single prompt is re-asked after a
	// failed validation.
	// Env: CNDI_PROMPT_MAX_ATTEMPTS
	MaxAttempts int `mapstructure:"maxAttempts" yaml:"maxAttempts,omitempty"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `mapstructure:"timestamps" yaml:"timestamps,omitempty"`
}

// Config represents the cndi CLI configuration loaded from ~/.cndi/config.yaml.
type Config struct {
	Templates TemplatesConfig `mapstructure:"templates" yaml:"templates"`
	Fetch     FetchConfig     `mapstructure:"fetch" yaml:"fetch"`
	Prompt    PromptConfig    `mapstructure:"prompt" yaml:"prompt"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// DefaultConfig returns a Config with all default values populated.
func DefaultConfig() *Config {
	return &Config{
		Templates: TemplatesConfig{BaseURL: DefaultTemplatesBaseURL},
		Fetch:     FetchConfig{Timeout: DefaultFetchTimeout},
		Prompt:    PromptConfig{MaxAttempts: DefaultPromptMaxAttempts},
	}
}

// WithDefaults returns a copy of c with empty values replaced by defaults.
// A zero fetch timeout is meaningful (no timeout) and is kept.
func (c *Config) WithDefaults() *Config {
	out := *c
	if out.Templates.BaseURL == "" {
		out.Templates.BaseURL = DefaultTemplatesBaseURL
	}
	if out.Prompt.MaxAttempts == 0 {
		out.Prompt.MaxAttempts = DefaultPromptMaxAttempts
	}
	return &out
}

// DefaultConfigYAML is written by `cndi config init`.
const DefaultConfigYAML = `# cndi configuration
templates:
  # bare template names (e.g. "basic") not built into cndi are fetched from
  # <baseURL>/<name>.yaml
  baseURL: ` + DefaultTemplatesBaseURL + `
fetch:
  # bounds every remote template, block, string and extra file fetch; "0s" disables
  timeout: 30s
prompt:
  # how often a single prompt is re-asked after a failed validation
  maxAttempts: 5
log:
  timestamps: true
`
