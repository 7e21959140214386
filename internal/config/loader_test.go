package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	assert.NotNil(t, loader)
	assert.NotNil(t, loader.v)
}

func TestLoaderLoad(t *testing.T) {
	t.Run("loads config from file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")

		content := `
templates:
  baseURL: https://templates.example.com/cndi
fetch:
  timeout: 5s
prompt:
  maxAttempts: 3
log:
  timestamps: false
`
		require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

		cfg, err := NewLoader().Load(configFile)

		require.NoError(t, err)
		assert.Equal(t, "https://templates.example.com/cndi", cfg.Templates.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
		assert.Equal(t, 3, cfg.Prompt.MaxAttempts)
		require.NotNil(t, cfg.Log.Timestamps)
		assert.False(t, *cfg.Log.Timestamps)
	})

	t.Run("returns defaults for missing file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "nonexistent.yaml")

		cfg, err := NewLoader().Load(configFile)

		require.NoError(t, err)
		assert.Equal(t, DefaultTemplatesBaseURL, cfg.Templates.BaseURL)
		assert.Equal(t, DefaultFetchTimeout, cfg.Fetch.Timeout)
		assert.Equal(t, DefaultPromptMaxAttempts, cfg.Prompt.MaxAttempts)
		assert.Nil(t, cfg.Log.Timestamps)
	})

	t.Run("zero timeout is kept", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("fetch:\n  timeout: 0s\n"), 0o644))

		cfg, err := NewLoader().LoadWithDefaults(configFile)

		require.NoError(t, err)
		assert.Equal(t, time.Duration(0), cfg.Fetch.Timeout)
	})

	t.Run("loads from environment variables", func(t *testing.T) {
		t.Setenv("CNDI_TEMPLATES_BASE_URL", "https://env.example.com/templates")
		t.Setenv("CNDI_FETCH_TIMEOUT", "10s")
		t.Setenv("CNDI_PROMPT_MAX_ATTEMPTS", "7")

		cfg, err := NewLoader().Load(filepath.Join(t.TempDir(), "none.yaml"))

		require.NoError(t, err)
		assert.Equal(t, "https://env.example.com/templates", cfg.Templates.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
		assert.Equal(t, 7, cfg.Prompt.MaxAttempts)
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("templates: [unclosed\n"), 0o644))

		_, err := NewLoader().Load(configFile)
		assert.Error(t, err)
	})
}

func TestDefaultConfigYAMLLoads(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(DefaultConfigYAML), 0o644))

	cfg, err := NewLoader().Load(configFile)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Templates, cfg.Templates)
	assert.Equal(t, DefaultConfig().Fetch, cfg.Fetch)
	assert.Equal(t, DefaultConfig().Prompt, cfg.Prompt)
	assert.NoError(t, Validate(cfg))
}

func TestConfigFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	exists, err := ConfigFileExists(configFile)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, os.WriteFile(configFile, []byte(DefaultConfigYAML), 0o644))
	exists, err = ConfigFileExists(configFile)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"~", home},
		{"~/.cndi/config.yaml", filepath.Join(home, ".cndi/config.yaml")},
		{"~other/x", "~other/x"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
