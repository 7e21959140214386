package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"github.com/polyseam/cndi/internal/testutil"
)

func executeTemplateCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewTemplateCmd(testGlobals())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTemplateList(t *testing.T) {
	tests := []struct {
		name   string
		format string
		check  func(t *testing.T, out string)
	}{
		{
			name:   "table",
			format: "table",
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "basic (default)")
				assert.Contains(t, out, "dev-cluster")
			},
		},
		{
			name:   "yaml",
			format: "yaml",
			check: func(t *testing.T, out string) {
				var entries []templateEntry
				require.NoError(t, yaml.Unmarshal([]byte(out), &entries))
				require.Len(t, entries, 2)
				assert.Equal(t, "basic", entries[0].Name)
				assert.True(t, entries[0].Default)
			},
		},
		{
			name:   "json",
			format: "json",
			check: func(t *testing.T, out string) {
				var entries []templateEntry
				require.NoError(t, json.Unmarshal([]byte(out), &entries))
				assert.Equal(t, "dev-cluster", entries[1].Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeTemplateCmd(t, "list", "-o", tt.format)
			require.NoError(t, err)
			tt.check(t, out)
		})
	}
}

func TestTemplateList_UnknownFormat(t *testing.T) {
	_, err := executeTemplateCmd(t, "list", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
	assert.Equal(t, ExitValidationError, ExitCodeFromError(err))
}

func TestTemplatePrompts(t *testing.T) {
	path := testutil.WriteTemplate(t, `
prompts:
  - type: Input
    name: region
    default: us-east-1
  - $cndi.get_block(https://example.com/prompts.yaml): {}
  - type: Input
    name: zone
    condition: ["{{ $cndi.get_prompt_response(region) }}", "==", us-east-1]
outputs:
  cndi_config: {}
`)

	out, err := executeTemplateCmd(t, "prompts", path, "-o", "json")
	require.NoError(t, err)

	var entries []promptEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 3)

	assert.Equal(t, "region", entries[0].Name)
	assert.Equal(t, "us-east-1", entries[0].Default)
	assert.Equal(t, "import", entries[1].Kind)
	assert.Contains(t, entries[1].Name, "https://example.com/prompts.yaml")
	assert.Equal(t, "zone", entries[2].Name)
	assert.Len(t, entries[2].Condition, 3)

	table, err := executeTemplateCmd(t, "prompts", path)
	require.NoError(t, err)
	assert.Contains(t, table, "region")
	assert.Contains(t, table, "import")
}

func TestTemplatePrompts_Builtin(t *testing.T) {
	out, err := executeTemplateCmd(t, "prompts", "basic", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "deployment_target_provider")
}

func TestTemplatePrompts_NotFound(t *testing.T) {
	_, err := executeTemplateCmd(t, "prompts", "./does-not-exist.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCodeFromError(err))
}
