package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderFileTree(t *testing.T) {
	tree := RenderFileTree("my-cluster", map[string]string{
		"cndi_config.yaml":                    StatusCreated,
		"README.md":                           StatusOverwritten,
		".env":                                StatusKept,
		"./cndi/cluster_manifests/ns.yaml":    StatusCreated,
		"cndi/cluster_manifests/app/app.yaml": StatusUnchanged,
		"functions/src/hello.ts":              "",
	})

	lines := strings.Split(strings.TrimRight(tree, "\n"), "\n")
	require.Len(t, lines, 12)
	assert.Equal(t, "my-cluster/", lines[0])

	// directories sort before files
	assert.Equal(t, "├── cndi/", lines[1])
	assert.Equal(t, "│   └── cluster_manifests/", lines[2])
	assert.Equal(t, "│       ├── app/", lines[3])
	assert.Contains(t, lines[4], "│       │   └── app.yaml")
	assert.Contains(t, lines[4], StatusUnchanged)
	assert.Contains(t, lines[5], "│       └── ns.yaml")
	assert.Equal(t, "├── functions/", lines[6])
	assert.Equal(t, "│   └── src/", lines[7])
	assert.Equal(t, "│       └── hello.ts", lines[8], "no status, no padding")
	assert.Contains(t, lines[9], "├── .env")
	assert.Contains(t, lines[9], StatusKept)
	assert.Contains(t, lines[10], "├── README.md")
	assert.Contains(t, lines[11], "└── cndi_config.yaml")
}

func TestRenderFileTree_StatusColumn(t *testing.T) {
	tree := RenderFileTree("out/", map[string]string{
		"a.yaml": StatusCreated,
		"a-very-long-file-name-that-passes-the-column.yaml": StatusCreated,
	})

	lines := strings.Split(strings.TrimRight(tree, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "out/", lines[0])
	column := len([]rune(lines[2][:strings.Index(lines[2], StatusCreated)]))
	assert.Equal(t, statusColumn, column, "short names pad to the column")
	assert.Contains(t, lines[1], ".yaml  "+StatusCreated, "long names keep two spaces")
}

func TestRenderFileTree_Empty(t *testing.T) {
	assert.Empty(t, RenderFileTree("x", nil))
}
