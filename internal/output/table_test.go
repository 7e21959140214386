package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable(t *testing.T) {
	tbl := NewTable("NAME", "TYPE", "DEFAULT").
		Row("project_name", "Input", "my-project").
		Row("region", "Select")

	out := tbl.String()

	assert.Equal(t, 2, tbl.Len())
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "project_name")
	assert.Contains(t, out, "Select")
	assert.Contains(t, out, "╭")
}

func TestTable_RowShape(t *testing.T) {
	tbl := NewTable("KEY", "VALUE").
		Row("templates.baseURL").
		Row("log.timestamps", "true", "extra")

	assert.Equal(t, []string{"templates.baseURL", EmptyCell}, tbl.rows[0])
	assert.Equal(t, []string{"log.timestamps", "true"}, tbl.rows[1])
	assert.NotContains(t, tbl.String(), "extra")
}

func TestTable_Mute(t *testing.T) {
	tbl := NewTable("KEY", "VALUE", "SOURCE").Mute("SOURCE", "MISSING")

	assert.Equal(t, map[int]bool{2: true}, tbl.muted)
	assert.True(t, strings.Contains(tbl.Row("a", "b", "flag").String(), "flag"))
}
