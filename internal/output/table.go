package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// EmptyCell is shown in place of a blank cell.
const EmptyCell = "-"

// Table renders rows of templates, prompts or config values. The first
// column names the row and is styled as a noun.
type Table struct {
	headers []string
	rows    [][]string

	// muted holds the indexes of secondary columns such as a value source.
	muted map[int]bool
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers, muted: make(map[int]bool)}
}

// Row appends a row. Missing cells are blank and extra cells are dropped
// so every row lines up with the headers.
func (t *Table) Row(cells ...string) *Table {
	row := make([]string, len(t.headers))
	copy(row, cells)
	for i, c := range row {
		if c == "" {
			row[i] = EmptyCell
		}
	}
	t.rows = append(t.rows, row)
	return t
}

// Mute renders the named columns dimmed.
func (t *Table) Mute(headers ...string) *Table {
	for _, h := range headers {
		for i, name := range t.headers {
			if name == h {
				t.muted[i] = true
			}
		}
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// String renders the table with a rounded border.
func (t *Table) String() string {
	styles := GetStyles()
	cell := lipgloss.NewStyle().Padding(0, 1)

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorDimGray)).
		Headers(t.headers...).
		Rows(t.rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return cell.Inherit(styles.Bold)
			case t.rows[row][col] == EmptyCell, t.muted[col]:
				return cell.Inherit(styles.Muted)
			case col == 0:
				return cell.Inherit(StyleNoun)
			default:
				return cell
			}
		})

	return tbl.String()
}
