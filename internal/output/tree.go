package output

import (
	"path"
	"sort"
	"strings"
)

const (
	branchMid   = "├── "
	branchEnd   = "└── "
	indentOpen  = "│   "
	indentBlank = "    "

	// statusColumn is where file statuses start when the name is short enough.
	statusColumn = 36
)

// dirEntry is a directory of the rendered project.
type dirEntry struct {
	dirs  map[string]*dirEntry
	files map[string]string // name -> status
}

func newDirEntry() *dirEntry {
	return &dirEntry{dirs: make(map[string]*dirEntry), files: make(map[string]string)}
}

// add places a slash separated artifact path in the tree.
func (d *dirEntry) add(p, status string) {
	dir, name := path.Split(path.Clean(strings.TrimPrefix(p, "./")))
	cur := d
	for _, part := range strings.Split(strings.Trim(dir, "/"), "/") {
		if part == "" || part == "." {
			continue
		}
		next, ok := cur.dirs[part]
		if !ok {
			next = newDirEntry()
			cur.dirs[part] = next
		}
		cur = next
	}
	cur.files[name] = status
}

// RenderFileTree renders the artifacts written for a project under
// rootName. Statuses maps slash separated paths to a file status and is
// shown next to each file. Directories are listed before files.
func RenderFileTree(rootName string, statuses map[string]string) string {
	if len(statuses) == 0 {
		return ""
	}

	root := newDirEntry()
	for p, status := range statuses {
		root.add(p, status)
	}

	var sb strings.Builder
	sb.WriteString(GetStyles().Bold.Render(strings.TrimSuffix(rootName, "/") + "/"))
	sb.WriteString("\n")
	root.render(&sb, "")
	return sb.String()
}

func (d *dirEntry) render(sb *strings.Builder, indent string) {
	dirs := sortedKeys(d.dirs)
	files := sortedKeys(d.files)
	total := len(dirs) + len(files)

	for i, name := range dirs {
		branch, next := branchFor(i == total-1)
		sb.WriteString(indent + branch + name + "/\n")
		d.dirs[name].render(sb, indent+next)
	}

	for i, name := range files {
		branch, _ := branchFor(len(dirs)+i == total-1)
		line := indent + branch + name
		if status := d.files[name]; status != "" {
			pad := statusColumn - len([]rune(line))
			if pad < 2 {
				pad = 2
			}
			line += strings.Repeat(" ", pad) + StatusStyle(status).Render(status)
		}
		sb.WriteString(line + "\n")
	}
}

func branchFor(last bool) (branch, indent string) {
	if last {
		return branchEnd, indentBlank
	}
	return branchMid, indentOpen
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
