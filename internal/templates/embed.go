// Package templates provides the built-in CNDI templates embedded in the
// cndi binary.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

const builtinDir = "builtin"

// Content returns the source text of a built-in template.
func Content(name string) (string, error) {
	if _, err := Get(name); err != nil {
		return "", err
	}
	data, err := fs.ReadFile(builtinFS, path.Join(builtinDir, name+".yaml"))
	if err != nil {
		return "", fmt.Errorf("reading built-in template %s: %w", name, err)
	}
	return string(data), nil
}

// Lookup returns the source text of a built-in template and whether it
// exists. It has the signature expected by resolve.WithBuiltins.
func Lookup(name string) (string, bool) {
	text, err := Content(name)
	if err != nil {
		return "", false
	}
	return text, true
}

// ListTemplateFiles returns the embedded file names, without extension.
func ListTemplateFiles() ([]string, error) {
	entries, err := fs.ReadDir(builtinFS, builtinDir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	return names, nil
}
