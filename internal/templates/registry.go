package templates

import (
	"fmt"
	"strings"
)

// DefaultTemplateName is the template used when `cndi create` gets no name.
const DefaultTemplateName = "basic"

// templates is the internal registry of built-in templates.
var templates = map[string]Template{
	"basic": {
		Name:        "basic",
		Description: "Single cluster on AWS, GCP, Azure or dev",
		UseCase:     "First project, trying out cndi, small production clusters",
		Default:     true,
	},
	"dev-cluster": {
		Name:        "dev-cluster",
		Description: "Local microk8s cluster with optional monitoring",
		UseCase:     "Local development, demos, template authoring",
		Default:     false,
	},
}

// Get returns a template by name.
// Returns an error if the template is not found.
func Get(name string) (Template, error) {
	t, ok := templates[name]
	if !ok {
		return Template{}, fmt.Errorf("unknown template %q; built-in templates: %s", name, strings.Join(Names(), ", "))
	}
	return t, nil
}

// IsBuiltin reports whether name is a built-in template.
func IsBuiltin(name string) bool {
	_, ok := templates[name]
	return ok
}

// List returns all built-in templates.
func List() []Template {
	return []Template{
		templates["basic"],
		templates["dev-cluster"],
	}
}

// GetDefault returns the default template.
func GetDefault() Template {
	return templates[DefaultTemplateName]
}

// Names returns all built-in template names.
func Names() []string {
	return []string{"basic", "dev-cluster"}
}
