package templates

// Template describes a built-in CNDI template.
type Template struct {
	// Name is the identifier passed to `cndi create`.
	Name string

	// Description is a one-line summary shown by `cndi template list`.
	Description string

	// UseCase describes when to choose this template.
	UseCase string

	// Default indicates this is the template used when none is given.
	Default bool
}
