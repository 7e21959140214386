package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	oerrors "github.com/polyseam/cndi/internal/errors"
	"github.com/polyseam/cndi/internal/output"
	"github.com/polyseam/cndi/internal/template"
	"github.com/polyseam/cndi/internal/templates"
)

// NewTemplateCmd creates the template command group.
func NewTemplateCmd(g *GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "template",
		Short: "Inspect templates",
		Long:  `Inspect built-in and remote cndi templates.`,
	}

	c.AddCommand(NewTemplateListCmd(g))
	c.AddCommand(NewTemplatePromptsCmd(g))

	return c
}

// NewTemplateListCmd creates the template list command.
func NewTemplateListCmd(_ *GlobalConfig) *cobra.Command {
	var formatFlag string

	c := &cobra.Command{
		Use:   "list",
		Short: "List built-in templates",
		Long: `List the templates built into cndi.

Any other template name is fetched from <templates.baseURL>/<name>.yaml.

Examples:
  cndi template list
  cndi template list -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return exitError(runTemplateList(c.OutOrStdout(), formatFlag))
		},
	}

	c.Flags().StringVarP(&formatFlag, "output", "o", "table",
		fmt.Sprintf("Output format (%s)", strings.Join(output.ValidFormats(), ", ")))

	return c
}

type templateEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	UseCase     string `json:"useCase"`
	Default     bool   `json:"default"`
}

func runTemplateList(w io.Writer, format string) error {
	var entries []templateEntry
	for _, t := range templates.List() {
		entries = append(entries, templateEntry{
			Name:        t.Name,
			Description: t.Description,
			UseCase:     t.UseCase,
			Default:     t.Default,
		})
	}

	return writeFormatted(w, format, entries, func() string {
		tbl := output.NewTable("NAME", "DESCRIPTION", "USE CASE")
		for _, e := range entries {
			name := e.Name
			if e.Default {
				name += " (default)"
			}
			tbl.Row(name, e.Description, e.UseCase)
		}
		return tbl.String()
	})
}

// NewTemplatePromptsCmd creates the template prompts command.
func NewTemplatePromptsCmd(g *GlobalConfig) *cobra.Command {
	var formatFlag string

	c := &cobra.Command{
		Use:   "prompts <template>",
		Short: "Show the prompts a template declares",
		Long: `Show the prompts a template declares, without asking them.

The template is a built-in name, a bare name fetched from the templates
base URL, a URL, or a file path. Imported prompt blocks are listed as
imports and are not fetched.

Examples:
  cndi template prompts basic
  cndi template prompts ./my-template.yaml -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return exitError(runTemplatePrompts(c, g, args[0], formatFlag))
		},
	}

	c.Flags().StringVarP(&formatFlag, "output", "o", "table",
		fmt.Sprintf("Output format (%s)", strings.Join(output.ValidFormats(), ", ")))

	return c
}

type promptEntry struct {
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Type      string `json:"type,omitempty"`
	Message   string `json:"message,omitempty"`
	Default   any    `json:"default,omitempty"`
	Condition []any  `json:"condition,omitempty"`
}

func runTemplatePrompts(c *cobra.Command, g *GlobalConfig, identifier, format string) error {
	doc, err := template.LoadDocument(c.Context(), g.NewResolver(), identifier)
	if err != nil {
		return fetchError(g, identifier, err)
	}

	entries := make([]promptEntry, 0, len(doc.Prompts))
	for _, spec := range doc.Prompts {
		if spec.Kind == template.PromptImport {
			entries = append(entries, promptEntry{Kind: spec.Kind.String(), Name: spec.Statement})
			continue
		}
		p, err := spec.Literal()
		if err != nil {
			return oerrors.NewValidationError(err.Error(), identifier, spec.Name, "")
		}
		entries = append(entries, promptEntry{
			Kind:      spec.Kind.String(),
			Name:      p.Name,
			Type:      p.Type,
			Message:   p.Message,
			Default:   p.Default,
			Condition: p.Condition,
		})
	}

	return writeFormatted(c.OutOrStdout(), format, entries, func() string {
		tbl := output.NewTable("NAME", "TYPE", "DEFAULT", "CONDITION").Mute("CONDITION")
		for _, e := range entries {
			if e.Kind == template.PromptImport.String() {
				tbl.Row(e.Name, "import", "", "")
				continue
			}
			def, cond := "", ""
			if e.Default != nil {
				def = fmt.Sprint(e.Default)
			}
			if len(e.Condition) > 0 {
				cond = fmt.Sprintf("%v", e.Condition)
			}
			tbl.Row(e.Name, e.Type, def, cond)
		}
		return tbl.String()
	})
}

// writeFormatted prints v as YAML or JSON, or the table built by table.
func writeFormatted(w io.Writer, format string, v any, table func() string) error {
	f := output.ParseOutputFormat(format)
	if f == output.FormatTable && !strings.EqualFold(format, string(output.FormatTable)) {
		return oerrors.NewValidationError(
			fmt.Sprintf("unknown output format %q", format), "", "output",
			"Valid formats: "+strings.Join(output.ValidFormats(), ", "))
	}

	switch f {
	case output.FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case output.FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		_, err := fmt.Fprintln(w, table())
		return err
	}
}
