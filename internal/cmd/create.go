package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	yamlv3 "gopkg.in/yaml.v3"
	"sigs.k8s.io/yaml"

	oerrors "github.com/polyseam/cndi/internal/errors"
	"github.com/polyseam/cndi/internal/output"
	"github.com/polyseam/cndi/internal/prompt"
	"github.com/polyseam/cndi/internal/template"
	"github.com/polyseam/cndi/internal/template/resolve"
	"github.com/polyseam/cndi/internal/templates"
)

// ResponsesFile records the responses of a run so it can be replayed with
// --responses-file.
const ResponsesFile = "cndi_responses.yaml"

type createOptions struct {
	identifier    string
	interactive   bool
	sets          []string
	responsesFile string
	outputDir     string
	force         bool
	keep          bool
	diff          bool
	preview       bool
}

// NewCreateCmd creates the create command.
func NewCreateCmd(g *GlobalConfig) *cobra.Command {
	var opts createOptions

	c := &cobra.Command{
		Use:   "create [template]",
		Short: "Create a project from a template",
		Long: `Create a cndi project from a template.

The template is one of:
  - a built-in name (see 'cndi template list')
  - a bare name, fetched from <templates.baseURL>/<name>.yaml
  - an http(s) or file:// URL
  - a file path

Without --interactive every prompt takes its default. Responses given
with --set or --responses-file are never asked.

The rendered cndi_config.yaml, README.md, .env, extra files and
cndi_responses.yaml are written to --output. Existing files that would
change are only replaced with --force.

Examples:
  # Create the default project non-interactively
  cndi create

  # Answer prompts interactively
  cndi create basic --interactive

  # Override responses and write into ./my-cluster
  cndi create dev-cluster --set enable_monitoring=true -o ./my-cluster

  # Re-render a project with the same responses and show config changes
  cndi create basic --responses-file cndi_responses.yaml --force --diff`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			opts.identifier = templates.DefaultTemplateName
			if len(args) == 1 {
				opts.identifier = args[0]
			}

			var prompter template.Prompter
			if opts.interactive {
				prompter = prompt.New()
			}
			return exitError(runCreate(c.Context(), c.OutOrStdout(), g, opts, prompter))
		},
	}

	c.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Ask prompts interactively")
	c.Flags().StringArrayVar(&opts.sets, "set", nil, "Set a response as name=value (repeatable)")
	c.Flags().StringVarP(&opts.responsesFile, "responses-file", "r", "", "YAML file of responses, e.g. a previous "+ResponsesFile)
	c.Flags().StringVarP(&opts.outputDir, "output", "o", ".", "Directory to write the project to")
	c.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite existing files")
	c.Flags().BoolVar(&opts.keep, "keep", false, "Keep an existing .env instead of overwriting it")
	c.Flags().BoolVar(&opts.diff, "diff", false, "Show changes to an existing cndi_config.yaml")
	c.Flags().BoolVar(&opts.preview, "preview", false, "Render the generated README.md to the terminal")

	return c
}

func runCreate(ctx context.Context, w io.Writer, g *GlobalConfig, opts createOptions, prompter template.Prompter) error {
	if ctx == nil {
		ctx = context.Background()
	}

	overrides, err := loadOverrides(opts.responsesFile, opts.sets)
	if err != nil {
		return err
	}

	logger := output.SessionLogger(opts.identifier)
	resolver := g.NewResolver(resolve.WithLogger(logger))

	var doc *template.Document
	load := func(ctx context.Context) error {
		var err error
		doc, err = template.LoadDocument(ctx, resolver, opts.identifier)
		return err
	}
	if templates.IsBuiltin(opts.identifier) {
		err = load(ctx)
	} else {
		err = output.RunWithSpinner(ctx, load, output.WithTitle("Fetching template "+opts.identifier))
	}
	if err != nil {
		return fetchError(g, opts.identifier, err)
	}

	session := template.NewSession(template.Options{
		Interactive:       opts.interactive,
		Overrides:         overrides,
		Resolver:          resolver,
		Prompter:          prompter,
		Logger:            logger,
		MaxPromptAttempts: g.MaxPromptAttempts(),
	})
	result, err := session.Run(ctx, doc)
	if err != nil {
		return fetchError(g, opts.identifier, err)
	}

	files, err := withResponsesFile(result)
	if err != nil {
		return err
	}

	if opts.diff {
		if err := printConfigDiff(w, opts.outputDir, files[template.FileConfig]); err != nil {
			return err
		}
	}

	plan, err := planArtifacts(opts.outputDir, files, opts.force, opts.keep)
	if err != nil {
		return err
	}
	if err := writeArtifacts(opts.outputDir, plan); err != nil {
		return err
	}

	statuses := make(map[string]string, len(plan))
	for _, a := range plan {
		logger.Info(output.FormatFileLine(a.path, a.status))
		statuses[a.path] = a.status
	}

	root := filepath.Base(filepath.Clean(opts.outputDir))
	fmt.Fprintln(w, output.RenderFileTree(root, statuses))

	if opts.preview && files[template.FileReadme] != "" {
		fmt.Fprintln(w, output.RenderMarkdown(files[template.FileReadme]))
	}

	fmt.Fprintln(w, output.FormatCheckmark(fmt.Sprintf("Project created from %s in %s", opts.identifier, opts.outputDir)))
	return nil
}

// loadOverrides merges a responses file with --set values. --set wins.
func loadOverrides(responsesFile string, sets []string) (map[string]any, error) {
	overrides := make(map[string]any)

	if responsesFile != "" {
		data, err := os.ReadFile(responsesFile)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, oerrors.NewNotFoundError("responses file not found", responsesFile, "")
			}
			return nil, fileError("reading responses file", responsesFile, err)
		}
		if err := yaml.Unmarshal(data, &overrides); err != nil {
			return nil, oerrors.NewValidationError(err.Error(), responsesFile, "",
				"The responses file must be a YAML mapping of prompt names to values.")
		}
		if overrides == nil {
			overrides = make(map[string]any)
		}
	}

	for _, set := range sets {
		name, raw, ok := strings.Cut(set, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, oerrors.NewValidationError(
				fmt.Sprintf("invalid --set %q", set), "", "set", "Use --set name=value.")
		}
		overrides[name] = parseSetValue(raw)
	}

	return overrides, nil
}

// parseSetValue reads a --set value as a YAML scalar so booleans and
// numbers keep their type. Anything that does not decode to a scalar is
// kept as a string.
func parseSetValue(raw string) any {
	if strings.TrimSpace(raw) == "" {
		return raw
	}
	var v any
	if err := yamlv3.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	switch v.(type) {
	case bool, int, float64, string:
		return v
	default:
		return raw
	}
}

// withResponsesFile adds the responses record to the rendered files.
func withResponsesFile(result *template.Result) (map[string]string, error) {
	files := make(map[string]string, len(result.Files)+1)
	for k, v := range result.Files {
		files[k] = v
	}

	if _, taken := files[ResponsesFile]; taken {
		output.Warn("template renders its own responses file, not recording responses", "file", ResponsesFile)
		return files, nil
	}

	data, err := yaml.Marshal(result.Responses)
	if err != nil {
		return nil, fmt.Errorf("encoding responses: %w", err)
	}
	files[ResponsesFile] = string(data)
	return files, nil
}

func printConfigDiff(w io.Writer, dir, rendered string) error {
	existing, err := os.ReadFile(filepath.Join(dir, template.FileConfig))
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(w, template.FileConfig+": new file")
		return nil
	}
	if err != nil {
		return fileError("reading existing config", filepath.Join(dir, template.FileConfig), err)
	}

	diff, err := output.DiffYAML(existing, []byte(rendered), output.IsTTY())
	if err != nil {
		return oerrors.NewValidationError(err.Error(), filepath.Join(dir, template.FileConfig), "", "")
	}
	if diff == "" {
		fmt.Fprintln(w, template.FileConfig+": no changes")
		return nil
	}
	fmt.Fprintln(w, template.FileConfig+":")
	fmt.Fprint(w, output.IndentDiff(diff, "  "))
	return nil
}

// artifact is one file of a write plan.
type artifact struct {
	path    string
	content string
	status  string
}

// planArtifacts decides the status of every file before anything is
// written, so a refused overwrite leaves the directory untouched.
func planArtifacts(dir string, files map[string]string, force, keep bool) ([]artifact, error) {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var (
		plan      []artifact
		conflicts []string
	)
	for _, p := range paths {
		a := artifact{path: p, content: files[p]}
		existing, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(p)))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			a.status = output.StatusCreated
		case err != nil:
			return nil, fileError("reading existing file", filepath.Join(dir, filepath.FromSlash(p)), err)
		case bytes.Equal(existing, []byte(a.content)):
			a.status = output.StatusUnchanged
		case keep && p == template.FileEnv:
			a.status = output.StatusKept
		case force:
			a.status = output.StatusOverwritten
		default:
			conflicts = append(conflicts, p)
			continue
		}
		plan = append(plan, a)
	}

	if len(conflicts) > 0 {
		return nil, &oerrors.DetailError{
			Type:     "validation failed",
			Message:  "refusing to overwrite existing files: " + strings.Join(conflicts, ", "),
			Location: dir,
			Hint:     "Use --force to overwrite, or --keep to keep an existing .env.",
			Cause:    oerrors.ErrValidation,
		}
	}
	return plan, nil
}

func writeArtifacts(dir string, plan []artifact) error {
	for _, a := range plan {
		if a.status != output.StatusCreated && a.status != output.StatusOverwritten {
			continue
		}

		target := filepath.Join(dir, filepath.FromSlash(a.path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fileError("creating directory", filepath.Dir(target), err)
		}

		perm := os.FileMode(0o644)
		if a.path == template.FileEnv {
			perm = 0o600
		}
		if err := os.WriteFile(target, []byte(a.content), perm); err != nil {
			return fileError("writing file", target, err)
		}
		output.Debug("wrote file", "path", target, "status", a.status)
	}
	return nil
}
