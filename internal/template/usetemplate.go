// Package template implements the CNDI template language: a YAML document
// of blocks, prompts and outputs whose macro calls are resolved against
// prompt responses to render cndi_config.yaml, README.md, .env and any
// extra files.
//
// A run is driven by UseTemplate:
//
//	result, err := template.UseTemplate(ctx, "basic", template.Options{
//		Overrides: map[string]any{"project_name": "demo"},
//	})
//
// Every run owns a Session, so concurrent runs share no state.
package template

import (
	"context"
	"maps"

	"github.com/charmbracelet/log"

	"github.com/polyseam/cndi/internal/template/resolve"
)

// Options configures UseTemplate.
type Options struct {
	// Interactive asks literal prompts through Prompter. Otherwise each
	// prompt takes its default.
	Interactive bool

	// Overrides are stored as responses before prompting, so the matching
	// prompts are never asked.
	Overrides map[string]any

	// Resolver fetches templates, blocks and strings. Defaults to a
	// resolve.Resolver with no base URL.
	Resolver Resolver

	// Prompter asks questions in interactive mode.
	Prompter Prompter

	// Logger receives diagnostics. Defaults to log.Default().
	Logger *log.Logger

	// MaxPromptAttempts bounds re-prompting. Defaults to DefaultMaxPromptAttempts.
	MaxPromptAttempts int
}

// Result is the outcome of a template run.
type Result struct {
	// Responses holds every defined response.
	Responses map[string]any

	// Files maps artifact path to content.
	Files map[string]string
}

// LoadDocument resolves and parses a template without running it.
func LoadDocument(ctx context.Context, r Resolver, identifier string) (*Document, error) {
	if r == nil {
		r = resolve.New()
	}
	text, err := r.Resolve(ctx, identifier, resolve.KindTemplate)
	if err != nil {
		return nil, resolutionError(identifier, resolve.KindTemplate, err)
	}
	return ParseDocument(identifier, text)
}

// UseTemplate resolves a template, runs its prompts and renders its outputs.
func UseTemplate(ctx context.Context, identifier string, opts Options) (*Result, error) {
	s := NewSession(opts)

	doc, err := LoadDocument(ctx, s.resolver, identifier)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, doc)
}

// Run renders a parsed document within the session.
func (s *Session) Run(ctx context.Context, doc *Document) (*Result, error) {
	s.LoadBlocks(doc.Blocks)
	s.logger.Debug("loaded template", "template", doc.ID, "blocks", len(doc.Blocks), "prompts", len(doc.Prompts))

	if err := s.RunPrompts(ctx, doc.Prompts); err != nil {
		return nil, err
	}

	config, err := s.ProcessConfig(ctx, doc.Output(OutputConfig))
	if err != nil {
		return nil, err
	}
	readme, err := s.ProcessReadme(ctx, doc.Output(OutputReadme))
	if err != nil {
		return nil, err
	}
	env, err := s.ProcessEnv(ctx, doc.Output(OutputEnv))
	if err != nil {
		return nil, err
	}
	extra, err := s.ProcessExtraFiles(ctx, doc.Output(OutputExtraFiles))
	if err != nil {
		return nil, err
	}

	files := map[string]string{
		FileConfig: config,
		FileReadme: readme,
		FileEnv:    env,
	}
	maps.Copy(files, extra)

	return &Result{
		Responses: s.Responses.Defined(),
		Files:     files,
	}, nil
}
