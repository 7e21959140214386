package template

import (
	"context"
	"errors"
	"sort"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/polyseam/cndi/internal/template/macro"
	"github.com/polyseam/cndi/internal/template/resolve"
)

// Resolver turns identifiers into text. *resolve.Resolver satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, identifier string, kind resolve.Kind) (string, error)
}

// Responses is the ordered response store of one run. A nil value means
// the prompt was considered and left undefined.
type Responses struct {
	names  []string
	values map[string]any
}

// NewResponses returns an empty store.
func NewResponses() *Responses {
	return &Responses{values: make(map[string]any)}
}

// Has reports whether name has been answered, even if undefined.
func (r *Responses) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Get returns the value stored for name.
func (r *Responses) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Set stores value under name, keeping the original insertion position.
func (r *Responses) Set(name string, value any) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = value
}

// Names returns stored names in insertion order.
func (r *Responses) Names() []string {
	return append([]string(nil), r.names...)
}

// All returns every stored value, undefined ones included. Macro
// literalization needs the undefined entries to render them as null.
func (r *Responses) All() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Defined returns stored values with undefined entries omitted.
func (r *Responses) Defined() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

// Session is the state of one template invocation: the response store, the
// named block store and the collaborators the stages use.
type Session struct {
	Responses *Responses

	blocks      map[string]*yaml.Node
	resolver    Resolver
	prompter    Prompter
	logger      *log.Logger
	interactive bool
	maxAttempts int
}

// NewSession creates a session from options. Overrides are stored in name
// order before any prompt runs.
func NewSession(opts Options) *Session {
	s := &Session{
		Responses:   NewResponses(),
		blocks:      make(map[string]*yaml.Node),
		resolver:    opts.Resolver,
		prompter:    opts.Prompter,
		logger:      opts.Logger,
		interactive: opts.Interactive,
		maxAttempts: opts.MaxPromptAttempts,
	}
	if s.resolver == nil {
		s.resolver = resolve.New()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = DefaultMaxPromptAttempts
	}

	names := make([]string, 0, len(opts.Overrides))
	for name := range opts.Overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.Responses.Set(name, opts.Overrides[name])
	}
	return s
}

// LoadBlocks fills the named block store. Later duplicates replace earlier ones.
func (s *Session) LoadBlocks(blocks []Block) {
	for _, b := range blocks {
		if _, dup := s.blocks[b.Name]; dup {
			s.logger.Warn("duplicate block name, last definition wins", "block", b.Name)
		}
		s.blocks[b.Name] = b.Content
	}
}

// ResolveBlock returns the text of a block identifier. Bare names come from
// the named block store; a block mapped to null resolves to "null".
func (s *Session) ResolveBlock(ctx context.Context, identifier string) (string, error) {
	text, err := s.resolver.Resolve(ctx, identifier, resolve.KindBlock)
	if err == nil {
		return text, nil
	}
	if !errors.Is(err, resolve.ErrBareName) {
		return "", resolutionError(identifier, resolve.KindBlock, err)
	}

	content, ok := s.blocks[identifier]
	if !ok {
		return "", newError(CodeBlockNotFound, identifier, "no block named %q", identifier)
	}
	if content == nil {
		return "null", nil
	}
	return encodeNode(identifier, content)
}

// literalize applies brace normalization and prompt response substitution.
func (s *Session) literalize(text string) string {
	return macro.LiteralizePromptResponses(macro.NormalizeBraces(text), s.Responses.All())
}

// expandBlock resolves a block and substitutes its args, the prompt
// responses and random strings into the text.
func (s *Session) expandBlock(ctx context.Context, identifier string, args map[string]any) (string, error) {
	text, err := s.ResolveBlock(ctx, identifier)
	if err != nil {
		return "", err
	}
	text = macro.LiteralizeArgs(macro.NormalizeBraces(text), args)
	text = macro.LiteralizePromptResponses(text, s.Responses.All())
	text, err = macro.LiteralizeRandomStrings(text)
	if err != nil {
		return "", wrapError(CodeInvalidBlock, identifier, err, "generating random strings")
	}
	return text, nil
}

// decodeImportBody reads args and condition from the value of a
// `$cndi.get_block(...)` key after literalizing it.
func (s *Session) decodeImportBody(id string, body *yaml.Node) (importBody, error) {
	var out importBody
	if isNull(body) {
		return out, nil
	}
	if body.Kind != yaml.MappingNode {
		return out, newError(CodeInvalidBlock, id, "block call body must be a mapping of args and condition")
	}

	text, err := encodeNode(id, body)
	if err != nil {
		return out, err
	}
	n, err := parseNode(id, s.literalize(text))
	if err != nil {
		return out, err
	}
	if err := n.Decode(&out); err != nil {
		return out, wrapError(CodeInvalidBlock, id, err, "decoding block call body")
	}
	return out, nil
}
