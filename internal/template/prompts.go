package template

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/polyseam/cndi/internal/template/macro"
	"github.com/polyseam/cndi/internal/template/validators"
)

const (
	// DefaultMaxPromptAttempts bounds re-prompting of one question.
	DefaultMaxPromptAttempts = 5

	// MaxImportDepth bounds prompt imports nested inside imported blocks.
	MaxImportDepth = 8
)

// Question is what a Prompter presents to the user.
type Question struct {
	Type     string
	Name     string
	Message  string
	Default  any
	Options  []any
	Required bool

	// Problem explains why the previous answer was rejected. Empty on the
	// first attempt.
	Problem string
}

// Prompter asks one question and returns the answer. The answer type
// follows the question type: string for text-like prompts, bool for
// Confirm and Toggle, a number for Number and a list for Checkbox.
type Prompter interface {
	Ask(ctx context.Context, q Question) (any, error)
}

// RunPrompts walks the prompt specs in declaration order and fills the
// response store. A name that is already answered is never asked again.
func (s *Session) RunPrompts(ctx context.Context, specs []PromptSpec) error {
	return s.runPrompts(ctx, specs, 0)
}

func (s *Session) runPrompts(ctx context.Context, specs []PromptSpec, depth int) error {
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch spec.Kind {
		case PromptImport:
			err = s.expandImport(ctx, spec, depth)
		default:
			err = s.runLiteral(ctx, spec)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) expandImport(ctx context.Context, spec PromptSpec, depth int) error {
	statement := s.literalize(spec.Statement)
	identifier, ok := macro.CallArgument(statement, macro.BlockCall)
	if !ok || identifier == "" {
		return newError(CodeInvalidPrompt, statement, "malformed prompt import")
	}

	body, err := s.decodeImportBody(identifier, spec.Body)
	if err != nil {
		return err
	}
	pass, err := s.EvaluateCondition(body.Condition)
	if err != nil {
		return err
	}
	if !pass {
		s.logger.Debug("skipping prompt import, condition not met", "block", identifier)
		return nil
	}

	if depth >= MaxImportDepth {
		return newError(CodeImportDepth, identifier, "prompt imports nested deeper than %d", MaxImportDepth)
	}

	text, err := s.expandBlock(ctx, identifier, body.Args)
	if err != nil {
		return err
	}
	n, err := parseNode(identifier, text)
	if err != nil {
		return err
	}
	if n.Kind != yaml.SequenceNode {
		return newError(CodeImportNotSequence, identifier, "imported prompts must be a sequence")
	}
	specs, err := parsePromptSpecs(identifier, n)
	if err != nil {
		return err
	}

	s.logger.Debug("importing prompts", "block", identifier, "count", len(specs))
	return s.runPrompts(ctx, specs, depth+1)
}

func (s *Session) runLiteral(ctx context.Context, spec PromptSpec) error {
	if s.Responses.Has(spec.Name) {
		s.logger.Debug("prompt already answered", "prompt", spec.Name)
		return nil
	}

	p, err := s.decodeLiteral(spec)
	if err != nil {
		return err
	}

	if !s.interactive {
		s.Responses.Set(p.Name, p.Default)
		return nil
	}
	return s.ask(ctx, p)
}

// decodeLiteral literalizes a prompt against the current responses and
// decodes it.
func (s *Session) decodeLiteral(spec PromptSpec) (*LiteralPrompt, error) {
	text, err := encodeNode(spec.Name, spec.Node)
	if err != nil {
		return nil, err
	}
	n, err := parseNode(spec.Name, s.literalize(text))
	if err != nil {
		return nil, err
	}

	var p LiteralPrompt
	if err := n.Decode(&p); err != nil {
		return nil, wrapError(CodeInvalidPrompt, spec.Name, err, "decoding prompt")
	}
	if p.Name == "" {
		p.Name = spec.Name
	}
	if p.Message == "" {
		p.Message = p.Name
	}
	return &p, nil
}

func (s *Session) ask(ctx context.Context, p *LiteralPrompt) error {
	if s.prompter == nil {
		return newError(CodePromptFailed, p.Name, "interactive mode requires a prompter")
	}

	var problem string
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		pass, err := s.EvaluateCondition(p.Condition)
		if err != nil {
			return err
		}
		if !pass {
			s.Responses.Set(p.Name, nil)
			return nil
		}

		answer, err := s.prompter.Ask(ctx, Question{
			Type:     p.Type,
			Name:     p.Name,
			Message:  p.Message,
			Default:  p.Default,
			Options:  p.Options,
			Required: p.Required,
			Problem:  problem,
		})
		if err != nil {
			return wrapError(CodePromptFailed, p.Name, err, "asking prompt")
		}

		if isEmptyAnswer(answer) {
			if p.Required {
				problem = "a value is required"
				continue
			}
		} else if p.Type == PromptTypeFile {
			content, err := readAnswerFile(macro.Stringify(answer))
			if err != nil {
				s.logger.Warn("could not read file", "prompt", p.Name, "error", err)
				problem = err.Error()
				continue
			}
			answer = content
		}

		problem, err = s.validate(p, answer)
		if err != nil {
			return err
		}
		if problem != "" {
			continue
		}

		s.Responses.Set(p.Name, answer)
		return nil
	}

	return newError(CodeAttemptsExceeded, p.Name, "no acceptable answer after %d attempts: %s", s.maxAttempts, problem)
}

// validate runs the prompt's validators in order and returns the first
// message. An unknown validator name is a template error.
func (s *Session) validate(p *LiteralPrompt, answer any) (string, error) {
	for _, ref := range p.Validators {
		fn, ok := validators.Lookup(ref.Name)
		if !ok {
			return "", newError(CodeUnknownValidator, ref.Name, "unknown validator on prompt %q, expected one of %s",
				p.Name, strings.Join(validators.Names(), " "))
		}
		if msg := fn(validators.Input{Value: answer, Type: p.Type, Arg: ref.Arg}); msg != "" {
			return msg, nil
		}
	}
	return "", nil
}

func isEmptyAnswer(v any) bool {
	switch a := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(a) == ""
	case []any:
		return len(a) == 0
	case []string:
		return len(a) == 0
	default:
		return false
	}
}

func readAnswerFile(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return "", fmt.Errorf("file %s is empty", abs)
	}
	return string(data), nil
}
