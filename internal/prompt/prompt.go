// Package prompt presents template questions in the terminal with huh.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/polyseam/cndi/internal/output"
	"github.com/polyseam/cndi/internal/template"
)

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New("prompt aborted")

// Prompter asks template questions through huh forms.
type Prompter struct {
	accessible bool
}

// Option configures a Prompter.
type Option func(*Prompter)

// WithAccessible switches huh into line-based accessible mode.
func WithAccessible(accessible bool) Option {
	return func(p *Prompter) { p.accessible = accessible }
}

// New creates a Prompter. Accessible mode defaults to on when stdin or
// stdout is not a terminal.
func New(opts ...Option) *Prompter {
	p := &Prompter{accessible: !output.IsInteractiveTerminal()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ask implements template.Prompter.
func (p *Prompter) Ask(ctx context.Context, q template.Question) (any, error) {
	var (
		field huh.Field
		read  func() (any, error)
	)

	title := q.Message
	description := q.Problem

	switch q.Type {
	case template.PromptTypeConfirm, template.PromptTypeToggle:
		value := toBool(q.Default)
		field = huh.NewConfirm().Title(title).Description(description).Value(&value)
		read = func() (any, error) { return value, nil }

	case template.PromptTypeSelect, template.PromptTypeList:
		options := toStrings(q.Options)
		if len(options) == 0 {
			return nil, fmt.Errorf("prompt %q has no options", q.Name)
		}
		value := defaultString(q.Default)
		field = huh.NewSelect[string]().Title(title).Description(description).
			Options(huh.NewOptions(options...)...).Value(&value)
		read = func() (any, error) { return value, nil }

	case template.PromptTypeCheckbox:
		options := toStrings(q.Options)
		if len(options) == 0 {
			return nil, fmt.Errorf("prompt %q has no options", q.Name)
		}
		value := toStrings(toList(q.Default))
		field = huh.NewMultiSelect[string]().Title(title).Description(description).
			Options(huh.NewOptions(options...)...).Value(&value)
		read = func() (any, error) { return stringsToAny(value), nil }

	case template.PromptTypeText, template.PromptTypeEditor:
		value := defaultString(q.Default)
		field = huh.NewText().Title(title).Description(description).Value(&value)
		read = func() (any, error) { return value, nil }

	case template.PromptTypeNumber:
		value := defaultString(q.Default)
		field = huh.NewInput().Title(title).Description(description).Value(&value).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" && !q.Required {
					return nil
				}
				_, err := ParseNumber(s)
				return err
			})
		read = func() (any, error) {
			if strings.TrimSpace(value) == "" {
				return nil, nil
			}
			return ParseNumber(value)
		}

	case template.PromptTypeSecret:
		value := defaultString(q.Default)
		field = huh.NewInput().Title(title).Description(description).Value(&value).
			EchoMode(huh.EchoModePassword)
		read = func() (any, error) { return value, nil }

	case template.PromptTypeFile:
		value := defaultString(q.Default)
		field = huh.NewInput().Title(title).Description(joinDescription("path to a file", description)).
			Value(&value)
		read = func() (any, error) { return strings.TrimSpace(value), nil }

	default:
		value := defaultString(q.Default)
		field = huh.NewInput().Title(title).Description(description).Value(&value)
		read = func() (any, error) { return value, nil }
	}

	form := huh.NewForm(huh.NewGroup(field)).WithAccessible(p.accessible)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrAborted
		}
		return nil, err
	}
	return read()
}

// ParseNumber parses a Number answer, keeping integers as int.
func ParseNumber(s string) (any, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", s)
	}
	return f, nil
}

func joinDescription(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}

func defaultString(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return d
	default:
		return fmt.Sprint(d)
	}
}

func toBool(v any) bool {
	switch d := v.(type) {
	case bool:
		return d
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(d))
		return b
	default:
		return false
	}
}

func toList(v any) []any {
	switch d := v.(type) {
	case nil:
		return nil
	case []any:
		return d
	case string:
		var out []any
		for _, s := range strings.Split(d, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return []any{d}
	}
}

func toStrings(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, defaultString(item))
	}
	return out
}

func stringsToAny(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}
