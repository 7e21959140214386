package template

import (
	"context"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/polyseam/cndi/internal/template/macro"
)

// ProcessEnv renders the env output section as KEY=value lines.
func (s *Session) ProcessEnv(ctx context.Context, section *yaml.Node) (string, error) {
	const id = OutputEnv

	if isNull(section) {
		return "", nil
	}
	if section.Kind != yaml.MappingNode {
		return "", newError(CodeEnvNotMapping, id, "env must be a mapping")
	}

	working := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	working.Content = append(working.Content, section.Content...)

	// Block entries are merged as double quoted strings so multiline values
	// cannot break the .env syntax after literalization.
	for i := 0; i+1 < len(section.Content); i += 2 {
		key := section.Content[i].Value
		if !macro.IsCall(key, macro.BlockCall) {
			continue
		}
		if err := s.mergeEnvBlock(ctx, working, key, section.Content[i+1]); err != nil {
			return "", err
		}
	}

	text, err := encodeNode(id, working)
	if err != nil {
		return "", err
	}
	text, err = macro.LiteralizeRandomStrings(s.literalize(text))
	if err != nil {
		return "", wrapError(CodeInvalidBlock, id, err, "generating random strings")
	}
	env, err := parseNode(id, text)
	if err != nil {
		return "", err
	}

	var lines []string
	for i := 0; i+1 < len(env.Content); i += 2 {
		key, value := env.Content[i].Value, env.Content[i+1]

		switch {
		case macro.IsCall(key, macro.CommentCall):
			lines = append(lines, "\n# "+scalarText(value))
		case macro.IsCall(key, macro.BlockCall):
			continue
		default:
			v, err := nodeText(key, value)
			if err != nil {
				return "", err
			}
			switch {
			case isEmptyEnvValue(v):
				v = "__" + key + "_PLACEHOLDER__"
			case strings.ContainsAny(v, "\r\n"):
				v = strconv.Quote(v)
			}
			lines = append(lines, key+"="+v)
		}
	}

	if len(lines) == 0 {
		return "", nil
	}
	return strings.TrimLeft(strings.Join(lines, "\n"), "\n") + "\n", nil
}

func (s *Session) mergeEnvBlock(ctx context.Context, working *yaml.Node, key string, bodyNode *yaml.Node) error {
	identifier, ok := macro.CallArgument(key, macro.BlockCall)
	if !ok || identifier == "" {
		return newError(CodeInvalidBlock, key, "malformed block call")
	}

	body, err := s.decodeImportBody(identifier, bodyNode)
	if err != nil {
		return err
	}
	pass, err := s.EvaluateCondition(body.Condition)
	if err != nil {
		return err
	}
	if !pass {
		s.logger.Debug("skipping env block, condition not met", "block", identifier)
		return nil
	}

	text, err := s.ResolveBlock(ctx, identifier)
	if err != nil {
		return err
	}
	content, err := parseNode(identifier, macro.LiteralizeArgs(macro.NormalizeBraces(text), body.Args))
	if err != nil {
		return err
	}
	if isNull(content) {
		return nil
	}
	if content.Kind != yaml.MappingNode {
		return newError(CodeEnvBlockNotFlat, identifier, "env blocks must be flat mappings")
	}

	for i := 0; i+1 < len(content.Content); i += 2 {
		k, v := content.Content[i], content.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return newError(CodeEnvBlockNotFlat, identifier, "env block value %q is not a scalar", k.Value)
		}
		value := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Style: yaml.DoubleQuotedStyle, Value: scalarText(v)}
		if !replaceMappingValue(working, k.Value, value) {
			working.Content = append(working.Content, k, value)
		}
	}
	return nil
}

func replaceMappingValue(m *yaml.Node, key string, value *yaml.Node) bool {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return true
		}
	}
	return false
}

func isEmptyEnvValue(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == `""` || v == "''"
}
