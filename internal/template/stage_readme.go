package template

import (
	"context"
	"errors"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/polyseam/cndi/internal/template/macro"
	"github.com/polyseam/cndi/internal/template/resolve"
)

// ProcessReadme renders the readme output section. Each top-level entry
// becomes one paragraph.
func (s *Session) ProcessReadme(ctx context.Context, section *yaml.Node) (string, error) {
	const id = OutputReadme

	if isNull(section) {
		return "", nil
	}
	if section.Kind != yaml.MappingNode {
		return "", newError(CodeNotMapping, id, "readme must be a mapping")
	}
	for i := 0; i+1 < len(section.Content); i += 2 {
		if key := section.Content[i].Value; macro.IsCall(key, macro.BlockCall) {
			return "", newError(CodeReadmeBlock, key, "block imports are not allowed in readme")
		}
	}

	text, err := encodeNode(id, section)
	if err != nil {
		return "", err
	}
	readme, err := parseNode(id, s.literalize(text))
	if err != nil {
		return "", err
	}

	var paragraphs []string
	for i := 0; i+1 < len(readme.Content); i += 2 {
		key, value := readme.Content[i].Value, readme.Content[i+1]

		switch {
		case macro.IsCall(key, macro.StringCall):
			paragraphs = append(paragraphs, s.readmeString(ctx, key))
		case macro.IsCall(key, macro.CommentCall):
			paragraphs = append(paragraphs, "<!-- "+scalarText(value)+" -->")
		default:
			v, err := nodeText(key, value)
			if err != nil {
				return "", err
			}
			paragraphs = append(paragraphs, v)
		}
	}

	if len(paragraphs) == 0 {
		return "", nil
	}
	return strings.Join(paragraphs, "\n\n") + "\n", nil
}

// readmeString fetches a get_string target. Failures become an HTML comment
// in place of the text.
func (s *Session) readmeString(ctx context.Context, key string) string {
	identifier, ok := macro.CallArgument(key, macro.StringCall)
	if !ok || identifier == "" {
		return "<!-- malformed " + macro.StringCall + " call: " + key + " -->"
	}

	text, err := s.resolver.Resolve(ctx, identifier, resolve.KindString)
	if err != nil {
		terr := resolutionError(identifier, resolve.KindString, err)
		s.logger.Warn("could not fetch readme string", "identifier", identifier, "error", err)
		if errors.Is(err, resolve.ErrBareName) {
			return "<!-- " + terr.Message + ": " + identifier + " -->"
		}
		return "<!-- failed to fetch " + identifier + ": " + terr.Error() + " -->"
	}
	return strings.TrimRight(text, "\n")
}

// scalarText is the string form of a scalar node; null is empty.
func scalarText(n *yaml.Node) string {
	if isNull(n) {
		return ""
	}
	return n.Value
}

// nodeText is the string form of any node. Collections render as YAML.
func nodeText(id string, n *yaml.Node) (string, error) {
	if isNull(n) || n.Kind == yaml.ScalarNode {
		return scalarText(n), nil
	}
	text, err := encodeNode(id, n)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(text, "\n"), nil
}
