package template

import (
	"context"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/polyseam/cndi/internal/template/macro"
	"github.com/polyseam/cndi/internal/template/resolve"
)

// ProcessExtraFiles renders the extra_files output section into a map of
// sanitized relative path to content. Values that are URLs are fetched.
func (s *Session) ProcessExtraFiles(ctx context.Context, section *yaml.Node) (map[string]string, error) {
	const id = OutputExtraFiles

	files := make(map[string]string)
	if isNull(section) {
		return files, nil
	}
	if section.Kind != yaml.MappingNode {
		return nil, newError(CodeNotMapping, id, "extra_files must be a mapping")
	}

	text, err := encodeNode(id, section)
	if err != nil {
		return nil, err
	}
	text, err = macro.LiteralizeRandomStrings(s.literalize(text))
	if err != nil {
		return nil, wrapError(CodeInvalidBlock, id, err, "generating random strings")
	}
	extra, err := parseNode(id, text)
	if err != nil {
		return nil, err
	}

	// Every key is checked before anything is fetched.
	paths := make([]string, 0, len(extra.Content)/2)
	for i := 0; i+1 < len(extra.Content); i += 2 {
		key := extra.Content[i].Value
		if !strings.HasPrefix(key, "./") {
			return nil, newError(CodeExtraFileKey, key, "extra file keys must start with ./")
		}
		p, err := SanitizePath(key)
		if err != nil {
			return nil, err
		}
		switch p {
		case FileConfig, FileReadme, FileEnv:
			return nil, newError(CodeExtraFileCollision, key, "extra file would overwrite %s", p)
		}
		paths = append(paths, p)
	}

	for i, p := range paths {
		value := extra.Content[i*2+1]

		content, err := s.extraFileContent(ctx, p, value)
		if err != nil {
			return nil, err
		}
		files[p] = content
	}
	return files, nil
}

func (s *Session) extraFileContent(ctx context.Context, p string, value *yaml.Node) (string, error) {
	switch {
	case isNull(value):
		return "", nil
	case value.Kind != yaml.ScalarNode:
		unquote(value)
		return encodeNode(p, value)
	}

	u, ok := resolve.ParseURL(value.Value)
	if !ok || u.Scheme == "file" {
		return value.Value, nil
	}

	s.logger.Debug("fetching extra file", "path", p, "url", value.Value)
	text, err := s.resolver.Resolve(ctx, value.Value, resolve.KindString)
	if err != nil {
		return "", resolutionError(value.Value, resolve.KindString, err)
	}
	return text, nil
}

// SanitizePath turns an extra file key into a clean relative slash path.
// Absolute paths and parent directory segments are rejected.
func SanitizePath(key string) (string, error) {
	rel := strings.TrimPrefix(strings.ReplaceAll(key, `\`, "/"), "./")
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return "", newError(CodeUnsafePath, key, "path must not contain ..")
		}
	}
	if strings.HasPrefix(rel, "/") || (len(rel) > 1 && rel[1] == ':') {
		return "", newError(CodeUnsafePath, key, "path must be relative")
	}

	clean := path.Clean(rel)
	if clean == "." || clean == "" {
		return "", newError(CodeUnsafePath, key, "path names no file")
	}
	return clean, nil
}
