package template

import (
	"context"

	"gopkg.in/yaml.v3"

	"github.com/polyseam/cndi/internal/template/keypath"
	"github.com/polyseam/cndi/internal/template/macro"
)

// MaxBlockExpansions bounds the get_block expansion loop of the config
// stage. A block whose expansion reintroduces its own call hits it.
const MaxBlockExpansions = 1000

// DistributionResponse is the response recording a defaulted distribution.
const DistributionResponse = "deployment_target_distribution"

// defaultDistributions maps a provider to its default Kubernetes distribution.
var defaultDistributions = map[string]string{
	"aws":   "eks",
	"azure": "aks",
	"gcp":   "gke",
	"dev":   "microk8s",
}

func isBlockCallKey(key string) bool {
	return macro.IsCall(key, macro.BlockCall+"(")
}

// ProcessConfig renders the cndi_config output section.
func (s *Session) ProcessConfig(ctx context.Context, section *yaml.Node) (string, error) {
	const id = OutputConfig

	if isNull(section) {
		section = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}
	text, err := encodeNode(id, section)
	if err != nil {
		return "", err
	}
	text, err = macro.LiteralizeRandomStrings(s.literalize(text))
	if err != nil {
		return "", wrapError(CodeInvalidBlock, id, err, "generating random strings")
	}

	doc, err := parseNode(id, text)
	if err != nil {
		return "", err
	}

	for expansions := 0; ; expansions++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		path, err := keypath.FindPathToKeyFunc(doc, isBlockCallKey)
		if err != nil {
			return "", wrapError(CodeExpansionLimit, id, err, "searching for block calls")
		}
		if len(path) == 0 {
			break
		}
		if expansions >= MaxBlockExpansions {
			return "", newError(CodeExpansionLimit, path.Last().Key, "more than %d block expansions, a block may be importing itself", MaxBlockExpansions)
		}

		if err := s.expandConfigCall(ctx, doc, path); err != nil {
			return "", err
		}
	}

	text, err = encodeNode(id, doc)
	if err != nil {
		return "", err
	}
	doc, err = parseNode(id, s.literalize(text))
	if err != nil {
		return "", err
	}

	s.defaultDistribution(doc)
	unquote(doc)

	text, err = encodeNode(id, doc)
	if err != nil {
		return "", err
	}
	return macro.ProcessComments(text), nil
}

// expandConfigCall replaces the block call at path with the block content,
// or removes it when its condition is false. A null block at the root
// drops the call and keeps its siblings.
func (s *Session) expandConfigCall(ctx context.Context, doc *yaml.Node, path keypath.Path) error {
	key := path.Last().Key
	parentPath := path.Parent()

	identifier, ok := macro.CallArgument(key, macro.BlockCall)
	if !ok || identifier == "" {
		return newError(CodeInvalidBlock, key, "malformed block call")
	}

	bodyNode, _ := keypath.Get(doc, path)
	body, err := s.decodeImportBody(identifier, bodyNode)
	if err != nil {
		return err
	}

	pass, err := s.EvaluateCondition(body.Condition)
	if err != nil {
		return err
	}
	if !pass {
		s.logger.Debug("removing block call, condition not met", "block", identifier, "path", path.String())
		if err := keypath.Unset(doc, path); err != nil {
			return wrapError(CodeInvalidSplice, identifier, err, "removing block call")
		}
		if parent, ok := keypath.Get(doc, parentPath); ok && len(parentPath) > 0 &&
			parent.Kind == yaml.MappingNode && len(parent.Content) == 0 {
			if err := keypath.Unset(doc, parentPath); err != nil {
				return wrapError(CodeInvalidSplice, identifier, err, "removing empty parent")
			}
		}
		return nil
	}

	text, err := s.expandBlock(ctx, identifier, body.Args)
	if err != nil {
		return err
	}
	content, err := parseNode(identifier, text)
	if err != nil {
		return err
	}

	s.logger.Debug("expanding block", "block", identifier, "path", path.String())

	if content.Kind == yaml.MappingNode {
		parent, _ := keypath.Get(doc, parentPath)
		if err := keypath.ReplaceKeyWithContent(parent, key, content); err != nil {
			return wrapError(CodeInvalidSplice, identifier, err, "splicing block")
		}
		return nil
	}

	if len(parentPath) == 0 && isNull(content) {
		if err := keypath.Unset(doc, path); err != nil {
			return wrapError(CodeInvalidSplice, identifier, err, "removing block call")
		}
		return nil
	}
	if len(parentPath) == 0 {
		return newError(CodeInvalidSplice, identifier, "a block at the root of cndi_config must be a mapping")
	}
	if err := keypath.Set(doc, parentPath, content); err != nil {
		return wrapError(CodeInvalidSplice, identifier, err, "splicing block")
	}
	return nil
}

// defaultDistribution fills an unset distribution from the provider.
func (s *Session) defaultDistribution(doc *yaml.Node) {
	if doc.Kind != yaml.MappingNode {
		return
	}
	provider := mappingValue(doc, "provider")
	if provider == nil || provider.Kind != yaml.ScalarNode {
		return
	}
	dist, ok := defaultDistributions[provider.Value]
	if !ok {
		return
	}

	current := mappingValue(doc, "distribution")
	if current != nil && !isNull(current) && current.Value != "" && current.Value != "undefined" {
		return
	}

	value := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: dist}
	if err := keypath.Set(doc, keypath.Path{keypath.Key("distribution")}, value); err != nil {
		s.logger.Warn("could not default distribution", "error", err)
		return
	}
	s.Responses.Set(DistributionResponse, dist)
	s.logger.Debug("defaulted distribution", "provider", provider.Value, "distribution", dist)
}
