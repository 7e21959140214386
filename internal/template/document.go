package template

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/polyseam/cndi/internal/template/macro"
)

// Prompt types understood by the prompt pipeline.
const (
	PromptTypeInput    = "Input"
	PromptTypeSecret   = "Secret"
	PromptTypeConfirm  = "Confirm"
	PromptTypeToggle   = "Toggle"
	PromptTypeNumber   = "Number"
	PromptTypeSelect   = "Select"
	PromptTypeList     = "List"
	PromptTypeCheckbox = "Checkbox"
	PromptTypeText     = "Text"
	PromptTypeEditor   = "Editor"
	PromptTypeFile     = "File"
)

// Output sections of a template.
const (
	OutputConfig     = "cndi_config"
	OutputReadme     = "readme"
	OutputEnv        = "env"
	OutputExtraFiles = "extra_files"
)

// Rendered artifact names.
const (
	FileConfig = "cndi_config.yaml"
	FileReadme = "README.md"
	FileEnv    = ".env"
)

// Document is a parsed template source.
type Document struct {
	ID      string
	Blocks  []Block
	Prompts []PromptSpec
	Outputs *yaml.Node
}

// Output returns the outputs section named key, or nil.
func (d *Document) Output(key string) *yaml.Node {
	return mappingValue(d.Outputs, key)
}

// Block is a named reusable fragment. A nil Content means the block maps to
// null, which is a valid resolution.
type Block struct {
	Name    string
	Content *yaml.Node
}

// PromptKind tells literal prompts from block imports.
type PromptKind int

const (
	PromptLiteral PromptKind = iota
	PromptImport
)

func (k PromptKind) String() string {
	if k == PromptImport {
		return "import"
	}
	return "literal"
}

// PromptSpec is one entry of a prompts sequence.
type PromptSpec struct {
	Kind PromptKind

	// Name is the response name of a literal prompt.
	Name string

	// Node is the raw mapping of a literal prompt. It is decoded only after
	// macro literalization so earlier answers can shape later prompts.
	Node *yaml.Node

	// Statement is the `$cndi.get_block(...)` key of an import.
	Statement string

	// Body holds the optional args and condition of an import.
	Body *yaml.Node
}

// Literal decodes a literal prompt without literalizing it.
func (p PromptSpec) Literal() (*LiteralPrompt, error) {
	if p.Kind != PromptLiteral {
		return nil, fmt.Errorf("prompt spec is an %s", p.Kind)
	}
	var lp LiteralPrompt
	if err := p.Node.Decode(&lp); err != nil {
		return nil, err
	}
	return &lp, nil
}

// LiteralPrompt is a decoded literal prompt.
type LiteralPrompt struct {
	Type       string         `yaml:"type"`
	Name       string         `yaml:"name"`
	Message    string         `yaml:"message"`
	Default    any            `yaml:"default"`
	Options    []any          `yaml:"options"`
	Validators []ValidatorRef `yaml:"validators"`
	Condition  Condition      `yaml:"condition"`
	Required   bool           `yaml:"required"`
}

// ValidatorRef names a validator and its optional argument. In YAML it is
// either a bare name or a single-key mapping `{name: arg}`.
type ValidatorRef struct {
	Name string
	Arg  any
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *ValidatorRef) UnmarshalYAML(n *yaml.Node) error {
	switch {
	case n.Kind == yaml.ScalarNode:
		v.Name = n.Value
		return nil
	case n.Kind == yaml.MappingNode && len(n.Content) == 2:
		v.Name = n.Content[0].Value
		return n.Content[1].Decode(&v.Arg)
	default:
		return fmt.Errorf("line %d: validator must be a name or a single-key mapping", n.Line)
	}
}

// Condition is `[input, comparator, standard]`. A nil Condition is true.
type Condition []any

// importBody is the value under a `$cndi.get_block(...)` key.
type importBody struct {
	Args      map[string]any `yaml:"args"`
	Condition Condition      `yaml:"condition"`
}

// ParseDocument parses template source text. The source must hold exactly
// one YAML document whose root mapping has an outputs mapping.
func ParseDocument(id, text string) (*Document, error) {
	text = macro.NormalizeBraces(text)

	if documentSeparator.MatchString(text) {
		return nil, newError(CodeMultiDocument, id, "template contains a --- document separator, expected a single document")
	}

	docs, err := decodeDocuments(text)
	if err != nil {
		return nil, wrapError(CodeParseFailed, id, err, "template is not valid YAML")
	}
	if len(docs) > 1 {
		return nil, newError(CodeMultiDocument, id, "template contains %d YAML documents, expected one", len(docs))
	}
	if len(docs) == 0 || len(docs[0].Content) == 0 || docs[0].Content[0].Kind != yaml.MappingNode {
		return nil, newError(CodeNotMapping, id, "template root must be a mapping")
	}
	root := docs[0].Content[0]

	doc := &Document{ID: id}

	outputs := mappingValue(root, "outputs")
	switch {
	case isNull(outputs):
		return nil, newError(CodeMissingOutputs, id, "template has no outputs")
	case outputs.Kind != yaml.MappingNode:
		return nil, newError(CodeNotMapping, id, "outputs must be a mapping")
	}
	doc.Outputs = outputs

	if prompts := mappingValue(root, "prompts"); !isNull(prompts) {
		if prompts.Kind != yaml.SequenceNode {
			return nil, newError(CodePromptsNotSequence, id, "prompts must be a sequence")
		}
		specs, err := parsePromptSpecs(id, prompts)
		if err != nil {
			return nil, err
		}
		doc.Prompts = specs
	}

	if blocks := mappingValue(root, "blocks"); !isNull(blocks) {
		if blocks.Kind != yaml.SequenceNode {
			return nil, newError(CodeBlocksNotSequence, id, "blocks must be a sequence")
		}
		for i, b := range blocks.Content {
			name := mappingValue(b, "name")
			if b.Kind != yaml.MappingNode || name == nil || name.Kind != yaml.ScalarNode || name.Value == "" {
				return nil, newError(CodeInvalidBlock, id, "block %d must be a mapping with a name", i)
			}
			content := mappingValue(b, "content")
			if isNull(content) {
				content = nil
			}
			doc.Blocks = append(doc.Blocks, Block{Name: name.Value, Content: content})
		}
	}

	return doc, nil
}

// parsePromptSpecs classifies each entry of a prompts sequence.
func parsePromptSpecs(id string, seq *yaml.Node) ([]PromptSpec, error) {
	specs := make([]PromptSpec, 0, len(seq.Content))
	for i, item := range seq.Content {
		if item.Kind != yaml.MappingNode {
			return nil, newError(CodeInvalidPrompt, id, "prompt %d must be a mapping", i)
		}

		if len(item.Content) == 2 {
			key := item.Content[0].Value
			if key != "name" && macro.IsCall(key, macro.BlockCall) {
				specs = append(specs, PromptSpec{
					Kind:      PromptImport,
					Statement: key,
					Body:      item.Content[1],
				})
				continue
			}
		}

		name := mappingValue(item, "name")
		if name == nil || name.Kind != yaml.ScalarNode || strings.TrimSpace(name.Value) == "" {
			return nil, newError(CodeInvalidPrompt, id, "prompt %d has no name", i)
		}
		specs = append(specs, PromptSpec{Kind: PromptLiteral, Name: name.Value, Node: item})
	}
	return specs, nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

// encodeNode renders a node as YAML text with two-space indentation.
func encodeNode(id string, n *yaml.Node) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return "", wrapError(CodeEncodeFailed, id, err, "encoding YAML")
	}
	if err := enc.Close(); err != nil {
		return "", wrapError(CodeEncodeFailed, id, err, "encoding YAML")
	}
	return buf.String(), nil
}

// documentSeparator matches a --- marker starting a new YAML document.
var documentSeparator = regexp.MustCompile(`(?m)^---(?:[ \t]|$)`)

// decodeDocuments decodes every document in text.
func decodeDocuments(text string) ([]*yaml.Node, error) {
	dec := yaml.NewDecoder(strings.NewReader(text))
	var docs []*yaml.Node
	for {
		var n yaml.Node
		err := dec.Decode(&n)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, &n)
	}
}

// parseNode parses text as a single YAML value. Empty text is null, more
// than one document is an error.
func parseNode(id, text string) (*yaml.Node, error) {
	docs, err := decodeDocuments(text)
	if err != nil {
		return nil, wrapError(CodeParseFailed, id, err, "content is not valid YAML")
	}
	switch {
	case len(docs) > 1:
		return nil, newError(CodeMultiDocument, id, "content contains %d YAML documents, expected one", len(docs))
	case len(docs) == 0 || len(docs[0].Content) == 0:
		return nullNode(), nil
	}
	return docs[0].Content[0], nil
}

func nullNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// unquote drops explicit quoting from scalars so the encoder quotes only
// where YAML requires it.
func unquote(n *yaml.Node) {
	if n == nil {
		return
	}
	if n.Kind == yaml.ScalarNode {
		n.Style &^= yaml.SingleQuotedStyle | yaml.DoubleQuotedStyle
		return
	}
	for _, c := range n.Content {
		unquote(c)
	}
}
