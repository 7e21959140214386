// Package keypath locates and rewrites values inside yaml.v3 node trees by
// key path. Macro call sites in templates appear as mapping keys at unknown
// depth, so the search is a bounded depth-first walk in document order.
package keypath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxDepth bounds every walk. YAML-parsed input has no cycles once aliases
// are ignored, but templates are untrusted.
const MaxDepth = 512

var (
	// ErrMaxDepth is returned when a walk descends past MaxDepth.
	ErrMaxDepth = errors.New("maximum tree depth exceeded")

	// ErrNotFound is returned when a path does not address a node.
	ErrNotFound = errors.New("path not found")

	// ErrNotContainer is returned when a path segment does not match the
	// node kind it is applied to.
	ErrNotContainer = errors.New("path segment does not match node kind")
)

// Segment is one step of a Path: a mapping key or a sequence index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns a mapping key segment.
func Key(k string) Segment { return Segment{Key: k} }

// Index returns a sequence index segment.
func Index(i int) Segment { return Segment{Index: i, IsIndex: true} }

func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Key
}

// Path addresses a node from the root of a tree.
type Path []Segment

// String renders the path as `a.b[0].c`.
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if !s.IsIndex && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// Parent returns the path without its last segment.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// Last returns the final segment. It panics on an empty path.
func (p Path) Last() Segment {
	return p[len(p)-1]
}

// root unwraps a document node.
func root(n *yaml.Node) *yaml.Node {
	if n != nil && n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil
		}
		return n.Content[0]
	}
	return n
}

// FindPathToKey returns the path to the first mapping key equal to key, in
// document order. The path is empty when no such key exists.
func FindPathToKey(tree *yaml.Node, key string) (Path, error) {
	return FindPathToKeyFunc(tree, func(k string) bool { return k == key })
}

// FindPathToKeyFunc returns the path to the first mapping key accepted by
// match, in document order. The path is empty when no key matches.
func FindPathToKeyFunc(tree *yaml.Node, match func(key string) bool) (Path, error) {
	path, found, err := find(root(tree), match, nil, 0)
	if err != nil || !found {
		return nil, err
	}
	return path, nil
}

func find(n *yaml.Node, match func(string) bool, prefix Path, depth int) (Path, bool, error) {
	if n == nil {
		return nil, false, nil
	}
	if depth > MaxDepth {
		return nil, false, fmt.Errorf("%w at %s", ErrMaxDepth, prefix)
	}

	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i].Value
			p := appendSegment(prefix, Key(k))
			if match(k) {
				return p, true, nil
			}
			if got, ok, err := find(n.Content[i+1], match, p, depth+1); err != nil || ok {
				return got, ok, err
			}
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			p := appendSegment(prefix, Index(i))
			if got, ok, err := find(item, match, p, depth+1); err != nil || ok {
				return got, ok, err
			}
		}
	}
	return nil, false, nil
}

func appendSegment(p Path, s Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, s)
}

// Get returns the node at path. An empty path addresses the root.
func Get(tree *yaml.Node, path Path) (*yaml.Node, bool) {
	n := root(tree)
	for _, s := range path {
		next, _ := child(n, s)
		if next == nil {
			return nil, false
		}
		n = next
	}
	return n, n != nil
}

// child returns the value node for s under n and its position in n.Content.
func child(n *yaml.Node, s Segment) (*yaml.Node, int) {
	if n == nil {
		return nil, -1
	}
	if s.IsIndex {
		if n.Kind != yaml.SequenceNode || s.Index < 0 || s.Index >= len(n.Content) {
			return nil, -1
		}
		return n.Content[s.Index], s.Index
	}
	if n.Kind != yaml.MappingNode {
		return nil, -1
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == s.Key {
			return n.Content[i+1], i + 1
		}
	}
	return nil, -1
}

// Set stores value at path, creating intermediate mappings for missing
// key segments. An empty path replaces the root node in place.
func Set(tree *yaml.Node, path Path, value *yaml.Node) error {
	n := root(tree)
	if n == nil {
		return fmt.Errorf("%w: empty tree", ErrNotFound)
	}
	if len(path) == 0 {
		*n = *value
		return nil
	}

	for i, s := range path {
		last := i == len(path)-1
		next, pos := child(n, s)

		if next == nil {
			if s.IsIndex {
				return fmt.Errorf("%w: %s", ErrNotFound, path[:i+1])
			}
			if n.Kind != yaml.MappingNode {
				return fmt.Errorf("%w: %s is not a mapping", ErrNotContainer, path[:i])
			}
			next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			if last {
				next = value
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s.Key}, next)
			n = next
			continue
		}

		if last {
			n.Content[pos] = value
			return nil
		}
		n = next
	}
	return nil
}

// Unset removes the node at path from its parent. Removing a missing key
// is a no-op; an out of range index is an error.
func Unset(tree *yaml.Node, path Path) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: cannot unset the root", ErrNotFound)
	}
	parent, ok := Get(tree, path.Parent())
	if !ok {
		return nil
	}

	s := path.Last()
	if s.IsIndex {
		if parent.Kind != yaml.SequenceNode {
			return fmt.Errorf("%w: %s is not a sequence", ErrNotContainer, path.Parent())
		}
		if s.Index < 0 || s.Index >= len(parent.Content) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		parent.Content = append(parent.Content[:s.Index], parent.Content[s.Index+1:]...)
		return nil
	}

	if parent.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: %s is not a mapping", ErrNotContainer, path.Parent())
	}
	for i := 0; i+1 < len(parent.Content); i += 2 {
		if parent.Content[i].Value == s.Key {
			parent.Content = append(parent.Content[:i], parent.Content[i+2:]...)
			return nil
		}
	}
	return nil
}

// ReplaceKeyWithContent replaces the pair for key in mapping with the pairs
// of content, which must itself be a mapping. Keys of content that already
// exist elsewhere in mapping overwrite those values where they stand.
func ReplaceKeyWithContent(mapping *yaml.Node, key string, content *yaml.Node) error {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: target is not a mapping", ErrNotContainer)
	}
	content = root(content)
	if content == nil || content.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: content is not a mapping", ErrNotContainer)
	}

	at := -1
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			at = i
			break
		}
	}
	if at < 0 {
		return fmt.Errorf("%w: key %q", ErrNotFound, key)
	}

	rest := make([]*yaml.Node, 0, len(mapping.Content)+len(content.Content))
	rest = append(rest, mapping.Content[:at]...)
	tail := mapping.Content[at+2:]

	var inserted []*yaml.Node
	for i := 0; i+1 < len(content.Content); i += 2 {
		k, v := content.Content[i], content.Content[i+1]
		if replaceValue(rest, k.Value, v) || replaceValue(tail, k.Value, v) {
			continue
		}
		inserted = append(inserted, k, v)
	}

	rest = append(rest, inserted...)
	rest = append(rest, tail...)
	mapping.Content = rest
	return nil
}

func replaceValue(pairs []*yaml.Node, key string, value *yaml.Node) bool {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i].Value == key {
			pairs[i+1] = value
			return true
		}
	}
	return false
}
