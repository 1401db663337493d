// Package taxonomy holds the curated scientific classification: parsing it,
// mapping common names to scientific lineages and back, and projecting
// the image collection onto it.
package taxonomy

import (
	_ "embed" // For embedding data
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/franz/dive-gallery/internal/util"
	"go.yaml.in/yaml/v3"
)

//go:embed data/taxonomy.yml
var taxonomyData []byte

// NameSeparator joins several common names in one leaf
const NameSeparator = ","

// Unresolved is the species key for a subject identified only to genus
const Unresolved = "sp."

// Taxon is a node of the classification. Internal nodes map rank names to
// children; leaves carry one or more common names.
type Taxon struct {
	children map[string]*Taxon
	names    []string
}

// Keys returns child keys in sorted order
func (t *Taxon) Keys() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, 0, len(t.children))
	for k := range t.children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Child returns the child under key, or nil
func (t *Taxon) Child(key string) *Taxon {
	if t == nil {
		return nil
	}
	return t.children[key]
}

// IsLeaf reports whether t carries common names
func (t *Taxon) IsLeaf() bool {
	return t != nil && t.children == nil
}

// Names returns the common names of a leaf
func (t *Taxon) Names() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Len returns the number of children
func (t *Taxon) Len() int {
	if t == nil {
		return 0
	}
	return len(t.children)
}

// Walk visits every leaf with the keys leading to it, in key order
func (t *Taxon) Walk(fn func(lineage []string, leaf *Taxon)) {
	t.walk(nil, fn)
}

func (t *Taxon) walk(lineage []string, fn func([]string, *Taxon)) {
	if t == nil {
		return
	}
	if t.IsLeaf() {
		fn(lineage, t)
		return
	}
	for _, k := range t.Keys() {
		t.children[k].walk(append(lineage[:len(lineage):len(lineage)], k), fn)
	}
}

// Parse decodes a taxonomy document. Every mapping value must be either a
// nested mapping or a non-empty string of common names.
func Parse(data []byte) (*Taxon, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidConfig, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty taxonomy", util.ErrInvalidConfig)
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: taxonomy root must be a mapping", util.ErrStructure, root.Line)
	}
	return parseNode(root)
}

func parseNode(node *yaml.Node) (*Taxon, error) {
	switch node.Kind {
	case yaml.MappingNode:
		t := &Taxon{children: make(map[string]*Taxon, len(node.Content)/2)}
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := strings.TrimSpace(node.Content[i].Value)
			if key == "" {
				return nil, fmt.Errorf("%w: line %d: empty rank name", util.ErrStructure, node.Content[i].Line)
			}
			if _, dup := t.children[key]; dup {
				return nil, fmt.Errorf("%w: line %d: rank %q repeated", util.ErrDuplicate, node.Content[i].Line, key)
			}
			child, err := parseNode(node.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			t.children[key] = child
		}
		return t, nil

	case yaml.ScalarNode:
		var names []string
		for _, name := range strings.Split(node.Value, NameSeparator) {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("%w: line %d: leaf has no common name", util.ErrStructure, node.Line)
		}
		return &Taxon{names: names}, nil

	default:
		return nil, fmt.Errorf("%w: line %d: expected a mapping or a list of names", util.ErrStructure, node.Line)
	}
}

// LoadTree reads a taxonomy file, or the embedded default when path is empty
func LoadTree(path string) (*Taxon, error) {
	data := taxonomyData
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read taxonomy file %s: %w", path, err)
		}
	}

	t, err := Parse(data)
	if err != nil {
		if path == "" {
			path = "embedded taxonomy"
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Compress collapses single-child chains into space-joined keys until
// nothing changes: A/B/c with no siblings becomes "A B c".
func (t *Taxon) Compress() *Taxon {
	if t.IsLeaf() {
		return t
	}

	out := &Taxon{children: make(map[string]*Taxon, len(t.children))}
	for _, k := range t.Keys() {
		key, child := k, t.children[k].Compress()
		for child.Len() == 1 {
			only := child.Keys()[0]
			key = key + " " + only
			child = child.children[only]
		}
		out.children[key] = child
	}
	return out
}

// ExactOnly returns a copy without "sp." subtrees. Ranks left empty are
// removed as well.
func (t *Taxon) ExactOnly() *Taxon {
	out, _ := t.exactOnly()
	if out == nil {
		return &Taxon{children: map[string]*Taxon{}}
	}
	return out
}

func (t *Taxon) exactOnly() (*Taxon, bool) {
	if t.IsLeaf() {
		return t, true
	}
	out := &Taxon{children: make(map[string]*Taxon)}
	for k, c := range t.children {
		if k == Unresolved {
			continue
		}
		if kept, ok := c.exactOnly(); ok {
			out.children[k] = kept
		}
	}
	return out, len(out.children) > 0
}

// Binomials lists "Genus species" pairs: a parent key followed by a
// lowercase child key other than "sp."
func (t *Taxon) Binomials() []string {
	seen := make(map[string]bool)
	var walk func(*Taxon)
	walk = func(n *Taxon) {
		for _, k := range n.Keys() {
			c := n.children[k]
			for _, ck := range c.Keys() {
				if ck != Unresolved && startsLower(ck) {
					seen[k+" "+ck] = true
				}
			}
			walk(c)
		}
	}
	walk(t)
	return sortedSet(seen)
}

// LatinWords lists every distinct key in the tree other than "sp."
func (t *Taxon) LatinWords() []string {
	seen := make(map[string]bool)
	var walk func(*Taxon)
	walk = func(n *Taxon) {
		for k, c := range n.children {
			if k != Unresolved {
				for _, word := range strings.Fields(k) {
					seen[word] = true
				}
			}
			walk(c)
		}
	}
	walk(t)
	return sortedSet(seen)
}

// Verify checks that every leaf key ends in a lowercase word, which
// projecting the compressed tree relies on
func (t *Taxon) Verify() error {
	var err error
	t.Walk(func(lineage []string, _ *Taxon) {
		if err != nil || len(lineage) == 0 {
			return
		}
		fields := strings.Fields(lineage[len(lineage)-1])
		if !startsLower(fields[len(fields)-1]) {
			err = fmt.Errorf("%w: leaf key %q under %s must be a lowercase species or %q",
				util.ErrStructure, lineage[len(lineage)-1], strings.Join(lineage[:len(lineage)-1], " "), Unresolved)
		}
	})
	return err
}

func startsLower(s string) bool {
	for _, r := range s {
		return unicode.IsLower(r)
	}
	return false
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
