// Package tree holds the nested grouping structure shared by the gallery,
// taxonomy and sites hierarchies. A Node carries child nodes keyed by
// token, a list of images, or both. Nodes are immutable once built; every
// pass returns a new tree and leaves its input untouched.
package tree

import (
	"encoding/json"
	"sort"

	"github.com/franz/dive-gallery/internal/dive"
)

// DataKey is the reserved key under which a node's images are serialized
const DataKey = "data"

// Node is one level of a grouping tree
type Node struct {
	children map[string]*Node
	data     []*dive.Image
}

// New builds a node from children and images. Both inputs are copied and
// the images sorted newest dive first. Nil and empty children are dropped.
func New(children map[string]*Node, images []*dive.Image) *Node {
	n := &Node{data: sortedCopy(images)}
	for k, c := range children {
		if c.Empty() {
			continue
		}
		if n.children == nil {
			n.children = make(map[string]*Node, len(children))
		}
		n.children[k] = c
	}
	return n
}

// Leaf builds a node holding only images
func Leaf(images ...*dive.Image) *Node {
	return New(nil, images)
}

// Branch builds a node holding only children
func Branch(children map[string]*Node) *Node {
	return New(children, nil)
}

// Keys returns child keys in sorted order
func (n *Node) Keys() []string {
	if n == nil {
		return nil
	}
	keys := make([]string, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Child returns the child under key, or nil
func (n *Node) Child(key string) *Node {
	if n == nil {
		return nil
	}
	return n.children[key]
}

// Data returns a copy of the node's own images
func (n *Node) Data() []*dive.Image {
	if n == nil || len(n.data) == 0 {
		return nil
	}
	out := make([]*dive.Image, len(n.data))
	copy(out, n.data)
	return out
}

func (n *Node) HasData() bool {
	return n != nil && len(n.data) > 0
}

func (n *Node) HasChildren() bool {
	return n != nil && len(n.children) > 0
}

// Len returns the number of children
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	return len(n.children)
}

// Empty reports whether the node holds neither images nor children
func (n *Node) Empty() bool {
	return !n.HasData() && !n.HasChildren()
}

// Count returns the number of images reachable from n
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := len(n.data)
	for _, c := range n.children {
		total += c.Count()
	}
	return total
}

// Images returns every reachable image, own data first, then children in
// key order
func (n *Node) Images() []*dive.Image {
	var out []*dive.Image
	_ = n.Walk(func(_ []string, node *Node) error {
		out = append(out, node.data...)
		return nil
	})
	return out
}

// WalkFunc is called for each node with the keys leading to it
type WalkFunc func(path []string, n *Node) error

// Walk visits n and its descendants depth first in key order. The path
// slice is only valid for the duration of the call. A non-nil error from
// fn stops the walk.
func (n *Node) Walk(fn WalkFunc) error {
	return n.walk(nil, fn)
}

func (n *Node) walk(path []string, fn WalkFunc) error {
	if n == nil {
		return nil
	}
	if err := fn(path, n); err != nil {
		return err
	}
	for _, k := range n.Keys() {
		if err := n.children[k].walk(append(path, k), fn); err != nil {
			return err
		}
	}
	return nil
}

type imageJSON struct {
	Key     string `json:"key"`
	Subject string `json:"subject"`
	Kind    string `json:"kind"`
}

// MarshalJSON renders the node as a mapping of child keys, with the
// node's images under "data"
func (n *Node) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, n.Len()+1)
	if n.HasData() {
		images := make([]imageJSON, len(n.data))
		for i, img := range n.data {
			images[i] = imageJSON{Key: img.Key(), Subject: img.RawSubject, Kind: img.Kind.String()}
		}
		out[DataKey] = images
	}
	if n != nil {
		for k, c := range n.children {
			out[k] = c
		}
	}
	return json.Marshal(out)
}

// Equal reports whether two trees have the same shape and hold the same
// image records
func Equal(a, b *Node) bool {
	if a.Len() != b.Len() || len(a.Data()) != len(b.Data()) {
		return false
	}
	ad, bd := a.Data(), b.Data()
	for i := range ad {
		if ad[i] != bd[i] {
			return false
		}
	}
	for _, k := range a.Keys() {
		bc := b.Child(k)
		if bc == nil || !Equal(a.Child(k), bc) {
			return false
		}
	}
	return true
}

// Merge combines two trees: children are merged key by key and images
// concatenated
func Merge(a, b *Node) *Node {
	if a.Empty() {
		return b
	}
	if b.Empty() {
		return a
	}

	children := make(map[string]*Node, a.Len()+b.Len())
	for k, c := range a.children {
		children[k] = c
	}
	for k, c := range b.children {
		children[k] = Merge(children[k], c)
	}

	images := make([]*dive.Image, 0, len(a.data)+len(b.data))
	images = append(images, a.data...)
	images = append(images, b.data...)
	return New(children, images)
}

func sortedCopy(images []*dive.Image) []*dive.Image {
	if len(images) == 0 {
		return nil
	}
	out := make([]*dive.Image, len(images))
	copy(out, images)
	dive.SortImages(out)
	return out
}

// Builder accumulates images along key paths. It is not safe for
// concurrent use.
type Builder struct {
	root *Node
}

// NewBuilder returns an empty Builder
func NewBuilder() *Builder {
	return &Builder{root: &Node{}}
}

// Add appends images at the node reached by path, creating nodes as needed
func (b *Builder) Add(path []string, images ...*dive.Image) {
	if b.root == nil {
		b.root = &Node{}
	}
	n := b.root
	for _, key := range path {
		if n.children == nil {
			n.children = make(map[string]*Node)
		}
		c, ok := n.children[key]
		if !ok {
			c = &Node{}
			n.children[key] = c
		}
		n = c
	}
	n.data = append(n.data, images...)
}

// Build returns the accumulated tree and resets the builder
func (b *Builder) Build() *Node {
	root := b.root
	b.root = nil
	if root == nil {
		return &Node{}
	}
	return finalize(root)
}

// finalize sorts data lists and drops empty nodes
func finalize(n *Node) *Node {
	children := make(map[string]*Node, len(n.children))
	for k, c := range n.children {
		children[k] = finalize(c)
	}
	return New(children, n.data)
}
