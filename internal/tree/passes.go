package tree

import (
	"sort"
	"strings"
)

const (
	// VariousKey holds images that belong to no more specific sibling
	VariousKey = "various"
	// AdultKey replaces VariousKey when every other sibling is a life stage
	AdultKey = "adult"
)

// Orientation decides how keys along a path combine into a name
type Orientation int

const (
	// RightToLeft is used by the subject tree, whose paths store the last
	// word of a name first: fish/rock reads "rock fish"
	RightToLeft Orientation = iota
	// LeftToRight is used by the sites tree: Washington/Fort Ward
	LeftToRight
)

func (o Orientation) String() string {
	if o == LeftToRight {
		return "left-to-right"
	}
	return "right-to-left"
}

// Join merges a parent key with a child key into a single key
func (o Orientation) Join(parent, child string) string {
	if o == LeftToRight {
		return parent + " " + child
	}
	return child + " " + parent
}

// Lineage orders path keys leaf first for RightToLeft trees and root
// first for LeftToRight trees. The result is a new slice.
func (o Orientation) Lineage(path []string) []string {
	out := make([]string, len(path))
	if o == LeftToRight {
		copy(out, path)
		return out
	}
	for i, k := range path {
		out[len(path)-1-i] = k
	}
	return out
}

// Name joins the lineage of path into a display name
func (o Orientation) Name(path []string) string {
	return strings.Join(o.Lineage(path), " ")
}

// RewriteFunc receives a node whose children have already been rewritten
// and returns its replacement. Returning nil removes the node.
type RewriteFunc func(path []string, n *Node) *Node

// Rewrite rebuilds the tree bottom up, calling fn once per node after its
// children. Every pass in this package is expressed through it.
func Rewrite(n *Node, fn RewriteFunc) *Node {
	out := rewrite(nil, n, fn)
	if out == nil {
		return &Node{}
	}
	return out
}

func rewrite(path []string, n *Node, fn RewriteFunc) *Node {
	if n == nil {
		return nil
	}

	var children map[string]*Node
	if n.HasChildren() {
		children = make(map[string]*Node, len(n.children))
		for k, c := range n.children {
			childPath := append(path[:len(path):len(path)], k)
			if rc := rewrite(childPath, c, fn); !rc.Empty() {
				children[k] = rc
			}
		}
	}

	return fn(path, &Node{children: children, data: n.data})
}

// Compress collapses every child that has no images and exactly one child
// of its own into its parent under a joined key, repeating until nothing
// changes. A joined key that collides with an existing sibling is merged.
func Compress(n *Node, o Orientation) *Node {
	for {
		changed := false
		n = Rewrite(n, func(_ []string, node *Node) *Node {
			if !node.HasChildren() {
				return node
			}
			children := make(map[string]*Node, node.Len())
			for _, k := range node.Keys() {
				c := node.children[k]
				if c.HasData() || c.Len() != 1 {
					children[k] = Merge(children[k], c)
					continue
				}
				gk := c.Keys()[0]
				key := o.Join(k, gk)
				children[key] = Merge(children[key], c.children[gk])
				changed = true
			}
			return New(children, node.data)
		})
		if !changed {
			return n
		}
	}
}

// Prune removes top-level children holding threshold images or fewer,
// except those named in keep. It returns the new tree and the removed
// keys in sorted order.
func Prune(n *Node, threshold int, keep map[string]bool) (*Node, []string) {
	children := make(map[string]*Node, n.Len())
	var pruned []string
	for _, k := range n.Keys() {
		c := n.children[k]
		if c.Count() <= threshold && !keep[k] {
			pruned = append(pruned, k)
			continue
		}
		children[k] = c
	}
	return New(children, n.Data()), pruned
}

// DataToVarious moves the images of every node that also has children into
// a "various" child. When the only other children are life stages, the
// bucket is named "adult" instead.
func DataToVarious(n *Node, lifeStages map[string]bool) *Node {
	return Rewrite(n, func(path []string, node *Node) *Node {
		if len(path) == 0 || !node.HasData() || !node.HasChildren() {
			return node
		}

		children := make(map[string]*Node, node.Len()+1)
		for k, c := range node.children {
			children[k] = c
		}
		children[VariousKey] = Merge(children[VariousKey], Leaf(node.data...))

		if onlyLifeStages(children, lifeStages) {
			children[AdultKey] = Merge(children[AdultKey], children[VariousKey])
			delete(children, VariousKey)
		}
		return Branch(children)
	})
}

func onlyLifeStages(children map[string]*Node, lifeStages map[string]bool) bool {
	for k := range children {
		if k != VariousKey && !lifeStages[k] {
			return false
		}
	}
	return len(children) > 1
}

// SpeciesFunc returns the complete species a lineage resolves to, or ""
// when the lineage has no species-level scientific name
type SpeciesFunc func(lineage []string) string

// Unnest promotes a grandchild to a sibling of its parent when both name
// different complete species: coral/staghorn/fused becomes coral/staghorn
// and coral/"fused staghorn". The set of images is unchanged.
func Unnest(n *Node, o Orientation, species SpeciesFunc) *Node {
	return Rewrite(n, func(path []string, node *Node) *Node {
		if !node.HasChildren() {
			return node
		}

		children := make(map[string]*Node, node.Len())
		promoted := make(map[string]*Node)
		for _, k := range node.Keys() {
			c := node.children[k]
			if !c.HasData() || !c.HasChildren() {
				children[k] = Merge(children[k], c)
				continue
			}
			childPath := append(path[:len(path):len(path)], k)
			parentSpecies := species(o.Lineage(childPath))
			if parentSpecies == "" {
				children[k] = Merge(children[k], c)
				continue
			}

			kept := make(map[string]*Node, c.Len())
			for _, gk := range c.Keys() {
				g := c.children[gk]
				if g.HasData() {
					s := species(o.Lineage(append(childPath[:len(childPath):len(childPath)], gk)))
					if s != "" && s != parentSpecies {
						key := o.Join(k, gk)
						promoted[key] = Merge(promoted[key], g)
						continue
					}
				}
				kept[gk] = g
			}
			children[k] = Merge(children[k], New(kept, c.data))
		}

		if len(promoted) == 0 {
			return node
		}
		for k, p := range promoted {
			children[k] = Merge(children[k], p)
		}
		return New(children, node.data)
	})
}

// Paths returns every path in n that leads to a node with images, in walk
// order
func Paths(n *Node) [][]string {
	var out [][]string
	_ = n.Walk(func(path []string, node *Node) error {
		if node.HasData() {
			p := make([]string, len(path))
			copy(p, path)
			out = append(out, p)
		}
		return nil
	})
	return out
}

// TopCounts returns top-level keys with their image counts, largest first
func TopCounts(n *Node) []KeyCount {
	out := make([]KeyCount, 0, n.Len())
	for _, k := range n.Keys() {
		out = append(out, KeyCount{Key: k, Count: n.children[k].Count()})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// KeyCount pairs a key with an image count
type KeyCount struct {
	Key   string
	Count int
}
