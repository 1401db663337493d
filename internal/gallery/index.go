package gallery

import (
	"github.com/franz/dive-gallery/internal/dive"
	"github.com/franz/dive-gallery/internal/tree"
)

// Subject is one group of images in the subject tree
type Subject struct {
	Name   string   // display name, "copper rock fish"
	Path   []string // keys from the root
	Images []*dive.Image
}

// Lineage returns the path keys leaf first
func (s Subject) Lineage() []string {
	return Orientation.Lineage(s.Path)
}

// Title is the name without a trailing "various" or "adult" bucket, the
// form a subject is reported and looked up by
func (s Subject) Title() string {
	if n := len(s.Path); n > 1 && (s.Path[n-1] == tree.VariousKey || s.Path[n-1] == tree.AdultKey) {
		return Orientation.Name(s.Path[:n-1])
	}
	return s.Name
}

// Subjects lists every node holding images in walk order
func Subjects(root *tree.Node) []Subject {
	var out []Subject
	for _, path := range tree.Paths(root) {
		node := root
		for _, k := range path {
			node = node.Child(k)
		}
		out = append(out, Subject{
			Name:   Orientation.Name(path),
			Path:   path,
			Images: node.Data(),
		})
	}
	return out
}

// Index flattens the subject tree into common name -> images. Groups are
// keyed by the common name their lineage resolved to; groups that do not
// resolve are left out.
func Index(root *tree.Node, resolver Resolver) map[string][]*dive.Image {
	index := make(map[string][]*dive.Image)
	if resolver == nil {
		return index
	}

	for _, s := range Subjects(root) {
		common, _, ok := resolver.Scientific(s.Lineage())
		if !ok {
			continue
		}
		index[common] = append(index[common], s.Images...)
	}

	for _, images := range index {
		dive.SortImages(images)
	}
	return index
}
