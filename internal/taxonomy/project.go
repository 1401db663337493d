package taxonomy

import (
	"fmt"
	"strings"

	"github.com/franz/dive-gallery/internal/dive"
	"github.com/franz/dive-gallery/internal/names"
	"github.com/franz/dive-gallery/internal/tree"
	"github.com/franz/dive-gallery/internal/util"
)

// Orientation of the taxonomy tree: ranks read root first
const Orientation = tree.LeftToRight

// Project fills the compressed taxonomy with images. index maps a common
// name to its images; leaves whose names have no images are dropped, as
// are ranks left empty.
func (s *Store) Project(index map[string][]*dive.Image) (*tree.Node, error) {
	root, err := project(nil, s.compressed, index)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return tree.Branch(nil), nil
	}
	return root, nil
}

func project(lineage []string, t *Taxon, index map[string][]*dive.Image) (*tree.Node, error) {
	if t.IsLeaf() {
		if len(lineage) > 0 {
			key := lineage[len(lineage)-1]
			if !startsLower(key[strings.LastIndexByte(key, ' ')+1:]) {
				return nil, fmt.Errorf("%w: leaf key %q must end in a lowercase species or %q",
					util.ErrStructure, key, Unresolved)
			}
		}

		var images []*dive.Image
		for _, name := range t.names {
			images = append(images, index[names.Lowercase(name)]...)
		}
		if len(images) == 0 {
			return nil, nil
		}
		return tree.Leaf(images...), nil
	}

	children := make(map[string]*tree.Node, t.Len())
	for _, k := range t.Keys() {
		child, err := project(append(lineage[:len(lineage):len(lineage)], k), t.children[k], index)
		if err != nil {
			return nil, err
		}
		if child != nil {
			children[k] = child
		}
	}
	if len(children) == 0 {
		return nil, nil
	}
	return tree.Branch(children), nil
}
