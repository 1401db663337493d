package tree

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented outline of n: one line per key with its
// image count, and one line per image when showImages is set
func Fprint(w io.Writer, n *Node, showImages bool) error {
	return n.Walk(func(path []string, node *Node) error {
		depth := len(path)
		if depth > 0 {
			indent := strings.Repeat("  ", depth-1)
			if _, err := fmt.Fprintf(w, "%s%s (%d)\n", indent, path[depth-1], node.Count()); err != nil {
				return err
			}
		}
		if !showImages {
			return nil
		}
		indent := strings.Repeat("  ", depth)
		for _, img := range node.data {
			if _, err := fmt.Fprintf(w, "%s- %s\n", indent, img); err != nil {
				return err
			}
		}
		return nil
	})
}
