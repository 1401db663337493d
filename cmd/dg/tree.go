package main

import (
	"encoding/json"
	"fmt"

	"github.com/franz/dive-gallery/internal/collection"
	"github.com/franz/dive-gallery/internal/tree"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree gallery|taxonomy|sites",
	Short: "Print one of the collection trees",
	Long: `Scan the image root, build the collection and print one tree.

  gallery   images grouped by subject name, most general word first
  taxonomy  images placed under their scientific lineage
  sites     images grouped by region, site and date

The tree is printed as an indented outline with image counts, or as JSON
with --json. --list adds one line per image.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"gallery", "taxonomy", "sites"},
	RunE:      runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)

	// Tree-specific flags
	treeCmd.Flags().Bool("json", false, "Print the tree as JSON")
	treeCmd.Flags().BoolP("list", "l", false, "List images under each key")
}

func runTree(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	showImages, _ := cmd.Flags().GetBool("list")

	logger := openEventLogger()
	defer logger.Close()

	c, _, err := buildCollection(cmd.Context(), logger, nil)
	if err != nil {
		return err
	}

	root, err := selectTree(c, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		data, err := json.MarshalIndent(root, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode tree: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	return tree.Fprint(out, root, showImages)
}

// selectTree returns the named tree of the collection
func selectTree(c *collection.Collection, name string) (*tree.Node, error) {
	switch name {
	case "gallery":
		return c.Gallery.Tree, nil
	case "taxonomy":
		return c.Taxonomy, nil
	case "sites":
		return c.Sites.Tree, nil
	default:
		return nil, fmt.Errorf("unknown tree %q (expected gallery, taxonomy or sites)", name)
	}
}
