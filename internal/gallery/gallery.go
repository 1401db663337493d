// Package gallery builds the subject tree: every labeled image routed by
// its normalized common name, with the last word of the name at the top
// level ("rock fish" lives under fish/rock).
package gallery

import (
	"strings"
	"unicode"

	"github.com/franz/dive-gallery/internal/config"
	"github.com/franz/dive-gallery/internal/dive"
	"github.com/franz/dive-gallery/internal/names"
	"github.com/franz/dive-gallery/internal/tree"
)

// Orientation of the subject tree
const Orientation = tree.RightToLeft

// Resolver maps a subject-tree lineage, leaf first, to the common name it
// matched and that name's scientific lineage
type Resolver interface {
	Scientific(lineage []string) (common, scientific string, ok bool)
}

// Builder turns image records into the subject tree
type Builder struct {
	normalizer *names.Normalizer
	resolver   Resolver
	ignore     map[string]bool
	keep       map[string]bool
	lifeStages map[string]bool
	threshold  int
}

// New prepares a Builder. resolver may be nil, in which case no subtree
// is un-nested.
func New(cfg *config.Static, normalizer *names.Normalizer, resolver Resolver) *Builder {
	return &Builder{
		normalizer: normalizer,
		resolver:   resolver,
		ignore:     config.Set(cfg.Ignore),
		keep:       config.Set(cfg.PruneKeep),
		lifeStages: config.Set(cfg.LifeStages),
		threshold:  cfg.PruneThreshold,
	}
}

// Result is the outcome of a gallery build
type Result struct {
	Tree         *tree.Node
	Images       []*dive.Image // records after conjunction expansion
	Expanded     int           // records added by expansion
	Ignored      []*dive.Image // records dropped for an empty or ignored subject
	Pruned       []string      // top-level keys removed by pruning
	PrunedImages int
	PrunedCounts map[string]int // images per pruned key
}

// Build expands, routes, compresses, prunes, un-nests and buckets images.
// Tree.Count() always equals len(Images) - len(Ignored) - PrunedImages.
func (b *Builder) Build(images []*dive.Image) *Result {
	expanded, extra := names.ExpandImages(images)
	root, ignored := b.MakeTree(expanded)

	root = tree.Compress(root, Orientation)

	full := root
	root, pruned := tree.Prune(full, b.threshold, b.keep)
	prunedCounts := make(map[string]int, len(pruned))
	for _, k := range pruned {
		prunedCounts[k] = full.Child(k).Count()
	}
	prunedImages := full.Count() - root.Count()

	if b.resolver != nil {
		root = tree.Unnest(root, Orientation, b.species)
	}
	root = tree.DataToVarious(root, b.lifeStages)

	return &Result{
		Tree:         root,
		Images:       expanded,
		Expanded:     extra,
		Ignored:      ignored,
		Pruned:       pruned,
		PrunedImages: prunedImages,
		PrunedCounts: prunedCounts,
	}
}

// MakeTree routes each image along the reversed tokens of its normalized
// subject. Images whose subject is empty or contains an ignored token are
// returned separately.
func (b *Builder) MakeTree(images []*dive.Image) (*tree.Node, []*dive.Image) {
	builder := tree.NewBuilder()
	var ignored []*dive.Image

	for _, img := range images {
		subject := b.normalizer.Normalize(img.RawSubject)
		if subject == "" || names.ContainsAny(subject, b.ignore) {
			ignored = append(ignored, img)
			continue
		}
		builder.Add(Route(subject), img)
	}

	return builder.Build(), ignored
}

// Route returns the tree path for a normalized subject
func Route(subject string) []string {
	tokens := strings.Fields(subject)
	for i, j := 0, len(tokens)-1; i < j; i, j = i+1, j-1 {
		tokens[i], tokens[j] = tokens[j], tokens[i]
	}
	return tokens
}

func (b *Builder) species(lineage []string) string {
	_, scientific, ok := b.resolver.Scientific(lineage)
	if !ok || !CompleteSpecies(scientific) {
		return ""
	}
	return scientific
}

// CompleteSpecies reports whether a scientific lineage ends in a species
// epithet rather than a rank or "sp."
func CompleteSpecies(scientific string) bool {
	fields := strings.Fields(scientific)
	if len(fields) == 0 {
		return false
	}
	last := fields[len(fields)-1]
	if last == "sp." {
		return false
	}
	for _, r := range last {
		return unicode.IsLower(r)
	}
	return false
}
