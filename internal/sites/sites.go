package sites

import (
	"github.com/franz/dive-gallery/internal/config"
	"github.com/franz/dive-gallery/internal/dive"
	"github.com/franz/dive-gallery/internal/tree"
	"github.com/franz/dive-gallery/internal/util"
)

// Orientation of the sites tree
const Orientation = tree.LeftToRight

// Builder groups images by location and date
type Builder struct {
	locator    *Locator
	keep       map[string]bool
	lifeStages map[string]bool
	threshold  int
}

// NewBuilder prepares a Builder from the static configuration
func NewBuilder(cfg *config.Static, locator *Locator) *Builder {
	return &Builder{
		locator:    locator,
		keep:       config.Set(cfg.PruneKeep),
		lifeStages: config.Set(cfg.LifeStages),
		threshold:  cfg.PruneThreshold,
	}
}

// Result is the outcome of a sites build
type Result struct {
	Tree         *tree.Node
	Pruned       []string
	PrunedImages int
	PrunedCounts map[string]int // images per pruned key
	Unknown      []string       // dive sites with no configured region, sorted
}

// Path returns region[/subregion], the site tokens and the dive date
func (b *Builder) Path(d dive.Dive) []string {
	ctx, _ := b.locator.Resolve(d.Site)
	path := ctx.Path()
	path = append(path, b.locator.Tokenize(d.Site)...)
	if d.Date != "" {
		path = append(path, d.Date)
	}
	return path
}

// Build routes every image to its location path, then compresses
// left to right, prunes and buckets the result
func (b *Builder) Build(images []*dive.Image) *Result {
	builder := tree.NewBuilder()
	unknown := make(map[string]bool)

	for _, img := range images {
		d := img.Dive()
		if _, ok := b.locator.Resolve(d.Site); !ok {
			unknown[d.Site] = true
		}
		builder.Add(b.Path(d), img)
	}

	root := tree.Compress(builder.Build(), Orientation)

	full := root
	root, pruned := tree.Prune(full, b.threshold, b.keep)
	prunedCounts := make(map[string]int, len(pruned))
	for _, k := range pruned {
		prunedCounts[k] = full.Child(k).Count()
	}
	prunedImages := full.Count() - root.Count()

	root = tree.DataToVarious(root, b.lifeStages)

	var sites []string
	for site := range unknown {
		sites = append(sites, site)
	}

	return &Result{
		Tree:         root,
		Pruned:       pruned,
		PrunedImages: prunedImages,
		PrunedCounts: prunedCounts,
		Unknown:      sortStrings(sites),
	}
}

// Link is the identifier of a dive's page: site and date, sanitized
func Link(d dive.Dive) string {
	return util.Sanitize(d.Site + "-" + d.Date)
}
