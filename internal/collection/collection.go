// Package collection assembles every derived structure of the photo
// collection once per run and answers the queries a site generator asks.
package collection

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/franz/dive-gallery/internal/config"
	"github.com/franz/dive-gallery/internal/dive"
	"github.com/franz/dive-gallery/internal/gallery"
	"github.com/franz/dive-gallery/internal/names"
	"github.com/franz/dive-gallery/internal/sites"
	"github.com/franz/dive-gallery/internal/taxonomy"
	"github.com/franz/dive-gallery/internal/tree"
)

// Rules bundles the static configuration with everything prepared from it
type Rules struct {
	Config     *config.Static
	Normalizer *names.Normalizer
	Taxonomy   *taxonomy.Store
	Locator    *sites.Locator
}

// LoadRules reads the static configuration and taxonomy. Empty paths
// select the embedded defaults.
func LoadRules(staticPath, taxonomyPath string) (*Rules, error) {
	cfg, err := config.Load(staticPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	normalizer := names.New(cfg)
	store, err := taxonomy.Load(taxonomyPath, cfg, normalizer)
	if err != nil {
		return nil, err
	}

	return NewRules(cfg, normalizer, store)
}

// NewRules prepares rules from already loaded parts
func NewRules(cfg *config.Static, normalizer *names.Normalizer, store *taxonomy.Store) (*Rules, error) {
	locator, err := sites.NewLocator(cfg)
	if err != nil {
		return nil, err
	}
	return &Rules{
		Config:     cfg,
		Normalizer: normalizer,
		Taxonomy:   store,
		Locator:    locator,
	}, nil
}

// Collection holds the three trees built from one set of image records
type Collection struct {
	rules *Rules

	Input    []*dive.Image
	Gallery  *gallery.Result
	Taxonomy *tree.Node
	Sites    *sites.Result
	BuiltAt  time.Time
	Duration time.Duration

	index      map[string][]*dive.Image
	yearRanges map[string]string
	subjects   []gallery.Subject
	byKey      map[string]*dive.Image
}

// Build runs the gallery, taxonomy and sites builders over images
func Build(rules *Rules, images []*dive.Image) (*Collection, error) {
	start := time.Now()

	g := gallery.New(rules.Config, rules.Normalizer, rules.Taxonomy).Build(images)
	index := gallery.Index(g.Tree, rules.Taxonomy)

	projected, err := rules.Taxonomy.Project(index)
	if err != nil {
		return nil, fmt.Errorf("failed to project taxonomy: %w", err)
	}

	located := sites.NewBuilder(rules.Config, rules.Locator).Build(g.Images)
	included := located.Tree.Images()

	byKey := make(map[string]*dive.Image, len(g.Images))
	for _, img := range g.Images {
		if _, ok := byKey[img.Key()]; !ok {
			byKey[img.Key()] = img
		}
	}

	return &Collection{
		rules:      rules,
		Input:      images,
		Gallery:    g,
		Taxonomy:   projected,
		Sites:      located,
		BuiltAt:    start,
		Duration:   time.Since(start),
		index:      index,
		yearRanges: sites.YearRanges(included, rules.Locator),
		subjects:   gallery.Subjects(g.Tree),
		byKey:      byKey,
	}, nil
}

// Rules returns the rules the collection was built with
func (c *Collection) Rules() *Rules {
	return c.rules
}

// Subjects lists the image groups of the subject tree in walk order
func (c *Collection) Subjects() []gallery.Subject {
	return c.subjects
}

// Image returns the record with the given "dive:sequence" key
func (c *Collection) Image(key string) (*dive.Image, bool) {
	img, ok := c.byKey[key]
	return img, ok
}

// Scientific returns the scientific lineage of a raw or normalized name
func (c *Collection) Scientific(name string) (string, bool) {
	_, scientific, ok := c.rules.Taxonomy.Lookup(c.rules.Normalizer.Normalize(name))
	return scientific, ok
}

// Common returns the preferred common name of a scientific lineage
func (c *Collection) Common(scientific string) (string, bool) {
	return c.rules.Taxonomy.ToCommon(scientific)
}

// Site returns the region and subregion of a dive's site
func (c *Collection) Site(d dive.Dive) (sites.Context, bool) {
	return c.rules.Locator.Resolve(d.Site)
}

// Index returns a copy of the common name -> images index
func (c *Collection) Index() map[string][]*dive.Image {
	out := make(map[string][]*dive.Image, len(c.index))
	for name, images := range c.index {
		out[name] = append([]*dive.Image(nil), images...)
	}
	return out
}

// YearRanges returns a copy of the location path -> year range map
func (c *Collection) YearRanges() map[string]string {
	out := make(map[string]string, len(c.yearRanges))
	for path, years := range c.yearRanges {
		out[path] = years
	}
	return out
}

// YearRange returns the formatted years of the dives below a region,
// subregion or site path
func (c *Collection) YearRange(path ...string) string {
	return c.yearRanges[strings.Join(path, "/")]
}

// Species counts resolved common names whose lineage ends in a species
func (c *Collection) Species() int {
	n := 0
	for common := range c.index {
		scientific, ok := c.rules.Taxonomy.ToScientific(common)
		if ok && gallery.CompleteSpecies(scientific) {
			n++
		}
	}
	return n
}

// Pinned returns the image shown for a subject: the configured pin when it
// exists in the collection, otherwise the newest image of the subject
func (c *Collection) Pinned(subject string) (*dive.Image, bool) {
	subject = c.rules.Normalizer.Normalize(subject)
	for name, key := range c.rules.Config.Pinned {
		if c.rules.Normalizer.Normalize(name) != subject {
			continue
		}
		if img, ok := c.byKey[key]; ok {
			return img, true
		}
	}

	var newest *dive.Image
	for _, s := range c.subjects {
		if s.Title() != subject || len(s.Images) == 0 {
			continue
		}
		// images are ordered newest dive first
		if first := s.Images[0]; newest == nil || dive.Less(first, newest) {
			newest = first
		}
	}
	return newest, newest != nil
}

// UnknownPins lists pinned subjects whose image key is not in the
// collection, sorted
func (c *Collection) UnknownPins() []string {
	var out []string
	for subject, key := range c.rules.Config.Pinned {
		if _, ok := c.byKey[key]; !ok {
			out = append(out, subject)
		}
	}
	sort.Strings(out)
	return out
}
