// Package config loads the curated naming and location rules that drive
// tree building. The defaults ship embedded in the binary; a file on disk
// replaces them wholesale.
package config

import (
	_ "embed" // For embedding default configuration
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/franz/dive-gallery/internal/util"
	"go.yaml.in/yaml/v3"
)

//go:embed data/static.yml
var defaultStatic []byte

// Static holds the named sets and maps consumed by the naming pipeline
type Static struct {
	Ignore             []string            `yaml:"ignore"`
	Splits             []string            `yaml:"splits"`
	Qualifiers         []string            `yaml:"qualifiers"`
	Categories         map[string][]string `yaml:"categories"`
	SingularExceptions []string            `yaml:"singular-exceptions"`
	Locations          Locations           `yaml:"locations"`
	Pinned             map[string]string   `yaml:"pinned"`
	NoTaxonomyExact    []string            `yaml:"no-taxonomy-exact"`
	NoTaxonomyAny      []string            `yaml:"no-taxonomy-any"`
	ImpreciseOK        []string            `yaml:"imprecise-ok"`
	LifeStages         []string            `yaml:"life-stages"`
	PruneThreshold     int                 `yaml:"prune-threshold"`
	PruneKeep          []string            `yaml:"prune-keep"`
}

// Region is one entry of the locations hierarchy. A region lists its sites
// directly or groups them by subregion.
type Region struct {
	Sites      []string
	Subregions map[string][]string
}

// Locations maps region names to their sites
type Locations map[string]*Region

// UnmarshalYAML accepts either a sequence of sites or a mapping of
// subregion to sites.
func (r *Region) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		return value.Decode(&r.Sites)
	case yaml.MappingNode:
		return value.Decode(&r.Subregions)
	default:
		return fmt.Errorf("line %d: region must be a list of sites or a map of subregions", value.Line)
	}
}

// Default returns the embedded configuration
func Default() (*Static, error) {
	return Parse(defaultStatic)
}

// Load reads configuration from path, or the embedded defaults when path is empty
func Load(path string) (*Static, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read static config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a static configuration document
func Parse(data []byte) (*Static, error) {
	var cfg Static
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidConfig, err)
	}

	if cfg.PruneThreshold < 0 {
		return nil, fmt.Errorf("%w: prune-threshold must not be negative", util.ErrInvalidConfig)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks invariants that would otherwise silently misroute images:
// every site belongs to exactly one region.
func (c *Static) Validate() error {
	seen := make(map[string]string)
	for _, site := range c.AllSites() {
		if prev, ok := seen[site.Name]; ok {
			return fmt.Errorf("%w: site %q listed under both %s and %s",
				util.ErrDuplicate, site.Name, prev, site.Path())
		}
		seen[site.Name] = site.Path()
	}
	return nil
}

// Site is a flattened entry of the locations hierarchy
type Site struct {
	Name      string
	Region    string
	Subregion string
}

// Path returns "Region" or "Region/Subregion"
func (s Site) Path() string {
	if s.Subregion == "" {
		return s.Region
	}
	return s.Region + "/" + s.Subregion
}

// AllSites flattens the locations hierarchy in sorted region order
func (c *Static) AllSites() []Site {
	var sites []Site
	for _, region := range sortedKeys(c.Locations) {
		r := c.Locations[region]
		if r == nil {
			continue
		}
		for _, name := range r.Sites {
			sites = append(sites, Site{Name: name, Region: region})
		}
		for _, sub := range sortedKeys(r.Subregions) {
			for _, name := range r.Subregions[sub] {
				sites = append(sites, Site{Name: name, Region: region, Subregion: sub})
			}
		}
	}
	return sites
}

// Set converts a list into a lookup set, lowercasing every entry
func Set(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(strings.TrimSpace(item))] = true
	}
	return set
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
