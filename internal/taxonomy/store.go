package taxonomy

import (
	"fmt"
	"iter"
	"sort"
	"strings"

	"github.com/franz/dive-gallery/internal/config"
	"github.com/franz/dive-gallery/internal/names"
	"github.com/franz/dive-gallery/internal/util"
)

// Store owns the taxonomy and both name mappings. All lookups are read
// only, so a Store may be shared freely once built.
type Store struct {
	root         *Taxon
	compressed   *Taxon
	normalizer   *names.Normalizer
	toScientific map[string]string
	toCommon     map[string][]string
	noExact      map[string]bool
	noAny        []string
	ignore       map[string]bool
}

// New indexes a parsed taxonomy. A common name appearing under two
// lineages is an error.
func New(root *Taxon, cfg *config.Static, normalizer *names.Normalizer) (*Store, error) {
	s := &Store{
		root:         root,
		compressed:   root.Compress(),
		normalizer:   normalizer,
		toScientific: make(map[string]string),
		toCommon:     make(map[string][]string),
		noExact:      config.Set(cfg.NoTaxonomyExact),
		ignore:       config.Set(cfg.Ignore),
	}
	for item := range config.Set(cfg.NoTaxonomyAny) {
		s.noAny = append(s.noAny, item)
	}
	sort.Strings(s.noAny)

	var err error
	root.Walk(func(lineage []string, leaf *Taxon) {
		if err != nil {
			return
		}
		scientific := strings.Join(lineage, " ")
		for _, name := range leaf.names {
			name = names.Lowercase(name)
			if prev, ok := s.toScientific[name]; ok {
				err = fmt.Errorf("%w: common name %q under both %s and %s", util.ErrDuplicate, name, prev, scientific)
				return
			}
			s.toScientific[name] = scientific
			s.toCommon[scientific] = append(s.toCommon[scientific], name)
		}
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads the taxonomy at path, or the embedded default when path is
// empty, and indexes it
func Load(path string, cfg *config.Static, normalizer *names.Normalizer) (*Store, error) {
	root, err := LoadTree(path)
	if err != nil {
		return nil, err
	}
	return New(root, cfg, normalizer)
}

// Tree returns the full taxonomy
func (s *Store) Tree() *Taxon {
	return s.root
}

// Compressed returns the taxonomy with single-child chains collapsed
func (s *Store) Compressed() *Taxon {
	return s.compressed
}

// Leaves yields every common name in the taxonomy in lineage order,
// splitting multi-name leaves into their parts
func (s *Store) Leaves() iter.Seq[string] {
	return func(yield func(string) bool) {
		stop := false
		s.root.Walk(func(_ []string, leaf *Taxon) {
			for _, name := range leaf.names {
				if stop {
					return
				}
				if !yield(names.Lowercase(name)) {
					stop = true
				}
			}
		})
	}
}

// CommonNames returns every common name in sorted order
func (s *Store) CommonNames() []string {
	out := make([]string, 0, len(s.toScientific))
	for name := range s.toScientific {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ToScientific returns the lineage recorded for an exact common name
func (s *Store) ToScientific(common string) (string, bool) {
	scientific, ok := s.toScientific[common]
	return scientific, ok
}

// ToCommon returns the first common name recorded for a lineage
func (s *Store) ToCommon(scientific string) (string, bool) {
	all := s.toCommon[scientific]
	if len(all) == 0 {
		return "", false
	}
	return all[0], true
}

// AllCommon returns every common name recorded for a lineage
func (s *Store) AllCommon(scientific string) []string {
	out := make([]string, len(s.toCommon[scientific]))
	copy(out, s.toCommon[scientific])
	return out
}

// Scientific resolves a subject lineage, leaf first, by trying in order:
// the joined lineage without qualifiers or category, the same unsplit,
// and the same with one and then two leading elements dropped. It returns
// the common name that matched and its scientific lineage.
func (s *Store) Scientific(lineage []string) (common, scientific string, ok bool) {
	for _, candidate := range s.candidates(lineage) {
		if sci, found := s.toScientific[candidate]; found {
			return candidate, sci, true
		}
	}
	return "", "", false
}

func (s *Store) candidates(lineage []string) []string {
	clean := func(l []string) string {
		return s.normalizer.Uncategorize(s.normalizer.Unqualify(strings.Join(l, " ")))
	}

	var out []string
	if len(lineage) > 0 {
		first := clean(lineage)
		out = append(out, first, s.normalizer.Unsplit(first))
	}
	for drop := 1; drop <= 2 && drop < len(lineage); drop++ {
		out = append(out, s.normalizer.Unsplit(clean(lineage[drop:])))
	}
	return out
}

// Lookup resolves a normalized subject name
func (s *Store) Lookup(name string) (common, scientific string, ok bool) {
	return s.Scientific(strings.Fields(name))
}

// Excluded reports whether a name is deliberately kept out of the
// taxonomy, either exactly or by containing an excluded fragment
func (s *Store) Excluded(name string) bool {
	if s.noExact[name] {
		return true
	}
	for _, fragment := range s.noAny {
		if strings.Contains(name, fragment) {
			return true
		}
	}
	return false
}

// Missing reports whether a subject should have a scientific name but
// none of the lookups found one
func (s *Store) Missing(name string) bool {
	if _, _, ok := s.Lookup(name); ok {
		return false
	}
	return !s.Excluded(name) && !names.ContainsAny(name, s.ignore)
}

// Incomplete reports whether a subject resolves to a genus or higher
// rank instead of a species
func (s *Store) Incomplete(name string) bool {
	_, scientific, ok := s.Lookup(name)
	if !ok {
		return false
	}
	return IncompleteLineage(scientific)
}

// IncompleteLineage reports whether a scientific lineage ends in "sp." or
// a capitalized rank
func IncompleteLineage(scientific string) bool {
	fields := strings.Fields(scientific)
	if len(fields) == 0 {
		return false
	}
	last := fields[len(fields)-1]
	return last == Unresolved || !startsLower(last)
}

// Binomials lists every "Genus species" pair
func (s *Store) Binomials() []string {
	return s.root.Binomials()
}

// LatinWords lists every distinct rank or epithet
func (s *Store) LatinWords() []string {
	return s.root.LatinWords()
}

// ExactOnly returns the taxonomy without "sp." leaves
func (s *Store) ExactOnly() *Taxon {
	return s.root.ExactOnly()
}

// Verify runs the structural checks on the loaded taxonomy
func (s *Store) Verify() error {
	return s.root.Verify()
}
