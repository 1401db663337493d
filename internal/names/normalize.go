// Package names canonicalizes the free-form subject labels written into
// filenames so that "Rockfishes", "rockfish" and "Rock Fish" all route to
// the same place.
package names

import (
	"sort"
	"strings"

	"github.com/franz/dive-gallery/internal/config"
	"github.com/franz/dive-gallery/internal/util"
	"github.com/jinzhu/inflection"
	"golang.org/x/text/unicode/norm"
)

// singularPatches repairs endings the rule-based singularizer gets wrong
var singularPatches = []struct {
	suffix      string
	replacement string
}{
	{"octopuse", "octopus"},
	{"octopu", "octopus"},
	{"gras", "grass"},
	{"fuscu", "fuscus"},
	{"dori", "doris"},
	{"alga", "algae"},
	{"greenlin", "greenling"},
	{"wrass", "wrasse"},
}

// minSplitPrefix keeps short words like "gray" from being split as "g ray"
const minSplitPrefix = 3

// Normalizer holds the prepared rule tables. It is safe for concurrent use.
type Normalizer struct {
	splits     []string
	qualifiers []string
	categories []category
	exceptions map[string]bool
}

type category struct {
	name     string
	suffixes []string
}

// New prepares a Normalizer from the static configuration
func New(cfg *config.Static) *Normalizer {
	n := &Normalizer{
		splits:     lowerAll(cfg.Splits),
		qualifiers: lowerAll(cfg.Qualifiers),
		exceptions: config.Set(cfg.SingularExceptions),
	}

	// Longest qualifier first so "school of" wins over a shorter prefix
	sort.SliceStable(n.qualifiers, func(i, j int) bool {
		return len(n.qualifiers[i]) > len(n.qualifiers[j])
	})

	names := make([]string, 0, len(cfg.Categories))
	for name := range cfg.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		n.categories = append(n.categories, category{
			name:     strings.ToLower(name),
			suffixes: lowerAll(cfg.Categories[name]),
		})
	}

	return n
}

// Normalize produces the routing form of a raw subject: lowercase,
// singular, split and categorized. Qualifiers are kept so that life-stage
// groupings ("juvenile", "mating") survive into the tree; lookups strip
// them with Unqualify. Normalize is idempotent.
func (n *Normalizer) Normalize(raw string) string {
	return n.Categorize(n.Split(n.Singular(Lowercase(raw))))
}

// Lowercase applies NFC, lowercases and collapses whitespace
func Lowercase(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	return util.CollapseWhitespace(strings.ToLower(s))
}

// Singular singularizes the last word of a phrase
func (n *Normalizer) Singular(s string) string {
	if s == "" {
		return ""
	}

	if n.exceptions[lastWord(s)] {
		return s
	}

	out := inflection.Singular(s)
	for _, p := range singularPatches {
		if strings.HasSuffix(out, p.suffix) {
			out = strings.TrimSuffix(out, p.suffix) + p.replacement
			break
		}
	}
	return out
}

// Unqualify strips leading qualifiers ("juvenile", "school of") and a
// trailing " egg" or " eggs"
func (n *Normalizer) Unqualify(s string) string {
	for changed := true; changed; {
		changed = false
		for _, q := range n.qualifiers {
			if strings.HasPrefix(s, q+" ") {
				s = strings.TrimPrefix(s, q+" ")
				changed = true
				break
			}
		}
	}

	for _, suffix := range []string{" eggs", " egg"} {
		if strings.HasSuffix(s, suffix) {
			return strings.TrimSuffix(s, suffix)
		}
	}
	return s
}

// Split separates a joined suffix: "rockfish" becomes "rock fish"
func (n *Normalizer) Split(s string) string {
	last := lastWord(s)
	for _, token := range n.splits {
		if !strings.HasSuffix(last, token) {
			continue
		}
		if len(last)-len(token) < minSplitPrefix {
			continue
		}
		return strings.TrimSuffix(s, token) + " " + token
	}
	return s
}

// Unsplit rejoins a split suffix: "rock fish" becomes "rockfish"
func (n *Normalizer) Unsplit(s string) string {
	for _, token := range n.splits {
		if strings.HasSuffix(s, " "+token) {
			return strings.TrimSuffix(s, " "+token) + token
		}
	}
	return s
}

// Categorize appends the category of a known suffix: "blackeye goby"
// becomes "blackeye goby fish". Names already ending in a category are
// left alone.
func (n *Normalizer) Categorize(s string) string {
	if s == "" || n.categoryOf(s) != "" {
		return s
	}

	for _, c := range n.categories {
		for _, suffix := range c.suffixes {
			if hasWordSuffix(s, suffix) {
				return s + " " + c.name
			}
		}
	}
	return s
}

// Uncategorize removes a category appended by Categorize
func (n *Normalizer) Uncategorize(s string) string {
	for _, c := range n.categories {
		if !strings.HasSuffix(s, " "+c.name) {
			continue
		}
		base := strings.TrimSuffix(s, " "+c.name)
		for _, suffix := range c.suffixes {
			if hasWordSuffix(base, suffix) {
				return base
			}
		}
	}
	return s
}

// categoryOf returns the category a name already ends with, if any
func (n *Normalizer) categoryOf(s string) string {
	for _, c := range n.categories {
		if hasWordSuffix(s, c.name) {
			return c.name
		}
	}
	return ""
}

func hasWordSuffix(s, suffix string) bool {
	return s == suffix || strings.HasSuffix(s, " "+suffix)
}

func lastWord(s string) string {
	if i := strings.LastIndexByte(s, ' '); i >= 0 {
		return s[i+1:]
	}
	return s
}

func lowerAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = Lowercase(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
