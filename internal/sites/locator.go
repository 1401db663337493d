// Package sites builds the location tree: images grouped by region,
// optional subregion, site and dive date.
package sites

import (
	"fmt"
	"sort"
	"strings"

	"github.com/franz/dive-gallery/internal/config"
	"github.com/franz/dive-gallery/internal/util"
)

// Context places a site in the locations hierarchy. Region is empty for
// sites that are not configured.
type Context struct {
	Region    string
	Subregion string
	Site      string
}

// Path returns the region keys above the site
func (c Context) Path() []string {
	var out []string
	if c.Region != "" {
		out = append(out, c.Region)
	}
	if c.Subregion != "" {
		out = append(out, c.Subregion)
	}
	return out
}

// Locator resolves dive site names against the configured hierarchy
type Locator struct {
	sites   map[string]Context
	names   []string   // configured site names, longest first
	phrases [][]string // multi-word names split into words, most words first
}

// NewLocator indexes the locations hierarchy. A site listed twice is an
// error.
func NewLocator(cfg *config.Static) (*Locator, error) {
	l := &Locator{sites: make(map[string]Context)}

	multi := make(map[string]bool)
	addPhrase := func(name string) {
		if len(strings.Fields(name)) > 1 {
			multi[name] = true
		}
	}

	for _, site := range cfg.AllSites() {
		if prev, ok := l.sites[site.Name]; ok {
			return nil, fmt.Errorf("%w: site %q listed under both %s and %s",
				util.ErrDuplicate, site.Name, strings.Join(prev.Path(), "/"), site.Path())
		}
		l.sites[site.Name] = Context{Region: site.Region, Subregion: site.Subregion, Site: site.Name}
		l.names = append(l.names, site.Name)
		addPhrase(site.Name)
		addPhrase(site.Region)
		addPhrase(site.Subregion)
	}

	sort.SliceStable(l.names, func(i, j int) bool {
		return len(l.names[i]) > len(l.names[j])
	})

	for phrase := range multi {
		l.phrases = append(l.phrases, strings.Fields(phrase))
	}
	sort.Slice(l.phrases, func(i, j int) bool {
		a, b := l.phrases[i], l.phrases[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return strings.Join(a, " ") < strings.Join(b, " ")
	})

	return l, nil
}

// Resolve finds the context of a dive's site name. An exact match wins;
// otherwise the longest configured site that starts the name on a word
// boundary is used ("Fort Ward South" resolves through "Fort Ward").
func (l *Locator) Resolve(site string) (Context, bool) {
	if ctx, ok := l.sites[site]; ok {
		return ctx, true
	}
	for _, name := range l.names {
		if strings.HasPrefix(site, name+" ") {
			return l.sites[name], true
		}
	}
	return Context{Site: site}, false
}

// Tokenize splits a name into words, keeping configured multi-word
// names together: "Fort Ward South" becomes ["Fort Ward", "South"].
func (l *Locator) Tokenize(name string) []string {
	words := strings.Fields(name)
	var out []string
	for i := 0; i < len(words); {
		matched := false
		for _, phrase := range l.phrases {
			if hasPhraseAt(words, i, phrase) {
				out = append(out, strings.Join(phrase, " "))
				i += len(phrase)
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, words[i])
			i++
		}
	}
	return out
}

func hasPhraseAt(words []string, i int, phrase []string) bool {
	if i+len(phrase) > len(words) {
		return false
	}
	for j, w := range phrase {
		if words[i+j] != w {
			return false
		}
	}
	return true
}

// Sites returns every configured site name in sorted order
func (l *Locator) Sites() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	sort.Strings(out)
	return out
}
