package names

import (
	"sort"
	"strings"
)

// Classifier answers "is this name too vague?" questions against a fixed
// set of normalized names. Prepare once, query many.
type Classifier struct {
	suffixes map[string]bool
	allow    map[string]bool
}

// NewClassifier indexes every word-suffix of every name. allow lists names
// that may be suffixes of other names without being imprecise.
func NewClassifier(names []string, allow map[string]bool) *Classifier {
	c := &Classifier{
		suffixes: make(map[string]bool),
		allow:    allow,
	}
	for _, name := range names {
		for i := 0; i < len(name); i++ {
			if name[i] == ' ' {
				c.suffixes[name[i+1:]] = true
			}
		}
	}
	return c
}

// Imprecise reports whether some other name ends with " "+name, meaning
// a more specific subject exists. "rock fish" is imprecise when "black rock
// fish" is present.
func (c *Classifier) Imprecise(name string) bool {
	if c.allow[name] {
		return false
	}
	return c.suffixes[name]
}

// ImpreciseNames returns the sorted subset of names that are imprecise
func (c *Classifier) ImpreciseNames(names []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, name := range names {
		if seen[name] || !c.Imprecise(name) {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ContainsAny reports whether s contains any of the given tokens as a
// whole word
func ContainsAny(s string, tokens map[string]bool) bool {
	for _, word := range strings.Fields(s) {
		if tokens[word] {
			return true
		}
	}
	return false
}
