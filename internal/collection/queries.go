package collection

import (
	"sort"
	"strings"

	"github.com/franz/dive-gallery/internal/config"
	"github.com/franz/dive-gallery/internal/dive"
	"github.com/franz/dive-gallery/internal/names"
	"github.com/franz/dive-gallery/internal/report"
	"github.com/franz/dive-gallery/internal/taxonomy"
	"github.com/franz/dive-gallery/internal/util"
)

// Classification sorts subjects into the lists the summary report shows
type Classification struct {
	Imprecise  []report.SubjectInfo // a more specific subject exists
	Missing    []report.SubjectInfo // no scientific name and not excluded
	Incomplete []report.SubjectInfo // resolves only to a genus or "sp."
}

// Classify groups subjects by title and classifies each once
func (c *Collection) Classify() *Classification {
	counts := make(map[string]int)
	var titles []string
	for _, s := range c.subjects {
		title := s.Title()
		if _, ok := counts[title]; !ok {
			titles = append(titles, title)
		}
		counts[title] += len(s.Images)
	}

	store := c.rules.Taxonomy
	classifier := names.NewClassifier(titles, config.Set(c.rules.Config.ImpreciseOK))
	out := &Classification{}

	for _, title := range titles {
		info := report.SubjectInfo{Name: title, Images: counts[title]}
		if classifier.Imprecise(title) {
			out.Imprecise = append(out.Imprecise, info)
		}
		if store.Missing(title) {
			out.Missing = append(out.Missing, info)
			continue
		}
		if _, scientific, ok := store.Lookup(title); ok && taxonomy.IncompleteLineage(scientific) {
			info.Scientific = scientific
			out.Incomplete = append(out.Incomplete, info)
		}
	}

	report.SortSubjects(out.Imprecise)
	report.SortSubjects(out.Missing)
	report.SortSubjects(out.Incomplete)
	return out
}

// SearchRow is one entry of the client-side search index
type SearchRow struct {
	Name    string `json:"name"`
	Link    string `json:"link"`
	Lineage string `json:"lineage,omitempty"`
	Count   int    `json:"count"`
}

// SearchIndex returns one row per subject, most photographed first
func (c *Collection) SearchIndex() []SearchRow {
	rows := make([]SearchRow, 0, len(c.subjects))
	for _, s := range c.subjects {
		row := SearchRow{
			Name:  s.Name,
			Link:  util.Sanitize(s.Title()),
			Count: len(s.Images),
		}
		if _, scientific, ok := c.rules.Taxonomy.Scientific(s.Lineage()); ok {
			row.Lineage = taxonomy.SimplifyAndElide(scientific)
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// Expansion is one input record that conjunction expansion split
type Expansion struct {
	Key     string
	Subject string
	Parts   []string
}

// Expansions lists the input records that became several records
func (c *Collection) Expansions() []Expansion {
	parts := make(map[string][]string)
	for _, img := range c.Gallery.Images {
		parts[img.Key()] = append(parts[img.Key()], img.RawSubject)
	}

	var out []Expansion
	seen := make(map[string]bool)
	for _, img := range c.Input {
		key := img.Key()
		if seen[key] || len(parts[key]) < 2 {
			continue
		}
		seen[key] = true
		out = append(out, Expansion{Key: key, Subject: img.RawSubject, Parts: parts[key]})
	}
	return out
}

// Report fills the gallery half of a summary report
func (c *Collection) Report(r *report.SummaryReport, classes *Classification) {
	r.ImagesExpanded = c.Gallery.Expanded
	r.ImagesIgnored = len(c.Gallery.Ignored)
	r.ImagesPruned = c.Gallery.PrunedImages
	r.PrunedKeys = c.Gallery.Pruned
	r.Subjects = len(c.subjects)
	r.Species = c.Species()
	r.Sites = len(siteNames(c.Gallery.Images))
	r.UnknownSites = c.Sites.Unknown

	if classes != nil {
		r.Imprecise = classes.Imprecise
		r.Missing = classes.Missing
		r.Incomplete = classes.Incomplete
	}
}

// siteNames returns the distinct dive sites among images
func siteNames(images []*dive.Image) map[string]bool {
	out := make(map[string]bool)
	for _, img := range images {
		out[strings.ToLower(img.Dive().Site)] = true
	}
	return out
}
