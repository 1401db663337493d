package collection

import (
	"github.com/franz/dive-gallery/internal/metrics"
	"github.com/franz/dive-gallery/internal/report"
)

// Record writes the build's expansions, prunes and misses to the event
// log and the metrics collector. Either may be nil.
func (c *Collection) Record(logger *report.EventLogger, m *metrics.Collector, classes *Classification) {
	for _, e := range c.Expansions() {
		logger.LogExpand(e.Key, e.Subject, e.Parts)
	}

	for _, k := range c.Gallery.Pruned {
		logger.LogPrune(metrics.TreeGallery, k, c.Gallery.PrunedCounts[k])
	}
	for _, k := range c.Sites.Pruned {
		logger.LogPrune(metrics.TreeSites, k, c.Sites.PrunedCounts[k])
	}

	m.RecordRecords("expanded", c.Gallery.Expanded)
	m.RecordRecords("ignored", len(c.Gallery.Ignored))
	m.RecordPruned(metrics.TreeGallery, c.Gallery.PrunedImages)
	m.RecordPruned(metrics.TreeSites, c.Sites.PrunedImages)
	m.SetTreeImages(metrics.TreeGallery, c.Gallery.Tree.Count())
	m.SetTreeImages(metrics.TreeTaxonomy, c.Taxonomy.Count())
	m.SetTreeImages(metrics.TreeSites, c.Sites.Tree.Count())

	if classes != nil {
		for _, s := range classes.Missing {
			logger.LogMiss(s.Name, s.Images)
		}
		m.RecordMisses(len(classes.Missing))
	}
}
