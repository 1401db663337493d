// Package metrics counts what a gallery build saw and dropped
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Tree names used as label values
const (
	TreeGallery  = "gallery"
	TreeTaxonomy = "taxonomy"
	TreeSites    = "sites"
)

// Collector holds the Prometheus metrics for one run. A nil *Collector
// is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	divesScannedTotal   prometheus.Counter
	imagesParsedTotal   *prometheus.CounterVec
	filesSkippedTotal   *prometheus.CounterVec
	scanErrorsTotal     prometheus.Counter
	recordsTotal        *prometheus.CounterVec
	lookupMissesTotal   prometheus.Counter
	prunedImagesTotal   *prometheus.CounterVec
	treeLeaves          *prometheus.GaugeVec
	scanDurationSeconds prometheus.Histogram
}

// New creates and registers the collector on registry
func New(registry *prometheus.Registry) (*Collector, error) {
	c := &Collector{registry: registry}
	c.initMetrics()
	if err := registry.Register(c); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	return c, nil
}

func (c *Collector) initMetrics() {
	c.divesScannedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dg_dives_scanned_total",
		Help: "Dive directories parsed",
	})

	c.imagesParsedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dg_images_parsed_total",
			Help: "Image records produced by the label parser",
		},
		[]string{"kind"}, // still, video
	)

	c.filesSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dg_files_skipped_total",
			Help: "Filenames rejected by the label parser",
		},
		[]string{"reason"},
	)

	c.scanErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dg_scan_errors_total",
		Help: "Dive directories that could not be read",
	})

	c.recordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dg_gallery_records_total",
			Help: "Image records by what the gallery builder did with them",
		},
		[]string{"outcome"}, // expanded, ignored
	)

	c.lookupMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dg_lookup_misses_total",
		Help: "Subjects without a scientific name",
	})

	c.prunedImagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dg_pruned_images_total",
			Help: "Images dropped with pruned top-level keys",
		},
		[]string{"tree"},
	)

	c.treeLeaves = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dg_tree_images",
			Help: "Images held by each built tree",
		},
		[]string{"tree"},
	)

	c.scanDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dg_scan_duration_seconds",
		Help:    "Time taken to scan the dive root",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
}

// Describe implements the Collector interface
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.divesScannedTotal.Describe(ch)
	c.imagesParsedTotal.Describe(ch)
	c.filesSkippedTotal.Describe(ch)
	c.scanErrorsTotal.Describe(ch)
	c.recordsTotal.Describe(ch)
	c.lookupMissesTotal.Describe(ch)
	c.prunedImagesTotal.Describe(ch)
	c.treeLeaves.Describe(ch)
	c.scanDurationSeconds.Describe(ch)
}

// Collect implements the Collector interface
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.divesScannedTotal.Collect(ch)
	c.imagesParsedTotal.Collect(ch)
	c.filesSkippedTotal.Collect(ch)
	c.scanErrorsTotal.Collect(ch)
	c.recordsTotal.Collect(ch)
	c.lookupMissesTotal.Collect(ch)
	c.prunedImagesTotal.Collect(ch)
	c.treeLeaves.Collect(ch)
	c.scanDurationSeconds.Collect(ch)
}

// RecordDive records one parsed dive directory
func (c *Collector) RecordDive() {
	if c == nil {
		return
	}
	c.divesScannedTotal.Inc()
}

// RecordImage records one parsed image of the given kind
func (c *Collector) RecordImage(kind string) {
	if c == nil {
		return
	}
	c.imagesParsedTotal.WithLabelValues(kind).Inc()
}

// RecordSkip records one rejected filename
func (c *Collector) RecordSkip(reason string) {
	if c == nil {
		return
	}
	c.filesSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordScanError records an unreadable dive directory
func (c *Collector) RecordScanError() {
	if c == nil {
		return
	}
	c.scanErrorsTotal.Inc()
}

// RecordScanDuration records the wall time of a scan in seconds
func (c *Collector) RecordScanDuration(seconds float64) {
	if c == nil {
		return
	}
	c.scanDurationSeconds.Observe(seconds)
}

// RecordRecords adds n records with the given outcome
func (c *Collector) RecordRecords(outcome string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.recordsTotal.WithLabelValues(outcome).Add(float64(n))
}

// RecordMisses adds n subjects that had no scientific name
func (c *Collector) RecordMisses(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.lookupMissesTotal.Add(float64(n))
}

// RecordPruned adds images dropped from the named tree
func (c *Collector) RecordPruned(tree string, images int) {
	if c == nil || images <= 0 {
		return
	}
	c.prunedImagesTotal.WithLabelValues(tree).Add(float64(images))
}

// SetTreeImages sets the image count held by the named tree
func (c *Collector) SetTreeImages(tree string, images int) {
	if c == nil {
		return
	}
	c.treeLeaves.WithLabelValues(tree).Set(float64(images))
}

// WriteTextfile writes every registered metric in the text exposition
// format, for node_exporter's textfile collector
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
