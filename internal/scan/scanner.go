// Package scan walks a dive root and turns every dive directory into
// labeled image records.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/franz/dive-gallery/internal/dive"
	"github.com/franz/dive-gallery/internal/metrics"
	"github.com/franz/dive-gallery/internal/report"
	"github.com/franz/dive-gallery/internal/util"
	"github.com/schollz/progressbar/v3"
	"github.com/sourcegraph/conc/iter"
)

// Scanner reads dive directories in parallel
type Scanner struct {
	concurrency int
	logger      *report.EventLogger
	metrics     *metrics.Collector
	retry       *util.RetryConfig
}

// Config holds scanner configuration
type Config struct {
	Concurrency int
	Logger      *report.EventLogger
	Metrics     *metrics.Collector
	Retry       *util.RetryConfig
}

// New creates a new Scanner
func New(cfg *Config) *Scanner {
	if cfg == nil {
		cfg = &Config{}
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	retry := cfg.Retry
	if retry == nil {
		retry = util.DefaultRetryConfig()
	}

	return &Scanner{
		concurrency: concurrency,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		retry:       retry,
	}
}

// Rejection is a filename the label parser refused, with its dive
type Rejection struct {
	DiveID   string
	Filename string
	Reason   dive.SkipReason
}

// Result represents a scan result
type Result struct {
	Root     string
	Dives    []dive.Dive
	Images   []*dive.Image
	Skipped  map[dive.SkipReason]int
	Rejected []Rejection
	Ignored  []string // root entries that are not dive directories
	Errors   []error
	Duration time.Duration
}

// SkippedTotal returns the number of rejected filenames
func (r *Result) SkippedTotal() int {
	return len(r.Rejected)
}

type diveListing struct {
	dive   dive.Dive
	parsed *dive.ParseResult
	err    error
}

// Scan reads every dive directory directly under root. Directories whose
// names are not dive identifiers are ignored with a warning; unreadable
// dive directories are recorded in Result.Errors and the scan continues.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	start := time.Now()
	util.InfoLog("Starting scan of: %s", root)

	entries, err := util.RetryableReadDir(root, s.retry)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("image root %s: %w", root, util.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read image root: %w", err)
	}

	result := &Result{
		Root:    root,
		Skipped: make(map[dive.SkipReason]int),
	}

	var dives []dive.Dive
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !entry.IsDir() {
			result.Ignored = append(result.Ignored, name)
			continue
		}
		d, err := dive.ParseDiveID(name)
		if err != nil {
			util.WarnLog("Ignoring directory %q: %v", name, err)
			result.Ignored = append(result.Ignored, name)
			continue
		}
		dives = append(dives, d)
	}
	sort.Slice(dives, func(i, j int) bool { return dives[i].ID < dives[j].ID })

	var bar *progressbar.ProgressBar
	if util.ShowProgress() && len(dives) > 0 {
		bar = progressbar.NewOptions(len(dives),
			progressbar.OptionSetDescription("Scanning dives"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetRenderBlankState(true),
		)
	}

	var cancelled atomic.Bool
	mapper := iter.Mapper[dive.Dive, diveListing]{MaxGoroutines: s.concurrency}
	listings := mapper.Map(dives, func(d *dive.Dive) diveListing {
		if ctx.Err() != nil {
			cancelled.Store(true)
			return diveListing{dive: *d, err: ctx.Err()}
		}
		listing := s.readDive(filepath.Join(root, d.ID), *d)
		if bar != nil {
			bar.Add(1)
		}
		return listing
	})

	if bar != nil {
		bar.Finish()
	}

	if cancelled.Load() {
		return nil, ctx.Err()
	}

	for _, listing := range listings {
		if listing.err != nil {
			util.ErrorLog("Failed to read dive %s: %v", listing.dive.ID, listing.err)
			s.logger.LogError(report.EventScan, listing.dive.ID, listing.err)
			s.metrics.RecordScanError()
			result.Errors = append(result.Errors, listing.err)
			continue
		}
		s.merge(result, listing)
	}

	result.Duration = time.Since(start)
	s.metrics.RecordScanDuration(result.Duration.Seconds())

	util.SuccessLog("Scan complete: %d dives, %d images, %d skipped, %d errors",
		len(result.Dives), len(result.Images), result.SkippedTotal(), len(result.Errors))

	return result, nil
}

// readDive lists one dive directory and parses its labels
func (s *Scanner) readDive(path string, d dive.Dive) diveListing {
	entries, err := util.RetryableReadDir(path, s.retry)
	if err != nil {
		return diveListing{dive: d, err: fmt.Errorf("failed to read %s: %w", path, err)}
	}

	filenames := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		filenames = append(filenames, entry.Name())
	}

	return diveListing{dive: d, parsed: dive.ParseDir(d.ID, filenames)}
}

func (s *Scanner) merge(result *Result, listing diveListing) {
	d, parsed := listing.dive, listing.parsed

	result.Dives = append(result.Dives, d)
	result.Images = append(result.Images, parsed.Images...)

	for _, img := range parsed.Images {
		s.metrics.RecordImage(img.Kind.String())
	}
	for _, r := range parsed.Rejected {
		result.Skipped[r.Reason]++
		result.Rejected = append(result.Rejected, Rejection{
			DiveID:   d.ID,
			Filename: r.Filename,
			Reason:   r.Reason,
		})
		s.logger.LogSkip(d.ID, r.Filename, string(r.Reason))
		s.metrics.RecordSkip(string(r.Reason))
	}

	s.metrics.RecordDive()
	s.logger.LogScan(d.ID, len(parsed.Images), len(parsed.Rejected))
	util.DebugLog("Dive %s: %d images, %d skipped", d.ID, len(parsed.Images), len(parsed.Rejected))
}
