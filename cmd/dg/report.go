package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/dive-gallery/internal/collection"
	"github.com/franz/dive-gallery/internal/report"
	"github.com/franz/dive-gallery/internal/scan"
	"github.com/franz/dive-gallery/internal/store"
	"github.com/franz/dive-gallery/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the collection and write a summary report",
	Long: `Scan the image root, build every tree and write a Markdown summary.

The report includes:
- Scan statistics and skipped files by reason
- Conjunction expansions, ignored and pruned images
- Imprecise subjects (a more specific subject exists)
- Subjects missing from the taxonomy
- Subjects identified only to genus or higher
- Subjects newly missing since the previous run

Each run is recorded in the run ledger (--db). A search index for the
subject tree is written next to the summary as search.json.

The report is saved to artifacts/reports/<timestamp>/summary.md`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	// Report-specific flags
	reportCmd.Flags().String("out", "", "Output directory for report (default: artifacts/reports/<timestamp>)")
}

func runReport(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("db")
	root := viper.GetString("images")

	util.InfoLog("=== Generating Summary Report ===")

	logger := openEventLogger()
	defer logger.Close()

	m, err := newMetrics()
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	var (
		db  *store.Store
		run *store.Run
	)
	if dbPath != "" {
		util.InfoLog("Run ledger: %s", dbPath)
		db, err = store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		run, err = db.StartRun(root)
		if err != nil {
			return err
		}
		logger.SetRunID(run.ID)
	}

	c, result, err := buildCollection(cmd.Context(), logger, m)
	if err != nil {
		return err
	}

	classes := c.Classify()
	c.Record(logger, m, classes)

	summary := newSummary(c, result, classes)
	summary.DatabasePath = dbPath
	summary.EventLogPath = logger.Path()

	if db != nil {
		newMisses, err := recordRun(db, run, c, result, classes)
		if err != nil {
			return err
		}
		summary.RunID = run.ID
		summary.NewMisses = newMisses
	}
	summary.Duration = time.Since(summary.GeneratedAt)

	outputDir, _ := cmd.Flags().GetString("out")
	if outputDir == "" {
		timestamp := time.Now().Format("20060102-150405")
		outputDir = filepath.Join("artifacts", "reports", timestamp)
	}

	outputPath := filepath.Join(outputDir, "summary.md")
	util.InfoLog("Writing report to: %s", outputPath)
	if err := report.WriteMarkdownReport(summary, outputPath); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	searchPath := filepath.Join(outputDir, "search.json")
	if err := writeSearchIndex(c.SearchIndex(), searchPath); err != nil {
		return err
	}

	writeMetrics(m)

	// Summary
	util.SuccessLog("Report generated successfully!")
	util.InfoLog("")
	util.InfoLog("Report saved to: %s", outputPath)
	util.InfoLog("")
	util.InfoLog("Summary:")
	util.InfoLog("  Dives scanned: %s", humanize.Comma(int64(summary.DivesScanned)))
	util.InfoLog("  Images parsed: %s", humanize.Comma(int64(summary.ImagesParsed)))
	util.InfoLog("  Subjects: %d (%d species)", summary.Subjects, summary.Species)
	if summary.FilesSkipped > 0 {
		util.InfoLog("  Files skipped: %d", summary.FilesSkipped)
	}
	if len(summary.Missing) > 0 {
		util.WarnLog("  Missing scientific names: %d", len(summary.Missing))
	}
	if len(summary.NewMisses) > 0 {
		util.WarnLog("  New since last run: %d", len(summary.NewMisses))
	}
	if summary.ScanErrors > 0 {
		util.WarnLog("  Unreadable dives: %d", summary.ScanErrors)
	}

	return nil
}

// newSummary collects the scan and gallery statistics of one build
func newSummary(c *collection.Collection, result *scan.Result, classes *collection.Classification) *report.SummaryReport {
	summary := &report.SummaryReport{
		GeneratedAt:  c.BuiltAt,
		DivesScanned: len(result.Dives),
		ImagesParsed: len(result.Images),
		FilesSkipped: result.SkippedTotal(),
		SkipReasons:  make(map[string]int, len(result.Skipped)),
		ScanErrors:   len(result.Errors),
		ImageRoot:    result.Root,
	}
	for reason, n := range result.Skipped {
		summary.SkipReasons[string(reason)] = n
	}
	c.Report(summary, classes)
	return summary
}

// recordRun stores the run's counts, misses and skips in the ledger and
// returns the subjects missing now that were not missing last run
func recordRun(db *store.Store, run *store.Run, c *collection.Collection, result *scan.Result, classes *collection.Classification) ([]string, error) {
	misses := make([]store.Miss, 0, len(classes.Missing))
	for _, s := range classes.Missing {
		misses = append(misses, store.Miss{Subject: s.Name, Images: s.Images})
	}
	if err := db.RecordMisses(run.ID, misses); err != nil {
		return nil, err
	}

	skips := make([]store.Skip, 0, len(result.Rejected))
	for _, r := range result.Rejected {
		skips = append(skips, store.Skip{DiveID: r.DiveID, Filename: r.Filename, Reason: string(r.Reason)})
	}
	if err := db.RecordSkips(run.ID, skips); err != nil {
		return nil, err
	}

	run.Dives = len(result.Dives)
	run.Images = len(result.Images)
	run.Skipped = result.SkippedTotal()
	run.Subjects = len(c.Subjects())
	run.Misses = len(misses)
	if err := db.FinishRun(run); err != nil {
		return nil, err
	}

	return db.NewMisses(run.ID)
}

// writeSearchIndex writes the subject search rows as a JSON array
func writeSearchIndex(rows []collection.SearchRow, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode search index: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write search index: %w", err)
	}
	return nil
}
