package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/franz/dive-gallery/internal/collection"
	"github.com/franz/dive-gallery/internal/config"
	"github.com/franz/dive-gallery/internal/dive"
	"github.com/franz/dive-gallery/internal/names"
	"github.com/franz/dive-gallery/internal/scan"
	"github.com/franz/dive-gallery/internal/store"
	"github.com/franz/dive-gallery/internal/taxonomy"
	"github.com/franz/dive-gallery/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify the configuration, taxonomy and image root",
	Long: `Run diagnostic checks to ensure dg can build the collection.

This command checks:
- SQLite version compatibility
- Run ledger accessibility and integrity
- Static configuration (no site listed under two regions)
- Taxonomy structure (lowercase leaf keys, no common name under two lineages)
- Image root readability and dive directory names
- Pinned images that reference unknown image keys
- Dive sites with no configured region
- Disk space for reports and event logs

Use this command to troubleshoot issues before running dg report.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	util.InfoLog("=== DG Doctor - Configuration Diagnostics ===")
	util.InfoLog("")

	staticPath := viper.GetString("static")
	taxonomyPath := viper.GetString("taxonomy")
	imageRoot := viper.GetString("images")

	results := []checkResult{}

	// 1. Check SQLite
	results = append(results, checkSQLite())

	// 2. Check run ledger
	results = append(results, checkDatabase(viper.GetString("db")))

	// 3. Check static configuration
	staticResult, cfg := checkStaticConfig(staticPath)
	results = append(results, staticResult)

	// 4. Check taxonomy
	if cfg != nil {
		results = append(results, checkTaxonomy(taxonomyPath, cfg))
	}

	// 5. Check image root, then the collection built from it
	if imageRoot != "" {
		rootResult := checkImageRoot(imageRoot)
		results = append(results, rootResult)
		if !rootResult.error && cfg != nil {
			results = append(results, checkCollection(cmd.Context(), imageRoot, staticPath, taxonomyPath)...)
		}
	} else {
		results = append(results, checkResult{
			name:    "Image root",
			warning: true,
			message: "no image root specified (use --images flag or config)",
		})
	}

	// 6. Check disk space for artifacts
	results = append(results, checkDiskSpace(".", "artifacts"))

	// Print results
	util.InfoLog("")
	util.InfoLog("=== Diagnostic Results ===")
	util.InfoLog("")

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	// Summary
	util.InfoLog("")
	if hasErrors {
		util.ErrorLog("❌ Some critical checks failed. Please resolve errors before running dg.")
		return fmt.Errorf("configuration diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("⚠️  Some checks produced warnings. Review them before proceeding.")
	} else {
		util.SuccessLog("✅ All checks passed! Ready to build the collection.")
	}

	return nil
}

// checkSQLite verifies SQLite version
func checkSQLite() checkResult {
	// modernc.org/sqlite is pure Go; a version string proves the driver works
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkDatabase verifies the run ledger is accessible
func checkDatabase(dbPath string) checkResult {
	if dbPath == "" {
		return checkResult{
			name:    "Run ledger",
			warning: true,
			message: "disabled (no --db path); new misses will not be reported",
		}
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Run ledger",
				message: fmt.Sprintf("%s (will be created on first report)", dbPath),
			}
		}
		return checkResult{
			name:    "Run ledger",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}
	}

	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "Run ledger",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return checkResult{
			name:    "Run ledger",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	if err := db.CheckIntegrity(); err != nil {
		return checkResult{
			name:    "Run ledger",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		}
	}

	size := humanize.Bytes(uint64(info.Size()))
	runs, err := db.ListRuns(1)
	if err != nil || len(runs) == 0 {
		return checkResult{
			name:    "Run ledger",
			message: fmt.Sprintf("%s (%s, no runs yet)", dbPath, size),
		}
	}

	return checkResult{
		name:    "Run ledger",
		message: fmt.Sprintf("%s (%s, last run %s)", dbPath, size, humanize.Time(runs[0].StartedAt)),
	}
}

// checkStaticConfig loads the naming and location rules. The returned
// configuration is nil when loading failed.
func checkStaticConfig(path string) (checkResult, *config.Static) {
	source := path
	if source == "" {
		source = "built-in"
	}

	cfg, err := config.Load(path)
	if err != nil {
		return checkResult{
			name:    "Static config",
			error:   true,
			message: err.Error(),
		}, nil
	}

	return checkResult{
		name: "Static config",
		message: fmt.Sprintf("%s (%d sites in %d regions, %d pinned)",
			source, len(cfg.AllSites()), len(cfg.Locations), len(cfg.Pinned)),
	}, cfg
}

// checkTaxonomy verifies the taxonomy structure and its common names
func checkTaxonomy(path string, cfg *config.Static) checkResult {
	source := path
	if source == "" {
		source = "built-in"
	}

	root, err := taxonomy.LoadTree(path)
	if err != nil {
		return checkResult{
			name:    "Taxonomy",
			error:   true,
			message: err.Error(),
		}
	}

	if err := root.Verify(); err != nil {
		return checkResult{
			name:    "Taxonomy",
			error:   true,
			message: err.Error(),
		}
	}

	s, err := taxonomy.New(root, cfg, names.New(cfg))
	if err != nil {
		return checkResult{
			name:    "Taxonomy",
			error:   true,
			message: err.Error(),
		}
	}

	return checkResult{
		name: "Taxonomy",
		message: fmt.Sprintf("%s (%d common names, %d binomials)",
			source, len(s.CommonNames()), len(s.Binomials())),
	}
}

// checkImageRoot verifies the image root is readable and holds dives
func checkImageRoot(path string) checkResult {
	info, err := os.Stat(path)
	if err != nil {
		return checkResult{
			name:    "Image root",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", path, err),
		}
	}

	if !info.IsDir() {
		return checkResult{
			name:    "Image root",
			error:   true,
			message: fmt.Sprintf("%s is not a directory", path),
		}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return checkResult{
			name:    "Image root",
			error:   true,
			message: fmt.Sprintf("cannot read %s: %v", path, err),
		}
	}

	dives := 0
	var other []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if _, err := dive.ParseDiveID(entry.Name()); err != nil {
			other = append(other, entry.Name())
			continue
		}
		dives++
	}

	if dives == 0 {
		return checkResult{
			name:    "Image root",
			warning: true,
			message: fmt.Sprintf("%s has no dive directories (expected YYYY-MM-DD[ N] Site)", path),
		}
	}
	if len(other) > 0 {
		return checkResult{
			name:    "Image root",
			warning: true,
			message: fmt.Sprintf("%s (%d dives, %d other directories: %s)",
				path, dives, len(other), strings.Join(other, ", ")),
		}
	}

	return checkResult{
		name:    "Image root",
		message: fmt.Sprintf("%s (%d dives)", path, dives),
	}
}

// checkCollection builds the collection and reports pinned images and
// dive sites that the configuration does not account for
func checkCollection(ctx context.Context, root, staticPath, taxonomyPath string) []checkResult {
	rules, err := collection.LoadRules(staticPath, taxonomyPath)
	if err != nil {
		return []checkResult{{name: "Collection", error: true, message: err.Error()}}
	}

	result, err := scan.New(&scan.Config{Concurrency: GetConfigInt("concurrency", 4)}).Scan(ctx, root)
	if err != nil {
		return []checkResult{{name: "Collection", error: true, message: err.Error()}}
	}

	c, err := collection.Build(rules, result.Images)
	if err != nil {
		return []checkResult{{name: "Collection", error: true, message: err.Error()}}
	}

	results := []checkResult{{
		name: "Collection",
		message: fmt.Sprintf("%s images, %d subjects, %d species",
			humanize.Comma(int64(len(result.Images))), len(c.Subjects()), c.Species()),
	}}

	if unknown := c.UnknownPins(); len(unknown) > 0 {
		results = append(results, checkResult{
			name:    "Pinned images",
			warning: true,
			message: fmt.Sprintf("unknown image keys for %s", strings.Join(unknown, ", ")),
		})
	} else {
		results = append(results, checkResult{
			name:    "Pinned images",
			message: fmt.Sprintf("%d pins resolved", len(rules.Config.Pinned)),
		})
	}

	if len(c.Sites.Unknown) > 0 {
		results = append(results, checkResult{
			name:    "Dive sites",
			warning: true,
			message: fmt.Sprintf("no region for %s", strings.Join(c.Sites.Unknown, ", ")),
		})
	}

	return results
}

// checkDiskSpace verifies available disk space
func checkDiskSpace(path string, label string) checkResult {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return checkResult{
			name:    fmt.Sprintf("Disk space (%s)", label),
			warning: true,
			message: fmt.Sprintf("cannot determine disk space: %v", err),
		}
	}

	// Available bytes = available blocks * block size
	availBytes := stat.Bavail * uint64(stat.Bsize)
	totalBytes := stat.Blocks * uint64(stat.Bsize)

	// Reports and event logs are small; warn only when nearly full
	if availBytes < 100*humanize.MiByte {
		return checkResult{
			name:    fmt.Sprintf("Disk space (%s)", label),
			warning: true,
			message: fmt.Sprintf("only %s available of %s", humanize.IBytes(availBytes), humanize.IBytes(totalBytes)),
		}
	}

	return checkResult{
		name:    fmt.Sprintf("Disk space (%s)", label),
		message: fmt.Sprintf("%s available of %s", humanize.IBytes(availBytes), humanize.IBytes(totalBytes)),
	}
}
