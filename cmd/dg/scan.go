package main

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/franz/dive-gallery/internal/dive"
	"github.com/franz/dive-gallery/internal/scan"
	"github.com/franz/dive-gallery/internal/util"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the image root and list dives",
	Long: `Read every dive directory under the image root and parse its filenames.

Each dive is listed with the number of labeled images it holds and the
number of files the label parser rejected. Rejected files are listed by
reason with --skips.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	// Scan-specific flags
	scanCmd.Flags().Bool("skips", false, "List every rejected filename")
}

func runScan(cmd *cobra.Command, args []string) error {
	showSkips, _ := cmd.Flags().GetBool("skips")

	logger := openEventLogger()
	defer logger.Close()

	m, err := newMetrics()
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	result, err := scanImages(cmd.Context(), logger, m)
	if err != nil {
		return err
	}

	printDives(result)

	if len(result.Skipped) > 0 {
		util.InfoLog("")
		util.InfoLog("Skipped files:")
		for _, reason := range skipReasons(result.Skipped) {
			util.InfoLog("  %-24s %s", reason, humanize.Comma(int64(result.Skipped[dive.SkipReason(reason)])))
		}
	}

	if showSkips {
		util.InfoLog("")
		for _, r := range result.Rejected {
			util.InfoLog("  %s/%s (%s)", r.DiveID, r.Filename, r.Reason)
		}
	}

	for _, name := range result.Ignored {
		util.WarnLog("Not a dive directory: %s", name)
	}

	writeMetrics(m)

	if len(result.Errors) > 0 {
		return fmt.Errorf("%d dive directories could not be read", len(result.Errors))
	}
	return nil
}

// printDives lists each dive with its image and skip counts
func printDives(result *scan.Result) {
	images := make(map[string]int)
	for _, img := range result.Images {
		images[img.DiveID]++
	}
	skipped := make(map[string]int)
	for _, r := range result.Rejected {
		skipped[r.DiveID]++
	}

	util.InfoLog("=== Dives ===")
	for _, d := range result.Dives {
		line := fmt.Sprintf("  %-40s %6d images", d.ID, images[d.ID])
		if n := skipped[d.ID]; n > 0 {
			line += fmt.Sprintf(", %d skipped", n)
		}
		util.InfoLog("%s", line)
	}
	util.InfoLog("")
	util.SuccessLog("%s dives, %s images, %s skipped",
		humanize.Comma(int64(len(result.Dives))),
		humanize.Comma(int64(len(result.Images))),
		humanize.Comma(int64(result.SkippedTotal())))
}

// skipReasons returns the reasons sorted by name
func skipReasons(counts map[dive.SkipReason]int) []string {
	out := make([]string, 0, len(counts))
	for reason := range counts {
		out = append(out, string(reason))
	}
	sort.Strings(out)
	return out
}
