package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// SummaryReport represents a complete summary report
type SummaryReport struct {
	GeneratedAt time.Time
	Duration    time.Duration
	RunID       string

	// Scan statistics
	DivesScanned int
	ImagesParsed int
	FilesSkipped int
	SkipReasons  map[string]int
	ScanErrors   int

	// Gallery statistics
	ImagesExpanded int
	ImagesIgnored  int
	ImagesPruned   int
	PrunedKeys     []string
	Subjects       int
	Species        int
	Sites          int
	UnknownSites   []string

	// Details
	Imprecise  []SubjectInfo
	Missing    []SubjectInfo
	Incomplete []SubjectInfo
	NewMisses  []string

	// Metadata
	ImageRoot    string
	DatabasePath string
	EventLogPath string
}

// SubjectInfo describes one subject listed in the report
type SubjectInfo struct {
	Name       string
	Scientific string
	Images     int
}

// SortSubjects orders subjects by image count, most first, then by name
func SortSubjects(subjects []SubjectInfo) {
	sort.SliceStable(subjects, func(i, j int) bool {
		if subjects[i].Images != subjects[j].Images {
			return subjects[i].Images > subjects[j].Images
		}
		return subjects[i].Name < subjects[j].Name
	})
}

// WriteMarkdownReport writes the summary report as Markdown
func WriteMarkdownReport(report *SummaryReport, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(RenderMarkdown(report)), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// RenderMarkdown formats the summary report as Markdown
func RenderMarkdown(report *SummaryReport) string {
	var md strings.Builder

	// Header
	md.WriteString("# Dive Gallery - Summary Report\n\n")
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05")))

	if report.RunID != "" {
		md.WriteString(fmt.Sprintf("**Run:** `%s`\n\n", report.RunID))
	}
	if report.ImageRoot != "" {
		md.WriteString(fmt.Sprintf("**Images:** `%s`\n\n", truncatePath(report.ImageRoot, 80)))
	}
	if report.DatabasePath != "" {
		md.WriteString(fmt.Sprintf("**Database:** `%s`\n\n", report.DatabasePath))
	}
	if report.EventLogPath != "" {
		md.WriteString(fmt.Sprintf("**Event Log:** `%s`\n\n", report.EventLogPath))
	}

	md.WriteString("---\n\n")

	// Overview
	md.WriteString("## 📊 Overview\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| Dives Scanned | %s |\n", humanize.Comma(int64(report.DivesScanned))))
	md.WriteString(fmt.Sprintf("| Images Parsed | %s |\n", humanize.Comma(int64(report.ImagesParsed))))
	if report.FilesSkipped > 0 {
		md.WriteString(fmt.Sprintf("| Files Skipped | %s |\n", humanize.Comma(int64(report.FilesSkipped))))
	}
	if report.ScanErrors > 0 {
		md.WriteString(fmt.Sprintf("| Scan Errors | %d |\n", report.ScanErrors))
	}
	md.WriteString(fmt.Sprintf("| Subjects | %s |\n", humanize.Comma(int64(report.Subjects))))
	md.WriteString(fmt.Sprintf("| Species With Images | %s |\n", humanize.Comma(int64(report.Species))))
	md.WriteString(fmt.Sprintf("| Sites | %s |\n", humanize.Comma(int64(report.Sites))))
	if report.Duration > 0 {
		md.WriteString(fmt.Sprintf("| Duration | %s |\n", report.Duration.Round(time.Millisecond)))
	}
	md.WriteString("\n")

	// Skips
	if len(report.SkipReasons) > 0 {
		md.WriteString("## ⏭️ Skipped Files\n\n")
		md.WriteString("| Reason | Count |\n")
		md.WriteString("|--------|-------|\n")
		reasons := make([]string, 0, len(report.SkipReasons))
		for reason := range report.SkipReasons {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			md.WriteString(fmt.Sprintf("| %s | %d |\n", reason, report.SkipReasons[reason]))
		}
		md.WriteString("\n")
	}

	// Gallery
	md.WriteString("## 🐙 Gallery\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| Records Added by Expansion | %d |\n", report.ImagesExpanded))
	md.WriteString(fmt.Sprintf("| Records Ignored | %d |\n", report.ImagesIgnored))
	md.WriteString(fmt.Sprintf("| Records Pruned | %d |\n", report.ImagesPruned))
	md.WriteString("\n")
	if len(report.PrunedKeys) > 0 {
		md.WriteString(fmt.Sprintf("*Pruned:* %s\n\n", strings.Join(report.PrunedKeys, ", ")))
	}

	writeSubjects(&md, "❓ Missing Scientific Names", report.Missing, false)
	writeSubjects(&md, "🔎 Incomplete Identifications", report.Incomplete, true)
	writeSubjects(&md, "🌫️ Imprecise Subjects", report.Imprecise, false)

	// New misses
	if len(report.NewMisses) > 0 {
		md.WriteString("## 🆕 Newly Missing Since Last Run\n\n")
		for _, name := range report.NewMisses {
			md.WriteString(fmt.Sprintf("- %s\n", name))
		}
		md.WriteString("\n")
	}

	// Unknown sites
	if len(report.UnknownSites) > 0 {
		md.WriteString("## 🗺️ Sites Without a Region\n\n")
		for _, site := range report.UnknownSites {
			md.WriteString(fmt.Sprintf("- %s\n", site))
		}
		md.WriteString("\n")
	}

	// Footer
	md.WriteString("---\n\n")
	md.WriteString("*Generated by dg - Dive Gallery*\n")

	return md.String()
}

func writeSubjects(md *strings.Builder, title string, subjects []SubjectInfo, withScientific bool) {
	if len(subjects) == 0 {
		return
	}

	md.WriteString(fmt.Sprintf("## %s (%d)\n\n", title, len(subjects)))
	if withScientific {
		md.WriteString("| Subject | Scientific | Images |\n")
		md.WriteString("|---------|------------|--------|\n")
		for _, s := range subjects {
			md.WriteString(fmt.Sprintf("| %s | %s | %d |\n", s.Name, s.Scientific, s.Images))
		}
	} else {
		md.WriteString("| Subject | Images |\n")
		md.WriteString("|---------|--------|\n")
		for _, s := range subjects {
			md.WriteString(fmt.Sprintf("| %s | %d |\n", s.Name, s.Images))
		}
	}
	md.WriteString("\n")
}

// truncatePath truncates a file path to a maximum length
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	// Truncate from the middle, keeping start and end
	start := maxLen/2 - 2
	end := len(path) - (maxLen/2 - 2)
	return path[:start] + "..." + path[end:]
}
