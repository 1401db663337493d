package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteMarkdownReport(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "reports", "summary.md")

	report := &SummaryReport{
		GeneratedAt:    time.Now(),
		RunID:          "0b7c1f4e-run",
		DivesScanned:   42,
		ImagesParsed:   12345,
		FilesSkipped:   7,
		SkipReasons:    map[string]int{"no_separator": 5, "hidden": 2},
		ImagesExpanded: 3,
		ImagesIgnored:  4,
		ImagesPruned:   5,
		PrunedKeys:     []string{"seagull"},
		Subjects:       120,
		Species:        80,
		Sites:          15,
		Missing:        []SubjectInfo{{Name: "purple sea urchin", Images: 3}},
		Incomplete:     []SubjectInfo{{Name: "rock fish", Scientific: "Sebastes sp.", Images: 9}},
		Imprecise:      []SubjectInfo{{Name: "fish", Images: 2}},
		NewMisses:      []string{"purple sea urchin"},
		UnknownSites:   []string{"Blue Heron Bridge"},
		DatabasePath:   "/test/ledger.db",
		EventLogPath:   "/test/events.jsonl",
	}

	if err := WriteMarkdownReport(report, outputPath); err != nil {
		t.Fatalf("WriteMarkdownReport failed: %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read report file: %v", err)
	}
	contentStr := string(content)

	for _, want := range []string{
		"# Dive Gallery - Summary Report",
		"## 📊 Overview",
		"| Images Parsed | 12,345 |",
		"| no_separator | 5 |",
		"*Pruned:* seagull",
		"Missing Scientific Names (1)",
		"| rock fish | Sebastes sp. | 9 |",
		"| fish | 2 |",
		"## 🆕 Newly Missing Since Last Run",
		"- Blue Heron Bridge",
		"/test/ledger.db",
		"`0b7c1f4e-run`",
	} {
		if !strings.Contains(contentStr, want) {
			t.Errorf("Report missing %q", want)
		}
	}
}

func TestMarkdownReportStructure(t *testing.T) {
	report := &SummaryReport{
		GeneratedAt:  time.Now(),
		DivesScanned: 1,
		ImagesParsed: 10,
	}

	contentStr := RenderMarkdown(report)
	lines := strings.Split(contentStr, "\n")

	headerCount := 0
	tableCount := 0
	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			headerCount++
		}
		if strings.Contains(line, "|") {
			tableCount++
		}
	}

	if headerCount < 2 {
		t.Errorf("Expected at least 2 headers, got %d", headerCount)
	}
	if tableCount < 3 {
		t.Errorf("Expected at least 3 table rows, got %d", tableCount)
	}
	if strings.Contains(contentStr, "Missing Scientific Names") {
		t.Error("Empty sections should be omitted")
	}
	if !strings.Contains(contentStr, "Generated by") {
		t.Error("Report missing footer")
	}
}

func TestSortSubjects(t *testing.T) {
	subjects := []SubjectInfo{
		{Name: "b", Images: 1},
		{Name: "a", Images: 1},
		{Name: "c", Images: 5},
	}
	SortSubjects(subjects)

	got := []string{subjects[0].Name, subjects[1].Name, subjects[2].Name}
	if strings.Join(got, ",") != "c,a,b" {
		t.Errorf("SortSubjects order = %v, expected [c a b]", got)
	}
}

func TestTruncatePath(t *testing.T) {
	testCases := []struct {
		name   string
		path   string
		maxLen int
	}{
		{"Short path - no truncation", "/dives/2020-09-04 Metridium", 50},
		{"Long path - truncate middle", "/very/long/path/to/some/dive/collection/2020-09-04 Metridium", 30},
		{"Exactly at limit", "/dives/test.jpg", 15},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := truncatePath(tc.path, tc.maxLen)

			if len(result) > tc.maxLen {
				t.Errorf("Result length %d exceeds maxLen %d", len(result), tc.maxLen)
			}
			if len(tc.path) > tc.maxLen && !strings.Contains(result, "...") {
				t.Error("Expected truncated path to contain '...'")
			}
			if len(tc.path) <= tc.maxLen && result != tc.path {
				t.Errorf("Short path should not be truncated: expected '%s', got '%s'", tc.path, result)
			}
		})
	}
}
