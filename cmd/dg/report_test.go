package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/franz/dive-gallery/internal/collection"
	"github.com/franz/dive-gallery/internal/dive"
	"github.com/franz/dive-gallery/internal/report"
	"github.com/franz/dive-gallery/internal/scan"
	"github.com/franz/dive-gallery/internal/store"
)

// testBuild returns a small collection and the scan result it came from
func testBuild(t *testing.T) (*collection.Collection, *scan.Result) {
	t.Helper()
	const diveID = "2020-09-04 Metridium"
	subjects := []string{"Giant Pacific Octopus", "Giant Pacific Octopus", "Purple Urchin", "Copper Rockfish"}

	var images []*dive.Image
	for i, s := range subjects {
		images = append(images, &dive.Image{
			Sequence:   "00" + string(rune('1'+i)),
			RawSubject: s,
			DiveID:     diveID,
			Filename:   "00" + string(rune('1'+i)) + " - " + s + ".jpg",
			Index:      i,
			Total:      len(subjects),
		})
	}

	d, err := dive.ParseDiveID(diveID)
	if err != nil {
		t.Fatalf("ParseDiveID() failed: %v", err)
	}
	result := &scan.Result{
		Root:    "/dives",
		Dives:   []dive.Dive{d},
		Images:  images,
		Skipped: map[dive.SkipReason]int{dive.SkipNoDash: 1},
		Rejected: []scan.Rejection{
			{DiveID: diveID, Filename: "IMG_0042.jpg", Reason: dive.SkipNoDash},
		},
	}

	c, err := collection.Build(testRules(t), images)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return c, result
}

func TestNewSummary(t *testing.T) {
	c, result := testBuild(t)
	classes := c.Classify()

	summary := newSummary(c, result, classes)

	if summary.DivesScanned != 1 || summary.ImagesParsed != 4 || summary.FilesSkipped != 1 {
		t.Errorf("counts = %d dives, %d images, %d skipped; expected 1, 4, 1",
			summary.DivesScanned, summary.ImagesParsed, summary.FilesSkipped)
	}
	if !reflect.DeepEqual(summary.SkipReasons, map[string]int{"no_separator": 1}) {
		t.Errorf("SkipReasons = %v", summary.SkipReasons)
	}
	if summary.ImageRoot != "/dives" {
		t.Errorf("ImageRoot = %q, expected /dives", summary.ImageRoot)
	}
	if summary.Subjects != len(c.Subjects()) {
		t.Errorf("Subjects = %d, expected %d", summary.Subjects, len(c.Subjects()))
	}

	expected := []report.SubjectInfo{{Name: "purple urchin", Images: 1}}
	if !reflect.DeepEqual(summary.Missing, expected) {
		t.Errorf("Missing = %+v, expected %+v", summary.Missing, expected)
	}
}

func TestRecordRun(t *testing.T) {
	c, result := testBuild(t)
	classes := c.Classify()

	db, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	defer db.Close()

	record := func(classes *collection.Classification) (*store.Run, []string) {
		t.Helper()
		run, err := db.StartRun(result.Root)
		if err != nil {
			t.Fatalf("StartRun() failed: %v", err)
		}
		newMisses, err := recordRun(db, run, c, result, classes)
		if err != nil {
			t.Fatalf("recordRun() failed: %v", err)
		}
		return run, newMisses
	}

	// First run: every miss is new
	run, newMisses := record(classes)
	if !reflect.DeepEqual(newMisses, []string{"purple urchin"}) {
		t.Errorf("first run new misses = %q, expected [purple urchin]", newMisses)
	}

	stored, err := db.GetRun(run.ID)
	if err != nil || stored == nil {
		t.Fatalf("GetRun() = %v, %v", stored, err)
	}
	if !stored.Finished() || stored.Images != 4 || stored.Skipped != 1 || stored.Misses != 1 {
		t.Errorf("stored run = %+v", stored)
	}

	skips, err := db.SkipCounts(run.ID)
	if err != nil {
		t.Fatalf("SkipCounts() failed: %v", err)
	}
	if !reflect.DeepEqual(skips, map[string]int{"no_separator": 1}) {
		t.Errorf("SkipCounts() = %v", skips)
	}

	// Same misses again: nothing new
	if _, newMisses := record(classes); len(newMisses) != 0 {
		t.Errorf("second run new misses = %q, expected none", newMisses)
	}

	// A new miss appears
	more := &collection.Classification{
		Missing: append(append([]report.SubjectInfo(nil), classes.Missing...),
			report.SubjectInfo{Name: "wolf eel", Images: 2}),
	}
	if _, newMisses := record(more); !reflect.DeepEqual(newMisses, []string{"wolf eel"}) {
		t.Errorf("third run new misses = %q, expected [wolf eel]", newMisses)
	}
}

func TestWriteSearchIndex(t *testing.T) {
	c, _ := testBuild(t)
	path := filepath.Join(t.TempDir(), "out", "search.json")

	if err := writeSearchIndex(c.SearchIndex(), path); err != nil {
		t.Fatalf("writeSearchIndex() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read search index: %v", err)
	}
	var rows []collection.SearchRow
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatalf("search index is not valid JSON: %v", err)
	}
	if !reflect.DeepEqual(rows, c.SearchIndex()) {
		t.Errorf("rows = %+v, expected %+v", rows, c.SearchIndex())
	}
	if len(rows) == 0 || rows[0].Count != 2 {
		t.Errorf("expected the octopus row first, got %+v", rows)
	}
}

func TestSelectTree(t *testing.T) {
	c, _ := testBuild(t)

	tests := []struct {
		name     string
		expected interface{}
	}{
		{"gallery", c.Gallery.Tree},
		{"taxonomy", c.Taxonomy},
		{"sites", c.Sites.Tree},
	}
	for _, tt := range tests {
		got, err := selectTree(c, tt.name)
		if err != nil {
			t.Errorf("selectTree(%q) failed: %v", tt.name, err)
			continue
		}
		if interface{}(got) != tt.expected {
			t.Errorf("selectTree(%q) returned the wrong tree", tt.name)
		}
	}

	if _, err := selectTree(c, "bogus"); err == nil {
		t.Error("selectTree(bogus) expected an error")
	}
}
