package collection

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/franz/dive-gallery/internal/metrics"
	"github.com/franz/dive-gallery/internal/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecord(t *testing.T) {
	c := testCollection(t)

	logger, err := report.NewEventLogger(t.TempDir(), report.LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	registry := prometheus.NewRegistry()
	collector, err := metrics.New(registry)
	if err != nil {
		t.Fatalf("metrics.New failed: %v", err)
	}

	c.Record(logger, collector, c.Classify())
	logger.Close()

	file, err := os.Open(logger.Path())
	if err != nil {
		t.Fatalf("Failed to open event log: %v", err)
	}
	defer file.Close()

	counts := make(map[report.EventType]int)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var event report.Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			t.Fatalf("Invalid JSON line: %v", err)
		}
		counts[event.Event]++
	}

	if counts[report.EventExpand] != 1 || counts[report.EventMiss] != 1 {
		t.Errorf("event counts = %v, expected one expand and one miss", counts)
	}

	expected := `
# HELP dg_lookup_misses_total Subjects without a scientific name
# TYPE dg_lookup_misses_total counter
dg_lookup_misses_total 1
`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "dg_lookup_misses_total"); err != nil {
		t.Errorf("Unexpected metrics: %v", err)
	}
}

func TestRecordNilSinks(t *testing.T) {
	c := testCollection(t)

	// Should not panic
	c.Record(report.NullLogger(), nil, c.Classify())
	c.Record(nil, nil, nil)
}
