package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestNewEventLogger(t *testing.T) {
	tmpDir := t.TempDir()

	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	defer logger.Close()

	if logger.path == "" {
		t.Error("EventLogger path is empty")
	}

	if _, err := os.Stat(logger.path); os.IsNotExist(err) {
		t.Errorf("Event log file was not created at %s", logger.path)
	}

	filename := filepath.Base(logger.path)
	if len(filename) < len("events-20060102-150405.jsonl") {
		t.Errorf("Event log filename format incorrect: %s", filename)
	}
}

// readEvents closes the logger and decodes every line of its file
func readEvents(t *testing.T, logger *EventLogger) []Event {
	t.Helper()
	logger.Close()

	file, err := os.Open(logger.path)
	if err != nil {
		t.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var decoded Event
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("Line %d is not valid JSON: %v", len(events)+1, err)
		}
		events = append(events, decoded)
	}
	return events
}

func TestEventLogger_Log(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}

	event := &Event{
		Timestamp: time.Now(),
		Level:     LevelInfo,
		Event:     EventScan,
		DiveID:    "2020-09-04 Metridium",
		Count:     12,
	}
	if err := logger.Log(event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events := readEvents(t, logger)
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].DiveID != "2020-09-04 Metridium" {
		t.Errorf("Expected dive_id '2020-09-04 Metridium', got '%s'", events[0].DiveID)
	}
	if events[0].Count != 12 {
		t.Errorf("Expected count 12, got %d", events[0].Count)
	}
}

func TestEventLogger_MinLevel(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelInfo)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}

	logger.LogSkip("2020-09-04 Metridium", "notes.txt", "unsupported_extension")
	logger.LogMiss("purple sea urchin", 3)

	events := readEvents(t, logger)
	if len(events) != 1 || events[0].Event != EventMiss {
		t.Errorf("Expected only the miss event, got %+v", events)
	}
}

func TestEventLogger_Helpers(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	logger.SetRunID("run-1")

	logger.LogScan("2020-09-04 Metridium", 10, 2)
	logger.LogSkip("2020-09-04 Metridium", ".DS_Store", "hidden")
	logger.LogExpand("2020-09-04 Metridium:042", "Fish and Coral", []string{"Fish", "Coral"})
	logger.LogMiss("purple sea urchin", 3)
	logger.LogPrune("gallery", "seagull", 1)
	logger.LogError(EventScan, "2020-09-04 Metridium", errors.New("permission denied"))

	events := readEvents(t, logger)
	if len(events) != 6 {
		t.Fatalf("Expected 6 events, got %d", len(events))
	}

	tests := []struct {
		event EventType
		level EventLevel
	}{
		{EventScan, LevelInfo},
		{EventSkip, LevelDebug},
		{EventExpand, LevelDebug},
		{EventMiss, LevelWarning},
		{EventPrune, LevelInfo},
		{EventScan, LevelError},
	}
	for i, tt := range tests {
		if events[i].Event != tt.event || events[i].Level != tt.level {
			t.Errorf("event %d = %s/%s, expected %s/%s", i, events[i].Event, events[i].Level, tt.event, tt.level)
		}
		if events[i].RunID != "run-1" {
			t.Errorf("event %d run_id = %q, expected run-1", i, events[i].RunID)
		}
	}

	if events[0].Extra["skipped"] != "2" {
		t.Errorf("Expected skipped '2', got '%s'", events[0].Extra["skipped"])
	}
	if events[1].Reason != "hidden" {
		t.Errorf("Expected reason 'hidden', got '%s'", events[1].Reason)
	}
	if events[2].Extra["part_1"] != "Coral" {
		t.Errorf("Expected part_1 'Coral', got '%s'", events[2].Extra["part_1"])
	}
	if events[4].Tree != "gallery" || events[4].Subject != "seagull" {
		t.Errorf("Unexpected prune event: %+v", events[4])
	}
	if events[5].Error != "permission denied" {
		t.Errorf("Expected error message, got '%s'", events[5].Error)
	}
}

func TestEventLogger_ConcurrentWrites(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}

	const numGoroutines = 10
	const eventsPerGoroutine = 20

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < eventsPerGoroutine; j++ {
				if err := logger.LogScan("2020-09-04 Metridium", j, 0); err != nil {
					t.Errorf("Concurrent log failed: %v", err)
				}
			}
		}()
	}

	wg.Wait()

	events := readEvents(t, logger)
	expected := numGoroutines * eventsPerGoroutine
	if len(events) != expected {
		t.Errorf("Expected %d events, got %d", expected, len(events))
	}
}

func TestEventLogger_NullLogger(t *testing.T) {
	logger := NullLogger()

	// Should not panic
	if err := logger.Log(&Event{Level: LevelInfo, Event: EventScan}); err != nil {
		t.Errorf("NullLogger.Log should not return error, got: %v", err)
	}
	if err := logger.LogMiss("fish", 1); err != nil {
		t.Errorf("NullLogger.LogMiss should not return error, got: %v", err)
	}
	logger.SetRunID("ignored")
	if err := logger.Close(); err != nil {
		t.Errorf("NullLogger.Close should not return error, got: %v", err)
	}
	if path := logger.Path(); path != "" {
		t.Errorf("NullLogger.Path should return empty string, got: %s", path)
	}
}

func TestEventLogger_AutoTimestamp(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}

	if err := logger.Log(&Event{Level: LevelInfo, Event: EventScan}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events := readEvents(t, logger)
	if len(events) != 1 || events[0].Timestamp.IsZero() {
		t.Fatal("Expected timestamp to be auto-set")
	}
	if time.Since(events[0].Timestamp) > 5*time.Second {
		t.Errorf("Timestamp is too old: %v", events[0].Timestamp)
	}
}
