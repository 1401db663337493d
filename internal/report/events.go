package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventScan   EventType = "scan"
	EventSkip   EventType = "skip"
	EventExpand EventType = "expand"
	EventMiss   EventType = "miss"
	EventPrune  EventType = "prune"
	EventError  EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event represents a single event in the pipeline
type Event struct {
	Timestamp time.Time         `json:"ts"`
	Level     EventLevel        `json:"level"`
	Event     EventType         `json:"event"`
	RunID     string            `json:"run_id,omitempty"`
	DiveID    string            `json:"dive_id,omitempty"`
	ImageKey  string            `json:"image_key,omitempty"`
	Filename  string            `json:"filename,omitempty"`
	Subject   string            `json:"subject,omitempty"`
	Tree      string            `json:"tree,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Count     int               `json:"count,omitempty"`
	Error     string            `json:"error,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file. A nil *EventLogger is valid
// and discards everything.
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	runID    string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level
// minLevel determines which events are written (e.g., LevelInfo skips LevelDebug)
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	path := filepath.Join(outputDir, fmt.Sprintf("events-%s.jsonl", timestamp))

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// SetRunID stamps every following event with the run identifier
func (l *EventLogger) SetRunID(id string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.runID = id
	l.mu.Unlock()
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RunID == "" {
		event.RunID = l.runID
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogScan logs a parsed dive directory
func (l *EventLogger) LogScan(diveID string, images, skipped int) error {
	return l.Log(&Event{
		Level:  LevelInfo,
		Event:  EventScan,
		DiveID: diveID,
		Count:  images,
		Extra: map[string]string{
			"skipped": strconv.Itoa(skipped),
		},
	})
}

// LogSkip logs a filename the label parser rejected
func (l *EventLogger) LogSkip(diveID, filename, reason string) error {
	return l.Log(&Event{
		Level:    LevelDebug,
		Event:    EventSkip,
		DiveID:   diveID,
		Filename: filename,
		Reason:   reason,
	})
}

// LogExpand logs an image whose subject named several things
func (l *EventLogger) LogExpand(imageKey, subject string, parts []string) error {
	extra := make(map[string]string, len(parts))
	for i, p := range parts {
		extra["part_"+strconv.Itoa(i)] = p
	}
	return l.Log(&Event{
		Level:    LevelDebug,
		Event:    EventExpand,
		ImageKey: imageKey,
		Subject:  subject,
		Count:    len(parts),
		Extra:    extra,
	})
}

// LogMiss logs a subject with no scientific name
func (l *EventLogger) LogMiss(subject string, images int) error {
	return l.Log(&Event{
		Level:   LevelWarning,
		Event:   EventMiss,
		Subject: subject,
		Count:   images,
	})
}

// LogPrune logs a top-level key removed for having too few images
func (l *EventLogger) LogPrune(treeName, key string, images int) error {
	return l.Log(&Event{
		Level:   LevelInfo,
		Event:   EventPrune,
		Tree:    treeName,
		Subject: key,
		Count:   images,
	})
}

// LogError logs an error event
func (l *EventLogger) LogError(event EventType, diveID string, err error) error {
	return l.Log(&Event{
		Level:  LevelError,
		Event:  event,
		DiveID: diveID,
		Error:  err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
