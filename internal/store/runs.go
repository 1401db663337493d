package store

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Run is one recorded build of the collection
type Run struct {
	ID         string
	ImageRoot  string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is open
	Dives      int
	Images     int
	Skipped    int
	Subjects   int
	Misses     int
}

// Finished reports whether FinishRun was called for the run
func (r *Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Miss is a subject with no scientific name and the images it labels
type Miss struct {
	Subject string
	Images  int
}

// Skip is a filename the label parser rejected
type Skip struct {
	DiveID   string
	Filename string
	Reason   string
}

// StartRun inserts a new open run with a fresh identifier
func (s *Store) StartRun(imageRoot string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		ImageRoot: imageRoot,
		StartedAt: time.Now(),
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (id, image_root, started_unix)
		VALUES (?, ?, ?)
	`, run.ID, run.ImageRoot, run.StartedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}

	return run, nil
}

// FinishRun stores the run's counts and marks it finished
func (s *Store) FinishRun(run *Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}

	result, err := s.db.Exec(`
		UPDATE runs SET finished_unix = ?, dives = ?, images = ?,
		       skipped = ?, subjects = ?, misses = ?
		WHERE id = ?
	`, run.FinishedAt.Unix(), run.Dives, run.Images,
		run.Skipped, run.Subjects, run.Misses, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to finish run: unknown run %s", run.ID)
	}

	return nil
}

const runColumns = `id, image_root, started_unix, COALESCE(finished_unix, 0),
	dives, images, skipped, subjects, misses`

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var (
		r                 Run
		started, finished int64
	)
	err := row.Scan(&r.ID, &r.ImageRoot, &started, &finished,
		&r.Dives, &r.Images, &r.Skipped, &r.Subjects, &r.Misses)
	if err != nil {
		return nil, err
	}
	r.StartedAt = time.Unix(started, 0)
	if finished > 0 {
		r.FinishedAt = time.Unix(finished, 0)
	}
	return &r, nil
}

// GetRun retrieves a run by id, or nil when there is none
func (s *Store) GetRun(id string) (*Run, error) {
	run, err := scanRun(s.db.QueryRow(
		"SELECT "+runColumns+" FROM runs WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// PreviousRun returns the most recent finished run started before the
// given one, or nil when there is none
func (s *Store) PreviousRun(id string) (*Run, error) {
	run, err := scanRun(s.db.QueryRow(`
		SELECT `+runColumns+` FROM runs
		WHERE finished_unix IS NOT NULL
		  AND seq < (SELECT seq FROM runs WHERE id = ?)
		ORDER BY seq DESC
		LIMIT 1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get previous run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT `+runColumns+` FROM runs
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// RecordMisses stores the subjects a run could not resolve
func (s *Store) RecordMisses(runID string, misses []Miss) error {
	return s.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO misses (run_id, subject, images) VALUES (?, ?, ?)
			ON CONFLICT(run_id, subject) DO UPDATE SET images = excluded.images
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare miss insert: %w", err)
		}
		defer stmt.Close()

		for _, m := range misses {
			if _, err := stmt.Exec(runID, m.Subject, m.Images); err != nil {
				return fmt.Errorf("failed to record miss %q: %w", m.Subject, err)
			}
		}
		return nil
	})
}

// GetMisses returns a run's misses ordered by subject
func (s *Store) GetMisses(runID string) ([]Miss, error) {
	rows, err := s.db.Query(`
		SELECT subject, images FROM misses
		WHERE run_id = ?
		ORDER BY subject
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query misses: %w", err)
	}
	defer rows.Close()

	var misses []Miss
	for rows.Next() {
		var m Miss
		if err := rows.Scan(&m.Subject, &m.Images); err != nil {
			return nil, fmt.Errorf("failed to scan miss: %w", err)
		}
		misses = append(misses, m)
	}

	return misses, rows.Err()
}

// NewMisses returns the subjects missed by the run but not by the
// previous finished run. With no previous run every miss is new.
func (s *Store) NewMisses(runID string) ([]string, error) {
	current, err := s.GetMisses(runID)
	if err != nil {
		return nil, err
	}

	previous, err := s.PreviousRun(runID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	if previous != nil {
		old, err := s.GetMisses(previous.ID)
		if err != nil {
			return nil, err
		}
		for _, m := range old {
			seen[m.Subject] = true
		}
	}

	var fresh []string
	for _, m := range current {
		if !seen[m.Subject] {
			fresh = append(fresh, m.Subject)
		}
	}
	sort.Strings(fresh)

	return fresh, nil
}

// RecordSkips stores rejected filenames for a run
func (s *Store) RecordSkips(runID string, skips []Skip) error {
	return s.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR IGNORE INTO skips (run_id, dive_id, filename, reason)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare skip insert: %w", err)
		}
		defer stmt.Close()

		for _, sk := range skips {
			if _, err := stmt.Exec(runID, sk.DiveID, sk.Filename, sk.Reason); err != nil {
				return fmt.Errorf("failed to record skip %q: %w", sk.Filename, err)
			}
		}
		return nil
	})
}

// SkipCounts returns a run's rejected filenames counted by reason
func (s *Store) SkipCounts(runID string) (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT reason, COUNT(*) FROM skips
		WHERE run_id = ?
		GROUP BY reason
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query skips: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var reason string
		var n int
		if err := rows.Scan(&reason, &n); err != nil {
			return nil, fmt.Errorf("failed to scan skip count: %w", err)
		}
		counts[reason] = n
	}

	return counts, rows.Err()
}
