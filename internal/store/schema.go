package store

// migrations are applied in order; the schema version is the number of
// migrations applied, kept in PRAGMA user_version
var migrations = []string{schemaV1, schemaV2}

// Schema v1 - runs and the subjects each run could not resolve
const schemaV1 = `
-- One row per CLI run that built the collection
CREATE TABLE IF NOT EXISTS runs (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT UNIQUE NOT NULL,
  image_root TEXT NOT NULL DEFAULT '',
  started_unix INTEGER NOT NULL,
  finished_unix INTEGER,
  dives INTEGER NOT NULL DEFAULT 0,
  images INTEGER NOT NULL DEFAULT 0,
  skipped INTEGER NOT NULL DEFAULT 0,
  subjects INTEGER NOT NULL DEFAULT 0,
  misses INTEGER NOT NULL DEFAULT 0
);

-- Subjects without a scientific name, per run
CREATE TABLE IF NOT EXISTS misses (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  subject TEXT NOT NULL,
  images INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (run_id, subject)
);
`

// Schema v2 - filenames the label parser rejected, per run
const schemaV2 = `
CREATE TABLE IF NOT EXISTS skips (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  dive_id TEXT NOT NULL,
  filename TEXT NOT NULL,
  reason TEXT NOT NULL,
  PRIMARY KEY (run_id, dive_id, filename)
);

CREATE INDEX IF NOT EXISTS idx_skips_reason ON skips(run_id, reason);
CREATE INDEX IF NOT EXISTS idx_runs_finished ON runs(finished_unix);
`
