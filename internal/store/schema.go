package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema. Records are stored as JSON payloads keyed by run; the relational
// columns exist only for listing and lookup.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	seed       INTEGER NOT NULL,
	summary    TEXT
);

CREATE TABLE IF NOT EXISTS lives (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	life_number INTEGER NOT NULL,
	payload     TEXT NOT NULL,
	PRIMARY KEY (run_id, life_number)
);

CREATE TABLE IF NOT EXISTS snapshots (
	run_id  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	tick    INTEGER NOT NULL,
	payload TEXT NOT NULL,
	PRIMARY KEY (run_id, tick)
);

CREATE TABLE IF NOT EXISTS moments (
	run_id  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	rank    INTEGER NOT NULL,
	payload TEXT NOT NULL,
	PRIMARY KEY (run_id, rank)
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// InitSchema creates the tables if they do not exist.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
