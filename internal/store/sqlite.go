package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/web4labs/trustsim/internal/engine"
	"github.com/web4labs/trustsim/internal/models"
)

// SQLiteRunStore implements RunStore using SQLite for persistence.
type SQLiteRunStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteRunStore creates a run store rooted at dir. The database lives
// at dir/trustsim.db; dir is created if missing.
func NewSQLiteRunStore(dir string) (*SQLiteRunStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	dbPath := filepath.Join(dir, "trustsim.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRunStore{db: db}, nil
}

// newRunID derives a unique run identifier from the current time.
func newRunID() string {
	return fmt.Sprintf("run-%d", time.Now().UnixNano())
}

// SaveEngineRun persists a single-agent result and returns its run ID.
func (s *SQLiteRunStore) SaveEngineRun(ctx context.Context, result engine.Result) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaryJSON, err := json.Marshal(result.Summary)
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}

	runID := newRunID()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, kind, created_at, seed, summary) VALUES (?, ?, ?, ?, ?)`,
		runID, RunKindEngine, time.Now().UTC().Format(time.RFC3339Nano), result.Summary.Seed, string(summaryJSON))
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for _, life := range result.Lives {
		payload, err := json.Marshal(life)
		if err != nil {
			return "", fmt.Errorf("failed to marshal life %d: %w", life.LifeNumber, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO lives (run_id, life_number, payload) VALUES (?, ?, ?)`,
			runID, life.LifeNumber, string(payload))
		if err != nil {
			return "", fmt.Errorf("failed to insert life %d: %w", life.LifeNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// SaveNetworkRun persists a network run's snapshots and returns its run ID.
func (s *SQLiteRunStore) SaveNetworkRun(ctx context.Context, seed int64, snapshots []models.TickSnapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID := newRunID()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, kind, created_at, seed, summary) VALUES (?, ?, ?, ?, NULL)`,
		runID, RunKindNetwork, time.Now().UTC().Format(time.RFC3339Nano), seed)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for _, snap := range snapshots {
		payload, err := json.Marshal(snap)
		if err != nil {
			return "", fmt.Errorf("failed to marshal snapshot %d: %w", snap.Tick, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO snapshots (run_id, tick, payload) VALUES (?, ?, ?)`,
			runID, snap.Tick, string(payload))
		if err != nil {
			return "", fmt.Errorf("failed to insert snapshot %d: %w", snap.Tick, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// GetRun returns a run's metadata.
func (s *SQLiteRunStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, created_at, seed, summary FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns all stored runs, newest first.
func (s *SQLiteRunStore) ListRuns(ctx context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, created_at, seed, summary FROM runs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var createdAt string
	var summary sql.NullString

	if err := row.Scan(&run.ID, &run.Kind, &createdAt, &run.Seed, &summary); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	run.CreatedAt = ts

	if summary.Valid && summary.String != "" {
		var sum engine.Summary
		if err := json.Unmarshal([]byte(summary.String), &sum); err != nil {
			return nil, fmt.Errorf("invalid summary payload: %w", err)
		}
		run.Summary = &sum
	}

	return &run, nil
}

// LoadLives returns an engine run's life records in life order.
func (s *SQLiteRunStore) LoadLives(ctx context.Context, runID string) ([]models.Life, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM lives WHERE run_id = ? ORDER BY life_number`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lives for %s: %w", runID, err)
	}
	defer rows.Close()

	var lives []models.Life
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan life: %w", err)
		}
		var life models.Life
		if err := json.Unmarshal([]byte(payload), &life); err != nil {
			return nil, fmt.Errorf("invalid life payload: %w", err)
		}
		lives = append(lives, life)
	}
	return lives, rows.Err()
}

// LoadSnapshots returns a network run's snapshots in tick order.
func (s *SQLiteRunStore) LoadSnapshots(ctx context.Context, runID string) ([]models.TickSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM snapshots WHERE run_id = ? ORDER BY tick`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots for %s: %w", runID, err)
	}
	defer rows.Close()

	var snapshots []models.TickSnapshot
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		var snap models.TickSnapshot
		if err := json.Unmarshal([]byte(payload), &snap); err != nil {
			return nil, fmt.Errorf("invalid snapshot payload: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// SaveMoments replaces the stored moments for a run, preserving their
// ranked order.
func (s *SQLiteRunStore) SaveMoments(ctx context.Context, runID string, moments []models.Moment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM moments WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to clear moments for %s: %w", runID, err)
	}

	for rank, m := range moments {
		payload, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to marshal moment %s: %w", m.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO moments (run_id, rank, payload) VALUES (?, ?, ?)`,
			runID, rank, string(payload))
		if err != nil {
			return fmt.Errorf("failed to insert moment %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit moments: %w", err)
	}
	return nil
}

// LoadMoments returns a run's moments in their stored rank order.
func (s *SQLiteRunStore) LoadMoments(ctx context.Context, runID string) ([]models.Moment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM moments WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load moments for %s: %w", runID, err)
	}
	defer rows.Close()

	var moments []models.Moment
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan moment: %w", err)
		}
		var m models.Moment
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			return nil, fmt.Errorf("invalid moment payload: %w", err)
		}
		moments = append(moments, m)
	}
	return moments, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteRunStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
