// Package scenecache memoizes scene-detector output in SQLite so repeated
// segmentation runs over the same asset and tunables skip the expensive
// detector pass. The cache stores collaborator output only; clips themselves
// are never persisted.
package scenecache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"shotsplit/internal/segmentation"
)

const schema = `
CREATE TABLE IF NOT EXISTS scene_intervals (
    asset_id        TEXT    NOT NULL,
    threshold       REAL    NOT NULL,
    min_scene_len   INTEGER NOT NULL,
    range_start     INTEGER NOT NULL,
    range_end       INTEGER NOT NULL,
    intervals       TEXT    NOT NULL,
    created_at      TEXT    NOT NULL,
    PRIMARY KEY (asset_id, threshold, min_scene_len, range_start, range_end)
);
`

// Store manages scene-interval persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the cache database and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk location backing the store.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Key identifies one cached detector run.
type Key struct {
	AssetID       string
	Threshold     float64
	MinSceneLenMs int64
	RangeStart    int64
	RangeEnd      int64
}

// Get returns the cached intervals for key, reporting a miss with ok=false.
func (s *Store) Get(ctx context.Context, key Key) ([]segmentation.Interval, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT intervals FROM scene_intervals
		 WHERE asset_id = ? AND threshold = ? AND min_scene_len = ? AND range_start = ? AND range_end = ?`,
		key.AssetID, key.Threshold, key.MinSceneLenMs, key.RangeStart, key.RangeEnd,
	)
	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read scene cache: %w", err)
	}
	var intervals []segmentation.Interval
	if err := json.Unmarshal([]byte(payload), &intervals); err != nil {
		return nil, false, fmt.Errorf("decode scene cache entry: %w", err)
	}
	return intervals, true, nil
}

// Put stores intervals for key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key Key, intervals []segmentation.Interval) error {
	payload, err := json.Marshal(intervals)
	if err != nil {
		return fmt.Errorf("encode scene cache entry: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO scene_intervals
		 (asset_id, threshold, min_scene_len, range_start, range_end, intervals, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		key.AssetID, key.Threshold, key.MinSceneLenMs, key.RangeStart, key.RangeEnd,
		string(payload), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("write scene cache: %w", err)
	}
	return nil
}
