// Package store persists audit reports in SQLite. One table, JSON
// report bodies, metadata columns for listing without unmarshalling.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/veilmark/semdom/audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id            TEXT PRIMARY KEY,
	generated_at  INTEGER NOT NULL,
	shadow_roots  INTEGER NOT NULL,
	delegates     INTEGER NOT NULL,
	cycles        INTEGER NOT NULL,
	body          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_generated ON reports(generated_at);
`

// Store wraps the report-history database.
type Store struct {
	DB *sql.DB
}

// Open opens (creating if needed) the report database at path,
// applying the production pragmas via EXEC so they work regardless of
// driver DSN handling.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{DB: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.DB.Close() }

// InsertReport persists a report.
func (s *Store) InsertReport(ctx context.Context, r *audit.Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("store: marshal report: %w", err)
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO reports (id, generated_at, shadow_roots, delegates, cycles, body)
		VALUES (?,?,?,?,?,?)`,
		r.ID, r.GeneratedAt, r.Summary.ShadowRoots, r.Summary.Delegates,
		r.Summary.Cycles, string(body),
	)
	if err != nil {
		return fmt.Errorf("store: insert report %s: %w", r.ID, err)
	}
	return nil
}

// GetReport retrieves a report by ID. Returns (nil, nil) when absent.
func (s *Store) GetReport(ctx context.Context, id string) (*audit.Report, error) {
	var body string
	err := s.DB.QueryRowContext(ctx,
		`SELECT body FROM reports WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get report %s: %w", id, err)
	}
	var r audit.Report
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("store: unmarshal report %s: %w", id, err)
	}
	return &r, nil
}

// Meta is a report listing entry.
type Meta struct {
	ID          string `json:"id"`
	GeneratedAt int64  `json:"generated_at"`
	ShadowRoots int    `json:"shadow_roots"`
	Delegates   int    `json:"delegates"`
	Cycles      int    `json:"cycles"`
}

// ListReports returns the most recent report metadata, newest first.
func (s *Store) ListReports(ctx context.Context, limit int) ([]Meta, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, generated_at, shadow_roots, delegates, cycles
		FROM reports ORDER BY generated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list reports: %w", err)
	}
	defer rows.Close()

	var out []Meta
	for rows.Next() {
		var m Meta
		if err := rows.Scan(&m.ID, &m.GeneratedAt, &m.ShadowRoots, &m.Delegates, &m.Cycles); err != nil {
			return nil, fmt.Errorf("store: scan report row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
