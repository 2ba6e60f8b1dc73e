// Package store persists workbook metadata and finished analysis runs in
// sqlite. Persistence is optional: the CLI opens a store only when a
// database path is configured.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"sheetlens/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS files (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	sheet_count INTEGER NOT NULL DEFAULT 0,
	row_count   INTEGER NOT NULL DEFAULT 0,
	uploaded_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS analyses (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL UNIQUE,
	file_id    INTEGER NOT NULL,
	provider   TEXT NOT NULL DEFAULT '',
	result     TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_analyses_run_id ON analyses(run_id);
CREATE INDEX IF NOT EXISTS idx_analyses_file_id ON analyses(file_id);
`

// Store wraps the sqlite database holding files and analyses.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveFile records a workbook's identity and returns its row id.
func (s *Store) SaveFile(info model.FileInfo) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO files (name, sheet_count, row_count) VALUES (?, ?, ?)`,
		info.Name, len(info.Sheets), info.Rows,
	)
	if err != nil {
		return 0, fmt.Errorf("save file: %w", err)
	}
	return res.LastInsertId()
}

// SaveRun stores one finished analysis as a JSON blob keyed by its run id.
func (s *Store) SaveRun(fileID int64, runID, provider string, result *model.HybridResult) error {
	blob, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO analyses (run_id, file_id, provider, result) VALUES (?, ?, ?, ?)`,
		runID, fileID, provider, string(blob),
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// GetRun loads a stored analysis by run id.
func (s *Store) GetRun(runID string) (*model.HybridResult, error) {
	var blob string
	err := s.db.QueryRow(`SELECT result FROM analyses WHERE run_id = ?`, runID).Scan(&blob)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	var result model.HybridResult
	if err := json.Unmarshal([]byte(blob), &result); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return &result, nil
}

// Run summarizes one stored analysis for listings.
type Run struct {
	RunID     string
	FileName  string
	Provider  string
	CreatedAt time.Time
}

// ListRuns returns the most recent stored runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT a.run_id, f.name, a.provider, a.created_at
		 FROM analyses a
		 JOIN files f ON f.id = a.file_id
		 ORDER BY a.created_at DESC, a.id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.FileName, &r.Provider, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// DeleteRun removes one stored analysis.
func (s *Store) DeleteRun(runID string) error {
	res, err := s.db.Exec(`DELETE FROM analyses WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// DeleteFile removes a workbook and every analysis stored against it.
func (s *Store) DeleteFile(fileID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM analyses WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("delete analyses: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM files WHERE id = ?`, fileID); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return tx.Commit()
}
