package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/coursedocs/internal/apperr"
)

// RunRow summarises one pipeline run.
type RunRow struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Transcripts int       `json:"transcripts"`
	Skipped     int       `json:"skipped"`
	Groups      int       `json:"groups"`
	Written     int       `json:"written"`
	Unchanged   int       `json:"unchanged"`
	Pruned      int       `json:"pruned"`
}

// RecordRun stores a run summary.
func (db *DB) RecordRun(r RunRow) error {
	_, err := db.conn.Exec(`
		INSERT INTO runs (id, started_at, finished_at, transcripts, skipped, groups, written, unchanged, pruned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.StartedAt, r.FinishedAt, r.Transcripts, r.Skipped, r.Groups, r.Written, r.Unchanged, r.Pruned)
	if err != nil {
		return fmt.Errorf("index: record run: %w", err)
	}
	return nil
}

// LatestRun returns the most recently started run or apperr.ErrNotFound.
func (db *DB) LatestRun() (*RunRow, error) {
	var r RunRow
	err := db.conn.QueryRow(`
		SELECT id, started_at, finished_at, transcripts, skipped, groups, written, unchanged, pruned
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`).Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Transcripts, &r.Skipped, &r.Groups, &r.Written, &r.Unchanged, &r.Pruned)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: latest run: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: latest run: %w", err)
	}
	return &r, nil
}
