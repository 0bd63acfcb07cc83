package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/coursedocs/internal/apperr"
	"github.com/starford/coursedocs/internal/models"
)

// SearchResult represents one search hit.
type SearchResult struct {
	Path     string          `json:"path"`
	Name     string          `json:"name"`
	Category models.Category `json:"category"`
	Snippet  string          `json:"snippet"`
}

const documentColumns = `path, name, category, layers, sources, checksum, run_id, updated_at`

// UpsertDocument inserts or replaces a manifest row and its FTS entry within a transaction.
func (db *DB) UpsertDocument(d models.DocumentMeta, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	layersJSON, _ := json.Marshal(nonNil(d.ArchitectureLayers))
	sourcesJSON, _ := json.Marshal(nonNil(d.Sources))
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = time.Now().UTC()
	}

	_, err = tx.Exec(`
		INSERT INTO documents (path, name, category, layers, sources, checksum, body, run_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name       = excluded.name,
			category   = excluded.category,
			layers     = excluded.layers,
			sources    = excluded.sources,
			checksum   = excluded.checksum,
			body       = excluded.body,
			run_id     = excluded.run_id,
			updated_at = excluded.updated_at
	`, d.Path, d.Name, string(d.Category), string(layersJSON), string(sourcesJSON), d.Checksum, body, d.RunID, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	if err := ftsUpsert(tx, d.Path, d.Name, body); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteDocument removes a manifest row and its FTS entry.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	if _, err := tx.Exec(`DELETE FROM documents WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete document: %w", err)
	}

	return tx.Commit()
}

// GetDocument returns the manifest row for path or apperr.ErrNotFound.
func (db *DB) GetDocument(path string) (*models.DocumentMeta, error) {
	row := db.conn.QueryRow(`SELECT `+documentColumns+` FROM documents WHERE path = ?`, path)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: document %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	return d, nil
}

// ListDocuments returns every manifest row ordered by path. A non-empty
// category restricts the result to that category.
func (db *DB) ListDocuments(category models.Category) ([]models.DocumentMeta, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY path`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	out := []models.DocumentMeta{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("index: scan document: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// AllChecksums returns path → checksum for every manifest row.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*models.DocumentMeta, error) {
	var (
		d                     models.DocumentMeta
		category, layers, src string
	)
	if err := s.Scan(&d.Path, &d.Name, &category, &layers, &src, &d.Checksum, &d.RunID, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Category = models.Category(category)
	if err := json.Unmarshal([]byte(layers), &d.ArchitectureLayers); err != nil {
		return nil, fmt.Errorf("decode layers of %s: %w", d.Path, err)
	}
	if err := json.Unmarshal([]byte(src), &d.Sources); err != nil {
		return nil, fmt.Errorf("decode sources of %s: %w", d.Path, err)
	}
	d.ArchitectureLayers = nonNil(d.ArchitectureLayers)
	d.Sources = nonNil(d.Sources)
	return &d, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
