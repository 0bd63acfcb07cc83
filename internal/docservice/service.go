// Package docservice is the read-side domain layer over generated documents,
// shared by the REST API and the MCP server.
package docservice

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/starford/coursedocs/internal/apperr"
	"github.com/starford/coursedocs/internal/index"
	"github.com/starford/coursedocs/internal/models"
	"github.com/starford/coursedocs/internal/storage"
)

// DocumentDetail is a manifest entry together with the rendered Markdown.
type DocumentDetail struct {
	models.DocumentMeta
	Content string `json:"content"`
}

// Service coordinates output storage and manifest lookups.
type Service struct {
	store storage.Provider
	db    index.Manifest
}

// NewService creates a new document service.
func NewService(store storage.Provider, db index.Manifest) *Service {
	return &Service{store: store, db: db}
}

// GetDocument returns the manifest entry and file content for path.
func (s *Service) GetDocument(_ context.Context, path string) (*DocumentDetail, error) {
	meta, err := s.db.GetDocument(path)
	if err != nil {
		return nil, err
	}
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("docservice: %s missing on disk: %w", path, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &DocumentDetail{DocumentMeta: *meta, Content: string(data)}, nil
}

// ListDocuments returns manifest entries, optionally restricted to one category.
func (s *Service) ListDocuments(_ context.Context, category string) ([]models.DocumentMeta, error) {
	c, err := ParseCategory(category)
	if err != nil {
		return nil, err
	}
	return s.db.ListDocuments(c)
}

// Search delegates full-text search to the manifest.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// LatestRun returns the summary of the most recent pipeline run.
func (s *Service) LatestRun(_ context.Context) (*index.RunRow, error) {
	return s.db.LatestRun()
}

// ParseCategory validates a category filter. The empty string means "any".
func ParseCategory(v string) (models.Category, error) {
	switch c := models.Category(v); c {
	case "", models.CategoryHealthcare, models.CategoryTechnical, models.CategoryNeutral:
		return c, nil
	default:
		return "", fmt.Errorf("docservice: %q: %w", v, apperr.ErrInvalidCategory)
	}
}
