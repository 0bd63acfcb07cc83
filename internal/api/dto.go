package api

import (
	"context"

	"github.com/starford/coursedocs/internal/docservice"
	"github.com/starford/coursedocs/internal/index"
	"github.com/starford/coursedocs/internal/models"
	"github.com/starford/coursedocs/internal/pipeline"
)

// Runner triggers one pipeline pass.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Report, error)
}

// DocumentDetail is the full document response type (aliased from the domain layer).
type DocumentDetail = docservice.DocumentDetail

// DocumentListResponse wraps document listings.
type DocumentListResponse struct {
	Documents []models.DocumentMeta `json:"documents"`
	Total     int                   `json:"total"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}

// RunSummary is the stored summary of a pipeline run.
type RunSummary = index.RunRow
