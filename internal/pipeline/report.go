package pipeline

import (
	"time"

	"github.com/starford/coursedocs/internal/index"
	"github.com/starford/coursedocs/internal/models"
	"github.com/starford/coursedocs/internal/source"
)

// Report summarises one pipeline run. It is also written as JSON next to the
// generated documents when a report file is configured.
type Report struct {
	RunID       string                  `json:"run_id"`
	StartedAt   time.Time               `json:"started_at"`
	FinishedAt  time.Time               `json:"finished_at"`
	DurationMS  int64                   `json:"duration_ms"`
	Threshold   float64                 `json:"similarity_threshold"`
	Transcripts int                     `json:"transcripts"`
	Skipped     []source.Skipped        `json:"skipped"`
	Groups      []GroupSummary          `json:"groups"`
	Categories  map[models.Category]int `json:"categories"`
	Written     int                     `json:"written"`
	Unchanged   int                     `json:"unchanged"`
	Pruned      []string                `json:"pruned"`
}

// GroupSummary describes the document produced for one topic group.
type GroupSummary struct {
	Name               string          `json:"name"`
	File               string          `json:"file"`
	Category           models.Category `json:"category"`
	ArchitectureLayers []string        `json:"architecture_layers"`
	Sources            []string        `json:"sources"`
	Consolidated       bool            `json:"consolidated"`
	Status             string          `json:"status"`
}

func (r *Report) runRow() index.RunRow {
	return index.RunRow{
		ID:          r.RunID,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		Transcripts: r.Transcripts,
		Skipped:     len(r.Skipped),
		Groups:      len(r.Groups),
		Written:     r.Written,
		Unchanged:   r.Unchanged,
		Pruned:      len(r.Pruned),
	}
}
