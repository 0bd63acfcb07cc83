// Package models defines the domain types for coursedocs.
package models

import (
	"strings"
	"time"
)

// Transcript is one parsed input file.
type Transcript struct {
	ID    string `json:"id"` // path relative to the input root
	Title string `json:"title"`
	Body  string `json:"body"`
}

// TopicGroup is a cluster of transcripts rendered as one document.
type TopicGroup struct {
	Name         string       `json:"name"`
	Members      []Transcript `json:"members"`
	Consolidated bool         `json:"consolidated"`
}

// Lead returns the earliest member of the group.
func (g TopicGroup) Lead() Transcript {
	if len(g.Members) == 0 {
		return Transcript{}
	}
	return g.Members[0]
}

// IDs returns the member identifiers in order.
func (g TopicGroup) IDs() []string {
	out := make([]string, len(g.Members))
	for i, m := range g.Members {
		out[i] = m.ID
	}
	return out
}

// CombinedBody joins member bodies with a blank line.
func (g TopicGroup) CombinedBody() string {
	bodies := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		bodies = append(bodies, m.Body)
	}
	return strings.Join(bodies, "\n\n")
}

// ScanText returns every member title and body as one buffer for keyword scans.
func (g TopicGroup) ScanText() string {
	var b strings.Builder
	for _, m := range g.Members {
		b.WriteString(m.Title)
		b.WriteByte('\n')
		b.WriteString(m.Body)
		b.WriteByte('\n')
	}
	return b.String()
}

// Category is the domain-relevance verdict for a topic group.
type Category string

const (
	CategoryHealthcare Category = "HealthcareApplicable"
	CategoryTechnical  Category = "GeneralTechnical"
	CategoryNeutral    Category = "DomainNeutral"
)

// Classification is the classifier output for one topic group.
type Classification struct {
	Category           Category `json:"category"`
	UseDomainPrefix    bool     `json:"use_domain_prefix"`
	ArchitectureLayers []string `json:"architecture_layers"`
	AdaptedBody        string   `json:"-"`
	Keywords           []string `json:"keywords,omitempty"`
}

// DocumentMeta describes one rendered output file recorded in the manifest.
type DocumentMeta struct {
	Path               string    `json:"path"`
	Name               string    `json:"name"`
	Category           Category  `json:"category"`
	ArchitectureLayers []string  `json:"architecture_layers"`
	Sources            []string  `json:"sources"`
	Checksum           string    `json:"checksum"`
	RunID              string    `json:"run_id"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// FileMeta is a lightweight description of a file returned by storage listings.
type FileMeta struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}
