// Package render turns a classified topic group into a Markdown document with
// YAML front matter and a fixed set of sections.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/coursedocs/internal/apperr"
	"github.com/starford/coursedocs/internal/models"
)

const (
	// DomainPrefix is prepended to titles of healthcare-applicable documents.
	DomainPrefix = "Healthcare: "
	// FilenamePrefix is prepended to filenames of healthcare-applicable documents.
	FilenamePrefix = "healthcare-"

	maxSlugBytes    = 80
	defaultConcepts = 8
)

// Document is a rendered output ready to be written.
type Document struct {
	Filename string
	Title    string
	Content  []byte
}

type frontMatter struct {
	Title              string          `yaml:"title"`
	Category           models.Category `yaml:"category"`
	DomainPrefix       bool            `yaml:"domain_prefix"`
	ArchitectureLayers []string        `yaml:"architecture_layers"`
	Keywords           []string        `yaml:"keywords,omitempty"`
	Consolidated       bool            `yaml:"consolidated"`
	Sources            []string        `yaml:"sources"`
}

// Renderer builds Markdown documents.
type Renderer struct {
	tok      *tokenizer
	concepts int
}

// New creates a Renderer with the built-in stopword list.
func New() *Renderer {
	return &Renderer{tok: newTokenizer(defaultStopwords), concepts: defaultConcepts}
}

// Render produces the document for g classified as c.
func (r *Renderer) Render(g models.TopicGroup, c models.Classification) (Document, error) {
	if len(g.Members) == 0 {
		return Document{}, fmt.Errorf("render: group %q: %w", g.Name, apperr.ErrEmptyGroup)
	}

	name := strings.TrimSpace(g.Name)
	if name == "" {
		name = strings.TrimSpace(g.Lead().Title)
	}
	if name == "" {
		name = "Untitled"
	}
	title := name
	if c.UseDomainPrefix {
		title = DomainPrefix + name
	}

	layers := c.ArchitectureLayers
	if layers == nil {
		layers = []string{}
	}
	fm, err := yaml.Marshal(frontMatter{
		Title:              title,
		Category:           c.Category,
		DomainPrefix:       c.UseDomainPrefix,
		ArchitectureLayers: layers,
		Keywords:           c.Keywords,
		Consolidated:       g.Consolidated,
		Sources:            g.IDs(),
	})
	if err != nil {
		return Document{}, fmt.Errorf("render: marshal front matter: %w", err)
	}

	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString("## Overview\n\n")
	b.WriteString(overview(g, c))
	b.WriteString("\n\n")

	b.WriteString("## Key Concepts\n\n")
	concepts := r.tok.topConcepts(c.AdaptedBody, r.concepts)
	if len(concepts) == 0 {
		b.WriteString("_None identified._\n")
	}
	for _, k := range concepts {
		fmt.Fprintf(&b, "- %s (%d)\n", k.Word, k.Count)
	}
	b.WriteString("\n")

	b.WriteString("## Architecture Layers\n\n")
	if len(layers) == 0 {
		b.WriteString("_None identified._\n")
	}
	for _, l := range layers {
		fmt.Fprintf(&b, "- %s\n", l)
	}
	b.WriteString("\n")

	b.WriteString("## Content\n\n")
	if body := strings.TrimSpace(c.AdaptedBody); body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	} else {
		b.WriteString("_No content._\n")
	}
	b.WriteString("\n")

	b.WriteString("## Sources\n\n")
	for _, m := range g.Members {
		fmt.Fprintf(&b, "- `%s`: %s\n", m.ID, m.Title)
	}

	filename := Slug(name) + ".md"
	if c.UseDomainPrefix {
		filename = FilenamePrefix + filename
	}

	return Document{Filename: filename, Title: title, Content: b.Bytes()}, nil
}

func overview(g models.TopicGroup, c models.Classification) string {
	var s string
	if g.Consolidated {
		s = fmt.Sprintf("Consolidated from %d related transcripts.", len(g.Members))
	} else {
		s = "Derived from a single transcript."
	}
	s += fmt.Sprintf(" Category: %s.", c.Category)
	if len(c.ArchitectureLayers) > 0 {
		s += " Architecture layers: " + strings.Join(c.ArchitectureLayers, ", ") + "."
	}
	return s
}

// Slug lower-cases name, collapses every run of characters outside [a-z0-9]
// into a single hyphen and caps the result at 80 bytes. An empty result
// becomes "untitled".
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := b.String()
	if len(s) > maxSlugBytes {
		s = s[:maxSlugBytes]
	}
	s = strings.Trim(s, "-")
	if s == "" {
		return "untitled"
	}
	return s
}
