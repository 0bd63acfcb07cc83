// Package source discovers transcript files under an input root and parses
// them into models.Transcript values in a stable order.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/starford/coursedocs/internal/apperr"
	"github.com/starford/coursedocs/internal/models"
	"github.com/starford/coursedocs/internal/parser"
	"github.com/starford/coursedocs/internal/storage"
)

// DefaultExtensions are the transcript file types read when none are configured.
var DefaultExtensions = []string{".txt", ".md", ".vtt", ".srt"}

const defaultWorkers = 4

// Skipped records an input file that produced no transcript.
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Option configures a Reader.
type Option func(*Reader)

// WithExtensions restricts discovery to the given extensions.
func WithExtensions(exts ...string) Option {
	return func(r *Reader) {
		if len(exts) > 0 {
			r.exts = exts
		}
	}
}

// WithWorkers bounds the number of files read concurrently.
func WithWorkers(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithExcludeDirs ignores every file under the given slash-separated
// directories, relative to the store root.
func WithExcludeDirs(dirs ...string) Option {
	return func(r *Reader) {
		for _, d := range dirs {
			if d = strings.Trim(d, "/"); d != "" && d != "." {
				r.exclude = append(r.exclude, d)
			}
		}
	}
}

// Reader loads transcripts from a storage.Provider.
type Reader struct {
	store   storage.Provider
	logger  *slog.Logger
	exts    []string
	workers int
	exclude []string
}

// New creates a Reader over store.
func New(store storage.Provider, logger *slog.Logger, opts ...Option) *Reader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Reader{store: store, logger: logger, exts: DefaultExtensions, workers: defaultWorkers}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read returns the transcripts under dir in lexical path order. Files that
// cannot be read, are not valid UTF-8, or have an empty body are skipped with
// a warning. Only a failure to list dir is returned as an error.
func (r *Reader) Read(ctx context.Context, dir string) ([]models.Transcript, []Skipped, error) {
	metas, err := r.store.List(dir, r.exts...)
	if err != nil {
		return nil, nil, fmt.Errorf("source: list %q: %w", dir, err)
	}
	metas = slices.DeleteFunc(metas, func(m models.FileMeta) bool { return r.excluded(m.Path) })

	transcripts := make([]*models.Transcript, len(metas))
	skipped := make([]*Skipped, len(metas))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, m := range metas {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			t, err := r.load(m.Path)
			if err != nil {
				r.logger.Warn("source: skipped", slog.String("path", m.Path), slog.String("reason", err.Error()))
				skipped[i] = &Skipped{Path: m.Path, Reason: err.Error()}
				return nil
			}
			transcripts[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("source: read: %w", err)
	}

	out := make([]models.Transcript, 0, len(metas))
	skips := []Skipped{}
	for i := range metas {
		switch {
		case transcripts[i] != nil:
			out = append(out, *transcripts[i])
		case skipped[i] != nil:
			skips = append(skips, *skipped[i])
		}
	}

	r.logger.Info("source: loaded",
		slog.String("dir", dir),
		slog.Int("files", len(metas)),
		slog.Int("transcripts", len(out)),
		slog.Int("skipped", len(skips)))

	return out, skips, nil
}

func (r *Reader) excluded(path string) bool {
	for _, d := range r.exclude {
		if path == d || strings.HasPrefix(path, d+"/") {
			return true
		}
	}
	return false
}

func (r *Reader) load(path string) (*models.Transcript, error) {
	data, err := r.store.Read(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, apperr.ErrInvalidUTF8
	}
	res, err := parser.Parse(path, data)
	if err != nil {
		return nil, err
	}
	if res.Body == "" {
		return nil, apperr.ErrEmptyBody
	}
	r.logger.Debug("source: parsed",
		slog.String("path", path),
		slog.String("title", res.Title),
		slog.String("title_source", res.TitleSource))
	return &models.Transcript{ID: path, Title: res.Title, Body: res.Body}, nil
}
