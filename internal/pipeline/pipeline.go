// Package pipeline runs one batch pass from transcript files to rendered
// Markdown documents and keeps the output manifest in sync.
package pipeline

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/starford/coursedocs/internal/apperr"
	"github.com/starford/coursedocs/internal/classify"
	"github.com/starford/coursedocs/internal/grouping"
	"github.com/starford/coursedocs/internal/index"
	"github.com/starford/coursedocs/internal/models"
	"github.com/starford/coursedocs/internal/render"
	"github.com/starford/coursedocs/internal/source"
	"github.com/starford/coursedocs/internal/storage"
)

// Document statuses reported per group.
const (
	StatusWritten   = "written"
	StatusUnchanged = "unchanged"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithThreshold sets the similarity threshold used by the grouper.
func WithThreshold(t float64) Option {
	return func(p *Pipeline) { p.threshold = t }
}

// WithExtensions restricts which input files are read.
func WithExtensions(exts ...string) Option {
	return func(p *Pipeline) { p.exts = exts }
}

// WithWorkers bounds concurrent file reads.
func WithWorkers(n int) Option {
	return func(p *Pipeline) { p.workers = n }
}

// WithPrune removes previously generated documents that the current run no longer produces.
func WithPrune(enabled bool) Option {
	return func(p *Pipeline) { p.prune = enabled }
}

// WithReportFile writes the JSON run report to name inside the output directory.
func WithReportFile(name string) Option {
	return func(p *Pipeline) { p.reportFile = name }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// Pipeline wires the source, grouper, classifier and renderer together.
type Pipeline struct {
	input    storage.Provider
	output   storage.Provider
	manifest index.Manifest
	logger   *slog.Logger

	reader     *source.Reader
	grouper    *grouping.Grouper
	classifier *classify.Classifier
	renderer   *render.Renderer

	threshold  float64
	exts       []string
	workers    int
	prune      bool
	reportFile string
	now        func() time.Time

	// sameRoot is set when output and input share a root; Run refuses to start.
	sameRoot bool

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New creates a Pipeline reading from input and writing to output. manifest
// may be nil, in which case every document is rewritten and nothing is pruned.
func New(input, output storage.Provider, manifest index.Manifest, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Pipeline{
		input:     input,
		output:    output,
		manifest:  manifest,
		logger:    logger,
		threshold: grouping.DefaultThreshold,
		now:       time.Now,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	readerOpts := []source.Option{source.WithExtensions(p.exts...), source.WithWorkers(p.workers)}
	if rel, ok := storage.Within(input.Root(), output.Root()); ok {
		if rel == "." {
			p.sameRoot = true
		} else {
			logger.Warn("pipeline: output is inside input, excluding it from reads", slog.String("dir", rel))
			readerOpts = append(readerOpts, source.WithExcludeDirs(rel))
		}
	}
	p.reader = source.New(input, logger, readerOpts...)
	p.grouper = grouping.New(logger, grouping.WithThreshold(p.threshold))
	p.classifier = classify.New(logger)
	p.renderer = render.New()
	return p
}

// Run executes one pass. Runs are serialised; a second caller waits for the
// first to finish.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sameRoot {
		return nil, fmt.Errorf("pipeline: %s: %w", p.output.Root(), apperr.ErrOutputInInput)
	}

	started := p.now().UTC()
	runID := ulid.MustNew(ulid.Timestamp(started), p.entropy).String()
	logger := p.logger.With(slog.String("run_id", runID))
	logger.Info("pipeline: run started",
		slog.String("input", p.input.Root()),
		slog.String("output", p.output.Root()),
		slog.Float64("threshold", p.grouper.Threshold()))

	report := &Report{
		RunID:      runID,
		StartedAt:  started,
		Threshold:  p.grouper.Threshold(),
		Groups:     []GroupSummary{},
		Categories: map[models.Category]int{},
		Pruned:     []string{},
	}

	transcripts, skipped, err := p.reader.Read(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	report.Transcripts = len(transcripts)
	report.Skipped = skipped
	if len(transcripts) == 0 {
		logger.Warn("pipeline: no transcripts found")
	}

	groups := p.grouper.Group(transcripts)

	previous := map[string]string{}
	if p.manifest != nil {
		if previous, err = p.manifest.AllChecksums(); err != nil {
			return nil, fmt.Errorf("pipeline: load manifest: %w", err)
		}
	}

	produced := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}

		c := p.classifier.Classify(g)
		doc, err := p.renderer.Render(g, c)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		doc.Filename = uniqueName(doc.Filename, produced)
		produced[doc.Filename] = struct{}{}

		sum := checksum(doc.Content)
		status := StatusWritten
		if previous[doc.Filename] == sum && p.output.Exists(doc.Filename) {
			status = StatusUnchanged
			report.Unchanged++
			logger.Debug("pipeline: document unchanged", slog.String("file", doc.Filename))
		} else {
			if err := p.output.Write(doc.Filename, doc.Content); err != nil {
				return nil, fmt.Errorf("pipeline: write %s: %w", doc.Filename, err)
			}
			report.Written++
			logger.Info("pipeline: document written",
				slog.String("file", doc.Filename),
				slog.String("category", string(c.Category)),
				slog.Any("sources", g.IDs()))
		}

		if p.manifest != nil {
			meta := models.DocumentMeta{
				Path:               doc.Filename,
				Name:               doc.Title,
				Category:           c.Category,
				ArchitectureLayers: c.ArchitectureLayers,
				Sources:            g.IDs(),
				Checksum:           sum,
				RunID:              runID,
				UpdatedAt:          started,
			}
			if err := p.manifest.UpsertDocument(meta, c.AdaptedBody); err != nil {
				return nil, fmt.Errorf("pipeline: %w", err)
			}
		}

		report.Categories[c.Category]++
		report.Groups = append(report.Groups, GroupSummary{
			Name:               g.Name,
			File:               doc.Filename,
			Category:           c.Category,
			ArchitectureLayers: c.ArchitectureLayers,
			Sources:            g.IDs(),
			Consolidated:       g.Consolidated,
			Status:             status,
		})
	}

	if p.prune && p.manifest != nil {
		if err := p.pruneStale(logger, previous, produced, report); err != nil {
			return nil, err
		}
	}

	report.FinishedAt = p.now().UTC()
	report.DurationMS = report.FinishedAt.Sub(started).Milliseconds()

	if p.manifest != nil {
		if err := p.manifest.RecordRun(report.runRow()); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	}

	if p.reportFile != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("pipeline: marshal report: %w", err)
		}
		if err := p.output.Write(p.reportFile, append(data, '\n')); err != nil {
			return nil, fmt.Errorf("pipeline: write report: %w", err)
		}
	}

	logger.Info("pipeline: run finished",
		slog.Int("transcripts", report.Transcripts),
		slog.Int("skipped", len(report.Skipped)),
		slog.Int("groups", len(report.Groups)),
		slog.Int("written", report.Written),
		slog.Int("unchanged", report.Unchanged),
		slog.Int("pruned", len(report.Pruned)),
		slog.Int64("duration_ms", report.DurationMS))

	return report, nil
}

// pruneStale deletes documents recorded by earlier runs that this run did not produce.
func (p *Pipeline) pruneStale(logger *slog.Logger, previous map[string]string, produced map[string]struct{}, report *Report) error {
	for path := range previous {
		if _, ok := produced[path]; ok {
			continue
		}
		if err := p.output.Delete(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("pipeline: prune %s: %w", path, err)
		}
		if err := p.manifest.DeleteDocument(path); err != nil {
			return fmt.Errorf("pipeline: %w", err)
		}
		logger.Info("pipeline: pruned", slog.String("file", path))
		report.Pruned = append(report.Pruned, path)
	}
	slices.Sort(report.Pruned)
	return nil
}

// uniqueName appends -2, -3, ... before the extension until name is unused.
func uniqueName(name string, used map[string]struct{}) string {
	if _, taken := used[name]; !taken {
		return name
	}
	stem, ext := name, ""
	if i := strings.LastIndex(name, "."); i > 0 {
		stem, ext = name[:i], name[i:]
	}
	for n := 2; ; n++ {
		candidate := stem + "-" + strconv.Itoa(n) + ext
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}

func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
