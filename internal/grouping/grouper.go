package grouping

import (
	"log/slog"
	"strings"

	"github.com/starford/coursedocs/internal/models"
)

// DefaultThreshold is the similarity a title pair must strictly exceed to merge.
const DefaultThreshold = 0.7

// Option configures a Grouper.
type Option func(*Grouper)

// WithThreshold sets the similarity merge threshold.
func WithThreshold(t float64) Option {
	return func(g *Grouper) {
		g.threshold = t
	}
}

// Grouper partitions transcripts into topic groups.
type Grouper struct {
	logger    *slog.Logger
	threshold float64
}

// New creates a Grouper. A nil logger discards merge decisions.
func New(logger *slog.Logger, opts ...Option) *Grouper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	g := &Grouper{logger: logger, threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Threshold returns the configured similarity threshold.
func (g *Grouper) Threshold() float64 { return g.threshold }

// Group partitions transcripts into topic groups. Continuation patterns are
// merged first, then title pairs whose similarity strictly exceeds the
// threshold. The result is the transitive closure of both relations; groups
// are ordered by their earliest member and members keep input order.
//
// Transcripts with an empty title stay singletons. A transcript whose ID
// repeats an earlier one is dropped.
func (g *Grouper) Group(transcripts []models.Transcript) []models.TopicGroup {
	ts := g.dedupe(transcripts)
	if len(ts) == 0 {
		return []models.TopicGroup{}
	}

	groupable := make([]bool, len(ts))
	for i, t := range ts {
		groupable[i] = strings.TrimSpace(t.Title) != ""
		if !groupable[i] {
			g.logger.Debug("grouping: ungroupable transcript", slog.String("id", t.ID))
		}
	}

	set := newDisjointSet(len(ts))

	for i := 0; i < len(ts); i++ {
		for j := i + 1; j < len(ts); j++ {
			if !groupable[i] || !groupable[j] || set.same(i, j) {
				continue
			}
			tag, ok := DetectContinuation(ts[i].Title, ts[j].Title)
			if !ok {
				continue
			}
			set.union(i, j)
			g.logger.Info("grouping: merged",
				slog.String("reason", "pattern"),
				slog.String("pattern", string(tag.Family)),
				slog.String("left", ts[i].ID),
				slog.String("right", ts[j].ID))
		}
	}

	for i := 0; i < len(ts); i++ {
		for j := i + 1; j < len(ts); j++ {
			if !groupable[i] || !groupable[j] || set.same(i, j) {
				continue
			}
			score := Similarity(ts[i].Title, ts[j].Title)
			if score > g.threshold {
				set.union(i, j)
				g.logger.Info("grouping: merged",
					slog.String("reason", "similarity"),
					slog.Float64("score", score),
					slog.String("left", ts[i].ID),
					slog.String("right", ts[j].ID))
			} else if score == g.threshold {
				g.logger.Info("grouping: borderline kept separate",
					slog.Float64("score", score),
					slog.String("left", ts[i].ID),
					slog.String("right", ts[j].ID))
			}
		}
	}

	index := make(map[int]int, len(ts))
	var groups []models.TopicGroup
	for i, t := range ts {
		root := set.find(i)
		gi, ok := index[root]
		if !ok {
			gi = len(groups)
			index[root] = gi
			groups = append(groups, models.TopicGroup{})
		}
		groups[gi].Members = append(groups[gi].Members, t)
	}

	for i := range groups {
		groups[i].Consolidated = len(groups[i].Members) > 1
		groups[i].Name = groupName(groups[i].Members)
	}
	return groups
}

func (g *Grouper) dedupe(transcripts []models.Transcript) []models.Transcript {
	seen := make(map[string]struct{}, len(transcripts))
	out := make([]models.Transcript, 0, len(transcripts))
	for _, t := range transcripts {
		if _, dup := seen[t.ID]; dup {
			g.logger.Warn("grouping: duplicate transcript id", slog.String("id", t.ID))
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}
