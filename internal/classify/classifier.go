// Package classify tags topic groups with a domain-relevance category,
// architecture layers and, for clinical content, an adapted body.
package classify

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/starford/coursedocs/internal/models"
)

var gapRe = regexp.MustCompile(`[\s\-]+`)

// Classifier applies the fixed keyword lexicons.
type Classifier struct {
	logger *slog.Logger
}

// New creates a Classifier. A nil logger discards warnings.
func New(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Classifier{logger: logger}
}

// Classify returns the verdict for g. Healthcare keywords take precedence over
// general technical ones. It never fails: groups without a body or without
// any keyword hit fall back to DomainNeutral and a warning is logged.
func (c *Classifier) Classify(g models.TopicGroup) models.Classification {
	body := g.CombinedBody()
	neutral := models.Classification{
		Category:           models.CategoryNeutral,
		ArchitectureLayers: []string{},
		AdaptedBody:        body,
	}

	if strings.TrimSpace(body) == "" {
		c.logger.Warn("classify: empty body", slog.String("group", g.Name), slog.Any("sources", g.IDs()))
		return neutral
	}

	scan := g.ScanText()
	layers := detectLayers(scan)

	if hits := matchAll(healthcareKeywords, scan); len(hits) > 0 {
		c.logger.Debug("classify: healthcare", slog.String("group", g.Name), slog.Any("keywords", hits))
		return models.Classification{
			Category:           models.CategoryHealthcare,
			UseDomainPrefix:    true,
			ArchitectureLayers: layers,
			AdaptedBody:        Adapt(body),
			Keywords:           hits,
		}
	}

	if hits := matchAll(technicalKeywords, scan); len(hits) > 0 {
		c.logger.Debug("classify: technical", slog.String("group", g.Name), slog.Any("keywords", hits))
		return models.Classification{
			Category:           models.CategoryTechnical,
			ArchitectureLayers: layers,
			AdaptedBody:        body,
			Keywords:           hits,
		}
	}

	c.logger.Warn("classify: no keyword signal", slog.String("group", g.Name), slog.Any("sources", g.IDs()))
	neutral.ArchitectureLayers = layers
	return neutral
}

// ClassifyText classifies free text as if it were a single-transcript group.
func (c *Classifier) ClassifyText(title, body string) models.Classification {
	return c.Classify(models.TopicGroup{
		Name:    title,
		Members: []models.Transcript{{ID: "inline", Title: title, Body: body}},
	})
}

// detectLayers returns the sorted names of every layer with at least one hit.
func detectLayers(text string) []string {
	layers := []string{}
	for _, l := range layerKeywords {
		if len(matchAll(l.keywords, text)) > 0 {
			layers = append(layers, l.name)
		}
	}
	sort.Strings(layers)
	return layers
}

// Adapt rewrites generic example terms into clinical equivalents, keeping the
// capitalisation of the matched text.
func Adapt(body string) string {
	return substitutionRe.ReplaceAllStringFunc(body, func(m string) string {
		key := gapRe.ReplaceAllString(strings.ToLower(m), " ")
		to, ok := substitutions[key]
		if !ok {
			return m
		}
		return matchCase(m, to)
	})
}

func matchCase(src, repl string) string {
	if strings.ToUpper(src) == src && strings.ToLower(src) != src {
		return strings.ToUpper(repl)
	}
	r, _ := utf8.DecodeRuneInString(src)
	if unicode.IsUpper(r) {
		first, size := utf8.DecodeRuneInString(repl)
		return string(unicode.ToUpper(first)) + repl[size:]
	}
	return repl
}
