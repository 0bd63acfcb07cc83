// Package parser extracts a title and body from raw transcript text.
package parser

import (
	"bytes"
	"path"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	cueTimingRe   = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?[.,]\d{3}\s+-->\s+\d{1,2}:\d{2}(:\d{2})?[.,]\d{3}`)
	cueIndexRe    = regexp.MustCompile(`^\d+$`)
	orderPrefixRe = regexp.MustCompile(`^\d+[\s._-]+`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Result holds the output of parsing a transcript file.
type Result struct {
	Frontmatter map[string]interface{}
	Title       string
	Body        string
	// TitleSource is one of "frontmatter", "heading", "label" or "filename".
	TitleSource string
}

// Parse extracts frontmatter, title and body from raw bytes. name is the file
// path relative to the input root; it selects caption handling by extension
// and provides the title fallback.
func Parse(name string, data []byte) (*Result, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(path.Ext(name)) {
	case ".vtt", ".srt":
		body = stripCues(body)
	}

	title, source, rest := deriveTitle(fm, body)
	if title == "" {
		title, source = StemTitle(name), "filename"
	}

	return &Result{
		Frontmatter: fm,
		Title:       title,
		Body:        strings.TrimSpace(rest),
		TitleSource: source,
	}, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML: keep everything as body.
		return nil, string(data), nil
	}

	return fm, body, nil
}

// deriveTitle returns the frontmatter "title" if present, otherwise a title
// taken from the first non-empty line when it is a "# " heading or a
// "Title:" label. The returned body has that line removed.
func deriveTitle(fm map[string]interface{}, body string) (string, string, string) {
	if fm != nil {
		if t, ok := fm["title"]; ok {
			if s, ok := t.(string); ok && strings.TrimSpace(s) != "" {
				return collapse(s), "frontmatter", body
			}
		}
	}

	lines := strings.Split(body, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		rest := strings.Join(lines[i+1:], "\n")
		switch {
		case strings.HasPrefix(trimmed, "# "):
			if t := collapse(trimmed[2:]); t != "" {
				return t, "heading", rest
			}
		case len(trimmed) > 6 && strings.EqualFold(trimmed[:6], "title:"):
			if t := collapse(trimmed[6:]); t != "" {
				return t, "label", rest
			}
		}
		break
	}
	return "", "", body
}

// StemTitle turns a file name such as "03_langgraph-basics-part-1.txt" into
// "langgraph basics part 1".
func StemTitle(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "" {
		stem = base
	}
	stem = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(stem)
	if trimmed := orderPrefixRe.ReplaceAllString(stem, ""); strings.TrimSpace(trimmed) != "" {
		stem = trimmed
	}
	return collapse(stem)
}

// stripCues drops WebVTT/SRT headers, cue indexes and timing lines.
func stripCues(body string) string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "WEBVTT", strings.HasPrefix(trimmed, "WEBVTT "),
			strings.HasPrefix(trimmed, "NOTE "), trimmed == "NOTE":
			continue
		case cueTimingRe.MatchString(trimmed), cueIndexRe.MatchString(trimmed):
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func collapse(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
