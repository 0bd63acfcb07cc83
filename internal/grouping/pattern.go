// Package grouping decides which transcripts belong to one documentation topic.
package grouping

import (
	"regexp"
	"strconv"
	"strings"
)

// Family names a continuation pattern family.
type Family string

const (
	// FamilyNumbered matches "Part N", "Pt N", "#N" and "N of M" suffixes.
	FamilyNumbered Family = "numbered-continuation"
	// FamilyNamedStage matches a trailing stage word from a fixed pair, e.g. Basics/Implementation.
	FamilyNamedStage Family = "named-stage-continuation"
)

// PatternTag describes a detected continuation between two titles.
type PatternTag struct {
	Family Family
	Stem   string // shared, case-folded title stem
	Left   string // suffix of the first title
	Right  string // suffix of the second title
}

var numberedSuffixRe = regexp.MustCompile(
	`^(.*?)[\s,:\-–—]*(?:\b(?:part|pt\.?)\s*(\d+)|#\s*(\d+)|\b(\d+)\s+of\s+(\d+))$`,
)

// maxSeriesLen bounds M in "N of M".
const maxSeriesLen = 99

// stagePairs lists stage words that mark two halves of one topic.
var stagePairs = [][2]string{
	{"basics", "implementation"},
	{"introduction", "advanced"},
	{"fundamentals", "advanced"},
	{"beginner", "advanced"},
	{"theory", "practice"},
	{"concepts", "implementation"},
	{"overview", "walkthrough"},
}

const stemTrim = " \t,:-–—"

// DetectContinuation reports whether titles a and b are sequential parts of
// one topic. Numbered continuation is checked before named stages; the first
// family that matches wins.
func DetectContinuation(a, b string) (PatternTag, bool) {
	na, nb := normalize(a), normalize(b)
	if na == "" || nb == "" {
		return PatternTag{}, false
	}
	if tag, ok := detectNumbered(na, nb); ok {
		return tag, true
	}
	if tag, ok := detectNamedStage(na, nb); ok {
		return tag, true
	}
	return PatternTag{}, false
}

func detectNumbered(a, b string) (PatternTag, bool) {
	stemA, numA, totalA, ok := splitNumbered(a)
	if !ok {
		return PatternTag{}, false
	}
	stemB, numB, totalB, ok := splitNumbered(b)
	if !ok || stemA != stemB || numA == numB || totalA != totalB {
		return PatternTag{}, false
	}
	return PatternTag{
		Family: FamilyNumbered,
		Stem:   stemA,
		Left:   strings.TrimSpace(strings.TrimPrefix(a, stemA)),
		Right:  strings.TrimSpace(strings.TrimPrefix(b, stemB)),
	}, true
}

// splitNumbered strips a trailing numbered suffix and returns the stem, the
// part number and, for "N of M", the series length (0 otherwise). A title
// that is nothing but the suffix does not split, and "N of M" only splits
// when 1 <= N <= M <= maxSeriesLen.
func splitNumbered(title string) (string, int, int, bool) {
	m := numberedSuffixRe.FindStringSubmatch(title)
	if m == nil {
		return "", 0, 0, false
	}
	stem := strings.TrimRight(m[1], stemTrim)
	if stem == "" {
		return "", 0, 0, false
	}
	raw := m[2]
	if raw == "" {
		raw = m[3]
	}
	if raw == "" {
		raw = m[4]
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return "", 0, 0, false
	}
	if m[5] == "" {
		return stem, n, 0, true
	}
	total, err := strconv.Atoi(m[5])
	if err != nil || n < 1 || n > total || total > maxSeriesLen {
		return "", 0, 0, false
	}
	return stem, n, total, true
}

func detectNamedStage(a, b string) (PatternTag, bool) {
	stemA, wordA, ok := splitLastWord(a)
	if !ok {
		return PatternTag{}, false
	}
	stemB, wordB, ok := splitLastWord(b)
	if !ok || stemA != stemB || wordA == wordB || !sameStagePair(wordA, wordB) {
		return PatternTag{}, false
	}
	return PatternTag{Family: FamilyNamedStage, Stem: stemA, Left: wordA, Right: wordB}, true
}

func splitLastWord(title string) (string, string, bool) {
	i := strings.LastIndexByte(title, ' ')
	if i < 0 {
		return "", "", false
	}
	stem := strings.TrimRight(title[:i], stemTrim)
	word := strings.Trim(title[i+1:], "()[].,:;!?")
	if stem == "" || word == "" {
		return "", "", false
	}
	return stem, word, true
}

func sameStagePair(a, b string) bool {
	for _, p := range stagePairs {
		if (p[0] == a && p[1] == b) || (p[0] == b && p[1] == a) {
			return true
		}
	}
	return false
}

// normalize trims, collapses inner whitespace and case-folds a title.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
