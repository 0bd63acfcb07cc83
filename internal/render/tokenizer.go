package render

import (
	"sort"
	"strings"
	"unicode"
)

// defaultStopwords are dropped before concepts are counted.
var defaultStopwords = []string{
	"a", "about", "after", "all", "also", "an", "and", "any", "are", "as", "at", "be", "because",
	"been", "before", "but", "by", "can", "could", "do", "does", "each", "for", "from", "get",
	"going", "gonna", "got", "has", "have", "here", "how", "if", "in", "into", "is", "it", "its",
	"just", "know", "let", "like", "more", "most", "now", "of", "ok", "okay", "on", "one", "or",
	"other", "our", "out", "really", "right", "say", "see", "so", "some", "that", "the", "their",
	"them", "then", "there", "these", "they", "this", "those", "through", "to", "um", "uh", "up",
	"us", "use", "very", "want", "was", "way", "we", "well", "were", "what", "when", "where",
	"which", "while", "who", "why", "will", "with", "would", "yeah", "you", "your",
}

type tokenizer struct {
	stopwords map[string]struct{}
}

func newTokenizer(stopwords []string) *tokenizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &tokenizer{stopwords: stops}
}

// tokenize splits text into lower-case words, keeping inner hyphens and
// dropping stopwords, single characters and pure numbers.
func (t *tokenizer) tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if word := t.clean(current.String()); word != "" {
			tokens = append(tokens, word)
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' {
			current.WriteRune(unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()

	return tokens
}

func (t *tokenizer) clean(token string) string {
	word := strings.Trim(token, "-")
	for strings.Contains(word, "--") {
		word = strings.ReplaceAll(word, "--", "-")
	}
	if len([]rune(word)) <= 1 || numericOnly(word) {
		return ""
	}
	if _, stop := t.stopwords[word]; stop {
		return ""
	}
	return word
}

func numericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return true
}

// concept is a word and its frequency in a document body.
type concept struct {
	Word  string
	Count int
}

// topConcepts returns the n most frequent tokens of text, ties broken alphabetically.
func (t *tokenizer) topConcepts(text string, n int) []concept {
	counts := make(map[string]int)
	for _, tok := range t.tokenize(text) {
		counts[tok]++
	}
	out := make([]concept, 0, len(counts))
	for w, c := range counts {
		out = append(out, concept{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
