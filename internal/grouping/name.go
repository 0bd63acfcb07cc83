package grouping

import (
	"fmt"
	"strings"

	"github.com/starford/coursedocs/internal/models"
)

// connectors are trailing prefix words that belong with the distinguishing suffix.
var connectors = map[string]struct{}{
	"part": {}, "pt": {}, "pt.": {}, "#": {}, "of": {}, "and": {}, "&": {},
	"-": {}, "–": {}, "—": {}, ":": {}, "|": {},
}

// groupName labels a group. A singleton keeps its title. A consolidated group
// uses the common word prefix of all member titles followed by each distinct
// remainder, e.g. "LangGraph Basics (Part 1 / Part 2)". Without a common
// prefix the first two titles are joined.
func groupName(members []models.Transcript) string {
	if len(members) == 0 {
		return ""
	}
	lead := strings.Join(strings.Fields(members[0].Title), " ")
	if len(members) == 1 {
		return lead
	}

	words := make([][]string, len(members))
	for i, m := range members {
		words[i] = strings.Fields(m.Title)
	}

	p := len(words[0])
	for _, w := range words[1:] {
		p = min(p, commonPrefixLen(words[0], w))
	}
	for p > 0 {
		last := strings.ToLower(words[0][p-1])
		if _, ok := connectors[last]; !ok && strings.Trim(last, stemTrim) != "" {
			break
		}
		p--
	}

	if p == 0 {
		second := strings.Join(strings.Fields(members[1].Title), " ")
		name := lead + " & " + second
		if extra := len(members) - 2; extra > 0 {
			name += fmt.Sprintf(" (+%d more)", extra)
		}
		return name
	}

	prefix := strings.TrimRight(strings.Join(words[0][:p], " "), stemTrim)
	var rest []string
	seen := make(map[string]struct{})
	for _, w := range words {
		tail := w[p:]
		for len(tail) > 0 && strings.Trim(tail[0], stemTrim) == "" {
			tail = tail[1:]
		}
		r := strings.Join(tail, " ")
		key := strings.ToLower(r)
		if r == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rest = append(rest, r)
	}
	if len(rest) == 0 {
		return prefix
	}
	return prefix + " (" + strings.Join(rest, " / ") + ")"
}

func commonPrefixLen(a, b []string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if !strings.EqualFold(a[i], b[i]) {
			return i
		}
	}
	return n
}
