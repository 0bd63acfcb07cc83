package classify

import (
	"regexp"
	"sort"
	"strings"
)

// healthcareTerms mark content that applies to clinical settings.
var healthcareTerms = []string{
	"patient", "clinical", "clinician", "diagnosis", "diagnoses", "treatment", "medical",
	"healthcare", "health care", "hospital", "physician", "nurse", "EHR", "EMR",
	"electronic health record", "health record", "record system", "HIPAA", "FHIR", "HL7",
	"medication", "prescription", "radiology", "telehealth",
}

// technicalTerms mark general software-engineering content.
var technicalTerms = []string{
	"architecture", "pipeline", "agent", "service", "workflow", "integration", "API",
	"docker", "container", "kubernetes", "deployment", "database", "framework", "server",
	"prompt", "model", "LLM", "embedding", "python", "code", "orchestration", "graph",
}

// layer is a named architecture layer and the terms that signal it.
type layer struct {
	Name  string
	Terms []string
}

// layerTerms is scanned independently of the category.
var layerTerms = []layer{
	{"RAG", []string{"RAG", "retrieval-augmented generation", "retrieval augmented", "vector store", "vector database", "embedding", "semantic search"}},
	{"Agent", []string{"agent", "autonomous agent", "multi-agent", "LangGraph", "tool calling", "agentic"}},
	{"Microservices", []string{"microservice", "distributed service", "service mesh", "API gateway", "message queue"}},
	{"Security", []string{"security", "access control", "authentication", "authorization", "encryption", "RBAC", "sandbox", "HIPAA"}},
	{"Blockchain", []string{"blockchain", "ledger", "smart contract", "distributed ledger"}},
	{"GenAI", []string{"generative", "LLM", "large language model", "GPT", "foundation model", "diffusion"}},
	{"Observability", []string{"observability", "tracing", "telemetry", "monitoring", "logging"}},
}

// substitutions maps generic example terms to clinical equivalents.
var substitutions = map[string]string{
	"customer records":    "patient records",
	"customer record":     "patient record",
	"customer data":       "patient data",
	"customer profiles":   "patient profiles",
	"customer profile":    "patient profile",
	"customers":           "patients",
	"customer":            "patient",
	"user profiles":       "patient profiles",
	"user profile":        "patient profile",
	"order history":       "treatment history",
	"purchase history":    "treatment history",
	"transaction records": "encounter records",
	"support tickets":     "clinical cases",
	"support ticket":      "clinical case",
	"end users":           "clinicians",
	"end user":            "clinician",
	"shopping cart":       "care plan",
	"product catalog":     "medication formulary",
	"sales team":          "care team",
}

// keyword is a compiled whole-word, case-insensitive term.
type keyword struct {
	term string
	re   *regexp.Regexp
}

var (
	healthcareKeywords = compileTerms(healthcareTerms)
	technicalKeywords  = compileTerms(technicalTerms)
	layerKeywords      = compileLayers(layerTerms)
	substitutionRe     = compileSubstitutions(substitutions)
)

// termPattern builds a regexp fragment where word gaps accept spaces or hyphens.
func termPattern(term string) string {
	words := strings.FieldsFunc(term, func(r rune) bool { return r == ' ' || r == '-' })
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, `[\s\-]+`)
}

func compileTerms(terms []string) []keyword {
	out := make([]keyword, len(terms))
	for i, t := range terms {
		out[i] = keyword{
			term: strings.ToLower(t),
			re:   regexp.MustCompile(`(?i)\b` + termPattern(t) + `(?:s|es)?\b`),
		}
	}
	return out
}

type compiledLayer struct {
	name     string
	keywords []keyword
}

func compileLayers(layers []layer) []compiledLayer {
	out := make([]compiledLayer, len(layers))
	for i, l := range layers {
		out[i] = compiledLayer{name: l.Name, keywords: compileTerms(l.Terms)}
	}
	return out
}

// compileSubstitutions builds one alternation, longest terms first, so a
// single left-to-right pass prefers "customer record" over "customer".
func compileSubstitutions(table map[string]string) *regexp.Regexp {
	terms := make([]string, 0, len(table))
	for from := range table {
		terms = append(terms, from)
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = termPattern(t)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(parts, "|") + `)\b`)
}

// matchAll returns the terms of kws found in text, in table order.
func matchAll(kws []keyword, text string) []string {
	var hits []string
	for _, kw := range kws {
		if kw.re.MatchString(text) {
			hits = append(hits, kw.term)
		}
	}
	return hits
}
