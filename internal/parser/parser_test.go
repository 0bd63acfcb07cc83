package parser

import (
	"strings"
	"testing"
)

func TestParse_FrontmatterTitle(t *testing.T) {
	input := []byte("---\ntitle: LangGraph Basics Part 1\nspeaker: Ada\n---\nToday we build a graph.\n")
	r, err := Parse("01-intro.txt", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "LangGraph Basics Part 1" {
		t.Errorf("title = %q", r.Title)
	}
	if r.TitleSource != "frontmatter" {
		t.Errorf("source = %q, want frontmatter", r.TitleSource)
	}
	if r.Body != "Today we build a graph." {
		t.Errorf("body = %q", r.Body)
	}
	if r.Frontmatter["speaker"] != "Ada" {
		t.Errorf("frontmatter = %v", r.Frontmatter)
	}
}

func TestParse_HeadingTitleRemovedFromBody(t *testing.T) {
	r, err := Parse("x.md", []byte("\n# Docker Safe Code Execution\nRun code in a container.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Docker Safe Code Execution" || r.TitleSource != "heading" {
		t.Errorf("title = %q (%s)", r.Title, r.TitleSource)
	}
	if r.Body != "Run code in a container." {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_TitleLabel(t *testing.T) {
	r, _ := Parse("x.txt", []byte("Title:   Vector   Databases\nEmbeddings go here.\n"))
	if r.Title != "Vector Databases" || r.TitleSource != "label" {
		t.Errorf("title = %q (%s)", r.Title, r.TitleSource)
	}
	if r.Body != "Embeddings go here." {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_FilenameFallback(t *testing.T) {
	r, _ := Parse("course/03_langgraph-basics-part-2.txt", []byte("So, welcome back everyone.\n"))
	if r.Title != "langgraph basics part 2" {
		t.Errorf("title = %q", r.Title)
	}
	if r.TitleSource != "filename" {
		t.Errorf("source = %q", r.TitleSource)
	}
	if r.Body != "So, welcome back everyone." {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_HeadingOnlyCountsOnFirstLine(t *testing.T) {
	r, _ := Parse("agents.txt", []byte("intro words\n# Not a title\n"))
	if r.Title != "agents" {
		t.Errorf("title = %q, want filename stem", r.Title)
	}
	if !strings.Contains(r.Body, "# Not a title") {
		t.Errorf("body lost heading: %q", r.Body)
	}
}

func TestParse_StripsBOM(t *testing.T) {
	r, _ := Parse("bom.txt", append([]byte{0xEF, 0xBB, 0xBF}, []byte("# BOM Title\nbody")...))
	if r.Title != "BOM Title" {
		t.Errorf("title = %q", r.Title)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	r, err := Parse("bad.txt", []byte("---\n: invalid: yaml: {{{\n---\nBody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
	if r.Title != "bad" {
		t.Errorf("title = %q", r.Title)
	}
}

func TestParse_VTTCuesStripped(t *testing.T) {
	input := "WEBVTT\n\n1\n00:00:01.000 --> 00:00:04.000\nHello and welcome.\n\n2\n00:00:04.500 --> 00:00:06.000\nLet's begin.\n"
	r, _ := Parse("lesson.vtt", []byte(input))
	if strings.Contains(r.Body, "-->") || strings.Contains(r.Body, "WEBVTT") {
		t.Errorf("cues not stripped: %q", r.Body)
	}
	if !strings.Contains(r.Body, "Hello and welcome.") || !strings.Contains(r.Body, "Let's begin.") {
		t.Errorf("speech lost: %q", r.Body)
	}
}

func TestParse_SRTCuesStripped(t *testing.T) {
	input := "1\n00:00:01,000 --> 00:00:02,000\nFirst line.\n"
	r, _ := Parse("lesson.srt", []byte(input))
	if r.Body != "First line." {
		t.Errorf("body = %q", r.Body)
	}
}

func TestStemTitle(t *testing.T) {
	cases := map[string]string{
		"01-intro.txt":              "intro",
		"Docker_Safe_Code.txt":      "Docker Safe Code",
		"dir/2024.txt":              "2024",
		"RAG Pipelines - Part 3.md": "RAG Pipelines Part 3",
		"10_agents__and__tools.txt": "agents and tools",
	}
	for in, want := range cases {
		if got := StemTitle(in); got != want {
			t.Errorf("StemTitle(%q) = %q, want %q", in, got, want)
		}
	}
}
