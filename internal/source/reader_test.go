package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/coursedocs/internal/storage"
)

func inputDir(t *testing.T, files map[string]string) *storage.FS {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestRead_LexicalOrderAndTitles(t *testing.T) {
	store := inputDir(t, map[string]string{
		"02_docker_part_2.txt":      "Title: Docker Part 2\nVolumes and networks.",
		"01_docker_part_1.txt":      "# Docker Part 1\nImages and containers.",
		"sub/03_kubernetes.md":      "---\ntitle: Kubernetes Intro\n---\nPods.",
		"notes.pdf":                 "ignored",
		".hidden.txt":               "ignored",
		"04_prompt-engineering.txt": "Just the body.",
	})

	got, skipped, err := New(store, nil).Read(context.Background(), "")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(skipped) != 0 {
		t.Errorf("skipped = %+v", skipped)
	}

	want := []struct{ id, title, body string }{
		{"01_docker_part_1.txt", "Docker Part 1", "Images and containers."},
		{"02_docker_part_2.txt", "Docker Part 2", "Volumes and networks."},
		{"04_prompt-engineering.txt", "prompt engineering", "Just the body."},
		{"sub/03_kubernetes.md", "Kubernetes Intro", "Pods."},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d transcripts, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].ID != w.id || got[i].Title != w.title || got[i].Body != w.body {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], w)
		}
	}
}

func TestRead_SkipsInvalidAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	store := inputDir(t, map[string]string{
		"a.txt":     "Valid body.",
		"bad.txt":   "caf\xe9 latin-1",
		"empty.txt": "  \n\n ",
		"title.txt": "# Only A Title\n",
	})

	got, skipped, err := New(store, logger).Read(context.Background(), "")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a.txt" {
		t.Fatalf("transcripts = %+v", got)
	}

	reasons := map[string]string{}
	for _, s := range skipped {
		reasons[s.Path] = s.Reason
	}
	if reasons["bad.txt"] != "invalid utf-8" {
		t.Errorf("bad.txt reason = %q", reasons["bad.txt"])
	}
	if reasons["empty.txt"] != "empty body" || reasons["title.txt"] != "empty body" {
		t.Errorf("reasons = %v", reasons)
	}
	if n := strings.Count(buf.String(), "source: skipped"); n != 3 {
		t.Errorf("logged %d skip warnings, want 3", n)
	}
}

func TestRead_BOMStripped(t *testing.T) {
	store := inputDir(t, map[string]string{"bom.txt": "\xEF\xBB\xBF# Hello\nWorld"})
	got, _, err := New(store, nil).Read(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Title != "Hello" {
		t.Errorf("got %+v", got)
	}
}

func TestRead_ExtensionOption(t *testing.T) {
	store := inputDir(t, map[string]string{"a.txt": "one", "b.md": "two", "c.VTT": "WEBVTT\n\n00:00.000 --> 00:01.000\nthree"})
	got, _, err := New(store, nil, WithExtensions(".vtt")).Read(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "c.VTT" || got[0].Body != "three" {
		t.Errorf("got %+v", got)
	}
}

func TestRead_ManyFilesKeepOrder(t *testing.T) {
	files := make(map[string]string)
	for i := 0; i < 40; i++ {
		files[fmt.Sprintf("%03d.txt", i)] = fmt.Sprintf("body %d", i)
	}
	got, _, err := New(inputDir(t, files), nil, WithWorkers(8)).Read(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 40 {
		t.Fatalf("got %d", len(got))
	}
	for i, tr := range got {
		if tr.ID != fmt.Sprintf("%03d.txt", i) {
			t.Fatalf("[%d] = %s", i, tr.ID)
		}
	}
}

func TestRead_MissingDir(t *testing.T) {
	store := inputDir(t, nil)
	if _, _, err := New(store, nil).Read(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for missing dir")
	}
}

func TestRead_Cancelled(t *testing.T) {
	store := inputDir(t, map[string]string{"a.txt": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := New(store, nil).Read(ctx, ""); err == nil {
		t.Fatal("expected context error")
	}
}

func TestRead_ExcludeDirs(t *testing.T) {
	store := inputDir(t, map[string]string{
		"a.txt":          "# A\nalpha",
		"docs/a.md":      "# A\ngenerated",
		"docs/x/b.md":    "# B\ngenerated",
		"docsextra/c.md": "# C\ngamma",
	})
	got, _, err := New(store, nil, WithExcludeDirs("docs/", ".")).Read(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "a.txt" || got[1].ID != "docsextra/c.md" {
		t.Errorf("got %+v", got)
	}
}
