package internal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/coursedocs/internal/testutil"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Input.Path, _ = testutil.TestDir(t, map[string]string{
		"01_rag_part_1.txt": "# RAG Part 1\nChunk and embed.",
		"02_rag_part_2.txt": "# RAG Part 2\nRetrieve and rerank.",
	})
	cfg.Output.Path = filepath.Join(t.TempDir(), "docs")
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "coursedocs.db")
	return cfg
}

func TestRun_WritesDocuments(t *testing.T) {
	cfg := testConfig(t)
	cfg.App.LogFormat = LogFormatText
	var logs bytes.Buffer

	report, err := Run(context.Background(), WithConfig(cfg), WithLogOutput(&logs))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Groups) != 1 || report.Groups[0].File != "rag-part-1-part-2.md" {
		t.Fatalf("groups = %+v", report.Groups)
	}
	if _, err := os.Stat(filepath.Join(cfg.Output.Path, "rag-part-1-part-2.md")); err != nil {
		t.Errorf("output: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Output.Path, "processing_report.json")); err != nil {
		t.Errorf("report: %v", err)
	}
	if !strings.Contains(logs.String(), "msg=\"Configuration loaded\"") {
		t.Errorf("text logs = %s", logs.String())
	}
}

func TestRun_WithoutManifest(t *testing.T) {
	cfg := testConfig(t)
	cfg.SQLite.Path = ""

	for range 2 {
		report, err := Run(context.Background(), WithConfig(cfg), WithLogOutput(&bytes.Buffer{}))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if report.Written != 1 {
			t.Errorf("written = %d, want 1 on every run without a manifest", report.Written)
		}
	}
}

func TestRun_MissingInput(t *testing.T) {
	cfg := testConfig(t)
	cfg.Input.Path = filepath.Join(t.TempDir(), "absent")
	if _, err := Run(context.Background(), WithConfig(cfg), WithLogOutput(&bytes.Buffer{})); err == nil {
		t.Error("expected error for missing input directory")
	}
}

func TestRun_RequiresConfig(t *testing.T) {
	if _, err := Run(context.Background()); err == nil {
		t.Error("expected error without config")
	}
}
