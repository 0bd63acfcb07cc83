package internal

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/coursedocs/internal/apperr"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token"}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "token is empty") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
	if !cfg.SQLite.Enabled() || cfg.Grouping.SimilarityThreshold != 0.7 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestGroupingConfig_ThresholdRange(t *testing.T) {
	for _, tc := range []struct {
		v  float64
		ok bool
	}{
		{0, false},
		{-0.1, false},
		{0.01, true},
		{1, true},
		{1.01, false},
	} {
		cfg := GroupingConfig{SimilarityThreshold: tc.v}
		if err := cfg.Validate(); (err == nil) != tc.ok {
			t.Errorf("threshold %v: err = %v", tc.v, err)
		}
	}
}

func TestInputConfig_Extensions(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Input.Extensions = []string{".txt", "md"}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "input") {
		t.Errorf("bad extension err = %v", err)
	}

	cfg.Input.Extensions = nil
	if err := cfg.Validate(); err == nil {
		t.Error("empty extension list should fail")
	}
}

func TestOutputConfig_ReportFile(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Output.ReportFile = "../escape.json"
	if err := cfg.Validate(); err == nil {
		t.Error("report file with a path separator should fail")
	}
	cfg.Output.ReportFile = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("empty report file disables the report: %v", err)
	}
}

func TestApplicationConfig_LogFormat(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.LogFormat = ""
	if err := cfg.Validate(); err != nil || cfg.App.LogFormat != LogFormatJSON {
		t.Errorf("empty format: %q, %v", cfg.App.LogFormat, err)
	}
	cfg.App.LogFormat = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown log format should fail")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestConfig_OutputOverlapsInput(t *testing.T) {
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Input.Path = filepath.Join(dir, "transcripts")

	cfg.Output.Path = cfg.Input.Path + string(filepath.Separator)
	if err := cfg.Validate(); !errors.Is(err, apperr.ErrOutputInInput) {
		t.Errorf("same dir: err = %v", err)
	}

	cfg.Output.Path = filepath.Join(cfg.Input.Path, "docs")
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "inside input") {
		t.Errorf("nested dir: err = %v", err)
	}

	cfg.Output.Path = filepath.Join(dir, "docs")
	if err := cfg.Validate(); err != nil {
		t.Errorf("sibling dir: %v", err)
	}

	cfg.Input.Path = filepath.Join(cfg.Output.Path, "raw")
	if err := cfg.Validate(); err != nil {
		t.Errorf("input inside output: %v", err)
	}
}
