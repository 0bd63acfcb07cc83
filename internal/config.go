package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/coursedocs/internal/apperr"
	"github.com/starford/coursedocs/internal/grouping"
	"github.com/starford/coursedocs/internal/source"
	"github.com/starford/coursedocs/internal/storage"
	"github.com/starford/coursedocs/internal/watch"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Input    InputConfig       `yaml:"input"`
	Output   OutputConfig      `yaml:"output"`
	Grouping GroupingConfig    `yaml:"grouping"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Input.Validate(); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := c.Grouping.Validate(); err != nil {
		return fmt.Errorf("grouping: %w", err)
	}
	if rel, ok := storage.Within(c.Input.Path, c.Output.Path); ok {
		if rel == "." {
			return fmt.Errorf("output: path %q: %w", c.Output.Path, apperr.ErrOutputInInput)
		}
		return fmt.Errorf("output: path %q must not be inside input path %q", c.Output.Path, c.Input.Path)
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
	HTTP      HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatJSON
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatJSON, LogFormatText)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// InputConfig describes where transcripts are read from. Debounce is the
// quiet period watch mode waits for before re-running.
type InputConfig struct {
	Path       string        `yaml:"path"`
	Extensions []string      `yaml:"extensions"`
	Workers    int           `yaml:"workers"`
	Debounce   time.Duration `yaml:"debounce"`
}

// Validate validates the input configuration.
func (c *InputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Extensions, validation.Required, validation.Each(validation.By(extension))),
		validation.Field(&c.Workers, validation.Min(1), validation.Max(64)),
		validation.Field(&c.Debounce, validation.Min(10*time.Millisecond)),
	)
}

func extension(value any) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, ".") || len(s) < 2 {
		return errors.New("must start with a dot")
	}
	return nil
}

// OutputConfig describes where generated documents go.
type OutputConfig struct {
	Path       string `yaml:"path"`
	Prune      bool   `yaml:"prune"`
	ReportFile string `yaml:"report_file"`
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.ReportFile, validation.By(func(value any) error {
			s, _ := value.(string)
			if strings.ContainsAny(s, `/\`) {
				return errors.New("must be a plain file name")
			}
			return nil
		})),
	)
}

// GroupingConfig tunes the topic grouper.
type GroupingConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

// Validate validates the grouping configuration.
func (c *GroupingConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SimilarityThreshold,
			validation.Required,
			validation.Min(0.0).Exclusive(),
			validation.Max(1.0),
		),
	)
}

// SQLiteConfig holds SQLite manifest configuration. An empty path disables
// the manifest: every run rewrites all outputs and nothing is pruned.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether a manifest database is configured.
func (c *SQLiteConfig) Enabled() bool {
	return c.Path != ""
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatJSON,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Input: InputConfig{
			Path:       "./transcripts",
			Extensions: append([]string(nil), source.DefaultExtensions...),
			Workers:    4,
			Debounce:   watch.DefaultDebounce,
		},
		Output: OutputConfig{
			Path:       "./docs",
			ReportFile: "processing_report.json",
		},
		Grouping: GroupingConfig{
			SimilarityThreshold: grouping.DefaultThreshold,
		},
		SQLite: SQLiteConfig{
			Path: "./coursedocs.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
