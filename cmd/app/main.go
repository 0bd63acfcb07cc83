package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/coursedocs/internal"
	pkgconfig "github.com/starford/coursedocs/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	loaded, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !loaded && cmd.IsSet("config") {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	if cmd.IsSet("input") {
		cfg.Input.Path = cmd.String("input")
	}
	if cmd.IsSet("output") {
		cfg.Output.Path = cmd.String("output")
	}
	if cmd.IsSet("threshold") {
		cfg.Grouping.SimilarityThreshold = cmd.Float("threshold")
	}
	if cmd.IsSet("prune") {
		cfg.Output.Prune = cmd.Bool("prune")
	}
	if cmd.Bool("verbose") {
		cfg.App.LogLevel = slog.LevelDebug
	}
	// Overrides bypass the file loader, so validate again.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	report, err := internal.Run(ctx, internal.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	fmt.Fprintf(os.Stdout, "%d transcripts, %d documents (%d written, %d unchanged), %d skipped\n",
		report.Transcripts, len(report.Groups), report.Written, report.Unchanged, len(report.Skipped))
	return nil
}

func watch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Watch(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app watch error: %w", err)
	}
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Serve(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app serve error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.ServeMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app mcp error: %w", err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "coursedocs",
		Usage:  "Group course transcripts by topic and render them as structured Markdown documents",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Directory of transcript files",
				Sources: cli.EnvVars("COURSEDOCS_INPUT"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory for generated documents",
				Sources: cli.EnvVars("COURSEDOCS_OUTPUT"),
			},
			&cli.FloatFlag{
				Name:  "threshold",
				Usage: "Title similarity a pair must exceed to merge, in (0, 1]",
			},
			&cli.BoolFlag{
				Name:  "prune",
				Usage: "Delete previously generated documents that are no longer produced",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "watch",
				Usage:  "Regenerate documents whenever transcripts change",
				Action: watch,
			},
			{
				Name:   "serve",
				Usage:  "Watch transcripts and serve the documents over HTTP",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve documents and grouping tools over MCP stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
