// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/coursedocs/internal/api"
	"github.com/starford/coursedocs/internal/docservice"
	"github.com/starford/coursedocs/internal/index"
	"github.com/starford/coursedocs/internal/mcpserver"
	"github.com/starford/coursedocs/internal/pipeline"
	"github.com/starford/coursedocs/internal/storage"
	"github.com/starford/coursedocs/internal/watch"
)

// runtime holds everything built from the configuration.
type runtime struct {
	cfg      *Config
	logger   *slog.Logger
	input    *storage.FS
	output   *storage.FS
	db       *index.DB
	pipeline *pipeline.Pipeline
}

func (rt *runtime) Close() {
	if rt.db != nil {
		if err := rt.db.Close(); err != nil {
			rt.logger.Warn("manifest close failed", slog.String("error", err.Error()))
		}
	}
}

func newLogger(cfg *Config, app *application) *slog.Logger {
	out := app.logOut
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: cfg.App.LogLevel}
	if cfg.App.LogFormat == LogFormatText {
		return slog.New(slog.NewTextHandler(out, opts))
	}
	return slog.New(slog.NewJSONHandler(out, opts))
}

func bootstrap(opts ...Option) (*runtime, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := newLogger(cfg, app)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("input_path", cfg.Input.Path),
		slog.String("output_path", cfg.Output.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Float64("similarity_threshold", cfg.Grouping.SimilarityThreshold),
		slog.String("log_level", cfg.App.LogLevel.String()))

	input, err := storage.NewFS(cfg.Input.Path)
	if err != nil {
		return nil, fmt.Errorf("init input: %w", err)
	}
	output, err := storage.EnsureFS(cfg.Output.Path)
	if err != nil {
		return nil, fmt.Errorf("init output: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: logger, input: input, output: output}

	// A nil *index.DB must not reach the pipeline as a non-nil interface.
	var manifest index.Manifest
	if cfg.SQLite.Enabled() {
		db, err := index.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("init manifest: %w", err)
		}
		rt.db = db
		manifest = db
	}

	rt.pipeline = pipeline.New(input, output, manifest, logger,
		pipeline.WithThreshold(cfg.Grouping.SimilarityThreshold),
		pipeline.WithExtensions(cfg.Input.Extensions...),
		pipeline.WithWorkers(cfg.Input.Workers),
		pipeline.WithPrune(cfg.Output.Prune),
		pipeline.WithReportFile(cfg.Output.ReportFile),
	)
	return rt, nil
}

// Run performs one batch pass from transcripts to documents.
func Run(ctx context.Context, opts ...Option) (*pipeline.Report, error) {
	rt, err := bootstrap(opts...)
	if err != nil {
		return nil, err
	}
	defer rt.Close()

	return rt.pipeline.Run(ctx)
}

// Watch runs the pipeline once, then again after every burst of input changes,
// until ctx is cancelled or a shutdown signal arrives.
func Watch(ctx context.Context, opts ...Option) error {
	rt, err := bootstrap(opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return rt.watch(ctx)
}

func (rt *runtime) watch(ctx context.Context) error {
	if _, err := rt.pipeline.Run(ctx); err != nil {
		return err
	}
	err := watch.Watch(ctx, rt.input.Root(), rt.cfg.Input.Extensions, rt.cfg.Input.Debounce, rt.logger,
		func(ctx context.Context, changed []string) {
			if _, err := rt.pipeline.Run(ctx); err != nil && ctx.Err() == nil {
				rt.logger.Error("pipeline run failed", slog.Any("changed", changed), slog.String("error", err.Error()))
			}
		})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}

// Serve runs the pipeline in watch mode and exposes the generated documents
// over HTTP.
func Serve(ctx context.Context, opts ...Option) error {
	rt, err := bootstrap(opts...)
	if err != nil {
		return err
	}
	defer rt.Close()
	if rt.db == nil {
		return fmt.Errorf("serve requires sqlite.path")
	}
	cfg := rt.cfg
	logger := rt.logger

	svc := docservice.NewService(rt.output, rt.db)
	apiRouter := api.NewRouter(svc, rt.pipeline, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := svc.LatestRun(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"pending"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return rt.watch(gCtx)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the errgroup so the watcher stops with the HTTP server.
var errShutdown = errors.New("shutdown")

// ServeMCP exposes documents and the grouping and classification tools over
// MCP stdio. Logs go to stderr unless WithLogOutput says otherwise.
func ServeMCP(ctx context.Context, opts ...Option) error {
	rt, err := bootstrap(append([]Option{WithLogOutput(os.Stderr)}, opts...)...)
	if err != nil {
		return err
	}
	defer rt.Close()
	if rt.db == nil {
		return fmt.Errorf("mcp requires sqlite.path")
	}

	srv := mcpserver.New(docservice.NewService(rt.output, rt.db), rt.pipeline, rt.logger)
	rt.logger.Info("mcp: serving on stdio")
	return srv.ServeStdio()
}
