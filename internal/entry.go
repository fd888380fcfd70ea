// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/starford/genedata/internal/catalog"
	"github.com/starford/genedata/internal/metrics"
	"github.com/starford/genedata/internal/parser"
	"github.com/starford/genedata/internal/query"
	"github.com/starford/genedata/internal/report"
	"github.com/starford/genedata/internal/storage"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	cfg := app.config

	// Structured JSON logger on stderr; stdout may carry the report.
	if app.logger == nil {
		app.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
		slog.SetDefault(app.logger)
	}

	if app.stdout == nil {
		app.stdout = os.Stdout
	}

	if app.streams == nil {
		mux, err := storage.NewMux(cfg.App.WorkDir, cfg.S3.Storage())
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		app.streams = mux.WithStdout(app.stdout)
	}

	if app.metrics == nil {
		app.metrics = metrics.New()
	}
	return app, nil
}

// Run executes one batch run: the catalog is loaded completely, then every
// command is answered in order and the report is committed.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger

	logger.Info("Configuration loaded",
		slog.String("catalog", cfg.Input.Catalog),
		slog.String("commands", cfg.Input.Commands),
		slog.String("report", cfg.Output.Report),
		slog.String("backend", cfg.Catalog.Backend),
		slog.String("log_level", cfg.App.LogLevel.String()))

	cat, err := app.loadCatalog(ctx)
	if err != nil {
		return err
	}

	snap, err := app.snapshot(cat)
	if err != nil {
		return err
	}
	defer snap.Close()

	n, err := app.writeReport(ctx, snap.Store)
	if err != nil {
		return err
	}

	logger.Info("Run finished",
		slog.Int("records", cat.Len()),
		slog.Int("commands", n),
		slog.String("report", cfg.Output.Report))

	if cfg.Output.Report != storage.StdinName {
		fmt.Fprintf(app.stdout, "Operations completed. Results saved to %s\n", cfg.Output.Report)
	}
	return nil
}

// loadCatalog reads the catalog stream with the configured policy.
func (a *application) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	name := a.config.Input.Catalog
	rc, err := a.streams.Open(ctx, name)
	if err != nil {
		a.metrics.ObserveCatalogLoad(0, err)
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer rc.Close()

	cat, err := catalog.Load(rc,
		catalog.WithPolicy(a.config.Catalog.Policy()),
		catalog.WithLogger(a.logger))
	if err != nil {
		a.metrics.ObserveCatalogLoad(0, err)
		return nil, fmt.Errorf("load catalog %s: %w", name, err)
	}
	a.metrics.ObserveCatalogLoad(cat.Len(), nil)

	a.logger.Info("Catalog loaded",
		slog.String("catalog", name),
		slog.Int("records", cat.Len()),
		slog.String("checksum", cat.Checksum()))
	return cat, nil
}

// snapshot wraps cat in the configured store backend.
func (a *application) snapshot(cat *catalog.Catalog) (*catalog.Snapshot, error) {
	if a.config.Catalog.Backend != BackendSQLite {
		return catalog.NewSnapshot(cat, cat, nil), nil
	}
	store, err := catalog.NewSQLiteStore(cat)
	if err != nil {
		return nil, fmt.Errorf("init sqlite store: %w", err)
	}
	return catalog.NewSnapshot(cat, store, store), nil
}

func (a *application) engine(src query.Source) *query.Engine {
	return query.NewWithSource(src, query.WithRecorder(a.metrics))
}

// writeReport answers the command stream into the report stream. The report
// is only committed when every command was processed.
func (a *application) writeReport(ctx context.Context, store catalog.Store) (int, error) {
	cfg := a.config

	rc, err := a.streams.Open(ctx, cfg.Input.Commands)
	if err != nil {
		return 0, fmt.Errorf("open commands: %w", err)
	}
	defer rc.Close()

	sink, err := a.streams.Create(ctx, cfg.Output.Report)
	if err != nil {
		return 0, fmt.Errorf("create report: %w", err)
	}
	defer sink.Abort()

	n, err := a.render(ctx, store, rc, sink, cfg.Report.Label)
	if err != nil {
		return n, err
	}
	if err := sink.Commit(); err != nil {
		return n, fmt.Errorf("commit report: %w", err)
	}
	return n, nil
}

// render writes the header and one block per command read from commands.
func (a *application) render(ctx context.Context, store catalog.Store, commands io.Reader, out io.Writer, label string) (int, error) {
	w := report.NewWriter(out, label)
	if err := w.WriteHeader(); err != nil {
		return 0, err
	}

	eng := a.engine(func() catalog.Store { return store })
	n, err := eng.Run(ctx, parser.NewScanner(commands), w.Write)
	if err != nil {
		return n, fmt.Errorf("process commands: %w", err)
	}
	if err := w.Flush(); err != nil {
		return n, err
	}
	return n, nil
}
