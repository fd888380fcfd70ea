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

	"github.com/starford/genedata/internal/api"
	"github.com/starford/genedata/internal/catalog"
	"github.com/starford/genedata/internal/mcpserver"
	"github.com/starford/genedata/internal/proteinservice"
	"github.com/starford/genedata/internal/query"
	"github.com/starford/genedata/internal/sse"
	"github.com/starford/genedata/internal/storage"
	"github.com/starford/genedata/internal/watch"
)

// snapshotGrace is how long a replaced catalog stays open for single
// queries that loaded it before the swap. Reports acquire the snapshot and
// keep it open until they finish.
const snapshotGrace = 30 * time.Second

// Serve runs the HTTP query API until ctx is cancelled or a shutdown signal
// arrives. The catalog is reloaded when its file changes.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.HTTP.Address()),
		slog.String("catalog", cfg.Input.Catalog),
		slog.String("backend", cfg.Catalog.Backend),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	holder, err := app.initialSnapshot(ctx, snapshotGrace)
	if err != nil {
		return err
	}
	defer holder.Close()

	broker := sse.NewBroker(15 * time.Second)
	defer broker.Close()

	svc := proteinservice.NewService(holder, cfg.Report.Label, query.WithRecorder(app.metrics))
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if holder.Load() == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"loading"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", app.metrics.Handler())

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Watch.Enabled && storage.IsLocal(cfg.Input.Catalog) {
		path := localPath(app.streams, cfg.Input.Catalog)
		g.Go(func() error {
			return watch.File(gCtx, path, cfg.Watch.Debounce, logger, func(ctx context.Context) {
				app.reload(ctx, holder, broker)
			})
		})
	} else if cfg.Watch.Enabled {
		logger.Warn("watch disabled for non-local catalog", slog.String("catalog", cfg.Input.Catalog))
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
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

// errShutdown stops the errgroup so the watcher exits with the server.
var errShutdown = errors.New("shutdown")

// ServeMCP serves the query tools over stdio until the client disconnects.
func ServeMCP(ctx context.Context, version string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	// stdin carries the MCP protocol.
	if app.config.Input.Catalog == storage.StdinName {
		return fmt.Errorf("mcp: catalog cannot be read from stdin")
	}

	holder, err := app.initialSnapshot(ctx, 0)
	if err != nil {
		return err
	}
	defer holder.Close()

	svc := proteinservice.NewService(holder, app.config.Report.Label, query.WithRecorder(app.metrics))
	app.logger.Info("MCP server starting on stdio", slog.Int("records", holder.Load().Catalog.Len()))
	return mcpserver.New(svc, version).ServeStdio()
}

// initialSnapshot loads the catalog once and publishes it in a Holder.
func (a *application) initialSnapshot(ctx context.Context, grace time.Duration) (*catalog.Holder, error) {
	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := a.snapshot(cat)
	if err != nil {
		return nil, err
	}
	return catalog.NewHolder(snap, grace), nil
}

// reload loads the catalog again and swaps it in. A catalog that fails to
// load or has the same checksum leaves the active one in place.
func (a *application) reload(ctx context.Context, holder *catalog.Holder, broker *sse.Broker) {
	cat, err := a.loadCatalog(ctx)
	if err != nil {
		a.logger.Warn("catalog reload failed, keeping previous catalog", slog.String("error", err.Error()))
		broker.PublishReloadFailed(err)
		return
	}
	if cat.Checksum() == holder.Load().Catalog.Checksum() {
		a.logger.Debug("catalog unchanged", slog.String("checksum", cat.Checksum()))
		return
	}
	snap, err := a.snapshot(cat)
	if err != nil {
		a.logger.Warn("catalog reload failed, keeping previous catalog", slog.String("error", err.Error()))
		broker.PublishReloadFailed(err)
		return
	}
	holder.Swap(snap)
	a.logger.Info("catalog reloaded",
		slog.Int("records", cat.Len()),
		slog.String("checksum", cat.Checksum()))
	broker.PublishReloaded(cat.Checksum(), cat.Len())
}

// localPath resolves a local stream name to the file the watcher should follow.
func localPath(p storage.Provider, name string) string {
	if mux, ok := p.(*storage.Mux); ok {
		return mux.FS().Path(name)
	}
	return name
}
