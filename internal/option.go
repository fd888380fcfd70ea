package internal

import (
	"io"
	"log/slog"

	"github.com/starford/genedata/internal/metrics"
	"github.com/starford/genedata/internal/storage"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	logger  *slog.Logger
	streams storage.Provider
	metrics *metrics.Metrics
	stdout  io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger replaces the JSON stderr logger built from the config.
func WithLogger(l *slog.Logger) Option {
	return func(a *application) {
		a.logger = l
	}
}

// WithStreams replaces the default stream provider.
func WithStreams(p storage.Provider) Option {
	return func(a *application) {
		a.streams = p
	}
}

// WithMetrics attaches a metrics registry.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *application) {
		a.metrics = m
	}
}

// WithStdout sets where the completion message is printed.
func WithStdout(w io.Writer) Option {
	return func(a *application) {
		a.stdout = w
	}
}
