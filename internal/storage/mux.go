package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Verify *Mux satisfies Provider at compile time.
var _ Provider = (*Mux)(nil)

// Mux routes stream names to the matching backend. The S3 client is built
// on first use so runs that never touch object storage need no AWS setup.
type Mux struct {
	fs    *FS
	s3cfg S3Config

	s3Once sync.Once
	s3     Provider
	s3Err  error

	stdout io.Writer
}

// NewMux returns a Mux with local paths resolved against root.
func NewMux(root string, s3cfg S3Config) (*Mux, error) {
	fs, err := NewFS(root)
	if err != nil {
		return nil, err
	}
	return &Mux{fs: fs, s3cfg: s3cfg, stdout: os.Stdout}, nil
}

// WithS3 installs an explicit S3 backend, replacing lazy construction.
func (m *Mux) WithS3(p Provider) *Mux {
	m.s3Once.Do(func() {})
	m.s3 = p
	return m
}

// FS returns the local backend.
func (m *Mux) FS() *FS {
	return m.fs
}

// IsLocal reports whether name addresses a local file.
func IsLocal(name string) bool {
	return name != StdinName && !strings.HasPrefix(name, S3Scheme)
}

// Open dispatches on the stream name.
func (m *Mux) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	switch {
	case name == StdinName:
		return openStdin(), nil
	case strings.HasPrefix(name, S3Scheme):
		p, err := m.objectStore(ctx)
		if err != nil {
			return nil, err
		}
		return p.Open(ctx, name)
	default:
		return m.fs.Open(ctx, name)
	}
}

// Create dispatches on the stream name.
func (m *Mux) Create(ctx context.Context, name string) (Sink, error) {
	switch {
	case name == StdinName:
		return stdoutSink{w: m.stdout}, nil
	case strings.HasPrefix(name, S3Scheme):
		p, err := m.objectStore(ctx)
		if err != nil {
			return nil, err
		}
		return p.Create(ctx, name)
	default:
		return m.fs.Create(ctx, name)
	}
}

func (m *Mux) objectStore(ctx context.Context) (Provider, error) {
	m.s3Once.Do(func() {
		m.s3, m.s3Err = NewS3(ctx, m.s3cfg)
	})
	if m.s3Err != nil {
		return nil, fmt.Errorf("storage: s3 backend: %w", m.s3Err)
	}
	return m.s3, nil
}

// WithStdout redirects the "-" output stream.
func (m *Mux) WithStdout(w io.Writer) *Mux {
	m.stdout = w
	return m
}
