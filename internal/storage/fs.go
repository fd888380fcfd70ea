package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Verify *FS satisfies Provider at compile time.
var _ Provider = (*FS)(nil)

// FS implements Provider backed by the local file system. Relative names
// resolve against root.
type FS struct {
	root string // absolute base directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Path resolves name against the root.
func (f *FS) Path(name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(f.root, name)
}

// Open opens a local file for reading.
func (f *FS) Open(_ context.Context, name string) (io.ReadCloser, error) {
	fh, err := os.Open(f.Path(name))
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", name, err)
	}
	return fh, nil
}

// Create starts an atomic write: content goes to a temp file in the target
// directory and is renamed over the target on Commit.
func (f *FS) Create(_ context.Context, name string) (Sink, error) {
	abs := f.Path(name)
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".genedata-tmp-*")
	if err != nil {
		return nil, fmt.Errorf("storage: create temp: %w", err)
	}
	return &fileSink{tmp: tmp, target: abs}, nil
}

type fileSink struct {
	tmp    *os.File
	target string
	done   bool
}

func (s *fileSink) Write(p []byte) (int, error) {
	if s.done {
		return 0, fmt.Errorf("storage: write to closed sink %s", s.target)
	}
	return s.tmp.Write(p)
}

// Commit is tmp file → fsync → rename.
func (s *fileSink) Commit() error {
	if s.done {
		return nil
	}
	s.done = true
	tmpName := s.tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = s.tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err := s.tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := s.tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.target); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

func (s *fileSink) Abort() error {
	if s.done {
		return nil
	}
	s.done = true
	_ = s.tmp.Close()
	if err := os.Remove(s.tmp.Name()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove temp: %w", err)
	}
	return nil
}
