// Package storage opens the input streams and creates the report stream.
// Streams are addressed by name: "-" for stdin/stdout, "s3://bucket/key"
// for object storage, anything else is a local path.
package storage

import (
	"context"
	"io"
)

// Sink is an output stream whose content becomes visible only on Commit.
// Abort discards everything written; it is a no-op after Commit, so the
// usual pattern is:
//
//	sink, err := p.Create(ctx, name)
//	if err != nil { ... }
//	defer sink.Abort()
//	... write ...
//	return sink.Commit()
type Sink interface {
	io.Writer
	Commit() error
	Abort() error
}

// Provider is the interface for stream access.
type Provider interface {
	// Open returns a reader for the named input stream.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Create returns a sink for the named output stream.
	Create(ctx context.Context, name string) (Sink, error)
}
