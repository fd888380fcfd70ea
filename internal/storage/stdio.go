package storage

import (
	"io"
	"os"
)

// StdinName selects stdin as an input stream and stdout as an output stream.
const StdinName = "-"

type stdoutSink struct {
	w io.Writer
}

func (s stdoutSink) Write(p []byte) (int, error) { return s.w.Write(p) }

func (stdoutSink) Commit() error { return nil }

func (stdoutSink) Abort() error { return nil }

func openStdin() io.ReadCloser {
	return io.NopCloser(os.Stdin)
}
