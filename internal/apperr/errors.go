// Package apperr holds the sentinel errors shared across layers.
package apperr

import "errors"

var (
	// ErrMalformedRecord marks a catalog line that cannot become a record.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrMalformedSequence marks a compact formula ending on a bare digit.
	ErrMalformedSequence = errors.New("malformed sequence")
	// ErrMissingEntity marks a name that is absent from the catalog.
	ErrMissingEntity = errors.New("missing entity")
	// ErrUnknownCommand marks a command line with an unrecognized verb.
	ErrUnknownCommand = errors.New("unknown command")
	ErrNotFound       = errors.New("not found")
)
