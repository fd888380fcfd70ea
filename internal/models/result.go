package models

import "github.com/starford/genedata/internal/apperr"

// Status is the outcome of a single query.
type Status int

const (
	StatusOK Status = iota
	StatusNotFound
	StatusMissing
	StatusMalformed
	StatusUnknown
)

// String returns a short label used in logs and metrics.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusMissing:
		return "missing"
	case StatusMalformed:
		return "malformed"
	case StatusUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Result is the answer to one Command.
//
// Only the fields relevant to the command kind are set:
//   - KindLocate: Decoded, and Match when Status is StatusOK.
//   - KindCompare: Difference when Status is StatusOK.
//   - KindMode: Symbol and Count when Status is StatusOK.
type Result struct {
	Command    Command
	Status     Status
	Decoded    string
	Match      Record
	Difference int
	Symbol     rune
	Count      int
}

// OK reports whether the query produced a value.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

// Err maps a non-OK status onto its sentinel error, or nil for StatusOK.
func (r Result) Err() error {
	switch r.Status {
	case StatusOK:
		return nil
	case StatusNotFound:
		return apperr.ErrNotFound
	case StatusMissing:
		return apperr.ErrMissingEntity
	case StatusMalformed:
		return apperr.ErrMalformedSequence
	default:
		return apperr.ErrUnknownCommand
	}
}
