// Package query answers search, diff and mode commands against a catalog.
package query

import (
	"context"
	"fmt"

	"github.com/starford/genedata/internal/catalog"
	"github.com/starford/genedata/internal/codec"
	"github.com/starford/genedata/internal/models"
)

// Recorder observes processed commands. *metrics.Metrics implements it.
type Recorder interface {
	ObserveQuery(kind models.Kind, status models.Status)
}

// Source returns the catalog a command should run against. It is called
// once per Execute and once per Run, so a reloadable holder can swap the
// catalog between calls without tearing a report.
type Source func() catalog.Store

// Commands is a stream of parsed commands. *parser.Scanner implements it.
type Commands interface {
	Scan() bool
	Command() models.Command
	Err() error
}

// Engine is stateless across commands: every result is a function of the
// catalog and the command arguments alone.
type Engine struct {
	source   Source
	recorder Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder attaches a Recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// New returns an Engine bound to a fixed store.
func New(store catalog.Store, opts ...Option) *Engine {
	return NewWithSource(func() catalog.Store { return store }, opts...)
}

// NewWithSource returns an Engine that asks src for the current store.
func NewWithSource(src Source, opts ...Option) *Engine {
	e := &Engine{source: src}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs one command. Missing names, unknown verbs and malformed
// patterns are reported in the result; the error is reserved for store
// failures.
func (e *Engine) Execute(cmd models.Command) (models.Result, error) {
	return e.execute(e.source(), cmd)
}

// Run executes commands in stream order and hands each result to emit
// before reading the next command. It returns the number of commands
// processed. Cancellation is checked between commands.
func (e *Engine) Run(ctx context.Context, cmds Commands, emit func(models.Result) error) (int, error) {
	store := e.source()
	n := 0
	for cmds.Scan() {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		res, err := e.execute(store, cmds.Command())
		if err != nil {
			return n, err
		}
		if err := emit(res); err != nil {
			return n, err
		}
		n++
	}
	return n, cmds.Err()
}

// Locate runs a search for a compact pattern.
func (e *Engine) Locate(pattern string) (models.Result, error) {
	return e.Execute(models.Locate(0, pattern))
}

// Compare runs a diff between two names.
func (e *Engine) Compare(nameA, nameB string) (models.Result, error) {
	return e.Execute(models.Compare(0, nameA, nameB))
}

// Mode runs a frequency-mode query for a name.
func (e *Engine) Mode(name string) (models.Result, error) {
	return e.Execute(models.Mode(0, name))
}

func (e *Engine) execute(store catalog.Store, cmd models.Command) (models.Result, error) {
	var (
		res models.Result
		err error
	)
	switch cmd.Kind {
	case models.KindLocate:
		res, err = locate(store, cmd)
	case models.KindCompare:
		res, err = compare(store, cmd)
	case models.KindMode:
		res, err = mode(store, cmd)
	default:
		res = models.Result{Command: cmd, Status: models.StatusUnknown}
	}
	if err != nil {
		return models.Result{}, fmt.Errorf("query: command %d (%s): %w", cmd.Index, cmd.Kind, err)
	}
	if e.recorder != nil {
		e.recorder.ObserveQuery(cmd.Kind, res.Status)
	}
	return res, nil
}

func locate(store catalog.Store, cmd models.Command) (models.Result, error) {
	res := models.Result{Command: cmd}
	decoded, err := codec.Decode(cmd.Arg(0))
	if err != nil {
		res.Status = models.StatusMalformed
		return res, nil
	}
	res.Decoded = decoded

	i, ok, err := store.FindContainingDecoded(decoded)
	if err != nil {
		return res, err
	}
	if !ok {
		res.Status = models.StatusNotFound
		return res, nil
	}
	rec, err := store.Record(i)
	if err != nil {
		return res, err
	}
	res.Match = rec
	res.Status = models.StatusOK
	return res, nil
}

func compare(store catalog.Store, cmd models.Command) (models.Result, error) {
	res := models.Result{Command: cmd}
	a, err := decodedByName(store, cmd.Arg(0))
	if err != nil {
		return res, err
	}
	b, err := decodedByName(store, cmd.Arg(1))
	if err != nil {
		return res, err
	}
	if a == "" || b == "" {
		res.Status = models.StatusMissing
		return res, nil
	}
	res.Difference = Difference(a, b)
	res.Status = models.StatusOK
	return res, nil
}

func mode(store catalog.Store, cmd models.Command) (models.Result, error) {
	res := models.Result{Command: cmd}
	seq, err := decodedByName(store, cmd.Arg(0))
	if err != nil {
		return res, err
	}
	if seq == "" {
		res.Status = models.StatusMissing
		return res, nil
	}
	res.Symbol, res.Count = MostFrequent(seq)
	res.Status = models.StatusOK
	return res, nil
}

// decodedByName returns the decoded formula of the first record named
// name, or "" when there is none. An empty formula counts as absent.
func decodedByName(store catalog.Store, name string) (string, error) {
	rec, ok, err := store.FindByName(name)
	if err != nil || !ok {
		return "", err
	}
	return codec.Decode(rec.Formula)
}
