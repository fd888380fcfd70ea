// Package proteinservice exposes catalog queries to the HTTP and MCP surfaces.
package proteinservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/starford/genedata/internal/apperr"
	"github.com/starford/genedata/internal/catalog"
	"github.com/starford/genedata/internal/models"
	"github.com/starford/genedata/internal/parser"
	"github.com/starford/genedata/internal/query"
	"github.com/starford/genedata/internal/report"
)

// CatalogInfo summarizes the active catalog.
type CatalogInfo struct {
	Records  int       `json:"records"`
	Checksum string    `json:"checksum"`
	LoadedAt time.Time `json:"loaded_at"`
}

// SearchResult is the answer to a search query.
type SearchResult struct {
	Pattern string `json:"pattern"`
	Decoded string `json:"decoded"`
	Found   bool   `json:"found"`
	Name    string `json:"name,omitempty"`
	Origin  string `json:"origin,omitempty"`
}

// DiffResult is the answer to a diff query.
type DiffResult struct {
	A          string `json:"a"`
	B          string `json:"b"`
	Missing    bool   `json:"missing"`
	Difference int    `json:"difference"`
}

// ModeResult is the answer to a mode query.
type ModeResult struct {
	Name    string `json:"name"`
	Missing bool   `json:"missing"`
	Symbol  string `json:"symbol,omitempty"`
	Count   int    `json:"count"`
}

// ReportResult is a rendered report.
type ReportResult struct {
	Text     string `json:"text"`
	Commands int    `json:"commands"`
}

var errCatalogClosed = errors.New("catalog closed")

// Service answers queries against whatever catalog the holder serves.
type Service struct {
	holder *catalog.Holder
	engine *query.Engine
	opts   []query.Option
	label  string
}

// NewService creates a new service. opts are passed to the query engine.
func NewService(holder *catalog.Holder, label string, opts ...query.Option) *Service {
	return &Service{
		holder: holder,
		engine: query.NewWithSource(holder.Store, opts...),
		opts:   opts,
		label:  label,
	}
}

// Catalog describes the active catalog.
func (s *Service) Catalog(_ context.Context) *CatalogInfo {
	snap := s.holder.Load()
	return &CatalogInfo{
		Records:  snap.Catalog.Len(),
		Checksum: snap.Catalog.Checksum(),
		LoadedAt: snap.LoadedAt,
	}
}

// GetRecord returns the first record named name.
func (s *Service) GetRecord(_ context.Context, name string) (*models.Record, error) {
	rec, ok, err := s.holder.Store().FindByName(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("record %q: %w", name, apperr.ErrNotFound)
	}
	return &rec, nil
}

// Search finds the first record whose decoded formula contains the decoded
// pattern. A pattern that does not decode yields apperr.ErrMalformedSequence.
func (s *Service) Search(_ context.Context, pattern string) (*SearchResult, error) {
	res, err := s.engine.Locate(pattern)
	if err != nil {
		return nil, err
	}
	if res.Status == models.StatusMalformed {
		return nil, fmt.Errorf("pattern %q: %w", pattern, res.Err())
	}
	out := &SearchResult{Pattern: pattern, Decoded: res.Decoded, Found: res.OK()}
	if res.OK() {
		out.Name = res.Match.Name
		out.Origin = res.Match.Origin
	}
	return out, nil
}

// Diff compares two records by name.
func (s *Service) Diff(_ context.Context, a, b string) (*DiffResult, error) {
	res, err := s.engine.Compare(a, b)
	if err != nil {
		return nil, err
	}
	return &DiffResult{A: a, B: b, Missing: !res.OK(), Difference: res.Difference}, nil
}

// Mode returns the most frequent symbol of a record's decoded formula.
func (s *Service) Mode(_ context.Context, name string) (*ModeResult, error) {
	res, err := s.engine.Mode(name)
	if err != nil {
		return nil, err
	}
	out := &ModeResult{Name: name, Missing: !res.OK()}
	if res.OK() {
		out.Symbol = string(res.Symbol)
		out.Count = res.Count
	}
	return out, nil
}

// Report renders a full report for a command stream. Every command in one
// report sees the same catalog even if a reload lands midway, and that
// catalog's store stays open until the report is done.
func (s *Service) Report(ctx context.Context, commands io.Reader) (*ReportResult, error) {
	snap := s.holder.Acquire()
	if snap == nil {
		return nil, errCatalogClosed
	}
	defer snap.Release()

	var sb strings.Builder
	w := report.NewWriter(&sb, s.label)
	if err := w.WriteHeader(); err != nil {
		return nil, err
	}
	n, err := query.New(snap.Store, s.opts...).Run(ctx, parser.NewScanner(commands), w.Write)
	if err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return &ReportResult{Text: sb.String(), Commands: n}, nil
}
