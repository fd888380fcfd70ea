package proteinservice

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/starford/genedata/internal/apperr"
	"github.com/starford/genedata/internal/catalog"
	"github.com/starford/genedata/internal/models"
	"github.com/starford/genedata/internal/report"
	"github.com/starford/genedata/internal/testutil"
)

func newTestService(t *testing.T) (*Service, *catalog.Holder) {
	t.Helper()
	c := testutil.SampleCatalog(t)
	h := catalog.NewHolder(catalog.NewSnapshot(c, c, nil), 0)
	return NewService(h, "Lab"), h
}

func TestGetRecord(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.GetRecord(ctx, "P1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Origin != "Org1" {
		t.Errorf("origin = %q, want first P1 (Org1)", rec.Origin)
	}

	_, err = svc.GetRecord(ctx, "nope")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Search(ctx, "2B")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found || res.Name != "P3" || res.Decoded != "BB" {
		t.Errorf("got %+v", res)
	}

	res, err = svc.Search(ctx, "Z")
	if err != nil {
		t.Fatal(err)
	}
	if res.Found || res.Name != "" {
		t.Errorf("got %+v, want not found", res)
	}

	_, err = svc.Search(ctx, "A3")
	if !errors.Is(err, apperr.ErrMalformedSequence) {
		t.Errorf("err = %v, want ErrMalformedSequence", err)
	}
}

func TestDiffAndMode(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	d, err := svc.Diff(ctx, "P1", "P3")
	if err != nil {
		t.Fatal(err)
	}
	if d.Missing || d.Difference != 1 {
		t.Errorf("diff = %+v, want difference 1", d)
	}

	d, _ = svc.Diff(ctx, "P1", "nope")
	if !d.Missing {
		t.Errorf("diff = %+v, want missing", d)
	}

	m, err := svc.Mode(ctx, "P4")
	if err != nil {
		t.Fatal(err)
	}
	if m.Missing || m.Symbol != "A" || m.Count != 2 {
		t.Errorf("mode = %+v, want A x2", m)
	}

	m, _ = svc.Mode(ctx, "nope")
	if !m.Missing || m.Symbol != "" {
		t.Errorf("mode = %+v, want missing", m)
	}
}

func TestReport(t *testing.T) {
	svc, _ := newTestService(t)

	out, err := svc.Report(context.Background(), strings.NewReader("mode\tP1\nfoo\n"))
	if err != nil {
		t.Fatal(err)
	}
	if out.Commands != 2 {
		t.Errorf("commands = %d, want 2", out.Commands)
	}
	if !strings.HasPrefix(out.Text, "Lab\n"+report.Separator+"\n") {
		t.Errorf("header missing: %q", out.Text)
	}
	if !strings.Contains(out.Text, "001 mode P1\namino-acid occurs:\nA 2\n") || !strings.Contains(out.Text, "002 UNKNOWN COMMAND\n") {
		t.Errorf("unexpected report:\n%s", out.Text)
	}
}

func TestCatalogFollowsSwap(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()

	before := svc.Catalog(ctx)
	if before.Records != 5 {
		t.Fatalf("records = %d, want 5", before.Records)
	}

	next := testutil.Catalog(t, models.Record{Name: "Q", Origin: "OrgQ", Formula: "3Z"})
	h.Swap(catalog.NewSnapshot(next, next, nil))

	after := svc.Catalog(ctx)
	if after.Records != 1 || after.Checksum == before.Checksum {
		t.Errorf("catalog info not refreshed: %+v", after)
	}
	m, _ := svc.Mode(ctx, "Q")
	if m.Symbol != "Z" || m.Count != 3 {
		t.Errorf("mode after swap = %+v", m)
	}
}

// swapOnRead swaps the holder's snapshot the first time it is read.
type swapOnRead struct {
	r    io.Reader
	swap func()
}

func (s *swapOnRead) Read(p []byte) (int, error) {
	if s.swap != nil {
		s.swap()
		s.swap = nil
	}
	return s.r.Read(p)
}

func TestReportKeepsStoreOpenAcrossSwap(t *testing.T) {
	c := testutil.SampleCatalog(t)
	store, err := catalog.NewSQLiteStore(c)
	if err != nil {
		t.Fatal(err)
	}
	h := catalog.NewHolder(catalog.NewSnapshot(c, store, store), 0)
	svc := NewService(h, "Lab")

	next := testutil.Catalog(t, models.Record{Name: "Q", Origin: "OrgQ", Formula: "3Z"})
	commands := &swapOnRead{
		r:    strings.NewReader("mode\tP1\nsearch\tA\n"),
		swap: func() { h.Swap(catalog.NewSnapshot(next, next, nil)) },
	}

	out, err := svc.Report(context.Background(), commands)
	if err != nil {
		t.Fatalf("report against swapped store: %v", err)
	}
	if !strings.Contains(out.Text, "001 mode P1\namino-acid occurs:\nA 2\n") {
		t.Errorf("report should use the snapshot it started with:\n%s", out.Text)
	}
	if _, _, err := store.FindByName("P1"); err == nil {
		t.Error("old store should be closed once the report released it")
	}
	if m, _ := svc.Mode(context.Background(), "Q"); m.Symbol != "Z" {
		t.Errorf("mode after swap = %+v", m)
	}
}
