// Package testutil provides shared test fixtures for catalogs and streams.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/genedata/internal/catalog"
	"github.com/starford/genedata/internal/models"
)

// SampleCatalogText is a small catalog in stream form. Decoded formulas:
//
//	P1   AAB
//	P2   AAC
//	P3   AABB
//	P1   KKK   (shadowed by the first P1)
//	P4   ABAB
const SampleCatalogText = "P1\tOrg1\t2AB\n" +
	"P2\tOrg2\t2AC\n" +
	"P3\tOrg3\t2A2B\n" +
	"P1\tOrgDup\t3K\n" +
	"P4\tOrg4\tABAB\n"

// Catalog builds a catalog from records and fails the test on error.
func Catalog(t *testing.T, records ...models.Record) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(records...)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return c
}

// SampleCatalog loads SampleCatalogText.
func SampleCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load(strings.NewReader(SampleCatalogText))
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	return c
}

// WriteFile writes content under a fresh temp dir and returns its path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}
