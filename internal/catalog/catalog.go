// Package catalog holds the ordered, read-only collection of protein records
// and the lookups the query engine runs against it.
package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/starford/genedata/internal/codec"
	"github.com/starford/genedata/internal/models"
)

// Store is the lookup surface the query engine depends on.
// Every implementation must honour catalog order: the first record wins.
type Store interface {
	// FindByName returns the first record whose name equals name.
	FindByName(name string) (models.Record, bool, error)
	// FindContainingDecoded returns the index of the first record whose
	// decoded formula contains pattern as a contiguous substring.
	FindContainingDecoded(pattern string) (int, bool, error)
	// Record returns the record at catalog position i.
	Record(i int) (models.Record, error)
	// Len returns the number of records.
	Len() int
}

// Verify *Catalog satisfies Store at compile time.
var _ Store = (*Catalog)(nil)

// Catalog is an ordered slice of records. It is immutable once built.
type Catalog struct {
	records  []models.Record
	checksum string

	decodeOnce sync.Once
	decoded    []string
}

// New builds a catalog from records in the given order. Every formula must
// decode; the first one that does not is reported as a malformed record.
func New(records ...models.Record) (*Catalog, error) {
	for i, r := range records {
		if _, err := codec.Decode(r.Formula); err != nil {
			return nil, &LineError{Line: i + 1, Err: err}
		}
	}
	out := make([]models.Record, len(records))
	copy(out, records)
	return &Catalog{records: out}, nil
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Records returns a copy of all records in catalog order.
func (c *Catalog) Records() []models.Record {
	out := make([]models.Record, len(c.records))
	copy(out, c.records)
	return out
}

// Record returns the record at position i.
func (c *Catalog) Record(i int) (models.Record, error) {
	if i < 0 || i >= len(c.records) {
		return models.Record{}, fmt.Errorf("catalog: index %d out of range [0,%d)", i, len(c.records))
	}
	return c.records[i], nil
}

// Checksum returns the SHA-256 of the bytes the catalog was loaded from,
// or "" when it was built in memory.
func (c *Catalog) Checksum() string {
	return c.checksum
}

// FindByName scans in catalog order and returns the first match.
func (c *Catalog) FindByName(name string) (models.Record, bool, error) {
	for _, r := range c.records {
		if r.Name == name {
			return r, true, nil
		}
	}
	return models.Record{}, false, nil
}

// FindContainingDecoded scans in catalog order. Formulas are decoded once,
// on first use.
func (c *Catalog) FindContainingDecoded(pattern string) (int, bool, error) {
	for i, seq := range c.decodedFormulas() {
		if strings.Contains(seq, pattern) {
			return i, true, nil
		}
	}
	return -1, false, nil
}

func (c *Catalog) decodedFormulas() []string {
	c.decodeOnce.Do(func() {
		c.decoded = make([]string, len(c.records))
		for i, r := range c.records {
			// Formulas were validated on construction.
			c.decoded[i] = codec.MustDecode(r.Formula)
		}
	})
	return c.decoded
}
