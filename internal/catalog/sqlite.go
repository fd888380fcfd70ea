package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/genedata/internal/codec"
	"github.com/starford/genedata/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS records (
	seq     INTEGER PRIMARY KEY,
	name    TEXT NOT NULL,
	origin  TEXT NOT NULL DEFAULT '',
	formula TEXT NOT NULL DEFAULT '',
	decoded TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_records_name ON records(name, seq);
`

// Verify *SQLiteStore satisfies Store at compile time.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore mirrors a Catalog into an in-memory SQLite database.
// seq preserves catalog order so first-match semantics are unchanged.
type SQLiteStore struct {
	conn *sql.DB
	n    int
}

// NewSQLiteStore copies every record of c into a fresh in-memory database.
func NewSQLiteStore(c *Catalog) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("catalog: open sqlite: %w", err)
	}
	// Each :memory: connection is its own database.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: ping sqlite: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: apply schema: %w", err)
	}

	s := &SQLiteStore{conn: conn}
	if err := s.insertAll(c.records); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) insertAll(records []models.Record) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.Prepare(`INSERT INTO records (seq, name, origin, formula, decoded) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("catalog: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		decoded, err := codec.Decode(r.Formula)
		if err != nil {
			return &LineError{Line: i + 1, Err: err}
		}
		if _, err := stmt.Exec(i, r.Name, r.Origin, r.Formula, decoded); err != nil {
			return fmt.Errorf("catalog: insert record %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: commit: %w", err)
	}
	s.n = len(records)
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Len returns the number of mirrored records.
func (s *SQLiteStore) Len() int {
	return s.n
}

// Record returns the record stored at seq i.
func (s *SQLiteStore) Record(i int) (models.Record, error) {
	var r models.Record
	err := s.conn.QueryRow(`SELECT name, origin, formula FROM records WHERE seq = ?`, i).
		Scan(&r.Name, &r.Origin, &r.Formula)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, fmt.Errorf("catalog: index %d out of range [0,%d)", i, s.n)
	}
	if err != nil {
		return models.Record{}, fmt.Errorf("catalog: record %d: %w", i, err)
	}
	return r, nil
}

// FindByName returns the lowest-seq record with the given name.
func (s *SQLiteStore) FindByName(name string) (models.Record, bool, error) {
	var r models.Record
	err := s.conn.QueryRow(`
		SELECT name, origin, formula
		FROM records
		WHERE name = ?
		ORDER BY seq
		LIMIT 1
	`, name).Scan(&r.Name, &r.Origin, &r.Formula)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, false, nil
	}
	if err != nil {
		return models.Record{}, false, fmt.Errorf("catalog: find by name: %w", err)
	}
	return r, true, nil
}

// FindContainingDecoded returns the lowest seq whose decoded formula
// contains pattern. instr(x, '') is 1, so an empty pattern matches the
// first record, as strings.Contains does.
func (s *SQLiteStore) FindContainingDecoded(pattern string) (int, bool, error) {
	var seq int
	err := s.conn.QueryRow(`
		SELECT seq
		FROM records
		WHERE instr(decoded, ?) > 0
		ORDER BY seq
		LIMIT 1
	`, pattern).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return -1, false, nil
	}
	if err != nil {
		return -1, false, fmt.Errorf("catalog: find containing: %w", err)
	}
	return seq, true, nil
}
