package catalog

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/starford/genedata/internal/apperr"
	"github.com/starford/genedata/internal/checksum"
	"github.com/starford/genedata/internal/codec"
	"github.com/starford/genedata/internal/models"
)

// Policy decides what Load does with a malformed line.
type Policy string

const (
	// PolicyFail rejects the whole load on the first malformed line.
	PolicyFail Policy = "fail"
	// PolicySkip drops malformed lines and logs a warning for each.
	PolicySkip Policy = "skip"
)

const maxLineSize = 16 << 20

// LineError reports a malformed catalog line.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("catalog: line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() []error {
	return []error{apperr.ErrMalformedRecord, e.Err}
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	policy Policy
	logger *slog.Logger
}

// WithPolicy sets the malformed-line policy. The default is PolicyFail.
func WithPolicy(p Policy) LoadOption {
	return func(o *loadOptions) {
		o.policy = p
	}
}

// WithLogger sets the logger used for skipped lines.
func WithLogger(l *slog.Logger) LoadOption {
	return func(o *loadOptions) {
		o.logger = l
	}
}

// Load reads tab-separated name, origin, formula lines from r.
//
// Lines with fewer than three fields, or whose formula does not decode,
// are malformed. Fields past the third are ignored.
func Load(r io.Reader, opts ...LoadOption) (*Catalog, error) {
	o := loadOptions{policy: PolicyFail, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	digest := checksum.NewDigest()
	sc := bufio.NewScanner(io.TeeReader(r, digest))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []models.Record
	lineNo := 0
	for sc.Scan() {
		lineNo++
		rec, err := parseLine(strings.TrimSuffix(sc.Text(), "\r"))
		if err != nil {
			lerr := &LineError{Line: lineNo, Err: err}
			if o.policy != PolicySkip {
				return nil, lerr
			}
			o.logger.Warn("catalog: skipping malformed line",
				slog.Int("line", lineNo),
				slog.String("error", err.Error()))
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("catalog: read: %w", err)
	}

	o.logger.Debug("catalog: loaded",
		slog.Int("records", len(records)),
		slog.Int("lines", lineNo))

	return &Catalog{records: records, checksum: digest.Sum()}, nil
}

func parseLine(line string) (models.Record, error) {
	parts := strings.Split(line, "\t")
	if len(parts) < 3 {
		return models.Record{}, fmt.Errorf("%w: want 3 tab-separated fields, got %d", apperr.ErrMalformedRecord, len(parts))
	}
	if _, err := codec.Decode(parts[2]); err != nil {
		return models.Record{}, err
	}
	return models.Record{Name: parts[0], Origin: parts[1], Formula: parts[2]}, nil
}
