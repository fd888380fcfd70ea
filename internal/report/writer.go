// Package report renders query results in the fixed plain-text report layout.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/starford/genedata/internal/models"
)

// DefaultLabel is the run label written above the first block.
const DefaultLabel = "Trosko German"

// Separator closes the header and every block.
var Separator = strings.Repeat("=", 48)

const (
	searchHeader = "organism                protein"
	modeHeader   = "amino-acid occurs:"
	notFound     = "NOT FOUND"
	missing      = "MISSING"
	malformed    = "MALFORMED SEQUENCE"
)

// Writer formats results one block per command. It buffers output; call
// Flush when done. After the first write error every call returns it.
type Writer struct {
	bw    *bufio.Writer
	label string
	lines int
	err   error
}

// NewWriter returns a Writer on w. An empty label selects DefaultLabel.
func NewWriter(w io.Writer, label string) *Writer {
	if label == "" {
		label = DefaultLabel
	}
	return &Writer{bw: bufio.NewWriter(w), label: label}
}

// WriteHeader writes the label line and the separator.
func (w *Writer) WriteHeader() error {
	w.line(w.label)
	w.line(Separator)
	return w.err
}

// Write appends the block for res.
func (w *Writer) Write(res models.Result) error {
	cmd := res.Command
	idx := fmt.Sprintf("%03d", cmd.Index)

	switch cmd.Kind {
	case models.KindLocate:
		pattern := res.Decoded
		if res.Status == models.StatusMalformed {
			pattern = cmd.Arg(0)
		}
		w.line(idx + " search " + pattern)
		w.line(searchHeader)
		switch res.Status {
		case models.StatusOK:
			w.line(res.Match.Origin + "    " + res.Match.Name)
		case models.StatusMalformed:
			w.line(malformed)
		default:
			w.line(notFound)
		}

	case models.KindCompare:
		w.line(idx + " diff " + cmd.Arg(0) + " " + cmd.Arg(1))
		if res.OK() {
			w.line(fmt.Sprintf("amino-acids difference: %d", res.Difference))
		} else {
			w.line(missing)
		}

	case models.KindMode:
		w.line(idx + " mode " + cmd.Arg(0))
		w.line(modeHeader)
		if res.OK() {
			w.line(fmt.Sprintf("%c %d", res.Symbol, res.Count))
		} else {
			w.line(missing + ": " + cmd.Arg(0))
		}

	default:
		w.line(idx + " UNKNOWN COMMAND")
	}

	w.line(Separator)
	return w.err
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.bw.Flush(); err != nil {
		w.err = fmt.Errorf("report: flush: %w", err)
	}
	return w.err
}

// Lines returns the number of lines written so far.
func (w *Writer) Lines() int {
	return w.lines
}

func (w *Writer) line(s string) {
	if w.err != nil {
		return
	}
	if _, err := w.bw.WriteString(s); err != nil {
		w.err = fmt.Errorf("report: write: %w", err)
		return
	}
	if err := w.bw.WriteByte('\n'); err != nil {
		w.err = fmt.Errorf("report: write: %w", err)
		return
	}
	w.lines++
}

// BlockLines returns how many lines Write emits for a command of kind k,
// separator included.
func BlockLines(k models.Kind) int {
	switch k {
	case models.KindLocate, models.KindMode:
		return 4
	case models.KindCompare:
		return 3
	default:
		return 2
	}
}

// Render formats a complete report, header included, into a string.
func Render(label string, results []models.Result) (string, error) {
	var sb strings.Builder
	w := NewWriter(&sb, label)
	if err := w.WriteHeader(); err != nil {
		return "", err
	}
	for _, r := range results {
		if err := w.Write(r); err != nil {
			return "", err
		}
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
