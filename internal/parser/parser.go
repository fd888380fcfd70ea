// Package parser turns command-stream lines into query commands.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/starford/genedata/internal/models"
)

const maxLineSize = 16 << 20

// arity is the minimum number of tab-separated fields per verb,
// the verb itself included.
var arity = map[string]int{
	models.VerbSearch: 2,
	models.VerbDiff:   3,
	models.VerbMode:   2,
}

// ParseLine parses one command line. index is its 1-based position in the
// stream. A line whose verb is unknown, or that lacks the fields its verb
// needs, becomes an unknown command. Extra fields are ignored.
func ParseLine(index int, line string) models.Command {
	line = strings.TrimSuffix(line, "\r")
	parts := strings.Split(line, "\t")

	need, ok := arity[parts[0]]
	if !ok || len(parts) < need {
		return models.Unknown(index, line)
	}

	var cmd models.Command
	switch parts[0] {
	case models.VerbSearch:
		cmd = models.Locate(index, parts[1])
	case models.VerbDiff:
		cmd = models.Compare(index, parts[1], parts[2])
	case models.VerbMode:
		cmd = models.Mode(index, parts[1])
	}
	cmd.Raw = line
	return cmd
}

// Scanner reads commands from a stream one line at a time, numbering them
// from 1. Every line, empty ones included, yields a command.
type Scanner struct {
	sc    *bufio.Scanner
	index int
	cmd   models.Command
	err   error
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Scanner{sc: sc}
}

// Scan advances to the next command. It returns false at the end of the
// stream or on a read error.
func (s *Scanner) Scan() bool {
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			s.err = fmt.Errorf("parser: read commands: %w", err)
		}
		return false
	}
	s.index++
	s.cmd = ParseLine(s.index, s.sc.Text())
	return true
}

// Command returns the most recent command read by Scan.
func (s *Scanner) Command() models.Command {
	return s.cmd
}

// Err returns the first read error, if any.
func (s *Scanner) Err() error {
	return s.err
}

// ParseAll reads every command from r.
func ParseAll(r io.Reader) ([]models.Command, error) {
	s := NewScanner(r)
	var out []models.Command
	for s.Scan() {
		out = append(out, s.Command())
	}
	return out, s.Err()
}
