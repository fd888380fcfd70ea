// Package codec decodes the compact run-length notation used for protein
// formulas: a single digit followed by a symbol repeats that symbol, every
// other character is literal.
package codec

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/starford/genedata/internal/apperr"
)

// Decode expands a compact formula.
//
// A digit d followed by a symbol c yields c repeated d times and consumes
// both. Symbols are UTF-8 characters, so a multi-byte symbol is repeated
// whole. A digit in the last position has no symbol to repeat and yields
// ErrMalformedSequence.
func Decode(compact string) (string, error) {
	var b strings.Builder
	b.Grow(len(compact))

	for i := 0; i < len(compact); {
		c := compact[i]
		if !isDigit(c) {
			_, size := utf8.DecodeRuneInString(compact[i:])
			b.WriteString(compact[i : i+size])
			i += size
			continue
		}
		if i+1 >= len(compact) {
			return "", fmt.Errorf("codec: %w: trailing digit in %q", apperr.ErrMalformedSequence, compact)
		}
		_, size := utf8.DecodeRuneInString(compact[i+1:])
		sym := compact[i+1 : i+1+size]
		for n := int(c - '0'); n > 0; n-- {
			b.WriteString(sym)
		}
		i += 1 + size
	}
	return b.String(), nil
}

// Valid reports whether Decode accepts compact.
func Valid(compact string) bool {
	_, err := Decode(compact)
	return err == nil
}

// MustDecode is like Decode but panics on malformed input.
// Intended for fixtures and tests.
func MustDecode(compact string) string {
	s, err := Decode(compact)
	if err != nil {
		panic(err)
	}
	return s
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
