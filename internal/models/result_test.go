package models

import (
	"errors"
	"testing"

	"github.com/starford/genedata/internal/apperr"
)

func TestResultErr(t *testing.T) {
	cases := []struct {
		status Status
		want   error
	}{
		{StatusOK, nil},
		{StatusNotFound, apperr.ErrNotFound},
		{StatusMissing, apperr.ErrMissingEntity},
		{StatusMalformed, apperr.ErrMalformedSequence},
		{StatusUnknown, apperr.ErrUnknownCommand},
	}
	for _, tc := range cases {
		got := Result{Status: tc.status}.Err()
		if !errors.Is(got, tc.want) || (tc.want == nil && got != nil) {
			t.Errorf("%s: Err() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestCommandArg(t *testing.T) {
	cmd := Compare(3, "A", "B")
	if cmd.Kind != KindCompare || cmd.Index != 3 {
		t.Fatalf("cmd = %+v", cmd)
	}
	if cmd.Arg(1) != "B" || cmd.Arg(2) != "" {
		t.Errorf("Arg: %q %q", cmd.Arg(1), cmd.Arg(2))
	}
	if KindCompare.String() != "diff" || KindUnknown.String() != "unknown" {
		t.Errorf("kind strings: %s %s", KindCompare, KindUnknown)
	}
}
