package parser

import (
	"strings"
	"testing"

	"github.com/starford/genedata/internal/models"
)

func TestParseLine_Verbs(t *testing.T) {
	cases := []struct {
		line string
		kind models.Kind
		args []string
	}{
		{"search\t2AB", models.KindLocate, []string{"2AB"}},
		{"diff\tP1\tP2", models.KindCompare, []string{"P1", "P2"}},
		{"mode\tP1", models.KindMode, []string{"P1"}},
		{"mode\tP1\textra", models.KindMode, []string{"P1"}},
		{"search\t2AB\r", models.KindLocate, []string{"2AB"}},
		{"search\t", models.KindLocate, []string{""}},
	}
	for _, tc := range cases {
		cmd := ParseLine(7, tc.line)
		if cmd.Kind != tc.kind {
			t.Errorf("%q: kind = %v, want %v", tc.line, cmd.Kind, tc.kind)
			continue
		}
		if cmd.Index != 7 {
			t.Errorf("%q: index = %d, want 7", tc.line, cmd.Index)
		}
		if strings.Join(cmd.Args, "|") != strings.Join(tc.args, "|") {
			t.Errorf("%q: args = %v, want %v", tc.line, cmd.Args, tc.args)
		}
	}
}

func TestParseLine_Unknown(t *testing.T) {
	for _, line := range []string{
		"",
		"frobnicate\tX",
		"SEARCH\t2AB",
		"search",
		"diff\tP1",
		"mode",
		"search 2AB",
	} {
		cmd := ParseLine(3, line)
		if cmd.Kind != models.KindUnknown {
			t.Errorf("%q: kind = %v, want unknown", line, cmd.Kind)
		}
		if cmd.Raw != line {
			t.Errorf("%q: raw = %q", line, cmd.Raw)
		}
		if cmd.Index != 3 {
			t.Errorf("%q: index = %d", line, cmd.Index)
		}
	}
}

func TestScanner_NumbersEveryLine(t *testing.T) {
	in := "search\tA\n\nbogus\nmode\tP1\n"
	cmds, err := ParseAll(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(cmds) != 4 {
		t.Fatalf("len = %d, want 4", len(cmds))
	}
	wantKinds := []models.Kind{models.KindLocate, models.KindUnknown, models.KindUnknown, models.KindMode}
	for i, c := range cmds {
		if c.Index != i+1 {
			t.Errorf("cmd %d index = %d", i, c.Index)
		}
		if c.Kind != wantKinds[i] {
			t.Errorf("cmd %d kind = %v, want %v", i, c.Kind, wantKinds[i])
		}
	}
}

func TestScanner_NoTrailingNewline(t *testing.T) {
	cmds, err := ParseAll(strings.NewReader("diff\tA\tB"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cmds) != 1 || cmds[0].Arg(1) != "B" {
		t.Errorf("cmds = %+v", cmds)
	}
}
