package program

import (
	"strings"
	"testing"

	"github.com/dshills/vicut/internal/vibuf"
	"github.com/dshills/vicut/internal/vim"
)

func run(t *testing.T, text string, instrs []Instruction, trim bool) []fieldTexts {
	t.Helper()
	buf := vibuf.FromString(text)
	ip := vim.NewInterpreter(buf)
	p := &Program{Instructions: instrs}
	records, err := p.Run(ip, trim, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := make([]fieldTexts, len(records))
	for i, r := range records {
		texts := make([]string, len(r.Fields))
		for j, f := range r.Fields {
			texts[j] = f.Text
		}
		out[i] = texts
	}
	return out
}

type fieldTexts = []string

func TestProgramCutAndMove(t *testing.T) {
	records := run(t, "foo bar baz", []Instruction{
		Cut{Cmd: "e"},
		Move{Cmd: "w"},
		Cut{Cmd: "e"},
	}, false)

	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	want := fieldTexts{"foo", "bar"}
	if !equalFields(records[0], want) {
		t.Errorf("record = %v, want %v", records[0], want)
	}
}

func TestProgramNextSplitsRecords(t *testing.T) {
	records := run(t, "one\ntwo", []Instruction{
		Cut{Cmd: "e"},
		Next{},
		Move{Cmd: "j"},
		Move{Cmd: "0"},
		Cut{Cmd: "e"},
	}, false)

	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if !equalFields(records[0], fieldTexts{"one"}) {
		t.Errorf("record[0] = %v, want [one]", records[0])
	}
	if !equalFields(records[1], fieldTexts{"two"}) {
		t.Errorf("record[1] = %v, want [two]", records[1])
	}
}

func TestProgramRepeat(t *testing.T) {
	records := run(t, "aa bb cc dd", []Instruction{
		Cut{Cmd: "e"},
		Move{Cmd: "w"},
		Repeat{N: 2, R: 2},
	}, false)

	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	want := fieldTexts{"aa", "bb", "cc"}
	if !equalFields(records[0], want) {
		t.Errorf("record = %v, want %v", records[0], want)
	}
}

func TestProgramNoCutEmitsWholeBuffer(t *testing.T) {
	records := run(t, "unchanged text", []Instruction{
		Move{Cmd: "w"},
	}, false)

	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if !equalFields(records[0], fieldTexts{"unchanged text"}) {
		t.Errorf("record = %v, want whole-buffer field", records[0])
	}
}

func TestProgramSettlesModeBetweenInstructions(t *testing.T) {
	buf := vibuf.FromString("foo bar baz")
	ip := vim.NewInterpreter(buf)
	p := &Program{Instructions: []Instruction{
		Move{Cmd: "ciw"}, // leaves Insert mode open, no trailing Esc
		Cut{Cmd: "e"},    // must run as a fresh Normal-mode command, not literal text
	}}

	records, err := p.Run(ip, false, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ip.Mode != vim.ModeNormal {
		t.Errorf("mode after program = %v, want Normal", ip.Mode)
	}
	if len(records) != 1 || len(records[0].Fields) != 1 {
		t.Fatalf("records = %v, want one record with one field", records)
	}
}

func TestProgramKeepModeLetsInsertCarryBetweenInstructions(t *testing.T) {
	buf := vibuf.FromString("foo bar")
	ip := vim.NewInterpreter(buf)
	p := &Program{Instructions: []Instruction{
		Move{Cmd: "ciw"},
		Move{Cmd: "XYZ"}, // with keepMode, typed as literal insert text, not a command
	}}

	if _, err := p.Run(ip, false, true); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.HasPrefix(buf.Text(), "XYZ") {
		t.Errorf("buffer = %q, want it to start with the literal inserted text XYZ", buf.Text())
	}
}

func TestProgramDanglingOperatorErrors(t *testing.T) {
	buf := vibuf.FromString("foo bar")
	ip := vim.NewInterpreter(buf)
	p := &Program{Instructions: []Instruction{Cut{Cmd: "d"}}} // operator with no motion

	if _, err := p.Run(ip, false, false); err == nil {
		t.Fatal("expected an error for a dangling operator with no motion")
	}
}

func TestProgramNamedCut(t *testing.T) {
	buf := vibuf.FromString("host.example.com")
	ip := vim.NewInterpreter(buf)
	p := &Program{Instructions: []Instruction{Cut{Name: "host", Cmd: "$"}}}

	records, err := p.Run(ip, false, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := records[0].Fields[0].Name; got != "host" {
		t.Errorf("field name = %q, want %q", got, "host")
	}
}

func TestProgramGlobalRunsOnMatchingLines(t *testing.T) {
	records := run(t, "keep\nskip\nkeep2", []Instruction{
		Global{Pattern: "^keep", Sub: []Instruction{
			Cut{Cmd: "$"},
			Next{},
		}},
	}, false)

	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if !equalFields(records[0], fieldTexts{"keep"}) {
		t.Errorf("record[0] = %v, want [keep]", records[0])
	}
	if !equalFields(records[1], fieldTexts{"keep2"}) {
		t.Errorf("record[1] = %v, want [keep2]", records[1])
	}
}

func TestProgramNotGlobalRunsOnNonMatchingLines(t *testing.T) {
	records := run(t, "keep\nskip", []Instruction{
		NotGlobal{Pattern: "^keep", Sub: []Instruction{
			Cut{Cmd: "$"},
			Next{},
		}},
	}, false)

	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if !equalFields(records[0], fieldTexts{"skip"}) {
		t.Errorf("record[0] = %v, want [skip]", records[0])
	}
}

func TestProgramTrimFields(t *testing.T) {
	records := run(t, "  hi  there", []Instruction{
		Cut{Cmd: "$"},
	}, true)

	if !equalFields(records[0], fieldTexts{"hi  there"}) {
		t.Errorf("record = %v, want trimmed", records[0])
	}
}

func equalFields(got fieldTexts, want fieldTexts) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
