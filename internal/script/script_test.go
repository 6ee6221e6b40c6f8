package script

import (
	"testing"

	"github.com/dshills/vicut/internal/program"
	"github.com/dshills/vicut/internal/vibuf"
	"github.com/dshills/vicut/internal/vim"
)

// runScript compiles src and interprets the resulting Program against text,
// returning each record's field texts.
func runScript(t *testing.T, src, text string) [][]string {
	t.Helper()
	prog, opts, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	buf := vibuf.FromString(text)
	ip := vim.NewInterpreter(buf)
	records, err := prog.Run(ip, opts.TrimFields, opts.KeepMode)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := make([][]string, len(records))
	for i, r := range records {
		texts := make([]string, len(r.Fields))
		for j, f := range r.Fields {
			texts[j] = f.Text
		}
		out[i] = texts
	}
	return out
}

func TestCompileSimpleCutAndMove(t *testing.T) {
	records := runScript(t, `cut "e" move "w" cut "e"`, "foo bar baz")
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	want := []string{"foo", "bar"}
	if len(records[0]) != 2 || records[0][0] != want[0] || records[0][1] != want[1] {
		t.Errorf("record = %v, want %v", records[0], want)
	}
}

func TestCompileNamedCut(t *testing.T) {
	records := runScript(t, `cut name="host" "$"`, "host.example.com")
	if records[0][0] != "host.example.com" {
		t.Errorf("record = %v", records[0])
	}
}

func TestCompileNextSplitsRecords(t *testing.T) {
	records := runScript(t, `
cut "e"
next
move "j"
move "0"
cut "e"
`, "one\ntwo")
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0][0] != "one" || records[1][0] != "two" {
		t.Errorf("records = %v", records)
	}
}

func TestCompileIfTrueBranch(t *testing.T) {
	records := runScript(t, `
let want = true
if $want {
    cut "e"
}
`, "hello world")
	if len(records) != 1 || records[0][0] != "hello" {
		t.Errorf("records = %v", records)
	}
}

func TestCompileIfFalseBranchUsesElse(t *testing.T) {
	records := runScript(t, `
let want = false
if $want {
    cut "e"
} else {
    cut "$"
}
`, "hello world")
	if len(records) != 1 || records[0][0] != "hello world" {
		t.Errorf("records = %v", records)
	}
}

func TestCompileForRangeUnrollsRepeatedCuts(t *testing.T) {
	// "aa bb cc" with three `e`/`w` cuts should capture all three words.
	records := runScript(t, `
for i in range(0, 3) {
    cut "e"
    move "w"
}
`, "aa bb cc")
	want := []string{"aa", "bb", "cc"}
	if len(records[0]) != 3 {
		t.Fatalf("record = %v, want %v", records[0], want)
	}
	for i, w := range want {
		if records[0][i] != w {
			t.Errorf("field %d = %q, want %q", i, records[0][i], w)
		}
	}
}

func TestCompileRepeatStmtEmitsProgramRepeat(t *testing.T) {
	prog, _, err := Compile(`
move "w"
repeat 2 {
    cut "e"
    move "w"
}
`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var sawRepeat bool
	for _, in := range prog.Instructions {
		if r, ok := in.(program.Repeat); ok {
			sawRepeat = true
			if r.R != 1 {
				t.Errorf("Repeat.R = %d, want 1", r.R)
			}
		}
	}
	if !sawRepeat {
		t.Error("expected a program.Repeat instruction for repeat count > 1")
	}
}

func TestCompileDefAndCall(t *testing.T) {
	records := runScript(t, `
def cutWord() {
    cut "e"
}
cutWord()
`, "hello world")
	if len(records) != 1 || records[0][0] != "hello" {
		t.Errorf("records = %v", records)
	}
}

func TestCompileDefReturnValueUsedInExpression(t *testing.T) {
	prog, _, err := Compile(`
def double(n) {
    return n * 2
}
let x = double(3)
cut "e"
`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(prog.Instructions) != 1 {
		t.Fatalf("instructions = %d, want 1 (double() is pure, no emitted ops)", len(prog.Instructions))
	}
}

func TestCompileGlobalPattern(t *testing.T) {
	records := runScript(t, `
global ~^keep~ {
    cut "$"
    next
}
`, "keep\nskip\nkeep2")
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0][0] != "keep" || records[1][0] != "keep2" {
		t.Errorf("records = %v", records)
	}
}

func TestCompileOptsTrimFields(t *testing.T) {
	_, opts, err := Compile(`opts { trim_fields = true }`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !opts.TrimFields {
		t.Error("expected opts.TrimFields = true")
	}
}

func TestCompileOptsFullKeySet(t *testing.T) {
	_, opts, err := Compile(`opts {
		json = true
		linewise = true
		max_jobs = 4
		backup_ext = ".bak"
		files = ["a.txt", "b.txt"]
		template = "{{1}}"
	}`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !opts.JSON || !opts.HasJSON {
		t.Error("expected opts.JSON = true")
	}
	if !opts.Linewise {
		t.Error("expected opts.Linewise = true")
	}
	if opts.MaxJobs != 4 {
		t.Errorf("MaxJobs = %d, want 4", opts.MaxJobs)
	}
	if opts.BackupExt != ".bak" {
		t.Errorf("BackupExt = %q, want %q", opts.BackupExt, ".bak")
	}
	if len(opts.Files) != 2 || opts.Files[0] != "a.txt" || opts.Files[1] != "b.txt" {
		t.Errorf("Files = %v, want [a.txt b.txt]", opts.Files)
	}
	if opts.Template != "{{1}}" {
		t.Errorf("Template = %q, want %q", opts.Template, "{{1}}")
	}
}

func TestCompileWhileLoopAccumulatesVariable(t *testing.T) {
	prog, _, err := Compile(`
let i = 0
while $i < 3 {
    cut "e"
    move "w"
    i += 1
}
`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	cuts := 0
	for _, in := range prog.Instructions {
		if _, ok := in.(program.Cut); ok {
			cuts++
		}
	}
	if cuts != 3 {
		t.Errorf("cuts = %d, want 3", cuts)
	}
}

func TestParseUnterminatedBlockErrors(t *testing.T) {
	_, err := ParseFile(`if true { cut "e"`)
	if err == nil {
		t.Fatal("expected parse error for unterminated block")
	}
}

func TestCompileUndefinedFunctionErrors(t *testing.T) {
	_, _, err := Compile(`doesNotExist()`)
	if err == nil {
		t.Fatal("expected error for undefined function/alias")
	}
}
