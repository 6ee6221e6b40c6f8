package pipeline

import (
	"context"
	"testing"

	"github.com/dshills/vicut/internal/program"
	"github.com/dshills/vicut/internal/vibuf"
)

func TestSplitLinesPreservesEndings(t *testing.T) {
	lines := SplitLines("one\r\ntwo\nthree")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	want := []struct {
		text   string
		ending vibuf.LineEnding
	}{
		{"one", vibuf.LineEndingCRLF},
		{"two", vibuf.LineEndingLF},
		{"three", vibuf.LineEndingNone},
	}
	for i, w := range want {
		if lines[i].Text != w.text {
			t.Errorf("line %d text = %q, want %q", i, lines[i].Text, w.text)
		}
		if lines[i].Ending != w.ending {
			t.Errorf("line %d ending = %v, want %v", i, lines[i].Ending, w.ending)
		}
	}
}

func TestRunOrderPreservedAcrossWorkerCounts(t *testing.T) {
	lines := SplitLines("one\ntwo\nthree\nfour\nfive")
	prog := &program.Program{Instructions: []program.Instruction{program.Cut{Cmd: "$"}}}

	for _, jobs := range []int{1, 2, 4, 8} {
		results, err := Run(context.Background(), lines, prog, Options{Jobs: jobs})
		if err != nil {
			t.Fatalf("Run(jobs=%d): %v", jobs, err)
		}
		recs := Records(results)
		if len(recs) != 5 {
			t.Fatalf("jobs=%d: records = %d, want 5", jobs, len(recs))
		}
		want := []string{"one", "two", "three", "four", "five"}
		for i, w := range want {
			if got := recs[i].Fields[0].Text; got != w {
				t.Errorf("jobs=%d: record %d = %q, want %q", jobs, i, got, w)
			}
		}
	}
}

func TestRunSerialOption(t *testing.T) {
	lines := SplitLines("a\nb\nc")
	prog := &program.Program{Instructions: []program.Instruction{program.Cut{Cmd: "$"}}}

	results, err := Run(context.Background(), lines, prog, Options{Serial: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
}

func TestRunLineErrorIsFatal(t *testing.T) {
	lines := SplitLines("ok\nbad")
	// A Repeat referencing more instructions than precede it is rejected
	// at execution time, deterministically failing on every line.
	prog := &program.Program{Instructions: []program.Instruction{program.Repeat{N: 5, R: 1}}}

	results, err := Run(context.Background(), lines, prog, Options{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if results != nil {
		t.Errorf("expected nil results on error, got %v", results)
	}
}

func TestReassemblePreservesOriginalText(t *testing.T) {
	input := "one\r\ntwo\nthree"
	lines := SplitLines(input)
	prog := &program.Program{Instructions: []program.Instruction{program.Move{Cmd: "$"}}}

	results, err := Run(context.Background(), lines, prog, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := Reassemble(results); got != input {
		t.Errorf("Reassemble = %q, want %q", got, input)
	}
}
