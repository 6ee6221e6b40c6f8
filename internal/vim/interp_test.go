package vim

import (
	"testing"

	"github.com/dshills/vicut/internal/vibuf"
)

func TestInterpreterWordDeleteToEndOfLine(t *testing.T) {
	buf := vibuf.FromString("useful_data1 some_garbage useful_data2")
	ip := NewInterpreter(buf)

	span, err := ip.Execute("wdw$")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got := buf.Text(); got != "useful_data1 useful_data2" {
		t.Errorf("buffer after edit = %q, want %q", got, "useful_data1 useful_data2")
	}
	if got := buf.Slice(span.AsRange(buf)); got != "useful_data1 useful_data2" {
		t.Errorf("captured span = %q, want %q", got, "useful_data1 useful_data2")
	}
}

func TestInterpreterVisualAroundParen(t *testing.T) {
	buf := vibuf.FromString("(boo far)")
	ip := NewInterpreter(buf)
	ip.Cursor = vibuf.Position{Line: 0, Col: 4}

	span, err := ip.Execute("va)")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if ip.Mode != ModeNormal {
		t.Errorf("mode after command = %v, want normal (Visual exits on capture)", ip.Mode)
	}
	if got := buf.Slice(span.AsRange(buf)); got != "(boo far)" {
		t.Errorf("captured span = %q, want %q", got, "(boo far)")
	}
}

func TestInterpreterYankAndPaste(t *testing.T) {
	buf := vibuf.FromString("hello world")
	ip := NewInterpreter(buf)

	if _, err := ip.Execute("yw"); err != nil {
		t.Fatalf("yw: %v", err)
	}
	if content, linewise, _ := ip.Registers.Get('"'); content != "hello " || linewise {
		t.Errorf("unnamed register = %q linewise=%v, want %q false", content, linewise, "hello ")
	}

	if _, err := ip.Execute("$"); err != nil {
		t.Fatalf("$: %v", err)
	}
	if _, err := ip.Execute("p"); err != nil {
		t.Fatalf("p: %v", err)
	}

	if got, want := buf.Text(), "hello worldhello "; got != want {
		t.Errorf("buffer after paste = %q, want %q", got, want)
	}
}

func TestInterpreterNamedRegisterYank(t *testing.T) {
	buf := vibuf.FromString("alpha beta")
	ip := NewInterpreter(buf)

	if _, err := ip.Execute(`"ayw`); err != nil {
		t.Fatalf(`"ayw: %v`, err)
	}
	if content, _, _ := ip.Registers.Get('a'); content != "alpha " {
		t.Errorf("register a = %q, want %q", content, "alpha ")
	}
	if content, _, _ := ip.Registers.Get('"'); content != "alpha " {
		t.Errorf("unnamed register = %q, want %q", content, "alpha ")
	}
}

func TestInterpreterLinewiseDelete(t *testing.T) {
	buf := vibuf.FromString("one\ntwo\nthree")
	ip := NewInterpreter(buf)
	ip.Cursor = vibuf.Position{Line: 1, Col: 0}

	if _, err := ip.Execute("dd"); err != nil {
		t.Fatalf("dd: %v", err)
	}
	if got, want := buf.Text(), "one\nthree"; got != want {
		t.Errorf("buffer after dd = %q, want %q", got, want)
	}
}

func TestInterpreterInsertAppendEnd(t *testing.T) {
	buf := vibuf.FromString("go")
	ip := NewInterpreter(buf)

	if _, err := ip.Execute("A hi<esc>"); err != nil {
		t.Fatalf("A: %v", err)
	}
	if ip.Mode != ModeNormal {
		t.Errorf("mode after <esc> = %v, want normal", ip.Mode)
	}
	if got, want := buf.Text(), "go hi"; got != want {
		t.Errorf("buffer after insert = %q, want %q", got, want)
	}
}

func TestInterpreterChangeWordEntersInsertMode(t *testing.T) {
	buf := vibuf.FromString("cat dog")
	ip := NewInterpreter(buf)

	if _, err := ip.Execute("cw"); err != nil {
		t.Fatalf("cw: %v", err)
	}
	if ip.Mode != ModeInsert {
		t.Errorf("mode after cw = %v, want insert", ip.Mode)
	}
	if got, want := buf.Text(), " dog"; got != want {
		t.Errorf("buffer after cw = %q, want %q", got, want)
	}
}

func TestInterpreterVisualBlockDelete(t *testing.T) {
	buf := vibuf.FromString("abcd\nefgh\nijkl")
	ip := NewInterpreter(buf)
	ip.Cursor = vibuf.Position{Line: 0, Col: 1}

	// <C-v> then move down twice to select column 1 across all three
	// lines, then delete.
	if _, err := ip.Execute("<C-v>jjd"); err != nil {
		t.Fatalf("<C-v>jjd: %v", err)
	}
	if got, want := buf.Text(), "acd\negh\nikl"; got != want {
		t.Errorf("buffer after blockwise delete = %q, want %q", got, want)
	}
}

// combining "é" (NFD: 'e' + U+0301) is a single grapheme made of two
// runes — the shape that exposes a byte/rune-count stand-in for a
// grapheme index.
const combiningE = "e\u0301"

func TestSearchForwardLandsOnGraphemeBoundary(t *testing.T) {
	buf := vibuf.FromString("caf" + combiningE + " bar")
	ip := NewInterpreter(buf)

	if _, err := ip.Execute("/bar<cr>"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// graphemes: c(0) a(1) f(2) é(3) space(4) b(5) a(6) r(7)
	if ip.Cursor.Col != 5 {
		t.Errorf("cursor.Col after /bar<cr> = %d, want 5 (grapheme index of 'b')", ip.Cursor.Col)
	}
	if got := buf.CharAt(ip.Cursor); got != "b" {
		t.Errorf("char at cursor = %q, want %q", got, "b")
	}
}

func TestSentenceForwardLandsOnGraphemeBoundary(t *testing.T) {
	buf := vibuf.FromString("caf" + combiningE + ". Bar.")
	// graphemes: c(0) a(1) f(2) é(3) .(4) space(5) B(6) a(7) r(8) .(9)
	got := SentenceForward(buf, vibuf.Position{Line: 0, Col: 0})
	if got.Col != 6 {
		t.Errorf("SentenceForward landed at Col %d, want 6 (grapheme index of 'B')", got.Col)
	}
}

func TestQuoteObjectRespectsGraphemeClusters(t *testing.T) {
	buf := vibuf.FromString("caf" + combiningE + ` says "hi" today`)
	// graphemes: c(0) a(1) f(2) é(3) space(4) s(5) a(6) y(7) s(8) space(9)
	// "(10) h(11) i(12) "(13) ...
	span, ok := ResolveTextObject(buf, vibuf.Position{Line: 0, Col: 10}, &TextObjDoubleQuote, true)
	if !ok {
		t.Fatal("expected a quote object match")
	}
	if got := buf.Slice(span.AsRange(buf)); got != "hi" {
		t.Errorf("inner quote span = %q, want %q", got, "hi")
	}
}

func TestTagObjectRespectsGraphemeClusters(t *testing.T) {
	buf := vibuf.FromString("caf" + combiningE + " <b>hi</b> today")
	span, ok := ResolveTextObject(buf, vibuf.Position{Line: 0, Col: 6}, &TextObjTag, true)
	if !ok {
		t.Fatal("expected a tag object match")
	}
	if got := buf.Slice(span.AsRange(buf)); got != "hi" {
		t.Errorf("inner tag span = %q, want %q", got, "hi")
	}
}

func TestInterpreterFindCharAndRepeat(t *testing.T) {
	buf := vibuf.FromString("a,b,c,d")
	ip := NewInterpreter(buf)

	if _, err := ip.Execute("f,"); err != nil {
		t.Fatalf("f,: %v", err)
	}
	if ip.Cursor.Col != 1 {
		t.Fatalf("cursor after f, = %d, want 1", ip.Cursor.Col)
	}
	if _, err := ip.Execute(";"); err != nil {
		t.Fatalf(";: %v", err)
	}
	if ip.Cursor.Col != 3 {
		t.Errorf("cursor after repeat find = %d, want 3", ip.Cursor.Col)
	}
}
