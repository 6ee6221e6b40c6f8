package vibuf

import "testing"

func TestDisplayWidthTabs(t *testing.T) {
	b := FromString("a\tb", WithTabWidth(4))
	// 'a' at col 0 (width 1), tab expands to col 4, 'b' at col 4 (width 1)
	if got, want := b.DisplayWidth(0, 1), 1; got != want {
		t.Errorf("width up to 'a': got %d, want %d", got, want)
	}
	if got, want := b.DisplayWidth(0, 2), 4; got != want {
		t.Errorf("width up to tab: got %d, want %d", got, want)
	}
	if got, want := b.DisplayWidth(0, 3), 5; got != want {
		t.Errorf("width up to 'b': got %d, want %d", got, want)
	}
}

func TestColumnToGraphemeTabs(t *testing.T) {
	b := FromString("a\tb", WithTabWidth(4))
	if got, want := b.ColumnToGrapheme(0, 0), 0; got != want {
		t.Errorf("col 0: got %d, want %d", got, want)
	}
	if got, want := b.ColumnToGrapheme(0, 2), 1; got != want {
		t.Errorf("col 2 (inside tab cell): got %d, want %d", got, want)
	}
	if got, want := b.ColumnToGrapheme(0, 4), 2; got != want {
		t.Errorf("col 4 ('b'): got %d, want %d", got, want)
	}
}

func TestDisplayWidthEastAsian(t *testing.T) {
	b := FromString("中A") // wide CJK char + narrow ASCII
	if got, want := b.DisplayWidth(0, 1), 2; got != want {
		t.Errorf("wide char width: got %d, want %d", got, want)
	}
	if got, want := b.DisplayWidth(0, 2), 3; got != want {
		t.Errorf("total width: got %d, want %d", got, want)
	}
}
