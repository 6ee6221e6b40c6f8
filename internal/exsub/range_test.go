package exsub

import "testing"

func TestParseRangeCurrentLineDefault(t *testing.T) {
	spec, rest, err := parseRange("s/foo/bar/")
	if err != nil {
		t.Fatalf("parseRange: %v", err)
	}
	if rest != "s/foo/bar/" {
		t.Errorf("rest = %q, want unchanged command", rest)
	}
	from, to, err := spec.Resolve(newTestBuffer(t, "a\nb\nc"), 1, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if from != 1 || to != 1 {
		t.Errorf("range = %d,%d, want 1,1 (current line)", from, to)
	}
}

func TestParseRangeOffset(t *testing.T) {
	spec, rest, err := parseRange("+2s/foo/bar/")
	if err != nil {
		t.Fatalf("parseRange: %v", err)
	}
	if rest != "s/foo/bar/" {
		t.Errorf("rest = %q", rest)
	}
	from, to, err := spec.Resolve(newTestBuffer(t, "a\nb\nc\nd\ne"), 0, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if from != 2 || to != 2 {
		t.Errorf("range = %d,%d, want 2,2", from, to)
	}
}

func TestParseRangeMarkUnset(t *testing.T) {
	spec, _, err := parseRange("'as/foo/bar/")
	if err != nil {
		t.Fatalf("parseRange: %v", err)
	}
	if _, _, err := spec.Resolve(newTestBuffer(t, "a\nb"), 0, NewMarks()); err == nil {
		t.Fatal("expected InvalidRange for unset mark")
	}
}

func TestParseRangeMarkSet(t *testing.T) {
	spec, _, err := parseRange("'as/foo/bar/")
	if err != nil {
		t.Fatalf("parseRange: %v", err)
	}
	marks := NewMarks()
	marks.Set('a', 2)
	from, to, err := spec.Resolve(newTestBuffer(t, "a\nb\nc\nd"), 0, marks)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if from != 2 || to != 2 {
		t.Errorf("range = %d,%d, want 2,2", from, to)
	}
}

func TestParseRangePatternForward(t *testing.T) {
	spec, rest, err := parseRange("/three/s/foo/bar/")
	if err != nil {
		t.Fatalf("parseRange: %v", err)
	}
	if rest != "s/foo/bar/" {
		t.Errorf("rest = %q", rest)
	}
	from, to, err := spec.Resolve(newTestBuffer(t, "one\ntwo\nthree\nfour"), 0, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if from != 2 || to != 2 {
		t.Errorf("range = %d,%d, want 2,2 (line matching /three/)", from, to)
	}
}

func TestParseRangeWhole(t *testing.T) {
	spec, rest, err := parseRange("%s/foo/bar/g")
	if err != nil {
		t.Fatalf("parseRange: %v", err)
	}
	if rest != "s/foo/bar/g" {
		t.Errorf("rest = %q", rest)
	}
	from, to, err := spec.Resolve(newTestBuffer(t, "a\nb\nc"), 0, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if from != 0 || to != 2 {
		t.Errorf("range = %d,%d, want 0,2", from, to)
	}
}
