package exsub

import "testing"

func mustParse(t *testing.T, cmd string) *Substitution {
	t.Helper()
	sub, err := ParseCommand(cmd)
	if err != nil {
		t.Fatalf("ParseCommand(%q): %v", cmd, err)
	}
	return sub
}

func TestSubstitutionWholeBufferGlobal(t *testing.T) {
	buf := newTestBuffer(t, "foofoo\nfoo")
	sub := mustParse(t, ":%s/foo/bar/g")

	n, err := sub.Apply(buf, 0, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if n != 3 {
		t.Errorf("match count = %d, want 3", n)
	}
	if got, want := buf.Text(), "barbar\nbar"; got != want {
		t.Errorf("buffer = %q, want %q", got, want)
	}
}

func TestSubstitutionFirstOccurrenceOnly(t *testing.T) {
	buf := newTestBuffer(t, "foofoo")
	sub := mustParse(t, ":s/foo/bar/")

	if _, err := sub.Apply(buf, 0, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got, want := buf.Text(), "barfoo"; got != want {
		t.Errorf("buffer = %q, want %q", got, want)
	}
}

func TestSubstitutionCountOnlyLeavesBufferUnchanged(t *testing.T) {
	buf := newTestBuffer(t, "foofoo\nfoo")
	sub := mustParse(t, ":%s/foo/bar/gn")

	n, err := sub.Apply(buf, 0, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if n != 3 {
		t.Errorf("match count = %d, want 3", n)
	}
	if got, want := buf.Text(), "foofoo\nfoo"; got != want {
		t.Errorf("buffer mutated under -n: got %q, want %q", got, want)
	}
}

func TestSubstitutionRangeOutOfBounds(t *testing.T) {
	buf := newTestBuffer(t, "one\ntwo")
	sub := mustParse(t, ":5,6s/foo/bar/")

	if _, err := sub.Apply(buf, 0, nil); err == nil {
		t.Fatal("expected InvalidRange error for out-of-bounds range")
	}
}

func TestSubstitutionBackreferenceAndCase(t *testing.T) {
	buf := newTestBuffer(t, "hello world")
	sub := mustParse(t, `:s/(\w+) (\w+)/\U\2\E \1/`)

	if _, err := sub.Apply(buf, 0, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got, want := buf.Text(), "WORLD hello"; got != want {
		t.Errorf("buffer = %q, want %q", got, want)
	}
}

func TestSubstitutionCaseInsensitiveFlag(t *testing.T) {
	buf := newTestBuffer(t, "Foo FOO foo")
	sub := mustParse(t, ":s/foo/x/gi")

	if _, err := sub.Apply(buf, 0, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got, want := buf.Text(), "x x x"; got != want {
		t.Errorf("buffer = %q, want %q", got, want)
	}
}

func TestSubstitutionLineRange(t *testing.T) {
	buf := newTestBuffer(t, "foo\nfoo\nfoo")
	sub := mustParse(t, ":2,3s/foo/bar/")

	if _, err := sub.Apply(buf, 0, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got, want := buf.Text(), "foo\nbar\nbar"; got != want {
		t.Errorf("buffer = %q, want %q", got, want)
	}
}

func TestSubstitutionUnknownFlagRejected(t *testing.T) {
	if _, err := ParseCommand(":s/foo/bar/z"); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestSubstitutionUnsupportedCommandRejected(t *testing.T) {
	if _, err := ParseCommand(":%d"); err == nil {
		t.Fatal("expected error for non-substitution Ex command")
	}
}
