package vim

import "testing"

func TestRegisterUnnamedReceivesYank(t *testing.T) {
	rs := NewRegisterStore()
	rs.SetYank("hello", false, false)

	content, _, _ := rs.Get('"')
	if content != "hello" {
		t.Errorf("unnamed register: got %q, want %q", content, "hello")
	}
	content, _, _ = rs.Get('0')
	if content != "hello" {
		t.Errorf("register 0: got %q, want %q", content, "hello")
	}
}

func TestRegisterDeleteRotation(t *testing.T) {
	rs := NewRegisterStore()
	rs.SetDelete("first", true, false, false)
	rs.SetDelete("second", true, false, false)

	c1, _, _ := rs.Get('1')
	if c1 != "second" {
		t.Errorf("register 1: got %q, want %q", c1, "second")
	}
	c2, _, _ := rs.Get('2')
	if c2 != "first" {
		t.Errorf("register 2: got %q, want %q", c2, "first")
	}
}

func TestRegisterSmallDelete(t *testing.T) {
	rs := NewRegisterStore()
	rs.SetDelete("x", false, false, true)

	small, _, _ := rs.Get('-')
	if small != "x" {
		t.Errorf("small-delete register: got %q, want %q", small, "x")
	}
	one, _, _ := rs.Get('1')
	if one != "" {
		t.Errorf("register 1 should be untouched by small deletes, got %q", one)
	}
}

func TestRegisterUppercaseAppends(t *testing.T) {
	rs := NewRegisterStore()
	rs.Set('a', "foo", false, false)
	rs.Set('A', "bar", false, false)

	content, _, _ := rs.Get('a')
	if content != "foobar" {
		t.Errorf("appended register: got %q, want %q", content, "foobar")
	}
}

func TestRegisterBlackHoleDiscards(t *testing.T) {
	rs := NewRegisterStore()
	rs.Set('_', "gone", false, false)
	content, _, _ := rs.Get('_')
	if content != "" {
		t.Errorf("black hole should discard, got %q", content)
	}
}

func TestIsValidRegister(t *testing.T) {
	valid := []rune{'"', 'a', 'Z', '0', '9', '-', '_'}
	for _, r := range valid {
		if !IsValidRegister(r) {
			t.Errorf("expected %q to be valid", r)
		}
	}
	invalid := []rune{'.', '%', ':', '+', '*'}
	for _, r := range invalid {
		if IsValidRegister(r) {
			t.Errorf("expected %q to be invalid (editor-only register dropped)", r)
		}
	}
}
