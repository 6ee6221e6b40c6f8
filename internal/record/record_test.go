package record

import (
	"testing"

	"github.com/dshills/vicut/internal/vibuf"
)

func TestBuilderTrimFields(t *testing.T) {
	b := NewBuilder(true)
	b.AddField("", "  hello  ", vibuf.Position{}, vibuf.Position{})
	records := b.Finish()
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if got := records[0].Fields[0].Text; got != "hello" {
		t.Errorf("trimmed text = %q, want %q", got, "hello")
	}
}

func TestBuilderNoTrim(t *testing.T) {
	b := NewBuilder(false)
	b.AddField("", "  hello  ", vibuf.Position{}, vibuf.Position{})
	records := b.Finish()
	if got := records[0].Fields[0].Text; got != "  hello  " {
		t.Errorf("text = %q, want untrimmed", got)
	}
}

func TestBuilderNextClosesRecords(t *testing.T) {
	b := NewBuilder(false)
	b.AddField("", "a", vibuf.Position{}, vibuf.Position{})
	b.Next()
	b.AddField("", "b", vibuf.Position{}, vibuf.Position{})
	b.Next()
	b.AddField("", "c", vibuf.Position{}, vibuf.Position{})

	records := b.Finish()
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got := records[i].Fields[0].Text; got != want {
			t.Errorf("record %d = %q, want %q", i, got, want)
		}
	}
}

func TestBuilderTrailingEmptyRecordDropped(t *testing.T) {
	b := NewBuilder(false)
	b.AddField("", "a", vibuf.Position{}, vibuf.Position{})
	b.Next()

	records := b.Finish()
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1 (trailing empty record dropped)", len(records))
	}
}

func TestBuilderNamedField(t *testing.T) {
	b := NewBuilder(false)
	b.AddField("host", "example.com", vibuf.Position{}, vibuf.Position{})
	records := b.Finish()
	if got := records[0].Fields[0].Name; got != "host" {
		t.Errorf("name = %q, want %q", got, "host")
	}
}

func TestFieldCount(t *testing.T) {
	b := NewBuilder(false)
	if b.FieldCount() != 0 {
		t.Fatalf("initial FieldCount = %d, want 0", b.FieldCount())
	}
	b.AddField("", "a", vibuf.Position{}, vibuf.Position{})
	b.Next()
	b.AddField("", "b", vibuf.Position{}, vibuf.Position{})
	if got := b.FieldCount(); got != 2 {
		t.Errorf("FieldCount = %d, want 2", got)
	}
}
