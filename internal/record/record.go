// Package record assembles the Field/Record stream a Program produces:
// accumulating captured spans into fields, closing records at Next
// boundaries, and applying the trim_fields policy at capture time.
package record

import (
	"strings"

	"github.com/dshills/vicut/internal/vibuf"
)

// Field is one captured span: an optional explicit name, the captured text,
// and the buffer positions it came from.
type Field struct {
	Name       string
	Text       string
	Start, End vibuf.Position
}

// Record is an ordered sequence of fields, closed by a Next instruction or
// by the end of the program.
type Record struct {
	Fields []Field
}

// Builder accumulates fields into records as a Program executes.
type Builder struct {
	TrimFields bool

	records []Record
	current Record
}

// NewBuilder returns a Builder. When trim is true, each field's text is
// stripped of leading/trailing whitespace as it is captured; the span
// itself is left unchanged (spec.md §4.6: "span is unchanged").
func NewBuilder(trim bool) *Builder {
	return &Builder{TrimFields: trim}
}

// AddField appends a captured field to the record currently being built.
func (b *Builder) AddField(name, text string, start, end vibuf.Position) {
	if b.TrimFields {
		text = strings.TrimSpace(text)
	}
	b.current.Fields = append(b.current.Fields, Field{Name: name, Text: text, Start: start, End: end})
}

// Next closes the current record (even if empty — an explicit `next` with
// no preceding capture yields an empty record, matching its role as an
// unconditional record boundary) and starts a new one.
func (b *Builder) Next() {
	b.records = append(b.records, b.current)
	b.current = Record{}
}

// Finish flushes any pending fields into a final record and returns the
// completed record stream. A trailing empty record (no fields captured
// since the last Next, and the program never called Next again) is
// dropped rather than emitted.
func (b *Builder) Finish() []Record {
	if len(b.current.Fields) > 0 {
		b.records = append(b.records, b.current)
		b.current = Record{}
	}
	return b.records
}

// FieldCount reports the total number of fields captured across every
// record so far, including the one still being built.
func (b *Builder) FieldCount() int {
	n := len(b.current.Fields)
	for _, r := range b.records {
		n += len(r.Fields)
	}
	return n
}
