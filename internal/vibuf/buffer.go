package vibuf

import (
	"errors"
	"strings"
	"sync"

	"github.com/rivo/uniseg"
)

// Errors returned by buffer operations.
var (
	ErrPositionOutOfRange = errors.New("position out of range")
	ErrRangeInvalid       = errors.New("invalid range")
)

// LineEnding identifies the terminator a line originally carried, so that
// in-place edits can reproduce it faithfully.
type LineEnding uint8

const (
	// LineEndingLF is the Unix terminator, and the default for new lines.
	LineEndingLF LineEnding = iota
	// LineEndingCRLF is the Windows terminator.
	LineEndingCRLF
	// LineEndingCR is the old Mac terminator.
	LineEndingCR
	// LineEndingNone marks the final line of a file with no trailing
	// terminator at all.
	LineEndingNone
)

// Sequence returns the literal terminator bytes for this ending.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	case LineEndingNone:
		return ""
	default:
		return "\n"
	}
}

// Buffer is a grapheme-aware, line-indexed mutable text. It is not
// thread-safe for concurrent writers; in line-wise mode each worker owns
// its own Buffer (see internal/pipeline), so no locking is imposed here
// beyond guarding read/write races within a single goroutine's use.
type Buffer struct {
	mu       sync.RWMutex
	lines    [][]string // grapheme clusters per line
	endings  []LineEnding
	tabWidth int
}

// Option configures a Buffer at construction time.
type Option func(*Buffer)

// WithTabWidth sets the buffer's tab width (used for display-width
// calculations only; a tab is always exactly one grapheme).
func WithTabWidth(width int) Option {
	return func(b *Buffer) {
		if width > 0 {
			b.tabWidth = width
		}
	}
}

// New creates an empty buffer (a single empty line).
func New(opts ...Option) *Buffer {
	b := &Buffer{
		lines:    [][]string{{}},
		endings:  []LineEnding{LineEndingNone},
		tabWidth: 8,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FromString builds a buffer from text, splitting on line terminators and
// remembering each line's original terminator for faithful round-tripping.
func FromString(s string, opts ...Option) *Buffer {
	b := New(opts...)
	b.lines = nil
	b.endings = nil

	if s == "" {
		b.lines = [][]string{{}}
		b.endings = []LineEnding{LineEndingNone}
		return b
	}

	i := 0
	n := len(s)
	for i < n {
		start := i
		ending := LineEndingNone
		for i < n {
			if s[i] == '\n' {
				ending = LineEndingLF
				break
			}
			if s[i] == '\r' {
				if i+1 < n && s[i+1] == '\n' {
					ending = LineEndingCRLF
				} else {
					ending = LineEndingCR
				}
				break
			}
			i++
		}
		line := s[start:i]
		b.lines = append(b.lines, segment(line))
		b.endings = append(b.endings, ending)

		switch ending {
		case LineEndingLF, LineEndingCR:
			i++
		case LineEndingCRLF:
			i += 2
		default:
			// reached end of string with no terminator
		}
	}
	if len(b.lines) == 0 {
		b.lines = [][]string{{}}
		b.endings = []LineEnding{LineEndingNone}
	}
	return b
}

// segment splits a single line of text (no terminator) into grapheme
// clusters.
func segment(s string) []string {
	if s == "" {
		return []string{}
	}
	out := make([]string, 0, len(s))
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		out = append(out, cluster)
	}
	return out
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// Line returns the grapheme clusters of a line. The returned slice must
// not be mutated by the caller.
func (b *Buffer) Line(i int) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i < 0 || i >= len(b.lines) {
		return nil
	}
	return b.lines[i]
}

// LineLen returns the grapheme length of a line.
func (b *Buffer) LineLen(i int) int {
	return len(b.Line(i))
}

// LineText returns the joined text of a line, without its terminator.
func (b *Buffer) LineText(i int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return strings.Join(b.lines[i], "")
}

// LineEnding returns the remembered terminator for a line.
func (b *Buffer) LineEnding(i int) LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i < 0 || i >= len(b.endings) {
		return LineEndingNone
	}
	return b.endings[i]
}

// TabWidth returns the configured tab width.
func (b *Buffer) TabWidth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tabWidth
}

// IsEmpty reports whether the buffer has a single empty line.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines) == 1 && len(b.lines[0]) == 0
}

// Text returns the full buffer content, terminators included.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var sb strings.Builder
	for i, line := range b.lines {
		for _, g := range line {
			sb.WriteString(g)
		}
		sb.WriteString(b.endings[i].Sequence())
	}
	return sb.String()
}

// Clamp clamps a position so its line is in range and its column is in
// [0, lineLen] (lineLen itself is the valid append sentinel).
func (b *Buffer) Clamp(pos Position) Position {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.clampLocked(pos)
}

func (b *Buffer) clampLocked(pos Position) Position {
	if pos.Line < 0 {
		pos.Line = 0
	}
	if pos.Line >= len(b.lines) {
		pos.Line = len(b.lines) - 1
	}
	ll := len(b.lines[pos.Line])
	if pos.Col < 0 {
		pos.Col = 0
	}
	if pos.Col > ll {
		pos.Col = ll
	}
	return pos
}

// End returns the just-past-end sentinel position of the buffer.
func (b *Buffer) End() Position {
	b.mu.RLock()
	defer b.mu.RUnlock()
	last := len(b.lines) - 1
	return Position{Line: last, Col: len(b.lines[last])}
}

// CharAt returns the grapheme at pos, or "" if pos is the end-of-line or
// end-of-buffer sentinel.
func (b *Buffer) CharAt(pos Position) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if pos.Line < 0 || pos.Line >= len(b.lines) {
		return ""
	}
	line := b.lines[pos.Line]
	if pos.Col < 0 || pos.Col >= len(line) {
		return ""
	}
	return line[pos.Col]
}

// Slice returns the text covered by [r.Start, r.End), exclusive of End.
func (b *Buffer) Slice(r Range) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sliceLocked(r)
}

func (b *Buffer) sliceLocked(r Range) string {
	start, end := r.Start, r.End
	if start.Compare(end) > 0 {
		start, end = end, start
	}
	if start.Line == end.Line {
		line := b.lines[start.Line]
		return strings.Join(clip(line, start.Col, end.Col), "")
	}
	var sb strings.Builder
	first := b.lines[start.Line]
	sb.WriteString(strings.Join(clip(first, start.Col, len(first)), ""))
	sb.WriteString(b.endings[start.Line].Sequence())
	for l := start.Line + 1; l < end.Line; l++ {
		sb.WriteString(strings.Join(b.lines[l], ""))
		sb.WriteString(b.endings[l].Sequence())
	}
	last := b.lines[end.Line]
	sb.WriteString(strings.Join(clip(last, 0, end.Col), ""))
	return sb.String()
}

func clip(line []string, start, end int) []string {
	if start < 0 {
		start = 0
	}
	if end > len(line) {
		end = len(line)
	}
	if start > end {
		start = end
	}
	return line[start:end]
}

// Delete removes the text covered by [r.Start, r.End) and returns it.
func (b *Buffer) Delete(r Range) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start, end := r.Start, r.End
	if start.Compare(end) > 0 {
		start, end = end, start
	}
	if start.Line < 0 || end.Line >= len(b.lines) {
		return "", ErrRangeInvalid
	}

	deleted := b.sliceLocked(Range{Start: start, End: end})

	startLine := b.lines[start.Line]
	endLine := b.lines[end.Line]
	endEnding := b.endings[end.Line]

	merged := append(append([]string{}, startLine[:start.Col]...), endLine[end.Col:]...)

	newLines := make([][]string, 0, len(b.lines)-(end.Line-start.Line))
	newEndings := make([]LineEnding, 0, cap(newLines))
	newLines = append(newLines, b.lines[:start.Line]...)
	newEndings = append(newEndings, b.endings[:start.Line]...)
	newLines = append(newLines, merged)
	newEndings = append(newEndings, endEnding)
	newLines = append(newLines, b.lines[end.Line+1:]...)
	newEndings = append(newEndings, b.endings[end.Line+1:]...)

	b.lines = newLines
	b.endings = newEndings
	return deleted, nil
}

// Insert inserts text at pos and returns the position just past the
// inserted text. Embedded newlines (\n, \r\n, \r) split lines; each line
// ended inside text keeps the terminator that ended it, and the last
// inserted piece takes over the original line's terminator.
func (b *Buffer) Insert(pos Position, text string) (Position, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if pos.Line < 0 || pos.Line >= len(b.lines) {
		return Position{}, ErrPositionOutOfRange
	}
	line := b.lines[pos.Line]
	if pos.Col < 0 || pos.Col > len(line) {
		return Position{}, ErrPositionOutOfRange
	}

	inserted := FromString(text)
	if inserted.endings[len(inserted.endings)-1] != LineEndingNone {
		// text ends with a newline: the rest of the line moves to a new line.
		inserted.lines = append(inserted.lines, []string{})
		inserted.endings = append(inserted.endings, LineEndingNone)
	}
	before := append([]string{}, line[:pos.Col]...)
	after := append([]string{}, line[pos.Col:]...)

	if len(inserted.lines) == 1 {
		newLine := append(append(before, inserted.lines[0]...), after...)
		b.lines[pos.Line] = newLine
		return Position{Line: pos.Line, Col: pos.Col + len(inserted.lines[0])}, nil
	}

	origEnding := b.endings[pos.Line]

	var newLines [][]string
	var newEndings []LineEnding
	newLines = append(newLines, b.lines[:pos.Line]...)
	newEndings = append(newEndings, b.endings[:pos.Line]...)

	firstNew := append(before, inserted.lines[0]...)
	newLines = append(newLines, firstNew)
	newEndings = append(newEndings, inserted.endings[0])

	for i := 1; i < len(inserted.lines)-1; i++ {
		newLines = append(newLines, append([]string{}, inserted.lines[i]...))
		newEndings = append(newEndings, inserted.endings[i])
	}

	lastIdx := len(inserted.lines) - 1
	lastNew := append(append([]string{}, inserted.lines[lastIdx]...), after...)
	newLines = append(newLines, lastNew)
	newEndings = append(newEndings, origEnding)

	newLines = append(newLines, b.lines[pos.Line+1:]...)
	newEndings = append(newEndings, b.endings[pos.Line+1:]...)

	b.lines = newLines
	b.endings = newEndings

	return Position{Line: pos.Line + lastIdx, Col: len(inserted.lines[lastIdx])}, nil
}

// Replace deletes r and inserts text in its place, returning the position
// just past the inserted text.
func (b *Buffer) Replace(r Range, text string) (Position, error) {
	if _, err := b.Delete(r); err != nil {
		return Position{}, err
	}
	start := Min(r.Start, r.End)
	return b.Insert(start, text)
}

// DeleteLines removes whole lines [from, to] inclusive (0-indexed) and
// returns their joined text, terminators included.
func (b *Buffer) DeleteLines(from, to int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if from < 0 || to >= len(b.lines) || from > to {
		return "", ErrRangeInvalid
	}

	var sb strings.Builder
	for l := from; l <= to; l++ {
		sb.WriteString(strings.Join(b.lines[l], ""))
		sb.WriteString(b.endings[l].Sequence())
	}

	removed := to - from + 1
	if removed == len(b.lines) {
		b.lines = [][]string{{}}
		b.endings = []LineEnding{LineEndingNone}
		return sb.String(), nil
	}

	newLines := make([][]string, 0, len(b.lines)-removed)
	newEndings := make([]LineEnding, 0, cap(newLines))
	newLines = append(newLines, b.lines[:from]...)
	newEndings = append(newEndings, b.endings[:from]...)
	newLines = append(newLines, b.lines[to+1:]...)
	newEndings = append(newEndings, b.endings[to+1:]...)
	b.lines = newLines
	b.endings = newEndings
	return sb.String(), nil
}

// InsertLine inserts a new line of text at index i (0-indexed), shifting
// subsequent lines down. If i == LineCount(), the line is appended.
func (b *Buffer) InsertLine(i int, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i < 0 || i > len(b.lines) {
		return ErrPositionOutOfRange
	}
	newLines := make([][]string, 0, len(b.lines)+1)
	newEndings := make([]LineEnding, 0, len(b.endings)+1)
	newLines = append(newLines, b.lines[:i]...)
	newEndings = append(newEndings, b.endings[:i]...)
	newLines = append(newLines, segment(text))
	ending := LineEndingLF
	if i == len(b.lines) {
		ending = b.endings[len(b.endings)-1]
		if ending == LineEndingNone {
			ending = LineEndingLF
		}
	}
	newEndings = append(newEndings, ending)
	newLines = append(newLines, b.lines[i:]...)
	newEndings = append(newEndings, b.endings[i:]...)
	b.lines = newLines
	b.endings = newEndings
	return nil
}

// SetLineText replaces the text of line i, keeping its terminator.
func (b *Buffer) SetLineText(i int, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.lines) {
		return ErrPositionOutOfRange
	}
	b.lines[i] = segment(text)
	return nil
}

// Snapshot returns an immutable copy of the buffer's current lines, for
// callers (such as the script runtime) that need a stable view.
func (b *Buffer) Snapshot() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, len(b.lines))
	for i, line := range b.lines {
		out[i] = strings.Join(line, "")
	}
	return out
}
