package vim

import "github.com/dshills/vicut/internal/vibuf"

// SpanType classifies how a Span's [Start, End] endpoints are interpreted.
type SpanType uint8

const (
	// CharExclusive spans exclude the grapheme at End.
	CharExclusive SpanType = iota
	// CharInclusive spans include the grapheme at End.
	CharInclusive
	// Linewise spans cover whole lines, End.Line included, regardless of column.
	Linewise
	// Blockwise spans cover a rectangular region between Start.Col and End.Col
	// on every line from Start.Line to End.Line.
	Blockwise
)

// String implements fmt.Stringer.
func (t SpanType) String() string {
	switch t {
	case CharExclusive:
		return "char-exclusive"
	case CharInclusive:
		return "char-inclusive"
	case Linewise:
		return "linewise"
	case Blockwise:
		return "blockwise"
	default:
		return "unknown"
	}
}

// Span is a typed text range produced by a motion, text object, or
// Visual-mode selection.
type Span struct {
	Type  SpanType
	Start vibuf.Position
	End   vibuf.Position
}

// Normalize returns an equivalent Span with Start <= End.
func (s Span) Normalize() Span {
	if s.Start.Compare(s.End) <= 0 {
		return s
	}
	return Span{Type: s.Type, Start: s.End, End: s.Start}
}

// AsRange converts the span to a half-open vibuf.Range suitable for
// Buffer.Delete/Slice/Replace, resolving inclusive/linewise adjustment.
// For Linewise spans, Start.Col is forced to 0 and End is the start of
// the line following s.End.Line (so the line's terminator is included).
func (s Span) AsRange(buf *vibuf.Buffer) vibuf.Range {
	n := s.Normalize()
	switch n.Type {
	case Linewise:
		start := vibuf.Position{Line: n.Start.Line, Col: 0}
		endLine := n.End.Line + 1
		endCol := 0
		if endLine >= buf.LineCount() {
			endLine = buf.LineCount() - 1
			endCol = buf.LineLen(endLine)
		}
		return vibuf.Range{Start: start, End: vibuf.Position{Line: endLine, Col: endCol}}
	case CharInclusive:
		end := n.End
		end.Col++
		return vibuf.Range{Start: n.Start, End: buf.Clamp(end)}
	default: // CharExclusive, Blockwise (blockwise handled per-line by callers)
		return vibuf.Range{Start: n.Start, End: n.End}
	}
}

// ExclusiveAdjustToLinewise applies the Vim-compatibility rule: a charwise
// exclusive span whose end column is 0 (and which spans at least one full
// line) is treated as linewise, with the end line backed up by one.
func ExclusiveAdjustToLinewise(s Span) Span {
	n := s.Normalize()
	if n.Type != CharExclusive {
		return s
	}
	if n.End.Col != 0 || n.End.Line <= n.Start.Line {
		return s
	}
	return Span{
		Type:  Linewise,
		Start: vibuf.Position{Line: n.Start.Line, Col: 0},
		End:   vibuf.Position{Line: n.End.Line - 1, Col: 0},
	}
}

// Mode is the interpreter's current editing mode, modeled as a small enum
// rather than scattered booleans (per the state-machine design note).
type Mode uint8

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeReplace
	ModeVisualChar
	ModeVisualLine
	ModeVisualBlock
	ModeOperatorPending
	ModeCommandLine
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeInsert:
		return "insert"
	case ModeReplace:
		return "replace"
	case ModeVisualChar:
		return "visual"
	case ModeVisualLine:
		return "visual-line"
	case ModeVisualBlock:
		return "visual-block"
	case ModeOperatorPending:
		return "operator-pending"
	case ModeCommandLine:
		return "command-line"
	default:
		return "unknown"
	}
}

// IsVisual reports whether m is one of the three Visual submodes.
func (m Mode) IsVisual() bool {
	return m == ModeVisualChar || m == ModeVisualLine || m == ModeVisualBlock
}
