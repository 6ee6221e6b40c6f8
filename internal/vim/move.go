package vim

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/vicut/internal/vibuf"
)

// charClass classifies a single grapheme for word/WORD motion purposes.
// Grounded on the teacher's internal/dispatcher/handlers/cursor/motion.go
// isWordCharacter, but reworked into a three-way classifier: the teacher's
// two-way "word char vs. not" version leaves its `inWord` flag permanently
// false when scanning starts on punctuation, which can overrun a
// punctuation run; a third "punctuation" class fixes that without
// reproducing the bug.
type charClass uint8

const (
	classSpace charClass = iota
	classWord
	classPunct
)

func classify(g string, big bool) charClass {
	r, _ := utf8.DecodeRuneInString(g)
	if unicode.IsSpace(r) {
		return classSpace
	}
	if big {
		return classWord
	}
	if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
		return classWord
	}
	return classPunct
}

// WordForward returns the position of the start of the next word/WORD
// after pos, per Vim's "w" semantics: skip the rest of the current
// word/punct run, skip whitespace, land on the next non-space run's
// start. Clamps to end-of-buffer instead of wrapping.
func WordForward(buf *vibuf.Buffer, pos vibuf.Position, big bool) vibuf.Position {
	line, col := pos.Line, pos.Col
	lineLen := buf.LineLen(line)

	if col >= lineLen {
		if line >= buf.LineCount()-1 {
			return buf.End()
		}
		return firstNonBlankOrStart(buf, line+1)
	}

	startClass := classify(buf.CharAt(vibuf.Position{Line: line, Col: col}), big)
	for {
		col++
		if col >= lineLen {
			if line >= buf.LineCount()-1 {
				return vibuf.Position{Line: line, Col: lineLen}
			}
			line++
			col = 0
			lineLen = buf.LineLen(line)
			if lineLen == 0 {
				return vibuf.Position{Line: line, Col: 0}
			}
			break
		}
		c := classify(buf.CharAt(vibuf.Position{Line: line, Col: col}), big)
		if c != startClass {
			break
		}
	}

	for col < lineLen && classify(buf.CharAt(vibuf.Position{Line: line, Col: col}), big) == classSpace {
		col++
		if col >= lineLen {
			if line >= buf.LineCount()-1 {
				return vibuf.Position{Line: line, Col: lineLen}
			}
			line++
			col = 0
			lineLen = buf.LineLen(line)
			if lineLen == 0 {
				return vibuf.Position{Line: line, Col: 0}
			}
		}
	}
	return vibuf.Position{Line: line, Col: col}
}

func firstNonBlankOrStart(buf *vibuf.Buffer, line int) vibuf.Position {
	lineLen := buf.LineLen(line)
	for col := 0; col < lineLen; col++ {
		if classify(buf.CharAt(vibuf.Position{Line: line, Col: col}), false) != classSpace {
			return vibuf.Position{Line: line, Col: col}
		}
	}
	return vibuf.Position{Line: line, Col: 0}
}

// WordBackward returns the position of the start of the previous word/WORD.
func WordBackward(buf *vibuf.Buffer, pos vibuf.Position, big bool) vibuf.Position {
	line, col := pos.Line, pos.Col

	step := func() bool {
		if col > 0 {
			col--
			return true
		}
		if line > 0 {
			line--
			col = buf.LineLen(line)
			if col > 0 {
				col--
			}
			return true
		}
		return false
	}

	if !step() {
		return vibuf.Position{Line: 0, Col: 0}
	}
	for classify(charAtOrSpace(buf, line, col), big) == classSpace {
		if !step() {
			return vibuf.Position{Line: 0, Col: 0}
		}
	}
	cls := classify(charAtOrSpace(buf, line, col), big)
	for col > 0 {
		prevClass := classify(charAtOrSpace(buf, line, col-1), big)
		if prevClass != cls {
			break
		}
		col--
	}
	return vibuf.Position{Line: line, Col: col}
}

// WordEndBack returns the position of the end of the previous word/WORD
// ("ge"/"gE"): step back at least one grapheme, skip any whitespace run,
// and land on the last grapheme of the run behind it.
func WordEndBack(buf *vibuf.Buffer, pos vibuf.Position, big bool) vibuf.Position {
	line, col := pos.Line, pos.Col

	step := func() bool {
		if col > 0 {
			col--
			return true
		}
		if line > 0 {
			line--
			col = buf.LineLen(line)
			if col > 0 {
				col--
			}
			return true
		}
		return false
	}

	if !step() {
		return vibuf.Position{Line: 0, Col: 0}
	}
	for classify(charAtOrSpace(buf, line, col), big) == classSpace {
		if !step() {
			return vibuf.Position{Line: 0, Col: 0}
		}
	}
	return vibuf.Position{Line: line, Col: col}
}

func charAtOrSpace(buf *vibuf.Buffer, line, col int) string {
	if col >= buf.LineLen(line) {
		return " "
	}
	return buf.CharAt(vibuf.Position{Line: line, Col: col})
}

// WordEnd returns the position of the end of the current or next word/WORD
// (inclusive motion target — the grapheme at the returned position is
// included by the caller).
func WordEnd(buf *vibuf.Buffer, pos vibuf.Position, big bool) vibuf.Position {
	line, col := pos.Line, pos.Col

	step := func() bool {
		if col < buf.LineLen(line)-1 {
			col++
			return true
		}
		if line < buf.LineCount()-1 {
			line++
			col = 0
			return true
		}
		return false
	}

	if !step() {
		return buf.Clamp(vibuf.Position{Line: line, Col: col})
	}
	for classify(charAtOrSpace(buf, line, col), big) == classSpace {
		if !step() {
			return buf.Clamp(vibuf.Position{Line: line, Col: col})
		}
	}
	cls := classify(charAtOrSpace(buf, line, col), big)
	for col < buf.LineLen(line)-1 {
		next := classify(charAtOrSpace(buf, line, col+1), big)
		if next != cls {
			break
		}
		col++
	}
	return vibuf.Position{Line: line, Col: col}
}

// FindChar returns the position of the count-th occurrence of ch after pos
// on the same line, or pos unchanged if not found (f/t deliberately leave
// the cursor in place so they can be used as conditionals).
func FindChar(buf *vibuf.Buffer, pos vibuf.Position, ch rune, count int, forward, till bool) vibuf.Position {
	line := pos.Line
	lineLen := buf.LineLen(line)
	col := pos.Col
	found := col

	if forward {
		search := col
		if till {
			search++
		}
		remaining := count
		for c := search + 1; c < lineLen; c++ {
			r, _ := utf8.DecodeRuneInString(buf.CharAt(vibuf.Position{Line: line, Col: c}))
			if r == ch {
				remaining--
				if remaining == 0 {
					found = c
					if till {
						found--
					}
					return vibuf.Position{Line: line, Col: found}
				}
			}
		}
		return pos
	}

	remaining := count
	search := col
	if till {
		search--
	}
	for c := search - 1; c >= 0; c-- {
		r, _ := utf8.DecodeRuneInString(buf.CharAt(vibuf.Position{Line: line, Col: c}))
		if r == ch {
			remaining--
			if remaining == 0 {
				found = c
				if till {
					found++
				}
				return vibuf.Position{Line: line, Col: found}
			}
		}
	}
	return pos
}

// ParagraphForward returns the start of the next blank-line-delimited
// paragraph, or end-of-buffer.
func ParagraphForward(buf *vibuf.Buffer, pos vibuf.Position) vibuf.Position {
	line := pos.Line
	n := buf.LineCount()
	for line < n && buf.LineLen(line) == 0 {
		line++
	}
	for line < n && buf.LineLen(line) != 0 {
		line++
	}
	if line >= n {
		return buf.End()
	}
	return vibuf.Position{Line: line, Col: 0}
}

// ParagraphBackward returns the start of the previous paragraph boundary.
func ParagraphBackward(buf *vibuf.Buffer, pos vibuf.Position) vibuf.Position {
	line := pos.Line
	for line > 0 && buf.LineLen(line) == 0 {
		line--
	}
	for line > 0 && buf.LineLen(line) != 0 {
		line--
	}
	return vibuf.Position{Line: line, Col: 0}
}

var sentenceEnd = regexp.MustCompile(`[.!?]+["')\]]*\s`)

// SentenceForward returns the start of the next sentence.
func SentenceForward(buf *vibuf.Buffer, pos vibuf.Position) vibuf.Position {
	graphemes := buf.Line(pos.Line)
	start := pos.Col
	if start > len(graphemes) {
		start = len(graphemes)
	}
	rest := graphemes[start:]
	loc := sentenceEnd.FindStringIndex(strings.Join(rest, ""))
	if loc == nil {
		if pos.Line < buf.LineCount()-1 {
			return vibuf.Position{Line: pos.Line + 1, Col: 0}
		}
		return buf.End()
	}
	return vibuf.Position{Line: pos.Line, Col: pos.Col + graphemeIndexForByteOffset(rest, loc[1])}
}

// SentenceBackward returns the start of the previous sentence.
func SentenceBackward(buf *vibuf.Buffer, pos vibuf.Position) vibuf.Position {
	if pos.Col == 0 {
		if pos.Line == 0 {
			return pos
		}
		return vibuf.Position{Line: pos.Line - 1, Col: 0}
	}
	graphemes := buf.Line(pos.Line)
	end := pos.Col
	if end > len(graphemes) {
		end = len(graphemes)
	}
	upTo := graphemes[:end]
	matches := sentenceEnd.FindAllStringIndex(strings.Join(upTo, ""), -1)
	if len(matches) == 0 {
		return vibuf.Position{Line: pos.Line, Col: 0}
	}
	last := matches[len(matches)-1]
	return vibuf.Position{Line: pos.Line, Col: graphemeIndexForByteOffset(upTo, last[1])}
}

var matchPairs = map[rune]rune{'(': ')', '[': ']', '{': '}'}
var matchPairsRev = map[rune]rune{')': '(', ']': '[', '}': '{'}

// MatchPair finds the position of pos's matching bracket, searching
// forward on the current line for the nearest bracket if pos is not
// already on one, per real Vim's "%" behavior.
func MatchPair(buf *vibuf.Buffer, pos vibuf.Position) (vibuf.Position, bool) {
	line := pos.Line
	lineLen := buf.LineLen(line)
	col := pos.Col

	isBracket := func(r rune) bool {
		_, open := matchPairs[r]
		_, close := matchPairsRev[r]
		return open || close
	}

	if col >= lineLen || !isBracket(runeAt(buf, line, col)) {
		found := false
		for c := col; c < lineLen; c++ {
			if isBracket(runeAt(buf, line, c)) {
				col = c
				found = true
				break
			}
		}
		if !found {
			return pos, false
		}
	}

	r := runeAt(buf, line, col)
	if close, ok := matchPairs[r]; ok {
		return searchForwardFor(buf, vibuf.Position{Line: line, Col: col}, r, close)
	}
	if open, ok := matchPairsRev[r]; ok {
		return searchBackwardFor(buf, vibuf.Position{Line: line, Col: col}, open, r)
	}
	return pos, false
}

func runeAt(buf *vibuf.Buffer, line, col int) rune {
	r, _ := utf8.DecodeRuneInString(buf.CharAt(vibuf.Position{Line: line, Col: col}))
	return r
}

func searchForwardFor(buf *vibuf.Buffer, from vibuf.Position, open, close rune) (vibuf.Position, bool) {
	depth := 0
	line, col := from.Line, from.Col
	for line < buf.LineCount() {
		lineLen := buf.LineLen(line)
		for col < lineLen {
			r := runeAt(buf, line, col)
			switch r {
			case open:
				depth++
			case close:
				depth--
				if depth == 0 {
					return vibuf.Position{Line: line, Col: col}, true
				}
			}
			col++
		}
		line++
		col = 0
	}
	return from, false
}

func searchBackwardFor(buf *vibuf.Buffer, from vibuf.Position, open, close rune) (vibuf.Position, bool) {
	depth := 0
	line, col := from.Line, from.Col
	for line >= 0 {
		if col < 0 {
			line--
			if line < 0 {
				break
			}
			col = buf.LineLen(line) - 1
			continue
		}
		r := runeAt(buf, line, col)
		switch r {
		case close:
			depth++
		case open:
			depth--
			if depth == 0 {
				return vibuf.Position{Line: line, Col: col}, true
			}
		}
		col--
	}
	return from, false
}
