package vim

import (
	"strings"

	"github.com/dshills/vicut/internal/vibuf"
)

// ResolveTextObject computes the Span a text object covers at pos. inner
// selects the "i" variant (delimiters/whitespace excluded); !inner
// selects "a" (delimiters/surrounding whitespace included).
func ResolveTextObject(buf *vibuf.Buffer, pos vibuf.Position, obj *TextObject, inner bool) (Span, bool) {
	switch obj.Name {
	case "word":
		return wordObject(buf, pos, inner, false)
	case "WORD":
		return wordObject(buf, pos, inner, true)
	case "sentence":
		return sentenceObject(buf, pos, inner)
	case "paragraph":
		return paragraphObject(buf, pos, inner)
	case "tag":
		return tagObject(buf, pos, inner)
	default:
		if obj.Open != 0 {
			if obj.Open == obj.Close {
				return quoteObject(buf, pos, obj.Open, inner)
			}
			return pairObject(buf, pos, obj.Open, obj.Close, inner)
		}
	}
	return Span{}, false
}

func wordObject(buf *vibuf.Buffer, pos vibuf.Position, inner, big bool) (Span, bool) {
	line := pos.Line
	lineLen := buf.LineLen(line)
	if lineLen == 0 {
		return Span{Type: CharInclusive, Start: pos, End: pos}, true
	}
	col := pos.Col
	if col >= lineLen {
		col = lineLen - 1
	}
	cls := classify(buf.CharAt(vibuf.Position{Line: line, Col: col}), big)

	start, end := col, col
	for start > 0 && classify(buf.CharAt(vibuf.Position{Line: line, Col: start - 1}), big) == cls {
		start--
	}
	for end < lineLen-1 && classify(buf.CharAt(vibuf.Position{Line: line, Col: end + 1}), big) == cls {
		end++
	}

	if !inner {
		extended := end
		for extended < lineLen-1 && classify(buf.CharAt(vibuf.Position{Line: line, Col: extended + 1}), big) == classSpace {
			extended++
		}
		if extended > end {
			end = extended
		} else {
			for start > 0 && classify(buf.CharAt(vibuf.Position{Line: line, Col: start - 1}), big) == classSpace {
				start--
			}
		}
	}

	return Span{Type: CharInclusive, Start: vibuf.Position{Line: line, Col: start}, End: vibuf.Position{Line: line, Col: end}}, true
}

func sentenceObject(buf *vibuf.Buffer, pos vibuf.Position, inner bool) (Span, bool) {
	start := SentenceBackward(buf, pos)
	end := SentenceForward(buf, pos)
	endCol := end.Col - 1
	if end.Line != pos.Line {
		endCol = buf.LineLen(pos.Line)
		if endCol > 0 {
			endCol--
		}
	}
	if endCol < start.Col {
		endCol = start.Col
	}
	if !inner {
		return Span{Type: CharInclusive, Start: start, End: vibuf.Position{Line: pos.Line, Col: endCol}}, true
	}
	trimmedEnd := endCol
	for trimmedEnd > start.Col && classify(buf.CharAt(vibuf.Position{Line: pos.Line, Col: trimmedEnd}), false) == classSpace {
		trimmedEnd--
	}
	return Span{Type: CharInclusive, Start: start, End: vibuf.Position{Line: pos.Line, Col: trimmedEnd}}, true
}

func paragraphObject(buf *vibuf.Buffer, pos vibuf.Position, inner bool) (Span, bool) {
	start := pos.Line
	for start > 0 && buf.LineLen(start-1) != 0 {
		start--
	}
	end := pos.Line
	n := buf.LineCount()
	for end < n-1 && buf.LineLen(end+1) != 0 {
		end++
	}
	if !inner {
		for end < n-1 && buf.LineLen(end+1) == 0 {
			end++
		}
	}
	return Span{Type: Linewise, Start: vibuf.Position{Line: start, Col: 0}, End: vibuf.Position{Line: end, Col: 0}}, true
}

func quoteObject(buf *vibuf.Buffer, pos vibuf.Position, quote rune, inner bool) (Span, bool) {
	line := pos.Line
	lineLen := buf.LineLen(line)

	var idxs []int
	for i := 0; i < lineLen; i++ {
		if runeAt(buf, line, i) == quote {
			idxs = append(idxs, i)
		}
	}
	if len(idxs) < 2 {
		return Span{}, false
	}

	openIdx, closeIdx := -1, -1
	for i := 0; i+1 < len(idxs); i += 2 {
		if idxs[i] <= pos.Col && pos.Col <= idxs[i+1] {
			openIdx, closeIdx = idxs[i], idxs[i+1]
			break
		}
		if idxs[i] > pos.Col {
			openIdx, closeIdx = idxs[i], idxs[i+1]
			break
		}
	}
	if openIdx < 0 {
		return Span{}, false
	}

	if inner {
		if closeIdx == openIdx+1 {
			return Span{Type: CharInclusive, Start: vibuf.Position{Line: line, Col: openIdx + 1}, End: vibuf.Position{Line: line, Col: openIdx}}, true
		}
		return Span{Type: CharInclusive, Start: vibuf.Position{Line: line, Col: openIdx + 1}, End: vibuf.Position{Line: line, Col: closeIdx - 1}}, true
	}

	end := closeIdx
	for end+1 < lineLen && runeIsSpace(runeAt(buf, line, end+1)) {
		end++
	}
	return Span{Type: CharInclusive, Start: vibuf.Position{Line: line, Col: openIdx}, End: vibuf.Position{Line: line, Col: end}}, true
}

func runeIsSpace(r rune) bool { return r == ' ' || r == '\t' }

func pairObject(buf *vibuf.Buffer, pos vibuf.Position, open, close rune, inner bool) (Span, bool) {
	startPos, startOk := nearestOpen(buf, pos, open, close)
	if !startOk {
		return Span{}, false
	}
	endPos, endOk := searchForwardFor(buf, startPos, open, close)
	if !endOk {
		return Span{}, false
	}

	if inner {
		s := advance(buf, startPos)
		e := retreat(buf, endPos)
		if s.Compare(e) > 0 {
			return Span{Type: CharExclusive, Start: startPos, End: startPos}, true
		}
		return Span{Type: CharInclusive, Start: s, End: e}, true
	}
	return Span{Type: CharInclusive, Start: startPos, End: endPos}, true
}

// nearestOpen finds the innermost enclosing open bracket of pos, or (per
// real Vim) the nearest open bracket forward on the current line if pos
// is not already inside a pair.
func nearestOpen(buf *vibuf.Buffer, pos vibuf.Position, open, close rune) (vibuf.Position, bool) {
	depth := 0
	line, col := pos.Line, pos.Col
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
			if depth == 0 {
				return vibuf.Position{Line: line, Col: col}, true
			}
			depth--
		}
		col--
	}

	lineLen := buf.LineLen(pos.Line)
	for c := pos.Col; c < lineLen; c++ {
		if runeAt(buf, pos.Line, c) == open {
			return vibuf.Position{Line: pos.Line, Col: c}, true
		}
	}
	return pos, false
}

func advance(buf *vibuf.Buffer, p vibuf.Position) vibuf.Position {
	if p.Col+1 < buf.LineLen(p.Line) {
		return vibuf.Position{Line: p.Line, Col: p.Col + 1}
	}
	if p.Line+1 < buf.LineCount() {
		return vibuf.Position{Line: p.Line + 1, Col: 0}
	}
	return p
}

func retreat(buf *vibuf.Buffer, p vibuf.Position) vibuf.Position {
	if p.Col > 0 {
		return vibuf.Position{Line: p.Line, Col: p.Col - 1}
	}
	if p.Line > 0 {
		prevLen := buf.LineLen(p.Line - 1)
		if prevLen > 0 {
			return vibuf.Position{Line: p.Line - 1, Col: prevLen - 1}
		}
		return vibuf.Position{Line: p.Line - 1, Col: 0}
	}
	return p
}

// tagObject handles it/at for a single HTML/XML-style tag pair found on
// the current line (a pragmatic subset: no nested same-name tag tracking
// and no tags spanning lines).
func tagObject(buf *vibuf.Buffer, pos vibuf.Position, inner bool) (Span, bool) {
	line := pos.Line
	graphemes := buf.Line(line)

	headEnd := pos.Col + 1
	if headEnd > len(graphemes) {
		headEnd = len(graphemes)
	}
	head := graphemes[:headEnd]
	openByte := strings.LastIndex(strings.Join(head, ""), "<")
	if openByte < 0 {
		return Span{}, false
	}
	openStart := graphemeIndexForByteOffset(head, openByte)

	afterOpen := graphemes[openStart:]
	closeAngleByte := strings.Index(strings.Join(afterOpen, ""), ">")
	if closeAngleByte < 0 {
		return Span{}, false
	}
	openEnd := openStart + graphemeIndexForByteOffset(afterOpen, closeAngleByte)

	tagName := tagNameOf(strings.Join(graphemes[openStart+1:openEnd], ""))
	closeTag := "</" + tagName + ">"

	tail := graphemes[openEnd:]
	tailText := strings.Join(tail, "")
	closeByte := strings.Index(tailText, closeTag)
	if closeByte < 0 {
		return Span{}, false
	}
	closeStart := openEnd + graphemeIndexForByteOffset(tail, closeByte)
	closeEnd := openEnd + graphemeIndexForByteOffset(tail, closeByte+len(closeTag)) - 1

	if inner {
		if openEnd+1 > closeStart-1 {
			return Span{Type: CharInclusive, Start: vibuf.Position{Line: line, Col: openEnd + 1}, End: vibuf.Position{Line: line, Col: openEnd}}, true
		}
		return Span{Type: CharInclusive, Start: vibuf.Position{Line: line, Col: openEnd + 1}, End: vibuf.Position{Line: line, Col: closeStart - 1}}, true
	}
	return Span{Type: CharInclusive, Start: vibuf.Position{Line: line, Col: openStart}, End: vibuf.Position{Line: line, Col: closeEnd}}, true
}

func tagNameOf(inner string) string {
	inner = strings.TrimPrefix(inner, "/")
	for i, r := range inner {
		if r == ' ' || r == '\t' || r == '/' {
			return inner[:i]
		}
	}
	return inner
}

