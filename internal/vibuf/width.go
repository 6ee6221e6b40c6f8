package vibuf

import (
	"unicode/utf8"

	"golang.org/x/text/width"
)

// DefaultTabWidth is the tab-stop width a new Buffer starts with;
// WithTabWidth overrides it.
const DefaultTabWidth = 8

// graphemeWidth returns the display width (in terminal columns) of a
// single grapheme cluster, not accounting for tab expansion.
func graphemeWidth(g string) int {
	if g == "\t" {
		return 1 // callers expand tabs separately; see DisplayWidth
	}
	r, size := utf8.DecodeRuneInString(g)
	if size == 0 {
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	case width.EastAsianAmbiguous:
		return 1
	default:
		if r == 0 {
			return 0
		}
		return 1
	}
}

// DisplayWidth returns the on-screen column width of line, up to grapheme
// index upTo (exclusive), expanding tabs to the next multiple of tabWidth.
func (b *Buffer) DisplayWidth(lineIdx, upTo int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if lineIdx < 0 || lineIdx >= len(b.lines) {
		return 0
	}
	line := b.lines[lineIdx]
	if upTo > len(line) {
		upTo = len(line)
	}
	col := 0
	for i := 0; i < upTo; i++ {
		g := line[i]
		if g == "\t" {
			col += b.tabWidth - (col % b.tabWidth)
			continue
		}
		col += graphemeWidth(g)
	}
	return col
}

// ColumnToGrapheme converts a display column on lineIdx back to the
// grapheme index whose cell contains it. The Vim interpreter does not call
// it: there is no gj/gk motion, and blockwise spans are measured in
// grapheme columns, not display columns.
func (b *Buffer) ColumnToGrapheme(lineIdx, col int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if lineIdx < 0 || lineIdx >= len(b.lines) {
		return 0
	}
	line := b.lines[lineIdx]
	cur := 0
	for i, g := range line {
		var w int
		if g == "\t" {
			w = b.tabWidth - (cur % b.tabWidth)
		} else {
			w = graphemeWidth(g)
		}
		if cur+w > col {
			return i
		}
		cur += w
	}
	return len(line)
}
