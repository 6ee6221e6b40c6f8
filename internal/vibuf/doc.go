// Package vibuf provides the grapheme-aware, line-indexed text buffer that
// the Vim interpreter, Ex substitution, and DSL runtime all edit.
//
// A Buffer holds one input's text as a slice of lines, each itself a slice
// of grapheme clusters (as segmented by github.com/rivo/uniseg). All
// position arithmetic — cursor placement, motions, text objects, span
// capture — operates on grapheme indices, never on raw bytes or runes, so
// that combining marks, emoji, and other multi-rune clusters are never
// split in half.
//
// Display width (tab expansion, East-Asian wide characters) is a separate,
// derived concern handled by the width.go helpers; it never participates
// in cursor/grapheme arithmetic directly.
package vibuf
