package vim

import "strings"

// Sentinel runes standing in for the multi-character tokens a Vim command
// string can carry. They live in the Unicode private-use area so they can
// never collide with a real grapheme typed by a user.
const (
	TokenEsc  rune = 0xE000 // <esc>
	TokenCR   rune = 0xE001 // <cr>
	TokenCtrlV rune = 0xE002 // <C-v>
)

// Tokenize converts a Vim command string into a rune stream for Parser and
// Interpreter to consume, collapsing the textual sentinels <esc>, <cr>, and
// <C-v> into single private-use runes. Unknown `<...>` sequences are passed
// through as their literal characters.
func Tokenize(cmd string) []rune {
	runes := []rune(cmd)
	out := make([]rune, 0, len(runes))

	for i := 0; i < len(runes); i++ {
		if runes[i] == '<' {
			if tok, n, ok := matchSentinel(runes[i:]); ok {
				out = append(out, tok)
				i += n - 1
				continue
			}
		}
		out = append(out, runes[i])
	}
	return out
}

func matchSentinel(rest []rune) (rune, int, bool) {
	s := string(rest)
	for _, c := range []struct {
		text string
		tok  rune
	}{
		{"<esc>", TokenEsc},
		{"<Esc>", TokenEsc},
		{"<ESC>", TokenEsc},
		{"<cr>", TokenCR},
		{"<CR>", TokenCR},
		{"<Cr>", TokenCR},
		{"<C-v>", TokenCtrlV},
		{"<c-v>", TokenCtrlV},
	} {
		if strings.HasPrefix(s, c.text) {
			return c.tok, len([]rune(c.text)), true
		}
	}
	return 0, 0, false
}
