package script

import (
	"strconv"
	"strings"

	"github.com/dshills/vicut/internal/vierr"
)

// lexer turns script source into a token stream. Grounded on the
// vim-command parser's own hand-rolled character scanning idiom
// (internal/vim's tokenizer reads a []rune command string one rune at a
// time with lookahead) rather than a generated scanner.
type lexer struct {
	src  []rune
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src), line: 1}
}

func (l *lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekAt(off int) rune {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
	}
	return r
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		r := l.peek()
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			l.advance()
			continue
		}
		if r == '#' {
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
			continue
		}
		break
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// next returns the next token in the stream.
func (l *lexer) next() (token, error) {
	l.skipSpaceAndComments()
	line := l.line
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: line}, nil
	}

	r := l.peek()

	switch {
	case isIdentStart(r):
		start := l.pos
		for l.pos < len(l.src) && isIdentCont(l.peek()) {
			l.advance()
		}
		text := string(l.src[start:l.pos])
		if keywords[text] {
			return token{kind: tokKeyword, text: text, line: line}, nil
		}
		return token{kind: tokIdent, text: text, line: line}, nil

	case isDigit(r):
		start := l.pos
		for l.pos < len(l.src) && isDigit(l.peek()) {
			l.advance()
		}
		text := string(l.src[start:l.pos])
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return token{}, vierr.Newf(vierr.ParseError, "line %d: invalid integer %q", line, text)
		}
		return token{kind: tokInt, text: text, ival: n, line: line}, nil

	case r == '"':
		return l.lexString(line)

	case r == '/':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return token{kind: tokSlashEq, line: line}, nil
		}
		return token{kind: tokSlash, line: line}, nil

	case r == '~':
		l.advance()
		return l.lexRegexFrom('~', line)

	case r == '{':
		l.advance()
		return token{kind: tokLBrace, line: line}, nil
	case r == '}':
		l.advance()
		return token{kind: tokRBrace, line: line}, nil
	case r == '(':
		l.advance()
		return token{kind: tokLParen, line: line}, nil
	case r == ')':
		l.advance()
		return token{kind: tokRParen, line: line}, nil
	case r == '[':
		l.advance()
		return token{kind: tokLBracket, line: line}, nil
	case r == ']':
		l.advance()
		return token{kind: tokRBracket, line: line}, nil
	case r == ',':
		l.advance()
		return token{kind: tokComma, line: line}, nil
	case r == ';':
		l.advance()
		return token{kind: tokSemicolon, line: line}, nil
	case r == '$':
		l.advance()
		return token{kind: tokDollar, line: line}, nil
	case r == '@':
		l.advance()
		return token{kind: tokAt, line: line}, nil
	case r == ':':
		l.advance()
		return token{kind: tokColon, line: line}, nil
	case r == '?':
		l.advance()
		return token{kind: tokQuestion, line: line}, nil

	case r == '+':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return token{kind: tokPlusEq, line: line}, nil
		}
		return token{kind: tokPlus, line: line}, nil
	case r == '-':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return token{kind: tokMinusEq, line: line}, nil
		}
		return token{kind: tokMinus, line: line}, nil
	case r == '*':
		l.advance()
		if l.peek() == '*' {
			l.advance()
			if l.peek() == '=' {
				l.advance()
				return token{kind: tokPowEq, line: line}, nil
			}
			return token{kind: tokPow, line: line}, nil
		}
		if l.peek() == '=' {
			l.advance()
			return token{kind: tokStarEq, line: line}, nil
		}
		return token{kind: tokStar, line: line}, nil
	case r == '%':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return token{kind: tokPercentEq, line: line}, nil
		}
		return token{kind: tokPercent, line: line}, nil

	case r == '=':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return token{kind: tokEq, line: line}, nil
		}
		return token{kind: tokAssign, line: line}, nil
	case r == '!':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return token{kind: tokNe, line: line}, nil
		}
		return token{kind: tokNot, line: line}, nil
	case r == '<':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return token{kind: tokLe, line: line}, nil
		}
		return token{kind: tokLt, line: line}, nil
	case r == '>':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return token{kind: tokGe, line: line}, nil
		}
		return token{kind: tokGt, line: line}, nil
	case r == '&':
		l.advance()
		if l.peek() == '&' {
			l.advance()
			return token{kind: tokAnd, line: line}, nil
		}
		return token{}, vierr.Newf(vierr.ParseError, "line %d: unexpected '&'", line)
	case r == '|':
		l.advance()
		if l.peek() == '|' {
			l.advance()
			return token{kind: tokOr, line: line}, nil
		}
		return token{}, vierr.Newf(vierr.ParseError, "line %d: unexpected '|'", line)
	}

	return token{}, vierr.Newf(vierr.ParseError, "line %d: unexpected character %q", line, r)
}

func (l *lexer) lexString(line int) (token, error) {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, vierr.Newf(vierr.ParseError, "line %d: unterminated string", line)
		}
		r := l.advance()
		if r == '"' {
			break
		}
		if r == '\\' && l.pos < len(l.src) {
			esc := l.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			default:
				sb.WriteRune(esc)
			}
			continue
		}
		sb.WriteRune(r)
	}
	return token{kind: tokString, text: sb.String(), line: line}, nil
}

// lexRegexFrom scans a custom-delimited regex literal starting at the
// current position, whose opening delimiter is delim (already consumed by
// the caller). It reads up to the next unescaped occurrence of delim.
func (l *lexer) lexRegexFrom(delim rune, line int) (token, error) {
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, vierr.Newf(vierr.ParseError, "line %d: unterminated regex literal", line)
		}
		r := l.advance()
		if r == delim {
			break
		}
		if r == '\\' && l.pos < len(l.src) && l.peek() == delim {
			sb.WriteRune(l.advance())
			continue
		}
		sb.WriteRune(r)
	}
	return token{kind: tokRegex, text: sb.String(), line: line}, nil
}
