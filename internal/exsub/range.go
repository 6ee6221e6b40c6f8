package exsub

import (
	"strconv"
	"strings"

	"github.com/dshills/vicut/internal/vibuf"
	"github.com/dshills/vicut/internal/vierr"
)

// AddressKind identifies the shape of a single Ex range endpoint.
type AddressKind int

const (
	// AddrNone means the endpoint was not written; it resolves to the
	// current line.
	AddrNone AddressKind = iota
	// AddrAbsolute is a literal 1-based line number.
	AddrAbsolute
	// AddrCurrent is `.`.
	AddrCurrent
	// AddrLast is `$`.
	AddrLast
	// AddrOffset is `+N` or `-N`, relative to the current line.
	AddrOffset
	// AddrPattern is `/pat/` or `?pat?`: the next (or previous) line
	// matching pat.
	AddrPattern
	// AddrMark is `'a`: the line recorded under mark a.
	AddrMark
)

// Address is one endpoint of an Ex range.
type Address struct {
	Kind    AddressKind
	N       int    // AddrAbsolute value, or AddrOffset delta
	Pattern string // AddrPattern search text
	Forward bool   // AddrPattern: / (true) vs ? (false)
	Mark    rune   // AddrMark name
}

// RangeSpec is a parsed, unresolved Ex range: `%`, a single address, or a
// comma-separated pair of addresses.
type RangeSpec struct {
	Whole    bool // `%`
	Start    Address
	End      Address
	HasEnd   bool
	HasStart bool
}

// parseRange consumes a leading Ex range from s and returns the remainder
// (the command letter onward, e.g. "s/foo/bar/g").
func parseRange(s string) (RangeSpec, string, error) {
	if strings.HasPrefix(s, "%") {
		return RangeSpec{Whole: true}, s[1:], nil
	}

	var spec RangeSpec

	first, rest, ok, err := parseAddress(s)
	if err != nil {
		return RangeSpec{}, "", err
	}
	if ok {
		spec.Start = first
		spec.HasStart = true
		s = rest
	}

	if strings.HasPrefix(s, ",") {
		second, rest2, ok2, err2 := parseAddress(s[1:])
		if err2 != nil {
			return RangeSpec{}, "", err2
		}
		if !ok2 {
			second = Address{Kind: AddrCurrent}
		}
		spec.End = second
		spec.HasEnd = true
		spec.HasStart = true
		if !ok2 {
			s = s[1:]
		} else {
			s = rest2
		}
	}

	return spec, s, nil
}

// parseAddress consumes a single Ex address from the front of s.
func parseAddress(s string) (Address, string, bool, error) {
	if s == "" {
		return Address{}, s, false, nil
	}

	switch s[0] {
	case '.':
		return Address{Kind: AddrCurrent}, s[1:], true, nil
	case '$':
		return Address{Kind: AddrLast}, s[1:], true, nil
	case '\'':
		if len(s) < 2 {
			return Address{}, s, false, vierr.New(vierr.InvalidRange, "mark address missing name")
		}
		return Address{Kind: AddrMark, Mark: rune(s[1])}, s[2:], true, nil
	case '+', '-':
		sign := 1
		if s[0] == '-' {
			sign = -1
		}
		digits, rest := takeDigits(s[1:])
		n := 1
		if digits != "" {
			v, _ := strconv.Atoi(digits)
			n = v
		}
		return Address{Kind: AddrOffset, N: sign * n}, rest, true, nil
	case '/', '?':
		delim := s[0]
		end := strings.IndexByte(s[1:], delim)
		if end < 0 {
			return Address{}, s, false, vierr.New(vierr.InvalidRange, "unterminated pattern address")
		}
		pat := s[1 : 1+end]
		return Address{Kind: AddrPattern, Pattern: pat, Forward: delim == '/'}, s[1+end+1:], true, nil
	}

	if s[0] >= '0' && s[0] <= '9' {
		digits, rest := takeDigits(s)
		n, _ := strconv.Atoi(digits)
		return Address{Kind: AddrAbsolute, N: n}, rest, true, nil
	}

	return Address{}, s, false, nil
}

func takeDigits(s string) (string, string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}

// resolve turns an Address into a 0-based line number.
func (a Address) resolve(buf *vibuf.Buffer, cursorLine int, marks *Marks) (int, error) {
	switch a.Kind {
	case AddrNone, AddrCurrent:
		return cursorLine, nil
	case AddrLast:
		return buf.LineCount() - 1, nil
	case AddrAbsolute:
		return a.N - 1, nil
	case AddrOffset:
		return cursorLine + a.N, nil
	case AddrMark:
		line, ok := marks.Line(a.Mark)
		if !ok {
			return 0, vierr.Newf(vierr.InvalidRange, "mark '%c not set", a.Mark)
		}
		return line, nil
	case AddrPattern:
		return searchLine(buf, cursorLine, a.Pattern, a.Forward)
	default:
		return 0, vierr.New(vierr.InvalidRange, "unresolvable address")
	}
}

// searchLine finds the next line (forward or backward from cursorLine,
// exclusive of it) whose text matches pattern. No wraparound, matching the
// no-wrap search convention used by the command interpreter.
func searchLine(buf *vibuf.Buffer, cursorLine int, pattern string, forward bool) (int, error) {
	re, err := compilePattern(pattern, false)
	if err != nil {
		return 0, err
	}
	if forward {
		for i := cursorLine + 1; i < buf.LineCount(); i++ {
			if re.MatchString(buf.LineText(i)) {
				return i, nil
			}
		}
	} else {
		for i := cursorLine - 1; i >= 0; i-- {
			if re.MatchString(buf.LineText(i)) {
				return i, nil
			}
		}
	}
	return 0, vierr.Newf(vierr.InvalidRange, "pattern %q matches no line", pattern)
}

// Resolve turns a RangeSpec into a 0-based, inclusive [from, to] line range,
// clamped and validated against buf's bounds.
func (spec RangeSpec) Resolve(buf *vibuf.Buffer, cursorLine int, marks *Marks) (from, to int, err error) {
	if spec.Whole {
		if buf.LineCount() == 0 {
			return 0, -1, nil
		}
		return 0, buf.LineCount() - 1, nil
	}

	if !spec.HasStart {
		from = cursorLine
		to = cursorLine
	} else {
		from, err = spec.Start.resolve(buf, cursorLine, marks)
		if err != nil {
			return 0, 0, err
		}
		to = from
		if spec.HasEnd {
			to, err = spec.End.resolve(buf, cursorLine, marks)
			if err != nil {
				return 0, 0, err
			}
		}
	}

	if from > to {
		from, to = to, from
	}
	if from < 0 || to >= buf.LineCount() {
		return 0, 0, vierr.Newf(vierr.InvalidRange, "range %d,%d out of bounds for %d lines", from+1, to+1, buf.LineCount())
	}
	return from, to, nil
}
