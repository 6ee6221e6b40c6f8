// Package exsub implements vicut's Ex-style `:[range]s/pat/rep/flags`
// substitution command: range resolution, Vim-flavored replacement escapes,
// and line-scoped regex substitution over a vibuf.Buffer.
package exsub

import (
	"regexp"
	"strings"

	"github.com/dshills/vicut/internal/vibuf"
	"github.com/dshills/vicut/internal/vierr"
)

// Substitution is a fully parsed `:s` command, ready to resolve and apply
// against a buffer.
type Substitution struct {
	Range           RangeSpec
	Pattern         string
	Replacement     string
	Global          bool // g
	CaseInsensitive bool // i
	CaseSensitive   bool // I (overrides i when both flags are given)
	Confirm         bool // c, accepted and ignored in headless operation
	CountOnly       bool // n
}

// ParseCommand parses a full Ex command string, with or without its leading
// colon, e.g. ":%s/foo/bar/g" or "1,5s/foo/bar/".
func ParseCommand(s string) (*Substitution, error) {
	s = strings.TrimPrefix(s, ":")

	rangeSpec, rest, err := parseRange(s)
	if err != nil {
		return nil, err
	}

	if !strings.HasPrefix(rest, "s") {
		return nil, vierr.Newf(vierr.InvalidPattern, "unsupported Ex command %q (only :s is supported)", rest)
	}
	rest = rest[1:]

	if rest == "" {
		return nil, vierr.New(vierr.InvalidPattern, "substitution missing delimiter")
	}
	delim := rest[0]
	body := rest[1:]

	pat, repl, flagStr, err := splitSubstBody(body, delim)
	if err != nil {
		return nil, err
	}

	sub := &Substitution{Range: rangeSpec, Pattern: pat, Replacement: repl}
	for _, f := range flagStr {
		switch f {
		case 'g':
			sub.Global = true
		case 'i':
			sub.CaseInsensitive = true
		case 'I':
			sub.CaseSensitive = true
		case 'c':
			sub.Confirm = true
		case 'n':
			sub.CountOnly = true
		default:
			return nil, vierr.Newf(vierr.InvalidPattern, "unknown substitution flag %q", f)
		}
	}
	return sub, nil
}

// splitSubstBody splits "pat<delim>rep[<delim>flags]" on unescaped
// occurrences of delim.
func splitSubstBody(body string, delim byte) (pat, rep, flags string, err error) {
	parts := make([]string, 0, 3)
	var cur strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) && body[i+1] == delim {
			cur.WriteByte(delim)
			i++
			continue
		}
		if c == delim {
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	parts = append(parts, cur.String())

	switch len(parts) {
	case 1:
		return "", "", "", vierr.New(vierr.InvalidPattern, "substitution missing replacement delimiter")
	case 2:
		return parts[0], parts[1], "", nil
	default:
		return parts[0], parts[1], parts[2], nil
	}
}

// compilePattern compiles pattern as a standard-library regexp, folding in
// a case-insensitivity flag. Vim-style magic/nomagic and POSIX bracket
// quirks are not modeled; see DESIGN.md for why stdlib regexp covers this
// without a pack dependency.
func compilePattern(pattern string, caseInsensitive bool) (*regexp.Regexp, error) {
	src := pattern
	if caseInsensitive {
		src = "(?i)" + src
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, vierr.Newf(vierr.InvalidPattern, "%q: %v", pattern, err)
	}
	return re, nil
}

// Apply resolves the substitution's range against buf, compiles its
// pattern, and rewrites matching lines in place. It returns the number of
// matches found (and, unless CountOnly, replaced).
func (sub *Substitution) Apply(buf *vibuf.Buffer, cursorLine int, marks *Marks) (int, error) {
	from, to, err := sub.Range.Resolve(buf, cursorLine, marks)
	if err != nil {
		return 0, err
	}

	caseInsensitive := sub.CaseInsensitive && !sub.CaseSensitive
	re, err := compilePattern(sub.Pattern, caseInsensitive)
	if err != nil {
		return 0, err
	}

	total := 0
	for line := from; line <= to; line++ {
		text := buf.LineText(line)
		newText, n := sub.substituteLine(re, text)
		if n == 0 {
			continue
		}
		total += n
		if !sub.CountOnly {
			if err := buf.SetLineText(line, newText); err != nil {
				return total, vierr.Newf(vierr.InternalError, "line %d: %v", line+1, err)
			}
		}
	}
	return total, nil
}

func (sub *Substitution) substituteLine(re *regexp.Regexp, text string) (string, int) {
	limit := 1
	if sub.Global {
		limit = -1
	}
	matches := re.FindAllStringSubmatchIndex(text, limit)
	if len(matches) == 0 {
		return text, 0
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		out.WriteString(text[last:m[0]])
		out.WriteString(buildReplacement(sub.Replacement, submatchStrings(text, m)))
		last = m[1]
	}
	out.WriteString(text[last:])
	return out.String(), len(matches)
}

func submatchStrings(text string, m []int) []string {
	groups := make([]string, len(m)/2)
	for i := range groups {
		s, e := m[2*i], m[2*i+1]
		if s < 0 || e < 0 {
			continue
		}
		groups[i] = text[s:e]
	}
	return groups
}
