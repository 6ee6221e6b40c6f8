package vim

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dshills/vicut/internal/vibuf"
)

// Interpreter drives one Normal/Insert/Visual command string against a
// Buffer and cursor, the way the teacher's dispatcher drives key.Events
// against its engine buffer, but with the whole command string supplied up
// front instead of one live keystroke at a time. It owns the Parser, the
// register file, and the small bits of cross-command state real Vim keeps
// between commands (last find-char, last search pattern).
type Interpreter struct {
	Buf          *vibuf.Buffer
	Cursor       vibuf.Position
	Mode         Mode
	VisualAnchor vibuf.Position
	Registers    *RegisterStore

	parser *Parser

	lastFindChar    rune
	lastFindForward bool
	lastFindTill    bool

	lastSearchPattern string
	lastSearchForward bool

	lastSpanType SpanType
}

// NewInterpreter creates an Interpreter positioned at the start of buf.
func NewInterpreter(buf *vibuf.Buffer) *Interpreter {
	return &Interpreter{
		Buf:       buf,
		Mode:      ModeNormal,
		Registers: NewRegisterStore(),
		parser:    NewParser(),
	}
}

// Execute runs cmd, a tokenizable Vim command string, against the
// interpreter's buffer starting from its current Cursor, and returns the
// Span the command captured.
//
// A command ending with the interpreter still in a Visual submode captures
// the Visual selection itself. Any other command captures
// [cursor-at-start, cursor-at-finish], typed by the SpanType of whatever
// motion, operator, or edit last ran.
func (ip *Interpreter) Execute(cmd string) (Span, error) {
	origin := ip.Cursor
	ip.lastSpanType = CharExclusive

	tokens := Tokenize(cmd)
	i := 0
	for i < len(tokens) {
		t := tokens[i]

		if ip.Mode == ModeInsert || ip.Mode == ModeReplace {
			j := i
			for j < len(tokens) && tokens[j] != TokenEsc {
				j++
			}
			ip.insertLiteralText(string(tokens[i:j]))
			ip.Mode = ModeNormal
			if j < len(tokens) {
				j++
			}
			i = j
			continue
		}

		if t == TokenEsc {
			ip.Mode = ModeNormal
			ip.parser.Reset()
			i++
			continue
		}

		if t == TokenCtrlV && ip.parser.State() == StateInitial {
			ip.Mode = ModeVisualBlock
			ip.VisualAnchor = ip.Cursor
			i++
			continue
		}

		ip.parser.VisualActive = ip.Mode.IsVisual()
		res := ip.parser.Parse(t)

		switch res.Status {
		case StatusPending:
			if ip.Mode.IsVisual() {
				if ip.parser.PendingOperator() != nil {
					if opCmd := ip.parser.CompleteOperatorOnly(); opCmd != nil {
						span, err := ip.applyVisualOperator(opCmd)
						if err != nil {
							return Span{}, err
						}
						ip.lastSpanType = span.Type
					}
				}
			}
			i++
		case StatusInvalid, StatusPassthrough:
			ip.parser.Reset()
			i++
		case StatusComplete:
			span, err := ip.applyCommand(res.Command)
			if err != nil {
				return Span{}, err
			}
			ip.lastSpanType = span.Type
			i++
		}
	}

	if ip.parser.PendingOperator() != nil {
		ip.parser.Reset()
		return Span{}, &pendingOperatorError{}
	}

	if ip.Mode.IsVisual() {
		span := ip.visualSpanNow()
		ip.Mode = ModeNormal
		return span, nil
	}
	return Span{Type: ip.lastSpanType, Start: origin, End: ip.Cursor}, nil
}

// pendingOperatorError reports a command string that ended with an
// operator still waiting for its motion or text object — always a hard
// failure (spec.md's keep_mode Open Question decision: there's no
// completed edit whose resulting mode --keep-mode could preserve).
type pendingOperatorError struct{}

func (*pendingOperatorError) Error() string { return "incomplete command: operator has no motion" }

func (ip *Interpreter) visualSpanNow() Span {
	switch ip.Mode {
	case ModeVisualLine:
		return Span{Type: Linewise, Start: ip.VisualAnchor, End: ip.Cursor}.Normalize()
	case ModeVisualBlock:
		return Span{Type: Blockwise, Start: ip.VisualAnchor, End: ip.Cursor}.Normalize()
	default:
		return Span{Type: CharInclusive, Start: ip.VisualAnchor, End: ip.Cursor}.Normalize()
	}
}

func (ip *Interpreter) applyVisualOperator(cmd *Command) (Span, error) {
	span := ip.visualSpanNow()
	ip.Mode = ModeNormal
	return ip.performOperator(cmd.Operator, span, cmd.Register)
}

func (ip *Interpreter) applyCommand(cmd *Command) (Span, error) {
	switch {
	case strings.HasPrefix(cmd.Action, "mode."):
		return ip.applyModeEntry(cmd)
	case strings.HasPrefix(cmd.Action, "edit."):
		return ip.applyDirectEdit(cmd)
	case cmd.Operator != nil:
		return ip.applyOperator(cmd)
	case cmd.TextObject != nil:
		return ip.applyBareTextObject(cmd)
	default:
		return ip.applyMotion(cmd)
	}
}

// applyMotion moves the cursor for a bare motion command (no operator).
func (ip *Interpreter) applyMotion(cmd *Command) (Span, error) {
	start := ip.Cursor
	target, spanType := ip.motionTarget(cmd.Motion, cmd.GetCount(), cmd.CharArg, cmd.Pattern)
	ip.Cursor = ip.Buf.Clamp(target)
	return Span{Type: spanType, Start: start, End: ip.Cursor}, nil
}

// applyOperator handles operator+motion, operator+text-object, and
// doubled-operator (dd/yy/cc/g~~/...) commands.
func (ip *Interpreter) applyOperator(cmd *Command) (Span, error) {
	var span Span

	switch {
	case cmd.Linewise:
		count := cmd.GetCount()
		endLine := ip.Cursor.Line + count - 1
		if last := ip.Buf.LineCount() - 1; endLine > last {
			endLine = last
		}
		span = Span{Type: Linewise, Start: vibuf.Position{Line: ip.Cursor.Line}, End: vibuf.Position{Line: endLine}}
	case cmd.TextObject != nil:
		resolved, ok := ResolveTextObject(ip.Buf, ip.Cursor, cmd.TextObject, cmd.TextObjectPrefix == PrefixInner)
		if !ok {
			return Span{Type: CharExclusive, Start: ip.Cursor, End: ip.Cursor}, nil
		}
		span = resolved
	case cmd.Motion != nil:
		target, spanType := ip.motionTarget(cmd.Motion, cmd.GetCount(), cmd.CharArg, cmd.Pattern)
		big := cmd.Motion.Name == "WORDForward"
		if cur := charAtOrSpace(ip.Buf, ip.Cursor.Line, ip.Cursor.Col); cmd.Operator.Name == "change" && (big || cmd.Motion.Name == "wordForward") && classify(cur, big) != classSpace {
			// As in Vim, "cw"/"cW" on a non-blank acts like "ce"/"cE": it
			// changes to the end of the word and keeps the whitespace after it.
			target, spanType = ip.Cursor, CharInclusive
			for i := 0; i < cmd.GetCount(); i++ {
				if i > 0 || classify(charAtOrSpace(ip.Buf, target.Line, target.Col+1), big) == classify(cur, big) {
					target = WordEnd(ip.Buf, target, big)
				}
			}
		}
		span = Span{Type: spanType, Start: ip.Cursor, End: target}
		if spanType == CharExclusive {
			span = ExclusiveAdjustToLinewise(span)
		}
	default:
		return Span{Type: CharExclusive, Start: ip.Cursor, End: ip.Cursor}, nil
	}

	return ip.performOperator(cmd.Operator, span, cmd.Register)
}

// applyBareTextObject handles a text object with no preceding operator,
// which (per real Vim) only has meaning as a selection: outside Visual
// mode it enters Visual mode to hold the object's span.
func (ip *Interpreter) applyBareTextObject(cmd *Command) (Span, error) {
	span, ok := ResolveTextObject(ip.Buf, ip.Cursor, cmd.TextObject, cmd.TextObjectPrefix == PrefixInner)
	if !ok {
		return Span{Type: CharExclusive, Start: ip.Cursor, End: ip.Cursor}, nil
	}
	n := span.Normalize()
	if !ip.Mode.IsVisual() {
		if n.Type == Linewise {
			ip.Mode = ModeVisualLine
		} else {
			ip.Mode = ModeVisualChar
		}
	}
	ip.VisualAnchor = n.Start
	ip.Cursor = n.End
	return n, nil
}

// performOperator applies op to span, updating the buffer, registers, and
// cursor, and entering Insert mode for "change".
func (ip *Interpreter) performOperator(op *Operator, span Span, register rune) (Span, error) {
	n := span.Normalize()

	switch op.Name {
	case "delete":
		text, err := ip.deleteSpan(n)
		if err != nil {
			return Span{}, err
		}
		ip.setRegisterForDelete(register, text, n.Type, n.Type == CharExclusive || n.Type == CharInclusive)
		ip.Cursor = ip.Buf.Clamp(n.Start)
	case "change":
		if n.Type == Linewise {
			if err := ip.changeLinewise(n, register); err != nil {
				return Span{}, err
			}
		} else {
			text, err := ip.deleteSpan(n)
			if err != nil {
				return Span{}, err
			}
			ip.setRegisterForDelete(register, text, n.Type, true)
			ip.Cursor = ip.Buf.Clamp(n.Start)
		}
		ip.Mode = ModeInsert
	case "yank":
		text := ip.sliceSpan(n)
		ip.setRegisterForYank(register, text, n.Type)
		ip.Cursor = ip.Buf.Clamp(n.Start)
	case "indentRight", "indentLeft":
		ip.shiftLines(n, op.Name == "indentRight")
		ip.Cursor = vibuf.Position{Line: n.Start.Line, Col: 0}
	case "format":
		// vicut has no filetype-aware indent engine to reformat against;
		// "=" is accepted for grammar completeness and leaves text as-is.
		ip.Cursor = vibuf.Position{Line: n.Start.Line, Col: 0}
	case "toLower", "toUpper", "toggleCase":
		ip.transformCase(n, op.Name)
		ip.Cursor = ip.Buf.Clamp(n.Start)
	}

	return n, nil
}

func (ip *Interpreter) deleteSpan(span Span) (string, error) {
	if span.Type == Blockwise {
		return ip.blockwiseExtract(span, true)
	}
	return ip.Buf.Delete(span.AsRange(ip.Buf))
}

func (ip *Interpreter) sliceSpan(span Span) string {
	if span.Type == Blockwise {
		text, _ := ip.blockwiseExtract(span, false)
		return text
	}
	return ip.Buf.Slice(span.AsRange(ip.Buf))
}

// blockwiseExtract reads (and optionally deletes) the rectangular region a
// Blockwise span covers, one line at a time, joining the per-line pieces
// with "\n" the way Vim's blockwise register content is stored.
func (ip *Interpreter) blockwiseExtract(span Span, removeText bool) (string, error) {
	startCol, endCol := span.Start.Col, span.End.Col
	if startCol > endCol {
		startCol, endCol = endCol, startCol
	}
	var lines []string
	for l := span.Start.Line; l <= span.End.Line; l++ {
		lineLen := ip.Buf.LineLen(l)
		s, e := startCol, endCol+1
		if s > lineLen {
			s = lineLen
		}
		if e > lineLen {
			e = lineLen
		}
		r := vibuf.Range{Start: vibuf.Position{Line: l, Col: s}, End: vibuf.Position{Line: l, Col: e}}
		lines = append(lines, ip.Buf.Slice(r))
		if removeText && e > s {
			if _, err := ip.Buf.Delete(r); err != nil {
				return "", err
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

// changeLinewise implements cc/S/vV-then-c: the line's text is cleared but
// the line itself survives so Insert mode has somewhere to type into.
func (ip *Interpreter) changeLinewise(span Span, register rune) error {
	var captured []string
	for l := span.Start.Line; l <= span.End.Line; l++ {
		captured = append(captured, ip.Buf.LineText(l))
	}
	ip.setRegisterForDelete(register, strings.Join(captured, "\n")+"\n", Linewise, false)

	if span.End.Line > span.Start.Line {
		if _, err := ip.Buf.DeleteLines(span.Start.Line+1, span.End.Line); err != nil {
			return err
		}
	}
	if err := ip.Buf.SetLineText(span.Start.Line, ""); err != nil {
		return err
	}
	ip.Cursor = vibuf.Position{Line: span.Start.Line, Col: 0}
	return nil
}

func (ip *Interpreter) shiftLines(span Span, right bool) {
	width := ip.Buf.TabWidth()
	for l := span.Start.Line; l <= span.End.Line; l++ {
		text := ip.Buf.LineText(l)
		if right {
			_ = ip.Buf.SetLineText(l, strings.Repeat(" ", width)+text)
			continue
		}
		trimmed := text
		removed := 0
		for removed < width && len(trimmed) > 0 && (trimmed[0] == ' ' || trimmed[0] == '\t') {
			trimmed = trimmed[1:]
			removed++
		}
		_ = ip.Buf.SetLineText(l, trimmed)
	}
}

func (ip *Interpreter) transformCase(span Span, kind string) {
	transform := func(s string) string {
		switch kind {
		case "toLower":
			return strings.ToLower(s)
		case "toUpper":
			return strings.ToUpper(s)
		default:
			return toggleCaseString(s)
		}
	}

	if span.Type == Linewise {
		for l := span.Start.Line; l <= span.End.Line; l++ {
			_ = ip.Buf.SetLineText(l, transform(ip.Buf.LineText(l)))
		}
		return
	}
	rng := span.AsRange(ip.Buf)
	text := ip.Buf.Slice(rng)
	if text == "" {
		return
	}
	_, _ = ip.Buf.Replace(rng, transform(text))
}

func toggleCaseString(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsUpper(r):
			return unicode.ToLower(r)
		case unicode.IsLower(r):
			return unicode.ToUpper(r)
		default:
			return r
		}
	}, s)
}

func (ip *Interpreter) setRegisterForYank(register rune, content string, spanType SpanType) {
	if register == '_' {
		return
	}
	linewise := spanType == Linewise
	blockwise := spanType == Blockwise
	ip.Registers.SetYank(content, linewise, blockwise)
	if register != 0 && GetRegisterType(register) == RegisterNamed {
		ip.Registers.Set(register, content, linewise, blockwise)
	}
}

func (ip *Interpreter) setRegisterForDelete(register rune, content string, spanType SpanType, small bool) {
	if register == '_' {
		return
	}
	linewise := spanType == Linewise
	blockwise := spanType == Blockwise
	if linewise {
		small = false
	}
	ip.Registers.SetDelete(content, linewise, blockwise, small)
	if register != 0 && GetRegisterType(register) == RegisterNamed {
		ip.Registers.Set(register, content, linewise, blockwise)
	}
}

// applyModeEntry handles i/a/I/A/o/O/v/V.
func (ip *Interpreter) applyModeEntry(cmd *Command) (Span, error) {
	start := ip.Cursor
	switch cmd.Motion.Name {
	case "insert":
		ip.Mode = ModeInsert
	case "append":
		if ip.Buf.LineLen(ip.Cursor.Line) > 0 {
			ip.Cursor.Col++
		}
		ip.Mode = ModeInsert
	case "insertStart":
		ip.Cursor = firstNonBlankOrStart(ip.Buf, ip.Cursor.Line)
		ip.Mode = ModeInsert
	case "appendEnd":
		ip.Cursor = vibuf.Position{Line: ip.Cursor.Line, Col: ip.Buf.LineLen(ip.Cursor.Line)}
		ip.Mode = ModeInsert
	case "openBelow":
		_ = ip.Buf.InsertLine(ip.Cursor.Line+1, "")
		ip.Cursor = vibuf.Position{Line: ip.Cursor.Line + 1, Col: 0}
		ip.Mode = ModeInsert
	case "openAbove":
		_ = ip.Buf.InsertLine(ip.Cursor.Line, "")
		ip.Cursor = vibuf.Position{Line: ip.Cursor.Line, Col: 0}
		ip.Mode = ModeInsert
	case "visualChar":
		ip.Mode = ModeVisualChar
		ip.VisualAnchor = ip.Cursor
	case "visualLine":
		ip.Mode = ModeVisualLine
		ip.VisualAnchor = ip.Cursor
	}
	return Span{Type: CharExclusive, Start: start, End: ip.Cursor}, nil
}

// applyDirectEdit handles x/X/D/C/S/J/r/p/P/~/s.
func (ip *Interpreter) applyDirectEdit(cmd *Command) (Span, error) {
	count := cmd.GetCount()
	start := ip.Cursor

	switch cmd.Motion.Name {
	case "deleteCharForward":
		lineLen := ip.Buf.LineLen(ip.Cursor.Line)
		end := ip.Cursor.Col + count
		if end > lineLen {
			end = lineLen
		}
		if end <= ip.Cursor.Col {
			return Span{Type: CharExclusive, Start: start, End: start}, nil
		}
		r := vibuf.Range{Start: ip.Cursor, End: vibuf.Position{Line: ip.Cursor.Line, Col: end}}
		text, err := ip.Buf.Delete(r)
		if err != nil {
			return Span{}, err
		}
		ip.setRegisterForDelete(cmd.Register, text, CharInclusive, true)
		ip.Cursor = ip.Buf.Clamp(ip.Cursor)
		return Span{Type: CharInclusive, Start: start, End: vibuf.Position{Line: start.Line, Col: end - 1}}, nil

	case "deleteCharBackward":
		begin := ip.Cursor.Col - count
		if begin < 0 {
			begin = 0
		}
		if begin >= ip.Cursor.Col {
			return Span{Type: CharExclusive, Start: start, End: start}, nil
		}
		r := vibuf.Range{Start: vibuf.Position{Line: ip.Cursor.Line, Col: begin}, End: ip.Cursor}
		text, err := ip.Buf.Delete(r)
		if err != nil {
			return Span{}, err
		}
		ip.setRegisterForDelete(cmd.Register, text, CharInclusive, true)
		ip.Cursor = vibuf.Position{Line: ip.Cursor.Line, Col: begin}
		return Span{Type: CharInclusive, Start: vibuf.Position{Line: start.Line, Col: begin}, End: vibuf.Position{Line: start.Line, Col: ip.Cursor.Col - 1}}, nil

	case "deleteToEOL", "changeToEOL":
		lineLen := ip.Buf.LineLen(ip.Cursor.Line)
		r := vibuf.Range{Start: ip.Cursor, End: vibuf.Position{Line: ip.Cursor.Line, Col: lineLen}}
		text, err := ip.Buf.Delete(r)
		if err != nil {
			return Span{}, err
		}
		small := lineLen > ip.Cursor.Col
		ip.setRegisterForDelete(cmd.Register, text, CharInclusive, small)
		if cmd.Motion.Name == "changeToEOL" {
			ip.Mode = ModeInsert
		}
		return Span{Type: CharInclusive, Start: start, End: vibuf.Position{Line: start.Line, Col: lineLen - 1}}, nil

	case "changeLine":
		endLine := ip.Cursor.Line + count - 1
		if last := ip.Buf.LineCount() - 1; endLine > last {
			endLine = last
		}
		span := Span{Type: Linewise, Start: vibuf.Position{Line: ip.Cursor.Line}, End: vibuf.Position{Line: endLine}}
		if err := ip.changeLinewise(span, cmd.Register); err != nil {
			return Span{}, err
		}
		ip.Mode = ModeInsert
		return span, nil

	case "joinLines":
		return ip.applyJoin(count)

	case "replaceChar":
		lineLen := ip.Buf.LineLen(ip.Cursor.Line)
		end := ip.Cursor.Col + count
		if end > lineLen {
			return Span{Type: CharExclusive, Start: start, End: start}, nil
		}
		replacement := strings.Repeat(string(cmd.CharArg), end-ip.Cursor.Col)
		r := vibuf.Range{Start: ip.Cursor, End: vibuf.Position{Line: ip.Cursor.Line, Col: end}}
		if _, err := ip.Buf.Replace(r, replacement); err != nil {
			return Span{}, err
		}
		ip.Cursor = vibuf.Position{Line: start.Line, Col: end - 1}
		return Span{Type: CharInclusive, Start: start, End: ip.Cursor}, nil

	case "pasteAfter", "pasteBefore":
		return ip.applyPaste(cmd.Register, count, cmd.Motion.Name == "pasteAfter")

	case "toggleCaseChar":
		lineLen := ip.Buf.LineLen(ip.Cursor.Line)
		end := ip.Cursor.Col + count
		if end > lineLen {
			end = lineLen
		}
		if end <= ip.Cursor.Col {
			return Span{Type: CharExclusive, Start: start, End: start}, nil
		}
		r := vibuf.Range{Start: ip.Cursor, End: vibuf.Position{Line: ip.Cursor.Line, Col: end}}
		text := ip.Buf.Slice(r)
		if _, err := ip.Buf.Replace(r, toggleCaseString(text)); err != nil {
			return Span{}, err
		}
		ip.Cursor = vibuf.Position{Line: start.Line, Col: end}
		return Span{Type: CharInclusive, Start: start, End: vibuf.Position{Line: start.Line, Col: end - 1}}, nil

	case "substituteChar":
		lineLen := ip.Buf.LineLen(ip.Cursor.Line)
		end := ip.Cursor.Col + count
		if end > lineLen {
			end = lineLen
		}
		if end > ip.Cursor.Col {
			r := vibuf.Range{Start: ip.Cursor, End: vibuf.Position{Line: ip.Cursor.Line, Col: end}}
			text, err := ip.Buf.Delete(r)
			if err != nil {
				return Span{}, err
			}
			ip.setRegisterForDelete(cmd.Register, text, CharInclusive, true)
		}
		ip.Mode = ModeInsert
		return Span{Type: CharInclusive, Start: start, End: start}, nil
	}

	return Span{Type: CharExclusive, Start: start, End: start}, nil
}

func (ip *Interpreter) applyJoin(count int) (Span, error) {
	n := count
	if n < 2 {
		n = 2
	}
	startLine := ip.Cursor.Line
	endLine := startLine + n - 1
	if last := ip.Buf.LineCount() - 1; endLine > last {
		endLine = last
	}
	if endLine <= startLine {
		return Span{Type: Linewise, Start: ip.Cursor, End: ip.Cursor}, nil
	}

	joinCol := ip.Buf.LineLen(startLine)
	joined := ip.Buf.LineText(startLine)
	for l := startLine + 1; l <= endLine; l++ {
		next := strings.TrimLeft(ip.Buf.LineText(l), " \t")
		if joined != "" && !strings.HasSuffix(joined, " ") && next != "" {
			joined += " "
		}
		joined += next
	}

	if _, err := ip.Buf.DeleteLines(startLine+1, endLine); err != nil {
		return Span{}, err
	}
	if err := ip.Buf.SetLineText(startLine, joined); err != nil {
		return Span{}, err
	}
	ip.Cursor = vibuf.Position{Line: startLine, Col: joinCol}
	return Span{Type: Linewise, Start: vibuf.Position{Line: startLine}, End: vibuf.Position{Line: startLine}}, nil
}

func (ip *Interpreter) applyPaste(register rune, count int, after bool) (Span, error) {
	if register == 0 {
		register = '"'
	}
	content, linewise, blockwise := ip.Registers.Get(register)
	start := ip.Cursor
	if content == "" {
		return Span{Type: CharExclusive, Start: start, End: start}, nil
	}

	switch {
	case blockwise:
		rows := strings.Split(content, "\n")
		col := ip.Cursor.Col
		if after && ip.Buf.LineLen(ip.Cursor.Line) > 0 {
			col++
		}
		for i := 0; i < count; i++ {
			for j, row := range rows {
				line := ip.Cursor.Line + j
				if line >= ip.Buf.LineCount() {
					_ = ip.Buf.InsertLine(line, "")
				}
				lineLen := ip.Buf.LineLen(line)
				at := col
				if at > lineLen {
					at = lineLen
				}
				_, _ = ip.Buf.Insert(vibuf.Position{Line: line, Col: at}, row)
			}
		}
		ip.Cursor = vibuf.Position{Line: start.Line, Col: col}
		return Span{Type: Blockwise, Start: start, End: ip.Cursor}, nil

	case linewise:
		rows := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
		insertAt := ip.Cursor.Line
		if after {
			insertAt++
		}
		firstInserted := insertAt
		for i := 0; i < count; i++ {
			for j, row := range rows {
				_ = ip.Buf.InsertLine(insertAt+j, row)
			}
			insertAt += len(rows)
		}
		ip.Cursor = firstNonBlankOrStart(ip.Buf, firstInserted)
		return Span{Type: Linewise, Start: vibuf.Position{Line: firstInserted}, End: vibuf.Position{Line: insertAt - 1}}, nil

	default:
		at := ip.Cursor.Col
		if after && ip.Buf.LineLen(ip.Cursor.Line) > 0 {
			at++
		}
		full := strings.Repeat(content, count)
		pos := vibuf.Position{Line: ip.Cursor.Line, Col: at}
		end, err := ip.Buf.Insert(pos, full)
		if err != nil {
			return Span{}, err
		}
		ip.Cursor = retreatOne(ip.Buf, end)
		return Span{Type: CharInclusive, Start: pos, End: ip.Cursor}, nil
	}
}

func retreatOne(buf *vibuf.Buffer, p vibuf.Position) vibuf.Position {
	if p.Col > 0 {
		return vibuf.Position{Line: p.Line, Col: p.Col - 1}
	}
	return p
}

// insertLiteralText applies the literal text typed during an Insert-mode
// span. Tokenize has turned each <cr> into TokenCR, which becomes a line
// break here; raw newlines in the source string also split lines.
func (ip *Interpreter) insertLiteralText(text string) {
	text = strings.ReplaceAll(text, string(TokenCR), "\n")
	end, err := ip.Buf.Insert(ip.Cursor, text)
	if err != nil {
		return
	}
	ip.Cursor = end
}

// motionTarget computes the destination of a bare motion, without applying
// any operator, and reports the SpanType it implies for capture purposes.
func (ip *Interpreter) motionTarget(m *Motion, count int, charArg rune, pattern string) (vibuf.Position, SpanType) {
	pos := ip.Cursor
	spanType := CharExclusive
	if m.Inclusive {
		spanType = CharInclusive
	}
	if m.Type == MotionLinewise {
		spanType = Linewise
	}

	switch m.Name {
	case "left":
		col := pos.Col - count
		if col < 0 {
			col = 0
		}
		pos.Col = col
	case "right":
		lineLen := ip.Buf.LineLen(pos.Line)
		col := pos.Col + count
		if col > lineLen {
			col = lineLen
		}
		pos.Col = col
	case "up":
		line := pos.Line - count
		if line < 0 {
			line = 0
		}
		pos = vibuf.Position{Line: line, Col: clampCol(ip.Buf, line, pos.Col)}
	case "down":
		line := pos.Line + count
		if last := ip.Buf.LineCount() - 1; line > last {
			line = last
		}
		pos = vibuf.Position{Line: line, Col: clampCol(ip.Buf, line, pos.Col)}
	case "wordForward":
		for i := 0; i < count; i++ {
			pos = WordForward(ip.Buf, pos, false)
		}
	case "WORDForward":
		for i := 0; i < count; i++ {
			pos = WordForward(ip.Buf, pos, true)
		}
	case "wordBackward":
		for i := 0; i < count; i++ {
			pos = WordBackward(ip.Buf, pos, false)
		}
	case "WORDBackward":
		for i := 0; i < count; i++ {
			pos = WordBackward(ip.Buf, pos, true)
		}
	case "wordEnd":
		for i := 0; i < count; i++ {
			pos = WordEnd(ip.Buf, pos, false)
		}
	case "WORDEnd":
		for i := 0; i < count; i++ {
			pos = WordEnd(ip.Buf, pos, true)
		}
	case "wordEndBack":
		for i := 0; i < count; i++ {
			pos = WordEndBack(ip.Buf, pos, false)
		}
	case "WORDEndBack":
		for i := 0; i < count; i++ {
			pos = WordEndBack(ip.Buf, pos, true)
		}
	case "lineStart":
		pos.Col = 0
	case "firstNonBlank":
		pos = firstNonBlankOrStart(ip.Buf, pos.Line)
	case "lineEnd":
		line := pos.Line + count - 1
		if last := ip.Buf.LineCount() - 1; line > last {
			line = last
		}
		lineLen := ip.Buf.LineLen(line)
		col := 0
		if lineLen > 0 {
			col = lineLen - 1
		}
		pos = vibuf.Position{Line: line, Col: col}
	case "gotoColumn":
		col := count - 1
		if col < 0 {
			col = 0
		}
		if lineLen := ip.Buf.LineLen(pos.Line); col > lineLen {
			col = lineLen
		}
		pos.Col = col
	case "documentStart":
		line := count - 1
		if line < 0 {
			line = 0
		}
		if last := ip.Buf.LineCount() - 1; line > last {
			line = last
		}
		pos = firstNonBlankOrStart(ip.Buf, line)
	case "documentEnd":
		line := ip.Buf.LineCount() - 1
		if count > 1 {
			line = count - 1
			if last := ip.Buf.LineCount() - 1; line > last {
				line = last
			}
		}
		pos = firstNonBlankOrStart(ip.Buf, line)
	case "findChar":
		pos, ip.lastFindChar, ip.lastFindForward, ip.lastFindTill = ip.findCharMotion(pos, charArg, count, true, false)
	case "findCharBack":
		pos, ip.lastFindChar, ip.lastFindForward, ip.lastFindTill = ip.findCharMotion(pos, charArg, count, false, false)
	case "tillChar":
		pos, ip.lastFindChar, ip.lastFindForward, ip.lastFindTill = ip.findCharMotion(pos, charArg, count, true, true)
	case "tillCharBack":
		pos, ip.lastFindChar, ip.lastFindForward, ip.lastFindTill = ip.findCharMotion(pos, charArg, count, false, true)
	case "repeatFind":
		if ip.lastFindChar != 0 {
			pos = FindChar(ip.Buf, pos, ip.lastFindChar, count, ip.lastFindForward, ip.lastFindTill)
		}
	case "repeatFindBack":
		if ip.lastFindChar != 0 {
			pos = FindChar(ip.Buf, pos, ip.lastFindChar, count, !ip.lastFindForward, ip.lastFindTill)
		}
	case "paragraphForward":
		for i := 0; i < count; i++ {
			pos = ParagraphForward(ip.Buf, pos)
		}
	case "paragraphBackward":
		for i := 0; i < count; i++ {
			pos = ParagraphBackward(ip.Buf, pos)
		}
	case "sentenceForward":
		for i := 0; i < count; i++ {
			pos = SentenceForward(ip.Buf, pos)
		}
	case "sentenceBackward":
		for i := 0; i < count; i++ {
			pos = SentenceBackward(ip.Buf, pos)
		}
	case "matchPair":
		if found, ok := MatchPair(ip.Buf, pos); ok {
			pos = found
		}
	case "searchForward":
		if found, ok := ip.search(pos, pattern, true); ok {
			pos = found
		}
		ip.lastSearchPattern, ip.lastSearchForward = pattern, true
	case "searchBackward":
		if found, ok := ip.search(pos, pattern, false); ok {
			pos = found
		}
		ip.lastSearchPattern, ip.lastSearchForward = pattern, false
	case "searchNext":
		if ip.lastSearchPattern != "" {
			if found, ok := ip.search(pos, ip.lastSearchPattern, ip.lastSearchForward); ok {
				pos = found
			}
		}
	case "searchPrev":
		if ip.lastSearchPattern != "" {
			if found, ok := ip.search(pos, ip.lastSearchPattern, !ip.lastSearchForward); ok {
				pos = found
			}
		}
	case "wordSearchForward":
		word := ip.wordUnderCursor(pos)
		if word != "" {
			ip.lastSearchPattern, ip.lastSearchForward = `\b`+regexp.QuoteMeta(word)+`\b`, true
			if found, ok := ip.search(pos, ip.lastSearchPattern, true); ok {
				pos = found
			}
		}
	case "wordSearchBackward":
		word := ip.wordUnderCursor(pos)
		if word != "" {
			ip.lastSearchPattern, ip.lastSearchForward = `\b`+regexp.QuoteMeta(word)+`\b`, false
			if found, ok := ip.search(pos, ip.lastSearchPattern, false); ok {
				pos = found
			}
		}
	}

	return pos, spanType
}

func clampCol(buf *vibuf.Buffer, line, col int) int {
	lineLen := buf.LineLen(line)
	if col > lineLen {
		return lineLen
	}
	return col
}

func (ip *Interpreter) findCharMotion(pos vibuf.Position, ch rune, count int, forward, till bool) (vibuf.Position, rune, bool, bool) {
	return FindChar(ip.Buf, pos, ch, count, forward, till), ch, forward, till
}

// search runs pattern (a regexp) forward or backward from pos on the
// current line and every following/preceding line in turn, with no
// wraparound — consistent with FindChar's no-wrap policy.
func (ip *Interpreter) search(pos vibuf.Position, pattern string, forward bool) (vibuf.Position, bool) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return pos, false
	}
	if forward {
		for l := pos.Line; l < ip.Buf.LineCount(); l++ {
			graphemes := ip.Buf.Line(l)
			from := 0
			if l == pos.Line {
				from = pos.Col + 1
			}
			if from > len(graphemes) {
				continue
			}
			rest := graphemes[from:]
			if loc := re.FindStringIndex(strings.Join(rest, "")); loc != nil {
				return vibuf.Position{Line: l, Col: from + graphemeIndexForByteOffset(rest, loc[0])}, true
			}
		}
		return pos, false
	}
	for l := pos.Line; l >= 0; l-- {
		graphemes := ip.Buf.Line(l)
		to := len(graphemes)
		if l == pos.Line {
			to = pos.Col
			if to > len(graphemes) {
				to = len(graphemes)
			}
		}
		head := graphemes[:to]
		matches := re.FindAllStringIndex(strings.Join(head, ""), -1)
		if len(matches) > 0 {
			last := matches[len(matches)-1]
			return vibuf.Position{Line: l, Col: graphemeIndexForByteOffset(head, last[0])}, true
		}
	}
	return pos, false
}

// graphemeIndexForByteOffset finds the index into graphemes whose joined
// text reaches offset bytes — the grapheme-aware counterpart of a
// byte-offset-to-rune-count walk, used to turn a regexp match's byte offset
// (taken against a string built by joining a run of graphemes) back into a
// grapheme index.
func graphemeIndexForByteOffset(graphemes []string, offset int) int {
	i := 0
	for idx, g := range graphemes {
		if i >= offset {
			return idx
		}
		i += len(g)
	}
	return len(graphemes)
}

func (ip *Interpreter) wordUnderCursor(pos vibuf.Position) string {
	lineLen := ip.Buf.LineLen(pos.Line)
	if lineLen == 0 {
		return ""
	}
	col := pos.Col
	if col >= lineLen {
		col = lineLen - 1
	}
	if classify(ip.Buf.CharAt(vibuf.Position{Line: pos.Line, Col: col}), false) != classWord {
		return ""
	}
	start, end := col, col
	for start > 0 && classify(ip.Buf.CharAt(vibuf.Position{Line: pos.Line, Col: start - 1}), false) == classWord {
		start--
	}
	for end < lineLen-1 && classify(ip.Buf.CharAt(vibuf.Position{Line: pos.Line, Col: end + 1}), false) == classWord {
		end++
	}
	r := vibuf.Range{Start: vibuf.Position{Line: pos.Line, Col: start}, End: vibuf.Position{Line: pos.Line, Col: end + 1}}
	return ip.Buf.Slice(r)
}
