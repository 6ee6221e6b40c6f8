// Package program models the command program a Vim command string sequence
// (or the DSL compiler, see internal/script) lowers to, and interprets it
// against a vim.Interpreter, assembling the resulting fields with
// internal/record. The instruction set and repeat/global resolution follow
// spec.md §4.5: a flat, position-addressed instruction list generalized
// from the teacher's internal/engine/history command-list/undo-stack shape
// ("a flat slice of executed commands the stack walks back over" becomes
// "a flat slice of instructions a repeat walks back over").
package program

import (
	"regexp"

	"github.com/dshills/vicut/internal/record"
	"github.com/dshills/vicut/internal/vibuf"
	"github.com/dshills/vicut/internal/vierr"
	"github.com/dshills/vicut/internal/vim"
)

// Instruction is the closed set of Op kinds a Program may contain.
type Instruction interface {
	isInstruction()
}

// Cut executes Cmd and appends a field with the captured span. Name is
// empty for an unnamed capture.
type Cut struct {
	Name string
	Cmd  string
}

// Move executes Cmd with no field emitted.
type Move struct {
	Cmd string
}

// Next closes the current record and starts a new one.
type Next struct{}

// Repeat re-executes the N instructions immediately preceding it at this
// nesting level, R times.
type Repeat struct {
	N int
	R int
}

// Global executes Sub once per buffer line whose text matches Pattern.
type Global struct {
	Pattern string
	Sub     []Instruction
}

// NotGlobal executes Sub once per buffer line whose text does *not* match
// Pattern.
type NotGlobal struct {
	Pattern string
	Sub     []Instruction
}

func (Cut) isInstruction()       {}
func (Move) isInstruction()      {}
func (Next) isInstruction()      {}
func (Repeat) isInstruction()    {}
func (Global) isInstruction()    {}
func (NotGlobal) isInstruction() {}

// Program is an ordered, top-level instruction list.
type Program struct {
	Instructions []Instruction
}

// executor carries the mutable state threaded through a Program run:
// the interpreter being driven, the record builder fields are appended to,
// and whether any Cut has executed yet (spec.md §4.5: "If no Cut is ever
// executed, the whole buffer becomes a single implicit field").
type executor struct {
	ip       *vim.Interpreter
	rec      *record.Builder
	cutCount int
	keepMode bool
}

// Run interprets p against ip, returning the assembled record stream. If p
// never executes a Cut instruction, the whole buffer is emitted as a single
// unnamed field. trimFields applies the trim_fields policy at capture time.
// Unless keepMode is set, ip is returned to Normal mode after every Cut/Move
// that leaves it elsewhere (e.g. a "ciw" with no trailing Esc) — composing a
// line's Cut/Move sequence against one shared interpreter otherwise means a
// command left in Insert mode would swallow the next instruction's command
// string as literal inserted text (spec.md's keep_mode Open Question
// decision, see DESIGN.md).
func (p *Program) Run(ip *vim.Interpreter, trimFields, keepMode bool) ([]record.Record, error) {
	e := &executor{ip: ip, rec: record.NewBuilder(trimFields), keepMode: keepMode}
	return e.run(p)
}

func (e *executor) settleMode() {
	if !e.keepMode && e.ip.Mode != vim.ModeNormal {
		e.ip.Mode = vim.ModeNormal
	}
}

func (e *executor) run(p *Program) ([]record.Record, error) {
	if err := e.execList(p.Instructions); err != nil {
		return nil, err
	}
	if e.cutCount == 0 {
		start := e.ip.Buf.End()
		text := e.ip.Buf.Text()
		e.rec.AddField("", text, vibuf.Position{Line: 0, Col: 0}, start)
	}
	return e.rec.Finish(), nil
}

// execList runs instrs in order. A Repeat instruction re-runs the N
// instructions immediately before it in instrs (recursively, so a repeated
// Repeat re-expands its own nested repeats); this is the "walk N previous
// sibling instructions" resolution spec.md §4.5 describes.
func (e *executor) execList(instrs []Instruction) error {
	for i, in := range instrs {
		switch op := in.(type) {
		case Cut:
			span, err := e.ip.Execute(op.Cmd)
			if err != nil {
				return vierr.Atf(vierr.UnknownCommand, op.Cmd, "%v", err)
			}
			text := e.ip.Buf.Slice(span.AsRange(e.ip.Buf))
			e.rec.AddField(op.Name, text, span.Start, span.End)
			e.cutCount++
			e.settleMode()
		case Move:
			if _, err := e.ip.Execute(op.Cmd); err != nil {
				return vierr.Atf(vierr.UnknownCommand, op.Cmd, "%v", err)
			}
			e.settleMode()
		case Next:
			e.rec.Next()
		case Repeat:
			start := i - op.N
			if start < 0 {
				return vierr.Newf(vierr.InternalError, "repeat references %d instructions but only %d precede it", op.N, i)
			}
			for r := 0; r < op.R; r++ {
				if err := e.execList(instrs[start:i]); err != nil {
					return err
				}
			}
		case Global:
			if err := e.execGlobal(op.Pattern, op.Sub, true); err != nil {
				return err
			}
		case NotGlobal:
			if err := e.execGlobal(op.Pattern, op.Sub, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// execGlobal snapshots the buffer's current lines, selects those matching
// (or, for NotGlobal, not matching) pattern, and runs sub once per selected
// line with the cursor parked at its start. The match set is taken before
// any sub-instruction runs, so edits that shift line numbers mid-pass don't
// change which lines were selected (matching Vim's own :g snapshot
// behavior); a line index that has since fallen outside the buffer is
// skipped rather than erroring.
func (e *executor) execGlobal(pattern string, sub []Instruction, wantMatch bool) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return vierr.Newf(vierr.InvalidPattern, "%q: %v", pattern, err)
	}

	var lines []int
	for i := 0; i < e.ip.Buf.LineCount(); i++ {
		if re.MatchString(e.ip.Buf.LineText(i)) == wantMatch {
			lines = append(lines, i)
		}
	}

	for _, line := range lines {
		if line >= e.ip.Buf.LineCount() {
			continue
		}
		e.ip.Cursor = vibuf.Position{Line: line, Col: 0}
		if err := e.execList(sub); err != nil {
			return err
		}
	}
	return nil
}
