package main

import (
	"strconv"
	"strings"

	"github.com/dshills/vicut/internal/program"
	"github.com/dshills/vicut/internal/vierr"
)

// buildProgramFromArgs walks args left to right, picking off the
// program-building flags (-c/-m/-r/-n/-g/-v and their long forms) in the
// order they appear and lowering them straight into a program.Program —
// the CLI's own small front-end grammar, hand-scanned the way
// internal/vim's command parser and internal/script's lexer both walk a
// flat token stream rather than leaning on a flag library that has no
// notion of cross-flag ordering. Every other argument (plain options,
// positional files) is passed through untouched in rest, for cobra/pflag
// to parse normally.
func buildProgramFromArgs(args []string) (prog *program.Program, rest []string, err error) {
	var instrs []program.Instruction
	i := 0
	for i < len(args) {
		a := args[i]
		switch a {
		case "-c", "--cut":
			var in program.Cut
			in, i, err = scanCut(args, i+1)
			if err != nil {
				return nil, nil, err
			}
			instrs = append(instrs, in)
		case "-m", "--move":
			var in program.Move
			in, i, err = scanMove(args, i+1)
			if err != nil {
				return nil, nil, err
			}
			instrs = append(instrs, in)
		case "-n", "--next":
			instrs = append(instrs, program.Next{})
			i++
		case "-r", "--repeat":
			var in program.Repeat
			in, i, err = scanRepeat(args, i+1, len(instrs))
			if err != nil {
				return nil, nil, err
			}
			instrs = append(instrs, in)
		case "-g", "--global", "-v", "--not-global":
			negate := a == "-v" || a == "--not-global"
			var pattern string
			var sub []program.Instruction
			pattern, sub, i, err = scanGlobalBlock(args, i+1)
			if err != nil {
				return nil, nil, err
			}
			if negate {
				instrs = append(instrs, program.NotGlobal{Pattern: pattern, Sub: sub})
			} else {
				instrs = append(instrs, program.Global{Pattern: pattern, Sub: sub})
			}
		default:
			rest = append(rest, a)
			i++
		}
	}
	return &program.Program{Instructions: instrs}, rest, nil
}

func scanCut(args []string, i int) (program.Cut, int, error) {
	if i >= len(args) {
		return program.Cut{}, i, vierr.New(vierr.UsageError, "-c/--cut requires a vim command")
	}
	name := ""
	tok := args[i]
	if strings.HasPrefix(tok, "name=") {
		name = strings.TrimPrefix(tok, "name=")
		i++
		if i >= len(args) {
			return program.Cut{}, i, vierr.New(vierr.UsageError, "-c/--cut name=... requires a vim command")
		}
		tok = args[i]
	}
	return program.Cut{Name: name, Cmd: tok}, i + 1, nil
}

func scanMove(args []string, i int) (program.Move, int, error) {
	if i >= len(args) {
		return program.Move{}, i, vierr.New(vierr.UsageError, "-m/--move requires a vim command")
	}
	return program.Move{Cmd: args[i]}, i + 1, nil
}

func scanRepeat(args []string, i int, priorCount int) (program.Repeat, int, error) {
	if i+1 >= len(args) {
		return program.Repeat{}, i, vierr.New(vierr.UsageError, "-r/--repeat requires N and R")
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return program.Repeat{}, i, vierr.Newf(vierr.UsageError, "-r/--repeat: %q is not an integer", args[i])
	}
	r, err := strconv.Atoi(args[i+1])
	if err != nil {
		return program.Repeat{}, i, vierr.Newf(vierr.UsageError, "-r/--repeat: %q is not an integer", args[i+1])
	}
	if n > priorCount {
		return program.Repeat{}, i, vierr.Newf(vierr.UsageError, "-r/--repeat %d references more instructions than precede it (%d)", n, priorCount)
	}
	return program.Repeat{N: n, R: r}, i + 2, nil
}

// scanGlobalBlock consumes a pattern followed by a run of -c/-m/-n/-r
// flags up to a terminating --end. A nested -g/-v is rejected rather than
// silently flattened: the closed instruction set models one level of
// global scoping (spec.md §4.5), and the CLI grammar mirrors that.
func scanGlobalBlock(args []string, i int) (pattern string, sub []program.Instruction, next int, err error) {
	if i >= len(args) {
		return "", nil, i, vierr.New(vierr.UsageError, "-g/-v requires a pattern")
	}
	pattern = args[i]
	i++
	for i < len(args) && args[i] != "--end" {
		switch args[i] {
		case "-c", "--cut":
			var in program.Cut
			in, i, err = scanCut(args, i+1)
			if err != nil {
				return "", nil, i, err
			}
			sub = append(sub, in)
		case "-m", "--move":
			var in program.Move
			in, i, err = scanMove(args, i+1)
			if err != nil {
				return "", nil, i, err
			}
			sub = append(sub, in)
		case "-n", "--next":
			sub = append(sub, program.Next{})
			i++
		case "-r", "--repeat":
			var in program.Repeat
			in, i, err = scanRepeat(args, i+1, len(sub))
			if err != nil {
				return "", nil, i, err
			}
			sub = append(sub, in)
		case "-g", "--global", "-v", "--not-global":
			return "", nil, i, vierr.New(vierr.UsageError, "nested -g/-v global blocks are not supported")
		default:
			return "", nil, i, vierr.Newf(vierr.UsageError, "unexpected %q inside -g/-v block (expected -c, -m, -n, -r, or --end)", args[i])
		}
	}
	if i >= len(args) {
		return "", nil, i, vierr.New(vierr.UsageError, "-g/-v block missing terminating --end")
	}
	return pattern, sub, i + 1, nil
}
