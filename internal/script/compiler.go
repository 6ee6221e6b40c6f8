package script

import (
	"os"
	"strings"

	"github.com/dshills/vicut/internal/program"
	"github.com/dshills/vicut/internal/vierr"
)

// Options carries the opts{...} prelude's recognized settings; cmd/vicut
// applies these the same way it applies the equivalent CLI flags (spec.md
// §6's opts{} key list). A Has* flag distinguishes "key absent" from "key
// present with its zero value" so a script can't accidentally override a
// CLI flag it never mentioned.
type Options struct {
	JSON       bool
	HasJSON    bool
	PipeIn     bool
	HasPipeIn  bool
	PipeOut    bool
	HasPipeOut bool

	Linewise    bool
	HasLinewise bool
	Serial      bool
	HasSerial   bool

	TrimFields    bool
	HasTrimFields bool
	KeepMode      bool
	HasKeepMode   bool

	Backup       bool
	HasBackup    bool
	BackupExt    string
	HasBackupExt bool

	Template    string
	HasTemplate bool
	Delimiter   string
	HasDelimiter bool

	MaxJobs    int
	HasMaxJobs bool

	Trace    bool
	HasTrace bool

	File    string
	HasFile bool
	Files   []string
	HasFiles bool
	Write    string
	HasWrite bool

	NoInput    bool
	HasNoInput bool
	Silent     bool
	HasSilent  bool

	GlobalUsesLineNumbers    bool
	HasGlobalUsesLineNumbers bool
	EditInplace              bool
	HasEditInplace           bool

	// Echoes holds every echo statement's rendered text, in script order —
	// the Compiler's single AST walk resolves them at compile time (see
	// the (g) Open Question decision in DESIGN.md), so cmd/vicut prints
	// them once when the script loads rather than threading a print
	// instruction through every per-line Program execution.
	Echoes []string
}

// ctrlSignal is what a compiled statement/block hands back to its caller
// when it wants to unwind a loop or function call — break/continue/return
// are resolved entirely while the Compiler walks the script once, the same
// pass that unrolls if/while/for into the flat instruction list a Program
// runs.
type ctrlSignal int

const (
	ctrlNone ctrlSignal = iota
	ctrlBreak
	ctrlContinue
	ctrlReturn
)

// maxLoopIterations bounds while/until unrolling: the Compiler has no
// per-line runtime state to make a loop terminate eventually the way a
// real interpreter's data-dependent loop would, so a condition that stays
// true forever is a genuine script bug, not a slow-but-finite case.
const maxLoopIterations = 100000

// Compiler walks a parsed File once, emitting the flat instruction list
// internal/program.Program runs. Grounded on internal/program's own
// "flat slice resolved by sibling position" model (see its doc comment):
// here the flattening happens before a Program exists at all, by directly
// interpreting control flow (if/while/for, def calls) against a tree of
// lexical environments.
type Compiler struct {
	defs      map[string]*DefStmt
	aliases   map[string]*AliasStmt
	globalEnv *environment

	returnValue value
	Echoes      []string // echo statements' rendered output, in script order
}

// Compile parses and lowers src into a Program plus its opts{...} settings.
func Compile(src string) (*program.Program, Options, error) {
	file, err := ParseFile(src)
	if err != nil {
		return nil, Options{}, err
	}
	return CompileFile(file)
}

// CompileFile lowers an already-parsed File.
func CompileFile(file *File) (*program.Program, Options, error) {
	c := &Compiler{defs: make(map[string]*DefStmt), aliases: make(map[string]*AliasStmt)}
	c.globalEnv = &environment{vars: make(map[string]value), funcs: c}

	opts, err := c.applyOpts(file.Opts)
	if err != nil {
		return nil, Options{}, err
	}

	c.collectDecls(file.Stmts)

	var out []program.Instruction
	if _, err := c.compileBlock(c.globalEnv, file.Stmts, &out); err != nil {
		return nil, Options{}, err
	}
	opts.Echoes = c.Echoes
	return &program.Program{Instructions: out}, opts, nil
}

func (c *Compiler) applyOpts(o *OptsStmt) (Options, error) {
	var opts Options
	if o == nil {
		return opts, nil
	}
	for name, expr := range o.Entries {
		v, err := evalExpr(c.globalEnv, expr)
		if err != nil {
			return opts, err
		}
		switch name {
		case "json":
			opts.JSON, opts.HasJSON = toBool(v), true
		case "pipe_in":
			opts.PipeIn, opts.HasPipeIn = toBool(v), true
		case "pipe_out":
			opts.PipeOut, opts.HasPipeOut = toBool(v), true
		case "linewise":
			opts.Linewise, opts.HasLinewise = toBool(v), true
		case "serial":
			opts.Serial, opts.HasSerial = toBool(v), true
		case "trim_fields":
			opts.TrimFields, opts.HasTrimFields = toBool(v), true
		case "keep_mode":
			opts.KeepMode, opts.HasKeepMode = toBool(v), true
		case "backup":
			opts.Backup, opts.HasBackup = toBool(v), true
		case "backup_ext":
			opts.BackupExt, opts.HasBackupExt = toString(v), true
		case "template":
			opts.Template, opts.HasTemplate = toString(v), true
		case "delimiter":
			opts.Delimiter, opts.HasDelimiter = toString(v), true
		case "max_jobs":
			n, err := toInt64(v)
			if err != nil {
				return opts, err
			}
			opts.MaxJobs, opts.HasMaxJobs = int(n), true
		case "trace":
			opts.Trace, opts.HasTrace = toBool(v), true
		case "file":
			opts.File, opts.HasFile = toString(v), true
		case "files":
			arr, ok := v.([]value)
			if !ok {
				return opts, vierr.New(vierr.ParseError, "opts.files must be an array")
			}
			files := make([]string, len(arr))
			for i, e := range arr {
				files[i] = toString(e)
			}
			opts.Files, opts.HasFiles = files, true
		case "write":
			opts.Write, opts.HasWrite = toString(v), true
		case "no_input":
			opts.NoInput, opts.HasNoInput = toBool(v), true
		case "silent":
			opts.Silent, opts.HasSilent = toBool(v), true
		case "global_uses_line_numbers":
			opts.GlobalUsesLineNumbers, opts.HasGlobalUsesLineNumbers = toBool(v), true
		case "edit_inplace":
			opts.EditInplace, opts.HasEditInplace = toBool(v), true
		default:
			return opts, vierr.Newf(vierr.ParseError, "unknown opts key %q", name)
		}
	}
	return opts, nil
}

// collectDecls pre-registers every top-level def/alias so forward
// references (a function calling one declared later in the file) resolve.
func (c *Compiler) collectDecls(stmts []Stmt) {
	for _, s := range stmts {
		switch st := s.(type) {
		case *DefStmt:
			c.defs[st.Name] = st
		case *AliasStmt:
			c.aliases[st.Name] = st
		}
	}
}

func (c *Compiler) compileBlock(env *environment, stmts []Stmt, out *[]program.Instruction) (ctrlSignal, error) {
	for _, s := range stmts {
		ctrl, err := c.compileStmt(env, s, out)
		if err != nil {
			return ctrlNone, err
		}
		if ctrl != ctrlNone {
			return ctrl, nil
		}
	}
	return ctrlNone, nil
}

func (c *Compiler) compileStmt(env *environment, s Stmt, out *[]program.Instruction) (ctrlSignal, error) {
	switch st := s.(type) {
	case *OptsStmt:
		return ctrlNone, nil

	case *LetStmt:
		v, err := evalExpr(env, st.Value)
		if err != nil {
			return ctrlNone, err
		}
		env.declare(st.Name, v)
		return ctrlNone, nil

	case *AssignStmt:
		return ctrlNone, c.compileAssign(env, st)

	case *IndexAssignStmt:
		return ctrlNone, c.compileIndexAssign(env, st)

	case *IfStmt:
		return c.compileIf(env, st, out)

	case *WhileStmt:
		return c.compileLoop(env, st.Cond, st.Body, out, false)

	case *UntilStmt:
		return c.compileLoop(env, st.Cond, st.Body, out, true)

	case *ForStmt:
		return c.compileFor(env, st, out)

	case *DefStmt:
		c.defs[st.Name] = st
		return ctrlNone, nil

	case *AliasStmt:
		c.aliases[st.Name] = st
		return ctrlNone, nil

	case *ReturnStmt:
		var v value
		if st.Value != nil {
			var err error
			v, err = evalExpr(env, st.Value)
			if err != nil {
				return ctrlNone, err
			}
		}
		c.returnValue = v
		return ctrlReturn, nil

	case *IncludeStmt:
		return c.compileInclude(env, st, out)

	case *PushStmt, *PopStmt, *BufStmt:
		// Accepted syntactically; the single-buffer Program model has
		// nowhere to route multi-buffer state (see DESIGN.md).
		return ctrlNone, nil

	case *GlobalStmt:
		return ctrlNone, c.compileGlobal(env, st, out)

	case *MoveStmt:
		cmd, err := evalExpr(env, st.Cmd)
		if err != nil {
			return ctrlNone, err
		}
		*out = append(*out, program.Move{Cmd: toString(cmd)})
		return ctrlNone, nil

	case *CutStmt:
		cmd, err := evalExpr(env, st.Cmd)
		if err != nil {
			return ctrlNone, err
		}
		*out = append(*out, program.Cut{Name: st.Name, Cmd: toString(cmd)})
		return ctrlNone, nil

	case *YankStmt:
		frag, err := evalExpr(env, st.Value)
		if err != nil {
			return ctrlNone, err
		}
		prefix := ""
		if st.Reg != "" {
			prefix = "\"" + st.Reg
		}
		*out = append(*out, program.Move{Cmd: prefix + "y" + toString(frag)})
		return ctrlNone, nil

	case *EchoStmt:
		parts := make([]string, len(st.Values))
		for i, v := range st.Values {
			val, err := evalExpr(env, v)
			if err != nil {
				return ctrlNone, err
			}
			parts[i] = toString(val)
		}
		c.Echoes = append(c.Echoes, strings.Join(parts, " "))
		return ctrlNone, nil

	case *NextStmt:
		*out = append(*out, program.Next{})
		return ctrlNone, nil

	case *RepeatStmt:
		return ctrlNone, c.compileRepeat(env, st, out)

	case *BreakStmt:
		return ctrlBreak, nil

	case *ContinueStmt:
		return ctrlContinue, nil

	case *ExprStmt:
		_, err := evalExpr(env, st.X)
		return ctrlNone, err

	case *CallStmt:
		return ctrlNone, c.compileCallStmt(env, st, out)
	}
	return ctrlNone, vierr.Newf(vierr.InternalError, "unhandled statement %T", s)
}

func (c *Compiler) compileAssign(env *environment, st *AssignStmt) error {
	rhs, err := evalExpr(env, st.Value)
	if err != nil {
		return err
	}
	if st.Op == "=" {
		env.set(st.Name, rhs)
		return nil
	}
	cur, ok := env.get(st.Name)
	if !ok {
		return vierr.Newf(vierr.ParseError, "undefined variable $%s", st.Name)
	}
	op := strings.TrimSuffix(st.Op, "=")
	nv, err := applyBinaryOp(op, cur, rhs)
	if err != nil {
		return err
	}
	env.set(st.Name, nv)
	return nil
}

func (c *Compiler) compileIndexAssign(env *environment, st *IndexAssignStmt) error {
	v, ok := env.get(st.Name)
	if !ok {
		return vierr.Newf(vierr.ParseError, "undefined variable $%s", st.Name)
	}
	arr, ok := v.([]value)
	if !ok {
		return vierr.Newf(vierr.InternalError, "$%s is not an array", st.Name)
	}
	idxVal, err := evalExpr(env, st.Index)
	if err != nil {
		return err
	}
	idx, err := toInt64(idxVal)
	if err != nil {
		return err
	}
	if idx < 0 || int(idx) >= len(arr) {
		return vierr.Newf(vierr.InternalError, "$%s[%d] out of range", st.Name, idx)
	}
	rhs, err := evalExpr(env, st.Value)
	if err != nil {
		return err
	}
	if st.Op == "=" {
		arr[idx] = rhs
		return nil
	}
	op := strings.TrimSuffix(st.Op, "=")
	nv, err := applyBinaryOp(op, arr[idx], rhs)
	if err != nil {
		return err
	}
	arr[idx] = nv
	return nil
}

func (c *Compiler) compileIf(env *environment, st *IfStmt, out *[]program.Instruction) (ctrlSignal, error) {
	cond, err := evalExpr(env, st.Cond)
	if err != nil {
		return ctrlNone, err
	}
	if toBool(cond) {
		return c.compileBlock(newEnvironment(env), st.Then, out)
	}
	for _, elif := range st.Elifs {
		c2, err := evalExpr(env, elif.Cond)
		if err != nil {
			return ctrlNone, err
		}
		if toBool(c2) {
			return c.compileBlock(newEnvironment(env), elif.Body, out)
		}
	}
	if st.Else != nil {
		return c.compileBlock(newEnvironment(env), st.Else, out)
	}
	return ctrlNone, nil
}

// compileLoop drives both while (until=false) and until (until=true): the
// condition is re-evaluated and the body re-compiled (appending more
// instructions) for as long as it holds.
func (c *Compiler) compileLoop(env *environment, condExpr Expr, body []Stmt, out *[]program.Instruction, until bool) (ctrlSignal, error) {
	for i := 0; ; i++ {
		if i >= maxLoopIterations {
			return ctrlNone, vierr.New(vierr.InternalError, "loop exceeded iteration limit")
		}
		cv, err := evalExpr(env, condExpr)
		if err != nil {
			return ctrlNone, err
		}
		want := toBool(cv)
		if until {
			want = !want
		}
		if !want {
			break
		}
		ctrl, err := c.compileBlock(newEnvironment(env), body, out)
		if err != nil {
			return ctrlNone, err
		}
		if ctrl == ctrlBreak {
			break
		}
		if ctrl == ctrlReturn {
			return ctrlReturn, nil
		}
	}
	return ctrlNone, nil
}

func (c *Compiler) compileFor(env *environment, st *ForStmt, out *[]program.Instruction) (ctrlSignal, error) {
	src, err := evalExpr(env, st.Source)
	if err != nil {
		return ctrlNone, err
	}

	runBody := func(item value) (ctrlSignal, error) {
		bodyEnv := newEnvironment(env)
		bodyEnv.declare(st.Var, item)
		return c.compileBlock(bodyEnv, st.Body, out)
	}

	switch s := src.(type) {
	case rangeValue:
		i := s.from
		for {
			if s.inclusive {
				if i > s.to {
					break
				}
			} else if i >= s.to {
				break
			}
			ctrl, err := runBody(i)
			if err != nil {
				return ctrlNone, err
			}
			if ctrl == ctrlBreak {
				break
			}
			if ctrl == ctrlReturn {
				return ctrlReturn, nil
			}
			i++
		}
	case []value:
		for _, el := range s {
			ctrl, err := runBody(el)
			if err != nil {
				return ctrlNone, err
			}
			if ctrl == ctrlBreak {
				break
			}
			if ctrl == ctrlReturn {
				return ctrlReturn, nil
			}
		}
	default:
		return ctrlNone, vierr.New(vierr.ParseError, "for-loop source is not a range or array")
	}
	return ctrlNone, nil
}

func (c *Compiler) compileRepeat(env *environment, st *RepeatStmt, out *[]program.Instruction) error {
	countVal, err := evalExpr(env, st.Count)
	if err != nil {
		return err
	}
	n, err := toInt64(countVal)
	if err != nil {
		return err
	}
	if n <= 0 {
		return nil
	}
	start := len(*out)
	if _, err := c.compileBlock(newEnvironment(env), st.Body, out); err != nil {
		return err
	}
	emitted := len(*out) - start
	if n > 1 && emitted > 0 {
		*out = append(*out, program.Repeat{N: emitted, R: int(n - 1)})
	}
	return nil
}

func (c *Compiler) compileGlobal(env *environment, st *GlobalStmt, out *[]program.Instruction) error {
	patVal, err := evalExpr(env, st.Pattern)
	if err != nil {
		return err
	}
	pattern := toString(patVal)

	var sub []program.Instruction
	if _, err := c.compileBlock(newEnvironment(env), st.Body, &sub); err != nil {
		return err
	}
	if st.Negate {
		*out = append(*out, program.NotGlobal{Pattern: pattern, Sub: sub})
	} else {
		*out = append(*out, program.Global{Pattern: pattern, Sub: sub})
	}

	if len(st.ElseBody) > 0 {
		var elseSub []program.Instruction
		if _, err := c.compileBlock(newEnvironment(env), st.ElseBody, &elseSub); err != nil {
			return err
		}
		if st.Negate {
			*out = append(*out, program.Global{Pattern: pattern, Sub: elseSub})
		} else {
			*out = append(*out, program.NotGlobal{Pattern: pattern, Sub: elseSub})
		}
	}
	return nil
}

func (c *Compiler) compileInclude(env *environment, st *IncludeStmt, out *[]program.Instruction) (ctrlSignal, error) {
	data, err := os.ReadFile(st.Path)
	if err != nil {
		return ctrlNone, vierr.Atf(vierr.IoError, st.Path, "include: %v", err)
	}
	sub, err := ParseFile(string(data))
	if err != nil {
		return ctrlNone, err
	}
	c.collectDecls(sub.Stmts)
	return c.compileBlock(env, sub.Stmts, out)
}

func (c *Compiler) compileCallStmt(env *environment, st *CallStmt, out *[]program.Instruction) error {
	if alias, ok := c.aliases[st.Name]; ok {
		if len(st.Args) != 0 {
			return vierr.Newf(vierr.ParseError, "alias %q takes no arguments", st.Name)
		}
		_, err := c.compileBlock(newEnvironment(env), alias.Body, out)
		return err
	}
	if def, ok := c.defs[st.Name]; ok {
		_, err := c.callDef(env, def, st.Args, out)
		return err
	}
	return vierr.Newf(vierr.UnknownCommand, "undefined alias or function %q", st.Name)
}

// callDef invokes def, binding its parameters in a scope chained to the
// Compiler's global environment (the body sees globals and its parameters;
// locals where it was declared or called from are not visible), emitting any
// cut/move/etc. statements in its body into out. Called from expression
// position (callExpr, below), out is a throwaway sink — a function
// invoked for its return value has no well-defined place in the
// surrounding expression to splice side-effecting instructions, so those
// are no-ops there; only a bare statement-position call is effectful.
func (c *Compiler) callDef(env *environment, def *DefStmt, argExprs []Expr, out *[]program.Instruction) (value, error) {
	if len(def.Params) != len(argExprs) {
		return nil, vierr.Newf(vierr.ParseError, "%s() expects %d argument(s), got %d", def.Name, len(def.Params), len(argExprs))
	}
	args := make([]value, len(argExprs))
	for i, a := range argExprs {
		v, err := evalExpr(env, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	callEnv := newEnvironment(c.globalEnv)
	for i, p := range def.Params {
		callEnv.declare(p, args[i])
	}

	prevReturn := c.returnValue
	c.returnValue = nil
	if _, err := c.compileBlock(callEnv, def.Body, out); err != nil {
		c.returnValue = prevReturn
		return nil, err
	}
	ret := c.returnValue
	c.returnValue = prevReturn
	return ret, nil
}

// callExpr resolves a CallExpr encountered mid-expression: a user-defined
// function first, then the small built-in set (eval.go's evalBuiltinCall).
func callExpr(env *environment, x *CallExpr) (value, error) {
	if env.funcs != nil {
		if def, ok := env.funcs.defs[x.Name]; ok {
			var discard []program.Instruction
			return env.funcs.callDef(env, def, x.Args, &discard)
		}
	}
	return evalBuiltinCall(env, x)
}
