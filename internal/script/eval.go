package script

import (
	"github.com/dshills/vicut/internal/vierr"
)

// evalExpr is the tree-walking expression evaluator spec.md §4.9 calls for
// ("the compiler lowers to the Command Program plus an expression
// evaluator invoked at runtime for dynamic counts, patterns, and vim_cmd
// strings"). Here "runtime" means while the Compiler itself walks the
// script once to emit instructions — loops, conditionals, and variables
// are all resolved at that point, so the Program the pipeline later runs
// per line is already fully concrete.
func evalExpr(env *environment, e Expr) (value, error) {
	switch x := e.(type) {
	case *IntLit:
		return x.V, nil
	case *BoolLit:
		return x.V, nil
	case *StringLit:
		return x.V, nil
	case *RegexLit:
		return x.V, nil
	case *ArrayLit:
		arr := make([]value, len(x.Elems))
		for i, el := range x.Elems {
			v, err := evalExpr(env, el)
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	case *VarExpr:
		v, ok := env.get(x.Name)
		if !ok {
			return nil, vierr.Newf(vierr.ParseError, "undefined variable $%s", x.Name)
		}
		return v, nil
	case *IndexExpr:
		v, ok := env.get(x.Name)
		if !ok {
			return nil, vierr.Newf(vierr.ParseError, "undefined variable $%s", x.Name)
		}
		arr, ok := v.([]value)
		if !ok {
			return nil, vierr.Newf(vierr.InternalError, "$%s is not an array", x.Name)
		}
		idx, err := evalExpr(env, x.Index)
		if err != nil {
			return nil, err
		}
		i, err := toInt64(idx)
		if err != nil {
			return nil, err
		}
		if i < 0 || int(i) >= len(arr) {
			return nil, vierr.Newf(vierr.InternalError, "$%s[%d] out of range", x.Name, i)
		}
		return arr[i], nil
	case *UnaryExpr:
		v, err := evalExpr(env, x.X)
		if err != nil {
			return nil, err
		}
		switch x.Op {
		case "-":
			n, err := toInt64(v)
			if err != nil {
				return nil, err
			}
			return -n, nil
		case "!":
			return !toBool(v), nil
		}
	case *BinaryExpr:
		return evalBinary(env, x)
	case *TernaryExpr:
		c, err := evalExpr(env, x.Cond)
		if err != nil {
			return nil, err
		}
		if toBool(c) {
			return evalExpr(env, x.Then)
		}
		return evalExpr(env, x.Else)
	case *RangeExpr:
		from, err := evalExpr(env, x.From)
		if err != nil {
			return nil, err
		}
		to, err := evalExpr(env, x.To)
		if err != nil {
			return nil, err
		}
		f, err := toInt64(from)
		if err != nil {
			return nil, err
		}
		t, err := toInt64(to)
		if err != nil {
			return nil, err
		}
		return rangeValue{from: f, to: t, inclusive: x.Inclusive}, nil
	case *CallExpr:
		return callExpr(env, x)
	}
	return nil, vierr.Newf(vierr.InternalError, "unhandled expression node %T", e)
}

func evalBinary(env *environment, x *BinaryExpr) (value, error) {
	l, err := evalExpr(env, x.L)
	if err != nil {
		return nil, err
	}

	// Short-circuit boolean operators.
	if x.Op == "&&" {
		if !toBool(l) {
			return false, nil
		}
		r, err := evalExpr(env, x.R)
		if err != nil {
			return nil, err
		}
		return toBool(r), nil
	}
	if x.Op == "||" {
		if toBool(l) {
			return true, nil
		}
		r, err := evalExpr(env, x.R)
		if err != nil {
			return nil, err
		}
		return toBool(r), nil
	}

	r, err := evalExpr(env, x.R)
	if err != nil {
		return nil, err
	}
	return applyBinaryOp(x.Op, l, r)
}

// applyBinaryOp evaluates a binary operator over two already-resolved
// values; also used by AssignStmt's compound operators (+=, -=, etc.),
// which apply the same op to a variable's current value and the RHS.
func applyBinaryOp(op string, l, r value) (value, error) {
	switch op {
	case "==":
		return valuesEqual(l, r), nil
	case "!=":
		return !valuesEqual(l, r), nil
	}

	ls, lIsStr := l.(string)
	rs, rIsStr := r.(string)
	if lIsStr && rIsStr {
		switch op {
		case "+":
			return ls + rs, nil
		case "<":
			return ls < rs, nil
		case "<=":
			return ls <= rs, nil
		case ">":
			return ls > rs, nil
		case ">=":
			return ls >= rs, nil
		}
	}

	ln, err := toInt64(l)
	if err != nil {
		return nil, err
	}
	rn, err := toInt64(r)
	if err != nil {
		return nil, err
	}
	switch op {
	case "+":
		return ln + rn, nil
	case "-":
		return ln - rn, nil
	case "*":
		return ln * rn, nil
	case "/":
		if rn == 0 {
			return nil, vierr.New(vierr.InternalError, "division by zero")
		}
		return ln / rn, nil
	case "%":
		if rn == 0 {
			return nil, vierr.New(vierr.InternalError, "modulo by zero")
		}
		return ln % rn, nil
	case "**":
		return intPow(ln, rn), nil
	case "<":
		return ln < rn, nil
	case "<=":
		return ln <= rn, nil
	case ">":
		return ln > rn, nil
	case ">=":
		return ln >= rn, nil
	}
	return nil, vierr.Newf(vierr.InternalError, "unhandled operator %q", op)
}

func intPow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	var result int64 = 1
	for ; exp > 0; exp-- {
		result *= base
	}
	return result
}

func valuesEqual(l, r value) bool {
	ls, lok := l.(string)
	rs, rok := r.(string)
	if lok && rok {
		return ls == rs
	}
	ln, lerr := toInt64(l)
	rn, rerr := toInt64(r)
	if lerr == nil && rerr == nil {
		return ln == rn
	}
	return toString(l) == toString(r)
}

// evalBuiltinCall handles the small set of built-in functions the DSL
// exposes to expressions (only len); user-defined functions are
// resolved by the Compiler, which intercepts CallExpr/CallStmt against its
// def table before falling back here.
func evalBuiltinCall(env *environment, x *CallExpr) (value, error) {
	args := make([]value, len(x.Args))
	for i, a := range x.Args {
		v, err := evalExpr(env, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	switch x.Name {
	case "len":
		if len(args) != 1 {
			return nil, vierr.New(vierr.ParseError, "len() takes exactly one argument")
		}
		switch v := args[0].(type) {
		case []value:
			return int64(len(v)), nil
		case string:
			return int64(len([]rune(v))), nil
		}
		return nil, vierr.New(vierr.InternalError, "len() requires a string or array")
	}
	return nil, vierr.Newf(vierr.UnknownCommand, "undefined function %q", x.Name)
}
