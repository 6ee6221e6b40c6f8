package script

import (
	"fmt"
	"strconv"

	"github.com/dshills/vicut/internal/vierr"
)

// value is the DSL's dynamic value: int64, bool, string, []value, or
// rangeValue (the result of a range()/range_inclusive() for-source, kept
// distinct from a plain array so the for-loop compiler can stream it
// without first materializing a slice of every index).
type value = any

type rangeValue struct {
	from, to  int64
	inclusive bool
}

// environment is a variable table chained to a parent scope: one for the
// script top level, a child of the enclosing scope for each block body, and
// one per def call chained to the top-level scope, so a function sees the
// globals and its own parameters but no locals of the scope it was declared
// in or called from.
type environment struct {
	vars   map[string]value
	parent *environment
	funcs  *Compiler // shared across a chain; set once at the root
}

func newEnvironment(parent *environment) *environment {
	e := &environment{vars: make(map[string]value), parent: parent}
	if parent != nil {
		e.funcs = parent.funcs
	}
	return e
}

func (e *environment) get(name string) (value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// set assigns to the nearest enclosing scope that already declares name
// (so a block body can update a variable of an enclosing block, and a
// function body a global),
// falling back to declaring it in the current scope.
func (e *environment) set(name string, v value) {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = v
			return
		}
	}
	e.vars[name] = v
}

func (e *environment) declare(name string, v value) {
	e.vars[name] = v
}

func toInt64(v value) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, vierr.Newf(vierr.InternalError, "%q is not an integer", n)
		}
		return i, nil
	}
	return 0, vierr.Newf(vierr.InternalError, "value %v is not an integer", v)
}

func toBool(v value) bool {
	switch n := v.(type) {
	case bool:
		return n
	case int64:
		return n != 0
	case string:
		return n != ""
	case []value:
		return len(n) > 0
	}
	return v != nil
}

func toString(v value) string {
	switch n := v.(type) {
	case string:
		return n
	case int64:
		return strconv.FormatInt(n, 10)
	case bool:
		if n {
			return "true"
		}
		return "false"
	case []value:
		parts := make([]string, len(n))
		for i, e := range n {
			parts[i] = toString(e)
		}
		return fmt.Sprint(parts)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
