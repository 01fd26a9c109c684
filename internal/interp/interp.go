// Package interp is a reference tree-walking interpreter over the
// resolved AST. It exists as an execution oracle for semantic
// equivalence testing; it is deliberately small and slow and supports
// only builtin operators.
package interp

import (
	"errors"
	"fmt"

	"mml/internal/ast"
)

// ErrEntryPoint is wrapped by Interpret when the entry point is
// missing or takes parameters.
var ErrEntryPoint = errors.New("invalid entry point")

// ValueKind discriminates runtime values.
type ValueKind uint8

const (
	ValUnit ValueKind = iota
	ValInt
	ValFloat
	ValString
	ValBool
	ValClosure
)

// Value is one runtime value. Only the payload matching Kind is set.
type Value struct {
	Kind    ValueKind
	Int     int64
	Float   float64
	Str     string
	Bool    bool
	Closure *Closure
}

// Closure captures a function and the environment of its definition
// site, plus any arguments applied so far (functions are curried).
type Closure struct {
	Fn   *ast.FnDef
	Env  *Env
	Args []Value
}

func (v Value) String() string {
	switch v.Kind {
	case ValInt:
		return fmt.Sprintf("%d", v.Int)
	case ValFloat:
		return fmt.Sprintf("%g", v.Float)
	case ValString:
		return v.Str
	case ValBool:
		return fmt.Sprintf("%t", v.Bool)
	case ValClosure:
		name := v.Closure.Fn.Name
		if name == "" {
			name = "<lambda>"
		}
		return "<fn " + name + ">"
	}
	return "()"
}

var unit = Value{Kind: ValUnit}

// Env is a lexical environment keyed by declaration node, matching
// how Ref targets identify declarations.
type Env struct {
	parent *Env
	vars   map[any]Value
}

func newEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: make(map[any]Value)}
}

func (e *Env) bind(key any, v Value) {
	e.vars[key] = v
}

func (e *Env) lookup(key any) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[key]; ok {
			return v, true
		}
	}
	return unit, false
}

// Interpret evaluates the named zero-parameter entry point. Top-level
// bindings are evaluated lazily on first lookup, so forward references
// between members work exactly as the resolver permits them.
// The module must be fully resolved; feeding it anything else is a
// programming error and surfaces as a lookup failure.
func Interpret(m *ast.Module, entry string) (Value, error) {
	globals := newEnv(nil)
	in := &interp{
		globals: globals,
		pending: make(map[any]pendingMember),
		forcing: make(map[any]bool),
	}
	for _, mem := range m.Members {
		switch it := mem.(type) {
		case *ast.FnDef:
			if len(it.Params) > 0 {
				globals.bind(it, Value{Kind: ValClosure, Closure: &Closure{Fn: it, Env: globals}})
				continue
			}
			in.pending[it] = pendingMember{name: it.Name, body: it.Body}
		case *ast.Bnd:
			in.pending[it] = pendingMember{name: it.Name, body: it.Value}
		}
	}

	for _, mem := range m.Members {
		fn, ok := mem.(*ast.FnDef)
		if !ok || fn.Name != entry {
			if bnd, isBnd := mem.(*ast.Bnd); isBnd && bnd.Name == entry {
				return in.force(bnd, bnd.Name)
			}
			continue
		}
		if len(fn.Params) != 0 {
			return unit, fmt.Errorf("%w: `%s` takes %d parameters, want 0", ErrEntryPoint, entry, len(fn.Params))
		}
		return in.force(fn, fn.Name)
	}
	return unit, fmt.Errorf("%w: no member named `%s`", ErrEntryPoint, entry)
}

// pendingMember is a top-level binding whose value has not been
// demanded yet.
type pendingMember struct {
	name string
	body *ast.Expr
}

type interp struct {
	globals *Env
	pending map[any]pendingMember
	forcing map[any]bool
}

// force returns the value bound to a top-level declaration, evaluating
// its body the first time it is demanded. A member demanding itself
// while its own body is still evaluating is a value cycle.
func (in *interp) force(key any, name string) (Value, error) {
	if v, ok := in.globals.lookup(key); ok {
		return v, nil
	}
	member, ok := in.pending[key]
	if !ok {
		return unit, fmt.Errorf("`%s` is not bound at this point", name)
	}
	if in.forcing[key] {
		return unit, fmt.Errorf("`%s` depends on its own value", name)
	}
	in.forcing[key] = true
	v, err := in.expr(member.body, in.globals)
	delete(in.forcing, key)
	if err != nil {
		return unit, err
	}
	delete(in.pending, key)
	in.globals.bind(key, v)
	return v, nil
}

func (in *interp) expr(e *ast.Expr, env *Env) (Value, error) {
	if e == nil || len(e.Terms) == 0 {
		return unit, nil
	}

	// Block: bind the local definitions, then evaluate the value term.
	if fn, ok := e.Terms[0].(*ast.FnDef); ok && fn.Name != "" {
		scope := newEnv(env)
		last := unit
		for _, t := range e.Terms {
			if stmt, isFn := t.(*ast.FnDef); isFn && stmt.Name != "" {
				v, err := in.define(stmt, scope)
				if err != nil {
					return unit, err
				}
				scope.bind(stmt, v)
				last = unit
				continue
			}
			v, err := in.term(t, scope)
			if err != nil {
				return unit, err
			}
			last = v
		}
		return last, nil
	}

	if len(e.Terms) == 3 {
		if opRef, ok := e.Terms[1].(*ast.Ref); ok && isOperatorRef(opRef) {
			return in.operator(opRef, e.Terms[0], e.Terms[2], env)
		}
	}

	// Application chain.
	fn, err := in.term(e.Terms[0], env)
	if err != nil {
		return unit, err
	}
	for _, argTerm := range e.Terms[1:] {
		arg, err := in.term(argTerm, env)
		if err != nil {
			return unit, err
		}
		fn, err = in.apply(fn, arg)
		if err != nil {
			return unit, err
		}
	}
	return fn, nil
}

// define evaluates a named local: a zero-parameter binding eagerly,
// a function to a closure.
func (in *interp) define(fn *ast.FnDef, env *Env) (Value, error) {
	if len(fn.Params) == 0 {
		return in.expr(fn.Body, env)
	}
	return Value{Kind: ValClosure, Closure: &Closure{Fn: fn, Env: env}}, nil
}

func (in *interp) term(t ast.Term, env *Env) (Value, error) {
	switch term := t.(type) {
	case *ast.Literal:
		return literalValue(term), nil
	case *ast.Ref:
		return in.ref(term, env)
	case *ast.Expr:
		return in.expr(term, env)
	case *ast.Cond:
		cond, err := in.expr(term.Cond, env)
		if err != nil {
			return unit, err
		}
		if cond.Kind != ValBool {
			return unit, fmt.Errorf("condition evaluated to a non-Bool value")
		}
		if cond.Bool {
			return in.expr(term.IfTrue, env)
		}
		return in.expr(term.IfFalse, env)
	case *ast.Hole:
		return unit, fmt.Errorf("evaluated a hole (`???`)")
	case *ast.FnDef:
		return in.define(term, env)
	}
	return unit, fmt.Errorf("unsupported term %T", t)
}

func (in *interp) ref(ref *ast.Ref, env *Env) (Value, error) {
	target := ref.Target
	if target == nil {
		return unit, fmt.Errorf("unresolved reference `%s` reached the interpreter", ref.Name)
	}
	var key any
	switch target.Kind {
	case ast.DeclFn, ast.DeclLocal:
		key = target.Fn
	case ast.DeclBnd:
		key = target.Bnd
	case ast.DeclParam:
		key = target.Param
	case ast.DeclOperator:
		return unit, fmt.Errorf("operator `%s` is not a first-class value", ref.Name)
	}
	if v, ok := env.lookup(key); ok {
		return v, nil
	}
	// Not in any lexical scope: a top-level member, possibly not yet
	// evaluated (the resolver allows forward references).
	return in.force(key, ref.Name)
}

func (in *interp) apply(fn, arg Value) (Value, error) {
	if fn.Kind != ValClosure {
		return unit, fmt.Errorf("cannot apply a non-function value %s", fn)
	}
	cl := fn.Closure
	args := make([]Value, 0, len(cl.Args)+1)
	args = append(args, cl.Args...)
	args = append(args, arg)
	if len(args) < len(cl.Fn.Params) {
		return Value{Kind: ValClosure, Closure: &Closure{Fn: cl.Fn, Env: cl.Env, Args: args}}, nil
	}
	scope := newEnv(cl.Env)
	for i := range cl.Fn.Params {
		scope.bind(&cl.Fn.Params[i], args[i])
	}
	return in.expr(cl.Fn.Body, scope)
}

func isOperatorRef(ref *ast.Ref) bool {
	return ref.Target != nil && ref.Target.Kind == ast.DeclOperator
}

func literalValue(l *ast.Literal) Value {
	switch l.Kind {
	case ast.LitInt:
		return Value{Kind: ValInt, Int: l.Int}
	case ast.LitFloat:
		return Value{Kind: ValFloat, Float: l.Float}
	case ast.LitString:
		return Value{Kind: ValString, Str: l.Str}
	case ast.LitBool:
		return Value{Kind: ValBool, Bool: l.Bool}
	}
	return unit
}
