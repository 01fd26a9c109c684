// Package types models the small monomorphic type universe of the
// language: five primitives, curried function types, nominal struct
// and opaque types, and inference variables. No generalization: a
// variable either gets bound during one member's resolution or the
// member fails with an unresolvable type.
package types

import (
	"fmt"
	"strconv"
)

// Kind discriminates the Type implementations.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindString
	KindBool
	KindUnit
	KindFn
	KindNamed
	KindVar
)

// Type is implemented by exactly: *Prim, *Fn, *Named, *Var.
type Type interface {
	Kind() Kind
	String() string
}

// Prim is one of the five builtin scalar types. Always compare against
// the package singletons, never allocate a Prim.
type Prim struct {
	kind Kind
	name string
}

func (p *Prim) Kind() Kind     { return p.kind }
func (p *Prim) String() string { return p.name }

var (
	Int    = &Prim{kind: KindInt, name: "Int"}
	Float  = &Prim{kind: KindFloat, name: "Float"}
	String = &Prim{kind: KindString, name: "String"}
	Bool   = &Prim{kind: KindBool, name: "Bool"}
	Unit   = &Prim{kind: KindUnit, name: "Unit"}
)

// Primitive returns the builtin type for a source-level name.
func Primitive(name string) (Type, bool) {
	switch name {
	case "Int":
		return Int, true
	case "Float":
		return Float, true
	case "String":
		return String, true
	case "Bool":
		return Bool, true
	case "Unit":
		return Unit, true
	}
	return nil, false
}

// Fn is a single-parameter function type; multi-parameter functions
// are curried chains.
type Fn struct {
	Param  Type
	Result Type
}

func (f *Fn) Kind() Kind { return KindFn }

func (f *Fn) String() string {
	param := f.Param.String()
	if f.Param != nil && f.Param.Kind() == KindFn {
		param = "(" + param + ")"
	}
	return param + " -> " + f.Result.String()
}

// NewFn builds a curried function type from params to result.
func NewFn(result Type, params ...Type) Type {
	t := result
	for i := len(params) - 1; i >= 0; i-- {
		t = &Fn{Param: params[i], Result: t}
	}
	return t
}

// Named is a nominal type: a user struct or an opaque native handle.
// Its physical shape, if any, lives in the ABI layout table.
type Named struct {
	Name string
}

func (n *Named) Kind() Kind     { return KindNamed }
func (n *Named) String() string { return n.Name }

// Var is an inference variable. Bound is nil until unification fixes
// it; Prune chases bindings.
type Var struct {
	ID    int
	Bound Type
}

func (v *Var) Kind() Kind { return KindVar }

func (v *Var) String() string {
	if v.Bound != nil {
		return v.Bound.String()
	}
	return "t" + strconv.Itoa(v.ID)
}

// VarSource hands out fresh inference variables. One per member
// resolution; never shared across goroutines.
type VarSource struct {
	next int
}

func (s *VarSource) Fresh() *Var {
	s.next++
	return &Var{ID: s.next}
}

// Prune resolves chains of bound variables to the representative type.
func Prune(t Type) Type {
	for {
		v, ok := t.(*Var)
		if !ok || v.Bound == nil {
			return t
		}
		t = v.Bound
	}
}

// Equal reports structural equality after pruning. Unbound variables
// are equal only to themselves.
func Equal(a, b Type) bool {
	a, b = Prune(a), Prune(b)
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind() != b.Kind() {
		return false
	}
	switch at := a.(type) {
	case *Fn:
		bt := b.(*Fn)
		return Equal(at.Param, bt.Param) && Equal(at.Result, bt.Result)
	case *Named:
		return at.Name == b.(*Named).Name
	}
	return false
}

func occurs(v *Var, t Type) bool {
	t = Prune(t)
	switch tt := t.(type) {
	case *Var:
		return tt == v
	case *Fn:
		return occurs(v, tt.Param) || occurs(v, tt.Result)
	}
	return false
}

// Unify makes a and b equal by binding variables, or reports failure.
// Bindings stick on success and on failure alike; callers treat a
// failed member as poisoned, so partial bindings are harmless.
func Unify(a, b Type) bool {
	a, b = Prune(a), Prune(b)
	if a == b {
		return true
	}
	if av, ok := a.(*Var); ok {
		if occurs(av, b) {
			return false
		}
		av.Bound = b
		return true
	}
	if _, ok := b.(*Var); ok {
		return Unify(b, a)
	}
	if a == nil || b == nil || a.Kind() != b.Kind() {
		return false
	}
	switch at := a.(type) {
	case *Fn:
		bt := b.(*Fn)
		return Unify(at.Param, bt.Param) && Unify(at.Result, bt.Result)
	case *Named:
		return at.Name == b.(*Named).Name
	}
	return false
}

// Describe renders a type for a diagnostic, or a placeholder when the
// type is still unknown.
func Describe(t Type) string {
	if t == nil {
		return "<unknown>"
	}
	t = Prune(t)
	if v, ok := t.(*Var); ok && v.Bound == nil {
		return fmt.Sprintf("<unresolved %s>", v)
	}
	return t.String()
}
