package ast

import (
	"mml/internal/source"
	"mml/internal/types"
)

// Expr is an ordered sequence of terms. Fresh from the parser the
// sequence is flat (operands and operator refs interleaved); after the
// rewrite stage every Expr holds at most one top-level application.
type Expr struct {
	Span  source.Span
	Terms []Term

	// Type is assigned by the type resolver.
	Type types.Type
}

func (e *Expr) TermSpan() source.Span { return e.Span }
func (e *Expr) isTerm()               {}

// Term is one element of an expression sequence.
// Concrete kinds: Ref, Literal, *Expr (grouping), Cond, Hole, *FnDef.
type Term interface {
	TermSpan() source.Span
	isTerm()
}

// Ref is a name occurrence. Target is nil until the resolver binds it.
type Ref struct {
	Name   string
	Span   source.Span
	Target *Decl
	Type   types.Type
}

func (r *Ref) TermSpan() source.Span { return r.Span }
func (r *Ref) isTerm()               {}

// LitKind discriminates literal payloads.
type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitString
	LitBool
	LitUnit
)

func (k LitKind) String() string {
	switch k {
	case LitInt:
		return "Int"
	case LitFloat:
		return "Float"
	case LitString:
		return "String"
	case LitBool:
		return "Bool"
	case LitUnit:
		return "Unit"
	}
	return "?"
}

// Literal is a constant term. Only the payload matching Kind is set.
type Literal struct {
	Kind LitKind
	Span source.Span

	Int    int64
	Float  float64
	Str    string
	Bool   bool
}

func (l *Literal) TermSpan() source.Span { return l.Span }
func (l *Literal) isTerm()               {}

// Cond is `if cond then a else b`. Both branches are mandatory; the
// type resolver requires them to agree.
type Cond struct {
	Span    source.Span
	Cond    *Expr
	IfTrue  *Expr
	IfFalse *Expr
	Type    types.Type
}

func (c *Cond) TermSpan() source.Span { return c.Span }
func (c *Cond) isTerm()               {}

// Hole is the explicit unknown marker (`???` in source). Typing a hole
// is always an UnresolvableType diagnostic.
type Hole struct {
	Span source.Span
}

func (h *Hole) TermSpan() source.Span { return h.Span }
func (h *Hole) isTerm()               {}

// FnDef also acts as a term for lambdas and local let-bindings.
func (f *FnDef) TermSpan() source.Span { return f.Span }
func (f *FnDef) isTerm()               {}

// Single returns the only term of e, or nil when e is not a
// single-term wrapper.
func (e *Expr) Single() Term {
	if e == nil || len(e.Terms) != 1 {
		return nil
	}
	return e.Terms[0]
}
