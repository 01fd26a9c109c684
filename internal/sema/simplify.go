package sema

import (
	"mml/internal/ast"
	"mml/internal/source"
)

// Simplify removes single-term Expr wrappers left behind as rewriting
// scaffolding. The surviving term inherits a span covering the whole
// wrapper so diagnostics and debug locations stay accurate. Types and
// resolution targets are untouched; simplification is idempotent.
func Simplify(m *ast.Module, _ *Context) *ast.Module {
	out := m.Clone()
	for _, mem := range out.Members {
		switch it := mem.(type) {
		case *ast.FnDef:
			simplifyExpr(it.Body)
		case *ast.Bnd:
			simplifyExpr(it.Value)
		}
	}
	return out
}

// simplifyExpr flattens an *Expr position in place: children first,
// then any chain of single-Expr wrappers collapses into e itself.
func simplifyExpr(e *ast.Expr) {
	if e == nil {
		return
	}
	for i, t := range e.Terms {
		e.Terms[i] = simplifyTerm(t)
	}
	for {
		inner, ok := e.Single().(*ast.Expr)
		if !ok {
			break
		}
		e.Terms = inner.Terms
		if e.Type == nil {
			e.Type = inner.Type
		}
	}
}

// simplifyTerm returns the replacement for a term position: a
// single-term wrapper is replaced by its inner term.
func simplifyTerm(t ast.Term) ast.Term {
	switch term := t.(type) {
	case *ast.Expr:
		simplifyExpr(term)
		inner := term.Single()
		if inner == nil {
			return term
		}
		widenSpan(inner, term.Span)
		return inner
	case *ast.Cond:
		simplifyExpr(term.Cond)
		simplifyExpr(term.IfTrue)
		simplifyExpr(term.IfFalse)
		return term
	case *ast.FnDef:
		simplifyExpr(term.Body)
		return term
	}
	return t
}

// widenSpan grows a term's span to cover the wrapper it replaced.
func widenSpan(t ast.Term, wrapper source.Span) {
	switch term := t.(type) {
	case *ast.Ref:
		term.Span = wrapper.Cover(term.Span)
	case *ast.Literal:
		term.Span = wrapper.Cover(term.Span)
	case *ast.Expr:
		term.Span = wrapper.Cover(term.Span)
	case *ast.Cond:
		term.Span = wrapper.Cover(term.Span)
	case *ast.Hole:
		term.Span = wrapper.Cover(term.Span)
	case *ast.FnDef:
		term.Span = wrapper.Cover(term.Span)
	}
}
