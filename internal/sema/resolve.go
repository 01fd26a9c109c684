package sema

import (
	"fmt"

	"mml/internal/ast"
	"mml/internal/diag"
)

// Resolve binds every Ref to its declaration, innermost scope first.
// Local bindings and parameters shadow module members; a second
// binding of the same name inside one block is a duplicate, reported
// here rather than at parse time. Unresolved names are collected
// fail-soft so one run reports them all.
func Resolve(m *ast.Module, ctx *Context) *ast.Module {
	out := m.Clone()
	r := &resolver{ctx: ctx, module: out, operators: make(map[string]*ast.Decl)}
	r.push()
	r.declareMembers()
	out.Decls = r.top()
	for _, mem := range out.Members {
		switch it := mem.(type) {
		case *ast.FnDef:
			r.fn(it)
		case *ast.Bnd:
			r.expr(it.Value)
		}
	}
	r.pop()
	return out
}

type scope map[string]*ast.Decl

type resolver struct {
	ctx       *Context
	module    *ast.Module
	stack     []scope
	operators map[string]*ast.Decl
}

func (r *resolver) push() {
	r.stack = append(r.stack, make(scope))
}

func (r *resolver) pop() {
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *resolver) top() scope {
	return r.stack[len(r.stack)-1]
}

// declareMembers fills the module scope. On duplicates the first
// declaration wins so later references still resolve somewhere; the
// duplicate itself was already reported by the previous stage.
func (r *resolver) declareMembers() {
	for _, mem := range r.module.Members {
		var decl *ast.Decl
		switch it := mem.(type) {
		case *ast.FnDef:
			decl = &ast.Decl{Kind: ast.DeclFn, Name: it.Name, Span: it.NameSpan, Fn: it}
		case *ast.Bnd:
			decl = &ast.Decl{Kind: ast.DeclBnd, Name: it.Name, Span: it.NameSpan, Bnd: it}
		default:
			continue
		}
		if decl.Name == "" {
			continue
		}
		if _, exists := r.top()[decl.Name]; !exists {
			r.top()[decl.Name] = decl
		}
	}
}

func (r *resolver) lookup(name string) *ast.Decl {
	for i := len(r.stack) - 1; i >= 0; i-- {
		if d, ok := r.stack[i][name]; ok {
			return d
		}
	}
	if d, ok := r.operators[name]; ok {
		return d
	}
	if op, ok := r.module.Operators[name]; ok {
		def := op
		d := &ast.Decl{Kind: ast.DeclOperator, Name: op.Name, Span: op.Span, Op: &def}
		r.operators[name] = d
		return d
	}
	return nil
}

func (r *resolver) fn(fn *ast.FnDef) {
	r.push()
	for i := range fn.Params {
		p := &fn.Params[i]
		if prev, dup := r.top()[p.Name]; dup {
			r.ctx.report(diag.NewError(diag.SemaDuplicateName, diag.StageResolve, p.Span,
				fmt.Sprintf("parameter `%s` is declared more than once", p.Name)).
				WithNote(prev.Span, "first declared here"))
			continue
		}
		r.top()[p.Name] = &ast.Decl{Kind: ast.DeclParam, Name: p.Name, Span: p.Span, Param: p}
	}
	r.expr(fn.Body)
	r.pop()
}

// expr resolves a term sequence as one block scope: named local
// functions and let-bindings become visible to the terms that follow
// them, and re-binding a name in the same block is a duplicate.
func (r *resolver) expr(e *ast.Expr) {
	if e == nil {
		return
	}
	r.push()
	for _, t := range e.Terms {
		r.term(t)
	}
	r.pop()
}

func (r *resolver) term(t ast.Term) {
	switch term := t.(type) {
	case *ast.Ref:
		if d := r.lookup(term.Name); d != nil {
			term.Target = d
			return
		}
		r.ctx.report(diag.NewError(diag.SemaUnresolvedRef, diag.StageResolve, term.Span,
			fmt.Sprintf("cannot resolve name `%s`", term.Name)))
	case *ast.Expr:
		r.expr(term)
	case *ast.Cond:
		r.expr(term.Cond)
		r.expr(term.IfTrue)
		r.expr(term.IfFalse)
	case *ast.FnDef:
		if term.Name != "" {
			if prev, dup := r.top()[term.Name]; dup {
				r.ctx.report(diag.NewError(diag.SemaDuplicateName, diag.StageResolve, term.NameSpan,
					fmt.Sprintf("`%s` is bound more than once in this block", term.Name)).
					WithNote(prev.Span, "first bound here"))
			} else {
				kind := ast.DeclLocal
				if len(term.Params) > 0 {
					kind = ast.DeclFn
				}
				r.top()[term.Name] = &ast.Decl{Kind: kind, Name: term.Name, Span: term.NameSpan, Fn: term}
			}
		}
		r.fn(term)
	}
}
