package sema

import (
	"strconv"
	"strings"

	"mml/internal/ast"
	"mml/internal/diag"
	"mml/internal/source"
)

// astBuilder constructs raw modules shaped the way the parser emits
// them: flat term sequences with spans laid out left to right.
type astBuilder struct {
	off uint32
}

func (b *astBuilder) sp(width uint32) source.Span {
	s := source.Span{Start: b.off, End: b.off + width}
	b.off += width + 1
	return s
}

func (b *astBuilder) ref(name string) *ast.Ref {
	return &ast.Ref{Name: name, Span: b.sp(uint32(len(name)))}
}

func (b *astBuilder) intLit(v int64) *ast.Literal {
	return &ast.Literal{Kind: ast.LitInt, Span: b.sp(1), Int: v}
}

func (b *astBuilder) floatLit(v float64) *ast.Literal {
	return &ast.Literal{Kind: ast.LitFloat, Span: b.sp(3), Float: v}
}

func (b *astBuilder) strLit(v string) *ast.Literal {
	return &ast.Literal{Kind: ast.LitString, Span: b.sp(uint32(len(v)) + 2), Str: v}
}

func (b *astBuilder) boolLit(v bool) *ast.Literal {
	return &ast.Literal{Kind: ast.LitBool, Span: b.sp(4), Bool: v}
}

func (b *astBuilder) hole() *ast.Hole {
	return &ast.Hole{Span: b.sp(3)}
}

// flat wraps terms in an Expr covering their spans.
func (b *astBuilder) flat(terms ...ast.Term) *ast.Expr {
	e := &ast.Expr{Terms: terms}
	for i, t := range terms {
		if i == 0 {
			e.Span = t.TermSpan()
			continue
		}
		e.Span = e.Span.Cover(t.TermSpan())
	}
	return e
}

func (b *astBuilder) bnd(name string, value *ast.Expr) *ast.Bnd {
	return &ast.Bnd{Name: name, NameSpan: b.sp(uint32(len(name))), Span: value.Span, Value: value}
}

func (b *astBuilder) fn(name string, params []string, body *ast.Expr) *ast.FnDef {
	fn := &ast.FnDef{Name: name, NameSpan: b.sp(uint32(len(name))), Span: body.Span, Body: body}
	for _, p := range params {
		fn.Params = append(fn.Params, ast.Param{Name: p, Span: b.sp(uint32(len(p)))})
	}
	return fn
}

func (b *astBuilder) cond(c, ifTrue, ifFalse *ast.Expr) *ast.Cond {
	return &ast.Cond{Span: c.Span.Cover(ifFalse.Span), Cond: c, IfTrue: ifTrue, IfFalse: ifFalse}
}

func testModule(members ...ast.Member) *ast.Module {
	return &ast.Module{Name: "test", Path: "test.mml", Members: members}
}

func runStages(m *ast.Module, bag *diag.Bag, stages ...Stage) *ast.Module {
	ctx := NewContext(diag.BagReporter{Bag: bag})
	for _, s := range stages {
		m = s(m, ctx)
	}
	return m
}

func countCode(bag *diag.Bag, code diag.Code) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Code == code {
			n++
		}
	}
	return n
}

// renderExpr prints an expression with explicit grouping so tests can
// assert on rewritten shape: "(1 + (2 * 3))".
func renderExpr(e *ast.Expr) string {
	if e == nil {
		return "<nil>"
	}
	if len(e.Terms) == 1 {
		return renderTerm(e.Terms[0])
	}
	parts := make([]string, len(e.Terms))
	for i, t := range e.Terms {
		parts[i] = renderTerm(t)
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func renderTerm(t ast.Term) string {
	switch term := t.(type) {
	case *ast.Ref:
		return term.Name
	case *ast.Literal:
		switch term.Kind {
		case ast.LitInt:
			return strconv.FormatInt(term.Int, 10)
		case ast.LitFloat:
			return strconv.FormatFloat(term.Float, 'g', -1, 64)
		case ast.LitString:
			return strconv.Quote(term.Str)
		case ast.LitBool:
			return strconv.FormatBool(term.Bool)
		}
		return "()"
	case *ast.Expr:
		parts := make([]string, len(term.Terms))
		for i, tt := range term.Terms {
			parts[i] = renderTerm(tt)
		}
		return "(" + strings.Join(parts, " ") + ")"
	case *ast.Cond:
		return "if " + renderExpr(term.Cond) + " then " + renderExpr(term.IfTrue) + " else " + renderExpr(term.IfFalse)
	case *ast.Hole:
		return "?"
	case *ast.FnDef:
		if term.Name == "" {
			return "\\" + renderExpr(term.Body)
		}
		return term.Name + "=" + renderExpr(term.Body)
	}
	return "<?>"
}
