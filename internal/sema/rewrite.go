package sema

import (
	"fmt"

	"mml/internal/ast"
	"mml/internal/diag"
	"mml/internal/source"
)

// Rewrite turns flat term sequences into precedence-correct trees.
//
// Post-rewrite an Expr holds one of:
//
//	[x]            single operand (wrapper, removed later by Simplify)
//	[f, x]         function application (juxtaposition, left-assoc)
//	[a, op, b]     one operator application, operands already nested
//	[let..., v]    block: named local bindings followed by the value
//
// Keeping operators infix makes the rewriter idempotent: climbing an
// already-shaped [a, op, b] reproduces the same shape.
func Rewrite(m *ast.Module, ctx *Context) *ast.Module {
	out := m.Clone()
	rw := &rewriter{ctx: ctx, ops: out.Operators}
	for _, mem := range out.Members {
		switch it := mem.(type) {
		case *ast.FnDef:
			rw.expr(it.Body)
		case *ast.Bnd:
			rw.expr(it.Value)
		}
	}
	return out
}

type rewriter struct {
	ctx *Context
	ops map[string]ast.OperatorDef
}

// expr rewrites e in place (e is already this stage's private clone).
func (rw *rewriter) expr(e *ast.Expr) {
	if e == nil || len(e.Terms) == 0 {
		return
	}
	for _, t := range e.Terms {
		rw.interior(t)
	}

	// Named local bindings are statements, not operands; they prefix
	// the block and scope over the terms after them.
	var stmts []ast.Term
	var operands []ast.Term
	for _, t := range e.Terms {
		if fn, ok := t.(*ast.FnDef); ok && fn.Name != "" {
			stmts = append(stmts, fn)
			continue
		}
		operands = append(operands, t)
	}

	c := &climber{rw: rw, terms: operands}
	tree := c.parse(0)
	// The climb admits no operator below precedence 0. Anything it
	// left behind (such an operator and the operands stranded after
	// it) must be reported, never dropped.
	for c.pos < len(c.terms) {
		if ref, _, isOp := c.operatorAt(c.pos); isOp {
			rw.ctx.report(diag.NewError(diag.RewriteInvalidApplication, diag.StageRewrite, ref.Span,
				fmt.Sprintf("operator `%s` cannot be applied in this expression", ref.Name)))
		} else {
			t := c.terms[c.pos]
			rw.ctx.report(diag.NewError(diag.RewriteInvalidApplication, diag.StageRewrite, t.TermSpan(),
				"value is stranded after an inapplicable operator"))
		}
		c.pos++
	}

	switch {
	case tree == nil && stmts == nil:
		// Only unplaceable operators; leave a hole so later stages
		// have a node to hang on to.
		e.Terms = []ast.Term{&ast.Hole{Span: e.Span}}
	case tree == nil:
		e.Terms = append(stmts, &ast.Literal{Kind: ast.LitUnit, Span: e.Span})
	case stmts != nil:
		e.Terms = append(stmts, tree)
	default:
		if sub, ok := tree.(*ast.Expr); ok {
			// Splice the result into e so the original span survives.
			e.Terms = sub.Terms
			return
		}
		e.Terms = []ast.Term{tree}
	}
}

// interior rewrites expressions nested inside a term; the term itself
// stays a single opaque operand for the enclosing climb.
func (rw *rewriter) interior(t ast.Term) {
	switch term := t.(type) {
	case *ast.Expr:
		rw.expr(term)
	case *ast.Cond:
		rw.expr(term.Cond)
		rw.expr(term.IfTrue)
		rw.expr(term.IfFalse)
	case *ast.FnDef:
		rw.expr(term.Body)
	}
}

type climber struct {
	rw    *rewriter
	terms []ast.Term
	pos   int
}

// operatorAt returns the operator fixity when the term at pos is an
// operator reference in scope.
func (c *climber) operatorAt(pos int) (*ast.Ref, ast.OperatorDef, bool) {
	if pos >= len(c.terms) {
		return nil, ast.OperatorDef{}, false
	}
	ref, ok := c.terms[pos].(*ast.Ref)
	if !ok {
		return nil, ast.OperatorDef{}, false
	}
	if ref.Target != nil && ref.Target.Kind != ast.DeclOperator {
		return nil, ast.OperatorDef{}, false
	}
	def, ok := c.rw.ops[ref.Name]
	if !ok {
		return nil, ast.OperatorDef{}, false
	}
	return ref, def, true
}

// operand consumes the longest run of juxtaposed operands and folds
// it into a left-associated application chain: `f x y` = `(f x) y`.
// Application binds tighter than every infix operator. An operator
// found where an operand was expected is reported and skipped.
func (c *climber) operand() ast.Term {
	for {
		ref, _, isOp := c.operatorAt(c.pos)
		if !isOp {
			break
		}
		c.rw.ctx.report(diag.NewError(diag.RewriteInvalidApplication, diag.StageRewrite, ref.Span,
			fmt.Sprintf("operator `%s` used where a value was expected", ref.Name)))
		c.pos++
	}
	var lhs ast.Term
	for c.pos < len(c.terms) {
		if _, _, isOp := c.operatorAt(c.pos); isOp {
			break
		}
		t := c.terms[c.pos]
		c.pos++
		if lhs == nil {
			lhs = t
			continue
		}
		lhs = &ast.Expr{
			Span:  coverTerms(lhs, t),
			Terms: []ast.Term{lhs, t},
		}
	}
	return lhs
}

// parse is the precedence climb. minPrec is the loosest operator this
// level may consume; left-associative operators recurse one level
// tighter, right-associative ones at their own level so equal
// precedence groups rightward.
func (c *climber) parse(minPrec int) ast.Term {
	lhs := c.operand()
	for {
		ref, def, isOp := c.operatorAt(c.pos)
		if !isOp || def.Precedence < minPrec {
			return lhs
		}
		c.pos++
		next := def.Precedence
		if def.Assoc == ast.AssocLeft {
			next++
		}
		rhs := c.parse(next)
		if rhs == nil {
			c.rw.ctx.report(diag.NewError(diag.RewriteInvalidApplication, diag.StageRewrite, ref.Span,
				fmt.Sprintf("operator `%s` is missing its right operand", ref.Name)))
			rhs = &ast.Hole{Span: ref.Span}
		}
		if lhs == nil {
			lhs = &ast.Hole{Span: ref.Span}
		}
		lhs = &ast.Expr{
			Span:  coverTerms(lhs, rhs),
			Terms: []ast.Term{lhs, ref, rhs},
		}
	}
}

func coverTerms(a, b ast.Term) source.Span {
	return a.TermSpan().Cover(b.TermSpan())
}
