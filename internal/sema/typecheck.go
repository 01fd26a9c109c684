package sema

import (
	"fmt"

	"mml/internal/ast"
	"mml/internal/diag"
	"mml/internal/source"
	"mml/internal/types"
)

// ResolveTypes annotates every expression and term with a type.
// Declared annotations are authoritative seeds; everything else comes
// from literal types, function signatures and operator rules via local
// unification (no generalization). Errors are collected best-effort:
// a failed member poisons only its own subtree.
func ResolveTypes(m *ast.Module, ctx *Context) *ast.Module {
	out := m.Clone()
	tc := &typeChecker{
		ctx:  ctx,
		ops:  out.Operators,
		env:  make(map[any]types.Type),
		vars: &types.VarSource{},
	}
	// Seed every member first so bodies can reference siblings and
	// themselves regardless of declaration order.
	for _, mem := range out.Members {
		switch it := mem.(type) {
		case *ast.FnDef:
			tc.env[it] = tc.seedFn(it)
		case *ast.Bnd:
			tc.env[it] = tc.specOrVar(it.Type)
		}
	}
	for _, mem := range out.Members {
		switch it := mem.(type) {
		case *ast.FnDef:
			tc.checkFnBody(it)
		case *ast.Bnd:
			got := tc.expr(it.Value)
			want := tc.env[it]
			if !types.Unify(want, got) {
				tc.report(diag.TypeMismatch, it.Value.Span,
					"`%s` is annotated as %s but its value has type %s",
					it.Name, types.Describe(want), types.Describe(got))
			}
		}
	}
	return out
}

type typeChecker struct {
	ctx  *Context
	ops  map[string]ast.OperatorDef
	env  map[any]types.Type
	vars *types.VarSource
}

func (tc *typeChecker) report(code diag.Code, span source.Span, format string, args ...any) {
	tc.ctx.report(diag.NewError(code, diag.StageTypes, span, fmt.Sprintf(format, args...)))
}

// fromSpec converts a syntactic annotation; nil stays nil.
func (tc *typeChecker) fromSpec(ts *ast.TypeSpec) types.Type {
	if ts == nil {
		return nil
	}
	if ts.IsArrow() {
		return &types.Fn{Param: tc.specOrVar(ts.From), Result: tc.specOrVar(ts.To)}
	}
	if prim, ok := types.Primitive(ts.Name); ok {
		return prim
	}
	return &types.Named{Name: ts.Name}
}

func (tc *typeChecker) specOrVar(ts *ast.TypeSpec) types.Type {
	if t := tc.fromSpec(ts); t != nil {
		return t
	}
	return tc.vars.Fresh()
}

// seedFn assigns parameter and return seeds and returns the curried
// function type. A zero-parameter definition is typed as its body.
func (tc *typeChecker) seedFn(fn *ast.FnDef) types.Type {
	params := make([]types.Type, len(fn.Params))
	for i := range fn.Params {
		p := &fn.Params[i]
		params[i] = tc.specOrVar(p.Type)
		tc.env[p] = params[i]
	}
	ret := tc.specOrVar(fn.ReturnType)
	tc.env[retKey{fn}] = ret
	return types.NewFn(ret, params...)
}

// retKey keys the return seed separately from the full fn type.
type retKey struct{ fn *ast.FnDef }

func (tc *typeChecker) checkFnBody(fn *ast.FnDef) {
	got := tc.expr(fn.Body)
	want := tc.env[retKey{fn}]
	if want == nil {
		return
	}
	if !types.Unify(want, got) {
		span := fn.NameSpan
		if fn.Body != nil {
			span = fn.Body.Span
		}
		tc.report(diag.TypeMismatch, span,
			"`%s` declares return type %s but its body has type %s",
			fn.Name, types.Describe(want), types.Describe(got))
	}
}

// expr types a rewritten expression node and records the result on it.
func (tc *typeChecker) expr(e *ast.Expr) types.Type {
	if e == nil {
		return types.Unit
	}
	t := tc.exprShape(e)
	e.Type = t
	return t
}

func (tc *typeChecker) exprShape(e *ast.Expr) types.Type {
	if len(e.Terms) == 0 {
		return types.Unit
	}

	// Block: named local bindings prefix the value term.
	if fn, ok := e.Terms[0].(*ast.FnDef); ok && fn.Name != "" {
		var last types.Type = types.Unit
		for _, t := range e.Terms {
			if stmt, isFn := t.(*ast.FnDef); isFn && stmt.Name != "" {
				tc.env[stmt] = tc.seedFn(stmt)
			}
			last = tc.term(t)
		}
		return last
	}

	if len(e.Terms) == 3 {
		if opRef, ok := e.Terms[1].(*ast.Ref); ok && tc.isOperator(opRef) {
			return tc.operatorApp(e.Terms[0], opRef, e.Terms[2])
		}
	}

	// Application chain, left-associated by the rewriter.
	t := tc.term(e.Terms[0])
	fnTerm := e.Terms[0]
	for _, arg := range e.Terms[1:] {
		t = tc.apply(fnTerm, t, arg)
		fnTerm = nil
	}
	return t
}

func (tc *typeChecker) isOperator(ref *ast.Ref) bool {
	if ref.Target != nil {
		return ref.Target.Kind == ast.DeclOperator
	}
	_, ok := tc.ops[ref.Name]
	return ok
}

// apply types one application step. fnTerm is non-nil only for the
// head of a chain, where diagnostics can name the applied value.
func (tc *typeChecker) apply(fnTerm ast.Term, fnType types.Type, arg ast.Term) types.Type {
	argType := tc.term(arg)
	switch target := types.Prune(fnType).(type) {
	case *types.Fn:
		if !types.Unify(target.Param, argType) {
			tc.report(diag.TypeMismatch, arg.TermSpan(),
				"argument type mismatch: expected %s, got %s",
				types.Describe(target.Param), types.Describe(argType))
		}
		return target.Result
	case *types.Var:
		result := tc.vars.Fresh()
		types.Unify(target, &types.Fn{Param: argType, Result: result})
		return result
	default:
		span := arg.TermSpan()
		if fnTerm != nil {
			span = fnTerm.TermSpan()
		}
		// When the target is a plain value reference the message must
		// name the value, not read like a type error about a type name.
		if ref, ok := fnTerm.(*ast.Ref); ok && ref.Target != nil && ref.Target.Kind != ast.DeclOperator {
			tc.report(diag.TypeInvalidApplication, span,
				"cannot apply `%s`: it is a value of type %s, not a function",
				ref.Name, types.Describe(fnType))
		} else {
			tc.report(diag.TypeInvalidApplication, span,
				"cannot apply a value of type %s: not a function",
				types.Describe(fnType))
		}
		return tc.vars.Fresh()
	}
}

func (tc *typeChecker) operatorApp(left ast.Term, opRef *ast.Ref, right ast.Term) types.Type {
	lt := tc.term(left)
	rt := tc.term(right)
	op := opRef.Name

	result := func() types.Type {
		switch op {
		case "+", "-", "*", "/":
			tc.unifyOperands(op, lt, rt, right)
			tc.requireNumeric(op, lt, opRef.Span)
			return lt
		case "::":
			tc.unifyOperands(op, lt, rt, right)
			return lt
		case "<", "<=", ">", ">=":
			tc.unifyOperands(op, lt, rt, right)
			tc.requireNumeric(op, lt, opRef.Span)
			return types.Bool
		case "=", "!=":
			tc.unifyOperands(op, lt, rt, right)
			return types.Bool
		case "&&", "||":
			tc.requireBool(op, lt, left)
			tc.requireBool(op, rt, right)
			return types.Bool
		default:
			// Protocol operator: operands agree, result stays open
			// until an instance pins it down.
			tc.unifyOperands(op, lt, rt, right)
			return tc.vars.Fresh()
		}
	}()

	opRef.Type = types.NewFn(result, lt, rt)
	return result
}

func (tc *typeChecker) unifyOperands(op string, lt, rt types.Type, right ast.Term) {
	if !types.Unify(lt, rt) {
		tc.report(diag.TypeMismatch, right.TermSpan(),
			"operands of `%s` must have the same type: %s vs %s",
			op, types.Describe(lt), types.Describe(rt))
	}
}

func (tc *typeChecker) requireNumeric(op string, t types.Type, span source.Span) {
	switch types.Prune(t) {
	case types.Int, types.Float:
		return
	}
	if _, open := types.Prune(t).(*types.Var); open {
		// Unannotated operand; leave it to later unification.
		return
	}
	tc.report(diag.TypeMismatch, span,
		"operator `%s` requires Int or Float operands, got %s", op, types.Describe(t))
}

func (tc *typeChecker) requireBool(op string, t types.Type, at ast.Term) {
	if !types.Unify(t, types.Bool) {
		tc.report(diag.TypeMismatch, at.TermSpan(),
			"operands of `%s` must be Bool, got %s", op, types.Describe(t))
	}
}

func (tc *typeChecker) term(t ast.Term) types.Type {
	switch term := t.(type) {
	case *ast.Literal:
		return literalType(term)
	case *ast.Ref:
		tt := tc.refType(term)
		term.Type = tt
		return tt
	case *ast.Expr:
		return tc.expr(term)
	case *ast.Cond:
		condT := tc.expr(term.Cond)
		if !types.Unify(condT, types.Bool) {
			tc.report(diag.TypeCondNotBool, term.Cond.Span,
				"condition must be Bool, got %s", types.Describe(condT))
		}
		thenT := tc.expr(term.IfTrue)
		elseT := tc.expr(term.IfFalse)
		if !types.Unify(thenT, elseT) {
			tc.report(diag.TypeBranchDiverge, term.IfFalse.Span,
				"branches disagree: %s vs %s", types.Describe(thenT), types.Describe(elseT))
		}
		term.Type = thenT
		return thenT
	case *ast.Hole:
		tc.report(diag.TypeUnresolvable, term.Span,
			"cannot determine a type for this expression")
		return tc.vars.Fresh()
	case *ast.FnDef:
		fnType, ok := tc.env[term]
		if !ok {
			fnType = tc.seedFn(term)
			tc.env[term] = fnType
		}
		tc.checkFnBody(term)
		return fnType
	}
	return tc.vars.Fresh()
}

func (tc *typeChecker) refType(ref *ast.Ref) types.Type {
	target := ref.Target
	if target == nil {
		// Unresolved; already reported by the resolver.
		return tc.vars.Fresh()
	}
	switch target.Kind {
	case ast.DeclFn, ast.DeclLocal:
		if t, ok := tc.env[target.Fn]; ok {
			return t
		}
	case ast.DeclBnd:
		if t, ok := tc.env[target.Bnd]; ok {
			return t
		}
	case ast.DeclParam:
		if t, ok := tc.env[target.Param]; ok {
			return t
		}
	case ast.DeclOperator:
		return tc.vars.Fresh()
	}
	return tc.vars.Fresh()
}

func literalType(l *ast.Literal) types.Type {
	switch l.Kind {
	case ast.LitInt:
		return types.Int
	case ast.LitFloat:
		return types.Float
	case ast.LitString:
		return types.String
	case ast.LitBool:
		return types.Bool
	default:
		return types.Unit
	}
}
