package sema

import (
	"fmt"

	"mml/internal/ast"
	"mml/internal/diag"
)

// Builtin fixities. Higher precedence binds tighter; juxtaposition
// (function application) outranks them all.
var builtinOperators = []ast.OperatorDef{
	{Name: "*", Precedence: 40, Assoc: ast.AssocLeft, Arity: 2, Origin: ast.OpBuiltin},
	{Name: "/", Precedence: 40, Assoc: ast.AssocLeft, Arity: 2, Origin: ast.OpBuiltin},
	{Name: "+", Precedence: 30, Assoc: ast.AssocLeft, Arity: 2, Origin: ast.OpBuiltin},
	{Name: "-", Precedence: 30, Assoc: ast.AssocLeft, Arity: 2, Origin: ast.OpBuiltin},
	{Name: "::", Precedence: 25, Assoc: ast.AssocRight, Arity: 2, Origin: ast.OpBuiltin},
	{Name: "<", Precedence: 20, Assoc: ast.AssocLeft, Arity: 2, Origin: ast.OpBuiltin},
	{Name: "<=", Precedence: 20, Assoc: ast.AssocLeft, Arity: 2, Origin: ast.OpBuiltin},
	{Name: ">", Precedence: 20, Assoc: ast.AssocLeft, Arity: 2, Origin: ast.OpBuiltin},
	{Name: ">=", Precedence: 20, Assoc: ast.AssocLeft, Arity: 2, Origin: ast.OpBuiltin},
	{Name: "=", Precedence: 15, Assoc: ast.AssocLeft, Arity: 2, Origin: ast.OpBuiltin},
	{Name: "!=", Precedence: 15, Assoc: ast.AssocLeft, Arity: 2, Origin: ast.OpBuiltin},
	{Name: "&&", Precedence: 12, Assoc: ast.AssocLeft, Arity: 2, Origin: ast.OpBuiltin},
	{Name: "||", Precedence: 11, Assoc: ast.AssocLeft, Arity: 2, Origin: ast.OpBuiltin},
}

// RegisterOperators injects builtin and protocol-declared operators
// into the module's operator table. A protocol operator whose fixity
// disagrees with an already-registered one is a conflict diagnostic,
// never a silent override; redeclaring the identical fixity is fine.
func RegisterOperators(m *ast.Module, ctx *Context) *ast.Module {
	out := m.Clone()
	out.Operators = make(map[string]ast.OperatorDef, len(builtinOperators)+len(out.OperatorDecls))
	for _, op := range builtinOperators {
		out.Operators[op.Name] = op
	}
	for _, op := range out.OperatorDecls {
		existing, ok := out.Operators[op.Name]
		if !ok {
			out.Operators[op.Name] = op
			continue
		}
		if existing.SameFixity(op) {
			continue
		}
		d := diag.NewError(diag.SemaDuplicateOperator, diag.StageOperators, op.Span,
			fmt.Sprintf("operator `%s` redeclared with conflicting fixity: %s, previously %s",
				op.Name, describeFixity(op), describeFixity(existing)))
		if !existing.Span.Empty() {
			d = d.WithNote(existing.Span, "previous declaration here")
		}
		ctx.report(d)
	}
	return out
}

func describeFixity(op ast.OperatorDef) string {
	return fmt.Sprintf("precedence %d, %s-associative", op.Precedence, op.Assoc)
}
