package sema

import (
	"fmt"

	"mml/internal/ast"
	"mml/internal/diag"
	"mml/internal/source"
)

// CheckDuplicates rejects colliding top-level member names. Every
// later occurrence of an already-seen name is reported, so `x y x x`
// yields two diagnostics, both pointing back at the first `x`.
// Nested scopes are the resolver's business.
func CheckDuplicates(m *ast.Module, ctx *Context) *ast.Module {
	out := m.Clone()
	seen := make(map[string]source.Span, len(out.Members))
	for _, mem := range out.Members {
		name := mem.MemberName()
		if name == "" {
			continue
		}
		span := memberNameSpan(mem)
		first, dup := seen[name]
		if !dup {
			seen[name] = span
			continue
		}
		ctx.report(diag.NewError(diag.SemaDuplicateName, diag.StageDuplicates, span,
			fmt.Sprintf("`%s` is declared more than once in module %s", name, out.Name)).
			WithNote(first, "first declared here"))
	}
	return out
}

func memberNameSpan(m ast.Member) source.Span {
	switch mem := m.(type) {
	case *ast.FnDef:
		if !mem.NameSpan.Empty() {
			return mem.NameSpan
		}
	case *ast.Bnd:
		if !mem.NameSpan.Empty() {
			return mem.NameSpan
		}
	}
	return m.MemberSpan()
}
