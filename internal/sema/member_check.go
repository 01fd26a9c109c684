package sema

import (
	"mml/internal/ast"
	"mml/internal/diag"
)

// CheckMemberErrors is the last gate before code generation: any
// MemberError placeholder still in the tree becomes a fatal
// diagnostic. Unlike every other stage this one exists to fail:
// code generation has no recovery for an incomplete member.
func CheckMemberErrors(m *ast.Module, ctx *Context) *ast.Module {
	out := m.Clone()
	for _, mem := range out.Members {
		broken, ok := mem.(*ast.MemberError)
		if !ok {
			continue
		}
		msg := broken.Message
		if msg == "" {
			msg = "module member could not be compiled"
		}
		d := diag.NewError(diag.SemaMemberError, diag.StageMemberCheck, broken.Span, msg)
		if broken.FailedText != "" {
			d = d.WithNote(broken.Span, "failed source: "+broken.FailedText)
		}
		ctx.report(d)
	}
	return out
}
