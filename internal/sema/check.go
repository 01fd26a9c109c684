// Package sema implements the semantic pipeline: operator registry
// injection, duplicate-name checking, reference resolution,
// precedence-climbing expression rewriting, type resolution,
// simplification and the member-error gate. Every stage is a pure
// transform from one module snapshot to the next; diagnostics flow
// into a diag.Reporter and never abort a stage early, except for the
// final gate.
package sema

import (
	"mml/internal/ast"
	"mml/internal/diag"
)

// Context carries the read-only collaborators stages need.
type Context struct {
	Reporter diag.Reporter
}

// NewContext builds a Context reporting into r.
func NewContext(r diag.Reporter) *Context {
	if r == nil {
		r = diag.NopReporter{}
	}
	return &Context{Reporter: r}
}

func (c *Context) report(d diag.Diagnostic) {
	c.Reporter.Report(d)
}

// Stage is one pipeline step. Stages clone their input and return the
// transformed copy; the input module is never mutated.
type Stage func(*ast.Module, *Context) *ast.Module

// Pipeline is the fixed stage order. Re-ordering is not supported:
// every stage relies on the postconditions of the ones before it.
func Pipeline() []Stage {
	return []Stage{
		RegisterOperators,
		CheckDuplicates,
		Resolve,
		Rewrite,
		ResolveTypes,
		Simplify,
		CheckMemberErrors,
	}
}

// Check runs the whole pipeline. It returns the resolved module and
// true only when no error diagnostics were produced; callers must not
// use the module otherwise (partial output is never "success").
func Check(m *ast.Module, r diag.Reporter) (*ast.Module, bool) {
	bag := diag.NewBag(1 << 16)
	tee := teeReporter{a: diag.BagReporter{Bag: bag}, b: r}
	ctx := NewContext(tee)
	for _, stage := range Pipeline() {
		m = stage(m, ctx)
	}
	if bag.HasErrors() {
		return nil, false
	}
	return m, true
}

type teeReporter struct {
	a, b diag.Reporter
}

func (t teeReporter) Report(d diag.Diagnostic) {
	t.a.Report(d)
	if t.b != nil {
		t.b.Report(d)
	}
}
