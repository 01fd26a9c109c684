package ast

import "mml/internal/source"

// Member is a top-level module item. Exactly four concrete kinds:
// FnDef, Bnd, Comment, MemberError. MemberError must not survive the
// member-check gate.
type Member interface {
	MemberName() string
	MemberSpan() source.Span
	isMember()
}

// TypeSpec is a syntactic type annotation. Either a plain name
// (From/To nil) or an arrow From -> To.
type TypeSpec struct {
	Span source.Span
	Name string
	From *TypeSpec
	To   *TypeSpec
}

// IsArrow reports whether the annotation denotes a function type.
func (t *TypeSpec) IsArrow() bool {
	return t != nil && t.From != nil && t.To != nil
}

func (t *TypeSpec) String() string {
	if t == nil {
		return "_"
	}
	if t.IsArrow() {
		return t.From.String() + " -> " + t.To.String()
	}
	return t.Name
}

// Param is one function parameter, optionally annotated.
type Param struct {
	Name string
	Span source.Span
	Type *TypeSpec
}

// FnDef declares a function. It doubles as a Term for local bindings
// and lambdas: a zero-parameter local FnDef is a let-binding.
type FnDef struct {
	Name       string
	NameSpan   source.Span
	Span       source.Span
	Params     []Param
	Body       *Expr
	ReturnType *TypeSpec
}

func (f *FnDef) MemberName() string      { return f.Name }
func (f *FnDef) MemberSpan() source.Span { return f.Span }
func (f *FnDef) isMember()               {}

// Bnd is a top-level value binding: `let name = value;`.
type Bnd struct {
	Name     string
	NameSpan source.Span
	Span     source.Span
	Value    *Expr
	Type     *TypeSpec
}

func (b *Bnd) MemberName() string      { return b.Name }
func (b *Bnd) MemberSpan() source.Span { return b.Span }
func (b *Bnd) isMember()               {}

// Comment is preserved so tooling can reattach documentation.
type Comment struct {
	Span source.Span
	Text string
}

func (c *Comment) MemberName() string      { return "" }
func (c *Comment) MemberSpan() source.Span { return c.Span }
func (c *Comment) isMember()               {}

// MemberError marks a member the parser could not produce. The
// pipeline carries it until the final gate turns it into a fatal
// diagnostic; code generation never sees one.
type MemberError struct {
	Span       source.Span
	Message    string
	FailedText string
}

func (e *MemberError) MemberName() string      { return "" }
func (e *MemberError) MemberSpan() source.Span { return e.Span }
func (e *MemberError) isMember()               {}
