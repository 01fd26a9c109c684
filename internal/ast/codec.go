package ast

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"mml/internal/source"
)

// Wire format for raw modules as emitted by the external parser.
// Only the pre-semantic surface is carried: no resolution targets, no
// types. Schema changes must bump codecSchema.

const codecSchema uint16 = 1

type wirePayload struct {
	Schema uint16     `msgpack:"schema"`
	Module wireModule `msgpack:"module"`
}

type wireModule struct {
	Name      string         `msgpack:"name"`
	Public    bool           `msgpack:"public"`
	Path      string         `msgpack:"path"`
	Members   []wireMember   `msgpack:"members"`
	Operators []wireOperator `msgpack:"operators,omitempty"`
}

type wireSpan struct {
	File  uint32 `msgpack:"f"`
	Start uint32 `msgpack:"s"`
	End   uint32 `msgpack:"e"`
}

type wireOperator struct {
	Name       string   `msgpack:"name"`
	Precedence int      `msgpack:"prec"`
	RightAssoc bool     `msgpack:"right"`
	Arity      int      `msgpack:"arity"`
	Span       wireSpan `msgpack:"span"`
}

type wireTypeSpec struct {
	Name string        `msgpack:"name,omitempty"`
	From *wireTypeSpec `msgpack:"from,omitempty"`
	To   *wireTypeSpec `msgpack:"to,omitempty"`
	Span wireSpan      `msgpack:"span"`
}

type wireParam struct {
	Name string        `msgpack:"name"`
	Span wireSpan      `msgpack:"span"`
	Type *wireTypeSpec `msgpack:"type,omitempty"`
}

type wireMember struct {
	Kind     string        `msgpack:"kind"`
	Name     string        `msgpack:"name,omitempty"`
	NameSpan wireSpan      `msgpack:"nameSpan"`
	Span     wireSpan      `msgpack:"span"`
	Params   []wireParam   `msgpack:"params,omitempty"`
	Body     *wireExpr     `msgpack:"body,omitempty"`
	Value    *wireExpr     `msgpack:"value,omitempty"`
	Type     *wireTypeSpec `msgpack:"type,omitempty"`
	Text     string        `msgpack:"text,omitempty"`
	Failed   string        `msgpack:"failed,omitempty"`
}

type wireExpr struct {
	Span  wireSpan   `msgpack:"span"`
	Terms []wireTerm `msgpack:"terms"`
}

type wireTerm struct {
	Kind string   `msgpack:"kind"`
	Span wireSpan `msgpack:"span"`

	Name  string  `msgpack:"name,omitempty"`
	Int   int64   `msgpack:"int,omitempty"`
	Float float64 `msgpack:"float,omitempty"`
	Str   string  `msgpack:"str,omitempty"`
	Bool  bool    `msgpack:"bool,omitempty"`

	Expr    *wireExpr `msgpack:"expr,omitempty"`
	Cond    *wireExpr `msgpack:"cond,omitempty"`
	IfTrue  *wireExpr `msgpack:"ifTrue,omitempty"`
	IfFalse *wireExpr `msgpack:"ifFalse,omitempty"`

	Fn *wireMember `msgpack:"fn,omitempty"`
}

// DecodeModule deserializes a raw module. file rebases all spans onto
// the FileID the driver registered for the module's source text.
func DecodeModule(data []byte, file source.FileID) (*Module, error) {
	var payload wirePayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode module: %w", err)
	}
	if payload.Schema != codecSchema {
		return nil, fmt.Errorf("decode module: schema %d, want %d", payload.Schema, codecSchema)
	}
	d := decoder{file: file}
	return d.module(&payload.Module), nil
}

// EncodeModule serializes a raw module. Resolution targets and types
// are not carried; encoding a resolved module loses them.
func EncodeModule(m *Module) ([]byte, error) {
	e := encoder{}
	payload := wirePayload{Schema: codecSchema, Module: e.module(m)}
	data, err := msgpack.Marshal(&payload)
	if err != nil {
		return nil, fmt.Errorf("encode module: %w", err)
	}
	return data, nil
}

type decoder struct {
	file source.FileID
}

func (d decoder) span(w wireSpan) source.Span {
	return source.Span{File: d.file, Start: w.Start, End: w.End}
}

func (d decoder) module(w *wireModule) *Module {
	m := &Module{Name: w.Name, Path: w.Path}
	if w.Public {
		m.Visibility = Public
	}
	for i := range w.Members {
		m.Members = append(m.Members, d.member(&w.Members[i]))
	}
	for _, op := range w.Operators {
		def := OperatorDef{
			Name:       op.Name,
			Precedence: op.Precedence,
			Arity:      op.Arity,
			Origin:     OpProtocol,
			Span:       d.span(op.Span),
		}
		if op.RightAssoc {
			def.Assoc = AssocRight
		}
		m.OperatorDecls = append(m.OperatorDecls, def)
	}
	return m
}

func (d decoder) member(w *wireMember) Member {
	switch w.Kind {
	case "fn":
		return d.fnDef(w)
	case "bnd":
		return &Bnd{
			Name:     w.Name,
			NameSpan: d.span(w.NameSpan),
			Span:     d.span(w.Span),
			Value:    d.expr(w.Value),
			Type:     d.typeSpec(w.Type),
		}
	case "comment":
		return &Comment{Span: d.span(w.Span), Text: w.Text}
	default:
		msg := w.Text
		if msg == "" {
			msg = fmt.Sprintf("unparsable member of kind %q", w.Kind)
		}
		return &MemberError{
			Span:       d.span(w.Span),
			Message:    msg,
			FailedText: w.Failed,
		}
	}
}

func (d decoder) fnDef(w *wireMember) *FnDef {
	fn := &FnDef{
		Name:       w.Name,
		NameSpan:   d.span(w.NameSpan),
		Span:       d.span(w.Span),
		Body:       d.expr(w.Body),
		ReturnType: d.typeSpec(w.Type),
	}
	for _, p := range w.Params {
		fn.Params = append(fn.Params, Param{
			Name: p.Name,
			Span: d.span(p.Span),
			Type: d.typeSpec(p.Type),
		})
	}
	return fn
}

func (d decoder) typeSpec(w *wireTypeSpec) *TypeSpec {
	if w == nil {
		return nil
	}
	return &TypeSpec{
		Span: d.span(w.Span),
		Name: w.Name,
		From: d.typeSpec(w.From),
		To:   d.typeSpec(w.To),
	}
}

func (d decoder) expr(w *wireExpr) *Expr {
	if w == nil {
		return nil
	}
	e := &Expr{Span: d.span(w.Span)}
	for i := range w.Terms {
		e.Terms = append(e.Terms, d.term(&w.Terms[i]))
	}
	return e
}

func (d decoder) term(w *wireTerm) Term {
	sp := d.span(w.Span)
	switch w.Kind {
	case "ref":
		return &Ref{Name: w.Name, Span: sp}
	case "int":
		return &Literal{Kind: LitInt, Span: sp, Int: w.Int}
	case "float":
		return &Literal{Kind: LitFloat, Span: sp, Float: w.Float}
	case "string":
		return &Literal{Kind: LitString, Span: sp, Str: w.Str}
	case "bool":
		return &Literal{Kind: LitBool, Span: sp, Bool: w.Bool}
	case "unit":
		return &Literal{Kind: LitUnit, Span: sp}
	case "expr":
		return d.expr(w.Expr)
	case "cond":
		return &Cond{
			Span:    sp,
			Cond:    d.expr(w.Cond),
			IfTrue:  d.expr(w.IfTrue),
			IfFalse: d.expr(w.IfFalse),
		}
	case "fn":
		return d.fnDef(w.Fn)
	default:
		return &Hole{Span: sp}
	}
}

type encoder struct{}

func (e encoder) span(s source.Span) wireSpan {
	return wireSpan{File: uint32(s.File), Start: s.Start, End: s.End}
}

func (e encoder) module(m *Module) wireModule {
	w := wireModule{Name: m.Name, Public: m.Visibility == Public, Path: m.Path}
	for _, mem := range m.Members {
		w.Members = append(w.Members, e.member(mem))
	}
	for _, op := range m.OperatorDecls {
		w.Operators = append(w.Operators, wireOperator{
			Name:       op.Name,
			Precedence: op.Precedence,
			RightAssoc: op.Assoc == AssocRight,
			Arity:      op.Arity,
			Span:       e.span(op.Span),
		})
	}
	return w
}

func (e encoder) member(m Member) wireMember {
	switch mem := m.(type) {
	case *FnDef:
		return e.fnDef(mem)
	case *Bnd:
		return wireMember{
			Kind:     "bnd",
			Name:     mem.Name,
			NameSpan: e.span(mem.NameSpan),
			Span:     e.span(mem.Span),
			Value:    e.expr(mem.Value),
			Type:     e.typeSpec(mem.Type),
		}
	case *Comment:
		return wireMember{Kind: "comment", Span: e.span(mem.Span), Text: mem.Text}
	case *MemberError:
		return wireMember{
			Kind:   "error",
			Span:   e.span(mem.Span),
			Text:   mem.Message,
			Failed: mem.FailedText,
		}
	}
	return wireMember{Kind: "error"}
}

func (e encoder) fnDef(f *FnDef) wireMember {
	w := wireMember{
		Kind:     "fn",
		Name:     f.Name,
		NameSpan: e.span(f.NameSpan),
		Span:     e.span(f.Span),
		Body:     e.expr(f.Body),
		Type:     e.typeSpec(f.ReturnType),
	}
	for _, p := range f.Params {
		w.Params = append(w.Params, wireParam{
			Name: p.Name,
			Span: e.span(p.Span),
			Type: e.typeSpec(p.Type),
		})
	}
	return w
}

func (e encoder) typeSpec(t *TypeSpec) *wireTypeSpec {
	if t == nil {
		return nil
	}
	return &wireTypeSpec{
		Name: t.Name,
		From: e.typeSpec(t.From),
		To:   e.typeSpec(t.To),
		Span: e.span(t.Span),
	}
}

func (e encoder) expr(x *Expr) *wireExpr {
	if x == nil {
		return nil
	}
	w := &wireExpr{Span: e.span(x.Span)}
	for _, t := range x.Terms {
		w.Terms = append(w.Terms, e.term(t))
	}
	return w
}

func (e encoder) term(t Term) wireTerm {
	switch term := t.(type) {
	case *Ref:
		return wireTerm{Kind: "ref", Span: e.span(term.Span), Name: term.Name}
	case *Literal:
		w := wireTerm{Span: e.span(term.Span)}
		switch term.Kind {
		case LitInt:
			w.Kind, w.Int = "int", term.Int
		case LitFloat:
			w.Kind, w.Float = "float", term.Float
		case LitString:
			w.Kind, w.Str = "string", term.Str
		case LitBool:
			w.Kind, w.Bool = "bool", term.Bool
		case LitUnit:
			w.Kind = "unit"
		}
		return w
	case *Expr:
		return wireTerm{Kind: "expr", Span: e.span(term.Span), Expr: e.expr(term)}
	case *Cond:
		return wireTerm{
			Kind:    "cond",
			Span:    e.span(term.Span),
			Cond:    e.expr(term.Cond),
			IfTrue:  e.expr(term.IfTrue),
			IfFalse: e.expr(term.IfFalse),
		}
	case *FnDef:
		fn := e.fnDef(term)
		return wireTerm{Kind: "fn", Span: e.span(term.Span), Fn: &fn}
	case *Hole:
		return wireTerm{Kind: "hole", Span: e.span(term.Span)}
	}
	return wireTerm{Kind: "hole"}
}
