package interp

import (
	"errors"
	"testing"

	"mml/internal/ast"
	"mml/internal/diag"
	"mml/internal/sema"
	"mml/internal/source"
)

// Raw module builders; spans only need to be distinct.
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

func (b *astBuilder) strLit(v string) *ast.Literal {
	return &ast.Literal{Kind: ast.LitString, Span: b.sp(uint32(len(v)) + 2), Str: v}
}

func (b *astBuilder) boolLit(v bool) *ast.Literal {
	return &ast.Literal{Kind: ast.LitBool, Span: b.sp(4), Bool: v}
}

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

// run resolves the module and evaluates its entry point.
func run(t *testing.T, entry string, members ...ast.Member) Value {
	t.Helper()
	bag := diag.NewBag(32)
	resolved, ok := sema.Check(&ast.Module{Name: "test", Members: members}, diag.BagReporter{Bag: bag})
	if !ok {
		t.Fatalf("module does not resolve: %v", bag.Items())
	}
	v, err := Interpret(resolved, entry)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	return v
}

func TestInterpret_Arithmetic(t *testing.T) {
	tests := []struct {
		name     string
		value    func(b *astBuilder) *ast.Expr
		expected Value
	}{
		{
			name: "precedence",
			value: func(b *astBuilder) *ast.Expr {
				return b.flat(b.intLit(1), b.ref("+"), b.intLit(2), b.ref("*"), b.intLit(3))
			},
			expected: Value{Kind: ValInt, Int: 7},
		},
		{
			name: "left associative subtraction",
			value: func(b *astBuilder) *ast.Expr {
				return b.flat(b.intLit(10), b.ref("-"), b.intLit(3), b.ref("-"), b.intLit(2))
			},
			expected: Value{Kind: ValInt, Int: 5},
		},
		{
			name: "string concatenation",
			value: func(b *astBuilder) *ast.Expr {
				return b.flat(b.strLit("foo"), b.ref("+"), b.strLit("bar"))
			},
			expected: Value{Kind: ValString, Str: "foobar"},
		},
		{
			name: "comparison",
			value: func(b *astBuilder) *ast.Expr {
				return b.flat(b.intLit(1), b.ref("<"), b.intLit(2))
			},
			expected: Value{Kind: ValBool, Bool: true},
		},
		{
			name: "equality",
			value: func(b *astBuilder) *ast.Expr {
				return b.flat(b.strLit("a"), b.ref("!="), b.strLit("b"))
			},
			expected: Value{Kind: ValBool, Bool: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &astBuilder{}
			got := run(t, "main", b.bnd("main", tt.value(b)))
			if got != tt.expected {
				t.Errorf("main = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestInterpret_Conditional(t *testing.T) {
	b := &astBuilder{}
	c := b.cond(
		b.flat(b.intLit(1), b.ref("<"), b.intLit(2)),
		b.flat(b.strLit("yes")),
		b.flat(b.strLit("no")),
	)
	got := run(t, "main", b.bnd("main", b.flat(c)))
	if got.Kind != ValString || got.Str != "yes" {
		t.Errorf("main = %v, want yes", got)
	}
}

func TestInterpret_FunctionCalls(t *testing.T) {
	b := &astBuilder{}
	add := b.fn("add", []string{"a", "b"}, b.flat(b.ref("a"), b.ref("+"), b.ref("b")))
	main := b.bnd("main", b.flat(b.ref("add"), b.intLit(2), b.intLit(3)))
	got := run(t, "main", add, main)
	if got.Kind != ValInt || got.Int != 5 {
		t.Errorf("add 2 3 = %v, want 5", got)
	}
}

func TestInterpret_PartialApplication(t *testing.T) {
	b := &astBuilder{}
	add := b.fn("add", []string{"a", "b"}, b.flat(b.ref("a"), b.ref("+"), b.ref("b")))
	inc := b.bnd("inc", b.flat(b.ref("add"), b.intLit(1)))
	main := b.bnd("main", b.flat(b.ref("inc"), b.intLit(5)))
	got := run(t, "main", add, inc, main)
	if got.Kind != ValInt || got.Int != 6 {
		t.Errorf("inc 5 = %v, want 6", got)
	}
}

func TestInterpret_Recursion(t *testing.T) {
	b := &astBuilder{}
	body := b.flat(b.cond(
		b.flat(b.ref("n"), b.ref("<="), b.intLit(1)),
		b.flat(b.intLit(1)),
		b.flat(b.ref("n"), b.ref("*"), b.ref("fact"), b.flat(b.ref("n"), b.ref("-"), b.intLit(1))),
	))
	fact := b.fn("fact", []string{"n"}, body)
	main := b.fn("main", nil, b.flat(b.ref("fact"), b.intLit(5)))
	got := run(t, "main", fact, main)
	if got.Kind != ValInt || got.Int != 120 {
		t.Errorf("fact 5 = %v, want 120", got)
	}
}

func TestInterpret_LocalBindings(t *testing.T) {
	b := &astBuilder{}
	local := b.fn("y", nil, b.flat(b.intLit(40)))
	main := b.fn("main", nil, b.flat(local, b.ref("y"), b.ref("+"), b.intLit(2)))
	got := run(t, "main", main)
	if got.Kind != ValInt || got.Int != 42 {
		t.Errorf("main = %v, want 42", got)
	}
}

func TestInterpret_ForwardReference(t *testing.T) {
	// Top-level members may refer to later ones; evaluation is demand
	// driven, so declaration order does not matter.
	b := &astBuilder{}
	first := b.bnd("a", b.flat(b.ref("b")))
	second := b.bnd("b", b.flat(b.intLit(1)))
	got := run(t, "a", first, second)
	if got.Kind != ValInt || got.Int != 1 {
		t.Errorf("a = %v, want 1", got)
	}
}

func TestInterpret_ValueCycleFails(t *testing.T) {
	b := &astBuilder{}
	bag := diag.NewBag(32)
	m := &ast.Module{Name: "test", Members: []ast.Member{
		b.bnd("a", b.flat(b.ref("b"))),
		b.bnd("b", b.flat(b.ref("a"))),
	}}
	resolved, ok := sema.Check(m, diag.BagReporter{Bag: bag})
	if !ok {
		t.Fatalf("module does not resolve: %v", bag.Items())
	}
	if _, err := Interpret(resolved, "a"); err == nil {
		t.Error("mutually recursive values did not fail")
	}
}

func TestInterpret_ShortCircuit(t *testing.T) {
	b := &astBuilder{}
	// The right operand divides by zero; && must not evaluate it.
	poison := b.flat(b.intLit(1), b.ref("/"), b.intLit(0), b.ref("="), b.intLit(0))
	main := b.bnd("main", b.flat(b.boolLit(false), b.ref("&&"), poison))
	got := run(t, "main", main)
	if got.Kind != ValBool || got.Bool {
		t.Errorf("main = %v, want false", got)
	}
}

func TestInterpret_DivisionByZeroFails(t *testing.T) {
	b := &astBuilder{}
	bag := diag.NewBag(32)
	m := &ast.Module{Name: "test", Members: []ast.Member{
		b.bnd("main", b.flat(b.intLit(1), b.ref("/"), b.intLit(0))),
	}}
	resolved, ok := sema.Check(m, diag.BagReporter{Bag: bag})
	if !ok {
		t.Fatalf("module does not resolve: %v", bag.Items())
	}
	if _, err := Interpret(resolved, "main"); err == nil {
		t.Error("division by zero did not fail")
	}
}

func TestInterpret_EntryPointErrors(t *testing.T) {
	b := &astBuilder{}
	withParams := b.fn("main", []string{"x"}, b.flat(b.ref("x")))
	bag := diag.NewBag(32)
	resolved, ok := sema.Check(&ast.Module{Name: "test", Members: []ast.Member{withParams}}, diag.BagReporter{Bag: bag})
	if !ok {
		t.Fatalf("module does not resolve: %v", bag.Items())
	}

	if _, err := Interpret(resolved, "main"); !errors.Is(err, ErrEntryPoint) {
		t.Errorf("parameterized entry point: err = %v, want ErrEntryPoint", err)
	}
	if _, err := Interpret(resolved, "absent"); !errors.Is(err, ErrEntryPoint) {
		t.Errorf("missing entry point: err = %v, want ErrEntryPoint", err)
	}
}
