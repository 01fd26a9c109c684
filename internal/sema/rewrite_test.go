package sema

import (
	"testing"

	"mml/internal/ast"
	"mml/internal/diag"
)

// rewriteOne runs operator registry plus rewriting over a single
// binding and returns the rewritten value expression.
func rewriteOne(t *testing.T, bag *diag.Bag, value *ast.Expr) *ast.Expr {
	t.Helper()
	b := &astBuilder{off: 1000}
	m := runStages(testModule(b.bnd("it", value)), bag, RegisterOperators, Rewrite)
	return m.Members[0].(*ast.Bnd).Value
}

func TestRewrite_Precedence(t *testing.T) {
	tests := []struct {
		name     string
		value    func(b *astBuilder) *ast.Expr
		expected string
	}{
		{
			name: "multiplication binds tighter than addition",
			value: func(b *astBuilder) *ast.Expr {
				return b.flat(b.intLit(1), b.ref("+"), b.intLit(2), b.ref("*"), b.intLit(3))
			},
			expected: "(1 + (2 * 3))",
		},
		{
			name: "equal precedence groups left",
			value: func(b *astBuilder) *ast.Expr {
				return b.flat(b.intLit(1), b.ref("-"), b.intLit(2), b.ref("-"), b.intLit(3))
			},
			expected: "((1 - 2) - 3)",
		},
		{
			name: "cons groups right",
			value: func(b *astBuilder) *ast.Expr {
				return b.flat(b.ref("a"), b.ref("::"), b.ref("b"), b.ref("::"), b.ref("c"))
			},
			expected: "(a :: (b :: c))",
		},
		{
			name: "application binds tighter than any operator",
			value: func(b *astBuilder) *ast.Expr {
				return b.flat(b.ref("f"), b.ref("x"), b.ref("+"), b.intLit(1))
			},
			expected: "((f x) + 1)",
		},
		{
			name: "application is left associative",
			value: func(b *astBuilder) *ast.Expr {
				return b.flat(b.ref("f"), b.ref("x"), b.ref("y"))
			},
			expected: "((f x) y)",
		},
		{
			name: "tight groups on both sides of a loose operator",
			value: func(b *astBuilder) *ast.Expr {
				return b.flat(b.intLit(1), b.ref("*"), b.intLit(2), b.ref("+"), b.intLit(3), b.ref("*"), b.intLit(4))
			},
			expected: "((1 * 2) + (3 * 4))",
		},
		{
			name: "comparison binds tighter than logic",
			value: func(b *astBuilder) *ast.Expr {
				return b.flat(b.ref("a"), b.ref("<"), b.ref("b"), b.ref("&&"), b.ref("c"))
			},
			expected: "((a < b) && c)",
		},
		{
			name: "single operand stays put",
			value: func(b *astBuilder) *ast.Expr {
				return b.flat(b.intLit(42))
			},
			expected: "42",
		},
		{
			name: "parenthesized group is one operand",
			value: func(b *astBuilder) *ast.Expr {
				return b.flat(b.intLit(2), b.ref("*"), b.flat(b.intLit(3), b.ref("+"), b.intLit(4)))
			},
			expected: "(2 * (3 + 4))",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &astBuilder{}
			bag := diag.NewBag(16)
			got := rewriteOne(t, bag, tt.value(b))
			if rendered := renderExpr(got); rendered != tt.expected {
				t.Errorf("rewrite = %s, want %s", rendered, tt.expected)
			}
			if bag.HasErrors() {
				t.Errorf("unexpected diagnostics: %v", bag.Items())
			}
		})
	}
}

func TestRewrite_Recovery(t *testing.T) {
	tests := []struct {
		name     string
		value    func(b *astBuilder) *ast.Expr
		expected string
		errors   int
	}{
		{
			name: "missing right operand",
			value: func(b *astBuilder) *ast.Expr {
				return b.flat(b.intLit(1), b.ref("+"))
			},
			expected: "(1 + ?)",
			errors:   1,
		},
		{
			name: "operator in operand position is skipped",
			value: func(b *astBuilder) *ast.Expr {
				return b.flat(b.ref("+"), b.intLit(1))
			},
			expected: "1",
			errors:   1,
		},
		{
			name: "only operators leave a hole",
			value: func(b *astBuilder) *ast.Expr {
				return b.flat(b.ref("+"))
			},
			expected: "?",
			errors:   1,
		},
		{
			name: "recovery is local to the broken operator",
			value: func(b *astBuilder) *ast.Expr {
				return b.flat(b.intLit(1), b.ref("*"), b.intLit(2), b.ref("+"))
			},
			expected: "((1 * 2) + ?)",
			errors:   1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &astBuilder{}
			bag := diag.NewBag(16)
			got := rewriteOne(t, bag, tt.value(b))
			if rendered := renderExpr(got); rendered != tt.expected {
				t.Errorf("rewrite = %s, want %s", rendered, tt.expected)
			}
			if n := countCode(bag, diag.RewriteInvalidApplication); n != tt.errors {
				t.Errorf("got %d invalid-application diagnostics, want %d", n, tt.errors)
			}
		})
	}
}

func TestRewrite_NegativePrecedenceOperatorIsNotDropped(t *testing.T) {
	b := &astBuilder{}
	value := b.flat(b.intLit(1), b.ref("<?>"), b.intLit(2))
	m := testModule((&astBuilder{off: 1000}).bnd("it", value))
	m.OperatorDecls = []ast.OperatorDef{
		{Name: "<?>", Precedence: -1, Assoc: ast.AssocLeft, Arity: 2, Origin: ast.OpProtocol},
	}
	bag := diag.NewBag(16)
	got := runStages(m, bag, RegisterOperators, Rewrite).Members[0].(*ast.Bnd).Value

	// The operator sits below the loosest climb level, so the tree can
	// only keep the left operand; the operator and the stranded right
	// operand must both surface as diagnostics.
	if rendered := renderExpr(got); rendered != "1" {
		t.Errorf("rewrite = %s, want 1", rendered)
	}
	if n := countCode(bag, diag.RewriteInvalidApplication); n != 2 {
		t.Errorf("got %d invalid-application diagnostics, want 2", n)
	}
}

func TestRewrite_BlockStatementsPrefixTheValue(t *testing.T) {
	b := &astBuilder{}
	local := b.fn("y", nil, b.flat(b.intLit(5)))
	value := b.flat(local, b.ref("y"), b.ref("+"), b.intLit(1))
	bag := diag.NewBag(16)
	got := rewriteOne(t, bag, value)
	if rendered := renderExpr(got); rendered != "(y=5 (y + 1))" {
		t.Errorf("rewrite = %s, want (y=5 (y + 1))", rendered)
	}
	if bag.HasErrors() {
		t.Errorf("unexpected diagnostics: %v", bag.Items())
	}
}

func TestRewrite_BlockWithoutValueYieldsUnit(t *testing.T) {
	b := &astBuilder{}
	local := b.fn("y", nil, b.flat(b.intLit(5)))
	bag := diag.NewBag(16)
	got := rewriteOne(t, bag, b.flat(local))
	if rendered := renderExpr(got); rendered != "(y=5 ())" {
		t.Errorf("rewrite = %s, want (y=5 ())", rendered)
	}
}

func TestRewrite_Idempotent(t *testing.T) {
	builds := []func(b *astBuilder) *ast.Expr{
		func(b *astBuilder) *ast.Expr {
			return b.flat(b.intLit(1), b.ref("+"), b.intLit(2), b.ref("*"), b.intLit(3))
		},
		func(b *astBuilder) *ast.Expr {
			return b.flat(b.ref("a"), b.ref("::"), b.ref("b"), b.ref("::"), b.ref("c"))
		},
		func(b *astBuilder) *ast.Expr {
			return b.flat(b.ref("f"), b.ref("x"), b.ref("+"), b.intLit(1))
		},
	}
	for _, build := range builds {
		b := &astBuilder{}
		m := testModule((&astBuilder{off: 1000}).bnd("it", build(b)))
		bag := diag.NewBag(16)
		ctx := NewContext(diag.BagReporter{Bag: bag})
		once := Rewrite(RegisterOperators(m, ctx), ctx)
		twice := Rewrite(once, ctx)
		first := renderExpr(once.Members[0].(*ast.Bnd).Value)
		second := renderExpr(twice.Members[0].(*ast.Bnd).Value)
		if first != second {
			t.Errorf("rewriting twice changed shape: %s vs %s", first, second)
		}
		if bag.HasErrors() {
			t.Errorf("unexpected diagnostics for %s: %v", first, bag.Items())
		}
	}
}

func TestRewrite_DoesNotMutateInput(t *testing.T) {
	b := &astBuilder{}
	value := b.flat(b.intLit(1), b.ref("+"), b.intLit(2), b.ref("*"), b.intLit(3))
	m := testModule((&astBuilder{off: 1000}).bnd("it", value))
	bag := diag.NewBag(16)
	ctx := NewContext(diag.BagReporter{Bag: bag})
	registered := RegisterOperators(m, ctx)
	before := renderExpr(registered.Members[0].(*ast.Bnd).Value)
	Rewrite(registered, ctx)
	after := renderExpr(registered.Members[0].(*ast.Bnd).Value)
	if before != after {
		t.Errorf("input module mutated: %s vs %s", before, after)
	}
}
