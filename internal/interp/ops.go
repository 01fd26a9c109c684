package interp

import (
	"fmt"

	"mml/internal/ast"
)

// operator evaluates one builtin operator application. Logical
// operators short-circuit, so the right operand is only evaluated
// when it matters.
func (in *interp) operator(opRef *ast.Ref, left, right ast.Term, env *Env) (Value, error) {
	op := opRef.Name

	if op == "&&" || op == "||" {
		l, err := in.term(left, env)
		if err != nil {
			return unit, err
		}
		if l.Kind != ValBool {
			return unit, fmt.Errorf("operand of `%s` is not Bool", op)
		}
		if (op == "&&" && !l.Bool) || (op == "||" && l.Bool) {
			return l, nil
		}
		r, err := in.term(right, env)
		if err != nil {
			return unit, err
		}
		if r.Kind != ValBool {
			return unit, fmt.Errorf("operand of `%s` is not Bool", op)
		}
		return r, nil
	}

	l, err := in.term(left, env)
	if err != nil {
		return unit, err
	}
	r, err := in.term(right, env)
	if err != nil {
		return unit, err
	}

	switch op {
	case "+", "-", "*", "/":
		return arith(op, l, r)
	case "<", "<=", ">", ">=":
		return compare(op, l, r)
	case "=":
		return equal(l, r)
	case "!=":
		v, err := equal(l, r)
		if err != nil {
			return unit, err
		}
		v.Bool = !v.Bool
		return v, nil
	}
	return unit, fmt.Errorf("operator `%s` has no builtin evaluation", op)
}

func arith(op string, l, r Value) (Value, error) {
	if l.Kind == ValInt && r.Kind == ValInt {
		switch op {
		case "+":
			return Value{Kind: ValInt, Int: l.Int + r.Int}, nil
		case "-":
			return Value{Kind: ValInt, Int: l.Int - r.Int}, nil
		case "*":
			return Value{Kind: ValInt, Int: l.Int * r.Int}, nil
		case "/":
			if r.Int == 0 {
				return unit, fmt.Errorf("division by zero")
			}
			return Value{Kind: ValInt, Int: l.Int / r.Int}, nil
		}
	}
	if l.Kind == ValFloat && r.Kind == ValFloat {
		switch op {
		case "+":
			return Value{Kind: ValFloat, Float: l.Float + r.Float}, nil
		case "-":
			return Value{Kind: ValFloat, Float: l.Float - r.Float}, nil
		case "*":
			return Value{Kind: ValFloat, Float: l.Float * r.Float}, nil
		case "/":
			return Value{Kind: ValFloat, Float: l.Float / r.Float}, nil
		}
	}
	if op == "+" && l.Kind == ValString && r.Kind == ValString {
		return Value{Kind: ValString, Str: l.Str + r.Str}, nil
	}
	return unit, fmt.Errorf("operator `%s` got operands %s and %s", op, l, r)
}

func compare(op string, l, r Value) (Value, error) {
	var less, eq bool
	switch {
	case l.Kind == ValInt && r.Kind == ValInt:
		less, eq = l.Int < r.Int, l.Int == r.Int
	case l.Kind == ValFloat && r.Kind == ValFloat:
		less, eq = l.Float < r.Float, l.Float == r.Float
	default:
		return unit, fmt.Errorf("operator `%s` got operands %s and %s", op, l, r)
	}
	var b bool
	switch op {
	case "<":
		b = less
	case "<=":
		b = less || eq
	case ">":
		b = !less && !eq
	case ">=":
		b = !less
	}
	return Value{Kind: ValBool, Bool: b}, nil
}

func equal(l, r Value) (Value, error) {
	if l.Kind != r.Kind {
		return unit, fmt.Errorf("cannot compare %s with %s", l, r)
	}
	var b bool
	switch l.Kind {
	case ValInt:
		b = l.Int == r.Int
	case ValFloat:
		b = l.Float == r.Float
	case ValString:
		b = l.Str == r.Str
	case ValBool:
		b = l.Bool == r.Bool
	case ValUnit:
		b = true
	default:
		return unit, fmt.Errorf("cannot compare functions")
	}
	return Value{Kind: ValBool, Bool: b}, nil
}
