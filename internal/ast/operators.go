package ast

import "mml/internal/source"

// Assoc is operator associativity for equal-precedence grouping.
type Assoc uint8

const (
	AssocLeft Assoc = iota
	AssocRight
)

func (a Assoc) String() string {
	if a == AssocRight {
		return "right"
	}
	return "left"
}

// OperatorOrigin records where a fixity came from.
type OperatorOrigin uint8

const (
	OpBuiltin OperatorOrigin = iota
	OpProtocol
)

// OperatorDef is one operator's fixity. Within a module a name maps to
// exactly one fixity; the registry stage rejects conflicts.
type OperatorDef struct {
	Name       string
	Precedence int
	Assoc      Assoc
	Arity      int
	Origin     OperatorOrigin
	Span       source.Span
}

// SameFixity reports whether two defs agree on precedence,
// associativity and arity. Redeclaring an identical fixity is legal
// (it adds an overload); disagreeing is a conflict.
func (d OperatorDef) SameFixity(other OperatorDef) bool {
	return d.Precedence == other.Precedence &&
		d.Assoc == other.Assoc &&
		d.Arity == other.Arity
}
