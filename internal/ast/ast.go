// Package ast defines the tree handed over by the parser and threaded
// through every semantic stage. Stages never mutate a module in place;
// they deep-copy (Clone) and return a replacement, so each stage stays
// independently testable.
package ast

import (
	"mml/internal/source"
	"mml/internal/types"
)

// Visibility of a module or member.
type Visibility uint8

const (
	Private Visibility = iota
	Public
)

// Module is one compilation unit. Member names are unique only after
// the duplicate-name stage has accepted the module.
type Module struct {
	Name       string
	Visibility Visibility
	Path       string
	Members    []Member

	// OperatorDecls holds fixity declarations harvested from protocol
	// and instance blocks by the parser.
	OperatorDecls []OperatorDef

	// Operators is populated by the operator registry stage: name to
	// fixity for every operator in scope, builtins included.
	Operators map[string]OperatorDef

	// Decls is the module-level scope, filled by the resolver: member
	// name to its declaration. First declaration wins on duplicates.
	Decls map[string]*Decl
}

// DeclKind discriminates what a resolved reference points at.
type DeclKind uint8

const (
	DeclFn DeclKind = iota
	DeclBnd
	DeclParam
	DeclLocal
	DeclOperator
)

func (k DeclKind) String() string {
	switch k {
	case DeclFn:
		return "function"
	case DeclBnd:
		return "binding"
	case DeclParam:
		return "parameter"
	case DeclLocal:
		return "local binding"
	case DeclOperator:
		return "operator"
	}
	return "declaration"
}

// Decl is the resolution target of a Ref: the declaration site plus
// whatever typing seed it carries.
type Decl struct {
	Kind DeclKind
	Name string
	Span source.Span

	// At most one of the following is set, per Kind.
	Fn    *FnDef
	Bnd   *Bnd
	Param *Param
	Op    *OperatorDef

	// Type is filled by the type resolver.
	Type types.Type
}
