package abi

import "fmt"

// Machine is the machine-level value class of a lowered element.
type Machine uint8

const (
	MachNone Machine = iota // aggregate, not yet lowered
	MachI8
	MachI16
	MachI32
	MachI64
	MachF32
	MachF64
	MachPtr
)

func (m Machine) String() string {
	switch m {
	case MachI8:
		return "i8"
	case MachI16:
		return "i16"
	case MachI32:
		return "i32"
	case MachI64:
		return "i64"
	case MachF32:
		return "f32"
	case MachF64:
		return "f64"
	case MachPtr:
		return "ptr"
	}
	return "agg"
}

// Type is one element of a physical signature: either a scalar machine
// class, or an aggregate named in the layout table. Indirect marks an
// aggregate demoted to a hidden pointer.
type Type struct {
	Mach      Machine
	Aggregate string
	Indirect  bool
}

// Scalar builds a machine-class type.
func Scalar(m Machine) Type {
	return Type{Mach: m}
}

// AggregateType names an aggregate passed logically by value.
func AggregateType(name string) Type {
	return Type{Aggregate: name}
}

// IsAggregate reports whether the type still names an un-lowered
// aggregate.
func (t Type) IsAggregate() bool {
	return t.Aggregate != "" && t.Mach == MachNone
}

func (t Type) String() string {
	switch {
	case t.Indirect:
		return fmt.Sprintf("ptr(%s)", t.Aggregate)
	case t.IsAggregate():
		return t.Aggregate
	default:
		return t.Mach.String()
	}
}

// Value pairs a code-generation value reference with its type.
type Value struct {
	Ref  string
	Type Type
}

// Materialization records a temporary the caller must allocate and
// copy an aggregate into before the call.
type Materialization struct {
	Temp string
	Src  Value
}

// LowerState is the scratch state threaded through LowerArgs. It is
// passed in and returned updated, never shared, so lowering stays
// reentrant across independent call sites.
type LowerState struct {
	NextTemp     int
	Materialized []Materialization
}

func (st *LowerState) newTemp() string {
	st.NextTemp++
	return fmt.Sprintf("%%abi.tmp%d", st.NextTemp)
}

// LoweringRule is one entry of a strategy's ordered rule table: an
// applicability predicate plus the parameter and argument transforms.
// The first applicable rule wins; exactly one fires per type.
type LoweringRule interface {
	Name() string
	Applies(fields []FieldKind, target Target) bool
	LowerParam(name string, fields []FieldKind, target Target) []Type
	LowerArg(arg Value, fields []FieldKind, target Target, st *LowerState) []Value
	// IndirectReturn reports whether a return type lowered by this
	// rule needs an sret output pointer.
	IndirectReturn() bool
}

// registerPackRule splits an aggregate that fits the target's register
// budget into its scalar fields. Qualifying returns come back packed,
// not via pointer.
type registerPackRule struct{}

func (registerPackRule) Name() string { return "register-pack" }

func (registerPackRule) Applies(fields []FieldKind, target Target) bool {
	if len(fields) == 0 || len(fields) > target.RegWords {
		return false
	}
	total := 0
	for _, f := range fields {
		total += f.Size(target)
	}
	return total <= target.RegWords*target.PtrSize
}

func (registerPackRule) LowerParam(_ string, fields []FieldKind, _ Target) []Type {
	out := make([]Type, len(fields))
	for i, f := range fields {
		out[i] = Scalar(f.Mach())
	}
	return out
}

func (registerPackRule) LowerArg(arg Value, fields []FieldKind, _ Target, _ *LowerState) []Value {
	out := make([]Value, len(fields))
	for i, f := range fields {
		out[i] = Value{
			Ref:  fmt.Sprintf("%s.f%d", arg.Ref, i),
			Type: Scalar(f.Mach()),
		}
	}
	return out
}

func (registerPackRule) IndirectReturn() bool { return false }

// indirectRule demotes an aggregate to a hidden pointer: parameters
// become a pointer to a caller-materialized temporary, returns become
// sret through a hidden output pointer.
type indirectRule struct{}

func (indirectRule) Name() string { return "indirect" }

func (indirectRule) Applies(fields []FieldKind, _ Target) bool {
	return len(fields) > 0
}

func (indirectRule) LowerParam(name string, _ []FieldKind, _ Target) []Type {
	return []Type{{Mach: MachPtr, Aggregate: name, Indirect: true}}
}

func (indirectRule) LowerArg(arg Value, _ []FieldKind, _ Target, st *LowerState) []Value {
	temp := st.newTemp()
	st.Materialized = append(st.Materialized, Materialization{Temp: temp, Src: arg})
	return []Value{{
		Ref:  temp,
		Type: Type{Mach: MachPtr, Aggregate: arg.Type.Aggregate, Indirect: true},
	}}
}

func (indirectRule) IndirectReturn() bool { return true }
