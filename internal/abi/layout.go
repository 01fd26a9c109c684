package abi

import (
	"fmt"
	"sort"
)

// FieldKind is the primitive kind of one struct field.
type FieldKind uint8

const (
	FieldI8 FieldKind = iota
	FieldI16
	FieldI32
	FieldI64
	FieldF32
	FieldF64
	FieldPtr
)

var fieldNames = map[FieldKind]string{
	FieldI8:  "i8",
	FieldI16: "i16",
	FieldI32: "i32",
	FieldI64: "i64",
	FieldF32: "f32",
	FieldF64: "f64",
	FieldPtr: "ptr",
}

func (k FieldKind) String() string {
	if s, ok := fieldNames[k]; ok {
		return s
	}
	return "?"
}

// ParseFieldKind reads the textual form used by manifests and tests.
func ParseFieldKind(s string) (FieldKind, error) {
	for k, name := range fieldNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown field kind %q", s)
}

// Size returns the field's byte size under target.
func (k FieldKind) Size(target Target) int {
	switch k {
	case FieldI8:
		return 1
	case FieldI16:
		return 2
	case FieldI32:
		return 4
	case FieldI64, FieldF64:
		return 8
	case FieldF32:
		return 4
	case FieldPtr:
		return target.PtrSize
	}
	return 0
}

// Mach maps a field to the machine value class it is passed as.
func (k FieldKind) Mach() Machine {
	switch k {
	case FieldI8:
		return MachI8
	case FieldI16:
		return MachI16
	case FieldI32:
		return MachI32
	case FieldI64:
		return MachI64
	case FieldF32:
		return MachF32
	case FieldF64:
		return MachF64
	default:
		return MachPtr
	}
}

// StructLayouts maps an aggregate type name to its ordered field
// kinds. Built once per module from type declarations, then frozen;
// lowering only reads it. Types absent from the table are opaque and
// pass through lowering unchanged.
type StructLayouts struct {
	fields map[string][]FieldKind
	frozen bool
}

func NewStructLayouts() *StructLayouts {
	return &StructLayouts{fields: make(map[string][]FieldKind)}
}

// Define registers a layout. Panics after Freeze: the construct-then-
// freeze discipline is load-bearing for concurrent lowering.
func (t *StructLayouts) Define(name string, fields ...FieldKind) {
	if t.frozen {
		panic("abi: Define after Freeze")
	}
	t.fields[name] = append([]FieldKind(nil), fields...)
}

// Freeze marks the table read-only.
func (t *StructLayouts) Freeze() *StructLayouts {
	t.frozen = true
	return t
}

// Fields returns the ordered field kinds for name.
func (t *StructLayouts) Fields(name string) ([]FieldKind, bool) {
	if t == nil {
		return nil, false
	}
	f, ok := t.fields[name]
	return f, ok
}

// Known reports whether name has a registered layout.
func (t *StructLayouts) Known(name string) bool {
	_, ok := t.Fields(name)
	return ok
}

// Names returns all registered aggregate names, sorted.
func (t *StructLayouts) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.fields))
	for name := range t.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SizeOf is the unpadded field footprint of name under target.
// The field kinds in play are all naturally aligned at their own
// size, so the packed sum is the layout size for our purposes.
func (t *StructLayouts) SizeOf(name string, target Target) (int, bool) {
	fields, ok := t.Fields(name)
	if !ok {
		return 0, false
	}
	total := 0
	for _, f := range fields {
		total += f.Size(target)
	}
	return total, true
}
