package diag

import "fmt"

// Code is a stable numeric identifier for a diagnostic kind.
// Ranges are grouped by concern:
//
//	3000-3099  name binding (duplicates, resolution)
//	3100-3199  expression rewriting
//	3200-3299  type resolution
//	3900-3999  final gates
type Code uint16

const (
	UnknownCode Code = 0

	// Name binding
	SemaDuplicateName     Code = 3001
	SemaDuplicateOperator Code = 3002
	SemaUnresolvedRef     Code = 3003

	// Rewriting
	RewriteInvalidApplication Code = 3101

	// Type resolution
	TypeUnresolvable       Code = 3201
	TypeMismatch           Code = 3202
	TypeInvalidApplication Code = 3203
	TypeCondNotBool        Code = 3204
	TypeBranchDiverge      Code = 3205

	// Gates
	SemaMemberError Code = 3901
)

func (c Code) String() string {
	return fmt.Sprintf("MML%04d", uint16(c))
}

// IsTypeError reports whether the code belongs to the type-resolution
// range. The rewriter's InvalidApplication is deliberately excluded:
// it is a shape error, not a typing one.
func (c Code) IsTypeError() bool {
	return c >= 3200 && c < 3300
}
