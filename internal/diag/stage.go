package diag

// Stage identifies the pipeline stage that produced a diagnostic.
// Tooling keys off this to attribute errors, so values are stable.
type Stage uint8

const (
	StageNone Stage = iota
	StageOperators
	StageDuplicates
	StageResolve
	StageRewrite
	StageTypes
	StageSimplify
	StageMemberCheck
)

func (s Stage) String() string {
	switch s {
	case StageOperators:
		return "operators"
	case StageDuplicates:
		return "duplicates"
	case StageResolve:
		return "resolve"
	case StageRewrite:
		return "rewrite"
	case StageTypes:
		return "types"
	case StageSimplify:
		return "simplify"
	case StageMemberCheck:
		return "member-check"
	}
	return "none"
}
