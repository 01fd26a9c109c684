package abi

// Strategy is the architecture-selected lowering policy: an ordered
// rule table over one frozen layout table. Construct once per target
// triple; all methods are read-only on the strategy itself.
type Strategy struct {
	Target  Target
	Layouts *StructLayouts
	rules   []LoweringRule
}

// NewStrategy builds the strategy for an architecture identity.
// Adding an architecture means supplying a new rule list here, not
// branching inside the rules.
func NewStrategy(arch string, layouts *StructLayouts) (*Strategy, error) {
	target, err := TargetFor(arch)
	if err != nil {
		return nil, err
	}
	var rules []LoweringRule
	if target.RegWords > 0 {
		rules = []LoweringRule{registerPackRule{}, indirectRule{}}
	} else {
		rules = []LoweringRule{indirectRule{}}
	}
	return &Strategy{Target: target, Layouts: layouts, rules: rules}, nil
}

// ruleFor picks the first applicable rule for an aggregate type.
// Unknown or empty layouts select no rule: the type stays opaque and
// passes through unchanged rather than failing.
func (s *Strategy) ruleFor(name string) (LoweringRule, []FieldKind, bool) {
	fields, ok := s.Layouts.Fields(name)
	if !ok || len(fields) == 0 {
		return nil, nil, false
	}
	for _, r := range s.rules {
		if r.Applies(fields, s.Target) {
			return r, fields, true
		}
	}
	return nil, nil, false
}

// RuleNameFor exposes the selected rule for tooling; empty when the
// type passes through.
func (s *Strategy) RuleNameFor(name string) string {
	if r, _, ok := s.ruleFor(name); ok {
		return r.Name()
	}
	return ""
}

// LowerParamTypes maps a logical parameter list to its physical
// shape. Scalars and opaque aggregates pass through unchanged.
func (s *Strategy) LowerParamTypes(params []Type) []Type {
	out := make([]Type, 0, len(params))
	for _, p := range params {
		if !p.IsAggregate() {
			out = append(out, p)
			continue
		}
		r, fields, ok := s.ruleFor(p.Aggregate)
		if !ok {
			out = append(out, p)
			continue
		}
		out = append(out, r.LowerParam(p.Aggregate, fields, s.Target)...)
	}
	return out
}

// LowerArgs mirrors LowerParamTypes on call-site values, threading the
// lowering state in and out.
func (s *Strategy) LowerArgs(args []Value, st LowerState) ([]Value, LowerState) {
	out := make([]Value, 0, len(args))
	for _, a := range args {
		if !a.Type.IsAggregate() {
			out = append(out, a)
			continue
		}
		r, fields, ok := s.ruleFor(a.Type.Aggregate)
		if !ok {
			out = append(out, a)
			continue
		}
		out = append(out, r.LowerArg(a, fields, s.Target, &st)...)
	}
	return out, st
}

// NeedsSret reports whether ret must be returned through a hidden
// output pointer under this architecture.
func (s *Strategy) NeedsSret(ret Type) bool {
	if !ret.IsAggregate() {
		return false
	}
	r, _, ok := s.ruleFor(ret.Aggregate)
	if !ok {
		return false
	}
	return r.IndirectReturn()
}

// LowerSignature lowers a full signature: parameters plus return.
// When the return needs sret, a hidden output pointer is prepended to
// the parameter list.
func (s *Strategy) LowerSignature(params []Type, ret Type) (lowered []Type, sret bool) {
	loweredParams := s.LowerParamTypes(params)
	if s.NeedsSret(ret) {
		out := make([]Type, 0, len(loweredParams)+1)
		out = append(out, Type{Mach: MachPtr, Aggregate: ret.Aggregate, Indirect: true})
		out = append(out, loweredParams...)
		return out, true
	}
	return loweredParams, false
}
