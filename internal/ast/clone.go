package ast

// Clone deep-copies a module. Stages clone their input before
// transforming it so the previous stage's output stays intact.
// Resolution state is carried over: every Ref target is remapped onto
// the cloned declaration nodes, so a resolved module stays resolved
// after cloning.
func (m *Module) Clone() *Module {
	if m == nil {
		return nil
	}
	c := newCloner()
	out := &Module{
		Name:       m.Name,
		Visibility: m.Visibility,
		Path:       m.Path,
	}
	if m.Members != nil {
		out.Members = make([]Member, len(m.Members))
		for i, mem := range m.Members {
			out.Members[i] = c.member(mem)
		}
	}
	if m.OperatorDecls != nil {
		out.OperatorDecls = append([]OperatorDef(nil), m.OperatorDecls...)
	}
	if m.Operators != nil {
		out.Operators = make(map[string]OperatorDef, len(m.Operators))
		for k, v := range m.Operators {
			out.Operators[k] = v
		}
	}
	if m.Decls != nil {
		out.Decls = make(map[string]*Decl, len(m.Decls))
		for k, v := range m.Decls {
			out.Decls[k] = c.decl(v)
		}
	}
	c.fixupRefs()
	return out
}

type cloner struct {
	fns    map[*FnDef]*FnDef
	bnds   map[*Bnd]*Bnd
	params map[*Param]*Param
	decls  map[*Decl]*Decl
	refs   []*Ref
}

func newCloner() *cloner {
	return &cloner{
		fns:    make(map[*FnDef]*FnDef),
		bnds:   make(map[*Bnd]*Bnd),
		params: make(map[*Param]*Param),
		decls:  make(map[*Decl]*Decl),
	}
}

// fixupRefs runs after the whole tree is copied: a Ref may point at a
// declaration that is cloned later than the Ref itself.
func (c *cloner) fixupRefs() {
	for _, r := range c.refs {
		r.Target = c.decl(r.Target)
	}
}

// decl copies a Decl, re-pointing it at the cloned node when that
// node is part of the cloned tree. Targets outside the tree (builtin
// operator defs) keep their original pointers.
func (c *cloner) decl(d *Decl) *Decl {
	if d == nil {
		return nil
	}
	if mapped, ok := c.decls[d]; ok {
		return mapped
	}
	cp := *d
	if d.Fn != nil {
		if fn, ok := c.fns[d.Fn]; ok {
			cp.Fn = fn
		}
	}
	if d.Bnd != nil {
		if bnd, ok := c.bnds[d.Bnd]; ok {
			cp.Bnd = bnd
		}
	}
	if d.Param != nil {
		if p, ok := c.params[d.Param]; ok {
			cp.Param = p
		}
	}
	c.decls[d] = &cp
	return &cp
}

func (c *cloner) member(m Member) Member {
	switch mem := m.(type) {
	case *FnDef:
		return c.fnDef(mem)
	case *Bnd:
		cp := *mem
		cp.Value = c.expr(mem.Value)
		c.bnds[mem] = &cp
		return &cp
	case *Comment:
		cp := *mem
		return &cp
	case *MemberError:
		cp := *mem
		return &cp
	}
	return m
}

func (c *cloner) fnDef(f *FnDef) *FnDef {
	if f == nil {
		return nil
	}
	cp := *f
	c.fns[f] = &cp
	if f.Params != nil {
		cp.Params = append([]Param(nil), f.Params...)
		for i := range f.Params {
			c.params[&f.Params[i]] = &cp.Params[i]
		}
	}
	cp.Body = c.expr(f.Body)
	return &cp
}

func (c *cloner) expr(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	cp := *e
	if e.Terms != nil {
		cp.Terms = make([]Term, len(e.Terms))
		for i, t := range e.Terms {
			cp.Terms[i] = c.term(t)
		}
	}
	return &cp
}

func (c *cloner) term(t Term) Term {
	switch term := t.(type) {
	case *Ref:
		cp := *term
		c.refs = append(c.refs, &cp)
		return &cp
	case *Literal:
		cp := *term
		return &cp
	case *Expr:
		return c.expr(term)
	case *Cond:
		cp := *term
		cp.Cond = c.expr(term.Cond)
		cp.IfTrue = c.expr(term.IfTrue)
		cp.IfFalse = c.expr(term.IfFalse)
		return &cp
	case *Hole:
		cp := *term
		return &cp
	case *FnDef:
		return c.fnDef(term)
	}
	return t
}
