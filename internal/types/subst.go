package types

import "fmt"

// OccursError reports that a variable was found within the type it was
// about to be bound to (spec.md §4.B).
type OccursError struct {
	Var Tvar
	In  Monotype
}

func (e *OccursError) Error() string {
	return fmt.Sprintf("occurs check failed: %s occurs in %s", e.Var, e.In)
}

// Fresher hands out strictly increasing type-variable ids. A single
// Fresher is shared across every file of a package group so that no two
// files ever mint the same variable (spec.md §4.E, §9).
type Fresher struct {
	next Tvar
}

// NewFresher returns a Fresher starting at 0.
func NewFresher() *Fresher { return &Fresher{} }

// Fresh mints a brand-new, unconstrained type variable.
func (f *Fresher) Fresh() Tvar {
	v := f.next
	f.next++
	return v
}

// Advance bumps the fresher past any variable already used by t, so a
// Fresher seeded from a cached export doesn't collide with it.
func (f *Fresher) Advance(t Monotype) {
	if m := MaxTvar(t) + 1; m > f.next {
		f.next = m
	}
}

// Subst maps type variables to the monotype they currently stand for.
// Composition always applies the existing substitution to an incoming
// binding's right-hand side before storing it, which is what keeps a
// Subst idempotent: applying it twice in a row never changes anything
// further (spec.md §4.B invariant).
type Subst struct {
	bindings map[Tvar]Monotype
	kinds    map[Tvar][]Kind
}

// NewSubst returns an empty substitution.
func NewSubst() *Subst {
	return &Subst{bindings: map[Tvar]Monotype{}, kinds: map[Tvar][]Kind{}}
}

// KindsOf returns the kind constraints currently recorded for v.
func (s *Subst) KindsOf(v Tvar) []Kind { return s.kinds[v] }

// Clone returns an independent copy of s. Used for throwaway unification
// passes (default-argument sealing, spec.md §4.D) whose bindings must
// never leak back into the substitution they were cloned from.
func (s *Subst) Clone() *Subst {
	bindings := make(map[Tvar]Monotype, len(s.bindings))
	for k, v := range s.bindings {
		bindings[k] = v
	}
	kinds := make(map[Tvar][]Kind, len(s.kinds))
	for k, ks := range s.kinds {
		cp := make([]Kind, len(ks))
		copy(cp, ks)
		kinds[k] = cp
	}
	return &Subst{bindings: bindings, kinds: kinds}
}

// Constrain adds kind k to v's constraint set.
func (s *Subst) Constrain(v Tvar, k Kind) {
	if !HasKind(s.kinds[v], k) {
		s.kinds[v] = append(s.kinds[v], k)
	}
}

// ConstrainAll adds every kind in ks to v's constraint set.
func (s *Subst) ConstrainAll(v Tvar, ks []Kind) {
	s.kinds[v] = MergeKinds(s.kinds[v], ks)
}

// Bind records v := t, applying the occurs check first. Binding a
// variable carries its accumulated kind constraints onto t's free
// variables if t is itself a Var (variable-to-variable merge propagates
// kinds, spec.md §9).
func (s *Subst) Bind(v Tvar, t Monotype) error {
	if vv, ok := t.(Var); ok && vv.V == v {
		return nil
	}
	if Contains(s.Apply(t), v) {
		return &OccursError{Var: v, In: t}
	}
	resolved := s.Apply(t)
	s.bindings[v] = resolved
	if other, ok := resolved.(Var); ok {
		merged := MergeKinds(s.kinds[v], s.kinds[other.V])
		s.kinds[other.V] = merged
	}
	return nil
}

// Apply recursively resolves every variable in t through the
// substitution's current bindings until reaching a fixed point.
func (s *Subst) Apply(t Monotype) Monotype {
	switch v := t.(type) {
	case Var:
		if bound, ok := s.bindings[v.V]; ok {
			return s.Apply(bound)
		}
		return v
	case Array:
		return Array{Elem: s.Apply(v.Elem)}
	case Dict:
		return Dict{Key: s.Apply(v.Key), Val: s.Apply(v.Val)}
	case Record:
		if v.empty {
			return v
		}
		var tail Monotype
		if v.Tail != nil {
			tail = s.Apply(v.Tail)
		}
		return Record{Label: v.Label, Value: s.Apply(v.Value), Tail: tail}
	case Function:
		args := make([]Argument, len(v.Args))
		for i, a := range v.Args {
			args[i] = Argument{Name: a.Name, Type: s.Apply(a.Type), Optional: a.Optional, Pipe: a.Pipe}
		}
		return Function{Args: args, Retn: s.Apply(v.Retn)}
	default:
		return t
	}
}

// ResolvedKinds returns the kind constraints of v, following
// variable-to-variable bindings to the last variable in the chain.
func (s *Subst) ResolvedKinds(v Tvar) []Kind {
	cur := v
	for {
		bound, ok := s.bindings[cur]
		if !ok {
			return s.kinds[cur]
		}
		next, ok := bound.(Var)
		if !ok {
			return s.kinds[cur]
		}
		cur = next.V
	}
}

// Generalize closes over every variable free in t but not free in env
// (the enclosing let-polymorphism rule, spec.md §4.D "Variable
// assignment"), producing a Polytype with each quantified variable's
// accumulated kind constraints attached.
func Generalize(s *Subst, envFree map[Tvar]bool, t Monotype) Polytype {
	resolved := s.Apply(t)
	free := FreeVars(resolved)
	poly := Polytype{Expr: resolved, Kinds: map[Tvar][]Kind{}}
	for _, v := range free {
		if envFree[v] {
			continue
		}
		poly.Vars = append(poly.Vars, v)
		poly.Kinds[v] = s.ResolvedKinds(v)
	}
	return poly
}

// Instantiate replaces every quantified variable of p with a fresh one,
// carrying its kind constraints onto the fresh variable (spec.md §4.A).
func Instantiate(f *Fresher, s *Subst, p Polytype) Monotype {
	mapping := map[Tvar]Tvar{}
	for _, v := range p.Vars {
		nv := f.Fresh()
		mapping[v] = nv
		s.ConstrainAll(nv, p.Kinds[v])
	}
	return substituteVars(p.Expr, mapping)
}

func substituteVars(t Monotype, mapping map[Tvar]Tvar) Monotype {
	switch v := t.(type) {
	case Var:
		if nv, ok := mapping[v.V]; ok {
			return Var{V: nv}
		}
		return v
	case Array:
		return Array{Elem: substituteVars(v.Elem, mapping)}
	case Dict:
		return Dict{Key: substituteVars(v.Key, mapping), Val: substituteVars(v.Val, mapping)}
	case Record:
		if v.empty {
			return v
		}
		var tail Monotype
		if v.Tail != nil {
			tail = substituteVars(v.Tail, mapping)
		}
		return Record{Label: v.Label, Value: substituteVars(v.Value, mapping), Tail: tail}
	case Function:
		args := make([]Argument, len(v.Args))
		for i, a := range v.Args {
			args[i] = Argument{Name: a.Name, Type: substituteVars(a.Type, mapping), Optional: a.Optional, Pipe: a.Pipe}
		}
		return Function{Args: args, Retn: substituteVars(v.Retn, mapping)}
	default:
		return t
	}
}

// TemporaryGeneralize is Generalize with an empty environment (spec.md
// §4.D "Function expression", the default-argument sealing pass): every
// variable free in t after applying s is quantified, including variables
// that also occur in outer bindings.
func TemporaryGeneralize(s *Subst, t Monotype) Polytype {
	return Generalize(s, map[Tvar]bool{}, t)
}
