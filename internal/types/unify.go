package types

import "fmt"

// UnifyError is the closed family of structural unification failures
// (spec.md §4.C, §7). internal/diagnostics wraps these with source
// locations; this package knows nothing about files or positions.
type UnifyError struct {
	Kind string
	A, B Monotype
	Msg  string
}

func (e *UnifyError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("cannot unify %s with %s", e.A, e.B)
}

func cannotUnify(a, b Monotype) error {
	return &UnifyError{Kind: "CannotUnify", A: a, B: b}
}

// Unify makes a and b equal under s, mutating s's bindings and kind sets
// in place. Dynamic and Err unify with anything and impose no further
// obligations (spec.md §3).
func Unify(s *Subst, a, b Monotype) error {
	a = s.Apply(a)
	b = s.Apply(b)

	if _, ok := a.(Dynamic); ok {
		return nil
	}
	if _, ok := b.(Dynamic); ok {
		return nil
	}
	if _, ok := a.(Err); ok {
		return nil
	}
	if _, ok := b.(Err); ok {
		return nil
	}

	if av, ok := a.(Var); ok {
		return unifyVar(s, av.V, b)
	}
	if bv, ok := b.(Var); ok {
		return unifyVar(s, bv.V, a)
	}

	switch av := a.(type) {
	case Bool:
		if _, ok := b.(Bool); ok {
			return nil
		}
	case Int:
		if _, ok := b.(Int); ok {
			return nil
		}
	case Uint:
		if _, ok := b.(Uint); ok {
			return nil
		}
	case Float:
		if _, ok := b.(Float); ok {
			return nil
		}
	case String_:
		if _, ok := b.(String_); ok {
			return nil
		}
	case Duration:
		if _, ok := b.(Duration); ok {
			return nil
		}
	case Time:
		if _, ok := b.(Time); ok {
			return nil
		}
	case Regexp:
		if _, ok := b.(Regexp); ok {
			return nil
		}
	case Bytes:
		if _, ok := b.(Bytes); ok {
			return nil
		}
	case Label:
		if bv, ok := b.(Label); ok && bv.Name == av.Name {
			return nil
		}
	case Array:
		if bv, ok := b.(Array); ok {
			return Unify(s, av.Elem, bv.Elem)
		}
	case Dict:
		if bv, ok := b.(Dict); ok {
			if err := Unify(s, av.Key, bv.Key); err != nil {
				return err
			}
			if err := requireKind(s, s.Apply(av.Key), Comparable); err != nil {
				return err
			}
			return Unify(s, av.Val, bv.Val)
		}
	case Record:
		if bv, ok := b.(Record); ok {
			return unifyRecord(s, av, bv)
		}
	case Function:
		if bv, ok := b.(Function); ok {
			return unifyFunction(s, av, bv)
		}
	}
	return cannotUnify(a, b)
}

func unifyVar(s *Subst, v Tvar, t Monotype) error {
	if tv, ok := t.(Var); ok && tv.V == v {
		return nil
	}
	for _, k := range s.KindsOf(v) {
		if err := requireKind(s, t, k); err != nil {
			return err
		}
	}
	return s.Bind(v, t)
}

// requireKind checks that concrete type t satisfies kind k, or (if t is
// still a variable) records the obligation for later.
func requireKind(s *Subst, t Monotype, k Kind) error {
	if tv, ok := t.(Var); ok {
		s.Constrain(tv.V, k)
		return nil
	}
	if !Satisfies(t, k) {
		return &UnifyError{Kind: "CannotConstrain", A: t, Msg: fmt.Sprintf("%s does not satisfy %s", t, k)}
	}
	return nil
}

// unifyRecord implements row-polymorphic unification (spec.md §4.C.2).
// Two closed (Empty) records unify trivially. An Extension unifies with
// an Extension sharing its head label by unifying their value types and
// recursing on the tails. An Extension unifies with a different shape
// (Empty, a different label, or a row variable) by rewriting: a fresh
// row variable is introduced for "the rest of" whichever side lacks the
// matching label, and the label is threaded across. Duplicate labels are
// never merged or deduplicated — each occurrence participates in
// unification independently, in row order.
func unifyRecord(s *Subst, a, b Record) error {
	ra := s.Apply(a).(Record)
	rb := s.Apply(b).(Record)

	if ra.empty && rb.empty {
		return nil
	}
	if ra.empty {
		return unifyRecord(s, rb, ra)
	}
	// ra is an Extension{label, value, tail}.
	if rb.empty {
		// rb has no fields left, but ra does: impossible unless ra's tail
		// eventually closes to Empty through a row variable rb cannot supply.
		return &UnifyError{Kind: "MissingLabel", A: a, B: b,
			Msg: fmt.Sprintf("record is missing field %q", ra.Label)}
	}
	if rbr, ok := s.Apply(rb).(Record); ok && !rbr.empty && rbr.Label == ra.Label {
		if err := Unify(s, ra.Value, rbr.Value); err != nil {
			return err
		}
		return unifyTails(s, ra.Tail, rbr.Tail)
	}
	// Labels differ (or rb's head doesn't match): rewrite. Introduce a
	// fresh tail for rb standing in for "everything but ra.Label", unify
	// ra.Tail against it, and thread ra.Label/ra.Value onto rb's front via
	// a fresh variable representing rb's own remainder.
	return rewriteRecordUnify(s, ra, rb)
}

func unifyTails(s *Subst, a, b Monotype) error {
	if a == nil && b == nil {
		return nil
	}
	if a == nil {
		a = EmptyRecord()
	}
	if b == nil {
		b = EmptyRecord()
	}
	return Unify(s, a, b)
}

// rewriteRecordUnify handles the case where ra's head label is not at the
// head of rb. It searches rb's own spine for a field with ra's label; if
// found, it unifies that field's value and the two remainders (treating
// both rows as multisets of labeled fields, per spec.md §4.C.2). If rb
// ends in a row variable before the label is found, a fresh extension is
// unified onto that variable instead (the row-polymorphic case: "rb also
// has this field, at an unknown position").
func rewriteRecordUnify(s *Subst, ra, rb Record) error {
	// Walk rb's spine looking for ra.Label.
	var before []Record
	cur := Monotype(rb)
	for {
		rec, ok := s.Apply(cur).(Record)
		if !ok {
			// cur is a row variable: rb doesn't (yet) have the label. If
			// it's the very same unresolved variable as ra's own tail,
			// binding it here would force that one variable to carry both
			// ra.Label and whatever label rb already attached to it — the
			// spec.md:139 rule this blocks (a row variable forced to carry
			// two distinct labels is unsound), and left unchecked it sends
			// the rewrite below into an unbounded recursion minting a
			// fresh scratch variable at every step instead of failing.
			if curVar, ok := s.Apply(cur).(Var); ok {
				if tailVar, ok := s.Apply(ra.Tail).(Var); ok && tailVar.V == curVar.V {
					other := ra.Label
					if len(before) > 0 {
						other = before[len(before)-1].Label
					}
					return &UnifyError{Kind: "CannotUnify", A: ra, B: rb,
						Msg: fmt.Sprintf(
							"cannot unify: row variable %s forced to carry both %q and %q (same row variable forced to carry distinct labels is unsound)",
							tailVar, ra.Label, other)}
				}
			}
			// Bind a fresh extension onto it.
			freshTail := Var{V: nextScratchVar(s)}
			if err := Unify(s, cur, Record{Label: ra.Label, Value: ra.Value, Tail: freshTail}); err != nil {
				return err
			}
			return unifyTails(s, ra.Tail, rebuildWithout(before, freshTail))
		}
		if rec.empty {
			return &UnifyError{Kind: "MissingLabel", A: ra, B: rb,
				Msg: fmt.Sprintf("record is missing field %q", ra.Label)}
		}
		if rec.Label == ra.Label {
			if err := Unify(s, ra.Value, rec.Value); err != nil {
				return err
			}
			return unifyTails(s, ra.Tail, rebuildWithout(before, rec.Tail))
		}
		before = append(before, rec)
		cur = rec.Tail
		if cur == nil {
			return &UnifyError{Kind: "MissingLabel", A: ra, B: rb,
				Msg: fmt.Sprintf("record is missing field %q", ra.Label)}
		}
	}
}

// rebuildWithout reconstructs a row consisting of the skipped fields in
// `before` (in original order) followed by tail.
func rebuildWithout(before []Record, tail Monotype) Monotype {
	out := tail
	for i := len(before) - 1; i >= 0; i-- {
		out = Record{Label: before[i].Label, Value: before[i].Value, Tail: out}
	}
	return out
}

// nextScratchVar mints a fresh variable without going through a Fresher,
// for unifier-internal row rewrites where no Fresher is in scope. It
// borrows the Subst's own binding map to guarantee the id hasn't been
// used, scanning past the highest currently-bound variable.
func nextScratchVar(s *Subst) Tvar {
	var max Tvar
	for v := range s.bindings {
		if v > max {
			max = v
		}
		if bt, ok := s.bindings[v]; ok {
			if m := MaxTvar(bt); m > max {
				max = m
			}
		}
	}
	for v := range s.kinds {
		if v > max {
			max = v
		}
	}
	return max + 1
}

// unifyFunction implements the asymmetric callee/call-site function
// unification of spec.md §4.C.1: a is the declared (callee) signature, b
// is the call-site skeleton built from the actual argument list.
//
//   - Every required argument of a must appear in b (as required or
//     optional doesn't matter at the call site: MissingArgument otherwise).
//   - Every argument in b must exist in a (ExtraArgument otherwise).
//   - Pipe arguments match named-to-named or unnamed-to-unnamed; an
//     unnamed call-site pipe matches a named callee pipe, but a named
//     call-site argument can never satisfy an unnamed callee pipe
//     (MissingPipeArgument), and at most one pipe may appear on each side
//     (MultiplePipeArguments is enforced by the caller constructing b).
//   - Return types unify last (CannotUnifyReturn on failure), after every
//     argument has unified, so a single bad argument is reported instead
//     of being masked by a return-type mismatch.
func unifyFunction(s *Subst, callee, call Function) error {
	byName := map[string]Argument{}
	for _, a := range callee.Args {
		byName[a.Name] = a
	}

	calleePipe, calleeHasPipe := callee.PipeArg()
	callPipe, callHasPipe := call.PipeArg()

	if callHasPipe {
		if !calleeHasPipe {
			return &UnifyError{Kind: "ExtraArgument", Msg: "piped argument but callee takes no pipe parameter"}
		}
		if callPipe.Name != "" && callPipe.Name != calleePipe.Name {
			return &UnifyError{Kind: "CannotUnifyArgument", Msg: fmt.Sprintf(
				"pipe argument %q does not match callee's pipe parameter %q", callPipe.Name, calleePipe.Name)}
		}
		if err := Unify(s, calleePipe.Type, callPipe.Type); err != nil {
			return &UnifyError{Kind: "CannotUnifyArgument", A: calleePipe.Type, B: callPipe.Type,
				Msg: fmt.Sprintf("cannot unify pipe argument: %v", err)}
		}
	} else if calleeHasPipe && !calleePipe.Optional {
		return &UnifyError{Kind: "MissingPipeArgument", Msg: fmt.Sprintf("missing pipe argument %q", calleePipe.Name)}
	}

	seen := map[string]bool{}
	for _, ca := range call.Args {
		if ca.Pipe {
			continue
		}
		decl, ok := byName[ca.Name]
		if !ok {
			return &UnifyError{Kind: "ExtraArgument", Msg: fmt.Sprintf("unexpected argument %q", ca.Name)}
		}
		seen[ca.Name] = true
		if err := Unify(s, decl.Type, ca.Type); err != nil {
			if ue, ok := err.(*UnifyError); ok && (ue.Kind == "MissingLabel" || ue.Kind == "ExtraLabel") {
				return &UnifyError{Kind: ue.Kind, A: decl.Type, B: ca.Type,
					Msg: fmt.Sprintf("argument %q: %v", ca.Name, err)}
			}
			return &UnifyError{Kind: "CannotUnifyArgument", A: decl.Type, B: ca.Type,
				Msg: fmt.Sprintf("cannot unify argument %q: %v", ca.Name, err)}
		}
	}
	for _, decl := range callee.Args {
		if decl.Pipe || decl.Optional || seen[decl.Name] {
			continue
		}
		return &UnifyError{Kind: "MissingArgument", Msg: fmt.Sprintf("missing required argument %q", decl.Name)}
	}

	if err := Unify(s, callee.Retn, call.Retn); err != nil {
		return &UnifyError{Kind: "CannotUnifyReturn", A: callee.Retn, B: call.Retn,
			Msg: fmt.Sprintf("cannot unify return type: %v", err)}
	}
	return nil
}
