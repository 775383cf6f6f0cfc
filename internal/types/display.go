package types

import (
	"fmt"
	"sort"
	"strings"
)

// CanonicalString renders p the way String() does, except every type
// variable is renamed to a short letter (A, B, ..., Z, A1, B1, ...) in
// first-appearance order instead of printing its raw Tvar id. Two runs
// over the same shape always produce the same text regardless of which
// ids the Fresher happened to assign, which is what makes it suitable for
// golden-file comparisons and for diagnostics shown to a user (spec.md
// §4.A; referenced by name in Monotype.String()'s doc comment).
func CanonicalString(p Polytype) string {
	names := map[Tvar]string{}
	var order []Tvar
	Walk(p.Expr, func(m Monotype) {
		if v, ok := m.(Var); ok {
			if _, seen := names[v.V]; !seen {
				names[v.V] = ""
				order = append(order, v.V)
			}
		}
	})
	for _, v := range p.Vars {
		if _, seen := names[v]; !seen {
			names[v] = ""
			order = append(order, v)
		}
	}
	for i, v := range order {
		names[v] = letterName(i)
	}

	var sb strings.Builder
	writeCanonical(&sb, p.Expr, names)

	var clauses []string
	for _, v := range order {
		ks := p.Kinds[v]
		if len(ks) == 0 {
			continue
		}
		kindNames := make([]string, len(ks))
		for i, k := range ks {
			kindNames[i] = k.String()
		}
		sort.Strings(kindNames)
		clauses = append(clauses, fmt.Sprintf("%s: %s", names[v], strings.Join(kindNames, " + ")))
	}
	if len(clauses) > 0 {
		sb.WriteString(" where ")
		sb.WriteString(strings.Join(clauses, ", "))
	}
	return sb.String()
}

func letterName(i int) string {
	letter := string(rune('A' + i%26))
	generation := i / 26
	if generation == 0 {
		return letter
	}
	return fmt.Sprintf("%s%d", letter, generation)
}

func writeCanonical(sb *strings.Builder, t Monotype, names map[Tvar]string) {
	switch v := t.(type) {
	case Var:
		sb.WriteString(names[v.V])
	case Array:
		sb.WriteString("[")
		writeCanonical(sb, v.Elem, names)
		sb.WriteString("]")
	case Dict:
		sb.WriteString("[")
		writeCanonical(sb, v.Key, names)
		sb.WriteString(":")
		writeCanonical(sb, v.Val, names)
		sb.WriteString("]")
	case Record:
		type field struct {
			label string
			typ   Monotype
		}
		var fields []field
		cur := Monotype(v)
		var rowVar Monotype
		for {
			rec, ok := cur.(Record)
			if !ok {
				rowVar = cur
				break
			}
			if rec.empty {
				break
			}
			fields = append(fields, field{rec.Label, rec.Value})
			cur = rec.Tail
			if cur == nil {
				break
			}
		}
		sort.SliceStable(fields, func(i, j int) bool { return fields[i].label < fields[j].label })
		sb.WriteString("{")
		for i, f := range fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.label)
			sb.WriteString(": ")
			writeCanonical(sb, f.typ, names)
		}
		if rowVar != nil {
			if len(fields) > 0 {
				sb.WriteString(" | ")
			}
			writeCanonical(sb, rowVar, names)
		}
		sb.WriteString("}")
	case Function:
		args := make([]Argument, len(v.Args))
		copy(args, v.Args)
		sort.SliceStable(args, func(i, j int) bool { return args[i].Name < args[j].Name })
		sb.WriteString("(")
		for i, a := range args {
			if i > 0 {
				sb.WriteString(", ")
			}
			if a.Pipe {
				sb.WriteString("<-")
			}
			if a.Optional {
				sb.WriteString("?")
			}
			sb.WriteString(a.Name)
			sb.WriteString(": ")
			writeCanonical(sb, a.Type, names)
		}
		sb.WriteString(") => ")
		writeCanonical(sb, v.Retn, names)
	default:
		sb.WriteString(t.String())
	}
}
