package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Encode renders p as a compact, fully round-trippable s-expression text
// form — distinct from String(), which is for human-facing diagnostics
// and display and is not guaranteed parseable. Encode is what
// internal/cache persists to disk (spec.md §4.H); quantified variables
// are renumbered to 0.. in first-appearance order so the same type always
// encodes identically regardless of which raw Tvar ids its Fresher
// happened to assign.
func Encode(p Polytype) string {
	renum := map[Tvar]int{}
	for _, v := range p.Vars {
		if _, ok := renum[v]; !ok {
			renum[v] = len(renum)
		}
	}
	var sb strings.Builder
	encodeMonotype(&sb, p.Expr, renum)
	sb.WriteString(";")
	first := true
	for _, v := range p.Vars {
		for _, k := range p.Kinds[v] {
			if !first {
				sb.WriteString(",")
			}
			first = false
			fmt.Fprintf(&sb, "%d:%s", renum[v], k)
		}
	}
	return sb.String()
}

func encodeMonotype(sb *strings.Builder, t Monotype, renum map[Tvar]int) {
	switch v := t.(type) {
	case Bool:
		sb.WriteString("bool")
	case Int:
		sb.WriteString("int")
	case Uint:
		sb.WriteString("uint")
	case Float:
		sb.WriteString("float")
	case String_:
		sb.WriteString("string")
	case Duration:
		sb.WriteString("duration")
	case Time:
		sb.WriteString("time")
	case Regexp:
		sb.WriteString("regexp")
	case Bytes:
		sb.WriteString("bytes")
	case Dynamic:
		sb.WriteString("dynamic")
	case Err:
		sb.WriteString("error")
	case Label:
		fmt.Fprintf(sb, "#%q", v.Name)
	case Var:
		n, ok := renum[v.V]
		if !ok {
			n = len(renum)
			renum[v.V] = n
		}
		fmt.Fprintf(sb, "$%d", n)
	case Array:
		sb.WriteString("[")
		encodeMonotype(sb, v.Elem, renum)
		sb.WriteString("]")
	case Dict:
		sb.WriteString("[")
		encodeMonotype(sb, v.Key, renum)
		sb.WriteString(":")
		encodeMonotype(sb, v.Val, renum)
		sb.WriteString("]")
	case Record:
		sb.WriteString("{")
		cur := Monotype(v)
		first := true
		for {
			rec, ok := cur.(Record)
			if !ok {
				sb.WriteString("|")
				encodeMonotype(sb, cur, renum)
				break
			}
			if rec.empty {
				break
			}
			if !first {
				sb.WriteString(",")
			}
			first = false
			fmt.Fprintf(sb, "%q:", rec.Label)
			encodeMonotype(sb, rec.Value, renum)
			cur = rec.Tail
			if cur == nil {
				break
			}
		}
		sb.WriteString("}")
	case Function:
		sb.WriteString("(")
		for i, a := range v.Args {
			if i > 0 {
				sb.WriteString(",")
			}
			if a.Pipe {
				sb.WriteString("<")
			}
			if a.Optional {
				sb.WriteString("?")
			}
			fmt.Fprintf(sb, "%q:", a.Name)
			encodeMonotype(sb, a.Type, renum)
		}
		sb.WriteString(")=>")
		encodeMonotype(sb, v.Retn, renum)
	default:
		sb.WriteString("dynamic")
	}
}

// decoder parses the text Encode produces.
type decoder struct {
	s   string
	pos int
}

// Decode parses an Encode-d polytype, minting one fresh Tvar per distinct
// `$N` placeholder via f.
func Decode(f *Fresher, text string) (Polytype, error) {
	parts := strings.SplitN(text, ";", 2)
	if len(parts) != 2 {
		return Polytype{}, fmt.Errorf("types: malformed encoded polytype %q", text)
	}
	d := &decoder{s: parts[0]}
	mapping := map[int]Tvar{}
	expr, err := d.parseMonotype(f, mapping)
	if err != nil {
		return Polytype{}, err
	}

	kinds := map[Tvar][]Kind{}
	var vars []Tvar
	seen := map[Tvar]bool{}
	if parts[1] != "" {
		for _, clause := range strings.Split(parts[1], ",") {
			kv := strings.SplitN(clause, ":", 2)
			if len(kv) != 2 {
				continue
			}
			n, err := strconv.Atoi(kv[0])
			if err != nil {
				continue
			}
			tv, ok := mapping[n]
			if !ok {
				tv = f.Fresh()
				mapping[n] = tv
			}
			k, ok := KindByName(kv[1])
			if !ok {
				continue
			}
			kinds[tv] = append(kinds[tv], k)
		}
	}
	for _, tv := range mapping {
		if !seen[tv] {
			seen[tv] = true
			vars = append(vars, tv)
		}
	}
	return Polytype{Vars: vars, Kinds: kinds, Expr: expr}, nil
}

func (d *decoder) peek() byte {
	if d.pos >= len(d.s) {
		return 0
	}
	return d.s[d.pos]
}

func (d *decoder) parseMonotype(f *Fresher, mapping map[int]Tvar) (Monotype, error) {
	switch {
	case strings.HasPrefix(d.s[d.pos:], "bool"):
		d.pos += 4
		return Bool{}, nil
	case strings.HasPrefix(d.s[d.pos:], "int"):
		d.pos += 3
		return Int{}, nil
	case strings.HasPrefix(d.s[d.pos:], "uint"):
		d.pos += 4
		return Uint{}, nil
	case strings.HasPrefix(d.s[d.pos:], "float"):
		d.pos += 5
		return Float{}, nil
	case strings.HasPrefix(d.s[d.pos:], "string"):
		d.pos += 6
		return String_{}, nil
	case strings.HasPrefix(d.s[d.pos:], "duration"):
		d.pos += 8
		return Duration{}, nil
	case strings.HasPrefix(d.s[d.pos:], "time"):
		d.pos += 4
		return Time{}, nil
	case strings.HasPrefix(d.s[d.pos:], "regexp"):
		d.pos += 6
		return Regexp{}, nil
	case strings.HasPrefix(d.s[d.pos:], "bytes"):
		d.pos += 5
		return Bytes{}, nil
	case strings.HasPrefix(d.s[d.pos:], "dynamic"):
		d.pos += 7
		return Dynamic{}, nil
	case strings.HasPrefix(d.s[d.pos:], "error"):
		d.pos += 5
		return Err{}, nil
	case d.peek() == '$':
		d.pos++
		start := d.pos
		for d.pos < len(d.s) && d.s[d.pos] >= '0' && d.s[d.pos] <= '9' {
			d.pos++
		}
		n, _ := strconv.Atoi(d.s[start:d.pos])
		tv, ok := mapping[n]
		if !ok {
			tv = f.Fresh()
			mapping[n] = tv
		}
		return Var{V: tv}, nil
	case d.peek() == '#':
		d.pos++
		name, err := d.parseQuoted()
		if err != nil {
			return nil, err
		}
		return Label{Name: name}, nil
	case d.peek() == '[':
		d.pos++
		first, err := d.parseMonotype(f, mapping)
		if err != nil {
			return nil, err
		}
		if d.peek() == ':' {
			d.pos++
			val, err := d.parseMonotype(f, mapping)
			if err != nil {
				return nil, err
			}
			if d.peek() != ']' {
				return nil, fmt.Errorf("types: expected ']' in encoded dict type")
			}
			d.pos++
			return Dict{Key: first, Val: val}, nil
		}
		if d.peek() != ']' {
			return nil, fmt.Errorf("types: expected ']' in encoded array type")
		}
		d.pos++
		return Array{Elem: first}, nil
	case d.peek() == '{':
		d.pos++
		var fields []Argument
		for d.peek() != '|' && d.peek() != '}' {
			name, err := d.parseQuoted()
			if err != nil {
				return nil, err
			}
			if d.peek() != ':' {
				return nil, fmt.Errorf("types: expected ':' in encoded record field")
			}
			d.pos++
			typ, err := d.parseMonotype(f, mapping)
			if err != nil {
				return nil, err
			}
			fields = append(fields, Argument{Name: name, Type: typ})
			if d.peek() == ',' {
				d.pos++
			}
		}
		var tail Monotype = EmptyRecord()
		if d.peek() == '|' {
			d.pos++
			t, err := d.parseMonotype(f, mapping)
			if err != nil {
				return nil, err
			}
			tail = t
		}
		if d.peek() != '}' {
			return nil, fmt.Errorf("types: expected '}' in encoded record")
		}
		d.pos++
		out := tail
		for i := len(fields) - 1; i >= 0; i-- {
			out = Record{Label: fields[i].Name, Value: fields[i].Type, Tail: out}
		}
		return out, nil
	case d.peek() == '(':
		d.pos++
		var args []Argument
		for d.peek() != ')' {
			var a Argument
			if d.peek() == '<' {
				a.Pipe = true
				d.pos++
			}
			if d.peek() == '?' {
				a.Optional = true
				d.pos++
			}
			name, err := d.parseQuoted()
			if err != nil {
				return nil, err
			}
			a.Name = name
			if d.peek() != ':' {
				return nil, fmt.Errorf("types: expected ':' in encoded function argument")
			}
			d.pos++
			typ, err := d.parseMonotype(f, mapping)
			if err != nil {
				return nil, err
			}
			a.Type = typ
			args = append(args, a)
			if d.peek() == ',' {
				d.pos++
			}
		}
		d.pos++ // consume )
		if !strings.HasPrefix(d.s[d.pos:], "=>") {
			return nil, fmt.Errorf("types: expected '=>' in encoded function type")
		}
		d.pos += 2
		retn, err := d.parseMonotype(f, mapping)
		if err != nil {
			return nil, err
		}
		return Function{Args: args, Retn: retn}, nil
	}
	return nil, fmt.Errorf("types: unexpected character %q at offset %d in %q", string(d.peek()), d.pos, d.s)
}

func (d *decoder) parseQuoted() (string, error) {
	if d.peek() != '"' {
		return "", fmt.Errorf("types: expected quoted string at offset %d", d.pos)
	}
	start := d.pos
	d.pos++
	for d.pos < len(d.s) && d.s[d.pos] != '"' {
		if d.s[d.pos] == '\\' {
			d.pos++
		}
		d.pos++
	}
	if d.pos >= len(d.s) {
		return "", fmt.Errorf("types: unterminated quoted string")
	}
	d.pos++
	quoted := d.s[start:d.pos]
	unq, err := strconv.Unquote(quoted)
	if err != nil {
		return "", err
	}
	return unq, nil
}
