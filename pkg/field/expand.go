package field

import (
	"errors"
	"strings"
)

const maxDepth = 32

var errUndefined = errors.New("field: undefined macro")

// Expand renders v with every macro substituted by its definition. When a
// referenced macro is missing the raw rendering is returned instead.
func Expand(v Value, t Table) string {
	s, err := expand(v, t, 0)
	if err != nil {
		return Raw(v)
	}
	return s
}

func expand(v Value, t Table, depth int) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case Plain:
		return string(v), nil
	case Expr:
		if depth > maxDepth {
			return "", errUndefined
		}
		var b strings.Builder
		for _, seg := range v {
			switch seg := seg.(type) {
			case Literal:
				b.WriteString(string(seg))
			case Ref:
				def, ok := t.Lookup(string(seg))
				if !ok {
					return "", errUndefined
				}
				s, err := expand(def, t, depth+1)
				if err != nil {
					return "", err
				}
				b.WriteString(s)
			}
		}
		return b.String(), nil
	}
	return "", nil
}

// Raw renders v without expansion; macro names are upper-cased so they stand
// out from literal text.
func Raw(v Value) string {
	switch v := v.(type) {
	case Plain:
		return string(v)
	case Expr:
		var b strings.Builder
		for _, seg := range v {
			switch seg := seg.(type) {
			case Literal:
				b.WriteString(string(seg))
			case Ref:
				b.WriteString(strings.ToUpper(string(seg)))
			}
		}
		return b.String()
	}
	return ""
}

// ContainsMacro reports whether any space separated word of text names a
// macro in t.
func ContainsMacro(text string, t Table) bool {
	for _, word := range strings.Split(text, " ") {
		if word != "" && t.Has(word) {
			return true
		}
	}
	return false
}

// Encode turns edited text back into a value. Words naming a known macro
// become references; everything else is grouped into literals. A word that
// collides with a macro name is always read as the macro.
func Encode(text string, t Table) Value {
	if !ContainsMacro(text, t) {
		return Plain(text)
	}

	var (
		expr    Expr
		pending string
	)
	for _, word := range strings.Split(text, " ") {
		if word == "" || !t.Has(word) {
			pending += word + " "
			continue
		}
		if len(pending) > 0 {
			expr = append(expr, Literal(pending))
		}
		if len(expr) > 0 {
			if _, ok := expr[len(expr)-1].(Ref); ok {
				expr = append(expr, Literal(" "))
			}
		}
		expr = append(expr, NewRef(word))
		pending = " "
	}
	if len(pending) > 1 {
		expr = append(expr, Literal(pending[:len(pending)-1]))
	}
	return expr
}

// Equal reports whether a and b are the same variant with the same raw text.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	_, aExpr := a.(Expr)
	_, bExpr := b.(Expr)
	if aExpr != bExpr {
		return false
	}
	return Raw(a) == Raw(b)
}

// Refs lists the macro names v references, in order.
func Refs(v Value) []string {
	e, ok := v.(Expr)
	if !ok {
		return nil
	}
	var refs []string
	for _, seg := range e {
		if r, ok := seg.(Ref); ok {
			refs = append(refs, string(r))
		}
	}
	return refs
}
