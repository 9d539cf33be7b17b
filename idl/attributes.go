package idl

import "strconv"

// Attributes holds the parenthesized metadata attached to a field, table,
// struct, enum, or union: `(id: 3, deprecated, key)`. Individual enum
// values take no metadata. A bare name with no colon is stored with an
// empty value and is tested with Has.
type Attributes map[string]string

// Has reports whether name was present at all, bare or with a value.
func (a Attributes) Has(name string) bool {
	if a == nil {
		return false
	}
	_, ok := a[name]
	return ok
}

// Get returns the raw text of name's value, and whether it was present.
func (a Attributes) Get(name string) (string, bool) {
	if a == nil {
		return "", false
	}
	v, ok := a[name]
	return v, ok
}

// Int lazily parses name's value as a base-10 integer at the point of use
// rather than at attribute-parse time.
func (a Attributes) Int(name string) (int64, bool, error) {
	v, ok := a.Get(name)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, true, errNoPos("attribute %q is not an integer: %s", name, v)
	}
	return n, true, nil
}

// Bool reports whether name is present as a bare attribute (no value, or
// value true, which the lexer turns into "1" unless it is quoted). It never
// errors: absence and false both read as false.
func (a Attributes) Bool(name string) bool {
	v, ok := a.Get(name)
	if !ok {
		return false
	}
	return v == "" || v == "true" || v == "1"
}

// parseAttributes consumes a parenthesized `(name [: value], ...)` block if
// one is present at the lexer's current position. It is a no-op, returning
// an empty non-nil map, when no '(' follows.
func parseAttributes(l *Lexer) (Attributes, error) {
	attrs := Attributes{}
	if !l.IsNextChar('(') {
		return attrs, nil
	}
	for {
		if l.Token != TokIdent && l.Token != TokPrimitive && l.Token != TokReserved {
			return nil, errAt(l.Pos, "expecting attribute name")
		}
		name := l.Attribute
		l.Advance()

		value := ""
		if l.IsNextChar(':') {
			switch l.Token {
			case TokIdent, TokIntConstant, TokFloatConstant, TokStringConstant, TokPrimitive, TokReserved:
				value = l.Attribute
				l.Advance()
			default:
				return nil, errAt(l.Pos, "expecting attribute value")
			}
		}
		attrs[name] = value

		if l.IsNextChar(',') {
			continue
		}
		break
	}
	if err := l.ExpectChar(')'); err != nil {
		return nil, err
	}
	return attrs, nil
}
