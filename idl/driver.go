package idl

// Parse compiles source (schema declarations followed by at most one root
// object literal) into a Registry. On success, if the source included a
// root object, Registry.Buffer holds the finished FlatBuffers-format
// binary. On failure the returned error is always a *ParseError formatted
// as "line <N>: <message>", and no partial buffer is exposed.
func Parse(source string) (*Registry, error) {
	r := NewRegistry()
	l := NewLexer(source)
	if err := l.Err(); err != nil {
		return nil, err
	}

	haveObject, err := parseDecls(r, l)
	if lerr := l.Err(); lerr != nil {
		return nil, lerr
	}
	if err != nil {
		return nil, err
	}
	if haveObject {
		err := parseRootObject(r, l)
		if lerr := l.Err(); lerr != nil {
			return nil, lerr
		}
		if err != nil {
			return nil, err
		}
		if l.Token != TokEOF {
			return nil, errAt(l.Pos, "unexpected content after root object")
		}
	}

	if name, ok := r.AnyPredeclared(); ok {
		return nil, errNoPos("type referenced but not defined: %s", name)
	}
	if err := validateUnions(r); err != nil {
		return nil, err
	}
	if len(r.fieldStack) != 0 {
		return nil, errNoPos("internal error: unbalanced field scratch stack at end of parse")
	}
	return r, nil
}
