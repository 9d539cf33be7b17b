package idl

import (
	"sort"
	"strconv"
)

// parseDecls runs the top-level declaration loop (namespace/enum/union/
// root_type/table/struct) until either EOF or the lexer reaches the start
// of the single root object literal ('{' with no preceding reserved word).
// It returns true if a '{' was found, leaving the lexer positioned so the
// value parser can take over.
func parseDecls(r *Registry, l *Lexer) (bool, error) {
	for {
		if l.Err() != nil {
			return false, l.Err()
		}
		switch l.Token {
		case TokEOF:
			return false, nil
		case TokChar:
			if l.Attribute == "{" {
				return true, nil
			}
			return false, errAt(l.Pos, "expecting declaration, got %q", l.Attribute)
		case TokReserved:
			switch l.Attribute {
			case "namespace":
				if err := parseNamespace(r, l); err != nil {
					return false, err
				}
			case "enum":
				if err := parseEnum(r, l, false); err != nil {
					return false, err
				}
			case "union":
				if err := parseEnum(r, l, true); err != nil {
					return false, err
				}
			case "root_type":
				if err := parseRootType(r, l); err != nil {
					return false, err
				}
			case "table":
				if err := parseDecl(r, l, false); err != nil {
					return false, err
				}
			case "struct":
				if err := parseDecl(r, l, true); err != nil {
					return false, err
				}
			default:
				return false, errAt(l.Pos, "unexpected reserved word %q", l.Attribute)
			}
		default:
			return false, errAt(l.Pos, "expecting declaration, got %s", l.describeCurrent())
		}
	}
}

func parseNamespace(r *Registry, l *Lexer) error {
	l.Advance() // 'namespace'
	var parts []string
	for {
		if l.Token != TokIdent {
			return errAt(l.Pos, "expecting identifier in namespace")
		}
		parts = append(parts, l.Attribute)
		l.Advance()
		if !l.IsNextChar('.') {
			break
		}
	}
	if err := l.ExpectChar(';'); err != nil {
		return err
	}
	r.Namespace = parts
	return nil
}

func parseRootType(r *Registry, l *Lexer) error {
	l.Advance() // 'root_type'
	if l.Token != TokIdent {
		return errAt(l.Pos, "expecting identifier after root_type")
	}
	name := l.Attribute
	l.Advance()
	if err := l.ExpectChar(';'); err != nil {
		return err
	}
	sd, ok := r.LookupStruct(name)
	if !ok {
		return errAt(l.Pos, "root type not defined: %s", name)
	}
	if sd.Fixed {
		return errAt(l.Pos, "root type must be a table, not a struct: %s", name)
	}
	r.RootStructDef = sd
	return nil
}

// parseType parses one type annotation: primitive keyword,
// identifier (enum or struct reference, forward-declaring as needed), or a
// bracketed vector.
func parseType(r *Registry, l *Lexer) (Type, error) {
	switch l.Token {
	case TokPrimitive:
		base := primitiveKeywords[l.Attribute]
		l.Advance()
		return Type{Base: base}, nil
	case TokIdent:
		name := l.Attribute
		l.Advance()
		if ed, ok := r.LookupEnum(name); ok {
			base := ed.UnderlyingType.Base
			if ed.IsUnion {
				base = BaseUnion
			}
			return Type{Base: base, EnumDef: ed}, nil
		}
		sd := r.GetOrCreateStruct(name)
		return Type{Base: BaseStruct, StructDef: sd}, nil
	case TokChar:
		if l.Attribute == "[" {
			l.Advance()
			elem, err := parseType(r, l)
			if err != nil {
				return Type{}, err
			}
			if err := ValidateVectorElement(elem.Base); err != nil {
				return Type{}, errAt(l.Pos, "%s", err)
			}
			if err := l.ExpectChar(']'); err != nil {
				return Type{}, err
			}
			return Type{Base: BaseVector, Element: elem.Base, StructDef: elem.StructDef, EnumDef: elem.EnumDef}, nil
		}
	}
	return Type{}, errAt(l.Pos, "expecting type, got %s", l.describeCurrent())
}

// parseEnum handles both `enum` and `union` (isUnion) declarations.
func parseEnum(r *Registry, l *Lexer, isUnion bool) error {
	doc := l.DocComment
	l.Advance() // 'enum' or 'union'
	if l.Token != TokIdent {
		return errAt(l.Pos, "expecting identifier after enum/union")
	}
	name := l.Attribute
	l.Advance()

	var underlying Type
	if isUnion {
		underlying = Type{Base: BaseUType}
	} else {
		if err := l.ExpectChar(':'); err != nil {
			return err
		}
		t, err := parseType(r, l)
		if err != nil {
			return err
		}
		if !t.Base.IsInteger() {
			return errAt(l.Pos, "underlying enum type must be integral: %s", name)
		}
		underlying = t
	}

	ed, err := r.GetOrCreateEnum(name, underlying, isUnion)
	if err != nil {
		return err
	}
	ed.DocComment = doc
	ed.Namespace = append([]string(nil), r.Namespace...)
	if !isUnion {
		underlying.EnumDef = ed
		ed.UnderlyingType = underlying
	}

	attrs, err := parseAttributes(l)
	if err != nil {
		return err
	}
	ed.Attributes = attrs

	if err := l.ExpectChar('{'); err != nil {
		return err
	}

	// A union's implicit NONE=0 member (added by NewEnumDef) already
	// occupies the first slot, so implicit numbering for the first
	// user-declared member must continue from it, not restart at 0.
	nextValue := int64(0)
	haveAny := len(ed.Vals) > 0
	if haveAny {
		nextValue = ed.Vals[len(ed.Vals)-1].Value + 1
	}
	for !l.IsNextChar('}') {
		valDoc := l.DocComment
		if l.Token != TokIdent {
			return errAt(l.Pos, "expecting enum value identifier")
		}
		valName := l.Attribute
		l.Advance()

		value := nextValue
		if l.IsNextChar('=') {
			if l.Token != TokIntConstant {
				return errAt(l.Pos, "expecting integer constant for enum value")
			}
			n, perr := strconv.ParseInt(l.Attribute, 10, 64)
			if perr != nil {
				return errAt(l.Pos, "invalid integer constant: %s", l.Attribute)
			}
			if haveAny && n <= nextValue-1 {
				return errAt(l.Pos, "enum values must be strictly ascending: %s", valName)
			}
			value = n
			l.Advance()
		}

		ev := &EnumVal{Name: valName, Value: value, DocComment: valDoc}
		if isUnion {
			if valName == "NONE" {
				return errAt(l.Pos, "NONE is reserved in unions")
			}
			ev.StructDef = r.GetOrCreateStruct(valName)
		}
		if err := ed.AddVal(ev); err != nil {
			return err
		}
		nextValue = value + 1
		haveAny = true

		if !l.IsNextChar(',') {
			if err := l.ExpectChar('}'); err != nil {
				return err
			}
			break
		}
	}

	if ed.Attributes.Bool("bit_flags") {
		width := underlying.Base.BitWidth()
		for _, v := range ed.Vals {
			if v.Name == "NONE" {
				continue
			}
			if v.Value < 0 || v.Value >= int64(width) {
				return errAt(l.Pos, "bit_flags value out of range for %s: %d", v.Name, v.Value)
			}
			v.Value = 1 << uint(v.Value)
		}
	}
	return nil
}

// parseDecl handles both `table` (fixed=false) and `struct`
// (fixed=true).
func parseDecl(r *Registry, l *Lexer, fixed bool) error {
	doc := l.DocComment
	l.Advance() // 'table' or 'struct'
	if l.Token != TokIdent {
		return errAt(l.Pos, "expecting identifier after table/struct")
	}
	name := l.Attribute
	l.Advance()

	sd := r.GetOrCreateStruct(name)
	if !sd.Predecl {
		return errAt(l.Pos, "type already defined: %s", name)
	}
	sd.Predecl = false
	sd.Fixed = fixed
	sd.DocComment = doc
	sd.Namespace = append([]string(nil), r.Namespace...)
	// Move to the end of insertion order to reflect declaration order.
	if i, ok := r.structIndex[name]; ok && i != len(r.Structs)-1 {
		r.Structs = append(r.Structs[:i], r.Structs[i+1:]...)
		r.structIndex[name] = len(r.Structs)
		r.Structs = append(r.Structs, sd)
		for idx := i; idx < len(r.Structs); idx++ {
			r.structIndex[r.Structs[idx].Name] = idx
		}
	}

	attrs, err := parseAttributes(l)
	if err != nil {
		return err
	}
	sd.Attributes = attrs
	sd.SortBySize = !fixed && !attrs.Has("original_order")
	sd.MinAlign = 1

	if err := l.ExpectChar('{'); err != nil {
		return err
	}
	for !l.IsNextChar('}') {
		if err := parseField(r, l, sd); err != nil {
			return err
		}
	}

	if fixed {
		if fa, present, err := sd.Attributes.Int("force_align"); err != nil {
			return err
		} else if present {
			if !isPowerOfTwoInRange(fa, 1, 256) || int(fa) < sd.MinAlign {
				return errAt(l.Pos, "force_align must be a power of two >= minalign and <= 256")
			}
			sd.MinAlign = int(fa)
		}
		pad := padCount(sd.ByteSize, sd.MinAlign)
		sd.TrailingPad = pad
		sd.ByteSize += pad
	} else {
		if err := finalizeTableIDs(sd); err != nil {
			return err
		}
	}
	return nil
}

func isPowerOfTwoInRange(n int64, lo, hi int64) bool {
	if n < lo || n > hi {
		return false
	}
	return n&(n-1) == 0
}

func padCount(size, align int) int {
	if align <= 1 {
		return 0
	}
	rem := size % align
	if rem == 0 {
		return 0
	}
	return align - rem
}

// parseField implements the field grammar and its attribute rules.
func parseField(r *Registry, l *Lexer, sd *StructDef) error {
	doc := l.DocComment
	if l.Token != TokIdent {
		return errAt(l.Pos, "expecting field name")
	}
	name := l.Attribute
	l.Advance()
	if err := l.ExpectChar(':'); err != nil {
		return err
	}
	typ, err := parseType(r, l)
	if err != nil {
		return err
	}

	if sd.Fixed {
		if typ.Base != BaseStruct && !typ.Base.IsScalar() {
			return errAt(l.Pos, "struct field must be scalar or struct: %s", name)
		}
		if typ.Base == BaseStruct && typ.StructDef != nil && !typ.StructDef.Fixed {
			return errAt(l.Pos, "struct field must reference a struct, not a table: %s", name)
		}
	}

	// Union field: insert the auto-generated <name>_type sibling first.
	if typ.Base == BaseUnion {
		tagField := &FieldDef{
			Name: name + "_type",
			Value: Value{
				Type:     Type{Base: BaseUType, EnumDef: typ.EnumDef},
				Constant: "0",
			},
		}
		if err := addTableField(sd, tagField); err != nil {
			return err
		}
	}

	var constant string
	haveDefault := false
	if l.IsNextChar('=') {
		haveDefault = true
		switch l.Token {
		case TokIntConstant, TokFloatConstant, TokStringConstant, TokIdent:
			constant = l.Attribute
			l.Advance()
			for l.Token == TokIdent {
				constant += " " + l.Attribute
				l.Advance()
			}
		default:
			return errAt(l.Pos, "expecting default value")
		}
	}
	if !haveDefault && typ.Base.IsInteger() {
		constant = "0"
	}
	if !haveDefault && (typ.Base == BaseFloat || typ.Base == BaseDouble) {
		constant = "0"
	}

	attrs, err := parseAttributes(l)
	if err != nil {
		return err
	}
	if err := l.ExpectChar(';'); err != nil {
		return err
	}

	if sd.Fixed && attrs.Bool("deprecated") {
		return errAt(l.Pos, "deprecated forbidden on struct field: %s", name)
	}
	if attrs.Has("nested_flatbuffer") {
		if typ.Base != BaseVector || typ.Element != BaseUByte {
			return errAt(l.Pos, "nested_flatbuffer requires a [ubyte] field: %s", name)
		}
		rootName, _ := attrs.Get("nested_flatbuffer")
		if rootName != "" {
			r.GetOrCreateStruct(rootName)
		}
	}

	fd := &FieldDef{
		Name:       name,
		DocComment: doc,
		Attributes: attrs,
		Value:      Value{Type: typ, Constant: constant},
		Deprecated: attrs.Bool("deprecated"),
	}

	if sd.Fixed {
		return addStructField(sd, fd)
	}
	if err := addTableField(sd, fd); err != nil {
		return err
	}
	return nil
}

// addTableField assigns a provisional vtable offset by position; explicit
// `id` reassignment happens once the whole declaration body is known, in
// finalizeTableIDs.
func addTableField(sd *StructDef, fd *FieldDef) error {
	fd.Value.Offset = len(sd.Fields) * 2
	return sd.AddField(fd)
}

// addStructField aligns bytesize up to the field's inline alignment
// (recording padding on the previous field), places fd at the new offset,
// and grows bytesize by the field's inline size.
func addStructField(sd *StructDef, fd *FieldDef) error {
	align := fd.Value.Type.InlineAlignment()
	pad := padCount(sd.ByteSize, align)
	if pad > 0 && len(sd.Fields) > 0 {
		sd.Fields[len(sd.Fields)-1].Padding = pad
	}
	sd.ByteSize += pad
	fd.Value.Offset = sd.ByteSize
	sd.ByteSize += fd.Value.Type.InlineSize()
	if align > sd.MinAlign {
		sd.MinAlign = align
	}
	return sd.AddField(fd)
}

// finalizeTableIDs implements the `id` attribute contiguity rule: if any
// field carries `id`, all must; ids must form 0..N-1 with no gaps, and
// vtable offsets are reassigned to match. Union tag fields inherit id-1
// from their payload field.
func finalizeTableIDs(sd *StructDef) error {
	any := false
	for _, f := range sd.Fields {
		if f.Attributes.Has("id") {
			any = true
			break
		}
	}
	if !any {
		return nil
	}

	type idField struct {
		id int64
		f  *FieldDef
	}
	var withID []idField
	for _, f := range sd.Fields {
		if isUnionTagField(sd, f) {
			continue // paired below via its union field's id-1
		}
		n, present, err := f.Attributes.Int("id")
		if err != nil {
			return err
		}
		if !present {
			return errNoPos("either all fields or no fields must have an 'id' attribute: %s", f.Name)
		}
		withID = append(withID, idField{id: n, f: f})
	}

	for _, e := range withID {
		if e.f.Value.Type.Base == BaseUnion {
			tag, ok := sd.Field(e.f.Name + "_type")
			if !ok {
				continue
			}
			if e.id == 0 {
				return errNoPos("union field %s: id 0 would give its type tag id -1", e.f.Name)
			}
			tag.Attributes = cloneAttrsWithID(tag.Attributes, e.id-1)
		}
	}

	var all []idField
	for _, f := range sd.Fields {
		n, present, err := f.Attributes.Int("id")
		if err != nil {
			return err
		}
		if !present {
			return errNoPos("either all fields or no fields must have an 'id' attribute: %s", f.Name)
		}
		all = append(all, idField{id: n, f: f})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].id < all[j].id })
	for i, e := range all {
		if e.id != int64(i) {
			return errNoPos("field ids must be contiguous starting at 0: got %d at position %d", e.id, i)
		}
		e.f.Value.Offset = i * 2
	}
	return nil
}

func isUnionTagField(sd *StructDef, f *FieldDef) bool {
	if f.Value.Type.Base != BaseUType {
		return false
	}
	if len(f.Name) <= len("_type") {
		return false
	}
	payloadName := f.Name[:len(f.Name)-len("_type")]
	payload, ok := sd.Field(payloadName)
	return ok && payload.Value.Type.Base == BaseUnion
}

func cloneAttrsWithID(a Attributes, id int64) Attributes {
	out := Attributes{}
	for k, v := range a {
		out[k] = v
	}
	out["id"] = strconv.FormatInt(id, 10)
	return out
}
