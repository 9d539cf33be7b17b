package idl

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	flatbuffers "github.com/google/flatbuffers/go"
)

// scalarValue is the resolved runtime value of one field parsed out of the
// root object literal, before it is written into the builder. Exactly one
// of the payloads is meaningful, selected by field.Value.Type.Base.
type scalarValue struct {
	field *FieldDef

	intVal    int64
	floatVal  float64
	isFloat   bool
	strOffset flatbuffers.UOffsetT
	haveStr   bool
	tableOff  flatbuffers.UOffsetT
	haveTable bool
	structRaw []byte // fixed-size struct bytes, laid out per StructDef offsets
}

// parseRootObject parses the single trailing object literal against
// r.RootStructDef and finishes the builder, populating r.Buffer.
func parseRootObject(r *Registry, l *Lexer) error {
	if r.RootStructDef == nil {
		return errAt(l.Pos, "object literal with no root_type declared")
	}
	off, err := parseTable(r, l, r.RootStructDef)
	if err != nil {
		return err
	}
	r.Builder.Finish(off)
	r.Buffer = r.Builder.FinishedBytes()
	r.RootOffset = off
	return nil
}

// parseAnyValue dispatches on field.Value.Type and returns the
// resolved scalarValue.
func parseAnyValue(r *Registry, l *Lexer, field *FieldDef) (scalarValue, error) {
	t := field.Value.Type
	switch {
	case t.Base == BaseStruct && t.StructDef != nil && t.StructDef.Fixed:
		bytes, err := parseStructValue(r, l, t.StructDef)
		if err != nil {
			return scalarValue{}, err
		}
		return scalarValue{field: field, structRaw: bytes}, nil

	case t.Base == BaseStruct: // table reference
		off, err := parseTable(r, l, t.StructDef)
		if err != nil {
			return scalarValue{}, err
		}
		return scalarValue{field: field, tableOff: off, haveTable: true}, nil

	case t.Base == BaseUnion:
		def, err := unionPayloadDef(r, field)
		if err != nil {
			return scalarValue{}, err
		}
		off, err := parseTable(r, l, def)
		if err != nil {
			return scalarValue{}, err
		}
		return scalarValue{field: field, tableOff: off, haveTable: true}, nil

	case t.Base == BaseString:
		if l.Token != TokStringConstant {
			return scalarValue{}, errAt(l.Pos, "expecting string constant for field %s", field.Name)
		}
		s := l.Attribute
		l.Advance()
		off := r.Builder.CreateString(s)
		return scalarValue{field: field, strOffset: off, haveStr: true}, nil

	case t.Base == BaseVector:
		if !l.IsNextChar('[') {
			return scalarValue{}, errAt(l.Pos, "expecting '[' for vector field %s", field.Name)
		}
		off, err := parseVector(r, l, field, t)
		if err != nil {
			return scalarValue{}, err
		}
		return scalarValue{field: field, tableOff: off, haveTable: true}, nil

	default:
		return parseSingleValue(r, l, field, t)
	}
}

// unionPayloadDef finds the StructDef selected by the most recently pushed
// sibling <name>_type tag.
func unionPayloadDef(r *Registry, field *FieldDef) (*StructDef, error) {
	tagName := field.Name + "_type"
	for i := len(r.fieldStack) - 1; i >= 0; i-- {
		e := r.fieldStack[i].field
		if e != nil && e.Name == tagName {
			ed := field.Value.Type.EnumDef
			if ed == nil {
				return nil, errNoPos("union field %s has no enum definition", field.Name)
			}
			ev, ok := ed.ValByValue(r.fieldStack[i].scalar.intVal)
			if !ok || ev.StructDef == nil {
				return nil, errNoPos("unknown union tag value for field %s", field.Name)
			}
			return ev.StructDef, nil
		}
	}
	return nil, errNoPos("missing type field before union value: %s", tagName)
}

// parseSingleValue implements scalar and enum-literal parsing.
func parseSingleValue(r *Registry, l *Lexer, field *FieldDef, t Type) (scalarValue, error) {
	switch {
	case t.Base == BaseFloat || t.Base == BaseDouble:
		switch l.Token {
		case TokFloatConstant, TokIntConstant:
			f, err := strconv.ParseFloat(l.Attribute, 64)
			if err != nil {
				return scalarValue{}, errAt(l.Pos, "invalid float constant: %s", l.Attribute)
			}
			l.Advance()
			return scalarValue{field: field, floatVal: f, isFloat: true}, nil
		}
		return scalarValue{}, errAt(l.Pos, "expecting numeric constant for field %s", field.Name)

	case t.Base.IsInteger() && t.EnumDef == nil:
		if l.Token != TokIntConstant {
			return scalarValue{}, errAt(l.Pos, "expecting integer constant for field %s", field.Name)
		}
		n, err := strconv.ParseInt(l.Attribute, 10, 64)
		if err != nil {
			return scalarValue{}, errAt(l.Pos, "invalid integer constant: %s", l.Attribute)
		}
		l.Advance()
		return scalarValue{field: field, intVal: n}, nil

	default:
		// Enum-typed scalar (utype or plain enum): integer literal or
		// space-separated identifier tokens OR'ed together.
		if l.Token == TokIntConstant {
			n, err := strconv.ParseInt(l.Attribute, 10, 64)
			if err != nil {
				return scalarValue{}, errAt(l.Pos, "invalid integer constant: %s", l.Attribute)
			}
			l.Advance()
			return scalarValue{field: field, intVal: n}, nil
		}
		if l.Token != TokIdent && l.Token != TokStringConstant {
			return scalarValue{}, errAt(l.Pos, "expecting enum value for field %s", field.Name)
		}
		var acc int64
		first := true
		for l.Token == TokIdent || (first && l.Token == TokStringConstant) {
			text := l.Attribute
			l.Advance()
			for _, tok := range strings.Fields(text) {
				n, err := resolveEnumToken(t.EnumDef, tok)
				if err != nil {
					return scalarValue{}, errAt(l.Pos, "%s", err)
				}
				acc |= n
			}
			first = false
		}
		return scalarValue{field: field, intVal: acc}, nil
	}
}

func resolveEnumToken(ed *EnumDef, tok string) (int64, error) {
	name := tok
	if dot := strings.IndexByte(tok, '.'); dot >= 0 {
		name = tok[dot+1:]
	}
	if ed == nil {
		return 0, errNoPos("enum value %q used with no enum context", tok)
	}
	ev, ok := ed.Val(name)
	if !ok {
		return 0, errNoPos("unknown enum value: %s", tok)
	}
	return ev.Value, nil
}

// parseTable parses one `{ ... }` object literal for a table: the root
// object, a table-typed field or vector element, or a union payload. Fixed
// structs are parsed by parseStructValue instead.
func parseTable(r *Registry, l *Lexer, def *StructDef) (flatbuffers.UOffsetT, error) {
	if err := l.ExpectChar('{'); err != nil {
		return 0, err
	}

	base := len(r.fieldStack)
	seen := map[string]bool{}
	for !l.IsNextChar('}') {
		var name string
		switch l.Token {
		case TokIdent, TokReserved, TokPrimitive:
			name = l.Attribute
			l.Advance()
		case TokStringConstant:
			name = l.Attribute
			l.Advance()
		default:
			return 0, errAt(l.Pos, "expecting field name")
		}
		if err := l.ExpectChar(':'); err != nil {
			return 0, err
		}
		field, ok := def.Field(name)
		if !ok {
			return 0, errAt(l.Pos, "unknown field %q on %s", name, def.Name)
		}
		if seen[name] {
			return 0, errAt(l.Pos, "duplicate field %q", name)
		}
		seen[name] = true

		val, err := parseAnyValue(r, l, field)
		if err != nil {
			return 0, err
		}
		r.fieldStack = append(r.fieldStack, fieldStackEntry{field: field, scalar: val})

		if !l.IsNextChar(',') {
			if err := l.ExpectChar('}'); err != nil {
				return 0, err
			}
			break
		}
	}

	entries := r.fieldStack[base:]
	off, err := emitObject(r, def, entries)
	r.fieldStack = r.fieldStack[:base]
	return off, err
}

func positionalName(def *StructDef, i int) string {
	if i < 0 || i >= len(def.Fields) {
		return "<end>"
	}
	return def.Fields[i].Name
}

// emitObject writes a table (vtable-indirected) from the collected
// field_stack entries, following the size-class bucket ordering described
// order below. Fixed structs never reach here: they are parsed and laid out
// directly as byte blocks by parseStructValue/writeStructField.
func emitObject(r *Registry, def *StructDef, entries []fieldStackEntry) (flatbuffers.UOffsetT, error) {
	b := r.Builder
	b.StartObject(len(def.Fields))

	sizes := []int{8, 4, 2, 1}
	if !def.SortBySize {
		sizes = []int{1}
	}
	for _, size := range sizes {
		for i := len(entries) - 1; i >= 0; i-- {
			e := entries[i]
			// Bucket by vtable slot width (4 bytes for any pointer-like
			// field, including an inline struct, regardless of the
			// struct's own byte size), not by the field's inlined size.
			if def.SortBySize && e.field.Value.Type.Base.InlineSize() != size {
				continue
			}
			if err := emitTableField(b, e); err != nil {
				return 0, err
			}
		}
	}
	return b.EndObject(), nil
}

func writeStructField(buf []byte, e fieldStackEntry) {
	off := e.field.Value.Offset
	t := e.field.Value.Type
	switch {
	case t.Base == BaseStruct && t.StructDef != nil:
		copy(buf[off:], e.scalar.structRaw)
	case t.Base == BaseFloat:
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(e.scalar.floatVal)))
	case t.Base == BaseDouble:
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(e.scalar.floatVal))
	default:
		putIntBytes(buf[off:], e.scalar.intVal, t.Base.InlineSize())
	}
}

func putIntBytes(buf []byte, v int64, size int) {
	switch size {
	case 1:
		buf[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(buf, uint64(v))
	}
}

// placeStructBytes copies a fully-laid-out struct byte block into the
// builder, back to front, and returns its offset. The struct's bytes are
// computed independently of write order and pasted in as one contiguous
// block immediately before use.
func placeStructBytes(b *flatbuffers.Builder, def *StructDef, raw []byte) (flatbuffers.UOffsetT, error) {
	b.Prep(def.MinAlign, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		b.PrependByte(raw[i])
	}
	return b.Offset(), nil
}

func emitTableField(b *flatbuffers.Builder, e fieldStackEntry) error {
	f := e.field
	if f.Deprecated {
		return nil
	}
	slot := f.Value.Offset / 2
	t := f.Value.Type

	switch {
	case t.Base == BaseStruct && t.StructDef != nil && t.StructDef.Fixed:
		off, err := placeStructBytes(b, t.StructDef, e.scalar.structRaw)
		if err != nil {
			return err
		}
		b.PrependStructSlot(slot, off, 0)
	case t.Base == BaseString || t.Base == BaseVector || t.Base == BaseStruct || t.Base == BaseUnion:
		if e.scalar.haveStr {
			b.PrependUOffsetTSlot(slot, e.scalar.strOffset, 0)
		} else if e.scalar.haveTable {
			b.PrependUOffsetTSlot(slot, e.scalar.tableOff, 0)
		}
	case t.Base == BaseFloat:
		def, _ := strconv.ParseFloat(defaultOr(f.Value.Constant, "0"), 32)
		b.PrependFloat32Slot(slot, float32(e.scalar.floatVal), float32(def))
	case t.Base == BaseDouble:
		def, _ := strconv.ParseFloat(defaultOr(f.Value.Constant, "0"), 64)
		b.PrependFloat64Slot(slot, e.scalar.floatVal, def)
	case t.Base == BaseBool:
		def := f.Value.Constant == "1"
		b.PrependBoolSlot(slot, e.scalar.intVal != 0, def)
	default:
		emitIntSlot(b, t.Base, slot, e.scalar.intVal, resolveIntDefault(t, f.Value.Constant))
	}
	return nil
}

func defaultOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// resolveIntDefault parses a field's default constant into its wire value.
// For a plain integer field the constant is already numeric; for an
// enum-typed field (including bit_flags, which may OR several names
// together) the constant is one or more space-separated enum member names
// and must be resolved through the field's EnumDef, exactly like a literal
// enum value in the object.
func resolveIntDefault(t Type, constant string) int64 {
	constant = defaultOr(constant, "0")
	if n, err := strconv.ParseInt(constant, 10, 64); err == nil {
		return n
	}
	if t.EnumDef == nil {
		return 0
	}
	var acc int64
	for _, tok := range strings.Fields(constant) {
		n, err := resolveEnumToken(t.EnumDef, tok)
		if err != nil {
			return 0
		}
		acc |= n
	}
	return acc
}

func emitIntSlot(b *flatbuffers.Builder, base BaseType, slot int, v, def int64) {
	switch base {
	case BaseByte:
		b.PrependInt8Slot(slot, int8(v), int8(def))
	case BaseUByte, BaseUType:
		b.PrependUint8Slot(slot, uint8(v), uint8(def))
	case BaseShort:
		b.PrependInt16Slot(slot, int16(v), int16(def))
	case BaseUShort:
		b.PrependUint16Slot(slot, uint16(v), uint16(def))
	case BaseInt:
		b.PrependInt32Slot(slot, int32(v), int32(def))
	case BaseUInt:
		b.PrependUint32Slot(slot, uint32(v), uint32(def))
	case BaseLong:
		b.PrependInt64Slot(slot, v, def)
	case BaseULong:
		b.PrependUint64Slot(slot, uint64(v), uint64(def))
	}
}

// parseVector parses a `[ ... ]` vector literal.
func parseVector(r *Registry, l *Lexer, field *FieldDef, t Type) (flatbuffers.UOffsetT, error) {
	elemType := Type{Base: t.Element, StructDef: t.StructDef, EnumDef: t.EnumDef}
	var elems []scalarValue
	for !l.IsNextChar(']') {
		elemField := &FieldDef{Name: field.Name, Value: Value{Type: elemType}}
		v, err := parseAnyValue(r, l, elemField)
		if err != nil {
			return 0, err
		}
		elems = append(elems, v)
		if !l.IsNextChar(',') {
			if err := l.ExpectChar(']'); err != nil {
				return 0, err
			}
			break
		}
	}

	b := r.Builder
	b.StartVector(elemType.InlineSize(), len(elems), elemType.InlineAlignment())
	for i := len(elems) - 1; i >= 0; i-- {
		e := elems[i]
		switch {
		case elemType.Base == BaseStruct && elemType.StructDef != nil && elemType.StructDef.Fixed:
			if _, err := placeStructBytes(b, elemType.StructDef, e.structRaw); err != nil {
				return 0, err
			}
		case elemType.Base == BaseString:
			b.PrependUOffsetT(e.strOffset)
		case elemType.Base == BaseStruct:
			b.PrependUOffsetT(e.tableOff)
		case elemType.Base == BaseFloat:
			b.PrependFloat32(float32(e.floatVal))
		case elemType.Base == BaseDouble:
			b.PrependFloat64(e.floatVal)
		case elemType.Base == BaseBool:
			b.PrependBool(e.intVal != 0)
		default:
			prependIntElem(b, elemType.Base, e.intVal)
		}
	}
	return b.EndVector(len(elems)), nil
}

func prependIntElem(b *flatbuffers.Builder, base BaseType, v int64) {
	switch base {
	case BaseByte:
		b.PrependInt8(int8(v))
	case BaseUByte, BaseUType:
		b.PrependUint8(uint8(v))
	case BaseShort:
		b.PrependInt16(int16(v))
	case BaseUShort:
		b.PrependUint16(uint16(v))
	case BaseInt:
		b.PrependInt32(int32(v))
	case BaseUInt:
		b.PrependUint32(uint32(v))
	case BaseLong:
		b.PrependInt64(v)
	case BaseULong:
		b.PrependUint64(uint64(v))
	}
}

// parseStructValue parses a `{ ... }` struct literal into a raw fixed-size
// byte block without touching the builder, so nested struct-in-struct
// values can be composed purely by byte copy (writeStructField above).
func parseStructValue(r *Registry, l *Lexer, def *StructDef) ([]byte, error) {
	if err := l.ExpectChar('{'); err != nil {
		return nil, err
	}
	buf := make([]byte, def.ByteSize)
	idx := 0
	for !l.IsNextChar('}') {
		if l.Token != TokIdent {
			return nil, errAt(l.Pos, "expecting struct field name")
		}
		name := l.Attribute
		l.Advance()
		if err := l.ExpectChar(':'); err != nil {
			return nil, err
		}
		if idx >= len(def.Fields) || def.Fields[idx].Name != name {
			return nil, errAt(l.Pos, "struct fields must appear in declaration order: expected %s", positionalName(def, idx))
		}
		field := def.Fields[idx]
		val, err := parseAnyValue(r, l, field)
		if err != nil {
			return nil, err
		}
		writeStructField(buf, fieldStackEntry{field: field, scalar: val})
		idx++
		if !l.IsNextChar(',') {
			if err := l.ExpectChar('}'); err != nil {
				return nil, err
			}
			break
		}
	}
	if idx != len(def.Fields) {
		return nil, errNoPos("struct %s: all fields are required", def.Name)
	}
	return buf, nil
}
