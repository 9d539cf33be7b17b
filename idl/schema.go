package idl

// Value is a scalar or reference default/constant carried on a FieldDef or
// EnumVal: its literal source text plus the resolved Type it was parsed
// against.
type Value struct {
	Type     Type
	Constant string // literal text as it appeared in schema source, e.g. "100", "Blue"
	Offset   int    // table field: vtable slot byte offset (slot*2); struct field: byte offset within the struct
}

// FieldDef is one member of a StructDef, in the order declared.
type FieldDef struct {
	Name       string
	DocComment string
	Attributes Attributes
	Value      Value
	Padding    int // bytes inserted after this field, per struct alignment rules
	Deprecated bool
}

// StructDef describes a table or struct declaration. Both share this type;
// Fixed distinguishes a struct (inline, fixed layout) from a table
// (vtable-indirected, growable).
type StructDef struct {
	Name       string
	DocComment string
	Attributes Attributes
	Namespace  []string

	Fields     []*FieldDef
	fieldIndex map[string]int

	Fixed       bool // true for `struct`, false for `table`
	Predecl     bool // true until the body has been parsed at least once
	SortBySize  bool // reorder fields into descending-size buckets for vtable layout
	MinAlign    int
	ByteSize    int // struct: total inline size; table: unused
	TrailingPad int // struct only: padding after the last field to reach a MinAlign multiple
}

// NewStructDef returns a predeclared, empty StructDef named name.
func NewStructDef(name string) *StructDef {
	return &StructDef{Name: name, Predecl: true, MinAlign: 1, fieldIndex: map[string]int{}}
}

// AddField appends f, indexing it by name. It returns an error if the name
// is already taken.
func (s *StructDef) AddField(f *FieldDef) error {
	if _, exists := s.fieldIndex[f.Name]; exists {
		return errNoPos("field already exists: %s", f.Name)
	}
	s.fieldIndex[f.Name] = len(s.Fields)
	s.Fields = append(s.Fields, f)
	return nil
}

// Field looks up a field by name.
func (s *StructDef) Field(name string) (*FieldDef, bool) {
	i, ok := s.fieldIndex[name]
	if !ok {
		return nil, false
	}
	return s.Fields[i], true
}

// EnumVal is one member of an EnumDef.
type EnumVal struct {
	Name       string
	Value      int64
	DocComment string
	// StructDef is set only when this EnumDef.IsUnion: the union member's
	// referenced table, or nil for the reserved NONE member.
	StructDef *StructDef
}

// EnumDef describes an enum or union declaration. A union is modeled as an
// enum of table references whose underlying type is always ubyte.
type EnumDef struct {
	Name           string
	DocComment     string
	Attributes     Attributes
	Namespace      []string
	IsUnion        bool
	UnderlyingType Type

	Vals     []*EnumVal
	valIndex map[string]int
}

// NewEnumDef returns an empty EnumDef named name with the given underlying type.
func NewEnumDef(name string, underlying Type, isUnion bool) *EnumDef {
	e := &EnumDef{Name: name, UnderlyingType: underlying, IsUnion: isUnion, valIndex: map[string]int{}}
	if isUnion {
		e.Vals = append(e.Vals, &EnumVal{Name: "NONE", Value: 0})
		e.valIndex["NONE"] = 0
	}
	return e
}

// AddVal appends v, indexing it by name. It returns an error if the name or
// the numeric value is already taken.
func (e *EnumDef) AddVal(v *EnumVal) error {
	if _, exists := e.valIndex[v.Name]; exists {
		return errNoPos("enum value already exists: %s", v.Name)
	}
	for _, existing := range e.Vals {
		if existing.Value == v.Value {
			return errNoPos("enum value %d for %s already used by %s", v.Value, v.Name, existing.Name)
		}
	}
	e.valIndex[v.Name] = len(e.Vals)
	e.Vals = append(e.Vals, v)
	return nil
}

// Val looks up an enum value by name.
func (e *EnumDef) Val(name string) (*EnumVal, bool) {
	i, ok := e.valIndex[name]
	if !ok {
		return nil, false
	}
	return e.Vals[i], true
}

// ValByValue looks up an enum member by its numeric value, used to resolve
// a union discriminant back to the table it selects.
func (e *EnumDef) ValByValue(n int64) (*EnumVal, bool) {
	for _, v := range e.Vals {
		if v.Value == n {
			return v, true
		}
	}
	return nil, false
}

func errNoPos(format string, args ...interface{}) *ParseError {
	return errAt(Position{}, format, args...)
}
