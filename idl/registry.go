package idl

import flatbuffers "github.com/google/flatbuffers/go"

// Registry is the compiled result of one Parse call: every struct and enum
// declaration seen, insertion-ordered, plus the resolved root type and
// (once the trailing object literal has been parsed) the finished buffer.
type Registry struct {
	Structs     []*StructDef
	structIndex map[string]int
	Enums       []*EnumDef
	enumIndex   map[string]int

	Namespace     []string
	RootStructDef *StructDef

	interner *Interner
	Builder  *flatbuffers.Builder
	Buffer  []byte // the finished root-object buffer, set once Parse completes
	RootOffset flatbuffers.UOffsetT

	// fieldStack is scratch state used only while a root object literal is
	// being parsed; see value_parser.go.
	fieldStack []fieldStackEntry
}

type fieldStackEntry struct {
	field  *FieldDef
	scalar scalarValue
}

// NewRegistry returns an empty Registry ready to accept declarations.
func NewRegistry() *Registry {
	return &Registry{
		structIndex: map[string]int{},
		enumIndex:   map[string]int{},
		interner:    NewInterner(),
		Builder:     flatbuffers.NewBuilder(1024),
	}
}

// LookupStruct returns the named struct/table by its bare name. Namespace
// plays no part: root_type, field type references and this lookup all
// resolve against one flat table of names.
func (r *Registry) LookupStruct(name string) (*StructDef, bool) {
	i, ok := r.structIndex[name]
	if !ok {
		return nil, false
	}
	return r.Structs[i], true
}

// LookupEnum returns the named enum/union.
func (r *Registry) LookupEnum(name string) (*EnumDef, bool) {
	i, ok := r.enumIndex[name]
	if !ok {
		return nil, false
	}
	return r.Enums[i], true
}

// GetOrCreateStruct returns the existing StructDef named name, or creates
// and registers a new predeclared one. This is how forward references
// (a field typed after a table not yet parsed) are satisfied: the
// StructDef pointer is stable across the later ParseDecl call that fills
// it in and clears Predecl.
func (r *Registry) GetOrCreateStruct(name string) *StructDef {
	name = r.interner.Intern(name)
	if i, ok := r.structIndex[name]; ok {
		return r.Structs[i]
	}
	sd := NewStructDef(name)
	r.structIndex[name] = len(r.Structs)
	r.Structs = append(r.Structs, sd)
	return sd
}

// GetOrCreateEnum creates and registers a new EnumDef named name, and
// returns an error if an enum or union of that name already exists (enums
// have no forward-reference story: they must be fully declared before use,
// so this is only ever a fresh insertion point during declaration parsing).
func (r *Registry) GetOrCreateEnum(name string, underlying Type, isUnion bool) (*EnumDef, error) {
	if i, ok := r.enumIndex[name]; ok {
		return nil, errNoPos("enum or union already defined: %s", r.Enums[i].Name)
	}
	ed := NewEnumDef(name, underlying, isUnion)
	r.enumIndex[name] = len(r.Enums)
	r.Enums = append(r.Enums, ed)
	return ed, nil
}

// AnyPredeclared reports whether any struct remains predeclared but never
// defined, returning its name for the end-of-parse error.
func (r *Registry) AnyPredeclared() (string, bool) {
	for _, sd := range r.Structs {
		if sd.Predecl {
			return sd.Name, true
		}
	}
	return "", false
}
