package idl

import "fmt"

// BaseType is the closed set of wire-level types a Type can carry.
type BaseType uint8

const (
	BaseNone BaseType = iota
	BaseUType          // union discriminant (an enum with underlying ubyte semantics)
	BaseBool
	BaseByte // int8
	BaseUByte
	BaseShort // int16
	BaseUShort
	BaseInt // int32
	BaseUInt
	BaseLong // int64
	BaseULong
	BaseFloat
	BaseDouble
	BaseString
	BaseVector
	BaseStruct // struct or table reference
	BaseUnion
)

// String returns the schema-source spelling of the base type, where one exists.
func (b BaseType) String() string {
	switch b {
	case BaseNone:
		return "none"
	case BaseUType:
		return "utype"
	case BaseBool:
		return "bool"
	case BaseByte:
		return "byte"
	case BaseUByte:
		return "ubyte"
	case BaseShort:
		return "short"
	case BaseUShort:
		return "ushort"
	case BaseInt:
		return "int"
	case BaseUInt:
		return "uint"
	case BaseLong:
		return "long"
	case BaseULong:
		return "ulong"
	case BaseFloat:
		return "float"
	case BaseDouble:
		return "double"
	case BaseString:
		return "string"
	case BaseVector:
		return "vector"
	case BaseStruct:
		return "struct"
	case BaseUnion:
		return "union"
	default:
		return "unknown"
	}
}

// primitiveKeywords maps every reserved primitive-type spelling to its BaseType.
var primitiveKeywords = map[string]BaseType{
	"bool":    BaseBool,
	"byte":    BaseByte,
	"int8":    BaseByte,
	"ubyte":   BaseUByte,
	"uint8":   BaseUByte,
	"short":   BaseShort,
	"int16":   BaseShort,
	"ushort":  BaseUShort,
	"uint16":  BaseUShort,
	"int":     BaseInt,
	"int32":   BaseInt,
	"uint":    BaseUInt,
	"uint32":  BaseUInt,
	"long":    BaseLong,
	"int64":   BaseLong,
	"ulong":   BaseULong,
	"uint64":  BaseULong,
	"float":   BaseFloat,
	"float32": BaseFloat,
	"double":  BaseDouble,
	"float64": BaseDouble,
	"string":  BaseString,
}

// IsScalar reports whether b is stored inline as a fixed-width numeric or bool.
func (b BaseType) IsScalar() bool {
	switch b {
	case BaseUType, BaseBool, BaseByte, BaseUByte, BaseShort, BaseUShort,
		BaseInt, BaseUInt, BaseLong, BaseULong, BaseFloat, BaseDouble:
		return true
	}
	return false
}

// IsInteger reports whether b is one of the integer scalar kinds (including utype/bool).
func (b BaseType) IsInteger() bool {
	switch b {
	case BaseUType, BaseBool, BaseByte, BaseUByte, BaseShort, BaseUShort,
		BaseInt, BaseUInt, BaseLong, BaseULong:
		return true
	}
	return false
}

// InlineSize returns the number of bytes a value of this base type occupies
// when stored directly inside its container (a table's data buffer, a
// struct, or a vector slot). Pointer-like kinds (string/vector/struct
// table-ref/union payload) always occupy 4 bytes: a uoffset_t.
func (b BaseType) InlineSize() int {
	switch b {
	case BaseBool, BaseByte, BaseUByte, BaseUType:
		return 1
	case BaseShort, BaseUShort:
		return 2
	case BaseInt, BaseUInt, BaseFloat:
		return 4
	case BaseLong, BaseULong, BaseDouble:
		return 8
	case BaseString, BaseVector, BaseUnion:
		return 4
	case BaseStruct:
		return 4 // overwritten to the struct's own size when struct_ref.Fixed
	default:
		return 4
	}
}

// InlineAlignment returns the natural alignment of the base type.
func (b BaseType) InlineAlignment() int {
	if b == BaseStruct {
		return 1 // overwritten by Type.InlineAlignment when struct_ref is fixed
	}
	return b.InlineSize()
}

// BitWidth returns the number of bits available to an integer base type,
// used to range-check bit_flags enum values.
func (b BaseType) BitWidth() int {
	switch b {
	case BaseByte, BaseUByte, BaseUType, BaseBool:
		return 8
	case BaseShort, BaseUShort:
		return 16
	case BaseInt, BaseUInt:
		return 32
	case BaseLong, BaseULong:
		return 64
	default:
		return 0
	}
}

// Type describes the type of a field, enum, vector element, or attribute value.
type Type struct {
	Base      BaseType
	Element   BaseType   // meaningful only when Base == BaseVector
	StructDef *StructDef // weak: non-owning, resolved through the Registry
	EnumDef   *EnumDef   // weak: non-owning, resolved through the Registry
}

// String renders the type the way it would appear in schema source.
func (t Type) String() string {
	switch t.Base {
	case BaseVector:
		return "[" + (Type{Base: t.Element, StructDef: t.StructDef, EnumDef: t.EnumDef}).String() + "]"
	case BaseStruct, BaseUnion:
		if t.StructDef != nil {
			return t.StructDef.Name
		}
		if t.EnumDef != nil {
			return t.EnumDef.Name
		}
		return t.Base.String()
	case BaseUType:
		if t.EnumDef != nil {
			return t.EnumDef.Name
		}
		return "utype"
	default:
		return t.Base.String()
	}
}

// InlineSize returns the number of bytes this type occupies inline.
func (t Type) InlineSize() int {
	if t.Base == BaseStruct && t.StructDef != nil && t.StructDef.Fixed {
		return t.StructDef.ByteSize
	}
	if t.Base == BaseVector {
		return 4
	}
	return t.Base.InlineSize()
}

// InlineAlignment returns the alignment this type requires inline.
func (t Type) InlineAlignment() int {
	if t.Base == BaseStruct && t.StructDef != nil && t.StructDef.Fixed {
		return t.StructDef.MinAlign
	}
	return t.Base.InlineAlignment()
}

// IsFixedStruct reports whether the type resolves to a struct (as opposed
// to a table): a Base == BaseStruct type whose StructDef.Fixed is true.
func (t Type) IsFixedStruct() bool {
	return t.Base == BaseStruct && t.StructDef != nil && t.StructDef.Fixed
}

// ValidateVectorElement enforces the invariant that a vector may not
// contain vectors or unions.
func ValidateVectorElement(elem BaseType) error {
	switch elem {
	case BaseVector:
		return fmt.Errorf("nested vector types not supported (wrap in a table)")
	case BaseUnion:
		return fmt.Errorf("union in vector must be wrapped in a table")
	}
	return nil
}
