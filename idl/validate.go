package idl

// validateUnions enforces that every union member value refers to a table,
// never a struct.
func validateUnions(r *Registry) error {
	for _, ed := range r.Enums {
		if !ed.IsUnion {
			continue
		}
		for _, v := range ed.Vals {
			if v.Name == "NONE" {
				continue
			}
			if v.StructDef == nil {
				return errNoPos("union %s member %s has no referenced type", ed.Name, v.Name)
			}
			if v.StructDef.Predecl {
				return errNoPos("type referenced but not defined: %s", v.StructDef.Name)
			}
			if v.StructDef.Fixed {
				return errNoPos("union %s member %s must reference a table, not a struct", ed.Name, v.Name)
			}
		}
	}
	return nil
}

// ValidateStructLayout re-derives the struct layout invariants for one
// StructDef, useful as a standalone property check independent of Parse.
func ValidateStructLayout(sd *StructDef) error {
	if !sd.Fixed {
		return nil
	}
	if sd.ByteSize%sd.MinAlign != 0 {
		return errNoPos("struct %s: bytesize %d is not a multiple of minalign %d", sd.Name, sd.ByteSize, sd.MinAlign)
	}
	for i, f := range sd.Fields {
		align := f.Value.Type.InlineAlignment()
		if f.Value.Offset%align != 0 {
			return errNoPos("struct %s field %s: offset %d is not a multiple of alignment %d", sd.Name, f.Name, f.Value.Offset, align)
		}
		if i+1 < len(sd.Fields) {
			next := sd.Fields[i+1]
			if next.Value.Offset < f.Value.Offset+f.Value.Type.InlineSize() {
				return errNoPos("struct %s: field %s overlaps field %s", sd.Name, f.Name, next.Name)
			}
		}
	}
	return nil
}

// ValidateVtableMonotonic re-derives the vtable-monotonicity invariant
// for a table declared without any explicit `id` attributes.
func ValidateVtableMonotonic(sd *StructDef) error {
	if sd.Fixed {
		return nil
	}
	for i, f := range sd.Fields {
		if f.Attributes.Has("id") {
			return nil // id-based layout has its own contiguity check
		}
		if f.Value.Offset != i*2 {
			return errNoPos("table %s field %s: offset %d does not match declaration position %d", sd.Name, f.Name, f.Value.Offset, i*2)
		}
	}
	return nil
}
