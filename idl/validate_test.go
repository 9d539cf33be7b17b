package idl

import "testing"

func TestValidateStructLayout(t *testing.T) {
	r := mustParse(t, `struct S { x:byte; y:int; }`)
	sd, _ := r.LookupStruct("S")
	if err := ValidateStructLayout(sd); err != nil {
		t.Fatalf("unexpected layout error: %v", err)
	}
}

func TestValidateVtableMonotonicWithoutIDs(t *testing.T) {
	r := mustParse(t, `table T { a:int; b:int; c:int; }`)
	sd, _ := r.LookupStruct("T")
	if err := ValidateVtableMonotonic(sd); err != nil {
		t.Fatalf("unexpected vtable error: %v", err)
	}
}

func TestValidateUnionMemberMustBeTable(t *testing.T) {
	_, err := Parse(`
		struct S { x:int; }
		union U { S }
	`)
	if err == nil {
		t.Fatalf("expected error for union member referencing a struct")
	}
}
