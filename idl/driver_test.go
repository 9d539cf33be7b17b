package idl

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, source string) *Registry {
	t.Helper()
	r, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", source, err)
	}
	return r
}

func TestParseTableWithDefault(t *testing.T) {
	r := mustParse(t, `
		table T { a:int = 5; b:int; }
		root_type T;
		{b:7}
	`)
	sd, ok := r.LookupStruct("T")
	if !ok {
		t.Fatalf("T not found")
	}
	a, _ := sd.Field("a")
	b, _ := sd.Field("b")
	if a.Value.Constant != "5" {
		t.Fatalf("a default = %q, want 5", a.Value.Constant)
	}
	if len(r.Buffer) == 0 {
		t.Fatalf("expected non-empty buffer")
	}
	_ = b
}

func TestParseStructAlignment(t *testing.T) {
	r := mustParse(t, `struct S { x:byte; y:int; }`)
	sd, ok := r.LookupStruct("S")
	if !ok {
		t.Fatalf("S not found")
	}
	if sd.MinAlign != 4 {
		t.Fatalf("minalign = %d, want 4", sd.MinAlign)
	}
	if sd.ByteSize != 8 {
		t.Fatalf("bytesize = %d, want 8", sd.ByteSize)
	}
	x, _ := sd.Field("x")
	y, _ := sd.Field("y")
	if x.Value.Offset != 0 {
		t.Fatalf("x offset = %d, want 0", x.Value.Offset)
	}
	if y.Value.Offset != 4 {
		t.Fatalf("y offset = %d, want 4", y.Value.Offset)
	}
	if x.Padding != 3 {
		t.Fatalf("x padding = %d, want 3", x.Padding)
	}
}

func TestParseUnionDiscriminant(t *testing.T) {
	r := mustParse(t, `
		table A {}
		table B {}
		union U { A, B }
		table R { u:U; }
		root_type R;
		{u_type:B, u:{}}
	`)
	if len(r.Buffer) == 0 {
		t.Fatalf("expected non-empty buffer")
	}
}

func TestParseUnionMissingTagFails(t *testing.T) {
	_, err := Parse(`
		table A {}
		table B {}
		union U { A, B }
		table R { u:U; }
		root_type R;
		{u:{}}
	`)
	if err == nil {
		t.Fatalf("expected error for missing union type tag")
	}
	if !strings.Contains(err.Error(), "missing type field") {
		t.Fatalf("error = %v, want mention of missing type field", err)
	}
}

func TestParseForwardReference(t *testing.T) {
	mustParse(t, `
		table A { b:B; }
		table B { x:int; }
		root_type A;
	`)
	mustParse(t, `
		table B { x:int; }
		table A { b:B; }
		root_type A;
	`)
}

func TestParseUndefinedForwardReferenceFails(t *testing.T) {
	_, err := Parse(`
		table A { b:B; }
		root_type A;
	`)
	if err == nil {
		t.Fatalf("expected error for undefined type B")
	}
	if !strings.Contains(err.Error(), "type referenced but not defined: B") {
		t.Fatalf("error = %v", err)
	}
}

func TestParseBitFlags(t *testing.T) {
	r := mustParse(t, `
		enum E:ubyte (bit_flags) { R, G, B }
		table T { c:E=R; }
		root_type T;
		{c:"R G"}
	`)
	ed, ok := r.LookupEnum("E")
	if !ok {
		t.Fatalf("E not found")
	}
	rv, _ := ed.Val("R")
	gv, _ := ed.Val("G")
	bv, _ := ed.Val("B")
	if rv.Value != 1 || gv.Value != 2 || bv.Value != 4 {
		t.Fatalf("bit_flags values = %d,%d,%d, want 1,2,4", rv.Value, gv.Value, bv.Value)
	}
}

func TestParseIdReorder(t *testing.T) {
	r := mustParse(t, `table T { a:int (id:1); b:int (id:0); }`)
	sd, _ := r.LookupStruct("T")
	a, _ := sd.Field("a")
	b, _ := sd.Field("b")
	if b.Value.Offset != 0 {
		t.Fatalf("b offset = %d, want 0", b.Value.Offset)
	}
	if a.Value.Offset != 2 {
		t.Fatalf("a offset = %d, want 2", a.Value.Offset)
	}
}

func TestParseIdPartialCoverageFails(t *testing.T) {
	_, err := Parse(`table T { a:int (id:1); b:int; }`)
	if err == nil {
		t.Fatalf("expected error when only some fields carry id")
	}
}

func TestParseRootTypeMustBeTable(t *testing.T) {
	_, err := Parse(`
		struct S { x:int; }
		root_type S;
	`)
	if err == nil {
		t.Fatalf("expected error for root_type naming a struct")
	}
}

func TestParseVectorOfStructAndScalars(t *testing.T) {
	r := mustParse(t, `
		struct Vec3 { x:float; y:float; z:float; }
		table Monster {
		  pos: Vec3;
		  inventory: [ubyte];
		  name: string;
		}
		root_type Monster;
		{ pos: {x:1, y:2, z:3}, inventory: [0,1,2], name: "Orc" }
	`)
	if len(r.Buffer) == 0 {
		t.Fatalf("expected non-empty buffer")
	}
}
