package idl

import (
	"strings"
	"testing"
)

func TestParseNamespace(t *testing.T) {
	r := mustParse(t, `namespace Game.Sample; table T { x:int; }`)
	if strings.Join(r.Namespace, ".") != "Game.Sample" {
		t.Fatalf("namespace = %v", r.Namespace)
	}
}

func TestParseEnumImplicitValues(t *testing.T) {
	r := mustParse(t, `enum Color:byte { Red, Green, Blue }`)
	ed, ok := r.LookupEnum("Color")
	if !ok {
		t.Fatalf("Color not found")
	}
	want := map[string]int64{"Red": 0, "Green": 1, "Blue": 2}
	for name, v := range want {
		ev, ok := ed.Val(name)
		if !ok {
			t.Fatalf("%s not found", name)
		}
		if ev.Value != v {
			t.Fatalf("%s = %d, want %d", name, ev.Value, v)
		}
	}
}

func TestParseEnumOutOfOrderFails(t *testing.T) {
	_, err := Parse(`enum Color:byte { Red = 2, Green = 1 }`)
	if err == nil {
		t.Fatalf("expected error for non-ascending enum values")
	}
}

func TestParseEnumDuplicateFails(t *testing.T) {
	_, err := Parse(`
		enum Color:byte { Red }
		enum Color:byte { Blue }
	`)
	if err == nil {
		t.Fatalf("expected error for duplicate enum")
	}
}

func TestParseStructFieldMustBeScalarOrStruct(t *testing.T) {
	_, err := Parse(`struct S { n:string; }`)
	if err == nil {
		t.Fatalf("expected error for string field in struct")
	}
}

func TestParseDeprecatedForbiddenOnStruct(t *testing.T) {
	_, err := Parse(`struct S { x:int (deprecated); }`)
	if err == nil {
		t.Fatalf("expected error for deprecated struct field")
	}
}

func TestParseDuplicateTypeFails(t *testing.T) {
	_, err := Parse(`
		table T { x:int; }
		table T { y:int; }
	`)
	if err == nil {
		t.Fatalf("expected error for redeclared type")
	}
}

func TestParseVectorOfVectorRejected(t *testing.T) {
	_, err := Parse(`table T { x:[[int]]; }`)
	if err == nil {
		t.Fatalf("expected error for nested vector")
	}
}

func TestParseOriginalOrderDisablesReorder(t *testing.T) {
	r := mustParse(t, `table T (original_order) { a:byte; b:long; c:byte; }`)
	sd, _ := r.LookupStruct("T")
	if sd.SortBySize {
		t.Fatalf("expected SortBySize=false with original_order")
	}
	a, _ := sd.Field("a")
	b, _ := sd.Field("b")
	c, _ := sd.Field("c")
	if a.Value.Offset != 0 || b.Value.Offset != 2 || c.Value.Offset != 4 {
		t.Fatalf("offsets = %d,%d,%d, want declaration-order 0,2,4", a.Value.Offset, b.Value.Offset, c.Value.Offset)
	}
}

func TestParseForceAlign(t *testing.T) {
	r := mustParse(t, `struct S (force_align: 8) { x:byte; }`)
	sd, _ := r.LookupStruct("S")
	if sd.MinAlign != 8 {
		t.Fatalf("minalign = %d, want 8", sd.MinAlign)
	}
	if sd.ByteSize != 8 {
		t.Fatalf("bytesize = %d, want 8", sd.ByteSize)
	}
}

func TestParseForceAlignNotPowerOfTwoFails(t *testing.T) {
	_, err := Parse(`struct S (force_align: 3) { x:byte; }`)
	if err == nil {
		t.Fatalf("expected error for non-power-of-two force_align")
	}
}

func TestParseUnionIdZeroFails(t *testing.T) {
	_, err := Parse(`
		table A {}
		union U { A }
		table T { u:U (id:0); }
	`)
	if err == nil {
		t.Fatalf("expected error for union field id 0")
	}
}
