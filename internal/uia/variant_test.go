package uia

import "testing"

func TestVariantKinds(t *testing.T) {
	tests := []struct {
		name string
		v    Variant
		kind VariantKind
		str  string
	}{
		{"empty", Variant{}, VariantEmpty, "<empty>"},
		{"bool", BoolVariant(true), VariantBool, "true"},
		{"int32", Int32Variant(-7), VariantInt32, "-7"},
		{"int64", Int64Variant(1 << 40), VariantInt64, "1099511627776"},
		{"double", DoubleVariant(1.5), VariantDouble, "1.5"},
		{"string", StringVariant("hi"), VariantString, `"hi"`},
		{"array", Int32ArrayVariant([]int32{1, 2}), VariantInt32Array, "[1,2]"},
	}
	for _, tt := range tests {
		if tt.v.Kind() != tt.kind {
			t.Errorf("%s: kind %v, want %v", tt.name, tt.v.Kind(), tt.kind)
		}
		if tt.v.String() != tt.str {
			t.Errorf("%s: string %q, want %q", tt.name, tt.v.String(), tt.str)
		}
	}
}

func TestVariantEqual(t *testing.T) {
	if !Int32Variant(3).Equal(Int32Variant(3)) {
		t.Error("equal int32 variants should compare equal")
	}
	if Int32Variant(3).Equal(Int32Variant(4)) {
		t.Error("different values should not compare equal")
	}
	if Int32Variant(3).Equal(StringVariant("3")) {
		t.Error("different kinds should not compare equal")
	}
	if !Int32ArrayVariant([]int32{1, 2}).Equal(Int32ArrayVariant([]int32{1, 2})) {
		t.Error("equal arrays should compare equal")
	}
	if Int32ArrayVariant([]int32{1, 2}).Equal(Int32ArrayVariant([]int32{1})) {
		t.Error("different length arrays should not compare equal")
	}
	if !(Variant{}).Equal(Variant{}) {
		t.Error("empty variants should compare equal")
	}
}

func TestInt32ArrayVariantCopies(t *testing.T) {
	src := []int32{1, 2, 3}
	v := Int32ArrayVariant(src)
	src[0] = 99
	if v.Int32Array()[0] != 1 {
		t.Error("variant must copy the array at construction")
	}
}

func TestSimpleElementRuntimeID(t *testing.T) {
	el := NewSimpleElement("btn", 1, 2, 3)
	id, err := el.RuntimeID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(id) != 3 || id[0] != 1 || id[2] != 3 {
		t.Errorf("unexpected runtime id: %v", id)
	}

	anon := NewSimpleElement("anon")
	if _, err := anon.RuntimeID(); err == nil {
		t.Error("expected ErrRuntimeIDUnavailable for empty id")
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		err  error
		want HRESULT
	}{
		{nil, SOK},
		{ErrInvalidArgument, EInvalidArg},
		{ErrNotImplemented, ENotImpl},
		{ErrRuntimeIDUnavailable, EFail},
	}
	for _, tt := range tests {
		if got := FromError(tt.err); got != tt.want {
			t.Errorf("FromError(%v) = %#x, want %#x", tt.err, uint32(got), uint32(tt.want))
		}
	}
}
