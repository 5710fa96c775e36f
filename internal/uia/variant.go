package uia

import (
	"fmt"
	"strconv"
	"strings"
)

// VariantKind discriminates the payload held by a Variant.
type VariantKind int

const (
	VariantEmpty VariantKind = iota
	VariantBool
	VariantInt32
	VariantInt64
	VariantDouble
	VariantString
	VariantInt32Array
)

// Variant is a dynamically typed property value, the portable stand-in for
// the OS tagged union carried by property-changed events. It is copied by
// value; the Int32Array kind is the only heap-backed payload and its slice
// must not be mutated after construction.
type Variant struct {
	kind VariantKind
	b    bool
	i    int64
	f    float64
	s    string
	arr  []int32
}

// Variant constructors.

func BoolVariant(v bool) Variant      { return Variant{kind: VariantBool, b: v} }
func Int32Variant(v int32) Variant    { return Variant{kind: VariantInt32, i: int64(v)} }
func Int64Variant(v int64) Variant    { return Variant{kind: VariantInt64, i: v} }
func DoubleVariant(v float64) Variant { return Variant{kind: VariantDouble, f: v} }
func StringVariant(v string) Variant  { return Variant{kind: VariantString, s: v} }

// Int32ArrayVariant copies v so later caller mutations cannot leak in.
func Int32ArrayVariant(v []int32) Variant {
	cp := make([]int32, len(v))
	copy(cp, v)
	return Variant{kind: VariantInt32Array, arr: cp}
}

// Kind returns the payload discriminator.
func (v Variant) Kind() VariantKind { return v.kind }

// IsEmpty reports whether the variant carries no value.
func (v Variant) IsEmpty() bool { return v.kind == VariantEmpty }

// Bool returns the boolean payload, false for other kinds.
func (v Variant) Bool() bool { return v.b }

// Int64 returns the integer payload widened to 64 bits, 0 for other kinds.
func (v Variant) Int64() int64 { return v.i }

// Double returns the floating point payload, 0 for other kinds.
func (v Variant) Double() float64 { return v.f }

// Str returns the string payload, "" for other kinds.
func (v Variant) Str() string { return v.s }

// Int32Array returns the array payload. Callers must not mutate it.
func (v Variant) Int32Array() []int32 { return v.arr }

// Equal reports payload equality. Used by tests and by consumers that
// suppress no-op property updates.
func (v Variant) Equal(o Variant) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case VariantEmpty:
		return true
	case VariantBool:
		return v.b == o.b
	case VariantInt32, VariantInt64:
		return v.i == o.i
	case VariantDouble:
		return v.f == o.f
	case VariantString:
		return v.s == o.s
	case VariantInt32Array:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if v.arr[i] != o.arr[i] {
				return false
			}
		}
		return true
	}
	return false
}

func (v Variant) String() string {
	switch v.kind {
	case VariantEmpty:
		return "<empty>"
	case VariantBool:
		return strconv.FormatBool(v.b)
	case VariantInt32, VariantInt64:
		return strconv.FormatInt(v.i, 10)
	case VariantDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case VariantString:
		return strconv.Quote(v.s)
	case VariantInt32Array:
		parts := make([]string, len(v.arr))
		for i, n := range v.arr {
			parts[i] = strconv.FormatInt(int64(n), 10)
		}
		return "[" + strings.Join(parts, ",") + "]"
	}
	return fmt.Sprintf("<kind %d>", int(v.kind))
}
