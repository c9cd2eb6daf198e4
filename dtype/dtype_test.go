package dtype_test

import (
	"testing"

	"github.com/tsforge/tsforge/dtype"
)

func TestStringNames(t *testing.T) {
	t.Parallel()
	cases := map[dtype.DType]string{
		dtype.B8:  "b8",
		dtype.F32: "f32",
		dtype.F64: "f64",
		dtype.S64: "s64",
		dtype.C64: "c64",
	}
	for d, want := range cases {
		if got := d.String(); got != want {
			t.Errorf("String(%v): got %q, want %q", int(d), got, want)
		}
	}
}

func TestItemSize(t *testing.T) {
	t.Parallel()
	cases := map[dtype.DType]int{
		dtype.B8:  1,
		dtype.U8:  1,
		dtype.S16: 2,
		dtype.F16: 2,
		dtype.F32: 4,
		dtype.S32: 4,
		dtype.F64: 8,
		dtype.S64: 8,
		dtype.C32: 8,
		dtype.C64: 16,
	}
	for d, want := range cases {
		if got := dtype.ItemSize(d); got != want {
			t.Errorf("ItemSize(%v): got %d, want %d", d, got, want)
		}
	}
}

func TestIsFloatIsComplexIsInteger(t *testing.T) {
	t.Parallel()
	if !dtype.IsFloat(dtype.F32) || dtype.IsFloat(dtype.S32) {
		t.Error("IsFloat classification wrong")
	}
	if !dtype.IsComplex(dtype.C64) || dtype.IsComplex(dtype.F64) {
		t.Error("IsComplex classification wrong")
	}
	if !dtype.IsInteger(dtype.S64) || dtype.IsInteger(dtype.F64) {
		t.Error("IsInteger classification wrong")
	}
}

func TestIsSigned(t *testing.T) {
	t.Parallel()
	if !dtype.IsSigned(dtype.S32) {
		t.Error("s32 should be signed")
	}
	if dtype.IsSigned(dtype.U32) {
		t.Error("u32 should not be signed")
	}
	if !dtype.IsSigned(dtype.F64) {
		t.Error("f64 should be signed")
	}
}

func TestIsWide(t *testing.T) {
	t.Parallel()
	if !dtype.IsWide(dtype.F64) || !dtype.IsWide(dtype.C64) {
		t.Error("f64/c64 should be wide")
	}
	if dtype.IsWide(dtype.F32) || dtype.IsWide(dtype.C32) {
		t.Error("f32/c32 should not be wide")
	}
}

func TestLaneOf(t *testing.T) {
	t.Parallel()
	if dtype.LaneOf(dtype.F64) != dtype.LaneReal {
		t.Error("f64 should live in the real lane")
	}
	if dtype.LaneOf(dtype.C64) != dtype.LaneComplex {
		t.Error("c64 should live in the complex lane")
	}
}
