package array

import (
	"math"

	"github.com/tsforge/tsforge/backend"
	"github.com/tsforge/tsforge/dtype"
	"github.com/tsforge/tsforge/errs"
)

// quantizeReal snaps v to what dt can actually represent: integer types
// truncate, b8 squashes to 0/1, f16/bf16 round through their software
// emulation (dtype.RoundF16), f32/f64 pass through. This is applied at
// every constructor and at As() so the array's contents always agree with
// its declared dtype even though internal storage is a wide float64 lane.
func quantizeReal(dt dtype.DType, v float64) float64 {
	switch dt {
	case dtype.B8:
		if v != 0 {
			return 1
		}
		return 0
	case dtype.U8:
		return float64(uint8(v))
	case dtype.S16:
		return float64(int16(v))
	case dtype.U16:
		return float64(uint16(v))
	case dtype.S32:
		return float64(int32(v))
	case dtype.U32:
		return float64(uint32(v))
	case dtype.S64:
		return float64(int64(v))
	case dtype.U64:
		return float64(uint64(v))
	case dtype.F16:
		return dtype.RoundF16(v)
	case dtype.F32:
		return float64(float32(v))
	default:
		return v
	}
}

func resolveDType(dt dtype.DType) dtype.DType {
	return backend.Promote(dt)
}

// FromHost builds an Array from a flat, column-major-leading host slice,
// shape, and dtype (spec §4.2 "from host buffer + shape + dtype").
// Ownership of data is not taken; tsforge copies it immediately.
func FromHost(data []float64, dims []int, dt dtype.DType) (*Array, error) {
	shape := normShape(dims...)
	n := shape.Elements()
	if len(data) != n {
		return nil, errs.Shapef("FromHost: data length %d does not match shape element count %d", len(data), n)
	}
	dt = resolveDType(dt)
	if dtype.IsComplex(dt) {
		return nil, errs.Typef("FromHost: dtype %s requires complex data, use FromHostComplex", dt)
	}
	h := newRealHandle(n)
	for i, v := range data {
		h.real[i] = quantizeReal(dt, v)
	}
	return materialized(dt, shape, h), nil
}

// FromHostComplex builds a complex-dtype Array from a flat host slice.
func FromHostComplex(data []complex128, dims []int, dt dtype.DType) (*Array, error) {
	if !dtype.IsComplex(dt) {
		return nil, errs.Typef("FromHostComplex: dtype %s is not complex", dt)
	}
	shape := normShape(dims...)
	n := shape.Elements()
	if len(data) != n {
		return nil, errs.Shapef("FromHostComplex: data length %d does not match shape element count %d", len(data), n)
	}
	dt = resolveDType(dt)
	h := newComplexHandle(n)
	copy(h.cplx, data)
	return materialized(dt, shape, h), nil
}

// Full returns an array of shape dims filled with fill (spec §6 `full`).
func Full(fill float64, dt dtype.DType, dims ...int) (*Array, error) {
	shape := normShape(dims...)
	dt = resolveDType(dt)
	n := shape.Elements()
	if dtype.IsComplex(dt) {
		h := newComplexHandle(n)
		for i := range h.cplx {
			h.cplx[i] = complex(fill, 0)
		}
		return materialized(dt, shape, h), nil
	}
	h := newRealHandle(n)
	v := quantizeReal(dt, fill)
	for i := range h.real {
		h.real[i] = v
	}
	return materialized(dt, shape, h), nil
}

// Zeros returns a zero-filled array (spec §6 `zeros`).
func Zeros(dt dtype.DType, dims ...int) (*Array, error) { return Full(0, dt, dims...) }

// Ones returns a one-filled array (spec §6 `ones`).
func Ones(dt dtype.DType, dims ...int) (*Array, error) { return Full(1, dt, dims...) }

// Empty returns an uninitialized (zero-valued here, since Go slices always
// zero-initialize) array of the given shape (spec §6 `empty`).
func Empty(dt dtype.DType, dims ...int) (*Array, error) { return Full(0, dt, dims...) }

// Constant is an alias for Full matching spec §6's `array(value, shape?, dtype?)`.
func Constant(fill float64, dt dtype.DType, dims ...int) (*Array, error) {
	return Full(fill, dt, dims...)
}

// Iota returns a linear ramp 0..n-1 reshaped to dims and tiled per tile
// (spec §6 `iota(shape, tile, dtype)`). tile may be nil for no tiling.
func Iota(dt dtype.DType, dims []int, tile []int) (*Array, error) {
	shape := normShape(dims...)
	dt = resolveDType(dt)
	base := shape.Elements()
	tiled := normShape(tile...)
	if tile == nil {
		tiled = normShape(1, 1, 1, 1)
	}
	total := base * tiled.Elements()
	out := normShape()
	for i := range out {
		out[i] = shape[i] * tiled[i]
	}
	h := newRealHandle(total)
	strides := stridesOf(shape)
	idx := make([]int, 4)
	for i := 0; i < total; i++ {
		unravel(i, out, idx)
		v := 0
		for k := 0; k < 4; k++ {
			v += (idx[k] % shape[k]) * strides[k]
		}
		h.real[i] = quantizeReal(dt, float64(v))
	}
	return materialized(dt, out, h), nil
}

// Identity returns an N-D identity-like array: 1 where the indices of every
// axis of extent greater than 1 agree, 0 elsewhere (spec §6
// `identity(shape, dtype)`).
func Identity(dt dtype.DType, dims ...int) (*Array, error) {
	shape := normShape(dims...)
	dt = resolveDType(dt)
	n := shape.Elements()
	h := newRealHandle(n)
	idx := make([]int, 4)
	for i := 0; i < n; i++ {
		unravel(i, shape, idx)
		same := true
		for k := 1; k < 4; k++ {
			if shape[k] == 1 {
				continue
			}
			if idx[k] >= shape[0] || idx[k] != idx[0] {
				same = false
				break
			}
		}
		if same {
			h.real[i] = quantizeReal(dt, 1)
		}
	}
	return materialized(dt, shape, h), nil
}

// Eye returns a 2-D identity matrix with N rows, M columns (M defaults to
// N), offset diagonal k (spec §6 `eye(N, M?, k, dtype)`).
func Eye(nRows int, mCols int, k int, dt dtype.DType) (*Array, error) {
	if mCols <= 0 {
		mCols = nRows
	}
	dt = resolveDType(dt)
	shape := normShape(nRows, mCols)
	h := newRealHandle(shape.Elements())
	for r := 0; r < nRows; r++ {
		c := r + k
		if c >= 0 && c < mCols {
			h.real[c*nRows+r] = quantizeReal(dt, 1)
		}
	}
	return materialized(dt, shape, h), nil
}

// Arange returns values from start (inclusive) to stop (exclusive) in steps
// of step (spec §6 `arange`).
func Arange(start, stop, step float64, dt dtype.DType) (*Array, error) {
	if step == 0 {
		return nil, errs.Argf("arange: step must be non-zero")
	}
	n := int(math.Ceil((stop - start) / step))
	if n < 0 {
		n = 0
	}
	dt = resolveDType(dt)
	h := newRealHandle(n)
	for i := 0; i < n; i++ {
		h.real[i] = quantizeReal(dt, start+float64(i)*step)
	}
	return materialized(dt, normShape(n), h), nil
}

// Range returns arange(0, stop, 1) broadcast across a batch: Range(shape,
// seqDim, dtype) fills axis seqDim with 0..shape[seqDim]-1, tiled across
// the remaining axes (spec §6 `range(shape, seq_dim, dtype)`).
func Range(dims []int, seqDim int, dt dtype.DType) (*Array, error) {
	shape := normShape(dims...)
	if seqDim < 0 || seqDim > 3 {
		return nil, errs.Argf("range: seq_dim %d out of bounds", seqDim)
	}
	dt = resolveDType(dt)
	n := shape.Elements()
	h := newRealHandle(n)
	idx := make([]int, 4)
	for i := 0; i < n; i++ {
		unravel(i, shape, idx)
		h.real[i] = quantizeReal(dt, float64(idx[seqDim]))
	}
	return materialized(dt, shape, h), nil
}

// Linspace returns num values evenly spaced between start and stop along
// one axis, endpoint-inclusive when endpoint is true (spec §6
// `linspace`). axis selects which of the 4 slots carries the sequence.
func Linspace(start, stop float64, num int, endpoint bool, axis int, dt dtype.DType) (*Array, error) {
	if num <= 0 {
		return nil, errs.Argf("linspace: num must be positive")
	}
	dt = resolveDType(dt)
	div := float64(num)
	if endpoint {
		div = float64(num - 1)
	}
	if div == 0 {
		div = 1
	}
	dims := []int{1, 1, 1, 1}
	dims[axis] = num
	shape := normShape(dims...)
	h := newRealHandle(num)
	for i := 0; i < num; i++ {
		h.real[i] = quantizeReal(dt, start+(stop-start)*float64(i)/div)
	}
	return materialized(dt, shape, h), nil
}

// Geomspace returns num values evenly spaced on a log scale between start
// and stop (spec §6 `geomspace`). start and stop must be non-zero and share
// a sign.
func Geomspace(start, stop float64, num int, dt dtype.DType) (*Array, error) {
	if start == 0 || stop == 0 || (start < 0) != (stop < 0) {
		return nil, errs.Argf("geomspace: start and stop must be non-zero and share a sign")
	}
	sign := 1.0
	if start < 0 {
		sign = -1.0
	}
	lo, hi := math.Log(math.Abs(start)), math.Log(math.Abs(stop))
	a, err := Linspace(lo, hi, num, true, 0, dtype.F64)
	if err != nil {
		return nil, err
	}
	data, _ := a.realData()
	dt = resolveDType(dt)
	h := newRealHandle(num)
	for i, v := range data {
		h.real[i] = quantizeReal(dt, sign*math.Exp(v))
	}
	return materialized(dt, normShape(num), h), nil
}

// Logspace returns num values evenly spaced on a log scale, interpreting
// start/stop as exponents of base (spec §6 `logspace`).
func Logspace(start, stop float64, num int, base float64, dt dtype.DType) (*Array, error) {
	a, err := Linspace(start, stop, num, true, 0, dtype.F64)
	if err != nil {
		return nil, err
	}
	data, _ := a.realData()
	dt = resolveDType(dt)
	h := newRealHandle(num)
	for i, v := range data {
		h.real[i] = quantizeReal(dt, math.Pow(base, v))
	}
	return materialized(dt, normShape(num), h), nil
}
