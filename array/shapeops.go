package array

import (
	"github.com/tsforge/tsforge/errs"
)

// Reshape returns a view of a with a new shape of equal element count (spec
// §4.2 "reshape (must preserve element count)").
func Reshape(a *Array, dims ...int) (*Array, error) {
	newShape := normShape(dims...)
	if newShape.Elements() != a.shape.Elements() {
		return nil, errs.Shapef("reshape: cannot reshape %v (%d elements) into %v (%d elements)", a.shape, a.shape.Elements(), newShape, newShape.Elements())
	}
	compute := func() (*handle, error) {
		if err := a.Eval(); err != nil {
			return nil, err
		}
		return a.h, nil
	}
	return lazy(a.dt, newShape, []*Array{a}, compute), nil
}

// Flatten collapses a to a single axis, preserving element order (spec
// §4.2 "flatten").
func Flatten(a *Array) (*Array, error) {
	return Reshape(a, a.shape.Elements())
}

// BroadcastTile repeats a by integer multiples per axis (spec §4.2
// "broadcast-tile (integer multiples per axis)").
func BroadcastTile(a *Array, reps [4]int) (*Array, error) {
	for _, r := range reps {
		if r < 1 {
			return nil, errs.Argf("broadcast-tile: repetition counts must be >= 1")
		}
	}
	var outDims [4]int
	for i := range outDims {
		outDims[i] = a.shape[i] * reps[i]
	}
	outShape := Shape(outDims)
	strides := stridesOf(a.shape)
	compute := func() (*handle, error) {
		v, err := a.realData()
		if err != nil {
			return nil, err
		}
		n := outShape.Elements()
		h := newRealHandle(n)
		var idx [4]int
		for i := 0; i < n; i++ {
			unravel(i, outShape, idx[:])
			var src [4]int
			for k := 0; k < 4; k++ {
				src[k] = idx[k] % a.shape[k]
			}
			h.real[i] = v[ravel(src, strides)]
		}
		return h, nil
	}
	return lazy(a.dt, outShape, []*Array{a}, compute), nil
}

// Flip reverses a along axis (spec §4.2 "flip along an axis").
func Flip(a *Array, axis int) *Array {
	shape := a.shape
	strides := stridesOf(shape)
	compute := func() (*handle, error) {
		v, err := a.realData()
		if err != nil {
			return nil, err
		}
		n := shape.Elements()
		h := newRealHandle(n)
		var idx [4]int
		for i := 0; i < n; i++ {
			unravel(i, shape, idx[:])
			src := idx
			src[axis] = shape[axis] - 1 - idx[axis]
			h.real[i] = v[ravel(src, strides)]
		}
		return h, nil
	}
	return lazy(a.dt, shape, []*Array{a}, compute)
}

// Transpose reorders a's axes by perm, a permutation of {0,1,2,3} (spec
// §4.2 "reorder axes by permutation").
func Transpose(a *Array, perm [4]int) (*Array, error) {
	var seen [4]bool
	for _, p := range perm {
		if p < 0 || p > 3 || seen[p] {
			return nil, errs.Argf("transpose: %v is not a permutation of {0,1,2,3}", perm)
		}
		seen[p] = true
	}
	var outDims [4]int
	for i, p := range perm {
		outDims[i] = a.shape[p]
	}
	outShape := Shape(outDims)
	srcStrides := stridesOf(a.shape)
	compute := func() (*handle, error) {
		v, err := a.realData()
		if err != nil {
			return nil, err
		}
		n := outShape.Elements()
		h := newRealHandle(n)
		var idx [4]int
		for i := 0; i < n; i++ {
			unravel(i, outShape, idx[:])
			var src [4]int
			for k := 0; k < 4; k++ {
				src[perm[k]] = idx[k]
			}
			h.real[i] = v[ravel(src, srcStrides)]
		}
		return h, nil
	}
	return lazy(a.dt, outShape, []*Array{a}, compute), nil
}

// Shift moves elements along axis by offset, wrapping cyclically when wrap
// is true or filling with zero otherwise (spec §4.2 "shift with wrap or
// zero fill per axis").
func Shift(a *Array, axis, offset int, wrap bool) *Array {
	shape := a.shape
	strides := stridesOf(shape)
	compute := func() (*handle, error) {
		v, err := a.realData()
		if err != nil {
			return nil, err
		}
		n := shape.Elements()
		h := newRealHandle(n)
		extent := shape[axis]
		var idx [4]int
		for i := 0; i < n; i++ {
			unravel(i, shape, idx[:])
			src := idx
			s := idx[axis] - offset
			if wrap {
				s = ((s % extent) + extent) % extent
				src[axis] = s
				h.real[i] = v[ravel(src, strides)]
			} else if s >= 0 && s < extent {
				src[axis] = s
				h.real[i] = v[ravel(src, strides)]
			} else {
				h.real[i] = 0
			}
		}
		return h, nil
	}
	return lazy(a.dt, shape, []*Array{a}, compute)
}

// Tile repeats a along axis count times by concatenation (distinct from
// BroadcastTile: this only tiles a single axis, matching spec §4.2's
// separate "tile" shape operation).
func Tile(a *Array, axis, count int) (*Array, error) {
	if count < 1 {
		return nil, errs.Argf("tile: count must be >= 1")
	}
	var reps [4]int
	for i := range reps {
		reps[i] = 1
	}
	reps[axis] = count
	return BroadcastTile(a, reps)
}

// Join concatenates arrays along axis (spec §4.2 "join along an axis").
func Join(axis int, arrays ...*Array) (*Array, error) {
	if len(arrays) == 0 {
		return nil, errs.Argf("join: at least one array required")
	}
	base := arrays[0].shape
	total := 0
	for _, a := range arrays {
		for k := 0; k < 4; k++ {
			if k != axis && a.shape[k] != base[k] {
				return nil, errs.Shapef("join: shape %v incompatible with %v off-axis %d", a.shape, base, axis)
			}
		}
		total += a.shape[axis]
	}
	outDims := base
	outDims[axis] = total
	outShape := outDims
	inputs := append([]*Array(nil), arrays...)
	dt := arrays[0].dt
	compute := func() (*handle, error) {
		n := outShape.Elements()
		h := newRealHandle(n)
		outStrides := stridesOf(outShape)
		offset := 0
		for _, a := range arrays {
			v, err := a.realData()
			if err != nil {
				return nil, err
			}
			aStrides := stridesOf(a.shape)
			m := a.shape.Elements()
			var idx [4]int
			for i := 0; i < m; i++ {
				unravel(i, a.shape, idx[:])
				dst := idx
				dst[axis] += offset
				h.real[ravel(dst, outStrides)] = v[ravel(idx, aStrides)]
			}
			offset += a.shape[axis]
		}
		return h, nil
	}
	return lazy(dt, outShape, inputs, compute), nil
}

// PadMode selects the fill strategy for Pad (spec §4.2 "pad with a choice
// of fill modes (zero, symmetric, replicate)").
type PadMode int

const (
	PadZero PadMode = iota
	PadSymmetric
	PadReplicate
)

// Pad adds before/after elements along axis per mode.
func Pad(a *Array, axis, before, after int, mode PadMode) *Array {
	shape := a.shape
	strides := stridesOf(shape)
	outDims := shape
	outDims[axis] = shape[axis] + before + after
	outShape := outDims
	extent := shape[axis]
	compute := func() (*handle, error) {
		v, err := a.realData()
		if err != nil {
			return nil, err
		}
		n := outShape.Elements()
		h := newRealHandle(n)
		var idx [4]int
		for i := 0; i < n; i++ {
			unravel(i, outShape, idx[:])
			src := idx
			p := idx[axis] - before
			switch {
			case p >= 0 && p < extent:
				src[axis] = p
				h.real[i] = v[ravel(src, strides)]
			case mode == PadZero:
				h.real[i] = 0
			case mode == PadReplicate:
				if p < 0 {
					src[axis] = 0
				} else {
					src[axis] = extent - 1
				}
				h.real[i] = v[ravel(src, strides)]
			case mode == PadSymmetric:
				if p < 0 {
					src[axis] = -p - 1
				} else {
					src[axis] = 2*extent - p - 1
				}
				if src[axis] < 0 {
					src[axis] = 0
				}
				if src[axis] >= extent {
					src[axis] = extent - 1
				}
				h.real[i] = v[ravel(src, strides)]
			}
		}
		return h, nil
	}
	return lazy(a.dt, outShape, []*Array{a}, compute)
}

// Triangular extracts the upper (upper=true) or lower triangular part of a
// 2-D array, optionally forcing the diagonal to 1 (spec §4.2 "upper/lower
// triangular extraction with optional unit diagonal").
func Triangular(a *Array, upper bool, unitDiag bool) *Array {
	shape := a.shape
	strides := stridesOf(shape)
	rows, cols := shape[0], shape[1]
	compute := func() (*handle, error) {
		v, err := a.realData()
		if err != nil {
			return nil, err
		}
		n := shape.Elements()
		h := newRealHandle(n)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				keep := (upper && c >= r) || (!upper && c <= r)
				var idx [4]int
				idx[0], idx[1] = r, c
				flat := ravel(idx, strides)
				switch {
				case r == c && unitDiag:
					h.real[flat] = 1
				case keep:
					h.real[flat] = v[flat]
				default:
					h.real[flat] = 0
				}
			}
		}
		return h, nil
	}
	return lazy(a.dt, shape, []*Array{a}, compute)
}

// Diag extracts the k-offset diagonal of a 2-D array as a 1-D vector when
// src is a matrix, or constructs a k-offset diagonal matrix when src is a
// vector (spec §4.2 "diagonal extraction/construction with offset k").
func Diag(a *Array, k int) *Array {
	if a.shape.NumDims() <= 1 {
		return diagConstruct(a, k)
	}
	return diagExtract(a, k)
}

func diagExtract(a *Array, k int) *Array {
	shape := a.shape
	strides := stridesOf(shape)
	rows, cols := shape[0], shape[1]
	length := rows
	if k >= 0 {
		length = cols - k
		if rows < length {
			length = rows
		}
	} else {
		length = rows + k
		if cols < length {
			length = cols
		}
	}
	if length < 0 {
		length = 0
	}
	compute := func() (*handle, error) {
		v, err := a.realData()
		if err != nil {
			return nil, err
		}
		h := newRealHandle(length)
		for i := 0; i < length; i++ {
			r, c := i, i
			if k >= 0 {
				c = i + k
			} else {
				r = i - k
			}
			var idx [4]int
			idx[0], idx[1] = r, c
			h.real[i] = v[ravel(idx, strides)]
		}
		return h, nil
	}
	return lazy(a.dt, normShape(length), []*Array{a}, compute)
}

func diagConstruct(a *Array, k int) *Array {
	n := a.shape.Elements()
	size := n + abs(k)
	outShape := normShape(size, size)
	outStrides := stridesOf(outShape)
	compute := func() (*handle, error) {
		v, err := a.realData()
		if err != nil {
			return nil, err
		}
		h := newRealHandle(outShape.Elements())
		for i := 0; i < n; i++ {
			r, c := i, i
			if k >= 0 {
				c = i + k
			} else {
				r = i - k
			}
			var idx [4]int
			idx[0], idx[1] = r, c
			h.real[ravel(idx, outStrides)] = v[i]
		}
		return h, nil
	}
	return lazy(a.dt, outShape, []*Array{a}, compute)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
