package array

import (
	"math"

	"github.com/tsforge/tsforge/backend"
	"github.com/tsforge/tsforge/dtype"
	"github.com/tsforge/tsforge/errs"
)

// reduceFn combines an accumulator with the next value.
type reduceFn func(acc, x float64) float64

func sumFn(acc, x float64) float64 { return acc + x }
func prodFn(acc, x float64) float64 { return acc * x }
func minFn(acc, x float64) float64 { return math.Min(acc, x) }
func maxFn(acc, x float64) float64 { return math.Max(acc, x) }

func identityFor(fn string) float64 {
	switch fn {
	case "sum":
		return 0
	case "product":
		return 1
	case "min":
		return math.Inf(1)
	case "max":
		return math.Inf(-1)
	default:
		return 0
	}
}

// reduceAxis folds a's real lane along axis using fn, starting from init;
// axis=-1 reduces over all elements to a scalar (shape {1,1,1,1}). NaN-aware
// variants pass skipNaN=true, replacing NaN with init before folding (spec
// §4.2 "NaN-handling reductions replace NaN with the identity element").
func reduceAxis(a *Array, axis int, name string, fn reduceFn, skipNaN bool) *Array {
	init := identityFor(name)
	strides := stridesOf(a.shape)
	shape := a.shape
	compute := func() (*handle, error) {
		v, err := a.realData()
		if err != nil {
			return nil, err
		}
		if axis < 0 {
			acc := init
			for _, x := range v {
				if skipNaN && math.IsNaN(x) {
					x = init
				}
				acc = fn(acc, x)
			}
			h := newRealHandle(1)
			h.real[0] = acc
			return h, nil
		}
		outShape := shape
		outShape[axis] = 1
		n := outShape.Elements()
		h := newRealHandle(n)
		for i := range h.real {
			h.real[i] = init
		}
		outStrides := stridesOf(outShape)
		var idx [4]int
		total := shape.Elements()
		for i := 0; i < total; i++ {
			unravel(i, shape, idx[:])
			var oidx [4]int
			oidx = idx
			oidx[axis] = 0
			oi := ravel(oidx, outStrides)
			x := v[ravel(idx, strides)]
			if skipNaN && math.IsNaN(x) {
				x = init
			}
			h.real[oi] = fn(h.real[oi], x)
		}
		return h, nil
	}
	outShape := shape
	if axis >= 0 {
		outShape[axis] = 1
	} else {
		outShape = normShape(1)
	}
	return lazy(a.dt, outShape, []*Array{a}, compute)
}

func Sum(a *Array, axis int) *Array   { return reduceAxis(a, axis, "sum", sumFn, false) }
func Product(a *Array, axis int) *Array { return reduceAxis(a, axis, "product", prodFn, false) }
func Min(a *Array, axis int) *Array   { return reduceAxis(a, axis, "min", minFn, false) }
func Max(a *Array, axis int) *Array   { return reduceAxis(a, axis, "max", maxFn, false) }

func NanSum(a *Array, axis int) *Array     { return reduceAxis(a, axis, "sum", sumFn, true) }
func NanProduct(a *Array, axis int) *Array { return reduceAxis(a, axis, "product", prodFn, true) }
func NanMin(a *Array, axis int) *Array     { return reduceAxis(a, axis, "min", minFn, true) }
func NanMax(a *Array, axis int) *Array     { return reduceAxis(a, axis, "max", maxFn, true) }

// Any returns whether any element is non-zero (reduced scalar, shape {1,1,1,1}).
func Any(a *Array) *Array {
	return reduceAxis(a, -1, "sum", func(acc, x float64) float64 {
		if acc != 0 || x != 0 {
			return 1
		}
		return 0
	}, false)
}

// AllNonzero returns whether every element is non-zero.
func AllNonzero(a *Array) *Array {
	compute := func() (*handle, error) {
		v, err := a.realData()
		if err != nil {
			return nil, err
		}
		res := 1.0
		for _, x := range v {
			if x == 0 {
				res = 0
				break
			}
		}
		h := newRealHandle(1)
		h.real[0] = res
		return h, nil
	}
	return lazy(dtype.B8, normShape(1), []*Array{a}, compute)
}

// CountNonzero counts non-zero elements.
func CountNonzero(a *Array) *Array {
	compute := func() (*handle, error) {
		v, err := a.realData()
		if err != nil {
			return nil, err
		}
		n := 0.0
		for _, x := range v {
			if x != 0 {
				n++
			}
		}
		h := newRealHandle(1)
		h.real[0] = n
		return h, nil
	}
	return lazy(dtype.S64, normShape(1), []*Array{a}, compute)
}

// ArgMin returns the flat index of the minimum element (ties broken by
// smallest index, matching the mprofile find-best-N tie-breaking rule).
func ArgMin(a *Array) (int, error) { return argExtreme(a, false) }

// ArgMax returns the flat index of the maximum element.
func ArgMax(a *Array) (int, error) { return argExtreme(a, true) }

func argExtreme(a *Array, max bool) (int, error) {
	v, err := a.realData()
	if err != nil {
		return 0, err
	}
	if len(v) == 0 {
		return 0, errs.Indexf("argmin/argmax on empty array")
	}
	best := 0
	for i := 1; i < len(v); i++ {
		if (max && v[i] > v[best]) || (!max && v[i] < v[best]) {
			best = i
		}
	}
	return best, nil
}

// scanAxis implements inclusive/exclusive scans along axis with the given
// binary op (spec §4.2 "inclusive/exclusive scan with a chosen binary op").
func scanAxis(a *Array, axis int, exclusive bool, name string, fn reduceFn) *Array {
	init := identityFor(name)
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
		outer := n / extent
		backend.Pool().ParallelFor(outer, func(start, end int) {
			var idx [4]int
			for o := start; o < end; o++ {
				// decompose o over the non-scan axes, in the natural order
				rem := o
				for k := 0; k < 4; k++ {
					if k == axis {
						continue
					}
					idx[k] = rem % shape[k]
					rem /= shape[k]
				}
				acc := init
				for s := 0; s < extent; s++ {
					idx[axis] = s
					flat := ravel(idx, strides)
					x := v[flat]
					if exclusive {
						h.real[flat] = acc
						acc = fn(acc, x)
					} else {
						acc = fn(acc, x)
						h.real[flat] = acc
					}
				}
			}
		})
		return h, nil
	}
	return lazy(a.dt, shape, []*Array{a}, compute)
}

func ScanAdd(a *Array, axis int, exclusive bool) *Array {
	return scanAxis(a, axis, exclusive, "sum", sumFn)
}
func ScanMul(a *Array, axis int, exclusive bool) *Array {
	return scanAxis(a, axis, exclusive, "product", prodFn)
}
func ScanMin(a *Array, axis int, exclusive bool) *Array {
	return scanAxis(a, axis, exclusive, "min", minFn)
}
func ScanMax(a *Array, axis int, exclusive bool) *Array {
	return scanAxis(a, axis, exclusive, "max", maxFn)
}

// ScanByKeyAdd implements spec §4.4 "segments are defined by contiguous
// equal keys along the scan axis; reductions restart at each key boundary",
// specialized to 1-D key/value vectors (the common case for feature/cluster
// callers).
func ScanByKeyAdd(keys, values *Array) (*Array, error) {
	return scanByKey(keys, values, "sum", sumFn)
}

func scanByKey(keys, values *Array, name string, fn reduceFn) (*Array, error) {
	kv, err := keys.realData()
	if err != nil {
		return nil, err
	}
	vv, err := values.realData()
	if err != nil {
		return nil, err
	}
	if len(kv) != len(vv) {
		return nil, errs.Shapef("scan-by-key: keys length %d does not match values length %d", len(kv), len(vv))
	}
	init := identityFor(name)
	out := make([]float64, len(vv))
	acc := init
	for i := range vv {
		if i > 0 && kv[i] != kv[i-1] {
			acc = init
		}
		acc = fn(acc, vv[i])
		out[i] = acc
	}
	return FromHost(out, []int{len(out)}, values.dt)
}
