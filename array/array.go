// Package array implements C2 (the N-D Array), C3 (the Indexing Engine) and
// C4 (elementwise/reduction/scan/sort/set kernels) of the spec. An Array is
// a dense tensor of up to four dimensions with lazy evaluation: most
// operations enqueue a node in a small computation graph and return
// immediately; evaluation is forced at sinks (Eval, reductions, HostCopy).
package array

import (
	"runtime"

	"github.com/tsforge/tsforge/backend"
	"github.com/tsforge/tsforge/dtype"
	"github.com/tsforge/tsforge/errs"
)

// Shape is the 4-slot dimension tuple of spec §3, dims[0] fastest-varying.
type Shape [4]int

// NumDims returns the effective number of dimensions: the position of the
// last non-1 axis, plus one.
func (s Shape) NumDims() int {
	last := 0
	for i := 3; i >= 0; i-- {
		if s[i] != 1 {
			last = i
			break
		}
	}
	return last + 1
}

// Elements returns the logical element count, the product of all four dims.
func (s Shape) Elements() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

func normShape(dims ...int) Shape {
	var s Shape
	for i := range s {
		s[i] = 1
	}
	for i, d := range dims {
		if i >= 4 {
			break
		}
		s[i] = d
	}
	return s
}

// handle is the owned device buffer backing one or more materialized
// Arrays (spec §3: "sharing is by shared-ownership smart handle"). Storage
// is one of two dense lanes tagged by dtype; narrower dtypes round-trip
// through the common lane and are only quantized to their nominal precision
// at the As()/HostCopy() boundary (see dtype.RoundF16/RoundBF16), the same
// way the teacher's generic Vec[T Lanes] erases type differences behind a
// handful of helpers instead of one code path per concrete type.
type handle struct {
	real  []float64
	cplx  []complex128
	bytes int64
}

func newRealHandle(n int) *handle {
	h := &handle{real: make([]float64, n), bytes: int64(n * 8)}
	backend.Allocator().Alloc(h.bytes)
	runtime.SetFinalizer(h, func(h *handle) { backend.Allocator().Free(h.bytes) })
	return h
}

func newComplexHandle(n int) *handle {
	h := &handle{cplx: make([]complex128, n), bytes: int64(n * 16)}
	backend.Allocator().Alloc(h.bytes)
	runtime.SetFinalizer(h, func(h *handle) { backend.Allocator().Free(h.bytes) })
	return h
}

// node is one step of the lazy computation graph (spec §9: "owning handle
// with shared ownership; cycles are impossible because every node points
// only to its inputs").
type node struct {
	op      string
	inputs  []*Array
	compute func() (*handle, error)
}

// Array is tsforge's dense N-D tensor (spec §3).
type Array struct {
	shape  Shape
	dt     dtype.DType
	device int
	h      *handle
	n      *node
}

// Shape returns a's shape.
func (a *Array) Shape() Shape { return a.shape }

// DType returns a's element type.
func (a *Array) DType() dtype.DType { return a.dt }

// NDims returns a's effective number of dimensions.
func (a *Array) NDims() int { return a.shape.NumDims() }

// Elements returns a's logical element count.
func (a *Array) Elements() int { return a.shape.Elements() }

func materialized(dt dtype.DType, shape Shape, h *handle) *Array {
	return &Array{shape: shape, dt: dt, h: h}
}

func lazy(dt dtype.DType, shape Shape, inputs []*Array, compute func() (*handle, error)) *Array {
	a := &Array{shape: shape, dt: dt, n: &node{op: "", inputs: inputs, compute: compute}}
	if backend.ManualEval() {
		if err := a.Eval(); err != nil {
			// Manual-eval forces the error to surface now; stash it as a
			// permanently-failing node so the caller still gets it from Eval.
			failErr := err
			a.n = &node{compute: func() (*handle, error) { return nil, failErr }}
		}
	}
	return a
}

// Eval forces every pending computation feeding a, memoizing results so a
// diamond-shaped graph computes each shared ancestor once (spec §5).
func (a *Array) Eval() error {
	if a.h != nil {
		return nil
	}
	if a.n == nil {
		return errs.Devicef("array has neither a value nor a pending computation")
	}
	for _, in := range a.n.inputs {
		if err := in.Eval(); err != nil {
			return err
		}
	}
	h, err := a.n.compute()
	if err != nil {
		return err
	}
	a.h = h
	a.n = nil
	return nil
}

// EvalMultiple forces evaluation of every array in as, so independent sinks
// on the same backend can be dispatched together (spec §4.2).
func EvalMultiple(as ...*Array) error {
	for _, a := range as {
		if err := a.Eval(); err != nil {
			return err
		}
	}
	return nil
}

func (a *Array) realData() ([]float64, error) {
	if err := a.Eval(); err != nil {
		return nil, err
	}
	if a.h.real == nil {
		return nil, errs.Typef("array dtype %s has no real lane", a.dt)
	}
	return a.h.real, nil
}

func (a *Array) cplxData() ([]complex128, error) {
	if err := a.Eval(); err != nil {
		return nil, err
	}
	if a.h.cplx == nil {
		return nil, errs.Typef("array dtype %s has no complex lane", a.dt)
	}
	return a.h.cplx, nil
}

// IsComplex reports whether a stores complex lanes.
func (a *Array) IsComplex() bool { return dtype.IsComplex(a.dt) }
