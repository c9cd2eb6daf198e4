package array

import (
	"github.com/tsforge/tsforge/backend"
	"github.com/tsforge/tsforge/dtype"
)

// As materializes a explicit type cast to dt (spec §4.2 "as(dtype)
// materializes with explicit type cast (integer truncation, complex loses
// imaginary when cast to real with a warning)").
func (a *Array) As(dt dtype.DType) *Array {
	dt = backend.Promote(dt)
	compute := func() (*handle, error) {
		if dtype.IsComplex(dt) {
			cv, err := a.cplxDataPromoted()
			if err != nil {
				return nil, err
			}
			h := newComplexHandle(len(cv))
			copy(h.cplx, cv)
			return h, nil
		}
		if a.IsComplex() {
			backend.Warn("as: cast from complex to real dtype discards the imaginary part")
		}
		rv, err := a.realDataPromoted()
		if err != nil {
			return nil, err
		}
		h := newRealHandle(len(rv))
		for i, x := range rv {
			h.real[i] = quantizeReal(dt, x)
		}
		return h, nil
	}
	return lazy(dt, a.shape, []*Array{a}, compute)
}

// HostCopy returns a's contents as a flat host-ordered real slice, honoring
// the array's memory layout (spec §4.2 "host_copy() returns a host buffer
// honoring the array's memory layout"). Complex arrays should use
// HostCopyComplex instead.
func (a *Array) HostCopy() ([]float64, error) {
	v, err := a.realData()
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out, nil
}

// HostCopyComplex returns a's contents as a flat host-ordered complex slice.
func (a *Array) HostCopyComplex() ([]complex128, error) {
	v, err := a.cplxData()
	if err != nil {
		return nil, err
	}
	out := make([]complex128, len(v))
	copy(out, v)
	return out, nil
}
