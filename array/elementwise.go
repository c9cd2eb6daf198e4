// Elementwise kernels (C4, spec §4.4 / §6). Every binary op honors the
// broadcasting rule of §4.2; every kernel dispatches its SPMD body through
// the shared worker pool (spec §5), adapted from the teacher's per-element
// scalar fallback in hwy/ops_base.go and hwy/contrib/algo/transform_base.go
// generalized from fixed-width SIMD lanes to a whole flattened array.
package array

import (
	"math"
	"math/cmplx"

	"github.com/tsforge/tsforge/backend"
	"github.com/tsforge/tsforge/dtype"
	"github.com/tsforge/tsforge/errs"
)

// binaryOp builds a lazy broadcast elementwise binary operation. rfn is
// used when the result dtype is real; cfn when it is complex (nil if the
// op is undefined on complex operands, e.g. comparisons).
func binaryOp(name string, a, b *Array, rfn func(x, y float64) float64, cfn func(x, y complex128) complex128, outDType func(dtype.DType, dtype.DType) dtype.DType) *Array {
	outShape, errShape := broadcastShapes(a.shape, b.shape)
	if errShape != nil {
		return errArray(errShape)
	}
	resDT := outDType(a.dt, b.dt)
	aStrides, bStrides := stridesOf(a.shape), stridesOf(b.shape)
	inputs := []*Array{a, b}
	compute := func() (*handle, error) {
		n := outShape.Elements()
		if dtype.IsComplex(resDT) {
			if cfn == nil {
				return nil, errs.Typef("binaryOp %s: undefined on complex operands", name)
			}
			av, err := a.cplxDataPromoted()
			if err != nil {
				return nil, err
			}
			bv, err := b.cplxDataPromoted()
			if err != nil {
				return nil, err
			}
			h := newComplexHandle(n)
			backend.Pool().ParallelFor(n, func(start, end int) {
				var idx [4]int
				for i := start; i < end; i++ {
					unravel(i, outShape, idx[:])
					x := av[broadcastIndex(idx, a.shape, aStrides)]
					y := bv[broadcastIndex(idx, b.shape, bStrides)]
					h.cplx[i] = cfn(x, y)
				}
			})
			return h, nil
		}
		av, err := a.realDataPromoted()
		if err != nil {
			return nil, err
		}
		bv, err := b.realDataPromoted()
		if err != nil {
			return nil, err
		}
		h := newRealHandle(n)
		backend.Pool().ParallelFor(n, func(start, end int) {
			var idx [4]int
			for i := start; i < end; i++ {
				unravel(i, outShape, idx[:])
				x := av[broadcastIndex(idx, a.shape, aStrides)]
				y := bv[broadcastIndex(idx, b.shape, bStrides)]
				h.real[i] = quantizeReal(resDT, rfn(x, y))
			}
		})
		return h, nil
	}
	return lazy(resDT, outShape, inputs, compute)
}

// realDataPromoted returns a's real lane, converting from the complex lane
// (dropping the imaginary part) if necessary.
func (a *Array) realDataPromoted() ([]float64, error) {
	if err := a.Eval(); err != nil {
		return nil, err
	}
	if a.h.real != nil {
		return a.h.real, nil
	}
	out := make([]float64, len(a.h.cplx))
	for i, v := range a.h.cplx {
		out[i] = real(v)
	}
	return out, nil
}

// cplxDataPromoted returns a's complex lane, widening the real lane if
// necessary.
func (a *Array) cplxDataPromoted() ([]complex128, error) {
	if err := a.Eval(); err != nil {
		return nil, err
	}
	if a.h.cplx != nil {
		return a.h.cplx, nil
	}
	out := make([]complex128, len(a.h.real))
	for i, v := range a.h.real {
		out[i] = complex(v, 0)
	}
	return out, nil
}

func errArray(err error) *Array {
	return &Array{n: &node{compute: func() (*handle, error) { return nil, err }}}
}

func sameDType(a, b dtype.DType) dtype.DType { return commonDType(a, b) }

func alwaysB8(dtype.DType, dtype.DType) dtype.DType { return dtype.B8 }

// Add returns a+b with broadcasting.
func Add(a, b *Array) *Array {
	return binaryOp("add", a, b, func(x, y float64) float64 { return x + y }, func(x, y complex128) complex128 { return x + y }, sameDType)
}

// Sub returns a-b with broadcasting.
func Sub(a, b *Array) *Array {
	return binaryOp("sub", a, b, func(x, y float64) float64 { return x - y }, func(x, y complex128) complex128 { return x - y }, sameDType)
}

// Mul returns a*b with broadcasting.
func Mul(a, b *Array) *Array {
	return binaryOp("mul", a, b, func(x, y float64) float64 { return x * y }, func(x, y complex128) complex128 { return x * y }, sameDType)
}

// Div returns a/b with broadcasting.
func Div(a, b *Array) *Array {
	return binaryOp("div", a, b, func(x, y float64) float64 { return x / y }, func(x, y complex128) complex128 { return x / y }, sameDType)
}

// Mod returns a%b with broadcasting (real dtypes only).
func Mod(a, b *Array) *Array {
	return binaryOp("mod", a, b, math.Mod, nil, sameDType)
}

// Pow returns a**b with broadcasting.
func Pow(a, b *Array) *Array {
	return binaryOp("pow", a, b, math.Pow, cmplx.Pow, sameDType)
}

// Minimum returns the elementwise minimum of a and b.
func Minimum(a, b *Array) *Array {
	return binaryOp("minimum", a, b, math.Min, nil, sameDType)
}

// Maximum returns the elementwise maximum of a and b.
func Maximum(a, b *Array) *Array {
	return binaryOp("maximum", a, b, math.Max, nil, sameDType)
}

// Eq returns a boolean (b8) array of a==b.
func Eq(a, b *Array) *Array {
	return binaryOp("eq", a, b, boolOp(func(x, y float64) bool { return x == y }), nil, alwaysB8)
}

// Ne returns a boolean (b8) array of a!=b.
func Ne(a, b *Array) *Array {
	return binaryOp("ne", a, b, boolOp(func(x, y float64) bool { return x != y }), nil, alwaysB8)
}

// Lt returns a boolean (b8) array of a<b.
func Lt(a, b *Array) *Array {
	return binaryOp("lt", a, b, boolOp(func(x, y float64) bool { return x < y }), nil, alwaysB8)
}

// Le returns a boolean (b8) array of a<=b.
func Le(a, b *Array) *Array {
	return binaryOp("le", a, b, boolOp(func(x, y float64) bool { return x <= y }), nil, alwaysB8)
}

// Gt returns a boolean (b8) array of a>b.
func Gt(a, b *Array) *Array {
	return binaryOp("gt", a, b, boolOp(func(x, y float64) bool { return x > y }), nil, alwaysB8)
}

// Ge returns a boolean (b8) array of a>=b.
func Ge(a, b *Array) *Array {
	return binaryOp("ge", a, b, boolOp(func(x, y float64) bool { return x >= y }), nil, alwaysB8)
}

func boolOp(fn func(x, y float64) bool) func(x, y float64) float64 {
	return func(x, y float64) float64 {
		if fn(x, y) {
			return 1
		}
		return 0
	}
}

// LogicalAnd returns the boolean AND of a and b (non-zero is true).
func LogicalAnd(a, b *Array) *Array {
	return binaryOp("and", a, b, boolOp(func(x, y float64) bool { return x != 0 && y != 0 }), nil, alwaysB8)
}

// LogicalOr returns the boolean OR of a and b (non-zero is true).
func LogicalOr(a, b *Array) *Array {
	return binaryOp("or", a, b, boolOp(func(x, y float64) bool { return x != 0 || y != 0 }), nil, alwaysB8)
}

// LogicalNot returns the boolean negation of a.
func LogicalNot(a *Array) *Array {
	return unaryOp("not", a, func(x float64) float64 {
		if x == 0 {
			return 1
		}
		return 0
	}, nil, alwaysSameDType)
}

func alwaysSameDType(dt dtype.DType) dtype.DType { return dt }

// BitAnd, BitOr, BitXor operate on integer dtypes.
func BitAnd(a, b *Array) *Array {
	return binaryOp("bitand", a, b, func(x, y float64) float64 { return float64(int64(x) & int64(y)) }, nil, sameDType)
}
func BitOr(a, b *Array) *Array {
	return binaryOp("bitor", a, b, func(x, y float64) float64 { return float64(int64(x) | int64(y)) }, nil, sameDType)
}
func BitXor(a, b *Array) *Array {
	return binaryOp("bitxor", a, b, func(x, y float64) float64 { return float64(int64(x) ^ int64(y)) }, nil, sameDType)
}

// Shl, Shr are integer left/right shifts.
func Shl(a, b *Array) *Array {
	return binaryOp("shl", a, b, func(x, y float64) float64 { return float64(int64(x) << uint(int64(y))) }, nil, sameDType)
}
func Shr(a, b *Array) *Array {
	return binaryOp("shr", a, b, func(x, y float64) float64 { return float64(int64(x) >> uint(int64(y))) }, nil, sameDType)
}

// unaryOp builds a lazy elementwise unary operation.
func unaryOp(name string, a *Array, rfn func(x float64) float64, cfn func(x complex128) complex128, outDType func(dtype.DType) dtype.DType) *Array {
	resDT := outDType(a.dt)
	compute := func() (*handle, error) {
		n := a.shape.Elements()
		if dtype.IsComplex(resDT) && cfn != nil {
			av, err := a.cplxDataPromoted()
			if err != nil {
				return nil, err
			}
			h := newComplexHandle(n)
			backend.Pool().ParallelFor(n, func(start, end int) {
				for i := start; i < end; i++ {
					h.cplx[i] = cfn(av[i])
				}
			})
			return h, nil
		}
		av, err := a.realDataPromoted()
		if err != nil {
			return nil, err
		}
		h := newRealHandle(n)
		backend.Pool().ParallelFor(n, func(start, end int) {
			for i := start; i < end; i++ {
				h.real[i] = quantizeReal(resDT, rfn(av[i]))
			}
		})
		return h, nil
	}
	return lazy(resDT, a.shape, []*Array{a}, compute)
}

func Neg(a *Array) *Array {
	return unaryOp("neg", a, func(x float64) float64 { return -x }, func(x complex128) complex128 { return -x }, alwaysSameDType)
}
func Abs(a *Array) *Array {
	return unaryOp("abs", a, math.Abs, func(x complex128) complex128 { return complex(cmplx.Abs(x), 0) }, alwaysSameDType)
}
func Sign(a *Array) *Array {
	return unaryOp("sign", a, func(x float64) float64 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		default:
			return 0
		}
	}, nil, alwaysSameDType)
}
func Sqrt(a *Array) *Array { return unaryOp("sqrt", a, math.Sqrt, cmplx.Sqrt, alwaysSameDType) }
func Exp(a *Array) *Array  { return unaryOp("exp", a, math.Exp, cmplx.Exp, alwaysSameDType) }
func Log(a *Array) *Array  { return unaryOp("log", a, math.Log, cmplx.Log, alwaysSameDType) }
func Log2(a *Array) *Array { return unaryOp("log2", a, math.Log2, nil, alwaysSameDType) }
func Log10(a *Array) *Array {
	return unaryOp("log10", a, math.Log10, nil, alwaysSameDType)
}
func Sin(a *Array) *Array  { return unaryOp("sin", a, math.Sin, cmplx.Sin, alwaysSameDType) }
func Cos(a *Array) *Array  { return unaryOp("cos", a, math.Cos, cmplx.Cos, alwaysSameDType) }
func Tan(a *Array) *Array  { return unaryOp("tan", a, math.Tan, cmplx.Tan, alwaysSameDType) }
func Asin(a *Array) *Array { return unaryOp("asin", a, math.Asin, cmplx.Asin, alwaysSameDType) }
func Acos(a *Array) *Array { return unaryOp("acos", a, math.Acos, cmplx.Acos, alwaysSameDType) }
func Atan(a *Array) *Array { return unaryOp("atan", a, math.Atan, cmplx.Atan, alwaysSameDType) }
func Sinh(a *Array) *Array { return unaryOp("sinh", a, math.Sinh, cmplx.Sinh, alwaysSameDType) }
func Cosh(a *Array) *Array { return unaryOp("cosh", a, math.Cosh, cmplx.Cosh, alwaysSameDType) }
func Tanh(a *Array) *Array { return unaryOp("tanh", a, math.Tanh, cmplx.Tanh, alwaysSameDType) }
func Round(a *Array) *Array {
	return unaryOp("round", a, math.Round, nil, alwaysSameDType)
}
func Floor(a *Array) *Array { return unaryOp("floor", a, math.Floor, nil, alwaysSameDType) }
func Ceil(a *Array) *Array  { return unaryOp("ceil", a, math.Ceil, nil, alwaysSameDType) }
func Trunc(a *Array) *Array { return unaryOp("trunc", a, math.Trunc, nil, alwaysSameDType) }

// Real returns the real part of a complex array (or a itself if already real).
func Real(a *Array) *Array {
	if !a.IsComplex() {
		return a
	}
	return unaryOp("real", a, func(x float64) float64 { return x }, nil, func(dtype.DType) dtype.DType {
		if a.dt == dtype.C64 {
			return dtype.F64
		}
		return dtype.F32
	})
}

// Imag returns the imaginary part of a complex array.
func Imag(a *Array) *Array {
	outDT := func(dtype.DType) dtype.DType {
		if a.dt == dtype.C64 {
			return dtype.F64
		}
		return dtype.F32
	}
	resDT := outDT(a.dt)
	compute := func() (*handle, error) {
		cv, err := a.cplxDataPromoted()
		if err != nil {
			return nil, err
		}
		n := len(cv)
		h := newRealHandle(n)
		for i, v := range cv {
			h.real[i] = imag(v)
		}
		return h, nil
	}
	return lazy(resDT, a.shape, []*Array{a}, compute)
}

// Conj returns the complex conjugate of a.
func Conj(a *Array) *Array {
	return unaryOp("conj", a, func(x float64) float64 { return x }, func(x complex128) complex128 { return cmplx.Conj(x) }, alwaysSameDType)
}

// Angle returns the phase angle (argument) of a complex array, in radians.
func Angle(a *Array) *Array {
	resDT := dtype.F64
	if a.dt == dtype.C32 {
		resDT = dtype.F32
	}
	compute := func() (*handle, error) {
		cv, err := a.cplxDataPromoted()
		if err != nil {
			return nil, err
		}
		n := len(cv)
		h := newRealHandle(n)
		for i, v := range cv {
			h.real[i] = cmplx.Phase(v)
		}
		return h, nil
	}
	return lazy(resDT, a.shape, []*Array{a}, compute)
}

// Complex builds a complex array from real and imaginary part arrays.
func Complex(re, im *Array) *Array {
	outShape, errShape := broadcastShapes(re.shape, im.shape)
	if errShape != nil {
		return errArray(errShape)
	}
	resDT := dtype.C64
	if re.dt == dtype.F32 && im.dt == dtype.F32 {
		resDT = dtype.C32
	}
	reStrides, imStrides := stridesOf(re.shape), stridesOf(im.shape)
	compute := func() (*handle, error) {
		rv, err := re.realDataPromoted()
		if err != nil {
			return nil, err
		}
		iv, err := im.realDataPromoted()
		if err != nil {
			return nil, err
		}
		n := outShape.Elements()
		h := newComplexHandle(n)
		var idx [4]int
		for i := 0; i < n; i++ {
			unravel(i, outShape, idx[:])
			h.cplx[i] = complex(rv[broadcastIndex(idx, re.shape, reStrides)], iv[broadcastIndex(idx, im.shape, imStrides)])
		}
		return h, nil
	}
	return lazy(resDT, outShape, []*Array{re, im}, compute)
}

// Clamp bounds x between lo and hi; either bound may be nil, degrading to a
// one-sided Maximum/Minimum (spec §4.4).
func Clamp(x *Array, lo, hi *Array) *Array {
	switch {
	case lo != nil && hi != nil:
		return Minimum(Maximum(x, lo), hi)
	case lo != nil:
		return Maximum(x, lo)
	case hi != nil:
		return Minimum(x, hi)
	default:
		return x
	}
}

// Where blends x and y according to cond (spec §4.4): wherever cond is
// false, y is substituted for x.
func Where(cond, x, y *Array) *Array {
	shape1, err := broadcastShapes(cond.shape, x.shape)
	if err != nil {
		return errArray(err)
	}
	outShape, err := broadcastShapes(shape1, y.shape)
	if err != nil {
		return errArray(err)
	}
	resDT := commonDType(x.dt, y.dt)
	cStrides, xStrides, yStrides := stridesOf(cond.shape), stridesOf(x.shape), stridesOf(y.shape)
	compute := func() (*handle, error) {
		cv, err := cond.realDataPromoted()
		if err != nil {
			return nil, err
		}
		n := outShape.Elements()
		if dtype.IsComplex(resDT) {
			xv, err := x.cplxDataPromoted()
			if err != nil {
				return nil, err
			}
			yv, err := y.cplxDataPromoted()
			if err != nil {
				return nil, err
			}
			h := newComplexHandle(n)
			var idx [4]int
			for i := 0; i < n; i++ {
				unravel(i, outShape, idx[:])
				if cv[broadcastIndex(idx, cond.shape, cStrides)] != 0 {
					h.cplx[i] = xv[broadcastIndex(idx, x.shape, xStrides)]
				} else {
					h.cplx[i] = yv[broadcastIndex(idx, y.shape, yStrides)]
				}
			}
			return h, nil
		}
		xv, err := x.realDataPromoted()
		if err != nil {
			return nil, err
		}
		yv, err := y.realDataPromoted()
		if err != nil {
			return nil, err
		}
		h := newRealHandle(n)
		var idx [4]int
		for i := 0; i < n; i++ {
			unravel(i, outShape, idx[:])
			if cv[broadcastIndex(idx, cond.shape, cStrides)] != 0 {
				h.real[i] = xv[broadcastIndex(idx, x.shape, xStrides)]
			} else {
				h.real[i] = yv[broadcastIndex(idx, y.shape, yStrides)]
			}
		}
		return h, nil
	}
	return lazy(resDT, outShape, []*Array{cond, x, y}, compute)
}
