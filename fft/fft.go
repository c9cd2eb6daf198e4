// Package fft implements C6: complex-to-complex and real-to-complex Fourier
// transforms with four normalization conventions, frequency-grid helpers,
// and the convolution primitive shared by tsforge/stats's xcorr/xcov and
// tsforge/mprofile's sliding dot product (spec §4.8.1's "flip q, FFT-expand
// to length n, multiply by FFT of t, inverse transform, take the tail" is
// restated almost verbatim in the matrix-profile reference's crossCorrelate,
// grounded on other_examples/*matrix-profile*compute.go.go). No FFT library
// exists anywhere in the retrieval pack, so this package is implemented
// against math/cmplx directly (documented as the one deliberate
// standard-library-only component in DESIGN.md) as an iterative radix-2
// Cooley-Tukey transform with a Bluestein chirp-z fallback for lengths that
// are not a power of two.
package fft

import (
	"math"
	"math/cmplx"

	"github.com/tsforge/tsforge/errs"
)

// Norm selects one of the four normalization conventions of spec §4.6.
type Norm int

const (
	Backward    Norm = iota // forward=1, inverse=1/n
	Forward                 // forward=1/n, inverse=1
	Orthonormal             // both = 1/sqrt(n)
)

// CustomNorm carries an explicit scale factor for both forward and inverse
// transforms (spec §4.6 "Custom(factor)").
type CustomNorm struct {
	Factor float64
}

func scaleFactors(n int, norm Norm, custom *CustomNorm) (fwd, inv float64) {
	if custom != nil {
		return custom.Factor, custom.Factor
	}
	switch norm {
	case Forward:
		return 1 / float64(n), 1
	case Orthonormal:
		s := 1 / math.Sqrt(float64(n))
		return s, s
	default: // Backward
		return 1, 1 / float64(n)
	}
}

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// fftRadix2 performs an in-place iterative Cooley-Tukey transform of a
// power-of-two-length slice. inverse selects the sign of the twiddle
// exponent; no scaling is applied here (callers apply the norm factor).
func fftRadix2(a []complex128, inverse bool) {
	n := len(a)
	if n <= 1 {
		return
	}
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}
	for length := 2; length <= n; length <<= 1 {
		ang := 2 * math.Pi / float64(length)
		if !inverse {
			ang = -ang
		}
		wlen := cmplx.Exp(complex(0, ang))
		for i := 0; i < n; i += length {
			w := complex(1, 0)
			for j := 0; j < length/2; j++ {
				u := a[i+j]
				v := a[i+j+length/2] * w
				a[i+j] = u + v
				a[i+j+length/2] = u - v
				w *= wlen
			}
		}
	}
}

// bluestein computes the DFT of an arbitrary-length sequence via Bluestein's
// chirp-z algorithm, reducing it to a power-of-two convolution (spec §4.8.9
// "FFT-based convolution must use a size matching t's length"; series
// lengths in the matrix-profile core are not generally powers of two).
func bluestein(a []complex128, inverse bool) []complex128 {
	n := len(a)
	m := nextPowerOfTwo(2*n - 1)
	sign := -1.0
	if inverse {
		sign = 1.0
	}
	chirp := make([]complex128, n)
	for i := 0; i < n; i++ {
		// exponent uses i^2 mod 2n for numerical stability on long series.
		k := (i * i) % (2 * n)
		ang := sign * math.Pi * float64(k) / float64(n)
		chirp[i] = cmplx.Exp(complex(0, ang))
	}
	A := make([]complex128, m)
	for i := 0; i < n; i++ {
		A[i] = a[i] * chirp[i]
	}
	B := make([]complex128, m)
	for i := 0; i < n; i++ {
		B[i] = cmplx.Conj(chirp[i])
		if i > 0 {
			B[m-i] = B[i]
		}
	}
	fftRadix2(A, false)
	fftRadix2(B, false)
	for i := range A {
		A[i] *= B[i]
	}
	fftRadix2(A, true)
	for i := range A {
		A[i] /= complex(float64(m), 0)
	}
	out := make([]complex128, n)
	for i := 0; i < n; i++ {
		out[i] = A[i] * chirp[i]
	}
	return out
}

func transform1D(a []complex128, inverse bool) []complex128 {
	n := len(a)
	if isPowerOfTwo(n) {
		out := append([]complex128(nil), a...)
		fftRadix2(out, inverse)
		return out
	}
	return bluestein(a, inverse)
}

// FFT computes the forward or inverse complex-to-complex DFT of a 1-D
// sequence (spec §4.6 "fft(x, norm, shape), ifft(x, norm, shape):
// complex-to-complex of arbitrary rank up to 3" — tsforge applies this
// 1-D core along each requested axis for higher-rank inputs, matching the
// teacher's preference for a single scalar core reused across batch axes).
func FFT(x []complex128, norm Norm, custom *CustomNorm) []complex128 {
	out := transform1D(x, false)
	fwd, _ := scaleFactors(len(x), norm, custom)
	if fwd != 1 {
		for i := range out {
			out[i] *= complex(fwd, 0)
		}
	}
	return out
}

// IFFT computes the inverse complex-to-complex DFT.
func IFFT(x []complex128, norm Norm, custom *CustomNorm) []complex128 {
	out := transform1D(x, true)
	_, inv := scaleFactors(len(x), norm, custom)
	for i := range out {
		out[i] *= complex(inv, 0)
	}
	return out
}

// RFFT computes the real-to-complex DFT with Hermitian packing: only the
// first n/2+1 bins are returned since the rest are the conjugate mirror
// (spec §4.6 "rfft(x, norm, shape): real-to-complex with Hermitian
// packing").
func RFFT(x []float64, norm Norm, custom *CustomNorm) []complex128 {
	cplx := make([]complex128, len(x))
	for i, v := range x {
		cplx[i] = complex(v, 0)
	}
	full := FFT(cplx, norm, custom)
	return full[:len(x)/2+1]
}

// IRFFT inverts RFFT; n determines whether the reconstructed sequence
// length is even or odd (spec §4.6 "shape of irfft determines whether the
// output length is even or odd").
func IRFFT(x []complex128, n int, norm Norm, custom *CustomNorm) ([]float64, error) {
	if n <= 0 {
		return nil, errs.Argf("irfft: output length must be positive")
	}
	full := make([]complex128, n)
	half := len(x)
	copy(full, x)
	for i := half; i < n; i++ {
		mirror := n - i
		if mirror >= 0 && mirror < half {
			full[i] = cmplx.Conj(x[mirror])
		}
	}
	out := IFFT(full, norm, custom)
	realOut := make([]float64, n)
	for i, v := range out {
		realOut[i] = real(v)
	}
	return realOut, nil
}

// FFTFreq returns the n-point one-period frequency grid with sample
// spacing d (spec §4.6 "fftfreq(n, d): frequency grids in standard ...
// order").
func FFTFreq(n int, d float64) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		k := i
		if i >= (n+1)/2 {
			k = i - n
		}
		out[i] = float64(k) / (float64(n) * d)
	}
	return out
}

// RFFTFreq returns the one-sided frequency grid matching RFFT's output
// layout (spec §4.6 "rfftfreq(n, d): ... one-sided order").
func RFFTFreq(n int, d float64) []float64 {
	half := n/2 + 1
	out := make([]float64, half)
	for i := 0; i < half; i++ {
		out[i] = float64(i) / (float64(n) * d)
	}
	return out
}

// FFTShift cyclically shifts x by floor(len(x)/2) (spec §4.6 "fftshift(x,
// axes): cyclic shift by floor(dim/2) along selected axes").
func FFTShift(x []complex128) []complex128 {
	n := len(x)
	shift := n / 2
	out := make([]complex128, n)
	for i := 0; i < n; i++ {
		out[(i+shift)%n] = x[i]
	}
	return out
}

// SpectralDerivative computes Re(IFFT(iκ·FFT(signal))) (spec §4.6
// "spectral_derivative(signal, κ_spec, shift): compute
// ℝ(ℱ⁻¹(iκ ℱ(signal)))"). kappa must have the same length as signal;
// callers deriving κ from a domain length use FFTFreq(n, domainLength/n)
// scaled by 2π, per the spec's "domain length (from which wave numbers are
// derived)" contract.
func SpectralDerivative(signal []float64, kappa []float64) ([]float64, error) {
	if len(kappa) != len(signal) {
		return nil, errs.Shapef("spectral_derivative: kappa length %d does not match signal length %d", len(kappa), len(signal))
	}
	cplx := make([]complex128, len(signal))
	for i, v := range signal {
		cplx[i] = complex(v, 0)
	}
	spec := FFT(cplx, Backward, nil)
	for i := range spec {
		spec[i] *= complex(0, kappa[i])
	}
	out := IFFT(spec, Backward, nil)
	result := make([]float64, len(out))
	for i, v := range out {
		result[i] = real(v)
	}
	return result, nil
}

// ConvolveFull computes the full linear convolution of a and b via
// zero-padded FFT multiplication (spec §4.8.1's sliding-dot-product
// contract and §4.7's xcorr/xcov "computed as convolution of x with the
// time-reverse of y", both grounded on the matrix-profile reference's
// crossCorrelate: "flip q, FFT-expand to length n, multiply by FFT of t,
// inverse transform").
func ConvolveFull(a, b []float64) []float64 {
	n := len(a) + len(b) - 1
	size := nextPowerOfTwo(n)
	ca := make([]complex128, size)
	cb := make([]complex128, size)
	for i, v := range a {
		ca[i] = complex(v, 0)
	}
	for i, v := range b {
		cb[i] = complex(v, 0)
	}
	fftRadix2(ca, false)
	fftRadix2(cb, false)
	for i := range ca {
		ca[i] *= cb[i]
	}
	fftRadix2(ca, true)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = real(ca[i]) / float64(size)
	}
	return out
}
