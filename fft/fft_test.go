package fft_test

import (
	"math"
	"testing"

	"github.com/tsforge/tsforge/fft"
)

func closeComplex(t *testing.T, got, want complex128, tol float64) {
	t.Helper()
	if math.Abs(real(got)-real(want)) > tol || math.Abs(imag(got)-imag(want)) > tol {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFFTIFFTRoundTrip(t *testing.T) {
	t.Parallel()
	x := []complex128{1, 2, 3, 4, 5, 6, 7}
	spec := fft.FFT(x, fft.Backward, nil)
	back := fft.IFFT(spec, fft.Backward, nil)
	for i := range x {
		closeComplex(t, back[i], x[i], 1e-9)
	}
}

func TestFFTPowerOfTwoKnownValues(t *testing.T) {
	t.Parallel()
	x := []complex128{1, 1, 1, 1}
	got := fft.FFT(x, fft.Backward, nil)
	want := []complex128{4, 0, 0, 0}
	for i := range want {
		closeComplex(t, got[i], want[i], 1e-9)
	}
}

func TestFFTOrthonormalEnergyPreserved(t *testing.T) {
	t.Parallel()
	x := make([]complex128, 8)
	for i := range x {
		x[i] = complex(float64(i+1), 0)
	}
	spec := fft.FFT(x, fft.Orthonormal, nil)
	var energyTime, energyFreq float64
	for _, v := range x {
		energyTime += real(v)*real(v) + imag(v)*imag(v)
	}
	for _, v := range spec {
		energyFreq += real(v)*real(v) + imag(v)*imag(v)
	}
	if math.Abs(energyTime-energyFreq) > 1e-9 {
		t.Fatalf("parseval's theorem violated: time=%v freq=%v", energyTime, energyFreq)
	}
}

func TestRFFTIRFFTRoundTrip(t *testing.T) {
	t.Parallel()
	for _, n := range []int{6, 7} {
		x := make([]float64, n)
		for i := range x {
			x[i] = float64(i) * 1.5
		}
		spec := fft.RFFT(x, fft.Backward, nil)
		back, err := fft.IRFFT(spec, n, fft.Backward, nil)
		if err != nil {
			t.Fatalf("irfft: %v", err)
		}
		for i := range x {
			if math.Abs(back[i]-x[i]) > 1e-8 {
				t.Errorf("n=%d index %d: got %v, want %v", n, i, back[i], x[i])
			}
		}
	}
}

func TestFFTNonPowerOfTwoBluestein(t *testing.T) {
	t.Parallel()
	x := make([]complex128, 5)
	for i := range x {
		x[i] = complex(float64(i+1), 0)
	}
	spec := fft.FFT(x, fft.Backward, nil)
	back := fft.IFFT(spec, fft.Backward, nil)
	for i := range x {
		closeComplex(t, back[i], x[i], 1e-8)
	}
}

func TestFFTFreq(t *testing.T) {
	t.Parallel()
	got := fft.FFTFreq(5, 1.0)
	want := []float64{0, 0.2, 0.4, -0.4, -0.2}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRFFTFreq(t *testing.T) {
	t.Parallel()
	got := fft.RFFTFreq(6, 1.0)
	want := []float64{0, 1.0 / 6, 2.0 / 6, 3.0 / 6}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFFTShift(t *testing.T) {
	t.Parallel()
	x := []complex128{0, 1, 2, 3, 4}
	got := fft.FFTShift(x)
	want := []complex128{3, 4, 0, 1, 2}
	for i := range want {
		closeComplex(t, got[i], want[i], 1e-9)
	}
}

func TestConvolveFullMatchesDirectConvolution(t *testing.T) {
	t.Parallel()
	a := []float64{1, 2, 3}
	b := []float64{0, 1, 0.5}
	got := fft.ConvolveFull(a, b)
	want := make([]float64, len(a)+len(b)-1)
	for i := range a {
		for j := range b {
			want[i+j] += a[i] * b[j]
		}
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-8 {
			t.Errorf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
