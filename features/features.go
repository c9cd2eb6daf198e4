// Package features implements C9: the feature battery and normalizer
// family operating on a batched series matrix (columns = series, following
// tsforge/stats's column-wise convention), grounded on
// original_source/modules/gauss/include/gauss/features.h for the exact
// per-feature contracts (approximateEntropy/sampleEntropy's Chebyshev
// radius, binnedEntropy's histogram-over-value-range, energyRatioByChunks's
// chunk-vs-whole ratio, fftCoefficient's 4-tuple) and on
// .../include/gauss/normalization.h for the normalizer list. Per spec §9,
// quantile/quantilesCut and the three features depending on them
// (friedrichCoefficients, maxLangevinFixedPoint, numberCwtPeaks) are
// omitted from the surface.
package features

import (
	"math"

	"github.com/tsforge/tsforge/array"
	"github.com/tsforge/tsforge/dtype"
	"github.com/tsforge/tsforge/errs"
	"github.com/tsforge/tsforge/fft"
)

// sumViaArray folds x through tsforge/array's lazy reduction graph instead
// of a local accumulator loop, composing C9's feature battery over the C2
// array core per spec §2 ("higher components are expressed as compositions
// over C2/C4"). FromHost's only error is a length/shape mismatch, which
// cannot occur here since the shape is always x's own length.
func sumViaArray(x []float64) float64 {
	a, err := array.FromHost(x, []int{len(x)}, dtype.F64)
	if err != nil {
		panic(err)
	}
	out, err := array.Sum(a, -1).HostCopy()
	if err != nil {
		panic(err)
	}
	return out[0]
}

// countNonzeroViaArray counts non-zero entries of mask through
// array.CountNonzero rather than a local loop.
func countNonzeroViaArray(mask []float64) float64 {
	a, err := array.FromHost(mask, []int{len(mask)}, dtype.F64)
	if err != nil {
		panic(err)
	}
	out, err := array.CountNonzero(a).HostCopy()
	if err != nil {
		panic(err)
	}
	return out[0]
}

// AbsEnergy returns sum(x^2) per series.
func AbsEnergy(cols [][]float64) []float64 {
	return perSeries(cols, func(x []float64) float64 {
		sq := make([]float64, len(x))
		for i, v := range x {
			sq[i] = v * v
		}
		return sumViaArray(sq)
	})
}

// AbsoluteSumOfChanges returns sum(|x[i+1]-x[i]|) per series.
func AbsoluteSumOfChanges(cols [][]float64) []float64 {
	return perSeries(cols, func(x []float64) float64 {
		s := 0.0
		for i := 1; i < len(x); i++ {
			s += math.Abs(x[i] - x[i-1])
		}
		return s
	})
}

// CidCe returns sqrt(sum((x[i+1]-x[i])^2)), optionally z-normalizing x first
// (spec §4.9 "cidCe optionally z-normalizes first then returns
// sqrt(Σ(xᵢ₊₁−xᵢ)²)").
func CidCe(cols [][]float64, zNormalize bool) []float64 {
	return perSeries(cols, func(x []float64) float64 {
		v := x
		if zNormalize {
			v = zNorm(x)
		}
		s := 0.0
		for i := 1; i < len(v); i++ {
			d := v[i] - v[i-1]
			s += d * d
		}
		return math.Sqrt(s)
	})
}

// CountAboveMean returns the count of values strictly above the series mean.
func CountAboveMean(cols [][]float64) []float64 {
	return perSeries(cols, func(x []float64) float64 {
		m := meanOf(x)
		mask := make([]float64, len(x))
		for i, v := range x {
			if v > m {
				mask[i] = 1
			}
		}
		return countNonzeroViaArray(mask)
	})
}

// CountBelowMean returns the count of values strictly below the series mean.
func CountBelowMean(cols [][]float64) []float64 {
	return perSeries(cols, func(x []float64) float64 {
		m := meanOf(x)
		mask := make([]float64, len(x))
		for i, v := range x {
			if v < m {
				mask[i] = 1
			}
		}
		return countNonzeroViaArray(mask)
	})
}

// ApproximateEntropy computes the vectorized approximate entropy ApEn(m, r)
// (spec §4.9: "uses the Chebyshev radius over length-m vectors; fails when
// n <= m+1"), grounded on features.h's approximateEntropy.
func ApproximateEntropy(cols [][]float64, m int, r float64) ([]float64, error) {
	out := make([]float64, len(cols))
	for i, x := range cols {
		n := len(x)
		if n <= m+1 {
			return nil, errs.Argf("approximateEntropy: series length %d too short for m=%d", n, m)
		}
		phiM := apEnPhi(x, m, r)
		phiM1 := apEnPhi(x, m+1, r)
		out[i] = phiM - phiM1
	}
	return out, nil
}

func apEnPhi(x []float64, m int, r float64) float64 {
	n := len(x)
	count := n - m + 1
	vectors := make([][]float64, count)
	for i := 0; i < count; i++ {
		vectors[i] = x[i : i+m]
	}
	sum := 0.0
	for i := 0; i < count; i++ {
		matches := 0
		for j := 0; j < count; j++ {
			if chebyshev(vectors[i], vectors[j]) <= r {
				matches++
			}
		}
		sum += math.Log(float64(matches) / float64(count))
	}
	return sum / float64(count)
}

func chebyshev(a, b []float64) float64 {
	max := 0.0
	for i := range a {
		d := math.Abs(a[i] - b[i])
		if d > max {
			max = d
		}
	}
	return max
}

// SampleEntropy computes SampEn(m, r) using the same Chebyshev radius
// definition as ApproximateEntropy but excluding self-matches (spec §4.9).
func SampleEntropy(cols [][]float64, m int, r float64) ([]float64, error) {
	out := make([]float64, len(cols))
	for i, x := range cols {
		n := len(x)
		if n <= m+1 {
			return nil, errs.Argf("sampleEntropy: series length %d too short for m=%d", n, m)
		}
		a := sampEnCount(x, m+1, r)
		b := sampEnCount(x, m, r)
		if a == 0 || b == 0 {
			out[i] = math.Inf(1)
			continue
		}
		out[i] = -math.Log(a / b)
	}
	return out, nil
}

func sampEnCount(x []float64, m int, r float64) float64 {
	n := len(x)
	count := n - m + 1
	vectors := make([][]float64, count)
	for i := 0; i < count; i++ {
		vectors[i] = x[i : i+m]
	}
	total := 0.0
	for i := 0; i < count; i++ {
		for j := 0; j < count; j++ {
			if i == j {
				continue
			}
			if chebyshev(vectors[i], vectors[j]) <= r {
				total++
			}
		}
	}
	return total
}

// BinnedEntropy computes the entropy of a histogram over the series value
// range with maxBins bins (spec §4.9 "uses a histogram with the value range
// of the series").
func BinnedEntropy(cols [][]float64, maxBins int) []float64 {
	return perSeries(cols, func(x []float64) float64 {
		lo, hi := x[0], x[0]
		for _, v := range x {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if hi == lo {
			return 0
		}
		bins := make([]int, maxBins)
		width := (hi - lo) / float64(maxBins)
		for _, v := range x {
			b := int((v - lo) / width)
			if b >= maxBins {
				b = maxBins - 1
			}
			bins[b]++
		}
		n := float64(len(x))
		entropy := 0.0
		for _, c := range bins {
			if c == 0 {
				continue
			}
			p := float64(c) / n
			entropy -= p * math.Log(p)
		}
		return entropy
	})
}

// C3 computes the c3(lag) non-linearity measure (spec §4.9, Schreiber &
// Schmitz): mean(x[i+2lag]^2 * x[i+lag] * x[i]).
func C3(cols [][]float64, lag int) []float64 {
	return perSeries(cols, func(x []float64) float64 {
		n := len(x)
		count := n - 2*lag
		if count <= 0 {
			return 0
		}
		sum := 0.0
		for i := 0; i < count; i++ {
			sum += x[i+2*lag] * x[i+2*lag] * x[i+lag] * x[i]
		}
		return sum / float64(count)
	})
}

// EnergyRatioByChunks returns absEnergy(chunk focus) / absEnergy(whole
// series) for numSegments equal (as-equal-as-possible) chunks (spec §4.9).
func EnergyRatioByChunks(cols [][]float64, numSegments, segmentFocus int) ([]float64, error) {
	if segmentFocus < 0 || segmentFocus >= numSegments {
		return nil, errs.Argf("energyRatioByChunks: segmentFocus %d out of range [0,%d)", segmentFocus, numSegments)
	}
	out := make([]float64, len(cols))
	for si, x := range cols {
		n := len(x)
		total := 0.0
		for _, v := range x {
			total += v * v
		}
		chunkLen := n / numSegments
		start := segmentFocus * chunkLen
		end := start + chunkLen
		if segmentFocus == numSegments-1 {
			end = n
		}
		chunkSum := 0.0
		for i := start; i < end; i++ {
			chunkSum += x[i] * x[i]
		}
		if total == 0 {
			out[si] = 0
		} else {
			out[si] = chunkSum / total
		}
	}
	return out, nil
}

// FFTCoefficient returns real, imaginary, magnitude, and phase of the k-th
// FFT bin for every series (spec §4.9 "fftCoefficient(k) returns a 4-tuple
// per series").
func FFTCoefficient(cols [][]float64, k int) (realP, imagP, magP, phaseP []float64, err error) {
	n := len(cols)
	realP = make([]float64, n)
	imagP = make([]float64, n)
	magP = make([]float64, n)
	phaseP = make([]float64, n)
	for i, x := range cols {
		if k < 0 || k >= len(x) {
			return nil, nil, nil, nil, errs.Argf("fftCoefficient: coefficient %d out of range for series length %d", k, len(x))
		}
		spec := fft.RFFT(x, fft.Backward, nil)
		var c complex128
		if k < len(spec) {
			c = spec[k]
		}
		realP[i] = real(c)
		imagP[i] = imag(c)
		magP[i] = math.Hypot(real(c), imag(c))
		phaseP[i] = math.Atan2(imag(c), real(c))
	}
	return realP, imagP, magP, phaseP, nil
}

// IndexMassQuantile returns the relative index where the cumulative
// absolute sum reaches quantile q (spec §4.9).
func IndexMassQuantile(cols [][]float64, q float64) []float64 {
	return perSeries(cols, func(x []float64) float64 {
		total := 0.0
		for _, v := range x {
			total += math.Abs(v)
		}
		if total == 0 {
			return 0
		}
		threshold := q * total
		acc := 0.0
		for i, v := range x {
			acc += math.Abs(v)
			if acc >= threshold {
				return float64(i+1) / float64(len(x))
			}
		}
		return 1.0
	})
}

// NumberPeaks counts positions exceeding their n neighbors on both sides
// (spec §4.9).
func NumberPeaks(cols [][]float64, n int) []float64 {
	return perSeries(cols, func(x []float64) float64 {
		count := 0.0
		for i := n; i < len(x)-n; i++ {
			isPeak := true
			for d := 1; d <= n; d++ {
				if x[i] <= x[i-d] || x[i] <= x[i+d] {
					isPeak = false
					break
				}
			}
			if isPeak {
				count++
			}
		}
		return count
	})
}

// NumberCrossingM counts sign changes of (x - m) (spec §4.9).
func NumberCrossingM(cols [][]float64, m float64) []float64 {
	return perSeries(cols, func(x []float64) float64 {
		count := 0.0
		prevAbove := x[0] > m
		for i := 1; i < len(x); i++ {
			above := x[i] > m
			if above != prevAbove {
				count++
			}
			prevAbove = above
		}
		return count
	})
}

// SpktWelchDensity computes Welch's periodogram with a Hann window at full
// series length and returns the coeff-th bin magnitude (spec §4.9).
func SpktWelchDensity(cols [][]float64, coeff int) ([]float64, error) {
	out := make([]float64, len(cols))
	for i, x := range cols {
		n := len(x)
		windowed := make([]float64, n)
		for j, v := range x {
			w := 0.5 * (1 - math.Cos(2*math.Pi*float64(j)/float64(n-1)))
			windowed[j] = v * w
		}
		spec := fft.RFFT(windowed, fft.Backward, nil)
		if coeff < 0 || coeff >= len(spec) {
			return nil, errs.Argf("spktWelchDensity: coefficient %d out of range", coeff)
		}
		c := spec[coeff]
		out[i] = (real(c)*real(c) + imag(c)*imag(c)) / float64(n)
	}
	return out, nil
}

func perSeries(cols [][]float64, fn func([]float64) float64) []float64 {
	out := make([]float64, len(cols))
	for i, x := range cols {
		out[i] = fn(x)
	}
	return out
}

func meanOf(x []float64) float64 {
	return sumViaArray(x) / float64(len(x))
}

func zNorm(x []float64) []float64 {
	m := meanOf(x)
	ss := 0.0
	for _, v := range x {
		d := v - m
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(len(x)))
	if sd == 0 {
		sd = 1
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - m) / sd
	}
	return out
}
