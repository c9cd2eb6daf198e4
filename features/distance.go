package features

import (
	"math"

	"github.com/tsforge/tsforge/errs"
	"github.com/tsforge/tsforge/fft"
	"github.com/tsforge/tsforge/mprofile"
)

// DistanceFunc is the uniform distance-function interface (spec §4.9:
// "fn(src: matrix, dst: matrix) -> row vector"): src and dst are
// column-wise series matrices of matching shape, and the result has one
// entry per column pair.
type DistanceFunc func(src, dst [][]float64) ([]float64, error)

func elementwise(src, dst [][]float64, fn func(a, b []float64) float64) ([]float64, error) {
	if len(src) != len(dst) {
		return nil, errs.Shapef("distance: src has %d series, dst has %d", len(src), len(dst))
	}
	out := make([]float64, len(src))
	for i := range src {
		if len(src[i]) != len(dst[i]) {
			return nil, errs.Shapef("distance: series %d lengths differ (%d vs %d)", i, len(src[i]), len(dst[i]))
		}
		out[i] = fn(src[i], dst[i])
	}
	return out, nil
}

// L1 returns the Manhattan distance per series pair.
func L1(src, dst [][]float64) ([]float64, error) {
	return elementwise(src, dst, func(a, b []float64) float64 {
		s := 0.0
		for i := range a {
			s += math.Abs(a[i] - b[i])
		}
		return s
	})
}

// L2 returns the Euclidean distance per series pair.
func L2(src, dst [][]float64) ([]float64, error) {
	return elementwise(src, dst, func(a, b []float64) float64 {
		s := 0.0
		for i := range a {
			d := a[i] - b[i]
			s += d * d
		}
		return math.Sqrt(s)
	})
}

// Intersection returns the histogram-intersection distance
// 1 - sum(min(a_i,b_i))/sum(a_i) per series pair.
func Intersection(src, dst [][]float64) ([]float64, error) {
	return elementwise(src, dst, func(a, b []float64) float64 {
		num, den := 0.0, 0.0
		for i := range a {
			num += math.Min(a[i], b[i])
			den += a[i]
		}
		if den == 0 {
			return 0
		}
		return 1 - num/den
	})
}

// Fidelity returns the Bhattacharyya-coefficient-derived fidelity distance
// 1 - sum(sqrt(a_i*b_i)).
func Fidelity(src, dst [][]float64) ([]float64, error) {
	return elementwise(src, dst, func(a, b []float64) float64 {
		s := 0.0
		for i := range a {
			s += math.Sqrt(math.Max(a[i]*b[i], 0))
		}
		return 1 - s
	})
}

// Shannon returns the Jensen-Shannon-style entropy distance
// sum(a_i*log(2a_i/(a_i+b_i)) + b_i*log(2b_i/(a_i+b_i))).
func Shannon(src, dst [][]float64) ([]float64, error) {
	return elementwise(src, dst, func(a, b []float64) float64 {
		s := 0.0
		for i := range a {
			sum := a[i] + b[i]
			if sum == 0 {
				continue
			}
			if a[i] > 0 {
				s += a[i] * math.Log(2*a[i]/sum)
			}
			if b[i] > 0 {
				s += b[i] * math.Log(2*b[i]/sum)
			}
		}
		return s
	})
}

// InnerProduct returns 1 - sum(a_i*b_i) as a dissimilarity.
func InnerProduct(src, dst [][]float64) ([]float64, error) {
	return elementwise(src, dst, func(a, b []float64) float64 {
		s := 0.0
		for i := range a {
			s += a[i] * b[i]
		}
		return 1 - s
	})
}

// Minkowski returns the order-p Minkowski distance, parameterized (spec
// §4.9 "a parameterized Minkowski p").
func Minkowski(p float64) DistanceFunc {
	return func(src, dst [][]float64) ([]float64, error) {
		return elementwise(src, dst, func(a, b []float64) float64 {
			s := 0.0
			for i := range a {
				s += math.Pow(math.Abs(a[i]-b[i]), p)
			}
			return math.Pow(s, 1/p)
		})
	}
}

// Vicissitude returns sum((a_i-b_i)^2/max(a_i,b_i)) per series pair.
func Vicissitude(src, dst [][]float64) ([]float64, error) {
	return elementwise(src, dst, func(a, b []float64) float64 {
		s := 0.0
		for i := range a {
			m := math.Max(a[i], b[i])
			if m == 0 {
				continue
			}
			d := a[i] - b[i]
			s += d * d / m
		}
		return s
	})
}

// DTW computes the dynamic time warping distance with the standard O(nm)
// dynamic-programming recurrence and no warping-window constraint.
func DTW(src, dst [][]float64) ([]float64, error) {
	return elementwise(src, dst, dtwPair)
}

func dtwPair(a, b []float64) float64 {
	n, m := len(a), len(b)
	prev := make([]float64, m+1)
	cur := make([]float64, m+1)
	for j := 1; j <= m; j++ {
		prev[j] = math.Inf(1)
	}
	for i := 1; i <= n; i++ {
		cur[0] = math.Inf(1)
		for j := 1; j <= m; j++ {
			cost := math.Abs(a[i-1] - b[j-1])
			best := math.Min(prev[j], math.Min(cur[j-1], prev[j-1]))
			cur[j] = cost + best
		}
		prev, cur = cur, prev
	}
	return prev[m]
}

// SBD computes the shape-based distance 1 - max_tau NCC(a, b, tau) (spec
// §4.10's k-shape distance, reused here as a general distance function):
// the normalized cross-correlation at the best lag via FFT convolution.
func SBD(src, dst [][]float64) ([]float64, error) {
	return elementwise(src, dst, func(a, b []float64) float64 {
		return 1 - maxNCC(a, b)
	})
}

// maxNCC computes max_tau NCC(a, b, tau) over the length-(2m-1) lag range
// via FFT convolution (spec §4.10).
func maxNCC(a, b []float64) float64 {
	normA := l2norm(a)
	normB := l2norm(b)
	denom := normA * normB
	if denom == 0 {
		return 0
	}
	reversedB := make([]float64, len(b))
	for i, v := range b {
		reversedB[len(b)-1-i] = v
	}
	cc := fft.ConvolveFull(a, reversedB)
	best := math.Inf(-1)
	for _, v := range cc {
		if v > best {
			best = v
		}
	}
	return best / denom
}

func l2norm(x []float64) float64 {
	s := 0.0
	for _, v := range x {
		s += v * v
	}
	return math.Sqrt(s)
}

// MPDistDistance wraps tsforge/mprofile's MPDist as a DistanceFunc (spec
// §4.9 "MPDist (wrapping §4.8.5)"); window defaults to a quarter of the
// shorter series when w <= 0.
func MPDistDistance(w int, threshold float64) DistanceFunc {
	return func(src, dst [][]float64) ([]float64, error) {
		out := make([]float64, len(src))
		for i := range src {
			window := w
			if window <= 0 {
				shorter := len(src[i])
				if len(dst[i]) < shorter {
					shorter = len(dst[i])
				}
				window = shorter / 4
				if window < 4 {
					window = 4
				}
			}
			v, err := mprofile.MPDist(src[i], dst[i], window, threshold)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
}

// Pairwise computes the full N x N distance matrix for a set of series
// using fn, exploiting symmetry when symmetric is true (spec §4.9 "a
// pairwise driver produces an N x N distance matrix using symmetry when
// applicable").
func Pairwise(series [][]float64, fn DistanceFunc, symmetric bool) ([][]float64, error) {
	n := len(series)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		jStart := 0
		if symmetric {
			jStart = i
		}
		srcCols := make([][]float64, n-jStart)
		dstCols := make([][]float64, n-jStart)
		for j := jStart; j < n; j++ {
			srcCols[j-jStart] = series[i]
			dstCols[j-jStart] = series[j]
		}
		vals, err := fn(srcCols, dstCols)
		if err != nil {
			return nil, err
		}
		for j := jStart; j < n; j++ {
			v := vals[j-jStart]
			out[i][j] = v
			if symmetric {
				out[j][i] = v
			}
		}
	}
	return out, nil
}
