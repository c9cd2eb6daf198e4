package features

import "math"

// Normalizer selects one of the column-wise normalization schemes (spec
// §4.9, grounded on original_source's normalization.h list: z-norm,
// min-max, decimal scaling, mean, median, unit, sigmoid, tanh, detrend).
type Normalizer int

const (
	ZScore Normalizer = iota
	MinMax
	DecimalScaling
	MeanNorm
	MedianNorm
	UnitNorm
	Sigmoid
	Tanh
	Detrend
)

// Normalize applies the selected normalizer column-wise, leaving
// zero-range/zero-std columns unchanged (spec §4.9 "Constant-column
// safeguard: ... leaves the column unchanged ... documented per
// normalizer"). eps guards every division.
func Normalize(cols [][]float64, kind Normalizer, eps float64) [][]float64 {
	out := make([][]float64, len(cols))
	for i, c := range cols {
		out[i] = normalizeColumn(c, kind, eps)
	}
	return out
}

// NormalizeInPlace applies the selected normalizer, overwriting cols
// (spec §4.9 "have in-place variants that reuse the input storage").
func NormalizeInPlace(cols [][]float64, kind Normalizer, eps float64) {
	for _, c := range cols {
		applyInPlace(c, kind, eps)
	}
}

func normalizeColumn(c []float64, kind Normalizer, eps float64) []float64 {
	out := append([]float64(nil), c...)
	applyInPlace(out, kind, eps)
	return out
}

func applyInPlace(c []float64, kind Normalizer, eps float64) {
	switch kind {
	case ZScore:
		m := meanOf(c)
		sd := stdOf(c, m)
		if sd <= eps {
			return
		}
		for i, v := range c {
			c[i] = (v - m) / sd
		}
	case MinMax:
		lo, hi := minMax(c)
		rng := hi - lo
		if rng <= eps {
			return
		}
		for i, v := range c {
			c[i] = (v - lo) / rng
		}
	case DecimalScaling:
		maxAbs := 0.0
		for _, v := range c {
			if a := math.Abs(v); a > maxAbs {
				maxAbs = a
			}
		}
		if maxAbs <= eps {
			return
		}
		j := math.Ceil(math.Log10(maxAbs))
		scale := math.Pow(10, j)
		for i, v := range c {
			c[i] = v / scale
		}
	case MeanNorm:
		lo, hi := minMax(c)
		rng := hi - lo
		if rng <= eps {
			return
		}
		m := meanOf(c)
		for i, v := range c {
			c[i] = (v - m) / rng
		}
	case MedianNorm:
		med := medianOf(c)
		lo, hi := minMax(c)
		rng := hi - lo
		if rng <= eps {
			return
		}
		for i, v := range c {
			c[i] = (v - med) / rng
		}
	case UnitNorm:
		norm := 0.0
		for _, v := range c {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm <= eps {
			return
		}
		for i, v := range c {
			c[i] = v / norm
		}
	case Sigmoid:
		for i, v := range c {
			c[i] = 1 / (1 + math.Exp(-v))
		}
	case Tanh:
		for i, v := range c {
			c[i] = math.Tanh(v)
		}
	case Detrend:
		n := len(c)
		if n < 2 {
			return
		}
		xs := make([]float64, n)
		for i := range xs {
			xs[i] = float64(i)
		}
		slope, intercept := linearFit(xs, c)
		for i, v := range c {
			c[i] = v - (slope*float64(i) + intercept)
		}
	}
}

func stdOf(x []float64, mean float64) float64 {
	ss := 0.0
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(x)))
}

func minMax(x []float64) (lo, hi float64) {
	lo, hi = x[0], x[0]
	for _, v := range x {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return
}

func medianOf(x []float64) float64 {
	sorted := append([]float64(nil), x...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func linearFit(xs, ys []float64) (slope, intercept float64) {
	n := float64(len(xs))
	var sx, sy, sxy, sxx float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
		sxy += xs[i] * ys[i]
		sxx += xs[i] * xs[i]
	}
	denom := n*sxx - sx*sx
	if denom == 0 {
		return 0, sy / n
	}
	slope = (n*sxy - sx*sy) / denom
	intercept = (sy - slope*sx) / n
	return
}
