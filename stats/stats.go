// Package stats implements C7 (spec §4.7): descriptive statistics,
// covariance/correlation, and cross-correlation built on tsforge/fft's
// convolution primitive, grounded on the spec's own worked example (§8
// scenario 5, the biased-autocorrelation check) for the exact lag/scale
// conventions.
package stats

import (
	"math"
	"sort"

	"github.com/tsforge/tsforge/array"
	"github.com/tsforge/tsforge/dtype"
	"github.com/tsforge/tsforge/errs"
	"github.com/tsforge/tsforge/fft"
)

// sumViaArray folds x through tsforge/array's lazy reduction graph instead
// of a local accumulator loop, composing C7's descriptive statistics over
// the C2 array core per spec §2 ("higher components are expressed as
// compositions over C2/C4"). FromHost's only error is a length/shape
// mismatch, which cannot occur here since the shape is always x's own
// length.
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

// Mean returns the (optionally weighted) arithmetic mean of x.
func Mean(x []float64, weights []float64) (float64, error) {
	if weights == nil {
		return sumViaArray(x) / float64(len(x)), nil
	}
	if len(weights) != len(x) {
		return 0, errs.Shapef("mean: weights length %d does not match series length %d", len(weights), len(x))
	}
	weighted := make([]float64, len(x))
	for i, v := range x {
		weighted[i] = v * weights[i]
	}
	return sumViaArray(weighted) / sumViaArray(weights), nil
}

// Var returns the variance of x with ddof degrees-of-freedom correction
// (0 or 1, spec §4.7 "var with optional weights and ddof (0 or 1)").
func Var(x []float64, weights []float64, ddof int) (float64, error) {
	m, err := Mean(x, weights)
	if err != nil {
		return 0, err
	}
	if weights == nil {
		sq := make([]float64, len(x))
		for i, v := range x {
			d := v - m
			sq[i] = d * d
		}
		return sumViaArray(sq) / float64(len(x)-ddof), nil
	}
	wsq := make([]float64, len(x))
	for i, v := range x {
		d := v - m
		wsq[i] = weights[i] * d * d
	}
	return sumViaArray(wsq) / (sumViaArray(weights) - float64(ddof)), nil
}

// Std returns the standard deviation of x.
func Std(x []float64, weights []float64, ddof int) (float64, error) {
	v, err := Var(x, weights, ddof)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// Median returns the median of x.
func Median(x []float64) float64 {
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Moment returns the k-th central moment of x.
func Moment(x []float64, k int) float64 {
	m, _ := Mean(x, nil)
	sum := 0.0
	for _, v := range x {
		sum += math.Pow(v-m, float64(k))
	}
	return sum / float64(len(x))
}

// Skewness returns the (biased) skewness of x.
func Skewness(x []float64) float64 {
	m2 := Moment(x, 2)
	m3 := Moment(x, 3)
	return m3 / math.Pow(m2, 1.5)
}

// Kurtosis returns the adjusted Fisher-Pearson G2 excess kurtosis (spec
// §4.7 "kurtosis (adjusted Fisher-Pearson G2)").
func Kurtosis(x []float64) float64 {
	n := float64(len(x))
	m2 := Moment(x, 2)
	m4 := Moment(x, 4)
	g2 := m4/(m2*m2) - 3
	return ((n - 1) / ((n - 2) * (n - 3))) * ((n+1)*g2 + 6)
}

// Covariance computes the ddof-corrected covariance matrix of a column-wise
// series matrix (rows = observations, cols = series), spec §4.7
// "covariance(ddof) ... on a column-wise series matrix".
func Covariance(cols [][]float64, ddof int) ([][]float64, error) {
	k := len(cols)
	if k == 0 {
		return nil, errs.Argf("covariance: at least one column required")
	}
	n := len(cols[0])
	means := make([]float64, k)
	for i, c := range cols {
		if len(c) != n {
			return nil, errs.Shapef("covariance: column %d has length %d, expected %d", i, len(c), n)
		}
		m, _ := Mean(c, nil)
		means[i] = m
	}
	out := make([][]float64, k)
	for i := range out {
		out[i] = make([]float64, k)
	}
	cross := make([]float64, n)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			for t := 0; t < n; t++ {
				cross[t] = (cols[i][t] - means[i]) * (cols[j][t] - means[j])
			}
			v := sumViaArray(cross) / float64(n-ddof)
			out[i][j] = v
			out[j][i] = v
		}
	}
	return out, nil
}

// CorrCoef computes the Pearson correlation matrix of a column-wise series
// matrix (spec §4.7 "corrcoef(ddof)").
func CorrCoef(cols [][]float64, ddof int) ([][]float64, error) {
	cov, err := Covariance(cols, ddof)
	if err != nil {
		return nil, err
	}
	k := len(cov)
	out := make([][]float64, k)
	for i := range out {
		out[i] = make([]float64, k)
	}
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			denom := math.Sqrt(cov[i][i] * cov[j][j])
			if denom == 0 {
				out[i][j] = 0
				continue
			}
			out[i][j] = cov[i][j] / denom
		}
	}
	return out, nil
}

// Scale selects the normalization applied per lag by Xcorr/Xcov (spec §4.7
// "scale in {none, biased, unbiased, coeff}").
type Scale int

const (
	ScaleNone Scale = iota
	ScaleBiased
	ScaleUnbiased
	ScaleCoeff
)

// Xcov computes the cross-covariance of x and y for lags [-maxlag,
// +maxlag], returned as (lags, values) (spec §4.7). Internally computed as
// the convolution of x with the time-reverse of y via tsforge/fft, exactly
// mirroring the matrix-profile reference's crossCorrelate pattern reused
// for a 1-D pairwise statistic instead of an all-pairs join.
func Xcov(x, y []float64, maxlag int, scale Scale) (lags []int, values []float64, err error) {
	if maxlag < 0 {
		return nil, nil, errs.Argf("xcov: maxlag must be non-negative")
	}
	n := len(x)
	if len(y) != n {
		return nil, nil, errs.Shapef("xcov: x length %d does not match y length %d", n, len(y))
	}
	reversedY := make([]float64, n)
	for i, v := range y {
		reversedY[n-1-i] = v
	}
	full := fft.ConvolveFull(x, reversedY)
	// full has length 2n-1; its center (index n-1) is lag 0, since
	// convolving x with reverse(y) at offset n-1 aligns x[i] with y[i].
	center := n - 1
	lags = make([]int, 2*maxlag+1)
	values = make([]float64, 2*maxlag+1)
	for i := -maxlag; i <= maxlag; i++ {
		lags[i+maxlag] = i
		v := full[center+i]
		switch scale {
		case ScaleBiased:
			v /= float64(n)
		case ScaleUnbiased:
			v /= float64(n - abs(i))
		}
		values[i+maxlag] = v
	}
	if scale == ScaleCoeff {
		sxx, syy := 0.0, 0.0
		for _, v := range x {
			sxx += v * v
		}
		for _, v := range y {
			syy += v * v
		}
		denom := math.Sqrt(sxx * syy)
		if denom != 0 {
			for i := range values {
				values[i] /= denom
			}
		}
	}
	return lags, values, nil
}

// Xcorr computes the cross-correlation of x and y (spec §4.7). It returns
// exactly what Xcov returns: neither subtracts the series means.
func Xcorr(x, y []float64, maxlag int, scale Scale) ([]int, []float64, error) {
	return Xcov(x, y, maxlag, scale)
}

// Autocov returns the autocovariance of x, the diagonal slice of Xcov(x, x,
// ...) per spec §4.7 "autocorr, autocov as xcorr/xcov of a series with
// itself, selecting the diagonal slice".
func Autocov(x []float64, maxlag int, scale Scale) ([]int, []float64, error) {
	return Xcov(x, x, maxlag, scale)
}

// Autocorr returns the autocorrelation of x.
func Autocorr(x []float64, maxlag int, scale Scale) ([]int, []float64, error) {
	return Xcorr(x, x, maxlag, scale)
}

// LjungBox computes the Ljung-Box Q statistic over h lags (spec §4.7
// "ljungBox(tss, maxlag): computes sum of rho^2_k/(n-k) for k=1..h,
// multiplied by n(n+2)").
func LjungBox(x []float64, h int) (float64, error) {
	n := len(x)
	_, acov, err := Autocov(x, h, ScaleNone)
	if err != nil {
		return 0, err
	}
	center := h // acov index for lag 0
	gamma0 := acov[center]
	if gamma0 == 0 {
		return 0, errs.Argf("ljungBox: series has zero variance")
	}
	sum := 0.0
	for k := 1; k <= h; k++ {
		rho := acov[center+k] / gamma0
		sum += (rho * rho) / float64(n-k)
	}
	return float64(n) * float64(n+2) * sum, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
