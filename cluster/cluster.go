// Package cluster implements C10: k-means (Lloyd iteration) and k-shape
// (shape-extraction), grounded on
// original_source/modules/gauss/src/clustering.cpp for the exact
// assignment/refinement loops. The shape-extraction eigenvector step reuses
// tsforge/linalg's Jacobi eigen-iteration (itself grounded on
// katalvlaran-lvlath/matrix/ops/eigen.go) instead of re-deriving a power
// iteration from scratch, matching clustering.cpp's own delegation to
// gauss::linalg::eigh.
package cluster

import (
	"math"
	"math/rand/v2"

	"github.com/tsforge/tsforge/array"
	"github.com/tsforge/tsforge/dtype"
	"github.com/tsforge/tsforge/errs"
	"github.com/tsforge/tsforge/fft"
	"github.com/tsforge/tsforge/linalg"
)

// KMeansResult is the output of KMeans: final centroids (column-wise, one
// column per cluster) and per-series labels.
type KMeansResult struct {
	Centroids  [][]float64
	Labels     []int
	Iterations int
}

// KMeans runs Lloyd iteration with Euclidean distance over a column-wise
// series matrix (spec §4.10). initLabels may be nil for random
// initialization (grounded on clustering.cpp's generateRandomLabels); a
// non-nil initLabels seeds a caller-provided assignment instead.
func KMeans(series [][]float64, k int, tolerance float64, maxIterations int, initLabels []int, rng *rand.Rand) (*KMeansResult, error) {
	n := len(series)
	if k < 1 || k > n {
		return nil, errs.Argf("kMeans: k=%d invalid for %d series", k, n)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	labels := initLabels
	if labels == nil {
		labels = make([]int, n)
		for i := range labels {
			labels[i] = i % k
		}
		rng.Shuffle(n, func(i, j int) { labels[i], labels[j] = labels[j], labels[i] })
	}
	dim := len(series[0])
	centroids := make([][]float64, k)
	initCounts := make([]int, k)
	for c := range centroids {
		centroids[c] = make([]float64, dim)
	}
	for i, x := range series {
		initCounts[labels[i]]++
		for d, v := range x {
			centroids[labels[i]][d] += v
		}
	}
	for c := range centroids {
		for d := range centroids[c] {
			if initCounts[c] > 0 {
				centroids[c][d] /= float64(initCounts[c])
			}
		}
	}

	iter := 0
	errVal := math.Inf(1)
	for errVal > tolerance && iter < maxIterations {
		for i, x := range series {
			best, bestDist := 0, math.Inf(1)
			for c := range centroids {
				d := euclid(x, centroids[c])
				if d < bestDist {
					bestDist = d
					best = c
				}
			}
			labels[i] = best
		}
		newCentroids := make([][]float64, k)
		counts := make([]int, k)
		for c := range newCentroids {
			newCentroids[c] = make([]float64, dim)
		}
		for i, x := range series {
			c := labels[i]
			counts[c]++
			for d, v := range x {
				newCentroids[c][d] += v
			}
		}
		for c := range newCentroids {
			if counts[c] == 0 {
				continue
			}
			for d := range newCentroids[c] {
				newCentroids[c][d] /= float64(counts[c])
			}
		}
		errVal = 0
		for c := range centroids {
			errVal += euclid(centroids[c], newCentroids[c])
		}
		errVal = math.Sqrt(errVal)
		centroids = newCentroids
		iter++
	}
	return &KMeansResult{Centroids: centroids, Labels: labels, Iterations: iter}, nil
}

func euclid(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

// KShapeResult is the output of KShapeCalibrate.
type KShapeResult struct {
	Centroids  [][]float64
	Labels     []int
	Iterations int
}

// KShapeCalibrate clusters z-normalized series using the k-shape algorithm
// (spec §4.10): alternates an assignment step (label = argmax_c
// max_tau NCC(series, centroid_c)) and a shape-extraction refinement step
// until labels stabilize or maxIterations is reached.
func KShapeCalibrate(series [][]float64, k int, maxIterations int, rng *rand.Rand) (*KShapeResult, error) {
	n := len(series)
	if k < 1 || k > n {
		return nil, errs.Argf("kshapeCalibrate: k=%d invalid for %d series", k, n)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	m := len(series[0])
	znormed := make([][]float64, n)
	for i, x := range series {
		znormed[i] = znormalize(x)
	}
	labels := make([]int, n)
	for i := range labels {
		labels[i] = i % k
	}
	rng.Shuffle(n, func(i, j int) { labels[i], labels[j] = labels[j], labels[i] })

	centroids := make([][]float64, k)
	for c := range centroids {
		centroids[c] = make([]float64, m)
	}

	// p = I - (1/m)*11^T, constant across iterations (clustering.cpp's
	// refinementStep hoists this outside the per-cluster loop for the
	// same reason).
	pData := make([]float64, m*m)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			if i == j {
				pData[i+j*m] = 1 - 1/float64(m)
			} else {
				pData[i+j*m] = -1 / float64(m)
			}
		}
	}
	p, err := array.FromHost(pData, []int{m, m}, dtype.F64)
	if err != nil {
		return nil, err
	}

	iter := 0
	for iter < maxIterations {
		changed := false
		newLabels := make([]int, n)
		for i, x := range znormed {
			best, bestDist := 0, math.Inf(-1)
			for c, cen := range centroids {
				ncc := maxNCC(x, cen)
				if ncc > bestDist {
					bestDist = ncc
					best = c
				}
			}
			newLabels[i] = best
			if newLabels[i] != labels[i] {
				changed = true
			}
		}
		labels = newLabels
		for c := range centroids {
			var members [][]float64
			for i, l := range labels {
				if l == c {
					members = append(members, znormed[i])
				}
			}
			if len(members) == 0 {
				continue
			}
			newCentroid, err := shapeExtraction(members, p)
			if err != nil {
				return nil, err
			}
			centroids[c] = newCentroid
		}
		iter++
		if !changed && iter > 1 {
			break
		}
	}
	return &KShapeResult{Centroids: centroids, Labels: labels, Iterations: iter}, nil
}

func znormalize(x []float64) []float64 {
	n := float64(len(x))
	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= n
	ss := 0.0
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	sd := math.Sqrt(ss / n)
	if sd == 0 {
		sd = 1
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - mean) / sd
	}
	return out
}

// maxNCC computes max_tau NCC(a, b, tau) via FFT convolution, the shared
// normalized-cross-correlation primitive also used by tsforge/features's
// SBD distance (spec §4.10).
func maxNCC(a, b []float64) float64 {
	normA, normB := l2norm(a), l2norm(b)
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

// shapeExtraction computes S = X X^T, M = P S P, and returns the
// z-normalized (and sign-flipped to minimize distance to the first member)
// eigenvector of M with the largest eigenvalue (spec §4.10, grounded
// directly on clustering.cpp's shapeExtraction). The S/P/M products and the
// eigendecomposition route through tsforge/array and tsforge/linalg (the
// same Matmul and Jacobi-rotation Eigen the rest of the module uses) rather
// than a package-local re-derivation.
func shapeExtraction(members [][]float64, p *array.Array) ([]float64, error) {
	m := len(members[0])
	sData := make([]float64, m*m)
	for _, x := range members {
		for i := 0; i < m; i++ {
			for j := 0; j < m; j++ {
				sData[i+j*m] += x[i] * x[j]
			}
		}
	}
	s, err := array.FromHost(sData, []int{m, m}, dtype.F64)
	if err != nil {
		return nil, err
	}
	ps, err := linalg.Matmul(p, s, false, false)
	if err != nil {
		return nil, err
	}
	mm, err := linalg.Matmul(ps, p, false, false)
	if err != nil {
		return nil, err
	}
	eigvals, eigvecs, err := linalg.Eigen(mm, 1e-9, 10*m*m)
	if err != nil {
		return nil, err
	}
	bestIdx, bestVal := 0, math.Inf(-1)
	for i, v := range eigvals {
		if v > bestVal {
			bestVal = v
			bestIdx = i
		}
	}
	vecHost, err := eigvecs.HostCopy()
	if err != nil {
		return nil, err
	}
	c := make([]float64, m)
	for i := 0; i < m; i++ {
		// eigvecs is column-major-leading: column bestIdx, row i.
		c[i] = vecHost[i+bestIdx*m]
	}
	zc := znormalize(c)

	first := members[0]
	d1, d2 := 0.0, 0.0
	for i := range first {
		a := first[i] - zc[i]
		b := first[i] + zc[i]
		d1 += a * a
		d2 += b * b
	}
	if math.Sqrt(d1) >= math.Sqrt(d2) {
		for i := range zc {
			zc[i] = -zc[i]
		}
	}
	return zc, nil
}

// KShapeClassify assigns each series in queries to the nearest centroid by
// maxNCC distance, without refining the centroids (spec §4.10
// "kshape_classify").
func KShapeClassify(queries [][]float64, centroids [][]float64) []int {
	labels := make([]int, len(queries))
	for i, x := range queries {
		zx := znormalize(x)
		best, bestDist := 0, math.Inf(-1)
		for c, cen := range centroids {
			ncc := maxNCC(zx, znormalize(cen))
			if ncc > bestDist {
				bestDist = ncc
				best = c
			}
		}
		labels[i] = best
	}
	return labels
}
