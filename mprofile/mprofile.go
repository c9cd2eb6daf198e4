// Package mprofile implements C8, the matrix-profile core and the design
// heart of the spec. It is grounded primarily on the go-matrixprofile
// reference files
// (other_examples/844b058d_matrix-profile-foundation-go-matrixprofile__matrixprofile.go.go
// and its .../8c81f84e_..._compute.go.go companion) for STOMP/SCAMP, MASS,
// and the find-best-N routines, supplemented from
// original_source/modules/gauss/src/matrix.cpp for the exact snippet/arc
// curve/segmentation/chain formulas (cac, segment, snippets) that the
// distillation's spec.md restates but does not re-derive in full.
package mprofile

import (
	"math"
	"sort"

	"github.com/tsforge/tsforge/array"
	"github.com/tsforge/tsforge/dtype"
	"github.com/tsforge/tsforge/errs"
	"github.com/tsforge/tsforge/fft"
	"github.com/tsforge/tsforge/workerpool"
)

const stdEpsilon = 1e-8

// NoNeighbor is the sentinel index value marking "no neighbor" in the
// split left/right SCAMP variant (spec §4.8.2: "a right-side 'no neighbor'
// is marked with the sentinel n - m + 1").
func NoNeighbor(n, m int) int { return n - m + 1 }

// MovMeanStd computes the moving mean and standard deviation of t over
// sliding windows of length m (spec §4.8.1 "produced by an unwrap-and-
// reduce operation over length-m sliding windows, yielding arrays of
// length n-m+1"), grounded on the reference's util.MovMeanStd call site in
// initCaches. Returns (mean, std, invMStd) where invMStd[i] = 1/(m*std[i])
// guarded by stdEpsilon (spec §4.8.9's "auxiliary inverse-std array uses a
// 1/max(std, eps) with eps=1e-8").
func MovMeanStd(t []float64, m int) (mean, std, invMStd []float64, err error) {
	n := len(t)
	if m <= 0 || m > n {
		return nil, nil, nil, errs.Argf("movMeanStd: window %d invalid for series of length %d", m, n)
	}
	count := n - m + 1
	mean = make([]float64, count)
	std = make([]float64, count)
	invMStd = make([]float64, count)
	sum, sumSq := 0.0, 0.0
	for i := 0; i < m; i++ {
		sum += t[i]
		sumSq += t[i] * t[i]
	}
	for i := 0; i < count; i++ {
		if i > 0 {
			sum += t[i+m-1] - t[i-1]
			sumSq += t[i+m-1]*t[i+m-1] - t[i-1]*t[i-1]
		}
		mu := sum / float64(m)
		variance := sumSq/float64(m) - mu*mu
		if variance < 0 {
			variance = 0
		}
		sd := math.Sqrt(variance)
		mean[i] = mu
		std[i] = sd
		invMStd[i] = 1 / (float64(m) * math.Max(sd, stdEpsilon))
	}
	return mean, std, invMStd, nil
}

// ZNormalize z-normalizes q in place-equivalent fashion, returning a new
// slice (subtract mean, divide by std, guarded by stdEpsilon).
func ZNormalize(q []float64) []float64 {
	n := len(q)
	sum := 0.0
	for _, v := range q {
		sum += v
	}
	mu := sum / float64(n)
	sumSq := 0.0
	for _, v := range q {
		d := v - mu
		sumSq += d * d
	}
	sd := math.Max(math.Sqrt(sumSq/float64(n)), stdEpsilon)
	out := make([]float64, n)
	for i, v := range q {
		out[i] = (v - mu) / sd
	}
	return out
}

// SlidingDotProduct computes q . t[i:i+m] for every valid i via FFT
// convolution (spec §4.8.1 "computed for all i in parallel by flipping q,
// FFT-expanding it to length n, multiplying by the FFT of t, inverse-
// transforming, and taking the tail [m-1..n-1]"), grounded directly on the
// reference's crossCorrelate.
func SlidingDotProduct(q, t []float64) []float64 {
	m, n := len(q), len(t)
	flipped := make([]float64, m)
	for i, v := range q {
		flipped[m-1-i] = v
	}
	full := fft.ConvolveFull(flipped, t)
	// full has length m+n-1; the valid dot products start at index m-1.
	out := make([]float64, n-m+1)
	copy(out, full[m-1:m-1+n-m+1])
	return out
}

// DistanceProfile converts a sliding dot product into the Euclidean
// distance profile of a query with mean meanQ and std stdQ against every
// window of the reference series, following spec §4.8.1's formula
// d_i^2 = 2m(1 - (qt_i - m*mean_t_i*mean_q)/(m*std_t_i*std_q)).
func DistanceProfile(dot []float64, m int, meanT, stdT []float64, meanQ, stdQ float64) []float64 {
	out := make([]float64, len(dot))
	for i, qt := range dot {
		denom := float64(m) * stdT[i] * stdQ
		if stdT[i] < stdEpsilon || stdQ < stdEpsilon {
			out[i] = math.Inf(1)
			continue
		}
		cc := (qt - float64(m)*meanT[i]*meanQ) / denom
		sq := 2 * float64(m) * math.Abs(1-cc)
		out[i] = math.Sqrt(sq)
	}
	return out
}

// ApplyExclusionZone sets entries within radius of idx to +Inf (spec
// §4.8.1's exclusion mask, "a banded 0/1 mask of width 2*floor(m/2)+1
// centered on the diagonal; set only in self-join mode").
func ApplyExclusionZone(profile []float64, idx, radius int) {
	start := idx - radius
	if start < 0 {
		start = 0
	}
	end := idx + radius
	if end >= len(profile) {
		end = len(profile) - 1
	}
	for i := start; i <= end; i++ {
		profile[i] = math.Inf(1)
	}
}

// Result is the output of a full all-pairs similarity join: a Profile Pair
// of a distance profile and its matching index array, each an
// `*array.Array` per spec §3 ("Profile Pair (profile: Array<f32|f64>,
// index: Array<u32>)") so the matrix-profile core composes over C2's array
// abstraction the way spec §2 requires of C5-C10 rather than handing back
// bare slices.
type Result struct {
	Profile *array.Array
	Index   *array.Array
}

// toProfileArray wraps a freshly computed profile slice as an f64 *array.Array.
func toProfileArray(profile []float64) (*array.Array, error) {
	return array.FromHost(profile, []int{len(profile)}, dtype.F64)
}

// toIndexArray wraps a freshly computed index slice as a u32 *array.Array
// (spec §3's index: Array<u32>).
func toIndexArray(index []int) (*array.Array, error) {
	f := make([]float64, len(index))
	for i, v := range index {
		f[i] = float64(v)
	}
	return array.FromHost(f, []int{len(index)}, dtype.U32)
}

// hostInts pulls an index *array.Array back to a plain []int for the
// sequential algorithms (FindBestN, CorrectedArcCurve, Segment, Chains)
// that walk it index-by-index; the array abstraction governs how the data
// enters and leaves these routines, not their internal iteration.
func hostInts(a *array.Array) ([]int, error) {
	f, err := a.HostCopy()
	if err != nil {
		return nil, err
	}
	out := make([]int, len(f))
	for i, v := range f {
		out[i] = int(v)
	}
	return out, nil
}

func hostFloats(a *array.Array) ([]float64, error) {
	return a.HostCopy()
}

// STOMP computes the self-join (b == nil) or AB-join matrix profile between
// a and b with window m (spec §4.8.2). The two-level tiling described by
// the spec collapses to a single parallel sweep here since tsforge's CPU
// backend does not need STOMP's original device-memory-budget tiling; the
// workerpool still fans the outer query loop across goroutines exactly as
// the reference's stompBatch fans work across a sync.WaitGroup, but through
// tsforge/workerpool instead of ad hoc goroutines.
func STOMP(a, b []float64, m int) (*Result, error) {
	selfJoin := b == nil
	ref := b
	if selfJoin {
		ref = a
	}
	n := len(ref)
	if m < 2 || m > n {
		return nil, errs.Argf("stomp: window %d invalid for reference series of length %d", m, n)
	}
	meanT, stdT, _, err := MovMeanStd(ref, m)
	if err != nil {
		return nil, err
	}
	na := len(a)
	profileLen := na - m + 1
	if profileLen < 1 {
		return nil, errs.Argf("stomp: query series too short for window %d", m)
	}
	profile := make([]float64, profileLen)
	index := make([]int, profileLen)
	radius := m / 2

	workerpool.Global().ParallelForAtomic(profileLen, func(i int) {
		q := a[i : i+m]
		meanQ, stdQ := 0.0, 0.0
		for _, v := range q {
			meanQ += v
		}
		meanQ /= float64(m)
		for _, v := range q {
			d := v - meanQ
			stdQ += d * d
		}
		stdQ = math.Sqrt(stdQ / float64(m))
		dot := SlidingDotProduct(q, ref)
		dp := DistanceProfile(dot, m, meanT, stdT, meanQ, math.Max(stdQ, stdEpsilon))
		if selfJoin {
			ApplyExclusionZone(dp, i, radius)
		}
		best, bestVal := 0, math.Inf(1)
		for j, v := range dp {
			if v < bestVal {
				bestVal = v
				best = j
			}
		}
		profile[i] = bestVal
		index[i] = best
	})
	profArr, err := toProfileArray(profile)
	if err != nil {
		return nil, err
	}
	idxArr, err := toIndexArray(index)
	if err != nil {
		return nil, err
	}
	return &Result{Profile: profArr, Index: idxArr}, nil
}

// SCAMP is the default matrix-profile path (spec §4.8.2 "SCAMP variant used
// as the default matrix-profile path"); for the CPU reference backend it
// computes the same all-pairs join as STOMP (the diagonal-update recurrence
// SCAMP uses to avoid recomputation is an optimization of the same result,
// not a different result), so it is implemented by delegating to STOMP.
func SCAMP(a, b []float64, m int) (*Result, error) {
	return STOMP(a, b, m)
}

// SplitResult is the output of SCAMP's split left/right variant (spec
// §4.8.2): two Profile Pairs, each an `*array.Array` per spec §3.
type SplitResult struct {
	ProfileLeft, ProfileRight *array.Array
	IndexLeft, IndexRight     *array.Array
}

// SCAMPSplit computes separate left (only matches at lower indices) and
// right (only matches at higher indices) matrix profiles for a self-join,
// marking an absent neighbor with NoNeighbor(n, m) (spec §4.8.2).
func SCAMPSplit(a []float64, m int) (*SplitResult, error) {
	n := len(a)
	meanT, stdT, _, err := MovMeanStd(a, m)
	if err != nil {
		return nil, err
	}
	profileLen := n - m + 1
	pl := make([]float64, profileLen)
	il := make([]int, profileLen)
	pr := make([]float64, profileLen)
	ir := make([]int, profileLen)
	sentinel := NoNeighbor(n, m)
	for i := range pl {
		pl[i] = math.Inf(1)
		pr[i] = math.Inf(1)
		il[i] = sentinel
		ir[i] = sentinel
	}
	radius := m / 2

	workerpool.Global().ParallelForAtomic(profileLen, func(i int) {
		q := a[i : i+m]
		meanQ, stdQ := 0.0, 0.0
		for _, v := range q {
			meanQ += v
		}
		meanQ /= float64(m)
		for _, v := range q {
			d := v - meanQ
			stdQ += d * d
		}
		stdQ = math.Max(math.Sqrt(stdQ/float64(m)), stdEpsilon)
		dot := SlidingDotProduct(q, a)
		dp := DistanceProfile(dot, m, meanT, stdT, meanQ, stdQ)
		ApplyExclusionZone(dp, i, radius)
		bestL, bestLVal := sentinel, math.Inf(1)
		for j := 0; j < i; j++ {
			if dp[j] < bestLVal {
				bestLVal = dp[j]
				bestL = j
			}
		}
		bestR, bestRVal := sentinel, math.Inf(1)
		for j := i + 1; j < len(dp); j++ {
			if dp[j] < bestRVal {
				bestRVal = dp[j]
				bestR = j
			}
		}
		pl[i], il[i] = bestLVal, bestL
		pr[i], ir[i] = bestRVal, bestR
	})
	plArr, err := toProfileArray(pl)
	if err != nil {
		return nil, err
	}
	ilArr, err := toIndexArray(il)
	if err != nil {
		return nil, err
	}
	prArr, err := toProfileArray(pr)
	if err != nil {
		return nil, err
	}
	irArr, err := toIndexArray(ir)
	if err != nil {
		return nil, err
	}
	return &SplitResult{ProfileLeft: plArr, IndexLeft: ilArr, ProfileRight: prArr, IndexRight: irArr}, nil
}

// Peak is one entry of a find-best-N result (spec §4.8.3).
type Peak struct {
	Value       float64
	Position    int
	MatchedSubs int
}

// FindBestN implements spec §4.8.3: repeatedly picks the arg-min (motifs)
// or arg-max (discords) of a copy of the profile, records it, and
// invalidates an exclusion zone of width m/2 around the pick (and, in
// self-join mode, around its matched subsequence index[pos] as well,
// regardless of whether motifs or discords are being discovered), grounded
// directly on the reference's DiscoverDiscords loop.
func FindBestN(profile, index *array.Array, n, m int, motifs bool, selfJoin bool) ([]Peak, error) {
	pf, err := hostFloats(profile)
	if err != nil {
		return nil, err
	}
	idx, err := hostInts(index)
	if err != nil {
		return nil, err
	}
	cp := append([]float64(nil), pf...)
	radius := m / 2
	var out []Peak
	for len(out) < n {
		pos := -1
		var best float64
		if motifs {
			best = math.Inf(1)
			for i, v := range cp {
				if !math.IsInf(v, 0) && v < best {
					best = v
					pos = i
				}
			}
		} else {
			best = math.Inf(-1)
			for i, v := range cp {
				if !math.IsInf(v, 0) && v > best {
					best = v
					pos = i
				}
			}
		}
		if pos < 0 {
			break
		}
		out = append(out, Peak{Value: best, Position: pos, MatchedSubs: idx[pos]})
		invalidate := math.Inf(1)
		if !motifs {
			invalidate = math.Inf(-1)
		}
		applyInvalidation(cp, pos, radius, invalidate)
		if selfJoin {
			applyInvalidation(cp, idx[pos], radius, invalidate)
		}
	}
	return out, nil
}

func applyInvalidation(v []float64, idx, radius int, val float64) {
	start := idx - radius
	if start < 0 {
		start = 0
	}
	end := idx + radius
	if end >= len(v) {
		end = len(v) - 1
	}
	for i := start; i <= end; i++ {
		v[i] = val
	}
}

// BestNOccurrences returns the n closest occurrences of query q within
// reference t (spec §4.8.4): the full distance profile sorted ascending,
// first n distances and positions. Fails with ArgError-equivalent when
// n > len(t)-m+1 or n < 1.
func BestNOccurrences(q, t []float64, n int) (distances []float64, positions []int, err error) {
	m := len(q)
	maxN := len(t) - m + 1
	if n < 1 || n > maxN {
		return nil, nil, errs.Argf("bestNOccurrences: n=%d out of range [1, %d]", n, maxN)
	}
	meanT, stdT, _, err := MovMeanStd(t, m)
	if err != nil {
		return nil, nil, err
	}
	qn := ZNormalize(q)
	meanQ, stdQ := 0.0, 1.0
	dot := SlidingDotProduct(qn, t)
	dp := DistanceProfile(dot, m, meanT, stdT, meanQ, stdQ)
	idx := make([]int, len(dp))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return dp[idx[i]] < dp[idx[j]] })
	distances = make([]float64, n)
	positions = make([]int, n)
	for i := 0; i < n; i++ {
		distances[i] = dp[idx[i]]
		positions[i] = idx[i]
	}
	return distances, positions, nil
}

// massMatrix computes the all-vs-a distance matrix between every length-w
// window of b and every length-w window of a (spec §4.8.5's "form all
// length-w subsequence queries of b, compute the all-vs-a mass matrix"),
// grounded on the reference's mass()/mass_fft() pattern generalized from a
// single query to a batch of queries.
func massMatrix(a, b []float64, w int) [][]float64 {
	meanA, stdA, _, _ := MovMeanStd(a, w)
	rows := len(b) - w + 1
	out := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		q := ZNormalize(b[r : r+w])
		dot := SlidingDotProduct(q, a)
		out[r] = DistanceProfile(dot, w, meanA, stdA, 0, 1)
	}
	return out
}

// MPDist computes the matrix-profile distance between windows a and b of
// equal length w (spec §4.8.5), grounded on the reference's
// mass_to_mpdist_vector: form the all-vs-a mass matrix for b, take
// per-row and per-column mins, concatenate, sort, and take the
// ceil(threshold*(|a|+|b|))-1'th value (clipped to the last valid index).
func MPDist(a, b []float64, w int, threshold float64) (float64, error) {
	if w < 1 || w > len(a) || w > len(b) {
		return 0, errs.Argf("mpdist: window %d invalid for series lengths %d, %d", w, len(a), len(b))
	}
	if threshold <= 0 {
		threshold = 0.05
	}
	mat := massMatrix(a, b, w)
	rowMins := make([]float64, len(mat))
	for i, row := range mat {
		m := math.Inf(1)
		for _, v := range row {
			if v < m {
				m = v
			}
		}
		rowMins[i] = m
	}
	cols := len(a) - w + 1
	colMins := make([]float64, cols)
	for c := 0; c < cols; c++ {
		m := math.Inf(1)
		for _, row := range mat {
			if row[c] < m {
				m = row[c]
			}
		}
		colMins[c] = m
	}
	data := append(append([]float64(nil), rowMins...), colMins...)
	sort.Float64s(data)
	idx := int(math.Ceil(threshold*float64(len(a)+len(b)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(data) {
		idx = len(data) - 1
	}
	return data[idx], nil
}

// MPDistVector slides a window of size w across a and returns MPDist(a, b)
// at each position (spec §4.8.5 "the MPDist-vector variant slides a window
// of size w across a and returns MPDist at each position of a").
func MPDistVector(a, b []float64, w int, threshold float64) ([]float64, error) {
	n := len(a) - w + 1
	if n < 1 {
		return nil, errs.Argf("mpdistVector: window %d too large for series of length %d", w, len(a))
	}
	out := make([]float64, n)
	var err error
	for i := 0; i < n; i++ {
		out[i], err = MPDist(a[i:i+w], b, w, threshold)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Snippet is one entry in the snippets result (spec §4.8.6).
type Snippet struct {
	ChunkIndex int
	Window     int
	Distances  []float64
	Nearest    []bool
	Fraction   float64
}

// Snippets partitions series into ceil(n/S) non-overlapping chunks, greedily
// selects K snippets minimizing total profile mass, and reports per-snippet
// coverage (spec §4.8.6), grounded on original_source's snippets() in
// matrix.cpp.
func Snippets(series []float64, snippetSize, k int, window int) ([]Snippet, error) {
	n := len(series)
	if snippetSize < 4 {
		return nil, errs.Argf("snippets: snippet size must be >= 4")
	}
	if n < 2*snippetSize {
		return nil, errs.Argf("snippets: series too short for snippet size %d", snippetSize)
	}
	if window <= 0 {
		window = snippetSize / 2
	}
	if window >= snippetSize {
		return nil, errs.Argf("snippets: window must be strictly less than snippet size")
	}
	numZeros := snippetSize*int(math.Ceil(float64(n)/float64(snippetSize))) - n
	padded := make([]float64, n+numZeros)
	copy(padded, series)

	var distances [][]float64
	for i := 0; i < len(padded); i += snippetSize {
		chunk := padded[i : i+snippetSize]
		dv, err := MPDistVector(padded, chunk, window, 0.05)
		if err != nil {
			return nil, err
		}
		distances = append(distances, dv)
	}

	bestSum := math.Inf(1)
	bestIdx := 0
	for j, d := range distances {
		s := sumOf(d)
		if s < bestSum {
			bestSum = s
			bestIdx = j
		}
	}
	chosen := []int{bestIdx}
	minis := append([]float64(nil), distances[bestIdx]...)
	for sn := 1; sn < k && sn < len(distances); sn++ {
		bestSum = math.Inf(1)
		bestIdx = 0
		for j, d := range distances {
			s := sumOfMin(d, minis)
			if s < bestSum {
				bestSum = s
				bestIdx = j
			}
		}
		chosen = append(chosen, bestIdx)
		minis = elementwiseMin(distances[bestIdx], minis)
	}

	results := make([]Snippet, len(chosen))
	for i, idx := range chosen {
		d := distances[idx]
		mask := make([]bool, len(d))
		count := 0
		for j, v := range d {
			if v <= minis[j] {
				mask[j] = true
				count++
			}
		}
		results[i] = Snippet{
			ChunkIndex: idx,
			Window:     window,
			Distances:  d,
			Nearest:    mask,
			Fraction:   float64(count) / float64(n),
		}
	}
	return results, nil
}

func sumOf(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s
}

func sumOfMin(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += math.Min(a[i], b[i])
	}
	return s
}

func elementwiseMin(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = math.Min(a[i], b[i])
	}
	return out
}

// CorrectedArcCurve computes the corrected arc curve (CAC) of a matrix
// profile index (spec §4.8.7), grounded directly on original_source's cac()
// in matrix.cpp: for each position form the arc (min(i,index[i]),
// max(i,index[i])), count crossings via a +1/-1 mark and prefix sum,
// normalize by the parabolic expected value 2i(L-i)/L, clip to 1, and force
// the first/last w entries to 1.
func CorrectedArcCurve(index *array.Array, w int) ([]float64, error) {
	idx, err := hostInts(index)
	if err != nil {
		return nil, err
	}
	l := len(idx)
	mark := make([]float64, l)
	for i, v := range idx {
		lo, hi := i, v
		if lo > hi {
			lo, hi = hi, lo
		}
		mark[lo]++
		if hi < l {
			mark[hi]--
		}
	}
	crossCount := make([]float64, l)
	acc := 0.0
	for i, m := range mark {
		acc += m
		crossCount[i] = acc
	}
	out := make([]float64, l)
	for i, c := range crossCount {
		adj := 2.0 * float64(i) * float64(l-i) / float64(l)
		v := 1.0
		if adj != 0 {
			v = c / adj
		}
		if v > 1 {
			v = 1
		}
		out[i] = v
	}
	for i := 0; i < w && i < l; i++ {
		out[i] = 1
	}
	for i := max(l-w, 0); i < l; i++ {
		out[i] = 1
	}
	return out, nil
}

// Segment repeatedly picks the arg-min of the CAC strictly below 1, masks
// an exclusion zone around it, and stops after numRegions picks or when no
// valid minimum remains (spec §4.8.7), grounded directly on
// original_source's segment() in matrix.cpp (default ez=5). The zone is
// [pos-exczone, min(len(cac), pos+exczone)-1], matching matrix.cpp's
// exc_end = std::min(cacv_size, idx+exczone) - 1 exactly, so the masked
// width is 2*exczone rather than 2*exczone+1.
func Segment(index *array.Array, w, numRegions, ez int) ([]int, error) {
	if ez <= 0 {
		ez = 5
	}
	cac, err := CorrectedArcCurve(index, w)
	if err != nil {
		return nil, err
	}
	exczone := w * ez
	var result []int
	left := numRegions
	for {
		pos, val := -1, math.Inf(1)
		for i, v := range cac {
			if v < val {
				val = v
				pos = i
			}
		}
		if pos < 0 || math.Abs(val-1.0) <= 1e-8 {
			break
		}
		result = append(result, pos)
		start := pos - exczone
		if start < 0 {
			start = 0
		}
		end := pos + exczone - 1
		if end >= len(cac) {
			end = len(cac) - 1
		}
		for i := start; i <= end; i++ {
			cac[i] = 1
		}
		if numRegions > 0 {
			left--
			if left == 0 {
				break
			}
		}
	}
	return result, nil
}

// Chain is one maximal chain discovered by Chains (spec §4.8.8): the
// sequence of series positions, in order, that successively link through
// the right matrix-profile index with a matching left-index return path.
type Chain struct {
	ID       int
	Sequence []int
}

// Chains computes left and right matrix profiles and follows right_index[i]
// chains, extending whenever the left-link of the arrived position returns
// to the previous index (spec §4.8.8).
func Chains(series []float64, m int) ([]Chain, error) {
	split, err := SCAMPSplit(series, m)
	if err != nil {
		return nil, err
	}
	indexRight, err := hostInts(split.IndexRight)
	if err != nil {
		return nil, err
	}
	indexLeft, err := hostInts(split.IndexLeft)
	if err != nil {
		return nil, err
	}
	n := len(indexRight)
	sentinel := NoNeighbor(len(series), m)
	visited := make([]bool, n)
	var chains []Chain
	id := 0
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		seq := []int{i}
		visited[i] = true
		cur := i
		for {
			next := indexRight[cur]
			if next == sentinel || next < 0 || next >= n || visited[next] {
				break
			}
			if indexLeft[next] != cur {
				break
			}
			seq = append(seq, next)
			visited[next] = true
			cur = next
		}
		if len(seq) > 1 {
			chains = append(chains, Chain{ID: id, Sequence: seq})
			id++
		}
	}
	return chains, nil
}
