package features

import (
	"math"
	"sort"

	"github.com/tsforge/tsforge/errs"
)

// PAA computes Piecewise Aggregate Approximation: splits x into numSegments
// equal-ish chunks and replaces each with its mean (spec §4.9).
func PAA(x []float64, numSegments int) ([]float64, error) {
	n := len(x)
	if numSegments < 1 || numSegments > n {
		return nil, errs.Argf("paa: numSegments %d invalid for series of length %d", numSegments, n)
	}
	out := make([]float64, numSegments)
	for i := 0; i < numSegments; i++ {
		start := i * n / numSegments
		end := (i + 1) * n / numSegments
		sum := 0.0
		for j := start; j < end; j++ {
			sum += x[j]
		}
		out[i] = sum / float64(end-start)
	}
	return out, nil
}

// Point is a (index, value) pair used by the segment/vertex-reduction
// algorithms (PIP, PLA, RDP, Visvalingam).
type Point struct {
	Index int
	Value float64
}

// PIP selects numPoints Perceptually Important Points: starting from the
// endpoints, repeatedly inserts the point with maximum vertical distance to
// the line joining its neighboring selected points.
func PIP(x []float64, numPoints int) ([]Point, error) {
	n := len(x)
	if numPoints < 2 || numPoints > n {
		return nil, errs.Argf("pip: numPoints %d invalid for series of length %d", numPoints, n)
	}
	selected := []Point{{0, x[0]}, {n - 1, x[n-1]}}
	for len(selected) < numPoints {
		bestIdx, bestDist, insertAt := -1, -1.0, -1
		for s := 0; s < len(selected)-1; s++ {
			a, b := selected[s], selected[s+1]
			for i := a.Index + 1; i < b.Index; i++ {
				d := perpDistance(a, b, Point{i, x[i]})
				if d > bestDist {
					bestDist = d
					bestIdx = i
					insertAt = s + 1
				}
			}
		}
		if bestIdx < 0 {
			break
		}
		selected = append(selected, Point{})
		copy(selected[insertAt+1:], selected[insertAt:])
		selected[insertAt] = Point{bestIdx, x[bestIdx]}
	}
	return selected, nil
}

func perpDistance(a, b, p Point) float64 {
	dx := float64(b.Index - a.Index)
	dy := b.Value - a.Value
	norm := math.Hypot(dx, dy)
	if norm == 0 {
		return math.Abs(p.Value - a.Value)
	}
	num := math.Abs(dy*float64(p.Index-a.Index) - dx*(p.Value-a.Value))
	return num / norm
}

// Segment is a linear-fit segment of a PLA decomposition: [Start, End]
// endpoint indices plus the fitted slope/intercept.
type Segment struct {
	Start, End         int
	Slope, Intercept   float64
}

// PLABottomUp merges adjacent segments (starting from length-2 segments)
// while the merge cost stays below maxError, following the standard
// bottom-up piecewise-linear-approximation algorithm.
func PLABottomUp(x []float64, maxError float64) []Segment {
	n := len(x)
	if n < 2 {
		return nil
	}
	segs := make([]Segment, n-1)
	for i := 0; i < n-1; i++ {
		segs[i] = fitSegment(x, i, i+1)
	}
	for {
		bestIdx, bestCost := -1, math.Inf(1)
		for i := 0; i < len(segs)-1; i++ {
			merged := fitSegment(x, segs[i].Start, segs[i+1].End)
			cost := segmentError(x, merged)
			if cost < bestCost {
				bestCost = cost
				bestIdx = i
			}
		}
		if bestIdx < 0 || bestCost > maxError {
			break
		}
		merged := fitSegment(x, segs[bestIdx].Start, segs[bestIdx+1].End)
		segs = append(segs[:bestIdx], append([]Segment{merged}, segs[bestIdx+2:]...)...)
	}
	return segs
}

// PLASlidingWindow grows a segment from each unconsumed start index while
// the fit error stays below maxError, the sliding-window counterpart to
// PLABottomUp.
func PLASlidingWindow(x []float64, maxError float64) []Segment {
	n := len(x)
	var segs []Segment
	start := 0
	for start < n-1 {
		end := start + 1
		for end < n-1 {
			seg := fitSegment(x, start, end+1)
			if segmentError(x, seg) > maxError {
				break
			}
			end++
		}
		segs = append(segs, fitSegment(x, start, end))
		start = end
	}
	return segs
}

func fitSegment(x []float64, start, end int) Segment {
	n := end - start + 1
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = float64(start + i)
		ys[i] = x[start+i]
	}
	slope, intercept := linearFit(xs, ys)
	return Segment{Start: start, End: end, Slope: slope, Intercept: intercept}
}

func segmentError(x []float64, seg Segment) float64 {
	sum := 0.0
	for i := seg.Start; i <= seg.End; i++ {
		pred := seg.Slope*float64(i) + seg.Intercept
		d := x[i] - pred
		sum += d * d
	}
	return sum
}

// RDP applies the Ramer-Douglas-Peucker algorithm, keeping points whose
// perpendicular distance to the chord exceeds epsilon.
func RDP(x []float64, epsilon float64) []Point {
	pts := make([]Point, len(x))
	for i, v := range x {
		pts[i] = Point{i, v}
	}
	return rdpRecurse(pts, epsilon)
}

func rdpRecurse(pts []Point, epsilon float64) []Point {
	if len(pts) < 3 {
		return pts
	}
	a, b := pts[0], pts[len(pts)-1]
	bestIdx, bestDist := -1, -1.0
	for i := 1; i < len(pts)-1; i++ {
		d := perpDistance(a, b, pts[i])
		if d > bestDist {
			bestDist = d
			bestIdx = i
		}
	}
	if bestDist <= epsilon {
		return []Point{a, b}
	}
	left := rdpRecurse(pts[:bestIdx+1], epsilon)
	right := rdpRecurse(pts[bestIdx:], epsilon)
	return append(left[:len(left)-1], right...)
}

// SAX converts x to a Symbolic Aggregate approXimation string of the given
// alphabet size over numSegments PAA coefficients, using the standard
// Gaussian breakpoints for alphabets up to 7 symbols.
func SAX(x []float64, numSegments, alphabetSize int) (string, error) {
	if alphabetSize < 2 || alphabetSize > 7 {
		return "", errs.Argf("sax: alphabet size %d unsupported", alphabetSize)
	}
	paa, err := PAA(x, numSegments)
	if err != nil {
		return "", err
	}
	normalized := zNorm(paa)
	offset := (alphabetSize - 2) * (alphabetSize - 1) / 2
	breakpoints := gaussianBreakpoints[offset : offset+alphabetSize-1]
	out := make([]byte, numSegments)
	for i, v := range normalized {
		symbol := 0
		for _, bp := range breakpoints {
			if v >= bp {
				symbol++
			}
		}
		out[i] = byte('a' + symbol)
	}
	return string(out), nil
}

// gaussianBreakpoints holds the standard SAX breakpoints for alphabet sizes
// 2 through 7, one row per size: the alphabetSize-1 ascending breakpoints
// for a size start at offset (alphabetSize-2)*(alphabetSize-1)/2.
var gaussianBreakpoints = []float64{
	0, -0.43, 0.43, -0.67, 0, 0.67, -0.84, -0.25, 0.25, 0.84,
	-0.97, -0.43, 0, 0.43, 0.97, -1.07, -0.57, -0.18, 0.18, 0.57, 1.07,
}

// Visvalingam simplifies the series to numPoints vertices by iteratively
// removing the point forming the smallest-area triangle with its
// neighbors (Visvalingam-Whyatt line simplification).
func Visvalingam(x []float64, numPoints int) ([]Point, error) {
	n := len(x)
	if numPoints < 2 || numPoints > n {
		return nil, errs.Argf("visvalingam: numPoints %d invalid for series of length %d", numPoints, n)
	}
	pts := make([]Point, n)
	for i, v := range x {
		pts[i] = Point{i, v}
	}
	type entry struct {
		idx  int
		area float64
	}
	areaOf := func(i int) float64 {
		if i == 0 || i == len(pts)-1 {
			return math.Inf(1)
		}
		a, b, c := pts[i-1], pts[i], pts[i+1]
		return math.Abs(float64(a.Index)*(b.Value-c.Value)+
			float64(b.Index)*(c.Value-a.Value)+
			float64(c.Index)*(a.Value-b.Value)) / 2
	}
	for len(pts) > numPoints {
		entries := make([]entry, len(pts))
		for i := range pts {
			entries[i] = entry{i, areaOf(i)}
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].area < entries[j].area })
		removeIdx := entries[0].idx
		pts = append(pts[:removeIdx], pts[removeIdx+1:]...)
	}
	return pts, nil
}
