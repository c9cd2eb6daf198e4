package features_test

import (
	"math"
	"testing"

	"github.com/tsforge/tsforge/features"
)

func TestAbsEnergy(t *testing.T) {
	t.Parallel()
	got := features.AbsEnergy([][]float64{{1, 2, 3}})
	if got[0] != 14 {
		t.Errorf("absEnergy: got %v, want 14", got[0])
	}
}

func TestAbsoluteSumOfChanges(t *testing.T) {
	t.Parallel()
	got := features.AbsoluteSumOfChanges([][]float64{{1, 3, 0, 5}})
	want := 2.0 + 3.0 + 5.0
	if got[0] != want {
		t.Errorf("absoluteSumOfChanges: got %v, want %v", got[0], want)
	}
}

func TestCountAboveBelowMean(t *testing.T) {
	t.Parallel()
	cols := [][]float64{{1, 2, 3, 4, 5}}
	above := features.CountAboveMean(cols)
	below := features.CountBelowMean(cols)
	if above[0] != 2 {
		t.Errorf("countAboveMean: got %v, want 2", above[0])
	}
	if below[0] != 2 {
		t.Errorf("countBelowMean: got %v, want 2", below[0])
	}
}

func TestApproximateEntropyFailsWhenSeriesTooShort(t *testing.T) {
	t.Parallel()
	_, err := features.ApproximateEntropy([][]float64{{1, 2}}, 2, 0.2)
	if err == nil {
		t.Fatal("expected error for series shorter than m+1, got nil")
	}
}

func TestApproximateEntropyLowForConstantSeries(t *testing.T) {
	t.Parallel()
	x := make([]float64, 10)
	got, err := features.ApproximateEntropy([][]float64{x}, 2, 0.2)
	if err != nil {
		t.Fatalf("approximateEntropy: %v", err)
	}
	if math.Abs(got[0]) > 1e-9 {
		t.Errorf("constant series should have ~0 approximate entropy, got %v", got[0])
	}
}

func TestSampleEntropyFailsWhenSeriesTooShort(t *testing.T) {
	t.Parallel()
	_, err := features.SampleEntropy([][]float64{{1, 2}}, 2, 0.2)
	if err == nil {
		t.Fatal("expected error for series shorter than m+1, got nil")
	}
}

func TestBinnedEntropyConstantSeriesIsZero(t *testing.T) {
	t.Parallel()
	x := []float64{5, 5, 5, 5}
	got := features.BinnedEntropy([][]float64{x}, 4)
	if got[0] != 0 {
		t.Errorf("binnedEntropy of constant series: got %v, want 0", got[0])
	}
}

func TestEnergyRatioByChunksSumsToOne(t *testing.T) {
	t.Parallel()
	x := []float64{1, 2, 3, 4, 5, 6}
	total := 0.0
	for i := 0; i < 3; i++ {
		r, err := features.EnergyRatioByChunks([][]float64{x}, 3, i)
		if err != nil {
			t.Fatalf("energyRatioByChunks: %v", err)
		}
		total += r[0]
	}
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("sum of chunk energy ratios: got %v, want 1", total)
	}
}

func TestEnergyRatioByChunksRejectsOutOfRangeFocus(t *testing.T) {
	t.Parallel()
	if _, err := features.EnergyRatioByChunks([][]float64{{1, 2, 3}}, 2, 5); err == nil {
		t.Fatal("expected error for out-of-range segmentFocus, got nil")
	}
}

func TestFFTCoefficientDCBinIsSum(t *testing.T) {
	t.Parallel()
	x := []float64{1, 2, 3, 4}
	realP, imagP, magP, _, err := features.FFTCoefficient([][]float64{x}, 0)
	if err != nil {
		t.Fatalf("fftCoefficient: %v", err)
	}
	if math.Abs(realP[0]-10) > 1e-9 {
		t.Errorf("DC bin real part: got %v, want 10", realP[0])
	}
	if math.Abs(imagP[0]) > 1e-9 {
		t.Errorf("DC bin imaginary part: got %v, want 0", imagP[0])
	}
	if math.Abs(magP[0]-10) > 1e-9 {
		t.Errorf("DC bin magnitude: got %v, want 10", magP[0])
	}
}

func TestIndexMassQuantileMonotone(t *testing.T) {
	t.Parallel()
	x := []float64{1, 1, 1, 1, 1}
	got := features.IndexMassQuantile([][]float64{x}, 1.0)
	if got[0] != 1.0 {
		t.Errorf("indexMassQuantile(q=1): got %v, want 1.0", got[0])
	}
}

func TestNumberPeaksDetectsSingleSpike(t *testing.T) {
	t.Parallel()
	x := []float64{0, 1, 5, 1, 0}
	got := features.NumberPeaks([][]float64{x}, 1)
	if got[0] != 1 {
		t.Errorf("numberPeaks: got %v, want 1", got[0])
	}
}

func TestNumberCrossingM(t *testing.T) {
	t.Parallel()
	x := []float64{1, -1, 1, -1, 1}
	got := features.NumberCrossingM([][]float64{x}, 0)
	if got[0] != 4 {
		t.Errorf("numberCrossingM: got %v, want 4", got[0])
	}
}

func TestC3ZeroForAllZeroSeries(t *testing.T) {
	t.Parallel()
	x := make([]float64, 10)
	got := features.C3([][]float64{x}, 1)
	if got[0] != 0 {
		t.Errorf("c3: got %v, want 0", got[0])
	}
}

func TestCidCeZeroForConstantSeries(t *testing.T) {
	t.Parallel()
	x := []float64{3, 3, 3, 3}
	got := features.CidCe([][]float64{x}, false)
	if got[0] != 0 {
		t.Errorf("cidCe of constant series: got %v, want 0", got[0])
	}
}

func TestSpktWelchDensityNonNegative(t *testing.T) {
	t.Parallel()
	x := []float64{1, 2, 1, 3, 5, 2, 1, 4}
	got, err := features.SpktWelchDensity([][]float64{x}, 1)
	if err != nil {
		t.Fatalf("spktWelchDensity: %v", err)
	}
	if got[0] < 0 {
		t.Errorf("power spectral density should be non-negative, got %v", got[0])
	}
}

func TestNormalizeZScoreHasZeroMeanUnitStd(t *testing.T) {
	t.Parallel()
	cols := [][]float64{{1, 2, 3, 4, 5}}
	out := features.Normalize(cols, features.ZScore, 1e-12)
	var sum, ss float64
	for _, v := range out[0] {
		sum += v
	}
	mean := sum / float64(len(out[0]))
	for _, v := range out[0] {
		d := v - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(out[0])))
	if math.Abs(mean) > 1e-9 {
		t.Errorf("z-score mean: got %v, want 0", mean)
	}
	if math.Abs(std-1) > 1e-9 {
		t.Errorf("z-score std: got %v, want 1", std)
	}
}

func TestNormalizeConstantColumnUnchanged(t *testing.T) {
	t.Parallel()
	cols := [][]float64{{7, 7, 7}}
	out := features.Normalize(cols, features.ZScore, 1e-12)
	for _, v := range out[0] {
		if v != 7 {
			t.Errorf("constant column should be left unchanged, got %v", v)
		}
	}
}

func TestNormalizeMinMaxRange(t *testing.T) {
	t.Parallel()
	cols := [][]float64{{2, 4, 6, 8}}
	out := features.Normalize(cols, features.MinMax, 1e-12)
	if out[0][0] != 0 {
		t.Errorf("minmax[0]: got %v, want 0", out[0][0])
	}
	if out[0][len(out[0])-1] != 1 {
		t.Errorf("minmax[last]: got %v, want 1", out[0][len(out[0])-1])
	}
}

func TestNormalizeInPlaceMutatesInput(t *testing.T) {
	t.Parallel()
	cols := [][]float64{{1, 2, 3}}
	features.NormalizeInPlace(cols, features.Sigmoid, 1e-12)
	for _, v := range cols[0] {
		if v <= 0 || v >= 1 {
			t.Errorf("sigmoid output should be in (0,1), got %v", v)
		}
	}
}

func TestL1L2Distance(t *testing.T) {
	t.Parallel()
	src := [][]float64{{0, 0, 0}}
	dst := [][]float64{{3, 4, 0}}
	l1, err := features.L1(src, dst)
	if err != nil {
		t.Fatalf("l1: %v", err)
	}
	if l1[0] != 7 {
		t.Errorf("l1: got %v, want 7", l1[0])
	}
	l2, err := features.L2(src, dst)
	if err != nil {
		t.Fatalf("l2: %v", err)
	}
	if l2[0] != 5 {
		t.Errorf("l2: got %v, want 5", l2[0])
	}
}

func TestDistanceShapeMismatchErrors(t *testing.T) {
	t.Parallel()
	src := [][]float64{{1, 2, 3}}
	dst := [][]float64{{1, 2}, {3, 4}}
	if _, err := features.L1(src, dst); err == nil {
		t.Fatal("expected error for mismatched series count, got nil")
	}
}

func TestDTWZeroForIdenticalSeries(t *testing.T) {
	t.Parallel()
	a := []float64{1, 2, 3, 4, 5}
	got, err := features.DTW([][]float64{a}, [][]float64{a})
	if err != nil {
		t.Fatalf("dtw: %v", err)
	}
	if got[0] != 0 {
		t.Errorf("dtw(a,a): got %v, want 0", got[0])
	}
}

func TestSBDZeroForIdenticalSeries(t *testing.T) {
	t.Parallel()
	a := []float64{1, -1, 2, -2, 3, -3}
	got, err := features.SBD([][]float64{a}, [][]float64{a})
	if err != nil {
		t.Fatalf("sbd: %v", err)
	}
	if got[0] > 1e-6 {
		t.Errorf("sbd(a,a) should be ~0, got %v", got[0])
	}
}

func TestPairwiseSymmetric(t *testing.T) {
	t.Parallel()
	series := [][]float64{{1, 2, 3}, {4, 5, 6}, {1, 2, 4}}
	mat, err := features.Pairwise(series, features.L2, true)
	if err != nil {
		t.Fatalf("pairwise: %v", err)
	}
	for i := range mat {
		if mat[i][i] != 0 {
			t.Errorf("diagonal[%d]: got %v, want 0", i, mat[i][i])
		}
		for j := range mat {
			if mat[i][j] != mat[j][i] {
				t.Errorf("not symmetric at (%d,%d): %v vs %v", i, j, mat[i][j], mat[j][i])
			}
		}
	}
}

func TestPAASegmentMeans(t *testing.T) {
	t.Parallel()
	x := []float64{1, 2, 3, 4, 5, 6}
	got, err := features.PAA(x, 3)
	if err != nil {
		t.Fatalf("paa: %v", err)
	}
	want := []float64{1.5, 3.5, 5.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("paa[%d]: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPIPIncludesEndpoints(t *testing.T) {
	t.Parallel()
	x := []float64{0, 5, 0, 5, 0}
	pts, err := features.PIP(x, 3)
	if err != nil {
		t.Fatalf("pip: %v", err)
	}
	if pts[0].Index != 0 || pts[len(pts)-1].Index != len(x)-1 {
		t.Errorf("pip should always include both endpoints, got %v", pts)
	}
}

func TestRDPKeepsOutlierPoint(t *testing.T) {
	t.Parallel()
	x := []float64{0, 0, 10, 0, 0}
	pts := features.RDP(x, 1.0)
	found := false
	for _, p := range pts {
		if p.Index == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the spike at index 2 to survive RDP simplification, got %v", pts)
	}
}

func TestSAXProducesExpectedLength(t *testing.T) {
	t.Parallel()
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	s, err := features.SAX(x, 4, 3)
	if err != nil {
		t.Fatalf("sax: %v", err)
	}
	if len(s) != 4 {
		t.Errorf("sax string length: got %d, want 4", len(s))
	}
}

func TestVisvalingamReducesToTarget(t *testing.T) {
	t.Parallel()
	x := []float64{0, 1, 0, 2, 0, 3, 0}
	pts, err := features.Visvalingam(x, 4)
	if err != nil {
		t.Fatalf("visvalingam: %v", err)
	}
	if len(pts) != 4 {
		t.Errorf("visvalingam result length: got %d, want 4", len(pts))
	}
}

func TestPLABottomUpCoversWholeSeries(t *testing.T) {
	t.Parallel()
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	segs := features.PLABottomUp(x, 0.01)
	if len(segs) == 0 {
		t.Fatal("expected at least one segment")
	}
	if segs[0].Start != 0 || segs[len(segs)-1].End != len(x)-1 {
		t.Errorf("segments should cover the whole series, got first=%v last=%v", segs[0], segs[len(segs)-1])
	}
}
