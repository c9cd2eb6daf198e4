package mprofile_test

import (
	"math"
	"testing"

	"github.com/tsforge/tsforge/array"
	"github.com/tsforge/tsforge/dtype"
	"github.com/tsforge/tsforge/mprofile"
)

func TestSlidingDotProductMatchesDirect(t *testing.T) {
	t.Parallel()
	t_ := []float64{1, 2, 3, 4, 5, 6}
	q := []float64{2, 1, 3}
	got := mprofile.SlidingDotProduct(q, t_)
	want := make([]float64, len(t_)-len(q)+1)
	for i := range want {
		s := 0.0
		for j, v := range q {
			s += v * t_[i+j]
		}
		want[i] = s
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-8 {
			t.Errorf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMovMeanStd(t *testing.T) {
	t.Parallel()
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	mean, std, _, err := mprofile.MovMeanStd(x, 4)
	if err != nil {
		t.Fatalf("movMeanStd: %v", err)
	}
	// window [1,2,3,4]: mean=2.5
	if math.Abs(mean[0]-2.5) > 1e-9 {
		t.Errorf("mean[0]: got %v, want 2.5", mean[0])
	}
	if std[0] <= 0 {
		t.Errorf("std[0] should be positive, got %v", std[0])
	}
}

func TestSTOMPSelfJoinFindsExactMatch(t *testing.T) {
	t.Parallel()
	// A repeating pattern should produce near-zero profile minimum away
	// from the trivial (exclusion-zone) match.
	pattern := []float64{0, 1, 4, 9, 4, 1}
	series := append(append([]float64{}, pattern...), pattern...)
	res, err := mprofile.STOMP(series, nil, 6)
	if err != nil {
		t.Fatalf("stomp: %v", err)
	}
	if res.Profile.DType() != dtype.F64 {
		t.Errorf("profile dtype: got %v, want f64", res.Profile.DType())
	}
	if res.Index.DType() != dtype.U32 {
		t.Errorf("index dtype: got %v, want u32", res.Index.DType())
	}
	profile, err := res.Profile.HostCopy()
	if err != nil {
		t.Fatalf("profile.HostCopy: %v", err)
	}
	minVal := math.Inf(1)
	for _, v := range profile {
		if v < minVal {
			minVal = v
		}
	}
	if minVal > 1e-6 {
		t.Errorf("expected near-zero matrix profile minimum for repeated pattern, got %v", minVal)
	}
}

func TestApplyExclusionZoneMasks(t *testing.T) {
	t.Parallel()
	profile := make([]float64, 10)
	mprofile.ApplyExclusionZone(profile, 5, 2)
	for i := 3; i <= 7; i++ {
		if !math.IsInf(profile[i], 1) {
			t.Errorf("index %d should be excluded, got %v", i, profile[i])
		}
	}
	if math.IsInf(profile[0], 1) || math.IsInf(profile[9], 1) {
		t.Errorf("indices outside the exclusion radius should be untouched")
	}
}

func TestFindBestNMotifsRespectsExclusionZone(t *testing.T) {
	t.Parallel()
	profileSlice := []float64{5, 5, 0.1, 5, 5, 0.2, 5, 5, 5, 5}
	indexSlice := make([]int, len(profileSlice))
	profile, index := mustProfilePair(t, profileSlice, indexSlice)

	peaks, err := mprofile.FindBestN(profile, index, len(profileSlice), 2, true, false)
	if err != nil {
		t.Fatalf("findBestN: %v", err)
	}
	if len(peaks) != 2 {
		t.Fatalf("expected 2 motifs, got %d", len(peaks))
	}
	if peaks[0].Position != 2 {
		t.Errorf("first motif position: got %d, want 2", peaks[0].Position)
	}
}

func TestFindBestNDiscordsInvalidatesMatchedNeighborInSelfJoin(t *testing.T) {
	t.Parallel()
	// Positions 1 and 6 mutually match each other (index[1]=6, index[6]=1)
	// and share the profile's two maximal values. In self-join mode,
	// discovering the discord at 1 must also invalidate the exclusion zone
	// around its matched neighbor at 6, so 6 cannot resurface as a second,
	// effectively-duplicate discord.
	profileSlice := []float64{1, 9, 1, 1, 1, 1, 9, 1}
	indexSlice := []int{2, 6, 0, 0, 0, 0, 1, 0}
	profile, index := mustProfilePair(t, profileSlice, indexSlice)

	peaks, err := mprofile.FindBestN(profile, index, 2, 2, false, true)
	if err != nil {
		t.Fatalf("findBestN: %v", err)
	}
	if len(peaks) != 2 {
		t.Fatalf("expected 2 discords, got %d", len(peaks))
	}
	if peaks[0].Position != 1 || peaks[0].Value != 9 {
		t.Fatalf("first discord: got {pos=%d val=%v}, want {pos=1 val=9}", peaks[0].Position, peaks[0].Value)
	}
	if peaks[1].Value == 9 {
		t.Errorf("second discord still has value 9: matched neighbor at position 6 was not invalidated")
	}
}

func TestCorrectedArcCurveBounds(t *testing.T) {
	t.Parallel()
	indexSlice := []int{1, 0, 3, 2, 5, 4}
	index := mustIndexArray(t, indexSlice)
	cac, err := mprofile.CorrectedArcCurve(index, 1)
	if err != nil {
		t.Fatalf("correctedArcCurve: %v", err)
	}
	for i, v := range cac {
		if v < 0 || v > 1 {
			t.Errorf("cac[%d] = %v out of [0,1] bounds", i, v)
		}
	}
}

func TestMPDistZeroForIdenticalSeries(t *testing.T) {
	t.Parallel()
	a := []float64{1, 2, 3, 4, 5, 6, 7, 8, 1, 2, 3, 4}
	got, err := mprofile.MPDist(a, a, 4, 0.05)
	if err != nil {
		t.Fatalf("mpdist: %v", err)
	}
	if got > 1e-6 {
		t.Errorf("MPDist of a series with itself should be ~0, got %v", got)
	}
}

func TestNoNeighborSentinel(t *testing.T) {
	t.Parallel()
	if got := mprofile.NoNeighbor(100, 10); got != 91 {
		t.Errorf("NoNeighbor(100,10): got %v, want 91", got)
	}
}

func mustProfilePair(t *testing.T, profile []float64, index []int) (*array.Array, *array.Array) {
	t.Helper()
	p, err := array.FromHost(profile, []int{len(profile)}, dtype.F64)
	if err != nil {
		t.Fatalf("FromHost(profile): %v", err)
	}
	return p, mustIndexArray(t, index)
}

func mustIndexArray(t *testing.T, index []int) *array.Array {
	t.Helper()
	f := make([]float64, len(index))
	for i, v := range index {
		f[i] = float64(v)
	}
	idx, err := array.FromHost(f, []int{len(f)}, dtype.U32)
	if err != nil {
		t.Fatalf("FromHost(index): %v", err)
	}
	return idx
}
