package stats_test

import (
	"math"
	"testing"

	"github.com/tsforge/tsforge/stats"
)

func TestMeanVarStd(t *testing.T) {
	t.Parallel()
	x := []float64{1, 2, 3, 4, 5}
	mean, err := stats.Mean(x, nil)
	if err != nil {
		t.Fatalf("mean: %v", err)
	}
	if mean != 3 {
		t.Errorf("mean: got %v, want 3", mean)
	}
	variance, err := stats.Var(x, nil, 0)
	if err != nil {
		t.Fatalf("var: %v", err)
	}
	if math.Abs(variance-2) > 1e-9 {
		t.Errorf("var (ddof=0): got %v, want 2", variance)
	}
	sd, err := stats.Std(x, nil, 0)
	if err != nil {
		t.Fatalf("std: %v", err)
	}
	if math.Abs(sd-math.Sqrt(2)) > 1e-9 {
		t.Errorf("std: got %v, want %v", sd, math.Sqrt(2))
	}
}

func TestWeightedMean(t *testing.T) {
	t.Parallel()
	x := []float64{1, 2, 3}
	w := []float64{1, 1, 2}
	got, err := stats.Mean(x, w)
	if err != nil {
		t.Fatalf("mean: %v", err)
	}
	want := (1*1 + 2*1 + 3*2) / 4.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("weighted mean: got %v, want %v", got, want)
	}
}

func TestMedian(t *testing.T) {
	t.Parallel()
	if got := stats.Median([]float64{3, 1, 2}); got != 2 {
		t.Errorf("odd-length median: got %v, want 2", got)
	}
	if got := stats.Median([]float64{1, 2, 3, 4}); got != 2.5 {
		t.Errorf("even-length median: got %v, want 2.5", got)
	}
}

// TestXcorrBiasedWorkedExample checks spec §8 scenario 5: x=y=[1,2,3,4],
// maxlag=3, scale=biased.
func TestXcorrBiasedWorkedExample(t *testing.T) {
	t.Parallel()
	x := []float64{1, 2, 3, 4}
	lags, values, err := stats.Xcorr(x, x, 3, stats.ScaleBiased)
	if err != nil {
		t.Fatalf("xcorr: %v", err)
	}
	wantLags := []int{-3, -2, -1, 0, 1, 2, 3}
	wantValues := []float64{1, 2.75, 5, 7.5, 5, 2.75, 1}
	for i := range wantLags {
		if lags[i] != wantLags[i] {
			t.Errorf("lag %d: got %v, want %v", i, lags[i], wantLags[i])
		}
		if math.Abs(values[i]-wantValues[i]) > 1e-9 {
			t.Errorf("value at lag %d: got %v, want %v", wantLags[i], values[i], wantValues[i])
		}
	}
}

func TestAutocorrAtZeroLagIsOne(t *testing.T) {
	t.Parallel()
	x := []float64{2, -1, 3, 0, 5, -2}
	lags, values, err := stats.Autocorr(x, 2, stats.ScaleCoeff)
	if err != nil {
		t.Fatalf("autocorr: %v", err)
	}
	for i, l := range lags {
		if l == 0 {
			if math.Abs(values[i]-1) > 1e-9 {
				t.Errorf("coeff-scaled autocorrelation at lag 0: got %v, want 1", values[i])
			}
		}
	}
}

func TestCovarianceSymmetric(t *testing.T) {
	t.Parallel()
	cols := [][]float64{
		{1, 2, 3, 4},
		{4, 3, 2, 1},
	}
	cov, err := stats.Covariance(cols, 1)
	if err != nil {
		t.Fatalf("covariance: %v", err)
	}
	if math.Abs(cov[0][1]-cov[1][0]) > 1e-12 {
		t.Errorf("covariance matrix not symmetric: %v vs %v", cov[0][1], cov[1][0])
	}
	if cov[0][1] >= 0 {
		t.Errorf("expected negative covariance for inversely related columns, got %v", cov[0][1])
	}
}

func TestCorrCoefDiagonalIsOne(t *testing.T) {
	t.Parallel()
	cols := [][]float64{
		{1, 2, 3, 4, 5},
		{2, 4, 1, 8, 3},
	}
	corr, err := stats.CorrCoef(cols, 1)
	if err != nil {
		t.Fatalf("corrcoef: %v", err)
	}
	for i := range corr {
		if math.Abs(corr[i][i]-1) > 1e-9 {
			t.Errorf("diagonal %d: got %v, want 1", i, corr[i][i])
		}
	}
}
