package array_test

import (
	"math"
	"testing"

	"github.com/tsforge/tsforge/array"
	"github.com/tsforge/tsforge/dtype"
)

func TestFromHostRoundTrip(t *testing.T) {
	t.Parallel()
	data := []float64{1, 2, 3, 4, 5, 6}
	a, err := array.FromHost(data, []int{2, 3}, dtype.F64)
	if err != nil {
		t.Fatalf("FromHost: %v", err)
	}
	if a.Shape().Elements() != 6 {
		t.Errorf("elements: got %d, want 6", a.Shape().Elements())
	}
	host, err := a.HostCopy()
	if err != nil {
		t.Fatalf("HostCopy: %v", err)
	}
	for i := range data {
		if host[i] != data[i] {
			t.Errorf("index %d: got %v, want %v", i, host[i], data[i])
		}
	}
}

func TestFromHostRejectsLengthMismatch(t *testing.T) {
	t.Parallel()
	if _, err := array.FromHost([]float64{1, 2, 3}, []int{2, 2}, dtype.F64); err == nil {
		t.Fatal("expected shape error for mismatched data length, got nil")
	}
}

func TestZerosOnesFull(t *testing.T) {
	t.Parallel()
	z, err := array.Zeros(dtype.F64, 3)
	if err != nil {
		t.Fatalf("zeros: %v", err)
	}
	zh, _ := z.HostCopy()
	for _, v := range zh {
		if v != 0 {
			t.Errorf("zeros: got %v, want 0", v)
		}
	}

	o, err := array.Ones(dtype.F64, 3)
	if err != nil {
		t.Fatalf("ones: %v", err)
	}
	oh, _ := o.HostCopy()
	for _, v := range oh {
		if v != 1 {
			t.Errorf("ones: got %v, want 1", v)
		}
	}

	f, err := array.Full(7, dtype.F64, 4)
	if err != nil {
		t.Fatalf("full: %v", err)
	}
	fh, _ := f.HostCopy()
	for _, v := range fh {
		if v != 7 {
			t.Errorf("full: got %v, want 7", v)
		}
	}
}

func TestEyeDiagonal(t *testing.T) {
	t.Parallel()
	e, err := array.Eye(3, 3, 0, dtype.F64)
	if err != nil {
		t.Fatalf("eye: %v", err)
	}
	host, _ := e.HostCopy()
	// column-major-leading: flat = row + col*nRows.
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			want := 0.0
			if r == c {
				want = 1.0
			}
			if got := host[r+c*3]; got != want {
				t.Errorf("eye[%d][%d]: got %v, want %v", r, c, got, want)
			}
		}
	}
}

func TestArangeAndLinspace(t *testing.T) {
	t.Parallel()
	a, err := array.Arange(0, 5, 1, dtype.F64)
	if err != nil {
		t.Fatalf("arange: %v", err)
	}
	host, _ := a.HostCopy()
	want := []float64{0, 1, 2, 3, 4}
	for i := range want {
		if host[i] != want[i] {
			t.Errorf("arange[%d]: got %v, want %v", i, host[i], want[i])
		}
	}

	l, err := array.Linspace(0, 1, 5, true, 0, dtype.F64)
	if err != nil {
		t.Fatalf("linspace: %v", err)
	}
	lhost, _ := l.HostCopy()
	wantL := []float64{0, 0.25, 0.5, 0.75, 1.0}
	for i := range wantL {
		if math.Abs(lhost[i]-wantL[i]) > 1e-12 {
			t.Errorf("linspace[%d]: got %v, want %v", i, lhost[i], wantL[i])
		}
	}
}

func TestArangeRejectsZeroStep(t *testing.T) {
	t.Parallel()
	if _, err := array.Arange(0, 5, 0, dtype.F64); err == nil {
		t.Fatal("expected error for zero step, got nil")
	}
}

func TestGeomspaceRejectsMixedSign(t *testing.T) {
	t.Parallel()
	if _, err := array.Geomspace(-1, 1, 5, dtype.F64); err == nil {
		t.Fatal("expected error for sign-mismatched bounds, got nil")
	}
}

func TestSumProductMinMax(t *testing.T) {
	t.Parallel()
	a, err := array.FromHost([]float64{1, 2, 3, 4}, []int{4}, dtype.F64)
	if err != nil {
		t.Fatalf("FromHost: %v", err)
	}
	sumHost, err := array.Sum(a, -1).HostCopy()
	if err != nil {
		t.Fatalf("sum eval: %v", err)
	}
	if sumHost[0] != 10 {
		t.Errorf("sum: got %v, want 10", sumHost[0])
	}
	prodHost, _ := array.Product(a, -1).HostCopy()
	if prodHost[0] != 24 {
		t.Errorf("product: got %v, want 24", prodHost[0])
	}
	minHost, _ := array.Min(a, -1).HostCopy()
	if minHost[0] != 1 {
		t.Errorf("min: got %v, want 1", minHost[0])
	}
	maxHost, _ := array.Max(a, -1).HostCopy()
	if maxHost[0] != 4 {
		t.Errorf("max: got %v, want 4", maxHost[0])
	}
}

func TestNanSumSkipsNaN(t *testing.T) {
	t.Parallel()
	a, err := array.FromHost([]float64{1, math.NaN(), 3}, []int{3}, dtype.F64)
	if err != nil {
		t.Fatalf("FromHost: %v", err)
	}
	host, err := array.NanSum(a, -1).HostCopy()
	if err != nil {
		t.Fatalf("nansum eval: %v", err)
	}
	if host[0] != 4 {
		t.Errorf("nansum: got %v, want 4", host[0])
	}
}

func TestArgMinArgMax(t *testing.T) {
	t.Parallel()
	a, err := array.FromHost([]float64{5, 1, 9, 3}, []int{4}, dtype.F64)
	if err != nil {
		t.Fatalf("FromHost: %v", err)
	}
	minIdx, err := array.ArgMin(a)
	if err != nil {
		t.Fatalf("argmin: %v", err)
	}
	if minIdx != 1 {
		t.Errorf("argmin: got %d, want 1", minIdx)
	}
	maxIdx, err := array.ArgMax(a)
	if err != nil {
		t.Fatalf("argmax: %v", err)
	}
	if maxIdx != 2 {
		t.Errorf("argmax: got %d, want 2", maxIdx)
	}
}

func TestScanAddInclusive(t *testing.T) {
	t.Parallel()
	a, err := array.FromHost([]float64{1, 2, 3, 4}, []int{4}, dtype.F64)
	if err != nil {
		t.Fatalf("FromHost: %v", err)
	}
	host, err := array.ScanAdd(a, 0, false).HostCopy()
	if err != nil {
		t.Fatalf("scanAdd eval: %v", err)
	}
	want := []float64{1, 3, 6, 10}
	for i := range want {
		if host[i] != want[i] {
			t.Errorf("scan[%d]: got %v, want %v", i, host[i], want[i])
		}
	}
}

func TestScanByKeyAddRestartsAtBoundaries(t *testing.T) {
	t.Parallel()
	keys, err := array.FromHost([]float64{1, 1, 2, 2, 2}, []int{5}, dtype.F64)
	if err != nil {
		t.Fatalf("FromHost keys: %v", err)
	}
	values, err := array.FromHost([]float64{1, 1, 1, 1, 1}, []int{5}, dtype.F64)
	if err != nil {
		t.Fatalf("FromHost values: %v", err)
	}
	out, err := array.ScanByKeyAdd(keys, values)
	if err != nil {
		t.Fatalf("scanByKeyAdd: %v", err)
	}
	host, err := out.HostCopy()
	if err != nil {
		t.Fatalf("hostcopy: %v", err)
	}
	want := []float64{1, 2, 1, 2, 3}
	for i := range want {
		if host[i] != want[i] {
			t.Errorf("scanByKey[%d]: got %v, want %v", i, host[i], want[i])
		}
	}
}
