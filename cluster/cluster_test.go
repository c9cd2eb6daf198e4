package cluster_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/tsforge/tsforge/cluster"
)

func TestKMeansSeparatesObviousClusters(t *testing.T) {
	t.Parallel()
	series := [][]float64{
		{0, 0, 0}, {0.1, 0, 0.1}, {0, 0.1, 0},
		{10, 10, 10}, {10.1, 10, 9.9}, {9.9, 10.1, 10},
	}
	rng := rand.New(rand.NewPCG(1, 1))
	res, err := cluster.KMeans(series, 2, 1e-9, 50, nil, rng)
	if err != nil {
		t.Fatalf("kMeans: %v", err)
	}
	if res.Labels[0] != res.Labels[1] || res.Labels[1] != res.Labels[2] {
		t.Errorf("first three series should share a cluster, got labels %v", res.Labels[:3])
	}
	if res.Labels[3] != res.Labels[4] || res.Labels[4] != res.Labels[5] {
		t.Errorf("last three series should share a cluster, got labels %v", res.Labels[3:])
	}
	if res.Labels[0] == res.Labels[3] {
		t.Errorf("the two groups should land in different clusters, got labels %v", res.Labels)
	}
}

func TestKMeansRejectsTooManyClusters(t *testing.T) {
	t.Parallel()
	series := [][]float64{{1, 2}, {3, 4}}
	if _, err := cluster.KMeans(series, 5, 1e-9, 10, nil, nil); err == nil {
		t.Fatal("expected error when k exceeds series count, got nil")
	}
}

func TestKShapeCalibrateGroupsShiftedSinusoids(t *testing.T) {
	t.Parallel()
	n := 32
	a := make([]float64, n)
	b := make([]float64, n)
	c := make([]float64, n)
	for i := 0; i < n; i++ {
		a[i] = math.Sin(2 * math.Pi * float64(i) / float64(n))
		b[i] = math.Sin(2*math.Pi*float64(i)/float64(n) + 0.1) // near-identical shape, small phase shift
		c[i] = math.Sin(4 * math.Pi * float64(i) / float64(n)) // distinct shape, double frequency
	}
	series := [][]float64{a, b, c}
	rng := rand.New(rand.NewPCG(3, 3))
	res, err := cluster.KShapeCalibrate(series, 2, 20, rng)
	if err != nil {
		t.Fatalf("kShapeCalibrate: %v", err)
	}
	if len(res.Labels) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(res.Labels))
	}
	if res.Labels[0] != res.Labels[1] {
		t.Errorf("expected the two similar sinusoids to share a cluster, got labels %v", res.Labels)
	}
}

func TestKShapeClassifyNearestCentroid(t *testing.T) {
	t.Parallel()
	centroids := [][]float64{
		{1, 2, 3, 4},
		{4, 3, 2, 1},
	}
	queries := [][]float64{
		{1, 2, 3, 4},
		{4, 3, 2, 1},
	}
	labels := cluster.KShapeClassify(queries, centroids)
	if labels[0] != 0 {
		t.Errorf("query 0: got cluster %d, want 0", labels[0])
	}
	if labels[1] != 1 {
		t.Errorf("query 1: got cluster %d, want 1", labels[1])
	}
}
