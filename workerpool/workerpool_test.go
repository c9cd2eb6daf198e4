package workerpool_test

import (
	"sync/atomic"
	"testing"

	"github.com/tsforge/tsforge/workerpool"
)

func TestParallelForCoversEveryIndex(t *testing.T) {
	t.Parallel()
	p := workerpool.New(4)
	defer p.Close()

	n := 1000
	seen := make([]int32, n)
	p.ParallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	})
	for i, v := range seen {
		if v != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, v)
		}
	}
}

func TestParallelForAtomicCoversEveryIndex(t *testing.T) {
	t.Parallel()
	p := workerpool.New(8)
	defer p.Close()

	n := 2000
	seen := make([]int32, n)
	p.ParallelForAtomic(n, func(i int) {
		atomic.AddInt32(&seen[i], 1)
	})
	for i, v := range seen {
		if v != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, v)
		}
	}
}

func TestForEachTileCoversWholeRange(t *testing.T) {
	t.Parallel()
	p := workerpool.New(4)
	defer p.Close()

	n := 97
	seen := make([]int32, n)
	p.ForEachTile(n, 10, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	})
	for i, v := range seen {
		if v != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, v)
		}
	}
}

func TestClosedPoolRunsInline(t *testing.T) {
	t.Parallel()
	p := workerpool.New(2)
	p.Close()

	n := 50
	seen := make([]int32, n)
	p.ParallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			seen[i]++
		}
	})
	for i, v := range seen {
		if v != 1 {
			t.Fatalf("index %d visited %d times on closed pool, want 1", i, v)
		}
	}
}

func TestGlobalPoolIsSingleton(t *testing.T) {
	t.Parallel()
	a := workerpool.Global()
	b := workerpool.Global()
	if a != b {
		t.Error("Global() should return the same pool instance on repeated calls")
	}
}

func TestZeroLengthIsNoOp(t *testing.T) {
	t.Parallel()
	p := workerpool.New(2)
	defer p.Close()
	called := false
	p.ParallelFor(0, func(start, end int) { called = true })
	p.ParallelForAtomic(0, func(i int) { called = true })
	if called {
		t.Error("fn should not be called for n<=0")
	}
}
