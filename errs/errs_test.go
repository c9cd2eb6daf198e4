package errs_test

import (
	"errors"
	"testing"

	"github.com/tsforge/tsforge/errs"
)

func TestShapefWrapsErrShape(t *testing.T) {
	t.Parallel()
	err := errs.Shapef("mismatch: %d vs %d", 3, 4)
	if !errors.Is(err, errs.ErrShape) {
		t.Errorf("Shapef result should unwrap to ErrShape, got %v", err)
	}
}

func TestTypefWrapsErrType(t *testing.T) {
	t.Parallel()
	err := errs.Typef("unsupported dtype %s", "f16")
	if !errors.Is(err, errs.ErrType) {
		t.Errorf("Typef result should unwrap to ErrType, got %v", err)
	}
}

func TestIndexfWrapsErrIndex(t *testing.T) {
	t.Parallel()
	err := errs.Indexf("index %d out of bounds", 5)
	if !errors.Is(err, errs.ErrIndex) {
		t.Errorf("Indexf result should unwrap to ErrIndex, got %v", err)
	}
}

func TestArgfWrapsErrArg(t *testing.T) {
	t.Parallel()
	err := errs.Argf("n must be positive, got %d", -1)
	if !errors.Is(err, errs.ErrArg) {
		t.Errorf("Argf result should unwrap to ErrArg, got %v", err)
	}
}

func TestDevicefWrapsErrDevice(t *testing.T) {
	t.Parallel()
	err := errs.Devicef("allocator exhausted")
	if !errors.Is(err, errs.ErrDevice) {
		t.Errorf("Devicef result should unwrap to ErrDevice, got %v", err)
	}
}

func TestFftfWrapsErrFft(t *testing.T) {
	t.Parallel()
	err := errs.Fftf("plan creation failed")
	if !errors.Is(err, errs.ErrFft) {
		t.Errorf("Fftf result should unwrap to ErrFft, got %v", err)
	}
}

func TestCholeskyErrorCarriesRankAndUnwraps(t *testing.T) {
	t.Parallel()
	err := errs.NewCholeskyError(2)
	if !errors.Is(err, errs.ErrCholesky) {
		t.Errorf("CholeskyError should unwrap to ErrCholesky, got %v", err)
	}
	var ce *errs.CholeskyError
	if !errors.As(err, &ce) {
		t.Fatalf("expected errors.As to find a *CholeskyError, got %v", err)
	}
	if ce.Rank != 2 {
		t.Errorf("CholeskyError.Rank: got %d, want 2", ce.Rank)
	}
}

func TestDistinctSentinelsDoNotCrossMatch(t *testing.T) {
	t.Parallel()
	err := errs.Shapef("bad shape")
	if errors.Is(err, errs.ErrType) {
		t.Error("a Shapef error should not match ErrType")
	}
}
