package backend_test

import (
	"testing"

	"github.com/tsforge/tsforge/backend"
	"github.com/tsforge/tsforge/dtype"
)

func TestActiveBackendDefaultsToCPU(t *testing.T) {
	t.Parallel()
	if backend.ActiveBackend() != backend.CPU {
		t.Errorf("default active backend: got %v, want CPU", backend.ActiveBackend())
	}
}

func TestSetActiveBackendRejectsUnavailableKind(t *testing.T) {
	t.Parallel()
	if err := backend.SetActiveBackend(backend.CUDA); err == nil {
		t.Fatal("expected DeviceError selecting CUDA with no enumerated devices, got nil")
	}
}

func TestActiveDeviceInfoReportsCPU(t *testing.T) {
	t.Parallel()
	info := backend.ActiveDeviceInfo()
	if info.Name != "cpu" {
		t.Errorf("device name: got %q, want \"cpu\"", info.Name)
	}
	if !info.SupportsF64 {
		t.Error("cpu backend should always support f64")
	}
}

func TestPromoteF64StaysOnCPU(t *testing.T) {
	t.Parallel()
	if got := backend.Promote(dtype.F64); got != dtype.F64 {
		t.Errorf("Promote(f64) on a CPU backend: got %v, want f64", got)
	}
}

func TestManualEvalRoundTrip(t *testing.T) {
	// Mutates process-wide state; do not run in parallel with other
	// ManualEval-dependent tests.
	orig := backend.ManualEval()
	defer backend.SetManualEval(orig)

	backend.SetManualEval(true)
	if !backend.ManualEval() {
		t.Error("ManualEval() should report true after SetManualEval(true)")
	}
	backend.SetManualEval(false)
	if backend.ManualEval() {
		t.Error("ManualEval() should report false after SetManualEval(false)")
	}
}

func TestDeviceMemoryTracksAllocFree(t *testing.T) {
	t.Parallel()
	alloc := backend.Allocator()
	before := backend.DeviceMemory()
	alloc.Alloc(1024)
	after := backend.DeviceMemory()
	if after.LockedBytes != before.LockedBytes+1024 {
		t.Errorf("locked bytes after alloc: got %d, want %d", after.LockedBytes, before.LockedBytes+1024)
	}
	alloc.Free(1024)
	freed := backend.DeviceMemory()
	if freed.LockedBytes != before.LockedBytes {
		t.Errorf("locked bytes after free: got %d, want %d", freed.LockedBytes, before.LockedBytes)
	}
}

func TestSynchronizeReturnsNil(t *testing.T) {
	t.Parallel()
	if err := backend.Synchronize(); err != nil {
		t.Errorf("Synchronize: got %v, want nil", err)
	}
}

func TestWarningSinkReceivesMessages(t *testing.T) {
	// Mutates the process-wide warning sink; do not run in parallel.
	var got string
	backend.SetWarningSink(func(msg string) { got = msg })
	defer backend.SetWarningSink(nil)

	backend.Warn("test warning")
	if got != "test warning" {
		t.Errorf("warning sink received %q, want %q", got, "test warning")
	}
}
