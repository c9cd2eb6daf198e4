// Package backend implements C1, the Backend/Device Manager: selecting and
// introspecting the execution backend, managing device memory bookkeeping,
// the manual-evaluation flag, and the centralized dtype promotion policy
// spec §9 requires ("every call site that currently downgrades f64->f32
// should delegate to that policy and emit warnings uniformly").
package backend

import (
	"runtime"
	"sync"

	"golang.org/x/sys/cpu"

	"github.com/tsforge/tsforge/dtype"
	"github.com/tsforge/tsforge/errs"
	"github.com/tsforge/tsforge/workerpool"
)

// Kind identifies an execution backend family.
type Kind int

const (
	CPU Kind = iota
	CUDA
	OpenCL
)

func (k Kind) String() string {
	switch k {
	case CPU:
		return "cpu"
	case CUDA:
		return "cuda"
	case OpenCL:
		return "opencl"
	default:
		return "unknown"
	}
}

// DeviceInfo describes one enumerated device on a backend.
type DeviceInfo struct {
	ID                int
	Name              string
	Platform          string
	ComputeCapability string
	SupportsF64       bool
	SupportsF16       bool
}

// MemoryInfo reports device allocator statistics (spec §4.1).
type MemoryInfo struct {
	Bytes        int64
	BufferCount  int
	LockedBytes  int64
	LockedBufs   int
}

// Manager is the process-wide device/backend state of spec §5 ("The active
// device is a process-wide piece of state with init/teardown"). Use the
// package-level functions below; Manager itself is exported only so callers
// can construct an isolated instance for tests.
type Manager struct {
	mu         sync.Mutex
	active     Kind
	devices    map[Kind][]DeviceInfo
	activeDev  map[Kind]int
	manualEval bool
	warn       func(string)
	alloc      *allocator
	pool       *workerpool.Pool
}

func newManager() *Manager {
	m := &Manager{
		active:    CPU,
		devices:   map[Kind][]DeviceInfo{},
		activeDev: map[Kind]int{},
		warn:      func(string) {},
		alloc:     newAllocator(),
		pool:      workerpool.Global(),
	}
	m.devices[CPU] = []DeviceInfo{detectCPUDevice()}
	m.activeDev[CPU] = 0
	return m
}

func detectCPUDevice() DeviceInfo {
	// f16 at native speed is never available on a plain CPU backend (it is
	// always software-emulated, see dtype.RoundF16); f64 is always
	// available on a CPU backend. SupportsF16 tracks whether the CPU
	// exposes a real half-precision-accelerating instruction set, mirroring
	// the teacher's x/sys/cpu feature reads in hwy/dispatch_amd64.go, even
	// though tsforge's CPU kernels always take the software path.
	supportsF16 := cpu.X86.HasAVX512F || cpu.ARM64.HasFPHP
	return DeviceInfo{
		ID:                0,
		Name:              "cpu",
		Platform:          "host",
		ComputeCapability: runtime.GOARCH,
		SupportsF64:       true,
		SupportsF16:       supportsF16,
	}
}

var (
	defaultOnce sync.Once
	def         *Manager
)

func defaultManager() *Manager {
	defaultOnce.Do(func() { def = newManager() })
	return def
}

// AvailableBackends lists the backend kinds with at least one enumerated
// device.
func AvailableBackends() []Kind {
	m := defaultManager()
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Kind, 0, len(m.devices))
	for k, devs := range m.devices {
		if len(devs) > 0 {
			out = append(out, k)
		}
	}
	return out
}

// ActiveBackend returns the currently selected backend kind.
func ActiveBackend() Kind {
	m := defaultManager()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// SetActiveBackend switches the active backend. Fails with DeviceError if
// the kind has no enumerated devices (CUDA/OpenCL ship no driver binding in
// this implementation; see SPEC_FULL.md DOMAIN STACK).
func SetActiveBackend(k Kind) error {
	m := defaultManager()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.devices[k]) == 0 {
		return errs.Devicef("backend %s has no available devices", k)
	}
	m.active = k
	return nil
}

// Devices lists the devices enumerated for the active backend.
func Devices() []DeviceInfo {
	m := defaultManager()
	m.mu.Lock()
	defer m.mu.Unlock()
	devs := m.devices[m.active]
	out := make([]DeviceInfo, len(devs))
	copy(out, devs)
	return out
}

// ActiveDevice returns the ID of the active device on the active backend.
func ActiveDevice() int {
	m := defaultManager()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeDev[m.active]
}

// SetActiveDevice selects a device by ID on the active backend.
func SetActiveDevice(id int) error {
	m := defaultManager()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.devices[m.active] {
		if d.ID == id {
			m.activeDev[m.active] = id
			return nil
		}
	}
	return errs.Devicef("no device with id %d on backend %s", id, m.active)
}

// ActiveDeviceInfo returns the DeviceInfo for the active device.
func ActiveDeviceInfo() DeviceInfo {
	m := defaultManager()
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.activeDev[m.active]
	for _, d := range m.devices[m.active] {
		if d.ID == id {
			return d
		}
	}
	return DeviceInfo{}
}

// DeviceMemory reports the allocator statistics for the active device.
func DeviceMemory() MemoryInfo {
	return defaultManager().alloc.stats()
}

// GC drops cached free blocks from the allocator (spec §4.1).
func GC() {
	defaultManager().alloc.gc()
}

// Synchronize blocks until all pending work on the active device (or the
// named devices) has completed. tsforge has no async device queue of its
// own (every array kernel runs synchronously on the worker pool), so no
// work is pending when it is called; it keeps the "backend synchronization
// primitive" suspension point from spec §5 as a call site.
func Synchronize(_ ...int) error {
	// Every ParallelFor call waits for its own chunks before returning, so
	// nothing queued by an earlier call is still running here; a one-element
	// ParallelFor runs its body inline on the calling goroutine.
	defaultManager().pool.ParallelFor(1, func(int, int) {})
	return nil
}

// SetManualEval sets the manual-evaluation flag (spec §4.1): when false,
// array operations enqueue lazily; when true, every operation forces
// immediate execution.
func SetManualEval(v bool) {
	m := defaultManager()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manualEval = v
}

// ManualEval reports the current manual-evaluation flag.
func ManualEval() bool {
	m := defaultManager()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.manualEval
}

// SetWarningSink installs the pluggable warning sink (spec §7). Passing nil
// installs a no-op sink.
func SetWarningSink(fn func(string)) {
	m := defaultManager()
	m.mu.Lock()
	defer m.mu.Unlock()
	if fn == nil {
		fn = func(string) {}
	}
	m.warn = fn
}

// Warn reports msg through the installed warning sink.
func Warn(msg string) {
	m := defaultManager()
	m.mu.Lock()
	sink := m.warn
	m.mu.Unlock()
	sink(msg)
}

// Pool returns the worker pool array kernels should dispatch through.
func Pool() *workerpool.Pool {
	return defaultManager().pool
}

// Promote applies the centralized dtype promotion policy of spec §4.1: if
// the active device lacks f64, f64 downgrades to f32 (and c64 to c32); if
// it lacks f16, f16 downgrades to f32. A warning is emitted on every actual
// downgrade.
func Promote(dt dtype.DType) dtype.DType {
	info := ActiveDeviceInfo()
	switch dt {
	case dtype.F64:
		if !info.SupportsF64 {
			Warn("dtype f64 not supported on device " + info.Name + "; substituting f32")
			return dtype.F32
		}
	case dtype.C64:
		if !info.SupportsF64 {
			Warn("dtype c64 not supported on device " + info.Name + "; substituting c32")
			return dtype.C32
		}
	case dtype.F16:
		if !info.SupportsF16 {
			Warn("dtype f16 not supported on device " + info.Name + "; substituting f32")
			return dtype.F32
		}
	}
	return dt
}
