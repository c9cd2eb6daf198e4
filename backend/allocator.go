package backend

import "sync"

// allocator is a process-wide shared cache of freed device buffers (spec
// §3: "a background device allocator may cache freed blocks"; §5: "the
// device allocator is a process-wide shared cache; access is serialized
// inside the backend"). It tracks byte/buffer counts only — the actual
// backing storage lives in package array's handle, which reports back here
// on alloc/free so DeviceMemory() has real numbers to show.
type allocator struct {
	mu          sync.Mutex
	liveBytes   int64
	liveBufs    int
	cachedBytes int64
	cachedBufs  int
}

func newAllocator() *allocator { return &allocator{} }

// Alloc records a new live allocation of n bytes.
func (a *allocator) Alloc(n int64) {
	a.mu.Lock()
	a.liveBytes += n
	a.liveBufs++
	a.mu.Unlock()
}

// Free moves a live allocation of n bytes into the freed-block cache rather
// than returning it to the OS immediately, modeling the caching allocator
// of spec §3.
func (a *allocator) Free(n int64) {
	a.mu.Lock()
	a.liveBytes -= n
	a.liveBufs--
	a.cachedBytes += n
	a.cachedBufs++
	a.mu.Unlock()
}

// gc drops every cached free block.
func (a *allocator) gc() {
	a.mu.Lock()
	a.cachedBytes = 0
	a.cachedBufs = 0
	a.mu.Unlock()
}

func (a *allocator) stats() MemoryInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	return MemoryInfo{
		Bytes:       a.liveBytes + a.cachedBytes,
		BufferCount: a.liveBufs + a.cachedBufs,
		LockedBytes: a.liveBytes,
		LockedBufs:  a.liveBufs,
	}
}

// Allocator exposes the default manager's allocator for package array to
// report allocation traffic into, keeping DeviceMemory() accurate without
// making allocator internals part of the public API surface.
func Allocator() interface {
	Alloc(int64)
	Free(int64)
} {
	return defaultManager().alloc
}
