package alloc

import (
	"fmt"
	"sync"
)

// Allocator hands out file space for a writable container. Space is only
// ever appended at the end of file; blocks superseded by a rewrite are
// recorded as retired so the waste can be reported.
type Allocator struct {
	mu sync.Mutex

	eofAddr  uint64
	baseAddr uint64

	allocations []Allocation
	stats       Stats
}

// Allocation is a single block handed out by the allocator.
type Allocation struct {
	Addr uint64
	Size uint64
	Tag  string
}

// Stats summarizes allocator activity.
type Stats struct {
	TotalAllocations uint64 // Number of allocations made
	TotalBytesAlloc  uint64 // Total bytes allocated
	RetiredBytes     uint64 // Bytes in blocks that were superseded
	LargestAlloc     uint64 // Largest single allocation
}

// New creates an allocator whose first block starts at baseAddr.
func New(baseAddr uint64) *Allocator {
	return &Allocator{
		eofAddr:  baseAddr,
		baseAddr: baseAddr,
	}
}

// Alloc reserves size bytes at the end of file and returns their address.
// The tag is kept for diagnostics.
func (a *Allocator) Alloc(size uint64, tag string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	if size == 0 {
		return a.eofAddr
	}

	addr := a.eofAddr
	a.eofAddr += size

	a.allocations = append(a.allocations, Allocation{Addr: addr, Size: size, Tag: tag})
	a.stats.TotalAllocations++
	a.stats.TotalBytesAlloc += size
	if size > a.stats.LargestAlloc {
		a.stats.LargestAlloc = size
	}
	return addr
}

// Retire records that the block at addr is no longer referenced.
// The space is not reused.
func (a *Allocator) Retire(addr, size uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.RetiredBytes += size
}

// EOFAddr returns the current end-of-file address.
func (a *Allocator) EOFAddr() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.eofAddr
}

// Stats returns a copy of the allocation statistics.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Allocations returns a copy of every allocation made.
func (a *Allocator) Allocations() []Allocation {
	a.mu.Lock()
	defer a.mu.Unlock()
	result := make([]Allocation, len(a.allocations))
	copy(result, a.allocations)
	return result
}

// Validate checks that allocations are in bounds and never overlap.
func (a *Allocator) Validate() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var prevEnd uint64 = a.baseAddr
	for _, al := range a.allocations {
		if al.Addr < prevEnd {
			return fmt.Errorf("allocation %q at 0x%x overlaps previous block ending at 0x%x", al.Tag, al.Addr, prevEnd)
		}
		prevEnd = al.Addr + al.Size
	}
	if prevEnd > a.eofAddr {
		return fmt.Errorf("allocations extend to 0x%x past EOF 0x%x", prevEnd, a.eofAddr)
	}
	return nil
}
