// Package heap reads local heaps.
//
// A local heap (signature "HEAP") holds the NUL-terminated member names of
// a symbol-table group in files written with superblock version 0 or 1.
// Symbol table entries refer to names by their offset into the heap's data
// segment.
//
//	h, err := heap.ReadLocal(r, addr)
//	name, err := h.String(offset)
package heap
