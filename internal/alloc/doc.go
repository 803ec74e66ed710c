// Package alloc manages file space for container writes.
//
// Object headers and raw data blocks must be placed at fixed file offsets.
// The [Allocator] is append-only: each block is placed at the current end of
// file, which then advances. Group headers are rewritten rather than grown in
// place, so the block they replace is retired and shows up in [Stats] as
// unreclaimed space.
//
//	a := alloc.New(48)              // first byte after the superblock
//	addr := a.Alloc(1024, "data")   // reserve 1 KiB
//	a.Retire(oldAddr, oldSize)      // old group header superseded
package alloc
