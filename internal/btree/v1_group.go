package btree

import (
	"fmt"

	"github.com/robert-malhotra/h5frame/internal/binary"
	"github.com/robert-malhotra/h5frame/internal/heap"
)

// maxDepth bounds recursion through corrupt or cyclic trees.
const maxDepth = 32

// Entry is one member of a legacy group.
type Entry struct {
	Name    string
	Address uint64
	Soft    bool
}

// Symbol table entry cache types
const (
	cacheNone     uint32 = 0
	cacheHardLink uint32 = 1
	cacheSoftLink uint32 = 2
)

// ReadGroupEntries returns every member reachable from the B-tree root at
// addr, in key order.
func ReadGroupEntries(r *binary.Reader, addr uint64, names *heap.Local) ([]Entry, error) {
	return readNode(r, addr, names, 0)
}

/*
Group B-tree node:

	0  4  Signature "TREE"
	4  1  Node type (0 = group)
	5  1  Node level (0 = leaf)
	6  2  Entries used
	8  O  Left sibling
	*  O  Right sibling
	*     Keys (L) and children (O), interleaved; key count is entries+1
*/
func readNode(r *binary.Reader, addr uint64, names *heap.Local, depth int) ([]Entry, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("group B-tree deeper than %d levels", maxDepth)
	}
	nr := r.At(int64(addr))

	sig, err := nr.ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("reading B-tree node at %d: %w", addr, err)
	}
	if string(sig) != "TREE" {
		return nil, fmt.Errorf("invalid B-tree signature %q at %d", sig, addr)
	}
	nodeType, err := nr.ReadUint8()
	if err != nil {
		return nil, err
	}
	if nodeType != 0 {
		return nil, fmt.Errorf("B-tree node at %d has type %d, want group", addr, nodeType)
	}
	level, err := nr.ReadUint8()
	if err != nil {
		return nil, err
	}
	used, err := nr.ReadUint16()
	if err != nil {
		return nil, err
	}
	nr.Skip(int64(2 * nr.OffsetSize()))

	var entries []Entry
	for i := uint16(0); i < used; i++ {
		nr.Skip(int64(nr.LengthSize())) // key
		child, err := nr.ReadOffset()
		if err != nil {
			return nil, err
		}

		var got []Entry
		if level == 0 {
			got, err = readSymbolNode(r, child, names)
		} else {
			got, err = readNode(r, child, names, depth+1)
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, got...)
	}
	return entries, nil
}

/*
Symbol table node:

	0  4  Signature "SNOD"
	4  1  Version (1)
	5  1  Reserved
	6  2  Number of symbols
	8  *  Entries: name offset (O), header address (O), cache type (4),
	      reserved (4), scratch pad (16)
*/
func readSymbolNode(r *binary.Reader, addr uint64, names *heap.Local) ([]Entry, error) {
	nr := r.At(int64(addr))

	sig, err := nr.ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("reading symbol table node at %d: %w", addr, err)
	}
	if string(sig) != "SNOD" {
		return nil, fmt.Errorf("invalid symbol table node signature %q at %d", sig, addr)
	}
	version, err := nr.ReadUint8()
	if err != nil {
		return nil, err
	}
	if version != 1 {
		return nil, fmt.Errorf("unsupported symbol table node version: %d", version)
	}
	nr.Skip(1)
	count, err := nr.ReadUint16()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, count)
	for i := uint16(0); i < count; i++ {
		nameOff, err := nr.ReadOffset()
		if err != nil {
			return nil, err
		}
		objAddr, err := nr.ReadOffset()
		if err != nil {
			return nil, err
		}
		cache, err := nr.ReadUint32()
		if err != nil {
			return nil, err
		}
		nr.Skip(4 + 16)

		name, err := names.String(nameOff)
		if err != nil {
			return nil, fmt.Errorf("symbol %d: %w", i, err)
		}
		if name == "" {
			continue
		}
		entries = append(entries, Entry{Name: name, Address: objAddr, Soft: cache == cacheSoftLink})
	}
	return entries, nil
}
