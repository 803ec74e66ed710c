package message

import (
	"fmt"

	binpkg "github.com/robert-malhotra/h5frame/internal/binary"
)

// SymbolTable points a legacy group at the v1 B-tree and local heap that
// hold its members (type 0x0011).
type SymbolTable struct {
	BTreeAddress     uint64
	LocalHeapAddress uint64
}

func (m *SymbolTable) Type() Type { return TypeSymbolTable }

func parseSymbolTable(data []byte, r *binpkg.Reader) (*SymbolTable, error) {
	osize := r.OffsetSize()
	if len(data) < 2*osize {
		return nil, fmt.Errorf("symbol table message too short")
	}
	return &SymbolTable{
		BTreeAddress:     binpkg.DecodeUint(r.ByteOrder(), data, osize),
		LocalHeapAddress: binpkg.DecodeUint(r.ByteOrder(), data[osize:], osize),
	}, nil
}
