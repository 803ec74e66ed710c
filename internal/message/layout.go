package message

import (
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/h5frame/internal/binary"
)

// LayoutClass is the storage layout of raw data.
type LayoutClass uint8

const (
	LayoutCompact    LayoutClass = 0 // Data stored in the object header
	LayoutContiguous LayoutClass = 1 // Data in a single block
	LayoutChunked    LayoutClass = 2 // Data in indexed chunks
	LayoutVirtual    LayoutClass = 3
)

func (c LayoutClass) String() string {
	switch c {
	case LayoutCompact:
		return "compact"
	case LayoutContiguous:
		return "contiguous"
	case LayoutChunked:
		return "chunked"
	case LayoutVirtual:
		return "virtual"
	}
	return fmt.Sprintf("layout(%d)", uint8(c))
}

// DataLayout is a data layout message (type 0x0008).
type DataLayout struct {
	Version uint8
	Class   LayoutClass

	// Compact
	CompactData []byte

	// Contiguous
	Address uint64
	Size    uint64
}

func (m *DataLayout) Type() Type { return TypeDataLayout }

func (m *DataLayout) IsCompact() bool    { return m.Class == LayoutCompact }
func (m *DataLayout) IsContiguous() bool { return m.Class == LayoutContiguous }

// NewCompactLayout stores data inside the object header.
func NewCompactLayout(data []byte) *DataLayout {
	return &DataLayout{Version: 3, Class: LayoutCompact, CompactData: data}
}

// NewContiguousLayout points at a single block of size bytes at addr.
func NewContiguousLayout(addr, size uint64) *DataLayout {
	return &DataLayout{Version: 3, Class: LayoutContiguous, Address: addr, Size: size}
}

// Encode serializes the layout as a version 3 message. Only compact and
// contiguous layouts are written.
func (m *DataLayout) Encode(cfg binpkg.Config) []byte {
	return encode(cfg, func(w *binpkg.Writer) {
		w.WriteUint8(3)
		w.WriteUint8(uint8(m.Class))
		switch m.Class {
		case LayoutCompact:
			w.WriteUint16(uint16(len(m.CompactData)))
			w.WriteBytes(m.CompactData)
		case LayoutContiguous:
			w.WriteOffset(m.Address)
			w.WriteLength(m.Size)
		}
	})
}

func parseDataLayout(data []byte, r *binpkg.Reader) (*DataLayout, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("data layout message too short")
	}

	layout := &DataLayout{Version: data[0]}
	if layout.Version == 3 || layout.Version == 4 {
		return parseDataLayoutV3(data, r, layout)
	}
	if layout.Version != 1 && layout.Version != 2 {
		return nil, fmt.Errorf("unsupported data layout version: %d", layout.Version)
	}

	// Version 1 pads the fixed part with 5 reserved bytes.
	ndims := int(data[1])
	offset := 3
	if layout.Version == 1 {
		offset = 8
	}
	if len(data) < offset {
		return nil, fmt.Errorf("data layout v%d message too short", layout.Version)
	}
	layout.Class = LayoutClass(data[2])
	osize := r.OffsetSize()

	switch layout.Class {
	case LayoutContiguous:
		if offset+osize > len(data) {
			return nil, fmt.Errorf("contiguous layout truncated")
		}
		layout.Address = binpkg.DecodeUint(r.ByteOrder(), data[offset:], osize)
		offset += osize
		// The last dimension is the element size, so the product is bytes.
		size := uint64(1)
		for i := 0; i < ndims && offset+4 <= len(data); i++ {
			size *= uint64(binary.LittleEndian.Uint32(data[offset:]))
			offset += 4
		}
		layout.Size = size
	case LayoutCompact:
		offset += ndims * 4
		if offset+4 > len(data) {
			return nil, fmt.Errorf("compact layout truncated")
		}
		size := int(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
		if offset+size > len(data) {
			return nil, fmt.Errorf("compact data truncated")
		}
		layout.CompactData = make([]byte, size)
		copy(layout.CompactData, data[offset:offset+size])
	}
	return layout, nil
}

func parseDataLayoutV3(data []byte, r *binpkg.Reader, layout *DataLayout) (*DataLayout, error) {
	layout.Class = LayoutClass(data[1])
	offset := 2

	switch layout.Class {
	case LayoutCompact:
		if offset+2 > len(data) {
			return nil, fmt.Errorf("compact layout truncated")
		}
		size := int(binary.LittleEndian.Uint16(data[offset:]))
		offset += 2
		if offset+size > len(data) {
			return nil, fmt.Errorf("compact data truncated")
		}
		layout.CompactData = make([]byte, size)
		copy(layout.CompactData, data[offset:offset+size])

	case LayoutContiguous:
		osize, lsize := r.OffsetSize(), r.LengthSize()
		if offset+osize+lsize > len(data) {
			return nil, fmt.Errorf("contiguous layout truncated")
		}
		layout.Address = binpkg.DecodeUint(r.ByteOrder(), data[offset:], osize)
		layout.Size = binpkg.DecodeUint(r.ByteOrder(), data[offset+osize:], lsize)
	}

	return layout, nil
}
