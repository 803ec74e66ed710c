package layout

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/h5frame/internal/binary"
	"github.com/robert-malhotra/h5frame/internal/message"
)

// ErrUnsupported is returned for chunked and virtual storage.
var ErrUnsupported = errors.New("unsupported storage layout")

// Layout reads the raw bytes of a dataset.
type Layout interface {
	Read() ([]byte, error)
	Class() message.LayoutClass
}

// New returns the reader for a data layout message.
func New(layout *message.DataLayout, ds *message.Dataspace, dt *message.Datatype, r *binary.Reader) (Layout, error) {
	if layout == nil {
		return nil, fmt.Errorf("nil layout message")
	}
	want := dataSize(ds, dt)

	switch layout.Class {
	case message.LayoutCompact:
		return &Compact{data: layout.CompactData, want: want}, nil
	case message.LayoutContiguous:
		return &Contiguous{address: layout.Address, size: layout.Size, want: want, reader: r}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, layout.Class)
	}
}

func dataSize(ds *message.Dataspace, dt *message.Datatype) uint64 {
	if ds == nil || dt == nil {
		return 0
	}
	return ds.NumElements() * uint64(dt.Size)
}

// Compact data lives inside the object header.
type Compact struct {
	data []byte
	want uint64
}

func (c *Compact) Class() message.LayoutClass { return message.LayoutCompact }

func (c *Compact) Read() ([]byte, error) {
	if uint64(len(c.data)) < c.want {
		return nil, fmt.Errorf("compact data is %d bytes, dataspace needs %d", len(c.data), c.want)
	}
	out := make([]byte, c.want)
	copy(out, c.data)
	return out, nil
}

// Contiguous data occupies one block of the file.
type Contiguous struct {
	address uint64
	size    uint64
	want    uint64
	reader  *binary.Reader
}

func (c *Contiguous) Class() message.LayoutClass { return message.LayoutContiguous }

// Read returns the block. Storage that was never allocated reads as zeros.
func (c *Contiguous) Read() ([]byte, error) {
	if c.reader.IsUndefinedOffset(c.address) {
		return make([]byte, c.want), nil
	}
	n := c.want
	if n == 0 {
		n = c.size
	}
	if c.size != 0 && c.size < n {
		return nil, fmt.Errorf("contiguous block is %d bytes, dataspace needs %d", c.size, n)
	}
	data, err := c.reader.At(int64(c.address)).ReadBytes(int(n))
	if err != nil {
		return nil, fmt.Errorf("reading contiguous data at %d: %w", c.address, err)
	}
	return data, nil
}
