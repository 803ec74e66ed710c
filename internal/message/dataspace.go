package message

import (
	"fmt"

	binpkg "github.com/robert-malhotra/h5frame/internal/binary"
)

// DataspaceType is the kind of dataspace.
type DataspaceType uint8

const (
	DataspaceScalar DataspaceType = 0 // Single element
	DataspaceSimple DataspaceType = 1 // Regular N-dimensional array
	DataspaceNull   DataspaceType = 2 // No data
)

// Dataspace describes the shape of a dataset or attribute (type 0x0001).
type Dataspace struct {
	Version    uint8
	Rank       int
	SpaceType  DataspaceType
	Dimensions []uint64
	MaxDims    []uint64 // nil if not present
}

func (m *Dataspace) Type() Type { return TypeDataspace }

// NewDataspace returns a simple dataspace with the given dimensions.
// A zero-length dimension is allowed.
func NewDataspace(dims ...uint64) *Dataspace {
	d := make([]uint64, len(dims))
	copy(d, dims)
	return &Dataspace{Version: 2, Rank: len(d), SpaceType: DataspaceSimple, Dimensions: d}
}

// NewScalarDataspace returns a single-element dataspace.
func NewScalarDataspace() *Dataspace {
	return &Dataspace{Version: 2, SpaceType: DataspaceScalar}
}

// NumElements returns the total number of elements in the dataspace.
func (m *Dataspace) NumElements() uint64 {
	switch m.SpaceType {
	case DataspaceScalar:
		return 1
	case DataspaceSimple:
		if len(m.Dimensions) == 0 {
			return 0
		}
		n := uint64(1)
		for _, d := range m.Dimensions {
			n *= d
		}
		return n
	default:
		return 0
	}
}

// IsScalar reports whether this is a scalar dataspace.
func (m *Dataspace) IsScalar() bool {
	return m.SpaceType == DataspaceScalar
}

// IsNull reports whether this is a null dataspace.
func (m *Dataspace) IsNull() bool {
	return m.SpaceType == DataspaceNull
}

// Encode serializes the dataspace as a version 2 message.
func (m *Dataspace) Encode(cfg binpkg.Config) []byte {
	return encode(cfg, func(w *binpkg.Writer) {
		var flags uint8
		if m.MaxDims != nil {
			flags |= 0x01
		}
		w.WriteUint8(2)
		w.WriteUint8(uint8(len(m.Dimensions)))
		w.WriteUint8(flags)
		w.WriteUint8(uint8(m.SpaceType))
		for _, d := range m.Dimensions {
			w.WriteLength(d)
		}
		for _, d := range m.MaxDims {
			w.WriteLength(d)
		}
	})
}

func parseDataspace(data []byte, r *binpkg.Reader) (*Dataspace, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("dataspace message too short")
	}

	ds := &Dataspace{
		Version: data[0],
		Rank:    int(data[1]),
	}
	hasMaxDims := data[2]&0x01 != 0

	offset := 4
	switch {
	case ds.Version >= 2:
		ds.SpaceType = DataspaceType(data[3])
	case ds.Rank == 0:
		ds.SpaceType = DataspaceScalar
	default:
		ds.SpaceType = DataspaceSimple
		offset = 8 // version 1 has 4 reserved bytes
	}

	if ds.SpaceType != DataspaceSimple || ds.Rank == 0 {
		return ds, nil
	}

	lsize := r.LengthSize()
	readDims := func(what string) ([]uint64, error) {
		dims := make([]uint64, ds.Rank)
		for i := range dims {
			if offset+lsize > len(data) {
				return nil, fmt.Errorf("dataspace message truncated reading %s", what)
			}
			dims[i] = binpkg.DecodeUint(r.ByteOrder(), data[offset:], lsize)
			offset += lsize
		}
		return dims, nil
	}

	var err error
	if ds.Dimensions, err = readDims("dimensions"); err != nil {
		return nil, err
	}
	if hasMaxDims {
		if ds.MaxDims, err = readDims("max dimensions"); err != nil {
			return nil, err
		}
	}
	return ds, nil
}
