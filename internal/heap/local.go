package heap

import (
	"fmt"

	"github.com/robert-malhotra/h5frame/internal/binary"
)

var signature = []byte{'H', 'E', 'A', 'P'}

// Local is a parsed local heap.
type Local struct {
	DataSize    uint64
	FreeOffset  uint64
	DataAddress uint64
	data        []byte
}

/*
ReadLocal reads the local heap at address.

	0  4  Signature "HEAP"
	4  1  Version (0)
	5  3  Reserved
	8  L  Data segment size
	*  L  Offset to head of free list
	*  O  Data segment address
*/
func ReadLocal(r *binary.Reader, address uint64) (*Local, error) {
	hr := r.At(int64(address))

	sig, err := hr.ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("reading local heap signature: %w", err)
	}
	if string(sig) != string(signature) {
		return nil, fmt.Errorf("invalid local heap signature %q at %d", sig, address)
	}
	version, err := hr.ReadUint8()
	if err != nil {
		return nil, err
	}
	if version != 0 {
		return nil, fmt.Errorf("unsupported local heap version: %d", version)
	}
	hr.Skip(3)

	h := &Local{}
	if h.DataSize, err = hr.ReadLength(); err != nil {
		return nil, err
	}
	if h.FreeOffset, err = hr.ReadLength(); err != nil {
		return nil, err
	}
	if h.DataAddress, err = hr.ReadOffset(); err != nil {
		return nil, err
	}
	if h.data, err = r.At(int64(h.DataAddress)).ReadBytes(int(h.DataSize)); err != nil {
		return nil, fmt.Errorf("reading local heap data: %w", err)
	}
	return h, nil
}

// String returns the NUL-terminated string starting at offset.
func (h *Local) String(offset uint64) (string, error) {
	if offset >= uint64(len(h.data)) {
		return "", fmt.Errorf("local heap offset %d out of range (size %d)", offset, len(h.data))
	}
	end := offset
	for end < uint64(len(h.data)) && h.data[end] != 0 {
		end++
	}
	return string(h.data[offset:end]), nil
}
