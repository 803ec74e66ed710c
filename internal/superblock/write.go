package superblock

import (
	binpkg "github.com/robert-malhotra/h5frame/internal/binary"
)

// Write writes a v2/v3 superblock at the writer position and returns the
// number of bytes written.
func (sb *Superblock) Write(w *binpkg.Writer) (int64, error) {
	start := w.Pos()

	buf := binpkg.NewBuffer(sb.Size())
	bw := binpkg.NewWriter(buf, w.Config())

	version := sb.Version
	if version < 2 {
		version = 2
	}
	extAddr := sb.SuperblockExtensionAddress
	if extAddr == 0 {
		extAddr = bw.UndefinedOffset()
	}

	steps := []func() error{
		func() error { return bw.WriteBytes(Signature) },
		func() error { return bw.WriteUint8(version) },
		func() error { return bw.WriteUint8(sb.OffsetSize) },
		func() error { return bw.WriteUint8(sb.LengthSize) },
		func() error { return bw.WriteUint8(sb.FileConsistencyFlags) },
		func() error { return bw.WriteOffset(sb.BaseAddress) },
		func() error { return bw.WriteOffset(extAddr) },
		func() error { return bw.WriteOffset(sb.EOFAddress) },
		func() error { return bw.WriteOffset(sb.RootGroupAddress) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return 0, err
		}
	}
	if err := bw.WriteUint32(binpkg.Lookup3Checksum(buf.Bytes())); err != nil {
		return 0, err
	}

	if err := w.WriteBytes(buf.Bytes()); err != nil {
		return 0, err
	}
	return w.Pos() - start, nil
}

// Size returns the encoded size of a v2/v3 superblock.
func (sb *Superblock) Size() int {
	offsetSize := int(sb.OffsetSize)
	if offsetSize == 0 {
		offsetSize = 8
	}
	return 12 + 4*offsetSize + 4
}

// NewSuperblock returns a version 3 superblock with 8-byte offsets and lengths.
func NewSuperblock() *Superblock {
	return &Superblock{
		Version:    3,
		OffsetSize: 8,
		LengthSize: 8,
	}
}
