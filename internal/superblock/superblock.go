package superblock

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	binpkg "github.com/robert-malhotra/h5frame/internal/binary"
)

// Signature is the 8-byte container signature: 0x89 H D F \r \n 0x1a \n
var Signature = []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}

// Possible superblock locations (searched in order)
var superblockOffsets = []int64{0, 512, 1024, 2048}

var (
	ErrNotHDF5            = errors.New("not an HDF5 file: signature not found")
	ErrUnsupportedVersion = errors.New("unsupported superblock version")
	ErrInvalidSuperblock  = errors.New("invalid superblock structure")
	ErrChecksumMismatch   = errors.New("superblock checksum mismatch")
)

// Superblock contains the file-level metadata.
type Superblock struct {
	Version              uint8
	OffsetSize           uint8
	LengthSize           uint8
	FileConsistencyFlags uint8

	BaseAddress                uint64
	SuperblockExtensionAddress uint64
	EOFAddress                 uint64
	RootGroupAddress           uint64

	// Set for v0/v1 files, where the root group is a symbol-table group.
	RootGroupBTreeAddress     uint64
	RootGroupLocalHeapAddress uint64

	ByteOrder  binary.ByteOrder
	FileOffset int64
}

// Legacy reports whether the superblock predates version 2. Legacy files
// are readable but never appended to.
func (sb *Superblock) Legacy() bool {
	return sb.Version < 2
}

// Read locates and parses the superblock.
func Read(r io.ReaderAt) (*Superblock, error) {
	sigBuf := make([]byte, 9)

	for _, offset := range superblockOffsets {
		if _, err := r.ReadAt(sigBuf, offset); err != nil {
			if errors.Is(err, io.EOF) {
				continue
			}
			return nil, err
		}
		if !bytes.Equal(sigBuf[:8], Signature) {
			continue
		}

		var sb *Superblock
		var err error
		switch version := sigBuf[8]; version {
		case 0, 1:
			sb, err = readV0V1(r, offset, version)
		case 2, 3:
			sb, err = readV2V3(r, offset)
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
		}
		if err != nil {
			return nil, err
		}
		sb.FileOffset = offset
		sb.ByteOrder = binary.LittleEndian
		return sb, nil
	}

	return nil, ErrNotHDF5
}

// ReaderConfig returns the binary configuration described by this superblock.
func (sb *Superblock) ReaderConfig() binpkg.Config {
	return binpkg.Config{
		ByteOrder:  binary.LittleEndian,
		OffsetSize: int(sb.OffsetSize),
		LengthSize: int(sb.LengthSize),
	}
}

/*
Version 2/3 layout (O = size of offsets):

	0      8  Signature
	8      1  Version
	9      1  Size of offsets
	10     1  Size of lengths
	11     1  File consistency flags
	12     O  Base address
	12+O   O  Superblock extension address
	12+2O  O  EOF address
	12+3O  O  Root group object header address
	12+4O  4  Checksum (lookup3)
*/
func readV2V3(r io.ReaderAt, offset int64) (*Superblock, error) {
	head := make([]byte, 12)
	if _, err := r.ReadAt(head, offset); err != nil {
		return nil, err
	}
	sb := &Superblock{
		Version:              head[8],
		OffsetSize:           head[9],
		LengthSize:           head[10],
		FileConsistencyFlags: head[11],
	}
	cfg := sb.ReaderConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSuperblock, err)
	}

	osize := int(sb.OffsetSize)
	body := make([]byte, 12+4*osize+4)
	if _, err := r.ReadAt(body, offset); err != nil {
		return nil, err
	}
	stored := binary.LittleEndian.Uint32(body[12+4*osize:])
	if !binpkg.VerifyLookup3(body[:12+4*osize], stored) {
		return nil, ErrChecksumMismatch
	}

	br := binpkg.NewReader(bytes.NewReader(body), cfg).At(12)
	sb.BaseAddress, _ = br.ReadOffset()
	sb.SuperblockExtensionAddress, _ = br.ReadOffset()
	sb.EOFAddress, _ = br.ReadOffset()
	sb.RootGroupAddress, _ = br.ReadOffset()
	return sb, nil
}

/*
Version 0/1 layout (O = size of offsets):

	8      1  Version
	13     1  Size of offsets
	14     1  Size of lengths
	16     4  Group leaf/internal node K
	20     4  File consistency flags
	24     4  Indexed storage K + reserved (version 1 only)
	...    O  Base, free-space, EOF, driver info addresses
	...       Root group symbol table entry:
	          link name offset (O), object header address (O),
	          cache type (4), reserved (4), scratch pad (16)
*/
func readV0V1(r io.ReaderAt, offset int64, version uint8) (*Superblock, error) {
	head := make([]byte, 16)
	if _, err := r.ReadAt(head, offset+8); err != nil {
		return nil, err
	}
	sb := &Superblock{
		Version:    version,
		OffsetSize: head[5],
		LengthSize: head[6],
	}
	cfg := sb.ReaderConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSuperblock, err)
	}

	pos := offset + 24
	if version == 1 {
		pos += 4
	}
	br := binpkg.NewReader(r, cfg).At(pos)

	var err error
	if sb.BaseAddress, err = br.ReadOffset(); err != nil {
		return nil, err
	}
	br.Skip(int64(sb.OffsetSize)) // free-space info
	if sb.EOFAddress, err = br.ReadOffset(); err != nil {
		return nil, err
	}
	br.Skip(int64(sb.OffsetSize)) // driver info
	br.Skip(int64(sb.OffsetSize)) // root link name offset
	if sb.RootGroupAddress, err = br.ReadOffset(); err != nil {
		return nil, err
	}

	cacheType, err := br.ReadUint32()
	if err != nil {
		return nil, err
	}
	br.Skip(4)
	if cacheType == 1 {
		if sb.RootGroupBTreeAddress, err = br.ReadOffset(); err != nil {
			return nil, err
		}
		if sb.RootGroupLocalHeapAddress, err = br.ReadOffset(); err != nil {
			return nil, err
		}
	}
	return sb, nil
}
