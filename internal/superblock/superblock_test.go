package superblock

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	binpkg "github.com/robert-malhotra/h5frame/internal/binary"
)

func encode(t *testing.T, sb *Superblock) []byte {
	t.Helper()
	buf := binpkg.NewBuffer(sb.Size())
	w := binpkg.NewWriter(buf, binpkg.DefaultConfig())
	n, err := sb.Write(w)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if int(n) != sb.Size() {
		t.Fatalf("Write() wrote %d bytes, Size() = %d", n, sb.Size())
	}
	return buf.Bytes()
}

func TestWriteReadRoundTrip(t *testing.T) {
	sb := NewSuperblock()
	sb.EOFAddress = 4096
	sb.RootGroupAddress = 48

	got, err := Read(bytes.NewReader(encode(t, sb)))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Version != 3 {
		t.Errorf("Version = %d, want 3", got.Version)
	}
	if got.EOFAddress != 4096 {
		t.Errorf("EOFAddress = %d, want 4096", got.EOFAddress)
	}
	if got.RootGroupAddress != 48 {
		t.Errorf("RootGroupAddress = %d, want 48", got.RootGroupAddress)
	}
	if got.SuperblockExtensionAddress != ^uint64(0) {
		t.Errorf("extension address = 0x%x, want undefined", got.SuperblockExtensionAddress)
	}
	if got.Legacy() {
		t.Error("Legacy() = true for version 3")
	}
}

func TestReadChecksumMismatch(t *testing.T) {
	sb := NewSuperblock()
	sb.RootGroupAddress = 48
	data := encode(t, sb)
	data[20] ^= 0xff

	if _, err := Read(bytes.NewReader(data)); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("Read() error = %v, want ErrChecksumMismatch", err)
	}
}

func TestReadNotHDF5(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte("plain text, not a container"))); !errors.Is(err, ErrNotHDF5) {
		t.Fatalf("Read() error = %v, want ErrNotHDF5", err)
	}
}

func TestReadAtOffset512(t *testing.T) {
	sb := NewSuperblock()
	sb.RootGroupAddress = 600
	data := append(make([]byte, 512), encode(t, sb)...)

	got, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.FileOffset != 512 {
		t.Errorf("FileOffset = %d, want 512", got.FileOffset)
	}
}

func TestReadVersion0(t *testing.T) {
	// Fixed header, then base/free/eof/driver, then the root symbol table entry.
	data := make([]byte, 0, 128)
	data = append(data, Signature...)
	data = append(data, 0, 0, 0, 0, 0, 8, 8, 0)
	data = binary.LittleEndian.AppendUint16(data, 4)
	data = binary.LittleEndian.AppendUint16(data, 16)
	data = binary.LittleEndian.AppendUint32(data, 0)
	for _, v := range []uint64{0, ^uint64(0), 2048, ^uint64(0), 0, 96} {
		data = binary.LittleEndian.AppendUint64(data, v)
	}
	data = binary.LittleEndian.AppendUint32(data, 1)
	data = binary.LittleEndian.AppendUint32(data, 0)
	data = binary.LittleEndian.AppendUint64(data, 136)
	data = binary.LittleEndian.AppendUint64(data, 680)

	sb, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !sb.Legacy() {
		t.Error("Legacy() = false for version 0")
	}
	if sb.EOFAddress != 2048 {
		t.Errorf("EOFAddress = %d, want 2048", sb.EOFAddress)
	}
	if sb.RootGroupAddress != 96 {
		t.Errorf("RootGroupAddress = %d, want 96", sb.RootGroupAddress)
	}
	if sb.RootGroupBTreeAddress != 136 || sb.RootGroupLocalHeapAddress != 680 {
		t.Errorf("symbol table = (%d, %d), want (136, 680)", sb.RootGroupBTreeAddress, sb.RootGroupLocalHeapAddress)
	}
}
