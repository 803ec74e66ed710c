package object

import (
	"bytes"
	"errors"
	"testing"

	"github.com/robert-malhotra/h5frame/internal/binary"
	"github.com/robert-malhotra/h5frame/internal/message"
)

func encodeAt(t *testing.T, addr int, msgs []message.Encoder, minChunk int) ([]byte, *binary.Reader) {
	t.Helper()
	data, err := Encode(binary.DefaultConfig(), msgs, minChunk)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	file := append(make([]byte, addr), data...)
	return data, binary.NewReader(bytes.NewReader(file), binary.DefaultConfig())
}

func TestDatasetHeaderRoundTrip(t *testing.T) {
	attr := message.NewAttribute("dtype", message.NewStringDatatype(5, message.CharsetASCII),
		message.NewScalarDataspace(), []byte("int64"))
	msgs := NewDatasetHeader(message.NewDataspace(3), message.NewFixedPointDatatype(8, true),
		message.NewContiguousLayout(512, 24), attr)

	data, r := encodeAt(t, 100, msgs, 0)
	hdr, err := Read(r, 100)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !hdr.IsDataset() || hdr.IsGroup() {
		t.Fatalf("IsDataset() = %v, IsGroup() = %v", hdr.IsDataset(), hdr.IsGroup())
	}
	if hdr.Size != uint64(len(data)) {
		t.Errorf("Size = %d, want %d", hdr.Size, len(data))
	}
	if got := hdr.DataLayout(); got.Address != 512 || got.Size != 24 {
		t.Errorf("layout = %+v", got)
	}
	attrs := hdr.Attributes()
	if len(attrs) != 1 || attrs[0].Name != "dtype" {
		t.Fatalf("Attributes() = %+v", attrs)
	}
}

func TestGroupHeaderPadding(t *testing.T) {
	links := []*message.Link{message.NewHardLink("a", 1), message.NewHardLink("b", 2)}
	data, r := encodeAt(t, 0, NewGroupHeader(links), MinGroupChunkSize)

	// "OHDR" + version + flags (6) + chunk size field (1) + chunk (120) + checksum (4)
	if want := 6 + 1 + MinGroupChunkSize + 4; len(data) != want {
		t.Errorf("header length = %d, want %d", len(data), want)
	}
	hdr, err := Read(r, 0)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !hdr.IsGroup() {
		t.Error("IsGroup() = false")
	}
	got := hdr.Links()
	if len(got) != 2 || got[0].Name != "a" || got[1].ObjectAddress != 2 {
		t.Errorf("Links() = %+v", got)
	}
}

func TestSmallPaddingGetsNILPrefix(t *testing.T) {
	// Links "a" and "bb" take 16 + 17 = 33 bytes; a minimum of 35 would
	// leave a 2-byte gap.
	links := []*message.Link{message.NewHardLink("a", 1), message.NewHardLink("bb", 2)}
	msgs := []message.Encoder{links[0], links[1]}
	_, r := encodeAt(t, 0, msgs, 35)
	hdr, err := Read(r, 0)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(hdr.Links()) != 2 {
		t.Errorf("Links() = %d, want 2", len(hdr.Links()))
	}
}

func TestChecksumMismatch(t *testing.T) {
	data, err := Encode(binary.DefaultConfig(), NewGroupHeader(nil), MinGroupChunkSize)
	if err != nil {
		t.Fatal(err)
	}
	data[10] ^= 0xff
	r := binary.NewReader(bytes.NewReader(data), binary.DefaultConfig())
	if _, err := Read(r, 0); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("Read() error = %v, want ErrChecksumMismatch", err)
	}
}

func TestMessageTooLarge(t *testing.T) {
	big := message.NewCompactLayout(make([]byte, 70000))
	_, err := Encode(binary.DefaultConfig(), []message.Encoder{big}, 0)
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("Encode() error = %v, want ErrMessageTooLarge", err)
	}
}

func TestReadV1(t *testing.T) {
	cfg := binary.DefaultConfig()
	st := []byte{}
	st = append(st, 1, 0, 0, 0, 0, 0, 0, 0) // B-tree address 1
	st = append(st, 2, 0, 0, 0, 0, 0, 0, 0) // heap address 2

	buf := binary.NewBuffer(64)
	w := binary.NewWriter(buf, cfg)
	w.WriteUint8(1)
	w.WriteUint8(0)
	w.WriteUint16(1)
	w.WriteUint32(1)
	w.WriteUint32(uint32(8 + len(st)))
	w.WriteZeros(4)
	w.WriteUint16(uint16(message.TypeSymbolTable))
	w.WriteUint16(uint16(len(st)))
	w.WriteUint8(0)
	w.WriteZeros(3)
	w.WriteBytes(st)

	hdr, err := Read(binary.NewReader(bytes.NewReader(buf.Bytes()), cfg), 0)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if hdr.Version != 1 {
		t.Errorf("Version = %d, want 1", hdr.Version)
	}
	tbl := hdr.SymbolTable()
	if tbl == nil || tbl.BTreeAddress != 1 || tbl.LocalHeapAddress != 2 {
		t.Fatalf("SymbolTable() = %+v", tbl)
	}
	if !hdr.IsGroup() {
		t.Error("IsGroup() = false")
	}
}
