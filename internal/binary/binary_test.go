package binary

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestLookup3Checksum(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  uint32
	}{
		{"empty", nil, 0xdeadbeef},
		{"four score", []byte("Four score and seven years ago"), 0x17770551},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lookup3Checksum(tt.input); got != tt.want {
				t.Errorf("Lookup3Checksum() = 0x%08x, want 0x%08x", got, tt.want)
			}
			if !VerifyLookup3(tt.input, tt.want) {
				t.Error("VerifyLookup3 rejected matching checksum")
			}
		})
	}
}

func TestLookup3ChecksumLengthVariations(t *testing.T) {
	seen := make(map[uint32]int)
	for length := 0; length <= 24; length++ {
		data := make([]byte, length)
		for i := range data {
			data[i] = byte(i)
		}
		seen[Lookup3Checksum(data)] = length
	}
	if len(seen) != 25 {
		t.Errorf("expected 25 unique checksums for lengths 0-24, got %d", len(seen))
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	for _, size := range []int{2, 4, 8} {
		cfg := Config{ByteOrder: binary.LittleEndian, OffsetSize: size, LengthSize: size}
		buf := NewBuffer(64)
		w := NewWriter(buf, cfg)

		if err := w.WriteUint8(0x7f); err != nil {
			t.Fatal(err)
		}
		if err := w.WriteUint16(0xbeef); err != nil {
			t.Fatal(err)
		}
		if err := w.WriteUint32(0xdeadbeef); err != nil {
			t.Fatal(err)
		}
		if err := w.WriteOffset(0x1234); err != nil {
			t.Fatal(err)
		}
		if err := w.WriteLength(0x42); err != nil {
			t.Fatal(err)
		}
		if err := w.WriteOffset(w.UndefinedOffset()); err != nil {
			t.Fatal(err)
		}

		r := NewReader(bytes.NewReader(buf.Bytes()), cfg)
		if v, _ := r.ReadUint8(); v != 0x7f {
			t.Errorf("size %d: ReadUint8 = %x", size, v)
		}
		if v, _ := r.ReadUint16(); v != 0xbeef {
			t.Errorf("size %d: ReadUint16 = %x", size, v)
		}
		if v, _ := r.ReadUint32(); v != 0xdeadbeef {
			t.Errorf("size %d: ReadUint32 = %x", size, v)
		}
		if v, _ := r.ReadOffset(); v != 0x1234 {
			t.Errorf("size %d: ReadOffset = %x", size, v)
		}
		if v, _ := r.ReadLength(); v != 0x42 {
			t.Errorf("size %d: ReadLength = %x", size, v)
		}
		v, err := r.ReadOffset()
		if err != nil {
			t.Fatal(err)
		}
		if !r.IsUndefinedOffset(v) {
			t.Errorf("size %d: %x not recognised as undefined", size, v)
		}
	}
}

func TestReaderAlignAndPeek(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte("0123456789abcdef")), DefaultConfig())
	r.Skip(3)
	r.Align(8)
	if r.Pos() != 8 {
		t.Fatalf("Pos after Align = %d, want 8", r.Pos())
	}
	p, err := r.Peek(2)
	if err != nil {
		t.Fatal(err)
	}
	if string(p) != "89" || r.Pos() != 8 {
		t.Errorf("Peek = %q at %d", p, r.Pos())
	}
	if _, err := r.At(15).ReadBytes(4); err == nil {
		t.Error("expected error reading past end")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	bad := Config{ByteOrder: binary.LittleEndian, OffsetSize: 3, LengthSize: 8}
	if err := bad.Validate(); err != ErrInvalidSize {
		t.Errorf("Validate() = %v, want ErrInvalidSize", err)
	}
}
