package message

import (
	"bytes"
	"testing"

	binpkg "github.com/robert-malhotra/h5frame/internal/binary"
)

func reader() *binpkg.Reader {
	return binpkg.NewReader(bytes.NewReader(nil), binpkg.DefaultConfig())
}

func roundTrip(t *testing.T, enc Encoder) Message {
	t.Helper()
	data := enc.Encode(binpkg.DefaultConfig())
	msg, err := Parse(enc.Type(), data, reader())
	if err != nil {
		t.Fatalf("Parse(%v) error = %v", enc.Type(), err)
	}
	return msg
}

func TestDataspaceRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		ds   *Dataspace
		n    uint64
	}{
		{"1d", NewDataspace(5), 5},
		{"2d", NewDataspace(3, 4), 12},
		{"empty", NewDataspace(0), 0},
		{"scalar", NewScalarDataspace(), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundTrip(t, tt.ds).(*Dataspace)
			if got.SpaceType != tt.ds.SpaceType {
				t.Errorf("SpaceType = %d, want %d", got.SpaceType, tt.ds.SpaceType)
			}
			if got.NumElements() != tt.n {
				t.Errorf("NumElements() = %d, want %d", got.NumElements(), tt.n)
			}
			if len(got.Dimensions) != len(tt.ds.Dimensions) {
				t.Fatalf("rank = %d, want %d", len(got.Dimensions), len(tt.ds.Dimensions))
			}
			for i := range got.Dimensions {
				if got.Dimensions[i] != tt.ds.Dimensions[i] {
					t.Errorf("dim[%d] = %d, want %d", i, got.Dimensions[i], tt.ds.Dimensions[i])
				}
			}
		})
	}
}

func TestDatatypeRoundTrip(t *testing.T) {
	tests := []struct {
		dt   *Datatype
		want string
	}{
		{NewFixedPointDatatype(8, true), "int64"},
		{NewFixedPointDatatype(1, false), "uint8"},
		{NewFloatDatatype(8), "float64"},
		{NewFloatDatatype(4), "float32"},
		{NewStringDatatype(12, CharsetUTF8), "string(12)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := roundTrip(t, tt.dt).(*Datatype)
			if got.String() != tt.want {
				t.Errorf("String() = %q, want %q", got.String(), tt.want)
			}
			if got.Class == ClassString && got.CharSet != tt.dt.CharSet {
				t.Errorf("CharSet = %d, want %d", got.CharSet, tt.dt.CharSet)
			}
			if got.Class == ClassFixedPoint && got.BitPrecision != uint16(tt.dt.Size*8) {
				t.Errorf("BitPrecision = %d", got.BitPrecision)
			}
		})
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	compact := roundTrip(t, NewCompactLayout([]byte{1, 2, 3})).(*DataLayout)
	if !compact.IsCompact() || !bytes.Equal(compact.CompactData, []byte{1, 2, 3}) {
		t.Errorf("compact layout = %+v", compact)
	}

	contig := roundTrip(t, NewContiguousLayout(4096, 80)).(*DataLayout)
	if !contig.IsContiguous() || contig.Address != 4096 || contig.Size != 80 {
		t.Errorf("contiguous layout = %+v", contig)
	}
}

func TestAttributeRoundTrip(t *testing.T) {
	attr := NewAttribute("label_kind", NewStringDatatype(4, CharsetASCII), NewScalarDataspace(), []byte("flat"))
	got := roundTrip(t, attr).(*Attribute)
	if got.Name != "label_kind" {
		t.Errorf("Name = %q", got.Name)
	}
	if !got.Dataspace.IsScalar() {
		t.Error("dataspace is not scalar")
	}
	if string(got.Data) != "flat" {
		t.Errorf("Data = %q, want %q", got.Data, "flat")
	}
}

func TestLinkRoundTrip(t *testing.T) {
	for _, name := range []string{"axis0", "données", string(bytes.Repeat([]byte("x"), 300))} {
		got := roundTrip(t, NewHardLink(name, 1234)).(*Link)
		if got.Name != name {
			t.Errorf("Name = %q, want %q", got.Name, name)
		}
		if !got.IsHard() || got.ObjectAddress != 1234 {
			t.Errorf("link = %+v", got)
		}
	}
}

func TestLinkInfoCompact(t *testing.T) {
	got := roundTrip(t, NewLinkInfo()).(*LinkInfo)
	if got.FractalHeapAddress != ^uint64(0) {
		t.Errorf("FractalHeapAddress = 0x%x, want undefined", got.FractalHeapAddress)
	}
}

func TestParseUnknown(t *testing.T) {
	msg, err := Parse(TypeObjectModTime, []byte{1, 0, 0, 0, 5, 6, 7, 8}, reader())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := msg.(*Unknown); !ok {
		t.Errorf("Parse() = %T, want *Unknown", msg)
	}
}
