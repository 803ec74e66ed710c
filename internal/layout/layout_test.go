package layout

import (
	"bytes"
	"errors"
	"testing"

	"github.com/robert-malhotra/h5frame/internal/binary"
	"github.com/robert-malhotra/h5frame/internal/message"
)

func newReader(data []byte) *binary.Reader {
	return binary.NewReader(bytes.NewReader(data), binary.DefaultConfig())
}

func TestCompact(t *testing.T) {
	l, err := New(message.NewCompactLayout([]byte{1, 2, 3, 4}), message.NewDataspace(4),
		message.NewFixedPointDatatype(1, false), newReader(nil))
	if err != nil {
		t.Fatal(err)
	}
	got, err := l.Read()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Errorf("Read() = %v", got)
	}
}

func TestContiguous(t *testing.T) {
	file := []byte{0, 0, 0, 0, 9, 8, 7, 6}
	l, err := New(message.NewContiguousLayout(4, 4), message.NewDataspace(2),
		message.NewFixedPointDatatype(2, false), newReader(file))
	if err != nil {
		t.Fatal(err)
	}
	got, err := l.Read()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{9, 8, 7, 6}) {
		t.Errorf("Read() = %v", got)
	}
}

func TestContiguousUnallocated(t *testing.T) {
	l, err := New(message.NewContiguousLayout(^uint64(0), 0), message.NewDataspace(0),
		message.NewFloatDatatype(8), newReader(nil))
	if err != nil {
		t.Fatal(err)
	}
	got, err := l.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Read() returned %d bytes, want 0", len(got))
	}
}

func TestChunkedUnsupported(t *testing.T) {
	_, err := New(&message.DataLayout{Version: 3, Class: message.LayoutChunked}, message.NewDataspace(1),
		message.NewFloatDatatype(8), newReader(nil))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("New() error = %v, want ErrUnsupported", err)
	}
}
