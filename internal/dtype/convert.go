package dtype

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/robert-malhotra/h5frame/internal/message"
)

// ErrUnsupported is returned for datatypes or destinations this package
// cannot convert.
var ErrUnsupported = errors.New("unsupported datatype conversion")

// ByteOrder returns the byte order of a numeric datatype.
func ByteOrder(dt *message.Datatype) binary.ByteOrder {
	if dt.ByteOrder == message.OrderBE {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Convert decodes n elements of raw data into dest, which must be one of
// *[]int64, *[]float64 or *[]string.
func Convert(dt *message.Datatype, data []byte, n uint64, dest any) error {
	if dt == nil {
		return fmt.Errorf("nil datatype")
	}
	if need := DataSize(dt, n); uint64(len(data)) < need {
		return fmt.Errorf("raw data is %d bytes, need %d for %d elements", len(data), need, n)
	}

	var err error
	switch d := dest.(type) {
	case *[]int64:
		*d, err = toInt64(dt, data, int(n))
	case *[]float64:
		*d, err = toFloat64(dt, data, int(n))
	case *[]string:
		*d, err = toString(dt, data, int(n))
	default:
		return fmt.Errorf("%w: destination %T", ErrUnsupported, dest)
	}
	return err
}

func toInt64(dt *message.Datatype, data []byte, n int) ([]int64, error) {
	if dt.Class != message.ClassFixedPoint {
		return nil, fmt.Errorf("%w: %s to int64", ErrUnsupported, dt)
	}
	order := ByteOrder(dt)
	size := int(dt.Size)
	out := make([]int64, n)
	for i := range out {
		b := data[i*size : (i+1)*size]
		switch size {
		case 1:
			if dt.Signed {
				out[i] = int64(int8(b[0]))
			} else {
				out[i] = int64(b[0])
			}
		case 2:
			if dt.Signed {
				out[i] = int64(int16(order.Uint16(b)))
			} else {
				out[i] = int64(order.Uint16(b))
			}
		case 4:
			if dt.Signed {
				out[i] = int64(int32(order.Uint32(b)))
			} else {
				out[i] = int64(order.Uint32(b))
			}
		case 8:
			out[i] = int64(order.Uint64(b))
		default:
			return nil, fmt.Errorf("%w: integer size %d", ErrUnsupported, size)
		}
	}
	return out, nil
}

func toFloat64(dt *message.Datatype, data []byte, n int) ([]float64, error) {
	switch dt.Class {
	case message.ClassFixedPoint:
		ints, err := toInt64(dt, data, n)
		if err != nil {
			return nil, err
		}
		out := make([]float64, n)
		for i, v := range ints {
			out[i] = float64(v)
		}
		return out, nil
	case message.ClassFloatPoint:
	default:
		return nil, fmt.Errorf("%w: %s to float64", ErrUnsupported, dt)
	}

	order := ByteOrder(dt)
	out := make([]float64, n)
	switch dt.Size {
	case 4:
		for i := range out {
			out[i] = float64(math.Float32frombits(order.Uint32(data[i*4:])))
		}
	case 8:
		for i := range out {
			out[i] = math.Float64frombits(order.Uint64(data[i*8:]))
		}
	default:
		return nil, fmt.Errorf("%w: float size %d", ErrUnsupported, dt.Size)
	}
	return out, nil
}

func toString(dt *message.Datatype, data []byte, n int) ([]string, error) {
	if dt.Class != message.ClassString {
		if dt.IsString() {
			return nil, fmt.Errorf("%w: variable-length strings", ErrUnsupported)
		}
		return nil, fmt.Errorf("%w: %s to string", ErrUnsupported, dt)
	}
	size := int(dt.Size)
	out := make([]string, n)
	for i := range out {
		b := data[i*size : (i+1)*size]
		if j := indexNUL(b); j >= 0 {
			b = b[:j]
		}
		s := string(b)
		if dt.StringPadding == message.PadSpacePad {
			s = strings.TrimRight(s, " ")
		}
		out[i] = s
	}
	return out, nil
}

func indexNUL(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}

// DataSize returns the number of bytes n elements of dt occupy.
func DataSize(dt *message.Datatype, n uint64) uint64 {
	return uint64(dt.Size) * n
}
