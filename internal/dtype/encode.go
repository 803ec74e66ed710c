package dtype

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/robert-malhotra/h5frame/internal/message"
)

// Int64Type is the datatype used for integer data.
func Int64Type() *message.Datatype { return message.NewFixedPointDatatype(8, true) }

// Float64Type is the datatype used for floating-point data.
func Float64Type() *message.Datatype { return message.NewFloatDatatype(8) }

// StringType returns a fixed-length string type wide enough for every value
// in vals. The width is at least one byte. UTF-8 is declared only when a
// value holds a non-ASCII byte.
func StringType(vals []string) *message.Datatype {
	width := 1
	charset := message.CharsetASCII
	for _, v := range vals {
		width = max(width, len(v))
		if charset == message.CharsetASCII {
			for i := 0; i < len(v); i++ {
				if v[i] >= 0x80 {
					charset = message.CharsetUTF8
					break
				}
			}
		}
	}
	return message.NewStringDatatype(uint32(width), charset)
}

// Encode converts src into raw little-endian bytes for dt. src may be a
// slice or a single value of int64, float64 or string.
func Encode(dt *message.Datatype, src any) ([]byte, error) {
	switch v := src.(type) {
	case int64:
		return Encode(dt, []int64{v})
	case float64:
		return Encode(dt, []float64{v})
	case string:
		return Encode(dt, []string{v})

	case []int64:
		if dt.Class != message.ClassFixedPoint || dt.Size != 8 {
			return nil, fmt.Errorf("%w: []int64 as %s", ErrUnsupported, dt)
		}
		out := make([]byte, 8*len(v))
		for i, x := range v {
			binary.LittleEndian.PutUint64(out[i*8:], uint64(x))
		}
		return out, nil

	case []float64:
		if dt.Class != message.ClassFloatPoint || dt.Size != 8 {
			return nil, fmt.Errorf("%w: []float64 as %s", ErrUnsupported, dt)
		}
		out := make([]byte, 8*len(v))
		for i, x := range v {
			binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(x))
		}
		return out, nil

	case []string:
		if dt.Class != message.ClassString {
			return nil, fmt.Errorf("%w: []string as %s", ErrUnsupported, dt)
		}
		size := int(dt.Size)
		out := make([]byte, size*len(v))
		for i, s := range v {
			if len(s) > size {
				return nil, fmt.Errorf("string %q longer than element size %d", s, size)
			}
			// Null padding ends the value at the first NUL.
			if strings.IndexByte(s, 0) >= 0 {
				return nil, fmt.Errorf("%w: string %q contains a NUL byte", ErrUnsupported, s)
			}
			copy(out[i*size:], s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: source %T", ErrUnsupported, src)
}
