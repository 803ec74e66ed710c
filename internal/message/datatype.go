package message

import (
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/h5frame/internal/binary"
)

// DatatypeClass is the class of a datatype.
type DatatypeClass uint8

const (
	ClassFixedPoint DatatypeClass = 0
	ClassFloatPoint DatatypeClass = 1
	ClassTime       DatatypeClass = 2
	ClassString     DatatypeClass = 3
	ClassBitfield   DatatypeClass = 4
	ClassOpaque     DatatypeClass = 5
	ClassCompound   DatatypeClass = 6
	ClassReference  DatatypeClass = 7
	ClassEnum       DatatypeClass = 8
	ClassVarLen     DatatypeClass = 9
	ClassArray      DatatypeClass = 10
)

var classNames = map[DatatypeClass]string{
	ClassFixedPoint: "fixed-point",
	ClassFloatPoint: "floating-point",
	ClassTime:       "time",
	ClassString:     "string",
	ClassBitfield:   "bitfield",
	ClassOpaque:     "opaque",
	ClassCompound:   "compound",
	ClassReference:  "reference",
	ClassEnum:       "enum",
	ClassVarLen:     "variable-length",
	ClassArray:      "array",
}

func (c DatatypeClass) String() string {
	if s, ok := classNames[c]; ok {
		return s
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// ByteOrder of numeric types.
type ByteOrder uint8

const (
	OrderLE ByteOrder = 0
	OrderBE ByteOrder = 1
)

// StringPadding is how fixed-length strings fill unused bytes.
type StringPadding uint8

const (
	PadNullTerm StringPadding = 0
	PadNullPad  StringPadding = 1
	PadSpacePad StringPadding = 2
)

// CharacterSet is the encoding of string data.
type CharacterSet uint8

const (
	CharsetASCII CharacterSet = 0
	CharsetUTF8  CharacterSet = 1
)

// Datatype describes the element type of a dataset or attribute (type 0x0003).
type Datatype struct {
	Version   uint8
	Class     DatatypeClass
	ClassBits uint32
	Size      uint32

	ByteOrder ByteOrder

	// Fixed-point
	BitOffset    uint16
	BitPrecision uint16
	Signed       bool

	// String
	StringPadding StringPadding
	CharSet       CharacterSet

	// Variable-length: sequence or string
	IsVarLenString bool

	Properties []byte
}

func (m *Datatype) Type() Type { return TypeDatatype }

func (m *Datatype) IsInteger() bool { return m.Class == ClassFixedPoint }
func (m *Datatype) IsFloat() bool   { return m.Class == ClassFloatPoint }

// IsString reports whether elements are strings of either kind.
func (m *Datatype) IsString() bool {
	return m.Class == ClassString || (m.Class == ClassVarLen && m.IsVarLenString)
}

// String describes the datatype, e.g. "int64", "float32", "string(12)".
func (m *Datatype) String() string {
	switch m.Class {
	case ClassFixedPoint:
		if m.Signed {
			return fmt.Sprintf("int%d", m.Size*8)
		}
		return fmt.Sprintf("uint%d", m.Size*8)
	case ClassFloatPoint:
		return fmt.Sprintf("float%d", m.Size*8)
	case ClassString:
		return fmt.Sprintf("string(%d)", m.Size)
	default:
		return m.Class.String()
	}
}

// NewFixedPointDatatype returns a little-endian integer type of size bytes.
func NewFixedPointDatatype(size uint32, signed bool) *Datatype {
	dt := &Datatype{
		Version:      1,
		Class:        ClassFixedPoint,
		Size:         size,
		ByteOrder:    OrderLE,
		Signed:       signed,
		BitPrecision: uint16(size * 8),
	}
	if signed {
		dt.ClassBits = 0x08
	}
	props := make([]byte, 4)
	binary.LittleEndian.PutUint16(props[2:], dt.BitPrecision)
	dt.Properties = props
	return dt
}

// NewFloatDatatype returns a little-endian IEEE 754 type of 4 or 8 bytes.
func NewFloatDatatype(size uint32) *Datatype {
	dt := &Datatype{
		Version:   1,
		Class:     ClassFloatPoint,
		Size:      size,
		ByteOrder: OrderLE,
	}
	// Mantissa normalization is "implied" (bits 4-5 = 2); the sign bit
	// location sits in bits 8-15.
	if size == 4 {
		dt.ClassBits = 2<<4 | 31<<8
		dt.Properties = []byte{0, 0, 32, 0, 23, 8, 0, 23, 127, 0, 0, 0}
	} else {
		dt.ClassBits = 2<<4 | 63<<8
		dt.Properties = []byte{0, 0, 64, 0, 52, 11, 0, 52, 255, 3, 0, 0}
	}
	return dt
}

// NewStringDatatype returns a null-padded fixed-length string type.
func NewStringDatatype(size uint32, charset CharacterSet) *Datatype {
	return &Datatype{
		Version:       1,
		Class:         ClassString,
		ClassBits:     uint32(PadNullPad) | uint32(charset)<<4,
		Size:          size,
		StringPadding: PadNullPad,
		CharSet:       charset,
	}
}

// Encode serializes the datatype message.
func (m *Datatype) Encode(cfg binpkg.Config) []byte {
	version := m.Version
	if version == 0 {
		version = 1
	}
	return encode(cfg, func(w *binpkg.Writer) {
		w.WriteUint8(uint8(m.Class) | version<<4)
		w.WriteUint8(uint8(m.ClassBits))
		w.WriteUint8(uint8(m.ClassBits >> 8))
		w.WriteUint8(uint8(m.ClassBits >> 16))
		w.WriteUint32(m.Size)
		w.WriteBytes(m.Properties)
	})
}

func parseDatatype(data []byte) (*Datatype, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("datatype message too short")
	}

	dt := &Datatype{
		Version:   data[0] >> 4,
		Class:     DatatypeClass(data[0] & 0x0F),
		ClassBits: uint32(data[1]) | uint32(data[2])<<8 | uint32(data[3])<<16,
		Size:      binary.LittleEndian.Uint32(data[4:8]),
	}
	props := data[8:]

	switch dt.Class {
	case ClassFixedPoint:
		dt.ByteOrder = ByteOrder(dt.ClassBits & 0x01)
		dt.Signed = dt.ClassBits&0x08 != 0
		if len(props) >= 4 {
			dt.BitOffset = binary.LittleEndian.Uint16(props[0:2])
			dt.BitPrecision = binary.LittleEndian.Uint16(props[2:4])
			dt.Properties = props[:4]
		}
	case ClassFloatPoint:
		dt.ByteOrder = ByteOrder(dt.ClassBits & 0x01)
		if len(props) >= 12 {
			dt.Properties = props[:12]
		}
	case ClassString:
		dt.StringPadding = StringPadding(dt.ClassBits & 0x0F)
		dt.CharSet = CharacterSet((dt.ClassBits >> 4) & 0x0F)
	case ClassVarLen:
		dt.IsVarLenString = dt.ClassBits&0x0F == 1
		dt.Properties = props
	default:
		dt.Properties = props
	}
	return dt, nil
}
