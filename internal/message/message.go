package message

import (
	"fmt"

	binpkg "github.com/robert-malhotra/h5frame/internal/binary"
)

// Type identifies a header message.
type Type uint16

// Header message types
const (
	TypeNIL                      Type = 0x0000
	TypeDataspace                Type = 0x0001
	TypeLinkInfo                 Type = 0x0002
	TypeDatatype                 Type = 0x0003
	TypeFillValueOld             Type = 0x0004
	TypeFillValue                Type = 0x0005
	TypeLink                     Type = 0x0006
	TypeExternalDataFiles        Type = 0x0007
	TypeDataLayout               Type = 0x0008
	TypeBogus                    Type = 0x0009
	TypeGroupInfo                Type = 0x000A
	TypeFilterPipeline           Type = 0x000B
	TypeAttribute                Type = 0x000C
	TypeObjectComment            Type = 0x000D
	TypeObjectModTime            Type = 0x000E
	TypeSharedMessageTable       Type = 0x000F
	TypeObjectHeaderContinuation Type = 0x0010
	TypeSymbolTable              Type = 0x0011
	TypeObjectModTimeOld         Type = 0x0012
	TypeBTreeKValues             Type = 0x0013
	TypeDriverInfo               Type = 0x0014
	TypeAttributeInfo            Type = 0x0015
	TypeObjectRefCount           Type = 0x0016
)

// Message is the interface implemented by all header messages.
type Message interface {
	Type() Type
}

// Encoder is a message that can be written into an object header.
type Encoder interface {
	Message
	Encode(cfg binpkg.Config) []byte
}

// Parse decodes the body of a header message. Types the package does not
// model are returned as *Unknown.
func Parse(typ Type, data []byte, r *binpkg.Reader) (Message, error) {
	switch typ {
	case TypeDataspace:
		return parseDataspace(data, r)
	case TypeDatatype:
		return parseDatatype(data)
	case TypeDataLayout:
		return parseDataLayout(data, r)
	case TypeAttribute:
		return parseAttribute(data, r)
	case TypeLink:
		return parseLink(data, r)
	case TypeLinkInfo:
		return parseLinkInfo(data, r)
	case TypeSymbolTable:
		return parseSymbolTable(data, r)
	case TypeObjectHeaderContinuation:
		return ParseContinuation(data, r)
	default:
		return &Unknown{typ: typ, data: data}, nil
	}
}

// Unknown holds the raw body of a message type that is not decoded.
type Unknown struct {
	typ  Type
	data []byte
}

// NewUnknown wraps a raw message body.
func NewUnknown(typ Type, data []byte) *Unknown {
	return &Unknown{typ: typ, data: data}
}

func (m *Unknown) Type() Type   { return m.typ }
func (m *Unknown) Data() []byte { return m.data }

// Continuation points to the next chunk of an object header.
type Continuation struct {
	Offset uint64
	Length uint64
}

func (m *Continuation) Type() Type { return TypeObjectHeaderContinuation }

// ParseContinuation parses a continuation message.
func ParseContinuation(data []byte, r *binpkg.Reader) (*Continuation, error) {
	osize, lsize := r.OffsetSize(), r.LengthSize()
	if len(data) < osize+lsize {
		return nil, fmt.Errorf("continuation message too short")
	}
	return &Continuation{
		Offset: binpkg.DecodeUint(r.ByteOrder(), data, osize),
		Length: binpkg.DecodeUint(r.ByteOrder(), data[osize:], lsize),
	}, nil
}

// encode runs fn against an in-memory writer and returns the bytes.
// Writes to a Buffer cannot fail.
func encode(cfg binpkg.Config, fn func(w *binpkg.Writer)) []byte {
	buf := binpkg.NewBuffer(64)
	fn(binpkg.NewWriter(buf, cfg))
	return buf.Bytes()
}

// cstring returns data up to the first NUL.
func cstring(data []byte) string {
	for i, b := range data {
		if b == 0 {
			return string(data[:i])
		}
	}
	return string(data)
}
