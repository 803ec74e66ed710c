package message

import (
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/h5frame/internal/binary"
)

// Attribute is a small named value attached to an object (type 0x000C).
type Attribute struct {
	Version   uint8
	Name      string
	Datatype  *Datatype
	Dataspace *Dataspace
	Data      []byte
}

func (m *Attribute) Type() Type { return TypeAttribute }

// NewAttribute builds a version 3 attribute. data must already be encoded
// for dt and ds.
func NewAttribute(name string, dt *Datatype, ds *Dataspace, data []byte) *Attribute {
	return &Attribute{Version: 3, Name: name, Datatype: dt, Dataspace: ds, Data: data}
}

// Encode serializes the attribute as a version 3 message.
func (m *Attribute) Encode(cfg binpkg.Config) []byte {
	dt := m.Datatype.Encode(cfg)
	ds := m.Dataspace.Encode(cfg)
	name := append([]byte(m.Name), 0)

	var charset uint8
	if !isASCII(m.Name) {
		charset = uint8(CharsetUTF8)
	}

	return encode(cfg, func(w *binpkg.Writer) {
		w.WriteUint8(3)
		w.WriteUint8(0)
		w.WriteUint16(uint16(len(name)))
		w.WriteUint16(uint16(len(dt)))
		w.WriteUint16(uint16(len(ds)))
		w.WriteUint8(charset)
		w.WriteBytes(name)
		w.WriteBytes(dt)
		w.WriteBytes(ds)
		w.WriteBytes(m.Data)
	})
}

/*
Attribute layout by version:

	v1: version, reserved, name size, datatype size, dataspace size;
	    name, datatype and dataspace each padded to 8 bytes
	v2: as v1 with a flags byte in place of reserved, no padding
	v3: as v2 followed by a name character set byte
*/
func parseAttribute(data []byte, r *binpkg.Reader) (*Attribute, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("attribute message too short")
	}

	attr := &Attribute{Version: data[0]}
	nameSize := int(binary.LittleEndian.Uint16(data[2:4]))
	dtSize := int(binary.LittleEndian.Uint16(data[4:6]))
	dsSize := int(binary.LittleEndian.Uint16(data[6:8]))

	offset := 8
	var pad func(int) int
	switch attr.Version {
	case 1:
		pad = func(n int) int { return (n + 7) &^ 7 }
	case 2:
		pad = func(n int) int { return n }
	case 3:
		pad = func(n int) int { return n }
		offset = 9
	default:
		return nil, fmt.Errorf("unsupported attribute version: %d", attr.Version)
	}

	field := func(size int, what string) ([]byte, error) {
		if offset+size > len(data) {
			return nil, fmt.Errorf("attribute %s truncated", what)
		}
		b := data[offset : offset+size]
		offset += pad(size)
		return b, nil
	}

	nameBytes, err := field(nameSize, "name")
	if err != nil {
		return nil, err
	}
	attr.Name = cstring(nameBytes)

	dtBytes, err := field(dtSize, "datatype")
	if err != nil {
		return nil, err
	}
	if attr.Datatype, err = parseDatatype(dtBytes); err != nil {
		return nil, fmt.Errorf("attribute %q: %w", attr.Name, err)
	}

	dsBytes, err := field(dsSize, "dataspace")
	if err != nil {
		return nil, err
	}
	if attr.Dataspace, err = parseDataspace(dsBytes, r); err != nil {
		return nil, fmt.Errorf("attribute %q: %w", attr.Name, err)
	}

	if offset < len(data) {
		attr.Data = make([]byte, len(data)-offset)
		copy(attr.Data, data[offset:])
	}
	return attr, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
