package message

import (
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/h5frame/internal/binary"
)

// LinkType is the kind of link.
type LinkType uint8

const (
	LinkTypeHard     LinkType = 0
	LinkTypeSoft     LinkType = 1
	LinkTypeExternal LinkType = 64
)

// Link names a child object of a group (type 0x0006).
type Link struct {
	Version  uint8
	LinkType LinkType
	Name     string
	Charset  CharacterSet

	// Hard link
	ObjectAddress uint64

	// Soft link
	SoftLinkValue string
}

func (m *Link) Type() Type { return TypeLink }

// IsHard reports whether the link points directly at an object header.
func (m *Link) IsHard() bool {
	return m.LinkType == LinkTypeHard
}

// NewHardLink returns a link to the object header at addr.
func NewHardLink(name string, addr uint64) *Link {
	l := &Link{Version: 1, LinkType: LinkTypeHard, Name: name, ObjectAddress: addr}
	if !isASCII(name) {
		l.Charset = CharsetUTF8
	}
	return l
}

// Encode serializes the link. Only hard links are written.
func (m *Link) Encode(cfg binpkg.Config) []byte {
	nameLen := len(m.Name)
	var sizeBits uint8
	var sizeBytes int
	switch {
	case nameLen <= 0xFF:
		sizeBits, sizeBytes = 0, 1
	case nameLen <= 0xFFFF:
		sizeBits, sizeBytes = 1, 2
	default:
		sizeBits, sizeBytes = 2, 4
	}

	flags := sizeBits
	if m.LinkType != LinkTypeHard {
		flags |= 0x08
	}
	if m.Charset != CharsetASCII {
		flags |= 0x10
	}

	return encode(cfg, func(w *binpkg.Writer) {
		w.WriteUint8(1)
		w.WriteUint8(flags)
		if flags&0x08 != 0 {
			w.WriteUint8(uint8(m.LinkType))
		}
		if flags&0x10 != 0 {
			w.WriteUint8(uint8(m.Charset))
		}
		w.WriteUintN(uint64(nameLen), sizeBytes)
		w.WriteBytes([]byte(m.Name))
		w.WriteOffset(m.ObjectAddress)
	})
}

func parseLink(data []byte, r *binpkg.Reader) (*Link, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("link message too short")
	}

	link := &Link{Version: data[0]}
	flags := data[1]
	offset := 2
	nameLenSize := 1 << (flags & 0x03)

	if flags&0x08 != 0 {
		if offset >= len(data) {
			return nil, fmt.Errorf("link type truncated")
		}
		link.LinkType = LinkType(data[offset])
		offset++
	}
	if flags&0x04 != 0 {
		offset += 8 // creation order
	}
	if flags&0x10 != 0 {
		if offset >= len(data) {
			return nil, fmt.Errorf("link charset truncated")
		}
		link.Charset = CharacterSet(data[offset])
		offset++
	}

	if offset+nameLenSize > len(data) {
		return nil, fmt.Errorf("link name length truncated")
	}
	nameLen := int(binpkg.DecodeUint(binary.LittleEndian, data[offset:], nameLenSize))
	offset += nameLenSize
	if offset+nameLen > len(data) {
		return nil, fmt.Errorf("link name truncated")
	}
	link.Name = string(data[offset : offset+nameLen])
	offset += nameLen

	switch link.LinkType {
	case LinkTypeHard:
		osize := r.OffsetSize()
		if offset+osize > len(data) {
			return nil, fmt.Errorf("hard link address truncated")
		}
		link.ObjectAddress = binpkg.DecodeUint(r.ByteOrder(), data[offset:], osize)
	case LinkTypeSoft:
		if offset+2 > len(data) {
			return nil, fmt.Errorf("soft link length truncated")
		}
		n := int(binary.LittleEndian.Uint16(data[offset:]))
		offset += 2
		if offset+n > len(data) {
			return nil, fmt.Errorf("soft link value truncated")
		}
		link.SoftLinkValue = string(data[offset : offset+n])
	}
	return link, nil
}

// LinkInfo records how a group stores its links (type 0x0002). A defined
// FractalHeapAddress means the links are in dense storage.
type LinkInfo struct {
	Version            uint8
	Flags              uint8
	FractalHeapAddress uint64
	NameIndexAddress   uint64
}

func (m *LinkInfo) Type() Type { return TypeLinkInfo }

// NewLinkInfo returns link info for a group with compact link storage.
func NewLinkInfo() *LinkInfo {
	return &LinkInfo{FractalHeapAddress: ^uint64(0), NameIndexAddress: ^uint64(0)}
}

// Encode serializes the link info message.
func (m *LinkInfo) Encode(cfg binpkg.Config) []byte {
	return encode(cfg, func(w *binpkg.Writer) {
		w.WriteUint8(0)
		w.WriteUint8(0)
		w.WriteOffset(w.UndefinedOffset())
		w.WriteOffset(w.UndefinedOffset())
	})
}

func parseLinkInfo(data []byte, r *binpkg.Reader) (*LinkInfo, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("link info message too short")
	}
	li := &LinkInfo{Version: data[0], Flags: data[1]}
	offset := 2
	if li.Flags&0x01 != 0 {
		offset += 8 // maximum creation index
	}
	osize := r.OffsetSize()
	if offset+2*osize > len(data) {
		return nil, fmt.Errorf("link info message truncated")
	}
	li.FractalHeapAddress = binpkg.DecodeUint(r.ByteOrder(), data[offset:], osize)
	li.NameIndexAddress = binpkg.DecodeUint(r.ByteOrder(), data[offset+osize:], osize)
	return li, nil
}

// GroupInfo holds group storage hints (type 0x000A). Only the default form
// is written.
type GroupInfo struct{}

func (m *GroupInfo) Type() Type { return TypeGroupInfo }

// Encode serializes an empty group info message.
func (m *GroupInfo) Encode(cfg binpkg.Config) []byte {
	return []byte{0, 0}
}
