package object

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/h5frame/internal/binary"
	"github.com/robert-malhotra/h5frame/internal/message"
)

// Object header signatures
var (
	SignatureV2           = []byte{'O', 'H', 'D', 'R'}
	SignatureContinuation = []byte{'O', 'C', 'H', 'K'}
)

var (
	ErrInvalidHeader      = errors.New("invalid object header")
	ErrUnsupportedVersion = errors.New("unsupported object header version")
	ErrChecksumMismatch   = errors.New("object header checksum mismatch")
	ErrMessageTooLarge    = errors.New("header message exceeds 65535 bytes")
)

// Header is a parsed object header.
type Header struct {
	Version uint8
	Address uint64

	// Size is the number of bytes the first chunk occupies on disk,
	// including prefix and checksum. Only set for version 2 headers.
	Size uint64

	Flags    uint8
	RefCount uint32
	Messages []message.Message
}

// Read parses the object header at address.
func Read(r *binary.Reader, address uint64) (*Header, error) {
	hr := r.At(int64(address))

	peek, err := hr.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("reading object header at %d: %w", address, err)
	}
	if string(peek) == string(SignatureV2) {
		return readV2(hr, address)
	}
	if peek[0] == 1 {
		return readV1(hr, address)
	}
	return nil, fmt.Errorf("%w: unknown format at address %d", ErrInvalidHeader, address)
}

// GetMessage returns the first message of the given type, or nil.
func (h *Header) GetMessage(typ message.Type) message.Message {
	for _, msg := range h.Messages {
		if msg.Type() == typ {
			return msg
		}
	}
	return nil
}

// GetMessages returns all messages of the given type.
func (h *Header) GetMessages(typ message.Type) []message.Message {
	var result []message.Message
	for _, msg := range h.Messages {
		if msg.Type() == typ {
			result = append(result, msg)
		}
	}
	return result
}

func (h *Header) Dataspace() *message.Dataspace {
	ds, _ := h.GetMessage(message.TypeDataspace).(*message.Dataspace)
	return ds
}

func (h *Header) Datatype() *message.Datatype {
	dt, _ := h.GetMessage(message.TypeDatatype).(*message.Datatype)
	return dt
}

func (h *Header) DataLayout() *message.DataLayout {
	l, _ := h.GetMessage(message.TypeDataLayout).(*message.DataLayout)
	return l
}

func (h *Header) SymbolTable() *message.SymbolTable {
	st, _ := h.GetMessage(message.TypeSymbolTable).(*message.SymbolTable)
	return st
}

func (h *Header) LinkInfo() *message.LinkInfo {
	li, _ := h.GetMessage(message.TypeLinkInfo).(*message.LinkInfo)
	return li
}

// Attributes returns all attribute messages in header order.
func (h *Header) Attributes() []*message.Attribute {
	var attrs []*message.Attribute
	for _, msg := range h.Messages {
		if a, ok := msg.(*message.Attribute); ok {
			attrs = append(attrs, a)
		}
	}
	return attrs
}

// Links returns all link messages in header order.
func (h *Header) Links() []*message.Link {
	var links []*message.Link
	for _, msg := range h.Messages {
		if l, ok := msg.(*message.Link); ok {
			links = append(links, l)
		}
	}
	return links
}

// IsGroup reports whether the header describes a group.
func (h *Header) IsGroup() bool {
	return h.GetMessage(message.TypeLinkInfo) != nil ||
		h.GetMessage(message.TypeSymbolTable) != nil ||
		(h.GetMessage(message.TypeLink) != nil && h.DataLayout() == nil)
}

// IsDataset reports whether the header describes a dataset.
func (h *Header) IsDataset() bool {
	return h.DataLayout() != nil && h.Dataspace() != nil
}
