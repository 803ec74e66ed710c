package object

import (
	"fmt"

	"github.com/robert-malhotra/h5frame/internal/binary"
	"github.com/robert-malhotra/h5frame/internal/message"
)

// MinGroupChunkSize is the minimum chunk size for group object headers.
// It matches what h5py writes.
const MinGroupChunkSize = 120

// Encode builds a version 2 object header holding msgs. The chunk is padded
// with a NIL message up to minChunk bytes. The chunk size field counts the
// messages and padding but not the trailing checksum.
func Encode(cfg binary.Config, msgs []message.Encoder, minChunk int) ([]byte, error) {
	bodies := make([][]byte, len(msgs))
	messagesSize := 0
	for i, msg := range msgs {
		bodies[i] = msg.Encode(cfg)
		if len(bodies[i]) > 0xFFFF {
			return nil, fmt.Errorf("%w: type 0x%04x is %d bytes", ErrMessageTooLarge, uint16(msg.Type()), len(bodies[i]))
		}
		messagesSize += 4 + len(bodies[i])
	}

	chunkSize := max(messagesSize, minChunk)
	padding := chunkSize - messagesSize
	// A NIL message needs its own 4-byte prefix.
	if padding > 0 && padding < 4 {
		padding = 4
		chunkSize = messagesSize + padding
	}

	fieldSize := chunkSizeFieldBytes(chunkSize)
	buf := binary.NewBuffer(6 + fieldSize + chunkSize + 4)
	w := binary.NewWriter(buf, cfg)

	w.WriteBytes(SignatureV2)
	w.WriteUint8(2)
	w.WriteUint8(uint8(log2(fieldSize)))
	w.WriteUintN(uint64(chunkSize), fieldSize)
	for i, msg := range msgs {
		w.WriteUint8(uint8(msg.Type()))
		w.WriteUint16(uint16(len(bodies[i])))
		w.WriteUint8(0)
		w.WriteBytes(bodies[i])
	}
	if padding > 0 {
		w.WriteUint8(uint8(message.TypeNIL))
		w.WriteUint16(uint16(padding - 4))
		w.WriteUint8(0)
		w.WriteZeros(padding - 4)
	}
	w.WriteUint32(binary.Lookup3Checksum(buf.Bytes()))
	return buf.Bytes(), nil
}

func chunkSizeFieldBytes(size int) int {
	switch {
	case size <= 0xFF:
		return 1
	case size <= 0xFFFF:
		return 2
	default:
		return 4
	}
}

func log2(n int) int {
	switch n {
	case 2:
		return 1
	case 4:
		return 2
	case 8:
		return 3
	}
	return 0
}

// NewGroupHeader returns the messages for a group with compact link storage.
func NewGroupHeader(links []*message.Link, attrs ...*message.Attribute) []message.Encoder {
	msgs := make([]message.Encoder, 0, len(links)+len(attrs)+2)
	msgs = append(msgs, message.NewLinkInfo(), &message.GroupInfo{})
	for _, l := range links {
		msgs = append(msgs, l)
	}
	for _, a := range attrs {
		msgs = append(msgs, a)
	}
	return msgs
}

// NewDatasetHeader returns the messages for a dataset followed by its
// attributes.
func NewDatasetHeader(ds *message.Dataspace, dt *message.Datatype, layout *message.DataLayout, attrs ...*message.Attribute) []message.Encoder {
	msgs := []message.Encoder{ds, dt, layout}
	for _, a := range attrs {
		msgs = append(msgs, a)
	}
	return msgs
}
