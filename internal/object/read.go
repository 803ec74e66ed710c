package object

import (
	"fmt"

	"github.com/robert-malhotra/h5frame/internal/binary"
	"github.com/robert-malhotra/h5frame/internal/message"
)

/*
Version 1 object header:

	0   1  Version (1)
	1   1  Reserved
	2   2  Number of header messages
	4   4  Object reference count
	8   4  Object header size
	16  *  Messages, 8-byte aligned: type (2), size (2), flags (1),
	       reserved (3), data
*/
func readV1(r *binary.Reader, address uint64) (*Header, error) {
	if _, err := r.ReadUint8(); err != nil {
		return nil, err
	}
	r.Skip(1)
	numMessages, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	refCount, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	size, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	r.Align(8)

	hdr := &Header{
		Version:  1,
		Address:  address,
		RefCount: refCount,
		Messages: make([]message.Message, 0, numMessages),
	}
	if err := readV1Messages(r, r.Pos()+int64(size), hdr, 0); err != nil {
		return nil, err
	}
	return hdr, nil
}

func readV1Messages(r *binary.Reader, end int64, hdr *Header, depth int) error {
	if depth > 16 {
		return fmt.Errorf("%w: continuation chain too deep", ErrInvalidHeader)
	}
	for r.Pos()+8 <= end {
		msgType, err := r.ReadUint16()
		if err != nil {
			return err
		}
		dataSize, err := r.ReadUint16()
		if err != nil {
			return err
		}
		flags, err := r.ReadUint8()
		if err != nil {
			return err
		}
		r.Skip(3)
		data, err := r.ReadBytes(int(dataSize))
		if err != nil {
			return err
		}
		r.Align(8)

		if err := addMessage(r, hdr, message.Type(msgType), flags, data, func(c *message.Continuation) error {
			return readV1Messages(r.At(int64(c.Offset)), int64(c.Offset+c.Length), hdr, depth+1)
		}); err != nil {
			return err
		}
	}
	return nil
}

/*
Version 2 object header:

	0  4  Signature "OHDR"
	4  1  Version (2)
	5  1  Flags: bits 0-1 size of chunk size field, bit 2 creation order
	      tracked, bit 4 attribute phase change values, bit 5 times stored
	6  *  Optional times (16) and phase change values (4)
	*  *  Size of chunk 0
	*  *  Messages: type (1), size (2), flags (1), [creation order (2)], data
	*  4  Checksum over everything before it
*/
func readV2(r *binary.Reader, address uint64) (*Header, error) {
	r.Skip(4)
	version, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	if version != 2 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	flags, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	if flags&0x20 != 0 {
		r.Skip(16)
	}
	if flags&0x10 != 0 {
		r.Skip(4)
	}
	chunkSize, err := r.ReadUintN(1 << (flags & 0x03))
	if err != nil {
		return nil, err
	}

	end := r.Pos() + int64(chunkSize)
	if err := verifyChecksum(r, int64(address), end); err != nil {
		return nil, err
	}

	hdr := &Header{
		Version: 2,
		Address: address,
		Size:    uint64(end+4) - address,
		Flags:   flags,
	}
	if err := readV2Messages(r, end, flags&0x04 != 0, hdr, 0); err != nil {
		return nil, err
	}
	return hdr, nil
}

func readV2Messages(r *binary.Reader, end int64, creationOrder bool, hdr *Header, depth int) error {
	if depth > 16 {
		return fmt.Errorf("%w: continuation chain too deep", ErrInvalidHeader)
	}
	prefix := int64(4)
	if creationOrder {
		prefix += 2
	}
	// Fewer bytes than a message prefix is a gap.
	for r.Pos()+prefix <= end {
		msgType, err := r.ReadUint8()
		if err != nil {
			return err
		}
		dataSize, err := r.ReadUint16()
		if err != nil {
			return err
		}
		flags, err := r.ReadUint8()
		if err != nil {
			return err
		}
		if creationOrder {
			r.Skip(2)
		}
		data, err := r.ReadBytes(int(dataSize))
		if err != nil {
			return err
		}

		if err := addMessage(r, hdr, message.Type(msgType), flags, data, func(c *message.Continuation) error {
			cr := r.At(int64(c.Offset))
			sig, err := cr.ReadBytes(4)
			if err != nil {
				return err
			}
			if string(sig) != string(SignatureContinuation) {
				return fmt.Errorf("%w: bad continuation signature %q", ErrInvalidHeader, sig)
			}
			cend := int64(c.Offset+c.Length) - 4
			if err := verifyChecksum(r, int64(c.Offset), cend); err != nil {
				return err
			}
			return readV2Messages(cr, cend, creationOrder, hdr, depth+1)
		}); err != nil {
			return err
		}
	}
	return nil
}

// addMessage parses one message body and appends it to hdr. NIL messages
// are dropped, shared messages are kept opaque and continuations are
// followed through cont.
func addMessage(r *binary.Reader, hdr *Header, typ message.Type, flags uint8, data []byte,
	cont func(*message.Continuation) error) error {
	if typ == message.TypeNIL {
		return nil
	}
	if typ == message.TypeObjectHeaderContinuation {
		c, err := message.ParseContinuation(data, r)
		if err != nil {
			return err
		}
		return cont(c)
	}
	if flags&0x02 != 0 {
		hdr.Messages = append(hdr.Messages, message.NewUnknown(typ, data))
		return nil
	}
	msg, err := message.Parse(typ, data, r)
	if err != nil {
		return fmt.Errorf("object header at %d: %w", hdr.Address, err)
	}
	hdr.Messages = append(hdr.Messages, msg)
	return nil
}

// verifyChecksum checks the lookup3 checksum stored at end against the
// bytes in [start, end).
func verifyChecksum(r *binary.Reader, start, end int64) error {
	if end < start {
		return fmt.Errorf("%w: negative chunk size", ErrInvalidHeader)
	}
	data, err := r.At(start).ReadBytes(int(end - start + 4))
	if err != nil {
		return err
	}
	n := len(data) - 4
	stored := r.ByteOrder().Uint32(data[n:])
	if !binary.VerifyLookup3(data[:n], stored) {
		return fmt.Errorf("%w at address %d", ErrChecksumMismatch, start)
	}
	return nil
}
