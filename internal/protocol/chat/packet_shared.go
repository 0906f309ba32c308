package chat

import "fmt"

// Quit is the last frame a sender ever emits; the socket is closed right
// after it without waiting for a reply, and the receiver never echoes it.
type Quit struct{}

func (Quit) Type() PacketType { return TypeQuit }

func (Quit) appendBody(dst []byte, _ Widths) ([]byte, error) {
	return dst, nil
}

func decodeQuit(body []byte, _ Widths) (Packet, error) {
	if err := newBodyReader(body).expectEmpty(); err != nil {
		return nil, err
	}
	return Quit{}, nil
}

// InvalidPacketType rejects a frame whose type the receiver would not
// accept in its current state. The body enumerates the tags that would have
// been accepted, each encoded at the configured type width.
type InvalidPacketType struct {
	Accepted []PacketType
}

func (InvalidPacketType) Type() PacketType { return TypeInvalidPacketType }

func (p InvalidPacketType) appendBody(dst []byte, w Widths) ([]byte, error) {
	var err error
	for _, t := range p.Accepted {
		if dst, err = appendUint(dst, uint64(t), w.TypeBytes); err != nil {
			return dst, err
		}
	}
	return dst, nil
}

func decodeInvalidPacketType(body []byte, w Widths) (Packet, error) {
	if len(body)%w.TypeBytes != 0 {
		return nil, fmt.Errorf("accepted-type list of %d byte(s) with %d-byte tags: %w",
			len(body), w.TypeBytes, ErrTruncatedFrame)
	}
	var accepted []PacketType
	for off := 0; off < len(body); off += w.TypeBytes {
		tag := parseUint(body[off:], w.TypeBytes)
		if tag > uint64(^uint16(0)) {
			return nil, fmt.Errorf("accepted tag %d: %w", tag, ErrValueTooWide)
		}
		accepted = append(accepted, PacketType(tag))
	}
	return InvalidPacketType{Accepted: accepted}, nil
}
