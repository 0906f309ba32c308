package chat

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
)

// Packet is one typed unit on the wire. The body codec methods are
// unexported so the variant set stays closed: every tag on the wire maps to
// exactly one type in this package.
type Packet interface {
	Type() PacketType

	// appendBody appends the variant's wire body to dst.
	appendBody(dst []byte, w Widths) ([]byte, error)
}

// Frame pairs a correlation id with a packet. Responses carry the id of the
// request they answer, verbatim.
type Frame struct {
	ID     uint64
	Packet Packet
}

// NewFrameID draws a uniformly random id of the configured width.
// Senders pick ids; receivers only echo them.
func NewFrameID(w Widths) (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[8-w.IDBytes:]); err != nil {
		return 0, fmt.Errorf("generate frame id: %w", err)
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

// Encode serializes the frame as id ‖ type ‖ data_length ‖ body.
func (f Frame) Encode(w Widths) ([]byte, error) {
	if f.Packet == nil {
		return nil, errors.New("encode frame: nil packet")
	}

	body, err := f.Packet.appendBody(make([]byte, 0, 64), w)
	if err != nil {
		return nil, fmt.Errorf("encode %s body: %w", f.Packet.Type(), err)
	}
	if len(body) > MaxBodyLength {
		return nil, fmt.Errorf("%s body of %d bytes: %w", f.Packet.Type(), len(body), ErrBodyTooLarge)
	}

	buf := make([]byte, 0, w.HeaderSize()+len(body))
	if buf, err = appendUint(buf, f.ID, w.IDBytes); err != nil {
		return nil, fmt.Errorf("encode frame id: %w", err)
	}
	if buf, err = appendUint(buf, uint64(f.Packet.Type()), w.TypeBytes); err != nil {
		return nil, fmt.Errorf("encode frame type: %w", err)
	}
	if buf, err = appendUint(buf, uint64(len(body)), w.DataLengthBytes); err != nil {
		return nil, fmt.Errorf("encode frame data length: %w", err)
	}
	return append(buf, body...), nil
}
