package chat

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/objectiveSquid/Chat-site/pkg/bufpool"
)

// PacketSocket frames packets over a single net.Conn. Receives are owned by
// one goroutine at a time; sends may come from several and are serialized so
// frames never interleave on the wire.
type PacketSocket struct {
	conn   net.Conn
	widths Widths

	// header is scratch for Receive, reused across frames under the
	// single-receiver rule above.
	header []byte

	sendMu sync.Mutex
}

// NewPacketSocket wraps an established connection. The widths must match
// the peer's configuration exactly or neither side will frame correctly.
func NewPacketSocket(conn net.Conn, w Widths) *PacketSocket {
	return &PacketSocket{
		conn:   conn,
		widths: w,
		header: make([]byte, w.HeaderSize()),
	}
}

// Send encodes the frame and writes it in a single call. net.Conn.Write
// returns only once the whole buffer is accepted, so a nil error means the
// full frame was handed to the transport.
func (s *PacketSocket) Send(f Frame) error {
	buf, err := f.Encode(s.widths)
	if err != nil {
		return err
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if _, err := s.conn.Write(buf); err != nil {
		return fmt.Errorf("write %s frame: %w", f.Packet.Type(), err)
	}
	return nil
}

// Receive reads exactly one frame.
//
// A connection that closes cleanly between frames yields ErrConnectionReset.
// A read deadline expiring before the first header byte leaves the stream
// aligned and returns the deadline error untouched, so the caller may retry.
// Any failure after the first byte wraps ErrTruncatedFrame: a half-read
// frame is not resumable and the session must be torn down.
//
// A well-formed frame with an unregistered tag returns the frame id together
// with ErrUnknownPacketType; its body has been drained, so the caller may
// answer and keep the session alive.
func (s *PacketSocket) Receive() (Frame, error) {
	header := s.header
	n, err := io.ReadFull(s.conn, header)
	if err != nil {
		if n == 0 {
			if errors.Is(err, io.EOF) {
				return Frame{}, ErrConnectionReset
			}
			return Frame{}, fmt.Errorf("read frame header: %w", err)
		}
		return Frame{}, fmt.Errorf("read frame header (%d of %d bytes): %w: %w",
			n, len(header), ErrTruncatedFrame, err)
	}

	off := 0
	id := parseUint(header[off:], s.widths.IDBytes)
	off += s.widths.IDBytes
	tag := parseUint(header[off:], s.widths.TypeBytes)
	off += s.widths.TypeBytes
	length := parseUint(header[off:], s.widths.DataLengthBytes)

	if length > MaxBodyLength {
		return Frame{ID: id}, fmt.Errorf("%d byte(s): %w", length, ErrBodyTooLarge)
	}

	// Decoded packets copy every field out of the body, so the buffer can
	// go back to the pool as soon as Receive returns.
	body := bufpool.Get(int(length))
	defer bufpool.Put(body)
	if length > 0 {
		if n, err := io.ReadFull(s.conn, body); err != nil {
			return Frame{ID: id}, fmt.Errorf("read body (%d of %d bytes): %w: %w",
				n, length, ErrTruncatedFrame, err)
		}
	}

	if tag > uint64(^uint16(0)) {
		return Frame{ID: id}, fmt.Errorf("tag %d: %w", tag, ErrUnknownPacketType)
	}

	pkt, err := DecodeBody(PacketType(tag), body, s.widths)
	if err != nil {
		return Frame{ID: id}, err
	}
	return Frame{ID: id, Packet: pkt}, nil
}

// SetReadDeadline bounds the next Receive. A zero time clears the deadline.
func (s *PacketSocket) SetReadDeadline(t time.Time) error {
	return s.conn.SetReadDeadline(t)
}

// RemoteAddr returns the peer address.
func (s *PacketSocket) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// Close closes the underlying connection. A blocked Receive unblocks with
// an error.
func (s *PacketSocket) Close() error {
	return s.conn.Close()
}
