// Package chat implements the binary chat protocol: a fixed-width frame
// header (id, type, data length — all unsigned big-endian) followed by a
// variant-specific body, with the header field widths drawn from shared
// configuration so both peers agree byte-for-byte.
package chat

import (
	"encoding/binary"
	"fmt"
)

// MaxBodyLength bounds the declared body size of a single frame. Anything
// larger is treated as a protocol violation rather than an allocation.
const MaxBodyLength = 16 << 20 // 16 MiB

// Widths holds the configured byte widths of the three frame header fields.
// Both peers must be configured identically; the widths are fixed for the
// process lifetime.
type Widths struct {
	IDBytes         int
	TypeBytes       int
	DataLengthBytes int
}

// DefaultWidths matches the documented default header layout.
var DefaultWidths = Widths{IDBytes: 4, TypeBytes: 2, DataLengthBytes: 4}

// HeaderSize returns the total size in bytes of a frame header.
func (w Widths) HeaderSize() int {
	return w.IDBytes + w.TypeBytes + w.DataLengthBytes
}

// Validate checks that every field width is expressible. Type tags reach
// 305, so the type field needs at least two bytes.
func (w Widths) Validate() error {
	check := func(name string, v int) error {
		if v < 1 || v > 8 {
			return fmt.Errorf("%s must be between 1 and 8 bytes, got %d", name, v)
		}
		return nil
	}
	if err := check("packet_id_bytes", w.IDBytes); err != nil {
		return err
	}
	if err := check("packet_type_bytes", w.TypeBytes); err != nil {
		return err
	}
	if err := check("packet_data_length_bytes", w.DataLengthBytes); err != nil {
		return err
	}
	if w.TypeBytes < 2 {
		return fmt.Errorf("packet_type_bytes must be at least 2, got %d", w.TypeBytes)
	}
	return nil
}

// maxUintFor returns the largest unsigned value representable in width bytes.
func maxUintFor(width int) uint64 {
	if width >= 8 {
		return ^uint64(0)
	}
	return (uint64(1) << (8 * width)) - 1
}

// appendUint appends v as a width-byte unsigned big-endian integer.
func appendUint(dst []byte, v uint64, width int) ([]byte, error) {
	if v > maxUintFor(width) {
		return dst, fmt.Errorf("%d exceeds %d byte(s): %w", v, width, ErrValueTooWide)
	}
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(dst, tmp[8-width:]...), nil
}

// parseUint reads a width-byte unsigned big-endian integer from src.
// src must be at least width bytes long.
func parseUint(src []byte, width int) uint64 {
	var tmp [8]byte
	copy(tmp[8-width:], src[:width])
	return binary.BigEndian.Uint64(tmp[:])
}

// Boolean wire bytes. Anything else is a protocol violation.
const (
	boolTrue  = 0xFF
	boolFalse = 0x00
)

func appendBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, boolTrue)
	}
	return append(dst, boolFalse)
}

// ============================================================================
// Body reader
// ============================================================================

// bodyReader is a cursor over a fully-received packet body. Every read is
// bounds-checked; running past the end means the peer declared a body that
// does not hold the fields its type requires.
type bodyReader struct {
	buf []byte
	off int
}

func newBodyReader(body []byte) *bodyReader {
	return &bodyReader{buf: body}
}

func (r *bodyReader) remaining() int {
	return len(r.buf) - r.off
}

func (r *bodyReader) take(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, fmt.Errorf("need %d byte(s), %d left: %w", n, r.remaining(), ErrTruncatedFrame)
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *bodyReader) readU8() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *bodyReader) readU16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *bodyReader) readU64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// readString16 reads a u16 length prefix followed by that many UTF-8 bytes.
func (r *bodyReader) readString16() (string, error) {
	n, err := r.readU16()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// readBool reads one strict boolean byte (0xFF or 0x00).
func (r *bodyReader) readBool() (bool, error) {
	b, err := r.readU8()
	if err != nil {
		return false, err
	}
	switch b {
	case boolTrue:
		return true, nil
	case boolFalse:
		return false, nil
	default:
		return false, fmt.Errorf("0x%02X: %w", b, ErrInvalidBooleanByte)
	}
}

// readRemainder consumes and returns everything left in the body.
func (r *bodyReader) readRemainder() []byte {
	b := r.buf[r.off:]
	r.off = len(r.buf)
	return b
}

// expectEmpty fails if the variant decoder left bytes unconsumed.
func (r *bodyReader) expectEmpty() error {
	if r.remaining() != 0 {
		return fmt.Errorf("%d byte(s) left: %w", r.remaining(), ErrTrailingBytes)
	}
	return nil
}

// ============================================================================
// Body writer helpers
// ============================================================================

func appendU16(dst []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(dst, v)
}

func appendU64(dst []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(dst, v)
}

// appendString16 appends a u16 length prefix and the string bytes.
func appendString16(dst []byte, s string) ([]byte, error) {
	if len(s) > int(^uint16(0)) {
		return dst, fmt.Errorf("string of %d bytes: %w", len(s), ErrValueTooWide)
	}
	dst = appendU16(dst, uint16(len(s)))
	return append(dst, s...), nil
}
