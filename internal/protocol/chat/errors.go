package chat

import "errors"

// Error kinds surfaced by the codec. Sessions branch on these with
// errors.Is to decide between replying, retrying, and tearing down.
var (
	// ErrConnectionReset reports a zero-byte read where at least one byte
	// was required: the peer closed or reset the connection between frames.
	ErrConnectionReset = errors.New("connection reset by peer")

	// ErrTruncatedFrame reports a connection that died or timed out in the
	// middle of a frame. The stream is no longer aligned and the session
	// must be torn down.
	ErrTruncatedFrame = errors.New("truncated frame")

	// ErrUnknownPacketType reports a well-formed frame whose type tag is
	// not in the registry. The frame id and body have been consumed, so the
	// stream remains aligned and the session may answer and continue.
	ErrUnknownPacketType = errors.New("unknown packet type")

	// ErrInvalidBooleanByte reports a boolean field that was neither 0xFF
	// nor 0x00. Coercing would hide peer bugs; the frame is rejected.
	ErrInvalidBooleanByte = errors.New("invalid boolean byte")

	// ErrBodyTooLarge reports a declared body length above MaxBodyLength.
	ErrBodyTooLarge = errors.New("declared body length too large")

	// ErrTrailingBytes reports body bytes left over after a variant decoded
	// its full payload.
	ErrTrailingBytes = errors.New("trailing bytes after packet body")

	// ErrValueTooWide reports an integer that does not fit the configured
	// field width, e.g. a frame id wider than packet_id_bytes.
	ErrValueTooWide = errors.New("value does not fit configured field width")
)
