package logger

import (
	"log/slog"
)

// Field keys shared by the server and client binaries. Logging through
// these constants keeps the vocabulary identical on both sides, so one
// query works against either log stream.
const (
	// Tracing correlation.
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// Wire protocol.
	KeyPacket   = "packet"    // packet type name: ClientAuthenticate, Quit, ...
	KeyPacketID = "packet_id" // correlation id of the frame
	KeyBodyLen  = "body_len"  // declared body length of a frame

	// Sessions and connections.
	KeySessionID  = "session_id"
	KeyClientIP   = "client_ip"
	KeyClientPort = "client_port"
	KeyRemoteAddr = "remote_addr" // full remote address as dialed/accepted
	KeyListenAddr = "listen_addr" // address the acceptor is bound to

	// Chat domain.
	KeyUsername = "username" // authenticated username
	KeyPeer     = "peer"     // the other user in a relation or conversation
	KeyEvent    = "event"    // input/output event type name
	KeyEventID  = "event_id"

	// Store.
	KeyStoreType = "store_type" // sqlite, postgres, badger
	KeyDatabase  = "database"   // database path or DSN host

	// Operation metadata.
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyCount      = "count"
)

// Typed attr constructors. Prefer these over raw key/value pairs where a
// field has a fixed type.

func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

func Packet(name string) slog.Attr {
	return slog.String(KeyPacket, name)
}

func PacketID(id uint64) slog.Attr {
	return slog.Uint64(KeyPacketID, id)
}

func SessionID(id string) slog.Attr {
	return slog.String(KeySessionID, id)
}

func ClientIP(ip string) slog.Attr {
	return slog.String(KeyClientIP, ip)
}

func Username(name string) slog.Attr {
	return slog.String(KeyUsername, name)
}

func Peer(name string) slog.Attr {
	return slog.String(KeyPeer, name)
}

func Event(name string) slog.Attr {
	return slog.String(KeyEvent, name)
}

func EventID(id uint64) slog.Attr {
	return slog.Uint64(KeyEventID, id)
}

func StoreType(t string) slog.Attr {
	return slog.String(KeyStoreType, t)
}

func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err wraps a non-nil error as an error field; nil yields an empty attr
// that the text handler drops.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}
