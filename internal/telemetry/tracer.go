package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on chat spans. Client and user keys follow the
// OpenTelemetry semantic conventions; packet, auth and store keys are this
// protocol's own vocabulary.
const (
	// Connection.
	AttrClientAddr = "client.address"

	// Session and packets.
	AttrSessionID = "session.id"
	AttrPacket    = "packet.type"
	AttrPacketID  = "packet.id"

	// Users.
	AttrUsername = "user.name"
	AttrPeer     = "peer.name"

	// Authentication.
	AttrAuthAccepted = "auth.accepted"

	// Store calls.
	AttrStoreOperation = "store.operation"
	AttrStoreType      = "store.type"

	// Result sizes.
	AttrMessageCount  = "messages.count"
	AttrRelationCount = "relations.count"
)

// SpanAuthenticate names the authentication gate span. Request dispatch
// spans are named "chat.<packet>" and store spans "store.<operation>";
// StartPacketSpan and StartStoreSpan build those names.
const SpanAuthenticate = "chat.authenticate"

// Typed attribute constructors, one per key above. Prefer these over raw
// attribute.String calls so key names stay in one place.

func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

func SessionID(id string) attribute.KeyValue {
	return attribute.String(AttrSessionID, id)
}

func Packet(name string) attribute.KeyValue {
	return attribute.String(AttrPacket, name)
}

// PacketID tags a span with the frame's correlation id.
func PacketID(id uint64) attribute.KeyValue {
	return attribute.Int64(AttrPacketID, int64(id))
}

func Username(name string) attribute.KeyValue {
	return attribute.String(AttrUsername, name)
}

// Peer names the other party of a relation or message operation.
func Peer(name string) attribute.KeyValue {
	return attribute.String(AttrPeer, name)
}

func AuthAccepted(accepted bool) attribute.KeyValue {
	return attribute.Bool(AttrAuthAccepted, accepted)
}

func StoreOperation(op string) attribute.KeyValue {
	return attribute.String(AttrStoreOperation, op)
}

func StoreType(t string) attribute.KeyValue {
	return attribute.String(AttrStoreType, t)
}

func MessageCount(n int) attribute.KeyValue {
	return attribute.Int(AttrMessageCount, n)
}

func RelationCount(n int) attribute.KeyValue {
	return attribute.Int(AttrRelationCount, n)
}

// StartPacketSpan opens the dispatch span for one request packet, named
// "chat.<packet>" and tagged with the packet type plus any extra attributes.
func StartPacketSpan(ctx context.Context, packet string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{Packet(packet)}, attrs...)
	return StartSpan(ctx, "chat."+packet, trace.WithAttributes(all...))
}

// StartStoreSpan opens the span for one database call, named
// "store.<operation>".
func StartStoreSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{StoreOperation(operation)}, attrs...)
	return StartSpan(ctx, "store."+operation, trace.WithAttributes(all...))
}
