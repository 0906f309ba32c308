package chat

import "fmt"

// bodyDecoder turns a fully-received body into a typed packet.
type bodyDecoder func(body []byte, w Widths) (Packet, error)

// packetRegistry is the static bijection between type tags and variants.
// Both directions are covered by tests: every tag decodes, and every
// variant's Type() points back at its own entry.
var packetRegistry = map[PacketType]bodyDecoder{
	TypeClientAuthenticate: decodeClientAuthenticate,
	TypeClientGetRelations: decodeClientGetRelations,
	TypeClientGetMessages:  decodeClientGetMessages,
	TypeClientAddFriend:    decodeClientAddFriend,
	TypeClientRemoveFriend: decodeClientRemoveFriend,
	TypeClientSendMessage:  decodeClientSendMessage,

	TypeQuit:              decodeQuit,
	TypeInvalidPacketType: decodeInvalidPacketType,

	TypeServerAuthenticate: decodeServerAuthenticate,
	TypeServerGetRelations: decodeServerGetRelations,
	TypeServerGetMessages:  decodeServerGetMessages,
	TypeServerAddFriend:    decodeServerAddFriend,
	TypeServerRemoveFriend: decodeServerRemoveFriend,
	TypeServerSendMessage:  decodeServerSendMessage,
}

// RegisteredTypes returns every tag in the registry. Useful for exhaustive
// tests and diagnostics; the order is unspecified.
func RegisteredTypes() []PacketType {
	types := make([]PacketType, 0, len(packetRegistry))
	for t := range packetRegistry {
		types = append(types, t)
	}
	return types
}

// DecodeBody resolves the variant for tag and decodes body into it.
func DecodeBody(tag PacketType, body []byte, w Widths) (Packet, error) {
	decode, ok := packetRegistry[tag]
	if !ok {
		return nil, fmt.Errorf("tag %d: %w", uint16(tag), ErrUnknownPacketType)
	}
	pkt, err := decode(body, w)
	if err != nil {
		return nil, fmt.Errorf("decode %s body: %w", tag, err)
	}
	return pkt, nil
}
