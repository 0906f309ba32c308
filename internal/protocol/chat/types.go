package chat

import "fmt"

// PacketType is the numeric tag selecting a packet variant. Tags are
// globally unique and partitioned by origin: client requests in the 100
// range, shared packets in the 200 range, server responses in the 300 range.
type PacketType uint16

const (
	TypeClientAuthenticate PacketType = 100
	TypeClientGetRelations PacketType = 101
	TypeClientGetMessages  PacketType = 102
	TypeClientAddFriend    PacketType = 103
	TypeClientRemoveFriend PacketType = 104
	TypeClientSendMessage  PacketType = 105

	TypeQuit              PacketType = 200
	TypeInvalidPacketType PacketType = 201

	TypeServerAuthenticate PacketType = 300
	TypeServerGetRelations PacketType = 301
	TypeServerGetMessages  PacketType = 302
	TypeServerAddFriend    PacketType = 303
	TypeServerRemoveFriend PacketType = 304
	TypeServerSendMessage  PacketType = 305
)

// responseOffset separates a client request tag from its paired server
// response tag.
const responseOffset = 200

func (t PacketType) String() string {
	switch t {
	case TypeClientAuthenticate:
		return "ClientAuthenticate"
	case TypeClientGetRelations:
		return "ClientGetRelations"
	case TypeClientGetMessages:
		return "ClientGetMessages"
	case TypeClientAddFriend:
		return "ClientAddFriend"
	case TypeClientRemoveFriend:
		return "ClientRemoveFriend"
	case TypeClientSendMessage:
		return "ClientSendMessage"
	case TypeQuit:
		return "Quit"
	case TypeInvalidPacketType:
		return "InvalidPacketType"
	case TypeServerAuthenticate:
		return "ServerAuthenticate"
	case TypeServerGetRelations:
		return "ServerGetRelations"
	case TypeServerGetMessages:
		return "ServerGetMessages"
	case TypeServerAddFriend:
		return "ServerAddFriend"
	case TypeServerRemoveFriend:
		return "ServerRemoveFriend"
	case TypeServerSendMessage:
		return "ServerSendMessage"
	default:
		return fmt.Sprintf("PacketType(%d)", uint16(t))
	}
}

// IsClientRequest reports whether the tag is in the client request range.
func (t PacketType) IsClientRequest() bool {
	return t >= TypeClientAuthenticate && t <= TypeClientSendMessage
}

// IsServerResponse reports whether the tag is in the server response range.
func (t PacketType) IsServerResponse() bool {
	return t >= TypeServerAuthenticate && t <= TypeServerSendMessage
}

// IsShared reports whether the tag may be sent by either peer.
func (t PacketType) IsShared() bool {
	return t == TypeQuit || t == TypeInvalidPacketType
}

// Response returns the server response tag paired with a client request
// tag. ok is false for tags outside the request range.
func (t PacketType) Response() (PacketType, bool) {
	if !t.IsClientRequest() {
		return 0, false
	}
	return t + responseOffset, true
}

// Request returns the client request tag paired with a server response tag.
func (t PacketType) Request() (PacketType, bool) {
	if !t.IsServerResponse() {
		return 0, false
	}
	return t - responseOffset, true
}
