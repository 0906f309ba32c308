package chat

import "fmt"

// Relation is one user's directed view of another as it travels on the
// wire. Friendship is symmetric and stored as two mirror rows; blocking
// belongs to the row owner.
type Relation struct {
	FirstUsername      string
	SecondaryUsername  string
	FirstIsFriend      bool
	SecondaryIsFriend  bool
	SecondaryIsBlocked bool
}

// Message is one immutable chat message as it travels on the wire.
// TimeSent is a Unix epoch second assigned by the server.
type Message struct {
	Sender   string
	Receiver string
	TimeSent uint64
	Content  string
}

// ServerAuthenticate answers ClientAuthenticate. Username is filled only on
// success.
type ServerAuthenticate struct {
	Success  bool
	Username string
}

func (ServerAuthenticate) Type() PacketType { return TypeServerAuthenticate }

func (p ServerAuthenticate) appendBody(dst []byte, _ Widths) ([]byte, error) {
	if p.Success == (p.Username == "") {
		return dst, fmt.Errorf("authenticate response: success=%t with username %q", p.Success, p.Username)
	}
	dst = appendBool(dst, p.Success)
	return append(dst, p.Username...), nil
}

func decodeServerAuthenticate(body []byte, _ Widths) (Packet, error) {
	r := newBodyReader(body)
	success, err := r.readBool()
	if err != nil {
		return nil, err
	}
	return ServerAuthenticate{
		Success:  success,
		Username: string(r.readRemainder()),
	}, nil
}

// ServerGetRelations answers ClientGetRelations with every relation row
// owned by the requesting user.
type ServerGetRelations struct {
	Relations []Relation
}

func (ServerGetRelations) Type() PacketType { return TypeServerGetRelations }

func (p ServerGetRelations) appendBody(dst []byte, _ Widths) ([]byte, error) {
	var err error
	for _, rel := range p.Relations {
		if dst, err = appendString16(dst, rel.FirstUsername); err != nil {
			return dst, err
		}
		if dst, err = appendString16(dst, rel.SecondaryUsername); err != nil {
			return dst, err
		}
		dst = appendBool(dst, rel.FirstIsFriend)
		dst = appendBool(dst, rel.SecondaryIsFriend)
		dst = appendBool(dst, rel.SecondaryIsBlocked)
	}
	return dst, nil
}

func decodeServerGetRelations(body []byte, _ Widths) (Packet, error) {
	r := newBodyReader(body)
	var relations []Relation
	for r.remaining() > 0 {
		var rel Relation
		var err error
		if rel.FirstUsername, err = r.readString16(); err != nil {
			return nil, err
		}
		if rel.SecondaryUsername, err = r.readString16(); err != nil {
			return nil, err
		}
		if rel.FirstIsFriend, err = r.readBool(); err != nil {
			return nil, err
		}
		if rel.SecondaryIsFriend, err = r.readBool(); err != nil {
			return nil, err
		}
		if rel.SecondaryIsBlocked, err = r.readBool(); err != nil {
			return nil, err
		}
		relations = append(relations, rel)
	}
	return ServerGetRelations{Relations: relations}, nil
}

// ServerGetMessages answers ClientGetMessages with the matching
// conversation slice, oldest first.
type ServerGetMessages struct {
	Messages []Message
}

func (ServerGetMessages) Type() PacketType { return TypeServerGetMessages }

func (p ServerGetMessages) appendBody(dst []byte, _ Widths) ([]byte, error) {
	var err error
	for _, msg := range p.Messages {
		if dst, err = appendString16(dst, msg.Sender); err != nil {
			return dst, err
		}
		if dst, err = appendString16(dst, msg.Receiver); err != nil {
			return dst, err
		}
		dst = appendU64(dst, msg.TimeSent)
		dst = appendU64(dst, uint64(len(msg.Content)))
		dst = append(dst, msg.Content...)
	}
	return dst, nil
}

func decodeServerGetMessages(body []byte, _ Widths) (Packet, error) {
	r := newBodyReader(body)
	var messages []Message
	for r.remaining() > 0 {
		var msg Message
		var err error
		if msg.Sender, err = r.readString16(); err != nil {
			return nil, err
		}
		if msg.Receiver, err = r.readString16(); err != nil {
			return nil, err
		}
		if msg.TimeSent, err = r.readU64(); err != nil {
			return nil, err
		}
		contentLen, err := r.readU64()
		if err != nil {
			return nil, err
		}
		if contentLen > uint64(r.remaining()) {
			return nil, fmt.Errorf("message content of %d byte(s), %d left: %w",
				contentLen, r.remaining(), ErrTruncatedFrame)
		}
		content, err := r.take(int(contentLen))
		if err != nil {
			return nil, err
		}
		msg.Content = string(content)
		messages = append(messages, msg)
	}
	return ServerGetMessages{Messages: messages}, nil
}

// ServerAddFriend answers ClientAddFriend. Success is false when the target
// does not exist or the user tried to befriend themselves.
type ServerAddFriend struct {
	Success bool
}

func (ServerAddFriend) Type() PacketType { return TypeServerAddFriend }

func (p ServerAddFriend) appendBody(dst []byte, _ Widths) ([]byte, error) {
	return appendBool(dst, p.Success), nil
}

func decodeServerAddFriend(body []byte, _ Widths) (Packet, error) {
	r := newBodyReader(body)
	success, err := r.readBool()
	if err != nil {
		return nil, err
	}
	if err := r.expectEmpty(); err != nil {
		return nil, err
	}
	return ServerAddFriend{Success: success}, nil
}

// ServerRemoveFriend acknowledges ClientRemoveFriend. The body is empty.
type ServerRemoveFriend struct{}

func (ServerRemoveFriend) Type() PacketType { return TypeServerRemoveFriend }

func (ServerRemoveFriend) appendBody(dst []byte, _ Widths) ([]byte, error) {
	return dst, nil
}

func decodeServerRemoveFriend(body []byte, _ Widths) (Packet, error) {
	if err := newBodyReader(body).expectEmpty(); err != nil {
		return nil, err
	}
	return ServerRemoveFriend{}, nil
}

// ServerSendMessage acknowledges ClientSendMessage. The body is empty.
type ServerSendMessage struct{}

func (ServerSendMessage) Type() PacketType { return TypeServerSendMessage }

func (ServerSendMessage) appendBody(dst []byte, _ Widths) ([]byte, error) {
	return dst, nil
}

func decodeServerSendMessage(body []byte, _ Widths) (Packet, error) {
	if err := newBodyReader(body).expectEmpty(); err != nil {
		return nil, err
	}
	return ServerSendMessage{}, nil
}
