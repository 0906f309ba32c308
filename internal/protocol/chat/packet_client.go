package chat

// ClientAuthenticate opens every session: the raw account token, nothing
// else. The server answers with ServerAuthenticate before any other request
// is accepted.
type ClientAuthenticate struct {
	Token string
}

func (ClientAuthenticate) Type() PacketType { return TypeClientAuthenticate }

func (p ClientAuthenticate) appendBody(dst []byte, _ Widths) ([]byte, error) {
	return append(dst, p.Token...), nil
}

func decodeClientAuthenticate(body []byte, _ Widths) (Packet, error) {
	return ClientAuthenticate{Token: string(body)}, nil
}

// ClientGetRelations asks for every relation row owned by the
// authenticated user. The body is empty.
type ClientGetRelations struct{}

func (ClientGetRelations) Type() PacketType { return TypeClientGetRelations }

func (ClientGetRelations) appendBody(dst []byte, _ Widths) ([]byte, error) {
	return dst, nil
}

func decodeClientGetRelations(body []byte, _ Widths) (Packet, error) {
	if err := newBodyReader(body).expectEmpty(); err != nil {
		return nil, err
	}
	return ClientGetRelations{}, nil
}

// ClientGetMessages asks for the conversation with Username. After is a
// look-back window in seconds; 0 means the entire history.
type ClientGetMessages struct {
	Username string
	After    uint64
}

func (ClientGetMessages) Type() PacketType { return TypeClientGetMessages }

func (p ClientGetMessages) appendBody(dst []byte, _ Widths) ([]byte, error) {
	dst, err := appendString16(dst, p.Username)
	if err != nil {
		return dst, err
	}
	return appendU64(dst, p.After), nil
}

func decodeClientGetMessages(body []byte, _ Widths) (Packet, error) {
	r := newBodyReader(body)
	name, err := r.readString16()
	if err != nil {
		return nil, err
	}
	after, err := r.readU64()
	if err != nil {
		return nil, err
	}
	if err := r.expectEmpty(); err != nil {
		return nil, err
	}
	return ClientGetMessages{Username: name, After: after}, nil
}

// ClientAddFriend marks Username as a friend of the authenticated user.
type ClientAddFriend struct {
	Username string
}

func (ClientAddFriend) Type() PacketType { return TypeClientAddFriend }

func (p ClientAddFriend) appendBody(dst []byte, _ Widths) ([]byte, error) {
	return append(dst, p.Username...), nil
}

func decodeClientAddFriend(body []byte, _ Widths) (Packet, error) {
	return ClientAddFriend{Username: string(body)}, nil
}

// ClientRemoveFriend clears the friendship with Username in both
// directions.
type ClientRemoveFriend struct {
	Username string
}

func (ClientRemoveFriend) Type() PacketType { return TypeClientRemoveFriend }

func (p ClientRemoveFriend) appendBody(dst []byte, _ Widths) ([]byte, error) {
	return append(dst, p.Username...), nil
}

func decodeClientRemoveFriend(body []byte, _ Widths) (Packet, error) {
	return ClientRemoveFriend{Username: string(body)}, nil
}

// ClientSendMessage delivers Content to Receiver. The content fills the
// remainder of the body, so only the receiver name carries a length prefix.
type ClientSendMessage struct {
	Receiver string
	Content  string
}

func (ClientSendMessage) Type() PacketType { return TypeClientSendMessage }

func (p ClientSendMessage) appendBody(dst []byte, _ Widths) ([]byte, error) {
	dst, err := appendString16(dst, p.Receiver)
	if err != nil {
		return dst, err
	}
	return append(dst, p.Content...), nil
}

func decodeClientSendMessage(body []byte, _ Widths) (Packet, error) {
	r := newBodyReader(body)
	receiver, err := r.readString16()
	if err != nil {
		return nil, err
	}
	return ClientSendMessage{
		Receiver: receiver,
		Content:  string(r.readRemainder()),
	}, nil
}
