package server_test

import (
	"testing"
	"time"

	"github.com/objectiveSquid/Chat-site/internal/protocol/chat"
)

func TestAuthenticateSuccess(t *testing.T) {
	srv, st := startServer(t, testAuthTimeout)
	token := addUser(t, st, "alice")

	_, sock := dial(t, srv)
	frame := roundTrip(t, sock, 42, chat.ClientAuthenticate{Token: token})

	if frame.ID != 42 {
		t.Errorf("response id = %d, want 42", frame.ID)
	}
	resp, ok := frame.Packet.(chat.ServerAuthenticate)
	if !ok {
		t.Fatalf("response = %T, want ServerAuthenticate", frame.Packet)
	}
	if !resp.Success {
		t.Error("Success = false, want true")
	}
	if resp.Username != "alice" {
		t.Errorf("Username = %q, want %q", resp.Username, "alice")
	}
}

func TestAuthenticateBadToken(t *testing.T) {
	srv, st := startServer(t, testAuthTimeout)
	addUser(t, st, "alice")

	_, sock := dial(t, srv)
	frame := roundTrip(t, sock, 7, chat.ClientAuthenticate{Token: "not-a-token"})

	if frame.ID != 7 {
		t.Errorf("response id = %d, want 7", frame.ID)
	}
	resp, ok := frame.Packet.(chat.ServerAuthenticate)
	if !ok {
		t.Fatalf("response = %T, want ServerAuthenticate", frame.Packet)
	}
	if resp.Success {
		t.Error("Success = true for a bad token")
	}
	if resp.Username != "" {
		t.Errorf("Username = %q, want empty", resp.Username)
	}

	// The verdict is the last frame; the server hangs up.
	wantClosed(t, sock)
}

func TestAuthenticationTimeout(t *testing.T) {
	srv, _ := startServer(t, 150*time.Millisecond)

	// Connect and send nothing: the gate closes the socket silently.
	_, sock := dial(t, srv)
	wantClosed(t, sock)
}

func TestFirstPacketMustBeAuthenticate(t *testing.T) {
	srv, _ := startServer(t, testAuthTimeout)

	_, sock := dial(t, srv)
	frame := roundTrip(t, sock, 9, chat.Quit{})

	if frame.ID != 9 {
		t.Errorf("response id = %d, want 9", frame.ID)
	}
	reject, ok := frame.Packet.(chat.InvalidPacketType)
	if !ok {
		t.Fatalf("response = %T, want InvalidPacketType", frame.Packet)
	}
	want := []chat.PacketType{chat.TypeClientAuthenticate}
	if len(reject.Accepted) != 1 || reject.Accepted[0] != want[0] {
		t.Errorf("Accepted = %v, want %v", reject.Accepted, want)
	}

	wantClosed(t, sock)
}

func TestUnknownFirstPacketRejected(t *testing.T) {
	srv, _ := startServer(t, testAuthTimeout)

	conn, sock := dial(t, srv)
	writeRawFrame(t, conn, 3, 999, nil)

	frame := receive(t, sock)
	if frame.ID != 3 {
		t.Errorf("response id = %d, want 3", frame.ID)
	}
	reject, ok := frame.Packet.(chat.InvalidPacketType)
	if !ok {
		t.Fatalf("response = %T, want InvalidPacketType", frame.Packet)
	}
	if len(reject.Accepted) != 1 || reject.Accepted[0] != chat.TypeClientAuthenticate {
		t.Errorf("Accepted = %v, want [ClientAuthenticate]", reject.Accepted)
	}

	wantClosed(t, sock)
}

func TestUnknownTypeWhileServing(t *testing.T) {
	srv, st := startServer(t, testAuthTimeout)
	token := addUser(t, st, "alice")

	conn, sock := dial(t, srv)
	authenticate(t, sock, token, "alice")

	writeRawFrame(t, conn, 11, 999, []byte("junk"))

	frame := receive(t, sock)
	if frame.ID != 11 {
		t.Errorf("response id = %d, want 11", frame.ID)
	}
	reject, ok := frame.Packet.(chat.InvalidPacketType)
	if !ok {
		t.Fatalf("response = %T, want InvalidPacketType", frame.Packet)
	}
	want := []chat.PacketType{
		chat.TypeQuit,
		chat.TypeClientGetRelations,
		chat.TypeClientGetMessages,
		chat.TypeClientAddFriend,
		chat.TypeClientRemoveFriend,
		chat.TypeClientSendMessage,
	}
	if len(reject.Accepted) != len(want) {
		t.Fatalf("Accepted = %v, want %v", reject.Accepted, want)
	}
	for i := range want {
		if reject.Accepted[i] != want[i] {
			t.Fatalf("Accepted[%d] = %s, want %s", i, reject.Accepted[i], want[i])
		}
	}

	// The rejection is not fatal: the session keeps serving.
	next := roundTrip(t, sock, 12, chat.ClientGetRelations{})
	if _, ok := next.Packet.(chat.ServerGetRelations); !ok {
		t.Fatalf("follow-up response = %T, want ServerGetRelations", next.Packet)
	}
}

func TestSecondAuthenticateRejected(t *testing.T) {
	srv, st := startServer(t, testAuthTimeout)
	token := addUser(t, st, "alice")

	_, sock := dial(t, srv)
	authenticate(t, sock, token, "alice")

	frame := roundTrip(t, sock, 5, chat.ClientAuthenticate{Token: token})
	reject, ok := frame.Packet.(chat.InvalidPacketType)
	if !ok {
		t.Fatalf("response = %T, want InvalidPacketType", frame.Packet)
	}
	if len(reject.Accepted) == 0 || reject.Accepted[0] != chat.TypeQuit {
		t.Errorf("Accepted = %v, want the serving set", reject.Accepted)
	}

	// Still serving afterwards.
	next := roundTrip(t, sock, 6, chat.ClientGetRelations{})
	if _, ok := next.Packet.(chat.ServerGetRelations); !ok {
		t.Fatalf("follow-up response = %T, want ServerGetRelations", next.Packet)
	}
}

func TestMalformedBodyClosesSession(t *testing.T) {
	srv, st := startServer(t, testAuthTimeout)
	token := addUser(t, st, "alice")

	conn, sock := dial(t, srv)
	authenticate(t, sock, token, "alice")

	// GetRelations carries no body; trailing bytes are a framing fault and
	// the session is torn down without a reply.
	writeRawFrame(t, conn, 13, uint16(chat.TypeClientGetRelations), []byte{0x01})
	wantClosed(t, sock)
}

func TestQuitClosesWithoutEcho(t *testing.T) {
	srv, st := startServer(t, testAuthTimeout)
	token := addUser(t, st, "alice")

	_, sock := dial(t, srv)
	authenticate(t, sock, token, "alice")

	if err := sock.Send(chat.Frame{ID: 99, Packet: chat.Quit{}}); err != nil {
		t.Fatalf("Send(Quit) failed: %v", err)
	}
	wantClosed(t, sock)
}

func TestFriendRoundTrip(t *testing.T) {
	srv, st := startServer(t, testAuthTimeout)
	aliceToken := addUser(t, st, "alice")
	bobToken := addUser(t, st, "bob")

	_, aliceSock := dial(t, srv)
	authenticate(t, aliceSock, aliceToken, "alice")

	frame := roundTrip(t, aliceSock, 2, chat.ClientAddFriend{Username: "bob"})
	add, ok := frame.Packet.(chat.ServerAddFriend)
	if !ok {
		t.Fatalf("response = %T, want ServerAddFriend", frame.Packet)
	}
	if !add.Success {
		t.Fatal("AddFriend(bob) Success = false, want true")
	}

	// Alice owns a row pointing at bob with her own flag set.
	frame = roundTrip(t, aliceSock, 3, chat.ClientGetRelations{})
	rels, ok := frame.Packet.(chat.ServerGetRelations)
	if !ok {
		t.Fatalf("response = %T, want ServerGetRelations", frame.Packet)
	}
	if len(rels.Relations) != 1 {
		t.Fatalf("alice relations = %d, want 1", len(rels.Relations))
	}
	got := rels.Relations[0]
	if got.FirstUsername != "alice" || got.SecondaryUsername != "bob" {
		t.Errorf("relation pair = %s/%s, want alice/bob", got.FirstUsername, got.SecondaryUsername)
	}
	if !got.FirstIsFriend || got.SecondaryIsFriend || got.SecondaryIsBlocked {
		t.Errorf("relation flags = %+v, want only FirstIsFriend", got)
	}

	// Bob sees the mirror row with the counterpart flag set.
	_, bobSock := dial(t, srv)
	authenticate(t, bobSock, bobToken, "bob")

	frame = roundTrip(t, bobSock, 4, chat.ClientGetRelations{})
	rels, ok = frame.Packet.(chat.ServerGetRelations)
	if !ok {
		t.Fatalf("response = %T, want ServerGetRelations", frame.Packet)
	}
	if len(rels.Relations) != 1 {
		t.Fatalf("bob relations = %d, want 1", len(rels.Relations))
	}
	got = rels.Relations[0]
	if got.FirstUsername != "bob" || got.SecondaryUsername != "alice" {
		t.Errorf("relation pair = %s/%s, want bob/alice", got.FirstUsername, got.SecondaryUsername)
	}
	if got.FirstIsFriend || !got.SecondaryIsFriend {
		t.Errorf("relation flags = %+v, want only SecondaryIsFriend", got)
	}
}

func TestAddFriendRejectsSelfAndUnknown(t *testing.T) {
	srv, st := startServer(t, testAuthTimeout)
	token := addUser(t, st, "alice")

	_, sock := dial(t, srv)
	authenticate(t, sock, token, "alice")

	frame := roundTrip(t, sock, 2, chat.ClientAddFriend{Username: "alice"})
	if add := frame.Packet.(chat.ServerAddFriend); add.Success {
		t.Error("AddFriend(self) Success = true, want false")
	}

	frame = roundTrip(t, sock, 3, chat.ClientAddFriend{Username: "nobody"})
	if add := frame.Packet.(chat.ServerAddFriend); add.Success {
		t.Error("AddFriend(unknown user) Success = true, want false")
	}
}

func TestRemoveFriend(t *testing.T) {
	srv, st := startServer(t, testAuthTimeout)
	token := addUser(t, st, "alice")
	addUser(t, st, "bob")

	_, sock := dial(t, srv)
	authenticate(t, sock, token, "alice")

	frame := roundTrip(t, sock, 2, chat.ClientAddFriend{Username: "bob"})
	if add := frame.Packet.(chat.ServerAddFriend); !add.Success {
		t.Fatal("AddFriend(bob) Success = false, want true")
	}

	frame = roundTrip(t, sock, 3, chat.ClientRemoveFriend{Username: "bob"})
	if _, ok := frame.Packet.(chat.ServerRemoveFriend); !ok {
		t.Fatalf("response = %T, want ServerRemoveFriend", frame.Packet)
	}

	// The row survives with its friendship flags cleared.
	frame = roundTrip(t, sock, 4, chat.ClientGetRelations{})
	rels := frame.Packet.(chat.ServerGetRelations)
	if len(rels.Relations) != 1 {
		t.Fatalf("relations = %d, want 1", len(rels.Relations))
	}
	if got := rels.Relations[0]; got.FirstIsFriend || got.SecondaryIsFriend {
		t.Errorf("relation flags after remove = %+v, want none set", got)
	}

	// Removing an absent friendship still acknowledges.
	frame = roundTrip(t, sock, 5, chat.ClientRemoveFriend{Username: "nobody"})
	if _, ok := frame.Packet.(chat.ServerRemoveFriend); !ok {
		t.Fatalf("response = %T, want ServerRemoveFriend", frame.Packet)
	}
}

func TestSendAndGetMessages(t *testing.T) {
	srv, st := startServer(t, testAuthTimeout)
	aliceToken := addUser(t, st, "alice")
	bobToken := addUser(t, st, "bob")

	_, aliceSock := dial(t, srv)
	authenticate(t, aliceSock, aliceToken, "alice")

	before := time.Now().Unix()
	frame := roundTrip(t, aliceSock, 2, chat.ClientSendMessage{Receiver: "bob", Content: "hi bob"})
	if _, ok := frame.Packet.(chat.ServerSendMessage); !ok {
		t.Fatalf("response = %T, want ServerSendMessage", frame.Packet)
	}

	// Bob reads the whole history.
	_, bobSock := dial(t, srv)
	authenticate(t, bobSock, bobToken, "bob")

	frame = roundTrip(t, bobSock, 3, chat.ClientGetMessages{Username: "alice", After: 0})
	msgs, ok := frame.Packet.(chat.ServerGetMessages)
	if !ok {
		t.Fatalf("response = %T, want ServerGetMessages", frame.Packet)
	}
	if len(msgs.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(msgs.Messages))
	}
	got := msgs.Messages[0]
	if got.Sender != "alice" || got.Receiver != "bob" || got.Content != "hi bob" {
		t.Errorf("message = %+v, want alice->bob %q", got, "hi bob")
	}
	if got.TimeSent < uint64(before) || got.TimeSent > uint64(time.Now().Unix()+1) {
		t.Errorf("TimeSent = %d, outside test window starting %d", got.TimeSent, before)
	}

	// A one-hour look-back window covers a message sent moments ago.
	frame = roundTrip(t, bobSock, 4, chat.ClientGetMessages{Username: "alice", After: 3600})
	msgs = frame.Packet.(chat.ServerGetMessages)
	if len(msgs.Messages) != 1 {
		t.Errorf("messages within window = %d, want 1", len(msgs.Messages))
	}
}

func TestGetMessagesEmptyConversation(t *testing.T) {
	srv, st := startServer(t, testAuthTimeout)
	token := addUser(t, st, "alice")
	addUser(t, st, "bob")

	_, sock := dial(t, srv)
	authenticate(t, sock, token, "alice")

	frame := roundTrip(t, sock, 2, chat.ClientGetMessages{Username: "bob", After: 0})
	msgs, ok := frame.Packet.(chat.ServerGetMessages)
	if !ok {
		t.Fatalf("response = %T, want ServerGetMessages", frame.Packet)
	}
	if len(msgs.Messages) != 0 {
		t.Errorf("messages = %d, want 0", len(msgs.Messages))
	}
}

func TestResponseEchoesRequestID(t *testing.T) {
	srv, st := startServer(t, testAuthTimeout)
	token := addUser(t, st, "alice")

	_, sock := dial(t, srv)
	authenticate(t, sock, token, "alice")

	// Ids are caller-chosen and opaque; reuse and the width maximum are
	// both legal.
	for _, id := range []uint64{2, 7, 2, 0, 0xFFFFFFFF} {
		frame := roundTrip(t, sock, id, chat.ClientGetRelations{})
		if frame.ID != id {
			t.Errorf("response id = %d, want %d", frame.ID, id)
		}
	}
}
