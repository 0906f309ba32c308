package client_test

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/objectiveSquid/Chat-site/internal/client"
	"github.com/objectiveSquid/Chat-site/internal/protocol/chat"
)

var testWidths = chat.Widths{IDBytes: 4, TypeBytes: 2, DataLengthBytes: 4}

const testTimeout = 5 * time.Second

// script runs a server-side handler for exactly one connection and returns
// the address to dial. The handler runs on its own goroutine, so it must
// report failures with t.Errorf, never t.Fatalf.
func script(t *testing.T, handler func(conn net.Conn, sock *chat.PacketSocket)) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() failed: %v", err)
	}
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn, chat.NewPacketSocket(conn, testWidths))
	}()
	return listener.Addr().String()
}

func dialConfig(t *testing.T, addr string) client.Config {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("SplitHostPort(%s) failed: %v", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("Atoi(%s) failed: %v", portStr, err)
	}
	return client.Config{
		ConnectAddress:        host,
		ConnectPort:           port,
		Token:                 "tok",
		AuthenticationTimeout: testTimeout,
		RequestTimeout:        testTimeout,
		Widths:                testWidths,
		EventIDBytes:          4,
	}
}

func scriptReceive(t *testing.T, sock *chat.PacketSocket) (chat.Frame, bool) {
	_ = sock.SetReadDeadline(time.Now().Add(testTimeout))
	frame, err := sock.Receive()
	if err != nil {
		t.Errorf("script Receive() failed: %v", err)
		return chat.Frame{}, false
	}
	return frame, true
}

func scriptSend(t *testing.T, sock *chat.PacketSocket, frame chat.Frame) bool {
	if err := sock.Send(frame); err != nil {
		t.Errorf("script Send(%s) failed: %v", frame.Packet.Type(), err)
		return false
	}
	return true
}

// scriptAccept consumes the opening handshake and confirms username.
func scriptAccept(t *testing.T, sock *chat.PacketSocket, username string) bool {
	frame, ok := scriptReceive(t, sock)
	if !ok {
		return false
	}
	if _, isAuth := frame.Packet.(chat.ClientAuthenticate); !isAuth {
		t.Errorf("first packet = %T, want ClientAuthenticate", frame.Packet)
		return false
	}
	return scriptSend(t, sock, chat.Frame{
		ID:     frame.ID,
		Packet: chat.ServerAuthenticate{Success: true, Username: username},
	})
}

// chatScript answers every request with a canned response until the
// connection drops, reporting through the returned channel whether a Quit
// frame arrived before the close.
func chatScript(t *testing.T, relations []chat.Relation, messages []chat.Message) (string, <-chan bool) {
	t.Helper()
	sawQuit := make(chan bool, 1)

	addr := script(t, func(_ net.Conn, sock *chat.PacketSocket) {
		if !scriptAccept(t, sock, "alice") {
			sawQuit <- false
			return
		}
		for {
			_ = sock.SetReadDeadline(time.Now().Add(testTimeout))
			frame, err := sock.Receive()
			if err != nil {
				sawQuit <- false
				return
			}

			var reply chat.Packet
			switch pkt := frame.Packet.(type) {
			case chat.Quit:
				sawQuit <- true
				return
			case chat.ClientGetRelations:
				reply = chat.ServerGetRelations{Relations: relations}
			case chat.ClientGetMessages:
				reply = chat.ServerGetMessages{Messages: messages}
			case chat.ClientAddFriend:
				reply = chat.ServerAddFriend{Success: pkt.Username != "nobody"}
			case chat.ClientRemoveFriend:
				reply = chat.ServerRemoveFriend{}
			case chat.ClientSendMessage:
				reply = chat.ServerSendMessage{}
			default:
				t.Errorf("script got unexpected %T", frame.Packet)
				sawQuit <- false
				return
			}
			if !scriptSend(t, sock, chat.Frame{ID: frame.ID, Packet: reply}) {
				sawQuit <- false
				return
			}
		}
	})
	return addr, sawQuit
}

func TestDialAuthenticates(t *testing.T) {
	addr := script(t, func(_ net.Conn, sock *chat.PacketSocket) {
		frame, ok := scriptReceive(t, sock)
		if !ok {
			return
		}
		auth, isAuth := frame.Packet.(chat.ClientAuthenticate)
		if !isAuth {
			t.Errorf("first packet = %T, want ClientAuthenticate", frame.Packet)
			return
		}
		if auth.Token != "tok" {
			t.Errorf("Token = %q, want %q", auth.Token, "tok")
		}
		scriptSend(t, sock, chat.Frame{
			ID:     frame.ID,
			Packet: chat.ServerAuthenticate{Success: true, Username: "alice"},
		})
	})

	sess, err := client.Dial(context.Background(), dialConfig(t, addr))
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	defer sess.Stop(false)

	if got := sess.Username(); got != "alice" {
		t.Errorf("Username() = %q, want %q", got, "alice")
	}
}

func TestDialRejectedSendsNothingMore(t *testing.T) {
	afterVerdict := make(chan error, 1)
	addr := script(t, func(_ net.Conn, sock *chat.PacketSocket) {
		frame, ok := scriptReceive(t, sock)
		if !ok {
			afterVerdict <- nil
			return
		}
		if !scriptSend(t, sock, chat.Frame{ID: frame.ID, Packet: chat.ServerAuthenticate{Success: false}}) {
			afterVerdict <- nil
			return
		}
		// The client must hang up without another frame, Quit included.
		_ = sock.SetReadDeadline(time.Now().Add(testTimeout))
		_, err := sock.Receive()
		afterVerdict <- err
	})

	_, err := client.Dial(context.Background(), dialConfig(t, addr))
	if !errors.Is(err, client.ErrAuthenticationRejected) {
		t.Fatalf("Dial() error = %v, want %v", err, client.ErrAuthenticationRejected)
	}

	if recvErr := <-afterVerdict; recvErr == nil {
		t.Error("client sent a frame after the rejection verdict")
	} else if !errors.Is(recvErr, chat.ErrConnectionReset) {
		t.Errorf("post-verdict receive error = %v, want %v", recvErr, chat.ErrConnectionReset)
	}
}

func TestDialRefusedConnection(t *testing.T) {
	// Grab a port and close it so nothing is listening there.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() failed: %v", err)
	}
	addr := listener.Addr().String()
	_ = listener.Close()

	if _, err := client.Dial(context.Background(), dialConfig(t, addr)); err == nil {
		t.Fatal("Dial() to a closed port should fail")
	}
}

func TestEventRoundTrips(t *testing.T) {
	relations := []chat.Relation{{
		FirstUsername:     "alice",
		SecondaryUsername: "bob",
		FirstIsFriend:     true,
	}}
	messages := []chat.Message{{
		Sender:   "bob",
		Receiver: "alice",
		TimeSent: 1700000000,
		Content:  "hi",
	}}
	addr, sawQuit := chatScript(t, relations, messages)

	sess, err := client.Dial(context.Background(), dialConfig(t, addr))
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	ctx := context.Background()

	out, err := sess.SubmitAndWait(ctx, client.GetRelations{})
	if err != nil {
		t.Fatalf("GetRelations failed: %v", err)
	}
	rels, ok := out.(client.OutGetRelations)
	if !ok {
		t.Fatalf("output = %T, want OutGetRelations", out)
	}
	if len(rels.Relations) != 1 || rels.Relations[0].SecondaryUsername != "bob" {
		t.Errorf("Relations = %+v, want the canned row", rels.Relations)
	}

	out, err = sess.SubmitAndWait(ctx, client.GetMessages{Sender: "bob", After: 0})
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	msgs, ok := out.(client.OutGetMessages)
	if !ok {
		t.Fatalf("output = %T, want OutGetMessages", out)
	}
	if len(msgs.Messages) != 1 || msgs.Messages[0].Content != "hi" {
		t.Errorf("Messages = %+v, want the canned message", msgs.Messages)
	}

	out, err = sess.SubmitAndWait(ctx, client.AddFriend{Username: "bob"})
	if err != nil {
		t.Fatalf("AddFriend failed: %v", err)
	}
	if add := out.(client.OutAddFriend); !add.Success {
		t.Error("AddFriend Success = false, want true")
	}

	out, err = sess.SubmitAndWait(ctx, client.AddFriend{Username: "nobody"})
	if err != nil {
		t.Fatalf("AddFriend(nobody) failed: %v", err)
	}
	if add := out.(client.OutAddFriend); add.Success {
		t.Error("AddFriend(nobody) Success = true, want false")
	}

	out, err = sess.SubmitAndWait(ctx, client.RemoveFriend{Username: "bob"})
	if err != nil {
		t.Fatalf("RemoveFriend failed: %v", err)
	}
	if _, ok := out.(client.OutRemoveFriend); !ok {
		t.Fatalf("output = %T, want OutRemoveFriend", out)
	}

	out, err = sess.SubmitAndWait(ctx, client.SendMessage{Receiver: "bob", Content: "yo"})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if _, ok := out.(client.OutSendMessage); !ok {
		t.Fatalf("output = %T, want OutSendMessage", out)
	}

	// Quit goes out as the final frame.
	sess.Stop(true)
	if !<-sawQuit {
		t.Error("server never saw Quit after Stop(true)")
	}
}

func TestStopWithoutQuit(t *testing.T) {
	addr, sawQuit := chatScript(t, nil, nil)

	sess, err := client.Dial(context.Background(), dialConfig(t, addr))
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	sess.Stop(false)

	if <-sawQuit {
		t.Error("server saw Quit after Stop(false)")
	}
}

func TestSubmitAfterStop(t *testing.T) {
	addr, _ := chatScript(t, nil, nil)

	sess, err := client.Dial(context.Background(), dialConfig(t, addr))
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	sess.Stop(false)

	if _, err := sess.SubmitAndWait(context.Background(), client.GetRelations{}); !errors.Is(err, client.ErrSessionClosed) {
		t.Fatalf("SubmitAndWait after Stop = %v, want %v", err, client.ErrSessionClosed)
	}
}

func TestRequestTimeout(t *testing.T) {
	released := make(chan struct{})
	addr := script(t, func(_ net.Conn, sock *chat.PacketSocket) {
		if !scriptAccept(t, sock, "alice") {
			return
		}
		// Swallow the request and stall until the test is done.
		if _, ok := scriptReceive(t, sock); !ok {
			return
		}
		<-released
	})
	t.Cleanup(func() { close(released) })

	cfg := dialConfig(t, addr)
	cfg.RequestTimeout = 100 * time.Millisecond

	sess, err := client.Dial(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	defer sess.Stop(false)

	if _, err := sess.SubmitAndWait(context.Background(), client.GetRelations{}); !errors.Is(err, client.ErrRequestTimeout) {
		t.Fatalf("SubmitAndWait = %v, want %v", err, client.ErrRequestTimeout)
	}
}

func TestServerDropFailsWaiters(t *testing.T) {
	addr := script(t, func(conn net.Conn, sock *chat.PacketSocket) {
		if !scriptAccept(t, sock, "alice") {
			return
		}
		// Read the request, then drop the connection without answering.
		if _, ok := scriptReceive(t, sock); !ok {
			return
		}
		_ = conn.Close()
	})

	sess, err := client.Dial(context.Background(), dialConfig(t, addr))
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	defer sess.Stop(false)

	if _, err := sess.SubmitAndWait(context.Background(), client.GetRelations{}); err == nil {
		t.Fatal("SubmitAndWait should fail when the server drops the connection")
	}

	select {
	case <-sess.Closed():
	case <-time.After(testTimeout):
		t.Fatal("Closed() not signalled after the connection dropped")
	}

	// Later submissions fail fast instead of blocking on a dead socket.
	if _, err := sess.SubmitAndWait(context.Background(), client.GetRelations{}); err == nil {
		t.Fatal("SubmitAndWait on a dead session should fail")
	}
}

func TestNoiseFramesIgnored(t *testing.T) {
	addr := script(t, func(conn net.Conn, sock *chat.PacketSocket) {
		if !scriptAccept(t, sock, "alice") {
			return
		}
		frame, ok := scriptReceive(t, sock)
		if !ok {
			return
		}
		// Noise before the real reply: a frame nobody asked for and a frame
		// of a type the codec does not know.
		scriptSend(t, sock, chat.Frame{ID: frame.ID ^ 1, Packet: chat.ServerSendMessage{}})
		writeRawFrame(t, conn, uint32(frame.ID^2), 999, nil)
		scriptSend(t, sock, chat.Frame{ID: frame.ID, Packet: chat.ServerGetRelations{}})
	})

	sess, err := client.Dial(context.Background(), dialConfig(t, addr))
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	defer sess.Stop(false)

	out, err := sess.SubmitAndWait(context.Background(), client.GetRelations{})
	if err != nil {
		t.Fatalf("SubmitAndWait failed: %v", err)
	}
	if _, ok := out.(client.OutGetRelations); !ok {
		t.Fatalf("output = %T, want OutGetRelations", out)
	}
}

func TestConcurrentProducers(t *testing.T) {
	addr, _ := chatScript(t, nil, nil)

	sess, err := client.Dial(context.Background(), dialConfig(t, addr))
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	defer sess.Stop(false)

	const producers = 8
	var wg sync.WaitGroup
	errs := make(chan error, producers)

	for i := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := sess.SubmitAndWait(context.Background(), client.SendMessage{
				Receiver: "bob",
				Content:  fmt.Sprintf("message %d", i),
			})
			if err != nil {
				errs <- err
				return
			}
			if _, ok := out.(client.OutSendMessage); !ok {
				errs <- fmt.Errorf("output = %T, want OutSendMessage", out)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("producer failed: %v", err)
	}
}

// writeRawFrame writes a frame directly so tests can send tags the codec
// refuses to encode.
func writeRawFrame(t *testing.T, conn net.Conn, id uint32, tag uint16, body []byte) {
	buf := make([]byte, 0, testWidths.HeaderSize()+len(body))
	buf = binary.BigEndian.AppendUint32(buf, id)
	buf = binary.BigEndian.AppendUint16(buf, tag)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(body)))
	buf = append(buf, body...)
	if _, err := conn.Write(buf); err != nil {
		t.Errorf("raw write failed: %v", err)
	}
}
