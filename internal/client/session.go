// Package client implements the client side of a chat connection: the
// authentication handshake, a request/response multiplexer over the frame
// codec, and an event worker that turns producer commands into requests.
//
// Producers (the GUI, tests) never touch the socket. They call
// SubmitAndWait, which enqueues an input event and blocks on its promise;
// the worker drains the queue in order, keeps one request in flight at a
// time, and completes each promise with the matching output event.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/objectiveSquid/Chat-site/internal/logger"
	"github.com/objectiveSquid/Chat-site/internal/protocol/chat"
)

// Config holds the dialer and session settings.
type Config struct {
	// ConnectAddress and ConnectPort locate the server.
	ConnectAddress string
	ConnectPort    int

	// Token is the account credential presented on connect.
	Token string

	// AuthenticationTimeout bounds the dial and the handshake. Zero means
	// no bound.
	AuthenticationTimeout time.Duration

	// RequestTimeout bounds each request once it is on the wire. Zero
	// disables the bound; a hung server then stalls the session.
	RequestTimeout time.Duration

	// Widths configures the wire header field sizes. Must match the
	// server's shared configuration exactly.
	Widths chat.Widths

	// EventIDBytes is the width of generated event ids.
	EventIDBytes int
}

// Session is one authenticated client connection.
type Session struct {
	config  Config
	socket  *chat.PacketSocket
	pending *pendingResponses
	queue   *eventQueue

	username string

	// inflightEvents counts queued events per id so a random collision is
	// noticed and logged.
	mu             sync.Mutex
	inflightEvents map[uint64]int

	stopOnce sync.Once
	stopping bool

	workerDone chan struct{}
	closed     chan struct{}
}

// Dial connects and authenticates. A rejected token closes the socket
// without Quit and returns ErrAuthenticationRejected.
func Dial(ctx context.Context, cfg Config) (*Session, error) {
	addr := net.JoinHostPort(cfg.ConnectAddress, strconv.Itoa(cfg.ConnectPort))
	dialer := net.Dialer{Timeout: cfg.AuthenticationTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}

	s := &Session{
		config:         cfg,
		socket:         chat.NewPacketSocket(conn, cfg.Widths),
		pending:        newPendingResponses(),
		queue:          newEventQueue(),
		inflightEvents: make(map[uint64]int),
		workerDone:     make(chan struct{}),
		closed:         make(chan struct{}),
	}

	if err := s.authenticate(); err != nil {
		_ = s.socket.Close()
		return nil, err
	}

	go s.recvLoop()
	go s.worker()
	return s, nil
}

// authenticate runs the gate handshake synchronously: the receive loop is
// not running yet, so this owns the socket's read side.
func (s *Session) authenticate() error {
	if s.config.AuthenticationTimeout > 0 {
		if err := s.socket.SetReadDeadline(time.Now().Add(s.config.AuthenticationTimeout)); err != nil {
			return fmt.Errorf("arm authentication deadline: %w", err)
		}
	}

	id, err := chat.NewFrameID(s.config.Widths)
	if err != nil {
		return err
	}
	request := chat.ClientAuthenticate{Token: s.config.Token}
	if err := s.socket.Send(chat.Frame{ID: id, Packet: request}); err != nil {
		return err
	}

	frame, err := s.socket.Receive()
	if err != nil {
		return fmt.Errorf("await authentication verdict: %w", err)
	}
	if frame.ID != id {
		return fmt.Errorf("authentication verdict id %d, sent %d", frame.ID, id)
	}
	verdict, ok := frame.Packet.(chat.ServerAuthenticate)
	if !ok {
		return fmt.Errorf("authentication answered with %s", frame.Packet.Type())
	}
	if !verdict.Success {
		return ErrAuthenticationRejected
	}

	if err := s.socket.SetReadDeadline(time.Time{}); err != nil {
		return fmt.Errorf("clear read deadline: %w", err)
	}
	s.username = verdict.Username
	logger.Info("Authenticated", logger.Username(verdict.Username))
	return nil
}

// Username returns the name the server confirmed at authentication.
func (s *Session) Username() string {
	return s.username
}

// Closed is closed once the receive side is torn down, whether by Stop or
// by the server dropping the connection.
func (s *Session) Closed() <-chan struct{} {
	return s.closed
}

// SubmitAndWait enqueues one input event and blocks until the worker
// completes it, the context ends, or the session stops.
func (s *Session) SubmitAndWait(ctx context.Context, event InputEvent) (OutputEvent, error) {
	id, err := newEventID(s.config.EventIDBytes)
	if err != nil {
		return nil, err
	}
	s.trackEventID(id)
	defer s.releaseEventID(id)

	pe := &pendingEvent{
		ctx:   ctx,
		id:    id,
		event: event,
		reply: make(chan eventResult, 1),
	}
	logger.Debug("Event queued", logger.Event(eventName(event)), logger.EventID(id))

	if !s.queue.push(pe) {
		return nil, ErrSessionClosed
	}

	select {
	case res := <-pe.reply:
		return res.output, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop ends the session: intake closes, the worker finishes its current
// event and fails the backlog, then — when sendQuit is set — a Quit frame
// goes out as the very last frame before the socket closes.
func (s *Session) Stop(sendQuit bool) {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopping = true
		s.mu.Unlock()

		s.queue.close()
		<-s.workerDone

		if sendQuit {
			if id, err := chat.NewFrameID(s.config.Widths); err == nil {
				if err := s.socket.Send(chat.Frame{ID: id, Packet: chat.Quit{}}); err != nil {
					logger.Debug("Quit not sent", logger.Err(err))
				}
			}
		}
		_ = s.socket.Close()
	})
}

// recvLoop owns the socket's read side after authentication. It routes
// response frames to their waiters until the socket dies, then fails every
// outstanding request so nothing blocks forever.
func (s *Session) recvLoop() {
	defer close(s.closed)
	for {
		frame, err := s.socket.Receive()
		if err != nil {
			if errors.Is(err, chat.ErrUnknownPacketType) {
				// The stream is still aligned; there is no waiter a typeless
				// frame could belong to.
				logger.Warn("Dropping frame of unknown type", logger.PacketID(frame.ID), logger.Err(err))
				continue
			}
			if s.isStopping() {
				s.pending.failAll(ErrSessionClosed)
			} else {
				logger.Warn("Connection lost", logger.Err(err))
				s.pending.failAll(fmt.Errorf("session receive: %w", err))
			}
			return
		}
		if !s.pending.deliver(frame) {
			// Response to a request that timed out, or an unsolicited frame.
			logger.Warn("Dropping unsolicited frame",
				logger.Packet(frame.Packet.Type().String()), logger.PacketID(frame.ID))
		}
	}
}

// worker is the single consumer of the input queue: strictly in order, one
// request in flight at a time. After Stop it fails whatever is still
// queued instead of sending on a closing socket.
func (s *Session) worker() {
	defer close(s.workerDone)
	for {
		pe, ok := s.queue.pop()
		if !ok {
			return
		}
		if s.queue.isClosed() {
			pe.reply <- eventResult{err: ErrSessionClosed}
			continue
		}
		pe.reply <- s.process(pe)
	}
}

// process turns one input event into its request, waits for the response,
// and shapes the matching output event.
func (s *Session) process(pe *pendingEvent) eventResult {
	switch ev := pe.event.(type) {
	case GetRelations:
		frame, err := s.sendAndWait(pe.ctx, chat.ClientGetRelations{})
		if err != nil {
			return eventResult{err: err}
		}
		resp, ok := frame.Packet.(chat.ServerGetRelations)
		if !ok {
			return eventResult{err: unexpectedResponse(chat.TypeServerGetRelations, frame)}
		}
		return eventResult{output: OutGetRelations{Relations: resp.Relations}}

	case GetMessages:
		frame, err := s.sendAndWait(pe.ctx, chat.ClientGetMessages{Username: ev.Sender, After: ev.After})
		if err != nil {
			return eventResult{err: err}
		}
		resp, ok := frame.Packet.(chat.ServerGetMessages)
		if !ok {
			return eventResult{err: unexpectedResponse(chat.TypeServerGetMessages, frame)}
		}
		return eventResult{output: OutGetMessages{Messages: resp.Messages}}

	case AddFriend:
		frame, err := s.sendAndWait(pe.ctx, chat.ClientAddFriend{Username: ev.Username})
		if err != nil {
			return eventResult{err: err}
		}
		resp, ok := frame.Packet.(chat.ServerAddFriend)
		if !ok {
			return eventResult{err: unexpectedResponse(chat.TypeServerAddFriend, frame)}
		}
		return eventResult{output: OutAddFriend{Success: resp.Success}}

	case RemoveFriend:
		frame, err := s.sendAndWait(pe.ctx, chat.ClientRemoveFriend{Username: ev.Username})
		if err != nil {
			return eventResult{err: err}
		}
		if _, ok := frame.Packet.(chat.ServerRemoveFriend); !ok {
			return eventResult{err: unexpectedResponse(chat.TypeServerRemoveFriend, frame)}
		}
		return eventResult{output: OutRemoveFriend{}}

	case SendMessage:
		frame, err := s.sendAndWait(pe.ctx, chat.ClientSendMessage{Receiver: ev.Receiver, Content: ev.Content})
		if err != nil {
			return eventResult{err: err}
		}
		if _, ok := frame.Packet.(chat.ServerSendMessage); !ok {
			return eventResult{err: unexpectedResponse(chat.TypeServerSendMessage, frame)}
		}
		return eventResult{output: OutSendMessage{}}

	default:
		return eventResult{err: fmt.Errorf("unsupported input event %T", pe.event)}
	}
}

// sendAndWait implements the request/response discipline: register the
// frame id, write the request, then block until the receive loop delivers
// the response, the request timeout elapses, or the context ends.
func (s *Session) sendAndWait(ctx context.Context, pkt chat.Packet) (chat.Frame, error) {
	id, err := chat.NewFrameID(s.config.Widths)
	if err != nil {
		return chat.Frame{}, err
	}

	// Register before sending so a response racing the return path always
	// finds its waiter.
	ch, err := s.pending.register(id)
	if err != nil {
		return chat.Frame{}, err
	}

	if err := s.socket.Send(chat.Frame{ID: id, Packet: pkt}); err != nil {
		s.pending.cancel(id)
		return chat.Frame{}, fmt.Errorf("send %s: %w", pkt.Type(), err)
	}

	var timeout <-chan time.Time
	if s.config.RequestTimeout > 0 {
		timer := time.NewTimer(s.config.RequestTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case frame, ok := <-ch:
		if !ok {
			return chat.Frame{}, s.pending.failure()
		}
		return frame, nil
	case <-timeout:
		s.pending.cancel(id)
		return chat.Frame{}, fmt.Errorf("%s: %w", pkt.Type(), ErrRequestTimeout)
	case <-ctx.Done():
		s.pending.cancel(id)
		return chat.Frame{}, ctx.Err()
	}
}

func (s *Session) isStopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopping
}

// trackEventID notes a queued event id. Ids are random, so a repeat while
// the first holder is still queued is worth a warning.
func (s *Session) trackEventID(id uint64) {
	s.mu.Lock()
	s.inflightEvents[id]++
	if s.inflightEvents[id] > 1 {
		logger.Warn("Event id collision", logger.EventID(id))
	}
	s.mu.Unlock()
}

func (s *Session) releaseEventID(id uint64) {
	s.mu.Lock()
	if s.inflightEvents[id]--; s.inflightEvents[id] <= 0 {
		delete(s.inflightEvents, id)
	}
	s.mu.Unlock()
}

// unexpectedResponse covers both a rejection and a tag that is not the
// request's pair.
func unexpectedResponse(want chat.PacketType, frame chat.Frame) error {
	if reject, ok := frame.Packet.(chat.InvalidPacketType); ok {
		return fmt.Errorf("request rejected, server accepts %v", reject.Accepted)
	}
	return fmt.Errorf("response type %s, want %s", frame.Packet.Type(), want)
}
