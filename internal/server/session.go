package server

import (
	"context"
	"errors"
	"math"
	"net"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/objectiveSquid/Chat-site/internal/logger"
	"github.com/objectiveSquid/Chat-site/internal/protocol/chat"
	"github.com/objectiveSquid/Chat-site/internal/telemetry"
	"github.com/objectiveSquid/Chat-site/pkg/metrics"
	"github.com/objectiveSquid/Chat-site/pkg/store"
)

// Close reasons reported through logs and the sessions_closed metric.
const (
	reasonQuit          = "quit"
	reasonAuthFailed    = "auth_failed"
	reasonAuthTimeout   = "auth_timeout"
	reasonRejectedFirst = "rejected_first_packet"
	reasonTransport     = "transport_error"
	reasonHandler       = "handler_error"
	reasonShutdown      = "shutdown"
)

// A look-back window this large cannot be turned into a time.Duration;
// treat it as unbounded, same as zero.
const maxLookBackSeconds = uint64(math.MaxInt64 / int64(time.Second))

// Packet sets accepted by the two session states, in the order they are
// reported back to a rejected peer.
var (
	acceptedPreAuth = []chat.PacketType{chat.TypeClientAuthenticate}
	acceptedAuthed  = []chat.PacketType{
		chat.TypeQuit,
		chat.TypeClientGetRelations,
		chat.TypeClientGetMessages,
		chat.TypeClientAddFriend,
		chat.TypeClientRemoveFriend,
		chat.TypeClientSendMessage,
	}
)

// session is the per-connection state machine: an authentication gate
// followed by a request/response loop. It holds no reference back to the
// server; the goroutine that runs it reports the close reason upward.
type session struct {
	id          string
	socket      *chat.PacketSocket
	store       store.Store
	metrics     metrics.ChatMetrics
	authTimeout time.Duration
	shutdown    <-chan struct{}

	// username is set once authentication succeeds.
	username string
}

func newSession(conn net.Conn, cfg Config, st store.Store, m metrics.ChatMetrics, shutdown <-chan struct{}) *session {
	return &session{
		id:          uuid.New().String()[:8],
		socket:      chat.NewPacketSocket(conn, cfg.Widths),
		store:       st,
		metrics:     m,
		authTimeout: cfg.AuthenticationTimeout,
		shutdown:    shutdown,
	}
}

// run drives the session to completion and returns the close reason.
func (s *session) run(ctx context.Context) string {
	defer s.close()

	lc := logger.NewLogContext(remoteIP(s.socket.RemoteAddr())).WithSession(s.id)
	ctx = logger.WithContext(ctx, lc)
	logger.InfoCtx(ctx, "Session started")

	reason := s.authenticate(ctx)
	if reason == "" {
		ctx = logger.WithContext(ctx, lc.WithUsername(s.username))
		reason = s.serve(ctx)
	}

	logger.InfoCtx(ctx, "Session closed", "reason", reason, logger.DurationMs(lc.DurationMs()))
	return reason
}

// authenticate enforces the gate: the first frame must be a
// ClientAuthenticate and it must arrive before the deadline. The verdict
// frame goes out before the session branches on it, so a rejected client
// learns why it is being dropped. Returns the close reason, or "" when the
// session may proceed to the serve loop.
func (s *session) authenticate(ctx context.Context) string {
	if err := s.socket.SetReadDeadline(time.Now().Add(s.authTimeout)); err != nil {
		logger.WarnCtx(ctx, "Failed to arm authentication deadline", logger.Err(err))
		return reasonTransport
	}

	frame, err := s.socket.Receive()
	switch {
	case err == nil:
	case errors.Is(err, os.ErrDeadlineExceeded):
		// No credentials in time: close without a reply.
		logger.InfoCtx(ctx, "Authentication timed out")
		return reasonAuthTimeout
	case errors.Is(err, chat.ErrUnknownPacketType):
		logger.InfoCtx(ctx, "Rejected first packet", logger.Err(err))
		s.sendInvalid(ctx, frame.ID, acceptedPreAuth)
		return reasonRejectedFirst
	default:
		return s.receiveFailure(ctx, err)
	}

	s.recordReceived(frame.Packet.Type())

	auth, ok := frame.Packet.(chat.ClientAuthenticate)
	if !ok {
		logger.InfoCtx(ctx, "Rejected first packet", logger.Packet(frame.Packet.Type().String()))
		s.sendInvalid(ctx, frame.ID, acceptedPreAuth)
		return reasonRejectedFirst
	}

	// The gate passed; the serve loop blocks without a deadline.
	if err := s.socket.SetReadDeadline(time.Time{}); err != nil {
		logger.WarnCtx(ctx, "Failed to clear read deadline", logger.Err(err))
		return reasonTransport
	}

	authCtx, span := telemetry.StartSpan(ctx, telemetry.SpanAuthenticate)
	defer span.End()
	telemetry.SetAttributes(authCtx,
		telemetry.SessionID(s.id),
		telemetry.ClientAddr(s.socket.RemoteAddr().String()))

	username, valid, err := s.store.CheckToken(authCtx, auth.Token)
	if err != nil {
		// The token cannot be vouched for; treat it like a mismatch.
		logger.ErrorCtx(authCtx, "Token lookup failed", logger.Err(err))
		telemetry.RecordError(authCtx, err)
		username, valid = "", false
	}
	telemetry.SetAttributes(authCtx, telemetry.AuthAccepted(valid))

	response := chat.ServerAuthenticate{Success: valid, Username: username}
	if err := s.socket.Send(chat.Frame{ID: frame.ID, Packet: response}); err != nil {
		logger.WarnCtx(authCtx, "Send failed", logger.Packet(response.Type().String()), logger.Err(err))
		return reasonTransport
	}
	s.recordSent(response.Type())

	if m := s.metrics; m != nil {
		outcome := "accepted"
		if !valid {
			outcome = "rejected"
		}
		m.RecordAuthentication(outcome)
	}

	if !valid {
		logger.InfoCtx(authCtx, "Authentication rejected")
		return reasonAuthFailed
	}

	s.username = username
	logger.InfoCtx(authCtx, "Authentication accepted", logger.Username(username))
	return ""
}

// serve is the post-authentication request loop. It exits on Quit, on a
// transport failure, or when a handler fails.
func (s *session) serve(ctx context.Context) string {
	for {
		frame, err := s.socket.Receive()
		if err != nil {
			if errors.Is(err, chat.ErrUnknownPacketType) {
				// Well-formed frame with an unregistered tag: the stream is
				// still aligned, so report the accepted set and carry on.
				if m := s.metrics; m != nil {
					m.RecordPacketReceived("unknown")
				}
				logger.InfoCtx(ctx, "Rejected packet", logger.PacketID(frame.ID), logger.Err(err))
				if !s.sendInvalid(ctx, frame.ID, acceptedAuthed) {
					return reasonTransport
				}
				continue
			}
			return s.receiveFailure(ctx, err)
		}

		reqType := frame.Packet.Type()
		s.recordReceived(reqType)

		if _, isQuit := frame.Packet.(chat.Quit); isQuit {
			// Quit is never echoed.
			logger.InfoCtx(ctx, "Quit received")
			return reasonQuit
		}

		response, handled, err := s.dispatch(ctx, frame)
		if err != nil {
			logger.ErrorCtx(ctx, "Request failed",
				logger.Packet(reqType.String()), logger.PacketID(frame.ID), logger.Err(err))
			return reasonHandler
		}
		if !handled {
			// Registered tag outside the accepted set: a second
			// authenticate, a stray response tag, a client-sent rejection.
			logger.InfoCtx(ctx, "Rejected packet",
				logger.Packet(reqType.String()), logger.PacketID(frame.ID))
			if !s.sendInvalid(ctx, frame.ID, acceptedAuthed) {
				return reasonTransport
			}
			continue
		}

		if err := s.socket.Send(chat.Frame{ID: frame.ID, Packet: response}); err != nil {
			logger.WarnCtx(ctx, "Send failed", logger.Packet(response.Type().String()), logger.Err(err))
			return reasonTransport
		}
		s.recordSent(response.Type())
	}
}

// dispatch maps one request to its store call and response packet. handled
// is false for registered tags that are not requests this state accepts.
func (s *session) dispatch(ctx context.Context, frame chat.Frame) (response chat.Packet, handled bool, err error) {
	reqType := frame.Packet.Type()

	spanCtx, span := telemetry.StartPacketSpan(ctx, reqType.String(),
		telemetry.SessionID(s.id),
		telemetry.Username(s.username),
		telemetry.PacketID(frame.ID),
	)
	defer span.End()

	start := time.Now()
	switch pkt := frame.Packet.(type) {
	case chat.ClientGetRelations:
		response, err = s.handleGetRelations(spanCtx)
	case chat.ClientGetMessages:
		response, err = s.handleGetMessages(spanCtx, pkt)
	case chat.ClientAddFriend:
		response, err = s.handleAddFriend(spanCtx, pkt)
	case chat.ClientRemoveFriend:
		response, err = s.handleRemoveFriend(spanCtx, pkt)
	case chat.ClientSendMessage:
		response, err = s.handleSendMessage(spanCtx, pkt)
	default:
		return nil, false, nil
	}

	telemetry.RecordError(spanCtx, err)
	if m := s.metrics; m != nil {
		m.ObserveDispatch(reqType.String(), time.Since(start), err)
	}
	return response, true, err
}

func (s *session) handleGetRelations(ctx context.Context) (chat.Packet, error) {
	relations, err := s.store.AllRelations(ctx, s.username)
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(ctx, telemetry.RelationCount(len(relations)))

	out := make([]chat.Relation, 0, len(relations))
	for _, rel := range relations {
		out = append(out, chat.Relation{
			FirstUsername:      rel.FirstUsername,
			SecondaryUsername:  rel.SecondaryUsername,
			FirstIsFriend:      rel.FirstIsFriend.Bool(),
			SecondaryIsFriend:  rel.SecondaryIsFriend.Bool(),
			SecondaryIsBlocked: rel.SecondaryIsBlocked.Bool(),
		})
	}
	return chat.ServerGetRelations{Relations: out}, nil
}

// handleGetMessages resolves the look-back window against the current
// clock. A zero window means the whole history; so does one too large to
// represent as a duration.
func (s *session) handleGetMessages(ctx context.Context, pkt chat.ClientGetMessages) (chat.Packet, error) {
	since := time.Unix(0, 0)
	if pkt.After > 0 && pkt.After < maxLookBackSeconds {
		since = time.Now().Add(-time.Duration(pkt.After) * time.Second)
	}

	messages, err := s.store.MessagesBetween(ctx, s.username, pkt.Username, since)
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(ctx, telemetry.Peer(pkt.Username), telemetry.MessageCount(len(messages)))

	out := make([]chat.Message, 0, len(messages))
	for _, msg := range messages {
		out = append(out, chat.Message{
			Sender:   msg.SenderUsername,
			Receiver: msg.ReceiverUsername,
			TimeSent: uint64(msg.TimeSent),
			Content:  msg.Content,
		})
	}
	return chat.ServerGetMessages{Messages: out}, nil
}

func (s *session) handleAddFriend(ctx context.Context, pkt chat.ClientAddFriend) (chat.Packet, error) {
	telemetry.SetAttributes(ctx, telemetry.Peer(pkt.Username))
	ok, err := s.store.AddFriend(ctx, s.username, pkt.Username)
	if err != nil {
		return nil, err
	}
	return chat.ServerAddFriend{Success: ok}, nil
}

func (s *session) handleRemoveFriend(ctx context.Context, pkt chat.ClientRemoveFriend) (chat.Packet, error) {
	telemetry.SetAttributes(ctx, telemetry.Peer(pkt.Username))
	// The acknowledgement carries no outcome; removing an absent friendship
	// is a no-op.
	if _, err := s.store.RemoveFriend(ctx, s.username, pkt.Username); err != nil {
		return nil, err
	}
	return chat.ServerRemoveFriend{}, nil
}

func (s *session) handleSendMessage(ctx context.Context, pkt chat.ClientSendMessage) (chat.Packet, error) {
	telemetry.SetAttributes(ctx, telemetry.Peer(pkt.Receiver))
	if _, err := s.store.AddMessage(ctx, s.username, pkt.Receiver, pkt.Content); err != nil {
		return nil, err
	}
	return chat.ServerSendMessage{}, nil
}

// sendInvalid reports the accepted set for the current state, echoing the
// offending frame's id. Returns false when the reply could not be written.
func (s *session) sendInvalid(ctx context.Context, id uint64, accepted []chat.PacketType) bool {
	reply := chat.InvalidPacketType{Accepted: accepted}
	if err := s.socket.Send(chat.Frame{ID: id, Packet: reply}); err != nil {
		logger.WarnCtx(ctx, "Send failed", logger.Packet(reply.Type().String()), logger.Err(err))
		return false
	}
	s.recordSent(chat.TypeInvalidPacketType)
	return true
}

// receiveFailure classifies a non-recoverable Receive error into a close
// reason. A socket torn down by server shutdown is not a transport fault.
func (s *session) receiveFailure(ctx context.Context, err error) string {
	select {
	case <-s.shutdown:
		return reasonShutdown
	default:
	}
	if errors.Is(err, chat.ErrConnectionReset) {
		logger.InfoCtx(ctx, "Connection closed by peer")
	} else {
		logger.WarnCtx(ctx, "Receive failed", logger.Err(err))
	}
	return reasonTransport
}

func (s *session) recordReceived(t chat.PacketType) {
	if m := s.metrics; m != nil {
		m.RecordPacketReceived(t.String())
	}
}

func (s *session) recordSent(t chat.PacketType) {
	if m := s.metrics; m != nil {
		m.RecordPacketSent(t.String())
	}
}

func (s *session) close() {
	_ = s.socket.Close()
}

// remoteIP strips the port for log fields.
func remoteIP(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
