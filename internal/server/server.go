// Package server implements the chat server's TCP acceptor and the
// per-connection session state machine: an authentication gate followed by
// a request/response serve loop against the persistence layer.
package server

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/objectiveSquid/Chat-site/internal/logger"
	"github.com/objectiveSquid/Chat-site/internal/protocol/chat"
	"github.com/objectiveSquid/Chat-site/pkg/metrics"
	"github.com/objectiveSquid/Chat-site/pkg/store"
)

// Config holds the listener and session settings.
type Config struct {
	// ListenAddress is the interface to bind (e.g. "0.0.0.0").
	ListenAddress string

	// ListenPort is the TCP port to bind. Port 0 picks a free port.
	ListenPort int

	// AuthenticationTimeout bounds how long a fresh connection may take to
	// present credentials before the socket is closed without a reply.
	AuthenticationTimeout time.Duration

	// Widths configures the wire header field sizes. Must match the
	// clients' shared configuration exactly.
	Widths chat.Widths
}

// Server accepts TCP connections and runs one session per connection.
//
// The server owns its sessions: they are tracked on accept and released by
// the goroutine that ran them, so sessions never reach back into the
// server. Stop (or context cancellation) closes the listener and every
// live session socket; Serve returns once all sessions have finished.
type Server struct {
	config  Config
	store   store.Store
	metrics metrics.ChatMetrics

	shutdown     chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup

	mu       sync.Mutex
	listener net.Listener
	sessions map[*session]struct{}
}

// New creates a server. The store must be ready to serve (schema ensured).
// Metrics may be nil to disable instrumentation.
func New(cfg Config, st store.Store, m metrics.ChatMetrics) *Server {
	return &Server{
		config:   cfg,
		store:    st,
		metrics:  m,
		shutdown: make(chan struct{}),
		sessions: make(map[*session]struct{}),
	}
}

// Serve listens on the configured address and accepts until the context is
// cancelled or Stop is called. It blocks until every session has finished.
func (s *Server) Serve(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.ListenAddress, strconv.Itoa(s.config.ListenPort))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	logger.Info("Chat server started", "address", listener.Addr().String())

	// Monitor context cancellation
	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.shutdown:
		}
	}()

	var acceptErr error
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
			default:
				acceptErr = fmt.Errorf("accept: %w", err)
			}
			break
		}

		sess := newSession(conn, s.config, s.store, s.metrics, s.shutdown)
		s.track(sess)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			reason := sess.run(ctx)
			s.untrack(sess, reason)
		}()
	}

	s.wg.Wait()
	logger.Info("Chat server stopped")
	return acceptErr
}

// Stop closes the listener and every active session socket, unblocking
// their reads. Safe to call more than once.
func (s *Server) Stop() {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.listener != nil {
			_ = s.listener.Close()
		}
		for sess := range s.sessions {
			sess.close()
		}
	})
}

// Addr returns the bound listener address (for tests and logs).
// Returns empty string if the server is not listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) track(sess *session) {
	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	active := len(s.sessions)
	s.mu.Unlock()

	if m := s.metrics; m != nil {
		m.RecordSessionStarted()
		m.SetActiveSessions(int32(active))
	}
}

func (s *Server) untrack(sess *session, reason string) {
	s.mu.Lock()
	delete(s.sessions, sess)
	active := len(s.sessions)
	s.mu.Unlock()

	if m := s.metrics; m != nil {
		m.RecordSessionClosed(reason)
		m.SetActiveSessions(int32(active))
	}
}
