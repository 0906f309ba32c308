// Package gui serves the local web front end for one chat session.
//
// The GUI is a thin HTML layer over a single authenticated session: every
// page load turns into chat requests through the session's event queue, and
// mutations answer with an HX-Refresh header so the htmx front end reloads
// the page they came from. The server binds to a local address and carries
// no authentication of its own; whoever reaches it acts as the session user.
package gui

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/objectiveSquid/Chat-site/internal/client"
	"github.com/objectiveSquid/Chat-site/internal/logger"
)

// Chatter is the slice of the client session the GUI needs. *client.Session
// implements it; handler tests substitute a scripted fake.
type Chatter interface {
	// Username returns the authenticated account name.
	Username() string

	// SubmitAndWait runs one chat request and blocks for its outcome.
	SubmitAndWait(ctx context.Context, event client.InputEvent) (client.OutputEvent, error)
}

// Config holds the GUI listener settings.
type Config struct {
	HostAddress string
	HostPort    int
}

// Server provides the HTTP server for the web GUI.
//
// Routes:
//   - GET / - Redirect to /friends
//   - GET /empty - Blank body, an htmx swap target
//   - GET /friends - Friend list page
//   - GET /chat/{username} - Chat panel fragment
//   - GET /chat_page/{username} - Full chat page
//   - GET /chat_messages/{username} - Message list fragment, polled by htmx
//   - POST /send_message - Send a message
//   - POST /add_friend - Send a friend request
//   - POST /remove_friend - Remove a friend
//
// The server supports graceful shutdown and is safe to stop more than once.
type Server struct {
	server       *http.Server
	config       Config
	shutdownOnce sync.Once
}

// NewServer creates the GUI HTTP server in a stopped state. Call Start to
// begin serving requests.
func NewServer(config Config, session Chatter) *Server {
	server := &http.Server{
		Addr:         net.JoinHostPort(config.HostAddress, strconv.Itoa(config.HostPort)),
		Handler:      NewRouter(session),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		server: server,
		config: config,
	}
}

// Start starts the GUI HTTP server and blocks until the context is
// cancelled or an error occurs.
//
// When the context is cancelled, Start initiates graceful shutdown and
// returns nil once the server has drained.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("Web GUI listening", "url", fmt.Sprintf("http://%s", s.server.Addr))

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
				// Context was cancelled, error is not needed
			}
		}
	}()

	select {
	case <-ctx.Done():
		// Fresh context: the cancelled one would abort the drain immediately.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("GUI server failed: %w", err)
	}
}

// Stop initiates graceful shutdown of the GUI server.
//
// Stop is safe to call multiple times and safe to call concurrently with
// Start.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("GUI server shutdown error: %w", err)
		} else {
			logger.Info("Web GUI stopped")
		}
	})
	return shutdownErr
}

// Addr returns the host:port the server is configured to listen on.
func (s *Server) Addr() string {
	return s.server.Addr
}
