package gui

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/objectiveSquid/Chat-site/internal/logger"
)

// NewRouter builds the GUI's HTTP handler: the page and fragment routes
// backed by session, behind chi's request-id, real-IP, recovery and timeout
// middleware, with request logging through the process logger.
func NewRouter(session Chatter) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	h := &handlers{session: session}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/friends", http.StatusFound)
	})
	r.Get("/empty", h.empty)
	r.Get("/friends", h.friends)
	r.Get("/chat/{username}", h.chat)
	r.Get("/chat_page/{username}", h.chatPage)
	r.Get("/chat_messages/{username}", h.chatMessages)
	r.Post("/send_message", h.sendMessage)
	r.Post("/add_friend", h.addFriend)
	r.Post("/remove_friend", h.removeFriend)

	return r
}

// isPolledPath reports whether the browser fetches the path on a timer.
func isPolledPath(path string) bool {
	return path == "/empty" || strings.HasPrefix(path, "/chat_messages/")
}

// requestLogger logs each request's start at DEBUG and its completion with
// status, size and duration. Completions log at INFO, except on paths htmx
// polls every few seconds, which stay at DEBUG so the log remains readable.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("GUI request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)

		// The wrapper captures status and bytes written for the completion line.
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log := logger.Info
		if isPolledPath(r.URL.Path) {
			log = logger.Debug
		}
		log("GUI request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String())
	})
}
