package gui

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/objectiveSquid/Chat-site/internal/client"
	"github.com/objectiveSquid/Chat-site/internal/logger"
	"github.com/objectiveSquid/Chat-site/internal/protocol/chat"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// templates holds every page and fragment, parsed once at startup.
var templates = template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl"))

// timeLayout renders message timestamps the way the pages display them.
const timeLayout = "2006-01-02 15:04:05"

// prettyMessage is one message formatted for rendering.
type prettyMessage struct {
	Sender   string
	Content  string
	TimeSent string
}

// friendsView feeds the friends page.
type friendsView struct {
	Username  string
	Relations []chat.Relation
}

// chatView feeds the chat page and its fragments. Relations is only filled
// for the full page.
type chatView struct {
	Username  string
	Peer      string
	Relations []chat.Relation
	Messages  []prettyMessage
}

// handlers translates HTTP requests into chat session events.
type handlers struct {
	session Chatter
}

// empty answers with a blank body. htmx swaps it in to clear a target.
func (h *handlers) empty(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// friends renders the friend list page.
func (h *handlers) friends(w http.ResponseWriter, r *http.Request) {
	relations, err := h.relations(r.Context())
	if err != nil {
		h.sessionError(w, err)
		return
	}

	h.render(w, "friends", friendsView{
		Username:  h.session.Username(),
		Relations: relations,
	})
}

// chat renders the chat panel fragment for one conversation.
func (h *handlers) chat(w http.ResponseWriter, r *http.Request) {
	peer := chi.URLParam(r, "username")

	messages, err := h.messages(r.Context(), peer)
	if err != nil {
		h.sessionError(w, err)
		return
	}

	h.render(w, "chat", chatView{
		Username: h.session.Username(),
		Peer:     peer,
		Messages: messages,
	})
}

// chatPage renders the full chat page: friend list sidebar plus the
// conversation with the named peer.
func (h *handlers) chatPage(w http.ResponseWriter, r *http.Request) {
	peer := chi.URLParam(r, "username")

	relations, err := h.relations(r.Context())
	if err != nil {
		h.sessionError(w, err)
		return
	}
	messages, err := h.messages(r.Context(), peer)
	if err != nil {
		h.sessionError(w, err)
		return
	}

	h.render(w, "chat_page", chatView{
		Username:  h.session.Username(),
		Peer:      peer,
		Relations: relations,
		Messages:  messages,
	})
}

// chatMessages renders just the message list. htmx polls it to keep an open
// conversation current.
func (h *handlers) chatMessages(w http.ResponseWriter, r *http.Request) {
	peer := chi.URLParam(r, "username")

	messages, err := h.messages(r.Context(), peer)
	if err != nil {
		h.sessionError(w, err)
		return
	}

	h.render(w, "chat_messages", chatView{
		Username: h.session.Username(),
		Peer:     peer,
		Messages: messages,
	})
}

// sendMessage delivers the form's content to the form's receiver.
func (h *handlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	event := client.SendMessage{
		Receiver: r.FormValue("receiver"),
		Content:  r.FormValue("content"),
	}

	if _, err := h.session.SubmitAndWait(r.Context(), event); err != nil {
		h.sessionError(w, err)
		return
	}

	w.Header().Set("HX-Refresh", "true")
	w.WriteHeader(http.StatusOK)
}

// addFriend sends a friend request to the form's username and reports the
// outcome as plain text.
func (h *handlers) addFriend(w http.ResponseWriter, r *http.Request) {
	event := client.AddFriend{Username: r.FormValue("username")}

	out, err := h.session.SubmitAndWait(r.Context(), event)
	if err != nil {
		h.sessionError(w, err)
		return
	}
	resp, ok := out.(client.OutAddFriend)
	if !ok {
		h.sessionError(w, fmt.Errorf("add friend answered with %T", out))
		return
	}

	w.Header().Set("HX-Refresh", "true")
	if resp.Success {
		fmt.Fprint(w, "Successfully sent friend request")
	} else {
		fmt.Fprint(w, "Failed to send friend request")
	}
}

// removeFriend clears the friendship with the form's username. Removing an
// absent friend still acknowledges.
func (h *handlers) removeFriend(w http.ResponseWriter, r *http.Request) {
	event := client.RemoveFriend{Username: r.FormValue("username")}

	if _, err := h.session.SubmitAndWait(r.Context(), event); err != nil {
		h.sessionError(w, err)
		return
	}

	w.Header().Set("HX-Refresh", "true")
	w.WriteHeader(http.StatusOK)
}

// relations fetches every relation row of the session user.
func (h *handlers) relations(ctx context.Context) ([]chat.Relation, error) {
	out, err := h.session.SubmitAndWait(ctx, client.GetRelations{})
	if err != nil {
		return nil, err
	}
	resp, ok := out.(client.OutGetRelations)
	if !ok {
		return nil, fmt.Errorf("relations request answered with %T", out)
	}
	return resp.Relations, nil
}

// messages fetches the whole conversation with peer and formats the
// timestamps for display.
func (h *handlers) messages(ctx context.Context, peer string) ([]prettyMessage, error) {
	out, err := h.session.SubmitAndWait(ctx, client.GetMessages{Sender: peer, After: 0})
	if err != nil {
		return nil, err
	}
	resp, ok := out.(client.OutGetMessages)
	if !ok {
		return nil, fmt.Errorf("messages request answered with %T", out)
	}

	pretty := make([]prettyMessage, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		pretty = append(pretty, prettyMessage{
			Sender:   msg.Sender,
			Content:  msg.Content,
			TimeSent: time.Unix(int64(msg.TimeSent), 0).Format(timeLayout),
		})
	}
	return pretty, nil
}

// render executes the named template into a buffer first, so a rendering
// failure can still switch to an error status.
func (h *handlers) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Error("Template rendering failed", "template", name, logger.Err(err))
		http.Error(w, "template rendering failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// sessionError answers a failed chat round trip. The GUI fronts the chat
// session, so upstream failures surface as 502 rather than 500.
func (h *handlers) sessionError(w http.ResponseWriter, err error) {
	logger.Error("Chat request failed", logger.Err(err))
	http.Error(w, "chat session unavailable", http.StatusBadGateway)
}
