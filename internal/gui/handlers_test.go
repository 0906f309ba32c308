package gui_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/objectiveSquid/Chat-site/internal/client"
	"github.com/objectiveSquid/Chat-site/internal/gui"
	"github.com/objectiveSquid/Chat-site/internal/protocol/chat"
)

// fakeChatter scripts chat round trips for handler tests and records every
// submitted event.
type fakeChatter struct {
	mu        sync.Mutex
	username  string
	relations []chat.Relation
	messages  []chat.Message
	addOK     bool
	err       error
	events    []client.InputEvent
}

func (f *fakeChatter) Username() string { return f.username }

func (f *fakeChatter) SubmitAndWait(ctx context.Context, event client.InputEvent) (client.OutputEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)

	if f.err != nil {
		return nil, f.err
	}
	switch event.(type) {
	case client.GetRelations:
		return client.OutGetRelations{Relations: f.relations}, nil
	case client.GetMessages:
		return client.OutGetMessages{Messages: f.messages}, nil
	case client.AddFriend:
		return client.OutAddFriend{Success: f.addOK}, nil
	case client.RemoveFriend:
		return client.OutRemoveFriend{}, nil
	case client.SendMessage:
		return client.OutSendMessage{}, nil
	default:
		return nil, fmt.Errorf("unexpected event %T", event)
	}
}

func (f *fakeChatter) recorded() []client.InputEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.InputEvent(nil), f.events...)
}

func newGUI(t *testing.T, fake *fakeChatter) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(gui.NewRouter(fake))
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	resp, err := ts.Client().Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading GET %s body failed: %v", path, err)
	}
	return resp, string(body)
}

func postForm(t *testing.T, ts *httptest.Server, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := ts.Client().PostForm(ts.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading POST %s body failed: %v", path, err)
	}
	return resp, string(body)
}

func TestRootRedirectsToFriends(t *testing.T) {
	ts := newGUI(t, &fakeChatter{username: "alice"})

	noFollow := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := noFollow.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Errorf("GET / status = %d, want %d", resp.StatusCode, http.StatusFound)
	}
	if loc := resp.Header.Get("Location"); loc != "/friends" {
		t.Errorf("GET / Location = %q, want %q", loc, "/friends")
	}
}

func TestEmptyReturnsBlankBody(t *testing.T) {
	ts := newGUI(t, &fakeChatter{username: "alice"})

	resp, body := get(t, ts, "/empty")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /empty status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if body != "" {
		t.Errorf("GET /empty body = %q, want empty", body)
	}
}

func TestFriendsPageListsRelations(t *testing.T) {
	fake := &fakeChatter{
		username: "alice",
		relations: []chat.Relation{
			{FirstUsername: "alice", SecondaryUsername: "bob", FirstIsFriend: true, SecondaryIsFriend: true},
			{FirstUsername: "alice", SecondaryUsername: "carol", FirstIsFriend: true},
			{FirstUsername: "alice", SecondaryUsername: "dave", SecondaryIsFriend: true},
		},
	}
	ts := newGUI(t, fake)

	resp, body := get(t, ts, "/friends")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /friends status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := resp.Header.Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Errorf("GET /friends Content-Type = %q, want text/html", got)
	}

	for _, want := range []string{
		"ObjectiveChat Web GUI",
		"bob", "carol", "dave",
		`<span class="badge">friends</span>`,          // mutual
		`<span class="badge">request sent</span>`,     // only our side
		`<span class="badge">request received</span>`, // only their side
	} {
		if !strings.Contains(body, want) {
			t.Errorf("GET /friends body missing %q", want)
		}
	}
}

func TestChatPageShowsConversation(t *testing.T) {
	sent := time.Date(2024, 5, 4, 12, 30, 15, 0, time.UTC)
	fake := &fakeChatter{
		username: "alice",
		relations: []chat.Relation{
			{FirstUsername: "alice", SecondaryUsername: "bob", FirstIsFriend: true, SecondaryIsFriend: true},
		},
		messages: []chat.Message{
			{Sender: "bob", Receiver: "alice", TimeSent: uint64(sent.Unix()), Content: "hello there"},
			{Sender: "alice", Receiver: "bob", TimeSent: uint64(sent.Unix()) + 60, Content: "hi bob"},
		},
	}
	ts := newGUI(t, fake)

	resp, body := get(t, ts, "/chat_page/bob")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /chat_page/bob status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	wantTime := time.Unix(sent.Unix(), 0).Format("2006-01-02 15:04:05")
	for _, want := range []string{"Chat with bob", "hello there", "hi bob", wantTime} {
		if !strings.Contains(body, want) {
			t.Errorf("GET /chat_page/bob body missing %q", want)
		}
	}

	var fetches []client.GetMessages
	for _, ev := range fake.recorded() {
		if m, ok := ev.(client.GetMessages); ok {
			fetches = append(fetches, m)
		}
	}
	if len(fetches) != 1 {
		t.Fatalf("message fetches = %d, want 1", len(fetches))
	}
	if fetches[0].Sender != "bob" || fetches[0].After != 0 {
		t.Errorf("fetched %+v, want the whole conversation with bob", fetches[0])
	}
}

func TestChatFragmentOmitsPageChrome(t *testing.T) {
	fake := &fakeChatter{
		username: "alice",
		messages: []chat.Message{
			{Sender: "bob", Receiver: "alice", TimeSent: 1714825815, Content: "fragment ahoy"},
		},
	}
	ts := newGUI(t, fake)

	resp, body := get(t, ts, "/chat/bob")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /chat/bob status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, "fragment ahoy") {
		t.Errorf("GET /chat/bob body missing the message")
	}
	// The fragment swaps into an existing page; it must not nest a document.
	if strings.Contains(body, "<html") {
		t.Errorf("GET /chat/bob rendered a full document")
	}
}

func TestChatMessagesMarksOwnMessages(t *testing.T) {
	fake := &fakeChatter{
		username: "alice",
		messages: []chat.Message{
			{Sender: "alice", Receiver: "bob", TimeSent: 1714825815, Content: "mine"},
			{Sender: "bob", Receiver: "alice", TimeSent: 1714825816, Content: "theirs"},
		},
	}
	ts := newGUI(t, fake)

	resp, body := get(t, ts, "/chat_messages/bob")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /chat_messages/bob status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, `class="message own"`) {
		t.Errorf("own message not marked: %s", body)
	}
	if strings.Count(body, `class="message own"`) != 1 {
		t.Errorf("want exactly one own message, body: %s", body)
	}
}

func TestChatMessagesEmptyConversation(t *testing.T) {
	ts := newGUI(t, &fakeChatter{username: "alice"})

	resp, body := get(t, ts, "/chat_messages/bob")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /chat_messages/bob status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, "No messages yet.") {
		t.Errorf("empty conversation placeholder missing, body: %s", body)
	}
}

func TestSendMessageTriggersRefresh(t *testing.T) {
	fake := &fakeChatter{username: "alice"}
	ts := newGUI(t, fake)

	resp, _ := postForm(t, ts, "/send_message", url.Values{
		"receiver": {"bob"},
		"content":  {"hi bob"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("POST /send_message status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := resp.Header.Get("HX-Refresh"); got != "true" {
		t.Errorf("HX-Refresh = %q, want %q", got, "true")
	}

	events := fake.recorded()
	if len(events) != 1 {
		t.Fatalf("submitted events = %d, want 1", len(events))
	}
	sendEvent, ok := events[0].(client.SendMessage)
	if !ok {
		t.Fatalf("submitted %T, want client.SendMessage", events[0])
	}
	if sendEvent.Receiver != "bob" || sendEvent.Content != "hi bob" {
		t.Errorf("submitted %+v, want receiver bob content %q", sendEvent, "hi bob")
	}
}

func TestAddFriendReportsOutcome(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		fake := &fakeChatter{username: "alice", addOK: true}
		ts := newGUI(t, fake)

		resp, body := postForm(t, ts, "/add_friend", url.Values{"username": {"bob"}})
		if resp.StatusCode != http.StatusOK {
			t.Errorf("POST /add_friend status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if got := resp.Header.Get("HX-Refresh"); got != "true" {
			t.Errorf("HX-Refresh = %q, want %q", got, "true")
		}
		if body != "Successfully sent friend request" {
			t.Errorf("body = %q, want %q", body, "Successfully sent friend request")
		}
	})

	t.Run("rejected", func(t *testing.T) {
		fake := &fakeChatter{username: "alice", addOK: false}
		ts := newGUI(t, fake)

		resp, body := postForm(t, ts, "/add_friend", url.Values{"username": {"nobody"}})
		if resp.StatusCode != http.StatusOK {
			t.Errorf("POST /add_friend status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if body != "Failed to send friend request" {
			t.Errorf("body = %q, want %q", body, "Failed to send friend request")
		}

		events := fake.recorded()
		if len(events) != 1 {
			t.Fatalf("submitted events = %d, want 1", len(events))
		}
		addEvent, ok := events[0].(client.AddFriend)
		if !ok || addEvent.Username != "nobody" {
			t.Errorf("submitted %+v, want AddFriend for nobody", events[0])
		}
	})
}

func TestRemoveFriendTriggersRefresh(t *testing.T) {
	fake := &fakeChatter{username: "alice"}
	ts := newGUI(t, fake)

	resp, _ := postForm(t, ts, "/remove_friend", url.Values{"username": {"bob"}})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("POST /remove_friend status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := resp.Header.Get("HX-Refresh"); got != "true" {
		t.Errorf("HX-Refresh = %q, want %q", got, "true")
	}

	events := fake.recorded()
	if len(events) != 1 {
		t.Fatalf("submitted events = %d, want 1", len(events))
	}
	removeEvent, ok := events[0].(client.RemoveFriend)
	if !ok || removeEvent.Username != "bob" {
		t.Errorf("submitted %+v, want RemoveFriend for bob", events[0])
	}
}

func TestSessionFailureAnswersBadGateway(t *testing.T) {
	fake := &fakeChatter{username: "alice", err: errors.New("session torn down")}
	ts := newGUI(t, fake)

	for _, path := range []string{"/friends", "/chat_page/bob", "/chat_messages/bob"} {
		resp, _ := get(t, ts, path)
		if resp.StatusCode != http.StatusBadGateway {
			t.Errorf("GET %s status = %d, want %d", path, resp.StatusCode, http.StatusBadGateway)
		}
	}

	resp, _ := postForm(t, ts, "/send_message", url.Values{"receiver": {"bob"}, "content": {"x"}})
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("POST /send_message status = %d, want %d", resp.StatusCode, http.StatusBadGateway)
	}
}

func TestMessageContentEscaped(t *testing.T) {
	fake := &fakeChatter{
		username: "alice",
		messages: []chat.Message{
			{Sender: "bob", Receiver: "alice", TimeSent: 1714825815, Content: "<script>alert(1)</script>"},
		},
	}
	ts := newGUI(t, fake)

	_, body := get(t, ts, "/chat_messages/bob")
	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Errorf("message content rendered unescaped")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Errorf("escaped message content missing, body: %s", body)
	}
}

func TestServerStartStop(t *testing.T) {
	srv := gui.NewServer(gui.Config{HostAddress: "127.0.0.1", HostPort: 0}, &fakeChatter{username: "alice"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	// Give ListenAndServe a moment to bind before shutting down.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}

	// Stop after shutdown is a no-op.
	if err := srv.Stop(context.Background()); err != nil {
		t.Errorf("second Stop() = %v, want nil", err)
	}
}
