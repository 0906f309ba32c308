package storetest

import (
	"testing"
	"time"
)

// runMessageTests runs all message operation conformance tests.
func runMessageTests(t *testing.T, factory StoreFactory) {
	t.Run("AddAndFetch", func(t *testing.T) { testAddAndFetch(t, factory) })
	t.Run("UnorderedPair", func(t *testing.T) { testUnorderedPair(t, factory) })
	t.Run("SinceFilter", func(t *testing.T) { testSinceFilter(t, factory) })
	t.Run("Ordering", func(t *testing.T) { testOrdering(t, factory) })
	t.Run("ConversationIsolation", func(t *testing.T) { testConversationIsolation(t, factory) })
}

// testAddAndFetch verifies a stored message comes back intact.
func testAddAndFetch(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	mustAddUser(t, s, "alice")
	mustAddUser(t, s, "bob")

	before := time.Now().Unix()
	stored, err := s.AddMessage(ctx, "alice", "bob", "hi")
	if err != nil {
		t.Fatalf("AddMessage() failed: %v", err)
	}
	if stored.TimeSent < before || stored.TimeSent > time.Now().Unix() {
		t.Errorf("TimeSent = %d, want a current timestamp", stored.TimeSent)
	}

	messages, err := s.MessagesBetween(ctx, "alice", "bob", time.Unix(0, 0))
	if err != nil {
		t.Fatalf("MessagesBetween() failed: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("MessagesBetween() returned %d messages, want 1", len(messages))
	}

	got := messages[0]
	if got.SenderUsername != "alice" || got.ReceiverUsername != "bob" {
		t.Errorf("endpoints = (%q, %q), want (alice, bob)", got.SenderUsername, got.ReceiverUsername)
	}
	if got.Content != "hi" {
		t.Errorf("Content = %q, want %q", got.Content, "hi")
	}
	if got.TimeSent != stored.TimeSent {
		t.Errorf("TimeSent = %d, want %d", got.TimeSent, stored.TimeSent)
	}
}

// testUnorderedPair verifies the pair {a, b} fetches the same conversation in
// either argument order, both directions included.
func testUnorderedPair(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	mustAddUser(t, s, "alice")
	mustAddUser(t, s, "bob")

	if _, err := s.AddMessage(ctx, "alice", "bob", "ping"); err != nil {
		t.Fatalf("AddMessage() failed: %v", err)
	}
	if _, err := s.AddMessage(ctx, "bob", "alice", "pong"); err != nil {
		t.Fatalf("AddMessage() failed: %v", err)
	}

	forward, err := s.MessagesBetween(ctx, "alice", "bob", time.Unix(0, 0))
	if err != nil {
		t.Fatalf("MessagesBetween(alice, bob) failed: %v", err)
	}
	reverse, err := s.MessagesBetween(ctx, "bob", "alice", time.Unix(0, 0))
	if err != nil {
		t.Fatalf("MessagesBetween(bob, alice) failed: %v", err)
	}

	if len(forward) != 2 || len(reverse) != 2 {
		t.Fatalf("message counts = (%d, %d), want (2, 2)", len(forward), len(reverse))
	}
	for i := range forward {
		if forward[i].Content != reverse[i].Content {
			t.Errorf("argument order changed the conversation: %q vs %q",
				forward[i].Content, reverse[i].Content)
		}
	}
}

// testSinceFilter verifies the since bound is inclusive and the epoch fetches
// everything.
func testSinceFilter(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	mustAddUser(t, s, "alice")
	mustAddUser(t, s, "bob")

	stored, err := s.AddMessage(ctx, "alice", "bob", "boundary")
	if err != nil {
		t.Fatalf("AddMessage() failed: %v", err)
	}

	tests := []struct {
		name  string
		since time.Time
		want  int
	}{
		{"epoch fetches all", time.Unix(0, 0), 1},
		{"exact send time included", time.Unix(stored.TimeSent, 0), 1},
		{"one second later excluded", time.Unix(stored.TimeSent+1, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messages, err := s.MessagesBetween(ctx, "alice", "bob", tt.since)
			if err != nil {
				t.Fatalf("MessagesBetween() failed: %v", err)
			}
			if len(messages) != tt.want {
				t.Errorf("MessagesBetween() returned %d messages, want %d", len(messages), tt.want)
			}
		})
	}
}

// testOrdering verifies messages come back oldest first.
func testOrdering(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	mustAddUser(t, s, "alice")
	mustAddUser(t, s, "bob")

	for _, content := range []string{"one", "two", "three"} {
		if _, err := s.AddMessage(ctx, "alice", "bob", content); err != nil {
			t.Fatalf("AddMessage(%q) failed: %v", content, err)
		}
	}

	messages, err := s.MessagesBetween(ctx, "alice", "bob", time.Unix(0, 0))
	if err != nil {
		t.Fatalf("MessagesBetween() failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("MessagesBetween() returned %d messages, want 3", len(messages))
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].TimeSent < messages[i-1].TimeSent {
			t.Errorf("messages out of order at index %d", i)
		}
	}
}

// testConversationIsolation verifies a third party's messages never leak into
// the pair's history.
func testConversationIsolation(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()

	for _, name := range []string{"alice", "bob", "carol"} {
		mustAddUser(t, s, name)
	}

	if _, err := s.AddMessage(ctx, "alice", "bob", "for bob"); err != nil {
		t.Fatalf("AddMessage() failed: %v", err)
	}
	if _, err := s.AddMessage(ctx, "alice", "carol", "for carol"); err != nil {
		t.Fatalf("AddMessage() failed: %v", err)
	}
	if _, err := s.AddMessage(ctx, "carol", "bob", "between others"); err != nil {
		t.Fatalf("AddMessage() failed: %v", err)
	}

	messages, err := s.MessagesBetween(ctx, "alice", "bob", time.Unix(0, 0))
	if err != nil {
		t.Fatalf("MessagesBetween() failed: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("MessagesBetween() returned %d messages, want 1", len(messages))
	}
	if messages[0].Content != "for bob" {
		t.Errorf("Content = %q, want %q", messages[0].Content, "for bob")
	}
}
